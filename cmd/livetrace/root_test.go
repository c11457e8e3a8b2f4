//go:build linux

package main

import (
	"os"
	"testing"

	"github.com/mrzor/livetrace/internal/config"
	"github.com/mrzor/livetrace/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("LIVETRACE_TMPDIR", root)
	t.Setenv("LIVETRACE_ATTRIBUTES", "")
	t.Setenv("LIVETRACE_TRACE_ID", "")
	t.Setenv("LIVETRACE_PARENT_ID", "")
	t.Setenv("LIVETRACE_LOG_LEVEL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	return root
}

func TestRoot_MissingCommand(t *testing.T) {
	isolate(t)

	status, err := newRootCmd().execute(nil)
	require.ErrorIs(t, err, config.ErrNoCommand)
	assert.Equal(t, session.ExitFailure, status)
}

func TestRoot_RecordOnly(t *testing.T) {
	root := isolate(t)

	status, err := newRootCmd().execute([]string{"--nop", "-D", "4", "--", "/bin/true"})
	require.NoError(t, err)
	assert.Equal(t, session.ExitSuccess, status)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "trace store must be removed")
}

func TestRoot_TargetFlagsPassThrough(t *testing.T) {
	root := isolate(t)

	status, err := newRootCmd().execute([]string{"--nop", "/bin/sh", "-c", "exit 3"})
	require.NoError(t, err)
	assert.Equal(t, 3, status)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRoot_InvalidAttribute(t *testing.T) {
	isolate(t)

	_, err := newRootCmd().execute([]string{"-a", "broken", "/bin/true"})
	assert.ErrorContains(t, err, "NAME=EXPR")
}

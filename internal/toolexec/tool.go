// Package toolexec runs the report and replay phases through an external
// trace rendering tool.
package toolexec

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/mrzor/livetrace/internal/config"
	"github.com/mrzor/livetrace/internal/session"

	log "github.com/sirupsen/logrus"
)

// Tool renders a recorded trace store.
type Tool struct {
	// Path is the tool binary, looked up in PATH when not absolute.
	Path   string
	Stdout io.Writer
	Stderr io.Writer
}

// Report summarizes the trace in opts.DirName.
func (t *Tool) Report(ctx context.Context, _ []string, opts *config.Options) int {
	return t.run(ctx, "report", opts, nil)
}

// Replay prints the call trace in opts.DirName. A session that started with
// tracing disabled replays that way too.
func (t *Tool) Replay(ctx context.Context, _ []string, opts *config.Options) int {
	var extra []string
	if opts.DisabledAtStart {
		extra = append(extra, "--disable")
	}
	return t.run(ctx, "replay", opts, extra)
}

func (t *Tool) run(_ context.Context, command string, opts *config.Options, extra []string) int {
	args := append([]string{command, "-d", opts.DirName}, extra...)

	//nolint:gosec // The tool path is operator configuration
	cmd := exec.Command(t.Path, args...)
	cmd.Stdout = t.Stdout
	cmd.Stderr = t.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	log.Debugf("running %s %v", t.Path, args)
	return session.StatusFromError(t.Path+" "+command, cmd.Run())
}

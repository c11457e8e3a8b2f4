package session

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/mrzor/livetrace/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const crashHelperEnv = "LIVETRACE_SESSION_CRASH_ROOT"

// TestLive_FatalSignalDuringRecord runs itself as a child process whose
// record phase fills the trace store and then receives SIGSEGV.
func TestLive_FatalSignalDuringRecord(t *testing.T) {
	if root := os.Getenv(crashHelperEnv); root != "" {
		runCrashingSession(root)
		return
	}

	root := t.TempDir()
	//nolint:gosec // Re-executes the test binary
	cmd := exec.Command(os.Args[0], "-test.run=^TestLive_FatalSignalDuringRecord$")
	cmd.Env = append(os.Environ(), crashHelperEnv+"="+root)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "session must not exit normally: %v", err)
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	require.True(t, ok)
	assert.True(t, ws.Signaled(), "session should die from a signal, got %v", ws)
	assert.Equal(t, syscall.SIGSEGV, ws.Signal())

	var store string
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		if path, found := strings.CutPrefix(scanner.Text(), "STORE="); found {
			store = path
		}
	}
	require.NotEmpty(t, store, "session did not report its trace store")

	_, err = os.Stat(store)
	assert.True(t, os.IsNotExist(err), "trace store %s was left behind", store)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func runCrashingSession(root string) {
	// No core file in the package directory.
	_ = unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{})

	record := func(_ context.Context, _ []string, opts *config.Options) int {
		if err := os.MkdirAll(opts.DirName, 0o755); err != nil {
			os.Exit(3)
		}
		if err := os.WriteFile(filepath.Join(opts.DirName, "1234.dat"), []byte("x"), 0o644); err != nil {
			os.Exit(3)
		}
		fmt.Printf("STORE=%s\n", opts.DirName)

		_ = unix.Kill(unix.Getpid(), syscall.SIGSEGV)
		time.Sleep(10 * time.Second)
		return ExitSuccess
	}

	live := &Live{
		StoreRoot: root,
		Sequencer: &Sequencer{Commands: Commands{Record: record}},
	}
	opts := config.NewOptions()
	opts.Exename = "./a.out"

	_, _ = live.Run(context.Background(), nil, opts)
	os.Exit(4)
}

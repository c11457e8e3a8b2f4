//go:build linux

package sigguard

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/mrzor/livetrace/internal/tempstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const helperEnv = "LIVETRACE_SIGGUARD_HELPER_ROOT"

func TestGuard_HandlesFirstSignal(t *testing.T) {
	cleaned := make(chan struct{}, 1)
	raised := make(chan os.Signal, 1)

	g := install(func() error {
		cleaned <- struct{}{}
		return nil
	}, func(sig os.Signal) { raised <- sig }, syscall.SIGUSR1)
	defer g.Stop()

	require.NoError(t, unix.Kill(unix.Getpid(), syscall.SIGUSR1))

	select {
	case <-g.handled:
	case <-time.After(5 * time.Second):
		t.Fatal("signal was not handled")
	}
	assert.Len(t, cleaned, 1)
	assert.Equal(t, syscall.SIGUSR1, <-raised)
}

// TestGuard_SignalRemovesStoreAndReraises runs itself as a child process
// which allocates a trace store, installs the guard and receives SIGSEGV.
func TestGuard_SignalRemovesStoreAndReraises(t *testing.T) {
	if root := os.Getenv(helperEnv); root != "" {
		runSegvHelper(root)
		return
	}

	root := t.TempDir()
	//nolint:gosec // Re-executes the test binary
	cmd := exec.Command(os.Args[0], "-test.run=^TestGuard_SignalRemovesStoreAndReraises$")
	cmd.Env = append(os.Environ(), helperEnv+"="+root)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "helper must not exit normally: %v", err)
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	require.True(t, ok)
	assert.True(t, ws.Signaled(), "helper should die from a signal, got %v", ws)
	assert.Equal(t, syscall.SIGSEGV, ws.Signal())

	var store string
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		if path, found := strings.CutPrefix(scanner.Text(), "STORE="); found {
			store = path
		}
	}
	require.NotEmpty(t, store, "helper did not report its trace store")

	_, err = os.Stat(store)
	assert.True(t, os.IsNotExist(err), "trace store %s was left behind", store)
}

func runSegvHelper(root string) {
	// No core file in the package directory.
	_ = unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{})

	path, err := tempstore.Create(root)
	if err != nil {
		os.Exit(3)
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		os.Exit(3)
	}
	if err := os.WriteFile(filepath.Join(path, "info"), []byte("data"), 0o644); err != nil {
		os.Exit(3)
	}
	fmt.Printf("STORE=%s\n", path)

	g := Install(tempstore.Cleanup)
	defer g.Stop()

	_ = unix.Kill(unix.Getpid(), syscall.SIGSEGV)
	time.Sleep(10 * time.Second)
	os.Exit(4)
}

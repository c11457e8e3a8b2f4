// Package eventlist implements the --list-event mode: kernel events are
// listed directly when running as root, and the target program is started
// with libmcount preloaded so the shim prints its own event sources.
package eventlist

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/mrzor/livetrace/internal/config"
	"github.com/mrzor/livetrace/internal/environ"
	"github.com/mrzor/livetrace/internal/session"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Launcher runs the event listing mode.
type Launcher struct {
	Kernel KernelLister
	// InstallLibPath is where libmcount was installed.
	InstallLibPath string

	// Euid defaults to unix.Geteuid.
	Euid func() int
	// Probe checks that the kernel allows tracepoint introspection.
	// Defaults to ProbeTracepoints.
	Probe func() error
	// Environ defaults to os.Environ.
	Environ func() []string

	// Stdout and Stderr are handed to the child as is. They are files, not
	// arbitrary writers: the child is never waited on, so nothing would
	// copy its output through a pipe.
	Stdout *os.File
	Stderr *os.File
}

// Launch lists kernel events when permitted, then starts the target with
// UFTRACE_LIST_EVENT set and returns without waiting for it. The child
// prints its own event list and exits on its own.
func (l *Launcher) Launch(_ context.Context, opts *config.Options) (int, error) {
	if l.Kernel != nil && l.canIntrospectKernel() {
		if err := l.Kernel.ListKernelEvents(l.stdout()); err != nil {
			log.Warnf("cannot list kernel events: %v", err)
		}
	}

	getenv := l.Environ
	if getenv == nil {
		getenv = os.Environ
	}
	env := getenv()

	overlay, err := environ.Compose(opts.LibPath, l.InstallLibPath, environ.Lookup(env))
	if err != nil {
		return session.ExitFailure, fmt.Errorf("composing child environment: %w", err)
	}

	//nolint:gosec // Launching the traced program is the point of this tool
	cmd := exec.Command(opts.Exename, opts.Args...)
	cmd.Env = overlay.With(environ.ListEventVar, "1").Apply(env)
	cmd.Stdout = l.stdout()
	cmd.Stderr = l.stderr()

	if err := cmd.Start(); err != nil {
		return session.ExitFailure, fmt.Errorf("starting %s: %w", opts.Exename, err)
	}
	log.Debugf("event listing child started, pid %d", cmd.Process.Pid)

	if err := cmd.Process.Release(); err != nil {
		log.Debugf("releasing event listing child: %v", err)
	}

	return session.ExitSuccess, nil
}

// canIntrospectKernel requires root and a kernel that lets this process
// attach tracepoint programs.
func (l *Launcher) canIntrospectKernel() bool {
	if l.euid() != 0 {
		return false
	}

	probe := l.Probe
	if probe == nil {
		probe = ProbeTracepoints
	}
	if err := probe(); err != nil {
		log.Warnf("skipping kernel events: %v", err)
		return false
	}
	return true
}

func (l *Launcher) euid() int {
	if l.Euid != nil {
		return l.Euid()
	}
	return unix.Geteuid()
}

func (l *Launcher) stdout() *os.File {
	if l.Stdout != nil {
		return l.Stdout
	}
	return os.Stdout
}

func (l *Launcher) stderr() *os.File {
	if l.Stderr != nil {
		return l.Stderr
	}
	return os.Stderr
}

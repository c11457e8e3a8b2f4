package session

import (
	"errors"
	"os/exec"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// StatusFromError maps the result of running a child program to a phase
// exit status: its own exit code, ExitSignaled when a signal killed it,
// ExitFailure when it could not run at all and ExitUnknown when its wait
// status is neither.
func StatusFromError(name string, err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		log.Errorf("cannot run %s: %v", name, err)
		return ExitFailure
	}

	if exitErr.ProcessState == nil {
		log.Errorf("%s: no wait status", name)
		return ExitUnknown
	}
	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}

	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		log.Warnf("%s terminated: %v", name, exitErr.ProcessState)
		return ExitSignaled
	}

	log.Errorf("%s ended with unexpected status: %v", name, exitErr.ProcessState)
	return ExitUnknown
}

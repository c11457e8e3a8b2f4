//go:build unix

package session

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, ExitSuccess, StatusFromError("true", nil))
	assert.Equal(t, ExitFailure, StatusFromError("missing", errors.New("no such file")))
	assert.Equal(t, ExitUnknown, StatusFromError("lost", &exec.ExitError{}))
}

func TestStatusFromError_ChildResults(t *testing.T) {
	err := exec.Command("/bin/sh", "-c", "exit 5").Run()
	assert.Equal(t, 5, StatusFromError("sh", err))

	err = exec.Command("/bin/sh", "-c", "kill -KILL $$").Run()
	assert.Equal(t, ExitSignaled, StatusFromError("sh", err))
}

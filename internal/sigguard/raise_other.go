//go:build !linux

package sigguard

import (
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Raise terminates the process with sig under its default disposition, or
// exits with 128+sig when the runtime swallows it.
func Raise(sig os.Signal) {
	signal.Reset(sig)

	if p, err := os.FindProcess(os.Getpid()); err == nil {
		if err := p.Signal(sig); err == nil {
			time.Sleep(time.Second)
		}
	}

	if s, ok := sig.(syscall.Signal); ok {
		os.Exit(128 + int(s))
	}
	os.Exit(1)
}

//go:build linux

package sigguard

import (
	"os"
	"os/signal"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// sigactiont mirrors the kernel struct sigaction. Zeroed, it installs SIG_DFL.
type sigactiont struct {
	handler  uintptr
	flags    uint64
	restorer uintptr
	mask     uint64
}

// Raise terminates the process with sig under its default disposition.
//
// The Go runtime keeps its own handler for fault signals even after
// signal.Reset and ignores a user-sent SIGSEGV, so the disposition is set to
// SIG_DFL with rt_sigaction before the signal is sent again.
func Raise(sig os.Signal) {
	s, ok := sig.(syscall.Signal)
	if !ok {
		os.Exit(1)
	}

	signal.Reset(s)

	var sa sigactiont
	//nolint:gosec // Pointer to a stack struct for the duration of the syscall
	_, _, errno := unix.RawSyscall6(unix.SYS_RT_SIGACTION, uintptr(s),
		uintptr(unsafe.Pointer(&sa)), 0, unsafe.Sizeof(sa.mask), 0, 0)
	if errno == 0 {
		_ = unix.Kill(unix.Getpid(), s) //nolint:errcheck // Exit below covers failure
		// Delivery to another thread is asynchronous.
		time.Sleep(time.Second)
	}

	os.Exit(128 + int(s))
}

// Package sigguard removes the session trace store when the process is
// killed by a fatal signal, then lets the signal terminate the process as it
// would have otherwise.
//
// Signals are received on a channel, so cleanup runs on an ordinary goroutine
// rather than in asynchronous signal context.
package sigguard

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// DefaultSignals are the signals a live session guards against.
var DefaultSignals = []os.Signal{
	syscall.SIGSEGV,
	syscall.SIGBUS,
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGHUP,
}

// Guard runs a cleanup function before a guarded signal terminates the
// process.
type Guard struct {
	cleanup func() error
	raise   func(os.Signal)

	sigCh chan os.Signal
	done  chan struct{}

	stopOnce sync.Once
	// handled is closed once a delivered signal has been fully processed.
	handled chan struct{}
}

// Install starts guarding DefaultSignals. Only the first delivery is
// handled; the disposition then goes back to the default.
func Install(cleanup func() error) *Guard {
	return install(cleanup, Raise, DefaultSignals...)
}

func install(cleanup func() error, raise func(os.Signal), sigs ...os.Signal) *Guard {
	g := &Guard{
		cleanup: cleanup,
		raise:   raise,
		sigCh:   make(chan os.Signal, 1),
		done:    make(chan struct{}),
		handled: make(chan struct{}),
	}

	signal.Notify(g.sigCh, sigs...)
	go g.loop()

	return g
}

func (g *Guard) loop() {
	select {
	case sig := <-g.sigCh:
		signal.Stop(g.sigCh)
		g.handle(sig)
		close(g.handled)
	case <-g.done:
	}
}

func (g *Guard) handle(sig os.Signal) {
	log.Errorf("%s", describe(sig))

	if err := g.cleanup(); err != nil {
		log.Errorf("cleanup after %v: %v", sig, err)
	}

	g.raise(sig)
}

// Stop stops guarding. A signal already being handled is not interrupted.
func (g *Guard) Stop() {
	g.stopOnce.Do(func() {
		signal.Stop(g.sigCh)
		close(g.done)
	})
}

// RecoverPanic must be deferred directly. A Go runtime fault surfaces as a
// panic rather than a signal; it runs the cleanup and re-panics.
func (g *Guard) RecoverPanic() {
	if r := recover(); r != nil {
		log.Errorf("panic: %v", r)
		if err := g.cleanup(); err != nil {
			log.Errorf("cleanup after panic: %v", err)
		}
		panic(r)
	}
}

func describe(sig os.Signal) string {
	switch sig {
	case syscall.SIGSEGV:
		return "Segmentation fault"
	case syscall.SIGBUS:
		return "Bus error"
	default:
		return "Received signal: " + sig.String()
	}
}

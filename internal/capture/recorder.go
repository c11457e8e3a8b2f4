// Package capture runs the traced program with libmcount preloaded, writing
// its trace into the session trace store.
package capture

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/mrzor/livetrace/internal/config"
	"github.com/mrzor/livetrace/internal/environ"
	"github.com/mrzor/livetrace/internal/session"

	log "github.com/sirupsen/logrus"
)

// Variables libmcount reads its record options from.
const (
	DirVar       = "UFTRACE_DIR"
	FilterVar    = "UFTRACE_FILTER"
	DepthVar     = "UFTRACE_DEPTH"
	ThresholdVar = "UFTRACE_THRESHOLD"
	DisabledVar  = "UFTRACE_DISABLED"
)

// Recorder is the record phase of a live session.
type Recorder struct {
	// InstallLibPath is where libmcount was installed.
	InstallLibPath string
	// Environ defaults to os.Environ.
	Environ func() []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Record creates the trace store directory, runs the target to completion
// and returns its exit status.
func (r *Recorder) Record(_ context.Context, _ []string, opts *config.Options) int {
	if err := os.MkdirAll(opts.DirName, 0o755); err != nil {
		log.Errorf("cannot create trace directory: %v", err)
		return session.ExitFailure
	}

	env, err := r.childEnv(opts)
	if err != nil {
		log.Errorf("%v", err)
		return session.ExitFailure
	}

	//nolint:gosec // Launching the traced program is the point of this tool
	cmd := exec.Command(opts.Exename, opts.Args...)
	cmd.Env = env
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	log.Debugf("recording %v into %s", opts.FullCommand(), opts.DirName)
	return session.StatusFromError(opts.Exename, cmd.Run())
}

func (r *Recorder) childEnv(opts *config.Options) ([]string, error) {
	getenv := r.Environ
	if getenv == nil {
		getenv = os.Environ
	}
	env := getenv()

	overlay, err := environ.Compose(opts.LibPath, r.InstallLibPath, environ.Lookup(env))
	if err != nil {
		return nil, err
	}

	overlay = overlay.With(DirVar, opts.DirName)
	if opts.Filter != "" {
		overlay = overlay.With(FilterVar, opts.Filter)
	}
	if opts.Depth != config.DefaultDepth {
		overlay = overlay.With(DepthVar, strconv.Itoa(opts.Depth))
	}
	if opts.Threshold > 0 {
		overlay = overlay.With(ThresholdVar, strconv.FormatInt(opts.Threshold.Nanoseconds(), 10))
	}
	if opts.Disabled {
		overlay = overlay.With(DisabledVar, "1")
	}

	return overlay.Apply(env), nil
}

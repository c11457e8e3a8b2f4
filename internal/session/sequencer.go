package session

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mrzor/livetrace/internal/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Exit statuses shared by every phase.
const (
	ExitSuccess  = 0
	ExitFailure  = 1
	ExitSignaled = 2
	ExitUnknown  = 3
)

// Command runs one phase of the session and returns its exit status.
type Command func(ctx context.Context, argv []string, opts *config.Options) int

// Commands are the subsystems a live session drives.
type Commands struct {
	Record Command
	Report Command
	Replay Command
}

// Sequencer runs record, then report when requested, then replay.
type Sequencer struct {
	Commands Commands
	// Out receives the phase banners. Defaults to os.Stdout.
	Out io.Writer
	// Tracer records one span per phase. Defaults to a noop tracer.
	Tracer trace.Tracer
	// Cleanup removes the trace store once the phases are done.
	Cleanup func() error
}

// CombineStatus folds the status of a later phase into the running status.
// The first failure wins.
func CombineStatus(running, next int) int {
	if running == ExitSuccess {
		return next
	}
	return running
}

func canSkipReplay(opts *config.Options, _ int) bool {
	return opts.Nop
}

// Run runs the phases and returns the combined exit status. Cleanup runs
// whatever the phases return; its error is the only error Run reports.
func (s *Sequencer) Run(ctx context.Context, argv []string, opts *config.Options) (ret int, err error) {
	defer func() {
		if s.Cleanup == nil {
			return
		}
		if cerr := s.Cleanup(); cerr != nil && err == nil {
			err = fmt.Errorf("cleaning up trace store: %w", cerr)
		}
	}()

	ret = s.runPhase(ctx, "record", s.Commands.Record, argv, opts)
	if canSkipReplay(opts, ret) {
		return ret, nil
	}

	opts.ResetCaptureOnly()
	log.Debug("live-record finished..")

	if opts.Report {
		fmt.Fprint(s.out(), "#\n# uftrace report\n#\n")
		ret = CombineStatus(ret, s.runPhase(ctx, "report", s.Commands.Report, argv, opts))

		fmt.Fprint(s.out(), "\n#\n# uftrace replay\n#\n")
	}

	log.Debug("start live-replaying...")
	ret = CombineStatus(ret, s.runPhase(ctx, "replay", s.Commands.Replay, argv, opts))

	return ret, nil
}

func (s *Sequencer) runPhase(ctx context.Context, name string, cmd Command, argv []string, opts *config.Options) int {
	ctx, span := s.tracer().Start(ctx, "live."+name)
	defer span.End()

	if cmd == nil {
		log.Errorf("no %s command configured", name)
		span.SetStatus(codes.Error, "not configured")
		return ExitFailure
	}

	status := cmd(ctx, argv, opts)

	span.SetAttributes(
		attribute.String("livetrace.phase", name),
		attribute.Int("livetrace.exit_status", status),
	)
	if status != ExitSuccess {
		span.SetStatus(codes.Error, fmt.Sprintf("%s exited with status %d", name, status))
		log.Debugf("%s finished with status %d", name, status)
	}

	return status
}

func (s *Sequencer) out() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stdout
}

func (s *Sequencer) tracer() trace.Tracer {
	return tracerOrNoop(s.Tracer)
}

func tracerOrNoop(t trace.Tracer) trace.Tracer {
	if t != nil {
		return t
	}
	return noop.NewTracerProvider().Tracer("livetrace")
}

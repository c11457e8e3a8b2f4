package session

import (
	"context"
	"fmt"

	"github.com/mrzor/livetrace/internal/config"
	"github.com/mrzor/livetrace/internal/sigguard"
	"github.com/mrzor/livetrace/internal/tempstore"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Launcher runs the event listing mode in place of the phases.
type Launcher interface {
	Launch(ctx context.Context, opts *config.Options) (int, error)
}

// Live is one live trace invocation.
type Live struct {
	// StoreRoot is the directory the trace store is allocated under.
	StoreRoot string
	Sequencer *Sequencer
	Launcher  Launcher
	// Tracer records the session span. Defaults to a noop tracer.
	Tracer trace.Tracer
	// Attributes are attached to the session span.
	Attributes []attribute.KeyValue
}

// Run allocates the trace store, guards it against fatal signals and then
// either lists events or runs the phases. The store is gone when Run
// returns. A returned error is a setup failure the caller should treat as
// fatal.
func (l *Live) Run(ctx context.Context, argv []string, opts *config.Options) (status int, err error) {
	store, err := tempstore.Open(l.StoreRoot)
	if err != nil {
		return ExitFailure, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cleaning up trace store: %w", cerr)
		}
	}()

	guard := sigguard.Install(tempstore.Cleanup)
	defer guard.Stop()
	defer guard.RecoverPanic()

	opts.DirName = store.Path()
	log.Debugf("trace store: %s", opts.DirName)

	ctx, span := tracerOrNoop(l.Tracer).Start(ctx, "live",
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("livetrace.exename", opts.Exename),
			attribute.Bool("livetrace.list_event", opts.ListEvent),
		}, l.Attributes...)...),
	)
	defer func() {
		span.SetAttributes(attribute.Int("livetrace.exit_status", status))
		span.End()
	}()

	if opts.ListEvent {
		if l.Launcher == nil {
			return ExitFailure, fmt.Errorf("event listing is not available")
		}
		return l.Launcher.Launch(ctx, opts)
	}

	if l.Sequencer == nil {
		return ExitFailure, fmt.Errorf("no phases configured")
	}
	seq := *l.Sequencer
	if seq.Tracer == nil {
		seq.Tracer = l.Tracer
	}
	seq.Cleanup = store.Close
	return seq.Run(ctx, argv, opts)
}

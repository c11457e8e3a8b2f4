// livetrace records a program under the function tracer and replays the
// trace as soon as the program exits.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mrzor/livetrace/internal/config"
	"github.com/mrzor/livetrace/internal/otel"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Version information injected at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	status, err := newRootCmd().execute(os.Args[1:])
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	os.Exit(status)
}

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}

// setupOTEL returns the session tracer and a function flushing it. Without
// an exporter endpoint configured, spans go nowhere.
func setupOTEL(traceID trace.TraceID) (trace.Tracer, func(), error) {
	otelCfg, err := config.ParseOTELConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse OTEL config: %w", err)
	}
	if !otelCfg.Enabled() {
		return noop.NewTracerProvider().Tracer("livetrace"), func() {}, nil
	}

	tp, err := otel.InitProvider(otelCfg, traceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OTEL provider: %w", err)
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otel.ShutdownProvider(shutdownCtx, tp); err != nil {
			log.Warnf("Error shutting down OTEL provider: %v", err)
		}
	}

	return tp.Tracer("livetrace", trace.WithInstrumentationVersion(version)), cleanup, nil
}

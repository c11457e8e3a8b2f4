package otel

import (
	"context"
	"crypto/rand"
	"encoding/binary"

	"go.opentelemetry.io/otel/trace"
)

// fixedTraceIDGenerator puts root spans in a chosen trace. Span IDs stay
// random.
type fixedTraceIDGenerator struct {
	traceID trace.TraceID
}

func newFixedTraceIDGenerator(traceID trace.TraceID) *fixedTraceIDGenerator {
	return &fixedTraceIDGenerator{traceID: traceID}
}

// NewIDs implements sdktrace.IDGenerator.
func (g *fixedTraceIDGenerator) NewIDs(context.Context) (trace.TraceID, trace.SpanID) {
	return g.traceID, randomSpanID()
}

// NewSpanID implements sdktrace.IDGenerator.
func (g *fixedTraceIDGenerator) NewSpanID(context.Context, trace.TraceID) trace.SpanID {
	return randomSpanID()
}

func randomSpanID() trace.SpanID {
	var sid trace.SpanID
	for !sid.IsValid() {
		if _, err := rand.Read(sid[:]); err != nil {
			// crypto/rand does not fail on supported platforms.
			binary.BigEndian.PutUint64(sid[:], 1)
		}
	}
	return sid
}

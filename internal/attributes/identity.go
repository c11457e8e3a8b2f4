package attributes

import (
	"context"

	"github.com/mrzor/livetrace/internal/config"
	"github.com/mrzor/livetrace/internal/procmeta"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Identity places the session span in a trace.
type Identity struct {
	TraceID  trace.TraceID
	ParentID trace.SpanID
	// Attributes are the custom attributes followed by evaluation warnings.
	Attributes []attribute.KeyValue
}

// Resolve evaluates the trace ID, parent ID and custom attribute
// expressions of opts against the target.
func Resolve(opts *config.Options, md *procmeta.ProcessMetadata) (*Identity, error) {
	traceEval, err := NewTraceIDEvaluator(opts.TraceID)
	if err != nil {
		return nil, err
	}
	parentEval, err := NewParentIDEvaluator(opts.ParentID)
	if err != nil {
		return nil, err
	}
	attrEval, err := NewEvaluator(opts.CustomAttributes)
	if err != nil {
		return nil, err
	}

	id := &Identity{}

	var traceWarnings, parentWarnings []attribute.KeyValue
	if id.TraceID, traceWarnings, err = traceEval.EvaluateAndValidate(md); err != nil {
		return nil, err
	}
	if id.ParentID, parentWarnings, err = parentEval.EvaluateAndValidate(md); err != nil {
		return nil, err
	}
	if id.Attributes, err = attrEval.EvaluateCustomAttributes(md); err != nil {
		return nil, err
	}

	id.Attributes = append(id.Attributes, traceWarnings...)
	id.Attributes = append(id.Attributes, parentWarnings...)
	return id, nil
}

// ContextWithParent returns ctx carrying the remote parent span, when both
// a trace ID and a parent ID were resolved.
func (id *Identity) ContextWithParent(ctx context.Context) context.Context {
	if !id.TraceID.IsValid() || !id.ParentID.IsValid() {
		return ctx
	}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    id.TraceID,
		SpanID:     id.ParentID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	return trace.ContextWithRemoteSpanContext(ctx, sc)
}

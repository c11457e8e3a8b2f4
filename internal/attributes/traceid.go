package attributes

import (
	"crypto/sha256"
	"fmt"

	"github.com/expr-lang/expr/vm"
	"github.com/mrzor/livetrace/internal/procmeta"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDEvaluator turns an expression into the trace ID of the session.
type TraceIDEvaluator struct {
	program *vm.Program
}

// NewTraceIDEvaluator compiles source. An empty source yields no trace ID.
func NewTraceIDEvaluator(source string) (*TraceIDEvaluator, error) {
	if source == "" {
		return &TraceIDEvaluator{}, nil
	}
	program, err := compile("trace-id", source)
	if err != nil {
		return nil, err
	}
	return &TraceIDEvaluator{program: program}, nil
}

// EvaluateAndValidate returns the trace ID and warnings to attach to the
// session span. A result that is not a valid trace ID is hashed into one.
// Without an expression the zero trace ID is returned.
func (e *TraceIDEvaluator) EvaluateAndValidate(md *procmeta.ProcessMetadata) (trace.TraceID, []attribute.KeyValue, error) {
	if e.program == nil {
		return trace.TraceID{}, nil, nil
	}
	if md == nil {
		return trace.TraceID{}, nil, fmt.Errorf("no metadata available")
	}

	output, err := run(e.program, md)
	if err != nil {
		return trace.TraceID{}, nil, fmt.Errorf("failed to evaluate trace-id expression: %w", err)
	}

	result := fmt.Sprint(output)
	if len(result) == 32 {
		if traceID, err := trace.TraceIDFromHex(result); err == nil && traceID.IsValid() {
			return traceID, nil, nil
		}
	}

	var traceID trace.TraceID
	sum := sha256.Sum256([]byte(result))
	copy(traceID[:], sum[:16])

	warnings := []attribute.KeyValue{
		attribute.String("_trace_id_expr_result", result),
		attribute.String("_trace_id_invalid_warning",
			fmt.Sprintf("Expression result %q is not a valid 32-char hex trace ID, used SHA-256 hash instead", result)),
	}
	return traceID, warnings, nil
}

// ParentIDEvaluator turns an expression into the parent span ID of the
// session span.
type ParentIDEvaluator struct {
	program *vm.Program
}

// NewParentIDEvaluator compiles source. An empty source yields no parent.
func NewParentIDEvaluator(source string) (*ParentIDEvaluator, error) {
	if source == "" {
		return &ParentIDEvaluator{}, nil
	}
	program, err := compile("parent-id", source)
	if err != nil {
		return nil, err
	}
	return &ParentIDEvaluator{program: program}, nil
}

// EvaluateAndValidate returns the parent span ID and warnings to attach to
// the session span. An invalid result yields the zero span ID.
func (e *ParentIDEvaluator) EvaluateAndValidate(md *procmeta.ProcessMetadata) (trace.SpanID, []attribute.KeyValue, error) {
	if e.program == nil {
		return trace.SpanID{}, nil, nil
	}
	if md == nil {
		return trace.SpanID{}, nil, fmt.Errorf("no metadata available")
	}

	output, err := run(e.program, md)
	if err != nil {
		return trace.SpanID{}, nil, fmt.Errorf("failed to evaluate parent-id expression: %w", err)
	}

	result := fmt.Sprint(output)
	if len(result) == 16 {
		if spanID, err := trace.SpanIDFromHex(result); err == nil && spanID.IsValid() {
			return spanID, nil, nil
		}
	}

	warnings := []attribute.KeyValue{
		attribute.String("_parent_id_expr_result", result),
		attribute.String("_parent_id_invalid_warning",
			fmt.Sprintf("Expression result %q is not a valid 16-char hex span ID, using null parent ID instead", result)),
	}
	return trace.SpanID{}, warnings, nil
}

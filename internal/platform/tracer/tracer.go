// Package tracer provides a lightweight tracing abstraction for domain services.
//
// Services emit spans through the internal Tracer interface so business code
// never depends on OpenTelemetry APIs directly.
//
// Implementations:
//   - NoopTracer: For tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import "context"

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// AddEvent records a timestamped event on the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer starts spans for named operations.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key/value pair attached to spans and events.
type Attribute struct {
	Key   string
	Value string
}

// String builds a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

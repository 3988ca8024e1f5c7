package context

import "context"

// TraceContext carries the IDs assigned to a request by the Trace middleware.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

// LogFields returns the IDs as logger key-value pairs. Empty IDs are skipped.
func (t *TraceContext) LogFields() []any {
	if t == nil {
		return nil
	}
	fields := make([]any, 0, 4)
	if t.TraceID != "" {
		fields = append(fields, "trace_id", t.TraceID)
	}
	if t.RequestID != "" {
		fields = append(fields, "request_id", t.RequestID)
	}
	return fields
}

type traceKey struct{}

// WithTrace stores trace in ctx.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceKey{}, trace)
}

// GetTrace returns the request's TraceContext or nil.
func GetTrace(ctx context.Context) *TraceContext {
	trace, _ := ctx.Value(traceKey{}).(*TraceContext)
	return trace
}

// GetRequestID returns the request ID, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

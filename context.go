package goSession

import "context"

type requestIDContextKey struct{}

// WithRequestID attaches a correlation ID to ctx. Auth clients forward it to
// the API and audit events record it. The detached logout notification keeps
// the ID of the Logout call that triggered it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// RequestIDFromContext returns the correlation ID attached by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

package instrument

import "context"

type correlationIDKey struct{}

// WithCorrelationID stores a correlation ID in the context. Every flow session
// gets one at creation so logs across one user journey can be tied together.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// GetCorrelationID returns the correlation ID stored in the context, if any.
func GetCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

package interviews

import "context"

// requestIDKey carries the originating HTTP request id through the
// pipeline, including across the queue hop into the worker.
type requestIDKey struct{}

// WithRequestID tags ctx with a request id for log correlation. A blank
// id leaves ctx untouched.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// backgroundWithRequestID detaches pipeline work from the request
// context so client disconnects cannot cancel it, keeping only the
// request id.
func backgroundWithRequestID(ctx context.Context) context.Context {
	return WithRequestID(context.Background(), requestIDFromContext(ctx))
}

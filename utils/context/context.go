package context

import "context"

type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID returns a child context carrying the request id attached to
// an outgoing API call.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) (string, bool) {
	v := ctx.Value(requestIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

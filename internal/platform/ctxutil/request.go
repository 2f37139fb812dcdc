package ctxutil

import "context"

type requestKey struct{}

// RequestIDs correlates one HTTP request across logs, spans and error responses.
type RequestIDs struct {
	TraceID   string
	RequestID string
}

func WithRequestIDs(ctx context.Context, ids RequestIDs) context.Context {
	return context.WithValue(ctx, requestKey{}, ids)
}

func GetRequestIDs(ctx context.Context) (RequestIDs, bool) {
	if ctx == nil {
		return RequestIDs{}, false
	}
	ids, ok := ctx.Value(requestKey{}).(RequestIDs)
	return ids, ok
}

// RequestID returns "" outside a request.
func RequestID(ctx context.Context) string {
	ids, _ := GetRequestIDs(ctx)
	return ids.RequestID
}

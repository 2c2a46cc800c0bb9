package middleware

import (
	"context"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyRequestID ctxKey = "req_id"
	ctxKeyHTMX      ctxKey = "htmx"
	ctxKeySession   ctxKey = "session"
	ctxKeyLocaleFB  ctxKey = "locale_fallback"
	ctxKeyDocLangFB ctxKey = "doc_lang_fallback"
	ctxKeyRequest   ctxKey = "request_info"
)

// WithRequestID stores request id in context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestID gets request id from context
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRequestID).(string)
	return v, ok
}

// requestInfo is filled in by handlers and read back by the request logger.
type requestInfo struct {
	page string
}

func withRequestInfo(ctx context.Context) (context.Context, *requestInfo) {
	info := &requestInfo{}
	return context.WithValue(ctx, ctxKeyRequest, info), info
}

// SetPageID records the page a request resolved to.
func SetPageID(ctx context.Context, page string) {
	if info, ok := ctx.Value(ctxKeyRequest).(*requestInfo); ok {
		info.page = page
	}
}

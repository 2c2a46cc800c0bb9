package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"inserview.studio/web/internal/observability"
)

// Logger attaches a request scoped zap logger to the context and emits one
// entry per request. When metrics is non-nil the request is also counted.
func Logger(base *zap.Logger, metrics *observability.Metrics) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rid := chiMid.GetReqID(r.Context())
			reqLogger := base.With(zap.String("request_id", rid))

			ctx := observability.WithLogger(r.Context(), reqLogger)
			if rid != "" {
				ctx = WithRequestID(ctx, rid)
			}
			ctx, info := withRequestInfo(ctx)

			rw := chiMid.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(rw, r.WithContext(ctx))

			status := rw.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			metrics.ObserveRequest(r.Method, status, elapsed.Seconds())

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", elapsed),
				zap.String("remote_ip", ClientIP(r)),
				zap.Bool("htmx", IsHTMX(r.Context())),
			}
			if info.page != "" {
				fields = append(fields, zap.String("page", info.page))
			}
			switch {
			case status >= 500:
				reqLogger.Error("request", fields...)
			case status >= 400:
				reqLogger.Warn("request", fields...)
			default:
				reqLogger.Info("request", fields...)
			}
		})
	}
}

// ClientIP returns the best guess of the caller's address.
func ClientIP(r *http.Request) string {
	// the proxy appends the caller, so the last hop is the client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		p := strings.Split(xff, ",")
		return strings.TrimSpace(p[len(p)-1])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		return host[:i]
	}
	return host
}

// RemoteIP is the address of the peer as recorded in RemoteAddr, which only
// reflects forwarding headers when chi's RealIP ran in front of it. Use it
// for anything a client must not be able to choose, such as rate limit keys.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// HTMXRequest carries the htmx request headers a handler cares about.
type HTMXRequest struct {
	Enabled        bool
	CurrentURL     string
	HistoryRestore bool
	Target         string
}

// CurrentPath is the path of HX-Current-URL, or "" when absent or unparsable.
func (h HTMXRequest) CurrentPath() string {
	if h.CurrentURL == "" {
		return ""
	}
	u, err := url.Parse(h.CurrentURL)
	if err != nil {
		return ""
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

// HTMX marks requests coming from htmx so handlers/middlewares can adapt responses
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := HTMXRequest{Enabled: r.Header.Get("HX-Request") == "true"}
		if req.Enabled {
			req.CurrentURL = r.Header.Get("HX-Current-URL")
			req.HistoryRestore = r.Header.Get("HX-History-Restore-Request") == "true"
			req.Target = r.Header.Get("HX-Target")
		}
		w.Header().Add("Vary", "HX-Request")
		next.ServeHTTP(w, r.WithContext(WithHTMX(r.Context(), req)))
	})
}

// WithHTMX stores htmx request details
func WithHTMX(ctx context.Context, req HTMXRequest) context.Context {
	return context.WithValue(ctx, ctxKeyHTMX, req)
}

// HTMXFrom returns the htmx details of the request
func HTMXFrom(ctx context.Context) HTMXRequest {
	v, _ := ctx.Value(ctxKeyHTMX).(HTMXRequest)
	return v
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	return HTMXFrom(ctx).Enabled
}

// TriggerEvents sets HX-Trigger with the given events and their details.
func TriggerEvents(w http.ResponseWriter, events map[string]any) {
	if len(events) == 0 {
		return
	}
	b, err := json.Marshal(events)
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(b))
}

// Location asks htmx to perform a client side navigation to path.
func Location(w http.ResponseWriter, path string) {
	w.Header().Set("HX-Location", path)
}

// IsNavigation reports whether r is the visitor moving to a page, as opposed
// to a subresource fetch (icons, robots.txt, images) that happens to hit a
// page route. htmx requests always count.
func IsNavigation(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	if mode := r.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	if dest := r.Header.Get("Sec-Fetch-Dest"); dest != "" {
		return dest == "document" || dest == "iframe"
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

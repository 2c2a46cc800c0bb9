package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"inserview.studio/web/internal/i18n"
)

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	sessions := NewSessions("test-key", false)
	assert.False(t, sessions.Ephemeral())

	var firstID string
	h := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		if firstID == "" {
			firstID = s.ID
			s.SetFlash("success", "sent")
		}
		_, _ = w.Write([]byte(s.ID))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := cookieNamed(rec, sessionCookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	var flash *Toast
	sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flash = GetSession(r).TakeFlash()
		_, _ = w.Write([]byte(GetSession(r).ID))
	})).ServeHTTP(rec, req)
	assert.Equal(t, firstID, rec.Body.String())
	require.NotNil(t, flash)
	assert.Equal(t, "sent", flash.Message)
	assert.NotNil(t, cookieNamed(rec, sessionCookieName), "taking the flash rewrites the cookie")

	// a cookie signed with another key is ignored
	other := NewSessions("other-key", false)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	other.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetSession(r).ID))
	})).ServeHTTP(rec, req)
	assert.NotEqual(t, firstID, rec.Body.String())
}

func TestEphemeralSessionKey(t *testing.T) {
	assert.True(t, NewSessions("", true).Ephemeral())
}

func csrfChain(next http.Handler) http.Handler {
	return NewSessions("k", false).Middleware(HTMX(CSRF(false)(next)))
}

func TestCSRFAcceptsFormFieldAndHeader(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	// first GET issues the session and csrf cookies
	rec := httptest.NewRecorder()
	var token string
	csrfChain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = CSRFToken(r)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, token)
	session := cookieNamed(rec, sessionCookieName)
	csrfCookie := cookieNamed(rec, csrfCookieName)
	require.NotNil(t, session)
	require.NotNil(t, csrfCookie)
	assert.Equal(t, token, csrfCookie.Value)

	form := url.Values{CSRFFormField: {token}, "name": {"kim"}}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(session)
	req.AddCookie(csrfCookie)
	rec = httptest.NewRecorder()
	csrfChain(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.Header.Set(csrfHeaderName, token)
	req.AddCookie(session)
	req.AddCookie(csrfCookie)
	rec = httptest.NewRecorder()
	csrfChain(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set(csrfHeaderName, "forged")
	req.AddCookie(session)
	req.AddCookie(csrfCookie)
	rec = httptest.NewRecorder()
	csrfChain(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid CSRF token", body["error"])
}

func testBundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ko.json"), []byte(`{"k":"v"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"k":"v"}`), 0o600))
	b, err := i18n.Load(dir, "ko", []string{"ko", "en"})
	require.NoError(t, err)
	return b
}

func TestLocaleResolution(t *testing.T) {
	bundle := testBundle(t)
	var got, doc string
	h := NewSessions("k", false).Middleware(Locale(bundle)(DocLanguage("ko")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = Lang(r)
		doc = DocLang(r)
	}))))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "en", got)
	assert.Equal(t, "ko", doc)
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?hl=ko&doc_lang=en", nil))
	assert.Equal(t, "ko", got)
	assert.Equal(t, "en", doc)
	assert.Equal(t, "ko", cookieNamed(rec, localeCookieName).Value)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?hl=ja&doc_lang=fr", nil))
	assert.Equal(t, "ko", got, "unsupported hl falls back")
	assert.Equal(t, "ko", doc)
}

func TestHTMXCurrentPath(t *testing.T) {
	var got HTMXRequest
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = HTMXFrom(r.Context())
		TriggerEvents(w, map[string]any{"nav:close": true})
		Location(w, "/")
	}))
	req := httptest.NewRequest(http.MethodGet, "/navigate/contact", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Current-URL", "https://inserview.studio/privacy/job-clipper?doc_lang=en#top")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, got.Enabled)
	assert.Equal(t, "/privacy/job-clipper", got.CurrentPath())
	assert.JSONEq(t, `{"nav:close":true}`, rec.Header().Get("HX-Trigger"))
	assert.Equal(t, "/", rec.Header().Get("HX-Location"))
	assert.Equal(t, "", HTMXRequest{}.CurrentPath())
}

func TestIsNavigation(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{"browser navigation", map[string]string{"Sec-Fetch-Mode": "navigate", "Accept": "text/html"}, true},
		{"htmx", map[string]string{"HX-Request": "true", "Sec-Fetch-Mode": "cors"}, true},
		{"touch icon", map[string]string{"Sec-Fetch-Dest": "image", "Accept": "image/avif,*/*"}, false},
		{"image fetch", map[string]string{"Sec-Fetch-Mode": "no-cors", "Accept": "text/html"}, false},
		{"frame", map[string]string{"Sec-Fetch-Dest": "iframe"}, true},
		{"plain client asking for html", map[string]string{"Accept": "text/html,application/xhtml+xml"}, true},
		{"crawler robots.txt", map[string]string{"Accept": "text/plain"}, false},
		{"no hints", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/apple-touch-icon.png", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, IsNavigation(req))
		})
	}
}

func TestLoggerRecordsPage(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Logger(zap.New(core), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetPageID(r.Context(), "home")
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 203.0.113.9")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "home", fields["page"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, "203.0.113.9", fields["remote_ip"])
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestRemoteIPIgnoresForwardingHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.RemoteAddr = "198.51.100.7:51234"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "198.51.100.7", RemoteIP(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", RemoteIP(req))

	req.RemoteAddr = "203.0.113.4"
	assert.Equal(t, "203.0.113.4", RemoteIP(req))
}

func TestAssetsETag(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.css"), []byte("body{}"), 0o600))
	h := http.StripPrefix("/assets", AssetsWithCache(dir, false))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("body{}")))

	req := httptest.NewRequest(http.MethodGet, "/assets/site.css", nil)
	req.Header.Set("If-None-Match", `"other", `+etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = httptest.NewRecorder()
	http.StripPrefix("/assets", AssetsWithCache(dir, true)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/site.css", nil))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

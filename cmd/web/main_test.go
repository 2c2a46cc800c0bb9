package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inserview.studio/web/internal/config"
	"inserview.studio/web/internal/contact"
	"inserview.studio/web/internal/navigation"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []contact.TemplateParams
}

func (f *fakeSender) Configured() bool { return true }

func (f *fakeSender) Send(_ context.Context, p contact.TemplateParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	return nil
}

// newTestApp builds the app against the repository's templates, content and
// locales with an in-memory location store.
func newTestApp(t *testing.T, env map[string]string, opts ...appOption) *app {
	t.Helper()
	values := map[string]string{
		"WEB_TEMPLATES_DIR":       "../../templates",
		"WEB_PUBLIC_DIR":          "../../public",
		"WEB_CONTENT_DIR":         "../../content",
		"WEB_LOCALES_DIR":         "../../locales",
		"WEB_SESSION_SIGNING_KEY": "test-signing-key",
		"WEB_BASE_URL":            "https://inserview.studio",
	}
	for k, v := range env {
		values[k] = v
	}
	cfg, err := config.Load(config.WithEnvFile(""), config.WithoutSystemEnv(), config.WithEnvMap(values))
	require.NoError(t, err)

	opts = append([]appOption{withRepository(navigation.NewMemoryRepository(0))}, opts...)
	a, err := newApp(context.Background(), cfg, nil, opts...)
	require.NoError(t, err)
	return a
}

// browser replays cookies between requests like a real client.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
	current string
}

func newBrowser(t *testing.T, h http.Handler) *browser {
	return &browser{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

// visit loads a page the way a browser navigation would.
func (b *browser) visit(target string) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	rec := b.do(req)
	b.current = target
	return rec
}

// htmx issues an htmx request from the page last visited.
func (b *browser) htmx(method, target string, body url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("HX-Request", "true")
	if b.current != "" {
		req.Header.Set("HX-Current-URL", "https://inserview.studio"+b.current)
	}
	if c, ok := b.cookies["csrf_token"]; ok {
		req.Header.Set("X-CSRF-Token", c.Value)
	}
	return b.do(req)
}

func parseDoc(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	return doc
}

func triggers(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	raw := rec.Header().Get("HX-Trigger")
	if raw == "" {
		return nil
	}
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestHealthzOK(t *testing.T) {
	srv := newTestApp(t, nil).routes()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestHomeRendersSectionsAndNav(t *testing.T) {
	srv := newTestApp(t, nil).routes()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	doc := parseDoc(t, rec)
	for _, id := range navigation.HomeSections {
		require.Equal(t, 1, doc.Find("#"+id).Length(), "section %s should render", id)
	}
	link := doc.Find(`.nav-items a[data-nav-section="contact"]`)
	require.Equal(t, 1, link.Length())
	assert.Equal(t, "/navigate/contact", link.AttrOr("hx-get", ""))
	assert.Equal(t, "/#contact", link.AttrOr("href", ""))
	assert.Equal(t, "Contact", strings.TrimSpace(link.Text()))
	assert.Equal(t, "en", doc.Find("html").AttrOr("lang", ""))
	assert.Equal(t, 1, doc.Find(`#contact-form input[name="_csrf"]`).Length())
	assert.Equal(t, 2, doc.Find(`script[type="application/ld+json"]`).Length())
	_, scrolled := doc.Find("main").Attr("data-scroll-target")
	assert.False(t, scrolled)
}

func TestNotFoundOffersOnlyHome(t *testing.T) {
	srv := newTestApp(t, nil).routes()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	doc := parseDoc(t, rec)
	actions := doc.Find("[data-notfound] a")
	require.Equal(t, 1, actions.Length(), "the 404 view has exactly one action")
	assert.Equal(t, "/", actions.AttrOr("href", ""))
	assert.Equal(t, "페이지를 찾을 수 없습니다.", strings.TrimSpace(doc.Find("[data-notfound] h1").Text()))
	assert.Equal(t, "noindex,follow", doc.Find(`meta[name="robots"]`).AttrOr("content", ""))
}

func TestTrailingSlashResolvesToSamePage(t *testing.T) {
	srv := newTestApp(t, nil).routes()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/terms/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "terms", parseDoc(t, rec).Find("[data-legal]").AttrOr("data-legal", ""))
}

func TestNavigateScrollsOnCurrentPage(t *testing.T) {
	b := newBrowser(t, newTestApp(t, nil).routes())
	require.Equal(t, http.StatusOK, b.visit("/").Code)

	rec := b.htmx(http.MethodGet, "/navigate/contact", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("HX-Location"))
	events := triggers(t, rec)
	require.Contains(t, events, "nav:scroll")
	require.Contains(t, events, "nav:close")
	assert.JSONEq(t, `{"id":"contact"}`, string(events["nav:scroll"]))
}

func TestNavigateFromOtherPageScrollsAfterRender(t *testing.T) {
	b := newBrowser(t, newTestApp(t, nil).routes())
	require.Equal(t, http.StatusOK, b.visit("/privacy").Code)

	rec := b.htmx(http.MethodGet, "/navigate/contact", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("HX-Location"))
	events := triggers(t, rec)
	assert.NotContains(t, events, "nav:scroll")
	assert.Contains(t, events, "nav:close")

	// htmx follows HX-Location with a request for the home page
	rec = b.htmx(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "contact", parseDoc(t, rec).Find("main").AttrOr("data-scroll-target", ""))
	b.current = "/"

	// the pending anchor fires once
	rec = b.visit("/")
	_, again := parseDoc(t, rec).Find("main").Attr("data-scroll-target")
	assert.False(t, again)
}

func TestSubresourceFetchKeepsPendingAnchor(t *testing.T) {
	b := newBrowser(t, newTestApp(t, nil).routes())
	b.visit("/privacy")
	rec := b.htmx(http.MethodGet, "/navigate/contact", nil)
	require.Equal(t, "/", rec.Header().Get("HX-Location"))

	// the browser looks for icons while the navigation is in flight
	for _, p := range []string{"/apple-touch-icon.png", "/robots.txt"} {
		req := httptest.NewRequest(http.MethodGet, p, nil)
		req.Header.Set("Sec-Fetch-Dest", "image")
		req.Header.Set("Accept", "image/avif,image/webp,*/*")
		require.Equal(t, http.StatusNotFound, b.do(req).Code)
	}

	rec = b.htmx(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "contact", parseDoc(t, rec).Find("main").AttrOr("data-scroll-target", ""))
}

func TestNavigateWithoutHTMXRedirectsHome(t *testing.T) {
	b := newBrowser(t, newTestApp(t, nil).routes())
	b.visit("/terms")

	rec := b.do(httptest.NewRequest(http.MethodGet, "/navigate/services", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = b.visit("/")
	assert.Equal(t, "services", parseDoc(t, rec).Find("main").AttrOr("data-scroll-target", ""))
}

func TestNavigateToMissingSectionOnHomeIsNoop(t *testing.T) {
	b := newBrowser(t, newTestApp(t, nil).routes())
	b.visit("/")

	rec := b.htmx(http.MethodGet, "/navigate/pricing", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("HX-Location"))
	assert.Empty(t, rec.Header().Get("HX-Trigger"))
}

func TestHistoryNavigationDropsPendingAnchor(t *testing.T) {
	b := newBrowser(t, newTestApp(t, nil).routes())
	b.visit("/cookie-policy")
	rec := b.htmx(http.MethodGet, "/navigate/about", nil)
	require.Equal(t, "/", rec.Header().Get("HX-Location"))

	// the visitor typed another URL before the home page rendered
	b.visit("/terms")
	rec = b.visit("/")
	_, scrolled := parseDoc(t, rec).Find("main").Attr("data-scroll-target")
	assert.False(t, scrolled)
}

func TestNavigateReconcilesCurrentURL(t *testing.T) {
	b := newBrowser(t, newTestApp(t, nil).routes())
	b.visit("/privacy")
	// back button restored the home page from the client cache
	b.current = "/"

	rec := b.htmx(http.MethodGet, "/navigate/portfolio", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("HX-Location"))
	assert.JSONEq(t, `{"id":"portfolio"}`, string(triggers(t, rec)["nav:scroll"]))
}

func TestLegalProductAndLanguage(t *testing.T) {
	b := newBrowser(t, newTestApp(t, nil).routes())

	rec := b.visit("/privacy/job-clipper?doc_lang=en")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseDoc(t, rec)
	article := doc.Find("article.legal")
	assert.Equal(t, "job-clipper", article.AttrOr("data-product", ""))
	assert.Equal(t, "en", article.AttrOr("lang", ""))
	assert.Equal(t, 2, doc.Find("[data-product-switcher] a").Length())
	assert.Equal(t, "/privacy/job-clipper", doc.Find("[data-product-switcher] a.active").AttrOr("href", ""))
	assert.Greater(t, doc.Find(".toc li").Length(), 0)
	assert.Equal(t, 1, doc.Find(`[data-footer-legal] a.active[href="/privacy"]`).Length())

	// the language choice sticks without being part of the URL
	rec = b.visit("/privacy")
	doc = parseDoc(t, rec)
	assert.Equal(t, "en", doc.Find("article.legal").AttrOr("lang", ""))
	assert.Equal(t, "inserview", doc.Find("article.legal").AttrOr("data-product", ""))

	// unknown products fall back to the studio
	rec = b.visit("/cookie-policy/unknown")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "inserview", parseDoc(t, rec).Find("article.legal").AttrOr("data-product", ""))

	rec = b.visit("/terms")
	assert.Equal(t, 0, parseDoc(t, rec).Find("[data-product-switcher]").Length())
}

func TestProjectPages(t *testing.T) {
	srv := newTestApp(t, nil).routes()
	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/project/job-clipper")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseDoc(t, rec)
	assert.Equal(t, "overview", doc.Find("[data-project]").AttrOr("data-tab", ""))
	assert.Equal(t, 1, doc.Find("#overview").Length())
	assert.Equal(t, "Job Clipper", strings.TrimSpace(doc.Find(".breadcrumbs li").Last().Text()))

	rec = get("/project/job-clipper/support")
	doc = parseDoc(t, rec)
	assert.Equal(t, "support", doc.Find("[data-project]").AttrOr("data-tab", ""))
	assert.Greater(t, doc.Find("details.faq").Length(), 0)

	rec = get("/project/job-clipper/changelog")
	assert.Equal(t, "overview", parseDoc(t, rec).Find("[data-project]").AttrOr("data-tab", ""))

	rec = get("/project/unknown")
	require.Equal(t, http.StatusNotFound, rec.Code)
	doc = parseDoc(t, rec)
	back := doc.Find("[data-project-missing] a")
	require.Equal(t, 1, back.Length())
	assert.Equal(t, "/navigate/portfolio", back.AttrOr("hx-get", ""))
}

func contactForm() url.Values {
	return url.Values{
		"name":    {"Kim"},
		"email":   {"kim@example.com"},
		"service": {"web-development"},
		"message": {"안녕하세요"},
	}
}

func TestContactHTMXReturnsToast(t *testing.T) {
	sender := &fakeSender{}
	b := newBrowser(t, newTestApp(t, map[string]string{"WEB_CONTACT_RECIPIENT": "owner@example.com"}, withSender(sender)).routes())
	b.visit("/")

	rec := b.htmx(http.MethodPost, "/contact", contactForm())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	toast := parseDoc(t, rec).Find("[data-toast]")
	assert.Equal(t, "success", toast.AttrOr("data-toast", ""))
	assert.Contains(t, triggers(t, rec), "contact:sent")
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "owner@example.com", sender.sent[0].ToEmail)
	assert.Equal(t, contact.PhonePlaceholder, sender.sent[0].Phone)

	form := contactForm()
	form.Set("email", "nope")
	rec = b.htmx(http.MethodPost, "/contact", form)
	assert.Equal(t, "error", parseDoc(t, rec).Find("[data-toast]").AttrOr("data-toast", ""))
	assert.Len(t, sender.sent, 1)
}

func TestContactRateLimitIgnoresForwardedFor(t *testing.T) {
	sender := &fakeSender{}
	b := newBrowser(t, newTestApp(t, map[string]string{
		"WEB_CONTACT_PER_MINUTE": "1",
		"WEB_CONTACT_BURST":      "1",
	}, withSender(sender)).routes())
	b.visit("/")

	for i := 1; i <= 5; i++ {
		body := contactForm()
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("HX-Request", "true")
		req.Header.Set("X-CSRF-Token", b.cookies["csrf_token"].Value)
		req.Header.Set("X-Forwarded-For", "10.0.0."+strconv.Itoa(i))
		req.Header.Set("X-Real-IP", "10.0.1."+strconv.Itoa(i))
		rec := b.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		if i > 1 {
			assert.Equal(t, "error", parseDoc(t, rec).Find("[data-toast]").AttrOr("data-toast", ""))
		}
	}
	assert.Len(t, sender.sent, 1)
}

func TestContactFormPostFlashesToast(t *testing.T) {
	sender := &fakeSender{}
	b := newBrowser(t, newTestApp(t, nil, withSender(sender)).routes())
	doc := parseDoc(t, b.visit("/"))
	token := doc.Find(`#contact-form input[name="_csrf"]`).AttrOr("value", "")
	require.NotEmpty(t, token)

	form := contactForm()
	form.Set("_csrf", token)
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := b.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/#contact", rec.Header().Get("Location"))

	doc = parseDoc(t, b.visit("/"))
	assert.Equal(t, 1, doc.Find("#toast-region [data-toast=success]").Length())
	doc = parseDoc(t, b.visit("/"))
	assert.Equal(t, 0, doc.Find("#toast-region [data-toast]").Length(), "the flash is shown once")
}

func TestContactRejectsMissingCSRF(t *testing.T) {
	b := newBrowser(t, newTestApp(t, nil, withSender(&fakeSender{})).routes())
	b.visit("/")
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(contactForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusForbidden, b.do(req).Code)
}

func TestContactNotConfigured(t *testing.T) {
	b := newBrowser(t, newTestApp(t, nil).routes())
	b.visit("/")
	rec := b.htmx(http.MethodPost, "/contact", contactForm())
	require.Equal(t, http.StatusOK, rec.Code)
	toast := parseDoc(t, rec).Find("[data-toast]")
	assert.Equal(t, "error", toast.AttrOr("data-toast", ""))
	assert.Contains(t, toast.Text(), "설정")
}

func TestSitemapListsBrowsablePaths(t *testing.T) {
	srv := newTestApp(t, nil).routes()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, p := range []string{"/", "/privacy", "/privacy/job-clipper", "/terms", "/cookie-policy/job-clipper", "/project/job-clipper/support"} {
		assert.Contains(t, body, "<loc>https://inserview.studio"+p+"</loc>")
	}
	assert.NotContains(t, body, "/terms/job-clipper")
}

func TestMetricsCountPageViews(t *testing.T) {
	srv := newTestApp(t, nil).routes()
	srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `web_page_views_total{page="home"} 1`)
	assert.Contains(t, body, `web_page_views_total{page="not-found"} 1`)

	off := newTestApp(t, map[string]string{"WEB_METRICS_ENABLED": "false"}).routes()
	rec = httptest.NewRecorder()
	off.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "falls through to the not-found page")
}

func TestCLIRoutesAndResolve(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"routes"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "/project/:projectId/:tab?")
	assert.Contains(t, out.String(), "not-found")
	assert.Contains(t, out.String(), "projectId,tab?")
	assert.Contains(t, out.String(), "product?")

	out.Reset()
	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"resolve", "/privacy/job-clipper/?x=1"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "page:    privacy")
	assert.Contains(t, out.String(), "params:  product=job-clipper")
}

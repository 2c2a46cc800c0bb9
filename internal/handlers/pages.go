package handlers

import (
	"time"

	"inserview.studio/web/internal/middleware"
	"inserview.studio/web/internal/nav"
	"inserview.studio/web/internal/routing"
	"inserview.studio/web/internal/seo"
	"inserview.studio/web/internal/showcase"
)

// PageData is the view model for every page rendered with the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SEO       seo.Meta
	Analytics Analytics

	Path        string
	Page        routing.PageID
	Nav         []nav.RenderedItem
	Footer      nav.Footer
	Breadcrumbs []nav.Crumb

	CSRFToken string
	Toast     *middleware.Toast
	// ScrollTarget is the section the client scrolls to once the page has
	// loaded. It carries a pending anchor across a page change.
	ScrollTarget string
	Year         int

	// Per-page payloads; exactly one is set for a found page.
	Home    *HomeView
	Legal   *LegalView
	Project *ProjectView
}

// Layout collects what every page needs regardless of its content.
type Layout struct {
	Lang         string
	Path         string
	Match        routing.Match
	ScrollTarget string
	Analytics    Analytics
	CSRFToken    string
	Toast        *middleware.Toast
	Now          time.Time
}

// BuildPage fills the layout fields shared by all pages.
func BuildPage(l Layout) PageData {
	if l.Now.IsZero() {
		l.Now = time.Now()
	}
	return PageData{
		Lang:         l.Lang,
		Analytics:    l.Analytics,
		Path:         l.Path,
		Page:         l.Match.Page,
		Nav:          nav.Build(l.ScrollTarget),
		Footer:       nav.BuildFooter(l.Path, serviceTitles()),
		Breadcrumbs:  nav.Breadcrumbs(l.Path, l.Match),
		CSRFToken:    l.CSRFToken,
		Toast:        l.Toast,
		ScrollTarget: l.ScrollTarget,
		Year:         l.Now.Year(),
	}
}

// NotFound reports whether the page is the 404 view.
func (p PageData) NotFound() bool { return p.Page == routing.PageNotFound }

func serviceTitles() []string {
	services := showcase.Services()
	out := make([]string, 0, len(services))
	for _, s := range services {
		out = append(out, s.Title)
	}
	return out
}

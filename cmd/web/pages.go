package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"inserview.studio/web/internal/handlers"
	"inserview.studio/web/internal/legal"
	mw "inserview.studio/web/internal/middleware"
	"inserview.studio/web/internal/nav"
	"inserview.studio/web/internal/navigation"
	"inserview.studio/web/internal/observability"
	"inserview.studio/web/internal/routing"
	"inserview.studio/web/internal/seo"
)

// handlePage renders whatever page the route table resolves the path to.
// The request doubles as the destination render of an earlier navigation,
// so a pending anchor becomes the page's scroll target.
func (a *app) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)
	path := routing.Canonical(r.URL.Path)
	m := a.table.Resolve(path)
	lang := mw.Lang(r)
	docLang := mw.DocLang(r)
	sess := mw.GetSession(r)
	mw.SetPageID(ctx, string(m.Page))

	idx, err := a.sections.get(ctx, lang, docLang, path, m)
	if err != nil {
		logger.Warn("index page sections", zap.String("path", path), zap.Error(err))
	}
	vp := navigation.NewRecorder(idx)
	// subresource fetches that land on a page route must not move the visitor
	// or consume its flash
	var toast *mw.Toast
	if mw.IsNavigation(r) {
		toast = sess.TakeFlash()
		if _, err := a.store.Visit(ctx, sess.ID, path, vp); err != nil {
			logger.Error("record visit", zap.Error(err))
		}
	}
	if vp.LastScroll() != "" {
		a.countIntent(navigation.PathChange.String(), "mounted")
	}

	pd, status, err := a.pageData(ctx, handlers.Layout{
		Lang:         lang,
		Path:         path,
		Match:        m,
		ScrollTarget: vp.LastScroll(),
		CSRFToken:    mw.CSRFToken(r),
		Toast:        toast,
	}, docLang)
	if err != nil {
		logger.Error("build page", zap.String("page", string(m.Page)), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	a.metrics.PageViews.WithLabelValues(string(m.Page)).Inc()
	a.views.render(w, r, status, "base", pd)
}

// pageData builds the view model and response status for a resolved page.
func (a *app) pageData(ctx context.Context, l handlers.Layout, docLang string) (handlers.PageData, int, error) {
	l.Analytics = a.analytics
	pd := handlers.BuildPage(l)
	lang := l.Lang
	status := http.StatusOK
	title := a.bundle.T(lang, "site.title")
	description := a.bundle.T(lang, "site.description")
	var jsonld []any

	switch l.Match.Page {
	case routing.PageHome:
		pd.Home = handlers.BuildHome()
		pd.Title = title
		base := seo.Absolute(a.cfg.Site.BaseURL, "/")
		jsonld = append(jsonld,
			seo.Organization(seo.SiteName, base, seo.Absolute(a.cfg.Site.BaseURL, "/assets/favicon.svg"), socialProfiles()),
			seo.WebSite(seo.SiteName, base, lang),
		)

	case routing.PagePrivacy, routing.PageTerms, routing.PageCookiePolicy:
		kind, _ := legal.KindForPage(l.Match.Page)
		product := legal.ProductFromParam(l.Match.Params.Get(routing.ParamProduct))
		if a.cfg.Site.DevMode {
			// edits under content/ show up on reload, like templates
			a.library.Purge()
		}
		doc, err := a.library.Get(ctx, kind, product, docLang)
		if err != nil {
			return pd, 0, fmt.Errorf("load %s/%s: %w", kind, product, err)
		}
		pd.Legal = handlers.BuildLegal(doc, l.Path)
		pd.Title = doc.Title + " | " + title
		if doc.Summary != "" {
			description = doc.Summary
		}
		jsonld = append(jsonld, seo.WebPage(doc.Title, seo.Absolute(a.cfg.Site.BaseURL, l.Path), doc.Lang, pd.Legal.ISOUpdatedAt))

	case routing.PageProject:
		pv := handlers.BuildProject(l.Match.Params)
		pd.Project = pv
		if !pv.Found {
			status = http.StatusNotFound
			pd.Title = a.bundle.T(lang, "project.not_found.title") + " | " + title
			break
		}
		pd.Title = pv.Project.Title + " | " + title
		description = pv.Project.Summary.In(lang)
		if len(pd.Breadcrumbs) > 2 {
			pd.Breadcrumbs[2].Label = pv.Project.Title
		}
		jsonld = append(jsonld, seo.SoftwareApplication(
			pv.Project.Title,
			description,
			seo.Absolute(a.cfg.Site.BaseURL, "/project/"+pv.Project.ID),
			"BrowserApplication",
			seo.Absolute(a.cfg.Site.BaseURL, pv.Project.Image),
		))

	default:
		status = http.StatusNotFound
		pd.Title = a.bundle.T(lang, "notfound.title") + " | " + title
	}

	pd.SEO = seo.New(a.cfg.Site.BaseURL, l.Path, pd.Title, description, lang, a.bundle.Supported())
	if status == http.StatusNotFound {
		pd.SEO.NoIndex()
		pd.SEO.Alternates = nil
	}
	if l.Match.Page != routing.PageHome && status == http.StatusOK {
		jsonld = append(jsonld, seo.BreadcrumbList(a.breadcrumbItems(lang, pd)))
	}
	for _, v := range jsonld {
		pd.SEO.AddJSONLD(v)
	}
	return pd, status, nil
}

func (a *app) breadcrumbItems(lang string, pd handlers.PageData) []seo.BreadcrumbItem {
	items := make([]seo.BreadcrumbItem, 0, len(pd.Breadcrumbs))
	for _, c := range pd.Breadcrumbs {
		name := c.Label
		if c.LabelKey != "" {
			name = a.bundle.T(lang, c.LabelKey)
		}
		items = append(items, seo.BreadcrumbItem{Name: name, Item: seo.Absolute(a.cfg.Site.BaseURL, c.Href)})
	}
	return items
}

func socialProfiles() []string {
	var out []string
	for _, l := range nav.Socials {
		if l.External {
			out = append(out, l.Href)
		}
	}
	return out
}

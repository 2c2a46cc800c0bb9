package main

import (
	"encoding/xml"
	"net/http"
	"strings"

	"inserview.studio/web/internal/legal"
	"inserview.studio/web/internal/routing"
	"inserview.studio/web/internal/seo"
	"inserview.studio/web/internal/showcase"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// sitemapPaths expands the route table into concrete, browsable paths.
func sitemapPaths(table *routing.Table) []string {
	var out []string
	for _, rt := range table.Routes() {
		if rt.IsWildcard() {
			continue
		}
		switch rt.Page {
		case routing.PagePrivacy, routing.PageTerms, routing.PageCookiePolicy:
			kind, _ := legal.KindForPage(rt.Page)
			base := literalPrefix(rt)
			out = append(out, base)
			for _, p := range legal.Products(kind) {
				if p != legal.ProductInserview {
					out = append(out, base+"/"+string(p))
				}
			}
		case routing.PageProject:
			for _, id := range showcase.ProjectIDs() {
				for _, tab := range showcase.Tabs {
					p := "/project/" + id
					if tab != showcase.TabOverview {
						p += "/" + string(tab)
					}
					out = append(out, p)
				}
			}
		default:
			out = append(out, literalPrefix(rt))
		}
	}
	return out
}

func literalPrefix(rt routing.Route) string {
	var parts []string
	for _, s := range rt.Segments() {
		if s.Kind != routing.Literal {
			break
		}
		parts = append(parts, s.Value)
	}
	return "/" + strings.Join(parts, "/")
}

func (a *app) handleSitemap(w http.ResponseWriter, r *http.Request) {
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range sitemapPaths(a.table) {
		set.URLs = append(set.URLs, sitemapURL{Loc: seo.Absolute(a.cfg.Site.BaseURL, p)})
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	_ = enc.Encode(set)
}

package seo

import (
	"net/url"
	"strings"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

type Twitter struct {
	Card  string
	Site  string
	Image string
}

// Alternate is a hreflang link to the same page in another language.
type Alternate struct {
	Href     string
	Hreflang string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	Alternates  []Alternate
	JSONLD      []string
}

// SiteName is the brand used in titles and structured data.
const SiteName = "Inserview Studio"

// Absolute joins baseURL and p. Query strings on p are kept and absolute
// URLs are returned unchanged.
func Absolute(baseURL, p string) string {
	if strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "http://") {
		return p
	}
	base := strings.TrimRight(baseURL, "/")
	if p == "" || p == "/" {
		return base + "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return base + p
}

// New fills the common tags for a page at path. lang is the UI language and
// langs the languages the page can be requested in with `hl`.
func New(baseURL, path, title, description, lang string, langs []string) Meta {
	canonical := Absolute(baseURL, path)
	m := Meta{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		Robots:      "index,follow",
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Image:       Absolute(baseURL, "/assets/og-image.png"),
			Type:        "website",
			URL:         canonical,
			SiteName:    SiteName,
			Locale:      ogLocale(lang),
		},
		Twitter: Twitter{
			Card:  "summary_large_image",
			Site:  "@inserviewstudio",
			Image: Absolute(baseURL, "/assets/og-image.png"),
		},
	}
	for _, l := range langs {
		m.Alternates = append(m.Alternates, Alternate{
			Href:     canonical + "?" + url.Values{"hl": {l}}.Encode(),
			Hreflang: l,
		})
	}
	return m
}

// NoIndex marks the page as excluded from search engines.
func (m *Meta) NoIndex() { m.Robots = "noindex,follow" }

// AddJSONLD appends a structured data payload. Payloads that fail to marshal
// are dropped.
func (m *Meta) AddJSONLD(v any) {
	if s := JSON(v); s != "" {
		m.JSONLD = append(m.JSONLD, s)
	}
}

func ogLocale(lang string) string {
	if lang == "en" {
		return "en_US"
	}
	return "ko_KR"
}

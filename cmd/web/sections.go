package main

import (
	"bytes"
	"context"
	"sync"

	"go.uber.org/zap"

	"inserview.studio/web/internal/handlers"
	"inserview.studio/web/internal/legal"
	"inserview.studio/web/internal/navigation"
	"inserview.studio/web/internal/routing"
	"inserview.studio/web/internal/showcase"
)

type sectionBuilder func(ctx context.Context, lang, docLang, path string, m routing.Match) (navigation.SectionIndex, error)

// sectionCache remembers which element ids each rendered page contains, so
// anchor intents can be checked against the page the visitor is looking at.
type sectionCache struct {
	build sectionBuilder
	// disabled while templates are reparsed per request
	bypass bool

	mu      sync.RWMutex
	entries map[string]navigation.SectionIndex
}

func newSectionCache(build sectionBuilder) *sectionCache {
	return &sectionCache{build: build, entries: map[string]navigation.SectionIndex{}}
}

func (c *sectionCache) get(ctx context.Context, lang, docLang, path string, m routing.Match) (navigation.SectionIndex, error) {
	if c.bypass {
		return c.build(ctx, lang, docLang, path, m)
	}
	key := lang + "|" + docLang + "|" + sectionKey(path, m)
	c.mu.RLock()
	idx, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return idx, nil
	}
	idx, err := c.build(ctx, lang, docLang, path, m)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = idx
	c.mu.Unlock()
	return idx, nil
}

// sectionKey collapses paths that render identical markup, so arbitrary
// unmatched URLs cannot grow the cache.
func sectionKey(path string, m routing.Match) string {
	switch m.Page {
	case routing.PagePrivacy, routing.PageTerms, routing.PageCookiePolicy:
		return string(m.Page) + "/" + string(legal.ProductFromParam(m.Params.Get(routing.ParamProduct)))
	case routing.PageProject:
		id := m.Params.Get(routing.ParamProjectID)
		if _, ok := showcase.ProjectByID(id); !ok {
			return string(m.Page) + "/missing"
		}
		return string(m.Page) + "/" + id + "/" + string(showcase.ParseTab(m.Params.Get(routing.ParamTab)))
	case routing.PageHome:
		return path
	default:
		return string(m.Page)
	}
}

// renderSections renders the page without visitor state and indexes its ids.
func (a *app) renderSections(ctx context.Context, lang, docLang, path string, m routing.Match) (navigation.SectionIndex, error) {
	pd, _, err := a.pageData(ctx, handlers.Layout{Lang: lang, Path: path, Match: m}, docLang)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := a.views.execute(&buf, "base", pd); err != nil {
		return nil, err
	}
	idx, err := navigation.IndexSections(&buf)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("indexed page sections",
		zap.String("page", string(m.Page)),
		zap.String("lang", lang),
		zap.Strings("ids", idx.IDs()),
	)
	return idx, nil
}

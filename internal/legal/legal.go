package legal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"inserview.studio/web/internal/routing"
)

// ErrNotFound is returned when no document exists in any fallback language.
var ErrNotFound = errors.New("legal: document not found")

// Kind identifies a legal document family.
type Kind string

const (
	KindPrivacy      Kind = "privacy"
	KindTerms        Kind = "terms"
	KindCookiePolicy Kind = "cookie-policy"
)

// Product selects which product a document covers.
type Product string

const (
	ProductInserview  Product = "inserview"
	ProductJobClipper Product = "job-clipper"
)

// Title is the display name used by the product switcher.
func (p Product) Title() string {
	if p == ProductJobClipper {
		return "Job Clipper"
	}
	return "Inserview Studio"
}

// KindForPage maps a routed page onto its document family.
func KindForPage(page routing.PageID) (Kind, bool) {
	switch page {
	case routing.PagePrivacy:
		return KindPrivacy, true
	case routing.PageTerms:
		return KindTerms, true
	case routing.PageCookiePolicy:
		return KindCookiePolicy, true
	}
	return "", false
}

// ProductFromParam reads the optional :product segment. Anything other than
// job-clipper selects the studio document.
func ProductFromParam(raw string) Product {
	if Product(strings.ToLower(strings.TrimSpace(raw))) == ProductJobClipper {
		return ProductJobClipper
	}
	return ProductInserview
}

// Products lists the product variants published for kind.
func Products(kind Kind) []Product {
	if kind == KindTerms {
		return []Product{ProductInserview}
	}
	return []Product{ProductInserview, ProductJobClipper}
}

// Languages are the document languages in fallback order.
var Languages = []string{"ko", "en"}

// NormalizeLang maps a requested language onto ko or en.
func NormalizeLang(lang string) string {
	if strings.EqualFold(strings.TrimSpace(lang), "en") {
		return "en"
	}
	return "ko"
}

// Heading is one entry of a document's table of contents.
type Heading struct {
	ID    string
	Text  string
	Level int
}

// Document is a rendered legal document.
type Document struct {
	Kind          Kind
	Product       Product
	Lang          string
	RequestedLang string
	Title         string
	Summary       string
	Version       string
	EffectiveDate time.Time
	UpdatedAt     time.Time
	HTML          template.HTML
	Headings      []Heading
}

// Fallback reports whether the document is served in a different language
// than requested.
func (d Document) Fallback() bool { return d.Lang != d.RequestedLang }

type frontMatter struct {
	Title         string `yaml:"title"`
	Summary       string `yaml:"summary"`
	Lang          string `yaml:"lang"`
	Version       string `yaml:"version"`
	EffectiveDate string `yaml:"effective_date"`
	UpdatedAt     string `yaml:"updated_at"`
}

type cacheEntry struct {
	doc     Document
	expires time.Time
}

// Library loads documents from <dir>/<kind>/<lang>/<product>.md.
type Library struct {
	dir    string
	ttl    time.Duration
	now    func() time.Time
	md     goldmark.Markdown
	policy *bluemonday.Policy

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

const defaultCacheTTL = 5 * time.Minute

// NewLibrary returns a library rooted at dir. A non-positive ttl uses the
// default of five minutes.
func NewLibrary(dir string, ttl time.Duration) *Library {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Library{
		dir: dir,
		ttl: ttl,
		now: time.Now,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithAttribute(),
			),
		),
		policy: newDocumentPolicy(),
		cache:  map[string]cacheEntry{},
	}
}

var headingID = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

func newDocumentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").Matching(headingID).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("class").OnElements("p", "span", "table")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Get returns the document for kind and product, trying lang first and then
// ko and en.
func (l *Library) Get(ctx context.Context, kind Kind, product Product, lang string) (Document, error) {
	lang = NormalizeLang(lang)
	key := strings.Join([]string{string(kind), string(product), lang}, "|")
	if doc, ok := l.cached(key); ok {
		return doc, nil
	}

	for _, candidate := range fallbackOrder(lang) {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		doc, err := l.read(kind, product, candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Document{}, err
		}
		doc.RequestedLang = lang
		l.store(key, doc)
		return doc, nil
	}
	return Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, product)
}

// Purge drops all cached documents.
func (l *Library) Purge() {
	l.mu.Lock()
	l.cache = map[string]cacheEntry{}
	l.mu.Unlock()
}

func fallbackOrder(lang string) []string {
	order := []string{lang}
	for _, l := range Languages {
		if l != lang {
			order = append(order, l)
		}
	}
	return order
}

func (l *Library) read(kind Kind, product Product, lang string) (Document, error) {
	file := filepath.Join(l.dir, string(kind), lang, string(product)+".md")
	data, err := os.ReadFile(file)
	if err != nil {
		return Document{}, err
	}

	fm, body := splitFrontMatter(string(data))
	var front frontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Document{}, fmt.Errorf("legal: parse front matter %s: %w", file, err)
		}
	}

	source := []byte(body)
	root := l.md.Parser().Parse(text.NewReader(source))
	var buf bytes.Buffer
	if err := l.md.Renderer().Render(&buf, source, root); err != nil {
		return Document{}, fmt.Errorf("legal: render %s: %w", file, err)
	}

	doc := Document{
		Kind:          kind,
		Product:       product,
		Lang:          firstNonEmpty(strings.TrimSpace(front.Lang), lang),
		Title:         strings.TrimSpace(front.Title),
		Summary:       strings.TrimSpace(front.Summary),
		Version:       strings.TrimSpace(front.Version),
		EffectiveDate: parseDate(front.EffectiveDate),
		UpdatedAt:     parseDate(front.UpdatedAt),
		HTML:          template.HTML(l.policy.SanitizeBytes(buf.Bytes())),
		Headings:      collectHeadings(root, source),
	}
	if doc.Title == "" {
		doc.Title = string(kind)
	}
	if doc.UpdatedAt.IsZero() {
		if info, err := os.Stat(file); err == nil {
			doc.UpdatedAt = info.ModTime()
		}
	}
	return doc, nil
}

// collectHeadings lists level 2 and 3 headings that carry an id.
func collectHeadings(root ast.Node, source []byte) []Heading {
	var out []Heading
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level < 2 || h.Level > 3 {
			return ast.WalkContinue, nil
		}
		raw, ok := h.AttributeString("id")
		if !ok {
			return ast.WalkSkipChildren, nil
		}
		id, ok := raw.([]byte)
		if !ok || !headingID.Match(id) {
			return ast.WalkSkipChildren, nil
		}
		out = append(out, Heading{ID: string(id), Text: headingText(h, source), Level: h.Level})
		return ast.WalkSkipChildren, nil
	})
	return out
}

func headingText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() {
				b.WriteByte(' ')
			}
		default:
			b.WriteString(headingText(c, source))
		}
	}
	return strings.TrimSpace(b.String())
}

func (l *Library) cached(key string) (Document, bool) {
	l.mu.RLock()
	entry, ok := l.cache[key]
	l.mu.RUnlock()
	if !ok || l.now().After(entry.expires) {
		return Document{}, false
	}
	return cloneDocument(entry.doc), true
}

func (l *Library) store(key string, doc Document) {
	l.mu.Lock()
	l.cache[key] = cacheEntry{doc: cloneDocument(doc), expires: l.now().Add(l.ttl)}
	l.mu.Unlock()
}

func cloneDocument(src Document) Document {
	cp := src
	cp.Headings = append([]Heading(nil), src.Headings...)
	return cp
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

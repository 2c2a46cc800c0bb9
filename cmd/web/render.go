package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"inserview.studio/web/internal/format"
	"inserview.studio/web/internal/i18n"
	"inserview.studio/web/internal/observability"
)

// renderer parses templates once, or on every render in dev mode.
type renderer struct {
	dir    string
	dev    bool
	bundle *i18n.Bundle
	cache  *template.Template
}

func newRenderer(dir string, dev bool, bundle *i18n.Bundle) (*renderer, error) {
	r := &renderer{dir: dir, dev: dev, bundle: bundle}
	// parse eagerly even in dev mode so broken templates fail at startup
	t, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.cache = t
	return r, nil
}

func (r *renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"now": time.Now,
		"t": func(lang, key string) string {
			return r.bundle.T(lang, key)
		},
		"fmtDate": format.FmtDate,
		"isoDate": format.ISODate,
		// payloads come from encoding/json, which escapes <, > and &
		"jsonld": func(s string) template.JS { return template.JS(s) },
		"lower":  strings.ToLower,
		"add":    func(a, b int) int { return a + b },
	}
}

func (r *renderer) parse() (*template.Template, error) {
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", r.dir)
	}
	return template.New("_root").Funcs(r.funcs()).ParseFiles(files...)
}

func (r *renderer) templates() (*template.Template, error) {
	if r.dev {
		return r.parse()
	}
	return r.cache, nil
}

// execute runs the named template into w.
func (r *renderer) execute(w io.Writer, name string, data any) error {
	t, err := r.templates()
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}
	return t.ExecuteTemplate(w, name, data)
}

// render buffers the named template so a failing template never leaves a
// half-written page behind, then writes it with status.
func (r *renderer) render(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.execute(&buf, name, data); err != nil {
		observability.FromContext(req.Context()).Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

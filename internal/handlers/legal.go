package handlers

import (
	"net/url"

	"inserview.studio/web/internal/format"
	"inserview.studio/web/internal/legal"
)

// ProductLink is one entry of the legal product switcher.
type ProductLink struct {
	Product legal.Product
	Title   string
	Href    string
	Active  bool
}

// LangLink is one entry of the document language toggle.
type LangLink struct {
	Lang   string
	Href   string
	Active bool
}

// LegalView is the view model for privacy, terms and cookie policy pages.
type LegalView struct {
	Doc           legal.Document
	Products      []ProductLink
	Languages     []LangLink
	EffectiveDate string
	UpdatedAt     string
	ISOUpdatedAt  string
}

// BuildLegal wraps doc with its switchers. path is the page path without
// query; the language toggle only adds `doc_lang` so the location is kept.
func BuildLegal(doc legal.Document, path string) *LegalView {
	v := &LegalView{
		Doc:           doc,
		EffectiveDate: format.FmtDate(doc.EffectiveDate, doc.Lang),
		UpdatedAt:     format.FmtDate(doc.UpdatedAt, doc.Lang),
		ISOUpdatedAt:  format.ISODate(doc.UpdatedAt),
	}
	products := legal.Products(doc.Kind)
	if len(products) > 1 {
		for _, p := range products {
			v.Products = append(v.Products, ProductLink{
				Product: p,
				Title:   p.Title(),
				Href:    "/" + string(doc.Kind) + "/" + string(p),
				Active:  p == doc.Product,
			})
		}
	}
	for _, l := range legal.Languages {
		v.Languages = append(v.Languages, LangLink{
			Lang:   l,
			Href:   path + "?" + url.Values{"doc_lang": {l}}.Encode(),
			Active: l == doc.RequestedLang,
		})
	}
	return v
}

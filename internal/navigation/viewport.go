package navigation

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Viewport is the visitor's view of the rendered page.
type Viewport interface {
	// ScrollToSection brings the element tagged with sectionID into view
	// and reports whether it exists. A missing target is not an error.
	ScrollToSection(sectionID string) bool
	// CloseDrawer collapses the mobile navigation drawer.
	CloseDrawer()
}

// SectionIndex is the set of element ids present in a rendered page.
type SectionIndex map[string]struct{}

// Has reports whether the page contains an element with the given id.
func (s SectionIndex) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s[SectionID(id)]
	return ok
}

// IDs returns the sorted ids.
func (s SectionIndex) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IndexSections walks an HTML document and collects the id attribute of
// every element.
func IndexSections(r io.Reader) (SectionIndex, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("navigation: parse document: %w", err)
	}
	idx := SectionIndex{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "id" && strings.TrimSpace(a.Val) != "" {
					idx[strings.TrimSpace(a.Val)] = struct{}{}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return idx, nil
}

// Recorder is a Viewport that looks targets up in a SectionIndex and records
// the effects it was asked to perform. Transports turn the recorded effects
// into whatever the client understands.
type Recorder struct {
	Sections SectionIndex
	Scrolled []string
	Closed   bool
}

// NewRecorder returns a Recorder over idx.
func NewRecorder(idx SectionIndex) *Recorder {
	return &Recorder{Sections: idx}
}

func (r *Recorder) ScrollToSection(sectionID string) bool {
	id := SectionID(sectionID)
	if !r.Sections.Has(id) {
		return false
	}
	r.Scrolled = append(r.Scrolled, id)
	return true
}

func (r *Recorder) CloseDrawer() { r.Closed = true }

// LastScroll returns the most recent scroll target, or "".
func (r *Recorder) LastScroll() string {
	if len(r.Scrolled) == 0 {
		return ""
	}
	return r.Scrolled[len(r.Scrolled)-1]
}

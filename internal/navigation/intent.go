// Package navigation decides what happens when a visitor navigates: scroll
// within the current page, or move to another page and scroll once it has
// rendered.
package navigation

import (
	"strings"

	"inserview.studio/web/internal/routing"
)

// Kind classifies an Intent.
type Kind int

const (
	// InPageAnchor asks to bring a section of the page into view.
	InPageAnchor Kind = iota + 1
	// PathChange asks to move to another path.
	PathChange
)

func (k Kind) String() string {
	switch k {
	case InPageAnchor:
		return "anchor"
	case PathChange:
		return "path"
	default:
		return "unknown"
	}
}

// Intent is a single navigation request. It is consumed immediately and never stored.
type Intent struct {
	Kind Kind
	// Target is a section id for InPageAnchor and a path for PathChange.
	Target string
	// PendingAnchor is applied after the destination of a PathChange renders.
	PendingAnchor string
}

// Anchor builds an InPageAnchor intent. "#contact" and "contact" are equivalent.
func Anchor(section string) Intent {
	return Intent{Kind: InPageAnchor, Target: SectionID(section)}
}

// Path builds a PathChange intent without a pending anchor.
func Path(target string) Intent {
	return Intent{Kind: PathChange, Target: routing.Canonical(target)}
}

// PathWithAnchor builds a PathChange intent that scrolls to section after the
// destination renders.
func PathWithAnchor(target, section string) Intent {
	in := Path(target)
	in.PendingAnchor = SectionID(section)
	return in
}

// SectionID strips a leading '#' and surrounding whitespace.
func SectionID(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "#")
}

// Home page sections, in page order.
var HomeSections = []string{"home", "services", "about", "portfolio", "api", "contact"}

// Location is where a visitor currently is.
type Location struct {
	Path          string         `json:"path"`
	Page          routing.PageID `json:"page"`
	Params        routing.Params `json:"params,omitempty"`
	PendingAnchor string         `json:"pendingAnchor,omitempty"`
}

// IsZero reports whether the location was never set.
func (l Location) IsZero() bool { return l.Path == "" && l.Page == "" }

func (l Location) clone() Location {
	cp := l
	if l.Params != nil {
		cp.Params = make(routing.Params, len(l.Params))
		for k, v := range l.Params {
			cp.Params[k] = v
		}
	}
	return cp
}

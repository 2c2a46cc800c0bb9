// Package routing maps request paths to page identifiers.
//
// A Table is built once at startup and never mutated. Routes are tried in
// declaration order and the first structural match wins; the table must end
// with exactly one wildcard route that absorbs every unmatched path.
package routing

import (
	"errors"
	"fmt"
	"strings"
)

// PageID identifies which page renderer handles a route.
type PageID string

var (
	// ErrNoWildcard is returned by New when no wildcard route was declared.
	ErrNoWildcard = errors.New("routing: table has no wildcard route")
	// ErrMultipleWildcards is returned by New when more than one wildcard route was declared.
	ErrMultipleWildcards = errors.New("routing: table has more than one wildcard route")
	// ErrWildcardNotLast is returned by New when the wildcard route is not the final route.
	ErrWildcardNotLast = errors.New("routing: wildcard route must be declared last")
	// ErrInvalidPattern is returned for patterns that cannot be parsed.
	ErrInvalidPattern = errors.New("routing: invalid pattern")
)

// SegmentKind distinguishes literal segments from parameter slots.
type SegmentKind int

const (
	Literal SegmentKind = iota
	Param
)

// Segment is one element of a route pattern.
type Segment struct {
	Kind     SegmentKind
	Value    string // literal text, or parameter name
	Optional bool   // only allowed on a trailing parameter
}

// Route binds a pattern to a page.
type Route struct {
	Pattern  string
	Page     PageID
	segments []Segment
	wildcard bool
}

// Segments returns a copy of the parsed pattern.
func (r Route) Segments() []Segment {
	out := make([]Segment, len(r.segments))
	copy(out, r.segments)
	return out
}

// IsWildcard reports whether the route matches any path.
func (r Route) IsWildcard() bool { return r.wildcard }

// Params holds parameter values extracted from a path.
type Params map[string]string

// Get returns the value bound to name, or "" when unset.
func (p Params) Get(name string) string {
	if p == nil {
		return ""
	}
	return p[name]
}

// Match is the result of resolving a path.
type Match struct {
	Page   PageID
	Params Params
	Route  Route
}

// NotFound reports whether the path fell through to the wildcard route.
func (m Match) NotFound() bool { return m.Route.wildcard }

// Table is an immutable, ordered list of routes.
type Table struct {
	routes []Route
}

// Define parses pattern into a Route. Patterns use "/" separated segments;
// ":name" is a parameter, ":name?" an optional trailing parameter and "*"
// the wildcard.
func Define(pattern string, page PageID) (Route, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "*" {
		return Route{Pattern: pattern, Page: page, wildcard: true}, nil
	}
	if !strings.HasPrefix(pattern, "/") {
		return Route{}, fmt.Errorf("%w: %q must start with '/'", ErrInvalidPattern, pattern)
	}
	parts := splitPath(pattern)
	segments := make([]Segment, 0, len(parts))
	seen := map[string]struct{}{}
	for i, part := range parts {
		if part == "" || part == "*" {
			return Route{}, fmt.Errorf("%w: %q has an empty or wildcard segment", ErrInvalidPattern, pattern)
		}
		if !strings.HasPrefix(part, ":") {
			segments = append(segments, Segment{Kind: Literal, Value: part})
			continue
		}
		name := strings.TrimPrefix(part, ":")
		optional := strings.HasSuffix(name, "?")
		name = strings.TrimSuffix(name, "?")
		if name == "" {
			return Route{}, fmt.Errorf("%w: %q has an unnamed parameter", ErrInvalidPattern, pattern)
		}
		if optional && i != len(parts)-1 {
			return Route{}, fmt.Errorf("%w: %q optional parameter %q must be last", ErrInvalidPattern, pattern, name)
		}
		if _, dup := seen[name]; dup {
			return Route{}, fmt.Errorf("%w: %q repeats parameter %q", ErrInvalidPattern, pattern, name)
		}
		seen[name] = struct{}{}
		segments = append(segments, Segment{Kind: Param, Value: name, Optional: optional})
	}
	return Route{Pattern: pattern, Page: page, segments: segments}, nil
}

// MustDefine is like Define but panics on an invalid pattern.
func MustDefine(pattern string, page PageID) Route {
	r, err := Define(pattern, page)
	if err != nil {
		panic(err)
	}
	return r
}

// New validates and freezes the given routes.
func New(routes ...Route) (*Table, error) {
	wildcards, at := 0, -1
	for i, r := range routes {
		if r.wildcard {
			wildcards++
			at = i
		}
	}
	switch {
	case wildcards == 0:
		return nil, ErrNoWildcard
	case wildcards > 1:
		return nil, ErrMultipleWildcards
	case at != len(routes)-1:
		return nil, ErrWildcardNotLast
	}
	frozen := make([]Route, len(routes))
	copy(frozen, routes)
	return &Table{routes: frozen}, nil
}

// MustNew is like New but panics when the table is invalid.
func MustNew(routes ...Route) *Table {
	t, err := New(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns the declared routes in order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Wildcard returns the fallback route.
func (t *Table) Wildcard() Route { return t.routes[len(t.routes)-1] }

// Resolve maps a normalized path to its page. It never fails: unmatched
// paths resolve to the wildcard page.
func (t *Table) Resolve(path string) Match {
	parts := splitPath(trimTrailingSlash(path))
	for _, r := range t.routes {
		if r.wildcard {
			return Match{Page: r.Page, Params: Params{}, Route: r}
		}
		if params, ok := matchSegments(r.segments, parts); ok {
			return Match{Page: r.Page, Params: params, Route: r}
		}
	}
	// unreachable: New guarantees a trailing wildcard
	w := t.Wildcard()
	return Match{Page: w.Page, Params: Params{}, Route: w}
}

func matchSegments(segments []Segment, parts []string) (Params, bool) {
	n := len(segments)
	if n > 0 && segments[n-1].Optional && len(parts) == n-1 {
		segments = segments[:n-1]
		n--
	}
	if len(parts) != n {
		return nil, false
	}
	params := Params{}
	for i, seg := range segments {
		part := parts[i]
		switch seg.Kind {
		case Literal:
			if part != seg.Value {
				return nil, false
			}
		case Param:
			if part == "" {
				return nil, false
			}
			params[seg.Value] = part
		}
	}
	return params, true
}

// splitPath turns "/a/b" into ["a","b"] and "/" into [].
func splitPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func trimTrailingSlash(p string) string {
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		return p[:len(p)-1]
	}
	return p
}

// Normalize prepares a raw request target for Resolve: it drops any query
// string or fragment and guarantees a leading slash.
func Normalize(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i != -1 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return raw
}

// Canonical is Normalize followed by removal of a single trailing slash, so
// that equivalent paths compare equal.
func Canonical(raw string) string {
	return trimTrailingSlash(Normalize(raw))
}

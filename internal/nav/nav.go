package nav

import (
	"path"
	"strings"

	"inserview.studio/web/internal/navigation"
	"inserview.studio/web/internal/routing"
)

// NavigatePrefix is the path prefix of the in-page navigation endpoint.
const NavigatePrefix = "/navigate/"

// Item represents a top-level navigation item. Every item targets a home
// section.
type Item struct {
	Section  string // e.g. "services"
	LabelKey string // i18n key, e.g. "nav.services"
}

// RenderedItem is a view model for templates. Href is the no-script fallback
// and Navigate the htmx endpoint that raises the anchor intent.
type RenderedItem struct {
	Href     string
	Navigate string
	Section  string
	LabelKey string
	Active   bool
}

// Link is a plain footer link.
type Link struct {
	Href     string
	LabelKey string
	Label    string
	External bool
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Footer groups the footer columns.
type Footer struct {
	QuickLinks []RenderedItem
	Services   []Link
	Socials    []Link
	Legal      []Link
}

// Main is the primary navigation definition, in home page order.
var Main = buildMain()

func buildMain() []Item {
	items := make([]Item, 0, len(navigation.HomeSections))
	for _, s := range navigation.HomeSections {
		items = append(items, Item{Section: s, LabelKey: "nav." + s})
	}
	return items
}

// Legal lists the legal pages linked from the footer.
var Legal = []Link{
	{Href: "/privacy", LabelKey: "legal.privacy.title"},
	{Href: "/terms", LabelKey: "legal.terms.title"},
	{Href: "/cookie-policy", LabelKey: "legal.cookie-policy.title"},
}

// Socials lists the studio's external profiles.
var Socials = []Link{
	{Href: "https://www.linkedin.com/company/inserview-studio", Label: "LinkedIn", External: true},
	{Href: "https://twitter.com/inserviewstudio", Label: "Twitter", External: true},
	{Href: "https://github.com/inserview-studio", Label: "GitHub", External: true},
	{Href: "mailto:contact@inserview.studio", Label: "Email"},
}

// Build renders navigation items. active is the section the visitor was last
// scrolled to; it may be empty.
func Build(active string) []RenderedItem {
	active = navigation.SectionID(active)
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     routing.HomePath + "#" + it.Section,
			Navigate: NavigatePrefix + it.Section,
			Section:  it.Section,
			LabelKey: it.LabelKey,
			Active:   it.Section == active,
		})
	}
	return items
}

// BuildFooter renders the footer for the page at currentPath. serviceLabels
// are the titles of the studio's services, which all link to the services
// section.
func BuildFooter(currentPath string, serviceLabels []string) Footer {
	if currentPath == "" {
		currentPath = "/"
	}
	f := Footer{QuickLinks: Build("")}
	for _, label := range serviceLabels {
		f.Services = append(f.Services, Link{Href: NavigatePrefix + "services", Label: label})
	}
	f.Socials = append(f.Socials, Socials...)
	for _, l := range Legal {
		l.Active = isActive(l.Href, currentPath)
		f.Legal = append(f.Legal, l)
	}
	return f
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	// match exact or prefix boundary: "/privacy" or "/privacy/job-clipper"
	if currentPath == itemPath {
		return true
	}
	return strings.HasPrefix(currentPath, itemPath+"/")
}

var pageLabels = map[routing.PageID]string{
	routing.PagePrivacy:      "legal.privacy.title",
	routing.PageTerms:        "legal.terms.title",
	routing.PageCookiePolicy: "legal.cookie-policy.title",
	routing.PageProject:      "nav.portfolio",
	routing.PageNotFound:     "notfound.title",
}

// Breadcrumbs builds breadcrumb entries for a resolved path.
// Rules:
// - Always start with Home
// - The page itself uses its label key
// - Parameter segments use a prettified segment label
func Breadcrumbs(currentPath string, m routing.Match) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: m.Page == routing.PageHome}}
	if m.Page == routing.PageHome {
		return crumbs
	}
	if m.NotFound() {
		return append(crumbs, Crumb{Href: currentPath, LabelKey: pageLabels[routing.PageNotFound], Active: true})
	}

	clean := path.Clean(currentPath)
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")

	top := "/" + parts[0]
	if m.Page == routing.PageProject {
		// there is no project index page; the portfolio section lists them
		top = NavigatePrefix + "portfolio"
	}
	crumbs = append(crumbs, Crumb{Href: top, LabelKey: pageLabels[m.Page], Label: titleFromSegment(parts[0]), Active: len(parts) == 1})

	href := "/" + parts[0]
	for i := 1; i < len(parts); i++ {
		href = href + "/" + parts[i]
		crumbs = append(crumbs, Crumb{
			Href:   href,
			Label:  titleFromSegment(parts[i]),
			Active: i == len(parts)-1,
		})
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	r[0] = toUpper(r[0])
	return string(r)
}

func toUpper(r rune) rune {
	// ASCII only is sufficient for slugs here
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}

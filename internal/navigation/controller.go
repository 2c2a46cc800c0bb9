package navigation

import (
	"inserview.studio/web/internal/routing"
)

// Controller applies intents to a Location. It holds no state of its own;
// Store provides the single-writer discipline around it.
type Controller struct {
	table     *routing.Table
	ownerPath string
	ownerPage routing.PageID
}

// NewController builds a controller over table. Section anchors are owned by
// the page mounted at ownerPath.
func NewController(table *routing.Table, ownerPath string) *Controller {
	if ownerPath == "" {
		ownerPath = routing.HomePath
	}
	ownerPath = routing.Canonical(ownerPath)
	return &Controller{
		table:     table,
		ownerPath: ownerPath,
		ownerPage: table.Resolve(ownerPath).Page,
	}
}

// Table returns the route table used for resolution.
func (c *Controller) Table() *routing.Table { return c.table }

// OwnerPath returns the path of the page that owns section anchors.
func (c *Controller) OwnerPath() string { return c.ownerPath }

// HandleIntent returns the location that results from applying in to current.
// Side effects (scrolling, closing the drawer) are requested from vp.
func (c *Controller) HandleIntent(in Intent, current Location, vp Viewport) Location {
	switch in.Kind {
	case InPageAnchor:
		return c.handleAnchor(in, current, vp)
	case PathChange:
		return c.handlePath(in, current, vp)
	default:
		return current
	}
}

func (c *Controller) handleAnchor(in Intent, current Location, vp Viewport) Location {
	section := SectionID(in.Target)
	if section == "" {
		return current
	}
	if vp != nil && vp.ScrollToSection(section) {
		vp.CloseDrawer()
		return current
	}
	if current.Page == c.ownerPage && !current.IsZero() {
		// the owner page simply lacks this section
		return current
	}
	return c.handlePath(PathWithAnchor(c.ownerPath, section), current, vp)
}

func (c *Controller) handlePath(in Intent, _ Location, vp Viewport) Location {
	path := routing.Canonical(in.Target)
	m := c.table.Resolve(path)
	next := Location{
		Path:          path,
		Page:          m.Page,
		Params:        m.Params,
		PendingAnchor: SectionID(in.PendingAnchor),
	}
	if vp != nil {
		vp.CloseDrawer()
	}
	return next
}

// Mounted runs the deferred half of a navigate-then-scroll sequence once
// page has rendered. The pending anchor fires at most once and only on the
// page it was meant for; it is cleared either way once consumed.
func (c *Controller) Mounted(current Location, page routing.PageID, vp Viewport) Location {
	if current.PendingAnchor == "" || current.Page != page {
		return current
	}
	next := current.clone()
	anchor := next.PendingAnchor
	next.PendingAnchor = ""
	if vp != nil {
		vp.ScrollToSection(anchor)
	}
	return next
}

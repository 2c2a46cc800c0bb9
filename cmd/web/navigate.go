package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	mw "inserview.studio/web/internal/middleware"
	"inserview.studio/web/internal/navigation"
	"inserview.studio/web/internal/observability"
)

// Client events raised through HX-Trigger.
const (
	eventScroll = "nav:scroll"
	eventClose  = "nav:close"
)

// handleNavigate turns a nav link click into an anchor intent.
//
// htmx clients get the outcome as response headers: a scroll on the page
// they are showing, or an HX-Location to the page that owns the section,
// which scrolls once it renders. Plain clients are redirected there.
func (a *app) handleNavigate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)
	section := navigation.SectionID(chi.URLParam(r, "section"))
	if section == "" {
		http.NotFound(w, r)
		return
	}
	visitor := mw.GetSession(r).ID
	owner := a.store.Controller().OwnerPath()
	mw.SetPageID(ctx, "navigate")

	hx := mw.HTMXFrom(ctx)
	if !hx.Enabled {
		// a full page load always leaves the current page
		if _, err := a.store.Dispatch(ctx, visitor, navigation.PathWithAnchor(owner, section), nil); err != nil {
			logger.Error("dispatch anchor", zap.String("section", section), zap.Error(err))
		}
		a.countIntent(navigation.InPageAnchor.String(), "deferred")
		http.Redirect(w, r, owner, http.StatusSeeOther)
		return
	}

	// back/forward may have moved the client without telling us
	var (
		current navigation.Location
		err     error
	)
	if p := hx.CurrentPath(); p != "" {
		current, err = a.store.Sync(ctx, visitor, p)
	} else {
		current, err = a.store.Snapshot(ctx, visitor)
	}
	if err != nil {
		logger.Error("load location", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	vp := navigation.NewRecorder(nil)
	if !current.IsZero() {
		idx, err := a.sections.get(ctx, mw.Lang(r), mw.DocLang(r), current.Path, a.table.Resolve(current.Path))
		if err != nil {
			logger.Warn("index page sections", zap.String("path", current.Path), zap.Error(err))
		}
		vp.Sections = idx
	}

	next, err := a.store.Dispatch(ctx, visitor, navigation.Anchor(section), vp)
	if err != nil {
		logger.Error("dispatch anchor", zap.String("section", section), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	events := map[string]any{}
	switch {
	case vp.LastScroll() != "":
		events[eventScroll] = map[string]string{"id": vp.LastScroll()}
		a.countIntent(navigation.InPageAnchor.String(), "scroll")
	case next.PendingAnchor != "":
		mw.Location(w, next.Path)
		a.countIntent(navigation.InPageAnchor.String(), "deferred")
	default:
		a.countIntent(navigation.InPageAnchor.String(), "noop")
	}
	if vp.Closed {
		events[eventClose] = true
	}
	mw.TriggerEvents(w, events)
	w.WriteHeader(http.StatusNoContent)
}

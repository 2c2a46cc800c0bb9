package main

import (
	"net/http"

	"inserview.studio/web/internal/contact"
	mw "inserview.studio/web/internal/middleware"
)

type toastView struct {
	Lang  string
	Toast *mw.Toast
}

// handleContact runs a form submission through the contact service. htmx
// gets a toast fragment in place; plain posts come back to the contact
// section with the toast carried in the session.
func (a *app) handleContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mw.SetPageID(ctx, "contact")
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	lang := mw.Lang(r)
	form := contact.FormFromValues(r.PostForm)
	_, err := a.contact.Submit(ctx, mw.RemoteIP(r), form)

	toast := &mw.Toast{Kind: "success", Message: a.bundle.T(lang, contact.MessageKey(err))}
	if err != nil {
		toast.Kind = "error"
	}

	if mw.IsHTMX(ctx) {
		if err == nil {
			mw.TriggerEvents(w, map[string]any{"contact:sent": true})
		}
		a.views.render(w, r, http.StatusOK, "toast", toastView{Lang: lang, Toast: toast})
		return
	}
	mw.GetSession(r).SetFlash(toast.Kind, toast.Message)
	http.Redirect(w, r, "/#contact", http.StatusSeeOther)
}

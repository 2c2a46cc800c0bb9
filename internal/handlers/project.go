package handlers

import (
	"inserview.studio/web/internal/routing"
	"inserview.studio/web/internal/showcase"
)

// TabLink is one tab of the project detail page.
type TabLink struct {
	Tab      showcase.Tab
	Href     string
	LabelKey string
	Active   bool
}

// ProjectView is the view model for /project/:projectId/:tab?.
type ProjectView struct {
	RequestedID string
	Found       bool
	Project     showcase.Project
	Tab         showcase.Tab
	Tabs        []TabLink
}

// BuildProject looks up the routed project. Placeholder entries are not
// browsable and count as missing.
func BuildProject(params routing.Params) *ProjectView {
	id := params.Get(routing.ParamProjectID)
	v := &ProjectView{RequestedID: id, Tab: showcase.ParseTab(params.Get(routing.ParamTab))}
	p, ok := showcase.ProjectByID(id)
	if !ok || p.Placeholder {
		return v
	}
	v.Found = true
	v.Project = p
	for _, tab := range showcase.Tabs {
		href := "/project/" + p.ID
		if tab != showcase.TabOverview {
			href += "/" + string(tab)
		}
		v.Tabs = append(v.Tabs, TabLink{
			Tab:      tab,
			Href:     href,
			LabelKey: "project.tab." + string(tab),
			Active:   tab == v.Tab,
		})
	}
	return v
}

// Overview reports whether the overview tab is selected.
func (v *ProjectView) Overview() bool { return v.Tab == showcase.TabOverview }

package handlers

import "inserview.studio/web/internal/showcase"

// Stat is a headline number in the about section.
type Stat struct {
	Value    string
	LabelKey string
}

// Option is one entry of a select control.
type Option struct {
	Value string
	Label string
}

// HomeView is the view model for the landing page sections.
type HomeView struct {
	Services       []showcase.Service
	Values         []showcase.Value
	Stats          []Stat
	Projects       []showcase.Project
	Endpoints      []showcase.Endpoint
	ServiceOptions []Option
	SupportEmail   string
}

var stats = []Stat{
	{Value: "50+", LabelKey: "about.stats.projects"},
	{Value: "30+", LabelKey: "about.stats.clients"},
	{Value: "5+", LabelKey: "about.stats.years"},
	{Value: "24/7", LabelKey: "about.stats.support"},
}

// BuildHome assembles the landing page content.
func BuildHome() *HomeView {
	ids := showcase.ServiceOptions()
	opts := make([]Option, 0, len(ids))
	for _, id := range ids {
		opts = append(opts, Option{Value: id, Label: showcase.ServiceTitle(id)})
	}
	return &HomeView{
		Services:       showcase.Services(),
		Values:         showcase.Values(),
		Stats:          append([]Stat(nil), stats...),
		Projects:       showcase.Projects(),
		Endpoints:      showcase.Endpoints(),
		ServiceOptions: opts,
		SupportEmail:   showcase.SupportEmail,
	}
}

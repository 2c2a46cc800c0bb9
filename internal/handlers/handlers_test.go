package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inserview.studio/web/internal/config"
	"inserview.studio/web/internal/legal"
	"inserview.studio/web/internal/routing"
)

func TestBuildPageLayout(t *testing.T) {
	table := routing.Default()
	pd := BuildPage(Layout{
		Lang:         "en",
		Path:         "/",
		Match:        table.Resolve("/"),
		ScrollTarget: "contact",
		Now:          time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, routing.PageHome, pd.Page)
	assert.Equal(t, 2025, pd.Year)
	assert.Equal(t, "contact", pd.ScrollTarget)
	require.Len(t, pd.Nav, 6)
	assert.True(t, pd.Nav[5].Active)
	assert.NotEmpty(t, pd.Footer.Services)
	assert.False(t, pd.NotFound())

	pd = BuildPage(Layout{Path: "/missing", Match: table.Resolve("/missing")})
	assert.True(t, pd.NotFound())
}

func TestAnalyticsFromConfig(t *testing.T) {
	assert.False(t, AnalyticsFrom(config.AnalyticsConfig{}).Enabled())
	assert.True(t, AnalyticsFrom(config.AnalyticsConfig{GA4MeasurementID: "G-1"}).Enabled())
}

func TestBuildHome(t *testing.T) {
	v := BuildHome()
	assert.NotEmpty(t, v.Services)
	assert.Len(t, v.Stats, 4)
	require.NotEmpty(t, v.ServiceOptions)
	assert.Equal(t, "other", v.ServiceOptions[len(v.ServiceOptions)-1].Value)
}

func TestBuildLegalSwitchers(t *testing.T) {
	doc := legal.Document{
		Kind:          legal.KindPrivacy,
		Product:       legal.ProductJobClipper,
		Lang:          "ko",
		RequestedLang: "en",
		UpdatedAt:     time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	v := BuildLegal(doc, "/privacy/job-clipper")
	require.Len(t, v.Products, 2)
	assert.Equal(t, "/privacy/inserview", v.Products[0].Href)
	assert.True(t, v.Products[1].Active)
	require.Len(t, v.Languages, 2)
	assert.Equal(t, "/privacy/job-clipper?doc_lang=en", v.Languages[1].Href)
	assert.True(t, v.Languages[1].Active, "the toggle reflects the requested language")
	assert.Equal(t, "2025년 1월 15일", v.UpdatedAt)
	assert.Equal(t, "2025-01-15", v.ISOUpdatedAt)

	terms := BuildLegal(legal.Document{Kind: legal.KindTerms, Lang: "ko", RequestedLang: "ko"}, "/terms")
	assert.Empty(t, terms.Products, "a single product needs no switcher")
}

func TestBuildProject(t *testing.T) {
	table := routing.Default()

	v := BuildProject(table.Resolve("/project/job-clipper/support").Params)
	require.True(t, v.Found)
	assert.False(t, v.Overview())
	require.Len(t, v.Tabs, 2)
	assert.Equal(t, "/project/job-clipper", v.Tabs[0].Href)
	assert.True(t, v.Tabs[1].Active)

	v = BuildProject(table.Resolve("/project/job-clipper/bogus").Params)
	assert.True(t, v.Overview())

	v = BuildProject(table.Resolve("/project/unknown").Params)
	assert.False(t, v.Found)
	assert.Equal(t, "unknown", v.RequestedID)
}

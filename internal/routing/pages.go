package routing

// Page identifiers served by the site.
const (
	PageHome         PageID = "home"
	PagePrivacy      PageID = "privacy"
	PageTerms        PageID = "terms"
	PageCookiePolicy PageID = "cookie-policy"
	PageProject      PageID = "project"
	PageNotFound     PageID = "not-found"
)

// Route parameter names.
const (
	ParamProduct   = "product"
	ParamProjectID = "projectId"
	ParamTab       = "tab"
)

// HomePath is the path of the page that owns the landing sections.
const HomePath = "/"

// Default builds the site's route table.
func Default() *Table {
	return MustNew(
		MustDefine("/", PageHome),
		MustDefine("/privacy/:product?", PagePrivacy),
		MustDefine("/terms", PageTerms),
		MustDefine("/cookie-policy/:product?", PageCookiePolicy),
		MustDefine("/project/:projectId/:tab?", PageProject),
		MustDefine("*", PageNotFound),
	)
}

// Package showcase holds the static studio content rendered on the home page
// and the project detail pages.
package showcase

import "strings"

// Text is a string available in Korean and English.
type Text struct {
	Ko string
	En string
}

// In returns the text for lang, falling back to Korean.
func (t Text) In(lang string) string {
	if lang == "en" && t.En != "" {
		return t.En
	}
	return t.Ko
}

func same(s string) Text { return Text{Ko: s, En: s} }

// Service is one card in the services section.
type Service struct {
	ID          string
	Icon        string
	Title       string
	Description Text
	Features    []Text
}

// Value is one tile in the about section.
type Value struct {
	Icon        string
	Label       string
	Description Text
}

// FAQ is a question and answer pair on a project support tab.
type FAQ struct {
	Question Text
	Answer   Text
}

// Project is a portfolio entry. Placeholder entries have no detail page.
type Project struct {
	ID              string
	Title           string
	Summary         Text
	FullDescription Text
	Image           string
	Category        string
	Technologies    []string
	DemoURL         string
	GithubURL       string
	SupportEmail    string
	Features        []Text
	FAQs            []FAQ
	Placeholder     bool
}

// IssuesURL links to the project's issue tracker.
func (p Project) IssuesURL() string {
	if p.GithubURL == "" {
		return ""
	}
	return strings.TrimRight(p.GithubURL, "/") + "/issues"
}

// Parameter documents one API input.
type Parameter struct {
	Name        string
	Type        string
	Required    bool
	Description Text
}

// Endpoint is a decorative API card. Nothing on the site serves these paths.
type Endpoint struct {
	ID              string
	Title           string
	Method          string
	Path            string
	Category        string
	Features        []Text
	TryURL          string
	Description     Text
	Parameters      []Parameter
	RequestExample  string
	ResponseExample string
}

// Tab selects a section of the project detail page.
type Tab string

const (
	TabOverview Tab = "overview"
	TabSupport  Tab = "support"
)

// ParseTab reads the optional :tab segment. Unknown values select the overview.
func ParseTab(raw string) Tab {
	if Tab(strings.ToLower(strings.TrimSpace(raw))) == TabSupport {
		return TabSupport
	}
	return TabOverview
}

// Tabs lists the project tabs in display order.
var Tabs = []Tab{TabOverview, TabSupport}

// SupportEmail receives support requests for all projects.
const SupportEmail = "rhddlstj11@gmail.com"

var services = []Service{
	{
		ID:    "web-development",
		Icon:  "globe",
		Title: "Web Development",
		Description: Text{
			Ko: "React, Next.js, TypeScript 같은 최신 기술로 빠르고 안정적인 웹사이트와 애플리케이션을 구축합니다. 성능과 사용자 경험을 최우선으로 고려합니다.",
			En: "Fast, reliable websites and applications built with modern tools such as React, Next.js and TypeScript, with performance and user experience first.",
		},
		Features: []Text{{"반응형 디자인", "Responsive design"}, {"최신 프레임워크", "Modern frameworks"}, {"성능 최적화", "Performance tuning"}},
	},
	{
		ID:    "mobile-development",
		Icon:  "smartphone",
		Title: "Mobile Development",
		Description: Text{
			Ko: "iOS와 Android에서 탁월한 사용자 경험을 제공하는 네이티브 및 크로스 플랫폼 모바일 앱을 개발합니다.",
			En: "Native and cross-platform mobile apps that feel great on iOS and Android.",
		},
		Features: []Text{{"네이티브 성능", "Native performance"}, {"크로스 플랫폼 지원", "Cross-platform"}, {"앱스토어 출시", "Store release"}},
	},
	{
		ID:    "ui-ux-design",
		Icon:  "palette",
		Title: "UI/UX Design",
		Description: Text{
			Ko: "아름다움과 실용성을 결합한 사용자 중심 디자인. 나만의 시선으로 해석한 UX를 통해 사용자에게 의미 있는 경험을 제공합니다.",
			En: "User-centred design that joins beauty and practicality, shaped by our own way of seeing.",
		},
		Features: []Text{{"사용자 리서치", "User research"}, {"프로토타이핑", "Prototyping"}, {"디자인 시스템", "Design systems"}},
	},
	{
		ID:    "utility-tools",
		Icon:  "wrench",
		Title: "Utility Tools",
		Description: Text{
			Ko: "일상의 불편함을 해결하는 실용적 도구. 실제 사용자의 pain point를 발견하고, 그것을 효율적으로 해결하는 솔루션을 만듭니다.",
			En: "Practical tools for everyday friction. We find real pain points and build efficient answers to them.",
		},
		Features: []Text{{"맞춤형 솔루션", "Tailored solutions"}, {"자동화", "Automation"}, {"통합 지원", "Integrations"}},
	},
	{
		ID:    "playful-interaction",
		Icon:  "sparkles",
		Title: "Playful Interaction",
		Description: Text{
			Ko: "단순한 UI를 넘어, 사용자가 기억하는 경험을 만듭니다. Insert View의 철학으로 인터랙션을 재해석하고, 즐거움을 더합니다.",
			En: "Beyond plain UI: memorable interactions reinterpreted through the Insert View philosophy.",
		},
		Features: []Text{{"마이크로 인터랙션", "Micro-interactions"}, {"애니메이션", "Animation"}, {"사용자 참여 유도", "Engagement"}},
	},
	{
		ID:    "visual-experiments",
		Icon:  "eye",
		Title: "Visual Experiments",
		Description: Text{
			Ko: "세상을 인터뷰하고 그 인사이트를 시각적으로 실험합니다. 창의적 경계를 넓히는 디자인을 탐구합니다.",
			En: "We interview the world and experiment with what we learn, pushing creative boundaries.",
		},
		Features: []Text{{"크리에이티브 디자인", "Creative design"}, {"혁신적 시도", "Bold attempts"}, {"독창적 미학", "Original aesthetics"}},
	},
}

var values = []Value{
	{Icon: "eye", Label: "Insight View", Description: Text{"나만의 시선으로 세상을 해석", "Reading the world through our own eyes"}},
	{Icon: "sparkles", Label: "Creative Input", Description: Text{"해석, 관찰, 감각을 더하다", "Adding interpretation, observation and taste"}},
	{Icon: "layers", Label: "Unique Perspective", Description: Text{"단순한 리뷰를 넘어선 관점", "A view beyond a simple review"}},
	{Icon: "target", Label: "Practical Output", Description: Text{"UX, 기획, 콘텐츠로 구현", "Delivered as UX, planning and content"}},
}

var jobClipper = Project{
	ID:    "job-clipper",
	Title: "Job Clipper",
	Summary: Text{
		Ko: "채용 공고를 Notion으로 한 번에 저장하는 크롬 확장 프로그램. 잡코리아, 사람인, 원티드, 인크루트 등 주요 구직 사이트를 지원합니다.",
		En: "A Chrome extension that saves job postings to Notion in one click. Supports JobKorea, Saramin, Wanted and Incruit.",
	},
	FullDescription: Text{
		Ko: "Job Clipper는 채용 공고를 효율적으로 관리할 수 있는 Chrome 확장 프로그램입니다. 잡코리아, 사람인, 원티드, 인크루트 등 주요 한국 채용 사이트를 지원하며, 클릭 한 번으로 채용 공고의 주요 정보를 자동으로 추출하여 개인 Notion 데이터베이스에 저장합니다. 개인정보는 사용자의 브라우저에만 암호화되어 저장되며, 개발자 서버로 전송되지 않습니다.",
		En: "Job Clipper is a Chrome extension for keeping track of job postings. It supports the major Korean job boards and, in one click, extracts the key details of a posting into your own Notion database. Personal data stays encrypted in your browser and is never sent to our servers.",
	},
	Image:        "https://images.unsplash.com/photo-1675557009483-e6cf3867976b?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080",
	Category:     "Utility Tools",
	Technologies: []string{"Chrome Extension", "TypeScript", "Notion API", "Chrome Storage API"},
	DemoURL:      "https://chrome.google.com/webstore/detail/job-clipper",
	GithubURL:    "https://github.com/officialzero/JobNotion-Clipper",
	SupportEmail: SupportEmail,
	Features: []Text{
		{"잡코리아, 사람인, 원티드, 인크루트 지원", "Supports JobKorea, Saramin, Wanted and Incruit"},
		{"클릭 한 번으로 자동 저장", "Saved in a single click"},
		{"공고명, 회사명, 마감일, 경력, 직무 자동 추출", "Extracts title, company, deadline, experience and role"},
		{"개인정보 수집 없음 (브라우저 로컬 저장)", "No data collection (stored locally in the browser)"},
		{"Notion API 직접 연동", "Talks to the Notion API directly"},
	},
	FAQs: []FAQ{
		{
			Question: Text{"Notion API 토큰은 어떻게 받나요?", "How do I get a Notion API token?"},
			Answer:   Text{"Notion의 My Integrations 페이지에서 새로운 Integration을 생성하면 API 토큰을 받을 수 있습니다.", "Create a new integration on Notion's My Integrations page to receive a token."},
		},
		{
			Question: Text{"내 데이터는 안전한가요?", "Is my data safe?"},
			Answer:   Text{"모든 데이터는 사용자의 브라우저에만 암호화되어 저장되며, 개발자 서버로 전송되지 않습니다.", "Everything is stored encrypted in your browser and never reaches our servers."},
		},
		{
			Question: Text{"어떤 채용 사이트를 지원하나요?", "Which job boards are supported?"},
			Answer:   Text{"현재 잡코리아, 사람인, 원티드, 인크루트를 지원합니다.", "JobKorea, Saramin, Wanted and Incruit."},
		},
	},
}

func comingSoon(image string) Project {
	return Project{
		Title:        "Coming Soon",
		Summary:      same("-"),
		Image:        image,
		Category:     "-",
		Technologies: []string{"-"},
		Placeholder:  true,
	}
}

var projects = []Project{
	jobClipper,
	comingSoon("https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=500&h=300&fit=crop"),
	comingSoon("https://images.unsplash.com/photo-1517248135467-4c7edcad34c4?w=500&h=300&fit=crop"),
	comingSoon("https://images.unsplash.com/photo-1576091160399-112ba8d25d1f?w=500&h=300&fit=crop"),
	comingSoon("https://images.unsplash.com/photo-1560518883-ce09059eeffa?w=500&h=300&fit=crop"),
	comingSoon("https://images.unsplash.com/photo-1522202176988-66273c2fd55f?w=500&h=300&fit=crop"),
}

var endpoints = []Endpoint{
	{
		ID:       "user-profile",
		Title:    "Coming Soon",
		Method:   "GET",
		Path:     "/api/v1/users/{userId}",
		Category: "User",
		Features: []Text{{"인증 필요", "Auth required"}, {"캐싱 지원", "Cacheable"}, same("Rate Limit: 100/hour"), {"JSON 응답", "JSON response"}},
		TryURL:   "https://api.inserview.studio/try/user-profile",
		Description: Text{
			Ko: "특정 사용자의 프로필 정보를 조회하는 API입니다.",
			En: "Fetches the profile of a single user.",
		},
		Parameters: []Parameter{
			{Name: "userId", Type: "string", Required: true, Description: Text{"조회할 사용자의 고유 ID", "Unique id of the user"}},
		},
		RequestExample: "GET /api/v1/users/12345\nAuthorization: Bearer YOUR_API_KEY\nContent-Type: application/json",
		ResponseExample: `{
  "success": true,
  "data": {
    "userId": "12345",
    "username": "inserview_user",
    "email": "user@inserview.studio",
    "createdAt": "2024-01-01T00:00:00Z"
  }
}`,
	},
	{
		ID:       "create-project",
		Title:    "Coming Soon",
		Method:   "POST",
		Path:     "/api/v1/projects",
		Category: "Project",
		Features: []Text{{"인증 필요", "Auth required"}, {"파일 업로드", "File upload"}, {"Webhook 지원", "Webhooks"}, {"JSON 응답", "JSON response"}},
		TryURL:   "https://api.inserview.studio/try/create-project",
		Description: Text{
			Ko: "새로운 프로젝트를 생성하는 API입니다.",
			En: "Creates a new project.",
		},
		Parameters: []Parameter{
			{Name: "title", Type: "string", Required: true, Description: Text{"프로젝트 제목", "Project title"}},
			{Name: "description", Type: "string", Required: false, Description: Text{"프로젝트 설명", "Project description"}},
		},
		RequestExample: "POST /api/v1/projects\nAuthorization: Bearer YOUR_API_KEY\nContent-Type: application/json\n\n{\n  \"title\": \"New Project\",\n  \"description\": \"Project description here\"\n}",
		ResponseExample: `{
  "success": true,
  "data": {
    "projectId": "proj_abc123",
    "title": "New Project",
    "createdAt": "2024-01-01T00:00:00Z"
  }
}`,
	},
}

// Services returns the services section cards.
func Services() []Service { return append([]Service(nil), services...) }

// ServiceOptions returns the values accepted by the contact form's service
// select, in display order.
func ServiceOptions() []string {
	out := make([]string, 0, len(services)+1)
	for _, s := range services {
		out = append(out, s.ID)
	}
	return append(out, "other")
}

// ServiceTitle maps a service id onto its display title.
func ServiceTitle(id string) string {
	for _, s := range services {
		if s.ID == id {
			return s.Title
		}
	}
	if id == "other" {
		return "Other"
	}
	return ""
}

// Values returns the about section tiles.
func Values() []Value { return append([]Value(nil), values...) }

// Projects returns every portfolio card including placeholders.
func Projects() []Project { return append([]Project(nil), projects...) }

// ProjectByID looks up a project with a detail page.
func ProjectByID(id string) (Project, bool) {
	id = strings.TrimSpace(id)
	for _, p := range projects {
		if !p.Placeholder && p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// ProjectIDs lists projects with a detail page.
func ProjectIDs() []string {
	var out []string
	for _, p := range projects {
		if !p.Placeholder {
			out = append(out, p.ID)
		}
	}
	return out
}

// Endpoints returns the API section cards.
func Endpoints() []Endpoint { return append([]Endpoint(nil), endpoints...) }

// EndpointByID looks up one API card for the documentation dialog.
func EndpointByID(id string) (Endpoint, bool) {
	for _, e := range endpoints {
		if e.ID == id {
			return e, true
		}
	}
	return Endpoint{}, false
}

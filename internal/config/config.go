package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadHeader       = 10 * time.Second
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultRequestTimeout   = 30 * time.Second
	defaultEnvironment      = "local"
	defaultLocale           = "ko"
	defaultDocLanguage      = "ko"
	defaultLocationTTL      = 30 * time.Minute
	defaultContentCacheTTL  = 5 * time.Minute
	defaultEmailJSBaseURL   = "https://api.emailjs.com"
	defaultContactPerMinute = 5
	defaultContactBurst     = 3
	defaultBaseURL          = "http://localhost:8080"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	Paths     PathConfig
	Session   SessionConfig
	Location  LocationConfig
	Contact   ContactConfig
	Analytics AnalyticsConfig
	Metrics   MetricsConfig
	Log       LogConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RequestTimeout    time.Duration
	// TrustProxy honours X-Forwarded-For / X-Real-IP from the load balancer.
	TrustProxy        bool
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string { return ":" + s.Port }

// SiteConfig holds presentation defaults.
type SiteConfig struct {
	Environment   string
	DevMode       bool
	BaseURL       string
	DefaultLocale string
	Locales       []string
	DocLanguage   string
}

// IsProd reports whether the site runs in production.
func (s SiteConfig) IsProd() bool { return s.Environment == "prod" }

// PathConfig points at on-disk assets.
type PathConfig struct {
	Templates string
	Public    string
	Content   string
	Locales   string
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	SigningKey string
	Secure     bool
}

// LocationConfig selects where visitor locations live.
type LocationConfig struct {
	RedisURL string
	TTL      time.Duration
	// ContentCacheTTL bounds how long rendered legal documents are cached.
	ContentCacheTTL time.Duration
}

// ContactConfig configures the contact form delivery.
type ContactConfig struct {
	EmailJSBaseURL    string
	ServiceID         string
	TemplateID        string
	PublicKey         string
	PrivateKey        string
	RecipientEmail    string
	RequestsPerMinute int
	Burst             int
}

// Configured reports whether delivery credentials are present.
func (c ContactConfig) Configured() bool {
	return c.ServiceID != "" && c.TemplateID != "" && c.PublicKey != ""
}

// AnalyticsConfig holds client instrumentation ids surfaced to templates.
type AnalyticsConfig struct {
	GA4MeasurementID string
	GTMContainerID   string
	Debug            bool
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
	File  string
}

// ValidationError lists configuration fields that failed validation.
type ValidationError struct {
	Problems map[string]string
}

func (e *ValidationError) Error() string {
	fields := e.Fields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e.Problems[f])
	}
	return "config: invalid configuration: " + strings.Join(parts, "; ")
}

// Fields returns the failing field names, sorted.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Problems))
	for k := range e.Problems {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides. An empty
// path disables dotenv loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap injects explicit values which take precedence over the system environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// Load assembles configuration from defaults, the .env file, the process
// environment and explicit overrides, in increasing precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := options.envMap[key]; ok {
			return v, true
		}
		if options.useSystemEnv {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
		}
		if v, ok := dotEnv[key]; ok {
			return v, true
		}
		return "", false
	}

	// PORT is what most container platforms inject
	port := stringWithDefault(lookup, "PORT", defaultPort)
	env := strings.ToLower(stringWithDefault(lookup, "WEB_ENV", defaultEnvironment))

	cfg := Config{
		Server: ServerConfig{
			Port:              stringWithDefault(lookup, "WEB_PORT", port),
			ReadHeaderTimeout: durationWithDefault(lookup, "WEB_READ_HEADER_TIMEOUT", defaultReadHeader),
			ReadTimeout:       durationWithDefault(lookup, "WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:      durationWithDefault(lookup, "WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:       durationWithDefault(lookup, "WEB_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout:    durationWithDefault(lookup, "WEB_REQUEST_TIMEOUT", defaultRequestTimeout),
			TrustProxy:        boolWithDefault(lookup, "WEB_TRUST_PROXY", false),
		},
		Site: SiteConfig{
			Environment:   env,
			DevMode:       boolWithDefault(lookup, "WEB_DEV", false),
			BaseURL:       strings.TrimRight(stringWithDefault(lookup, "WEB_BASE_URL", defaultBaseURL), "/"),
			DefaultLocale: strings.ToLower(stringWithDefault(lookup, "WEB_DEFAULT_LOCALE", defaultLocale)),
			Locales:       csvWithDefault(lookup, "WEB_LOCALES", []string{"ko", "en"}),
			DocLanguage:   strings.ToLower(stringWithDefault(lookup, "WEB_DOC_LANGUAGE", defaultDocLanguage)),
		},
		Paths: PathConfig{
			Templates: stringWithDefault(lookup, "WEB_TEMPLATES_DIR", "templates"),
			Public:    stringWithDefault(lookup, "WEB_PUBLIC_DIR", "public"),
			Content:   stringWithDefault(lookup, "WEB_CONTENT_DIR", "content"),
			Locales:   stringWithDefault(lookup, "WEB_LOCALES_DIR", "locales"),
		},
		Session: SessionConfig{
			SigningKey: stringWithDefault(lookup, "WEB_SESSION_SIGNING_KEY", ""),
			Secure:     boolWithDefault(lookup, "WEB_SESSION_SECURE", env == "prod"),
		},
		Location: LocationConfig{
			RedisURL:        stringWithDefault(lookup, "WEB_REDIS_URL", ""),
			TTL:             durationWithDefault(lookup, "WEB_LOCATION_TTL", defaultLocationTTL),
			ContentCacheTTL: durationWithDefault(lookup, "WEB_CONTENT_CACHE_TTL", defaultContentCacheTTL),
		},
		Contact: ContactConfig{
			EmailJSBaseURL:    strings.TrimRight(stringWithDefault(lookup, "WEB_EMAILJS_BASE_URL", defaultEmailJSBaseURL), "/"),
			ServiceID:         stringWithDefault(lookup, "WEB_EMAILJS_SERVICE_ID", ""),
			TemplateID:        stringWithDefault(lookup, "WEB_EMAILJS_TEMPLATE_ID", ""),
			PublicKey:         stringWithDefault(lookup, "WEB_EMAILJS_PUBLIC_KEY", ""),
			PrivateKey:        stringWithDefault(lookup, "WEB_EMAILJS_PRIVATE_KEY", ""),
			RecipientEmail:    stringWithDefault(lookup, "WEB_CONTACT_RECIPIENT", ""),
			RequestsPerMinute: intWithDefault(lookup, "WEB_CONTACT_PER_MINUTE", defaultContactPerMinute),
			Burst:             intWithDefault(lookup, "WEB_CONTACT_BURST", defaultContactBurst),
		},
		Analytics: AnalyticsConfig{
			GA4MeasurementID: stringWithDefault(lookup, "WEB_GA_MEASUREMENT_ID", ""),
			GTMContainerID:   stringWithDefault(lookup, "WEB_GTM_CONTAINER_ID", ""),
			Debug:            boolWithDefault(lookup, "WEB_ANALYTICS_DEBUG", false),
		},
		Metrics: MetricsConfig{
			Enabled: boolWithDefault(lookup, "WEB_METRICS_ENABLED", true),
			Path:    stringWithDefault(lookup, "WEB_METRICS_PATH", "/metrics"),
		},
		Log: LogConfig{
			Level: stringWithDefault(lookup, "LOG_LEVEL", "info"),
			File:  stringWithDefault(lookup, "LOG_FILE", ""),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	problems := map[string]string{}
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		problems["Server.Port"] = "must be numeric"
	}
	if len(cfg.Site.Locales) == 0 {
		problems["Site.Locales"] = "at least one locale required"
	} else if !contains(cfg.Site.Locales, cfg.Site.DefaultLocale) {
		problems["Site.DefaultLocale"] = fmt.Sprintf("%q not in %v", cfg.Site.DefaultLocale, cfg.Site.Locales)
	}
	if cfg.Site.DocLanguage != "ko" && cfg.Site.DocLanguage != "en" {
		problems["Site.DocLanguage"] = "must be ko or en"
	}
	if cfg.Site.IsProd() && cfg.Session.SigningKey == "" {
		problems["Session.SigningKey"] = "required in prod"
	}
	if cfg.Contact.RequestsPerMinute <= 0 {
		problems["Contact.RequestsPerMinute"] = "must be positive"
	}
	if cfg.Contact.Burst <= 0 {
		problems["Contact.Burst"] = "must be positive"
	}
	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		problems["Metrics.Path"] = "must start with '/'"
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string, fallback []string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return append([]string(nil), fallback...)
	}
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.ToLower(strings.TrimSpace(part)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

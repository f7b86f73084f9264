package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"inkblog/internal/domain/content"
	domainerr "inkblog/internal/domain/errors"
)

type Config struct {
	Site  SiteConfig  `yaml:"site"`
	Build BuildConfig `yaml:"build"`
	Serve ServeConfig `yaml:"serve"`
}

type SiteConfig struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	SiteURL     string `yaml:"site_url"`
	Description string `yaml:"description"`
	Theme       string `yaml:"theme"`

	ListStyle      ListStyle         `yaml:"list_style"`
	CodeToggle     CodeToggle        `yaml:"code_toggle"`
	DayPolicy      content.DayPolicy `yaml:"day_policy"`
	FilterUntitled bool              `yaml:"filter_untitled"`
	PageSize       int               `yaml:"page_size"`
}

// ListStyle selects how the landing page presents posts.
type ListStyle string

const (
	ListPlain ListStyle = "plain"
	ListCards ListStyle = "cards"
)

// CodeToggle selects the granularity of code block show/hide controls.
type CodeToggle string

const (
	ToggleGlobal CodeToggle = "global"
	ToggleBlock  CodeToggle = "block"
)

type BuildConfig struct {
	SourceDir    string    `yaml:"source_dir"`
	PublicDir    string    `yaml:"public_dir"`
	ThemeDir     string    `yaml:"theme_dir"`
	IndexPath    string    `yaml:"index_path"`
	IncludeDraft bool      `yaml:"include_draft"`
	Now          time.Time `yaml:"-"`
}

type ServeConfig struct {
	Addr     string        `yaml:"addr"`
	Debounce time.Duration `yaml:"debounce"`
	Metrics  bool          `yaml:"metrics"`
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:          "inkblog",
			SiteURL:        "http://localhost:8080",
			Theme:          "default",
			ListStyle:      ListPlain,
			CodeToggle:     ToggleGlobal,
			DayPolicy:      content.DayNaN,
			FilterUntitled: true,
			PageSize:       0,
		},
		Build: BuildConfig{
			SourceDir:    "posts",
			PublicDir:    "public",
			ThemeDir:     "",
			IndexPath:    ".inkblog/index.db",
			IncludeDraft: false,
			Now:          time.Now(),
		},
		Serve: ServeConfig{
			Addr:     ":8080",
			Debounce: 200 * time.Millisecond,
			Metrics:  true,
		},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}

	if strings.TrimSpace(c.Site.SiteURL) == "" {
		ve.Add("site.site_url", "must not be empty")
	} else if !isValidAbsURL(c.Site.SiteURL) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}

	switch c.Site.ListStyle {
	case "", ListPlain, ListCards:
	default:
		ve.Addf("site.list_style", "must be %q or %q", ListPlain, ListCards)
	}

	switch c.Site.CodeToggle {
	case "", ToggleGlobal, ToggleBlock:
	default:
		ve.Addf("site.code_toggle", "must be %q or %q", ToggleGlobal, ToggleBlock)
	}

	if _, ok := content.ParseDayPolicy(string(c.Site.DayPolicy)); !ok {
		ve.Addf("site.day_policy", "must be %q, %q or %q", content.DayNaN, content.DayFirst, content.DayReject)
	}

	// 0 表示首页列出全部文章
	if c.Site.PageSize < 0 || c.Site.PageSize > 100 {
		ve.Add("site.page_size", "must be between 0 and 100")
	}

	if strings.TrimSpace(c.Site.Theme) == "" {
		ve.Add("site.theme", "must not be empty")
	}

	if strings.TrimSpace(c.Build.SourceDir) == "" {
		ve.Add("build.source_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.PublicDir) == "" {
		ve.Add("build.public_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.IndexPath) == "" {
		ve.Add("build.index_path", "must not be empty")
	}

	if c.Serve.Debounce < 0 {
		ve.Add("serve.debounce", "must not be negative")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// Load reads the YAML file at path on top of Default, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	// 文件中写到的字段覆盖默认值，其他字段保留 Default
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return finish(cfg)
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return finish(cfg)
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return finish(cfg)
}

func finish(cfg Config) (Config, error) {
	applyEnv(&cfg)
	if cfg.Build.Now.IsZero() {
		cfg.Build.Now = time.Now()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

const envPrefix = "INKBLOG_"

func applyEnv(cfg *Config) {
	if v := os.Getenv(envPrefix + "SITE_URL"); v != "" {
		cfg.Site.SiteURL = v
	}
	if v := os.Getenv(envPrefix + "ADDR"); v != "" {
		cfg.Serve.Addr = v
	}
	if v := os.Getenv(envPrefix + "SOURCE_DIR"); v != "" {
		cfg.Build.SourceDir = v
	}
	if v := os.Getenv(envPrefix + "PUBLIC_DIR"); v != "" {
		cfg.Build.PublicDir = v
	}
}

package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"inkblog/internal/domain/content"
)

//go:embed all:theme
var embeddedThemes embed.FS

var requiredTemplates = []string{
	"home.tmpl",
	"post.tmpl",
	"list.tmpl",
	"tags-all.tmpl",
	"404.tmpl",
}

type TemplateRenderer struct {
	tpl  *template.Template
	norm content.Normalizer
}

type TemplateOption func(*TemplateRenderer)

// WithDayPolicy makes page dates resolve under p, as the ordering does.
func WithDayPolicy(p content.DayPolicy) TemplateOption {
	return func(r *TemplateRenderer) { r.norm = content.Normalizer{Policy: p} }
}

// NewTemplateRenderer loads the named theme from themeDir, or from the
// embedded themes when themeDir is empty.
func NewTemplateRenderer(themeDir, themeName string, opts ...TemplateOption) (*TemplateRenderer, error) {
	r := &TemplateRenderer{}
	for _, o := range opts {
		o(r)
	}
	fsys, err := ThemeFS(themeDir, themeName)
	if err != nil {
		return nil, err
	}
	if err := CheckThemeTemplates(fsys); err != nil {
		return nil, err
	}
	tpl, err := template.New("").Funcs(templateFuncs(r.norm)).ParseFS(fsys, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", themeName, err)
	}
	r.tpl = tpl
	return r, nil
}

// ThemeFS returns the root of a theme, holding templates/ and static/.
func ThemeFS(themeDir, themeName string) (fs.FS, error) {
	if themeDir != "" {
		root := filepath.Join(themeDir, themeName)
		if _, err := os.Stat(root); err != nil {
			return nil, fmt.Errorf("theme %s: %w", themeName, err)
		}
		return os.DirFS(root), nil
	}
	sub, err := fs.Sub(embeddedThemes, "theme/"+themeName)
	if err != nil {
		return nil, err
	}
	if _, err := fs.Stat(sub, "templates"); err != nil {
		return nil, fmt.Errorf("theme %s: %w", themeName, err)
	}
	return sub, nil
}

// StaticFS returns the theme's static assets.
func StaticFS(themeDir, themeName string) (fs.FS, error) {
	fsys, err := ThemeFS(themeDir, themeName)
	if err != nil {
		return nil, err
	}
	return fs.Sub(fsys, "static")
}

func templateFuncs(norm content.Normalizer) template.FuncMap {
	return template.FuncMap{
		// 页面的生成时间决定页脚年份，构建结果可复现
		"year": func(generated time.Time) int {
			if generated.IsZero() {
				return time.Now().Year()
			}
			return generated.Year()
		},
		"postURL": PostURL,
		"tagURL":  TagURL,
		"displayDate": func(m content.PostMeta) string {
			return m.Published.Display()
		},
		"isoDate": func(m content.PostMeta) string {
			t := norm.Instant(m.Published)
			if !t.Valid() {
				return ""
			}
			return t.Time().Format("2006-01-02")
		},
		"tagLabel": TagLabel,
		"add":      func(a, b int) int { return a + b },
		"sub":      func(a, b int) int { return a - b },
	}
}

func PostURL(m content.PostMeta) string {
	return "/posts/" + url.PathEscape(m.Slug) + "/"
}

func TagURL(tag string) string {
	return "/tags/" + url.PathEscape(tag) + "/"
}

// TagLabel turns a normalized tag into its display form.
func TagLabel(tag string) string {
	// Caser 不能并发共享，每次新建
	return cases.Title(language.English).String(tag)
}

func (r *TemplateRenderer) RenderHome(ctx context.Context, page HomePage) ([]byte, error) {
	return r.exec("home.tmpl", page)
}

func (r *TemplateRenderer) RenderPost(ctx context.Context, page PostPage) ([]byte, error) {
	return r.exec("post.tmpl", page)
}

func (r *TemplateRenderer) RenderList(ctx context.Context, page ListPage) ([]byte, error) {
	return r.exec("list.tmpl", page)
}

func (r *TemplateRenderer) RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error) {
	return r.exec("404.tmpl", page)
}

func (r *TemplateRenderer) RenderTagsPage(ctx context.Context, page TagsPage) ([]byte, error) {
	return r.exec("tags-all.tmpl", page)
}

func (r *TemplateRenderer) exec(name string, data any) ([]byte, error) {
	t := r.tpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func CheckThemeTemplates(fsys fs.FS) error {
	for _, name := range requiredTemplates {
		if _, err := fs.Stat(fsys, "templates/"+name); err != nil {
			return fmt.Errorf("missing template: %s", name)
		}
	}
	return nil
}

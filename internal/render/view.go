package render

import (
	"html/template"
	"time"

	"inkblog/internal/domain/config"
	"inkblog/internal/domain/content"
)

type Heading struct {
	Level int
	ID    string
	Text  string
}

type PostPage struct {
	Site config.SiteConfig
	Meta content.PostMeta
	HTML template.HTML
	TOC  []Heading

	// Mode and Blocks drive the code toggle script.
	Mode   Mode
	Blocks int

	Newer   *content.PostMeta
	Older   *content.PostMeta
	IsDraft bool
	Title   string

	Generated time.Time
}

type HomePage struct {
	Site      config.SiteConfig
	Posts     []content.PostMeta
	Cards     bool
	Generated time.Time
	Title     string

	// 分页，从 1 开始
	Page     int
	Pages    int
	NewerURL string
	OlderURL string
}

type ListPage struct {
	Site      config.SiteConfig
	Title     string
	Tag       string
	Items     []content.PostMeta
	Total     int
	Generated time.Time
}

type NotFoundPage struct {
	Site      config.SiteConfig
	Path      string
	Title     string
	Generated time.Time
}

type TagStat struct {
	Name  string
	Count int
}

type TagsPage struct {
	Site      config.SiteConfig
	Tags      []TagStat
	Total     int
	Title     string
	Generated time.Time
}

package content

import (
	"fmt"
	"strings"
)

// PublishedDate is the loosely formatted date written by authors, e.g.
// {month: "July", date: "4th", year: 2022}.
type PublishedDate struct {
	Month string `yaml:"month" json:"month"`
	Day   string `yaml:"date" json:"date"`
	Year  int    `yaml:"year" json:"year"`
}

// Display renders the date the way it was written: "July 4th, 2022".
func (d PublishedDate) Display() string {
	return fmt.Sprintf("%s %s, %d", d.Month, d.Day, d.Year)
}

type PostMeta struct {
	Title     string        `json:"title"`
	Summary   string        `json:"summary"`
	Link      string        `json:"post_link"`
	Published PublishedDate `json:"published_date"`
	Tags      []string      `json:"tags,omitempty"`

	// 由 ingest 填充
	Slug  string `json:"slug"`
	Draft bool   `json:"draft,omitempty"`
}

type BodyRef struct {
	SourcePath  string
	ContentHash string
}

type Post struct {
	Meta PostMeta
	Body BodyRef
}

// HasTitle reports whether the post carries a title after trimming.
func (m PostMeta) HasTitle() bool {
	return strings.TrimSpace(m.Title) != ""
}

func (m *PostMeta) Normalize() {
	m.Title = strings.TrimSpace(m.Title)
	m.Summary = strings.TrimSpace(m.Summary)
	m.Link = strings.TrimSpace(m.Link)
	m.Slug = strings.TrimSpace(m.Slug)
	m.Published.Month = strings.TrimSpace(m.Published.Month)
	m.Published.Day = strings.TrimSpace(m.Published.Day)

	m.Tags = normalizeTags(m.Tags)
}

// HasTag reports whether tag, after NormalizeTag, is one of the post's tags.
func (m PostMeta) HasTag(tag string) bool {
	tag = NormalizeTag(tag)
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NormalizeTag lowercases and trims tag. A tag names its own directory and
// URL segment, so path separators become '-' and dot-only names are
// dropped (returned as "").
func NormalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if strings.Trim(tag, ".") == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '-'
		}
		return r
	}, tag)
}

func normalizeTags(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = NormalizeTag(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

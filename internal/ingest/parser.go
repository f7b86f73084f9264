package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"inkblog/internal/domain/content"
	"inkblog/internal/render"
)

var errNoFrontMatter = errors.New("no front matter found")
var errInvalidFrontMatter = errors.New("invalid front matter")

type FrontMatter struct {
	Title string `yaml:"title"`
	// Summary is usually a string but may be any structured value.
	Summary   any                   `yaml:"summary"`
	Link      string                `yaml:"post_link"`
	Published content.PublishedDate `yaml:"published_date"`
	Slug      string                `yaml:"slug"`

	Tags   []string `yaml:"tags"`
	Hidden bool     `yaml:"hidden"`
	Draft  bool     `yaml:"draft"`
}

// SummaryText returns the summary as plain text.
func (fm FrontMatter) SummaryText() string {
	if s, ok := fm.Summary.(string); ok {
		return s
	}
	return render.Flatten(render.FromValue(fm.Summary))
}

func (fm FrontMatter) Meta() content.PostMeta {
	m := content.PostMeta{
		Title:     fm.Title,
		Summary:   fm.SummaryText(),
		Link:      fm.Link,
		Published: fm.Published,
		Tags:      fm.Tags,
		Draft:     fm.Draft,
	}
	m.Normalize()
	return m
}

func ParseFrontMatter(raw []byte) (FrontMatter, []byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return FrontMatter{}, raw, errNoFrontMatter
	}

	// 统一换行符
	norm := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	norm = bytes.ReplaceAll(norm, []byte("\r"), []byte("\n"))

	const (
		sep      = "---"
		sepLine  = sep + "\n"
		closeMid = "\n" + sep + "\n"
	)

	if !bytes.HasPrefix(norm, []byte(sepLine)) {
		return FrontMatter{}, norm, errNoFrontMatter
	}

	rest := norm[len(sepLine):]

	var yamlPart, bodyPart []byte

	switch {
	case bytes.HasPrefix(rest, []byte(sepLine)):
		// "---\n---\n" 空 front matter
		bodyPart = rest[len(sepLine):]
	case bytes.Contains(rest, []byte(closeMid)):
		parts := bytes.SplitN(rest, []byte(closeMid), 2)
		yamlPart, bodyPart = parts[0], parts[1]
	case bytes.HasSuffix(rest, []byte("\n"+sep)):
		yamlPart = rest[:len(rest)-len("\n"+sep)]
	case bytes.Equal(bytes.TrimSpace(rest), []byte(sep)):
	default:
		return FrontMatter{}, norm, errInvalidFrontMatter
	}

	yamlPart = bytes.TrimSpace(yamlPart)
	bodyPart = bytes.TrimSpace(bodyPart)

	var fm FrontMatter
	if len(yamlPart) > 0 {
		if err := yaml.Unmarshal(yamlPart, &fm); err != nil {
			return FrontMatter{}, norm, err
		}
	}
	return fm, bodyPart, nil
}

// ResolveSlug picks the URL slug: the explicit slug, then the last segment
// of post_link, then the file name.
func ResolveSlug(fm FrontMatter, p string) string {
	if s := strings.TrimSpace(fm.Slug); s != "" {
		return slugify(s)
	}
	if l := strings.Trim(strings.TrimSpace(fm.Link), "/"); l != "" {
		if s := slugify(path.Base(l)); s != "" {
			return s
		}
	}
	base := filepath.Base(p)
	return slugify(strings.TrimSuffix(base, filepath.Ext(base)))
}

func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func slugify(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var out []rune
	lastDash := false

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]

		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, unicode.ToLower(r))
			lastDash = false
			continue
		}
		if !lastDash && len(out) > 0 {
			out = append(out, '-')
			lastDash = true
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	return string(out)
}

// ReadBody loads a post source and returns the markdown after its front
// matter.
func ReadBody(ref content.BodyRef) ([]byte, error) {
	raw, err := os.ReadFile(ref.SourcePath)
	if err != nil {
		return nil, err
	}
	_, body, err := ParseFrontMatter(raw)
	if err != nil && !errors.Is(err, errNoFrontMatter) {
		return nil, err
	}
	return body, nil
}

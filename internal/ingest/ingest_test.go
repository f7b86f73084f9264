package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkblog/internal/domain/content"
)

func writePost(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func post(title, link, month, day string, year int, extra string) string {
	return "---\n" +
		"title: \"" + title + "\"\n" +
		"post_link: " + link + "\n" +
		"published_date:\n" +
		"  month: " + month + "\n" +
		"  date: \"" + day + "\"\n" +
		"  year: " + strconv.Itoa(year) + "\n" +
		extra +
		"---\n\n# " + title + "\n"
}

func warnMsgs(ws []Warning) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, filepath.Base(w.Path)+": "+w.Msg)
	}
	return out
}

func TestParseFrontMatter(t *testing.T) {
	raw := []byte("---\r\ntitle: Cosine Similarity\r\npost_link: /blog/cosine-similarity\r\npublished_date:\r\n  month: July\r\n  date: 4th\r\n  year: 2022\r\ntags: [ML, math]\r\n---\r\n\r\nBody text\r\n")

	fm, body, err := ParseFrontMatter(raw)
	require.NoError(t, err)
	assert.Equal(t, "Cosine Similarity", fm.Title)
	assert.Equal(t, content.PublishedDate{Month: "July", Day: "4th", Year: 2022}, fm.Published)
	assert.Equal(t, []string{"ML", "math"}, fm.Tags)
	assert.Equal(t, "Body text", string(body))
}

func TestParseFrontMatter_NumericDay(t *testing.T) {
	fm, _, err := ParseFrontMatter([]byte("---\npublished_date:\n  month: Dec\n  date: 24\n  year: 2019\n---\n"))
	require.NoError(t, err)
	assert.Equal(t, "24", fm.Published.Day)
}

func TestParseFrontMatter_Errors(t *testing.T) {
	_, _, err := ParseFrontMatter([]byte("no front matter"))
	assert.ErrorIs(t, err, errNoFrontMatter)

	_, _, err = ParseFrontMatter([]byte("---\ntitle: x\nnever closed"))
	assert.ErrorIs(t, err, errInvalidFrontMatter)

	_, _, err = ParseFrontMatter([]byte("---\ntitle: [unterminated\n---\nbody"))
	assert.Error(t, err)
}

func TestParseFrontMatter_Empty(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("---\n---\nhello"))
	require.NoError(t, err)
	assert.Empty(t, fm.Title)
	assert.Equal(t, "hello", string(body))
}

func TestFrontMatter_StructuredSummary(t *testing.T) {
	fm, _, err := ParseFrontMatter([]byte("---\ntitle: t\nsummary:\n  - \"Part \"\n  - 2\n  - children: [\" of \", 3]\n  - true\n---\n"))
	require.NoError(t, err)
	assert.Equal(t, "Part 2 of 3", fm.SummaryText())
	assert.Equal(t, "Part 2 of 3", fm.Meta().Summary)
}

func TestResolveSlug(t *testing.T) {
	cases := []struct {
		name string
		fm   FrontMatter
		path string
		want string
	}{
		{"explicit", FrontMatter{Slug: "My Slug", Link: "other"}, "a.md", "my-slug"},
		{"link", FrontMatter{Link: "/blog/fast-llm-inferencing"}, "a.md", "fast-llm-inferencing"},
		{"link trailing slash", FrontMatter{Link: "tfidf/"}, "a.md", "tfidf"},
		{"file name", FrontMatter{}, "posts/D3 Tutorial.mdx", "d3-tutorial"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveSlug(tc.fm, tc.path))
		})
	}
}

func TestDiscoverSource(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "b.md", "x")
	writePost(t, dir, "a.mdx", "x")
	writePost(t, dir, "sub/c.markdown", "x")
	writePost(t, dir, "notes.txt", "x")
	writePost(t, dir, ".drafts/d.md", "x")

	files, err := DiscoverSource(dir)
	require.NoError(t, err)

	var got []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f.Path)
		got = append(got, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"a.mdx", "b.md", "sub/c.markdown"}, got)
}

func TestIngest_FiltersAndWarns(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "01-cosine.md", post("Cosine Similarity", "cosine-similarity", "July", "4th", 2022, "tags: [ML, Math, ml]\n"))
	writePost(t, dir, "02-untitled.md", post("  ", "untitled", "July", "5th", 2022, ""))
	writePost(t, dir, "03-odd-month.md", post("Odd", "odd", "Sometime", "2nd", 2021, ""))
	writePost(t, dir, "04-dupe.md", post("Dupe", "cosine-similarity", "July", "6th", 2022, ""))
	writePost(t, dir, "05-broken.md", "---\ntitle: [oops\n---\n")
	writePost(t, dir, "06-hidden.md", post("Hidden", "hidden", "July", "7th", 2022, "hidden: true\n"))
	writePost(t, dir, "07-draft.md", post("Draft", "draft", "July", "8th", 2022, "draft: true\n"))

	posts, warns, err := Ingest(context.Background(), dir, Options{FilterUntitled: true})
	require.NoError(t, err)

	require.Len(t, posts, 2)
	assert.Equal(t, "cosine-similarity", posts[0].Meta.Slug)
	assert.Equal(t, []string{"ml", "math"}, posts[0].Meta.Tags)
	assert.NotEmpty(t, posts[0].Body.ContentHash)
	assert.Equal(t, "odd", posts[1].Meta.Slug)

	msgs := strings.Join(warnMsgs(warns), "\n")
	assert.Contains(t, msgs, "02-untitled.md: title is empty, skipped")
	assert.Contains(t, msgs, "03-odd-month.md: unknown month \"Sometime\"")
	assert.Contains(t, msgs, "04-dupe.md: duplicate slug, skipped: cosine-similarity")
	assert.Contains(t, msgs, "05-broken.md: failed to parse front matter")
	assert.NotContains(t, msgs, "06-hidden.md")
}

func TestIngest_KeepsUntitledWhenFilterOff(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", post("", "a", "May", "1st", 2020, ""))

	posts, warns, err := Ingest(context.Background(), dir, Options{FilterUntitled: false})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, []string{"a.md: title is empty"}, warnMsgs(warns))
}

func TestIngest_IncludeDraft(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", post("Draft", "a", "May", "1st", 2020, "draft: true\n"))

	posts, _, err := Ingest(context.Background(), dir, Options{IncludeDraft: true})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].Meta.Draft)
}

func TestIngest_DayPolicyReject(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "bad.md", post("Bad Day", "bad", "May", "first", 2020, ""))
	writePost(t, dir, "good.md", post("Good Day", "good", "May", "1st", 2020, ""))

	posts, warns, err := Ingest(context.Background(), dir, Options{DayPolicy: content.DayReject})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "good", posts[0].Meta.Slug)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0].Msg, "malformed published day")

	posts, warns, err = Ingest(context.Background(), dir, Options{DayPolicy: content.DayNaN})
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Empty(t, warns)
}

func TestIngest_MissingDir(t *testing.T) {
	_, _, err := Ingest(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{})
	assert.Error(t, err)
}

func TestIngest_Canceled(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", post("A", "a", "May", "1st", 2020, ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Ingest(ctx, dir, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadBody(t *testing.T) {
	dir := t.TempDir()
	p := writePost(t, dir, "a.md", "---\ntitle: A\n---\n\nhello *world*\n")
	body, err := ReadBody(content.BodyRef{SourcePath: p})
	require.NoError(t, err)
	assert.Equal(t, "hello *world*", string(body))

	p = writePost(t, dir, "b.md", "just markdown\n")
	body, err = ReadBody(content.BodyRef{SourcePath: p})
	require.NoError(t, err)
	assert.Equal(t, "just markdown", string(body))
}

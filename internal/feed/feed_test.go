package feed

import (
	"bytes"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkblog/internal/domain/config"
	"inkblog/internal/domain/content"
)

func site() config.SiteConfig {
	s := config.Default().Site
	s.Title = "Notes"
	s.SiteURL = "https://blog.example.com/"
	s.Description = "Things I learned"
	return s
}

func TestWriteRSS(t *testing.T) {
	posts := []content.PostMeta{
		{Title: "Triton", Slug: "fast-llm-inferencing", Summary: "Kernels", Tags: []string{"ml"},
			Published: content.PublishedDate{Month: "Nov", Day: "11th", Year: 2024}},
		{Title: "Broken", Slug: "broken",
			Published: content.PublishedDate{Month: "May", Day: "soon", Year: 2020}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRSS(&buf, site(), posts))

	var got rssXML
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2.0", got.Version)
	assert.Equal(t, "Notes", got.Channel.Title)
	assert.Equal(t, "https://blog.example.com/", got.Channel.Link)
	require.Len(t, got.Channel.Items, 2)

	first := got.Channel.Items[0]
	assert.Equal(t, "https://blog.example.com/posts/fast-llm-inferencing/", first.Link)
	assert.Equal(t, first.Link, first.GUID)
	assert.Equal(t, "Mon, 11 Nov 2024 00:00:00 +0000", first.PubDate)
	assert.Equal(t, []string{"ml"}, first.Categories)

	assert.Empty(t, got.Channel.Items[1].PubDate)
}

func TestWriteRSS_DayPolicyFirst(t *testing.T) {
	s := site()
	s.DayPolicy = content.DayFirst
	posts := []content.PostMeta{{Title: "x", Slug: "x", Published: content.PublishedDate{Month: "May", Day: "soon", Year: 2020}}}

	var buf bytes.Buffer
	require.NoError(t, WriteRSS(&buf, s, posts))
	assert.Contains(t, buf.String(), "<pubDate>Fri, 01 May 2020 00:00:00 +0000</pubDate>")
}

func TestWriteSitemap(t *testing.T) {
	posts := []content.PostMeta{
		{Slug: "tfidf", Published: content.PublishedDate{Month: "Aug", Day: "1th", Year: 2022}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSitemap(&buf, site(), posts, []string{"nlp"}))

	var got sitemapURLSet
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []sitemapURL{
		{Loc: "https://blog.example.com/"},
		{Loc: "https://blog.example.com/posts/tfidf/", LastMod: "2022-08-01"},
		{Loc: "https://blog.example.com/tags/"},
		{Loc: "https://blog.example.com/tags/nlp/"},
	}, got.URLs)
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "http://x/", BuildURL("http://x"))
	assert.Equal(t, "http://x/tags/machine%20learning/", BuildURL("http://x/", "tags", "machine learning"))
}

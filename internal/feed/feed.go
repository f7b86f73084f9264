package feed

import (
	"encoding/xml"
	"io"
	"net/url"
	"strings"
	"time"

	"inkblog/internal/domain/config"
	"inkblog/internal/domain/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description,omitempty"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

// WriteRSS encodes posts, already ordered, as an RSS 2.0 channel.
// Posts whose date does not resolve get no pubDate.
func WriteRSS(w io.Writer, site config.SiteConfig, posts []content.PostMeta) error {
	norm := content.Normalizer{Policy: site.DayPolicy}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if in := norm.Instant(p.Published); in.Valid() {
			pubDate = in.Time().Format(time.RFC1123Z)
		}
		link := BuildURL(site.SiteURL, "posts", p.Slug)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.Summary,
			PubDate:     pubDate,
			GUID:        link,
			Categories:  p.Tags,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Title,
			Link:        BuildURL(site.SiteURL),
			Description: site.Description,
			Items:       items,
		},
	}
	return encode(w, feed)
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap lists the home page, every post and every tag page.
func WriteSitemap(w io.Writer, site config.SiteConfig, posts []content.PostMeta, tags []string) error {
	norm := content.Normalizer{Policy: site.DayPolicy}
	urls := []sitemapURL{
		{Loc: BuildURL(site.SiteURL)},
	}
	for _, p := range posts {
		u := sitemapURL{Loc: BuildURL(site.SiteURL, "posts", p.Slug)}
		if in := norm.Instant(p.Published); in.Valid() {
			u.LastMod = in.Time().Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	if len(tags) > 0 {
		urls = append(urls, sitemapURL{Loc: BuildURL(site.SiteURL, "tags")})
	}
	for _, t := range tags {
		urls = append(urls, sitemapURL{Loc: BuildURL(site.SiteURL, "tags", t)})
	}
	return encode(w, sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
}

func encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// BuildURL joins base and path segments into a directory-style URL.
func BuildURL(base string, parts ...string) string {
	base = strings.TrimRight(base, "/")
	if len(parts) == 0 {
		return base + "/"
	}
	esc := make([]string, 0, len(parts))
	for _, p := range parts {
		esc = append(esc, url.PathEscape(strings.Trim(p, "/")))
	}
	return base + "/" + strings.Join(esc, "/") + "/"
}

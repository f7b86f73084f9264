package app

import (
	"path/filepath"
	"strconv"

	"inkblog/internal/domain/content"
	"inkblog/internal/domain/site"
	"inkblog/internal/index"
)

type RouteBuilder struct {
	Index *index.Store
	// PageSize splits the landing page; 0 keeps every post on one page.
	PageSize int
}

// BuildIndexRoutes returns one route per landing page.
func (rb *RouteBuilder) BuildIndexRoutes(posts []content.PostMeta) []site.Route {
	pages := pageCount(len(posts), rb.PageSize)
	routes := make([]site.Route, 0, pages)
	routes = append(routes, site.Route{Kind: site.RouteIndex, OutPath: "index.html"})
	for p := 2; p <= pages; p++ {
		routes = append(routes, site.Route{
			Kind:    site.RouteIndex,
			Page:    p,
			OutPath: filepath.Join("page", strconv.Itoa(p), "index.html"),
		})
	}
	return routes
}

func (rb *RouteBuilder) BuildPostRoutes(posts []content.PostMeta) []site.Route {
	routes := make([]site.Route, 0, len(posts))
	for _, m := range posts {
		routes = append(routes, site.Route{
			Kind:    site.RoutePost,
			Slug:    m.Slug,
			OutPath: filepath.Join("posts", m.Slug, "index.html"),
		})
	}
	return routes
}

func (rb *RouteBuilder) BuildTagRoutes() ([]site.Route, error) {
	tags, err := rb.Index.Tags()
	if err != nil {
		return nil, err
	}
	routes := make([]site.Route, 0, len(tags)+1)
	routes = append(routes, site.Route{
		Kind:    site.RouteTags,
		OutPath: filepath.Join("tags", "index.html"),
	})
	for _, t := range tags {
		// ingest 已规范化标签；其他名字不能安全地作为目录
		if content.NormalizeTag(t.Name) != t.Name {
			continue
		}
		routes = append(routes, site.Route{
			Kind:    site.RouteTag,
			Key:     t.Name,
			OutPath: filepath.Join("tags", t.Name, "index.html"),
		})
	}
	return routes, nil
}

// BuildRoutes returns every page of the static site.
func (rb *RouteBuilder) BuildRoutes(posts []content.PostMeta) ([]site.Route, error) {
	routes := rb.BuildIndexRoutes(posts)
	routes = append(routes, rb.BuildPostRoutes(posts)...)

	tagRoutes, err := rb.BuildTagRoutes()
	if err != nil {
		return nil, err
	}
	routes = append(routes, tagRoutes...)

	return append(routes,
		site.Route{Kind: site.RouteRSS, OutPath: "feed.xml"},
		site.Route{Kind: site.RouteSitemap, OutPath: "sitemap.xml"},
		site.Route{Kind: site.RouteNotFound, OutPath: "404.html"},
	), nil
}

package site

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

type RouteKind string

const (
	RouteIndex    RouteKind = "index"
	RoutePost     RouteKind = "post"
	RouteTag      RouteKind = "tag"
	RouteTags     RouteKind = "tags"
	RouteRSS      RouteKind = "rss"
	RouteSitemap  RouteKind = "sitemap"
	RouteNotFound RouteKind = "404"
)

type Route struct {
	Kind    RouteKind
	Slug    string
	Key     string
	Page    int
	OutPath string
}

func (r Route) String() string {
	var parts []string
	parts = append(parts, string(r.Kind))
	if r.Slug != "" {
		parts = append(parts, "slug="+r.Slug)
	}
	if r.Key != "" {
		parts = append(parts, "key="+r.Key)
	}
	if r.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", r.Page))
	}
	if r.OutPath != "" {
		parts = append(parts, "out="+r.OutPath)
	}
	return strings.Join(parts, " ")
}

// URLPath is the path the route is served under.
func (r Route) URLPath() string {
	switch r.Kind {
	case RoutePost:
		return "/posts/" + url.PathEscape(r.Slug) + "/"
	case RouteTag:
		return "/tags/" + url.PathEscape(r.Key) + "/"
	case RouteTags:
		return "/tags/"
	case RouteRSS:
		return "/feed.xml"
	case RouteSitemap:
		return "/sitemap.xml"
	case RouteNotFound:
		return "/404.html"
	}
	if r.Page > 1 {
		return "/page/" + strconv.Itoa(r.Page) + "/"
	}
	return "/"
}

func (r Route) ContentType() string {
	switch r.Kind {
	case RouteRSS:
		return "application/rss+xml; charset=utf-8"
	case RouteSitemap:
		return "application/xml; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}

// Parse maps a request path onto a route; "/page/<n>/" is page n of the
// landing page. Paths it does not know yield RouteNotFound. Whether a slug,
// tag or page exists is left to the caller.
func Parse(p string) Route {
	clean := path.Clean("/" + p)
	switch clean {
	case "/", "/index.html":
		return Route{Kind: RouteIndex}
	case "/tags":
		return Route{Kind: RouteTags}
	case "/feed.xml":
		return Route{Kind: RouteRSS}
	case "/sitemap.xml":
		return Route{Kind: RouteSitemap}
	}

	segs := strings.Split(strings.Trim(clean, "/"), "/")
	if n := len(segs); n == 3 && segs[2] == "index.html" {
		segs = segs[:2]
	}
	if len(segs) != 2 {
		return Route{Kind: RouteNotFound}
	}
	val, err := url.PathUnescape(segs[1])
	if err != nil || val == "" {
		return Route{Kind: RouteNotFound}
	}
	switch segs[0] {
	case "page":
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return Route{Kind: RouteNotFound}
		}
		if n == 1 {
			return Route{Kind: RouteIndex}
		}
		return Route{Kind: RouteIndex, Page: n}
	case "posts":
		return Route{Kind: RoutePost, Slug: val}
	case "tags":
		return Route{Kind: RouteTag, Key: val}
	}
	return Route{Kind: RouteNotFound}
}

package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"inkblog/internal/domain/config"
	"inkblog/internal/domain/content"
	"inkblog/internal/domain/site"
	"inkblog/internal/feed"
	"inkblog/internal/index"
	"inkblog/internal/ingest"
	"inkblog/internal/render"
)

// ErrNotFound is returned by Render for a post or tag that does not exist.
var ErrNotFound = index.ErrNotFound

// Render produces the body of one route. Post pages use the code block
// scope carried by ctx, or a fresh one in the configured mode.
func (b *Blog) Render(ctx context.Context, r site.Route) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	switch r.Kind {
	case site.RouteIndex:
		return b.renderHome(ctx, r.Page)
	case site.RoutePost:
		return b.renderPost(ctx, r.Slug)
	case site.RouteTag:
		return b.renderTag(ctx, r.Key)
	case site.RouteTags:
		return b.renderTags(ctx)
	case site.RouteRSS:
		var buf bytes.Buffer
		err := feed.WriteRSS(&buf, b.cfg.Site, b.ordered)
		return buf.Bytes(), err
	case site.RouteSitemap:
		names := make([]string, 0, len(b.tags))
		for _, t := range b.tags {
			names = append(names, t.Name)
		}
		var buf bytes.Buffer
		err := feed.WriteSitemap(&buf, b.cfg.Site, b.ordered, names)
		return buf.Bytes(), err
	case site.RouteNotFound:
		return b.tpl.RenderNotFound(ctx, render.NotFoundPage{
			Site:  b.cfg.Site,
			Path:      r.Key,
			Title:     "Not found",
			Generated: b.generated(),
		})
	}
	return nil, fmt.Errorf("unknown route kind %q", r.Kind)
}

func (b *Blog) renderHome(ctx context.Context, page int) ([]byte, error) {
	if page < 1 {
		page = 1
	}
	size := b.cfg.Site.PageSize
	pages := pageCount(len(b.ordered), size)
	if page > pages {
		return nil, ErrNotFound
	}

	posts := b.ordered
	if pages > 1 {
		items, err := b.idx.List(index.ListOptions{Page: page, Size: size})
		if err != nil {
			return nil, err
		}
		posts = items
	}

	hp := render.HomePage{
		Site:      b.cfg.Site,
		Posts:     posts,
		Cards:     b.cfg.Site.ListStyle == config.ListCards,
		Generated: b.generated(),
		Page:      page,
		Pages:     pages,
	}
	if page > 1 {
		hp.NewerURL = site.Route{Kind: site.RouteIndex, Page: page - 1}.URLPath()
		hp.Title = fmt.Sprintf("Page %d", page)
	}
	if page < pages {
		hp.OlderURL = site.Route{Kind: site.RouteIndex, Page: page + 1}.URLPath()
	}
	return b.tpl.RenderHome(ctx, hp)
}

// pageCount is the number of landing pages for n posts. size 0 puts every
// post on one page; an empty blog still has one.
func pageCount(n, size int) int {
	if size <= 0 || n <= size {
		return 1
	}
	return (n + size - 1) / size
}

func (b *Blog) renderPost(ctx context.Context, slug string) ([]byte, error) {
	post, ok := b.posts[slug]
	if !ok {
		return nil, ErrNotFound
	}
	if _, ok := render.LookupScope(ctx); !ok {
		ctx = render.WithScope(ctx, b.NewScope())
	}

	body, err := ingest.ReadBody(post.Body)
	if err != nil {
		return nil, fmt.Errorf("read post source(%s): %w", post.Body.SourcePath, err)
	}
	res, err := b.md.Render(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("markdown render(%s): %w", slug, err)
	}
	newer, older, err := b.idx.Neighbors(slug)
	if err != nil && !errors.Is(err, index.ErrNotFound) {
		return nil, err
	}

	meta := post.Meta
	return b.tpl.RenderPost(ctx, render.PostPage{
		Site:    b.cfg.Site,
		Meta:    meta,
		HTML:    template.HTML(res.HTML),
		TOC:     res.Headings,
		Mode:    render.ScopeFrom(ctx).Mode(),
		Blocks:  res.Blocks,
		Newer:   newer,
		Older:   older,
		IsDraft: meta.Draft,
		Title:   meta.Title,

		Generated: b.generated(),
	})
}

func (b *Blog) renderTag(ctx context.Context, tag string) ([]byte, error) {
	tag = content.NormalizeTag(tag)
	items, err := b.idx.AllByTag(tag)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return b.tpl.RenderList(ctx, render.ListPage{
		Site:      b.cfg.Site,
		Title:     "Tag: " + render.TagLabel(tag),
		Tag:       tag,
		Items:     items,
		Total:     len(items),
		Generated: b.generated(),
	})
}

func (b *Blog) renderTags(ctx context.Context) ([]byte, error) {
	stats := make([]render.TagStat, 0, len(b.tags))
	for _, t := range b.tags {
		stats = append(stats, render.TagStat{Name: t.Name, Count: t.Count})
	}
	return b.tpl.RenderTagsPage(ctx, render.TagsPage{
		Site:  b.cfg.Site,
		Tags:      stats,
		Total:     len(stats),
		Title:     "Tags",
		Generated: b.generated(),
	})
}

func (b *Blog) generated() time.Time {
	if b.cfg.Build.Now.IsZero() {
		return time.Now()
	}
	return b.cfg.Build.Now
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	dbuild "inkblog/internal/domain/build"
	"inkblog/internal/domain/config"
	"inkblog/internal/domain/content"
	"inkblog/internal/domain/site"
	"inkblog/internal/index"
	"inkblog/internal/ingest"
	"inkblog/internal/logfields"
	"inkblog/internal/metrics"
	"inkblog/internal/render"
)

// rendererVersion changes whenever generated markup changes shape.
const rendererVersion = "goldmark-gfm/codeblocks-1"

type Options struct {
	Config    config.Config
	Logger    *slog.Logger
	Metrics   metrics.Recorder
	Highlight render.Highlighter
}

// Blog holds the ordered post list and renders any route of the site from
// it. Reload swaps in a fresh list; renders never observe a half-built one.
type Blog struct {
	cfg       config.Config
	logger    *slog.Logger
	rec       metrics.Recorder
	md        *render.MarkdownRenderer
	tpl       render.Renderer
	idx       *index.Store
	themeHash string

	mu      sync.RWMutex
	posts   map[string]content.Post
	ordered []content.PostMeta
	tags    []index.TagCount
	warns   []ingest.Warning
	fp      dbuild.Fingerprint
}

func Open(opt Options) (*Blog, error) {
	cfg := opt.Config
	logger := logfields.Or(opt.Logger).With(logfields.Component("blog"))

	tpl, err := render.NewTemplateRenderer(cfg.Build.ThemeDir, cfg.Site.Theme,
		render.WithDayPolicy(cfg.Site.DayPolicy))
	if err != nil {
		return nil, fmt.Errorf("load theme %s: %w", cfg.Site.Theme, err)
	}
	themeFS, err := render.ThemeFS(cfg.Build.ThemeDir, cfg.Site.Theme)
	if err != nil {
		return nil, err
	}
	themeHash, err := dbuild.HashFS(themeFS)
	if err != nil {
		return nil, fmt.Errorf("hash theme: %w", err)
	}

	idx, err := index.Open(index.OpenOptions{Path: cfg.Build.IndexPath})
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return &Blog{
		cfg:    cfg,
		logger: logger,
		rec:    metrics.Or(opt.Metrics),
		md: render.NewMarkdownRenderer(
			render.WithHighlighter(opt.Highlight),
			render.WithMarkdownLogger(logger),
		),
		tpl:       tpl,
		idx:       idx,
		themeHash: themeHash,
		posts:     make(map[string]content.Post),
	}, nil
}

func (b *Blog) Close() error {
	return b.idx.Close()
}

func (b *Blog) Config() config.Config { return b.cfg }

type Result struct {
	Posts    int
	Warnings []ingest.Warning
	Duration time.Duration
}

// Reload ingests the sources, orders them and rebuilds the index.
func (b *Blog) Reload(ctx context.Context) (Result, error) {
	start := time.Now()
	res, err := b.reload(ctx)
	res.Duration = time.Since(start)

	b.rec.ObserveBuildDuration(res.Duration)
	if err != nil {
		b.rec.IncBuildOutcome(metrics.OutcomeFailed)
		return res, err
	}
	b.rec.IncBuildOutcome(metrics.OutcomeSuccess)
	b.rec.SetPosts(res.Posts)
	b.rec.AddWarnings(len(res.Warnings))

	b.logger.Info("reload complete",
		logfields.Posts(res.Posts),
		logfields.Warnings(len(res.Warnings)),
		logfields.DurationMS(float64(res.Duration.Microseconds())/1000))
	return res, nil
}

func (b *Blog) reload(ctx context.Context) (Result, error) {
	cfg := b.cfg
	posts, warns, err := ingest.Ingest(ctx, cfg.Build.SourceDir, ingest.Options{
		DayPolicy:      cfg.Site.DayPolicy,
		FilterUntitled: cfg.Site.FilterUntitled,
		IncludeDraft:   cfg.Build.IncludeDraft,
		Logger:         b.logger,
	})
	if err != nil {
		return Result{}, fmt.Errorf("ingest: %w", err)
	}

	ordered := content.Normalizer{Policy: cfg.Site.DayPolicy}.OrderPosts(posts)

	fp := dbuild.Fingerprint{
		ThemeHash:    b.themeHash,
		ConfigHash:   dbuild.HashStrings(fmt.Sprintf("%+v", cfg.Site)),
		RendererHash: rendererVersion,
	}
	parts := make([]string, 0, 2*len(ordered))
	bySlug := make(map[string]content.Post, len(ordered))
	for _, p := range ordered {
		parts = append(parts, p.Meta.Slug, p.Body.ContentHash)
		bySlug[p.Meta.Slug] = p
	}
	fp.ContentHash = dbuild.HashStrings(parts...)
	fp.ComputeRenderHash()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.idx.Rebuild(ordered); err != nil {
		return Result{}, fmt.Errorf("index rebuild: %w", err)
	}
	metas, err := b.idx.All()
	if err != nil {
		return Result{}, fmt.Errorf("index read: %w", err)
	}
	tags, err := b.idx.Tags()
	if err != nil {
		return Result{}, fmt.Errorf("index tags: %w", err)
	}

	b.posts = bySlug
	b.ordered = metas
	b.tags = tags
	b.warns = warns
	b.fp = fp

	return Result{Posts: len(metas), Warnings: warns}, nil
}

// Posts returns the ordered list, newest first.
func (b *Blog) Posts() []content.PostMeta {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]content.PostMeta(nil), b.ordered...)
}

func (b *Blog) Warnings() []ingest.Warning {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]ingest.Warning(nil), b.warns...)
}

func (b *Blog) Fingerprint() dbuild.Fingerprint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fp
}

// Routes lists every page of the static site.
func (b *Blog) Routes() ([]site.Route, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rb := RouteBuilder{Index: b.idx, PageSize: b.cfg.Site.PageSize}
	return rb.BuildRoutes(b.ordered)
}

// NewScope returns a code block scope in the configured toggle mode.
func (b *Blog) NewScope() *render.Scope {
	return render.NewScope(render.ParseMode(string(b.cfg.Site.CodeToggle)))
}

package build

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"inkblog/internal/app"
	"inkblog/internal/domain/config"
	"inkblog/internal/ingest"
	"inkblog/internal/logfields"
	"inkblog/internal/metrics"
	"inkblog/internal/render"
)

type Builder struct {
	Cfg       config.Config
	Logger    *slog.Logger
	Metrics   metrics.Recorder
	Highlight render.Highlighter
}

type Result struct {
	Posts    int
	Pages    int
	Warnings []ingest.Warning
}

// Run writes the whole static site to the public directory.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	logger := logfields.Or(b.Logger).With(logfields.Component("build"))

	blog, err := app.Open(app.Options{
		Config:    b.Cfg,
		Logger:    b.Logger,
		Metrics:   b.Metrics,
		Highlight: b.Highlight,
	})
	if err != nil {
		return nil, err
	}
	defer blog.Close()

	res, err := blog.Reload(ctx)
	if err != nil {
		return nil, err
	}

	outDir := b.Cfg.Build.PublicDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir public: %w", err)
	}

	routes, err := blog.Routes()
	if err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}
	for _, r := range routes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// 静态构建每页都用新的 scope：代码块初始全部可见
		data, err := blog.Render(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", r, err)
		}
		if err := writeFile(outDir, r.OutPath, data); err != nil {
			return nil, err
		}
		logger.Debug("page written", logfields.Route(r.OutPath))
	}

	if err := b.copyStaticAssets(outDir); err != nil {
		return nil, fmt.Errorf("copy static assets: %w", err)
	}

	logger.Info("build complete",
		logfields.Posts(res.Posts),
		slog.Int("pages", len(routes)),
		logfields.Path(outDir))
	return &Result{
		Posts:    res.Posts,
		Pages:    len(routes),
		Warnings: res.Warnings,
	}, nil
}

func (b *Builder) copyStaticAssets(outDir string) error {
	src, err := render.StaticFS(b.Cfg.Build.ThemeDir, b.Cfg.Site.Theme)
	if err != nil {
		return err
	}
	dstRoot := filepath.Join(outDir, "static")

	return fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dst := filepath.Join(dstRoot, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		return copyFile(src, p, dst)
	})
}

func copyFile(src fs.FS, name, dst string) error {
	in, err := src.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

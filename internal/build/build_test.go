package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkblog/internal/domain/config"
	"inkblog/internal/metrics"
)

func setup(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Build.SourceDir = filepath.Join(dir, "posts")
	cfg.Build.PublicDir = filepath.Join(dir, "public")
	cfg.Build.IndexPath = filepath.Join(dir, "idx", "index.db")
	require.NoError(t, os.MkdirAll(cfg.Build.SourceDir, 0o755))

	files := map[string]string{
		"cosine.md": "---\ntitle: Cosine Similarity\npost_link: cosine-similarity\npublished_date: {month: July, date: 4th, year: 2022}\ntags: [ml]\n---\n\n```go\nx := 1\n```\n",
		"triton.md": "---\ntitle: Triton\npost_link: fast-llm-inferencing\npublished_date: {month: Nov, date: 11th, year: 2024}\ntags: [ml, gpu]\n---\n\nbody\n",
		"vectors.md": "---\ntitle: Vectors\npost_link: cosine-similarity-pt-2\npublished_date: {month: July, date: 9th, year: 2022}\n---\n\nbody\n",
		"empty.md":  "---\ntitle: \"\"\npost_link: empty\npublished_date: {month: May, date: 1st, year: 2020}\n---\n",
	}
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Build.SourceDir, name), []byte(src), 0o644))
	}
	return cfg
}

func read(t *testing.T, root, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err, rel)
	return string(b)
}

func TestRun_WritesSite(t *testing.T) {
	cfg := setup(t)
	reg := prom.NewRegistry()
	b := &Builder{Cfg: cfg, Logger: slog.New(slog.DiscardHandler), Metrics: metrics.NewPrometheusRecorder(reg)}

	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Posts)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Msg, "title is empty")

	out := cfg.Build.PublicDir
	home := read(t, out, "index.html")
	a := strings.Index(home, "/posts/fast-llm-inferencing/")
	c := strings.Index(home, "/posts/cosine-similarity-pt-2/")
	d := strings.Index(home, "/posts/cosine-similarity/")
	assert.True(t, a >= 0 && a < c && c < d, "home order")

	post := read(t, out, "posts/cosine-similarity/index.html")
	assert.Contains(t, post, `data-copy="x := 1`+"\n"+`"`)
	assert.NotContains(t, post, "Code hidden.")

	assert.Contains(t, read(t, out, "tags/gpu/index.html"), "Triton")
	assert.Contains(t, read(t, out, "tags/index.html"), "/tags/ml/")
	assert.Contains(t, read(t, out, "feed.xml"), "<rss version=\"2.0\">")
	assert.Contains(t, read(t, out, "sitemap.xml"), "/posts/cosine-similarity/")
	assert.Contains(t, read(t, out, "404.html"), "Not found")
	assert.Contains(t, read(t, out, "static/blog.js"), "Code hidden.")
	assert.NotEmpty(t, read(t, out, "static/style.css"))

	_, err = os.Stat(filepath.Join(out, "posts", "empty"))
	assert.True(t, os.IsNotExist(err))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestRun_Canceled(t *testing.T) {
	cfg := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Builder{Cfg: cfg, Logger: slog.New(slog.DiscardHandler)}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_BadTheme(t *testing.T) {
	cfg := setup(t)
	cfg.Site.Theme = "nope"
	_, err := (&Builder{Cfg: cfg, Logger: slog.New(slog.DiscardHandler)}).Run(context.Background())
	assert.Error(t, err)
}

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"

	"inkblog/internal/domain/content"
	"inkblog/internal/logfields"
)

type Warning struct {
	Path string
	Msg  string
}

func (w Warning) String() string {
	return w.Path + ": " + w.Msg
}

type result struct {
	post  content.Post
	warns []Warning
	skip  bool
	err   error
}

type Options struct {
	DayPolicy content.DayPolicy
	// FilterUntitled drops posts whose title is empty after trimming.
	FilterUntitled bool
	IncludeDraft   bool
	Logger         *slog.Logger
}

// Ingest reads every post under sourceDir. Posts come back in source path
// order; problems with individual files are reported as warnings.
func Ingest(ctx context.Context, sourceDir string, opt Options) ([]content.Post, []Warning, error) {
	files, err := DiscoverSource(sourceDir)
	if err != nil {
		return nil, nil, fmt.Errorf("discover %s: %w", sourceDir, err)
	}
	logger := logfields.Or(opt.Logger).With(logfields.Component("ingest"))
	norm := content.Normalizer{Policy: opt.DayPolicy}

	workers := runtime.GOMAXPROCS(0)
	jobs := make(chan SourceFile)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sf := range jobs {
				results <- parseOne(sf, norm, opt)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var out []content.Post
	var warns []Warning
	var errs []error
	for r := range results {
		// 出错也要把 results 读完，否则 worker 阻塞
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		warns = append(warns, r.warns...)
		if r.skip {
			continue
		}
		out = append(out, r.post)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Body.SourcePath < out[j].Body.SourcePath })
	sort.SliceStable(warns, func(i, j int) bool { return warns[i].Path < warns[j].Path })

	seen := make(map[string]struct{}, len(out))
	filtered := make([]content.Post, 0, len(out))
	for _, p := range out {
		if _, ok := seen[p.Meta.Slug]; ok {
			warns = append(warns, Warning{Path: p.Body.SourcePath, Msg: "duplicate slug, skipped: " + p.Meta.Slug})
			continue
		}
		seen[p.Meta.Slug] = struct{}{}
		filtered = append(filtered, p)
	}

	for _, w := range warns {
		logger.Warn(w.Msg, logfields.Path(w.Path))
	}
	logger.Debug("ingest done", logfields.Posts(len(filtered)), logfields.Warnings(len(warns)))
	return filtered, warns, nil
}

func parseOne(sf SourceFile, norm content.Normalizer, opt Options) result {
	raw, err := os.ReadFile(sf.Path)
	if err != nil {
		return result{err: fmt.Errorf("read %s: %w", sf.Path, err)}
	}

	skip := func(msg string) result {
		return result{warns: []Warning{{Path: sf.Path, Msg: msg}}, skip: true}
	}

	fm, _, fmErr := ParseFrontMatter(raw)
	if fmErr != nil {
		return skip("failed to parse front matter: " + fmErr.Error())
	}
	if fm.Hidden {
		return result{skip: true}
	}
	if fm.Draft && !opt.IncludeDraft {
		return result{skip: true}
	}

	meta := fm.Meta()
	var warns []Warning
	if !meta.HasTitle() {
		if opt.FilterUntitled {
			return skip("title is empty, skipped")
		}
		warns = append(warns, Warning{Path: sf.Path, Msg: "title is empty"})
	}
	if err := norm.Check(meta.Published); err != nil {
		return skip(fmt.Sprintf("%v %q, skipped", err, meta.Published.Day))
	}
	if !content.KnownMonth(meta.Published.Month) {
		warns = append(warns, Warning{Path: sf.Path, Msg: fmt.Sprintf("unknown month %q, treated as January", meta.Published.Month)})
	}

	meta.Slug = ResolveSlug(fm, sf.Path)
	if meta.Slug == "" {
		return skip("empty slug")
	}

	return result{
		post: content.Post{
			Meta: meta,
			Body: content.BodyRef{
				SourcePath:  sf.Path,
				ContentHash: HashBytes(raw),
			},
		},
		warns: warns,
	}
}

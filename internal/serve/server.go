package serve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"

	"inkblog/internal/app"
	"inkblog/internal/domain/config"
	"inkblog/internal/domain/site"
	"inkblog/internal/logfields"
	"inkblog/internal/metrics"
	"inkblog/internal/render"
)

// liveReload is injected before </body> of every HTML response.
const liveReload = `<script>(function(){var es=new EventSource("/dev/events");es.onmessage=function(e){if(e.data==="reload"){location.reload();}};})();</script>`

type Options struct {
	Config    config.Config
	Logger    *slog.Logger
	Registry  *prom.Registry
	Highlight render.Highlighter
}

type Server struct {
	cfg    config.Config
	blog   *app.Blog
	logger *slog.Logger
	rec    metrics.Recorder
	reg    *prom.Registry
	static fs.FS

	sseMu     sync.Mutex
	sseConns  map[chan string]struct{}
	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(opt Options) (*Server, error) {
	cfg := opt.Config
	logger := logfields.Or(opt.Logger)

	var (
		rec metrics.Recorder = metrics.NoopRecorder{}
		reg *prom.Registry
	)
	if cfg.Serve.Metrics {
		reg = opt.Registry
		if reg == nil {
			reg = prom.NewRegistry()
		}
		rec = metrics.NewPrometheusRecorder(reg)
	}

	static, err := render.StaticFS(cfg.Build.ThemeDir, cfg.Site.Theme)
	if err != nil {
		return nil, fmt.Errorf("serve: static assets: %w", err)
	}

	blog, err := app.Open(app.Options{
		Config:    cfg,
		Logger:    logger,
		Metrics:   rec,
		Highlight: opt.Highlight,
	})
	if err != nil {
		return nil, fmt.Errorf("serve: %w", err)
	}

	return &Server{
		cfg:      cfg,
		blog:     blog,
		logger:   logger.With(logfields.Component("serve")),
		rec:      rec,
		reg:      reg,
		static:   static,
		sseConns: make(map[chan string]struct{}),
	}, nil
}

func (s *Server) Close() error {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	return s.blog.Close()
}

// Reload rebuilds the post list and tells connected browsers to refresh.
func (s *Server) Reload(ctx context.Context) error {
	res, err := s.blog.Reload(ctx)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		s.logger.Warn("ingest", logfields.Path(w.Path), slog.String("msg", w.Msg))
	}
	s.broadcastSSE("reload")
	return nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(s.static)))

	// dev SSE
	mux.HandleFunc("/dev/events", s.handleSSE)

	if s.reg != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.reg))
	}
	return mux
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.Reload(ctx); err != nil {
		return err
	}

	// 启动文件监控
	if err := s.startWatch(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 支持 ctx 取消
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	s.logger.Info("listening", logfields.Addr(addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// toggleActions reads every toggle query parameter in order. Unparseable
// values are dropped.
func (s *Server) toggleActions(r *http.Request) []render.Action {
	raw := r.URL.Query()["toggle"]
	out := make([]render.Action, 0, len(raw))
	for _, v := range raw {
		a, ok := render.ParseAction(v)
		if !ok {
			s.logger.Debug("bad toggle value", slog.String("value", v))
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	route := site.Parse(r.URL.Path)
	status := http.StatusOK
	defer func() {
		s.rec.ObserveRequest(string(route.Kind), status, time.Since(start))
	}()

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		status = http.StatusMethodNotAllowed
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", status)
		return
	}

	scope := s.blog.NewScope()
	if actions := s.toggleActions(r); len(actions) > 0 {
		scope.Apply(actions, s.logger)
		s.rec.IncToggle(string(scope.Mode()))
	}
	ctx := render.WithScope(r.Context(), scope)

	if route.Kind == site.RouteNotFound {
		route.Key = r.URL.Path
		status = http.StatusNotFound
	}

	etag := s.blog.Fingerprint().ETag(route.URLPath(), route.Key, r.URL.RawQuery)
	if status == http.StatusOK && r.Header.Get("If-None-Match") == etag {
		status = http.StatusNotModified
		w.WriteHeader(status)
		return
	}

	body, err := s.blog.Render(ctx, route)
	if errors.Is(err, app.ErrNotFound) {
		route = site.Route{Kind: site.RouteNotFound, Key: r.URL.Path}
		status = http.StatusNotFound
		body, err = s.blog.Render(ctx, route)
	}
	if err != nil {
		status = http.StatusInternalServerError
		s.logger.Error("render", logfields.Route(route.String()), logfields.Error(err))
		http.Error(w, "render error", status)
		return
	}

	ct := route.ContentType()
	if strings.HasPrefix(ct, "text/html") {
		body = injectLiveReload(body)
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "no-cache")
	if status == http.StatusOK {
		w.Header().Set("ETag", etag)
	}
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}

func injectLiveReload(page []byte) []byte {
	i := bytes.LastIndex(page, []byte("</body>"))
	if i < 0 {
		return append(page, liveReload...)
	}
	out := make([]byte, 0, len(page)+len(liveReload))
	out = append(out, page[:i]...)
	out = append(out, liveReload...)
	return append(out, page[i:]...)
}

func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		go s.watchLoop(ctx)

		err = filepath.WalkDir(s.cfg.Build.SourceDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.Add(path)
			}
			return nil
		})
	})
	return err
}

func (s *Server) watchLoop(ctx context.Context) {
	s.logger.Info("watching for file changes", logfields.Path(s.cfg.Build.SourceDir))
	delay := s.cfg.Serve.Debounce
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				// 新建的子目录也要监听
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = s.watcher.Add(ev.Name)
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				debounce.Reset(delay)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", logfields.Error(err))
		case <-debounce.C:
			ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := s.Reload(ctx2); err != nil {
				s.logger.Error("rebuild", logfields.Error(err))
			}
			cancel()
		}
	}
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan string, 8)

	s.sseMu.Lock()
	s.sseConns[ch] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseConns, ch)
		s.sseMu.Unlock()
	}()
	fmt.Fprintf(w, "data: %s\n\n", "hello")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcastSSE(msg string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	for ch := range s.sseConns {
		select {
		case ch <- msg:
		default:
		}
	}
}

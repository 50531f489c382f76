package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/Zachdehooge/world-brief/internal/fetcher"
	"github.com/Zachdehooge/world-brief/internal/generator"
)

// Server serves the dashboard, rendered fresh for every request
type Server struct {
	loader  generator.FeedLoader
	page    generator.PageConfig
	listen  string
	timeout time.Duration
	version string
	debug   bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Config is the server setup
type Config struct {
	Listen  string
	Timeout time.Duration
	Page    generator.PageConfig
	Version string
	Debug   bool
}

// New initializes a new server instance
func New(cfg Config, loader generator.FeedLoader) *Server {
	s := &Server{
		loader:  loader,
		page:    cfg.Page,
		listen:  cfg.Listen,
		timeout: cfg.Timeout,
		version: cfg.Version,
		debug:   cfg.Debug,
		router:  routegroup.New(http.NewServeMux()),
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the router, mostly for tests
func (s *Server) Handler() http.Handler { return s.router }

// Run starts the HTTP server and shuts it down when ctx is canceled
func (s *Server) Run(ctx context.Context) error {
	log.Printf("[INFO] starting server on %s", s.listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              s.listen,
		Handler:           s.router,
		ReadHeaderTimeout: s.timeout,
		WriteTimeout:      s.timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.lock.Lock()
		defer s.lock.Unlock()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("world-brief", "Zachdehooge", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024))
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /{$}", s.dashboardHandler)

	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /summary", s.summaryHandler)
		r.HandleFunc("GET /events", s.eventsHandler)
	})
}

// dashboardHandler loads the feed and renders a new page. A failed load is
// rendered as the error page with 502.
func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	page, err := generator.NewPage(s.page)
	if err != nil {
		log.Printf("[ERROR] can't build page: %v", err)
		http.Error(w, "can't build page", http.StatusInternalServerError)
		return
	}

	code := http.StatusOK
	snap, err := s.loader.Load(r.Context())
	if err != nil {
		log.Printf("[WARN] load failed: %v", err)
		page.RenderError(err)
		code = http.StatusBadGateway
	} else {
		page.Render(snap)
	}

	var buf bytes.Buffer
	if err := page.Write(&buf); err != nil {
		log.Printf("[ERROR] can't render page: %v", err)
		http.Error(w, "can't render page", http.StatusInternalServerError)
		return
	}

	noStore(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("[WARN] can't write response: %v", err)
	}
}

func (s *Server) statusHandler(w http.ResponseWriter, _ *http.Request) {
	rest.RenderJSON(w, rest.JSON{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	})
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.load(w, r)
	if !ok {
		return
	}
	noStore(w)
	rest.RenderJSON(w, rest.JSON{
		"generated_at": snap.Feed.GeneratedAt,
		"total":        len(snap.Feed.Events),
		"categories":   generator.Summarize(snap.Feed.Events),
	})
}

func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	limit := s.limit()
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			RenderError(w, r, fmt.Errorf("invalid limit %q", v), http.StatusBadRequest)
			return
		}
		if n < limit {
			limit = n
		}
	}

	snap, ok := s.load(w, r)
	if !ok {
		return
	}
	events := generator.SelectDisplaySet(snap.Feed.Events, limit)
	views := make([]generator.EventView, 0, len(events))
	for _, e := range events {
		views = append(views, generator.NewEventView(e))
	}
	noStore(w)
	rest.RenderJSON(w, views)
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (*fetcher.Snapshot, bool) {
	snap, err := s.loader.Load(r.Context())
	if err != nil {
		log.Printf("[WARN] load failed: %v", err)
		RenderError(w, r, err, http.StatusBadGateway)
		return nil, false
	}
	return snap, true
}

func (s *Server) limit() int {
	if s.page.Limit > 0 {
		return s.page.Limit
	}
	return generator.DisplayLimit
}

func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, _ *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	rest.RenderJSON(w, rest.JSON{"error": errMsg})
}

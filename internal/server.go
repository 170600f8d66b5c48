package internal

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/leavepush/internal/api"
	"github.com/kazz187/leavepush/internal/clientworker"
	"github.com/kazz187/leavepush/internal/config"
	"github.com/kazz187/leavepush/pkg/clog"
)

type Server struct {
	mu       sync.Mutex
	server   *http.Server
	env      *config.Env
	api      *api.Handler
	worker   *clientworker.Worker
	static   fs.FS
	gatherer prometheus.Gatherer
}

func NewServer(
	env *config.Env,
	apiHandler *api.Handler,
	worker *clientworker.Worker,
	static fs.FS,
	gatherer prometheus.Gatherer,
) *Server {
	return &Server{
		env:      env,
		api:      apiHandler,
		worker:   worker,
		static:   static,
		gatherer: gatherer,
	}
}

// Handler builds the full HTTP handler tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		clog.SlogChiMiddleware(clog.WithChiFilter(func(r *http.Request) bool {
			return r.URL.Path != "/metrics"
		})),
	)

	r.Route("/api", s.api.Register)
	r.Handle("/service-worker.js", s.worker)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/index.html", s.serveIndex)
	r.Handle("/*", http.FileServerFS(s.static))

	return h2c.NewHandler(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(r), &http2.Server{})
}

// serveIndex answers /index.html in place. The file server redirects that
// path to "/", and the service worker must not precache a redirect.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	b, err := fs.ReadFile(s.static, "index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, "index.html", time.Time{}, bytes.NewReader(b))
}

// ListenAndServe blocks until the server stops. ctx becomes the base context
// of every request.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()
	if ctx.Err() != nil {
		return http.ErrServerClosed
	}

	slog.Info("starting server", "addr", addr, "cache", s.worker.CacheName())
	return srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Package server exposes validation runs, qi computations and stored
// reports over HTTP.
//
// # Routes
//
//	GET    /healthz            liveness and build information
//	GET    /metrics            Prometheus metrics (when a gatherer is set)
//	POST   /v1/validate        run the merge-and-validate loop on a graph
//	POST   /v1/qi              qi-number of one partition
//	GET    /v1/reports         newest stored reports, ?limit=N
//	GET    /v1/reports/{id}    one stored report
//	DELETE /v1/reports/{id}    remove a stored report
//
// Successful responses wrap their payload as {"data": ...}; failures are
// {"error": {"code": ..., "message": ...}} with the code taken from the
// errors package.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/matzehuels/qivalidate/pkg/observability"
	"github.com/matzehuels/qivalidate/pkg/report"
	"github.com/matzehuels/qivalidate/pkg/validate"
)

const (
	defaultRequestTimeout = 5 * time.Minute
	shutdownTimeout       = 10 * time.Second
	maxBodyBytes          = 8 << 20
	defaultMaxVertices    = 2000
)

// Config holds the listener settings.
type Config struct {
	Addr string
	// GraphDir is the directory request paths are resolved against.
	GraphDir string
	// RequestTimeout bounds every request; zero means five minutes.
	RequestTimeout time.Duration
	// AllowedOrigins lists the CORS origins; empty allows any.
	AllowedOrigins []string
	// MaxVertices caps request graphs; zero means defaultMaxVertices.
	MaxVertices int
}

// Server is the HTTP API.
type Server struct {
	cfg      Config
	runner   *validate.Runner
	reports  report.Store
	gatherer prometheus.Gatherer
	logger   *log.Logger
	validate *validator.Validate
	handler  http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithReports enables the report routes and the save flag of /v1/validate.
func WithReports(store report.Store) Option {
	return func(s *Server) { s.reports = store }
}

// WithMetrics serves g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds the server and its routes.
func New(cfg Config, runner *validate.Runner, opts ...Option) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.GraphDir == "" {
		cfg.GraphDir = "."
	}
	if cfg.MaxVertices <= 0 {
		cfg.MaxVertices = defaultMaxVertices
	}
	if runner == nil {
		runner = validate.NewRunner(nil, nil, 0, nil)
	}
	s := &Server{
		cfg:      cfg,
		runner:   runner,
		logger:   log.New(io.Discard),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.notFound(w, r)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.errorResponse(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			r.Method+" is not supported for this resource")
	})

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		r.Post("/validate", s.handleValidate)
		r.Post("/qi", s.handleQi)
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", s.handleListReports)
			r.Get("/{id}", s.handleGetReport)
			r.Delete("/{id}", s.handleDeleteReport)
		})
	})

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	})
	return alice.New(c.Handler).Then(r)
}

// observe reports every request to the server hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/school-risk-service/internal/assessment"
	"github.com/couchcryptid/school-risk-service/internal/domain"
)

// RiskService is the part of assessment.Service the API depends on.
type RiskService interface {
	sharedobs.ReadinessChecker
	Schools(ctx context.Context) ([]domain.School, error)
	Accidents(ctx context.Context, radius float64, originWKT string) ([]domain.Accident, error)
	Radars(ctx context.Context) ([]domain.Radar, error)
	Rank(ctx context.Context, req assessment.RankRequest) (assessment.Ranking, error)
}

// Options configures optional routes.
type Options struct {
	// ProxyPath mounts Proxy under this prefix when both are set.
	ProxyPath string
	Proxy     http.Handler
}

// Server exposes the risk API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        RiskService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, svc RiskService, logger *slog.Logger, opts Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(svc))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/schools", s.handleSchools)
		r.Get("/accidents", s.handleAccidents)
		r.Get("/radar", s.handleRadars)
		r.Get("/risk", s.handleRisk)
		r.Get("/risk/geojson", s.handleRiskGeoJSON)
	})

	if opts.Proxy != nil && opts.ProxyPath != "" {
		r.Handle(opts.ProxyPath, opts.Proxy)
		r.Handle(opts.ProxyPath+"/*", opts.Proxy)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

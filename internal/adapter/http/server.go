package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/envis/internal/config"
	"github.com/couchcryptid/envis/internal/domain"
	"github.com/couchcryptid/envis/internal/observability"
	"github.com/couchcryptid/envis/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// ArtifactService is the part of pipeline.Service the HTTP layer calls.
type ArtifactService interface {
	sharedobs.ReadinessChecker
	ConvertTable(ctx context.Context, req pipeline.ConvertRequest) (pipeline.ConvertResult, error)
	DescribeDataset(ctx context.Context, path, variable string) (domain.DatasetInfo, error)
}

// Server exposes the upload, conversion and artifact routes alongside health,
// readiness and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        ArtifactService
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// imageRoutes maps image endpoints to the PNG they serve from the data dir.
var imageRoutes = map[string]string{
	"/sst-preview":                    "sst_preview.png",
	"/sst_today_overlay":              "sst_today_overlay.png",
	"/dust-preview":                   "ducmass_overlay.png",
	"/dust_today_overlay":             "ducmass_overlay.png",
	"/sst-tomorrow-preview":           "predicted_sst_tomorrow.png",
	"/predicted_sst_tomorrow_overlay": "predicted_sst_tomorrow.png",
}

// NewServer creates the HTTP server with all routes wrapped in CORS handling.
func NewServer(cfg *config.Config, svc ArtifactService, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       2 * time.Minute,
			WriteTimeout:      2 * time.Minute,
			IdleTimeout:       60 * time.Second,
		},
		svc:     svc,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("POST /render", s.handleRender)
	mux.HandleFunc("GET /uploads/{filename}", s.handleUploaded)
	mux.HandleFunc("GET /geojson/{path...}", s.handleGeoJSON)
	mux.HandleFunc("GET /sst-details", s.handleSSTDetails)
	for route, file := range imageRoutes {
		mux.HandleFunc("GET "+route, s.handleImage(file))
	}

	s.httpServer.Handler = cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(mux)

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

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("EnVis backend is running!"))
}

// Package server exposes the extraction pipeline over HTTP and WebSocket.
package server

import (
	"net/http"

	"github.com/MeKo-Tech/fieldex/internal/engine"
	"github.com/MeKo-Tech/fieldex/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadBytes int64
	Language       string
	SchemaFile     string
	IoUThreshold   float64
	StreamDelayMs  int
	Suggestions    bool
	Engines        []engine.Engine
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline       *pipeline.Pipeline
	corsOrigin     string
	maxUploadBytes int64
}

// Response types for API endpoints.

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

type ExtractResponse struct {
	Success bool                     `json:"success"`
	Result  *pipeline.DocumentResult `json:"result,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

type CorrectionRequest struct {
	RegionID string `json:"region_id"`
	Text     string `json:"text"`
}

type CorrectionResponse struct {
	Success bool                       `json:"success"`
	Result  *pipeline.CorrectionResult `json:"result,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

type SchemaField struct {
	Key      string   `json:"key"`
	Kind     string   `json:"kind"`
	Synonyms []string `json:"synonyms,omitempty"`
}

type SchemaResponse struct {
	Language string        `json:"language"`
	Fields   []SchemaField `json:"fields"`
	Count    int           `json:"count"`
}

// NewServer creates a new extraction server instance.
func NewServer(config Config) (*Server, error) {
	b := pipeline.NewBuilder().
		WithLanguage(config.Language).
		WithSchemaFile(config.SchemaFile).
		WithIoUThreshold(config.IoUThreshold).
		WithSuggestions(config.Suggestions).
		WithEngines(config.Engines...)
	if config.StreamDelayMs >= 0 {
		b = b.WithStreamDelay(millis(config.StreamDelayMs))
	}

	pl, err := b.Build()
	if err != nil {
		return nil, err
	}

	maxUpload := config.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 50 << 20
	}
	corsOrigin := config.CORSOrigin
	if corsOrigin == "" {
		corsOrigin = "*"
	}

	return &Server{
		pipeline:       pl,
		corsOrigin:     corsOrigin,
		maxUploadBytes: maxUpload,
	}, nil
}

// NewServerWithPipeline wraps an already-built pipeline, for tests and
// embedding.
func NewServerWithPipeline(pl *pipeline.Pipeline, config Config) *Server {
	maxUpload := config.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 50 << 20
	}
	corsOrigin := config.CORSOrigin
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	return &Server{pipeline: pl, corsOrigin: corsOrigin, maxUploadBytes: maxUpload}
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/schema", s.corsMiddleware(s.schemaHandler))
	mux.HandleFunc("/extract/image", s.corsMiddleware(s.extractImageHandler))
	mux.HandleFunc("/extract/regions", s.corsMiddleware(s.extractRegionsHandler))
	mux.HandleFunc("/extract/pdf", s.corsMiddleware(s.extractPDFHandler))
	mux.HandleFunc("/sessions/{id}", s.corsMiddleware(s.sessionHandler))
	mux.HandleFunc("/sessions/{id}/corrections", s.corsMiddleware(s.correctionHandler))
	mux.HandleFunc("/ws/extract", s.extractWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

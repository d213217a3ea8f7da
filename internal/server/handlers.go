package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/fieldex/internal/pipeline"
	"github.com/MeKo-Tech/fieldex/internal/region"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	s.writeJSON(w, http.StatusOK, response)
}

// schemaHandler returns the active field schema.
func (s *Server) schemaHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sch := s.pipeline.Schema()
	fields := make([]SchemaField, 0, len(sch.Fields()))
	for _, f := range sch.Fields() {
		fields = append(fields, SchemaField{
			Key:      f.Key,
			Kind:     string(f.Kind),
			Synonyms: f.Synonyms,
		})
	}

	s.writeJSON(w, http.StatusOK, SchemaResponse{
		Language: sch.Language(),
		Fields:   fields,
		Count:    len(fields),
	})
}

// extractImageHandler processes multipart image uploads.
func (s *Server) extractImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := s.readUpload(w, r, "image")
	if err != nil {
		extractionRequestsTotal.WithLabelValues("image", "error").Inc()
		return // error already written
	}

	img, err := pipeline.DecodeImage(data)
	if err != nil {
		extractionRequestsTotal.WithLabelValues("image", "error").Inc()
		s.writeError(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := s.pipeline.ProcessImage(r.Context(), img)
	if err != nil {
		extractionRequestsTotal.WithLabelValues("image", "error").Inc()
		s.writeError(w, fmt.Sprintf("Extraction failed: %v", err), http.StatusInternalServerError)
		return
	}

	observeExtraction("image", time.Since(start).Seconds(), len(res.Fields), res.Confidence)
	s.writeJSON(w, http.StatusOK, ExtractResponse{Success: true, Result: res})
}

// extractRegionsHandler derives fields from pre-recognized regions posted as
// JSON, for replay inputs and engineless deployments.
func (s *Server) extractRegionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	if err != nil {
		extractionRequestsTotal.WithLabelValues("regions", "error").Inc()
		s.writeError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	regions, err := region.UnmarshalRegions(body)
	if err != nil {
		extractionRequestsTotal.WithLabelValues("regions", "error").Inc()
		s.writeError(w, fmt.Sprintf("Invalid region payload: %v", err), http.StatusBadRequest)
		return
	}

	start := time.Now()
	res := s.pipeline.ProcessRegions(regions)

	observeExtraction("regions", time.Since(start).Seconds(), len(res.Fields), res.Confidence)
	s.writeJSON(w, http.StatusOK, ExtractResponse{Success: true, Result: res})
}

// extractPDFHandler processes multipart PDF uploads page by page.
func (s *Server) extractPDFHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := s.readUpload(w, r, "pdf")
	if err != nil {
		extractionRequestsTotal.WithLabelValues("pdf", "error").Inc()
		return
	}
	pageRange := r.FormValue("pages")

	// pdfcpu works on files, so spool the upload to a temp path
	tempFile, err := os.CreateTemp("", "fieldex-upload-*.pdf")
	if err != nil {
		extractionRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeError(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	defer func() { _ = os.Remove(tempFile.Name()) }()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		extractionRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeError(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	_ = tempFile.Close()

	start := time.Now()
	res, err := s.pipeline.ProcessPDF(r.Context(), tempFile.Name(), pageRange)
	if err != nil {
		extractionRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeError(w, fmt.Sprintf("PDF extraction failed: %v", err), http.StatusBadRequest)
		return
	}

	observeExtraction("pdf", time.Since(start).Seconds(), len(res.Fields), res.Confidence)
	s.writeJSON(w, http.StatusOK, ExtractResponse{Success: true, Result: res})
}

// readUpload extracts the named multipart file, enforcing the upload limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.writeError(w, "Failed to parse form data", http.StatusBadRequest)
		return nil, err
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		s.writeError(w, fmt.Sprintf("No %s file provided", field), http.StatusBadRequest)
		return nil, err
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadBytes {
		err := fmt.Errorf("upload of %d bytes exceeds limit", header.Size)
		s.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, err
	}
	uploadSizeBytes.Observe(float64(header.Size))

	slog.Debug("received upload", "field", field,
		"name", filepath.Base(header.Filename), "size", header.Size)

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, "Failed to read upload", http.StatusInternalServerError)
		return nil, err
	}
	return data, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, ExtractResponse{Success: false, Error: message})
}

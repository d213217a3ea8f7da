package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MeKo-Tech/fieldex/internal/clean"
	"github.com/MeKo-Tech/fieldex/internal/extract"
	"github.com/MeKo-Tech/fieldex/internal/region"
	"github.com/MeKo-Tech/fieldex/internal/session"
)

// SessionResponse is the materialized state of one session.
type SessionResponse struct {
	SessionID  string              `json:"session_id"`
	Fields     extract.FieldMap    `json:"fields"`
	Metadata   extract.Metadata    `json:"metadata"`
	Regions    []region.RegionJSON `json:"regions"`
	Confidence float64             `json:"document_confidence"`
	Quality    clean.Report        `json:"quality"`
}

// sessionHandler returns the current state of a session.
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.PathValue("id")
	doc, err := s.pipeline.Store().Get(id)
	if err != nil {
		s.writeError(w, "Unknown session", http.StatusNotFound)
		return
	}

	regions := doc.Regions.Regions()
	out := make([]region.RegionJSON, 0, len(regions))
	for _, reg := range regions {
		out = append(out, region.ToJSON(reg))
	}

	s.writeJSON(w, http.StatusOK, SessionResponse{
		SessionID:  id,
		Fields:     doc.Fields,
		Metadata:   doc.Metadata,
		Regions:    out,
		Confidence: doc.Confidence,
		Quality:    doc.Report,
	})
}

// correctionHandler applies a text correction to one region of a session.
func (s *Server) correctionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		correctionsTotal.WithLabelValues("error").Inc()
		s.writeError(w, "Invalid correction payload", http.StatusBadRequest)
		return
	}
	if req.RegionID == "" {
		correctionsTotal.WithLabelValues("error").Inc()
		s.writeError(w, "region_id is required", http.StatusBadRequest)
		return
	}

	res, err := s.pipeline.Correct(r.PathValue("id"), req.RegionID, req.Text)
	switch {
	case errors.Is(err, session.ErrNotFound):
		correctionsTotal.WithLabelValues("error").Inc()
		s.writeError(w, "Unknown session", http.StatusNotFound)
		return
	case errors.Is(err, region.ErrUnknownRegion):
		correctionsTotal.WithLabelValues("error").Inc()
		s.writeError(w, "Unknown region", http.StatusNotFound)
		return
	case err != nil:
		correctionsTotal.WithLabelValues("error").Inc()
		s.writeError(w, fmt.Sprintf("Correction failed: %v", err), http.StatusInternalServerError)
		return
	}

	correctionsTotal.WithLabelValues("success").Inc()
	s.writeJSON(w, http.StatusOK, CorrectionResponse{Success: true, Result: res})
}

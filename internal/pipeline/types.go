package pipeline

import (
	"github.com/MeKo-Tech/fieldex/internal/clean"
	"github.com/MeKo-Tech/fieldex/internal/extract"
	"github.com/MeKo-Tech/fieldex/internal/region"
)

// RegionResult is one recognized region with its fused confidence and, when
// enabled, correction suggestions for low-confidence text.
type RegionResult struct {
	region.RegionJSON

	Combined    float64  `json:"combined_confidence"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Timing records wall-clock durations of the processing stages in
// nanoseconds.
type Timing struct {
	RecognitionNs int64 `json:"recognition_ns"`
	ExtractionNs  int64 `json:"extraction_ns"`
	TotalNs       int64 `json:"total_ns"`
}

// DocumentResult is the full output of one document processing run.
type DocumentResult struct {
	SessionID  string            `json:"session_id"`
	Language   string            `json:"language"`
	Fields     extract.FieldMap  `json:"fields"`
	Metadata   extract.Metadata  `json:"metadata"`
	Regions    []RegionResult    `json:"regions"`
	Confidence float64           `json:"document_confidence"`
	PageScores map[int]float64   `json:"page_confidence,omitempty"`
	Quality    clean.Report      `json:"quality"`
	Processing Timing            `json:"processing"`
}

// CorrectionResult reports the outcome of a text correction: the corrected
// region's confidence (always 1.0) plus the recomputed document state.
type CorrectionResult struct {
	RegionID   string           `json:"region_id"`
	Confidence float64          `json:"confidence"`
	Fields     extract.FieldMap `json:"fields"`
	Document   float64          `json:"document_confidence"`
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	_ "image/jpeg" // register decoders for DecodeImage
	_ "image/png"

	"github.com/MeKo-Tech/fieldex/internal/clean"
	"github.com/MeKo-Tech/fieldex/internal/confidence"
	"github.com/MeKo-Tech/fieldex/internal/engine"
	"github.com/MeKo-Tech/fieldex/internal/extract"
	"github.com/MeKo-Tech/fieldex/internal/quality"
	"github.com/MeKo-Tech/fieldex/internal/region"
	"github.com/MeKo-Tech/fieldex/internal/session"

	_ "golang.org/x/image/bmp" // extra decoder registrations
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecodeFailure is returned when input bytes are not a decodable image.
var ErrDecodeFailure = errors.New("pipeline: image decode failure")

// DecodeImage decodes raw image bytes using the registered decoders.
func DecodeImage(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	slog.Debug("decoded image", "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img, nil
}

// ProcessImage runs the configured engines over the image, merges their
// regions, and derives the document's field map. The returned result is
// registered in the session store under its SessionID.
func (p *Pipeline) ProcessImage(ctx context.Context, img image.Image) (*DocumentResult, error) {
	if len(p.engines) == 0 {
		return nil, ErrNoEngines
	}
	start := time.Now()

	byEngine := engine.FanOut(ctx, p.engines, img, p.cfg.EngineTimeout)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	merged := region.MergeEngines(byEngine, p.cfg.IoUThreshold)
	recognition := time.Since(start)

	signals := measureSignals(img, merged)
	res := p.assemble(merged, signals)
	res.Processing.RecognitionNs = recognition.Nanoseconds()
	res.Processing.TotalNs = time.Since(start).Nanoseconds()
	return res, nil
}

// ProcessRegions derives a document result from pre-recognized regions, for
// replay inputs and engineless deployments. Quality signals are unavailable
// without pixels, so image quality falls back to its neutral score.
func (p *Pipeline) ProcessRegions(regions []region.TextRegion) *DocumentResult {
	start := time.Now()
	merged := region.Merge(regions, p.cfg.IoUThreshold)
	res := p.assemble(merged, nil)
	res.Processing.TotalNs = time.Since(start).Nanoseconds()
	return res
}

// measureSignals computes per-region image quality signals, keyed by region
// id. Regions without usable geometry are scored on the full frame.
func measureSignals(img image.Image, regions []region.TextRegion) map[string]quality.Signals {
	out := make(map[string]quality.Signals, len(regions))
	for _, r := range regions {
		if r.HasGeometry() {
			out[r.ID] = quality.Measure(img, r.Box())
		} else {
			out[r.ID] = quality.MeasureImage(img)
		}
	}
	return out
}

// assemble runs extraction, cleaning and confidence fusion over merged
// regions and stores the document for later corrections.
func (p *Pipeline) assemble(regions []region.TextRegion, signals map[string]quality.Signals) *DocumentResult {
	start := time.Now()
	sch := p.registry.Active()

	fields, metadata := extract.Extract(regions, sch)
	fields, report := clean.New(sch).Clean(fields)
	pruneMetadata(metadata, fields)

	scores := make(map[string]float64, len(regions))
	results := make([]RegionResult, 0, len(regions))
	for _, r := range regions {
		combined := confidence.Combine(r, signalsFor(signals, r.ID))
		scores[r.ID] = combined

		rr := RegionResult{RegionJSON: region.ToJSON(r), Combined: combined}
		if p.cfg.Suggestions {
			rr.Suggestions = confidence.Suggest(r.Text, combined)
		}
		results = append(results, rr)
	}
	docScore := confidence.Document(regions, scores)
	pageScores := pageConfidence(regions, scores)

	doc := &session.Document{
		Regions:    region.NewCollection(regions...),
		Signals:    signals,
		Fields:     fields,
		Metadata:   metadata,
		Report:     report,
		Confidence: docScore,
	}
	id := p.store.Create(doc)

	return &DocumentResult{
		SessionID:  id,
		Language:   sch.Language(),
		Fields:     fields,
		Metadata:   metadata,
		Regions:    results,
		Confidence: docScore,
		PageScores: pageScores,
		Quality:    report,
		Processing: Timing{ExtractionNs: time.Since(start).Nanoseconds()},
	}
}

// pageConfidence computes a fused score per page for multi-page documents.
// Single-page input (all regions on page zero) yields nil.
func pageConfidence(regions []region.TextRegion, scores map[string]float64) map[int]float64 {
	byPage := make(map[int][]region.TextRegion)
	for _, r := range regions {
		if r.Page > 0 {
			byPage[r.Page] = append(byPage[r.Page], r)
		}
	}
	if len(byPage) == 0 {
		return nil
	}
	out := make(map[int]float64, len(byPage))
	for page, pageRegions := range byPage {
		out[page] = confidence.Document(pageRegions, scores)
	}
	return out
}

// signalsFor returns the measured signals for a region, or nil when none
// were captured (regionless replay input).
func signalsFor(signals map[string]quality.Signals, id string) *quality.Signals {
	if signals == nil {
		return nil
	}
	s, ok := signals[id]
	if !ok {
		return nil
	}
	return &s
}

// pruneMetadata drops metadata entries whose field was removed by cleaning,
// keeping the two maps key-aligned.
func pruneMetadata(metadata extract.Metadata, fields extract.FieldMap) {
	for k := range metadata {
		if _, ok := fields[k]; !ok {
			delete(metadata, k)
		}
	}
}

// Correct replaces one region's text inside a session, recomputes the field
// map wholesale and returns the corrected confidence. Corrected regions pin
// their confidence to 1.0 regardless of image quality.
func (p *Pipeline) Correct(sessionID, regionID, text string) (*CorrectionResult, error) {
	doc, err := p.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	r, ok := doc.Regions.Get(regionID)
	if !ok {
		return nil, region.ErrUnknownRegion
	}
	corrected := r.WithText(text)
	if err := doc.Regions.Replace(regionID, corrected); err != nil {
		return nil, err
	}

	sch := p.registry.Active()
	regions := doc.Regions.Regions()

	fields, metadata := extract.Extract(regions, sch)
	fields, report := clean.New(sch).Clean(fields)
	pruneMetadata(metadata, fields)

	scores := make(map[string]float64, len(regions))
	for _, reg := range regions {
		scores[reg.ID] = confidence.Combine(reg, signalsFor(doc.Signals, reg.ID))
	}

	doc.Fields = fields
	doc.Metadata = metadata
	doc.Report = report
	doc.Confidence = confidence.Document(regions, scores)
	if err := p.store.Put(sessionID, doc); err != nil {
		return nil, err
	}

	slog.Info("applied correction", "session", sessionID, "region", regionID)
	return &CorrectionResult{
		RegionID:   regionID,
		Confidence: scores[regionID],
		Fields:     fields,
		Document:   doc.Confidence,
	}, nil
}

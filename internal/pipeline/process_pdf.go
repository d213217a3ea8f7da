package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/MeKo-Tech/fieldex/internal/engine"
	"github.com/MeKo-Tech/fieldex/internal/pdf"
	"github.com/MeKo-Tech/fieldex/internal/quality"
	"github.com/MeKo-Tech/fieldex/internal/region"
)

// ProcessPDF extracts page images from the PDF, runs recognition per page
// and derives one field map over all pages. Regions carry their 1-based
// page number; pages without embedded images are skipped.
func (p *Pipeline) ProcessPDF(ctx context.Context, filename, pageRange string) (*DocumentResult, error) {
	if len(p.engines) == 0 {
		return nil, ErrNoEngines
	}
	if err := pdf.Validate(filename); err != nil {
		return nil, err
	}
	start := time.Now()

	pages, err := pdf.ExtractPageImages(filename, pageRange)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable page images in %q", filename)
	}

	pageNums := make([]int, 0, len(pages))
	for n := range pages {
		pageNums = append(pageNums, n)
	}
	sort.Ints(pageNums)

	var all []region.TextRegion
	signals := make(map[string]quality.Signals)
	for _, pageNum := range pageNums {
		for _, img := range pages[pageNum] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			byEngine := engine.FanOut(ctx, p.engines, img, p.cfg.EngineTimeout)
			merged := region.MergeEngines(byEngine, p.cfg.IoUThreshold)
			for i := range merged {
				merged[i].Page = pageNum
			}
			for _, r := range merged {
				if r.HasGeometry() {
					signals[r.ID] = quality.Measure(img, r.Box())
				} else {
					signals[r.ID] = quality.MeasureImage(img)
				}
			}
			all = append(all, merged...)
		}
	}
	recognition := time.Since(start)

	res := p.assemble(all, signals)
	res.Processing.RecognitionNs = recognition.Nanoseconds()
	res.Processing.TotalNs = time.Since(start).Nanoseconds()
	return res, nil
}

package extract

import (
	"sort"
	"strings"

	"github.com/MeKo-Tech/fieldex/internal/region"
)

// assembleLines orders regions into reading order (page, then top-to-bottom,
// then left-to-right), groups fragments that share a visual line and joins
// each group with a space. Regions without geometry contribute their own
// text lines after the geometric ones, in detection order.
func assembleLines(regions []region.TextRegion) []string {
	var geometric []region.TextRegion
	var floating []region.TextRegion
	for _, r := range regions {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		if r.HasGeometry() {
			geometric = append(geometric, r)
		} else {
			floating = append(floating, r)
		}
	}

	sort.SliceStable(geometric, func(i, j int) bool {
		a, b := geometric[i], geometric[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		ab, bb := a.Box(), b.Box()
		if ab.CenterY() != bb.CenterY() {
			return ab.CenterY() < bb.CenterY()
		}
		return ab.MinX < bb.MinX
	})

	var lines []string
	var current []string
	currentY := 0.0
	currentH := 0.0
	currentPage := 0
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
			current = nil
		}
	}
	for _, r := range geometric {
		b := r.Box()
		sameLine := len(current) > 0 &&
			r.Page == currentPage &&
			abs(b.CenterY()-currentY) <= 0.5*maxf(b.Height(), currentH)
		if !sameLine {
			flush()
			currentY = b.CenterY()
			currentH = b.Height()
			currentPage = r.Page
		}
		current = append(current, strings.TrimSpace(r.Text))
	}
	flush()

	for _, r := range floating {
		for _, line := range strings.Split(r.Text, "\n") {
			if t := strings.TrimSpace(line); t != "" {
				lines = append(lines, t)
			}
		}
	}
	return lines
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

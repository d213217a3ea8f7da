package extract

import (
	"math"
	"strings"

	"github.com/MeKo-Tech/fieldex/internal/geometry"
	"github.com/MeKo-Tech/fieldex/internal/region"
)

// Geometric adjacency bounds, in multiples of the label's box height.
const (
	sameLineTolerance = 0.5  // vertical center distance for same-line values
	maxRightGap       = 10.0 // horizontal gap cap, prevents cross-page matches
	maxBelowGap       = 3.0  // vertical gap cap for values below the label
	maxBelowIndent    = 2.0  // indent allowance past the label's left edge
)

type labelRegion struct {
	idx int
	key string
	box geometry.Box
}

// matchSpatial resolves fields whose value is a geometrically separate
// fragment from its label. For each label region it searches first to the
// right on the same line, then below; a region may serve as the value for at
// most one label, first claim wins by label iteration order.
func matchSpatial(in input, res *resolutions) {
	var labels []labelRegion
	isLabel := make(map[int]bool)
	for i, r := range in.regions {
		if !r.HasGeometry() || strings.TrimSpace(r.Text) == "" {
			continue
		}
		if key, ok := in.schema.IsLabel(r.Text); ok {
			labels = append(labels, labelRegion{idx: i, key: key, box: r.Box()})
			isLabel[i] = true
		}
	}

	claimed := make(map[int]bool)
	for _, lb := range labels {
		if res.has(lb.key) {
			continue
		}
		h := lb.box.Height()
		if h <= 0 {
			continue
		}

		best := findRight(in.regions, isLabel, claimed, lb.box, h)
		if best < 0 {
			best = findBelow(in.regions, isLabel, claimed, lb.box, h)
		}
		if best < 0 {
			continue
		}

		claimed[best] = true
		value := strings.TrimSpace(in.regions[best].Text)
		value = in.schema.TrimTrailingSynonym(value, lb.key)
		res.add(lb.key, value, StageSpatial)
	}
}

func findRight(regions []region.TextRegion, isLabel, claimed map[int]bool, label geometry.Box, h float64) int {
	best := -1
	bestGap := math.Inf(1)
	for j, r := range regions {
		if isLabel[j] || claimed[j] || !r.HasGeometry() || strings.TrimSpace(r.Text) == "" {
			continue
		}
		b := r.Box()
		if abs(b.CenterY()-label.CenterY()) > sameLineTolerance*h {
			continue
		}
		if b.MinX < label.MaxX {
			continue
		}
		gap := b.MinX - label.MaxX
		if gap > maxRightGap*h {
			continue
		}
		if gap < bestGap {
			bestGap = gap
			best = j
		}
	}
	return best
}

func findBelow(regions []region.TextRegion, isLabel, claimed map[int]bool, label geometry.Box, h float64) int {
	best := -1
	bestGap := math.Inf(1)
	for j, r := range regions {
		if isLabel[j] || claimed[j] || !r.HasGeometry() || strings.TrimSpace(r.Text) == "" {
			continue
		}
		b := r.Box()
		if b.CenterY() <= label.CenterY() {
			continue
		}
		overlaps := b.MinX < label.MaxX && b.MaxX > label.MinX
		indented := b.MinX >= label.MinX && b.MinX-label.MinX <= maxBelowIndent*h
		if !overlaps && !indented {
			continue
		}
		gap := b.MinY - label.MaxY
		if gap > maxBelowGap*h {
			continue
		}
		if gap < bestGap {
			bestGap = gap
			best = j
		}
	}
	return best
}

// Package testutil provides shared fixtures for tests across packages.
package testutil

import (
	"github.com/MeKo-Tech/fieldex/internal/geometry"
	"github.com/MeKo-Tech/fieldex/internal/region"
)

// BoxedRegion builds a text region with an axis-aligned rectangular polygon.
func BoxedRegion(text string, x0, y0, x1, y1, confidence float64, engine string) region.TextRegion {
	return region.New(text, []geometry.Point{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}, confidence, engine)
}

// SampleDocumentRegions returns a small label/value layout that extracts a
// Name field, for handler and CLI tests.
func SampleDocumentRegions() []region.TextRegion {
	return []region.TextRegion{
		BoxedRegion("Name:", 0, 0, 60, 20, 0.9, "test"),
		BoxedRegion("John Smith", 70, 0, 180, 20, 0.9, "test"),
	}
}

package region

import (
	"errors"

	"github.com/MeKo-Tech/fieldex/internal/geometry"
	"github.com/google/uuid"
)

// AssumedConfidence is assigned to regions whose source engine reports no
// confidence of its own.
const AssumedConfidence = 0.8

// CorrectedConfidence is forced onto a region after human correction.
const CorrectedConfidence = 1.0

// ErrUnknownRegion is returned when a correction targets a region id that is
// not present in the collection.
var ErrUnknownRegion = errors.New("region: unknown region id")

// TextRegion is one detected text fragment: recognized text plus the
// quadrilateral it was read from. TextRegions are immutable value objects;
// corrections produce new regions that replace the old one in a Collection.
type TextRegion struct {
	ID            string
	Text          string
	Polygon       []geometry.Point
	RawConfidence float64
	SourceEngine  string
	Page          int
	Corrected     bool
}

// New creates a TextRegion with a freshly assigned stable id.
func New(text string, polygon []geometry.Point, confidence float64, engine string) TextRegion {
	return TextRegion{
		ID:            uuid.NewString(),
		Text:          text,
		Polygon:       polygon,
		RawConfidence: clamp01(confidence),
		SourceEngine:  engine,
	}
}

// Box returns the axis-aligned bounding box derived from the polygon.
func (r TextRegion) Box() geometry.Box {
	return geometry.BoundingBox(r.Polygon)
}

// HasGeometry reports whether the region carries a usable bounding box.
func (r TextRegion) HasGeometry() bool {
	return len(r.Polygon) >= 3 && !r.Box().Empty()
}

// WithText returns a corrected copy of the region. The copy keeps the same
// id so it replaces the original in a Collection, and its confidence is
// forced to the maximum value.
func (r TextRegion) WithText(text string) TextRegion {
	out := r
	out.Text = text
	out.RawConfidence = CorrectedConfidence
	out.Corrected = true
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Collection holds a document's regions in detection order, keyed by region
// id for correction lookups.
type Collection struct {
	order []string
	byID  map[string]TextRegion
}

// NewCollection builds a collection preserving the detection order of the
// given regions.
func NewCollection(regions ...TextRegion) *Collection {
	c := &Collection{byID: make(map[string]TextRegion, len(regions))}
	for _, r := range regions {
		if _, dup := c.byID[r.ID]; dup {
			continue
		}
		c.order = append(c.order, r.ID)
		c.byID[r.ID] = r
	}
	return c
}

// Len returns the number of regions.
func (c *Collection) Len() int { return len(c.order) }

// Regions returns the regions in detection order.
func (c *Collection) Regions() []TextRegion {
	out := make([]TextRegion, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Get looks up a region by id.
func (c *Collection) Get(id string) (TextRegion, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Replace swaps the region with the given id for its replacement. The
// replacement keeps the original's slot in detection order. Returns
// ErrUnknownRegion without mutating state when the id is not present.
func (c *Collection) Replace(id string, r TextRegion) error {
	if _, ok := c.byID[id]; !ok {
		return ErrUnknownRegion
	}
	r.ID = id
	c.byID[id] = r
	return nil
}

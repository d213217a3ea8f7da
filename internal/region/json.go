package region

import (
	"encoding/json"

	"github.com/MeKo-Tech/fieldex/internal/geometry"
)

// RegionJSON is the serializable representation of a TextRegion.
type RegionJSON struct {
	ID         string      `json:"id,omitempty"`
	Text       string      `json:"text"`
	Polygon    []PointJSON `json:"polygon,omitempty"`
	Confidence float64     `json:"confidence"`
	Engine     string      `json:"engine,omitempty"`
	Page       int         `json:"page,omitempty"`
	Corrected  bool        `json:"corrected,omitempty"`
}

type PointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToJSON converts a region into its serializable mirror.
func ToJSON(r TextRegion) RegionJSON {
	out := RegionJSON{
		ID:         r.ID,
		Text:       r.Text,
		Confidence: r.RawConfidence,
		Engine:     r.SourceEngine,
		Page:       r.Page,
		Corrected:  r.Corrected,
	}
	for _, p := range r.Polygon {
		out.Polygon = append(out.Polygon, PointJSON{X: p.X, Y: p.Y})
	}
	return out
}

// FromJSON normalizes a serialized region into a TextRegion. Entries without
// an id get a fresh one; entries without a confidence get the assumed value.
func FromJSON(rj RegionJSON) TextRegion {
	pts := make([]geometry.Point, 0, len(rj.Polygon))
	for _, p := range rj.Polygon {
		pts = append(pts, geometry.Point{X: p.X, Y: p.Y})
	}
	conf := rj.Confidence
	if conf <= 0 {
		conf = AssumedConfidence
	}
	r := New(rj.Text, pts, conf, rj.Engine)
	if rj.ID != "" {
		r.ID = rj.ID
	}
	r.Page = rj.Page
	r.Corrected = rj.Corrected
	return r
}

// MarshalRegions serializes regions to pretty JSON.
func MarshalRegions(regions []TextRegion) ([]byte, error) {
	out := make([]RegionJSON, 0, len(regions))
	for _, r := range regions {
		out = append(out, ToJSON(r))
	}
	return json.MarshalIndent(out, "", "  ")
}

// UnmarshalRegions parses serialized regions and normalizes each entry.
func UnmarshalRegions(data []byte) ([]TextRegion, error) {
	var raw []RegionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]TextRegion, 0, len(raw))
	for _, rj := range raw {
		out = append(out, FromJSON(rj))
	}
	return out, nil
}

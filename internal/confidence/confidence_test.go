package confidence

import (
	"testing"

	"github.com/MeKo-Tech/fieldex/internal/geometry"
	"github.com/MeKo-Tech/fieldex/internal/quality"
	"github.com/MeKo-Tech/fieldex/internal/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poly(x1, y1, x2, y2 float64) []geometry.Point {
	return []geometry.Point{{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2}}
}

func TestCombineRegressionFixture(t *testing.T) {
	// raw=0.9, blur=200, lighting=120 => image_quality=1.0;
	// "AB1234": length and diversity and noise components at 1.0, run-on
	// whitespace component at 0.5 => text_quality=0.9.
	r := region.New("AB1234", poly(0, 0, 60, 20), 0.9, "test")
	signals := &quality.Signals{Blur: 200, Lighting: 120}

	assert.InDelta(t, 1.0, ImageQuality(*signals), 1e-9)
	assert.InDelta(t, 0.9, TextQuality("AB1234"), 1e-9)
	assert.InDelta(t, 0.93, Combine(r, signals), 1e-9)
}

func TestCombineBounds(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		raw     float64
		signals *quality.Signals
	}{
		{"empty text", "", 0.0, nil},
		{"max everything", "AB1234 XY", 1.0, &quality.Signals{Blur: 1000, Lighting: 120}},
		{"dark blurry", "???", 0.1, &quality.Signals{Blur: 0, Lighting: 0}},
		{"overexposed", "x", 0.5, &quality.Signals{Blur: 80, Lighting: 255}},
		{"no signals", "some text", 0.7, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := region.New(tc.text, nil, tc.raw, "test")
			got := Combine(r, tc.signals)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestBlurQuality(t *testing.T) {
	assert.InDelta(t, 1.0, BlurQuality(150), 1e-9)
	assert.InDelta(t, 1.0, BlurQuality(500), 1e-9)
	assert.InDelta(t, 0.5, BlurQuality(70), 1e-9)
	assert.InDelta(t, 0.75, BlurQuality(110), 1e-9)
	assert.InDelta(t, 0.25, BlurQuality(35), 1e-9)
	assert.InDelta(t, 0.0, BlurQuality(0), 1e-9)
}

func TestLightingQuality(t *testing.T) {
	assert.InDelta(t, 1.0, LightingQuality(90), 1e-9)
	assert.InDelta(t, 1.0, LightingQuality(150), 1e-9)
	assert.InDelta(t, 0.5, LightingQuality(45), 1e-9)
	assert.InDelta(t, 0.0, LightingQuality(0), 1e-9)
	// Overexposure bottoms out at the floor.
	assert.InDelta(t, 0.3, LightingQuality(255), 1e-9)
	assert.Greater(t, LightingQuality(180), 0.3)
}

func TestCorrectedRegionScoresMax(t *testing.T) {
	r := region.New("n0isy", poly(0, 0, 40, 10), 0.2, "test")
	corrected := r.WithText("noisy")
	assert.InDelta(t, 1.0, Combine(corrected, nil), 1e-9)
}

func TestDocumentAreaWeightedMean(t *testing.T) {
	// Areas 1000 and 100: the large region dominates the mean.
	big := region.New("big", poly(0, 0, 100, 10), 0.9, "test")
	small := region.New("small", poly(0, 20, 10, 30), 0.9, "test")
	scores := map[string]float64{big.ID: 1.0, small.ID: 0.0}

	got := Document([]region.TextRegion{big, small}, scores)
	assert.InDelta(t, 1000.0/1100.0, got, 1e-9)
}

func TestDocumentUnweightedFallback(t *testing.T) {
	a := region.New("a", nil, 0.9, "test")
	b := region.New("b", nil, 0.9, "test")
	scores := map[string]float64{a.ID: 0.8, b.ID: 0.4}

	got := Document([]region.TextRegion{a, b}, scores)
	assert.InDelta(t, 0.6, got, 1e-9)
}

func TestDocumentEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Document(nil, nil))
}

func TestCorrectionMonotonicity(t *testing.T) {
	a := region.New("Jom Smith", poly(0, 0, 100, 10), 0.4, "test")
	b := region.New("05/02/1990", poly(0, 20, 100, 30), 0.9, "test")
	regions := []region.TextRegion{a, b}

	score := func(rs []region.TextRegion) float64 {
		scores := make(map[string]float64, len(rs))
		for _, r := range rs {
			scores[r.ID] = Combine(r, nil)
		}
		return Document(rs, scores)
	}

	before := score(regions)
	corrected := a.WithText("John Smith")
	after := score([]region.TextRegion{corrected, b})

	assert.InDelta(t, 1.0, Combine(corrected, nil), 1e-9)
	require.Greater(t, after, before)
}

func TestSuggestConfusables(t *testing.T) {
	got := Suggest("A0", 0.5)
	assert.Equal(t, []string{"AO"}, got)
}

func TestSuggestCapAndDedup(t *testing.T) {
	got := Suggest("1010", 0.5)
	assert.Len(t, got, 3)
	seen := map[string]bool{}
	for _, s := range got {
		assert.False(t, seen[s], "duplicate suggestion %q", s)
		seen[s] = true
		assert.NotEqual(t, "1010", s)
	}
}

func TestSuggestAboveThreshold(t *testing.T) {
	assert.Nil(t, Suggest("A0", 0.9))
	assert.Nil(t, Suggest("A0", SuggestionThreshold))
}

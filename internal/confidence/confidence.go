// Package confidence fuses recognition confidence, image-quality signals
// and text-shape heuristics into per-region and per-document scores.
//
// The weighting constants are empirical tuning knobs preserved verbatim;
// changing them changes the regression fixtures.
package confidence

import (
	"unicode"

	"github.com/MeKo-Tech/fieldex/internal/quality"
	"github.com/MeKo-Tech/fieldex/internal/region"
)

// Per-region fusion weights.
const (
	weightRaw   = 0.5
	weightImage = 0.3
	weightText  = 0.2
)

// Image-quality sub-weights and thresholds.
const (
	weightBlur     = 0.6
	weightLighting = 0.4

	blurSharpThreshold = 150.0 // fully sharp at or above
	blurSoftThreshold  = 70.0  // interpolation knee

	lightingOptimalLow  = 90.0
	lightingOptimalHigh = 150.0
	lightingMaxValue    = 255.0
	lightingBrightFloor = 0.3
)

// Text-shape sub-weights and bounds.
const (
	weightLength     = 0.3
	weightDiversity  = 0.3
	weightNoise      = 0.2
	weightWhitespace = 0.2

	textLengthMin = 3
	textLengthMax = 30

	noiseRatioAllowance      = 0.3
	whitespaceRatioAllowance = 0.2
	// Texts this long with no interior whitespace look like run-on
	// concatenation and score half on the whitespace component.
	runOnLength = 6
)

// neutralImageQuality stands in for the image term when no quality signals
// are available for a region (e.g. pre-detected input without pixels).
const neutralImageQuality = 0.7

// SuggestionThreshold is the combined confidence below which alternative
// readings are proposed.
const SuggestionThreshold = 0.85

// Combine fuses a region's raw recognition confidence with image-quality
// signals and text-shape heuristics into a single [0,1] score. A corrected
// region always scores the maximum.
func Combine(r region.TextRegion, signals *quality.Signals) float64 {
	if r.Corrected {
		return 1.0
	}
	imageQ := neutralImageQuality
	if signals != nil {
		imageQ = ImageQuality(*signals)
	}
	combined := weightRaw*r.RawConfidence + weightImage*imageQ + weightText*TextQuality(r.Text)
	return clamp01(combined)
}

// ImageQuality folds blur and lighting signals into one [0,1] score.
func ImageQuality(s quality.Signals) float64 {
	return clamp01(weightBlur*BlurQuality(s.Blur) + weightLighting*LightingQuality(s.Lighting))
}

// BlurQuality maps a Laplacian-variance sharpness measure to [0,1]:
// fully sharp above the upper threshold, interpolated down to 0.5 at the
// lower threshold, scaled toward zero below it.
func BlurQuality(blur float64) float64 {
	switch {
	case blur >= blurSharpThreshold:
		return 1.0
	case blur >= blurSoftThreshold:
		return 0.5 + 0.5*(blur-blurSoftThreshold)/(blurSharpThreshold-blurSoftThreshold)
	case blur <= 0:
		return 0.0
	default:
		return 0.5 * blur / blurSoftThreshold
	}
}

// LightingQuality maps a mean sample intensity to [0,1]: 1.0 inside the
// optimal band, degrading linearly toward 0 when too dark and toward a
// fixed floor when too bright.
func LightingQuality(mean float64) float64 {
	switch {
	case mean >= lightingOptimalLow && mean <= lightingOptimalHigh:
		return 1.0
	case mean < lightingOptimalLow:
		if mean <= 0 {
			return 0.0
		}
		return mean / lightingOptimalLow
	default:
		excess := (mean - lightingOptimalHigh) / (lightingMaxValue - lightingOptimalHigh)
		q := 1.0 - excess*(1.0-lightingBrightFloor)
		if q < lightingBrightFloor {
			return lightingBrightFloor
		}
		return q
	}
}

// TextQuality scores the shape of a recognized string: length, character
// diversity, non-alphanumeric noise and whitespace balance.
func TextQuality(text string) float64 {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0.0
	}
	return clamp01(weightLength*lengthScore(len(runes)) +
		weightDiversity*diversityScore(runes) +
		weightNoise*noiseScore(runes) +
		weightWhitespace*whitespaceScore(runes))
}

func lengthScore(n int) float64 {
	switch {
	case n >= textLengthMin && n <= textLengthMax:
		return 1.0
	case n < textLengthMin:
		return float64(n) / textLengthMin
	default:
		return textLengthMax / float64(n)
	}
}

func diversityScore(runes []rune) float64 {
	hasLetter, hasDigit := false, false
	for _, r := range runes {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	switch {
	case hasLetter && hasDigit:
		return 1.0
	case hasLetter || hasDigit:
		return 0.7
	default:
		return 0.3
	}
}

func noiseScore(runes []rune) float64 {
	noise := 0
	for _, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			noise++
		}
	}
	ratio := float64(noise) / float64(len(runes))
	if ratio <= noiseRatioAllowance {
		return 1.0
	}
	return clamp01(1.0 - (ratio-noiseRatioAllowance)/(1.0-noiseRatioAllowance))
}

func whitespaceScore(runes []rune) float64 {
	ws := 0
	for _, r := range runes {
		if unicode.IsSpace(r) {
			ws++
		}
	}
	if ws == 0 {
		if len(runes) >= runOnLength {
			return 0.5
		}
		return 1.0
	}
	ratio := float64(ws) / float64(len(runes))
	if ratio <= whitespaceRatioAllowance {
		return 1.0
	}
	return clamp01(1.0 - (ratio-whitespaceRatioAllowance)/(1.0-whitespaceRatioAllowance))
}

// Document aggregates per-region scores into a document-level score: the
// area-weighted mean of region confidences, where regions without geometry
// weigh 1.0. Returns 0 for an empty region set.
func Document(regions []region.TextRegion, scores map[string]float64) float64 {
	if len(regions) == 0 {
		return 0.0
	}
	weighted := 0.0
	totalWeight := 0.0
	for _, r := range regions {
		score, ok := scores[r.ID]
		if !ok {
			continue
		}
		weight := r.Box().Area()
		if weight <= 0 {
			weight = 1.0
		}
		weighted += weight * score
		totalWeight += weight
	}
	if totalWeight <= 0 {
		return 0.0
	}
	return clamp01(weighted / totalWeight)
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

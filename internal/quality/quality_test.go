package quality

import (
	"image"
	"image/color"
	"testing"

	"github.com/MeKo-Tech/fieldex/internal/geometry"
	"github.com/stretchr/testify/assert"
)

func uniformImage(w, h int, v uint8) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func checkerboard(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestUniformImageHasNoEdges(t *testing.T) {
	s := MeasureImage(uniformImage(32, 32, 128))
	assert.InDelta(t, 0.0, s.Blur, 1e-6)
	assert.InDelta(t, 128.0, s.Lighting, 1.0)
}

func TestCheckerboardIsSharp(t *testing.T) {
	s := MeasureImage(checkerboard(32, 32))
	assert.Greater(t, s.Blur, 150.0)
}

func TestMeasureCropsRegion(t *testing.T) {
	// Left half dark, right half bright; measuring the right half should
	// report the bright mean.
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			v := uint8(20)
			if x >= 20 {
				v = 200
			}
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	s := Measure(img, geometry.NewBox(20, 0, 40, 20))
	assert.InDelta(t, 200.0, s.Lighting, 2.0)
}

func TestMeasureDegenerateBoxFallsBack(t *testing.T) {
	s := Measure(uniformImage(16, 16, 100), geometry.NewBox(5, 5, 5, 5))
	assert.InDelta(t, 100.0, s.Lighting, 1.0)
}

// Package quality probes image sharpness and lighting for detected regions.
package quality

import (
	"image"

	"github.com/MeKo-Tech/fieldex/internal/geometry"
	"github.com/disintegration/imaging"
)

// Signals carries the per-region image quality measurements: a
// Laplacian-variance sharpness score (unbounded, higher is sharper) and a
// mean sample intensity in [0,255].
type Signals struct {
	Blur     float64 `json:"blur_score"`
	Lighting float64 `json:"lighting_score"`
}

// Measure crops the region's bounding box out of the image and computes its
// quality signals. A degenerate or out-of-bounds box falls back to the full
// image.
func Measure(img image.Image, box geometry.Box) Signals {
	rect := box.ToRect(img.Bounds())
	crop := img
	if rect.Dx() > 1 && rect.Dy() > 1 {
		crop = imaging.Crop(img, rect)
	}
	gray := imaging.Grayscale(crop)
	return Signals{
		Blur:     laplacianVariance(gray),
		Lighting: meanIntensity(gray),
	}
}

// MeasureImage computes quality signals over the whole image.
func MeasureImage(img image.Image) Signals {
	gray := imaging.Grayscale(img)
	return Signals{
		Blur:     laplacianVariance(gray),
		Lighting: meanIntensity(gray),
	}
}

// laplacianVariance applies a 4-neighbor Laplacian kernel and returns the
// variance of the response. Low variance means few sharp edges, i.e. blur.
func laplacianVariance(img *image.NRGBA) float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0.0
	}

	lum := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Grayscale NRGBA: R == G == B.
			lum[y*w+x] = float64(img.NRGBAAt(b.Min.X+x, b.Min.Y+y).R)
		}
	}

	n := 0
	sum := 0.0
	sumSq := 0.0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := 4*lum[y*w+x] - lum[y*w+x-1] - lum[y*w+x+1] - lum[(y-1)*w+x] - lum[(y+1)*w+x]
			sum += v
			sumSq += v * v
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

func meanIntensity(img *image.NRGBA) float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0.0
	}
	sum := 0.0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += float64(img.NRGBAAt(x, y).R)
		}
	}
	return sum / float64(w*h)
}

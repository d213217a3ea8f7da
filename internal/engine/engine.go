// Package engine defines the recognition service boundary. Recognition
// engines are external collaborators consumed as black boxes: image in,
// text fragments with geometry and confidence out.
package engine

import (
	"context"
	"image"

	"github.com/MeKo-Tech/fieldex/internal/region"
)

// Engine is one configured recognition pass. Implementations must be safe
// for concurrent use; fan-out invokes all engines on the same image.
type Engine interface {
	Name() string
	Detect(ctx context.Context, img image.Image) ([]region.TextRegion, error)
}

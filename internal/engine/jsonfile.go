package engine

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/MeKo-Tech/fieldex/internal/region"
)

// FileEngine replays pre-recorded recognition output from a JSON file. It
// stands in for a live recognition service in CLI runs and tests; the input
// image is ignored.
type FileEngine struct {
	name string
	path string
}

// NewFileEngine creates a replay engine for the given regions file.
func NewFileEngine(name, path string) *FileEngine {
	return &FileEngine{name: name, path: path}
}

// Name implements Engine.
func (e *FileEngine) Name() string { return e.name }

// Detect implements Engine by loading and normalizing the recorded regions.
func (e *FileEngine) Detect(ctx context.Context, _ image.Image) ([]region.TextRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(e.path) //nolint:gosec // G304: user-provided regions path is expected
	if err != nil {
		return nil, fmt.Errorf("engine %s: reading regions file: %w", e.name, err)
	}
	regions, err := region.UnmarshalRegions(data)
	if err != nil {
		return nil, fmt.Errorf("engine %s: parsing regions file: %w", e.name, err)
	}
	for i := range regions {
		if regions[i].SourceEngine == "" {
			regions[i].SourceEngine = e.name
		}
	}
	return regions, nil
}

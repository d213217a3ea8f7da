package engine

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/MeKo-Tech/fieldex/internal/region"
)

// DefaultTimeout bounds a single engine invocation during fan-out.
const DefaultTimeout = 30 * time.Second

// FanOut invokes every configured engine concurrently on the same image and
// joins the results keyed by engine name. An engine that fails, times out
// or returns malformed output contributes zero regions; upstream
// unavailability is never fatal.
func FanOut(ctx context.Context, engines []Engine, img image.Image, timeout time.Duration) map[string][]region.TextRegion {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	results := make([]struct {
		name    string
		regions []region.TextRegion
	}, len(engines))

	var wg sync.WaitGroup
	for i, eng := range engines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			regions, err := eng.Detect(engCtx, img)
			results[i].name = eng.Name()
			if err != nil {
				slog.Warn("recognition engine unavailable",
					"engine", eng.Name(), "error", err)
				return
			}
			results[i].regions = regions
		}()
	}
	wg.Wait()

	out := make(map[string][]region.TextRegion, len(engines))
	for _, res := range results {
		out[res.name] = res.regions
	}
	return out
}

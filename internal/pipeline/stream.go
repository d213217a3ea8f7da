package pipeline

import (
	"context"
	"time"
)

// Stream emits the result's regions in reading order over the returned
// channel, pacing each emission by the configured stream delay. The channel
// is closed after the final region or when ctx is cancelled; partial output
// stays valid either way.
func (p *Pipeline) Stream(ctx context.Context, res *DocumentResult) <-chan RegionResult {
	out := make(chan RegionResult)
	go func() {
		defer close(out)
		for i, rr := range res.Regions {
			if i > 0 && p.cfg.StreamDelay > 0 {
				select {
				case <-time.After(p.cfg.StreamDelay):
				case <-ctx.Done():
					return
				}
			}
			select {
			case out <- rr:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

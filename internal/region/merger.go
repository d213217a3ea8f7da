package region

import (
	"sort"

	"github.com/MeKo-Tech/fieldex/internal/geometry"
)

// DefaultIoUThreshold is the overlap ratio above which two regions are
// considered duplicates of the same physical text.
const DefaultIoUThreshold = 0.5

// Merge collapses near-duplicate regions from independent recognition passes
// into one authoritative region per physical location.
//
// Regions whose bounding boxes overlap transitively with IoU above the
// threshold form a cluster; the survivor is the cluster member with the
// highest raw confidence, ties broken by first-seen order. Regions with a
// degenerate (zero-area) box never overlap anything and always survive.
// Merge is a pure function over the input slice and is idempotent.
func Merge(regions []TextRegion, iouThreshold float64) []TextRegion {
	if len(regions) <= 1 {
		return append([]TextRegion(nil), regions...)
	}

	boxes := make([]geometry.Box, len(regions))
	for i, r := range regions {
		boxes[i] = r.Box()
	}

	assigned := make([]int, len(regions))
	for i := range assigned {
		assigned[i] = -1
	}

	clusters := make([][]int, 0, len(regions))
	for i := range regions {
		if assigned[i] >= 0 {
			continue
		}
		cluster := []int{i}
		assigned[i] = len(clusters)
		// Grow to a fixpoint so membership is transitive; otherwise two
		// survivors could still overlap above the threshold.
		for grew := true; grew; {
			grew = false
			for j := range regions {
				if assigned[j] >= 0 {
					continue
				}
				for _, m := range cluster {
					// Same physical location requires the same page.
					if regions[m].Page != regions[j].Page {
						continue
					}
					if geometry.IoU(boxes[m], boxes[j]) > iouThreshold {
						cluster = append(cluster, j)
						assigned[j] = len(clusters)
						grew = true
						break
					}
				}
			}
		}
		clusters = append(clusters, cluster)
	}

	out := make([]TextRegion, 0, len(clusters))
	for _, cluster := range clusters {
		best := cluster[0]
		for _, idx := range cluster[1:] {
			if regions[idx].RawConfidence > regions[best].RawConfidence {
				best = idx
			}
		}
		out = append(out, regions[best])
	}
	return out
}

// MergeEngines joins per-engine region lists and deduplicates the union.
// Engines are visited in sorted name order so the first-seen tie-break is
// deterministic regardless of fan-in completion order.
func MergeEngines(byEngine map[string][]TextRegion, iouThreshold float64) []TextRegion {
	names := make([]string, 0, len(byEngine))
	for name := range byEngine {
		names = append(names, name)
	}
	sort.Strings(names)

	var all []TextRegion
	for _, name := range names {
		all = append(all, byEngine[name]...)
	}
	return Merge(all, iouThreshold)
}

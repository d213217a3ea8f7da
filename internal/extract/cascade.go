package extract

import (
	"strings"

	"github.com/MeKo-Tech/fieldex/internal/region"
	"github.com/MeKo-Tech/fieldex/internal/schema"
)

// input bundles the immutable per-document data every strategy sees.
type input struct {
	regions []region.TextRegion
	schema  *schema.Schema
	lines   []string
	blob    string
}

// strategy is one cascade stage: a pure function that may only add missing
// keys to the resolution set.
type strategy struct {
	stage Stage
	run   func(in input, res *resolutions)
}

var cascade = []strategy{
	{StageSpatial, matchSpatial},
	{StageFullText, matchFullText},
	{StageFragment, matchFragments},
	{StageLineParse, matchLines},
	{StageFuzzyLine, matchFuzzyLines},
}

// Extract produces the FieldMap and its metadata by trying strategies in
// strict priority order, each stage only filling fields unresolved by prior
// stages. Deterministic for fixed regions and schema.
func Extract(regions []region.TextRegion, sch *schema.Schema) (FieldMap, Metadata) {
	lines := assembleLines(regions)
	in := input{
		regions: regions,
		schema:  sch,
		lines:   lines,
		blob:    strings.Join(lines, "\n"),
	}

	res := newResolutions()
	for _, st := range cascade {
		st.run(in, res)
	}

	return finalize(res, sch)
}

// finalize applies the uniform normalization rules: re-canonicalize every
// resolved key, collapse variants onto one canonical key (earlier entry wins
// except for the email-recovery case), and trim trailing synonym leakage
// from values.
func finalize(res *resolutions, sch *schema.Schema) (FieldMap, Metadata) {
	fields := make(FieldMap, len(res.order))
	meta := make(Metadata, len(res.order))

	final := newResolutions()
	for _, key := range res.order {
		r := res.m[key]
		canonical := key
		if c, ok := sch.Canonicalize(key); ok {
			canonical = c
		}
		if existing, taken := final.m[canonical]; taken {
			// Email-recovery special case: a later variant carrying an '@'
			// replaces a plain value.
			if strings.Contains(r.Value, "@") && !strings.Contains(existing.Value, "@") {
				final.m[canonical] = r
			}
			continue
		}
		final.add(canonical, r.Value, r.Stage)
	}

	for _, key := range final.order {
		r := final.m[key]
		value := sch.TrimTrailingSynonym(strings.TrimSpace(r.Value), key)
		if value == "" {
			continue
		}
		fields[key] = value
		meta[key] = metaFor(r.Stage)
	}
	return fields, meta
}

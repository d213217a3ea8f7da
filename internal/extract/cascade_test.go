package extract

import (
	"testing"

	"github.com/MeKo-Tech/fieldex/internal/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascadeFullTextStage(t *testing.T) {
	regions := []region.TextRegion{
		floating("DOB: 05/02/1990\nDate of Birth 05/02/1990"),
	}
	fields, meta := Extract(regions, enSchema(t))

	require.Contains(t, fields, "Date of Birth")
	assert.Equal(t, "05/02/1990", fields["Date of Birth"])
	assert.Equal(t, SourceRegex, meta["Date of Birth"].Source)
	assert.InDelta(t, 0.85, meta["Date of Birth"].Confidence, 1e-9)
}

func TestCascadeSpatialPriority(t *testing.T) {
	// The spatial stage resolves Name; the pattern stages must not
	// overwrite it even though they would match a different value.
	regions := []region.TextRegion{
		boxed("Name:", 0, 0, 40, 10, 0.9),
		boxed("John Smith", 50, 0, 120, 10, 0.9),
		floating("Name: Pattern Value"),
	}
	fields, meta := Extract(regions, enSchema(t))

	require.Contains(t, fields, "Name")
	assert.Equal(t, "John Smith", fields["Name"])
	assert.Equal(t, SourceSpatial, meta["Name"].Source)
	assert.InDelta(t, 0.95, meta["Name"].Confidence, 1e-9)
}

func TestCascadeDeterminism(t *testing.T) {
	regions := []region.TextRegion{
		boxed("Name:", 0, 0, 40, 10, 0.9),
		boxed("John Smith", 50, 0, 120, 10, 0.9),
		boxed("DOB: 05/02/1990", 0, 20, 150, 30, 0.85),
		floating("Gender: Male\nBlood Group: O+"),
	}
	sch := enSchema(t)

	f1, m1 := Extract(regions, sch)
	f2, m2 := Extract(regions, sch)
	assert.Equal(t, f1, f2)
	assert.Equal(t, m1, m2)
}

func TestCascadeLineParseCustomField(t *testing.T) {
	regions := []region.TextRegion{
		floating("blood group: O+"),
	}
	fields, meta := Extract(regions, enSchema(t))

	require.Contains(t, fields, "Blood Group")
	assert.Equal(t, "O+", fields["Blood Group"])
	assert.Equal(t, SourceRegex, meta["Blood Group"].Source)
}

func TestFragmentStageIndependent(t *testing.T) {
	// Each strategy is independently runnable: the fragment stage matches
	// per-region text even when the assembled blob is misaligned.
	in := input{
		regions: []region.TextRegion{floating("Mobile No: 98765 43210")},
		schema:  enSchema(t),
		blob:    "no match here",
	}
	res := newResolutions()
	matchFragments(in, res)

	require.True(t, res.has("Phone Number"))
	assert.Equal(t, "98765 43210", res.m["Phone Number"].Value)
	assert.Equal(t, StageFragment, res.m["Phone Number"].Stage)
}

func TestCascadeFuzzyLineFallback(t *testing.T) {
	// No colon and a misspelled label: only the fuzzy-line stage can
	// resolve this.
	regions := []region.TextRegion{
		floating("Natianality Indian"),
	}
	fields, _ := Extract(regions, enSchema(t))

	require.Contains(t, fields, "Nationality")
	assert.Equal(t, "Indian", fields["Nationality"])
}

func TestFinalizeEmailRecovery(t *testing.T) {
	sch := enSchema(t)
	res := newResolutions()
	res.add("Email", "johnsmith", StageLineParse)
	res.add("Email Id", "john@example.com", StageLineParse)

	fields, _ := finalize(res, sch)
	assert.Equal(t, "john@example.com", fields["Email"])
	assert.NotContains(t, fields, "Email Id")
}

func TestFinalizeCollapsePrefersExisting(t *testing.T) {
	sch := enSchema(t)
	res := newResolutions()
	res.add("Name", "John Smith", StageSpatial)
	res.add("Full Name", "Wrong Reading", StageLineParse)

	fields, meta := finalize(res, sch)
	assert.Equal(t, "John Smith", fields["Name"])
	assert.Equal(t, SourceSpatial, meta["Name"].Source)
	assert.NotContains(t, fields, "Full Name")
}

func TestExtractEmptyRegions(t *testing.T) {
	fields, meta := Extract(nil, enSchema(t))
	assert.Empty(t, fields)
	assert.Empty(t, meta)
}

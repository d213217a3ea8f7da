package pipeline

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/MeKo-Tech/fieldex/internal/engine"
	"github.com/MeKo-Tech/fieldex/internal/geometry"
	"github.com/MeKo-Tech/fieldex/internal/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxed(text string, x0, y0, x1, y1 float64) region.TextRegion {
	return region.New(text, []geometry.Point{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}, 0.9, "test")
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewBuilder().WithLanguage("en").WithStreamDelay(0).Build()
	require.NoError(t, err)
	return p
}

func TestBuilderDefaults(t *testing.T) {
	p := testPipeline(t)
	assert.Equal(t, "en", p.Schema().Language())
	assert.NotNil(t, p.Store())
}

func TestBuilderUnknownLanguage(t *testing.T) {
	_, err := NewBuilder().WithLanguage("xx").Build()
	assert.Error(t, err)
}

func TestProcessRegionsExtractsFields(t *testing.T) {
	p := testPipeline(t)

	res := p.ProcessRegions([]region.TextRegion{
		boxed("Name:", 0, 0, 60, 20),
		boxed("John Smith", 70, 0, 180, 20),
		boxed("Gender:", 0, 40, 70, 60),
		boxed("Male", 80, 40, 130, 60),
	})

	assert.Equal(t, "John Smith", res.Fields["Name"])
	assert.Equal(t, "Male", res.Fields["Gender"])
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, "en", res.Language)
	assert.Len(t, res.Regions, 4)
	assert.Greater(t, res.Confidence, 0.0)

	// metadata stays key-aligned with the surviving fields
	for k := range res.Metadata {
		_, ok := res.Fields[k]
		assert.True(t, ok, "metadata key %q has no field", k)
	}

	// the result is retrievable through the session store
	doc, err := p.Store().Get(res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, res.Fields, doc.Fields)
}

func TestProcessRegionsMergesDuplicates(t *testing.T) {
	p := testPipeline(t)

	a := boxed("DOB: 05/02/1990", 0, 0, 200, 20)
	b := boxed("DOB: 05/02/1990", 2, 0, 202, 20)
	b.RawConfidence = 0.95

	res := p.ProcessRegions([]region.TextRegion{a, b})
	assert.Len(t, res.Regions, 1)
	assert.Equal(t, "05/02/1990", res.Fields["Date of Birth"])
}

func TestPageConfidenceForMultiPageInput(t *testing.T) {
	p := testPipeline(t)

	a := boxed("Name: John Smith", 0, 0, 200, 20)
	a.Page = 1
	b := boxed("Gender: Male", 0, 0, 130, 20)
	b.Page = 2

	res := p.ProcessRegions([]region.TextRegion{a, b})
	require.Len(t, res.Regions, 2, "overlapping boxes on different pages must not merge")
	require.Len(t, res.PageScores, 2)
	assert.Greater(t, res.PageScores[1], 0.0)
	assert.Greater(t, res.PageScores[2], 0.0)
}

func TestPageConfidenceOmittedForSinglePage(t *testing.T) {
	p := testPipeline(t)
	res := p.ProcessRegions([]region.TextRegion{boxed("Name: John Smith", 0, 0, 200, 20)})
	assert.Nil(t, res.PageScores)
}

func TestCorrectRecomputesWholesale(t *testing.T) {
	p := testPipeline(t)

	label := boxed("Name:", 0, 0, 60, 20)
	value := boxed("Jhn Smih", 70, 0, 180, 20)
	value.RawConfidence = 0.5
	res := p.ProcessRegions([]region.TextRegion{label, value})
	require.Equal(t, "Jhn Smih", res.Fields["Name"])
	before := res.Confidence

	cr, err := p.Correct(res.SessionID, value.ID, "John Smith")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cr.Confidence, 1e-9)
	assert.Equal(t, "John Smith", cr.Fields["Name"])
	assert.GreaterOrEqual(t, cr.Document, before)

	// the correction is durable across store reads
	doc, err := p.Store().Get(res.SessionID)
	require.NoError(t, err)
	r, ok := doc.Regions.Get(value.ID)
	require.True(t, ok)
	assert.True(t, r.Corrected)
	assert.Equal(t, "John Smith", r.Text)
}

func TestCorrectUnknownSession(t *testing.T) {
	p := testPipeline(t)
	_, err := p.Correct("nope", "r1", "text")
	assert.Error(t, err)
}

func TestCorrectUnknownRegion(t *testing.T) {
	p := testPipeline(t)
	res := p.ProcessRegions([]region.TextRegion{boxed("Name:", 0, 0, 60, 20)})

	_, err := p.Correct(res.SessionID, "missing", "text")
	assert.ErrorIs(t, err, region.ErrUnknownRegion)
}

func TestSetLanguageSwap(t *testing.T) {
	p := testPipeline(t)
	require.NoError(t, p.SetLanguage("hi"))
	assert.Equal(t, "hi", p.Schema().Language())

	// failed switches keep the active schema
	assert.Error(t, p.SetLanguage("zz"))
	assert.Equal(t, "hi", p.Schema().Language())
}

type stubEngine struct {
	name    string
	regions []region.TextRegion
	err     error
}

func (s stubEngine) Name() string { return s.name }

func (s stubEngine) Detect(_ context.Context, _ image.Image) ([]region.TextRegion, error) {
	return s.regions, s.err
}

var _ engine.Engine = stubEngine{}

func TestProcessImageFanOut(t *testing.T) {
	p, err := NewBuilder().
		WithEngines(
			stubEngine{name: "alpha", regions: []region.TextRegion{
				boxed("Name:", 0, 0, 60, 20),
				boxed("John Smith", 70, 0, 180, 20),
			}},
			stubEngine{name: "beta", err: errors.New("boom")},
		).
		Build()
	require.NoError(t, err)

	img := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	res, err := p.ProcessImage(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, "John Smith", res.Fields["Name"])
	assert.Len(t, res.Regions, 2)
	assert.Positive(t, res.Processing.TotalNs)
}

func TestProcessImageWithoutEngines(t *testing.T) {
	p := testPipeline(t)
	_, err := p.ProcessImage(context.Background(), image.NewNRGBA(image.Rect(0, 0, 10, 10)))
	assert.ErrorIs(t, err, ErrNoEngines)
}

func TestStreamEmitsInOrder(t *testing.T) {
	p := testPipeline(t)
	res := p.ProcessRegions([]region.TextRegion{
		boxed("Name:", 0, 0, 60, 20),
		boxed("John Smith", 70, 0, 180, 20),
		boxed("Gender: Male", 0, 40, 130, 60),
	})

	var got []string
	for rr := range p.Stream(context.Background(), res) {
		got = append(got, rr.Text)
	}
	require.Len(t, got, 3)
	assert.Equal(t, res.Regions[0].Text, got[0])
	assert.Equal(t, res.Regions[2].Text, got[2])
}

func TestStreamCancellation(t *testing.T) {
	p, err := NewBuilder().WithStreamDelay(time.Hour).Build()
	require.NoError(t, err)
	res := p.ProcessRegions([]region.TextRegion{
		boxed("Name:", 0, 0, 60, 20),
		boxed("John Smith", 70, 0, 180, 20),
	})

	ctx, cancel := context.WithCancel(context.Background())
	ch := p.Stream(ctx, res)
	<-ch // first region is emitted without delay
	cancel()

	_, open := <-ch
	assert.False(t, open)
}

func TestResultFormats(t *testing.T) {
	p := testPipeline(t)
	res := p.ProcessRegions([]region.TextRegion{
		boxed("Name:", 0, 0, 60, 20),
		boxed("John Smith", 70, 0, 180, 20),
	})

	jsonOut, err := ToJSON(res)
	require.NoError(t, err)
	assert.Contains(t, jsonOut, `"session_id"`)
	assert.Contains(t, jsonOut, `"John Smith"`)

	text, err := ToPlainText(res)
	require.NoError(t, err)
	assert.Contains(t, text, "Name: John Smith")
	assert.Contains(t, text, "Document confidence:")

	csvOut, err := ToCSV(res)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(csvOut), "\n")
	assert.Equal(t, "field,value,confidence,source", lines[0])
	assert.Contains(t, csvOut, "Name,John Smith")
}

func TestResultFormatsNil(t *testing.T) {
	_, err := ToJSON(nil)
	assert.Error(t, err)
	_, err = ToPlainText(nil)
	assert.Error(t, err)
	_, err = ToCSV(nil)
	assert.Error(t, err)
}

func TestDecodeImageFailure(t *testing.T) {
	_, err := DecodeImage([]byte("not an image"))
	assert.ErrorIs(t, err, ErrDecodeFailure)
}

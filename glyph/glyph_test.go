package glyph

import (
	"errors"
	"testing"

	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource produces a triangle for every glyph and counts requests.
type countingSource struct {
	paths, metrics int
	fail           bool
}

func (s *countingSource) GlyphPath(gid ot.GlyphIndex) (*Path, error) {
	s.paths++
	if s.fail {
		return nil, errors.New("broken outline")
	}
	w := float64(gid) * 100
	return NewPath().MoveTo(0, 0).LineTo(w, 0).LineTo(w/2, w).ClosePath(), nil
}

func (s *countingSource) GlyphMetrics(gid ot.GlyphIndex) (Metrics, error) {
	s.metrics++
	return Metrics{AdvanceWidth: float64(gid) * 110, AdvanceHeight: 1000}, nil
}

func (s *countingSource) GlyphName(gid ot.GlyphIndex) string {
	return "g" + string(rune('0'+gid))
}

func TestGlyphMemoizesOutlineAndMetrics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	src := &countingSource{}
	g := New(3, []rune{'A'}, TrueType, src)
	for i := 0; i < 3; i++ {
		box, err := g.BBox()
		require.NoError(t, err)
		assert.Equal(t, BBox{MinX: 0, MinY: 0, MaxX: 300, MaxY: 300}, box)
		assert.Equal(t, 330.0, g.AdvanceWidth())
	}
	assert.Equal(t, 1, src.paths)
	assert.Equal(t, 1, src.metrics)
	assert.Equal(t, "g3", g.Name())
}

func TestGlyphOutlineError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	src := &countingSource{fail: true}
	g := New(1, nil, CFF, src)
	_, err := g.Path()
	assert.Error(t, err)
	_, err = g.CBox()
	assert.Error(t, err)
	assert.Equal(t, 1, src.paths, "failures are memoized, too")
}

func TestGlyphMarksAndLigatures(t *testing.T) {
	assert.True(t, New(1, []rune{'\u0301'}, TrueType, nil).IsMark())
	assert.True(t, New(1, []rune{'\u0301', '\u0308'}, TrueType, nil).IsMark())
	assert.False(t, New(1, []rune{'a', '\u0301'}, TrueType, nil).IsMark())
	assert.False(t, New(1, nil, TrueType, nil).IsMark())
	assert.True(t, New(1, []rune{'f', 'i'}, TrueType, nil).IsLigature())
	assert.False(t, New(1, []rune{'f'}, TrueType, nil).IsLigature())
}

func TestGlyphScaledPath(t *testing.T) {
	g := New(2, nil, TrueType, &countingSource{})
	p, err := g.ScaledPath(12, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 2.4, p.BBox().MaxX, 1e-9)
}

func TestGlyphWithoutSource(t *testing.T) {
	g := New(0, nil, TrueType, nil)
	p, err := g.Path()
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
	layers, err := g.Layers()
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, uint8(255), layers[0].Color.A)
	img, err := g.Image(16)
	assert.NoError(t, err)
	assert.Nil(t, img)
	assert.Equal(t, "", g.Name())
}

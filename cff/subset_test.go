package cff

import (
	"bytes"
	"testing"

	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sfntcff "seehuhn.de/go/sfnt/cff"
)

func TestSubsetNotdefOnly(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.cff")
	defer teardown()
	//
	f, err := Parse(nameKeyedFont())
	require.NoError(t, err)
	data, err := f.Subset(nil)
	require.NoError(t, err)
	s, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, s.IsCID())
	assert.Equal(t, 1, s.NumGlyphs())
	assert.Equal(t, 1, s.Top.Int(OpCIDCount))
	require.Len(t, s.FDArray, 1)
	assert.Equal(t, uint8(3), s.FDSelectFormat)
	// FDSelect format 3 with a single range [0,1) and sentinel 1
	off := s.Top.Int(OpFDSelect)
	assert.Equal(t, []byte{3, 0, 1, 0, 0, 0, 0, 1}, data[off:off+8])
}

func TestSubsetNameKeyedFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.cff")
	defer teardown()
	//
	f, err := Parse(nameKeyedFont())
	require.NoError(t, err)
	data, err := f.Subset([]ot.GlyphIndex{0, 2, 1})
	require.NoError(t, err)
	s, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Test-Regular", s.Name)
	require.Equal(t, 3, s.NumGlyphs())
	assert.Equal(t, f.CharStrings[2], s.CharStrings[1])
	assert.Equal(t, f.CharStrings[1], s.CharStrings[2])
	assert.Equal(t, []uint16{0, 1, 2}, s.Charset)
	assert.Equal(t, "1.000", s.TopString(OpVersion))
	ros, _ := s.Top.Get(OpROS)
	require.Len(t, ros, 3)
	assert.Equal(t, "Adobe", s.String(int(ros[0])))
	assert.Equal(t, "Identity", s.String(int(ros[1])))
	assert.Equal(t, 0.0, ros[2])
	assert.False(t, s.Top.Has(OpPrivate))
	// glyph 2 of the source calls local subr 0, no glyph calls a global subr
	require.Len(t, s.FDArray, 1)
	assert.Equal(t, [][]byte{f.LocalSubrs[0], {11}}, s.FDArray[0].Subrs)
	assert.Equal(t, [][]byte{{11}, {11}}, s.GlobalSubrs)
	// outlines survive
	for i, gid := range []ot.GlyphIndex{0, 2, 1} {
		o1, err := f.Outline(gid)
		require.NoError(t, err)
		o2, err := s.Outline(ot.GlyphIndex(i))
		require.NoError(t, err)
		assert.Equal(t, o1.Path.SVG(), o2.Path.SVG())
		assert.Equal(t, o1.Width, o2.Width)
	}
}

func TestSubsetPrependsNotdef(t *testing.T) {
	f, err := Parse(nameKeyedFont())
	require.NoError(t, err)
	data, err := f.Subset([]ot.GlyphIndex{3})
	require.NoError(t, err)
	s, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, 2, s.NumGlyphs())
	assert.Equal(t, f.CharStrings[3], s.CharStrings[1])
	assert.Equal(t, [][]byte{{11}, f.GlobalSubrs[1]}, s.GlobalSubrs)
}

func TestSubsetCIDFontKeepsUsedFontDicts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.cff")
	defer teardown()
	//
	f, err := Parse(cidFont())
	require.NoError(t, err)
	data, err := f.Subset([]ot.GlyphIndex{0, 2})
	require.NoError(t, err)
	s, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, s.FDArray, 2)
	assert.Equal(t, []uint8{0, 1}, s.FDSelect)
	assert.Equal(t, uint8(0), s.FDSelectFormat)
	assert.Equal(t, [][]byte{{11}, f.FDArray[2].Subrs[1]}, s.FDArray[1].Subrs)
	assert.False(t, s.FDArray[1].Dict.Has(OpFontName))
	o, err := s.Outline(1)
	require.NoError(t, err)
	assert.Equal(t, "M0 0L0 10Z", o.Path.SVG())
}

func TestSubsetUnknownGlyph(t *testing.T) {
	f, err := Parse(nameKeyedFont())
	require.NoError(t, err)
	_, err = f.Subset([]ot.GlyphIndex{0, 99})
	assert.ErrorIs(t, err, ErrSubsetInconsistency)
}

func TestSubsetReadableBySeehuhn(t *testing.T) {
	for _, data := range [][]byte{nameKeyedFont(), cidFont()} {
		f, err := Parse(data)
		require.NoError(t, err)
		sub, err := f.Subset([]ot.GlyphIndex{0, 1, 2})
		require.NoError(t, err)
		other, err := sfntcff.Read(bytes.NewReader(sub))
		require.NoError(t, err)
		assert.NotNil(t, other.ROS)
		assert.Len(t, other.Glyphs, 3)
		assert.Equal(t, f.Name, other.FontName)
	}
}

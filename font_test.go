package fontkit

import (
	"image/color"
	"testing"

	"github.com/npillmayer/fontkit/glyph"
	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xfont "golang.org/x/image/font"
)

func openSample(t *testing.T, f *fonttest.SFNT) *Font {
	t.Helper()
	font, err := Open(f.Bytes())
	require.NoError(t, err)
	return font
}

func TestFontMetrics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	for name, sample := range map[string]*fonttest.SFNT{
		"TrueType": fonttest.SampleTrueType(),
		"CFF":      fonttest.SampleCFF(),
	} {
		f := openSample(t, sample)
		assert.Equal(t, 1000, f.UnitsPerEm(), name)
		assert.Equal(t, 800, f.Ascent(), name)
		assert.Equal(t, -200, f.Descent(), name)
		assert.Equal(t, 100, f.LineGap(), name)
		assert.Equal(t, -100, f.UnderlinePosition(), name)
		assert.Equal(t, 50, f.UnderlineThickness(), name)
		assert.Equal(t, 700, f.CapHeight(), name)
		assert.Equal(t, 500, f.XHeight(), name)
		assert.Equal(t, 0.0, f.ItalicAngle(), name)
		assert.False(t, f.IsFixedPitch(), name)
		assert.Equal(t, glyph.BBox{MinX: -180, MinY: 0, MaxX: 580, MaxY: 750}, f.BBox(), name)
		assert.Equal(t, xfont.StyleNormal, f.Style(), name)
		assert.Equal(t, xfont.WeightNormal, f.Weight(), name)
		assert.Equal(t, fonttest.SampleFamily, f.FamilyName(), name)
		assert.Equal(t, "Regular", f.SubfamilyName(), name)
		assert.Equal(t, fonttest.SampleFamily+" Regular", f.FullName(), name)
	}
}

func TestFontStyleAndWeight(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	sample := fonttest.SampleTrueType()
	sample.Table("OS/2", fonttest.OS2(fonttest.OS2Metrics{WeightClass: 700, FsSelection: 0x01}))
	f := openSample(t, sample)
	assert.Equal(t, xfont.StyleItalic, f.Style())
	assert.Equal(t, xfont.WeightBold, f.Weight())
	//
	sample.Table("OS/2", fonttest.OS2(fonttest.OS2Metrics{WeightClass: 300}))
	f = openSample(t, sample)
	assert.Equal(t, xfont.StyleNormal, f.Style())
	assert.Equal(t, xfont.WeightLight, f.Weight())
}

func TestCharacterMap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	f := openSample(t, fonttest.SampleTrueType())
	assert.Equal(t, []rune{' ', 'A', 'B', 'f', 'i', 0x0301}, f.CharacterSet())
	assert.True(t, f.HasGlyphForCodePoint('A'))
	assert.False(t, f.HasGlyphForCodePoint('Z'))
	g := f.GlyphForCodePoint('Z')
	assert.Equal(t, ot.GlyphIndex(0), g.ID)
	assert.Equal(t, []rune{'Z'}, g.CodePoints)
	//
	glyphs := f.GlyphsForString("Bf\ufe00i")
	require.Len(t, glyphs, 3) // the variation selector selects, but does not render
	assert.Equal(t, ot.GlyphIndex(fonttest.SampleB), glyphs[0].ID)
	assert.Equal(t, ot.GlyphIndex(fonttest.SampleF), glyphs[1].ID)
	assert.Equal(t, ot.GlyphIndex(fonttest.SampleI), glyphs[2].ID)
	assert.Equal(t, []rune{'i'}, glyphs[2].CodePoints)
}

func TestGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	for kind, sample := range map[glyph.Kind]*fonttest.SFNT{
		glyph.TrueType: fonttest.SampleTrueType(),
		glyph.CFF:      fonttest.SampleCFF(),
	} {
		f := openSample(t, sample)
		assert.Equal(t, kind, f.GlyphKind())
		g := f.Glyph(fonttest.SampleA, nil)
		assert.Equal(t, kind, g.Kind)
		assert.Equal(t, []rune{'A'}, g.CodePoints)
		assert.Same(t, g, f.Glyph(fonttest.SampleA, nil), "glyphs without explicit code points are cached")
		cbox, err := g.CBox()
		require.NoError(t, err)
		assert.Equal(t, glyph.BBox{MinX: 20, MinY: 0, MaxX: 580, MaxY: 700}, cbox, "%s", kind)
		m, err := g.Metrics()
		require.NoError(t, err)
		assert.Equal(t, glyph.Metrics{
			AdvanceWidth:  600,
			AdvanceHeight: 1000,
			LeftBearing:   20,
			TopBearing:    100,
		}, m, "%s", kind)
		space := f.Glyph(fonttest.SampleSpace, nil)
		p, err := space.Path()
		require.NoError(t, err)
		assert.True(t, p.IsEmpty())
		assert.Equal(t, 250.0, space.AdvanceWidth())
	}
}

func TestCFFGlyphNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	f := openSample(t, fonttest.SampleCFF())
	assert.Equal(t, ".notdef", f.Glyph(0, nil).Name())
	assert.Equal(t, "space", f.Glyph(fonttest.SampleSpace, nil).Name()) // SID 1
	// a version 3 'post' table carries no names
	f = openSample(t, fonttest.SampleTrueType())
	assert.Equal(t, "", f.Glyph(fonttest.SampleA, nil).Name())
}

var red = color.RGBA{R: 0xff, A: 0xff}

func sampleCOLR() *fonttest.SFNT {
	sample := fonttest.SampleTrueType()
	sample.Table("COLR", fonttest.COLR(fonttest.ColorGlyph{
		Glyph: fonttest.SampleA,
		Layers: [][2]uint16{
			{fonttest.SampleB, 0},
			{fonttest.SampleI, 0xffff}, // foreground
		},
	}))
	sample.Table("CPAL", fonttest.CPAL([]color.RGBA{red}))
	return sample
}

func TestColorGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	f := openSample(t, sampleCOLR())
	assert.Equal(t, glyph.COLR, f.GlyphKind())
	g := f.Glyph(fonttest.SampleA, nil)
	assert.Equal(t, glyph.COLR, g.Kind)
	layers, err := g.Layers()
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, ot.GlyphIndex(fonttest.SampleB), layers[0].Glyph.ID)
	assert.Equal(t, glyph.TrueType, layers[0].Glyph.Kind)
	assert.Equal(t, red, layers[0].Color)
	assert.Equal(t, ot.GlyphIndex(fonttest.SampleI), layers[1].Glyph.ID)
	assert.Equal(t, black, layers[1].Color)
	// the outline of a color glyph is the union of its layers
	cbox, err := g.CBox()
	require.NoError(t, err)
	assert.Equal(t, glyph.BBox{MinX: 60, MinY: 0, MaxX: 520, MaxY: 700}, cbox)
	assert.Equal(t, 600.0, g.AdvanceWidth())
	// glyphs without layers are drawn in black
	layers, err = f.Glyph(fonttest.SampleF, nil).Layers()
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, ot.GlyphIndex(fonttest.SampleF), layers[0].Glyph.ID)
	assert.Equal(t, black, layers[0].Color)
}

func TestBitmapGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	png := []byte("\x89PNG fake image data")
	sample := fonttest.SampleTrueType()
	sample.Table("sbix", fonttest.SBix(fonttest.SampleGlyphCount,
		fonttest.Strike{PPEM: 20, Images: map[uint16]fonttest.Bitmap{
			fonttest.SampleA: {OriginX: 1, OriginY: 2, Type: "png ", Data: png[:4]},
		}},
		fonttest.Strike{PPEM: 40, Images: map[uint16]fonttest.Bitmap{
			fonttest.SampleA: {OriginX: 3, OriginY: 4, Type: "png ", Data: png},
		}},
	))
	f := openSample(t, sample)
	assert.Equal(t, glyph.SBIX, f.GlyphKind())
	g := f.Glyph(fonttest.SampleA, nil)
	for _, test := range []struct {
		size     float64
		ppem     uint16
		originX  int16
		dataSize int
	}{
		{10, 20, 1, 4},
		{20, 20, 1, 4},
		{30, 40, 3, len(png)},
		{100, 40, 3, len(png)},
	} {
		img, err := g.Image(test.size)
		require.NoError(t, err)
		require.NotNil(t, img, "size %v", test.size)
		assert.Equal(t, test.ppem, img.PPEM, "size %v", test.size)
		assert.Equal(t, test.originX, img.OriginX, "size %v", test.size)
		assert.Equal(t, ot.T("png "), img.Type)
		assert.Len(t, img.Data, test.dataSize)
	}
	img, err := f.Glyph(fonttest.SampleB, nil).Image(20)
	require.NoError(t, err)
	assert.Nil(t, img)
	// bitmap glyphs keep their outlines for metrics
	cbox, err := g.CBox()
	require.NoError(t, err)
	assert.Equal(t, 560.0, cbox.Width())
}

func TestStringsForGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	f := openSample(t, fonttest.SampleTrueType())
	s, err := f.StringsForGlyph(fonttest.SampleA)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, s)
	s, err = f.StringsForGlyph(fonttest.SampleFI)
	require.NoError(t, err)
	assert.Empty(t, s)
	//
	f = openSample(t, fonttest.SampleAAT())
	s, err = f.StringsForGlyph(fonttest.SampleFI)
	require.NoError(t, err)
	assert.Equal(t, []string{"fi"}, s)
}

func TestAvailableFeatures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	f := openSample(t, fonttest.SampleTrueType())
	features, err := f.AvailableFeatures()
	require.NoError(t, err)
	assert.Contains(t, features, ot.T("liga"))
	assert.Contains(t, features, ot.T("kern"))
	//
	f = openSample(t, fonttest.SampleAAT())
	features, err = f.AvailableFeatures()
	require.NoError(t, err)
	assert.Contains(t, features, ot.T("liga"))
}

package ttf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	square = fonttest.SimpleGlyph([]fonttest.Point{
		fonttest.On(0, 0), fonttest.On(0, 700), fonttest.On(500, 700), fonttest.On(500, 0),
	})
	arc = fonttest.SimpleGlyph([]fonttest.Point{
		fonttest.On(0, 0), fonttest.Off(50, 100), fonttest.On(100, 0),
	})
	circle = fonttest.SimpleGlyph([]fonttest.Point{
		fonttest.Off(0, 0), fonttest.Off(100, 0), fonttest.Off(100, 100), fonttest.Off(0, 100),
	})
	shiftedArc = fonttest.CompositeGlyph([4]int16{200, 10, 250, 60},
		fonttest.Component{Glyph: 1, DX: 200, DY: 10, Scale: 0.5})
)

// testFont builds a TrueType font with glyphs .notdef, arc, a composite of
// arc, an empty glyph and an all off-curve contour.
func testFont(t *testing.T) *ot.Font {
	t.Helper()
	glyf, loca := fonttest.Glyf([][]byte{square, arc, shiftedArc, nil, circle}, false)
	data := fonttest.NewSFNT(fonttest.TrueType).
		Table("head", fonttest.Head(1000, 0, [4]int16{0, 0, 500, 700}, 0)).
		Table("maxp", fonttest.MaxP(5, true)).
		Table("hhea", fonttest.HHea(800, -200, 0, 600, 5)).
		Table("hmtx", fonttest.HMtx([]uint16{500, 600, 300, 250, 100}, []int16{0, 0, 200, 0, 0})).
		Table("glyf", glyf).
		Table("loca", loca).
		Table("post", fonttest.Post(0, -100, 50, false)).
		Table("prep", []byte{0xb0, 0x00}).
		Bytes()
	f, err := ot.Parse(data)
	require.NoError(t, err)
	return f
}

func TestDecodeSimpleGlyph(t *testing.T) {
	g, err := DecodeGlyph(arc)
	require.NoError(t, err)
	assert.False(t, g.IsComposite())
	assert.Equal(t, int16(1), g.NumContours)
	assert.Equal(t, []uint16{2}, g.EndPoints)
	want := []Point{{0, 0, true}, {50, 100, false}, {100, 0, true}}
	if d := cmp.Diff(want, g.Points); d != "" {
		t.Errorf("points mismatch (-want +got):\n%s", d)
	}
	assert.Equal(t, [4]int16{0, 0, 100, 100}, [4]int16{g.XMin, g.YMin, g.XMax, g.YMax})
	//
	g, err = DecodeGlyph(nil)
	require.NoError(t, err)
	assert.Empty(t, g.Contours())
}

func TestDecodeCompositeGlyph(t *testing.T) {
	g, err := DecodeGlyph(shiftedArc)
	require.NoError(t, err)
	require.True(t, g.IsComposite())
	require.Len(t, g.Components, 1)
	c := g.Components[0]
	assert.Equal(t, ot.GlyphIndex(1), c.Glyph)
	assert.Equal(t, int16(200), c.DX)
	assert.Equal(t, int16(10), c.DY)
	assert.Equal(t, [4]float64{0.5, 0, 0, 0.5}, c.Matrix)
}

func TestDecodeTruncatedGlyph(t *testing.T) {
	_, err := DecodeGlyph(arc[:12])
	assert.ErrorIs(t, err, ot.ErrFormat)
}

func TestGlyphPaths(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	o, err := NewOutlines(testFont(t))
	require.NoError(t, err)
	for gid, svg := range []string{
		"M0 0L0 700L500 700L500 0Z",
		"M0 0Q50 100 100 0Z",
		"M200 10Q225 60 250 10Z",
		"",
		"M0 50Q0 0 50 0Q100 0 100 50Q100 100 50 100Q0 100 0 50Z",
	} {
		p, err := o.Path(ot.GlyphIndex(gid))
		require.NoError(t, err)
		assert.Equal(t, svg, p.SVG(), "glyph %d", gid)
	}
	_, err = o.Path(5)
	assert.ErrorIs(t, err, ot.ErrFormat)
}

func TestCompositeRecursionLimit(t *testing.T) {
	self := fonttest.CompositeGlyph([4]int16{}, fonttest.Component{Glyph: 1})
	glyf, loca := fonttest.Glyf([][]byte{square, self}, false)
	f, err := ot.Parse(fonttest.NewSFNT(fonttest.TrueType).
		Table("head", fonttest.Head(1000, 0, [4]int16{}, 0)).
		Table("maxp", fonttest.MaxP(2, true)).
		Table("glyf", glyf).
		Table("loca", loca).
		Bytes())
	require.NoError(t, err)
	o, err := NewOutlines(f)
	require.NoError(t, err)
	_, err = o.Path(1)
	assert.ErrorIs(t, err, ot.ErrFormat)
}

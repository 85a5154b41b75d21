package cff

import (
	"testing"

	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outlineOf interprets cs as glyph 1 of a name-keyed font.
func outlineOf(t *testing.T, cs []byte, local, global [][]byte) (*Outline, error) {
	t.Helper()
	f, err := Parse(fonttest.CFF(fonttest.CFFSpec{
		Name:        "Outline",
		CharStrings: [][]byte{fonttest.Charstring(fonttest.EndChar), cs},
		LocalSubrs:  local,
		GlobalSubrs: global,
	}))
	require.NoError(t, err)
	return f.Outline(1)
}

func TestOutlineLinesAndWidth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.cff")
	defer teardown()
	//
	o, err := outlineOf(t, square(500, 10, 20, 100), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 500.0, o.Width)
	assert.Equal(t, "M10 20L110 20L110 120L10 120Z", o.Path.SVG())
	//
	o, err = outlineOf(t, fonttest.Charstring(10, 20, fonttest.RMoveTo, fonttest.EndChar), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, o.Width) // defaultWidthX
	//
	o, err = outlineOf(t, fonttest.Charstring(300, fonttest.EndChar), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 300.0, o.Width)
	assert.True(t, o.Path.IsEmpty())
}

func TestOutlineAlternatingLines(t *testing.T) {
	cs := fonttest.Charstring(0, 0, fonttest.RMoveTo, 10, 20, 30, fonttest.HLineTo,
		5, 5, fonttest.VLineTo, fonttest.EndChar)
	o, err := outlineOf(t, cs, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "M0 0L10 0L10 20L40 20L40 25L45 25Z", o.Path.SVG())
}

func TestOutlineHintsAndWidth(t *testing.T) {
	// two hstems (even count, no width), then hintmask with an implicit vstem
	// and a width: 3 stems need a single mask byte
	cs := fonttest.Charstring(0, 10, 20, 30, fonttest.HStem, 5, 10, fonttest.HintMask)
	cs = append(cs, 0xe0)
	cs = append(cs, fonttest.Charstring(10, 20, fonttest.RMoveTo, 5, 5, fonttest.RLineTo, fonttest.EndChar)...)
	o, err := outlineOf(t, cs, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, o.Width)
	assert.Equal(t, "M10 20L15 25Z", o.Path.SVG())
	//
	cs = fonttest.Charstring(444, 0, 10, fonttest.VStem, 10, 20, fonttest.RMoveTo, fonttest.EndChar)
	o, err = outlineOf(t, cs, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 444.0, o.Width)
}

func TestOutlineCurves(t *testing.T) {
	const hvcurveto, hflex = fonttest.Op(31), fonttest.Op(1234)
	cs := fonttest.Charstring(0, 0, fonttest.RMoveTo, 10, 20, 30, 40, hvcurveto, fonttest.EndChar)
	o, err := outlineOf(t, cs, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "M0 0C10 0 30 30 30 70Z", o.Path.SVG())
	//
	cs = fonttest.Charstring(0, 0, fonttest.RMoveTo, 10, 20, 5, 10, 20, 10, 10, hflex, fonttest.EndChar)
	o, err = outlineOf(t, cs, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "M0 0C10 0 30 5 40 5C60 5 70 0 80 0Z", o.Path.SVG())
	//
	cs = fonttest.Charstring(0, 0, fonttest.RMoveTo, 1, 2, 3, 4, 5, 6, 7, 8, fonttest.RCurveLine, fonttest.EndChar)
	o, err = outlineOf(t, cs, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "M0 0C1 2 4 6 9 12L16 20Z", o.Path.SVG())
}

func TestOutlineClosesContoursOnMoveTo(t *testing.T) {
	cs := fonttest.Charstring(0, 0, fonttest.RMoveTo, 10, 0, fonttest.RLineTo,
		0, 10, fonttest.RMoveTo, 0, 10, fonttest.RLineTo, fonttest.EndChar)
	o, err := outlineOf(t, cs, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "M0 0L10 0ZM10 10L10 20Z", o.Path.SVG())
}

func TestOutlineRecordsUsedSubrs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.cff")
	defer teardown()
	//
	local := [][]byte{
		fonttest.Charstring(fonttest.Return),
		fonttest.Charstring(10, 0, fonttest.RLineTo, -107+2, fonttest.CallSubr, fonttest.Return),
		fonttest.Charstring(0, 10, fonttest.RLineTo, fonttest.Return),
	}
	global := [][]byte{
		fonttest.Charstring(0, 0, fonttest.RMoveTo, fonttest.Return),
	}
	cs := fonttest.Charstring(-107, fonttest.CallGSubr, -107+1, fonttest.CallSubr, fonttest.EndChar)
	o, err := outlineOf(t, cs, local, global)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true, 2: true}, o.LocalSubrs)
	assert.Equal(t, map[int]bool{0: true}, o.GlobalSubrs)
	assert.Equal(t, "M0 0L10 0L10 10Z", o.Path.SVG())
}

func TestSubrBias(t *testing.T) {
	assert.Equal(t, 107, SubrBias(0))
	assert.Equal(t, 107, SubrBias(1239))
	assert.Equal(t, 1131, SubrBias(1240))
	assert.Equal(t, 1131, SubrBias(33899))
	assert.Equal(t, 32768, SubrBias(33900))
}

func TestOutlineMissingSubr(t *testing.T) {
	local := [][]byte{fonttest.Charstring(fonttest.Return)}
	_, err := outlineOf(t, fonttest.Charstring(-107+5, fonttest.CallSubr, fonttest.EndChar), local, nil)
	assert.ErrorIs(t, err, ErrSubsetInconsistency)
	_, err = outlineOf(t, fonttest.Charstring(-107, fonttest.CallGSubr, fonttest.EndChar), nil, nil)
	assert.ErrorIs(t, err, ErrSubsetInconsistency)
}

func TestOutlineRecursionLimit(t *testing.T) {
	local := [][]byte{fonttest.Charstring(-107, fonttest.CallSubr, fonttest.Return)}
	_, err := outlineOf(t, fonttest.Charstring(-107, fonttest.CallSubr, fonttest.EndChar), local, nil)
	assert.ErrorIs(t, err, ot.ErrFormat)
	assert.NotErrorIs(t, err, ErrSubsetInconsistency)
}

func TestOutlineTruncatedCharstring(t *testing.T) {
	_, err := outlineOf(t, []byte{28, 1}, nil, nil)
	assert.ErrorIs(t, err, ot.ErrFormat)
}

func TestOutlineOfCIDGlyph(t *testing.T) {
	f, err := Parse(cidFont())
	require.NoError(t, err)
	o, err := f.Outline(2)
	require.NoError(t, err)
	assert.Equal(t, "M0 0L0 10Z", o.Path.SVG())
	assert.Equal(t, map[int]bool{1: true}, o.LocalSubrs)
	_, err = f.Outline(3)
	assert.ErrorIs(t, err, ot.ErrFormat)
}

package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/fontkit"
	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/bidi"
)

func writeSample(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func sampleFont(t *testing.T, sample *fonttest.SFNT) *fontkit.Font {
	t.Helper()
	f, err := fontkit.Open(sample.Bytes())
	require.NoError(t, err)
	return f
}

func TestParseCodepoints(t *testing.T) {
	runes, err := parseCodepoints("U+0041, 0x42 66\tu+1F600")
	require.NoError(t, err)
	assert.Equal(t, []rune{'A', 'B', 'f', 0x1f600}, runes)
	_, err = parseCodepoints("U+110000")
	assert.Error(t, err)
	_, err = parseCodepoints("xyz")
	assert.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	for s, dir := range map[string]bidi.Direction{
		"":     bidi.Neutral,
		"auto": bidi.Neutral,
		"LTR":  bidi.LeftToRight,
		"rtl":  bidi.RightToLeft,
	} {
		d, err := parseDirection(s)
		require.NoError(t, err, s)
		assert.Equal(t, dir, d, s)
	}
	_, err := parseDirection("ttb")
	assert.Error(t, err)
}

func TestLoadFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	path := writeSample(t, "sample.ttc", fonttest.Collection(fonttest.SampleTrueType(), fonttest.SampleCFF()))
	f, err := loadFont(path, 1)
	require.NoError(t, err)
	assert.True(t, f.OT.IsCFF())
	_, err = loadFont(path, 2)
	assert.ErrorIs(t, err, fontkit.ErrFontNotFound)
	//
	path = writeSample(t, "sample.woff", fonttest.WOFF(fonttest.SampleTrueType(), true))
	f, err = loadFont(path, 0)
	require.NoError(t, err)
	assert.Equal(t, fontkit.FormatWOFF, f.Format)
	_, err = loadFont(filepath.Join(t.TempDir(), "missing.ttf"), 0)
	assert.Error(t, err)
}

func TestInfoRows(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	rows := infoRows(sampleFont(t, fonttest.SampleTrueType()))
	info := make(map[string]string, len(rows))
	for _, row := range rows[1:] {
		info[row[0]] = row[1]
	}
	assert.Equal(t, "sfnt", info["Container"])
	assert.Equal(t, "TrueType", info["Outlines"])
	assert.Equal(t, fonttest.SamplePostScriptName, info["PostScript name"])
	assert.Equal(t, "Version 1.000", info["Version"])
	assert.Equal(t, "8", info["Glyphs"])
	assert.Equal(t, "800 / -200", info["Ascent / descent"])
	assert.Equal(t, "-180 0 580 750", info["Bounding box"])
	assert.Equal(t, "normal", info["Style"])
	assert.Equal(t, "400", info["Weight"])
	assert.Equal(t, "sample_sans", info["Registry key"])
}

func TestTableRows(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	f := sampleFont(t, fonttest.SampleTrueType())
	rows := tableRows(f.OT, []string{"head", "ZZZZ"})
	require.Len(t, rows, 3)
	assert.Equal(t, "head", rows[1][0])
	assert.Equal(t, "54", rows[1][2])
	assert.Equal(t, []string{"ZZZZ", "missing", "", ""}, rows[2])
}

func TestCMapRows(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	f := sampleFont(t, fonttest.SampleCFF())
	rows := cmapRows(f, nil)
	assert.Len(t, rows, len(fonttest.SampleCMap)+1)
	assert.Equal(t, []string{"U+0020", " ", "1", "space"}, rows[1])
	rows = cmapRows(f, []rune{'A', 'Z', '\t'})
	require.Len(t, rows, 4)
	assert.Equal(t, "2", rows[1][2])
	assert.Equal(t, []string{"U+005A", "Z", "0", ".notdef"}, rows[2])
	assert.Equal(t, "", rows[3][1], "control characters are not printed")
}

func TestFormatGlyphRun(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	f := sampleFont(t, fonttest.SampleTrueType())
	run, err := f.Layout("AB fi")
	require.NoError(t, err)
	assert.Equal(t, "[2+560|3+600|1+250|6+550]", formatGlyphRun(run))
	assert.Equal(t, "ltr", directionName(run))
	run, err = f.Layout("AB", fontkit.WithFeatureSettings("-kern"))
	require.NoError(t, err)
	assert.Equal(t, "[2+600|3+600]", formatGlyphRun(run))
}

func TestSubsetForRun(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	f := sampleFont(t, fonttest.SampleTrueType())
	run, err := f.Layout("BAB")
	require.NoError(t, err)
	sub := subsetForRun(f, run)
	assert.Len(t, sub.Glyphs(), 3, ".notdef, B and A")
	data, err := sub.Encode()
	require.NoError(t, err)
	reopened, err := fontkit.Open(data)
	require.NoError(t, err)
	assert.Equal(t, 3, reopened.NumGlyphs())
}

// isColor compares colors, tolerating small deviations from blending.
func isColor(c color.RGBA, want color.RGBA) bool {
	near := func(a, b uint8) bool { return max(a, b)-min(a, b) < 16 }
	return near(c.R, want.R) && near(c.G, want.G) && near(c.B, want.B)
}

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

func TestRenderRun(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	f := sampleFont(t, fonttest.SampleTrueType())
	run, err := f.Layout("AB")
	require.NoError(t, err)
	opts := renderOptions{Width: 320, Height: 240, PPEM: 100}
	img, err := renderRun(f, run, opts)
	require.NoError(t, err)
	// the run spans 20…1080 × 0…700 design units, i.e. 106 × 70 pixels,
	// centered at (160, 120)
	assert.True(t, isColor(img.RGBAAt(135, 120), black), "inside A")
	assert.True(t, isColor(img.RGBAAt(166, 120), white), "between A and B")
	assert.True(t, isColor(img.RGBAAt(190, 120), black), "inside B")
	assert.True(t, isColor(img.RGBAAt(5, 5), white))
	assert.Zero(t, countColor(img, red))
	//
	opts.ShowBBoxes = true
	img, err = renderRun(f, run, opts)
	require.NoError(t, err)
	assert.Greater(t, countColor(img, red), 2*(56+70))
	//
	_, err = renderRun(f, run, renderOptions{Width: 10, Height: 10})
	assert.Error(t, err)
}

func TestRenderSingleGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	f := sampleFont(t, fonttest.SampleTrueType())
	run, err := f.Layout("AB")
	require.NoError(t, err)
	single := singleGlyphRun(run, 1)
	require.Equal(t, 1, single.Len())
	assert.Equal(t, run.Glyphs[1], single.Glyphs[0])
	assert.Equal(t, 2, run.Len(), "the original run is kept")
}

func TestRenderColorLayers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	sample := fonttest.SampleTrueType()
	sample.Table("COLR", fonttest.COLR(fonttest.ColorGlyph{
		Glyph:  fonttest.SampleA,
		Layers: [][2]uint16{{fonttest.SampleB, 0}, {fonttest.SampleI, 0xffff}},
	}))
	sample.Table("CPAL", fonttest.CPAL([]color.RGBA{red}))
	f := sampleFont(t, sample)
	run, err := f.Layout("A")
	require.NoError(t, err)
	img, err := renderRun(f, run, renderOptions{Width: 320, Height: 240, PPEM: 100})
	require.NoError(t, err)
	// layers span 60…520 design units, 46 pixels centered at 160
	assert.True(t, isColor(img.RGBAAt(171, 120), red), "layer B")
	assert.True(t, isColor(img.RGBAAt(143, 120), black), "layer I is painted on top")
}

func TestRenderBitmap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	square := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			square.SetRGBA(x, y, green)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, square))
	sample := fonttest.SampleTrueType()
	sample.Table("sbix", fonttest.SBix(fonttest.SampleGlyphCount,
		fonttest.Strike{PPEM: 100, Images: map[uint16]fonttest.Bitmap{
			fonttest.SampleA: {Type: "png ", Data: buf.Bytes()},
		}},
	))
	f := sampleFont(t, sample)
	run, err := f.Layout("A")
	require.NoError(t, err)
	img, err := renderRun(f, run, renderOptions{Width: 320, Height: 240, PPEM: 100})
	require.NoError(t, err)
	// the glyph origin is at (130, 155); the bitmap sits on the baseline
	assert.True(t, isColor(img.RGBAAt(135, 150), green))
	assert.True(t, isColor(img.RGBAAt(160, 120), white), "the outline is not drawn")
}

func TestWritePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	path := filepath.Join(t.TempDir(), "out", "glyph.png")
	require.NoError(t, writePNG(img, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Width)
}

func countColor(img *image.RGBA, c color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				n++
			}
		}
	}
	return n
}

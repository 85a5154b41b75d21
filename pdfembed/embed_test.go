package pdfembed

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/npillmayer/fontkit"
	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sfntcff "seehuhn.de/go/sfnt/cff"
)

func openFont(t *testing.T, sample *fonttest.SFNT) *Font {
	t.Helper()
	f, err := fontkit.Open(sample.Bytes())
	require.NoError(t, err)
	return New(f)
}

type recorder struct {
	objects []*FontObjects
}

func (r *recorder) EmbedFont(objs *FontObjects) error {
	r.objects = append(r.objects, objs)
	return nil
}

func TestEncode(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	ef := openFont(t, fonttest.SampleTrueType())
	codes, pos, err := ef.Encode("AB fi")
	require.NoError(t, err)
	assert.Equal(t, []string{"0001", "0002", "0003", "0004"}, codes)
	require.Len(t, pos, 4)
	assert.Equal(t, 560.0, pos[0].XAdvance) // kerned
	assert.Equal(t, 600.0, pos[0].AdvanceWidth)
	assert.Equal(t, 250.0, pos[2].XAdvance)
	assert.Equal(t, 550.0, pos[3].XAdvance) // fi ligature
	assert.Equal(t, []float64{500, 600, 600, 250, 550}, ef.Widths())
	//
	codes, _, err = ef.Encode("fi", "-liga")
	require.NoError(t, err)
	assert.Equal(t, []string{"0005", "0006"}, codes)
	codes, _, err = ef.Encode("BA")
	require.NoError(t, err)
	assert.Equal(t, []string{"0002", "0001"}, codes)
	assert.Len(t, ef.Widths(), 7)
}

func TestEncodeScalesToTextSpace(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	sample := fonttest.SampleTrueType()
	sample.Table("head", fonttest.Head(2000, 0, [4]int16{-180, 0, 580, 750}, 0))
	ef := openFont(t, sample)
	assert.Equal(t, 0.5, ef.Scale())
	_, pos, err := ef.Encode("AB")
	require.NoError(t, err)
	assert.Equal(t, 280.0, pos[0].XAdvance)
	assert.Equal(t, 300.0, pos[1].XAdvance)
	assert.Equal(t, []float64{250, 300, 300}, ef.Widths())
	w, err := ef.WidthOfString("AB", 10)
	require.NoError(t, err)
	assert.InDelta(t, 5.8, w, 1e-9)
}

func TestLayoutCache(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	ef := openFont(t, fonttest.SampleTrueType())
	run, err := ef.Layout("AB AB\tfi")
	require.NoError(t, err)
	assert.Equal(t, 7, len(run.Glyphs)) // the tab maps to .notdef
	assert.Len(t, ef.cache, 3)           // "AB ", "AB\t", "fi"
	assert.Equal(t, 560+600+250+560+600+500+550.0, run.AdvanceWidth)
	//
	run, err = ef.Layout("fi", fontkit.WithFeatureSettings("-liga"))
	require.NoError(t, err)
	assert.Equal(t, 2, len(run.Glyphs))
	assert.Len(t, ef.cache, 3, "runs with options are not cached")
}

func TestToUnicodeCMap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	ef := openFont(t, fonttest.SampleTrueType())
	_, _, err := ef.Encode("AB fi")
	require.NoError(t, err)
	cmap := string(ef.ToUnicodeCMap())
	assert.Contains(t, cmap, "/CMapName /Adobe-Identity-UCS def")
	assert.Contains(t, cmap, "/Registry (Adobe)")
	assert.Contains(t, cmap, "1 beginbfrange\n<0001> <0004> [<0041> <0042> <0020> <00660069>]\nendbfrange")
	assert.True(t, strings.HasPrefix(cmap, "/CIDInit /ProcSet findresource begin"))
}

func TestBfRanges(t *testing.T) {
	unicode := make([][]rune, 300)
	for i := 1; i < len(unicode); i++ {
		unicode[i] = []rune{rune('a' + i%26)}
	}
	unicode[10] = nil
	ranges := bfRanges(unicode)
	require.Len(t, ranges, 3)
	assert.Equal(t, uint16(1), ranges[0].First)
	assert.Equal(t, uint16(9), ranges[0].Last)
	assert.Equal(t, uint16(11), ranges[1].First)
	assert.Equal(t, uint16(255), ranges[1].Last, "ranges must not cross a high byte")
	assert.Equal(t, uint16(256), ranges[2].First)
	assert.Equal(t, uint16(299), ranges[2].Last)
	for _, r := range ranges {
		assert.Len(t, r.Values, int(r.Last-r.First)+1)
	}
	//
	many := make([][]rune, 0, 2*rangesPerSection+2)
	for i := 0; i < cap(many)/2; i++ {
		many = append(many, []rune{'x'}, nil)
	}
	assert.Len(t, sections(bfRanges(many)), 2)
}

func TestHexUTF16(t *testing.T) {
	assert.Equal(t, "<0041>", hexUTF16([]rune{'A'}))
	assert.Equal(t, "<00660069>", hexUTF16([]rune("fi")))
	assert.Equal(t, "<d83dde00>", hexUTF16([]rune{0x1f600}))
}

func TestEncodeWidths(t *testing.T) {
	dw, w := encodeWidths([]float64{500, 600, 600, 250, 550})
	assert.Equal(t, 600.0, dw)
	assert.Equal(t, "[0 [500] 3 [250 550]]", FormatW(w))
	//
	dw, w = encodeWidths([]float64{500, 300, 300, 300, 300, 300, 300, 500, 500})
	assert.Equal(t, 300.0, dw)
	assert.Equal(t, "[0 [500] 7 8 500]", FormatW(w))
	//
	dw, w = encodeWidths(nil)
	assert.Equal(t, 1000.0, dw)
	assert.Empty(t, w)
}

func TestDescriptor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	ef := openFont(t, fonttest.SampleTrueType())
	d := ef.Descriptor()
	assert.Equal(t, [4]float64{-180, 0, 580, 750}, d.FontBBox)
	assert.Equal(t, 800.0, d.Ascent)
	assert.Equal(t, -200.0, d.Descent)
	assert.Equal(t, 700.0, d.CapHeight)
	assert.Equal(t, 500.0, d.XHeight)
	assert.Equal(t, 70.0, d.StemV)
	assert.Equal(t, FlagSymbolic, d.Flags)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z]{6}\+SampleSans-Regular$`), d.FontName)
	//
	sample := fonttest.SampleTrueType()
	sample.Table("head", fonttest.Head(1000, 0, [4]int16{-180, 0, 580, 750}, ot.MacStyleItalic))
	sample.Table("OS/2", fonttest.OS2(fonttest.OS2Metrics{WeightClass: 700, FamilyClass: 8 << 8}))
	sample.Table("post", fonttest.Post(-12, -100, 50, true))
	d = openFont(t, sample).Descriptor()
	assert.Equal(t, FlagSymbolic|FlagItalic|FlagFixedPitch, d.Flags)
	assert.Equal(t, -12.0, d.ItalicAngle)
	assert.Equal(t, 95.0, d.StemV)
	assert.Equal(t, 800.0, d.CapHeight, "fonts without cap height use their ascent")
}

func TestSubsetTag(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	ef1 := openFont(t, fonttest.SampleTrueType())
	ef2 := openFont(t, fonttest.SampleTrueType())
	_, _, err := ef1.Encode("AB")
	require.NoError(t, err)
	_, _, err = ef2.Encode("BA")
	require.NoError(t, err)
	assert.Equal(t, ef1.SubsetTag(), ef2.SubsetTag(), "tags depend on the set of glyphs only")
	_, _, err = ef2.Encode("f")
	require.NoError(t, err)
	assert.NotEqual(t, ef1.SubsetTag(), ef2.SubsetTag())
	assert.Regexp(t, regexp.MustCompile(`^[A-Z]{6}$`), ef2.SubsetTag())
}

func TestEmbedTrueType(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	ef := openFont(t, fonttest.SampleTrueType())
	_, _, err := ef.Encode("BA")
	require.NoError(t, err)
	sink := &recorder{}
	require.NoError(t, ef.Embed(sink))
	require.Len(t, sink.objects, 1)
	objs := sink.objects[0]
	assert.Equal(t, "Identity-H", objs.Encoding)
	assert.Equal(t, "CIDFontType2", objs.Subtype)
	assert.Equal(t, "Identity", objs.CIDToGIDMap)
	assert.Equal(t, "FontFile2", objs.FontFileKey)
	assert.Empty(t, objs.FontFileSubtype)
	assert.Equal(t, CIDSystemInfo{Registry: "Adobe", Ordering: "Identity"}, objs.CIDSystemInfo)
	assert.Equal(t, objs.BaseFont, objs.Descriptor.FontName)
	assert.Equal(t, 600.0, objs.DW)
	assert.Equal(t, "[0 [500]]", FormatW(objs.W))
	assert.Contains(t, string(objs.ToUnicode), "<0001> <0002> [<0042> <0041>]")
	// the font file is the subset: glyph 1 is B, glyph 2 is A
	sub, err := fontkit.Open(objs.FontFile)
	require.NoError(t, err)
	assert.Equal(t, 3, sub.NumGlyphs())
	bbox, err := sub.Glyph(1, nil).CBox()
	require.NoError(t, err)
	assert.Equal(t, 80.0, bbox.MinX)
}

func TestEmbedCFF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	ef := openFont(t, fonttest.SampleCFF())
	_, _, err := ef.Encode("fi")
	require.NoError(t, err)
	sink := &recorder{}
	require.NoError(t, ef.Embed(sink))
	objs := sink.objects[0]
	assert.Equal(t, "CIDFontType0", objs.Subtype)
	assert.Empty(t, objs.CIDToGIDMap)
	assert.Equal(t, "FontFile3", objs.FontFileKey)
	assert.Equal(t, "CIDFontType0C", objs.FontFileSubtype)
	//
	cff, err := sfntcff.Read(bytes.NewReader(objs.FontFile))
	require.NoError(t, err)
	assert.NotNil(t, cff.ROS)
	assert.Len(t, cff.Glyphs, 2)
}

package otlayout

import (
	"testing"

	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/bidi"
)

// Glyphs of the synthetic test fonts.
const (
	gF    = 1
	gI    = 2
	gX    = 3
	gFI   = 4
	gMark = 10 // mark class 1
	gAcc  = 11 // mark class 2
)

var tagTest = ot.T("test")

// testFeature enables lookup 0; other lookups are only reachable from contexts.
var testFeature = []fonttest.Feature{{Tag: "test", Lookups: []uint16{0}}}

// testGDEF classifies gFI as a ligature, gMark and gAcc as marks.
func testGDEF() []byte {
	return fonttest.GDEF(
		map[uint16]uint16{gF: 1, gI: 1, gX: 1, gFI: 2, gMark: 3, gAcc: 3},
		map[uint16]uint16{gMark: 1, gAcc: 2},
		[]uint16{gAcc},
	)
}

func loadTables(t *testing.T, tables map[string][]byte) *Tables {
	t.Helper()
	data := map[ot.Tag][]byte{
		ot.T("head"): fonttest.Head(1000, 0, [4]int16{0, -200, 800, 900}, 0),
		ot.T("maxp"): fonttest.MaxP(100, true),
	}
	for tag, table := range tables {
		data[ot.T(tag)] = table
	}
	otf, err := ot.ParseTables(ot.FlavorTrueType, data)
	require.NoError(t, err)
	lt, err := LoadTables(otf)
	require.NoError(t, err)
	return lt
}

// layoutTables builds a font with a GSUB or GPOS table for script 'latn'.
func layoutTables(t *testing.T, table string, gdef []byte, features []fonttest.Feature,
	lookups ...fonttest.Lookup) *Tables {
	//
	t.Helper()
	data := map[string][]byte{table: fonttest.Layout("latn", features, lookups)}
	if gdef != nil {
		data["GDEF"] = gdef
	}
	return loadTables(t, data)
}

// newRun creates a buffer of glyphs with features enabled. Glyph n
// represents code point 'a'+n-1.
func newRun(gdef *ot.GDefTable, features []string, ids ...uint16) *Buffer {
	buf := &Buffer{}
	for _, id := range ids {
		feats := map[ot.Tag]bool{}
		for _, f := range features {
			feats[ot.T(f)] = true
		}
		g := NewGlyphInfo(gdef, ot.GlyphIndex(id), []rune{rune('a' + id - 1)}, feats)
		buf.Glyphs = append(buf.Glyphs, g)
	}
	return buf
}

func TestSelectScript(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.layout")
	defer teardown()
	//
	gsub := fonttest.LayoutTable(
		[]fonttest.Script{
			{Tag: "arab", Default: []uint16{0, 1}},
			{Tag: "latn", Default: []uint16{1}, Langs: map[string][]uint16{"TRK ": {1, 2}}},
		},
		[]fonttest.Feature{
			{Tag: "init", Lookups: []uint16{0}},
			{Tag: "liga", Lookups: []uint16{0}},
			{Tag: "locl", Lookups: []uint16{0}},
		},
		[]fonttest.Lookup{{Type: ot.GSubSingle, Subtables: [][]byte{fonttest.SingleSubst1(1, gF)}}},
	)
	tables := loadTables(t, map[string][]byte{"GSUB": gsub})
	p := NewGSUBProcessor(tables.GSUB, nil)
	assert.Equal(t, ot.T("latn"), p.ScriptTag(), "default script")
	assert.Equal(t, []ot.Tag{ot.T("liga")}, p.Features())
	//
	tag := p.SelectScript([]ot.Tag{ot.T("cyrl"), ot.T("arab")}, 0, bidi.RightToLeft)
	assert.Equal(t, ot.T("arab"), tag)
	assert.Equal(t, bidi.RightToLeft, p.Direction)
	assert.Equal(t, []ot.Tag{ot.T("init"), ot.T("liga")}, p.Features())
	//
	p.SelectScript([]ot.Tag{ot.T("latn")}, ot.T("TRK"), bidi.LeftToRight)
	assert.Equal(t, ot.T("TRK"), p.LanguageTag())
	assert.True(t, p.HasFeature(ot.T("locl")))
	p.SelectScript([]ot.Tag{ot.T("latn")}, ot.T("DEU"), bidi.LeftToRight)
	assert.Equal(t, ot.Tag(0), p.LanguageTag())
	assert.False(t, p.HasFeature(ot.T("locl")))
	//
	assert.Equal(t, []ot.Tag{ot.T("arab"), ot.T("latn")}, tables.ScriptTags())
	assert.Equal(t, []ot.Tag{ot.T("init"), ot.T("liga"), ot.T("locl")}, tables.AvailableFeatures())
}

func TestSelectScriptWithoutMatch(t *testing.T) {
	gsub := fonttest.LayoutTable(
		[]fonttest.Script{{Tag: "grek", Default: []uint16{0}}},
		[]fonttest.Feature{{Tag: "liga", Lookups: []uint16{0}}},
		[]fonttest.Lookup{{Type: ot.GSubSingle, Subtables: [][]byte{fonttest.SingleSubst1(1, gF)}}},
	)
	tables := loadTables(t, map[string][]byte{"GSUB": gsub})
	p := NewGSUBProcessor(tables.GSUB, nil)
	assert.Equal(t, ot.Tag(0), p.SelectScript([]ot.Tag{ot.T("hebr")}, 0, bidi.RightToLeft))
	buf := newRun(nil, []string{"liga"}, gF)
	p.ApplyFeatures([]ot.Tag{ot.T("liga")}, buf)
	assert.Equal(t, []ot.GlyphIndex{gF}, buf.IDs())
}

func TestLookupsForFeaturesAreOrderedAndShared(t *testing.T) {
	tables := layoutTables(t, "GSUB", nil,
		[]fonttest.Feature{
			{Tag: "liga", Lookups: []uint16{2, 0}},
			{Tag: "dlig", Lookups: []uint16{0, 1}},
		},
		fonttest.Lookup{Type: ot.GSubSingle, Subtables: [][]byte{fonttest.SingleSubst1(1, gF)}},
		fonttest.Lookup{Type: ot.GSubSingle, Subtables: [][]byte{fonttest.SingleSubst1(1, gF)}},
		fonttest.Lookup{Type: ot.GSubSingle, Subtables: [][]byte{fonttest.SingleSubst1(1, gF)}},
	)
	p := NewGSUBProcessor(tables.GSUB, nil)
	refs := p.lookupsForFeatures([]ot.Tag{ot.T("liga"), ot.T("dlig")})
	require.Len(t, refs, 3)
	assert.Equal(t, uint16(0), refs[0].index)
	assert.Equal(t, []ot.Tag{ot.T("liga"), ot.T("dlig")}, refs[0].features)
	assert.Equal(t, uint16(1), refs[1].index)
	assert.Equal(t, uint16(2), refs[2].index)
}

func TestGlyphInfoClassification(t *testing.T) {
	tables := loadTables(t, map[string][]byte{"GDEF": testGDEF()})
	g := NewGlyphInfo(tables.GDEF, gMark, []rune{'a'}, nil)
	assert.True(t, g.IsMark)
	assert.Equal(t, uint16(1), g.MarkAttachType)
	g.SetID(tables.GDEF, gFI)
	assert.True(t, g.IsLigature)
	assert.False(t, g.IsMark)
	assert.Equal(t, -1, g.CursiveAttachment)
	assert.Equal(t, -1, g.MarkAttachment)
	// without GDEF, classes are guessed from code points
	g = NewGlyphInfo(nil, 7, []rune{0x0301}, nil)
	assert.True(t, g.IsMark)
	g = NewGlyphInfo(nil, 7, []rune{'f', 'i'}, nil)
	assert.True(t, g.IsLigature)
	g = NewGlyphInfo(nil, 7, []rune{'f'}, nil)
	assert.True(t, g.IsBase)
}

func TestIteratorHonorsLookupFlags(t *testing.T) {
	tables := loadTables(t, map[string][]byte{"GDEF": testGDEF()})
	buf := newRun(tables.GDEF, nil, gF, gMark, gAcc, gFI, gI)
	it := newGlyphIterator(buf, tables.GDEF)
	//
	it.reset(ot.IgnoreMarks, 0, 0)
	assert.Equal(t, ot.GlyphIndex(gFI), it.Next().ID)
	assert.Equal(t, 3, it.Index)
	assert.Equal(t, ot.GlyphIndex(gF), it.Peek(-1).ID)
	assert.Equal(t, 4, it.PeekIndex(1))
	assert.Equal(t, 3, it.Index)
	//
	it.reset(ot.IgnoreLigatures|ot.IgnoreBaseGlyphs, 0, 0)
	assert.Equal(t, ot.GlyphIndex(gAcc), it.Increment(2).ID)
	assert.Nil(t, it.Increment(1))
	//
	it.reset(ot.LookupFlag(2<<8), 0, 0) // mark attachment class 2
	assert.Equal(t, ot.GlyphIndex(gAcc), it.Next().ID)
	//
	it.reset(ot.UseMarkFilteringSet, 0, 0) // set 0 holds gAcc only
	assert.Equal(t, ot.GlyphIndex(gAcc), it.Next().ID)
	assert.Equal(t, ot.GlyphIndex(gFI), it.Next().ID)
}

func TestBufferEditing(t *testing.T) {
	buf := newRun(nil, nil, 1, 2, 3)
	buf.Insert(1, NewGlyphInfo(nil, 9, nil, nil))
	assert.Equal(t, []ot.GlyphIndex{1, 9, 2, 3}, buf.IDs())
	buf.Delete(2)
	assert.Equal(t, []ot.GlyphIndex{1, 9, 3}, buf.IDs())
	buf.Replace(0, 2, NewGlyphInfo(nil, 7, nil, nil))
	assert.Equal(t, []ot.GlyphIndex{7, 3}, buf.IDs())
	buf.Pos = []PosItem{{XAdvance: 1}, {XAdvance: 2}}
	buf.Reverse()
	assert.Equal(t, []ot.GlyphIndex{3, 7}, buf.IDs())
	assert.Equal(t, int32(2), buf.Pos[0].XAdvance)
	assert.Equal(t, 2, buf.Len())
}

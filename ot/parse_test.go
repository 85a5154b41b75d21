package ot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	gotext "github.com/go-text/typesetting/font"
	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSyntheticFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	otf := parseTestFont(t, nil)
	assert.Equal(t, FlavorTrueType, otf.Header.Flavor)
	assert.Equal(t, 4, otf.NumGlyphs())
	assert.Equal(t, uint16(1000), otf.UnitsPerEm())
	assert.False(t, otf.IsCFF())
	assert.Equal(t, []Tag{T("cmap"), T("head"), T("hhea"), T("hmtx"), T("maxp")}, otf.TableTags())
	for _, tag := range otf.TableTags() {
		rec, ok := otf.TableRecord(tag)
		require.True(t, ok)
		assert.Equal(t, TableChecksum(otf.Table(tag)), rec.Checksum, "checksum of %s", tag)
	}
	assert.Empty(t, otf.Warnings())
}

func TestParseRejectsCorruptFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	_, err := Parse([]byte("wOFF0000000000000"))
	assert.True(t, errors.Is(err, ErrFormat), "bad magic")
	_, err = Parse([]byte{0, 1})
	assert.True(t, errors.Is(err, ErrFormat), "truncated header")
	//
	f := testFont(nil)
	f.Table("maxp", fonttest.MaxP(0, true))
	_, err = Parse(f.Bytes())
	assert.True(t, errors.Is(err, ErrFormat), "font without glyphs")
	//
	data := testFont(nil).Bytes()
	binary.BigEndian.PutUint32(data[12+8:], 1<<30) // offset of first table record
	_, err = Parse(data)
	assert.True(t, errors.Is(err, ErrFormat), "table out of bounds")
}

func TestParseCollectionMember(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	first := testFont(nil)
	second := testFont(nil)
	second.Table("maxp", fonttest.MaxP(7, true))
	data := fonttest.Collection(first, second)
	offset := int(binary.BigEndian.Uint32(data[16:]))
	otf, err := ParseAt(data, offset)
	require.NoError(t, err)
	assert.Equal(t, 7, otf.NumGlyphs())
}

func TestParseTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	f := testFont(nil)
	tables := map[Tag][]byte{}
	for _, tag := range f.Tags() {
		tables[T(tag)] = f.Data(tag)
	}
	otf, err := ParseTables(FlavorTrueType, tables)
	require.NoError(t, err)
	hmtx, err := otf.HMtx()
	require.NoError(t, err)
	assert.Equal(t, LongMetric{Advance: 650, Bearing: 20}, hmtx.Metric(2))
}

func TestHorizontalMetrics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	// two long metrics, the remaining glyphs share the last advance
	otf := parseTestFont(t, map[string][]byte{
		"hhea": fonttest.HHea(800, -200, 90, 700, 2),
		"hmtx": fonttest.NewBuf().U16(500).I16(0).U16(600).I16(10).I16(-5, -7).Data(),
	})
	hhea, err := otf.HHea()
	require.NoError(t, err)
	assert.Equal(t, int16(800), hhea.Ascender)
	assert.Equal(t, int16(-200), hhea.Descender)
	hmtx, err := otf.HMtx()
	require.NoError(t, err)
	assert.Equal(t, LongMetric{Advance: 600, Bearing: -7}, hmtx.Metric(3))
	assert.Equal(t, uint16(600), hmtx.Metric(200).Advance)
}

func TestOptionalTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	otf := parseTestFont(t, map[string][]byte{
		"OS/2": fonttest.OS2(fonttest.OS2Metrics{WeightClass: 700, TypoAscender: 750, TypoDescender: -250, XHeight: 500, CapHeight: 700}),
		"post": fonttest.Post(-12.5, -100, 50, true),
		"name": fonttest.Name(map[uint16]string{1: "Test", 6: "Test-Regular"}),
	})
	os2, err := otf.OS2()
	require.NoError(t, err)
	assert.Equal(t, uint16(700), os2.WeightClass)
	assert.Equal(t, int16(500), os2.XHeight)
	assert.Equal(t, int16(700), os2.CapHeight)
	post, err := otf.Post()
	require.NoError(t, err)
	assert.Equal(t, -12.5, post.ItalicAngle)
	assert.True(t, post.IsFixedPitch)
	name, err := otf.Name()
	require.NoError(t, err)
	assert.Len(t, name.Records, 4)
	vhea, err := otf.VHea()
	assert.NoError(t, err)
	assert.Nil(t, vhea)
}

// go-text/typesetting serves as an independent reader of our synthetic fonts.
func TestAgreesWithGoText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	data := testFont(map[string][]byte{
		"OS/2": fonttest.OS2(fonttest.OS2Metrics{WeightClass: 400, TypoAscender: 800, TypoDescender: -200}),
		"post": fonttest.Post(0, -100, 50, false),
		"name": fonttest.Name(map[uint16]string{1: "Test", 2: "Regular"}),
	}).Bytes()
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	require.NoError(t, err)
	otf, err := Parse(data)
	require.NoError(t, err)
	cmap, err := otf.CMap()
	require.NoError(t, err)
	hmtx, err := otf.HMtx()
	require.NoError(t, err)
	for _, r := range []rune{'A', 'B', 'C', 'D'} {
		gid, ok := face.NominalGlyph(r)
		ours := cmap.Lookup(r, 0)
		assert.Equal(t, ok, ours != 0, "%c", r)
		assert.Equal(t, uint16(gid), uint16(ours), "%c", r)
		if ok {
			assert.Equal(t, float32(hmtx.Metric(ours).Advance), face.HorizontalAdvance(gid), "%c", r)
		}
	}
}

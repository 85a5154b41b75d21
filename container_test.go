package fontkit

import (
	"bytes"
	"errors"
	"testing"

	gotext "github.com/go-text/typesetting/font"
	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Preparation ------------------------------------------------

type ContainerTestEnviron struct {
	suite.Suite
	ttf, cff *fonttest.SFNT
}

// listen for 'go test' command --> run test methods
func TestContainers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	suite.Run(t, new(ContainerTestEnviron))
}

// run once, before test suite methods
func (env *ContainerTestEnviron) SetupSuite() {
	env.ttf = fonttest.SampleTrueType()
	env.cff = fonttest.SampleCFF()
	env.cff.Table("name", fonttest.Name(map[uint16]string{
		1: "Sample Sans CFF",
		2: "Regular",
		6: "SampleSansCFF-Regular",
	}))
}

// checkSample asserts that f answers like the sample font.
func (env *ContainerTestEnviron) checkSample(f *Font) {
	env.Require().NotNil(f)
	env.Equal(fonttest.SampleGlyphCount, f.NumGlyphs())
	env.Equal(ot.GlyphIndex(fonttest.SampleA), f.GlyphIndex('A'))
	env.Equal(int32(600), f.GlyphAdvance(fonttest.SampleA))
	env.Equal(1000, f.UnitsPerEm())
}

// --- Tests -----------------------------------------------------------------

func (env *ContainerTestEnviron) TestSniff() {
	env.Equal(FormatSFNT, Sniff(env.ttf.Bytes()))
	env.Equal(FormatSFNT, Sniff(env.cff.Bytes()))
	env.Equal(FormatWOFF, Sniff(fonttest.WOFF(env.ttf, true)))
	env.Equal(FormatCollection, Sniff(fonttest.Collection(env.ttf)))
	env.Equal(FormatDFont, Sniff(fonttest.DFont(env.ttf)))
	env.Equal(FormatUnknown, Sniff([]byte("GIF89a")))
	env.Equal(FormatUnknown, Sniff(nil))
}

func (env *ContainerTestEnviron) TestOpenSFNT() {
	f, err := Open(env.ttf.Bytes())
	env.Require().NoError(err)
	env.checkSample(f)
	env.Equal(FormatSFNT, f.Format)
	env.Equal(fonttest.SamplePostScriptName, f.PostScriptName())
	//
	f, err = Open(env.cff.Bytes())
	env.Require().NoError(err)
	env.checkSample(f)
	env.True(f.OT.IsCFF())
}

func (env *ContainerTestEnviron) TestOpenWOFF() {
	for _, compress := range []bool{false, true} {
		f, err := Open(fonttest.WOFF(env.ttf, compress))
		env.Require().NoError(err, "compressed = %v", compress)
		env.checkSample(f)
		env.Equal(FormatWOFF, f.Format)
		// decompressed tables are identical to the original ones
		env.Equal(env.ttf.Data("glyf"), f.OT.Table(ot.T("glyf")))
		env.Equal(env.ttf.Data("GSUB"), f.OT.Table(ot.T("GSUB")))
	}
}

func (env *ContainerTestEnviron) TestCorruptWOFF() {
	data := fonttest.WOFF(env.ttf, true)
	// original length of the first table, which no longer matches its data
	data[44+15]++
	_, err := Open(data)
	env.Error(err)
	env.True(errors.Is(err, ot.ErrFormat))
}

func (env *ContainerTestEnviron) TestOversizedWOFFTable() {
	data := fonttest.WOFF(env.ttf, true)
	// original length of the first table claims almost 4 GiB
	copy(data[44+12:44+16], []byte{0xff, 0xff, 0xff, 0xf0})
	_, err := Open(data)
	env.Error(err)
	env.True(errors.Is(err, ot.ErrFormat))
	//
	_, err = inflate(ot.T("glyf"), []byte{0x78, 0x9c, 0x03, 0x00}, MaxTableSize+1)
	env.True(errors.Is(err, ot.ErrFormat))
	_, err = inflate(ot.T("glyf"), []byte{0x78, 0x9c, 0x03, 0x00}, 5000)
	env.True(errors.Is(err, ot.ErrFormat))
}

func (env *ContainerTestEnviron) TestCollections() {
	for version, data := range map[int][]byte{
		1: fonttest.Collection(env.ttf, env.cff),
		2: fonttest.CollectionV2(env.ttf, env.cff),
	} {
		c, err := OpenCollection(data)
		env.Require().NoError(err, "version %d", version)
		env.Equal(uint32(version)<<16, c.Version)
		env.Equal(2, c.Len())
		fonts, err := c.Fonts()
		env.Require().NoError(err)
		env.checkSample(fonts[0])
		env.checkSample(fonts[1])
		env.False(fonts[0].OT.IsCFF())
		env.True(fonts[1].OT.IsCFF())
		//
		f, err := c.FontByName("SampleSansCFF-Regular")
		env.Require().NoError(err)
		env.True(f.OT.IsCFF())
		_, err = c.FontByName("Missing")
		env.True(errors.Is(err, ErrFontNotFound))
		_, err = c.Font(2)
		env.True(errors.Is(err, ErrFontNotFound))
		// Open returns the first font of a collection
		f, err = Open(data)
		env.Require().NoError(err)
		env.Equal(fonttest.SamplePostScriptName, f.PostScriptName())
	}
}

func (env *ContainerTestEnviron) TestDFont() {
	data := fonttest.DFont(env.ttf, env.cff)
	c, err := OpenCollection(data)
	env.Require().NoError(err)
	env.Equal(FormatDFont, c.Format)
	env.Equal(2, c.Len())
	f, err := c.FontByName("SampleSansCFF-Regular")
	env.Require().NoError(err)
	env.checkSample(f)
	env.Equal(FormatDFont, f.Format)
	//
	f, err = Open(data)
	env.Require().NoError(err)
	env.Equal(fonttest.SamplePostScriptName, f.PostScriptName())
}

func (env *ContainerTestEnviron) TestSingleFontAsCollection() {
	c, err := OpenCollection(env.ttf.Bytes())
	env.Require().NoError(err)
	env.Equal(1, c.Len())
	f, err := c.FontByName(fonttest.SamplePostScriptName)
	env.Require().NoError(err)
	env.checkSample(f)
}

func (env *ContainerTestEnviron) TestUnknownFormat() {
	_, err := Open([]byte("this is not a font at all"))
	env.True(errors.Is(err, ot.ErrFormat))
	_, err = OpenCollection([]byte{0, 1})
	env.True(errors.Is(err, ot.ErrFormat))
	// a collection of an unsupported version
	data := fonttest.Collection(env.ttf)
	data[5] = 3
	_, err = OpenCollection(data)
	env.True(errors.Is(err, ot.ErrFormat))
}

// --- Independent checks ----------------------------------------------------

func TestCollectionAgainstGoText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	data := fonttest.Collection(fonttest.SampleTrueType(), fonttest.SampleTrueType())
	faces, err := gotext.ParseTTC(bytes.NewReader(data))
	require.NoError(t, err)
	c, err := OpenCollection(data)
	require.NoError(t, err)
	require.Equal(t, len(faces), c.Len())
	for i, face := range faces {
		f, err := c.Font(i)
		require.NoError(t, err)
		for _, r := range []rune{' ', 'A', 'B', 'f', 'i', 'x'} {
			gid, ok := face.NominalGlyph(r)
			assert.Equal(t, ok, f.HasGlyphForCodePoint(r), "%q", r)
			assert.Equal(t, uint16(gid), uint16(f.GlyphIndex(r)), "%q", r)
			if ok {
				assert.Equal(t, float32(f.GlyphAdvance(f.GlyphIndex(r))), face.HorizontalAdvance(gid), "%q", r)
			}
		}
	}
}

func TestLegacyEncodingFailsClosed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	sample := fonttest.SampleTrueType()
	sample.Table("cmap", fonttest.CMap(fonttest.CMapRecord{
		Platform: 1, Encoding: 6, // Macintosh Greek, no converter
		Subtable: fonttest.CMapFormat0(map[rune]uint16{'A': fonttest.SampleA}),
	}))
	_, err := Open(sample.Bytes())
	assert.True(t, errors.Is(err, ot.ErrEncodingUnavailable))
	_, err = Open(fonttest.WOFF(sample, true))
	assert.True(t, errors.Is(err, ot.ErrEncodingUnavailable))
}

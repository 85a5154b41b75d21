package otquery

import (
	"testing"

	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/sfnt"
)

// --- Test Suite Preparation ------------------------------------------------

type InfoTestEnviron struct {
	suite.Suite
	otf *ot.Font
}

// listen for 'go test' command --> run test methods
func TestInfoFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	suite.Run(t, new(InfoTestEnviron))
}

// run once, before test suite methods
func (env *InfoTestEnviron) SetupSuite() {
	otf, err := ot.Parse(fonttest.SampleTrueType().Bytes())
	env.Require().NoError(err)
	env.otf = otf
}

// --- Tests -----------------------------------------------------------------

func (env *InfoTestEnviron) TestFontTypeInfo() {
	env.Equal("TrueType", FontType(env.otf))
	env.Equal("unknown", FontType(nil))
}

func (env *InfoTestEnviron) TestGeneralInfo() {
	info := NameInfo(env.otf)
	env.Equal(fonttest.SampleFamily, info["family"])
	env.Equal("Regular", info["subfamily"])
	env.Equal("Version 1.000", info["version"])
	env.Equal(fonttest.SamplePostScriptName, PostScriptName(env.otf))
	env.Equal(fonttest.SampleFamily, FamilyName(env.otf))
	env.Equal("Regular", SubfamilyName(env.otf))
	env.Equal(fonttest.SampleFamily+" Regular", FullName(env.otf))
	env.Equal("", Name(env.otf, sfnt.NameIDLicense))
}

func (env *InfoTestEnviron) TestNamesRange() {
	count := 0
	for id, value := range NamesRange(env.otf) {
		if id == sfnt.NameIDPostScript {
			env.Equal(fonttest.SamplePostScriptName, value)
			count++
		}
	}
	env.Equal(2, count, "expected a Macintosh and a Windows record")
}

func (env *InfoTestEnviron) TestFontMetrics() {
	m := FontMetrics(env.otf)
	env.Equal(sfnt.Units(1000), m.UnitsPerEm)
	env.Equal(sfnt.Units(800), m.Ascent)
	env.Equal(sfnt.Units(-200), m.Descent)
	env.Equal(sfnt.Units(100), m.LineGap)
	env.Equal(sfnt.Units(700), m.CapHeight)
	env.Equal(sfnt.Units(500), m.XHeight)
	env.Equal(sfnt.Units(-100), m.UnderlinePosition)
	env.Equal(sfnt.Units(50), m.UnderlineThickness)
	env.False(m.IsFixedPitch)
	env.Equal(BoundingBox{MinX: -180, MinY: 0, MaxX: 580, MaxY: 750}, m.BBox)
}

func (env *InfoTestEnviron) TestGlyphInfo() {
	gid := GlyphIndex(env.otf, 'A')
	env.Equal(ot.GlyphIndex(fonttest.SampleA), gid)
	env.Equal('A', CodePointForGlyph(env.otf, gid))
	env.Equal(rune(0), CodePointForGlyph(env.otf, fonttest.SampleFI))
	env.Equal(ot.GlyphIndex(0), GlyphIndex(env.otf, 'Z'))
	//
	m := GlyphMetrics(env.otf, gid)
	env.Equal(sfnt.Units(600), m.Advance)
	env.Equal(sfnt.Units(20), m.LSB)
	env.Equal(sfnt.Units(20), m.RSB)
	env.Equal(BoundingBox{MinX: 20, MinY: 0, MaxX: 580, MaxY: 700}, m.BBox)
	//
	space := GlyphMetrics(env.otf, fonttest.SampleSpace)
	env.Equal(sfnt.Units(250), space.Advance)
	env.True(space.BBox.IsEmpty())
	env.Equal(sfnt.Units(0), space.RSB)
}

func (env *InfoTestEnviron) TestGlyphClasses() {
	env.Equal(GlyphClasses{Class: BaseGlyph}, ClassesForGlyph(env.otf, fonttest.SampleA))
	env.Equal(GlyphClasses{Class: LigatureGlyph}, ClassesForGlyph(env.otf, fonttest.SampleFI))
	env.Equal(GlyphClasses{Class: MarkGlyph, MarkAttachClass: 1}, ClassesForGlyph(env.otf, fonttest.SampleAcute))
}

func (env *InfoTestEnviron) TestLayoutTables() {
	env.Equal([]string{"GDEF", "GPOS", "GSUB"}, LayoutTables(env.otf))
}

func (env *InfoTestEnviron) TestScriptSupport() {
	scr, lang := FontSupportsScript(env.otf, ot.T("latn"), ot.T("DEU"))
	env.Equal(ot.T("latn"), scr)
	env.Equal(ot.DFLT, lang)
	scr, _ = FontSupportsScript(env.otf, ot.T("arab"), ot.DFLT)
	env.Equal(ot.DFLT, scr)
}

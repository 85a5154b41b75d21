package otarabic

import (
	"testing"

	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/otlayout"
	"github.com/npillmayer/fontkit/otshape"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
)

type cmapFont map[rune]ot.GlyphIndex

func (f cmapFont) GlyphIndex(r rune) ot.GlyphIndex     { return f[r] }
func (f cmapFont) GlyphAdvance(gid ot.GlyphIndex) int32 { return 500 }
func (f cmapFont) LayoutTables() *otlayout.Tables       { return nil }

func TestMatch(t *testing.T) {
	sh := New()
	assert.Equal(t, otshape.ShaperConfidenceCertain,
		sh.Match(otshape.SelectionContext{Script: language.MustParseScript("Arab")}))
	assert.Equal(t, otshape.ShaperConfidenceHigh,
		sh.Match(otshape.SelectionContext{Script: language.MustParseScript("Syrc")}))
	assert.Equal(t, otshape.ShaperConfidenceHigh,
		sh.Match(otshape.SelectionContext{ScriptTag: ot.T("mong")}))
	assert.Equal(t, otshape.ShaperConfidenceNone,
		sh.Match(otshape.SelectionContext{Script: language.MustParseScript("Latn")}))
}

func TestPlanStages(t *testing.T) {
	plan := otshape.NewPlan(nil, ot.T("arab"), 0, bidi.RightToLeft)
	New().PlanFeatures(plan, map[ot.Tag]bool{ot.T("fina"): false})
	stages := plan.Stages()
	require.Greater(t, len(stages), 9)
	assert.Contains(t, stages[0], ot.T("rtla"))
	assert.Nil(t, stages[2], "joining analysis runs as a callback")
	var forms []ot.Tag
	for _, st := range stages[3:] {
		if len(st) == 1 && !plan.IsGlobal(st[0]) {
			forms = append(forms, st[0])
		}
	}
	// fina has been disabled by the client
	assert.Equal(t, []ot.Tag{tagIsol, tagFin2, tagFin3, tagMedi, tagMed2, tagInit}, forms)
	assert.True(t, plan.IsGlobal(tagMset))
}

func TestJoiningStageEnablesFormFeatures(t *testing.T) {
	buf := &otlayout.Buffer{}
	for _, r := range []rune{'\u0628', '\u064E', '\u0628', '\u0627'} {
		buf.Glyphs = append(buf.Glyphs, otlayout.NewGlyphInfo(nil, 1, []rune{r}, nil))
	}
	assignJoiningForms(nil, buf)
	assert.True(t, buf.Glyphs[0].Features[tagInit])
	assert.Empty(t, buf.Glyphs[1].Features)
	assert.True(t, buf.Glyphs[2].Features[tagMedi])
	assert.True(t, buf.Glyphs[3].Features[tagFina])
}

func TestPresentationFormFallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.layout")
	defer teardown()
	//
	font := cmapFont{
		'\u0628': 1,
		'\uFE91': 2, // beh initial form
		'\uFE90': 3, // beh final form
		'\uFE92': 4, // beh medial form
	}
	shaper := otshape.NewShaper(New())
	res, err := shaper.Shape(font, []rune{'\u0628', '\u0628', '\u0628'}, otshape.Params{
		Direction: bidi.Neutral,
	})
	require.NoError(t, err)
	assert.Equal(t, "arabic", res.Engine)
	assert.Equal(t, bidi.RightToLeft, res.Direction)
	// visual order
	assert.Equal(t, []ot.GlyphIndex{3, 4, 2}, res.Buffer.IDs())
	assert.Equal(t, int32(500), res.Buffer.Pos[0].XAdvance)
}

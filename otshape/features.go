package otshape

import (
	"unicode"

	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/otlayout"
	"golang.org/x/text/unicode/bidi"
)

// Feature groups planned by the default shaper.
var (
	VariationFeatures  = []ot.Tag{ot.T("rvrn")}
	CommonFeatures     = []ot.Tag{ot.T("ccmp"), ot.T("locl"), ot.T("rlig"), ot.T("mark"), ot.T("mkmk")}
	FractionalFeatures = []ot.Tag{ot.T("frac"), ot.T("numr"), ot.T("dnom")}
	HorizontalFeatures = []ot.Tag{ot.T("calt"), ot.T("clig"), ot.T("liga"), ot.T("rclt"), ot.T("curs"), ot.T("kern")}
)

var directionalFeatures = map[bidi.Direction][]ot.Tag{
	bidi.LeftToRight: {ot.T("ltra"), ot.T("ltrm")},
	bidi.RightToLeft: {ot.T("rtla"), ot.T("rtlm")},
}

var (
	tagFrac = ot.T("frac")
	tagNumr = ot.T("numr")
	tagDnom = ot.T("dnom")
)

// DefaultFeatures returns the features enabled for horizontal text if a
// client does not say otherwise.
func DefaultFeatures() []ot.Tag {
	return []ot.Tag{ot.T("kern"), ot.T("liga")}
}

// PlanPreprocessing adds the stages every shaper starts with: variation and
// directional features, the common features and the local fraction features.
func PlanPreprocessing(plan *Plan) {
	plan.Add(true, VariationFeatures...)
	plan.Add(true, directionalFeatures[plan.Direction]...)
	plan.Add(true, CommonFeatures...)
	plan.AddStage(false, FractionalFeatures...)
}

// PlanPostprocessing adds the horizontal features as the last stage and
// applies the client's feature overrides.
func PlanPostprocessing(plan *Plan, user map[ot.Tag]bool) {
	plan.AddStage(true, HorizontalFeatures...)
	plan.SetFeatureOverrides(user)
}

// AssignFractions enables the fraction features around a fraction slash
// U+2044: numerators before it get 'numr', denominators after it 'dnom'.
func AssignFractions(buf *otlayout.Buffer) {
	for i := 0; i < buf.Len(); i++ {
		if firstCodePoint(buf.Glyphs[i]) != 0x2044 {
			continue
		}
		start, end := i, i+1
		for start > 0 && unicode.IsDigit(firstCodePoint(buf.Glyphs[start-1])) {
			g := buf.Glyphs[start-1]
			g.Features[tagNumr], g.Features[tagFrac] = true, true
			start--
		}
		for end < buf.Len() && unicode.IsDigit(firstCodePoint(buf.Glyphs[end])) {
			g := buf.Glyphs[end]
			g.Features[tagDnom], g.Features[tagFrac] = true, true
			end++
		}
		buf.Glyphs[i].Features[tagFrac] = true
		i = end - 1
	}
}

func firstCodePoint(g *otlayout.GlyphInfo) rune {
	if len(g.CodePoints) == 0 {
		return -1
	}
	return g.CodePoints[0]
}

package otshape

import (
	"github.com/npillmayer/fontkit/ot"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
)

// Params collects shaping parameters. Zero values are resolved from the
// text: the script is the first strong script of the text, the direction
// follows from the script.
type Params struct {
	Direction  bidi.Direction  // writing direction
	Script     language.Script // 4-letter ISO 15924 script identifier
	Language   language.Tag    // BCP 47 language tag
	Features   []FeatureRange  // OpenType features to apply
	Variations []float64       // normalized variation coordinates
}

// FeatureRange tells a shaper to turn a certain OpenType feature on or off for a
// run of code-points.
type FeatureRange struct {
	Feature    ot.Tag // 4-letter feature tag
	Arg        int    // optional argument for this feature
	On         bool   // turn it on or off?
	Start, End int    // position of code-points to apply feature for
}

// IsGlobal returns true if the feature range spans the whole text, i.e.
// Start and End are both 0.
func (fr FeatureRange) IsGlobal() bool {
	return fr.Start == 0 && fr.End == 0
}

func (fr FeatureRange) covers(pos int) bool {
	return pos >= fr.Start && (pos < fr.End || fr.End <= fr.Start)
}

// Features creates global feature ranges switching on features.
func Features(features ...ot.Tag) []FeatureRange {
	fr := make([]FeatureRange, len(features))
	for i, f := range features {
		fr[i] = FeatureRange{Feature: f, On: true}
	}
	return fr
}

func globalFeatures(features []FeatureRange) map[ot.Tag]bool {
	m := map[ot.Tag]bool{}
	for _, fr := range features {
		if fr.IsGlobal() {
			m[fr.Feature] = fr.On
		}
	}
	return m
}

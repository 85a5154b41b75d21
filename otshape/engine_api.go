package otshape

import (
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/otlayout"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
)

// SelectionContext carries the segment metadata for shaper selection.
type SelectionContext struct {
	Direction bidi.Direction
	Script    language.Script // unicode.org/iso15924/iso15924-codes.html
	Language  language.Tag
	ScriptTag ot.Tag // script tag selected from the font's layout tables
	LangTag   ot.Tag
}

type ShaperConfidence int

const (
	ShaperConfidenceNone ShaperConfidence = iota
	ShaperConfidenceLow
	ShaperConfidenceMedium
	ShaperConfidenceHigh
	ShaperConfidenceCertain
)

// ShapingEngine is a script shaper. It sets up the shaping plan for a run and
// assigns per-glyph features.
type ShapingEngine interface {
	Name() string
	Match(ctx SelectionContext) ShaperConfidence
	New() ShapingEngine
	// PlanFeatures adds the engine's stages to plan. user holds the features
	// the client enabled or disabled for the whole run.
	PlanFeatures(plan *Plan, user map[ot.Tag]bool)
	// AssignFeatures enables local features for glyphs of buf. Global
	// features have already been assigned.
	AssignFeatures(plan *Plan, buf *otlayout.Buffer)
}

// MarkZeroing tells when the advances of mark glyphs are set to zero.
type MarkZeroing uint8

const (
	ZeroMarksAfterGPOS MarkZeroing = iota
	ZeroMarksBeforeGPOS
	ZeroMarksNever
)

// ShapingEngineMarkPolicy is implemented by engines which do not want mark
// advances zeroed after GPOS.
type ShapingEngineMarkPolicy interface {
	ZeroMarkWidths() MarkZeroing
}

func zeroMarkPolicy(engine ShapingEngine) MarkZeroing {
	if p, ok := engine.(ShapingEngineMarkPolicy); ok {
		return p.ZeroMarkWidths()
	}
	return ZeroMarksAfterGPOS
}

package otcore

import (
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/otlayout"
	"github.com/npillmayer/fontkit/otshape"
	"golang.org/x/text/language"
)

// Shaper is the default OpenType shaping engine.
//
// It provides a conservative baseline for scripts that do not have a
// script-specific shaper in the candidate list.
type Shaper struct{}

var _ otshape.ShapingEngine = Shaper{}

var latinScript = language.MustParseScript("Latn")

// New returns a new core shaping engine instance.
func New() otshape.ShapingEngine {
	return Shaper{}
}

// Name returns the stable engine name used for tie-breaking.
func (Shaper) Name() string {
	return "core"
}

// Match returns how suitable the core engine is for ctx.
//
// It prefers Latin segments and otherwise returns a low confidence, so
// script-specific engines can outvote it.
func (Shaper) Match(ctx otshape.SelectionContext) otshape.ShaperConfidence {
	if ctx.Script == latinScript {
		return otshape.ShaperConfidenceHigh
	}
	return otshape.ShaperConfidenceLow
}

// New returns a new independent core engine instance.
func (Shaper) New() otshape.ShapingEngine {
	return Shaper{}
}

// PlanFeatures plans the default stages.
func (Shaper) PlanFeatures(plan *otshape.Plan, user map[ot.Tag]bool) {
	otshape.PlanPreprocessing(plan)
	otshape.PlanPostprocessing(plan, user)
}

// AssignFeatures enables contextual fractions.
func (Shaper) AssignFeatures(plan *otshape.Plan, buf *otlayout.Buffer) {
	otshape.AssignFractions(buf)
}

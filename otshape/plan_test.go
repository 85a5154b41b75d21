package otshape

import (
	"testing"

	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/otlayout"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/bidi"
)

// recorder is a FeatureApplier logging the stages it is asked to apply.
type recorder struct {
	calls [][]ot.Tag
}

func (r *recorder) ApplyFeatures(features []ot.Tag, buf *otlayout.Buffer) {
	r.calls = append(r.calls, features)
}

func tags(s ...string) []ot.Tag {
	t := make([]ot.Tag, len(s))
	for i, x := range s {
		t[i] = ot.T(x)
	}
	return t
}

func TestPlanStagesAndDeduplication(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.layout")
	defer teardown()
	//
	plan := NewPlan(nil, ot.T("latn"), 0, bidi.LeftToRight)
	plan.Add(true, tags("ccmp", "locl")...)
	plan.AddStage(false, tags("frac", "locl")...)
	plan.Add(true, tags("liga")...)
	assert.Equal(t, [][]ot.Tag{tags("ccmp", "locl"), tags("frac", "liga")}, plan.Stages())
	assert.True(t, plan.IsGlobal(ot.T("liga")))
	assert.False(t, plan.IsGlobal(ot.T("frac")))
	assert.Equal(t, tags("ccmp", "frac", "liga", "locl"), plan.Features())
}

func TestPlanFeatureOverrides(t *testing.T) {
	plan := NewPlan(nil, ot.T("latn"), 0, bidi.LeftToRight)
	plan.Add(true, tags("ccmp", "liga", "kern")...)
	plan.SetFeatureOverrides(map[ot.Tag]bool{
		ot.T("liga"): false,
		ot.T("smcp"): true,
		ot.T("dlig"): true,
		ot.T("zzzz"): false, // not planned, ignored
	})
	assert.Equal(t, [][]ot.Tag{tags("ccmp", "kern", "dlig", "smcp")}, plan.Stages())
	assert.True(t, plan.IsGlobal(ot.T("smcp")))
	assert.NotContains(t, plan.Features(), ot.T("liga"))
	// a removed feature may be planned again
	plan.Add(false, ot.T("liga"))
	assert.Contains(t, plan.Features(), ot.T("liga"))
}

func TestPlanProcessRunsCallbacksOnGlyphPassOnly(t *testing.T) {
	plan := NewPlan(nil, ot.T("arab"), 0, bidi.RightToLeft)
	plan.Add(true, tags("ccmp")...)
	calls := 0
	plan.AddCallback(func(p *Plan, buf *otlayout.Buffer) {
		calls++
		for _, g := range buf.Glyphs {
			g.Features[ot.T("init")] = true
		}
	})
	plan.Add(false, tags("init")...)
	require.Equal(t, [][]ot.Tag{tags("ccmp"), nil, tags("init")}, plan.Stages())
	//
	buf := &otlayout.Buffer{Glyphs: []*otlayout.GlyphInfo{otlayout.NewGlyphInfo(nil, 1, []rune{'x'}, nil)}}
	plan.AssignGlobalFeatures(buf)
	assert.True(t, buf.Glyphs[0].Features[ot.T("ccmp")])
	assert.False(t, buf.Glyphs[0].Features[ot.T("init")])
	rec := &recorder{}
	plan.Process(rec, buf, false)
	assert.Equal(t, 1, calls)
	assert.Equal(t, [][]ot.Tag{tags("ccmp"), tags("init")}, rec.calls)
	assert.True(t, buf.Glyphs[0].Features[ot.T("init")])
	//
	rec = &recorder{}
	plan.Process(rec, buf, true)
	assert.Equal(t, 1, calls, "callback must not run when positioning")
	assert.Len(t, rec.calls, 2)
}

func TestDefaultStages(t *testing.T) {
	plan := NewPlan(nil, ot.T("latn"), 0, bidi.LeftToRight)
	PlanPreprocessing(plan)
	PlanPostprocessing(plan, map[ot.Tag]bool{ot.T("kern"): false})
	stages := plan.Stages()
	require.Len(t, stages, 3)
	assert.Equal(t, tags("rvrn", "ltra", "ltrm", "ccmp", "locl", "rlig", "mark", "mkmk"), stages[0])
	assert.Equal(t, tags("frac", "numr", "dnom"), stages[1])
	assert.Equal(t, tags("calt", "clig", "liga", "rclt", "curs"), stages[2])
	assert.False(t, plan.IsGlobal(ot.T("numr")))
}

func TestAssignFractions(t *testing.T) {
	buf := &otlayout.Buffer{}
	for _, r := range "a 12⁄34" {
		buf.Glyphs = append(buf.Glyphs, otlayout.NewGlyphInfo(nil, 1, []rune{r}, nil))
	}
	AssignFractions(buf)
	frac, numr, dnom := ot.T("frac"), ot.T("numr"), ot.T("dnom")
	assert.Empty(t, buf.Glyphs[1].Features)
	assert.True(t, buf.Glyphs[2].Features[numr] && buf.Glyphs[2].Features[frac])
	assert.True(t, buf.Glyphs[3].Features[numr])
	assert.True(t, buf.Glyphs[4].Features[frac])
	assert.False(t, buf.Glyphs[4].Features[numr])
	assert.True(t, buf.Glyphs[5].Features[dnom] && buf.Glyphs[6].Features[dnom])
}

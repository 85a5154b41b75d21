package otshape

import (
	"slices"

	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/otlayout"
	"golang.org/x/text/unicode/bidi"
)

// StageFunc is a plan stage implemented in code. It may change the glyphs of
// buf and the features enabled for them.
type StageFunc func(plan *Plan, buf *otlayout.Buffer)

// FeatureApplier is a processor a plan is replayed against, i.e. an
// otlayout.GSUBProcessor or otlayout.GPOSProcessor.
type FeatureApplier interface {
	ApplyFeatures(features []ot.Tag, buf *otlayout.Buffer)
}

type stage struct {
	features []ot.Tag
	callback StageFunc
}

// Plan declares which features are applied to a run and in which order.
//
// Features are grouped into stages. All lookups of the features of a stage are
// applied in one pass, in lookup list order, before the next stage starts.
// A feature is planned at most once. Global features are enabled for every
// glyph of a run, local features only for glyphs a shaper selects.
type Plan struct {
	Font      Font // may be nil
	ScriptTag ot.Tag
	LangTag   ot.Tag
	Direction bidi.Direction
	stages    []*stage
	global    map[ot.Tag]bool
	all       map[ot.Tag]int // feature → stage index
}

// NewPlan creates an empty plan for shaping text with font.
func NewPlan(font Font, script, lang ot.Tag, dir bidi.Direction) *Plan {
	return &Plan{
		Font:      font,
		ScriptTag: script,
		LangTag:   lang,
		Direction: dir,
		global:    map[ot.Tag]bool{},
		all:       map[ot.Tag]int{},
	}
}

// Add adds features to the last stage. Features already planned are ignored.
func (p *Plan) Add(global bool, features ...ot.Tag) {
	if len(p.stages) == 0 || p.stages[len(p.stages)-1].callback != nil {
		p.stages = append(p.stages, &stage{})
	}
	last := len(p.stages) - 1
	st := p.stages[last]
	for _, f := range features {
		if _, ok := p.all[f]; ok {
			continue
		}
		st.features = append(st.features, f)
		p.all[f] = last
		if global {
			p.global[f] = true
		}
	}
}

// AddStage starts a new stage holding features.
func (p *Plan) AddStage(global bool, features ...ot.Tag) {
	p.stages = append(p.stages, &stage{})
	p.Add(global, features...)
}

// AddCallback appends a stage running fn, followed by an empty feature stage.
func (p *Plan) AddCallback(fn StageFunc) {
	p.stages = append(p.stages, &stage{callback: fn}, &stage{})
}

// SetFeatureOverrides enables or disables features after a plan has been set
// up. Enabled features not yet planned are added to the last stage as global
// features. Disabled features are removed from their stage.
func (p *Plan) SetFeatureOverrides(overrides map[ot.Tag]bool) {
	tags := make([]ot.Tag, 0, len(overrides))
	for tag := range overrides {
		tags = append(tags, tag)
	}
	slices.Sort(tags) // map order must not leak into stage order
	for _, tag := range tags {
		if overrides[tag] {
			p.Add(true, tag)
			continue
		}
		inx, ok := p.all[tag]
		if !ok {
			continue
		}
		st := p.stages[inx]
		if i := slices.Index(st.features, tag); i >= 0 {
			st.features = slices.Delete(st.features, i, i+1)
		}
		delete(p.all, tag)
		delete(p.global, tag)
	}
}

// AssignGlobalFeatures enables the global features of p for every glyph of buf.
func (p *Plan) AssignGlobalFeatures(buf *otlayout.Buffer) {
	for _, g := range buf.Glyphs {
		for f := range p.global {
			g.Features[f] = true
		}
	}
}

// Features returns all planned features, sorted.
func (p *Plan) Features() []ot.Tag {
	tags := make([]ot.Tag, 0, len(p.all))
	for tag := range p.all {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// IsGlobal returns true if feature is planned for every glyph.
func (p *Plan) IsGlobal(feature ot.Tag) bool {
	return p.global[feature]
}

// Stages returns the feature lists of the stages of p. Callback stages are
// reported as nil.
func (p *Plan) Stages() [][]ot.Tag {
	stages := make([][]ot.Tag, len(p.stages))
	for i, st := range p.stages {
		if st.callback == nil {
			stages[i] = slices.Clone(st.features)
			if stages[i] == nil {
				stages[i] = []ot.Tag{}
			}
		}
	}
	return stages
}

// Process replays the stages of p against proc. Callback stages run only on
// the glyph pass (positioned == false); during positioning they are skipped.
func (p *Plan) Process(proc FeatureApplier, buf *otlayout.Buffer, positioned bool) {
	for i, st := range p.stages {
		if st.callback != nil {
			if !positioned {
				tracer().Debugf("plan stage %d: callback", i)
				st.callback(p, buf)
			}
			continue
		}
		if len(st.features) > 0 {
			tracer().Debugf("plan stage %d: %v", i, st.features)
			proc.ApplyFeatures(st.features, buf)
		}
	}
}

package otlayout

import (
	"math"
	"sort"

	"github.com/npillmayer/fontkit/ot"
	"golang.org/x/text/unicode/bidi"
)

// Scripts tried if none of the requested scripts is supported by a font.
var defaultScripts = []ot.Tag{ot.T("DFLT"), ot.T("dflt"), ot.T("latn")}

// Processor is the part common to GSUB and GPOS processing: it selects a
// script and a language system, resolves features to lookups and applies
// lookups to the glyphs of a buffer.
type Processor struct {
	table     *ot.LayoutTable
	gdef      *ot.GDefTable
	coords    []float64 // normalized variation coordinates
	script    *ot.Script
	scriptTag ot.Tag
	langTag   ot.Tag
	features  map[ot.Tag][]uint16 // feature → lookup indices
	Direction bidi.Direction
	// state of a single layout operation
	buf         *Buffer
	iter        *GlyphIterator
	current     []ot.Tag // features of the lookup being applied
	depth       int
	applyLookup func(lookupType uint16, subtable any) bool
}

// lookupRef is a lookup scheduled for application, together with the
// features which requested it.
type lookupRef struct {
	index    uint16
	lookup   *ot.Lookup
	features []ot.Tag
}

func newProcessor(table *ot.LayoutTable, gdef *ot.GDefTable) *Processor {
	p := &Processor{table: table, gdef: gdef}
	p.SelectScript(nil, 0, bidi.LeftToRight)
	return p
}

// SetVariations sets the normalized variation coordinates used to resolve
// variation deltas of a variable font.
func (p *Processor) SetVariations(coords []float64) {
	p.coords = coords
}

// SelectScript selects the first of scripts which is present in the table,
// falling back to the default scripts, and the language system for lang.
// If lang is 0 or not supported, the default language system is used.
// It returns the tag of the selected script, or 0 if the table supports
// neither a requested nor a default script.
func (p *Processor) SelectScript(scripts []ot.Tag, lang ot.Tag, dir bidi.Direction) ot.Tag {
	p.Direction = dir
	p.script, p.scriptTag, p.langTag = nil, 0, 0
	p.features = map[ot.Tag][]uint16{}
	if p.table == nil {
		return 0
	}
	for _, candidates := range [][]ot.Tag{scripts, defaultScripts} {
		for _, tag := range candidates {
			if s := p.table.Script(tag); s != nil {
				p.script, p.scriptTag = s, tag
				break
			}
		}
		if p.script != nil {
			break
		}
	}
	if p.script == nil {
		return 0
	}
	langSys := p.script.LangSys(lang)
	if langSys != nil && langSys != p.script.Default {
		p.langTag = lang
	}
	if langSys == nil {
		tracer().Debugf("script '%s' has no default language system", p.scriptTag)
		return p.scriptTag
	}
	indices := langSys.FeatureIndices
	if langSys.RequiredFeature >= 0 {
		indices = append([]uint16{uint16(langSys.RequiredFeature)}, indices...)
	}
	for _, inx := range indices {
		if int(inx) >= len(p.table.Features) {
			tracer().Errorf("language system references feature %d of %d", inx, len(p.table.Features))
			continue
		}
		rec := p.table.Features[inx]
		p.features[rec.Tag] = append(p.features[rec.Tag], rec.Lookups...)
	}
	return p.scriptTag
}

// ScriptTag returns the tag of the selected script.
func (p *Processor) ScriptTag() ot.Tag {
	return p.scriptTag
}

// LanguageTag returns the tag of the selected language system, or 0 for the
// default language system.
func (p *Processor) LanguageTag() ot.Tag {
	return p.langTag
}

// Features returns the tags of the features available for the selected
// script and language, sorted.
func (p *Processor) Features() []ot.Tag {
	tags := make([]ot.Tag, 0, len(p.features))
	for tag := range p.features {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// HasFeature returns true if feature is available for the selected script and
// language.
func (p *Processor) HasFeature(feature ot.Tag) bool {
	_, ok := p.features[feature]
	return ok
}

// lookupsForFeatures collects the lookups of features, in lookup list order.
// A lookup requested by more than one feature is applied once, to glyphs
// which have any of these features enabled.
func (p *Processor) lookupsForFeatures(features []ot.Tag) []lookupRef {
	refs := map[uint16]*lookupRef{}
	for _, tag := range features {
		for _, inx := range p.features[tag] {
			if int(inx) >= len(p.table.Lookups) {
				tracer().Errorf("feature '%s' references lookup %d of %d", tag, inx, len(p.table.Lookups))
				continue
			}
			if ref, ok := refs[inx]; ok {
				ref.features = append(ref.features, tag)
				continue
			}
			refs[inx] = &lookupRef{index: inx, lookup: p.table.Lookups[inx], features: []ot.Tag{tag}}
		}
	}
	lookups := make([]lookupRef, 0, len(refs))
	for _, ref := range refs {
		lookups = append(lookups, *ref)
	}
	sort.Slice(lookups, func(i, j int) bool { return lookups[i].index < lookups[j].index })
	return lookups
}

// applyFeatures applies the lookups of features to the glyphs of buf.
func (p *Processor) applyFeatures(features []ot.Tag, buf *Buffer) {
	if p.table == nil || p.script == nil {
		return
	}
	p.applyLookups(p.lookupsForFeatures(features), buf)
}

func (p *Processor) applyLookups(lookups []lookupRef, buf *Buffer) {
	p.buf = buf
	p.iter = newGlyphIterator(buf, p.gdef)
	p.depth = 0
	for _, ref := range lookups {
		p.current = ref.features
		tracer().Debugf("%s lookup #%d type %d for %v", p.table.Tag, ref.index, ref.lookup.Type, ref.features)
		if p.table.Tag == ot.T("GSUB") && ref.lookup.Type == ot.GSubReverseChaining {
			p.applyReverse(ref.lookup)
			continue
		}
		p.iter.reset(ref.lookup.Flag, ref.lookup.MarkFilteringSet, 0)
		for p.iter.Index < len(buf.Glyphs) {
			g := p.iter.Cur()
			if p.iter.shouldIgnore(g) || !g.HasFeature(ref.features...) {
				p.iter.Index++
				continue
			}
			p.applySubtables(ref.lookup)
			p.iter.Next()
		}
	}
}

// applyReverse applies a lookup from the end of the buffer to its start.
func (p *Processor) applyReverse(lookup *ot.Lookup) {
	p.iter.reset(lookup.Flag, lookup.MarkFilteringSet, len(p.buf.Glyphs)-1)
	for p.iter.Index >= 0 {
		g := p.iter.Cur()
		if p.iter.shouldIgnore(g) || !g.HasFeature(p.current...) {
			p.iter.Index--
			continue
		}
		p.applySubtables(lookup)
		p.iter.Prev()
	}
}

// applySubtables applies the first subtable of lookup which matches at the
// current glyph.
func (p *Processor) applySubtables(lookup *ot.Lookup) bool {
	for _, st := range lookup.Subtables {
		if p.applyLookup(lookup.Type, st) {
			return true
		}
	}
	return false
}

// applyLookupList applies the lookups of a matched context rule. Sequence
// indices count glyphs from the current glyph, honoring the flags of the
// context lookup.
func (p *Processor) applyLookupList(records []ot.SequenceLookup) bool {
	if p.depth >= MaxContextDepth {
		tracer().Errorf("contextual lookups nested deeper than %d, skipping", MaxContextDepth)
		return false
	}
	p.depth++
	defer func() { p.depth-- }()
	saved := p.iter.save()
	for _, rec := range records {
		p.iter.restore(saved)
		p.iter.Increment(int(rec.SequenceIndex))
		if p.iter.Cur() == nil || int(rec.LookupIndex) >= len(p.table.Lookups) {
			continue
		}
		lookup := p.table.Lookups[rec.LookupIndex]
		p.iter.reset(lookup.Flag, lookup.MarkFilteringSet, p.iter.Index)
		p.applySubtables(lookup)
	}
	p.iter.restore(saved)
	return true
}

// variationDelta returns the adjustment of a VariationIndex table for the
// current variation coordinates. Device tables for fixed sizes do not apply,
// as layout is done in design units.
func (p *Processor) variationDelta(d *ot.Device) int32 {
	if !d.IsVariation() || p.gdef == nil || p.gdef.VarStore == nil || len(p.coords) == 0 {
		return 0
	}
	return int32(math.Round(p.gdef.VarStore.Delta(d.Outer, d.Inner, p.coords)))
}

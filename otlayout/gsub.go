package otlayout

import (
	"slices"

	"github.com/npillmayer/fontkit/ot"
)

// GSUBProcessor applies glyph substitutions of a font's GSUB table.
type GSUBProcessor struct {
	*Processor
	ligatureID int
}

// NewGSUBProcessor creates a processor for a GSUB table. gdef may be nil.
func NewGSUBProcessor(gsub *ot.LayoutTable, gdef *ot.GDefTable) *GSUBProcessor {
	p := &GSUBProcessor{Processor: newProcessor(gsub, gdef), ligatureID: 1}
	p.applyLookup = p.applyGSUB
	return p
}

// ApplyFeatures applies the substitutions of features to the glyphs of buf.
// Glyphs are replaced, inserted and deleted in place; buf must not carry
// positions yet.
func (p *GSUBProcessor) ApplyFeatures(features []ot.Tag, buf *Buffer) {
	p.applyFeatures(features, buf)
}

func (p *GSUBProcessor) applyGSUB(lookupType uint16, subtable any) bool {
	switch st := subtable.(type) {
	case *ot.SingleSubst:
		return gsubLookupType1(p, st)
	case *ot.MultipleSubst:
		return gsubLookupType2(p, st)
	case *ot.AlternateSubst:
		return gsubLookupType3(p, st)
	case *ot.LigatureSubst:
		return gsubLookupType4(p, st)
	case *ot.SequenceContext:
		return p.applyContext(st)
	case *ot.ReverseChainSubst:
		return gsubLookupType8(p, st)
	}
	tracer().Errorf("GSUB lookup type %d has unsupported subtable %T", lookupType, subtable)
	return false
}

// GSUB LookupType 1: Single Substitution Subtable
//
// Single substitution (SingleSubst) subtables tell a client to replace a single
// glyph with another glyph. Format 1 adds a delta to the glyph index, format 2
// lists a substitute per covered glyph.
func gsubLookupType1(p *GSUBProcessor, st *ot.SingleSubst) bool {
	cur := p.iter.Cur()
	sub, ok := st.Substitute(cur.ID)
	if !ok {
		return false
	}
	cur.SetID(p.gdef, sub)
	cur.Substituted = true
	return true
}

// GSUB LookupType 2: Multiple Substitution Subtable
//
// A Multiple Substitution (MultipleSubst) subtable replaces a single glyph with
// more than one glyph, as when multiple glyphs replace a single ligature. An
// empty sequence deletes the glyph.
func gsubLookupType2(p *GSUBProcessor, st *ot.MultipleSubst) bool {
	inx := st.Coverage.Index(p.iter.Cur().ID)
	if inx < 0 || inx >= len(st.Sequences) {
		return false
	}
	seq := st.Sequences[inx]
	if len(seq) == 0 {
		p.buf.Delete(p.iter.Index)
		p.iter.Index-- // the next glyph has moved to the current index
		return true
	}
	cur := p.iter.Cur()
	cur.SetID(p.gdef, seq[0])
	cur.LigatureComponent = 0
	cur.Substituted = true
	glyphs := make([]*GlyphInfo, len(seq)-1)
	for i, gid := range seq[1:] {
		g := NewGlyphInfo(p.gdef, gid, nil, cur.Features)
		g.ShaperInfo = cur.ShaperInfo
		g.IsLigated = cur.IsLigated
		g.LigatureComponent = i + 1
		g.Substituted = true
		g.IsMultiplied = true
		glyphs[i] = g
	}
	p.buf.Insert(p.iter.Index+1, glyphs...)
	p.iter.Index += len(glyphs)
	return true
}

// GSUB LookupType 3: Alternate Substitution Subtable
//
// An Alternate Substitution (AlternateSubst) subtable identifies any number of
// aesthetic alternatives from which a user can choose a glyph variant to replace
// the input glyph. Without user interaction, the first alternate is chosen.
func gsubLookupType3(p *GSUBProcessor, st *ot.AlternateSubst) bool {
	cur := p.iter.Cur()
	inx := st.Coverage.Index(cur.ID)
	if inx < 0 || inx >= len(st.Alternates) || len(st.Alternates[inx]) == 0 {
		return false
	}
	cur.SetID(p.gdef, st.Alternates[inx][0])
	cur.Substituted = true
	return true
}

// GSUB LookupType 4: Ligature Substitution Subtable
//
// A Ligature Substitution (LigatureSubst) subtable identifies ligature
// substitutions where a single glyph replaces multiple glyphs. Ligatures of a
// set are tried in order, the first one whose components all follow the
// current glyph wins.
//
// Marks skipped while matching stay in place. They remember the ligature id
// and the component they belong to, which mark-to-ligature positioning uses
// to select an anchor.
func gsubLookupType4(p *GSUBProcessor, st *ot.LigatureSubst) bool {
	cur := p.iter.Cur()
	inx := st.Coverage.Index(cur.ID)
	if inx < 0 || inx >= len(st.LigatureSets) {
		return false
	}
	for _, lig := range st.LigatureSets[inx] {
		var matched []int
		ok := p.match(1, len(lig.Components), func(i int, g *GlyphInfo) bool {
			return g.HasFeature(p.current...) && g.ID == lig.Components[i]
		}, &matched)
		if !ok {
			continue
		}
		p.formLigature(lig.Glyph, matched)
		return true
	}
	return false
}

func (p *GSUBProcessor) formLigature(gid ot.GlyphIndex, matched []int) {
	glyphs := p.buf.Glyphs
	cur := p.iter.Cur()
	codePoints := slices.Clone(cur.CodePoints)
	for _, m := range matched {
		codePoints = append(codePoints, glyphs[m].CodePoints...)
	}
	lig := NewGlyphInfo(p.gdef, gid, codePoints, cur.Features)
	lig.ShaperInfo = cur.ShaperInfo
	lig.IsLigated = true
	lig.Substituted = true
	isMarkLigature := cur.IsMark
	for _, m := range matched {
		isMarkLigature = isMarkLigature && glyphs[m].IsMark
	}
	if !isMarkLigature {
		lig.LigatureID = p.ligatureID
		p.ligatureID++
	}
	lastLigID := cur.LigatureID
	lastNumComps := len(cur.CodePoints)
	curComps := lastNumComps
	idx := p.iter.Index + 1
	// marks between components are assigned to the component they follow
	for _, m := range matched {
		if isMarkLigature {
			idx = m
		} else {
			for ; idx < m; idx++ {
				glyphs[idx].LigatureComponent = curComps - lastNumComps +
					min(max(glyphs[idx].LigatureComponent, 1), lastNumComps)
				glyphs[idx].LigatureID = lig.LigatureID
			}
		}
		lastLigID = glyphs[idx].LigatureID
		lastNumComps = len(glyphs[idx].CodePoints)
		curComps += lastNumComps
		idx++
	}
	// marks trailing a former ligature which has been absorbed
	if lastLigID != 0 && !isMarkLigature {
		for i := idx; i < len(glyphs) && glyphs[i].LigatureID == lastLigID; i++ {
			glyphs[i].LigatureComponent = curComps - lastNumComps +
				min(max(glyphs[i].LigatureComponent, 1), lastNumComps)
		}
	}
	for i := len(matched) - 1; i >= 0; i-- {
		p.buf.Delete(matched[i])
	}
	p.buf.Glyphs[p.iter.Index] = lig
}

// GSUB LookupType 8: Reverse Chaining Contextual Single Substitution Subtable
//
// Reverse Chaining Contextual Single Substitution (ReverseChainSingleSubst)
// describes single-glyph substitutions in context with an ability to look back
// and/or look ahead in the sequence of glyphs. The lookup is applied from the
// end of the glyph run to its start, so substitutions of later glyphs are
// visible as context for earlier ones.
func gsubLookupType8(p *GSUBProcessor, st *ot.ReverseChainSubst) bool {
	cur := p.iter.Cur()
	inx := st.Coverage.Index(cur.ID)
	if inx < 0 || inx >= len(st.Substitutes) {
		return false
	}
	if !p.matchBackward(len(st.Backtrack), coverageMatcher(st.Backtrack)) ||
		!p.match(1, len(st.Lookahead), coverageMatcher(st.Lookahead), nil) {
		return false
	}
	cur.SetID(p.gdef, st.Substitutes[inx])
	cur.Substituted = true
	return true
}

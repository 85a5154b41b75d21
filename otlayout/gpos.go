package otlayout

import (
	"github.com/npillmayer/fontkit/ot"
	"golang.org/x/text/unicode/bidi"
)

// GPOSProcessor applies glyph positioning of a font's GPOS table.
type GPOSProcessor struct {
	*Processor
}

// NewGPOSProcessor creates a processor for a GPOS table. gdef may be nil.
func NewGPOSProcessor(gpos *ot.LayoutTable, gdef *ot.GDefTable) *GPOSProcessor {
	p := &GPOSProcessor{Processor: newProcessor(gpos, gdef)}
	p.applyLookup = p.applyGPOS
	return p
}

// ApplyFeatures applies the positioning of features to the glyphs of buf.
// buf.Pos should hold the default advances of the glyphs; missing entries
// are zero.
//
// After all lookups have been applied, cursive attachments are resolved and
// then marks are moved relative to their bases. Cursive chains resolve
// first, as marks may attach to glyphs moved by cursive attachment.
func (p *GPOSProcessor) ApplyFeatures(features []ot.Tag, buf *Buffer) {
	for len(buf.Pos) < len(buf.Glyphs) {
		buf.Pos = append(buf.Pos, PosItem{})
	}
	p.applyFeatures(features, buf)
	for i := range buf.Glyphs {
		p.fixCursiveAttachment(i)
	}
	p.fixMarkAttachment()
}

func (p *GPOSProcessor) applyGPOS(lookupType uint16, subtable any) bool {
	switch st := subtable.(type) {
	case *ot.SinglePos:
		return gposLookupType1(p, st)
	case *ot.PairPosGlyphs:
		return gposLookupType2Fmt1(p, st)
	case *ot.PairPosClasses:
		return gposLookupType2Fmt2(p, st)
	case *ot.CursivePos:
		return gposLookupType3(p, st)
	case *ot.MarkBasePos:
		return gposLookupType4(p, st)
	case *ot.MarkLigPos:
		return gposLookupType5(p, st)
	case *ot.MarkMarkPos:
		return gposLookupType6(p, st)
	case *ot.SequenceContext:
		return p.applyContext(st)
	}
	tracer().Errorf("GPOS lookup type %d has unsupported subtable %T", lookupType, subtable)
	return false
}

// applyValue adds a value record to the position of glyph i.
func (p *GPOSProcessor) applyValue(i int, v ot.ValueRecord) {
	pos := &p.buf.Pos[i]
	pos.XAdvance += int32(v.XAdvance) + p.variationDelta(v.XAdvanceDevice)
	pos.YAdvance += int32(v.YAdvance) + p.variationDelta(v.YAdvanceDevice)
	pos.XOffset += int32(v.XPlacement) + p.variationDelta(v.XPlacementDevice)
	pos.YOffset += int32(v.YPlacement) + p.variationDelta(v.YPlacementDevice)
}

// anchor returns the coordinates of a, including variation deltas.
func (p *GPOSProcessor) anchor(a *ot.Anchor) (int32, int32) {
	return int32(a.X) + p.variationDelta(a.XDevice), int32(a.Y) + p.variationDelta(a.YDevice)
}

// GPOS LookupType 1: Single Adjustment Positioning Subtable
//
// A single adjustment positioning subtable (SinglePos) is used to adjust the
// placement or advance of a single glyph, such as a subscript or superscript.
func gposLookupType1(p *GPOSProcessor, st *ot.SinglePos) bool {
	inx := st.Coverage.Index(p.iter.Cur().ID)
	if inx < 0 {
		return false
	}
	v, ok := st.Value(inx)
	if !ok {
		return false
	}
	p.applyValue(p.iter.Index, v)
	return true
}

// GPOS LookupType 2, Format 1: Pair Adjustment Positioning Subtable
//
// Adjusts the positions of a glyph and the glyph following it, for explicitly
// listed pairs of glyphs.
func gposLookupType2Fmt1(p *GPOSProcessor, st *ot.PairPosGlyphs) bool {
	inx := st.Coverage.Index(p.iter.Cur().ID)
	if inx < 0 || inx >= len(st.PairSets) {
		return false
	}
	next, nextIndex := p.iter.Peek(1), p.iter.PeekIndex(1)
	if next == nil {
		return false
	}
	for _, pair := range st.PairSets[inx] {
		if pair.Second == next.ID {
			p.applyValue(p.iter.Index, pair.Value1)
			p.applyValue(nextIndex, pair.Value2)
			return true
		}
	}
	return false
}

// GPOS LookupType 2, Format 2: Pair Adjustment Positioning Subtable
//
// Adjusts the positions of a glyph and the glyph following it, by the classes
// of both glyphs.
func gposLookupType2Fmt2(p *GPOSProcessor, st *ot.PairPosClasses) bool {
	cur := p.iter.Cur()
	if st.Coverage.Index(cur.ID) < 0 {
		return false
	}
	next, nextIndex := p.iter.Peek(1), p.iter.PeekIndex(1)
	if next == nil {
		return false
	}
	c1, c2 := int(st.ClassDef1.Class(cur.ID)), int(st.ClassDef2.Class(next.ID))
	if c1 >= len(st.Matrix) || c2 >= len(st.Matrix[c1]) {
		return false
	}
	rec := st.Matrix[c1][c2]
	p.applyValue(p.iter.Index, rec.Value1)
	p.applyValue(nextIndex, rec.Value2)
	return true
}

// GPOS LookupType 3: Cursive Attachment Positioning Subtable
//
// Cursive attachment connects the exit anchor of a glyph to the entry anchor
// of the glyph following it. The advance of the glyph ends at its exit point,
// the following glyph starts at its entry point. The vertical displacement is
// recorded on the attached glyph and resolved by fixCursiveAttachment, as
// chains of attachments accumulate.
func gposLookupType3(p *GPOSProcessor, st *ot.CursivePos) bool {
	cur := p.iter.Cur()
	inx := st.Coverage.Index(cur.ID)
	if inx < 0 || inx >= len(st.Entries) || st.Entries[inx].Exit == nil {
		return false
	}
	next, nextIndex := p.iter.Peek(1), p.iter.PeekIndex(1)
	if next == nil {
		return false
	}
	nextInx := st.Coverage.Index(next.ID)
	if nextInx < 0 || nextInx >= len(st.Entries) || st.Entries[nextInx].Entry == nil {
		return false
	}
	exitX, exitY := p.anchor(st.Entries[inx].Exit)
	entryX, entryY := p.anchor(st.Entries[nextInx].Entry)
	curPos, nextPos := &p.buf.Pos[p.iter.Index], &p.buf.Pos[nextIndex]
	if p.Direction == bidi.RightToLeft {
		d := exitX + curPos.XOffset
		curPos.XAdvance -= d
		curPos.XOffset -= d
		nextPos.XAdvance = entryX + nextPos.XOffset
	} else {
		curPos.XAdvance = exitX + curPos.XOffset
		d := entryX + nextPos.XOffset
		nextPos.XAdvance -= d
		nextPos.XOffset -= d
	}
	if p.iter.flag&ot.RightToLeft != 0 {
		cur.CursiveAttachment = nextIndex
		curPos.YOffset = entryY - exitY
	} else {
		next.CursiveAttachment = p.iter.Index
		nextPos.YOffset = exitY - entryY // the attached glyph carries the offset
	}
	return true
}

// GPOS LookupType 4: Mark-to-Base Attachment Positioning Subtable
//
// The MarkToBase attachment (MarkBasePos) subtable is used to position
// combining mark glyphs with respect to base glyphs. The base is the nearest
// preceding glyph which is neither a mark nor a component of a ligature.
func gposLookupType4(p *GPOSProcessor, st *ot.MarkBasePos) bool {
	markInx := st.MarkCoverage.Index(p.iter.Cur().ID)
	if markInx < 0 || markInx >= len(st.Marks) {
		return false
	}
	baseIndex := p.iter.Index - 1
	for baseIndex >= 0 && (p.buf.Glyphs[baseIndex].IsMark || p.buf.Glyphs[baseIndex].LigatureComponent > 0) {
		baseIndex--
	}
	if baseIndex < 0 {
		return false
	}
	baseInx := st.BaseCoverage.Index(p.buf.Glyphs[baseIndex].ID)
	if baseInx < 0 || baseInx >= len(st.Bases) {
		return false
	}
	mark := st.Marks[markInx]
	if int(mark.Class) >= len(st.Bases[baseInx]) {
		return false
	}
	return p.applyAnchor(mark, st.Bases[baseInx][mark.Class], baseIndex)
}

// GPOS LookupType 5: Mark-to-Ligature Attachment Positioning Subtable
//
// The MarkToLigature attachment (MarkLigPos) subtable is used to position
// combining mark glyphs with respect to ligature base glyphs. A ligature has
// anchors per component; a mark which has been attached to a component while
// forming the ligature uses that component's anchor, other marks use the
// anchor of the last component.
func gposLookupType5(p *GPOSProcessor, st *ot.MarkLigPos) bool {
	markGlyph := p.iter.Cur()
	markInx := st.MarkCoverage.Index(markGlyph.ID)
	if markInx < 0 || markInx >= len(st.Marks) {
		return false
	}
	baseIndex := p.iter.Index - 1
	for baseIndex >= 0 && p.buf.Glyphs[baseIndex].IsMark {
		baseIndex--
	}
	if baseIndex < 0 {
		return false
	}
	ligGlyph := p.buf.Glyphs[baseIndex]
	ligInx := st.LigatureCoverage.Index(ligGlyph.ID)
	if ligInx < 0 || ligInx >= len(st.Ligatures) || len(st.Ligatures[ligInx]) == 0 {
		return false
	}
	components := st.Ligatures[ligInx]
	compIndex := len(ligGlyph.CodePoints) - 1
	if ligGlyph.LigatureID != 0 && ligGlyph.LigatureID == markGlyph.LigatureID && markGlyph.LigatureComponent > 0 {
		compIndex = min(markGlyph.LigatureComponent, len(ligGlyph.CodePoints)) - 1
	}
	compIndex = min(max(compIndex, 0), len(components)-1)
	mark := st.Marks[markInx]
	if int(mark.Class) >= len(components[compIndex]) {
		return false
	}
	return p.applyAnchor(mark, components[compIndex][mark.Class], baseIndex)
}

// GPOS LookupType 6: Mark-to-Mark Attachment Positioning Subtable
//
// The MarkToMark attachment (MarkMarkPos) subtable attaches a mark to the
// preceding mark. Both marks have to belong to the same ligature component,
// or not belong to a ligature at all.
func gposLookupType6(p *GPOSProcessor, st *ot.MarkMarkPos) bool {
	cur := p.iter.Cur()
	markInx := st.MarkCoverage.Index(cur.ID)
	if markInx < 0 || markInx >= len(st.Marks) {
		return false
	}
	prevIndex := p.iter.PeekIndex(-1)
	prev := p.iter.Peek(-1)
	if prev == nil || !prev.IsMark {
		return false
	}
	good := false
	if cur.LigatureID == prev.LigatureID {
		good = cur.LigatureID == 0 || cur.LigatureComponent == prev.LigatureComponent
	} else {
		// one of the marks sits on a ligature as a whole
		good = (cur.LigatureID != 0 && cur.LigatureComponent == 0) ||
			(prev.LigatureID != 0 && prev.LigatureComponent == 0)
	}
	if !good {
		return false
	}
	baseInx := st.BaseCoverage.Index(prev.ID)
	if baseInx < 0 || baseInx >= len(st.Bases) {
		return false
	}
	mark := st.Marks[markInx]
	if int(mark.Class) >= len(st.Bases[baseInx]) {
		return false
	}
	return p.applyAnchor(mark, st.Bases[baseInx][mark.Class], prevIndex)
}

// applyAnchor aligns the anchor of the current mark glyph with a base anchor.
// The offset is relative to the base's pen position until fixMarkAttachment
// has run.
func (p *GPOSProcessor) applyAnchor(mark ot.MarkRecord, base *ot.Anchor, baseIndex int) bool {
	if base == nil || mark.Anchor == nil {
		return false
	}
	bx, by := p.anchor(base)
	mx, my := p.anchor(mark.Anchor)
	pos := &p.buf.Pos[p.iter.Index]
	pos.XOffset = bx - mx
	pos.YOffset = by - my
	p.iter.Cur().MarkAttachment = baseIndex
	return true
}

// fixCursiveAttachment resolves the chain of cursive attachments starting at
// glyph i. Every glyph is resolved once, which bounds the recursion by the
// length of the run.
func (p *GPOSProcessor) fixCursiveAttachment(i int) {
	g := p.buf.Glyphs[i]
	j := g.CursiveAttachment
	if j < 0 || j >= len(p.buf.Glyphs) {
		return
	}
	g.CursiveAttachment = -1
	p.fixCursiveAttachment(j)
	p.buf.Pos[i].YOffset += p.buf.Pos[j].YOffset
}

// fixMarkAttachment converts mark offsets from being relative to the base to
// being relative to the mark's pen position, by stepping back over the
// advances of the glyphs between base and mark.
func (p *GPOSProcessor) fixMarkAttachment() {
	for i, g := range p.buf.Glyphs {
		j := g.MarkAttachment
		if j < 0 || j >= len(p.buf.Glyphs) {
			continue
		}
		g.MarkAttachment = -1
		pos := &p.buf.Pos[i]
		pos.XOffset += p.buf.Pos[j].XOffset
		pos.YOffset += p.buf.Pos[j].YOffset
		if p.Direction == bidi.RightToLeft {
			for k := j + 1; k <= i; k++ {
				pos.XOffset += p.buf.Pos[k].XAdvance
				pos.YOffset += p.buf.Pos[k].YAdvance
			}
		} else {
			for k := j; k < i; k++ {
				pos.XOffset -= p.buf.Pos[k].XAdvance
				pos.YOffset -= p.buf.Pos[k].YAdvance
			}
		}
	}
}

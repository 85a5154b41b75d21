package otlayout

import "github.com/npillmayer/fontkit/ot"

// GlyphIterator walks the glyphs of a buffer, skipping glyphs which the flags
// of the current lookup tell it to ignore.
type GlyphIterator struct {
	buf     *Buffer
	gdef    *ot.GDefTable
	flag    ot.LookupFlag
	markSet uint16
	Index   int
}

type iteratorState struct {
	flag    ot.LookupFlag
	markSet uint16
	index   int
}

func newGlyphIterator(buf *Buffer, gdef *ot.GDefTable) *GlyphIterator {
	return &GlyphIterator{buf: buf, gdef: gdef}
}

// reset sets the lookup flags and moves the iterator to index, without skipping.
func (it *GlyphIterator) reset(flag ot.LookupFlag, markSet uint16, index int) {
	it.flag, it.markSet, it.Index = flag, markSet, index
}

func (it *GlyphIterator) save() iteratorState {
	return iteratorState{flag: it.flag, markSet: it.markSet, index: it.Index}
}

func (it *GlyphIterator) restore(s iteratorState) {
	it.reset(s.flag, s.markSet, s.index)
}

// Cur returns the current glyph, or nil if the iterator is out of range.
func (it *GlyphIterator) Cur() *GlyphInfo {
	if it.Index < 0 || it.Index >= len(it.buf.Glyphs) {
		return nil
	}
	return it.buf.Glyphs[it.Index]
}

// shouldIgnore applies the lookup flags to g.
func (it *GlyphIterator) shouldIgnore(g *GlyphInfo) bool {
	switch {
	case it.flag&ot.IgnoreMarks != 0 && g.IsMark:
		return true
	case it.flag&ot.IgnoreBaseGlyphs != 0 && g.IsBase:
		return true
	case it.flag&ot.IgnoreLigatures != 0 && g.IsLigature:
		return true
	}
	if !g.IsMark {
		return false
	}
	if it.flag&ot.UseMarkFilteringSet != 0 {
		return !it.gdef.InMarkGlyphSet(it.markSet, g.ID)
	}
	if t := uint16(it.flag&ot.MarkAttachmentTypeMask) >> 8; t != 0 {
		return g.MarkAttachType != t
	}
	return false
}

func (it *GlyphIterator) move(dir int) *GlyphInfo {
	it.Index += dir
	for it.Index >= 0 && it.Index < len(it.buf.Glyphs) && it.shouldIgnore(it.buf.Glyphs[it.Index]) {
		it.Index += dir
	}
	return it.Cur()
}

// Next moves to the next glyph which is not ignored.
func (it *GlyphIterator) Next() *GlyphInfo {
	return it.move(+1)
}

// Prev moves to the previous glyph which is not ignored.
func (it *GlyphIterator) Prev() *GlyphInfo {
	return it.move(-1)
}

// Increment moves count non-ignored glyphs forward, or backward for a
// negative count.
func (it *GlyphIterator) Increment(count int) *GlyphInfo {
	dir := 1
	if count < 0 {
		dir, count = -1, -count
	}
	for ; count > 0; count-- {
		it.move(dir)
	}
	return it.Cur()
}

// Peek returns the glyph count steps away without moving the iterator.
func (it *GlyphIterator) Peek(count int) *GlyphInfo {
	inx := it.Index
	g := it.Increment(count)
	it.Index = inx
	return g
}

// PeekIndex returns the index of the glyph count steps away without moving
// the iterator.
func (it *GlyphIterator) PeekIndex(count int) int {
	inx := it.Index
	it.Increment(count)
	res := it.Index
	it.Index = inx
	return res
}

package otlayout

import (
	"unicode"

	"github.com/npillmayer/fontkit/ot"
)

// GlyphInfo is a glyph of a run under layout.
//
// Attachment and ligature fields are transient state of a single layout
// operation; they are meaningless once the run has been positioned.
type GlyphInfo struct {
	ID         ot.GlyphIndex
	CodePoints []rune
	Features   map[ot.Tag]bool // features enabled for this glyph
	// classification, from GDEF if present, else from the code points
	IsMark         bool
	IsBase         bool
	IsLigature     bool
	MarkAttachType uint16
	// ligature bookkeeping
	LigatureID        int // 0 if the glyph is not part of a ligature
	LigatureComponent int // 1-based component of the ligature, 0 if none
	IsLigated         bool
	Substituted       bool
	IsMultiplied      bool
	// attachments are run indices, -1 if not attached
	CursiveAttachment int
	MarkAttachment    int
	// ShaperInfo is reserved for script shapers.
	ShaperInfo any
}

// NewGlyphInfo creates a glyph record for glyph id, representing codePoints.
// gdef may be nil.
func NewGlyphInfo(gdef *ot.GDefTable, id ot.GlyphIndex, codePoints []rune, features map[ot.Tag]bool) *GlyphInfo {
	if features == nil {
		features = map[ot.Tag]bool{}
	}
	g := &GlyphInfo{
		CodePoints:        codePoints,
		Features:          features,
		CursiveAttachment: -1,
		MarkAttachment:    -1,
	}
	g.SetID(gdef, id)
	return g
}

// SetID changes the glyph index of g and reclassifies it.
func (g *GlyphInfo) SetID(gdef *ot.GDefTable, id ot.GlyphIndex) {
	g.ID = id
	g.IsMark, g.IsBase, g.IsLigature, g.MarkAttachType = false, false, false, 0
	if gdef != nil && gdef.GlyphClasses != nil {
		switch gdef.GlyphClass(id) {
		case ot.GlyphClassBase:
			g.IsBase = true
		case ot.GlyphClassLigature:
			g.IsLigature = true
		case ot.GlyphClassMark:
			g.IsMark = true
		}
		if gdef.MarkAttachClass != nil {
			g.MarkAttachType = gdef.MarkAttachClass.Class(id)
		}
		return
	}
	g.IsMark = len(g.CodePoints) > 0
	for _, r := range g.CodePoints {
		if !unicode.In(r, unicode.Mn, unicode.Me, unicode.Mc) {
			g.IsMark = false
			break
		}
	}
	g.IsLigature = len(g.CodePoints) > 1
	g.IsBase = !g.IsMark && !g.IsLigature
}

// HasFeature returns true if any of tags is enabled for g.
func (g *GlyphInfo) HasFeature(tags ...ot.Tag) bool {
	for _, t := range tags {
		if g.Features[t] {
			return true
		}
	}
	return false
}

// PosItem is the position of a glyph, in font design units. Offsets displace
// the glyph from the pen position, advances move the pen.
type PosItem struct {
	XAdvance int32
	YAdvance int32
	XOffset  int32
	YOffset  int32
}

// Buffer holds the glyphs of a run during layout. Pos is index-aligned to
// Glyphs and is nil until positioning starts; substitutions must not run once
// positions exist.
type Buffer struct {
	Glyphs []*GlyphInfo
	Pos    []PosItem
}

// Len returns the number of glyphs in the buffer.
func (b *Buffer) Len() int {
	return len(b.Glyphs)
}

// IDs returns the glyph indices of the buffer.
func (b *Buffer) IDs() []ot.GlyphIndex {
	ids := make([]ot.GlyphIndex, len(b.Glyphs))
	for i, g := range b.Glyphs {
		ids[i] = g.ID
	}
	return ids
}

// Replace replaces the range [i:j) with glyphs.
func (b *Buffer) Replace(i, j int, glyphs ...*GlyphInfo) {
	out := make([]*GlyphInfo, 0, len(b.Glyphs)-(j-i)+len(glyphs))
	out = append(out, b.Glyphs[:i]...)
	out = append(out, glyphs...)
	b.Glyphs = append(out, b.Glyphs[j:]...)
}

// Insert inserts glyphs before index i.
func (b *Buffer) Insert(i int, glyphs ...*GlyphInfo) {
	b.Replace(i, i, glyphs...)
}

// Delete removes glyph i.
func (b *Buffer) Delete(i int) {
	b.Glyphs = append(b.Glyphs[:i], b.Glyphs[i+1:]...)
}

// Reverse reverses the order of glyphs and positions.
func (b *Buffer) Reverse() {
	for i, j := 0, len(b.Glyphs)-1; i < j; i, j = i+1, j-1 {
		b.Glyphs[i], b.Glyphs[j] = b.Glyphs[j], b.Glyphs[i]
	}
	for i, j := 0, len(b.Pos)-1; i < j; i, j = i+1, j-1 {
		b.Pos[i], b.Pos[j] = b.Pos[j], b.Pos[i]
	}
}

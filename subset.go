package fontkit

import (
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/ttf"
)

// Subset collects the glyphs of a font which are used in a document and
// encodes a font program containing only those glyphs.
//
// Glyph 0 (.notdef) is always part of a subset, with subset id 0. Further
// glyphs get subset ids in the order they are included.
type Subset struct {
	font   *Font
	glyphs []ot.GlyphIndex // subset id → glyph of the font
	index  map[ot.GlyphIndex]uint16
}

// CreateSubset starts a new subset of the font.
func (f *Font) CreateSubset() *Subset {
	s := &Subset{font: f, index: make(map[ot.GlyphIndex]uint16)}
	s.IncludeGlyph(0)
	return s
}

// IncludeGlyph adds glyph gid of the font to the subset, if it is not
// contained already, and returns its subset id.
func (s *Subset) IncludeGlyph(gid ot.GlyphIndex) uint16 {
	if id, ok := s.index[gid]; ok {
		return id
	}
	id := uint16(len(s.glyphs))
	s.index[gid] = id
	s.glyphs = append(s.glyphs, gid)
	return id
}

// Glyphs returns the glyphs of the font in subset order: the glyph at
// position i has subset id i. After Encode, TrueType subsets also list the
// components of composite glyphs.
func (s *Subset) Glyphs() []ot.GlyphIndex {
	return s.glyphs
}

// Font returns the font the subset is taken from.
func (s *Subset) Font() *Font {
	return s.font
}

// IsCFF returns true if Encode produces a bare CID-keyed CFF font program,
// false for a TrueType font file.
func (s *Subset) IsCFF() bool {
	return s.font.OT.IsCFF()
}

// Encode creates the font program of the subset: a CID-keyed CFF font for
// fonts with CFF outlines, a TrueType font file otherwise.
func (s *Subset) Encode() ([]byte, error) {
	if s.IsCFF() {
		cf, err := s.font.cffFont()
		if err != nil {
			return nil, err
		}
		data, err := cf.Subset(s.glyphs)
		if err != nil {
			return nil, err
		}
		tracer().Infof("encoded CFF subset of %s with %d glyphs", s.font.PostScriptName(), len(s.glyphs))
		return data, nil
	}
	sub, err := ttf.NewSubset(s.font.OT, s.glyphs)
	if err != nil {
		return nil, err
	}
	for _, gid := range sub.Glyphs[len(s.glyphs):] {
		s.IncludeGlyph(gid) // components of composite glyphs
	}
	return sub.Data, nil
}

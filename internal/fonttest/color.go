package fonttest

import "image/color"

// ColorGlyph is a base glyph of table COLR with its layers, given as
// (glyph, palette index) pairs.
type ColorGlyph struct {
	Glyph  uint16
	Layers [][2]uint16
}

// COLR builds a version 0 color table. Base glyphs must be sorted.
func COLR(glyphs ...ColorGlyph) []byte {
	bases, layers := NewBuf(), NewBuf()
	n := 0
	for _, g := range glyphs {
		bases.U16(g.Glyph, uint16(n), uint16(len(g.Layers)))
		for _, l := range g.Layers {
			layers.U16(l[0], l[1])
		}
		n += len(g.Layers)
	}
	w := NewBuf().U16(0, uint16(len(glyphs)))
	w.U32(14, uint32(14+bases.Len()))
	w.U16(uint16(n))
	return w.Bytes(bases.Data()).Bytes(layers.Data()).Data()
}

// CPAL builds a version 0 palette table. All palettes must have the same
// number of entries.
func CPAL(palettes ...[]color.RGBA) []byte {
	entries := 0
	if len(palettes) > 0 {
		entries = len(palettes[0])
	}
	w := NewBuf().U16(0, uint16(entries), uint16(len(palettes)), uint16(entries*len(palettes)))
	w.U32(uint32(12 + 2*len(palettes)))
	for i := range palettes {
		w.U16(uint16(i * entries))
	}
	for _, p := range palettes {
		for _, c := range p {
			w.U8(c.B, c.G, c.R, c.A)
		}
	}
	return w.Data()
}

// Bitmap is a glyph image of an sbix strike.
type Bitmap struct {
	OriginX, OriginY int16
	Type             string
	Data             []byte
}

// Strike is an sbix strike. Glyphs without an entry have no image.
type Strike struct {
	PPEM   uint16
	Images map[uint16]Bitmap
}

// SBix builds an sbix table for numGlyphs glyphs.
func SBix(numGlyphs int, strikes ...Strike) []byte {
	var bodies [][]byte
	for _, s := range strikes {
		w := NewBuf().U16(s.PPEM, 72)
		data := NewBuf()
		offset := 4 + 4*(numGlyphs+1)
		for g := 0; g <= numGlyphs; g++ {
			w.U32(uint32(offset + data.Len()))
			if img, ok := s.Images[uint16(g)]; ok && g < numGlyphs {
				data.I16(img.OriginX, img.OriginY).Tag(img.Type).Bytes(img.Data)
			}
		}
		bodies = append(bodies, w.Bytes(data.Data()).Data())
	}
	w := NewBuf().U16(1, 1).U32(uint32(len(strikes)))
	offset := 8 + 4*len(strikes)
	for _, b := range bodies {
		w.U32(uint32(offset))
		offset += len(b)
	}
	for _, b := range bodies {
		w.Bytes(b)
	}
	return w.Data()
}

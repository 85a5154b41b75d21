package ot

import (
	"fmt"
	"image/color"
	"sort"
)

// --- COLR ------------------------------------------------------------------

// ColorLayer is a layer of a color glyph: an outline glyph painted with a
// palette entry.
type ColorLayer struct {
	Glyph        GlyphIndex
	PaletteIndex uint16 // 0xffff selects the text foreground color
}

// ForegroundColor is the palette index which selects the text color.
const ForegroundColor = 0xffff

type colorBase struct {
	glyph           GlyphIndex
	firstLayer, num uint16
}

// COLRTable is a decoded version 0 color table. Layers of version 1 paint
// graphs are not supported.
type COLRTable struct {
	Version uint16
	bases   []colorBase // sorted by glyph
	layers  []ColorLayer
}

// Layers returns the layers of a color glyph, bottom-most first, or nil if
// gid is not a color glyph.
func (t *COLRTable) Layers(gid GlyphIndex) []ColorLayer {
	if t == nil {
		return nil
	}
	i := sort.Search(len(t.bases), func(i int) bool { return t.bases[i].glyph >= gid })
	if i == len(t.bases) || t.bases[i].glyph != gid {
		return nil
	}
	b := t.bases[i]
	from, to := int(b.firstLayer), int(b.firstLayer)+int(b.num)
	if to > len(t.layers) {
		return nil
	}
	return t.layers[from:to]
}

// BaseGlyphs returns all color glyphs, sorted ascending.
func (t *COLRTable) BaseGlyphs() []GlyphIndex {
	if t == nil {
		return nil
	}
	glyphs := make([]GlyphIndex, len(t.bases))
	for i, b := range t.bases {
		glyphs[i] = b.glyph
	}
	return glyphs
}

func parseCOLR(c *Cursor) (*COLRTable, error) {
	c.Section("header")
	t := &COLRTable{Version: c.U16()}
	numBases := int(c.U16())
	baseOffset := int(c.U32())
	layerOffset := int(c.U32())
	numLayers := int(c.U16())
	if c.Err() != nil {
		return nil, c.Err()
	}
	bc := c.At(baseOffset).Section("base glyph records")
	if !bc.checkCount(numBases, 6) {
		return nil, bc.Err()
	}
	t.bases = make([]colorBase, numBases)
	for i := range t.bases {
		t.bases[i] = colorBase{glyph: bc.Glyph(), firstLayer: bc.U16(), num: bc.U16()}
	}
	lc := c.At(layerOffset).Section("layer records")
	if !lc.checkCount(numLayers, 4) {
		return nil, lc.Err()
	}
	t.layers = make([]ColorLayer, numLayers)
	for i := range t.layers {
		t.layers[i] = ColorLayer{Glyph: lc.Glyph(), PaletteIndex: lc.U16()}
	}
	if err := bc.Err(); err != nil {
		return nil, err
	}
	if err := lc.Err(); err != nil {
		return nil, err
	}
	sort.Slice(t.bases, func(i, j int) bool { return t.bases[i].glyph < t.bases[j].glyph })
	return t, nil
}

// COLR returns the font's color table, or nil if the font does not contain one.
func (otf *Font) COLR() (*COLRTable, error) {
	return otf.colr.Get(func() (*COLRTable, error) {
		c := otf.cursor(T("COLR"))
		if c == nil {
			return nil, nil
		}
		return parseCOLR(c)
	})
}

// --- CPAL ------------------------------------------------------------------

// CPALTable holds the color palettes of a font.
type CPALTable struct {
	Palettes [][]color.RGBA
}

// Color returns entry index of a palette.
func (t *CPALTable) Color(palette int, index uint16) (color.RGBA, bool) {
	if t == nil || palette < 0 || palette >= len(t.Palettes) || int(index) >= len(t.Palettes[palette]) {
		return color.RGBA{}, false
	}
	return t.Palettes[palette][index], true
}

func parseCPAL(c *Cursor) (*CPALTable, error) {
	c.Section("header")
	c.Skip(2) // version; version 1 additions are not used
	numEntries := int(c.U16())
	numPalettes := int(c.U16())
	numRecords := int(c.U16())
	records := c.At(int(c.U32())).Section("color records")
	firsts := c.U16s(numPalettes)
	if c.Err() != nil {
		return nil, c.Err()
	}
	if !records.checkCount(numRecords, 4) {
		return nil, records.Err()
	}
	colors := make([]color.RGBA, numRecords)
	for i := range colors {
		b := records.Bytes(4) // BGRA
		if b == nil {
			return nil, records.Err()
		}
		colors[i] = color.RGBA{R: b[2], G: b[1], B: b[0], A: b[3]}
	}
	t := &CPALTable{Palettes: make([][]color.RGBA, numPalettes)}
	for i, first := range firsts {
		if int(first)+numEntries > numRecords {
			return nil, FormatError(T("CPAL"), "palettes", "palette %d exceeds color records", i)
		}
		t.Palettes[i] = colors[first : int(first)+numEntries]
	}
	return t, nil
}

// CPAL returns the font's color palettes, or nil if the font does not contain them.
func (otf *Font) CPAL() (*CPALTable, error) {
	return otf.cpal.Get(func() (*CPALTable, error) {
		c := otf.cursor(T("CPAL"))
		if c == nil {
			return nil, nil
		}
		return parseCPAL(c)
	})
}

// --- sbix ------------------------------------------------------------------

// SBixTable holds the bitmap strikes of Apple's standard bitmap graphics table.
type SBixTable struct {
	Version uint16
	Flags   uint16        // bit 1: draw outlines in addition to bitmaps
	Strikes []*SBixStrike // sorted by ppem, ascending
}

// SBixStrike is a set of glyph images for one ppem size.
type SBixStrike struct {
	PPEM, PPI uint16
	offsets   []uint32
	data      *Cursor
}

// BitmapGlyph is a glyph image of a strike.
type BitmapGlyph struct {
	OriginX, OriginY int16
	Type             Tag // 'png ', 'jpg ', 'tiff' etc.
	Data             []byte
}

// Strike returns the strike best suited to render at size ppem: the smallest
// strike not smaller than size, else the largest one.
func (t *SBixTable) Strike(size float64) *SBixStrike {
	if t == nil || len(t.Strikes) == 0 {
		return nil
	}
	for _, s := range t.Strikes {
		if float64(s.PPEM) >= size {
			return s
		}
	}
	return t.Strikes[len(t.Strikes)-1]
}

// Glyph returns the image of gid, or nil if the strike has none.
// Images of type 'dupe' are resolved to the glyph they reference.
func (s *SBixStrike) Glyph(gid GlyphIndex) (*BitmapGlyph, error) {
	for range 2 {
		if s == nil || int(gid)+1 >= len(s.offsets) {
			return nil, nil
		}
		from, to := int(s.offsets[gid]), int(s.offsets[gid+1])
		if to <= from {
			return nil, nil
		}
		c := s.data.Sub(from, to-from).Section(fmt.Sprintf("glyph %d", gid))
		img := &BitmapGlyph{OriginX: c.I16(), OriginY: c.I16(), Type: c.Tag()}
		img.Data = c.Bytes(c.Remaining())
		if err := c.Err(); err != nil {
			return nil, err
		}
		if img.Type != T("dupe") {
			return img, nil
		}
		if len(img.Data) < 2 {
			return nil, FormatError(T("sbix"), "dupe", "glyph %d: missing reference", gid)
		}
		gid = GlyphIndex(u16(img.Data))
	}
	return nil, FormatError(T("sbix"), "dupe", "glyph %d: chained duplicates", gid)
}

func parseSBix(c *Cursor, numGlyphs int) (*SBixTable, error) {
	c.Section("header")
	t := &SBixTable{Version: c.U16(), Flags: c.U16()}
	n := int(c.U32())
	offsets := c.U32s(n)
	if c.Err() != nil {
		return nil, c.Err()
	}
	for i, off := range offsets {
		sc := c.At(int(off)).Section(fmt.Sprintf("strike %d", i))
		s := &SBixStrike{PPEM: sc.U16(), PPI: sc.U16(), data: sc}
		s.offsets = sc.U32s(numGlyphs + 1)
		if err := sc.Err(); err != nil {
			return nil, err
		}
		t.Strikes = append(t.Strikes, s)
	}
	sort.SliceStable(t.Strikes, func(i, j int) bool { return t.Strikes[i].PPEM < t.Strikes[j].PPEM })
	return t, nil
}

// SBix returns the font's bitmap strikes, or nil if the font does not contain them.
func (otf *Font) SBix() (*SBixTable, error) {
	return otf.sbix.Get(func() (*SBixTable, error) {
		c := otf.cursor(T("sbix"))
		if c == nil {
			return nil, nil
		}
		return parseSBix(c, otf.NumGlyphs())
	})
}

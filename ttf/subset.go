package ttf

import (
	"encoding/binary"
	"fmt"

	"github.com/npillmayer/fontkit/ot"
)

// Tables copied unchanged into a subset, if present.
var hintingTables = []ot.Tag{ot.T("cvt "), ot.T("fpgm"), ot.T("prep")}

// Subset is a TrueType font reduced to a set of glyphs.
type Subset struct {
	// Glyphs maps subset glyph ids to glyph ids of the source font. Glyph 0 is
	// always .notdef; components of composite glyphs follow the requested glyphs.
	Glyphs []ot.GlyphIndex
	Data   []byte // the subset font file
}

// NewSubset creates a TrueType font containing the given glyphs of f, in the
// order given (after .notdef). Components of composite glyphs are included
// transitively and composite records are rewritten to refer to the subset's
// glyph ids.
//
// The subset contains tables head, hhea, maxp, hmtx, loca, glyf, post
// (version 3, without glyph names) and the hinting tables cvt, fpgm and prep.
func NewSubset(f *ot.Font, glyphs []ot.GlyphIndex) (*Subset, error) {
	outlines, err := NewOutlines(f)
	if err != nil {
		return nil, err
	}
	hhea, err := f.HHea()
	if err != nil {
		return nil, err
	}
	hmtx, err := f.HMtx()
	if err != nil {
		return nil, err
	}
	if hhea == nil || hmtx == nil {
		return nil, ot.FormatError(ot.T("hmtx"), "directory", "font has no horizontal metrics")
	}
	s := &Subset{}
	index := make(map[ot.GlyphIndex]int)
	include := func(gid ot.GlyphIndex) int {
		if i, ok := index[gid]; ok {
			return i
		}
		index[gid] = len(s.Glyphs)
		s.Glyphs = append(s.Glyphs, gid)
		return len(s.Glyphs) - 1
	}
	include(0)
	for _, gid := range glyphs {
		if int(gid) >= f.NumGlyphs() {
			return nil, fmt.Errorf("cannot subset glyph %d of font with %d glyphs: %w", gid, f.NumGlyphs(), ot.ErrFormat)
		}
		include(gid)
	}
	var records [][]byte
	for i := 0; i < len(s.Glyphs); i++ { // s.Glyphs grows with components
		g, err := outlines.Glyph(s.Glyphs[i])
		if err != nil {
			return nil, err
		}
		rec := append([]byte(nil), g.Raw...)
		for _, comp := range g.Components {
			if int(comp.Glyph) >= f.NumGlyphs() {
				return nil, errFormat("composite glyph", "glyph %d references missing glyph %d", s.Glyphs[i], comp.Glyph)
			}
			binary.BigEndian.PutUint16(rec[comp.at:], uint16(include(comp.Glyph)))
		}
		records = append(records, rec)
	}
	n := len(s.Glyphs)
	glyf, loca, longLoca := buildGlyf(records)
	tables := map[ot.Tag][]byte{
		tagGlyf:      glyf,
		tagLoca:      loca,
		ot.T("hmtx"): buildHMtx(hmtx, s.Glyphs),
		ot.T("hhea"): patched(f.Table(ot.T("hhea")), 34, uint16(n)),
		ot.T("maxp"): patched(f.Table(ot.T("maxp")), 4, uint16(n)),
		ot.T("head"): patched(f.Table(ot.T("head")), 50, boolU16(longLoca)),
	}
	if post := f.Table(ot.T("post")); len(post) >= 32 {
		p := append([]byte(nil), post[:32]...)
		binary.BigEndian.PutUint32(p, 0x00030000)
		tables[ot.T("post")] = p
	}
	for _, tag := range hintingTables {
		if data := f.Table(tag); data != nil {
			tables[tag] = data
		}
	}
	s.Data = Assemble(ot.FlavorTrueType, tables)
	tracer().Infof("TrueType subset with %d glyphs, %d bytes", n, len(s.Data))
	return s, nil
}

// buildGlyf concatenates glyph records and creates the matching 'loca' table,
// in short format if possible.
func buildGlyf(records [][]byte) (glyf, loca []byte, long bool) {
	total := 0
	for _, r := range records {
		total += (len(r) + 1) &^ 1
	}
	long = total > 0x1fffe
	align := 2
	if long {
		align = 4
	}
	offsets := make([]int, 0, len(records)+1)
	for _, r := range records {
		offsets = append(offsets, len(glyf))
		glyf = append(glyf, r...)
		for len(glyf)%align != 0 {
			glyf = append(glyf, 0)
		}
	}
	offsets = append(offsets, len(glyf))
	for _, off := range offsets {
		if long {
			loca = binary.BigEndian.AppendUint32(loca, uint32(off))
		} else {
			loca = binary.BigEndian.AppendUint16(loca, uint16(off/2))
		}
	}
	return glyf, loca, long
}

// buildHMtx writes one long metric per glyph.
func buildHMtx(hmtx *ot.MetricsTable, glyphs []ot.GlyphIndex) []byte {
	out := make([]byte, 0, 4*len(glyphs))
	for _, gid := range glyphs {
		m := hmtx.Metric(gid)
		out = binary.BigEndian.AppendUint16(out, m.Advance)
		out = binary.BigEndian.AppendUint16(out, uint16(m.Bearing))
	}
	return out
}

// patched returns a copy of table data with a 16-bit value replaced.
func patched(data []byte, at int, v uint16) []byte {
	out := append([]byte(nil), data...)
	if at+2 <= len(out) {
		binary.BigEndian.PutUint16(out[at:], v)
	}
	return out
}

func boolU16(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

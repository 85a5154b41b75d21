package fonttest

import "sort"

// CMapRecord is an encoding record of table 'cmap' together with its subtable.
type CMapRecord struct {
	Platform, Encoding uint16
	Subtable           []byte
}

// CMap builds table 'cmap' from encoding records. Records are sorted by
// platform and encoding, as required.
func CMap(records ...CMapRecord) []byte {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Platform != records[j].Platform {
			return records[i].Platform < records[j].Platform
		}
		return records[i].Encoding < records[j].Encoding
	})
	w := NewBuf().U16(0, uint16(len(records)))
	offset := 4 + 8*len(records)
	for _, r := range records {
		w.U16(r.Platform, r.Encoding).U32(uint32(offset))
		offset += len(r.Subtable)
	}
	for _, r := range records {
		w.Bytes(r.Subtable)
	}
	return w.Data()
}

func sortedRunes(m map[rune]uint16) []rune {
	rs := make([]rune, 0, len(m))
	for r := range m {
		rs = append(rs, r)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
	return rs
}

// CMapFormat0 builds a byte encoding subtable for codes < 256.
func CMapFormat0(m map[rune]uint16) []byte {
	var glyphs [256]byte
	for r, g := range m {
		if r < 256 {
			glyphs[r] = byte(g)
		}
	}
	return NewBuf().U16(0, 262, 0).Bytes(glyphs[:]).Data()
}

// CMapFormat4 builds a segment mapping subtable for the BMP part of m. Runs of
// consecutive codes mapping to consecutive glyphs use idDelta; all other runs
// use the glyph ID array. If rangeOffsets is set, every segment uses the
// glyph ID array.
func CMapFormat4(m map[rune]uint16, rangeOffsets bool) []byte {
	type segment struct {
		start, end rune
		glyphs     []uint16
	}
	var segs []segment
	for _, r := range sortedRunes(m) {
		if r >= 0xFFFF {
			break
		}
		if n := len(segs); n > 0 && segs[n-1].end+1 == r {
			segs[n-1].end = r
			segs[n-1].glyphs = append(segs[n-1].glyphs, m[r])
			continue
		}
		segs = append(segs, segment{start: r, end: r, glyphs: []uint16{m[r]}})
	}
	segs = append(segs, segment{start: 0xFFFF, end: 0xFFFF})
	segCount := len(segs)
	contiguous := func(s segment) bool {
		for i := 1; i < len(s.glyphs); i++ {
			if s.glyphs[i] != s.glyphs[i-1]+1 {
				return false
			}
		}
		return true
	}
	deltas := make([]uint16, segCount)
	rangeOffs := make([]uint16, segCount)
	var glyphArray []uint16
	for i, s := range segs {
		switch {
		case s.start == 0xFFFF:
			deltas[i] = 1
		case !rangeOffsets && contiguous(s):
			deltas[i] = uint16(int(s.glyphs[0]) - int(s.start))
		default:
			rangeOffs[i] = uint16(2*(segCount-i) + 2*len(glyphArray))
			glyphArray = append(glyphArray, s.glyphs...)
		}
	}
	sr, es := searchParams(segCount, 2)
	w := NewBuf()
	w.U16(4, uint16(16+8*segCount+2*len(glyphArray)), 0)
	w.U16(uint16(2*segCount), sr, es, uint16(2*segCount)-sr)
	for _, s := range segs {
		w.U16(uint16(s.end))
	}
	w.U16(0) // reservedPad
	for _, s := range segs {
		w.U16(uint16(s.start))
	}
	w.U16(deltas...)
	w.U16(rangeOffs...)
	w.U16(glyphArray...)
	return w.Data()
}

// CMapFormat6 builds a trimmed table mapping subtable.
func CMapFormat6(first uint16, glyphs []uint16) []byte {
	w := NewBuf().U16(6, uint16(10+2*len(glyphs)), 0)
	return w.U16(first, uint16(len(glyphs))).U16(glyphs...).Data()
}

// CMapFormat10 builds a trimmed array subtable.
func CMapFormat10(first uint32, glyphs []uint16) []byte {
	w := NewBuf().U16(10, 0).U32(uint32(20+2*len(glyphs)), 0)
	return w.U32(first, uint32(len(glyphs))).U16(glyphs...).Data()
}

// CMapFormat12 builds a segmented coverage subtable.
func CMapFormat12(m map[rune]uint16) []byte {
	type group struct {
		start, end rune
		glyph      uint16
	}
	var groups []group
	for _, r := range sortedRunes(m) {
		if n := len(groups); n > 0 {
			last := &groups[n-1]
			if last.end+1 == r && uint32(last.glyph)+uint32(r-last.start) == uint32(m[r]) {
				last.end = r
				continue
			}
		}
		groups = append(groups, group{start: r, end: r, glyph: m[r]})
	}
	w := NewBuf().U16(12, 0).U32(uint32(16+12*len(groups)), 0, uint32(len(groups)))
	for _, g := range groups {
		w.U32(uint32(g.start), uint32(g.end), uint32(g.glyph))
	}
	return w.Data()
}

// ManyToOne is a group of format 13: all codes in [Start, End] map to Glyph.
type ManyToOne struct {
	Start, End rune
	Glyph      uint16
}

// CMapFormat13 builds a many-to-one range mapping subtable.
func CMapFormat13(groups ...ManyToOne) []byte {
	w := NewBuf().U16(13, 0).U32(uint32(16+12*len(groups)), 0, uint32(len(groups)))
	for _, g := range groups {
		w.U32(uint32(g.Start), uint32(g.End), uint32(g.Glyph))
	}
	return w.Data()
}

// UVS describes the sequences of one variation selector for format 14.
type UVS struct {
	Selector   rune
	Defaults   []rune          // base characters using the default glyph
	NonDefault map[rune]uint16 // base characters with special glyphs
}

// CMapFormat14 builds a Unicode variation sequences subtable. Default
// characters are written as single-character ranges.
func CMapFormat14(selectors ...UVS) []byte {
	sort.Slice(selectors, func(i, j int) bool { return selectors[i].Selector < selectors[j].Selector })
	header := 10 + 11*len(selectors)
	w := NewBuf().U16(14).U32(0).U32(uint32(len(selectors)))
	var body []byte
	for _, s := range selectors {
		w.U24(uint32(s.Selector))
		var defOff, nonDefOff uint32
		if len(s.Defaults) > 0 {
			defOff = uint32(header + len(body))
			d := NewBuf().U32(uint32(len(s.Defaults)))
			rs := append([]rune(nil), s.Defaults...)
			sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
			for _, r := range rs {
				d.U24(uint32(r)).U8(0)
			}
			body = append(body, d.Data()...)
		}
		if len(s.NonDefault) > 0 {
			nonDefOff = uint32(header + len(body))
			d := NewBuf().U32(uint32(len(s.NonDefault)))
			for _, r := range sortedRunes(s.NonDefault) {
				d.U24(uint32(r)).U16(s.NonDefault[r])
			}
			body = append(body, d.Data()...)
		}
		w.U32(defOff, nonDefOff)
	}
	w.Bytes(body)
	w.PatchU32(2, uint32(w.Len()))
	return w.Data()
}

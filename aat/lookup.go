package aat

import (
	"fmt"
	"sort"

	"github.com/npillmayer/fontkit/ot"
)

// LookupTable maps glyphs to 16-bit values. AAT uses lookup tables for glyph
// classes of state machines and for glyph substitutions.
//
// Formats 0 (simple array), 2 (segment single), 4 (segment array),
// 6 (single table), 8 (trimmed array) and 10 (extended trimmed array) are
// supported. All formats are normalized to either a list of segments or a
// dense array of values.
type LookupTable struct {
	Format   uint16
	segments []lookupSegment // formats 2, 4 and 6, sorted by first glyph
	first    ot.GlyphIndex   // formats 0, 8 and 10
	values   []uint16        // formats 0, 8 and 10
}

type lookupSegment struct {
	first, last ot.GlyphIndex
	value       uint16   // format 2 and 6
	values      []uint16 // format 4, one value per glyph in [first, last]
}

// ParseLookup decodes a lookup table at the position of c. numGlyphs bounds
// format 0 tables; if it is 0, a format 0 table extends to the end of c.
func ParseLookup(c *ot.Cursor, numGlyphs int) (*LookupTable, error) {
	base := c.Here()
	lt := &LookupTable{Format: c.U16()}
	c.Section(fmt.Sprintf("lookup format %d", lt.Format))
	switch lt.Format {
	case 0:
		n := numGlyphs
		if n == 0 || n > c.Remaining()/2 {
			n = c.Remaining() / 2
		}
		lt.values = c.U16s(n)
	case 2, 4, 6:
		unitSize := int(c.U16())
		nUnits := int(c.U16())
		c.Skip(6) // searchRange, entrySelector, rangeShift
		if c.Err() != nil {
			return nil, c.Err()
		}
		minSize := 6
		if lt.Format == 6 {
			minSize = 4
		}
		if unitSize < minSize {
			return nil, errFormat("lookup", "lookup unit size %d too small for format %d", unitSize, lt.Format)
		}
		for i := 0; i < nUnits; i++ {
			u := c.Sub(c.Pos()+i*unitSize, unitSize)
			var seg lookupSegment
			if lt.Format == 6 {
				seg.first = u.Glyph()
				seg.last = seg.first
				seg.value = u.U16()
			} else {
				seg.last = u.Glyph()
				seg.first = u.Glyph()
				seg.value = u.U16()
			}
			if err := u.Err(); err != nil {
				return nil, err
			}
			if seg.first == 0xffff && seg.last == 0xffff {
				continue // terminator
			}
			if seg.last < seg.first {
				return nil, errFormat("lookup", "lookup segment %d has last glyph %d < first glyph %d",
					i, seg.last, seg.first)
			}
			if lt.Format == 4 {
				v := base.At(int(seg.value))
				seg.values = v.U16s(int(seg.last-seg.first) + 1)
				if err := v.Err(); err != nil {
					return nil, err
				}
			}
			lt.segments = append(lt.segments, seg)
		}
		sort.Slice(lt.segments, func(i, j int) bool {
			return lt.segments[i].first < lt.segments[j].first
		})
	case 8:
		lt.first = c.Glyph()
		lt.values = c.U16s(int(c.U16()))
	case 10:
		unitSize := c.U16()
		lt.first = c.Glyph()
		n := int(c.U16())
		switch unitSize {
		case 1:
			b := c.Bytes(n)
			lt.values = make([]uint16, len(b))
			for i, v := range b {
				lt.values[i] = uint16(v)
			}
		case 2:
			lt.values = c.U16s(n)
		default:
			return nil, errFormat("lookup", "unsupported lookup value size %d", unitSize)
		}
	default:
		if c.Err() == nil {
			return nil, errFormat("lookup", "unknown lookup table format %d", lt.Format)
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return lt, nil
}

// Lookup returns the value for glyph gid. If the table has no entry for gid,
// Lookup returns false.
func (lt *LookupTable) Lookup(gid ot.GlyphIndex) (uint16, bool) {
	if lt == nil {
		return 0, false
	}
	if lt.segments == nil {
		if gid < lt.first || int(gid-lt.first) >= len(lt.values) {
			return 0, false
		}
		return lt.values[gid-lt.first], true
	}
	i := sort.Search(len(lt.segments), func(i int) bool {
		return lt.segments[i].last >= gid
	})
	if i == len(lt.segments) || lt.segments[i].first > gid {
		return 0, false
	}
	seg := lt.segments[i]
	if seg.values != nil {
		return seg.values[gid-seg.first], true
	}
	return seg.value, true
}

// GlyphsForValue returns all glyphs which map to value, in ascending order.
func (lt *LookupTable) GlyphsForValue(value uint16) []ot.GlyphIndex {
	if lt == nil {
		return nil
	}
	var glyphs []ot.GlyphIndex
	if lt.segments == nil {
		for i, v := range lt.values {
			if v == value {
				glyphs = append(glyphs, lt.first+ot.GlyphIndex(i))
			}
		}
		return glyphs
	}
	for _, seg := range lt.segments {
		for g := int(seg.first); g <= int(seg.last); g++ {
			v := seg.value
			if seg.values != nil {
				v = seg.values[g-int(seg.first)]
			}
			if v == value {
				glyphs = append(glyphs, ot.GlyphIndex(g))
			}
		}
	}
	return glyphs
}

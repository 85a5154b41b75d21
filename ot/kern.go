package ot

import (
	"fmt"
	"sort"
)

// KernTable is a decoded legacy 'kern' table, either in Microsoft's version 0
// layout or Apple's version 1 layout.
type KernTable struct {
	Version   uint16
	Subtables []*KernSubtable
}

// KernSubtable is a subtable of table 'kern'. Flags are normalized across the
// Microsoft and Apple variants of the table.
type KernSubtable struct {
	Format      uint8
	Horizontal  bool
	Minimum     bool
	CrossStream bool
	Override    bool
	Vertical    bool
	Variation   bool
	pairs       []kernPair  // format 0, sorted
	classes     *kernClass2 // format 2
	indexed     *kernIndex3 // format 3
}

type kernPair struct {
	key   uint32 // left<<16 | right
	value int16
}

type kernClass2 struct {
	leftFirst, rightFirst     GlyphIndex
	leftOffsets, rightOffsets []uint16
	arrayOffset               int
	values                    []int16
}

type kernIndex3 struct {
	glyphCount      int
	rightClassCount int
	values          []int16
	leftClass       []byte
	rightClass      []byte
	index           []byte
}

// Value returns the kerning value for a glyph pair, or 0 if the subtable does not
// kern the pair.
func (st *KernSubtable) Value(left, right GlyphIndex) int16 {
	switch st.Format {
	case 0:
		key := uint32(left)<<16 | uint32(right)
		i := sort.Search(len(st.pairs), func(i int) bool { return st.pairs[i].key >= key })
		if i < len(st.pairs) && st.pairs[i].key == key {
			return st.pairs[i].value
		}
	case 2:
		k := st.classes
		// a left glyph outside of the class table selects the first row
		leftOffset := k.arrayOffset
		if left >= k.leftFirst && int(left-k.leftFirst) < len(k.leftOffsets) {
			leftOffset = int(k.leftOffsets[left-k.leftFirst])
		}
		rightOffset := 0
		if right >= k.rightFirst && int(right-k.rightFirst) < len(k.rightOffsets) {
			rightOffset = int(k.rightOffsets[right-k.rightFirst])
		}
		inx := (leftOffset + rightOffset - k.arrayOffset) / 2
		if inx >= 0 && inx < len(k.values) {
			return k.values[inx]
		}
	case 3:
		k := st.indexed
		if int(left) >= k.glyphCount || int(right) >= k.glyphCount {
			return 0
		}
		cell := int(k.leftClass[left])*k.rightClassCount + int(k.rightClass[right])
		if cell < len(k.index) && int(k.index[cell]) < len(k.values) {
			return k.values[k.index[cell]]
		}
	}
	return 0
}

// Kern returns the font's decoded 'kern' table, or nil if the font does not contain one.
func (otf *Font) Kern() (*KernTable, error) {
	return otf.kern.Get(func() (*KernTable, error) {
		c := otf.cursor(T("kern"))
		if c == nil {
			return nil, nil
		}
		return ParseKern(c.Data())
	})
}

// ParseKern decodes a 'kern' table.
func ParseKern(data []byte) (*KernTable, error) {
	c := NewCursor(data, T("kern")).Section("header")
	t := &KernTable{Version: c.U16()}
	var n int
	switch t.Version {
	case 0:
		n = int(c.U16())
	case 1:
		c.Skip(2) // Apple's version is a 32-bit fixed 1.0
		n = int(c.U32())
	default:
		return nil, FormatError(T("kern"), "header", "unsupported kerning table version %d", t.Version)
	}
	if n > 256 {
		return nil, FormatError(T("kern"), "header", "too many subtables: %d", n)
	}
	for i := 0; i < n && c.Remaining() > 0; i++ {
		start := c.Pos()
		st := &KernSubtable{}
		var length, headerSize int
		if t.Version == 0 {
			c.Skip(2) // subtable version
			length = int(c.U16())
			coverage := c.U16()
			st.Format = uint8(coverage >> 8)
			st.Horizontal = coverage&0x01 != 0
			st.Minimum = coverage&0x02 != 0
			st.CrossStream = coverage&0x04 != 0
			st.Override = coverage&0x08 != 0
			headerSize = 6
		} else {
			length = int(c.U32())
			coverage := c.U16()
			c.Skip(2) // tupleIndex
			st.Format = uint8(coverage)
			st.Vertical = coverage&0x8000 != 0
			st.CrossStream = coverage&0x4000 != 0
			st.Variation = coverage&0x2000 != 0
			st.Horizontal = !st.Vertical
			headerSize = 8
		}
		if err := c.Err(); err != nil {
			return nil, err
		}
		// the 16-bit length of version 0 subtables overflows in some fonts
		// (e.g., Calibri); a sole or last subtable extends to the end of the table
		if length < headerSize || start+length > c.Len() || i == n-1 {
			length = c.Len() - start
		}
		sc := c.Sub(start, length).Section(fmt.Sprintf("subtable %d format %d", i, st.Format))
		sc.Skip(headerSize)
		var err error
		switch st.Format {
		case 0:
			err = parseKernFormat0(sc, st)
		case 2:
			err = parseKernFormat2(sc, st)
		case 3:
			err = parseKernFormat3(sc, st)
		default:
			tracer().Debugf("kern: skipping subtable of unsupported format %d", st.Format)
			c.Seek(start + length)
			continue
		}
		if err != nil {
			return nil, err
		}
		t.Subtables = append(t.Subtables, st)
		c.Seek(start + length)
	}
	return t, c.Err()
}

func parseKernFormat0(c *Cursor, st *KernSubtable) error {
	n := int(c.U16())
	c.Skip(6) // searchRange, entrySelector, rangeShift
	if avail := c.Remaining() / 6; n > avail {
		n = avail
	}
	st.pairs = make([]kernPair, n)
	for i := range st.pairs {
		st.pairs[i].key = c.U32()
		st.pairs[i].value = c.I16()
	}
	sort.Slice(st.pairs, func(i, j int) bool { return st.pairs[i].key < st.pairs[j].key })
	return c.Err()
}

func parseKernFormat2(c *Cursor, st *KernSubtable) error {
	c.Skip(2) // rowWidth
	leftOff, rightOff, arrayOff := int(c.U16()), int(c.U16()), int(c.U16())
	k := &kernClass2{arrayOffset: arrayOff}
	lc := c.At(leftOff)
	k.leftFirst = lc.Glyph()
	k.leftOffsets = lc.U16s(int(lc.U16()))
	rc := c.At(rightOff)
	k.rightFirst = rc.Glyph()
	k.rightOffsets = rc.U16s(int(rc.U16()))
	ac := c.At(arrayOff)
	k.values = ac.I16s(ac.Remaining() / 2)
	for _, e := range []error{lc.Err(), rc.Err(), ac.Err()} {
		if e != nil {
			return e
		}
	}
	st.classes = k
	return c.Err()
}

func parseKernFormat3(c *Cursor, st *KernSubtable) error {
	k := &kernIndex3{glyphCount: int(c.U16())}
	valueCount := int(c.U8())
	leftClassCount := int(c.U8())
	k.rightClassCount = int(c.U8())
	c.Skip(1) // flags
	k.values = c.I16s(valueCount)
	k.leftClass = c.Bytes(k.glyphCount)
	k.rightClass = c.Bytes(k.glyphCount)
	k.index = c.Bytes(leftClassCount * k.rightClassCount)
	st.indexed = k
	return c.Err()
}

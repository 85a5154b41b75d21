package ot

import (
	"errors"
	"fmt"
)

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// --- Byte segments ---------------------------------------------------------

// binarySegm is a segment of byte data.
// We use it throughout this module for random access to a table's binary data.
type binarySegm []byte

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n < 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// U16 is a convenience access to 16 bit data at byte index i. Out of range
// access returns 0.
func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

// U32 is a convenience access to 32 bit data at byte index i. Out of range
// access returns 0.
func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

// --- Cursor ----------------------------------------------------------------

// Cursor reads big-endian scalars, arrays and sub-records from a segment of font
// data. Every read advances the cursor's position.
//
// A cursor is sticky on errors: after the first failed read all further reads
// return zero values and Err() reports the first failure, as a *FontError naming
// the table and section being decoded. This lets decoders read a record field by
// field and check for errors once.
//
// Sub-cursors created with At or Sub share the underlying bytes and inherit
// table and section, but carry their own error state. Offsets given to At are
// relative to the start of the cursor's segment, which is how OpenType expresses
// "parent-relative" pointers.
type Cursor struct {
	data    binarySegm
	pos     int
	base    int // absolute offset of data[0] in the font file, for error reports
	table   Tag
	section string
	err     error
}

// NewCursor creates a cursor on data, attributed to table tag.
func NewCursor(data []byte, table Tag) *Cursor {
	return &Cursor{data: data, table: table}
}

// newCursorAt creates a cursor for table data located at base in the font file.
func newCursorAt(data []byte, table Tag, base int) *Cursor {
	return &Cursor{data: data, table: table, base: base}
}

// Err returns the first error this cursor encountered, or nil.
func (c *Cursor) Err() error {
	return c.err
}

// Section names the part of the table currently being decoded. It is used
// for error reports and returns the cursor for chaining.
func (c *Cursor) Section(name string) *Cursor {
	c.section = name
	return c
}

// Table returns the tag of the table this cursor reads from.
func (c *Cursor) Table() Tag {
	return c.table
}

// Pos returns the cursor's position relative to the start of its segment.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the size of the cursor's segment.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Remaining returns the number of bytes between the position and the end of the segment.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.data) {
		return 0
	}
	return len(c.data) - c.pos
}

// Data returns the cursor's complete segment.
func (c *Cursor) Data() []byte {
	return c.data
}

// Seek sets the position to pos, relative to the start of the segment.
func (c *Cursor) Seek(pos int) *Cursor {
	if pos < 0 || pos > len(c.data) {
		c.Fail(fmt.Sprintf("seek to %d outside of segment of size %d", pos, len(c.data)))
		return c
	}
	c.pos = pos
	return c
}

// Skip advances the position by n bytes. It is used for reserved and padding
// fields, which must be accounted for but carry no information.
func (c *Cursor) Skip(n int) {
	c.next(n)
}

// Fail records a format error at the current position, unless an error has
// already been recorded.
func (c *Cursor) Fail(issue string) {
	if c.err != nil {
		return
	}
	c.err = &FontError{
		Table:    c.table,
		Section:  c.section,
		Issue:    issue,
		Severity: SeverityCritical,
		Offset:   uint32(c.base + c.pos),
		Kind:     ErrFormat,
	}
}

// next returns the next n bytes and advances the position.
func (c *Cursor) next(n int) binarySegm {
	if c.err != nil {
		return nil
	}
	b, err := c.data.view(c.pos, n)
	if err != nil {
		c.Fail(fmt.Sprintf("truncated data: need %d bytes, have %d", n, c.Remaining()))
		return nil
	}
	c.pos += n
	return b
}

// U8 reads an unsigned byte.
func (c *Cursor) U8() uint8 {
	b := c.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// I8 reads a signed byte.
func (c *Cursor) I8() int8 {
	return int8(c.U8())
}

// U16 reads an uint16.
func (c *Cursor) U16() uint16 {
	b := c.next(2)
	if b == nil {
		return 0
	}
	return u16(b)
}

// I16 reads an int16.
func (c *Cursor) I16() int16 {
	return int16(c.U16())
}

// U24 reads an unsigned 24-bit integer.
func (c *Cursor) U24() uint32 {
	b := c.next(3)
	if b == nil {
		return 0
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// U32 reads an uint32.
func (c *Cursor) U32() uint32 {
	b := c.next(4)
	if b == nil {
		return 0
	}
	return u32(b)
}

// I32 reads an int32.
func (c *Cursor) I32() int32 {
	return int32(c.U32())
}

// Offset reads an offset of 2 or 4 bytes, depending on wide.
func (c *Cursor) Offset(wide bool) int {
	if wide {
		return int(c.U32())
	}
	return int(c.U16())
}

// Fixed reads a 16.16 fixed point number.
func (c *Cursor) Fixed() float64 {
	return float64(c.I32()) / 65536
}

// F2Dot14 reads a 2.14 fixed point number.
func (c *Cursor) F2Dot14() float64 {
	return float64(c.I16()) / 16384
}

// Tag reads a 4-byte tag.
func (c *Cursor) Tag() Tag {
	return Tag(c.U32())
}

// Glyph reads a 16-bit glyph index.
func (c *Cursor) Glyph() GlyphIndex {
	return GlyphIndex(c.U16())
}

// Bytes returns the next n bytes. The result is a sub-slice of the font data,
// not a copy.
func (c *Cursor) Bytes(n int) []byte {
	return c.next(n)
}

// U16s reads an array of n uint16 values.
func (c *Cursor) U16s(n int) []uint16 {
	if !c.checkCount(n, 2) {
		return nil
	}
	b := c.next(2 * n)
	if b == nil {
		return nil
	}
	r := make([]uint16, n)
	for i := range r {
		r[i] = u16(b[2*i:])
	}
	return r
}

// I16s reads an array of n int16 values.
func (c *Cursor) I16s(n int) []int16 {
	u := c.U16s(n)
	if u == nil {
		return nil
	}
	r := make([]int16, n)
	for i, x := range u {
		r[i] = int16(x)
	}
	return r
}

// U32s reads an array of n uint32 values.
func (c *Cursor) U32s(n int) []uint32 {
	if !c.checkCount(n, 4) {
		return nil
	}
	b := c.next(4 * n)
	if b == nil {
		return nil
	}
	r := make([]uint32, n)
	for i := range r {
		r[i] = u32(b[4*i:])
	}
	return r
}

// Glyphs reads an array of n glyph indices.
func (c *Cursor) Glyphs(n int) []GlyphIndex {
	u := c.U16s(n)
	if u == nil {
		return nil
	}
	r := make([]GlyphIndex, n)
	for i, x := range u {
		r[i] = GlyphIndex(x)
	}
	return r
}

func (c *Cursor) checkCount(n, size int) bool {
	if n < 0 {
		c.Fail(fmt.Sprintf("negative array count %d", n))
		return false
	}
	if _, err := checkedMulInt(n, size); err != nil {
		c.Fail(fmt.Sprintf("array count %d overflows", n))
		return false
	}
	return true
}

// At returns a new cursor on the segment starting at offset, relative to the
// start of c's segment, and extending to the end of c's segment. The position
// of c is unchanged.
//
// A zero offset is legal. Callers must check for OpenType's "NULL offset"
// convention themselves.
func (c *Cursor) At(offset int) *Cursor {
	sub := &Cursor{table: c.table, section: c.section, base: c.base + offset}
	if c.err != nil {
		sub.err = c.err
		return sub
	}
	if offset < 0 || offset > len(c.data) {
		sub.base = c.base
		sub.pos = 0
		sub.err = &FontError{
			Table:    c.table,
			Section:  c.section,
			Issue:    fmt.Sprintf("offset %d outside of segment of size %d", offset, len(c.data)),
			Severity: SeverityCritical,
			Offset:   uint32(c.base),
			Kind:     ErrFormat,
		}
		return sub
	}
	sub.data = c.data[offset:]
	return sub
}

// Sub returns a new cursor on the segment [offset, offset+length) of c's segment.
func (c *Cursor) Sub(offset, length int) *Cursor {
	sub := c.At(offset)
	if sub.err != nil {
		return sub
	}
	if length < 0 || length > len(sub.data) {
		sub.Fail(fmt.Sprintf("sub-segment of length %d exceeds available %d bytes", length, len(sub.data)))
		return sub
	}
	sub.data = sub.data[:length]
	return sub
}

// Here returns a cursor starting at the current position of c.
func (c *Cursor) Here() *Cursor {
	return c.At(c.pos)
}

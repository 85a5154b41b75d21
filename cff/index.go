package cff

import (
	"fmt"

	"github.com/npillmayer/fontkit/ot"
)

// An INDEX is an array of variable-sized objects. It starts with a count
// (16 bit for CFF, 32 bit for CFF2), followed by an offset size and count+1
// offsets. Offsets are 1-based and relative to the byte preceding the object
// data, so the first offset is always 1.

// readIndex decodes an INDEX at the position of c and advances c past it.
// The items are sub-slices of the font data.
func readIndex(c *ot.Cursor, version int) [][]byte {
	var count int
	if version >= 2 {
		count = int(c.U32())
	} else {
		count = int(c.U16())
	}
	if count == 0 || c.Err() != nil {
		return nil
	}
	offSize := int(c.U8())
	if offSize < 1 || offSize > 4 {
		c.Fail(fmt.Sprintf("illegal INDEX offset size %d", offSize))
		return nil
	}
	if count > c.Remaining()/offSize {
		c.Fail(fmt.Sprintf("INDEX count %d exceeds available data", count))
		return nil
	}
	offsets := make([]int, count+1)
	for i := range offsets {
		offsets[i] = readOffset(c, offSize)
	}
	if c.Err() != nil {
		return nil
	}
	start := c.Pos() - 1
	data := c.Data()
	items := make([][]byte, count)
	for i := range items {
		from, to := start+offsets[i], start+offsets[i+1]
		if offsets[i] < 1 || to < from || to > len(data) {
			c.Fail(fmt.Sprintf("INDEX item %d has illegal offsets [%d:%d]", i, offsets[i], offsets[i+1]))
			return nil
		}
		items[i] = data[from:to:to]
	}
	c.Seek(start + offsets[count])
	return items
}

func readOffset(c *ot.Cursor, offSize int) int {
	switch offSize {
	case 1:
		return int(c.U8())
	case 2:
		return int(c.U16())
	case 3:
		return int(c.U24())
	}
	return int(c.U32())
}

// DecodeIndex decodes an INDEX at the start of data. It returns the items and
// the number of bytes the INDEX occupies. Version selects the width of the
// count field: 16 bit below version 2, 32 bit from version 2 on.
func DecodeIndex(data []byte, version int) ([][]byte, int, error) {
	c := ot.NewCursor(data, tag).Section("INDEX")
	items := readIndex(c, version)
	if err := c.Err(); err != nil {
		return nil, 0, err
	}
	return items, c.Pos(), nil
}

// offsetSize returns the minimal number of bytes needed to store offsets up to
// maxOffset.
func offsetSize(maxOffset int) int {
	switch {
	case maxOffset <= 0xff:
		return 1
	case maxOffset <= 0xffff:
		return 2
	case maxOffset <= 0xffffff:
		return 3
	}
	return 4
}

// IndexSize returns the number of bytes EncodeIndex will produce for items.
func IndexSize(items [][]byte, version int) int {
	countSize := 2
	if version >= 2 {
		countSize = 4
	}
	if len(items) == 0 {
		return countSize
	}
	last := 1
	for _, it := range items {
		last += len(it)
	}
	return countSize + 1 + (len(items)+1)*offsetSize(last) + last - 1
}

// EncodeIndex encodes items as an INDEX.
//
// Encoding takes two passes: the offset size is a function of the total size
// of all items, so every item size has to be known before the first offset can
// be written.
func EncodeIndex(items [][]byte, version int) []byte {
	countSize := 2
	if version >= 2 {
		countSize = 4
	}
	out := make([]byte, 0, IndexSize(items, version))
	if countSize == 4 {
		out = append(out, byte(len(items)>>24), byte(len(items)>>16))
	}
	out = append(out, byte(len(items)>>8), byte(len(items)))
	if len(items) == 0 {
		return out
	}
	// pass 1: sizes
	last := 1
	for _, it := range items {
		last += len(it)
	}
	offSize := offsetSize(last)
	// pass 2: header, offsets, data
	out = append(out, byte(offSize))
	off := 1
	out = appendOffset(out, off, offSize)
	for _, it := range items {
		off += len(it)
		out = appendOffset(out, off, offSize)
	}
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func appendOffset(b []byte, v, offSize int) []byte {
	for i := offSize - 1; i >= 0; i-- {
		b = append(b, byte(v>>(8*i)))
	}
	return b
}

package fonttest

import (
	"encoding/binary"
	"sort"
)

// Flavors of sfnt fonts
const (
	TrueType = 0x00010000
	OpenType = 0x4f54544f // 'OTTO'
)

// SFNT assembles a font file from table data.
type SFNT struct {
	Flavor uint32
	tables map[string][]byte
}

// NewSFNT creates an empty font of the given flavor.
func NewSFNT(flavor uint32) *SFNT {
	return &SFNT{Flavor: flavor, tables: map[string][]byte{}}
}

// Table sets the data of a table.
func (f *SFNT) Table(tag string, data []byte) *SFNT {
	if len(tag) != 4 {
		panic("fonttest: table tag must have 4 bytes")
	}
	f.tables[tag] = data
	return f
}

// Remove deletes a table.
func (f *SFNT) Remove(tag string) *SFNT {
	delete(f.tables, tag)
	return f
}

// Tags returns the tags of all tables, sorted.
func (f *SFNT) Tags() []string {
	tags := make([]string, 0, len(f.tables))
	for tag := range f.tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Data returns the data of a table, or nil.
func (f *SFNT) Data(tag string) []byte {
	return f.tables[tag]
}

// Bytes serializes the font: offset table, sorted table records with checksums,
// and 4-byte aligned table data.
func (f *SFNT) Bytes() []byte {
	return f.BytesAt(0)
}

// BytesAt serializes the font as if its table directory were located at offset
// base of an enclosing file. The returned slice does not include the base bytes.
func (f *SFNT) BytesAt(base int) []byte {
	tags := f.Tags()
	n := len(tags)
	w := NewBuf()
	w.U32(f.Flavor)
	w.U16(uint16(n))
	sr, es := searchParams(n, 16)
	w.U16(sr, es, uint16(n*16)-sr)
	offset := 12 + 16*n
	for _, tag := range tags {
		data := f.tables[tag]
		w.Tag(tag)
		w.U32(Checksum(data))
		w.U32(uint32(base + offset))
		w.U32(uint32(len(data)))
		offset += (len(data) + 3) &^ 3
	}
	for _, tag := range tags {
		w.Bytes(f.tables[tag]).Align(4)
	}
	return w.Data()
}

// searchParams calculates searchRange and entrySelector for n entries of size.
func searchParams(n, size int) (uint16, uint16) {
	pow, log := 1, 0
	for pow*2 <= n {
		pow *= 2
		log++
	}
	return uint16(pow * size), uint16(log)
}

// Checksum calculates a table checksum.
func Checksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < len(data); i += 4 {
		var word [4]byte
		copy(word[:], data[i:])
		sum += binary.BigEndian.Uint32(word[:])
	}
	return sum
}

// Collection assembles a TrueType collection (version 1.0) from fonts.
func Collection(fonts ...*SFNT) []byte {
	header := 12 + 4*len(fonts)
	w := NewBuf().Tag("ttcf").U32(0x00010000, uint32(len(fonts)))
	offsets := make([]int, len(fonts))
	pos := header
	var bodies [][]byte
	for i, f := range fonts {
		offsets[i] = pos
		b := f.BytesAt(pos)
		bodies = append(bodies, b)
		pos += len(b)
	}
	for _, off := range offsets {
		w.U32(uint32(off))
	}
	for _, b := range bodies {
		w.Bytes(b)
	}
	return w.Data()
}

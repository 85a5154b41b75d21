package ttf

import (
	"encoding/binary"
	"sort"

	"github.com/npillmayer/fontkit/ot"
)

// checksumMagic is the base value for the checksum adjustment of 'head'.
const checksumMagic = 0xB1B0AFBA

// Assemble writes an sfnt font file: offset table, table records sorted by
// tag, and table data padded to multiples of four bytes. If a 'head' table is
// present, its checksum adjustment is recalculated.
func Assemble(flavor ot.Tag, tables map[ot.Tag][]byte) []byte {
	tags := make([]ot.Tag, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	n := len(tags)
	size := 12 + 16*n
	for _, tag := range tags {
		size += (len(tables[tag]) + 3) &^ 3
	}
	out := make([]byte, 12+16*n, size)
	binary.BigEndian.PutUint32(out[0:], uint32(flavor))
	binary.BigEndian.PutUint16(out[4:], uint16(n))
	searchRange, entrySelector := 1, 0
	for searchRange*2 <= n {
		searchRange *= 2
		entrySelector++
	}
	binary.BigEndian.PutUint16(out[6:], uint16(searchRange*16))
	binary.BigEndian.PutUint16(out[8:], uint16(entrySelector))
	binary.BigEndian.PutUint16(out[10:], uint16(n*16-searchRange*16))
	headAt := -1
	for i, tag := range tags {
		data := tables[tag]
		if tag == ot.T("head") && len(data) >= 12 {
			data = append([]byte(nil), data...)
			binary.BigEndian.PutUint32(data[8:], 0)
			headAt = len(out)
		}
		rec := out[12+16*i:]
		binary.BigEndian.PutUint32(rec[0:], uint32(tag))
		binary.BigEndian.PutUint32(rec[4:], ot.TableChecksum(data))
		binary.BigEndian.PutUint32(rec[8:], uint32(len(out)))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(data)))
		out = append(out, data...)
		for len(out)%4 != 0 {
			out = append(out, 0)
		}
	}
	if headAt >= 0 {
		binary.BigEndian.PutUint32(out[headAt+8:], checksumMagic-ot.TableChecksum(out))
	}
	return out
}

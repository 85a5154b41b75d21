package fonttest

import (
	"bytes"
	"compress/zlib"
)

// WOFF wraps a font into a WOFF 1.0 container. With compress set, tables are
// zlib-compressed wherever that makes them smaller.
func WOFF(f *SFNT, compress bool) []byte {
	tags := f.Tags()
	type entry struct {
		data     []byte
		origLen  int
		checksum uint32
	}
	entries := make([]entry, len(tags))
	for i, tag := range tags {
		orig := f.Data(tag)
		e := entry{data: orig, origLen: len(orig), checksum: Checksum(orig)}
		if compress {
			var z bytes.Buffer
			zw := zlib.NewWriter(&z)
			zw.Write(orig)
			zw.Close()
			if z.Len() < len(orig) {
				e.data = z.Bytes()
			}
		}
		entries[i] = e
	}
	offset := 44 + 20*len(tags)
	sfntSize := 12 + 16*len(tags)
	for _, e := range entries {
		sfntSize += (e.origLen + 3) &^ 3
	}
	dir := NewBuf()
	body := NewBuf()
	for i, tag := range tags {
		e := entries[i]
		dir.Tag(tag).U32(uint32(offset+body.Len()), uint32(len(e.data)), uint32(e.origLen), e.checksum)
		body.Bytes(e.data).Align(4)
	}
	w := NewBuf().Tag("wOFF").U32(f.Flavor)
	w.U32(uint32(offset + body.Len()))
	w.U16(uint16(len(tags)), 0)
	w.U32(uint32(sfntSize))
	w.U16(1, 0)
	w.U32(0, 0, 0, 0, 0) // metadata and private block
	return w.Bytes(dir.Data()).Bytes(body.Data()).Data()
}

// DFont wraps fonts into a Macintosh resource fork with one 'sfnt' resource
// per font.
func DFont(fonts ...*SFNT) []byte {
	const dataOffset = 256
	data := NewBuf()
	var refs []int
	for _, f := range fonts {
		refs = append(refs, data.Len())
		b := f.Bytes()
		data.U32(uint32(len(b))).Bytes(b)
	}
	// resource map: 24 reserved bytes, typeList and nameList offsets
	m := NewBuf().Zeros(24)
	m.U16(28)                                // typeList, relative to map
	m.U16(uint16(28 + 2 + 8 + 12*len(refs))) // nameList, relative to map
	// typeList: one type 'sfnt' whose refList follows the type entries
	m.U16(0)
	m.Tag("sfnt").U16(uint16(len(refs)-1), 2+8)
	for i, off := range refs {
		m.U16(uint16(128+i)).I16(-1).U8(0).U24(uint32(off)).U32(0)
	}
	mapOffset := dataOffset + data.Len()
	w := NewBuf()
	w.U32(dataOffset, uint32(mapOffset), uint32(data.Len()), uint32(m.Len()))
	w.Zeros(dataOffset - w.Len())
	return w.Bytes(data.Data()).Bytes(m.Data()).Data()
}

// CollectionV2 assembles a TrueType collection of version 2.0, which carries
// an (empty) DSIG record after the font offsets.
func CollectionV2(fonts ...*SFNT) []byte {
	header := 12 + 4*len(fonts) + 12
	w := NewBuf().Tag("ttcf").U32(0x00020000, uint32(len(fonts)))
	pos := header
	var bodies [][]byte
	for _, f := range fonts {
		w.U32(uint32(pos))
		b := f.BytesAt(pos)
		bodies = append(bodies, b)
		pos += len(b)
	}
	w.U32(0, 0, 0) // no DSIG
	for _, b := range bodies {
		w.Bytes(b)
	}
	return w.Data()
}

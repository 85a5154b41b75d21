package ot

import (
	"fmt"
)

// Parse parses an OpenType font from a byte slice. The table directory is
// expected at offset 0.
//
// An ot.Font needs ongoing access to the fonts byte-data after the Parse function returns.
// Its elements are assumed immutable while the ot.Font remains in use.
func Parse(font []byte) (*Font, error) {
	return ParseAt(font, 0)
}

// ParseAt parses an OpenType font whose table directory is located at offset within
// data. This is used for fonts inside of collections and resource forks, where
// table offsets are relative to the start of the enclosing file.
func ParseAt(data []byte, offset int) (*Font, error) {
	src := binarySegm(data)
	c := newCursorAt(src, 0, 0).Section("header")
	c.Seek(offset)
	h := FontHeader{
		Flavor:     c.Tag(),
		TableCount: c.U16(),
	}
	c.Skip(6) // searchRange, entrySelector, rangeShift
	if err := c.Err(); err != nil {
		return nil, err
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, uint32(h.Flavor), h.Flavor.String())
	if !isSupportedFlavor(h.Flavor) {
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", uint32(h.Flavor)))
	}
	if h.TableCount == 0 || int(h.TableCount) > MaxTableCount {
		return nil, errFontFormat(fmt.Sprintf("unreasonable table count %d", h.TableCount))
	}
	otf := &Font{Header: h, tables: make(map[Tag]*TableRecord, h.TableCount)}
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	c.Section("table records")
	prevTag := Tag(0)
	for i := 0; i < int(h.TableCount); i++ {
		rec := &TableRecord{
			Tag:      c.Tag(),
			Checksum: c.U32(),
			Offset:   c.U32(),
			Length:   c.U32(),
		}
		if err := c.Err(); err != nil {
			return nil, err
		}
		if rec.Tag < prevTag {
			otf.ec.addWarning(rec.Tag, "table directory not sorted by tag", uint32(c.Pos()))
		}
		prevTag = rec.Tag
		if rec.Offset&3 != 0 { // "all tables must begin on four byte boundaries"
			otf.ec.addWarning(rec.Tag, "table not aligned on four byte boundary", rec.Offset)
		}
		// Validate table bounds before slicing to prevent panic
		end, err := checkedAddUint32(rec.Offset, rec.Length)
		if err != nil || end > uint32(len(src)) {
			return nil, FormatError(rec.Tag, "table record",
				"bounds [%d:%d] exceed font size %d", rec.Offset, end, len(src))
		}
		rec.data = src[rec.Offset:end]
		if _, dup := otf.tables[rec.Tag]; dup {
			otf.ec.addWarning(rec.Tag, "duplicate table record ignored", rec.Offset)
			continue
		}
		otf.tables[rec.Tag] = rec
		otf.order = append(otf.order, rec.Tag)
	}
	if err := otf.decodeRequiredTables(); err != nil {
		return nil, err
	}
	return otf, nil
}

// ParseTables creates a font from tables which have already been extracted from
// a container format, e.g., decompressed WOFF tables.
func ParseTables(flavor Tag, tables map[Tag][]byte) (*Font, error) {
	if !isSupportedFlavor(flavor) {
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", uint32(flavor)))
	}
	otf := &Font{
		Header: FontHeader{Flavor: flavor, TableCount: uint16(len(tables))},
		tables: make(map[Tag]*TableRecord, len(tables)),
	}
	for tag, data := range tables {
		otf.tables[tag] = &TableRecord{
			Tag:      tag,
			Checksum: TableChecksum(data),
			Length:   uint32(len(data)),
			data:     data,
		}
	}
	otf.order = otf.TableTags()
	if err := otf.decodeRequiredTables(); err != nil {
		return nil, err
	}
	return otf, nil
}

func isSupportedFlavor(flavor Tag) bool {
	return flavor == FlavorTrueType || flavor == FlavorOpenType || flavor == FlavorApple
}

// decodeRequiredTables decodes the tables every other table depends upon.
func (otf *Font) decodeRequiredTables() error {
	var err error
	if otf.Head, err = parseHead(otf.cursor(T("head"))); err != nil {
		return err
	}
	if otf.MaxP, err = parseMaxP(otf.cursor(T("maxp"))); err != nil {
		return err
	}
	if otf.MaxP.NumGlyphs == 0 {
		return FormatError(T("maxp"), "numGlyphs", "font without glyphs")
	}
	return nil
}

// TableChecksum calculates the checksum of a table, as required for table records.
// Tables are zero-padded to a multiple of four bytes.
func TableChecksum(data []byte) uint32 {
	var sum uint32
	n := len(data) &^ 3
	for i := 0; i < n; i += 4 {
		sum += u32(data[i:])
	}
	if rest := len(data) - n; rest > 0 {
		var pad [4]byte
		copy(pad[:], data[n:])
		sum += u32(pad[:])
	}
	return sum
}

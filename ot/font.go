package ot

import (
	"sort"
)

// Code comment often will cite passage from the
// OpenType specification version 1.9;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// Font represents the internal structure of an OpenType or TrueType font.
// It is used to navigate properties of a font for typesetting and embedding tasks.
//
// Only the table directory and tables 'head' and 'maxp' are decoded when a Font
// is created. All other tables are decoded on first access and memoized.
// A Font is not safe for concurrent use.
type Font struct {
	Header FontHeader
	Head   *HeadTable // 'head' is mandatory
	MaxP   *MaxPTable // 'maxp' is mandatory
	tables map[Tag]*TableRecord
	order  []Tag // tags in directory order
	ec     errorCollector
	// lazily decoded tables
	hhea Lazy[*MetricsHeader]
	vhea Lazy[*MetricsHeader]
	hmtx Lazy[*MetricsTable]
	vmtx Lazy[*MetricsTable]
	os2  Lazy[*OS2Table]
	post Lazy[*PostTable]
	loca Lazy[*LocaTable]
	name Lazy[*NameTable]
	cmap Lazy[*CMap]
	gdef Lazy[*GDefTable]
	gsub Lazy[*LayoutTable]
	gpos Lazy[*LayoutTable]
	kern Lazy[*KernTable]
	fvar Lazy[*FVarTable]
	avar Lazy[*AVarTable]
	colr Lazy[*COLRTable]
	cpal Lazy[*CPALTable]
	sbix Lazy[*SBixTable]
}

// FontHeader is the offset table at the start of a font's table directory.
// If the font file contains only one font, the table directory will begin at byte 0
// of the file. For collections, the beginning of the table directory for each font
// is indicated in the collection header.
//
// OpenType fonts that contain TrueType outlines use the value of 0x00010000
// for the Flavor. OpenType fonts containing CFF data use 'OTTO'.
// Apple's specification for TrueType fonts allows for 'true' as well.
type FontHeader struct {
	Flavor     Tag
	TableCount uint16
}

// Flavors of sfnt fonts.
const (
	FlavorTrueType Tag = 0x00010000
	FlavorOpenType Tag = 0x4f54544f // OTTO
	FlavorApple    Tag = 0x74727565 // true
)

// TableRecord is an entry of a font's table directory.
type TableRecord struct {
	Tag      Tag
	Checksum uint32
	Offset   uint32 // offset within the font file (0 for tables of decompressed containers)
	Length   uint32
	data     binarySegm
}

// Table returns the binary data of the font table for a given tag.
// If a table for a tag cannot be found in the font, nil is returned.
//
// Table tag names are case-sensitive, following the names in the OpenType specification,
// e.g. 'cmap', 'OS/2' or 'CFF '.
func (otf *Font) Table(tag Tag) []byte {
	if rec, ok := otf.tables[tag]; ok {
		return rec.data
	}
	return nil
}

// HasTable returns true if the font contains a table for tag.
func (otf *Font) HasTable(tag Tag) bool {
	_, ok := otf.tables[tag]
	return ok
}

// TableTags returns a list of tags, one for each table contained in the font,
// sorted ascending.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// TableRecord returns the directory entry for tag.
func (otf *Font) TableRecord(tag Tag) (TableRecord, bool) {
	if rec, ok := otf.tables[tag]; ok {
		return *rec, true
	}
	return TableRecord{}, false
}

// cursor returns a cursor on table tag, or nil if the table is missing.
func (otf *Font) cursor(tag Tag) *Cursor {
	rec, ok := otf.tables[tag]
	if !ok {
		return nil
	}
	return newCursorAt(rec.data, tag, int(rec.Offset))
}

// NumGlyphs returns the number of glyphs in the font, as stated in table 'maxp'.
func (otf *Font) NumGlyphs() int {
	return int(otf.MaxP.NumGlyphs)
}

// UnitsPerEm returns the font's design units per em.
func (otf *Font) UnitsPerEm() uint16 {
	return otf.Head.UnitsPerEm
}

// IsCFF returns true if the font carries CFF outlines.
func (otf *Font) IsCFF() bool {
	return otf.HasTable(T("CFF "))
}

// Warnings returns all warnings encountered during font parsing.
// Warnings indicate potential issues that are generally safe to ignore.
func (otf *Font) Warnings() []FontWarning {
	if otf.ec.warnings == nil {
		return []FontWarning{}
	}
	return otf.ec.warnings
}

// Errors returns all non-fatal errors encountered while decoding tables with
// lenient decoders.
func (otf *Font) Errors() []FontError {
	if otf.ec.errors == nil {
		return []FontError{}
	}
	return otf.ec.errors
}

// --- Glyph index -----------------------------------------------------------

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// DeletedGlyph is used by layout engines to mark glyph positions as deleted.
const DeletedGlyph GlyphIndex = 0xffff

// --- Tag -------------------------------------------------------------------

// Tag is defined by the spec as:
// Array of four uint8s (length = 32 bits) used to identify a table,
// design-variation axis, script, language system, feature, or baseline
type Tag uint32

// Frequently used tags
var (
	DFLT = T("DFLT")
	dflt = T("dflt")
)

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append(b[:len(b):len(b)], []byte("    ")[:4-len(b)]...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

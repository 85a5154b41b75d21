package fontkit

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"

	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/otquery"
)

// Format is the container format of a font file.
type Format uint8

// Container formats.
const (
	FormatUnknown    Format = iota
	FormatSFNT              // bare TrueType or OpenType file
	FormatWOFF              // WOFF 1.0
	FormatCollection        // TrueType collection (*.ttc)
	FormatDFont             // Macintosh resource fork with 'sfnt' resources
)

func (f Format) String() string {
	switch f {
	case FormatSFNT:
		return "sfnt"
	case FormatWOFF:
		return "WOFF"
	case FormatCollection:
		return "TTC"
	case FormatDFont:
		return "dfont"
	}
	return "unknown"
}

var (
	tagWOFF  = ot.T("wOFF")
	tagTTC   = ot.T("ttcf")
	tagDFont = ot.T("sfnt") // resource type of fonts in a resource fork
)

// Sniff determines the container format of font data from its magic number.
// Resource forks carry no magic; they are recognized by a resource map
// containing 'sfnt' resources.
func Sniff(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}
	switch magic := ot.MakeTag(data[:4]); magic {
	case ot.FlavorTrueType, ot.FlavorOpenType, ot.FlavorApple:
		return FormatSFNT
	case tagWOFF:
		return FormatWOFF
	case tagTTC:
		return FormatCollection
	}
	if refs, err := parseDFont(data); err == nil && len(refs) > 0 {
		return FormatDFont
	}
	return FormatUnknown
}

// Open parses font data of any supported container format. For collections
// and resource forks, the first font is returned.
//
// Fonts whose only character map uses a legacy encoding without converter
// are rejected with an error wrapping ot.ErrEncodingUnavailable.
func Open(data []byte) (*Font, error) {
	format := Sniff(data)
	switch format {
	case FormatSFNT:
		otf, err := ot.Parse(data)
		if err != nil {
			return nil, err
		}
		return newFont(otf, format)
	case FormatWOFF:
		otf, err := parseWOFF(data)
		if err != nil {
			return nil, err
		}
		return newFont(otf, format)
	case FormatCollection, FormatDFont:
		c, err := OpenCollection(data)
		if err != nil {
			return nil, err
		}
		return c.Font(0)
	}
	return nil, ot.FormatError(0, "header", "unknown font container format")
}

// --- Collections -----------------------------------------------------------

// Collection is a container holding more than one font: a TrueType collection
// or a resource fork. Fonts are parsed on request.
type Collection struct {
	Format  Format
	Version uint32 // TTC header version, 0 for resource forks
	data    []byte
	entries []collectionEntry
	single  *Font
}

type collectionEntry struct {
	offset, length int
}

// OpenCollection parses the header of a TrueType collection or a resource
// fork. Single fonts are accepted as collections of one font.
func OpenCollection(data []byte) (*Collection, error) {
	c := &Collection{Format: Sniff(data), data: data}
	var err error
	switch c.Format {
	case FormatCollection:
		err = c.parseTTC()
	case FormatDFont:
		var refs []collectionEntry
		if refs, err = parseDFont(data); err == nil {
			c.entries = refs
		}
	case FormatSFNT, FormatWOFF:
		c.single, err = Open(data)
	default:
		err = ot.FormatError(0, "header", "unknown font container format")
	}
	if err != nil {
		return nil, err
	}
	tracer().Infof("opened %s collection with %d fonts", c.Format, c.Len())
	return c, nil
}

func (c *Collection) parseTTC() error {
	cur := ot.NewCursor(c.data, tagTTC).Section("header")
	cur.Skip(4) // 'ttcf'
	c.Version = cur.U32()
	if c.Version != 0x00010000 && c.Version != 0x00020000 {
		return ot.FormatError(tagTTC, "header", "unsupported collection version %x", c.Version)
	}
	n := int(cur.U32())
	if n <= 0 || n > cur.Remaining()/4 {
		return ot.FormatError(tagTTC, "header", "implausible font count %d", n)
	}
	for _, off := range cur.U32s(n) {
		c.entries = append(c.entries, collectionEntry{offset: int(off), length: -1})
	}
	if c.Version == 0x00020000 {
		cur.Section("DSIG")
		cur.Skip(12) // dsigTag, dsigLength, dsigOffset
	}
	return cur.Err()
}

// parseDFont locates the 'sfnt' resources of a resource fork. Resource data
// is prefixed by its length.
func parseDFont(data []byte) ([]collectionEntry, error) {
	c := ot.NewCursor(data, tagDFont).Section("resource header")
	dataOffset := int(c.U32())
	mapOffset := int(c.U32())
	if c.Err() != nil {
		return nil, c.Err()
	}
	m := c.At(mapOffset).Section("resource map")
	m.Skip(24) // copy of header, handle, file reference, attributes
	types := m.At(int(m.U16())).Section("type list")
	count := int(types.U16()) + 1
	var entries []collectionEntry
	for i := 0; i < count && types.Err() == nil; i++ {
		name := types.Tag()
		refCount := int(types.U16()) + 1
		refs := types.At(int(types.U16())).Section("reference list")
		if name != tagDFont {
			continue
		}
		for j := 0; j < refCount; j++ {
			refs.Skip(5) // id, name offset, attributes
			pos := dataOffset + int(refs.U24())
			refs.Skip(4) // handle
			length := c.At(pos).Section("resource data")
			n := int(length.U32())
			if err := refs.Err(); err != nil {
				return nil, err
			}
			if err := length.Err(); err != nil {
				return nil, err
			}
			entries = append(entries, collectionEntry{offset: pos + 4, length: n})
		}
	}
	if err := types.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ot.FormatError(tagDFont, "type list", "resource fork contains no fonts")
	}
	return entries, nil
}

// Len returns the number of fonts in the collection.
func (c *Collection) Len() int {
	if c.single != nil {
		return 1
	}
	return len(c.entries)
}

// Font parses the i-th font of the collection.
func (c *Collection) Font(i int) (*Font, error) {
	if c.single != nil && i == 0 {
		return c.single, nil
	}
	if i < 0 || i >= len(c.entries) {
		return nil, fmt.Errorf("font %d of %d: %w", i, c.Len(), ErrFontNotFound)
	}
	e := c.entries[i]
	var otf *ot.Font
	var err error
	if c.Format == FormatDFont {
		if e.offset+e.length > len(c.data) || e.length < 0 {
			return nil, ot.FormatError(tagDFont, "resource data", "font %d exceeds resource fork", i)
		}
		// offsets of fonts in resource forks are relative to the resource
		otf, err = ot.Parse(c.data[e.offset : e.offset+e.length])
	} else {
		otf, err = ot.ParseAt(c.data, e.offset)
	}
	if err != nil {
		return nil, fmt.Errorf("font %d of collection: %w", i, err)
	}
	return newFont(otf, c.Format)
}

// Fonts parses all fonts of the collection.
func (c *Collection) Fonts() ([]*Font, error) {
	fonts := make([]*Font, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		f, err := c.Font(i)
		if err != nil {
			return nil, err
		}
		fonts = append(fonts, f)
	}
	return fonts, nil
}

// FontByName returns the font of the collection with the given PostScript name.
func (c *Collection) FontByName(postscriptName string) (*Font, error) {
	for i := 0; i < c.Len(); i++ {
		f, err := c.Font(i)
		if err != nil {
			return nil, err
		}
		if otquery.PostScriptName(f.OT) == postscriptName {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", postscriptName, ErrFontNotFound)
}

// --- WOFF ------------------------------------------------------------------

// parseWOFF extracts and inflates the tables of a WOFF 1.0 font.
func parseWOFF(data []byte) (*ot.Font, error) {
	c := ot.NewCursor(data, tagWOFF).Section("header")
	c.Skip(4) // 'wOFF'
	flavor := c.Tag()
	c.Skip(4) // length
	n := int(c.U16())
	c.Skip(2)  // reserved
	c.Skip(4)  // totalSfntSize
	c.Skip(4)  // version
	c.Skip(20) // metadata and private block
	if c.Err() != nil {
		return nil, c.Err()
	}
	c.Section("table directory")
	tables := make(map[ot.Tag][]byte, n)
	for i := 0; i < n; i++ {
		tag := c.Tag()
		offset, compLength, origLength := int(c.U32()), int(c.U32()), int(c.U32())
		c.Skip(4) // origChecksum
		if c.Err() != nil {
			return nil, c.Err()
		}
		raw := c.Sub(offset, compLength)
		if err := raw.Err(); err != nil {
			return nil, err
		}
		switch {
		case compLength == origLength:
			tables[tag] = raw.Data()
		case compLength < origLength:
			table, err := inflate(tag, raw.Data(), origLength)
			if err != nil {
				return nil, err
			}
			tables[tag] = table
		default:
			return nil, ot.FormatError(tagWOFF, "table directory",
				"table %s: compressed length %d exceeds original length %d", tag, compLength, origLength)
		}
	}
	tracer().Debugf("WOFF font with %d tables, flavor %x", n, uint32(flavor))
	return ot.ParseTables(flavor, tables)
}

// Limits for inflating WOFF tables. Deflate cannot compress better than
// about 1:1032, so larger claimed ratios are corrupt.
const (
	MaxTableSize    = 64 << 20
	maxInflateRatio = 1032
)

// inflate decompresses a zlib stream of a WOFF table. The inflated table must
// have exactly size bytes.
func inflate(tag ot.Tag, data []byte, size int) ([]byte, error) {
	if len(data) < 2 {
		return nil, ot.FormatError(tagWOFF, "table data", "table %s: truncated zlib stream", tag)
	}
	if size > MaxTableSize || size > maxInflateRatio*len(data) {
		return nil, ot.FormatError(tagWOFF, "table data",
			"table %s: original length %d too large for %d compressed bytes", tag, size, len(data))
	}
	r := flate.NewReader(bytes.NewReader(data[2:])) // skip zlib header
	defer r.Close()
	table := make([]byte, size)
	if _, err := io.ReadFull(r, table); err != nil {
		return nil, ot.FormatError(tagWOFF, "table data", "table %s: %v", tag, err)
	}
	if n, _ := r.Read(make([]byte, 1)); n > 0 {
		return nil, ot.FormatError(tagWOFF, "table data", "table %s inflates to more than %d bytes", tag, size)
	}
	return table, nil
}

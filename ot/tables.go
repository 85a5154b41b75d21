package ot

import "fmt"

// --- head ------------------------------------------------------------------

// HeadTable gives global information about the font.
type HeadTable struct {
	FontRevision       float64
	ChecksumAdjustment uint32
	MagicNumber        uint32
	Flags              uint16
	UnitsPerEm         uint16
	Created            int64
	Modified           int64
	XMin, YMin         int16
	XMax, YMax         int16
	MacStyle           uint16
	LowestRecPPEM      uint16
	FontDirectionHint  int16
	IndexToLocFormat   int16 // 0 for short offsets, 1 for long
	GlyphDataFormat    int16
}

// Bits of HeadTable.MacStyle.
const (
	MacStyleBold   = 0x0001
	MacStyleItalic = 0x0002
)

func errMissingTable(tag Tag) error {
	return FormatError(tag, "directory", "missing required table")
}

func parseHead(c *Cursor) (*HeadTable, error) {
	if c == nil {
		return nil, errMissingTable(T("head"))
	}
	c.Section("header")
	if major := c.U16(); major != 1 {
		return nil, FormatError(T("head"), "version", "unsupported version %d", major)
	}
	c.Skip(2)
	h := &HeadTable{
		FontRevision:       c.Fixed(),
		ChecksumAdjustment: c.U32(),
		MagicNumber:        c.U32(),
		Flags:              c.U16(),
		UnitsPerEm:         c.U16(),
		Created:            int64(c.U32())<<32 | int64(c.U32()),
		Modified:           int64(c.U32())<<32 | int64(c.U32()),
		XMin:               c.I16(),
		YMin:               c.I16(),
		XMax:               c.I16(),
		YMax:               c.I16(),
		MacStyle:           c.U16(),
		LowestRecPPEM:      c.U16(),
		FontDirectionHint:  c.I16(),
		IndexToLocFormat:   c.I16(),
		GlyphDataFormat:    c.I16(),
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	if h.UnitsPerEm < 16 || h.UnitsPerEm > 16384 {
		return nil, FormatError(T("head"), "unitsPerEm", "illegal units per em: %d", h.UnitsPerEm)
	}
	return h, nil
}

// --- maxp ------------------------------------------------------------------

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
// Version 0.5 (CFF fonts) carries only the glyph count, version 1.0 carries
// the TrueType limits as well.
type MaxPTable struct {
	Version               uint32
	NumGlyphs             uint16
	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxZones              uint16
	MaxTwilightPoints     uint16
	MaxStorage            uint16
	MaxFunctionDefs       uint16
	MaxInstructionDefs    uint16
	MaxStackElements      uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}

func parseMaxP(c *Cursor) (*MaxPTable, error) {
	if c == nil {
		return nil, errMissingTable(T("maxp"))
	}
	c.Section("header")
	m := &MaxPTable{Version: c.U32(), NumGlyphs: c.U16()}
	switch m.Version {
	case 0x00005000:
	case 0x00010000:
		m.MaxPoints = c.U16()
		m.MaxContours = c.U16()
		m.MaxCompositePoints = c.U16()
		m.MaxCompositeContours = c.U16()
		m.MaxZones = c.U16()
		m.MaxTwilightPoints = c.U16()
		m.MaxStorage = c.U16()
		m.MaxFunctionDefs = c.U16()
		m.MaxInstructionDefs = c.U16()
		m.MaxStackElements = c.U16()
		m.MaxSizeOfInstructions = c.U16()
		m.MaxComponentElements = c.U16()
		m.MaxComponentDepth = c.U16()
	default:
		return nil, FormatError(T("maxp"), "version", "unsupported version %x", m.Version)
	}
	return m, c.Err()
}

// --- hhea / vhea -----------------------------------------------------------

// MetricsHeader contains information for horizontal ('hhea') or vertical ('vhea')
// layout. Both tables share the same layout; for 'vhea' Ascender and Descender
// are the vertical typographic ascender and descender.
type MetricsHeader struct {
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceMax          uint16
	MinLeadingBearing   int16
	MinTrailingBearing  int16
	MaxExtent           int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	NumberOfLongMetrics uint16
}

func parseMetricsHeader(c *Cursor) (*MetricsHeader, error) {
	c.Section("header")
	c.Skip(4) // version
	h := &MetricsHeader{
		Ascender:           c.I16(),
		Descender:          c.I16(),
		LineGap:            c.I16(),
		AdvanceMax:         c.U16(),
		MinLeadingBearing:  c.I16(),
		MinTrailingBearing: c.I16(),
		MaxExtent:          c.I16(),
		CaretSlopeRise:     c.I16(),
		CaretSlopeRun:      c.I16(),
		CaretOffset:        c.I16(),
	}
	c.Skip(8) // reserved
	c.Skip(2) // metricDataFormat
	h.NumberOfLongMetrics = c.U16()
	return h, c.Err()
}

// HHea returns the font's 'hhea' table, or nil if the font does not contain one.
func (otf *Font) HHea() (*MetricsHeader, error) {
	return otf.hhea.Get(func() (*MetricsHeader, error) {
		c := otf.cursor(T("hhea"))
		if c == nil {
			return nil, nil
		}
		return parseMetricsHeader(c)
	})
}

// VHea returns the font's 'vhea' table, or nil if the font does not contain one.
func (otf *Font) VHea() (*MetricsHeader, error) {
	return otf.vhea.Get(func() (*MetricsHeader, error) {
		c := otf.cursor(T("vhea"))
		if c == nil {
			return nil, nil
		}
		return parseMetricsHeader(c)
	})
}

// --- hmtx / vmtx -----------------------------------------------------------

// LongMetric is an entry of the metrics array of 'hmtx' or 'vmtx'.
type LongMetric struct {
	Advance uint16
	Bearing int16
}

// MetricsTable contains metric information for horizontal ('hmtx') or vertical
// ('vmtx') layout of each of the glyphs in the font. Each element in the contained
// metrics array has two parts: the advance and the side bearing.
// Optionally, an array of side bearings follows. The corresponding glyphs are
// assumed to have the same advance as that found in the last entry in the
// metrics array.
type MetricsTable struct {
	Metrics  []LongMetric
	Bearings []int16
}

// Metric returns advance and side bearing of glyph gid.
func (t *MetricsTable) Metric(gid GlyphIndex) LongMetric {
	if t == nil || len(t.Metrics) == 0 {
		return LongMetric{}
	}
	if int(gid) < len(t.Metrics) {
		return t.Metrics[gid]
	}
	m := LongMetric{Advance: t.Metrics[len(t.Metrics)-1].Advance}
	if i := int(gid) - len(t.Metrics); i < len(t.Bearings) {
		m.Bearing = t.Bearings[i]
	}
	return m
}

func parseMetricsTable(c *Cursor, numLong, numGlyphs int) (*MetricsTable, error) {
	if numLong == 0 {
		return nil, FormatError(c.Table(), "metrics", "number of long metrics is 0")
	}
	c.Section("long metrics")
	t := &MetricsTable{Metrics: make([]LongMetric, numLong)}
	for i := range t.Metrics {
		t.Metrics[i] = LongMetric{Advance: c.U16(), Bearing: c.I16()}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	// fonts in the wild sometimes truncate the trailing bearings
	n := numGlyphs - numLong
	if avail := c.Remaining() / 2; n > avail {
		n = avail
	}
	if n > 0 {
		t.Bearings = c.Section("bearings").I16s(n)
	}
	return t, c.Err()
}

// HMtx returns the font's 'hmtx' table, or nil if the font does not contain one.
func (otf *Font) HMtx() (*MetricsTable, error) {
	return otf.hmtx.Get(func() (*MetricsTable, error) {
		c := otf.cursor(T("hmtx"))
		if c == nil {
			return nil, nil
		}
		hhea, err := otf.HHea()
		if err != nil {
			return nil, err
		} else if hhea == nil {
			return nil, errMissingTable(T("hhea"))
		}
		return parseMetricsTable(c, int(hhea.NumberOfLongMetrics), otf.NumGlyphs())
	})
}

// VMtx returns the font's 'vmtx' table, or nil if the font does not contain one.
func (otf *Font) VMtx() (*MetricsTable, error) {
	return otf.vmtx.Get(func() (*MetricsTable, error) {
		c := otf.cursor(T("vmtx"))
		if c == nil {
			return nil, nil
		}
		vhea, err := otf.VHea()
		if err != nil {
			return nil, err
		} else if vhea == nil {
			return nil, errMissingTable(T("vhea"))
		}
		return parseMetricsTable(c, int(vhea.NumberOfLongMetrics), otf.NumGlyphs())
	})
}

// --- OS/2 ------------------------------------------------------------------

// OS2Table contains the OS/2 and Windows specific metrics of a font.
// Fields introduced with later versions of the table are zero for earlier versions.
type OS2Table struct {
	Version            uint16
	XAvgCharWidth      int16
	WeightClass        uint16
	WidthClass         uint16
	FsType             uint16
	SubscriptXSize     int16
	SubscriptYSize     int16
	SubscriptXOffset   int16
	SubscriptYOffset   int16
	SuperscriptXSize   int16
	SuperscriptYSize   int16
	SuperscriptXOffset int16
	SuperscriptYOffset int16
	StrikeoutSize      int16
	StrikeoutPosition  int16
	FamilyClass        int16
	Panose             [10]byte
	UnicodeRange       [4]uint32
	VendorID           Tag
	FsSelection        uint16
	FirstCharIndex     uint16
	LastCharIndex      uint16
	TypoAscender       int16
	TypoDescender      int16
	TypoLineGap        int16
	WinAscent          uint16
	WinDescent         uint16
	CodePageRange      [2]uint32 // version ≥ 1
	XHeight            int16     // version ≥ 2
	CapHeight          int16     // version ≥ 2
	DefaultChar        uint16    // version ≥ 2
	BreakChar          uint16    // version ≥ 2
	MaxContext         uint16    // version ≥ 2
}

// Bits of OS2Table.FsSelection
const (
	FsSelectionItalic        = 0x0001
	FsSelectionBold          = 0x0020
	FsSelectionRegular       = 0x0040
	FsSelectionUseTypoMetric = 0x0080
)

func parseOS2(c *Cursor) (*OS2Table, error) {
	c.Section("version 0")
	t := &OS2Table{
		Version:            c.U16(),
		XAvgCharWidth:      c.I16(),
		WeightClass:        c.U16(),
		WidthClass:         c.U16(),
		FsType:             c.U16(),
		SubscriptXSize:     c.I16(),
		SubscriptYSize:     c.I16(),
		SubscriptXOffset:   c.I16(),
		SubscriptYOffset:   c.I16(),
		SuperscriptXSize:   c.I16(),
		SuperscriptYSize:   c.I16(),
		SuperscriptXOffset: c.I16(),
		SuperscriptYOffset: c.I16(),
		StrikeoutSize:      c.I16(),
		StrikeoutPosition:  c.I16(),
		FamilyClass:        c.I16(),
	}
	copy(t.Panose[:], c.Bytes(10))
	for i := range t.UnicodeRange {
		t.UnicodeRange[i] = c.U32()
	}
	t.VendorID = c.Tag()
	t.FsSelection = c.U16()
	t.FirstCharIndex = c.U16()
	t.LastCharIndex = c.U16()
	// Apple's early fonts end here
	if c.Remaining() < 10 {
		return t, c.Err()
	}
	t.TypoAscender = c.I16()
	t.TypoDescender = c.I16()
	t.TypoLineGap = c.I16()
	t.WinAscent = c.U16()
	t.WinDescent = c.U16()
	if t.Version >= 1 {
		c.Section("version 1")
		t.CodePageRange[0] = c.U32()
		t.CodePageRange[1] = c.U32()
	}
	if t.Version >= 2 {
		c.Section("version 2")
		t.XHeight = c.I16()
		t.CapHeight = c.I16()
		t.DefaultChar = c.U16()
		t.BreakChar = c.U16()
		t.MaxContext = c.U16()
	}
	return t, c.Err()
}

// OS2 returns the font's 'OS/2' table, or nil if the font does not contain one.
func (otf *Font) OS2() (*OS2Table, error) {
	return otf.os2.Get(func() (*OS2Table, error) {
		c := otf.cursor(T("OS/2"))
		if c == nil {
			return nil, nil
		}
		return parseOS2(c)
	})
}

// --- post ------------------------------------------------------------------

// PostTable contains information needed to use the font on a PostScript printer.
// For version 2.0 it contains the glyph names as well.
type PostTable struct {
	Version            uint32
	ItalicAngle        float64
	UnderlinePosition  int16
	UnderlineThickness int16
	IsFixedPitch       bool
	glyphNameIndex     []uint16
	names              []string
}

// GlyphName returns the PostScript name of a glyph, if the table contains glyph names.
func (t *PostTable) GlyphName(gid GlyphIndex) string {
	if t == nil {
		return ""
	}
	switch t.Version {
	case 0x00010000:
		if int(gid) < len(macGlyphNames) {
			return macGlyphNames[gid]
		}
	case 0x00020000:
		if int(gid) >= len(t.glyphNameIndex) {
			return ""
		}
		inx := int(t.glyphNameIndex[gid])
		if inx < len(macGlyphNames) {
			return macGlyphNames[inx]
		}
		if inx -= len(macGlyphNames); inx < len(t.names) {
			return t.names[inx]
		}
	}
	return ""
}

func parsePost(c *Cursor) (*PostTable, error) {
	c.Section("header")
	t := &PostTable{
		Version:            c.U32(),
		ItalicAngle:        c.Fixed(),
		UnderlinePosition:  c.I16(),
		UnderlineThickness: c.I16(),
		IsFixedPitch:       c.U32() != 0,
	}
	c.Skip(16) // memory usage hints
	if t.Version != 0x00020000 || c.Err() != nil {
		return t, c.Err()
	}
	c.Section("glyph names")
	n := int(c.U16())
	t.glyphNameIndex = c.U16s(n)
	for c.Remaining() > 0 && c.Err() == nil {
		l := int(c.U8())
		t.names = append(t.names, string(c.Bytes(l)))
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// Post returns the font's 'post' table, or nil if the font does not contain one.
func (otf *Font) Post() (*PostTable, error) {
	return otf.post.Get(func() (*PostTable, error) {
		c := otf.cursor(T("post"))
		if c == nil {
			return nil, nil
		}
		return parsePost(c)
	})
}

// --- loca ------------------------------------------------------------------

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table.
// By definition, index zero points to the “missing character”, which is the character
// that appears if a character is not found in the font.
type LocaTable struct {
	Offsets []uint32 // numGlyphs+1 entries
}

// Location returns the offset and length of the outline data of glyph gid within
// table 'glyf'. A glyph without outline has length 0.
func (t *LocaTable) Location(gid GlyphIndex) (uint32, uint32) {
	if t == nil || int(gid)+1 >= len(t.Offsets) {
		return 0, 0
	}
	from, to := t.Offsets[gid], t.Offsets[gid+1]
	if to < from {
		return from, 0
	}
	return from, to - from
}

// Loca returns the font's 'loca' table, or nil if the font does not contain one.
func (otf *Font) Loca() (*LocaTable, error) {
	return otf.loca.Get(func() (*LocaTable, error) {
		c := otf.cursor(T("loca"))
		if c == nil {
			return nil, nil
		}
		n := otf.NumGlyphs() + 1
		t := &LocaTable{Offsets: make([]uint32, n)}
		c.Section(fmt.Sprintf("format %d", otf.Head.IndexToLocFormat))
		if otf.Head.IndexToLocFormat == 0 {
			for i, off := range c.U16s(n) {
				t.Offsets[i] = uint32(off) * 2
			}
		} else {
			copy(t.Offsets, c.U32s(n))
		}
		return t, c.Err()
	})
}

// --- name ------------------------------------------------------------------

// NameRecord is an entry of table 'name'. Value holds the raw, still encoded
// string bytes.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	Value      []byte
}

// NameTable holds the records of table 'name'. Decoding of the strings is left
// to clients (see package otquery).
type NameTable struct {
	Records []NameRecord
}

// Name returns the name table, or nil if the font does not contain one.
func (otf *Font) Name() (*NameTable, error) {
	return otf.name.Get(func() (*NameTable, error) {
		c := otf.cursor(T("name"))
		if c == nil {
			return nil, nil
		}
		c.Section("header")
		c.Skip(2) // format 0 or 1; language tags of format 1 are not used
		count := int(c.U16())
		strings := c.At(int(c.U16()))
		c.Section("name records")
		t := &NameTable{}
		for i := 0; i < count; i++ {
			r := NameRecord{
				PlatformID: c.U16(),
				EncodingID: c.U16(),
				LanguageID: c.U16(),
				NameID:     c.U16(),
			}
			length, offset := int(c.U16()), int(c.U16())
			if c.Err() != nil {
				break
			}
			s := strings.Sub(offset, length)
			if s.Err() != nil {
				otf.ec.addWarning(T("name"), fmt.Sprintf("name record %d out of bounds", i), 0)
				continue
			}
			r.Value = s.Data()
			t.Records = append(t.Records, r)
		}
		return t, c.Err()
	})
}

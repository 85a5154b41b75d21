package ot

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"golang.org/x/text/encoding"
)

// CMap is the decoded character to glyph index mapping table of a font.
//
// From the OpenType specification: This table defines the mapping of character codes to the glyph index
// values used in the font. It may contain more than one subtable, in order to support
// more than one character encoding scheme.
//
// On creation, CMap selects one subtable for lookups. Full-repertoire Unicode
// subtables are preferred over BMP-only Unicode subtables, which are preferred
// over any legacy encoding. Legacy encodings are handled by re-encoding code
// points with a converter from golang.org/x/text. A font lacking a Unicode
// subtable and a convertible legacy subtable is rejected.
//
// CMap is not safe for concurrent use.
type CMap struct {
	Records    []CMapRecord // all encoding records of the table
	PlatformID uint16       // platform of the selected subtable
	EncodingID uint16       // encoding of the selected subtable
	table      cmapSubtable
	uvs        *cmapFormat14
	legacy     encoding.Encoding // nil for Unicode subtables
	symbol     bool              // Windows symbol encoding
	asciiOnly  bool
	reverse    Lazy[map[GlyphIndex][]rune]
}

// CMapRecord is an encoding record of table 'cmap'.
type CMapRecord struct {
	PlatformID uint16
	EncodingID uint16
	Offset     uint32
	Format     uint16
}

// Preference order of Unicode subtables, as (platform, encoding) pairs.
var unicodeSubtables = [][2]uint16{
	{3, 10}, {0, 6}, {0, 4}, {3, 1}, {0, 3}, {0, 2}, {0, 1}, {0, 0},
}

// CMap returns the font's decoded 'cmap' table.
func (otf *Font) CMap() (*CMap, error) {
	return otf.cmap.Get(func() (*CMap, error) {
		c := otf.cursor(T("cmap"))
		if c == nil {
			return nil, errMissingTable(T("cmap"))
		}
		return ParseCMap(c.Data())
	})
}

// ParseCMap decodes a 'cmap' table and selects the subtable to use for lookups.
func ParseCMap(data []byte) (*CMap, error) {
	c := NewCursor(data, T("cmap")).Section("header")
	c.Skip(2) // version
	n := int(c.U16())
	if n > MaxCmapSubtables {
		return nil, FormatError(T("cmap"), "header", "too many encoding records: %d", n)
	}
	cmap := &CMap{}
	c.Section("encoding records")
	for i := 0; i < n; i++ {
		rec := CMapRecord{PlatformID: c.U16(), EncodingID: c.U16(), Offset: c.U32()}
		rec.Format = c.At(int(rec.Offset)).U16()
		cmap.Records = append(cmap.Records, rec)
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	find := func(platform, enc uint16) (CMapRecord, bool) {
		for _, rec := range cmap.Records {
			if rec.PlatformID == platform && rec.EncodingID == enc {
				return rec, true
			}
		}
		return CMapRecord{}, false
	}
	var selected *CMapRecord
	for _, pe := range unicodeSubtables {
		if rec, ok := find(pe[0], pe[1]); ok {
			selected = &rec
			break
		}
	}
	if selected != nil {
		sub, err := parseCmapSubtable(c.At(int(selected.Offset)))
		if err != nil {
			return nil, err
		}
		cmap.table = sub
	} else {
		for i := range cmap.Records {
			rec := cmap.Records[i]
			sub, err := parseCmapSubtable(c.At(int(rec.Offset)))
			if err != nil {
				tracer().Debugf("cmap: skipping legacy subtable (%d,%d): %v", rec.PlatformID, rec.EncodingID, err)
				continue
			}
			enc, symbol, ascii := legacyEncoding(rec.PlatformID, rec.EncodingID, sub.language())
			if enc == nil && !symbol {
				continue
			}
			cmap.table, cmap.legacy, cmap.symbol, cmap.asciiOnly = sub, enc, symbol, ascii
			selected = &rec
			break
		}
		if selected == nil {
			return nil, &FontError{
				Table:    T("cmap"),
				Section:  "encoding records",
				Issue:    "no Unicode subtable and no convertible legacy encoding",
				Severity: SeverityCritical,
				Kind:     ErrEncodingUnavailable,
			}
		}
	}
	cmap.PlatformID, cmap.EncodingID = selected.PlatformID, selected.EncodingID
	tracer().Debugf("cmap: selected subtable (%d,%d) of format %d",
		selected.PlatformID, selected.EncodingID, selected.Format)
	if rec, ok := find(0, 5); ok && rec.Format == 14 {
		uvs, err := parseCmapFormat14(c.At(int(rec.Offset)))
		if err != nil {
			return nil, err
		}
		cmap.uvs = uvs
	}
	return cmap, nil
}

// Format returns the format of the subtable selected for lookups.
func (cmap *CMap) Format() int {
	return cmap.table.format()
}

// IsUnicode returns true if the selected subtable maps Unicode code points.
func (cmap *CMap) IsUnicode() bool {
	return cmap.legacy == nil && !cmap.symbol
}

// Lookup returns the glyph index for code point r. If r is followed by a
// variation selector vs (0 for none), the font's variation sequences are consulted
// first. If no mapping is found, 0 (.notdef) is returned.
func (cmap *CMap) Lookup(r rune, vs rune) GlyphIndex {
	if cmap == nil {
		return 0
	}
	if cmap.IsUnicode() {
		if vs != 0 {
			if gid := cmap.VariationGlyph(r, vs); gid != 0 {
				return gid
			}
		}
		return cmap.table.lookup(uint32(r))
	}
	if cmap.symbol {
		if gid := cmap.table.lookup(uint32(r)); gid != 0 || r > 0xff {
			return gid
		}
		return cmap.table.lookup(0xf000 | uint32(r))
	}
	code, ok := cmap.encode(r)
	if !ok {
		return 0
	}
	return cmap.table.lookup(code)
}

// encode converts a code point to a legacy character code. Multi-byte codes are
// packed big-endian.
func (cmap *CMap) encode(r rune) (uint32, bool) {
	if cmap.asciiOnly && r > 0x7f {
		return 0, false
	}
	b, err := cmap.legacy.NewEncoder().Bytes([]byte(string(r)))
	if err != nil || len(b) == 0 || len(b) > 4 {
		return 0, false
	}
	var code uint32
	for _, x := range b {
		code = code<<8 | uint32(x)
	}
	return code, true
}

// decode converts a legacy character code back to a code point.
func (cmap *CMap) decode(code uint32) (rune, bool) {
	if cmap.IsUnicode() || cmap.symbol {
		return rune(code), true
	}
	var b []byte
	switch {
	case code <= 0xff:
		b = []byte{byte(code)}
	case code <= 0xffff:
		b = []byte{byte(code >> 8), byte(code)}
	default:
		b = []byte{byte(code >> 16), byte(code >> 8), byte(code)}
	}
	u, err := cmap.legacy.NewDecoder().Bytes(b)
	if err != nil {
		return 0, false
	}
	r, size := utf8.DecodeRune(u)
	if r == utf8.RuneError || size != len(u) {
		return 0, false
	}
	return r, true
}

// VariationGlyph returns the glyph for a Unicode variation sequence (r, vs).
// It returns 0 if the font does not contain the sequence or if the sequence maps to
// the default glyph of r.
func (cmap *CMap) VariationGlyph(r rune, vs rune) GlyphIndex {
	if cmap == nil || cmap.uvs == nil {
		return 0
	}
	return cmap.uvs.lookupVariation(uint32(r), uint32(vs))
}

// HasVariationSequences returns true if the font has a format 14 subtable.
func (cmap *CMap) HasVariationSequences() bool {
	return cmap != nil && cmap.uvs != nil
}

// CharacterSet returns all code points which map to a glyph other than .notdef,
// in ascending order.
func (cmap *CMap) CharacterSet() []rune {
	set := treeset.NewWith(utils.RuneComparator)
	cmap.table.mappings(func(code uint32, gid GlyphIndex) {
		if gid == 0 {
			return
		}
		if r, ok := cmap.decode(code); ok {
			set.Add(r)
		}
	})
	runes := make([]rune, 0, set.Size())
	for _, v := range set.Values() {
		runes = append(runes, v.(rune))
	}
	return runes
}

// CodePointsForGlyph returns the code points mapping to glyph gid, in ascending order.
// The reverse mapping is computed on first call and memoized for the lifetime of the CMap.
func (cmap *CMap) CodePointsForGlyph(gid GlyphIndex) []rune {
	if cmap == nil {
		return nil
	}
	rev, _ := cmap.reverse.Get(func() (map[GlyphIndex][]rune, error) {
		rev := make(map[GlyphIndex][]rune)
		cmap.table.mappings(func(code uint32, g GlyphIndex) {
			if g == 0 {
				return
			}
			if r, ok := cmap.decode(code); ok {
				rev[g] = append(rev[g], r)
			}
		})
		for g, runes := range rev {
			sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
			rev[g] = runes
		}
		return rev, nil
	})
	return rev[gid]
}

// --- Subtables -------------------------------------------------------------

// cmapSubtable is implemented by every supported subtable format.
type cmapSubtable interface {
	format() int
	language() uint32
	lookup(code uint32) GlyphIndex
	// mappings calls f for every character code of the subtable, ascending.
	mappings(f func(code uint32, gid GlyphIndex))
}

// maxUnicode bounds the enumeration of range based subtables.
const maxUnicode = 0x10ffff

func parseCmapSubtable(c *Cursor) (cmapSubtable, error) {
	format := c.U16()
	c.Section(fmt.Sprintf("format %d", format))
	var sub cmapSubtable
	switch format {
	case 0:
		sub = parseCmapFormat0(c)
	case 4:
		sub = parseCmapFormat4(c)
	case 6:
		sub = parseCmapFormat6(c)
	case 10:
		sub = parseCmapFormat10(c)
	case 12, 13:
		sub = parseCmapGroups(c, format)
	default:
		// formats 2 and 8 (mixed 8/16/32 bit codes) are not implemented,
		// format 14 is never a primary subtable
		return nil, FormatError(T("cmap"), fmt.Sprintf("format %d", format), "subtable format not implemented")
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return sub, nil
}

// Format 0: byte encoding table.
type cmapFormat0 struct {
	lang     uint16
	glyphIDs []byte
}

func parseCmapFormat0(c *Cursor) *cmapFormat0 {
	c.Skip(2) // length
	return &cmapFormat0{lang: c.U16(), glyphIDs: c.Bytes(256)}
}

func (t *cmapFormat0) format() int      { return 0 }
func (t *cmapFormat0) language() uint32 { return uint32(t.lang) }

func (t *cmapFormat0) lookup(code uint32) GlyphIndex {
	if code < uint32(len(t.glyphIDs)) {
		return GlyphIndex(t.glyphIDs[code])
	}
	return 0
}

func (t *cmapFormat0) mappings(f func(uint32, GlyphIndex)) {
	for code, gid := range t.glyphIDs {
		f(uint32(code), GlyphIndex(gid))
	}
}

// Format 4: segment mapping to delta values.
// Segments are sorted ascending and do not overlap.
type cmapFormat4 struct {
	lang          uint16
	endCode       []uint16
	startCode     []uint16
	idDelta       []uint16
	idRangeOffset []uint16
	glyphIDs      []uint16
}

func parseCmapFormat4(c *Cursor) *cmapFormat4 {
	length := int(c.U16())
	t := &cmapFormat4{lang: c.U16()}
	segCount := int(c.U16()) / 2
	c.Skip(6) // searchRange, entrySelector, rangeShift
	t.endCode = c.U16s(segCount)
	c.Skip(2) // reservedPad
	t.startCode = c.U16s(segCount)
	t.idDelta = c.U16s(segCount)
	t.idRangeOffset = c.U16s(segCount)
	// glyphIdArray extends to the end of the subtable; some fonts state a
	// length beyond the end of the table
	n := (length - c.Pos()) / 2
	if avail := c.Remaining() / 2; n > avail || n < 0 {
		n = avail
	}
	t.glyphIDs = c.U16s(n)
	return t
}

func (t *cmapFormat4) format() int      { return 4 }
func (t *cmapFormat4) language() uint32 { return uint32(t.lang) }

func (t *cmapFormat4) lookup(code uint32) GlyphIndex {
	if code > 0xffff {
		return 0
	}
	lo, hi := 0, len(t.startCode)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		if code < uint32(t.startCode[mid]) {
			hi = mid - 1
		} else if code > uint32(t.endCode[mid]) {
			lo = mid + 1
		} else {
			return t.glyph(mid, code)
		}
	}
	return 0
}

// glyph maps code within segment seg.
func (t *cmapFormat4) glyph(seg int, code uint32) GlyphIndex {
	rangeOffset := int(t.idRangeOffset[seg])
	if rangeOffset == 0 {
		return GlyphIndex((code + uint32(t.idDelta[seg])) & 0xffff)
	}
	// idRangeOffset is relative to its own position in the idRangeOffset array
	inx := rangeOffset/2 + int(code-uint32(t.startCode[seg])) - (len(t.startCode) - seg)
	if inx < 0 || inx >= len(t.glyphIDs) {
		return 0
	}
	gid := uint32(t.glyphIDs[inx])
	if gid == 0 {
		return 0
	}
	return GlyphIndex((gid + uint32(t.idDelta[seg])) & 0xffff)
}

func (t *cmapFormat4) mappings(f func(uint32, GlyphIndex)) {
	for seg := range t.startCode {
		start, end := uint32(t.startCode[seg]), uint32(t.endCode[seg])
		for code := start; code <= end && code <= 0xffff; code++ {
			if code == 0xffff && seg == len(t.startCode)-1 {
				break // terminating segment
			}
			f(code, t.glyph(seg, code))
		}
	}
}

// Format 6: trimmed table mapping.
type cmapFormat6 struct {
	lang      uint16
	firstCode uint32
	glyphIDs  []uint16
}

func parseCmapFormat6(c *Cursor) *cmapFormat6 {
	c.Skip(2) // length
	t := &cmapFormat6{lang: c.U16(), firstCode: uint32(c.U16())}
	t.glyphIDs = c.U16s(int(c.U16()))
	return t
}

func (t *cmapFormat6) format() int      { return 6 }
func (t *cmapFormat6) language() uint32 { return uint32(t.lang) }

func (t *cmapFormat6) lookup(code uint32) GlyphIndex {
	return trimmedLookup(t.glyphIDs, t.firstCode, code)
}

func (t *cmapFormat6) mappings(f func(uint32, GlyphIndex)) {
	for i, gid := range t.glyphIDs {
		f(t.firstCode+uint32(i), GlyphIndex(gid))
	}
}

func trimmedLookup(glyphIDs []uint16, first, code uint32) GlyphIndex {
	if code < first || code-first >= uint32(len(glyphIDs)) {
		return 0
	}
	return GlyphIndex(glyphIDs[code-first])
}

// Format 10: trimmed array with 32-bit codes.
type cmapFormat10 struct {
	lang      uint32
	firstCode uint32
	glyphIDs  []uint16
}

func parseCmapFormat10(c *Cursor) *cmapFormat10 {
	c.Skip(6) // reserved, length
	t := &cmapFormat10{lang: c.U32(), firstCode: c.U32()}
	n := c.U32()
	if n > MaxCmapGroupCount {
		c.Fail(fmt.Sprintf("too many characters: %d", n))
		return t
	}
	t.glyphIDs = c.U16s(int(n))
	return t
}

func (t *cmapFormat10) format() int      { return 10 }
func (t *cmapFormat10) language() uint32 { return t.lang }

func (t *cmapFormat10) lookup(code uint32) GlyphIndex {
	return trimmedLookup(t.glyphIDs, t.firstCode, code)
}

func (t *cmapFormat10) mappings(f func(uint32, GlyphIndex)) {
	for i, gid := range t.glyphIDs {
		f(t.firstCode+uint32(i), GlyphIndex(gid))
	}
}

// Formats 12 and 13: segmented coverage and many-to-one range mappings.
// For format 12, a group maps its start code to its glyph and increments the glyph
// for subsequent codes; for format 13 all codes of a group map to the same glyph.
type cmapGroups struct {
	fmt    uint16
	lang   uint32
	groups []cmapGroup
}

type cmapGroup struct {
	start, end, glyph uint32
}

func parseCmapGroups(c *Cursor, format uint16) *cmapGroups {
	c.Skip(6) // reserved, length
	t := &cmapGroups{fmt: format, lang: c.U32()}
	n := c.U32()
	if n > MaxCmapGroupCount {
		c.Fail(fmt.Sprintf("too many groups: %d", n))
		return t
	}
	t.groups = make([]cmapGroup, 0, n)
	for i := 0; i < int(n) && c.Err() == nil; i++ {
		g := cmapGroup{start: c.U32(), end: c.U32(), glyph: c.U32()}
		if g.end < g.start {
			c.Fail(fmt.Sprintf("group %d: end code before start code", i))
			break
		}
		t.groups = append(t.groups, g)
	}
	return t
}

func (t *cmapGroups) format() int      { return int(t.fmt) }
func (t *cmapGroups) language() uint32 { return t.lang }

func (t *cmapGroups) lookup(code uint32) GlyphIndex {
	lo, hi := 0, len(t.groups)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		g := t.groups[mid]
		if code < g.start {
			hi = mid - 1
		} else if code > g.end {
			lo = mid + 1
		} else {
			return t.glyph(g, code)
		}
	}
	return 0
}

func (t *cmapGroups) glyph(g cmapGroup, code uint32) GlyphIndex {
	if t.fmt == 13 {
		return GlyphIndex(g.glyph)
	}
	gid := g.glyph + code - g.start
	if gid > 0xffff {
		return 0
	}
	return GlyphIndex(gid)
}

func (t *cmapGroups) mappings(f func(uint32, GlyphIndex)) {
	for _, g := range t.groups {
		for code := g.start; code <= g.end && code <= maxUnicode; code++ {
			f(code, t.glyph(g, code))
		}
	}
}

// Format 14: Unicode variation sequences.
type cmapFormat14 struct {
	selectors []uvsSelector // sorted by selector
}

type uvsSelector struct {
	selector   uint32
	defaults   []uvsRange   // default UVS: sequences mapping to the default glyph
	nonDefault []uvsMapping // non-default UVS: sequences with a glyph of their own
}

type uvsRange struct {
	start uint32
	count uint32 // additional count
}

type uvsMapping struct {
	code  uint32
	glyph GlyphIndex
}

func parseCmapFormat14(c *Cursor) (*cmapFormat14, error) {
	c.Section("format 14")
	if format := c.U16(); format != 14 {
		return nil, FormatError(T("cmap"), "format 14", "unexpected format %d", format)
	}
	c.Skip(4) // length
	n := c.U32()
	if n > 256 {
		return nil, FormatError(T("cmap"), "format 14", "too many selector records: %d", n)
	}
	t := &cmapFormat14{selectors: make([]uvsSelector, n)}
	for i := range t.selectors {
		sel := &t.selectors[i]
		sel.selector = c.U24()
		defOffset, nonDefOffset := c.U32(), c.U32()
		if defOffset != 0 {
			d := c.At(int(defOffset))
			cnt := d.U32()
			if cnt > MaxCmapGroupCount {
				return nil, FormatError(T("cmap"), "format 14", "too many default UVS ranges")
			}
			for j := 0; j < int(cnt) && d.Err() == nil; j++ {
				sel.defaults = append(sel.defaults, uvsRange{start: d.U24(), count: uint32(d.U8())})
			}
			if err := d.Err(); err != nil {
				return nil, err
			}
		}
		if nonDefOffset != 0 {
			d := c.At(int(nonDefOffset))
			cnt := d.U32()
			if cnt > MaxCmapGroupCount {
				return nil, FormatError(T("cmap"), "format 14", "too many non-default UVS mappings")
			}
			for j := 0; j < int(cnt) && d.Err() == nil; j++ {
				sel.nonDefault = append(sel.nonDefault, uvsMapping{code: d.U24(), glyph: d.Glyph()})
			}
			if err := d.Err(); err != nil {
				return nil, err
			}
		}
	}
	return t, c.Err()
}

// lookupVariation returns the glyph of a non-default variation sequence, or 0.
// Sequences of the default UVS list use the glyph of the base character, for which
// 0 is returned as well, sending the caller to the regular lookup.
func (t *cmapFormat14) lookupVariation(code, vs uint32) GlyphIndex {
	i := sort.Search(len(t.selectors), func(i int) bool { return t.selectors[i].selector >= vs })
	if i == len(t.selectors) || t.selectors[i].selector != vs {
		return 0
	}
	sel := &t.selectors[i]
	j := sort.Search(len(sel.nonDefault), func(j int) bool { return sel.nonDefault[j].code >= code })
	if j < len(sel.nonDefault) && sel.nonDefault[j].code == code {
		return sel.nonDefault[j].glyph
	}
	return 0
}

// isDefaultVariation returns true if (code, vs) is listed as a default variation sequence.
func (t *cmapFormat14) isDefaultVariation(code, vs uint32) bool {
	i := sort.Search(len(t.selectors), func(i int) bool { return t.selectors[i].selector >= vs })
	if i == len(t.selectors) || t.selectors[i].selector != vs {
		return false
	}
	ranges := t.selectors[i].defaults
	j := sort.Search(len(ranges), func(j int) bool { return ranges[j].start+ranges[j].count >= code })
	return j < len(ranges) && ranges[j].start <= code
}

// HasVariationSequence returns true if (r, vs) is a variation sequence known to
// the font, either with a glyph of its own or mapping to the default glyph.
func (cmap *CMap) HasVariationSequence(r rune, vs rune) bool {
	if cmap == nil || cmap.uvs == nil {
		return false
	}
	return cmap.uvs.lookupVariation(uint32(r), uint32(vs)) != 0 ||
		cmap.uvs.isDefaultVariation(uint32(r), uint32(vs))
}

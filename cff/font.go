package cff

import (
	"fmt"

	"github.com/npillmayer/fontkit/ot"
)

// Font is a decoded CFF font program.
//
// Charstrings and subroutines are sub-slices of the font data; a Font needs
// ongoing access to the data it has been parsed from.
type Font struct {
	Major, Minor uint8
	Name         string      // PostScript name, from the Name INDEX
	Top          *Dict       // Top DICT
	Strings      []string    // custom strings, SID 391 and up
	GlobalSubrs  [][]byte    // global subroutines
	CharStrings  [][]byte    // Type 2 charstrings, one per glyph
	Charset      []uint16    // SID (name-keyed fonts) or CID per glyph
	Private      *Dict       // Private DICT of name-keyed fonts
	LocalSubrs   [][]byte    // local subroutines of name-keyed fonts
	FDArray      []*FontDict // font dicts of CID-keyed fonts
	FDSelect     []uint8     // FD index per glyph, CID-keyed fonts only
	// FDSelectFormat is the format FDSelect is written with: 0 (one byte per
	// glyph) or 3 (ranges).
	FDSelectFormat uint8
}

// FontDict is an entry of the FDArray of a CID-keyed font.
type FontDict struct {
	Dict    *Dict
	Private *Dict
	Subrs   [][]byte
}

// Parse decodes a CFF font program, i.e. the contents of table 'CFF '.
// Only the first font of the Name INDEX is decoded.
func Parse(data []byte) (*Font, error) {
	c := ot.NewCursor(data, tag).Section("header")
	f := &Font{Major: c.U8(), Minor: c.U8()}
	hdrSize := int(c.U8())
	c.Skip(1) // offSize, unused
	if err := c.Err(); err != nil {
		return nil, err
	}
	if f.Major != 1 {
		return nil, errFormat("header", "unsupported CFF version %d.%d", f.Major, f.Minor)
	}
	c.Seek(hdrSize)
	names := readIndex(c.Section("Name INDEX"), 1)
	tops := readIndex(c.Section("Top DICT INDEX"), 1)
	strs := readIndex(c.Section("String INDEX"), 1)
	f.GlobalSubrs = readIndex(c.Section("Global Subr INDEX"), 1)
	if err := c.Err(); err != nil {
		return nil, err
	}
	if len(names) == 0 || len(tops) == 0 {
		return nil, errFormat("Name INDEX", "font set is empty")
	}
	if len(names) > 1 {
		tracer().Debugf("CFF font set contains %d fonts, using the first one", len(names))
	}
	f.Name = string(names[0])
	f.Strings = make([]string, len(strs))
	for i, s := range strs {
		f.Strings[i] = string(s)
	}
	var err error
	if f.Top, err = DecodeDict(tops[0], TopDictSchema); err != nil {
		return nil, err
	}
	if f.Top.Int(OpCharstringType) != 2 {
		return nil, errFormat("Top DICT", "unsupported charstring type %d", f.Top.Int(OpCharstringType))
	}
	// CharStrings
	if !f.Top.Has(OpCharStrings) {
		return nil, errFormat("Top DICT", "missing CharStrings")
	}
	csc := c.At(f.Top.Int(OpCharStrings)).Section("CharStrings INDEX")
	f.CharStrings = readIndex(csc, 1)
	if err := csc.Err(); err != nil {
		return nil, err
	}
	n := len(f.CharStrings)
	if n == 0 {
		return nil, errFormat("CharStrings INDEX", "font without glyphs")
	}
	if f.Charset, err = parseCharset(c, f.Top.Int(OpCharset), n); err != nil {
		return nil, err
	}
	if f.IsCID() {
		err = f.parseCIDDicts(c, n)
	} else {
		f.Private, f.LocalSubrs, err = parsePrivate(c, f.Top)
	}
	if err != nil {
		return nil, err
	}
	tracer().Debugf("CFF font %q: %d glyphs, %d global subrs, CID=%v", f.Name, n, len(f.GlobalSubrs), f.IsCID())
	return f, nil
}

// parsePrivate decodes the Private DICT referenced by dict, plus its local
// subroutines. A dict without Private entry yields an empty Private DICT.
func parsePrivate(c *ot.Cursor, dict *Dict) (*Dict, [][]byte, error) {
	v, ok := dict.Get(OpPrivate)
	if !ok || len(v) < 2 {
		return NewDict(PrivateDictSchema), nil, nil
	}
	size, offset := int(v[0]), int(v[1])
	pc := c.Sub(offset, size).Section("Private DICT")
	if err := pc.Err(); err != nil {
		return nil, nil, err
	}
	priv, err := DecodeDict(pc.Data(), PrivateDictSchema)
	if err != nil {
		return nil, nil, err
	}
	var subrs [][]byte
	if priv.Has(OpSubrs) {
		// Subrs is relative to the start of the Private DICT
		sc := c.At(offset + priv.Int(OpSubrs)).Section("Local Subr INDEX")
		subrs = readIndex(sc, 1)
		if err := sc.Err(); err != nil {
			return nil, nil, err
		}
	}
	return priv, subrs, nil
}

func (f *Font) parseCIDDicts(c *ot.Cursor, n int) error {
	if !f.Top.Has(OpFDArray) || !f.Top.Has(OpFDSelect) {
		return errFormat("Top DICT", "CID-keyed font without FDArray or FDSelect")
	}
	fdc := c.At(f.Top.Int(OpFDArray)).Section("FDArray")
	fds := readIndex(fdc, 1)
	if err := fdc.Err(); err != nil {
		return err
	}
	for _, raw := range fds {
		d, err := DecodeDict(raw, TopDictSchema)
		if err != nil {
			return err
		}
		priv, subrs, err := parsePrivate(c, d)
		if err != nil {
			return err
		}
		f.FDArray = append(f.FDArray, &FontDict{Dict: d, Private: priv, Subrs: subrs})
	}
	sc := c.At(f.Top.Int(OpFDSelect)).Section("FDSelect")
	f.FDSelectFormat = sc.U8()
	f.FDSelect = make([]uint8, n)
	switch f.FDSelectFormat {
	case 0:
		copy(f.FDSelect, sc.Bytes(n))
	case 3:
		nRanges := int(sc.U16())
		first := int(sc.U16())
		for i := 0; i < nRanges && sc.Err() == nil; i++ {
			fd := sc.U8()
			next := int(sc.U16())
			if next < first || next > n {
				return errFormat("FDSelect", "illegal range [%d, %d)", first, next)
			}
			for g := first; g < next; g++ {
				f.FDSelect[g] = fd
			}
			first = next
		}
	default:
		return errFormat("FDSelect", "unsupported format %d", f.FDSelectFormat)
	}
	return sc.Err()
}

// parseCharset decodes the charset at offset. Offsets 0, 1 and 2 denote the
// predefined charsets ISOAdobe, Expert and ExpertSubset.
func parseCharset(c *ot.Cursor, offset int, n int) ([]uint16, error) {
	cs := make([]uint16, n)
	if offset <= 2 {
		if offset != 0 {
			tracer().Debugf("CFF: predefined expert charset %d treated as identity", offset)
		}
		for i := range cs {
			cs[i] = uint16(i)
		}
		return cs, nil
	}
	cc := c.At(offset).Section("charset")
	format := cc.U8()
	switch format {
	case 0:
		for i := 1; i < n && cc.Err() == nil; i++ {
			cs[i] = cc.U16()
		}
	case 1, 2:
		for i := 1; i < n && cc.Err() == nil; {
			first := int(cc.U16())
			var nLeft int
			if format == 1 {
				nLeft = int(cc.U8())
			} else {
				nLeft = int(cc.U16())
			}
			for j := 0; j <= nLeft && i < n; j++ {
				cs[i] = uint16(first + j)
				i++
			}
		}
	default:
		return nil, errFormat("charset", "unsupported format %d", format)
	}
	return cs, cc.Err()
}

// IsCID returns true for CID-keyed fonts.
func (f *Font) IsCID() bool {
	return f.Top.Has(OpROS)
}

// NumGlyphs returns the number of charstrings.
func (f *Font) NumGlyphs() int {
	return len(f.CharStrings)
}

// String returns the string for a SID.
func (f *Font) String(sid int) string {
	if sid < numStandardStrings {
		if sid < 0 {
			return ""
		}
		return standardStrings[sid]
	}
	if sid -= numStandardStrings; sid < len(f.Strings) {
		return f.Strings[sid]
	}
	return ""
}

// TopString returns the string value of a SID-valued Top DICT operator.
func (f *Font) TopString(op Operator) string {
	if !f.Top.Has(op) {
		return ""
	}
	return f.String(f.Top.Int(op))
}

// GlyphName returns the name of glyph gid for name-keyed fonts, and a name of
// the form "cid01234" for CID-keyed fonts.
func (f *Font) GlyphName(gid ot.GlyphIndex) string {
	if int(gid) >= len(f.Charset) {
		return ""
	}
	if f.IsCID() {
		return fmt.Sprintf("cid%05d", f.Charset[gid])
	}
	return f.String(int(f.Charset[gid]))
}

// FDForGlyph returns the index of the font dict of glyph gid. Name-keyed fonts
// and glyphs out of range return false.
func (f *Font) FDForGlyph(gid ot.GlyphIndex) (int, bool) {
	if !f.IsCID() || int(gid) >= len(f.FDSelect) {
		return 0, false
	}
	return int(f.FDSelect[gid]), true
}

// privateFor returns the Private DICT and local subroutines in effect for gid.
func (f *Font) privateFor(gid ot.GlyphIndex) (*Dict, [][]byte, error) {
	if !f.IsCID() {
		return f.Private, f.LocalSubrs, nil
	}
	fd, ok := f.FDForGlyph(gid)
	if !ok {
		return nil, nil, errInconsistent("FDSelect", "no font dict for glyph %d", gid)
	}
	if fd >= len(f.FDArray) {
		return nil, nil, errInconsistent("FDSelect", "glyph %d references font dict %d of %d", gid, fd, len(f.FDArray))
	}
	return f.FDArray[fd].Private, f.FDArray[fd].Subrs, nil
}

// FontMatrix returns the font matrix of the Top DICT.
func (f *Font) FontMatrix() [6]float64 {
	var m [6]float64
	v, _ := f.Top.Get(OpFontMatrix)
	copy(m[:], v)
	return m
}

// --- Encoding --------------------------------------------------------------

// Encode writes the font as a CFF font program. Pointers of the Top DICT,
// the font dicts and the Private DICTs are recomputed; an Encoding is never
// written.
func (f *Font) Encode() ([]byte, error) {
	n := len(f.CharStrings)
	top := f.Top.Clone()
	top.Delete(OpEncoding)
	top.Set(OpCharset, 0)
	top.Set(OpCharStrings, 0)
	if f.IsCID() {
		top.Delete(OpPrivate)
		top.Set(OpFDArray, 0)
		top.Set(OpFDSelect, 0)
		if len(f.FDSelect) != n {
			return nil, errInconsistent("FDSelect", "%d entries for %d glyphs", len(f.FDSelect), n)
		}
		for g, fd := range f.FDSelect {
			if int(fd) >= len(f.FDArray) {
				return nil, errInconsistent("FDSelect", "glyph %d references font dict %d of %d", g, fd, len(f.FDArray))
			}
		}
	} else {
		top.Set(OpPrivate, 0, 0)
	}
	topBytes, topFixups := top.Encode()
	strs := make([][]byte, len(f.Strings))
	for i, s := range f.Strings {
		strs[i] = []byte(s)
	}
	nameIndex := EncodeIndex([][]byte{[]byte(f.Name)}, 1)
	stringIndex := EncodeIndex(strs, 1)
	gsubrIndex := EncodeIndex(f.GlobalSubrs, 1)
	charset := encodeCharset(f.Charset)
	charStrings := EncodeIndex(f.CharStrings, 1)
	// layout: the size of the Top DICT is independent of its pointer values
	offset := 4 + len(nameIndex) + IndexSize([][]byte{topBytes}, 1) + len(stringIndex) + len(gsubrIndex)
	at := map[Operator]int{}
	at[OpCharset] = offset
	offset += len(charset)
	var fdSelect []byte
	if f.IsCID() {
		fdSelect = encodeFDSelect(f.FDSelect, f.FDSelectFormat)
		at[OpFDSelect] = offset
		offset += len(fdSelect)
	}
	at[OpCharStrings] = offset
	offset += len(charStrings)
	// private dicts follow the FDArray
	var privs []FontDict
	if f.IsCID() {
		for _, fd := range f.FDArray {
			privs = append(privs, *fd)
		}
	} else {
		privs = []FontDict{{Private: f.Private, Subrs: f.LocalSubrs}}
	}
	var fdArray []byte
	var fdDicts [][]byte
	var fdFixups [][]Fixup
	if f.IsCID() {
		for _, fd := range f.FDArray {
			d := fd.Dict.Clone()
			d.Set(OpPrivate, 0, 0)
			b, fx := d.Encode()
			fdDicts = append(fdDicts, b)
			fdFixups = append(fdFixups, fx)
		}
		at[OpFDArray] = offset
		offset += IndexSize(fdDicts, 1)
	}
	var tail []byte
	privSizes := make([]int, len(privs))
	privOffsets := make([]int, len(privs))
	for i, p := range privs {
		pd := p.Private
		if pd == nil {
			pd = NewDict(PrivateDictSchema)
		}
		pd = pd.Clone()
		if len(p.Subrs) > 0 {
			pd.Set(OpSubrs, 0)
		} else {
			pd.Delete(OpSubrs)
		}
		b, fx := pd.Encode()
		for _, x := range fx {
			if x.Op == OpSubrs {
				PatchFixup(b, x, len(b))
			}
		}
		privSizes[i], privOffsets[i] = len(b), offset+len(tail)
		tail = append(tail, b...)
		if len(p.Subrs) > 0 {
			tail = append(tail, EncodeIndex(p.Subrs, 1)...)
		}
	}
	// patch deferred pointers
	for _, fx := range topFixups {
		switch fx.Op {
		case OpPrivate:
			if fx.Operand == 0 {
				PatchFixup(topBytes, fx, privSizes[0])
			} else {
				PatchFixup(topBytes, fx, privOffsets[0])
			}
		default:
			PatchFixup(topBytes, fx, at[fx.Op])
		}
	}
	for i, fxs := range fdFixups {
		for _, fx := range fxs {
			if fx.Operand == 0 {
				PatchFixup(fdDicts[i], fx, privSizes[i])
			} else {
				PatchFixup(fdDicts[i], fx, privOffsets[i])
			}
		}
	}
	if f.IsCID() {
		fdArray = EncodeIndex(fdDicts, 1)
	}
	out := make([]byte, 0, offset+len(tail))
	out = append(out, 1, 0, 4, 4)
	out = append(out, nameIndex...)
	out = append(out, EncodeIndex([][]byte{topBytes}, 1)...)
	out = append(out, stringIndex...)
	out = append(out, gsubrIndex...)
	out = append(out, charset...)
	out = append(out, fdSelect...)
	out = append(out, charStrings...)
	out = append(out, fdArray...)
	out = append(out, tail...)
	return out, nil
}

// encodeCharset writes a charset in the smallest of formats 0, 1 and 2.
// The entry for glyph 0 is implicit.
func encodeCharset(cs []uint16) []byte {
	if len(cs) <= 1 {
		return []byte{0}
	}
	type rng struct{ first, nLeft int }
	var ranges []rng
	wide := false
	for i := 1; i < len(cs); {
		r := rng{first: int(cs[i])}
		for i+r.nLeft+1 < len(cs) && int(cs[i+r.nLeft+1]) == r.first+r.nLeft+1 {
			r.nLeft++
		}
		wide = wide || r.nLeft > 255
		ranges = append(ranges, r)
		i += r.nLeft + 1
	}
	size0, size1, size2 := 1+2*(len(cs)-1), 1+3*len(ranges), 1+4*len(ranges)
	switch {
	case !wide && size1 < size0:
		out := []byte{1}
		for _, r := range ranges {
			out = append(out, byte(r.first>>8), byte(r.first), byte(r.nLeft))
		}
		return out
	case size2 < size0:
		out := []byte{2}
		for _, r := range ranges {
			out = append(out, byte(r.first>>8), byte(r.first), byte(r.nLeft>>8), byte(r.nLeft))
		}
		return out
	}
	out := []byte{0}
	for _, sid := range cs[1:] {
		out = append(out, byte(sid>>8), byte(sid))
	}
	return out
}

// encodeFDSelect writes FDSelect in format 0 or format 3.
func encodeFDSelect(fds []uint8, format uint8) []byte {
	if format != 3 {
		return append([]byte{0}, fds...)
	}
	type rng struct {
		first int
		fd    uint8
	}
	var ranges []rng
	for g, fd := range fds {
		if len(ranges) == 0 || ranges[len(ranges)-1].fd != fd {
			ranges = append(ranges, rng{g, fd})
		}
	}
	out := []byte{3, byte(len(ranges) >> 8), byte(len(ranges))}
	for _, r := range ranges {
		out = append(out, byte(r.first>>8), byte(r.first), r.fd)
	}
	return append(out, byte(len(fds)>>8), byte(len(fds)))
}

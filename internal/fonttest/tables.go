package fonttest

import (
	"sort"
	"unicode/utf16"
)

// Head builds table 'head'. locaFormat is 0 for short and 1 for long offsets.
func Head(unitsPerEm uint16, locaFormat int16, bbox [4]int16, macStyle uint16) []byte {
	w := NewBuf()
	w.U16(1, 0)          // version
	w.Fixed(1)           // fontRevision
	w.U32(0, 0x5F0F3CF5) // checksumAdjustment, magicNumber
	w.U16(0x000B)        // flags
	w.U16(unitsPerEm)
	w.U32(0, 0, 0, 0) // created, modified
	w.I16(bbox[0], bbox[1], bbox[2], bbox[3])
	w.U16(macStyle)
	w.U16(8) // lowestRecPPEM
	w.I16(2) // fontDirectionHint
	w.I16(locaFormat, 0)
	return w.Data()
}

// MaxP builds table 'maxp'. TrueType fonts get version 1.0, CFF fonts version 0.5.
func MaxP(numGlyphs uint16, trueType bool) []byte {
	w := NewBuf()
	if !trueType {
		return w.U32(0x00005000).U16(numGlyphs).Data()
	}
	w.U32(0x00010000).U16(numGlyphs)
	w.U16(64, 8, 64, 8, 2, 0, 0, 0, 0, 64, 0, 4, 1)
	return w.Data()
}

// HHea builds table 'hhea'.
func HHea(ascender, descender, lineGap int16, advanceMax uint16, numLong uint16) []byte {
	w := NewBuf()
	w.U16(1, 0)
	w.I16(ascender, descender, lineGap)
	w.U16(advanceMax)
	w.I16(0, 0, int16(advanceMax)) // minLSB, minRSB, xMaxExtent
	w.I16(1, 0, 0)                 // caretSlopeRise, caretSlopeRun, caretOffset
	w.Zeros(8)                     // reserved
	w.I16(0)                       // metricDataFormat
	w.U16(numLong)
	return w.Data()
}

// HMtx builds table 'hmtx' with one long metric per glyph.
func HMtx(advances []uint16, lsbs []int16) []byte {
	w := NewBuf()
	for i, adv := range advances {
		var lsb int16
		if i < len(lsbs) {
			lsb = lsbs[i]
		}
		w.U16(adv).I16(lsb)
	}
	return w.Data()
}

// OS2Metrics are the fields of table 'OS/2' which tests care about.
type OS2Metrics struct {
	WeightClass   uint16
	FsSelection   uint16
	FamilyClass   int16
	TypoAscender  int16
	TypoDescender int16
	TypoLineGap   int16
	XHeight       int16
	CapHeight     int16
}

// OS2 builds a version 4 'OS/2' table.
func OS2(m OS2Metrics) []byte {
	w := NewBuf()
	w.U16(4)   // version
	w.I16(500) // xAvgCharWidth
	w.U16(m.WeightClass, 5, 0)
	w.I16(650, 600, 0, 75, 650, 600, 0, 350, 50, 250) // sub/superscript, strikeout
	w.I16(m.FamilyClass)
	w.Zeros(10)       // panose
	w.U32(1, 0, 0, 0) // unicodeRange
	w.Tag("TEST")     // vendor
	w.U16(m.FsSelection)
	w.U16(0x20, 0xFFFF) // first/last char index
	w.I16(m.TypoAscender, m.TypoDescender, m.TypoLineGap)
	w.U16(uint16(m.TypoAscender), uint16(-m.TypoDescender))
	w.U32(1, 0) // codePageRange
	w.I16(m.XHeight, m.CapHeight)
	w.U16(0, 0x20, 2) // defaultChar, breakChar, maxContext
	return w.Data()
}

// Post builds a version 3 'post' table (without glyph names).
func Post(italicAngle float64, underlinePos, underlineThickness int16, fixedPitch bool) []byte {
	w := NewBuf()
	w.U32(0x00030000)
	w.Fixed(italicAngle)
	w.I16(underlinePos, underlineThickness)
	if fixedPitch {
		w.U32(1)
	} else {
		w.U32(0)
	}
	w.Zeros(16)
	return w.Data()
}

// Name builds table 'name' with Windows Unicode (3/1/0x409) records, and Mac Roman
// (1/0/0) records for ASCII-only values.
func Name(names map[uint16]string) []byte {
	type rec struct {
		platform, encoding, language, id uint16
		value                            []byte
	}
	var recs []rec
	for _, id := range sortedIDs(names) {
		s := names[id]
		if isASCII(s) {
			recs = append(recs, rec{1, 0, 0, id, []byte(s)})
		}
	}
	for _, id := range sortedIDs(names) {
		var u []byte
		for _, x := range utf16.Encode([]rune(names[id])) {
			u = append(u, byte(x>>8), byte(x))
		}
		recs = append(recs, rec{3, 1, 0x409, id, u})
	}
	w := NewBuf()
	w.U16(0, uint16(len(recs)), uint16(6+12*len(recs)))
	var strings []byte
	for _, r := range recs {
		w.U16(r.platform, r.encoding, r.language, r.id, uint16(len(r.value)), uint16(len(strings)))
		strings = append(strings, r.value...)
	}
	return w.Bytes(strings).Data()
}

func sortedIDs(names map[uint16]string) []uint16 {
	var ids []uint16
	for id := range names {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 0x7f {
			return false
		}
	}
	return true
}

// Axis is a variation axis of table 'fvar', in user coordinates.
type Axis struct {
	Tag               string
	Min, Default, Max float64
	Hidden            bool
}

// FVar builds a font variations table without named instances.
func FVar(axes ...Axis) []byte {
	w := NewBuf().U16(1, 0, 16, 2, uint16(len(axes)), 20, 0, 4)
	for i, a := range axes {
		flags := uint16(0)
		if a.Hidden {
			flags = 1
		}
		w.Tag(a.Tag).Fixed(a.Min).Fixed(a.Default).Fixed(a.Max).U16(flags, uint16(256+i))
	}
	return w.Data()
}

// AVar builds an axis variations table. Each segment map lists (from, to)
// pairs of normalized coordinates.
func AVar(segments ...[][2]float64) []byte {
	w := NewBuf().U16(1, 0, 0, uint16(len(segments)))
	for _, seg := range segments {
		w.U16(uint16(len(seg)))
		for _, m := range seg {
			w.F2Dot14(m[0]).F2Dot14(m[1])
		}
	}
	return w.Data()
}

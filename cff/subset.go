package cff

import (
	"github.com/npillmayer/fontkit/ot"
)

// Top DICT entries carrying a string, re-added to the string INDEX of a subset.
var subsetStringOps = []Operator{
	OpVersion, OpNotice, OpCopyright, OpFullName, OpFamilyName, OpWeight,
	OpPostScript, OpBaseFontName, OpFontName,
}

// returnSubr is the body of subroutines not used by any glyph of a subset.
var returnSubr = []byte{csReturn}

// Subset creates a CFF font program containing the given glyphs, in the order
// given. The glyph at position i of glyphs becomes glyph (and CID) i of the
// subset. Glyph 0 (.notdef) is prepended if glyphs does not start with it.
//
// The subset is always CID-keyed, with ROS Adobe-Identity-0. Charstrings are
// copied unchanged; subroutines not called by any glyph of the subset are
// replaced by a bare 'return', which keeps subroutine numbering stable.
func (f *Font) Subset(glyphs []ot.GlyphIndex) ([]byte, error) {
	if len(glyphs) == 0 || glyphs[0] != 0 {
		glyphs = append([]ot.GlyphIndex{0}, glyphs...)
	}
	n := len(glyphs)
	tracer().Debugf("CFF subset of %q with %d glyphs", f.Name, n)
	sub := &Font{
		Major:       1,
		Name:        f.Name,
		Top:         f.Top.Clone(),
		CharStrings: make([][]byte, n),
		Charset:     make([]uint16, n),
	}
	outlines := make([]*Outline, n)
	usedGlobal := make(map[int]bool)
	for i, gid := range glyphs {
		if int(gid) >= len(f.CharStrings) {
			return nil, errInconsistent("subset", "glyph %d not in font (%d glyphs)", gid, len(f.CharStrings))
		}
		o, err := f.Outline(gid)
		if err != nil {
			return nil, err
		}
		outlines[i] = o
		for s := range o.GlobalSubrs {
			usedGlobal[s] = true
		}
		sub.CharStrings[i] = f.CharStrings[gid]
		sub.Charset[i] = uint16(i)
	}
	sub.GlobalSubrs = subsetSubrs(f.GlobalSubrs, usedGlobal)
	// top dict
	sub.Top.Delete(OpPrivate)
	sub.Top.Delete(OpEncoding)
	for _, op := range subsetStringOps {
		if s := f.TopString(op); s != "" {
			sub.Top.Set(op, float64(sub.addString(s)))
		} else {
			sub.Top.Delete(op)
		}
	}
	sub.Top.Set(OpROS, float64(sub.addString("Adobe")), float64(sub.addString("Identity")), 0)
	sub.Top.Set(OpCIDCount, float64(n))
	if f.IsCID() {
		if err := f.subsetFontDicts(sub, glyphs, outlines); err != nil {
			return nil, err
		}
	} else {
		used := make(map[int]bool)
		for _, o := range outlines {
			for s := range o.LocalSubrs {
				used[s] = true
			}
		}
		priv := f.Private
		if priv == nil {
			priv = NewDict(PrivateDictSchema)
		}
		sub.FDArray = []*FontDict{{
			Dict:    NewDict(TopDictSchema),
			Private: priv.Clone(),
			Subrs:   subsetSubrs(f.LocalSubrs, used),
		}}
		sub.FDSelect = make([]uint8, n)
		sub.FDSelectFormat = 3
	}
	return sub.Encode()
}

// subsetFontDicts keeps the font dicts used by the glyphs of a subset of a
// CID-keyed font, in order of first use.
func (f *Font) subsetFontDicts(sub *Font, glyphs []ot.GlyphIndex, outlines []*Outline) error {
	remap := make(map[int]int)
	var used []map[int]bool
	sub.FDSelect = make([]uint8, len(glyphs))
	for i, gid := range glyphs {
		fd, ok := f.FDForGlyph(gid)
		if !ok || fd >= len(f.FDArray) {
			return errInconsistent("FDSelect", "no font dict for glyph %d", gid)
		}
		k, seen := remap[fd]
		if !seen {
			k = len(sub.FDArray)
			remap[fd] = k
			src := f.FDArray[fd]
			d := src.Dict.Clone()
			d.Delete(OpFontName)
			sub.FDArray = append(sub.FDArray, &FontDict{Dict: d, Private: src.Private, Subrs: src.Subrs})
			used = append(used, make(map[int]bool))
		}
		sub.FDSelect[i] = uint8(k)
		for s := range outlines[i].LocalSubrs {
			used[k][s] = true
		}
	}
	for k, fd := range sub.FDArray {
		if fd.Private != nil {
			fd.Private = fd.Private.Clone()
		}
		fd.Subrs = subsetSubrs(fd.Subrs, used[k])
	}
	sub.FDSelectFormat = 0
	return nil
}

// addString appends s to the custom strings and returns its SID.
func (f *Font) addString(s string) int {
	f.Strings = append(f.Strings, s)
	return numStandardStrings + len(f.Strings) - 1
}

// subsetSubrs replaces every subroutine not in used by a bare 'return'.
func subsetSubrs(subrs [][]byte, used map[int]bool) [][]byte {
	if len(subrs) == 0 {
		return nil
	}
	res := make([][]byte, len(subrs))
	for i, s := range subrs {
		if used[i] {
			res[i] = s
		} else {
			res[i] = returnSubr
		}
	}
	return res
}

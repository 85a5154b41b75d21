package fonttest

// --- AAT lookup tables -----------------------------------------------------

func binSearchHeader(w *Buf, unitSize, nUnits int) {
	searchRange, entrySelector := searchParams(nUnits, unitSize)
	w.U16(uint16(unitSize), uint16(nUnits), searchRange, entrySelector,
		uint16(nUnits*unitSize)-searchRange)
}

// Lookup0 builds a format 0 lookup table (simple array).
func Lookup0(values []uint16) []byte {
	return NewBuf().U16(0).U16(values...).Data()
}

// Lookup2 builds a format 2 lookup table (segment single). Consecutive glyphs
// with equal values are collapsed into one segment. A terminating segment
// 0xFFFF is appended.
func Lookup2(m map[uint16]uint16) []byte {
	type seg struct{ first, last, value uint16 }
	var segs []seg
	for _, g := range sortedKeys(m) {
		if n := len(segs); n > 0 && segs[n-1].last+1 == g && segs[n-1].value == m[g] {
			segs[n-1].last = g
			continue
		}
		segs = append(segs, seg{g, g, m[g]})
	}
	w := NewBuf().U16(2)
	binSearchHeader(w, 6, len(segs)+1)
	for _, s := range segs {
		w.U16(s.last, s.first, s.value)
	}
	w.U16(0xffff, 0xffff, 0)
	return w.Data()
}

// Lookup4 builds a format 4 lookup table (segment array) with one segment
// per run of consecutive glyphs.
func Lookup4(m map[uint16]uint16) []byte {
	var segs [][]uint16 // glyphs per segment
	for _, g := range sortedKeys(m) {
		if n := len(segs); n > 0 && segs[n-1][len(segs[n-1])-1]+1 == g {
			segs[n-1] = append(segs[n-1], g)
			continue
		}
		segs = append(segs, []uint16{g})
	}
	w := NewBuf().U16(4)
	binSearchHeader(w, 6, len(segs))
	arrays := 12 + 6*len(segs)
	for _, s := range segs {
		w.U16(s[len(s)-1], s[0], uint16(arrays))
		arrays += 2 * len(s)
	}
	for _, s := range segs {
		for _, g := range s {
			w.U16(m[g])
		}
	}
	return w.Data()
}

// Lookup6 builds a format 6 lookup table (single table).
func Lookup6(m map[uint16]uint16) []byte {
	w := NewBuf().U16(6)
	binSearchHeader(w, 4, len(m))
	for _, g := range sortedKeys(m) {
		w.U16(g, m[g])
	}
	return w.Data()
}

// Lookup8 builds a format 8 lookup table (trimmed array).
func Lookup8(first uint16, values []uint16) []byte {
	return NewBuf().U16(8, first, uint16(len(values))).U16(values...).Data()
}

// Lookup10 builds a format 10 lookup table with 1-byte values.
func Lookup10(first uint16, values []uint8) []byte {
	return NewBuf().U16(10, 1, first, uint16(len(values))).U8(values...).Data()
}

// --- Extended state tables -------------------------------------------------

// MorxEntry is an entry of an extended state table.
type MorxEntry struct {
	NewState uint16
	Flags    uint16
	Args     []uint16
}

// StateTable describes an extended state table. Classes maps glyphs to
// classes ≥ 4; States holds one entry index per class for every state.
type StateTable struct {
	NClasses int
	Classes  map[uint16]uint16
	States   [][]uint16
	Entries  []MorxEntry
}

// stateTableBody writes the STXHeader, nExtra placeholders for subtable
// specific offsets, class lookup, state array and entry table. It returns the
// buffer and the positions of the placeholders.
func stateTableBody(st StateTable, nArgs, nExtra int) (*Buf, []int) {
	w := NewBuf()
	w.U32(uint32(st.NClasses))
	classOff := w.Offset32(0)
	stateOff := w.Offset32(0)
	entryOff := w.Offset32(0)
	extra := make([]int, nExtra)
	for i := range extra {
		extra[i] = w.Len()
		w.U32(0)
	}
	classOff()
	w.Bytes(Lookup2(st.Classes)).Align(2)
	stateOff()
	for _, row := range st.States {
		if len(row) != st.NClasses {
			panic("fonttest: state row does not match number of classes")
		}
		w.U16(row...)
	}
	entryOff()
	for _, e := range st.Entries {
		w.U16(e.NewState, e.Flags)
		for i := 0; i < nArgs; i++ {
			if i < len(e.Args) {
				w.U16(e.Args[i])
			} else {
				w.U16(0xffff)
			}
		}
	}
	return w, extra
}

// RearrangementBody builds the body of a rearrangement subtable.
func RearrangementBody(st StateTable) []byte {
	w, _ := stateTableBody(st, 0, 0)
	return w.Data()
}

// ContextualBody builds the body of a contextual substitution subtable with
// a list of substitution lookups.
func ContextualBody(st StateTable, lookups ...[]byte) []byte {
	w, extra := stateTableBody(st, 2, 1)
	w.Align(4)
	base := w.Len()
	w.PatchU32(extra[0], uint32(base))
	offsets := make([]func(), len(lookups))
	for i := range lookups {
		offsets[i] = w.Offset32(base)
	}
	for i, l := range lookups {
		offsets[i]()
		w.Bytes(l).Align(2)
	}
	return w.Data()
}

// LigatureBody builds the body of a ligature subtable.
func LigatureBody(st StateTable, actions []uint32, components, ligatures []uint16) []byte {
	w, extra := stateTableBody(st, 1, 3)
	w.Align(4)
	w.PatchU32(extra[0], uint32(w.Len()))
	w.U32(actions...)
	w.PatchU32(extra[1], uint32(w.Len()))
	w.U16(components...)
	w.PatchU32(extra[2], uint32(w.Len()))
	w.U16(ligatures...)
	return w.Data()
}

// LigatureAction encodes a ligature action with a component offset.
func LigatureAction(last, store bool, offset int32) uint32 {
	a := uint32(offset) & 0x3fffffff
	if last {
		a |= 0x80000000
	}
	if store {
		a |= 0x40000000
	}
	return a
}

// InsertionBody builds the body of an insertion subtable.
func InsertionBody(st StateTable, glyphs ...uint16) []byte {
	w, extra := stateTableBody(st, 2, 1)
	w.PatchU32(extra[0], uint32(w.Len()))
	w.U16(glyphs...)
	return w.Data()
}

// --- morx ------------------------------------------------------------------

// MorxFeature is a feature entry of a morx chain.
type MorxFeature struct {
	Type, Setting uint16
	Enable        uint32
	Disable       uint32
}

// MorxSubtable is a morx subtable. Coverage holds the coverage bits above
// the type byte.
type MorxSubtable struct {
	Type     uint8
	Coverage uint32
	Flags    uint32
	Body     []byte
}

// MorxChain is a chain of a morx table.
type MorxChain struct {
	DefaultFlags uint32
	Features     []MorxFeature
	Subtables    []MorxSubtable
}

// Morx builds a version 2 'morx' table.
func Morx(chains ...MorxChain) []byte {
	w := NewBuf().U16(2, 0).U32(uint32(len(chains)))
	for _, c := range chains {
		start := w.Len()
		w.U32(c.DefaultFlags, 0, uint32(len(c.Features)), uint32(len(c.Subtables)))
		for _, f := range c.Features {
			w.U16(f.Type, f.Setting).U32(f.Enable, f.Disable)
		}
		for _, s := range c.Subtables {
			body := append([]byte{}, s.Body...)
			for len(body)%4 != 0 {
				body = append(body, 0)
			}
			w.U32(uint32(12+len(body)), s.Coverage|uint32(s.Type), s.Flags)
			w.Bytes(body)
		}
		w.PatchU32(start+4, uint32(w.Len()-start))
	}
	return w.Data()
}

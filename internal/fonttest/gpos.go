package fonttest

// Value is a GPOS value record without device tables.
type Value struct {
	XPlacement, YPlacement, XAdvance, YAdvance int16
}

// Value formats
const (
	XPlacement = 0x0001
	YPlacement = 0x0002
	XAdvance   = 0x0004
	YAdvance   = 0x0008
)

func (v Value) write(w *Buf, format uint16) {
	if format&XPlacement != 0 {
		w.I16(v.XPlacement)
	}
	if format&YPlacement != 0 {
		w.I16(v.YPlacement)
	}
	if format&XAdvance != 0 {
		w.I16(v.XAdvance)
	}
	if format&YAdvance != 0 {
		w.I16(v.YAdvance)
	}
}

// SinglePos1 builds a format 1 single adjustment for glyphs.
func SinglePos1(format uint16, v Value, glyphs ...uint16) []byte {
	t := newTable()
	t.w.U16(1)
	t.ref(Coverage(glyphs...))
	t.w.U16(format)
	v.write(t.w, format)
	return t.bytes()
}

// SinglePos2 builds a format 2 single adjustment.
func SinglePos2(format uint16, values map[uint16]Value) []byte {
	gs := sortedKeys(values)
	t := newTable()
	t.w.U16(2)
	t.ref(Coverage(gs...))
	t.w.U16(format, uint16(len(gs)))
	for _, g := range gs {
		values[g].write(t.w, format)
	}
	return t.bytes()
}

// Pair is a glyph pair adjustment.
type Pair struct {
	First, Second  uint16
	Value1, Value2 Value
}

// PairPos1 builds a format 1 pair adjustment.
func PairPos1(format1, format2 uint16, pairs ...Pair) []byte {
	sets := map[uint16][]Pair{}
	for _, p := range pairs {
		sets[p.First] = append(sets[p.First], p)
	}
	firsts := sortedKeys(sets)
	t := newTable()
	t.w.U16(1)
	t.ref(Coverage(firsts...))
	t.w.U16(format1, format2, uint16(len(firsts)))
	for _, g := range firsts {
		set := NewBuf().U16(uint16(len(sets[g])))
		for _, p := range sortPairs(sets[g]) {
			set.U16(p.Second)
			p.Value1.write(set, format1)
			p.Value2.write(set, format2)
		}
		t.ref(set.Data())
	}
	return t.bytes()
}

func sortPairs(ps []Pair) []Pair {
	for i := 1; i < len(ps); i++ {
		for j := i; j > 0 && ps[j].Second < ps[j-1].Second; j-- {
			ps[j], ps[j-1] = ps[j-1], ps[j]
		}
	}
	return ps
}

// PairPos2 builds a format 2 (class based) pair adjustment. The matrix is
// indexed by [class1][class2] and carries Value1 only.
func PairPos2(format1 uint16, coverage []uint16, class1, class2 map[uint16]uint16, matrix [][]Value) []byte {
	t := newTable()
	t.w.U16(2)
	t.ref(Coverage(coverage...))
	t.w.U16(format1, 0)
	t.ref(ClassDef(class1))
	t.ref(ClassDef(class2))
	class2Count := 0
	if len(matrix) > 0 {
		class2Count = len(matrix[0])
	}
	t.w.U16(uint16(len(matrix)), uint16(class2Count))
	for _, row := range matrix {
		for _, v := range row {
			v.write(t.w, format1)
		}
	}
	return t.bytes()
}

// Anchor is a format 1 anchor.
type Anchor struct {
	X, Y int16
}

func anchorBytes(a *Anchor) []byte {
	if a == nil {
		return nil
	}
	return NewBuf().U16(1).I16(a.X, a.Y).Data()
}

// EntryExit are the cursive anchors of a glyph; either may be nil.
type EntryExit struct {
	Entry, Exit *Anchor
}

// CursivePos builds a cursive attachment subtable.
func CursivePos(anchors map[uint16]EntryExit) []byte {
	gs := sortedKeys(anchors)
	t := newTable()
	t.w.U16(1)
	t.ref(Coverage(gs...))
	t.w.U16(uint16(len(gs)))
	for _, g := range gs {
		t.ref(anchorBytes(anchors[g].Entry))
		t.ref(anchorBytes(anchors[g].Exit))
	}
	return t.bytes()
}

// Mark is a mark glyph's class and anchor.
type Mark struct {
	Class  uint16
	Anchor Anchor
}

func markArray(marks map[uint16]Mark) ([]uint16, []byte) {
	gs := sortedKeys(marks)
	t := newTable()
	t.w.U16(uint16(len(gs)))
	for _, g := range gs {
		t.w.U16(marks[g].Class)
		a := marks[g].Anchor
		t.ref(anchorBytes(&a))
	}
	return gs, t.bytes()
}

func anchorMatrix(rows [][]*Anchor) []byte {
	t := newTable()
	t.w.U16(uint16(len(rows)))
	for _, row := range rows {
		for _, a := range row {
			t.ref(anchorBytes(a))
		}
	}
	return t.bytes()
}

// MarkBasePos builds a mark-to-base attachment subtable (also usable as
// mark-to-mark). bases maps a base glyph to its anchors per mark class.
func MarkBasePos(classCount uint16, marks map[uint16]Mark, bases map[uint16][]*Anchor) []byte {
	markGlyphs, marr := markArray(marks)
	baseGlyphs := sortedKeys(bases)
	rows := make([][]*Anchor, len(baseGlyphs))
	for i, g := range baseGlyphs {
		rows[i] = bases[g]
	}
	t := newTable()
	t.w.U16(1)
	t.ref(Coverage(markGlyphs...))
	t.ref(Coverage(baseGlyphs...))
	t.w.U16(classCount)
	t.ref(marr)
	t.ref(anchorMatrix(rows))
	return t.bytes()
}

// MarkLigPos builds a mark-to-ligature attachment subtable. ligatures maps a
// ligature glyph to anchors per component and mark class.
func MarkLigPos(classCount uint16, marks map[uint16]Mark, ligatures map[uint16][][]*Anchor) []byte {
	markGlyphs, marr := markArray(marks)
	ligGlyphs := sortedKeys(ligatures)
	la := newTable()
	la.w.U16(uint16(len(ligGlyphs)))
	for _, g := range ligGlyphs {
		la.ref(anchorMatrix(ligatures[g]))
	}
	t := newTable()
	t.w.U16(1)
	t.ref(Coverage(markGlyphs...))
	t.ref(Coverage(ligGlyphs...))
	t.w.U16(classCount)
	t.ref(marr)
	t.ref(la.bytes())
	return t.bytes()
}

// GDEF builds a version 1.2 GDEF table with glyph classes, mark attachment
// classes and mark glyph sets.
func GDEF(glyphClasses, markAttach map[uint16]uint16, markSets ...[]uint16) []byte {
	w := NewBuf().U16(1, 2)
	t := &table{w: w}
	t.ref(ClassDef(glyphClasses))
	w.U16(0, 0) // attachList, ligCaretList
	if markAttach != nil {
		t.ref(ClassDef(markAttach))
	} else {
		w.U16(0)
	}
	if len(markSets) > 0 {
		sets := NewBuf().U16(1, uint16(len(markSets)))
		offset := 4 + 4*len(markSets)
		var covs []byte
		for _, set := range markSets {
			sets.U32(uint32(offset + len(covs)))
			covs = append(covs, Coverage(set...)...)
		}
		t.ref(sets.Bytes(covs).Data())
	} else {
		w.U16(0)
	}
	return t.bytes()
}

// --- kern ------------------------------------------------------------------

// KernPair is a format 0 kerning pair.
type KernPair struct {
	Left, Right uint16
	Value       int16
}

// Kern builds a Microsoft style (version 0) 'kern' table.
func Kern(subtables ...[]byte) []byte {
	w := NewBuf().U16(0, uint16(len(subtables)))
	for _, st := range subtables {
		w.Bytes(st)
	}
	return w.Data()
}

// KernFormat0 builds a version 0 kerning subtable of format 0 with the given
// coverage bits (horizontal = 1, minimum = 2, cross-stream = 4, override = 8).
func KernFormat0(coverage uint8, pairs ...KernPair) []byte {
	body := kernPairs(pairs)
	w := NewBuf().U16(0, uint16(6+len(body)), uint16(coverage))
	return w.Bytes(body).Data()
}

func kernPairs(pairs []KernPair) []byte {
	ps := append([]KernPair(nil), pairs...)
	for i := 1; i < len(ps); i++ {
		for j := i; j > 0 && kpKey(ps[j]) < kpKey(ps[j-1]); j-- {
			ps[j], ps[j-1] = ps[j-1], ps[j]
		}
	}
	sr, es := searchParams(len(ps), 6)
	w := NewBuf().U16(uint16(len(ps)), sr, es, uint16(6*len(ps))-sr)
	for _, p := range ps {
		w.U16(p.Left, p.Right).I16(p.Value)
	}
	return w.Data()
}

func kpKey(p KernPair) uint32 { return uint32(p.Left)<<16 | uint32(p.Right) }

// AppleKern builds a version 1 'kern' table whose subtables have been built
// with AppleKernFormat0.
func AppleKern(subtables ...[]byte) []byte {
	w := NewBuf().U32(0x00010000, uint32(len(subtables)))
	for _, st := range subtables {
		w.Bytes(st)
	}
	return w.Data()
}

// AppleKernFormat0 builds a version 1 format 0 subtable. coverage holds the
// high byte flags (vertical = 0x80, cross-stream = 0x40, variation = 0x20).
func AppleKernFormat0(coverage uint8, pairs ...KernPair) []byte {
	body := kernPairs(pairs)
	w := NewBuf().U32(uint32(8 + len(body))).U16(uint16(coverage)<<8, 0)
	return w.Bytes(body).Data()
}

// KernFormat2 builds a version 0 class based kerning subtable. Classes map
// glyphs of a contiguous range to row and column numbers; values[row][col].
func KernFormat2(coverage uint8, leftFirst uint16, left []uint16, rightFirst uint16, right []uint16, values [][]int16) []byte {
	cols := 0
	if len(values) > 0 {
		cols = len(values[0])
	}
	rowWidth := 2 * cols
	const header = 6 + 8 // subtable header + format 2 header
	leftOff := header
	rightOff := leftOff + 4 + 2*len(left)
	arrayOff := rightOff + 4 + 2*len(right)
	w := NewBuf()
	w.U16(0, 0, uint16(2)<<8|uint16(coverage))
	w.U16(uint16(rowWidth), uint16(leftOff), uint16(rightOff), uint16(arrayOff))
	w.U16(leftFirst, uint16(len(left)))
	for _, row := range left {
		w.U16(uint16(arrayOff + int(row)*rowWidth))
	}
	w.U16(rightFirst, uint16(len(right)))
	for _, col := range right {
		w.U16(col * 2)
	}
	for _, row := range values {
		w.I16(row...)
	}
	w.PatchU16(2, uint16(w.Len()))
	return w.Data()
}

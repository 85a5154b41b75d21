package ot

// GPOS lookup types
const (
	GPosSingle          = 1
	GPosPair            = 2
	GPosCursive         = 3
	GPosMarkToBase      = 4
	GPosMarkToLigature  = 5
	GPosMarkToMark      = 6
	GPosContext         = 7
	GPosChainingContext = 8
	GPosExtension       = 9
)

var gposDecoders = map[uint16]subtableDecoder{
	GPosSingle:          parseSinglePos,
	GPosPair:            parsePairPos,
	GPosCursive:         parseCursivePos,
	GPosMarkToBase:      parseMarkBasePos,
	GPosMarkToLigature:  parseMarkLigPos,
	GPosMarkToMark:      parseMarkMarkPos,
	GPosContext:         parseSequenceContext,
	GPosChainingContext: parseChainedSequenceContext,
}

// ValueFormat flags which fields are present in a value record.
type ValueFormat uint16

// Value record fields
const (
	ValueXPlacement       ValueFormat = 0x0001
	ValueYPlacement       ValueFormat = 0x0002
	ValueXAdvance         ValueFormat = 0x0004
	ValueYAdvance         ValueFormat = 0x0008
	ValueXPlacementDevice ValueFormat = 0x0010
	ValueYPlacementDevice ValueFormat = 0x0020
	ValueXAdvanceDevice   ValueFormat = 0x0040
	ValueYAdvanceDevice   ValueFormat = 0x0080
)

// ValueRecord holds positioning adjustments, in design units.
type ValueRecord struct {
	XPlacement, YPlacement int16
	XAdvance, YAdvance     int16
	XPlacementDevice       *Device
	YPlacementDevice       *Device
	XAdvanceDevice         *Device
	YAdvanceDevice         *Device
}

// parseValueRecord reads a value record of format vf from c. Device offsets are
// relative to base, the start of the enclosing subtable.
func parseValueRecord(c *Cursor, base *Cursor, vf ValueFormat) (ValueRecord, error) {
	var v ValueRecord
	if vf&ValueXPlacement != 0 {
		v.XPlacement = c.I16()
	}
	if vf&ValueYPlacement != 0 {
		v.YPlacement = c.I16()
	}
	if vf&ValueXAdvance != 0 {
		v.XAdvance = c.I16()
	}
	if vf&ValueYAdvance != 0 {
		v.YAdvance = c.I16()
	}
	devices := []struct {
		flag ValueFormat
		dev  **Device
	}{
		{ValueXPlacementDevice, &v.XPlacementDevice},
		{ValueYPlacementDevice, &v.YPlacementDevice},
		{ValueXAdvanceDevice, &v.XAdvanceDevice},
		{ValueYAdvanceDevice, &v.YAdvanceDevice},
	}
	for _, d := range devices {
		if vf&d.flag == 0 {
			continue
		}
		off := int(c.U16())
		dev, err := deviceAt(base, off)
		if err != nil {
			return v, err
		}
		*d.dev = dev
	}
	return v, c.Err()
}

// --- Anchors ---------------------------------------------------------------

// Anchor is an anchor point, in design units.
type Anchor struct {
	X, Y        int16
	AnchorPoint uint16 // format 2: contour point index
	HasPoint    bool
	XDevice     *Device // format 3
	YDevice     *Device // format 3
}

func parseAnchor(c *Cursor) (*Anchor, error) {
	c.Section("Anchor")
	format := c.U16()
	a := &Anchor{X: c.I16(), Y: c.I16()}
	switch format {
	case 1:
	case 2:
		a.AnchorPoint, a.HasPoint = c.U16(), true
	case 3:
		xOff, yOff := int(c.U16()), int(c.U16())
		var err error
		if a.XDevice, err = deviceAt(c, xOff); err != nil {
			return nil, err
		}
		if a.YDevice, err = deviceAt(c, yOff); err != nil {
			return nil, err
		}
	default:
		return nil, FormatError(c.Table(), "Anchor", "unknown anchor format %d", format)
	}
	return a, c.Err()
}

func anchorAt(c *Cursor, offset int) (*Anchor, error) {
	if offset == 0 {
		return nil, nil
	}
	return parseAnchor(c.At(offset))
}

// MarkRecord assigns a mark class and an anchor to a mark glyph.
type MarkRecord struct {
	Class  uint16
	Anchor *Anchor
}

func parseMarkArray(c *Cursor) ([]MarkRecord, error) {
	c.Section("MarkArray")
	n := int(c.U16())
	marks := make([]MarkRecord, n)
	for i := range marks {
		marks[i].Class = c.U16()
		a, err := anchorAt(c, int(c.U16()))
		if err != nil {
			return nil, err
		}
		marks[i].Anchor = a
	}
	return marks, c.Err()
}

// parseAnchorMatrix reads a row-major array of rows×classCount anchor offsets,
// relative to c. It is the layout of BaseArray, Mark2Array and LigatureAttach.
func parseAnchorMatrix(c *Cursor, classCount int) ([][]*Anchor, error) {
	rows := int(c.U16())
	if _, err := checkedMulInt(rows, classCount); err != nil || classCount > 0xffff {
		return nil, FormatError(c.Table(), "AnchorMatrix", "matrix too large")
	}
	m := make([][]*Anchor, rows)
	for r := range m {
		m[r] = make([]*Anchor, classCount)
		for cl := range m[r] {
			a, err := anchorAt(c, int(c.U16()))
			if err != nil {
				return nil, err
			}
			m[r][cl] = a
		}
	}
	return m, c.Err()
}

// --- Lookup subtables ------------------------------------------------------

// SinglePos adjusts the position of a single glyph. Format 1 applies one value
// record to all covered glyphs, format 2 has a value record per coverage index.
type SinglePos struct {
	Coverage *Coverage
	Values   []ValueRecord
}

// Value returns the value record for coverage index inx.
func (s *SinglePos) Value(inx int) (ValueRecord, bool) {
	if len(s.Values) == 1 {
		return s.Values[0], true
	}
	if inx < 0 || inx >= len(s.Values) {
		return ValueRecord{}, false
	}
	return s.Values[inx], true
}

func parseSinglePos(c *Cursor, format uint16) (any, error) {
	covOff := int(c.U16())
	vf := ValueFormat(c.U16())
	s := &SinglePos{}
	switch format {
	case 1:
		v, err := parseValueRecord(c, c, vf)
		if err != nil {
			return nil, err
		}
		s.Values = []ValueRecord{v}
	case 2:
		n := int(c.U16())
		s.Values = make([]ValueRecord, n)
		for i := range s.Values {
			v, err := parseValueRecord(c, c, vf)
			if err != nil {
				return nil, err
			}
			s.Values[i] = v
		}
	default:
		return nil, FormatError(c.Table(), "SinglePos", "unknown format %d", format)
	}
	var err error
	if s.Coverage, err = coverageAt(c, covOff); err != nil {
		return nil, err
	}
	return s, c.Err()
}

// PairPosGlyphs adjusts the positions of explicit glyph pairs (PairPos format 1).
type PairPosGlyphs struct {
	Coverage *Coverage
	PairSets [][]PairValue // by coverage index of the first glyph
}

// PairValue is an entry of a pair set.
type PairValue struct {
	Second GlyphIndex
	Value1 ValueRecord // applied to the first glyph
	Value2 ValueRecord // applied to the second glyph
}

// PairPosClasses adjusts the positions of glyph pairs by class (PairPos format 2).
type PairPosClasses struct {
	Coverage    *Coverage
	ClassDef1   *ClassDef
	ClassDef2   *ClassDef
	Class2Count int
	Matrix      [][]ClassPairValue // class1 → class2
	// ValueFormat2 is 0 if the second glyph is not adjusted
	ValueFormat2 ValueFormat
}

// ClassPairValue is an entry of a class pair matrix.
type ClassPairValue struct {
	Value1, Value2 ValueRecord
}

func parsePairPos(c *Cursor, format uint16) (any, error) {
	covOff := int(c.U16())
	vf1, vf2 := ValueFormat(c.U16()), ValueFormat(c.U16())
	cov, err := coverageAt(c, covOff)
	if err != nil {
		return nil, err
	}
	switch format {
	case 1:
		p := &PairPosGlyphs{Coverage: cov}
		offsets := c.U16s(int(c.U16()))
		p.PairSets = make([][]PairValue, len(offsets))
		for i, off := range offsets {
			sc := c.At(int(off)).Section("PairSet")
			n := int(sc.U16())
			set := make([]PairValue, n)
			for j := range set {
				set[j].Second = sc.Glyph()
				// device offsets are relative to the pair set
				if set[j].Value1, err = parseValueRecord(sc, sc, vf1); err != nil {
					return nil, err
				}
				if set[j].Value2, err = parseValueRecord(sc, sc, vf2); err != nil {
					return nil, err
				}
			}
			p.PairSets[i] = set
		}
		return p, c.Err()
	case 2:
		p := &PairPosClasses{Coverage: cov, ValueFormat2: vf2}
		cd1Off, cd2Off := int(c.U16()), int(c.U16())
		class1Count, class2Count := int(c.U16()), int(c.U16())
		if _, err := checkedMulInt(class1Count, class2Count); err != nil {
			return nil, FormatError(c.Table(), "PairPos", "class matrix too large")
		}
		if p.ClassDef1, err = classDefAt(c, cd1Off); err != nil {
			return nil, err
		}
		if p.ClassDef2, err = classDefAt(c, cd2Off); err != nil {
			return nil, err
		}
		p.Class2Count = class2Count
		p.Matrix = make([][]ClassPairValue, class1Count)
		for i := range p.Matrix {
			p.Matrix[i] = make([]ClassPairValue, class2Count)
			for j := range p.Matrix[i] {
				if p.Matrix[i][j].Value1, err = parseValueRecord(c, c, vf1); err != nil {
					return nil, err
				}
				if p.Matrix[i][j].Value2, err = parseValueRecord(c, c, vf2); err != nil {
					return nil, err
				}
			}
		}
		return p, c.Err()
	}
	return nil, FormatError(c.Table(), "PairPos", "unknown format %d", format)
}

// CursivePos connects glyphs by entry and exit anchors.
type CursivePos struct {
	Coverage *Coverage
	Entries  []EntryExit // by coverage index
}

// EntryExit holds the entry and exit anchors of a glyph; either may be nil.
type EntryExit struct {
	Entry, Exit *Anchor
}

func parseCursivePos(c *Cursor, format uint16) (any, error) {
	if format != 1 {
		return nil, FormatError(c.Table(), "CursivePos", "unknown format %d", format)
	}
	covOff := int(c.U16())
	n := int(c.U16())
	p := &CursivePos{Entries: make([]EntryExit, n)}
	var err error
	for i := range p.Entries {
		entryOff, exitOff := int(c.U16()), int(c.U16())
		if p.Entries[i].Entry, err = anchorAt(c, entryOff); err != nil {
			return nil, err
		}
		if p.Entries[i].Exit, err = anchorAt(c, exitOff); err != nil {
			return nil, err
		}
	}
	if p.Coverage, err = coverageAt(c, covOff); err != nil {
		return nil, err
	}
	return p, c.Err()
}

// MarkBasePos attaches marks to base glyphs (lookup type 4). It is used for
// mark-to-mark attachment (lookup type 6) as well, where the base glyphs are marks.
type MarkBasePos struct {
	MarkCoverage *Coverage
	BaseCoverage *Coverage
	ClassCount   int
	Marks        []MarkRecord // by mark coverage index
	Bases        [][]*Anchor  // base coverage index → mark class
}

// MarkMarkPos is a mark-to-mark attachment subtable; Bases are the marks to attach to.
type MarkMarkPos struct {
	MarkBasePos
}

func parseMarkAttachment(c *Cursor, format uint16, name string) (*MarkBasePos, error) {
	if format != 1 {
		return nil, FormatError(c.Table(), name, "unknown format %d", format)
	}
	markCovOff, baseCovOff := int(c.U16()), int(c.U16())
	classCount := int(c.U16())
	markArrOff, baseArrOff := int(c.U16()), int(c.U16())
	p := &MarkBasePos{ClassCount: classCount}
	var err error
	if p.MarkCoverage, err = coverageAt(c, markCovOff); err != nil {
		return nil, err
	}
	if p.BaseCoverage, err = coverageAt(c, baseCovOff); err != nil {
		return nil, err
	}
	if p.Marks, err = parseMarkArray(c.At(markArrOff)); err != nil {
		return nil, err
	}
	if p.Bases, err = parseAnchorMatrix(c.At(baseArrOff).Section(name), classCount); err != nil {
		return nil, err
	}
	return p, c.Err()
}

func parseMarkBasePos(c *Cursor, format uint16) (any, error) {
	return parseMarkAttachment(c, format, "MarkBasePos")
}

func parseMarkMarkPos(c *Cursor, format uint16) (any, error) {
	p, err := parseMarkAttachment(c, format, "MarkMarkPos")
	if err != nil {
		return nil, err
	}
	return &MarkMarkPos{*p}, nil
}

// MarkLigPos attaches marks to ligature components.
type MarkLigPos struct {
	MarkCoverage     *Coverage
	LigatureCoverage *Coverage
	ClassCount       int
	Marks            []MarkRecord  // by mark coverage index
	Ligatures        [][][]*Anchor // ligature coverage index → component → mark class
}

func parseMarkLigPos(c *Cursor, format uint16) (any, error) {
	if format != 1 {
		return nil, FormatError(c.Table(), "MarkLigPos", "unknown format %d", format)
	}
	markCovOff, ligCovOff := int(c.U16()), int(c.U16())
	classCount := int(c.U16())
	markArrOff, ligArrOff := int(c.U16()), int(c.U16())
	p := &MarkLigPos{ClassCount: classCount}
	var err error
	if p.MarkCoverage, err = coverageAt(c, markCovOff); err != nil {
		return nil, err
	}
	if p.LigatureCoverage, err = coverageAt(c, ligCovOff); err != nil {
		return nil, err
	}
	if p.Marks, err = parseMarkArray(c.At(markArrOff)); err != nil {
		return nil, err
	}
	lc := c.At(ligArrOff).Section("LigatureArray")
	offsets := lc.U16s(int(lc.U16()))
	p.Ligatures = make([][][]*Anchor, len(offsets))
	for i, off := range offsets {
		if p.Ligatures[i], err = parseAnchorMatrix(lc.At(int(off)).Section("LigatureAttach"), classCount); err != nil {
			return nil, err
		}
	}
	if err := lc.Err(); err != nil {
		return nil, err
	}
	return p, c.Err()
}

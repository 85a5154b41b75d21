package ot

import (
	"fmt"
	"sort"
)

// --- OpenType common layout tables -----------------------------------------
//
// GSUB and GPOS share a common structure: a ScriptList selecting LangSys
// entries, which select features from the FeatureList, which in turn reference
// lookups from the LookupList. Tables are decoded eagerly when a layout table is
// first requested; lookups of type Extension are resolved to the lookup subtable
// they wrap.

// LayoutTable is a decoded GSUB or GPOS table.
type LayoutTable struct {
	Tag      Tag
	Scripts  []ScriptRecord  // sorted by tag
	Features []FeatureRecord // in table order; LangSys entries index into this slice
	Lookups  []*Lookup
}

// ScriptRecord associates a script tag with its language systems.
type ScriptRecord struct {
	Tag    Tag
	Script Script
}

// Script holds the language systems of a script.
type Script struct {
	Default   *LangSys        // may be nil
	Languages []LangSysRecord // sorted by tag
}

// LangSysRecord associates a language tag with a language system.
type LangSysRecord struct {
	Tag     Tag
	LangSys *LangSys
}

// LangSys lists the features which are available for a language system.
type LangSys struct {
	RequiredFeature int // -1 if none
	FeatureIndices  []uint16
}

// FeatureRecord associates a feature tag with the lookups implementing it.
type FeatureRecord struct {
	Tag     Tag
	Lookups []uint16
}

// LookupFlag is the lookup qualifier of a lookup table.
type LookupFlag uint16

// Lookup flags
const (
	RightToLeft            LookupFlag = 0x0001
	IgnoreBaseGlyphs       LookupFlag = 0x0002
	IgnoreLigatures        LookupFlag = 0x0004
	IgnoreMarks            LookupFlag = 0x0008
	UseMarkFilteringSet    LookupFlag = 0x0010
	MarkAttachmentTypeMask LookupFlag = 0xFF00
)

// Lookup is a decoded lookup table. Type is the lookup type of the subtables,
// after resolving Extension lookups.
type Lookup struct {
	Type             uint16
	Flag             LookupFlag
	MarkFilteringSet uint16
	Subtables        []any // one of the *Subst/*Pos types, or *SequenceContext
}

// Script returns the script record for tag, or nil.
func (t *LayoutTable) Script(tag Tag) *Script {
	i := sort.Search(len(t.Scripts), func(i int) bool { return t.Scripts[i].Tag >= tag })
	if i < len(t.Scripts) && t.Scripts[i].Tag == tag {
		return &t.Scripts[i].Script
	}
	return nil
}

// ScriptTags returns the tags of all scripts of the table.
func (t *LayoutTable) ScriptTags() []Tag {
	tags := make([]Tag, len(t.Scripts))
	for i, rec := range t.Scripts {
		tags[i] = rec.Tag
	}
	return tags
}

// LangSys returns the language system for lang. If lang is not present,
// the default language system is returned (which may be nil).
func (s *Script) LangSys(lang Tag) *LangSys {
	if s == nil {
		return nil
	}
	i := sort.Search(len(s.Languages), func(i int) bool { return s.Languages[i].Tag >= lang })
	if i < len(s.Languages) && s.Languages[i].Tag == lang {
		return s.Languages[i].LangSys
	}
	return s.Default
}

// FeatureTags returns the distinct feature tags of the table.
func (t *LayoutTable) FeatureTags() []Tag {
	seen := map[Tag]bool{}
	var tags []Tag
	for _, f := range t.Features {
		if !seen[f.Tag] {
			seen[f.Tag] = true
			tags = append(tags, f.Tag)
		}
	}
	return tags
}

// GSUB returns the font's decoded 'GSUB' table, or nil if the font does not contain one.
func (otf *Font) GSUB() (*LayoutTable, error) {
	return otf.gsub.Get(func() (*LayoutTable, error) {
		c := otf.cursor(T("GSUB"))
		if c == nil {
			return nil, nil
		}
		return parseLayoutTable(c, gsubDecoders, 7)
	})
}

// GPOS returns the font's decoded 'GPOS' table, or nil if the font does not contain one.
func (otf *Font) GPOS() (*LayoutTable, error) {
	return otf.gpos.Get(func() (*LayoutTable, error) {
		c := otf.cursor(T("GPOS"))
		if c == nil {
			return nil, nil
		}
		return parseLayoutTable(c, gposDecoders, 9)
	})
}

// subtableDecoder decodes a lookup subtable of a given lookup type.
type subtableDecoder func(c *Cursor, format uint16) (any, error)

func parseLayoutTable(c *Cursor, decoders map[uint16]subtableDecoder, extType uint16) (*LayoutTable, error) {
	c.Section("header")
	major, minor := c.U16(), c.U16()
	if major != 1 || minor > 1 {
		return nil, FormatError(c.Table(), "header", "unsupported version %d.%d", major, minor)
	}
	scriptOff, featureOff, lookupOff := int(c.U16()), int(c.U16()), int(c.U16())
	if err := c.Err(); err != nil {
		return nil, err
	}
	t := &LayoutTable{Tag: c.Table()}
	var err error
	if scriptOff != 0 {
		if t.Scripts, err = parseScriptList(c.At(scriptOff).Section("ScriptList")); err != nil {
			return nil, err
		}
	}
	if featureOff != 0 {
		if t.Features, err = parseFeatureList(c.At(featureOff).Section("FeatureList")); err != nil {
			return nil, err
		}
	}
	if lookupOff != 0 {
		if t.Lookups, err = parseLookupList(c.At(lookupOff).Section("LookupList"), decoders, extType); err != nil {
			return nil, err
		}
	}
	for _, f := range t.Features {
		for _, inx := range f.Lookups {
			if int(inx) >= len(t.Lookups) {
				return nil, FormatError(c.Table(), "FeatureList", "feature %s references lookup %d of %d",
					f.Tag, inx, len(t.Lookups))
			}
		}
	}
	tracer().Debugf("%s: %d scripts, %d features, %d lookups", t.Tag, len(t.Scripts), len(t.Features), len(t.Lookups))
	return t, nil
}

func parseScriptList(c *Cursor) ([]ScriptRecord, error) {
	n := int(c.U16())
	if n > MaxScriptCount*10 {
		return nil, FormatError(c.Table(), "ScriptList", "too many scripts: %d", n)
	}
	scripts := make([]ScriptRecord, 0, n)
	for i := 0; i < n; i++ {
		tag, off := c.Tag(), int(c.U16())
		if c.Err() != nil {
			break
		}
		sc := c.At(off).Section("Script " + tag.String())
		rec := ScriptRecord{Tag: tag}
		defOff, langCount := int(sc.U16()), int(sc.U16())
		if defOff != 0 {
			rec.Script.Default = parseLangSys(sc.At(defOff))
		}
		for j := 0; j < langCount && sc.Err() == nil; j++ {
			ltag, loff := sc.Tag(), int(sc.U16())
			rec.Script.Languages = append(rec.Script.Languages, LangSysRecord{
				Tag:     ltag,
				LangSys: parseLangSys(sc.At(loff)),
			})
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
		sort.SliceStable(rec.Script.Languages, func(a, b int) bool {
			return rec.Script.Languages[a].Tag < rec.Script.Languages[b].Tag
		})
		scripts = append(scripts, rec)
	}
	sort.SliceStable(scripts, func(a, b int) bool { return scripts[a].Tag < scripts[b].Tag })
	return scripts, c.Err()
}

func parseLangSys(c *Cursor) *LangSys {
	c.Skip(2) // lookupOrderOffset, reserved
	ls := &LangSys{RequiredFeature: int(c.U16())}
	if ls.RequiredFeature == 0xffff {
		ls.RequiredFeature = -1
	}
	ls.FeatureIndices = c.U16s(int(c.U16()))
	if c.Err() != nil {
		return nil
	}
	return ls
}

func parseFeatureList(c *Cursor) ([]FeatureRecord, error) {
	n := int(c.U16())
	if n > MaxFeatureCount*10 {
		return nil, FormatError(c.Table(), "FeatureList", "too many features: %d", n)
	}
	features := make([]FeatureRecord, 0, n)
	for i := 0; i < n; i++ {
		tag, off := c.Tag(), int(c.U16())
		fc := c.At(off)
		fc.Skip(2) // featureParamsOffset
		rec := FeatureRecord{Tag: tag, Lookups: fc.U16s(int(fc.U16()))}
		if err := fc.Err(); err != nil {
			return nil, err
		}
		features = append(features, rec)
	}
	return features, c.Err()
}

func parseLookupList(c *Cursor, decoders map[uint16]subtableDecoder, extType uint16) ([]*Lookup, error) {
	n := int(c.U16())
	if n > MaxLookupCount*10 {
		return nil, FormatError(c.Table(), "LookupList", "too many lookups: %d", n)
	}
	offsets := c.U16s(n)
	if err := c.Err(); err != nil {
		return nil, err
	}
	lookups := make([]*Lookup, n)
	for i, off := range offsets {
		lc := c.At(int(off)).Section(fmt.Sprintf("Lookup %d", i))
		lookup := &Lookup{Type: lc.U16(), Flag: LookupFlag(lc.U16())}
		subOffsets := lc.U16s(int(lc.U16()))
		if lookup.Flag&UseMarkFilteringSet != 0 {
			lookup.MarkFilteringSet = lc.U16()
		}
		if err := lc.Err(); err != nil {
			return nil, err
		}
		for j, soff := range subOffsets {
			sc := lc.At(int(soff)).Section(fmt.Sprintf("Lookup %d/%d type %d", i, j, lookup.Type))
			typ := lookup.Type
			if typ == extType {
				// Extension: format, extensionLookupType, extensionOffset (32 bit)
				sc.Skip(2)
				typ = sc.U16()
				sc = sc.At(int(sc.U32()))
				if typ == extType {
					return nil, FormatError(c.Table(), "Extension", "lookup %d: nested extension", i)
				}
				if lookup.Type != extType && lookup.Type != typ {
					return nil, FormatError(c.Table(), "Extension", "lookup %d: mixed subtable types", i)
				}
				lookup.Type = typ
			}
			dec, ok := decoders[typ]
			if !ok {
				return nil, FormatError(c.Table(), "LookupList", "lookup %d: unknown lookup type %d", i, typ)
			}
			format := sc.U16()
			if err := sc.Err(); err != nil {
				return nil, err
			}
			sub, err := dec(sc, format)
			if err != nil {
				return nil, err
			}
			lookup.Subtables = append(lookup.Subtables, sub)
		}
		lookups[i] = lookup
	}
	return lookups, nil
}

// --- Coverage --------------------------------------------------------------

// Coverage is a Coverage table. It maps glyphs to coverage indices.
type Coverage struct {
	glyphs []GlyphIndex    // format 1, sorted
	ranges []coverageRange // format 2, sorted
}

type coverageRange struct {
	start, end GlyphIndex
	index      int // coverage index of start
}

// Index returns the coverage index of glyph g, or -1 if g is not covered.
func (cov *Coverage) Index(g GlyphIndex) int {
	if cov == nil {
		return -1
	}
	if cov.ranges == nil {
		i := sort.Search(len(cov.glyphs), func(i int) bool { return cov.glyphs[i] >= g })
		if i < len(cov.glyphs) && cov.glyphs[i] == g {
			return i
		}
		return -1
	}
	i := sort.Search(len(cov.ranges), func(i int) bool { return cov.ranges[i].end >= g })
	if i < len(cov.ranges) && cov.ranges[i].start <= g {
		return cov.ranges[i].index + int(g-cov.ranges[i].start)
	}
	return -1
}

// Glyphs returns all covered glyphs, ordered by coverage index.
func (cov *Coverage) Glyphs() []GlyphIndex {
	if cov == nil {
		return nil
	}
	if cov.ranges == nil {
		return cov.glyphs
	}
	var glyphs []GlyphIndex
	for _, r := range cov.ranges {
		for g := int(r.start); g <= int(r.end); g++ {
			glyphs = append(glyphs, GlyphIndex(g))
		}
	}
	return glyphs
}

// Len returns the number of covered glyphs.
func (cov *Coverage) Len() int {
	if cov == nil {
		return 0
	}
	if cov.ranges == nil {
		return len(cov.glyphs)
	}
	n := 0
	for _, r := range cov.ranges {
		n += int(r.end-r.start) + 1
	}
	return n
}

// NewCoverage creates a coverage table from a list of glyphs. Glyphs have to be
// sorted ascending.
func NewCoverage(glyphs ...GlyphIndex) *Coverage {
	return &Coverage{glyphs: glyphs}
}

func parseCoverage(c *Cursor) (*Coverage, error) {
	c.Section("Coverage")
	format := c.U16()
	n := int(c.U16())
	if n > MaxCoverageCount {
		return nil, FormatError(c.Table(), "Coverage", "coverage count too large: %d", n)
	}
	cov := &Coverage{}
	switch format {
	case 1:
		cov.glyphs = c.Glyphs(n)
		if cov.glyphs == nil {
			cov.glyphs = []GlyphIndex{}
		}
	case 2:
		cov.ranges = make([]coverageRange, 0, n)
		for i := 0; i < n && c.Err() == nil; i++ {
			r := coverageRange{start: c.Glyph(), end: c.Glyph(), index: int(c.U16())}
			if r.end < r.start {
				return nil, FormatError(c.Table(), "Coverage", "range %d: end before start", i)
			}
			cov.ranges = append(cov.ranges, r)
		}
	default:
		return nil, FormatError(c.Table(), "Coverage", "unknown coverage format %d", format)
	}
	return cov, c.Err()
}

// coverageAt decodes a coverage table at offset from c. A NULL offset yields nil.
func coverageAt(c *Cursor, offset int) (*Coverage, error) {
	if offset == 0 {
		return nil, nil
	}
	return parseCoverage(c.At(offset))
}

// --- ClassDef --------------------------------------------------------------

// ClassDef is a class definition table. Glyphs not assigned to a class are in class 0.
type ClassDef struct {
	start   GlyphIndex // format 1
	classes []uint16   // format 1
	ranges  []classRange
}

type classRange struct {
	start, end GlyphIndex
	class      uint16
}

// Class returns the class of glyph g.
func (cd *ClassDef) Class(g GlyphIndex) uint16 {
	if cd == nil {
		return 0
	}
	if cd.ranges == nil {
		if g >= cd.start && int(g-cd.start) < len(cd.classes) {
			return cd.classes[g-cd.start]
		}
		return 0
	}
	i := sort.Search(len(cd.ranges), func(i int) bool { return cd.ranges[i].end >= g })
	if i < len(cd.ranges) && cd.ranges[i].start <= g {
		return cd.ranges[i].class
	}
	return 0
}

// GlyphsOfClass returns all glyphs assigned to class, which must not be 0.
func (cd *ClassDef) GlyphsOfClass(class uint16) []GlyphIndex {
	if cd == nil {
		return nil
	}
	var glyphs []GlyphIndex
	for i, cl := range cd.classes {
		if cl == class {
			glyphs = append(glyphs, cd.start+GlyphIndex(i))
		}
	}
	for _, r := range cd.ranges {
		if r.class == class {
			for g := int(r.start); g <= int(r.end); g++ {
				glyphs = append(glyphs, GlyphIndex(g))
			}
		}
	}
	return glyphs
}

// NewClassDef creates a class definition from explicit (glyph, class) ranges.
func NewClassDef(classes map[GlyphIndex]uint16) *ClassDef {
	cd := &ClassDef{ranges: []classRange{}}
	for g, cl := range classes {
		cd.ranges = append(cd.ranges, classRange{start: g, end: g, class: cl})
	}
	sort.Slice(cd.ranges, func(i, j int) bool { return cd.ranges[i].start < cd.ranges[j].start })
	return cd
}

func parseClassDef(c *Cursor) (*ClassDef, error) {
	c.Section("ClassDef")
	format := c.U16()
	cd := &ClassDef{}
	switch format {
	case 1:
		cd.start = c.Glyph()
		n := int(c.U16())
		if n > MaxClassDefCount {
			return nil, FormatError(c.Table(), "ClassDef", "class count too large: %d", n)
		}
		cd.classes = c.U16s(n)
	case 2:
		n := int(c.U16())
		if n > MaxClassDefCount {
			return nil, FormatError(c.Table(), "ClassDef", "range count too large: %d", n)
		}
		cd.ranges = make([]classRange, 0, n)
		for i := 0; i < n && c.Err() == nil; i++ {
			cd.ranges = append(cd.ranges, classRange{start: c.Glyph(), end: c.Glyph(), class: c.U16()})
		}
	default:
		return nil, FormatError(c.Table(), "ClassDef", "unknown class definition format %d", format)
	}
	return cd, c.Err()
}

func classDefAt(c *Cursor, offset int) (*ClassDef, error) {
	if offset == 0 {
		return nil, nil
	}
	return parseClassDef(c.At(offset))
}

// --- Device and VariationIndex tables --------------------------------------

// Device is either a device table adjusting a value for given ppem sizes, or a
// VariationIndex table referencing deltas in the item variation store of GDEF.
type Device struct {
	StartSize, EndSize uint16
	Deltas             []int16 // one per size in [StartSize, EndSize]
	Outer, Inner       uint16  // variation index, if IsVariation()
	variation          bool
}

// IsVariation returns true if the table is a VariationIndex table.
func (d *Device) IsVariation() bool {
	return d != nil && d.variation
}

// DeltaForSize returns the device adjustment for a ppem size.
func (d *Device) DeltaForSize(ppem uint16) int16 {
	if d == nil || d.variation || ppem < d.StartSize || ppem > d.EndSize {
		return 0
	}
	return d.Deltas[ppem-d.StartSize]
}

func parseDevice(c *Cursor) (*Device, error) {
	c.Section("Device")
	a, b, format := c.U16(), c.U16(), c.U16()
	if format == 0x8000 {
		return &Device{Outer: a, Inner: b, variation: true}, c.Err()
	}
	if format < 1 || format > 3 || b < a {
		// unknown formats are reserved for future use and ignored
		return nil, c.Err()
	}
	d := &Device{StartSize: a, EndSize: b}
	n := int(b-a) + 1
	bits := 1 << format // 2, 4 or 8 bits per value
	perWord := 16 / bits
	words := c.U16s((n + perWord - 1) / perWord)
	if words == nil {
		return nil, c.Err()
	}
	d.Deltas = make([]int16, n)
	for i := range d.Deltas {
		w := words[i/perWord]
		shift := 16 - bits*(i%perWord+1)
		v := int16(w>>shift) & int16(1<<bits-1)
		if v >= int16(1<<(bits-1)) { // sign extension
			v -= int16(1 << bits)
		}
		d.Deltas[i] = v
	}
	return d, c.Err()
}

func deviceAt(c *Cursor, offset int) (*Device, error) {
	if offset == 0 {
		return nil, nil
	}
	return parseDevice(c.At(offset))
}

// --- GDEF ------------------------------------------------------------------

// Glyph classes of GDEF's glyph class definition.
const (
	GlyphClassUnassigned = 0
	GlyphClassBase       = 1
	GlyphClassLigature   = 2
	GlyphClassMark       = 3
	GlyphClassComponent  = 4
)

// GDefTable is the decoded glyph definition table.
type GDefTable struct {
	GlyphClasses    *ClassDef
	MarkAttachClass *ClassDef
	MarkGlyphSets   []*Coverage          // version ≥ 1.2
	VarStore        *ItemVariationStore // version ≥ 1.3
}

// GlyphClass returns the GDEF glyph class of g.
func (gdef *GDefTable) GlyphClass(g GlyphIndex) uint16 {
	if gdef == nil {
		return GlyphClassUnassigned
	}
	return gdef.GlyphClasses.Class(g)
}

// InMarkGlyphSet returns true if g is contained in mark glyph set set.
func (gdef *GDefTable) InMarkGlyphSet(set uint16, g GlyphIndex) bool {
	if gdef == nil || int(set) >= len(gdef.MarkGlyphSets) {
		return false
	}
	return gdef.MarkGlyphSets[set].Index(g) >= 0
}

// GDEF returns the font's decoded 'GDEF' table, or nil if the font does not contain one.
func (otf *Font) GDEF() (*GDefTable, error) {
	return otf.gdef.Get(func() (*GDefTable, error) {
		c := otf.cursor(T("GDEF"))
		if c == nil {
			return nil, nil
		}
		return parseGDef(c)
	})
}

func parseGDef(c *Cursor) (*GDefTable, error) {
	c.Section("header")
	major, minor := c.U16(), c.U16()
	if major != 1 || minor > 3 {
		return nil, FormatError(T("GDEF"), "header", "unsupported GDEF version %d.%d", major, minor)
	}
	classOff := int(c.U16())
	c.Skip(4) // attachList, ligCaretList
	markAttachOff := int(c.U16())
	var markSetsOff, varStoreOff int
	if minor >= 2 {
		markSetsOff = int(c.U16())
	}
	if minor >= 3 {
		varStoreOff = int(c.U32())
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	gdef := &GDefTable{}
	var err error
	if gdef.GlyphClasses, err = classDefAt(c, classOff); err != nil {
		return nil, err
	}
	if gdef.MarkAttachClass, err = classDefAt(c, markAttachOff); err != nil {
		return nil, err
	}
	if markSetsOff != 0 {
		mc := c.At(markSetsOff).Section("MarkGlyphSets")
		mc.Skip(2) // format
		n := int(mc.U16())
		for i := 0; i < n && mc.Err() == nil; i++ {
			cov, err := parseCoverage(mc.At(int(mc.U32())))
			if err != nil {
				return nil, err
			}
			gdef.MarkGlyphSets = append(gdef.MarkGlyphSets, cov)
		}
		if err := mc.Err(); err != nil {
			return nil, err
		}
	}
	if varStoreOff != 0 {
		if gdef.VarStore, err = parseItemVariationStore(c.At(varStoreOff)); err != nil {
			return nil, err
		}
	}
	return gdef, nil
}

// --- Item variation store --------------------------------------------------

// ItemVariationStore holds the deltas for variable fonts, referenced by
// VariationIndex tables.
type ItemVariationStore struct {
	Regions [][]RegionAxis // region → axis
	Data    []ItemVariationData
}

// RegionAxis is the extent of a variation region along one axis, in normalized
// coordinates.
type RegionAxis struct {
	Start, Peak, End float64
}

// ItemVariationData holds delta sets for a subset of regions.
type ItemVariationData struct {
	RegionIndices []uint16
	Deltas        [][]int32 // item → delta per region index
}

func parseItemVariationStore(c *Cursor) (*ItemVariationStore, error) {
	c.Section("ItemVariationStore")
	if format := c.U16(); format != 1 {
		return nil, FormatError(c.Table(), "ItemVariationStore", "unsupported format %d", format)
	}
	regionOff := int(c.U32())
	offsets := c.U32s(int(c.U16()))
	if err := c.Err(); err != nil {
		return nil, err
	}
	store := &ItemVariationStore{}
	rc := c.At(regionOff).Section("VariationRegionList")
	axisCount, regionCount := int(rc.U16()), int(rc.U16())
	if axisCount > 64 {
		return nil, FormatError(c.Table(), "VariationRegionList", "too many axes: %d", axisCount)
	}
	for r := 0; r < regionCount && rc.Err() == nil; r++ {
		axes := make([]RegionAxis, axisCount)
		for a := range axes {
			axes[a] = RegionAxis{Start: rc.F2Dot14(), Peak: rc.F2Dot14(), End: rc.F2Dot14()}
		}
		store.Regions = append(store.Regions, axes)
	}
	if err := rc.Err(); err != nil {
		return nil, err
	}
	for _, off := range offsets {
		dc := c.At(int(off)).Section("ItemVariationData")
		itemCount, wordDeltas := int(dc.U16()), dc.U16()
		data := ItemVariationData{RegionIndices: dc.U16s(int(dc.U16()))}
		long := wordDeltas&0x8000 != 0
		words := int(wordDeltas & 0x7fff)
		for i := 0; i < itemCount && dc.Err() == nil; i++ {
			row := make([]int32, len(data.RegionIndices))
			for j := range row {
				switch {
				case j < words && long:
					row[j] = dc.I32()
				case j < words:
					row[j] = int32(dc.I16())
				case long:
					row[j] = int32(dc.I16())
				default:
					row[j] = int32(dc.I8())
				}
			}
			data.Deltas = append(data.Deltas, row)
		}
		if err := dc.Err(); err != nil {
			return nil, err
		}
		store.Data = append(store.Data, data)
	}
	return store, nil
}

// Delta returns the interpolated delta for variation index (outer, inner), given
// normalized coordinates for the font's axes.
func (store *ItemVariationStore) Delta(outer, inner uint16, coords []float64) float64 {
	if store == nil || len(coords) == 0 || int(outer) >= len(store.Data) {
		return 0
	}
	data := store.Data[outer]
	if int(inner) >= len(data.Deltas) {
		return 0
	}
	delta := 0.0
	for j, rinx := range data.RegionIndices {
		if int(rinx) >= len(store.Regions) {
			continue
		}
		s := regionScalar(store.Regions[rinx], coords)
		delta += s * float64(data.Deltas[inner][j])
	}
	return delta
}

// regionScalar calculates the scalar of a region for coordinates coords.
func regionScalar(region []RegionAxis, coords []float64) float64 {
	s := 1.0
	for a, axis := range region {
		if axis.Start > axis.Peak || axis.Peak > axis.End {
			continue
		}
		if axis.Start < 0 && axis.End > 0 && axis.Peak != 0 {
			continue
		}
		if axis.Peak == 0 {
			continue
		}
		coord := 0.0
		if a < len(coords) {
			coord = coords[a]
		}
		switch {
		case coord < axis.Start || coord > axis.End:
			return 0
		case coord == axis.Peak:
		case coord < axis.Peak:
			s *= (coord - axis.Start) / (axis.Peak - axis.Start)
		default:
			s *= (axis.End - coord) / (axis.End - axis.Peak)
		}
	}
	return s
}

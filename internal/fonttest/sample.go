package fonttest

// Glyphs of the sample fonts.
const (
	SampleNotdef = iota
	SampleSpace
	SampleA
	SampleB
	SampleF
	SampleI
	SampleFI
	SampleAcute
	SampleGlyphCount
)

// Names of the sample fonts.
const (
	SampleFamily         = "Sample Sans"
	SamplePostScriptName = "SampleSans-Regular"
)

// SampleCMap maps the characters of the sample fonts to glyphs.
var SampleCMap = map[rune]uint16{
	' ':    SampleSpace,
	'A':    SampleA,
	'B':    SampleB,
	'f':    SampleF,
	'i':    SampleI,
	0x0301: SampleAcute,
}

// SampleAdvances are the advance widths of the sample glyphs.
var SampleAdvances = []uint16{500, 250, 600, 600, 300, 250, 550, 0}

// sampleBoxes are the outlines of the sample glyphs, one rectangle each
// (xMin, yMin, xMax, yMax). The space glyph has none.
var sampleBoxes = [][4]int16{
	{50, 0, 450, 700},
	{},
	{20, 0, 580, 700},
	{80, 0, 520, 700},
	{40, 0, 280, 720},
	{60, 0, 190, 680},
	{40, 0, 520, 720},
	{-180, 560, -60, 750},
}

func rectangle(box [4]int16) [][]Point {
	return [][]Point{{On(box[0], box[1]), On(box[0], box[3]), On(box[2], box[3]), On(box[2], box[1])}}
}

func sampleCommon(f *SFNT) *SFNT {
	lsbs := make([]int16, SampleGlyphCount)
	for i, box := range sampleBoxes {
		lsbs[i] = box[0]
	}
	f.Table("hhea", HHea(800, -200, 100, 600, SampleGlyphCount))
	f.Table("hmtx", HMtx(SampleAdvances, lsbs))
	f.Table("OS/2", OS2(OS2Metrics{
		WeightClass:   400,
		FsSelection:   0x40,
		TypoAscender:  800,
		TypoDescender: -200,
		TypoLineGap:   100,
		XHeight:       500,
		CapHeight:     700,
	}))
	f.Table("post", Post(0, -100, 50, false))
	f.Table("name", Name(map[uint16]string{
		1: SampleFamily,
		2: "Regular",
		4: SampleFamily + " Regular",
		5: "Version 1.000",
		6: SamplePostScriptName,
	}))
	f.Table("cmap", CMap(
		CMapRecord{Platform: 0, Encoding: 3, Subtable: CMapFormat4(SampleCMap, false)},
		CMapRecord{Platform: 3, Encoding: 1, Subtable: CMapFormat4(SampleCMap, false)},
	))
	f.Table("GSUB", Layout("latn",
		[]Feature{{Tag: "liga", Lookups: []uint16{0}}},
		[]Lookup{{Type: 4, Subtables: [][]byte{LigatureSubst(Ligature{
			Glyph: SampleFI, Components: []uint16{SampleF, SampleI}})}}}))
	f.Table("GPOS", Layout("latn",
		[]Feature{{Tag: "kern", Lookups: []uint16{0}}},
		[]Lookup{{Type: 2, Subtables: [][]byte{PairPos1(XAdvance, 0,
			Pair{First: SampleA, Second: SampleB, Value1: Value{XAdvance: -40}})}}}))
	f.Table("GDEF", GDEF(map[uint16]uint16{
		SampleA:     1,
		SampleB:     1,
		SampleF:     1,
		SampleI:     1,
		SampleFI:    2,
		SampleAcute: 3,
	}, map[uint16]uint16{SampleAcute: 1}))
	return f
}

// SampleTrueType builds a complete font with 'glyf' outlines. It carries
// all required tables plus GSUB ('liga' f i), GPOS ('kern' A B) and GDEF.
func SampleTrueType() *SFNT {
	glyphs := make([][]byte, SampleGlyphCount)
	for i, box := range sampleBoxes {
		if box != [4]int16{} {
			glyphs[i] = SimpleGlyph(rectangle(box)...)
		}
	}
	glyf, loca := Glyf(glyphs, false)
	f := NewSFNT(TrueType)
	f.Table("head", Head(1000, 0, [4]int16{-180, 0, 580, 750}, 0))
	f.Table("maxp", MaxP(SampleGlyphCount, true))
	f.Table("glyf", glyf)
	f.Table("loca", loca)
	return sampleCommon(f)
}

// SampleCFF builds the sample font with a CFF outline program.
func SampleCFF() *SFNT {
	charstrings := make([][]byte, SampleGlyphCount)
	for i, box := range sampleBoxes {
		width := int(SampleAdvances[i])
		if box == [4]int16{} {
			charstrings[i] = Charstring(width, EndChar)
			continue
		}
		w, h := int(box[2]-box[0]), int(box[3]-box[1])
		charstrings[i] = Charstring(width, int(box[0]), int(box[1]), RMoveTo,
			h, VLineTo, w, HLineTo, -h, VLineTo, EndChar)
	}
	f := NewSFNT(OpenType)
	f.Table("head", Head(1000, 0, [4]int16{-180, 0, 580, 750}, 0))
	f.Table("maxp", MaxP(SampleGlyphCount, false))
	f.Table("CFF ", CFF(CFFSpec{Name: SamplePostScriptName, CharStrings: charstrings}))
	return sampleCommon(f)
}

// SampleAAT builds the TrueType sample font laid out with AAT: GSUB is
// replaced by a morx ligature subtable forming fi from f and i, and kerning
// moves from GPOS to a legacy 'kern' table.
func SampleAAT() *SFNT {
	const (
		setComponent  = 0x8000
		performAction = 0x2000
	)
	st := StateTable{
		NClasses: 6,
		Classes:  map[uint16]uint16{SampleF: 4, SampleI: 5},
		States: [][]uint16{
			{0, 0, 0, 0, 1, 0}, // start of text
			{0, 0, 0, 0, 1, 0}, // start of line
			{0, 0, 3, 0, 1, 2}, // seen f
		},
		Entries: []MorxEntry{
			{NewState: 0},
			{NewState: 2, Flags: setComponent},
			{NewState: 0, Flags: setComponent | performAction, Args: []uint16{0}},
			{NewState: 2},
		},
	}
	actions := []uint32{LigatureAction(false, false, 0), LigatureAction(true, false, 0)}
	components := make([]uint16, SampleI+1)
	components[SampleI] = 1
	liga := MorxSubtable{
		Type:  2,
		Flags: 1,
		Body:  LigatureBody(st, actions, components, []uint16{0, SampleFI}),
	}
	f := SampleTrueType().Remove("GSUB").Remove("GPOS")
	f.Table("morx", Morx(MorxChain{
		DefaultFlags: 1,
		Features:     []MorxFeature{{Type: 1, Setting: 2, Enable: 1, Disable: 0xffffffff}},
		Subtables:    []MorxSubtable{liga},
	}))
	f.Table("kern", Kern(KernFormat0(1, KernPair{Left: SampleA, Right: SampleB, Value: -40})))
	return f
}

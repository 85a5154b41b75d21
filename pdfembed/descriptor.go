package pdfembed

import (
	"math"
	"sort"

	"github.com/npillmayer/fontkit/ot"
)

// Flags are the flags of a PDF font descriptor (PDF 32000-1:2008, 9.8.2).
type Flags uint32

// Font descriptor flags.
const (
	FlagFixedPitch  Flags = 1 << 0
	FlagSerif       Flags = 1 << 1
	FlagSymbolic    Flags = 1 << 2
	FlagScript      Flags = 1 << 3
	FlagNonsymbolic Flags = 1 << 5
	FlagItalic      Flags = 1 << 6
)

// FontDescriptor holds the entries of a PDF font descriptor. Lengths are in
// text space units.
type FontDescriptor struct {
	FontName    string
	Flags       Flags
	FontBBox    [4]float64 // llx, lly, urx, ury
	ItalicAngle float64
	Ascent      float64
	Descent     float64
	CapHeight   float64
	XHeight     float64
	StemV       float64
}

// Descriptor returns the font descriptor of the embedded font.
func (ef *Font) Descriptor() FontDescriptor {
	f, q := ef.font, ef.scale
	bbox := f.BBox()
	capHeight := f.CapHeight()
	if capHeight == 0 {
		capHeight = f.Ascent()
	}
	return FontDescriptor{
		FontName: ef.BaseFontName(),
		Flags:    ef.Flags(),
		FontBBox: [4]float64{
			math.Round(bbox.MinX * q), math.Round(bbox.MinY * q),
			math.Round(bbox.MaxX * q), math.Round(bbox.MaxY * q),
		},
		ItalicAngle: f.ItalicAngle(),
		Ascent:      math.Round(float64(f.Ascent()) * q),
		Descent:     math.Round(float64(f.Descent()) * q),
		CapHeight:   math.Round(float64(capHeight) * q),
		XHeight:     math.Round(float64(f.XHeight()) * q),
		StemV:       ef.stemV(),
	}
}

// Flags derives the descriptor flags from the font's family class, 'post'
// and 'head'. Fonts are always flagged symbolic, as subsets may contain
// glyphs outside the standard Latin character set.
func (ef *Font) Flags() Flags {
	otf := ef.font.OT
	flags := FlagSymbolic
	if ef.font.IsFixedPitch() {
		flags |= FlagFixedPitch
	}
	if os2, err := otf.OS2(); err == nil && os2 != nil {
		switch class := os2.FamilyClass >> 8; {
		case class >= 1 && class <= 7:
			flags |= FlagSerif
		case class == 10:
			flags |= FlagScript
		}
	}
	if otf.Head.MacStyle&ot.MacStyleItalic != 0 {
		flags |= FlagItalic
	}
	return flags
}

// stemV estimates the dominant vertical stem width from the weight class.
// sfnt fonts do not carry the value.
func (ef *Font) stemV() float64 {
	os2, err := ef.font.OT.OS2()
	if err != nil || os2 == nil || os2.WeightClass == 0 {
		return 70
	}
	return math.Round(0.0838*float64(os2.WeightClass) + 36.0198)
}

const subsetModulus = 26 * 26 * 26 * 26 * 26 * 26

// SubsetTag returns a tag of six uppercase letters identifying the subset.
// The tag is derived from the set of glyphs in use, so equal subsets of a
// font get equal tags.
func (ef *Font) SubsetTag() string {
	glyphs := append([]ot.GlyphIndex(nil), ef.subset.Glyphs()...)
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i] < glyphs[j] })
	x := uint32(ef.font.NumGlyphs())
	for _, g := range glyphs {
		// 11 is relatively prime to 26 and keeps x*11 within 32 bits
		x = (x*11 + uint32(g)) % subsetModulus
	}
	var tag [6]byte
	for i := range tag {
		tag[i] = 'A' + byte(x%26)
		x /= 26
	}
	return string(tag[:])
}

// BaseFontName returns the name of the embedded font, TAG+PostScriptName.
func (ef *Font) BaseFontName() string {
	name := ef.font.PostScriptName()
	if name == "" {
		name = "Unnamed"
	}
	return ef.SubsetTag() + "+" + name
}

package fontkit

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/fontkit/aat"
	"github.com/npillmayer/fontkit/cff"
	"github.com/npillmayer/fontkit/glyph"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/otlayout"
	"github.com/npillmayer/fontkit/otquery"
	"github.com/npillmayer/fontkit/ttf"
	xfont "golang.org/x/image/font"
)

// Font is a single font of a font file, ready for metric queries, glyph
// creation, layout and subsetting.
//
// All tables are decoded on first access and memoized. A Font is not safe for
// concurrent use.
type Font struct {
	OT       *ot.Font // decoded sfnt structure
	Format   Format   // container format the font has been read from
	Defaults Options  // layout options applied before per-call options
	cmap     *ot.CMap // nil for fonts without character map
	kind     glyph.Kind
	outline  glyph.Kind // TrueType or CFF, for layers and bitmap fallbacks
	glyphs   map[ot.GlyphIndex]*glyph.Glyph
	metrics  ot.Lazy[otquery.FontMetricsInfo]
	layout   ot.Lazy[*otlayout.Tables]
	aat      ot.Lazy[*aat.Engine]
	cff      ot.Lazy[*cff.Font]
	glyf     ot.Lazy[*ttf.Outlines]
}

// newFont wraps a decoded sfnt. The character map is decoded eagerly, which
// rejects fonts with an unconvertible legacy encoding right away.
func newFont(otf *ot.Font, format Format) (*Font, error) {
	f := &Font{
		OT:     otf,
		Format: format,
		glyphs: make(map[ot.GlyphIndex]*glyph.Glyph),
	}
	if otf.HasTable(ot.T("cmap")) {
		cmap, err := otf.CMap()
		if err != nil {
			if errors.Is(err, ot.ErrEncodingUnavailable) {
				tracer().Errorf("font has no usable character map: %v", err)
			}
			return nil, err
		}
		f.cmap = cmap
	}
	f.outline = glyph.TrueType
	if otf.IsCFF() {
		f.outline = glyph.CFF
	}
	switch {
	case otf.HasTable(ot.T("COLR")) && otf.HasTable(ot.T("CPAL")):
		f.kind = glyph.COLR
	case otf.HasTable(ot.T("sbix")):
		f.kind = glyph.SBIX
	default:
		f.kind = f.outline
	}
	tracer().Infof("opened %s font %q with %d glyphs", f.kind, f.PostScriptName(), otf.NumGlyphs())
	return f, nil
}

func (f *Font) String() string {
	return fmt.Sprintf("font(%s, %s)", f.PostScriptName(), f.kind)
}

// GlyphKind returns the kind of glyphs the font creates.
func (f *Font) GlyphKind() glyph.Kind {
	return f.kind
}

// CMap returns the font's character map, or nil.
func (f *Font) CMap() *ot.CMap {
	return f.cmap
}

// --- Names -----------------------------------------------------------------

// PostScriptName returns the PostScript name of the font.
func (f *Font) PostScriptName() string { return otquery.PostScriptName(f.OT) }

// FamilyName returns the font's family name, preferring the typographic family.
func (f *Font) FamilyName() string { return otquery.FamilyName(f.OT) }

// SubfamilyName returns the font's style name, e.g. "Bold Italic".
func (f *Font) SubfamilyName() string { return otquery.SubfamilyName(f.OT) }

// FullName returns the font's full name.
func (f *Font) FullName() string { return otquery.FullName(f.OT) }

// --- Metrics ---------------------------------------------------------------

func (f *Font) fontMetrics() otquery.FontMetricsInfo {
	m, _ := f.metrics.Get(func() (otquery.FontMetricsInfo, error) {
		return otquery.FontMetrics(f.OT), nil
	})
	return m
}

// UnitsPerEm returns the size of the em square in design units.
func (f *Font) UnitsPerEm() int { return int(f.OT.UnitsPerEm()) }

// Ascent returns the font's ascender in design units.
func (f *Font) Ascent() int { return int(f.fontMetrics().Ascent) }

// Descent returns the font's descender in design units. It is usually negative.
func (f *Font) Descent() int { return int(f.fontMetrics().Descent) }

// LineGap returns the additional space between lines, in design units.
func (f *Font) LineGap() int { return int(f.fontMetrics().LineGap) }

// UnderlinePosition returns the position of the underline, in design units.
func (f *Font) UnderlinePosition() int { return int(f.fontMetrics().UnderlinePosition) }

// UnderlineThickness returns the stroke width of the underline, in design units.
func (f *Font) UnderlineThickness() int { return int(f.fontMetrics().UnderlineThickness) }

// ItalicAngle returns the slant of the font in degrees counter-clockwise from
// the vertical.
func (f *Font) ItalicAngle() float64 { return f.fontMetrics().ItalicAngle }

// CapHeight returns the height of capital letters. Fonts which do not state
// it report their ascent.
func (f *Font) CapHeight() int { return int(f.fontMetrics().CapHeight) }

// XHeight returns the height of lower case letters, or 0 if unknown.
func (f *Font) XHeight() int { return int(f.fontMetrics().XHeight) }

// IsFixedPitch returns true for monospaced fonts.
func (f *Font) IsFixedPitch() bool { return f.fontMetrics().IsFixedPitch }

// BBox returns the union of all glyph bounding boxes, as stated in 'head'.
func (f *Font) BBox() glyph.BBox {
	b := f.fontMetrics().BBox
	return glyph.BBox{
		MinX: float64(b.MinX), MinY: float64(b.MinY),
		MaxX: float64(b.MaxX), MaxY: float64(b.MaxY),
	}
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int { return f.OT.NumGlyphs() }

// Style returns the style of the font, derived from 'OS/2' or 'head'.
func (f *Font) Style() xfont.Style {
	if os2, err := f.OT.OS2(); err == nil && os2 != nil {
		if os2.FsSelection&ot.FsSelectionItalic != 0 {
			return xfont.StyleItalic
		}
		return xfont.StyleNormal
	}
	if f.OT.Head.MacStyle&ot.MacStyleItalic != 0 {
		return xfont.StyleItalic
	}
	return xfont.StyleNormal
}

// Weight returns the weight of the font, derived from the weight class of 'OS/2'.
func (f *Font) Weight() xfont.Weight {
	if os2, err := f.OT.OS2(); err == nil && os2 != nil && os2.WeightClass > 0 {
		w := int(math.Round(float64(os2.WeightClass)/100)) - 4
		return xfont.Weight(max(int(xfont.WeightThin), min(w, int(xfont.WeightBlack))))
	}
	if f.OT.Head.MacStyle&ot.MacStyleBold != 0 {
		return xfont.WeightBold
	}
	return xfont.WeightNormal
}

// --- Character map ---------------------------------------------------------

// CharacterSet returns all code points the font has glyphs for, ascending.
func (f *Font) CharacterSet() []rune {
	if f.cmap == nil {
		return nil
	}
	return f.cmap.CharacterSet()
}

// HasGlyphForCodePoint returns true if the font maps r to a glyph other than .notdef.
func (f *Font) HasGlyphForCodePoint(r rune) bool {
	return f.cmap.Lookup(r, 0) != 0
}

// GlyphForCodePoint returns the glyph for r, .notdef if the font does not map r.
func (f *Font) GlyphForCodePoint(r rune) *glyph.Glyph {
	return f.Glyph(f.cmap.Lookup(r, 0), []rune{r})
}

// GlyphsForString maps a string to glyphs, one per code point. Unicode
// variation selectors select a variant of the preceding character and do not
// produce glyphs of their own.
func (f *Font) GlyphsForString(s string) []*glyph.Glyph {
	return f.glyphsForRunes([]rune(s))
}

func (f *Font) glyphsForRunes(text []rune) []*glyph.Glyph {
	glyphs := make([]*glyph.Glyph, 0, len(text))
	for i := 0; i < len(text); i++ {
		r, vs := text[i], rune(0)
		if i+1 < len(text) && isVariationSelector(text[i+1]) {
			vs = text[i+1]
			i++
		}
		glyphs = append(glyphs, f.Glyph(f.cmap.Lookup(r, vs), []rune{r}))
	}
	return glyphs
}

func isVariationSelector(r rune) bool {
	return (r >= 0xfe00 && r <= 0xfe0f) || (r >= 0xe0100 && r <= 0xe01ef)
}

// GlyphIndex maps a code point to a glyph, 0 if unmapped.
func (f *Font) GlyphIndex(r rune) ot.GlyphIndex {
	return f.cmap.Lookup(r, 0)
}

// --- Glyphs ----------------------------------------------------------------

// Glyph returns glyph gid of the font. If codePoints is nil, the code points
// are taken from the character map, and the glyph is cached.
func (f *Font) Glyph(gid ot.GlyphIndex, codePoints []rune) *glyph.Glyph {
	return f.newGlyph(gid, codePoints, f.kind)
}

func (f *Font) newGlyph(gid ot.GlyphIndex, codePoints []rune, kind glyph.Kind) *glyph.Glyph {
	if codePoints != nil {
		return glyph.New(gid, codePoints, kind, glyphSource{f: f, colr: kind == glyph.COLR})
	}
	if g, ok := f.glyphs[gid]; ok && g.Kind == kind {
		return g
	}
	g := glyph.New(gid, f.cmap.CodePointsForGlyph(gid), kind, glyphSource{f: f, colr: kind == glyph.COLR})
	if kind == f.kind {
		f.glyphs[gid] = g
	}
	return g
}

// StringsForGlyph returns the strings which map to glyph gid, either through
// the character map or through the font's default AAT substitutions.
func (f *Font) StringsForGlyph(gid ot.GlyphIndex) ([]string, error) {
	set := treeset.NewWithStringComparator()
	for _, r := range f.cmap.CodePointsForGlyph(gid) {
		set.Add(string(r))
	}
	engine, err := f.aatEngine()
	if err != nil {
		return nil, err
	}
	if engine != nil {
		strings, err := engine.StringsForGlyph(gid)
		if err != nil {
			return nil, err
		}
		for _, s := range strings {
			set.Add(s)
		}
	}
	strings := make([]string, 0, set.Size())
	for _, s := range set.Values() {
		strings = append(strings, s.(string))
	}
	return strings, nil
}

// AvailableFeatures returns the tags of the layout features the font supports.
// Fonts laid out with AAT report the OpenType equivalents of their morx features.
func (f *Font) AvailableFeatures() ([]ot.Tag, error) {
	if f.usesAAT() {
		engine, err := f.aatEngine()
		if err != nil {
			return nil, err
		}
		return engine.AvailableFeatures(), nil
	}
	tables, err := f.layoutTables()
	if err != nil {
		return nil, err
	}
	return tables.AvailableFeatures(), nil
}

// --- Lazily decoded outline and layout data --------------------------------

func (f *Font) layoutTables() (*otlayout.Tables, error) {
	return f.layout.Get(func() (*otlayout.Tables, error) {
		return otlayout.LoadTables(f.OT)
	})
}

// usesAAT returns true if text is laid out with the font's morx table.
func (f *Font) usesAAT() bool {
	return f.OT.HasTable(ot.T("morx")) && !f.OT.HasTable(ot.T("GSUB"))
}

func (f *Font) aatEngine() (*aat.Engine, error) {
	return f.aat.Get(func() (*aat.Engine, error) {
		data := f.OT.Table(ot.T("morx"))
		if data == nil {
			return nil, nil
		}
		morx, err := aat.ParseMorx(data, f.NumGlyphs())
		if err != nil {
			return nil, err
		}
		var cmap aat.ReverseMapper = emptyMapper{}
		if f.cmap != nil {
			cmap = f.cmap
		}
		return aat.NewEngine(morx, func(gid ot.GlyphIndex, cps []rune) *glyph.Glyph {
			return f.Glyph(gid, cps)
		}, cmap), nil
	})
}

type emptyMapper struct{}

func (emptyMapper) CodePointsForGlyph(ot.GlyphIndex) []rune { return nil }

func (f *Font) cffFont() (*cff.Font, error) {
	return f.cff.Get(func() (*cff.Font, error) {
		data := f.OT.Table(ot.T("CFF "))
		if data == nil {
			return nil, ot.FormatError(ot.T("CFF "), "directory", "font has no CFF outlines")
		}
		return cff.Parse(data)
	})
}

func (f *Font) trueTypeOutlines() (*ttf.Outlines, error) {
	return f.glyf.Get(func() (*ttf.Outlines, error) {
		return ttf.NewOutlines(f.OT)
	})
}

// --- Glyph source ----------------------------------------------------------

// glyphSource supplies glyphs of all kinds with outlines, metrics, names,
// color layers and bitmaps. Layers of color glyphs are plain outline glyphs.
type glyphSource struct {
	f    *Font
	colr bool // paths are the union of color layers
}

var (
	_ glyph.Source      = glyphSource{}
	_ glyph.Namer       = glyphSource{}
	_ glyph.LayerSource = glyphSource{}
	_ glyph.ImageSource = glyphSource{}
)

func (src glyphSource) GlyphPath(gid ot.GlyphIndex) (*glyph.Path, error) {
	if src.colr {
		return src.layeredPath(gid)
	}
	return src.outlinePath(gid)
}

// outlinePath returns the TrueType or CFF outline of gid. Bitmap-only fonts
// have empty outlines.
func (src glyphSource) outlinePath(gid ot.GlyphIndex) (*glyph.Path, error) {
	switch {
	case src.f.OT.IsCFF():
		cf, err := src.f.cffFont()
		if err != nil {
			return nil, err
		}
		o, err := cf.Outline(gid)
		if err != nil {
			return nil, err
		}
		return o.Path, nil
	case src.f.OT.HasTable(ot.T("glyf")):
		outlines, err := src.f.trueTypeOutlines()
		if err != nil {
			return nil, err
		}
		return outlines.Path(gid)
	}
	return glyph.NewPath(), nil
}

// layeredPath is the union of the outlines of a color glyph's layers.
func (src glyphSource) layeredPath(gid ot.GlyphIndex) (*glyph.Path, error) {
	layers, err := src.GlyphLayers(gid)
	if err != nil {
		return nil, err
	}
	p := glyph.NewPath()
	for _, l := range layers {
		lp, err := l.Glyph.Path()
		if err != nil {
			return nil, err
		}
		p.AppendPath(lp)
	}
	return p, nil
}

func (src glyphSource) GlyphMetrics(gid ot.GlyphIndex) (glyph.Metrics, error) {
	otf := src.f.OT
	var m glyph.Metrics
	hmtx, err := otf.HMtx()
	if err != nil {
		return m, err
	}
	h := hmtx.Metric(gid)
	m.AdvanceWidth, m.LeftBearing = float64(h.Advance), float64(h.Bearing)
	vmtx, err := otf.VMtx()
	if err != nil {
		return m, err
	}
	if vmtx != nil {
		v := vmtx.Metric(gid)
		m.AdvanceHeight, m.TopBearing = float64(v.Advance), float64(v.Bearing)
		return m, nil
	}
	// without vertical metrics, glyphs are stacked at the line height
	var ascent, descent float64
	if os2, _ := otf.OS2(); os2 != nil && os2.Version > 0 {
		ascent, descent = float64(os2.TypoAscender), float64(os2.TypoDescender)
	} else if hhea, _ := otf.HHea(); hhea != nil {
		ascent, descent = float64(hhea.Ascender), float64(hhea.Descender)
	}
	m.AdvanceHeight = math.Abs(ascent - descent)
	p, err := src.outlinePath(gid)
	if err != nil {
		return m, err
	}
	if cbox := p.CBox(); !cbox.IsEmpty() {
		m.TopBearing = ascent - cbox.MaxY
	}
	return m, nil
}

func (src glyphSource) GlyphName(gid ot.GlyphIndex) string {
	if src.f.OT.IsCFF() {
		if cf, err := src.f.cffFont(); err == nil {
			if name := cf.GlyphName(gid); name != "" {
				return name
			}
		}
	}
	post, err := src.f.OT.Post()
	if err != nil {
		return ""
	}
	return post.GlyphName(gid)
}

var black = color.RGBA{A: 0xff}

// GlyphLayers returns the layers of a color glyph, painted with palette 0.
// Glyphs without color layers consist of themselves, drawn in black.
func (src glyphSource) GlyphLayers(gid ot.GlyphIndex) ([]glyph.Layer, error) {
	colr, err := src.f.OT.COLR()
	if err != nil {
		return nil, err
	}
	cpal, err := src.f.OT.CPAL()
	if err != nil {
		return nil, err
	}
	records := colr.Layers(gid)
	if records == nil {
		return []glyph.Layer{{Glyph: src.f.newGlyph(gid, nil, src.f.outline), Color: black}}, nil
	}
	layers := make([]glyph.Layer, len(records))
	for i, rec := range records {
		c, ok := cpal.Color(0, rec.PaletteIndex)
		if !ok {
			c = black
		}
		layers[i] = glyph.Layer{Glyph: src.f.newGlyph(rec.Glyph, nil, src.f.outline), Color: c}
	}
	return layers, nil
}

// GlyphImage returns the bitmap of gid from the strike best suited for size.
func (src glyphSource) GlyphImage(gid ot.GlyphIndex, size float64) (*glyph.Image, error) {
	sbix, err := src.f.OT.SBix()
	if err != nil {
		return nil, err
	}
	strike := sbix.Strike(size)
	bm, err := strike.Glyph(gid)
	if err != nil || bm == nil {
		return nil, err
	}
	return &glyph.Image{
		PPEM:    strike.PPEM,
		OriginX: bm.OriginX,
		OriginY: bm.OriginY,
		Type:    bm.Type,
		Data:    bm.Data,
	}, nil
}

package glyph

import (
	"fmt"
	"image/color"
	"unicode"

	"github.com/npillmayer/fontkit/ot"
)

// Kind is the kind of outline data a glyph is described by.
type Kind uint8

// Glyph kinds. SBIX and COLR glyphs carry bitmap images or colored layers in
// addition to (or instead of) a vector outline.
const (
	TrueType Kind = iota // 'glyf' outlines
	CFF                  // 'CFF ' charstrings
	SBIX                 // Apple 'sbix' bitmaps
	COLR                 // Microsoft 'COLR'/'CPAL' color layers
)

func (k Kind) String() string {
	switch k {
	case TrueType:
		return "TrueType"
	case CFF:
		return "CFF"
	case SBIX:
		return "SBIX"
	case COLR:
		return "COLR"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Metrics are the advance and side bearings of a glyph, in font design units.
type Metrics struct {
	AdvanceWidth  float64
	AdvanceHeight float64
	LeftBearing   float64
	TopBearing    float64
}

// Source supplies outlines and metrics for the glyphs of a font. Fonts implement
// it once per outline format; glyphs hold a reference to it but never own it.
type Source interface {
	GlyphPath(gid ot.GlyphIndex) (*Path, error)
	GlyphMetrics(gid ot.GlyphIndex) (Metrics, error)
}

// Namer is implemented by sources which know glyph names ('post' or CFF charset).
type Namer interface {
	GlyphName(gid ot.GlyphIndex) string
}

// LayerSource is implemented by sources for COLR glyphs.
type LayerSource interface {
	GlyphLayers(gid ot.GlyphIndex) ([]Layer, error)
}

// ImageSource is implemented by sources for SBIX glyphs.
type ImageSource interface {
	GlyphImage(gid ot.GlyphIndex, size float64) (*Image, error)
}

// Layer is a layer of a COLR glyph: a glyph drawn in a solid color.
type Layer struct {
	Glyph *Glyph
	Color color.RGBA
}

// Image is a bitmap image of an SBIX glyph for a single strike.
type Image struct {
	PPEM             uint16 // pixels per em of the strike
	OriginX, OriginY int16
	Type             ot.Tag // 'png ', 'jpg ', 'tiff', …
	Data             []byte
}

// Glyph represents a glyph of a font: its index and the code points it has been
// produced from. Code points are empty for glyphs without a mapping and contain
// more than one element for ligatures.
//
// Outline and metrics are requested from the glyph's source on first access
// and memoized. Glyphs are cheap; clients should feel free to re-create them
// from (ID, CodePoints, source).
type Glyph struct {
	ID         ot.GlyphIndex
	CodePoints []rune
	Kind       Kind
	src        Source
	path       ot.Lazy[*Path]
	metrics    ot.Lazy[Metrics]
}

// New creates a glyph of kind k, backed by src.
func New(id ot.GlyphIndex, codePoints []rune, k Kind, src Source) *Glyph {
	return &Glyph{ID: id, CodePoints: codePoints, Kind: k, src: src}
}

func (g *Glyph) String() string {
	return fmt.Sprintf("glyph(%d %s %q)", g.ID, g.Kind, string(g.CodePoints))
}

// IsMark returns true if every code point of the glyph is a combining mark.
func (g *Glyph) IsMark() bool {
	if len(g.CodePoints) == 0 {
		return false
	}
	for _, r := range g.CodePoints {
		if !unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me) {
			return false
		}
	}
	return true
}

// IsLigature returns true if the glyph represents more than one code point.
func (g *Glyph) IsLigature() bool {
	return len(g.CodePoints) > 1
}

// Path returns the glyph's outline. Glyphs without an outline (e.g., space)
// return an empty path.
func (g *Glyph) Path() (*Path, error) {
	return g.path.Get(func() (*Path, error) {
		if g.src == nil {
			return NewPath(), nil
		}
		p, err := g.src.GlyphPath(g.ID)
		if err != nil {
			tracer().Errorf("cannot decode outline of glyph %d: %v", g.ID, err)
			return nil, err
		}
		if p == nil {
			p = NewPath()
		}
		return p, nil
	})
}

// CBox returns the control box of the glyph's outline.
func (g *Glyph) CBox() (BBox, error) {
	p, err := g.Path()
	if err != nil {
		return EmptyBBox(), err
	}
	return p.CBox(), nil
}

// BBox returns the exact bounding box of the glyph's outline.
func (g *Glyph) BBox() (BBox, error) {
	p, err := g.Path()
	if err != nil {
		return EmptyBBox(), err
	}
	return p.BBox(), nil
}

// Metrics returns the glyph's advances and side bearings.
func (g *Glyph) Metrics() (Metrics, error) {
	return g.metrics.Get(func() (Metrics, error) {
		if g.src == nil {
			return Metrics{}, nil
		}
		return g.src.GlyphMetrics(g.ID)
	})
}

// AdvanceWidth returns the horizontal advance of the glyph, or 0 if the metrics
// tables are broken.
func (g *Glyph) AdvanceWidth() float64 {
	m, _ := g.Metrics()
	return m.AdvanceWidth
}

// AdvanceHeight returns the vertical advance of the glyph, or 0 if the metrics
// tables are broken.
func (g *Glyph) AdvanceHeight() float64 {
	m, _ := g.Metrics()
	return m.AdvanceHeight
}

// ScaledPath returns the glyph's outline scaled from design units to size.
func (g *Glyph) ScaledPath(size float64, unitsPerEm uint16) (*Path, error) {
	p, err := g.Path()
	if err != nil || unitsPerEm == 0 {
		return p, err
	}
	s := size / float64(unitsPerEm)
	return p.Scale(s, s), nil
}

// Name returns the glyph's name, if the font knows glyph names.
func (g *Glyph) Name() string {
	if n, ok := g.src.(Namer); ok {
		return n.GlyphName(g.ID)
	}
	return ""
}

// Layers returns the color layers of a COLR glyph. Glyphs of other kinds return
// a single layer consisting of the glyph itself, drawn in black.
func (g *Glyph) Layers() ([]Layer, error) {
	if ls, ok := g.src.(LayerSource); ok && g.Kind == COLR {
		return ls.GlyphLayers(g.ID)
	}
	return []Layer{{Glyph: g, Color: color.RGBA{A: 255}}}, nil
}

// Image returns the bitmap of an SBIX glyph for a font size in pixels per em.
// It returns nil for glyphs without an image.
func (g *Glyph) Image(size float64) (*Image, error) {
	if is, ok := g.src.(ImageSource); ok && g.Kind == SBIX {
		return is.GlyphImage(g.ID, size)
	}
	return nil, nil
}

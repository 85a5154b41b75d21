package pdfembed

import (
	"fmt"
	"strings"

	"github.com/npillmayer/fontkit"
	"github.com/npillmayer/fontkit/glyph"
)

// Position is the placement of a glyph in text space units (1/1000 em).
type Position struct {
	XAdvance, YAdvance float64
	XOffset, YOffset   float64
	AdvanceWidth       float64 // nominal advance of the glyph, before kerning
}

// Run is a laid out piece of text with positions scaled to text space.
type Run struct {
	Glyphs       []*glyph.Glyph
	Positions    []Position
	AdvanceWidth float64
}

// Font is a font in use by a PDF document. It collects the glyphs which are
// used by text encoded with it, and embeds a subset of the font containing
// exactly those glyphs.
//
// A Font is not safe for concurrent use.
type Font struct {
	font    *fontkit.Font
	subset  *fontkit.Subset
	scale   float64   // design units → text space
	widths  []float64 // by subset glyph id, text space
	unicode [][]rune  // by subset glyph id
	cache   map[string]*Run
}

// New prepares a font for embedding.
func New(f *fontkit.Font) *Font {
	ef := &Font{
		font:   f,
		subset: f.CreateSubset(),
		scale:  1000 / float64(f.UnitsPerEm()),
		cache:  make(map[string]*Run),
	}
	notdef := f.Glyph(0, nil)
	ef.widths = []float64{notdef.AdvanceWidth() * ef.scale}
	ef.unicode = [][]rune{nil}
	return ef
}

// Font returns the font to be embedded.
func (ef *Font) Font() *fontkit.Font {
	return ef.font
}

// Scale returns the factor from font design units to text space units.
func (ef *Font) Scale() float64 {
	return ef.scale
}

// --- Layout ----------------------------------------------------------------

// layoutRun lays out text and scales the positions to text space.
func (ef *Font) layoutRun(text string, opts ...fontkit.LayoutOption) (*Run, error) {
	glyphRun, err := ef.font.Layout(text, opts...)
	if err != nil {
		return nil, err
	}
	run := &Run{
		Glyphs:    glyphRun.Glyphs,
		Positions: make([]Position, len(glyphRun.Positions)),
	}
	for i, p := range glyphRun.Positions {
		run.Positions[i] = Position{
			XAdvance:     float64(p.XAdvance) * ef.scale,
			YAdvance:     float64(p.YAdvance) * ef.scale,
			XOffset:      float64(p.XOffset) * ef.scale,
			YOffset:      float64(p.YOffset) * ef.scale,
			AdvanceWidth: glyphRun.Glyphs[i].AdvanceWidth() * ef.scale,
		}
		run.AdvanceWidth += run.Positions[i].XAdvance
	}
	return run, nil
}

// Layout lays out text. Without layout options, text is laid out word by
// word, and words are cached. Spaces and tabs end a word; shaping never
// crosses them.
func (ef *Font) Layout(text string, opts ...fontkit.LayoutOption) (*Run, error) {
	if len(opts) > 0 {
		return ef.layoutRun(text, opts...)
	}
	run := &Run{}
	for len(text) > 0 {
		end := strings.IndexAny(text, " \t") + 1
		if end == 0 {
			end = len(text)
		}
		word, err := ef.layoutWord(text[:end])
		if err != nil {
			return nil, err
		}
		run.Glyphs = append(run.Glyphs, word.Glyphs...)
		run.Positions = append(run.Positions, word.Positions...)
		run.AdvanceWidth += word.AdvanceWidth
		text = text[end:]
	}
	return run, nil
}

func (ef *Font) layoutWord(word string) (*Run, error) {
	if run, ok := ef.cache[word]; ok {
		return run, nil
	}
	run, err := ef.layoutRun(word)
	if err != nil {
		return nil, err
	}
	ef.cache[word] = run
	return run, nil
}

// WidthOfString returns the width of text set at a font size in points.
func (ef *Font) WidthOfString(text string, size float64, features ...string) (float64, error) {
	run, err := ef.Layout(text, featureOptions(features)...)
	if err != nil {
		return 0, err
	}
	return run.AdvanceWidth * size / 1000, nil
}

func featureOptions(features []string) []fontkit.LayoutOption {
	if len(features) == 0 {
		return nil
	}
	return []fontkit.LayoutOption{fontkit.WithFeatureSettings(features...)}
}

// --- Encoding --------------------------------------------------------------

// Encode lays out text and returns for every glyph its 2-byte code as a
// string of four hex digits, together with the glyph positions. Features are
// given in harfbuzz notation, e.g. "-liga". Every glyph encoded is added to
// the font's subset.
func (ef *Font) Encode(text string, features ...string) ([]string, []Position, error) {
	run, err := ef.Layout(text, featureOptions(features)...)
	if err != nil {
		return nil, nil, err
	}
	codes := make([]string, len(run.Glyphs))
	for i, g := range run.Glyphs {
		id := ef.subset.IncludeGlyph(g.ID)
		codes[i] = fmt.Sprintf("%04x", id)
		if int(id) == len(ef.widths) {
			ef.widths = append(ef.widths, g.AdvanceWidth()*ef.scale)
			ef.unicode = append(ef.unicode, g.CodePoints)
		}
	}
	return codes, run.Positions, nil
}

// Widths returns the advance widths of the glyphs in use, indexed by
// subset glyph id, in text space units.
func (ef *Font) Widths() []float64 {
	return ef.widths
}

// --- Embedding -------------------------------------------------------------

// CIDSystemInfo is the character collection of a CIDFont.
type CIDSystemInfo struct {
	Registry   string
	Ordering   string
	Supplement int
}

// FontObjects are the parts of an embedded font a PDF writer needs to
// create the objects of a Type 0 font: the font dictionary, its descendant
// CIDFont, the font descriptor, the font file stream and the ToUnicode stream.
type FontObjects struct {
	BaseFont        string // TAG+PostScriptName
	Encoding        string // of the Type 0 font, always Identity-H
	Subtype         string // of the CIDFont: CIDFontType0 or CIDFontType2
	CIDSystemInfo   CIDSystemInfo
	CIDToGIDMap     string // "Identity" for CIDFontType2, empty otherwise
	DW              float64
	W               []WidthEntry
	Descriptor      FontDescriptor
	FontFileKey     string // descriptor entry of the font file: FontFile2 or FontFile3
	FontFileSubtype string // CIDFontType0C for FontFile3, empty otherwise
	FontFile        []byte
	ToUnicode       []byte
}

// Sink receives embedded fonts. It is implemented by PDF writers.
type Sink interface {
	EmbedFont(objects *FontObjects) error
}

// Embed encodes the subset of the glyphs in use and hands it to sink,
// together with all other data needed for the PDF font objects.
func (ef *Font) Embed(sink Sink) error {
	data, err := ef.subset.Encode()
	if err != nil {
		return fmt.Errorf("embedding font %s: %w", ef.font.PostScriptName(), err)
	}
	// TrueType subsets may have grown by the components of composite glyphs
	for len(ef.widths) < len(ef.subset.Glyphs()) {
		g := ef.font.Glyph(ef.subset.Glyphs()[len(ef.widths)], nil)
		ef.widths = append(ef.widths, g.AdvanceWidth()*ef.scale)
		ef.unicode = append(ef.unicode, nil)
	}
	dw, w := encodeWidths(ef.widths)
	objs := &FontObjects{
		BaseFont: ef.BaseFontName(),
		Encoding: "Identity-H",
		CIDSystemInfo: CIDSystemInfo{
			Registry: "Adobe",
			Ordering: "Identity",
		},
		DW:         dw,
		W:          w,
		Descriptor: ef.Descriptor(),
		FontFile:   data,
		ToUnicode:  ef.ToUnicodeCMap(),
	}
	if ef.subset.IsCFF() {
		objs.Subtype = "CIDFontType0"
		objs.FontFileKey = "FontFile3"
		objs.FontFileSubtype = "CIDFontType0C"
	} else {
		objs.Subtype = "CIDFontType2"
		objs.FontFileKey = "FontFile2"
		objs.CIDToGIDMap = "Identity"
	}
	tracer().Infof("embedding %s as %s with %d glyphs", objs.BaseFont, objs.Subtype, len(ef.subset.Glyphs()))
	return sink.EmbedFont(objs)
}

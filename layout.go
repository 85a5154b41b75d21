package fontkit

import (
	"fmt"
	"sort"

	"github.com/npillmayer/fontkit/glyph"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/otlayout"
	"github.com/npillmayer/fontkit/otshape"
	"github.com/npillmayer/fontkit/otshape/otarabic"
	"github.com/npillmayer/fontkit/otshape/otcore"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
)

// Options control text layout. The zero value lays out text with the
// features the shaper enables by default, and detects script and direction
// from the text.
type Options struct {
	Features   []otshape.FeatureRange // feature settings on top of the defaults
	Script     language.Script        // zero value: detect from text
	Language   language.Tag           // zero value: default language system
	Direction  bidi.Direction         // bidi.Neutral: derive from script
	Variations []float64              // normalized variation coordinates
}

// LayoutOption modifies the options of a single layout call.
type LayoutOption func(*Options) error

// WithFeatures switches on features.
func WithFeatures(features ...ot.Tag) LayoutOption {
	return func(o *Options) error {
		o.Features = append(o.Features, otshape.Features(features...)...)
		return nil
	}
}

// WithFeatureSettings applies feature settings in harfbuzz notation, e.g.
// "-liga", "smcp[2:4]" or "aalt=2".
func WithFeatureSettings(settings ...string) LayoutOption {
	return func(o *Options) error {
		for _, s := range settings {
			fr, err := otshape.ParseFeature(s)
			if err != nil {
				return fmt.Errorf("feature setting %q: %w", s, err)
			}
			o.Features = append(o.Features, fr)
		}
		return nil
	}
}

// WithScript sets the script of the text, given as an ISO 15924 code.
func WithScript(script string) LayoutOption {
	return func(o *Options) error {
		s, err := language.ParseScript(script)
		if err != nil {
			return fmt.Errorf("script %q: %w", script, err)
		}
		o.Script = s
		return nil
	}
}

// WithLanguage sets the language of the text, given as a BCP 47 tag.
func WithLanguage(lang string) LayoutOption {
	return func(o *Options) error {
		tag, err := language.Parse(lang)
		if err != nil {
			return fmt.Errorf("language %q: %w", lang, err)
		}
		o.Language = tag
		return nil
	}
}

// WithDirection sets the writing direction of the text.
func WithDirection(dir bidi.Direction) LayoutOption {
	return func(o *Options) error {
		o.Direction = dir
		return nil
	}
}

// WithVariations sets normalized coordinates for variable fonts.
func WithVariations(coords ...float64) LayoutOption {
	return func(o *Options) error {
		o.Variations = coords
		return nil
	}
}

// --- Glyph runs ------------------------------------------------------------

// GlyphRun is the result of laying out a piece of text: glyphs and their
// positions, in visual order. Positions are in font design units.
type GlyphRun struct {
	Glyphs    []*glyph.Glyph
	Positions []otlayout.PosItem
	Script    language.Script
	Language  language.Tag
	Direction bidi.Direction
	Features  []ot.Tag // features applied, sorted
	Engine    string   // name of the layout engine
}

// Len returns the number of glyphs of the run.
func (run *GlyphRun) Len() int {
	return len(run.Glyphs)
}

// AdvanceWidth returns the horizontal advance of the whole run.
func (run *GlyphRun) AdvanceWidth() float64 {
	var w int32
	for _, p := range run.Positions {
		w += p.XAdvance
	}
	return float64(w)
}

// AdvanceHeight returns the vertical advance of the whole run.
func (run *GlyphRun) AdvanceHeight() float64 {
	var h int32
	for _, p := range run.Positions {
		h += p.YAdvance
	}
	return float64(h)
}

// BBox returns the union of the bounding boxes of all glyphs, placed at
// their positions.
func (run *GlyphRun) BBox() (glyph.BBox, error) {
	bbox := glyph.EmptyBBox()
	var x, y float64
	for i, g := range run.Glyphs {
		p := run.Positions[i]
		b, err := g.BBox()
		if err != nil {
			return glyph.EmptyBBox(), err
		}
		if !b.IsEmpty() {
			bbox = bbox.Union(b.Translate(x+float64(p.XOffset), y+float64(p.YOffset)))
		}
		x += float64(p.XAdvance)
		y += float64(p.YAdvance)
	}
	return bbox, nil
}

// --- Layout ----------------------------------------------------------------

// shaper is shared by all fonts; engines are stateless.
var shaper = otshape.NewShaper(otarabic.New(), otcore.New())

// Layout maps text to glyphs and positions them.
//
// Fonts with a morx table and without GSUB are laid out with the AAT engine,
// all others with the OpenType engine. A legacy 'kern' table is applied if
// GPOS does not kern. The options in f.Defaults are applied first.
func (f *Font) Layout(text string, opts ...LayoutOption) (*GlyphRun, error) {
	o := f.Defaults
	o.Features = append([]otshape.FeatureRange(nil), f.Defaults.Features...)
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	runes := []rune(text)
	if f.usesAAT() {
		return f.layoutAAT(runes, o)
	}
	if _, err := f.layoutTables(); err != nil {
		return nil, err
	}
	res, err := shaper.Shape(f, runes, otshape.Params{
		Direction:  o.Direction,
		Script:     o.Script,
		Language:   o.Language,
		Features:   o.Features,
		Variations: o.Variations,
	})
	if err != nil {
		return nil, err
	}
	run := &GlyphRun{
		Glyphs:    make([]*glyph.Glyph, res.Buffer.Len()),
		Positions: res.Buffer.Pos,
		Script:    res.Script,
		Language:  res.Language,
		Direction: res.Direction,
		Features:  res.Features,
		Engine:    res.Engine,
	}
	for i, g := range res.Buffer.Glyphs {
		run.Glyphs[i] = f.Glyph(g.ID, g.CodePoints)
	}
	tracer().Debugf("layout of %d code points: %d glyphs by %s", len(runes), run.Len(), run.Engine)
	return run, nil
}

// layoutAAT substitutes glyphs with morx and positions them with the
// horizontal metrics and the legacy 'kern' table.
func (f *Font) layoutAAT(text []rune, o Options) (*GlyphRun, error) {
	engine, err := f.aatEngine()
	if err != nil {
		return nil, err
	}
	script := o.Script
	if script == (language.Script{}) {
		script = otshape.DetectScript(text)
	}
	dir := o.Direction
	if dir == bidi.Neutral || dir == bidi.Mixed {
		dir = otshape.ScriptDirection(script)
	}
	features := map[ot.Tag]bool{}
	for _, fr := range o.Features {
		if fr.IsGlobal() {
			features[fr.Feature] = fr.On
		}
	}
	glyphs, err := engine.Substitute(f.glyphsForRunes(text), features, dir)
	if err != nil {
		return nil, err
	}
	buf := &otlayout.Buffer{
		Glyphs: make([]*otlayout.GlyphInfo, len(glyphs)),
		Pos:    make([]otlayout.PosItem, len(glyphs)),
	}
	for i, g := range glyphs {
		buf.Glyphs[i] = otlayout.NewGlyphInfo(nil, g.ID, g.CodePoints, nil)
		buf.Pos[i].XAdvance = f.GlyphAdvance(g.ID)
	}
	kern := ot.T("kern")
	if on, set := features[kern]; on || !set {
		if tables, err := f.layoutTables(); err != nil {
			return nil, err
		} else if tables.Kern != nil {
			otlayout.NewKernProcessor(tables.Kern).Process(buf)
			features[kern] = true
		}
	}
	applied := make([]ot.Tag, 0, len(features))
	for tag, on := range features {
		if on {
			applied = append(applied, tag)
		}
	}
	sort.Slice(applied, func(i, j int) bool { return applied[i] < applied[j] })
	return &GlyphRun{
		Glyphs:    glyphs,
		Positions: buf.Pos,
		Script:    script,
		Language:  o.Language,
		Direction: dir,
		Features:  applied,
		Engine:    "AAT",
	}, nil
}

// ShapeLatinText lays out text as one left-to-right run in Latin script,
// language English. It is a shortcut for a common case of short Western text.
func (f *Font) ShapeLatinText(text string) (*GlyphRun, error) {
	if text == "" {
		return &GlyphRun{}, nil
	}
	return f.Layout(text, WithScript("Latn"), WithLanguage("en"), WithDirection(bidi.LeftToRight))
}

// --- Shaper view of the font -----------------------------------------------

var _ otshape.Font = (*Font)(nil)

// GlyphAdvance returns the horizontal advance of gid in design units.
func (f *Font) GlyphAdvance(gid ot.GlyphIndex) int32 {
	hmtx, err := f.OT.HMtx()
	if err != nil {
		tracer().Errorf("cannot decode table 'hmtx': %v", err)
		return 0
	}
	return int32(hmtx.Metric(gid).Advance)
}

// LayoutTables returns the decoded OpenType layout tables of the font.
func (f *Font) LayoutTables() *otlayout.Tables {
	tables, err := f.layoutTables()
	if err != nil {
		tracer().Errorf("cannot decode layout tables: %v", err)
		return nil
	}
	return tables
}

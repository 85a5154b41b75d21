package otshape

import (
	"errors"
	"unicode"

	"github.com/go-text/typesetting/harfbuzz"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/otlayout"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNoShaper indicates that no candidate shaping engine was supplied.
	ErrNoShaper = errors.New("otshape: no shaping engine supplied")
	// ErrNoMatchingShaper indicates that none of the supplied engines matched the segment context.
	ErrNoMatchingShaper = errors.New("otshape: no supplied shaping engine matches selection context")
	// ErrNilFont indicates that no font has been given.
	ErrNilFont = errors.New("otshape: nil font")
)

// Font is the view of a font the shaper needs.
type Font interface {
	// GlyphIndex maps a code point to a glyph, NOTDEF if unmapped.
	GlyphIndex(r rune) ot.GlyphIndex
	// GlyphAdvance returns the horizontal advance of a glyph in design units.
	GlyphAdvance(gid ot.GlyphIndex) int32
	// LayoutTables returns the font's layout tables. May be nil.
	LayoutTables() *otlayout.Tables
}

// Result is a shaped run.
type Result struct {
	Buffer    *otlayout.Buffer // glyphs and positions, in visual order
	Script    language.Script
	Language  language.Tag
	Direction bidi.Direction
	ScriptTag ot.Tag   // script of the layout tables used, 0 if none
	LangTag   ot.Tag   // language system used, 0 for the default
	Engine    string   // name of the shaping engine
	Features  []ot.Tag // features applied, sorted
}

// Shaper is the injectable top-level shaping orchestrator.
//
// It has no global registry; callers provide candidate shapers.
type Shaper struct {
	Engines []ShapingEngine
}

// NewShaper creates a shaper from explicit candidate engines.
//
// Nil entries in engines are ignored. The returned value keeps the candidate
// list and selects the best matching engine per [Shaper.Shape] call.
func NewShaper(engines ...ShapingEngine) *Shaper {
	list := make([]ShapingEngine, 0, len(engines))
	for _, sh := range engines {
		if sh != nil {
			list = append(list, sh)
		}
	}
	return &Shaper{Engines: list}
}

// Shape maps text to glyphs of font and applies the font's OpenType layout.
//
// Script and direction are taken from params; an unset script is detected
// from the text and a direction of bidi.Neutral or bidi.Mixed is derived from
// the script. Substitution replays the shaping plan against GSUB, positioning
// replays it against GPOS. Fonts whose GPOS lacks a 'kern' feature are kerned
// with their legacy 'kern' table, if any.
func (s *Shaper) Shape(font Font, text []rune, params Params) (*Result, error) {
	if font == nil {
		return nil, ErrNilFont
	}
	tables := font.LayoutTables()
	if tables == nil {
		tables = &otlayout.Tables{}
	}
	script := params.Script
	if script == (language.Script{}) {
		script = DetectScript(text)
	}
	dir := params.Direction
	if dir == bidi.Neutral || dir == bidi.Mixed {
		dir = ScriptDirection(script)
	}
	scriptTags := ScriptTagsForScript(script)
	langTag := LanguageTagForLanguage(params.Language, language.High)
	gsub := otlayout.NewGSUBProcessor(tables.GSUB, tables.GDEF)
	gpos := otlayout.NewGPOSProcessor(tables.GPOS, tables.GDEF)
	gsub.SetVariations(params.Variations)
	gpos.SetVariations(params.Variations)
	tag := gpos.SelectScript(scriptTags, langTag, dir)
	lang := gpos.LanguageTag()
	if t := gsub.SelectScript(scriptTags, langTag, dir); t != 0 {
		tag, lang = t, gsub.LanguageTag()
	}
	ctx := SelectionContext{
		Direction: dir,
		Script:    script,
		Language:  params.Language,
		ScriptTag: tag,
		LangTag:   lang,
	}
	engine, err := selectShapingEngine(s.Engines, ctx)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("shaping %d code points, script %s (%s), engine %s", len(text), script, tag, engine.Name())
	plan := NewPlan(font, tag, lang, dir)
	engine.PlanFeatures(plan, globalFeatures(params.Features))
	for _, fr := range params.Features {
		if !fr.IsGlobal() && fr.On {
			plan.Add(false, fr.Feature)
		}
	}
	buf, clusters := mapRunes(font, tables.GDEF, text)
	plan.AssignGlobalFeatures(buf)
	engine.AssignFeatures(plan, buf)
	assignRangeFeatures(buf, clusters, params.Features)
	//
	plan.Process(gsub, buf, false)
	buf.Pos = make([]otlayout.PosItem, buf.Len())
	for i, g := range buf.Glyphs {
		buf.Pos[i].XAdvance = font.GlyphAdvance(g.ID)
	}
	policy := zeroMarkPolicy(engine)
	if policy == ZeroMarksBeforeGPOS {
		zeroMarkAdvances(buf)
	}
	plan.Process(gpos, buf, true)
	if policy == ZeroMarksAfterGPOS {
		zeroMarkAdvances(buf)
	}
	if dir == bidi.RightToLeft {
		buf.Reverse()
	}
	kern := ot.T("kern")
	if _, planned := plan.all[kern]; planned && tables.Kern != nil && !gpos.HasFeature(kern) {
		otlayout.NewKernProcessor(tables.Kern).Process(buf)
	}
	hideDefaultIgnorables(font, buf)
	return &Result{
		Buffer:    buf,
		Script:    script,
		Language:  params.Language,
		Direction: dir,
		ScriptTag: tag,
		LangTag:   lang,
		Engine:    engine.Name(),
		Features:  plan.Features(),
	}, nil
}

func selectShapingEngine(candidates []ShapingEngine, ctx SelectionContext) (ShapingEngine, error) {
	if len(candidates) == 0 {
		return nil, ErrNoShaper
	}
	var (
		best      ShapingEngine
		bestScore = ShaperConfidenceNone
	)
	for _, sh := range candidates {
		if sh == nil {
			continue
		}
		score := sh.Match(ctx)
		if score <= ShaperConfidenceNone {
			continue
		}
		if best == nil || score > bestScore || (score == bestScore && sh.Name() < best.Name()) {
			best = sh
			bestScore = score
		}
	}
	if best == nil {
		return nil, ErrNoMatchingShaper
	}
	inst := best.New()
	if inst == nil {
		inst = best
	}
	return inst, nil
}

// mapRunes maps text to glyphs. A code point without a glyph is decomposed if
// the font has glyphs for all parts of its decomposition; a mark without a
// glyph is composed with its base if the font has a glyph for the
// composition. clusters holds the text position of every glyph.
func mapRunes(font Font, gdef *ot.GDefTable, text []rune) (*otlayout.Buffer, []int) {
	buf := &otlayout.Buffer{}
	clusters := make([]int, 0, len(text))
	add := func(gid ot.GlyphIndex, cps []rune, pos int) {
		buf.Glyphs = append(buf.Glyphs, otlayout.NewGlyphInfo(gdef, gid, cps, nil))
		clusters = append(clusters, pos)
	}
	for i, r := range text {
		gid := font.GlyphIndex(r)
		if gid != NOTDEF {
			add(gid, []rune{r}, i)
			continue
		}
		if n := buf.Len(); n > 0 && unicode.In(r, unicode.Mn, unicode.Me) {
			prev := buf.Glyphs[n-1]
			composed := []rune(norm.NFC.String(string(append(append([]rune{}, prev.CodePoints...), r))))
			if len(composed) == 1 {
				if c := font.GlyphIndex(composed[0]); c != NOTDEF {
					prev.SetID(gdef, c)
					prev.CodePoints = append(prev.CodePoints, r)
					continue
				}
			}
		}
		if gids, parts := decompose(font, r); gids != nil {
			for j, p := range gids {
				add(p, parts[j:j+1], i)
			}
			continue
		}
		add(NOTDEF, []rune{r}, i)
	}
	return buf, clusters
}

func decompose(font Font, r rune) ([]ot.GlyphIndex, []rune) {
	d := []rune(norm.NFD.String(string(r)))
	if len(d) < 2 {
		return nil, nil
	}
	gids := make([]ot.GlyphIndex, len(d))
	for i, c := range d {
		if gids[i] = font.GlyphIndex(c); gids[i] == NOTDEF {
			return nil, nil
		}
	}
	return gids, d
}

func assignRangeFeatures(buf *otlayout.Buffer, clusters []int, features []FeatureRange) {
	for _, fr := range features {
		if fr.IsGlobal() {
			continue
		}
		for i, g := range buf.Glyphs {
			if fr.covers(clusters[i]) {
				g.Features[fr.Feature] = fr.On
			}
		}
	}
}

func zeroMarkAdvances(buf *otlayout.Buffer) {
	for i, g := range buf.Glyphs {
		if g.IsMark {
			buf.Pos[i].XAdvance, buf.Pos[i].YAdvance = 0, 0
		}
	}
}

// hideDefaultIgnorables replaces default ignorable characters by an
// invisible space glyph.
func hideDefaultIgnorables(font Font, buf *otlayout.Buffer) {
	space := font.GlyphIndex(' ')
	for i, g := range buf.Glyphs {
		if cp := firstCodePoint(g); cp >= 0 && harfbuzz.IsDefaultIgnorable(cp) {
			g.ID = space
			buf.Pos[i].XAdvance, buf.Pos[i].YAdvance = 0, 0
		}
	}
}

// ParseFeature parses a feature setting in the notation of harfbuzz, e.g.
// "liga", "-kern", "aalt=2" or "smcp[3:5]".
func ParseFeature(s string) (FeatureRange, error) {
	f, err := harfbuzz.ParseFeature(s)
	if err != nil {
		return FeatureRange{}, errShaper(err.Error())
	}
	fr := FeatureRange{
		Feature: ot.Tag(f.Tag),
		Arg:     int(f.Value),
		On:      f.Value != 0,
		Start:   f.Start,
		End:     f.End,
	}
	if fr.End == harfbuzz.FeatureGlobalEnd {
		fr.End = 0
	}
	return fr, nil
}

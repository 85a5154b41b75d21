package aat

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/fontkit/glyph"
	"github.com/npillmayer/fontkit/ot"
	"golang.org/x/text/unicode/bidi"
)

// ReverseMapper reports the code points a font's character map maps to a
// glyph. *ot.CMap is a ReverseMapper.
type ReverseMapper interface {
	CodePointsForGlyph(gid ot.GlyphIndex) []rune
}

// Engine is the AAT layout engine. It runs glyph substitution with a morx
// table and answers queries about the features and glyph inputs of the font.
// AAT fonts do not carry positioning information in morx; positions are the
// business of the caller.
type Engine struct {
	proc *Processor
	cmap ReverseMapper
}

// NewEngine creates a layout engine for morx.
func NewEngine(morx *Morx, newGlyph NewGlyphFunc, cmap ReverseMapper) *Engine {
	return &Engine{
		proc: NewProcessor(morx, newGlyph),
		cmap: cmap,
	}
}

// Substitute runs glyph substitution over a run of glyphs in logical order.
// morx expects glyphs in visual order, so right-to-left runs are reversed
// before processing and are returned in visual order.
func (e *Engine) Substitute(glyphs []*glyph.Glyph, features map[ot.Tag]bool,
	dir bidi.Direction) ([]*glyph.Glyph, error) {
	//
	if dir == bidi.RightToLeft {
		reverse(glyphs)
	}
	return e.proc.Process(glyphs, MapOTToAAT(features))
}

// AvailableFeatures returns the OpenType tags of the features the morx table
// supports.
func (e *Engine) AvailableFeatures() []ot.Tag {
	return MapAATToOT(e.proc.SupportedFeatures())
}

// StringsForGlyph returns all strings which the font's default substitutions
// map to glyph gid, in ascending order.
func (e *Engine) StringsForGlyph(gid ot.GlyphIndex) ([]string, error) {
	inputs, err := e.proc.GenerateInputs(gid)
	if err != nil {
		return nil, err
	}
	set := treeset.NewWithStringComparator()
	for _, glyphs := range inputs {
		e.addStrings(glyphs, "", set)
	}
	strings := make([]string, 0, set.Size())
	for _, s := range set.Values() {
		strings = append(strings, s.(string))
	}
	return strings, nil
}

func (e *Engine) addStrings(glyphs []ot.GlyphIndex, prefix string, set *treeset.Set) {
	if len(glyphs) == 0 {
		set.Add(prefix)
		return
	}
	for _, r := range e.cmap.CodePointsForGlyph(glyphs[0]) {
		e.addStrings(glyphs[1:], prefix+string(r), set)
	}
}

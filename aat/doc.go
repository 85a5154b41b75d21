/*
Package aat implements glyph substitution with Apple Advanced Typography
tables.

AAT fonts describe substitutions with the 'morx' table: a list of chains, each
a list of subtables. Most subtables are finite state machines which read the
glyph run one glyph at a time, classify every glyph and perform actions
attached to the state transitions. Five kinds of subtables exist:

▪︎ rearrangement: reorder a marked range of glyphs

▪︎ contextual: substitute the current or the marked glyph

▪︎ ligature: collapse a sequence of component glyphs into a ligature glyph

▪︎ non-contextual: substitute every glyph through a lookup table

▪︎ insertion: insert glyphs before or after the current or the marked glyph

Features are selected by (type, setting) pairs. Every chain holds a list of
feature entries which turn on and off flag bits; a subtable runs if any of its
flag bits is set.

Package aat also maps OpenType feature tags to AAT feature settings and back,
so clients may select features uniformly for both layout engines.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package aat

import (
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontkit.aat'
func tracer() tracing.Trace {
	return tracing.Select("fontkit.aat")
}

// tagMorx is the table tag used in error reports.
var tagMorx = ot.T("morx")

func errFormat(section string, format string, args ...any) error {
	return ot.FormatError(tagMorx, section, format, args...)
}

// DeletedGlyph marks a glyph as deleted during processing. Deleted glyphs are
// removed from the run after the last subtable ran.
const DeletedGlyph ot.GlyphIndex = 0xffff

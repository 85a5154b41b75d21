/*
Package otlayout applies OpenType layout features to glyph runs.

OpenType fonts carry two layout tables: GSUB substitutes glyphs (ligatures,
contextual alternates, positional forms) and GPOS positions them (kerning,
mark attachment, cursive connection). Both tables share a common structure: a
script selects a language system, a language system enables features, and a
feature is a list of lookups. Lookups are applied in lookup list order, to
every glyph of a run which has the lookup's feature enabled.

Glyphs under layout are represented as GlyphInfo records. Besides the glyph
index and its code points they track the state the processors need across
lookups: ligature ids and components, mark and cursive attachments.
Positions are kept in a parallel slice of PosItem, in font design units.

The legacy 'kern' table is supported by KernProcessor, for fonts without a
GPOS 'kern' feature.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otlayout

import (
	"github.com/npillmayer/schuko/tracing"
)

// MaxContextDepth limits the nesting of contextual lookups.
const MaxContextDepth = 8

// tracer writes to trace with key 'fontkit.layout'
func tracer() tracing.Trace {
	return tracing.Select("fontkit.layout")
}

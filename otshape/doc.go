/*
Package otshape shapes text with the OpenType layout tables of a font.

Shaping maps the code points of a text segment to glyphs and then replays a
shaping plan against them. A plan is an ordered list of stages; a stage is
either a list of feature tags, applied in one pass of the GSUB or GPOS
processor, or a callback which script shapers use for work the layout tables
cannot express, e.g. Arabic joining analysis.

Plans are set up by shaping engines. Callers supply a list of candidate
engines to [NewShaper]; for every segment the engine matching the segment's
script best is chosen. Package otcore holds the default engine, package
otarabic an engine for scripts with cursive joining.

	shaper := otshape.NewShaper(otarabic.New(), otcore.New())
	result, err := shaper.Shape(font, []rune("Hello"), otshape.Params{})

Glyph positions are in font design units. Runs of right-to-left scripts are
returned in visual order.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otshape

import (
	"fmt"

	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing"
)

// NOTDEF is the glyph index for OpenType ".notdef".
const NOTDEF = ot.GlyphIndex(0)

// tracer traces with key 'fontkit.layout'.
func tracer() tracing.Trace {
	return tracing.Select("fontkit.layout")
}

// errShaper wraps a message as a user-facing shaping error.
func errShaper(x string) error {
	return fmt.Errorf("OpenType text shaping: %s", x)
}

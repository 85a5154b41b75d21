/*
Package ttf handles TrueType outlines: decoding of table 'glyf' into glyph
paths and subsetting of TrueType fonts for embedding.

Simple glyphs consist of contours of quadratic B-splines. Two consecutive
off-curve points imply an on-curve point in the middle between them. Composite
glyphs are assembled from other glyphs, each one placed by an offset and an
optional 2×2 transformation.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ttf

import (
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontkit'
func tracer() tracing.Trace {
	return tracing.Select("fontkit")
}

var (
	tagGlyf = ot.T("glyf")
	tagLoca = ot.T("loca")
)

func errFormat(section string, format string, args ...any) error {
	return ot.FormatError(tagGlyf, section, format, args...)
}

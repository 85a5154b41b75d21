/*
Package glyph holds the glyph model of fontkit: glyph identity, vector outlines
and bounding boxes.

A Glyph is a small value describing a glyph of a font: its index, the code points
it was produced from and its kind (TrueType, CFF, SBIX bitmap or COLR layers).
Outlines and metrics are not stored in the glyph itself but requested from a
Source, which is implemented by the font the glyph belongs to. Results are
computed on first access and memoized per glyph.

Outlines are represented as a Path, an ordered list of drawing commands. Paths
know two kinds of bounding boxes: the control box, which covers every point of
every command and is cheap to compute, and the exact bounding box, which solves
the derivatives of curve segments for their extrema.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package glyph

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontkit'
func tracer() tracing.Trace {
	return tracing.Select("fontkit")
}

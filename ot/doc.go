/*
Package ot decodes the binary tables of OpenType and TrueType fonts.

Intended audience for this package are the other packages of fontkit:

▪︎ the layout engines in packages otlayout, otshape and aat, which need the
GSUB, GPOS, GDEF, kern and cmap tables in a navigable form

▪︎ the outline packages cff, ttf and glyph, which need head, maxp, loca and the
metrics tables

▪︎ the PDF embedding adapter, which needs names, metrics and a reverse cmap

Package `ot` is a low-level package. It exposes the table structure of a font,
not typographic decisions. It is not possible to ask package `ot` for the kerning
distance between two glyphs; the sister package otlayout does that.

Decoding is organized around a Cursor, which reads big-endian scalars from a byte
segment at an explicit position. A cursor remembers the first error it encountered,
so a table decoder may read a record field by field and check for errors once at
the end. Errors name the table and the section of the table where decoding failed.

Tables other than the table directory, head and maxp are decoded on first access and
memoized for the lifetime of the Font.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontkit.ot'
func tracer() tracing.Trace {
	return tracing.Select("fontkit.ot")
}

/*
Package fontkit is for typeface and font handling.

There is a certain confusion with the nomenclature of typesetting. We will
stick to the following definitions:

▪︎ A "typeface" is a family of fonts. An example is "Helvetica".
This corresponds to a TrueType "collection" (*.ttc).

▪︎ A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

Package fontkit opens font files of all common container formats: bare
TrueType and OpenType files, WOFF 1.0, TrueType collections and Macintosh
resource forks (dfont). An opened [Font] answers metric queries, creates
glyphs of any outline kind (TrueType, CFF, SBIX bitmaps, COLR layers), lays
out text with either the OpenType or the AAT layout engine, and creates
subsets for embedding.

Fonts are loaded in one go from a byte slice. Reading font files is left to
clients or to a [FontDataProvider].

# Links

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fontkit

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontkit'
func tracer() tracing.Trace {
	return tracing.Select("fontkit")
}

// ErrFontNotFound is returned when a font requested by name is not contained
// in a collection or cannot be located by a provider.
var ErrFontNotFound = errors.New("font not found")

/*
Package cff reads and writes fonts in the Compact Font Format (CFF), as found
in table 'CFF ' of OpenType fonts.

The package covers three concerns:

▪︎ decoding and encoding of the self-describing CFF structures INDEX and DICT

▪︎ decoding of a CFF font program (Top DICT, strings, global subroutines,
charstrings, charset, Private DICTs and, for CID-keyed fonts, FDArray and
FDSelect) and interpretation of Type 2 charstrings into glyph outlines

▪︎ subsetting: a subset always comes out as a CID-keyed font, which keeps the
embedding contract for PDF simple (CIDFontType0)

Subroutines of a subset are not renumbered. Unused subroutines are replaced by
a single 'return' operator, so charstrings can be copied verbatim and the
subroutine bias stays intact.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package cff

import (
	"errors"
	"fmt"

	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontkit.cff'
func tracer() tracing.Trace {
	return tracing.Select("fontkit.cff")
}

// ErrSubsetInconsistency flags a font which references a subroutine or a
// font dict that does not exist.
var ErrSubsetInconsistency = errors.New("inconsistent CFF font")

// tag is the table tag used in error reports.
var tag = ot.T("CFF ")

func errFormat(section string, format string, args ...any) error {
	return ot.FormatError(tag, section, format, args...)
}

func errInconsistent(section string, format string, args ...any) error {
	return &ot.FontError{
		Table:    tag,
		Section:  section,
		Issue:    fmt.Sprintf(format, args...),
		Severity: ot.SeverityCritical,
		Kind:     ErrSubsetInconsistency,
	}
}

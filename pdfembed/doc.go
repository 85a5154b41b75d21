/*
Package pdfembed prepares fonts for embedding into PDF documents.

A PDF writer owns the object graph of a document: references, streams,
compression and the cross-reference table. This package does not; it hands
the writer finished values instead. For every font in use, a [Font]

▪︎ encodes text as 2-byte codes of a subset of the font (Identity-H),
with glyph positions in PDF text space units (1/1000 em),

▪︎ records the widths and the Unicode text of every glyph in use,

▪︎ and finally produces the subsetted font program, the font descriptor,
the W array and a ToUnicode CMap, delivered to a [Sink] as [FontObjects].

Fonts with CFF outlines are embedded as CIDFontType0 with a CID-keyed
FontFile3, all others as CIDFontType2 with FontFile2 and an identity
CIDToGIDMap.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package pdfembed

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontkit'
func tracer() tracing.Trace {
	return tracing.Select("fontkit")
}

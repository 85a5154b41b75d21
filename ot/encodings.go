package ot

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// Platform IDs of 'cmap' and 'name' records.
const (
	PlatformUnicode   = 0
	PlatformMacintosh = 1
	PlatformISO       = 2
	PlatformWindows   = 3
)

// Macintosh language IDs whose strings use a language specific variant of an
// encoding (Icelandic, Turkish, Croatian, Central European, Romanian, Inuit, Gaelic).
// golang.org/x/text has no converters for these.
var macLanguageEncodings = map[uint32]string{
	15: "maciceland", 17: "macturkish", 18: "maccroatian",
	24: "maccenteuro", 25: "maccenteuro", 26: "maccenteuro", 27: "maccenteuro",
	28: "maccenteuro", 36: "maccenteuro", 37: "macromania", 38: "maccenteuro",
	39: "maccenteuro", 40: "maccenteuro", 143: "macinuit", 146: "macgaelic",
}

// macEncodings maps Macintosh encoding IDs to converters.
var macEncodings = map[uint16]encoding.Encoding{
	0:  charmap.Macintosh,
	1:  japanese.ShiftJIS,
	2:  traditionalchinese.Big5,
	3:  korean.EUCKR,
	4:  charmap.ISO8859_6, // Arabic
	5:  charmap.ISO8859_8, // Hebrew
	7:  charmap.MacintoshCyrillic,
	25: simplifiedchinese.GBK, // GB 2312-80 is a subset of GBK
}

// windowsEncodings maps Windows encoding IDs of legacy encodings to converters.
// Johab (6) has no converter.
var windowsEncodings = map[uint16]encoding.Encoding{
	2: japanese.ShiftJIS,
	3: simplifiedchinese.GB18030,
	4: traditionalchinese.Big5,
	5: korean.EUCKR, // Wansung
}

// legacyEncoding returns the converter for a non-Unicode subtable, if one is available.
// The Windows symbol encoding needs no converter and is flagged by symbol. Codes of
// subtables flagged with ascii are restricted to 7 bits.
//
// language is the language field of the subtable, which for Macintosh subtables is
// the Macintosh language ID plus one.
func legacyEncoding(platform, enc uint16, language uint32) (e encoding.Encoding, symbol bool, ascii bool) {
	switch platform {
	case PlatformMacintosh:
		if language > 0 {
			if name, ok := macLanguageEncodings[language-1]; ok {
				tracer().Debugf("cmap: no converter for Macintosh encoding %s", name)
				return nil, false, false
			}
		}
		return macEncodings[enc], false, false
	case PlatformISO:
		switch enc {
		case 0:
			return charmap.ISO8859_1, false, true
		case 2:
			return charmap.ISO8859_1, false, false
		}
	case PlatformWindows:
		if enc == 0 {
			return nil, true, false
		}
		return windowsEncodings[enc], false, false
	}
	return nil, false, false
}

// MacintoshDecoder returns a decoder for strings of 'name' records on the Macintosh
// platform, or nil if no converter is available.
func MacintoshDecoder(enc uint16, language uint16) *encoding.Decoder {
	e, _, _ := legacyEncoding(PlatformMacintosh, enc, uint32(language)+1)
	if e == nil {
		return nil
	}
	return e.NewDecoder()
}

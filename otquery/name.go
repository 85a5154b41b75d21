package otquery

import (
	"fmt"
	"iter"

	"github.com/npillmayer/fontkit/ot"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/encoding/unicode"
)

// PlatformID is the platform of a name record.
type PlatformID uint16

const (
	PlatformIDUnicode   PlatformID = ot.PlatformUnicode
	PlatformIDMacintosh PlatformID = ot.PlatformMacintosh
	PlatformIDWindows   PlatformID = ot.PlatformWindows
)

// EncodingID is the platform specific encoding of a name record.
type EncodingID uint16

const (
	EncodingIDWindowsSymbol EncodingID = 0
	EncodingIDWindowsBMP    EncodingID = 1
	EncodingIDWindowsFull   EncodingID = 10
	EncodingIDMacRoman      EncodingID = 0
)

const langEnglishUS = 0x0409

// nameKey identifies a NameRecord entry in OpenType table 'name'.
type nameKey struct {
	Platform PlatformID
	Encoding EncodingID
	Language uint16
	Name     sfnt.NameID // see https://pkg.go.dev/golang.org/x/image/font/sfnt#NameID
}

// rank orders name records by preference, lower is better: English Windows
// names first, Unicode next, then Macintosh English and the rest.
func (key nameKey) rank() int {
	switch {
	case key.Platform == PlatformIDWindows && key.Language == langEnglishUS:
		return 0
	case key.Platform == PlatformIDUnicode:
		return 1
	case key.Platform == PlatformIDMacintosh && key.Language == 0:
		return 2
	case key.Platform == PlatformIDWindows:
		return 3
	}
	return 4
}

// NamesRange yields decoded `(nameID, value)` pairs from a font's OpenType
// `name` table, in table order.
//
// Unicode and Windows records are decoded from UTF-16BE, Macintosh records
// with the converter for their script, if one exists. Records which cannot
// be decoded are skipped.
func NamesRange(otf *ot.Font) iter.Seq2[sfnt.NameID, string] {
	return func(yield func(sfnt.NameID, string) bool) {
		for key, value := range namesWithKeys(otf) {
			if !yield(key.Name, value) {
				return
			}
		}
	}
}

func namesWithKeys(otf *ot.Font) iter.Seq2[nameKey, string] {
	return func(yield func(nameKey, string) bool) {
		if otf == nil {
			return
		}
		names, err := otf.Name()
		if err != nil {
			tracer().Errorf("cannot decode table 'name': %v", err)
			return
		}
		if names == nil {
			tracer().Debugf("no name table found in font")
			return
		}
		for _, rec := range names.Records {
			key := nameKey{
				Platform: PlatformID(rec.PlatformID),
				Encoding: EncodingID(rec.EncodingID),
				Language: rec.LanguageID,
				Name:     sfnt.NameID(rec.NameID),
			}
			value, err := decodeName(key, rec.Value)
			if err != nil {
				tracer().Debugf("name %d: %v", key.Name, err)
				continue
			}
			if value == "" {
				continue
			}
			if !yield(key, value) {
				return
			}
		}
	}
}

func decodeName(key nameKey, str []byte) (string, error) {
	switch key.Platform {
	case PlatformIDUnicode, PlatformIDWindows:
		return decodeNameUTF16(str)
	case PlatformIDMacintosh:
		dec := ot.MacintoshDecoder(uint16(key.Encoding), key.Language)
		if dec == nil {
			return "", fmt.Errorf("no converter for Macintosh encoding %d", key.Encoding)
		}
		s, err := dec.Bytes(str)
		if err != nil {
			return "", fmt.Errorf("decoding Macintosh name: %w", err)
		}
		return string(s), nil
	}
	return "", fmt.Errorf("unsupported platform %d", key.Platform)
}

func decodeNameUTF16(str []byte) (string, error) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	decoder := enc.NewDecoder()
	s, err := decoder.Bytes(str)
	if err != nil {
		return "", fmt.Errorf("decoding UTF-16 error: %v", err)
	}
	return string(s), nil
}

// Name returns the preferred string for name id, or "".
func Name(otf *ot.Font, id sfnt.NameID) string {
	best, bestRank := "", 99
	for key, value := range namesWithKeys(otf) {
		if key.Name == id && key.rank() < bestRank {
			best, bestRank = value, key.rank()
		}
	}
	return best
}

// PostScriptName returns the PostScript name of a font.
func PostScriptName(otf *ot.Font) string {
	return Name(otf, sfnt.NameIDPostScript)
}

// FamilyName returns the typographic family name of a font, falling back to
// the legacy family name.
func FamilyName(otf *ot.Font) string {
	if fam := Name(otf, sfnt.NameIDTypographicFamily); fam != "" {
		return fam
	}
	return Name(otf, sfnt.NameIDFamily)
}

// SubfamilyName returns the typographic subfamily name of a font, e.g.
// "Bold Italic", falling back to the legacy subfamily name.
func SubfamilyName(otf *ot.Font) string {
	if sub := Name(otf, sfnt.NameIDTypographicSubfamily); sub != "" {
		return sub
	}
	return Name(otf, sfnt.NameIDSubfamily)
}

// FullName returns the full name of a font.
func FullName(otf *ot.Font) string {
	return Name(otf, sfnt.NameIDFull)
}

var nameInfoKeys = map[sfnt.NameID]string{
	sfnt.NameIDCopyright:        "copyright",
	sfnt.NameIDFamily:           "family",
	sfnt.NameIDSubfamily:        "subfamily",
	sfnt.NameIDUniqueIdentifier: "unique",
	sfnt.NameIDFull:             "full",
	sfnt.NameIDVersion:          "version",
	sfnt.NameIDPostScript:       "postscript",
	sfnt.NameIDTrademark:        "trademark",
	sfnt.NameIDManufacturer:     "manufacturer",
	sfnt.NameIDDesigner:         "designer",
	sfnt.NameIDDescription:      "description",
	sfnt.NameIDLicense:          "license",
}

// NameInfo returns the preferred values of the well known names of a font,
// keyed by "family", "subfamily", "full", "postscript", "version" etc.
func NameInfo(otf *ot.Font) map[string]string {
	info := map[string]string{}
	ranks := map[sfnt.NameID]int{}
	for key, value := range namesWithKeys(otf) {
		k, ok := nameInfoKeys[key.Name]
		if !ok {
			continue
		}
		if r, seen := ranks[key.Name]; seen && r <= key.rank() {
			continue
		}
		ranks[key.Name] = key.rank()
		info[k] = value
	}
	return info
}

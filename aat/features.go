package aat

import (
	"fmt"

	"github.com/npillmayer/fontkit/ot"
)

// Setting is an AAT feature setting: a feature type and a selector.
type Setting struct {
	Type     uint16
	Selector uint16
}

func (s Setting) String() string {
	return fmt.Sprintf("aat(%d,%d)", s.Type, s.Selector)
}

// AAT feature types.
const (
	featLigatures               = 1
	featCursiveConnection       = 2
	featVerticalSubstitution    = 4
	featLinguisticRearrangement = 5
	featNumberSpacing           = 6
	featSmartSwash              = 8
	featVerticalPosition        = 10
	featFractions               = 11
	featTypographicExtras       = 14
	featMathematicalExtras      = 15
	featOrnamentSets            = 16
	featStyleOptions            = 19
	featCharacterShape          = 20
	featNumberCase              = 21
	featTextSpacing             = 22
	featTransliteration         = 23
	featUnicodeDecomposition    = 27
	featRubyKana                = 28
	featItalicCJKRoman          = 32
	featCaseSensitiveLayout     = 33
	featAlternateKana           = 34
	featStylisticAlternatives   = 35
	featContextualAlternates    = 36
	featLowerCase               = 37
	featUpperCase               = 38
)

// otMapping relates OpenType feature tags to AAT settings. If more than one
// tag maps to a setting, the first one is used for the reverse direction.
var otMapping = []struct {
	tag     string
	setting Setting
}{
	{"rlig", Setting{featLigatures, 0}},
	{"liga", Setting{featLigatures, 2}},
	{"dlig", Setting{featLigatures, 4}},
	{"clig", Setting{featLigatures, 18}},
	{"hlig", Setting{featLigatures, 20}},
	{"curs", Setting{featCursiveConnection, 2}},
	{"vert", Setting{featVerticalSubstitution, 0}},
	{"tnum", Setting{featNumberSpacing, 0}},
	{"pnum", Setting{featNumberSpacing, 1}},
	{"init", Setting{featSmartSwash, 0}},
	{"fina", Setting{featSmartSwash, 2}},
	{"fin2", Setting{featSmartSwash, 2}},
	{"fin3", Setting{featSmartSwash, 2}},
	{"medi", Setting{featSmartSwash, 8}},
	{"med2", Setting{featSmartSwash, 8}},
	{"sups", Setting{featVerticalPosition, 1}},
	{"subs", Setting{featVerticalPosition, 2}},
	{"ordn", Setting{featVerticalPosition, 3}},
	{"sinf", Setting{featVerticalPosition, 4}},
	{"afrc", Setting{featFractions, 1}},
	{"frac", Setting{featFractions, 2}},
	{"zero", Setting{featTypographicExtras, 4}},
	{"mgrk", Setting{featMathematicalExtras, 10}},
	{"ornm", Setting{featOrnamentSets, 1}},
	{"titl", Setting{featStyleOptions, 4}},
	{"trad", Setting{featCharacterShape, 0}},
	{"smpl", Setting{featCharacterShape, 1}},
	{"jp78", Setting{featCharacterShape, 2}},
	{"jp83", Setting{featCharacterShape, 3}},
	{"jp90", Setting{featCharacterShape, 4}},
	{"expt", Setting{featCharacterShape, 10}},
	{"jp04", Setting{featCharacterShape, 11}},
	{"hojo", Setting{featCharacterShape, 12}},
	{"nlck", Setting{featCharacterShape, 13}},
	{"tnam", Setting{featCharacterShape, 14}},
	{"onum", Setting{featNumberCase, 0}},
	{"lnum", Setting{featNumberCase, 1}},
	{"pwid", Setting{featTextSpacing, 0}},
	{"fwid", Setting{featTextSpacing, 1}},
	{"hwid", Setting{featTextSpacing, 2}},
	{"twid", Setting{featTextSpacing, 3}},
	{"qwid", Setting{featTextSpacing, 4}},
	{"palt", Setting{featTextSpacing, 5}},
	{"halt", Setting{featTextSpacing, 6}},
	{"hngl", Setting{featTransliteration, 1}},
	{"ccmp", Setting{featUnicodeDecomposition, 0}},
	{"ruby", Setting{featRubyKana, 2}},
	{"ital", Setting{featItalicCJKRoman, 2}},
	{"case", Setting{featCaseSensitiveLayout, 0}},
	{"cpsp", Setting{featCaseSensitiveLayout, 2}},
	{"hkna", Setting{featAlternateKana, 0}},
	{"vkna", Setting{featAlternateKana, 2}},
	{"salt", Setting{featStylisticAlternatives, 2}},
	{"ss01", Setting{featStylisticAlternatives, 2}},
	{"ss02", Setting{featStylisticAlternatives, 4}},
	{"ss03", Setting{featStylisticAlternatives, 6}},
	{"ss04", Setting{featStylisticAlternatives, 8}},
	{"ss05", Setting{featStylisticAlternatives, 10}},
	{"ss06", Setting{featStylisticAlternatives, 12}},
	{"ss07", Setting{featStylisticAlternatives, 14}},
	{"ss08", Setting{featStylisticAlternatives, 16}},
	{"ss09", Setting{featStylisticAlternatives, 18}},
	{"ss10", Setting{featStylisticAlternatives, 20}},
	{"ss11", Setting{featStylisticAlternatives, 22}},
	{"ss12", Setting{featStylisticAlternatives, 24}},
	{"ss13", Setting{featStylisticAlternatives, 26}},
	{"ss14", Setting{featStylisticAlternatives, 28}},
	{"ss15", Setting{featStylisticAlternatives, 30}},
	{"ss16", Setting{featStylisticAlternatives, 32}},
	{"ss17", Setting{featStylisticAlternatives, 34}},
	{"ss18", Setting{featStylisticAlternatives, 36}},
	{"ss19", Setting{featStylisticAlternatives, 38}},
	{"ss20", Setting{featStylisticAlternatives, 40}},
	{"calt", Setting{featContextualAlternates, 0}},
	{"swsh", Setting{featContextualAlternates, 2}},
	{"cswh", Setting{featContextualAlternates, 4}},
	{"smcp", Setting{featLowerCase, 1}},
	{"pcap", Setting{featLowerCase, 2}},
	{"c2sc", Setting{featUpperCase, 1}},
	{"c2pc", Setting{featUpperCase, 2}},
	{"mset", Setting{featLinguisticRearrangement, 0}},
}

var (
	otToAAT = make(map[ot.Tag]Setting, len(otMapping))
	aatToOT = make(map[Setting]ot.Tag, len(otMapping))
)

func init() {
	for _, m := range otMapping {
		tag := ot.T(m.tag)
		otToAAT[tag] = m.setting
		if _, ok := aatToOT[m.setting]; !ok {
			aatToOT[m.setting] = tag
		}
	}
}

// MapOTToAAT translates a selection of OpenType features to AAT feature
// settings. Disabled OpenType features disable the corresponding setting.
// Tags without an AAT counterpart are ignored.
func MapOTToAAT(features map[ot.Tag]bool) Features {
	res := make(Features)
	for tag, on := range features {
		if s, ok := otToAAT[tag]; ok {
			res.Set(s.Type, s.Selector, on)
		}
	}
	return res
}

// MapAATToOT translates AAT feature settings to OpenType feature tags.
// Settings without an OpenType counterpart are dropped, duplicates are
// reported once.
func MapAATToOT(settings []Setting) []ot.Tag {
	var tags []ot.Tag
	seen := make(map[ot.Tag]bool)
	for _, s := range settings {
		if tag, ok := aatToOT[s]; ok && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

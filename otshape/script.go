package otshape

import (
	gotext "github.com/go-text/typesetting/language"
	"github.com/npillmayer/fontkit/ot"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/unicode/bidi"
)

// Scripts whose OpenType tag is not the lowercased ISO 15924 code.
var irregularScriptTags = map[gotext.Script]ot.Tag{
	gotext.Mathematical_notation: ot.T("math"),
	gotext.Hiragana:              ot.T("kana"),
	gotext.Katakana_Or_Hiragana:  ot.T("kana"),
	gotext.Lao:                   ot.T("lao "),
	gotext.Yi:                    ot.T("yi  "),
	gotext.Nko:                   ot.T("nko "),
	gotext.Vai:                   ot.T("vai "),
}

// Indic scripts have a second generation of OpenType tags, which fonts
// prefer if they support them.
var newScriptTags = map[gotext.Script]ot.Tag{
	gotext.Bengali:    ot.T("bng2"),
	gotext.Devanagari: ot.T("dev2"),
	gotext.Gujarati:   ot.T("gjr2"),
	gotext.Gurmukhi:   ot.T("gur2"),
	gotext.Kannada:    ot.T("knd2"),
	gotext.Malayalam:  ot.T("mlm2"),
	gotext.Oriya:      ot.T("ory2"),
	gotext.Tamil:      ot.T("tml2"),
	gotext.Telugu:     ot.T("tel2"),
	gotext.Myanmar:    ot.T("mym2"),
}

var rtlScripts = map[gotext.Script]bool{
	gotext.Arabic:                 true,
	gotext.Hebrew:                 true,
	gotext.Syriac:                 true,
	gotext.Thaana:                 true,
	gotext.Cypriot:                true,
	gotext.Kharoshthi:             true,
	gotext.Phoenician:             true,
	gotext.Nko:                    true,
	gotext.Lydian:                 true,
	gotext.Avestan:                true,
	gotext.Imperial_Aramaic:       true,
	gotext.Inscriptional_Pahlavi:  true,
	gotext.Inscriptional_Parthian: true,
	gotext.Old_South_Arabian:      true,
	gotext.Old_Turkic:             true,
	gotext.Samaritan:              true,
	gotext.Mandaic:                true,
	gotext.Meroitic_Cursive:       true,
	gotext.Meroitic_Hieroglyphs:   true,
	gotext.Manichaean:             true,
	gotext.Mende_Kikakui:          true,
	gotext.Nabataean:              true,
	gotext.Old_North_Arabian:      true,
	gotext.Palmyrene:              true,
	gotext.Psalter_Pahlavi:        true,
	gotext.Adlam:                  true,
	gotext.Hanifi_Rohingya:        true,
	gotext.Old_Hungarian:          true,
}

func toGoText(script language.Script) gotext.Script {
	s, err := gotext.ParseScript(script.String())
	if err != nil {
		return gotext.Unknown
	}
	return s
}

func fromGoText(script gotext.Script) language.Script {
	s, err := language.ParseScript(script.String())
	if err != nil {
		return language.Script{}
	}
	return s
}

// DetectScript returns the first strong script of text. If text contains only
// common or inherited characters, the unknown script 'Zzzz' is returned.
func DetectScript(text []rune) language.Script {
	for _, r := range text {
		if s := gotext.LookupScript(r); s.Strong() && s != gotext.Unknown {
			return fromGoText(s)
		}
	}
	return fromGoText(gotext.Unknown)
}

// ScriptTagForScript returns the OpenType script tag for an ISO 15924 script
// code. It returns the DFLT-tag for unknown scripts.
func ScriptTagForScript(script language.Script) ot.Tag {
	tags := ScriptTagsForScript(script)
	return tags[len(tags)-1]
}

// ScriptTagsForScript returns the OpenType script tags for script, in order of
// preference. For Indic scripts the list starts with the new-style tag.
func ScriptTagsForScript(script language.Script) []ot.Tag {
	s := toGoText(script)
	if s == gotext.Unknown || s == gotext.Common || s == gotext.Inherited || s == 0 {
		return []ot.Tag{ot.DFLT}
	}
	var old ot.Tag
	if tag, ok := irregularScriptTags[s]; ok {
		old = tag
	} else {
		old = ot.Tag(uint32(s) | 0x20000000) // lowercase first letter
	}
	if tag, ok := newScriptTags[s]; ok {
		return []ot.Tag{tag, old}
	}
	return []ot.Tag{old}
}

// ScriptDirection returns the horizontal direction of script.
func ScriptDirection(script language.Script) bidi.Direction {
	if rtlScripts[toGoText(script)] {
		return bidi.RightToLeft
	}
	return bidi.LeftToRight
}

// Supported languages and their OpenType language system tags.
var supportedLanguages = map[language.Tag]string{
	language.Arabic:     "ARA",
	language.Chinese:    "ZHS",
	language.English:    "ENG",
	language.French:     "FRA",
	language.Greek:      "ELL",
	language.German:     "DEU",
	language.Hebrew:     "IWR",
	language.Japanese:   "JAN",
	language.Persian:    "FAR",
	language.Portuguese: "PTG",
	language.Romanian:   "ROM",
	language.Russian:    "RUS",
	language.Turkish:    "TRK",
	language.Urdu:       "URD",
}

var supportedLanguagesMatcher language.Matcher

func init() {
	langs := make([]language.Tag, 0, len(supportedLanguages))
	for l := range supportedLanguages {
		langs = append(langs, l)
	}
	supportedLanguagesMatcher = language.NewMatcher(langs)
}

// LanguageTagForLanguage returns the OpenType language tag for a BCP 47
// language tag. If no supported language matches with a confidence of at
// least conf, 0 is returned, which selects the default language system.
func LanguageTagForLanguage(lang language.Tag, conf language.Confidence) ot.Tag {
	if lang == language.Und {
		return 0
	}
	l, _, c := supportedLanguagesMatcher.Match(lang)
	tracer().Debugf("OpenType language matched %s (%s) : %s", display.English.Tags().Name(l),
		display.Self.Name(l), c)
	if c < conf {
		return 0
	}
	base, _ := language.Compose(l.Base())
	if ltag, ok := supportedLanguages[base]; ok {
		return ot.T(ltag)
	}
	return 0
}

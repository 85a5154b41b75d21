package otarabic

import "unicode"

const (
	formNone  = -1
	formIsol  = 0
	formFina  = 1
	formFin2  = 2
	formFin3  = 3
	formMedi  = 4
	formMed2  = 5
	formInit  = 6
	formCount = 7
)

type joiningType uint8

// Columns of the joining state table. Transparent characters do not take
// part in the state machine; join-causing characters act as dual joining.
const (
	joiningTypeU joiningType = iota
	joiningTypeL
	joiningTypeR
	joiningTypeD
	joiningGroupAlaph
	joiningGroupDalathRish
	joiningTypeT
	joiningTypeC
)

type joiningAction struct {
	prev, cur int // forms for the previous and the current character
	next      int // next state
}

// joiningStates is the cursive joining state machine. Rows are states,
// columns joining types U, L, R, D, Alaph and Dalath/Rish.
var joiningStates = [7][6]joiningAction{
	// 0: previous character was U, not willing to join
	{{formNone, formNone, 0}, {formNone, formIsol, 2}, {formNone, formIsol, 1},
		{formNone, formIsol, 2}, {formNone, formIsol, 1}, {formNone, formIsol, 6}},
	// 1: previous character was R or an isolated Alaph, not willing to join
	{{formNone, formNone, 0}, {formNone, formIsol, 2}, {formNone, formIsol, 1},
		{formNone, formIsol, 2}, {formNone, formFin2, 5}, {formNone, formIsol, 6}},
	// 2: previous character was D or L in isolated form, willing to join
	{{formNone, formNone, 0}, {formNone, formIsol, 2}, {formInit, formFina, 1},
		{formInit, formFina, 3}, {formInit, formFina, 4}, {formInit, formFina, 6}},
	// 3: previous character was D in final form, willing to join
	{{formNone, formNone, 0}, {formNone, formIsol, 2}, {formMedi, formFina, 1},
		{formMedi, formFina, 3}, {formMedi, formFina, 4}, {formMedi, formFina, 6}},
	// 4: previous character was a final Alaph, not willing to join
	{{formNone, formNone, 0}, {formNone, formIsol, 2}, {formMed2, formIsol, 1},
		{formMed2, formIsol, 2}, {formMed2, formFin2, 5}, {formMed2, formIsol, 6}},
	// 5: previous character was Alaph in form fin2 or fin3, not willing to join
	{{formNone, formNone, 0}, {formNone, formIsol, 2}, {formIsol, formIsol, 1},
		{formIsol, formIsol, 2}, {formIsol, formFin2, 5}, {formIsol, formIsol, 6}},
	// 6: previous character was Dalath or Rish, not willing to join
	{{formNone, formNone, 0}, {formNone, formIsol, 2}, {formNone, formIsol, 1},
		{formNone, formIsol, 2}, {formNone, formFin3, 5}, {formNone, formIsol, 6}},
}

// resolveJoiningForms returns the positional form of every character of
// cps, formNone for characters which do not join.
func resolveJoiningForms(cps []rune) []int {
	forms := make([]int, len(cps))
	prev, state := -1, 0
	for i, cp := range cps {
		forms[i] = formNone
		t := classifyJoiningType(cp)
		if t == joiningTypeT {
			continue
		}
		if t == joiningTypeC {
			t = joiningTypeD
		}
		action := joiningStates[state][t]
		if action.prev != formNone && prev >= 0 {
			forms[prev] = action.prev
		}
		forms[i] = action.cur
		prev, state = i, action.next
	}
	return forms
}

var rightJoining = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0622, Hi: 0x0625, Stride: 1},
		{Lo: 0x0627, Hi: 0x0627, Stride: 1},
		{Lo: 0x0629, Hi: 0x0629, Stride: 1},
		{Lo: 0x062F, Hi: 0x0632, Stride: 1},
		{Lo: 0x0648, Hi: 0x0648, Stride: 1},
		{Lo: 0x0671, Hi: 0x0673, Stride: 1},
		{Lo: 0x0675, Hi: 0x0677, Stride: 1},
		{Lo: 0x0688, Hi: 0x0699, Stride: 1},
		{Lo: 0x06C0, Hi: 0x06C0, Stride: 1},
		{Lo: 0x06C3, Hi: 0x06CB, Stride: 1},
		{Lo: 0x06CD, Hi: 0x06CD, Stride: 1},
		{Lo: 0x06CF, Hi: 0x06CF, Stride: 1},
		{Lo: 0x06D2, Hi: 0x06D3, Stride: 1},
		{Lo: 0x06D5, Hi: 0x06D5, Stride: 1},
		{Lo: 0x06EE, Hi: 0x06EF, Stride: 1},
		{Lo: 0x0718, Hi: 0x0719, Stride: 1},
		{Lo: 0x071E, Hi: 0x071E, Stride: 1},
		{Lo: 0x0728, Hi: 0x0728, Stride: 1},
		{Lo: 0x072C, Hi: 0x072C, Stride: 1},
		{Lo: 0x074D, Hi: 0x074D, Stride: 1},
	},
}

var dalathRish = map[rune]bool{0x0715: true, 0x0716: true, 0x072A: true, 0x072F: true}

// Letters of joining scripts which neither join left nor right.
var nonJoining = map[rune]bool{0x0621: true, 0x0674: true}

var leftJoining = map[rune]bool{0xA872: true, 0x10ACD: true, 0x10AD7: true, 0x10D00: true}

var joiningScripts = []*unicode.RangeTable{
	unicode.Arabic, unicode.Syriac, unicode.Nko, unicode.Mongolian, unicode.Mandaic,
	unicode.Manichaean, unicode.Phags_Pa, unicode.Psalter_Pahlavi, unicode.Hanifi_Rohingya,
}

func classifyJoiningType(cp rune) joiningType {
	switch {
	case cp <= 0 || cp == '\u200C': // ZWNJ breaks joining
		return joiningTypeU
	case cp == '\u200D' || cp == '\u0640' || cp == '\u07FA' || cp == '\u180A':
		return joiningTypeC // ZWJ, Tatweel, Lajanyalan, Nirugu
	case unicode.In(cp, unicode.Mn, unicode.Me, unicode.Cf):
		return joiningTypeT
	case cp == '\u0710':
		return joiningGroupAlaph
	case dalathRish[cp]:
		return joiningGroupDalathRish
	case nonJoining[cp]:
		return joiningTypeU
	case leftJoining[cp]:
		return joiningTypeL
	case unicode.Is(rightJoining, cp):
		return joiningTypeR
	case unicode.IsLetter(cp) && unicode.In(cp, joiningScripts...):
		return joiningTypeD
	}
	return joiningTypeU
}

package otarabic

import (
	"strings"
	"sync"
	"unicode"

	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/otlayout"
	"github.com/npillmayer/fontkit/otshape"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/unicode/runenames"
)

// tracer traces with key 'fontkit.layout'.
func tracer() tracing.Trace {
	return tracing.Select("fontkit.layout")
}

var arabicScript = language.MustParseScript("Arab")

// Other scripts with cursive joining.
var joiningScriptTags = map[ot.Tag]bool{
	ot.T("syrc"): true,
	ot.T("nko "): true,
	ot.T("mong"): true,
	ot.T("mand"): true,
	ot.T("mani"): true,
	ot.T("phag"): true,
	ot.T("phlp"): true,
	ot.T("rohg"): true,
}

var (
	tagIsol = ot.T("isol")
	tagFina = ot.T("fina")
	tagFin2 = ot.T("fin2")
	tagFin3 = ot.T("fin3")
	tagMedi = ot.T("medi")
	tagMed2 = ot.T("med2")
	tagInit = ot.T("init")
	tagMset = ot.T("mset")
)

var arabicFormFeatureTags = [formCount]ot.Tag{
	tagIsol, tagFina, tagFin2, tagFin3, tagMedi, tagMed2, tagInit,
}

// Shaper is the shaping engine for Arabic and the other scripts with cursive
// joining.
//
// A callback stage determines the positional form of every glyph and enables
// one of the features isol, fina, fin2, fin3, medi, med2 or init for it.
// Every form feature is applied in a stage of its own. Fonts without a GSUB
// table get the Arabic presentation forms of their cmap instead.
type Shaper struct{}

var _ otshape.ShapingEngine = Shaper{}

// New returns the Arabic shaping engine.
func New() otshape.ShapingEngine {
	return Shaper{}
}

func (Shaper) Name() string {
	return "arabic"
}

func (Shaper) Match(ctx otshape.SelectionContext) otshape.ShaperConfidence {
	if ctx.Script == arabicScript || ctx.ScriptTag == ot.T("arab") {
		return otshape.ShaperConfidenceCertain
	}
	for _, tag := range otshape.ScriptTagsForScript(ctx.Script) {
		if joiningScriptTags[tag] {
			return otshape.ShaperConfidenceHigh
		}
	}
	if joiningScriptTags[ctx.ScriptTag] {
		return otshape.ShaperConfidenceHigh
	}
	return otshape.ShaperConfidenceNone
}

func (Shaper) New() otshape.ShapingEngine {
	return Shaper{}
}

// PlanFeatures plans the joining analysis, one stage per positional form and
// the mark positioning feature 'mset', between the default stages.
func (Shaper) PlanFeatures(plan *otshape.Plan, user map[ot.Tag]bool) {
	otshape.PlanPreprocessing(plan)
	plan.AddCallback(assignJoiningForms)
	for _, tag := range arabicFormFeatureTags {
		plan.AddStage(false, tag)
	}
	plan.AddStage(true, tagMset)
	plan.AddCallback(applyFallbackForms)
	otshape.PlanPostprocessing(plan, user)
}

func (Shaper) AssignFeatures(plan *otshape.Plan, buf *otlayout.Buffer) {
	otshape.AssignFractions(buf)
}

// assignJoiningForms runs the joining state machine over the glyphs of buf
// and enables the form feature of each glyph.
func assignJoiningForms(plan *otshape.Plan, buf *otlayout.Buffer) {
	cps := make([]rune, buf.Len())
	for i, g := range buf.Glyphs {
		cps[i] = -1
		if len(g.CodePoints) > 0 {
			cps[i] = g.CodePoints[0]
		}
	}
	forms := resolveJoiningForms(cps)
	for i, g := range buf.Glyphs {
		g.ShaperInfo = forms[i]
		if forms[i] != formNone {
			g.Features[arabicFormFeatureTags[forms[i]]] = true
		}
	}
}

// applyFallbackForms maps letters to Arabic presentation forms for fonts
// without GSUB table.
func applyFallbackForms(plan *otshape.Plan, buf *otlayout.Buffer) {
	if plan.Font == nil {
		return
	}
	if tables := plan.Font.LayoutTables(); tables != nil && tables.GSUB != nil {
		return
	}
	presentationFormsOnce.Do(func() {
		presentationByBase = buildPresentationFormMap()
	})
	var gdef *ot.GDefTable
	if tables := plan.Font.LayoutTables(); tables != nil {
		gdef = tables.GDEF
	}
	for _, g := range buf.Glyphs {
		form, ok := g.ShaperInfo.(int)
		if !ok || form == formNone || len(g.CodePoints) != 1 {
			continue
		}
		if pres := presentationFormFor(g.CodePoints[0], form); pres != 0 {
			if gid := plan.Font.GlyphIndex(pres); gid != otshape.NOTDEF {
				tracer().Debugf("fallback form %d of %#U is %#U", form, g.CodePoints[0], pres)
				g.SetID(gdef, gid)
			}
		}
	}
}

type presentationForms [formCount]rune

var (
	presentationFormsOnce sync.Once
	presentationByBase    map[rune]presentationForms
)

func buildPresentationFormMap() map[rune]presentationForms {
	out := make(map[rune]presentationForms, 256)
	addRange := func(from, to rune) {
		for u := from; u <= to; u++ {
			form, ok := presentationFormFromName(u)
			if !ok {
				continue
			}
			base := presentationBaseRune(u)
			if base == 0 {
				continue
			}
			forms := out[base]
			if forms[form] == 0 {
				forms[form] = u
			}
			out[base] = forms
		}
	}
	addRange(0xFB50, 0xFDFF) // Arabic Presentation Forms-A
	addRange(0xFE70, 0xFEFF) // Arabic Presentation Forms-B
	return out
}

func presentationFormFromName(u rune) (int, bool) {
	name := runenames.Name(u)
	if name == "" || !strings.Contains(name, "ARABIC LETTER") {
		return 0, false
	}
	switch {
	case strings.HasSuffix(name, "ISOLATED FORM"):
		return formIsol, true
	case strings.HasSuffix(name, "FINAL FORM"):
		return formFina, true
	case strings.HasSuffix(name, "INITIAL FORM"):
		return formInit, true
	case strings.HasSuffix(name, "MEDIAL FORM"):
		return formMedi, true
	}
	return 0, false
}

// presentationBaseRune returns the letter a presentation form is a
// compatibility variant of, 0 for ligatures.
func presentationBaseRune(u rune) rune {
	var base rune
	for _, x := range []rune(norm.NFKD.String(string(u))) {
		if unicode.Is(unicode.M, x) {
			continue
		}
		if base != 0 {
			return 0
		}
		base = x
	}
	if !unicode.In(base, unicode.Arabic) {
		return 0
	}
	return base
}

func presentationFormFor(cp rune, form int) rune {
	forms, ok := presentationByBase[cp]
	if !ok {
		return 0
	}
	switch form {
	case formFin2, formFin3:
		form = formFina
	case formMed2:
		form = formMedi
	}
	if forms[form] != 0 {
		return forms[form]
	}
	return forms[formIsol]
}

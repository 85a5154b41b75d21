package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/fontkit"
	"github.com/npillmayer/fontkit/glyph"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/otquery"
	"github.com/pterm/pterm"
)

// --- Glyphs ---------------------------------------------------------------

func glyphOp(intp *Intp, op *Op) (err error, stop bool) {
	arg, ok := op.hasArg()
	if !ok {
		return errors.New("usage: glyph:A, glyph:0x41 or glyph:#12"), false
	}
	var g *glyph.Glyph
	if g, err = resolveGlyph(intp.font, arg); err != nil {
		return
	}
	pterm.DefaultTable.WithHasHeader().WithData(glyphRows(intp.font, g)).Render()
	if op.format == "svg" {
		var p *glyph.Path
		if p, err = g.Path(); err != nil {
			return
		}
		pterm.Println(p.SVG())
	}
	return
}

// resolveGlyph finds a glyph by character ("A"), by code point ("0x41",
// "U+0041") or by glyph ID ("#12").
func resolveGlyph(f *fontkit.Font, arg string) (*glyph.Glyph, error) {
	if strings.HasPrefix(arg, "#") {
		n, err := strconv.Atoi(arg[1:])
		if err != nil || n < 0 || n >= f.NumGlyphs() {
			return nil, fmt.Errorf("invalid glyph ID %q", arg)
		}
		gid := ot.GlyphIndex(n)
		return f.Glyph(gid, f.CMap().CodePointsForGlyph(gid)), nil
	}
	var r rune
	if utf8.RuneCountInString(arg) == 1 {
		r, _ = utf8.DecodeRuneInString(arg)
	} else {
		hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToUpper(arg), "U+"), "0X")
		u, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || u > 0x10ffff {
			return nil, fmt.Errorf("invalid code point %q", arg)
		}
		r = rune(u)
	}
	gid := f.GlyphIndex(r)
	if gid == 0 {
		return nil, fmt.Errorf("font has no glyph for U+%04X", r)
	}
	return f.Glyph(gid, []rune{r}), nil
}

func glyphRows(f *fontkit.Font, g *glyph.Glyph) [][]string {
	data := [][]string{
		{"Property", "Value"},
		{"ID", strconv.Itoa(int(g.ID))},
		{"Name", g.Name()},
		{"Code points", formatCodePoints(g.CodePoints)},
		{"Kind", g.Kind.String()},
		{"Advance", fmt.Sprintf("%g", g.AdvanceWidth())},
	}
	if m, err := g.Metrics(); err == nil {
		data = append(data, []string{"Bearings", fmt.Sprintf("%g / %g", m.LeftBearing, m.TopBearing)})
	}
	if box, err := g.CBox(); err == nil && !box.IsEmpty() {
		data = append(data, []string{"Control box",
			fmt.Sprintf("%g %g %g %g", box.MinX, box.MinY, box.MaxX, box.MaxY)})
	} else {
		data = append(data, []string{"Control box", "-"})
	}
	clz := otquery.ClassesForGlyph(f.OT, g.ID)
	data = append(data, []string{"GDEF class", glyphClassName(clz.Class)})
	if clz.MarkAttachClass != 0 {
		data = append(data, []string{"Mark attach class", strconv.Itoa(int(clz.MarkAttachClass))})
	}
	return data
}

func glyphClassName(c otquery.GlyphClass) string {
	switch c {
	case otquery.BaseGlyph:
		return "base"
	case otquery.LigatureGlyph:
		return "ligature"
	case otquery.MarkGlyph:
		return "mark"
	case otquery.ComponentGlyph:
		return "component"
	}
	return "-"
}

func formatCodePoints(cps []rune) string {
	if len(cps) == 0 {
		return "-"
	}
	s := make([]string, len(cps))
	for i, r := range cps {
		s[i] = fmt.Sprintf("U+%04X", r)
	}
	return strings.Join(s, " ")
}

// --- Character map --------------------------------------------------------

func cmapOp(intp *Intp, op *Op) (error, bool) {
	cmap := intp.font.CMap()
	if cmap == nil {
		return errors.New("font has no usable cmap"), false
	}
	cs := intp.font.CharacterSet()
	pterm.Printf("cmap format %d maps %d characters\n", cmap.Format(), len(cs))
	if op.noArg() {
		return nil, false
	}
	g, err := resolveGlyph(intp.font, op.arg)
	if err != nil {
		return err, false
	}
	pterm.Printf("%s => glyph %d (%s)\n", formatCodePoints(g.CodePoints), g.ID, g.Name())
	return nil, false
}

// --- Layout ---------------------------------------------------------------

func layoutOp(intp *Intp, op *Op) (error, bool) {
	if op.text == "" {
		return errors.New("usage: layout[:features] <text>"), false
	}
	var opts []fontkit.LayoutOption
	if settings := strings.FieldsFunc(op.arg, func(r rune) bool { return r == ',' }); len(settings) > 0 {
		opts = append(opts, fontkit.WithFeatureSettings(settings...))
	}
	run, err := intp.font.Layout(op.text, opts...)
	if err != nil {
		return err, false
	}
	pterm.Printf("engine=%s script=%s lang=%s features=%v\n", run.Engine, run.Script, run.Language, run.Features)
	pterm.DefaultTable.WithHasHeader().WithData(glyphRunRows(run)).Render()
	return nil, false
}

func glyphRunRows(run *fontkit.GlyphRun) [][]string {
	data := [][]string{
		{"Glyph", "Name", "Code points", "Advance", "Offset"},
	}
	for i, g := range run.Glyphs {
		p := run.Positions[i]
		data = append(data, []string{
			strconv.Itoa(int(g.ID)),
			g.Name(),
			formatCodePoints(g.CodePoints),
			fmt.Sprintf("%d,%d", p.XAdvance, p.YAdvance),
			fmt.Sprintf("%d,%d", p.XOffset, p.YOffset),
		})
	}
	return data
}

// --- Lookups --------------------------------------------------------------

func printLookupList(table *ot.LayoutTable) {
	if table == nil {
		pterm.Error.Println("layout table is nil")
		return
	}
	count := len(table.Lookups)
	pterm.Printf("%s LookupList has %d entries\n", table.Tag, count)
	if count == 0 {
		return
	}
	pterm.DefaultTable.WithHasHeader().WithData(lookupListRows(table)).Render()
}

func lookupListRows(table *ot.LayoutTable) [][]string {
	data := [][]string{
		{"Index", "Type", "Subtables", "Flags"},
	}
	for i, lookup := range table.Lookups {
		data = append(data, []string{
			strconv.Itoa(i),
			formatLookupType(table.Tag, lookup.Type),
			strconv.Itoa(len(lookup.Subtables)),
			formatLookupFlags(lookup.Flag),
		})
	}
	return data
}

func printLookup(table *ot.LayoutTable, index int) {
	if table == nil {
		pterm.Error.Println("layout table is nil")
		return
	}
	if index < 0 || index >= len(table.Lookups) {
		pterm.Error.Printf("Lookup index out of range: %d\n", index)
		return
	}
	lookup := table.Lookups[index]
	pterm.Printf("Lookup %d: type=%s flags=%s subtables=%d\n",
		index,
		formatLookupType(table.Tag, lookup.Type),
		formatLookupFlags(lookup.Flag),
		len(lookup.Subtables),
	)
	data := [][]string{
		{"Sub", "Type", "Coverage", "Support"},
	}
	for i, sub := range lookup.Subtables {
		data = append(data, []string{
			strconv.Itoa(i),
			fmt.Sprintf("%T", sub),
			formatCoverageSummary(sub),
			formatSupportSummary(sub),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

var gsubTypeNames = map[uint16]string{
	ot.GSubSingle:          "Single",
	ot.GSubMultiple:        "Multiple",
	ot.GSubAlternate:       "Alternate",
	ot.GSubLigature:        "Ligature",
	ot.GSubContext:         "Context",
	ot.GSubChainingContext: "ChainingContext",
	ot.GSubExtension:       "Extension",
	ot.GSubReverseChaining: "ReverseChaining",
}

var gposTypeNames = map[uint16]string{
	ot.GPosSingle:          "Single",
	ot.GPosPair:            "Pair",
	ot.GPosCursive:         "Cursive",
	ot.GPosMarkToBase:      "MarkToBase",
	ot.GPosMarkToLigature:  "MarkToLigature",
	ot.GPosMarkToMark:      "MarkToMark",
	ot.GPosContext:         "Context",
	ot.GPosChainingContext: "ChainingContext",
	ot.GPosExtension:       "Extension",
}

func formatLookupType(table ot.Tag, ltype uint16) string {
	names := gsubTypeNames
	if table == ot.T("GPOS") {
		names = gposTypeNames
	}
	if name, ok := names[ltype]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", ltype)
}

func formatLookupFlags(flag ot.LookupFlag) string {
	if flag == 0 {
		return "-"
	}
	parts := make([]string, 0, 6)
	if flag&ot.RightToLeft != 0 {
		parts = append(parts, "RightToLeft")
	}
	if flag&ot.IgnoreBaseGlyphs != 0 {
		parts = append(parts, "IgnoreBase")
	}
	if flag&ot.IgnoreLigatures != 0 {
		parts = append(parts, "IgnoreLigatures")
	}
	if flag&ot.IgnoreMarks != 0 {
		parts = append(parts, "IgnoreMarks")
	}
	if flag&ot.UseMarkFilteringSet != 0 {
		parts = append(parts, "UseMarkFilteringSet")
	}
	if flag&ot.MarkAttachmentTypeMask != 0 {
		parts = append(parts, fmt.Sprintf("MarkAttachType=%d", flag>>8))
	}
	return strings.Join(parts, "|")
}

// coverageOf returns the (first) coverage of a subtable.
func coverageOf(sub any) *ot.Coverage {
	switch v := sub.(type) {
	case *ot.SingleSubst:
		return v.Coverage
	case *ot.MultipleSubst:
		return v.Coverage
	case *ot.AlternateSubst:
		return v.Coverage
	case *ot.LigatureSubst:
		return v.Coverage
	case *ot.ReverseChainSubst:
		return v.Coverage
	case *ot.SinglePos:
		return v.Coverage
	case *ot.PairPosGlyphs:
		return v.Coverage
	case *ot.PairPosClasses:
		return v.Coverage
	case *ot.CursivePos:
		return v.Coverage
	case *ot.MarkBasePos:
		return v.MarkCoverage
	case *ot.MarkMarkPos:
		return v.MarkCoverage
	case *ot.MarkLigPos:
		return v.MarkCoverage
	case *ot.SequenceContext:
		if v.Coverage != nil {
			return v.Coverage
		}
		if len(v.InputCoverage) > 0 {
			return v.InputCoverage[0]
		}
	}
	return nil
}

func formatCoverageSummary(sub any) string {
	cov := coverageOf(sub)
	if cov == nil {
		return "-"
	}
	return fmt.Sprintf("count=%d", cov.Len())
}

func formatSupportSummary(sub any) string {
	switch v := sub.(type) {
	case *ot.SingleSubst:
		if v.Substitutes == nil {
			return fmt.Sprintf("delta=%d", v.Delta)
		}
		return fmt.Sprintf("substitutes=%d", len(v.Substitutes))
	case *ot.LigatureSubst:
		n := 0
		for _, set := range v.LigatureSets {
			n += len(set)
		}
		return fmt.Sprintf("ligatures=%d", n)
	case *ot.PairPosClasses:
		return fmt.Sprintf("class2=%d", v.Class2Count)
	case *ot.MarkBasePos:
		return fmt.Sprintf("classes=%d", v.ClassCount)
	case *ot.MarkMarkPos:
		return fmt.Sprintf("classes=%d", v.ClassCount)
	case *ot.MarkLigPos:
		return fmt.Sprintf("classes=%d", v.ClassCount)
	case *ot.SequenceContext:
		return formatSequenceContextSummary(v)
	}
	return "-"
}

func formatSequenceContextSummary(ctx *ot.SequenceContext) string {
	if ctx == nil {
		return "-"
	}
	kind := "seqctx"
	if ctx.Chained {
		kind = "chained"
	}
	return fmt.Sprintf("%s fmt=%d back=%d in=%d look=%d rules=%d",
		kind,
		ctx.Format,
		len(ctx.BacktrackCoverage),
		len(ctx.InputCoverage),
		len(ctx.LookaheadCoverage),
		len(ctx.RuleSets),
	)
}

package main

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/npillmayer/fontkit"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/fontkit/otquery"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
	xfont "golang.org/x/image/font"
)

func runInfoCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	f := mustLoadFont(args, flags)
	pterm.DefaultTable.WithHasHeader().WithData(infoRows(f)).Render()

	tags := f.OT.TableTags()
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.String()
	}
	pterm.Printf("Tables (%d): %s\n", len(tags), strings.Join(names, " "))
	pterm.Printf("Layout: %s\n", strings.Join(otquery.LayoutTables(f.OT), ","))
	if features, err := f.AvailableFeatures(); err != nil {
		pterm.Error.Printf("cannot read layout features: %v\n", err)
	} else {
		pterm.Printf("Features: %s\n", joinTags(features))
	}
	errs, warns := f.OT.Errors(), f.OT.Warnings()
	pterm.Printf("Issues: errors=%d warnings=%d\n", len(errs), len(warns))

	if len(args["tables"].Value) > 0 {
		pterm.DefaultTable.WithHasHeader().WithData(tableRows(f.OT, splitCSVSpace(args["tables"].Value))).Render()
	}
	if mustFlagBool(flags["errors"], "errors") {
		for _, e := range errs {
			pterm.Printf("error: %s\n", e.Error())
		}
		for _, w := range warns {
			pterm.Printf("warning: %s\n", w.String())
		}
	}
}

// infoRows lists the names and global metrics of a font.
func infoRows(f *fontkit.Font) [][]string {
	names := otquery.NameInfo(f.OT)
	bbox := f.BBox()
	rows := [][]string{
		{"Property", "Value"},
		{"Container", f.Format.String()},
		{"Outlines", otquery.FontType(f.OT)},
		{"Glyph kind", f.GlyphKind().String()},
		{"Family", f.FamilyName()},
		{"Subfamily", f.SubfamilyName()},
		{"Full name", f.FullName()},
		{"PostScript name", f.PostScriptName()},
		{"Version", names["version"]},
		{"Glyphs", fmt.Sprintf("%d", f.NumGlyphs())},
		{"Units per em", fmt.Sprintf("%d", f.UnitsPerEm())},
		{"Ascent / descent", fmt.Sprintf("%d / %d", f.Ascent(), f.Descent())},
		{"Line gap", fmt.Sprintf("%d", f.LineGap())},
		{"Cap height / x-height", fmt.Sprintf("%d / %d", f.CapHeight(), f.XHeight())},
		{"Italic angle", fmt.Sprintf("%g", f.ItalicAngle())},
		{"Underline", fmt.Sprintf("%d (thickness %d)", f.UnderlinePosition(), f.UnderlineThickness())},
		{"Fixed pitch", fmt.Sprintf("%v", f.IsFixedPitch())},
		{"Bounding box", fmt.Sprintf("%g %g %g %g", bbox.MinX, bbox.MinY, bbox.MaxX, bbox.MaxY)},
		{"Style", styleName(f.Style())},
		{"Weight", fmt.Sprintf("%d", weightClass(f.Weight()))},
		{"Registry key", fontkit.NormalizeFontname(f.FamilyName(), f.Style(), f.Weight())},
	}
	return rows
}

// tableRows lists the directory entries of the requested tables.
func tableRows(otf *ot.Font, requested []string) [][]string {
	rows := [][]string{{"Table", "Offset", "Length", "Checksum"}}
	for _, name := range requested {
		rec, ok := otf.TableRecord(ot.T(name))
		if !ok {
			rows = append(rows, []string{name, "missing", "", ""})
			continue
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%d", rec.Offset),
			fmt.Sprintf("%d", rec.Length),
			fmt.Sprintf("%08x", rec.Checksum),
		})
	}
	return rows
}

func styleName(s xfont.Style) string {
	switch s {
	case xfont.StyleItalic:
		return "italic"
	case xfont.StyleOblique:
		return "oblique"
	}
	return "normal"
}

// weightClass converts a weight back to the 100…900 scale of 'OS/2'.
func weightClass(w xfont.Weight) int {
	return 100 * (int(w) + 4)
}

func joinTags(tags []ot.Tag) string {
	s := make([]string, len(tags))
	for i, tag := range tags {
		s[i] = tag.String()
	}
	sort.Strings(s)
	return strings.Join(s, ",")
}

// --- cmap ------------------------------------------------------------------

func runCMapCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	f := mustLoadFont(args, flags)
	var filter []rune
	if cp := mustFlagString(flags["codepoints"], "codepoints"); cp != "" {
		var err error
		if filter, err = parseCodepoints(cp); err != nil {
			fatalf("%v", err)
		}
	}
	rows := cmapRows(f, filter)
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	pterm.Printf("%d code points mapped\n", len(rows)-1)
}

// cmapRows lists the glyphs for code points, either for all code points of
// the font or for the code points of filter.
func cmapRows(f *fontkit.Font, filter []rune) [][]string {
	rows := [][]string{{"Code point", "Char", "Glyph", "Name"}}
	if filter == nil {
		filter = f.CharacterSet()
	}
	for _, r := range filter {
		gid := f.GlyphIndex(r)
		char := string(r)
		if !unicode.IsGraphic(r) {
			char = ""
		}
		rows = append(rows, []string{
			fmt.Sprintf("U+%04X", r),
			char,
			fmt.Sprintf("%d", gid),
			f.Glyph(gid, nil).Name(),
		})
	}
	return rows
}

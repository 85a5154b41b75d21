package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/fontkit"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
	"golang.org/x/text/unicode/bidi"
)

func runShapeCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	f := mustLoadFont(args, flags)
	run := mustLayout(f, args, flags)
	pterm.Printf("engine=%s script=%s lang=%s dir=%s features=%s\n",
		run.Engine, run.Script, run.Language, directionName(run), joinTags(run.Features))
	fmt.Println(formatGlyphRun(run))
}

func mustLayout(f *fontkit.Font, args map[string]commando.ArgValue, flags map[string]commando.FlagValue) *fontkit.GlyphRun {
	input, err := parseTextInput(args["text"], flags["codepoints"])
	if err != nil {
		fatalf("%v", err)
	}
	if input == "" {
		fatalf("input text is empty")
	}
	opts, err := layoutOptions(flags)
	if err != nil {
		fatalf("%v", err)
	}
	run, err := f.Layout(input, opts...)
	if err != nil {
		fatalf("layout failed: %v", err)
	}
	return run
}

// formatGlyphRun prints a run in a notation close to hb-shape:
// gid+advance, followed by ,yadvance and @xoffset,yoffset where non-zero.
func formatGlyphRun(run *fontkit.GlyphRun) string {
	var b strings.Builder
	for i, g := range run.Glyphs {
		if i > 0 {
			b.WriteString("|")
		}
		p := run.Positions[i]
		fmt.Fprintf(&b, "%d+%d", g.ID, p.XAdvance)
		if p.YAdvance != 0 {
			fmt.Fprintf(&b, ",%d", p.YAdvance)
		}
		if p.XOffset != 0 || p.YOffset != 0 {
			fmt.Fprintf(&b, "@%d,%d", p.XOffset, p.YOffset)
		}
	}
	return "[" + b.String() + "]"
}

func directionName(run *fontkit.GlyphRun) string {
	if run.Direction == bidi.RightToLeft {
		return "rtl"
	}
	return "ltr"
}

// --- subset ----------------------------------------------------------------

func runSubsetCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	f := mustLoadFont(args, flags)
	run := mustLayout(f, args, flags)
	outPath := mustFlagString(flags["output"], "output")
	if outPath == "" {
		fatalf("output path is empty")
	}
	sub := subsetForRun(f, run)
	data, err := sub.Encode()
	if err != nil {
		fatalf("cannot encode subset: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fatalf("cannot write subset: %v", err)
	}
	pterm.Info.Printf("wrote %s (glyphs=%d, bytes=%d)\n", outPath, len(sub.Glyphs()), len(data))
}

// subsetForRun creates a subset holding the glyphs of a run.
func subsetForRun(f *fontkit.Font, run *fontkit.GlyphRun) *fontkit.Subset {
	sub := f.CreateSubset()
	for _, g := range run.Glyphs {
		sub.IncludeGlyph(g.ID)
	}
	return sub
}

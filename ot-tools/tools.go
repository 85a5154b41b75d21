package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/npillmayer/fontkit"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/thatisuday/commando"
	"golang.org/x/text/unicode/bidi"
)

// tracer traces with key 'fontkit'
func tracer() tracing.Trace {
	return tracing.Select("fontkit")
}

// initTracing routes traces of the library to the Go logger. Commando parses
// flags only when dispatching, so --verbose is looked up directly.
func initTracing() {
	level := "Error"
	if slices.Contains(os.Args[1:], "-V") || slices.Contains(os.Args[1:], "--verbose") {
		level = "Info"
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":      "go",
		"trace.fontkit":        level,
		"trace.fontkit.ot":     level,
		"trace.fontkit.layout": level,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fatalf("cannot configure tracing: %v", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
}

func main() {
	initTracing()
	commando.
		SetExecutableName("ot-tools").
		SetVersion("v0.1.0").
		SetDescription("CLI for font diagnostics, text layout, subsetting and glyph rendering.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("info").
		SetDescription("Print names, metrics, tables and layout features of a font.").
		SetShortDescription("font diagnostics").
		AddArgument("font", "font file path (sfnt, WOFF, TTC or dfont)", "").
		AddArgument("tables...", "optional list of table tags (e.g. GSUB,GPOS,head)", "").
		AddFlag("index,i", "font index within a collection", commando.Int, 0).
		AddFlag("errors,e", "print decoding errors and warnings", commando.Bool, nil).
		SetAction(runInfoCommand)

	commando.
		Register("cmap").
		SetDescription("Print the character to glyph mapping of a font.").
		SetShortDescription("character map").
		AddArgument("font", "font file path", "").
		AddFlag("index,i", "font index within a collection", commando.Int, 0).
		AddFlag("codepoints,c", "restrict output to codepoints (e.g. U+0041,U+0042)", commando.String, "-").
		SetAction(runCMapCommand)

	commando.
		Register("shape").
		SetDescription("Lay out text with a font and print the glyph run.").
		SetShortDescription("shape text").
		AddArgument("font", "font file path", "").
		AddArgument("text...", "text to shape (variadic argument parts joined by comma by commando)", "").
		AddFlag("index,i", "font index within a collection", commando.Int, 0).
		AddFlag("script,s", "script (ISO 15924, e.g. Latn, Arab); detected from text if unset", commando.String, "-").
		AddFlag("lang,l", "language tag (BCP 47, e.g. en, ar)", commando.String, "-").
		AddFlag("direction,d", "direction: auto|ltr|rtl", commando.String, "auto").
		AddFlag("features,f", "feature list in harfbuzz notation (e.g. liga=1,kern=0,+rlig,-calt)", commando.String, "-").
		AddFlag("codepoints,c", "codepoints instead of text (comma/space separated, e.g. U+0627,U+0644)", commando.String, "-").
		SetAction(runShapeCommand)

	commando.
		Register("subset").
		SetDescription("Create a subset of a font holding the glyphs needed to display a text.").
		SetShortDescription("subset font").
		AddArgument("font", "font file path", "").
		AddArgument("text...", "text the subset has to cover", "").
		AddFlag("index,i", "font index within a collection", commando.Int, 0).
		AddFlag("features,f", "feature list in harfbuzz notation", commando.String, "-").
		AddFlag("codepoints,c", "codepoints instead of text", commando.String, "-").
		AddFlag("output,o", "output font file", commando.String, "ot-tools-subset.otf").
		SetAction(runSubsetCommand)

	commando.
		Register("view").
		SetDescription("Render shaped text to a PNG image.").
		SetShortDescription("shape to image").
		AddArgument("font", "font file path", "").
		AddArgument("text...", "text to shape before rendering", "").
		AddFlag("index,i", "font index within a collection", commando.Int, 0).
		AddFlag("script,s", "script (ISO 15924, e.g. Latn, Arab)", commando.String, "-").
		AddFlag("lang,l", "language tag (BCP 47, e.g. en, ar)", commando.String, "-").
		AddFlag("direction,d", "direction: auto|ltr|rtl", commando.String, "auto").
		AddFlag("features,f", "feature list in harfbuzz notation", commando.String, "-").
		AddFlag("codepoints,c", "codepoints instead of text", commando.String, "-").
		AddFlag("output,o", "output PNG file", commando.String, "ot-tools-view.png").
		AddFlag("glyph,g", "render only the glyph at this position of the run (-1: all)", commando.Int, -1).
		AddFlag("show-bboxes,B", "draw red bounding-box outlines per rendered glyph", commando.Bool, nil).
		AddFlag("ppem,p", "render scale in pixels-per-em", commando.Int, 96).
		AddFlag("width,W", "image width in pixels", commando.Int, 320).
		AddFlag("height,H", "image height in pixels", commando.Int, 240).
		SetAction(runViewCommand)

	commando.Parse(nil)
}

// --- Loading fonts ---------------------------------------------------------

// loadFont reads a font file of any container format and returns the font at
// index inx.
func loadFont(path string, inx int) (*fontkit.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read font %s: %w", path, err)
	}
	coll, err := fontkit.OpenCollection(data)
	if err != nil {
		return nil, fmt.Errorf("cannot parse font %s: %w", path, err)
	}
	return coll.Font(inx)
}

func mustLoadFont(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) *fontkit.Font {
	fontPath := strings.TrimSpace(args["font"].Value)
	if fontPath == "" {
		fatalf("font path is required")
	}
	f, err := loadFont(fontPath, mustFlagInt(flags["index"], "index"))
	if err != nil {
		fatalf("%v", err)
	}
	return f
}

// --- Parsing flags and arguments -------------------------------------------

// optString returns the value of a string flag, with "-" meaning unset.
func optString(flag commando.FlagValue, name string) (string, error) {
	s, err := flag.GetString()
	if err != nil {
		return "", fmt.Errorf("invalid --%s flag: %w", name, err)
	}
	s = strings.TrimSpace(s)
	if s == "-" {
		s = ""
	}
	return s, nil
}

// layoutOptions collects the layout options given by flags. Flags not
// registered for a command are skipped.
func layoutOptions(flags map[string]commando.FlagValue) ([]fontkit.LayoutOption, error) {
	var opts []fontkit.LayoutOption
	if flag, ok := flags["script"]; ok {
		s, err := optString(flag, "script")
		if err != nil {
			return nil, err
		}
		if s != "" {
			opts = append(opts, fontkit.WithScript(s))
		}
	}
	if flag, ok := flags["lang"]; ok {
		s, err := optString(flag, "lang")
		if err != nil {
			return nil, err
		}
		if s != "" {
			opts = append(opts, fontkit.WithLanguage(s))
		}
	}
	if flag, ok := flags["direction"]; ok {
		s, err := optString(flag, "direction")
		if err != nil {
			return nil, err
		}
		dir, err := parseDirection(s)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fontkit.WithDirection(dir))
	}
	if flag, ok := flags["features"]; ok {
		s, err := optString(flag, "features")
		if err != nil {
			return nil, err
		}
		if settings := splitCSVSpace(s); len(settings) > 0 {
			opts = append(opts, fontkit.WithFeatureSettings(settings...))
		}
	}
	return opts, nil
}

func parseDirection(s string) (bidi.Direction, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return bidi.Neutral, nil
	case "ltr", "left-to-right":
		return bidi.LeftToRight, nil
	case "rtl", "right-to-left":
		return bidi.RightToLeft, nil
	}
	return bidi.Neutral, fmt.Errorf("unsupported direction %q (expected auto|ltr|rtl)", s)
}

// parseTextInput returns the text to process: the codepoints flag if set,
// the text argument otherwise.
func parseTextInput(textArg commando.ArgValue, cpFlag commando.FlagValue) (string, error) {
	cp, err := optString(cpFlag, "codepoints")
	if err != nil {
		return "", err
	}
	if cp != "" {
		runes, err := parseCodepoints(cp)
		if err != nil {
			return "", err
		}
		return string(runes), nil
	}
	return textArg.Value, nil
}

func parseCodepoints(list string) ([]rune, error) {
	parts := splitCSVSpace(list)
	out := make([]rune, 0, len(parts))
	for _, p := range parts {
		r, err := parseCodepointToken(p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseCodepointToken(token string) (rune, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, errors.New("empty codepoint token")
	}
	hex := token
	switch {
	case strings.HasPrefix(hex, "U+"), strings.HasPrefix(hex, "u+"):
		hex = hex[2:]
	case strings.HasPrefix(hex, "0x"), strings.HasPrefix(hex, "0X"):
		hex = hex[2:]
	}
	u, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid codepoint %q: %w", token, err)
	}
	if u > 0x10ffff {
		return 0, fmt.Errorf("codepoint %q out of range", token)
	}
	return rune(u), nil
}

func splitCSVSpace(list string) []string {
	return strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func mustFlagString(flag commando.FlagValue, name string) string {
	s, err := optString(flag, name)
	if err != nil {
		fatalf("%v", err)
	}
	return s
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "ot-tools: "+format+"\n", args...)
	os.Exit(1)
}

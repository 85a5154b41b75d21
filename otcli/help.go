package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "script", "scripts", "scriptlist":
		pterm.Info.Println("ScriptList / Script")
		pterm.Println(`
	ScriptList is a property of GSUB and GPOS.
	It consists of ScriptRecords:
	+------------+----------------+
	| Script Tag | Link to Script |
	+------------+----------------+
	ScriptList behaves as a map.

	A Script table links to a default LangSys entry, and contains a list of LangSys records:
	+--------------------------------+
	| Link to LangSys record         |
	+--------------+-----------------+
	| Language Tag | Link to LangSys |
	+--------------+-----------------+
	Script behaves as a map, with entry 0 as the default link.

	'scripts' lists the script tags of the current table,
	'scripts:arab' lists the language systems of a script and their features.
	`)
	case "lang", "langsys", "langs", "language":
		pterm.Info.Println("LangSys")
		pterm.Println(`
	LangSys is pointed to from a Script Record.
	It links a language with features to activate. It does so using an index into the feature table.
	+-----------------------------------+
	| Index of required feature or null |
	+-----------------------------------+
	| Index of feature 1                |
	+-----------------------------------+
	| Index of feature 2                |
	+-----------------------------------+
	| ...                               |
	+-----------------------------------+
	LangSys behaves as a list.
	`)
	case "glyph", "glyphs":
		pterm.Info.Println("Glyphs")
		pterm.Println(`
	glyph:A         glyph for character 'A'
	glyph:0x41      glyph for code point U+0041 (U+0041 works, too)
	glyph:#12       glyph with ID 12
	glyph:A:svg     additionally print the outline as an SVG path
	Output includes metrics, the control box and the GDEF glyph class.
	`)
	case "layout":
		pterm.Info.Println("Layout")
		pterm.Println(`
	layout <text>                  shape text with default features
	layout:-liga,+smcp <text>      shape with feature settings (harfbuzz notation)
	layout:kern=0 <text>           switch off kerning
	Script, language and direction are derived from the text.
	The rest of the line after 'layout' is taken as text.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	Commands have the form op[:arg[:format]] and may be chained on one line,
	e.g. "table:GSUB scripts:latn".

	tables              list the table directory of the font
	table:GSUB|GPOS     select a layout table for the commands below
	scripts[:tag]       list scripts, or the language systems of a script
	features[:index]    list features (of the font if no table is selected)
	lookups[:index]     list lookups, or the subtables of a lookup
	glyph:char          print a glyph, see 'help:glyph'
	cmap[:char]         print character map info
	layout[:features]   shape the rest of the line, see 'help:layout'
	help[:topic]        topics: scripts, lang, glyph, layout
	quit                leave the CLI (or <ctrl>D)
	`)
	}
}

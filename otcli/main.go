package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/fontkit"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'fontkit'
func tracer() tracing.Trace {
	return tracing.Select("fontkit")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":      "go",
		"trace.fontkit":        "Info",
		"trace.fontkit.layout": "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font file to load")
	inx := flag.Int("index", 0, "Index of the font within a collection")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError)       // will set the correct level later
	pterm.Info.Println("Welcome to the fontkit CLI") // colored welcome message
	//
	// set up REPL
	repl, err := readline.New("font > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	//
	// load font to use
	if err := intp.loadFont(*fontname, *inx); err != nil { // font name provided by flag
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D or 'quit'") // inform user how to stop the CLI
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	font  *fontkit.Font
	repl  *readline.Instance
	table *ot.LayoutTable // GSUB or GPOS, selected by 'table'
}

func (intp *Intp) String() string {
	if intp == nil || intp.font == nil {
		return "()"
	}
	if intp.table == nil {
		return fmt.Sprintf("( font=%s )", intp.font.PostScriptName())
	}
	return fmt.Sprintf("( font=%s table=%s )", intp.font.PostScriptName(), intp.table.Tag)
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := intp.parseCommand(line)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code   int
	arg    string
	format string
	text   string // rest of the line, for ops consuming free text
}

type Command struct {
	count int
	op    [32]Op
}

const NOOP = -1
const (
	// op-code QUIT will not have arguments
	QUIT int = iota
	// op-codes below may have arguments
	HELP
	TABLES
	TABLE
	SCRIPTS
	FEATURES
	LOOKUPS
	GLYPH
	CMAP
	// op-code LAYOUT consumes the rest of the line
	LAYOUT
)

var opMap = map[string]int{
	"quit":     QUIT,
	"help":     HELP,
	"tables":   TABLES,
	"table":    TABLE,
	"scripts":  SCRIPTS,
	"features": FEATURES,
	"lookups":  LOOKUPS,
	"glyph":    GLYPH,
	"cmap":     CMAP,
	"layout":   LAYOUT,
}

var opNames = []string{
	"quit",
	"help",
	"tables",
	"table",
	"scripts",
	"features",
	"lookups",
	"glyph",
	"cmap",
	"layout",
}

// parseCommand splits a line into steps of the form op[:arg[:format]], e.g.
// "table:GSUB scripts:latn" or "glyph:A". 'layout' takes the rest of the
// line as text, with feature settings as argument: "layout:-liga,+smcp fine".
func (intp *Intp) parseCommand(line string) (*Command, error) {
	command := &Command{}
	for i := range command.op {
		command.op[i].code = NOOP
	}
	steps := strings.Fields(line)
	if len(steps) > len(command.op) {
		return nil, fmt.Errorf("too many steps in command: %d", len(steps))
	}
	for i, step := range steps {
		c := strings.Split(step, ":") // e.g.  "scripts:latn" or "glyph:0x41" or "help:layout"
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			return nil, fmt.Errorf("unknown command '%s', try 'help'", c[0])
		}
		command.count++
		command.op[i].code = code
		if code == QUIT {
			return command, nil
		}
		command.op[i].arg = getOptArg(c, 1)
		command.op[i].format = getOptArg(c, 2)
		if code == LAYOUT {
			command.op[i].text = strings.Join(steps[i+1:], " ")
			return command, nil
		}
		if command.op[i].arg == "" {
			tracer().Debugf("%s", opNames[code])
		} else {
			tracer().Debugf("%s: looking for '%s'", opNames[code], command.op[i].arg)
		}
	}
	return command, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:     quitOp,
	HELP:     helpOp,
	TABLES:   tablesOp,
	TABLE:    tableOp,
	SCRIPTS:  scriptsOp,
	FEATURES: featuresOp,
	LOOKUPS:  lookupsOp,
	GLYPH:    glyphOp,
	CMAP:     cmapOp,
	LAYOUT:   layoutOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.op[:cmd.count])
	for _, c := range cmd.op {
		if c.code == NOOP {
			break
		}
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string, inx int) (err error) {
	if fontname == "" {
		return errors.New("no font given, use -font <file>")
	}
	intp.font, err = loadFont(fontname, inx)
	if err == nil {
		pterm.Printf("font tables: %v\n", intp.font.OT.TableTags())
	}
	return
}

func loadFont(fontFileName string, inx int) (*fontkit.Font, error) {
	data, err := os.ReadFile(fontFileName)
	if err != nil {
		tracer().Errorf("cannot load font %s: %s", fontFileName, err)
		return nil, err
	}
	coll, err := fontkit.OpenCollection(data)
	if err != nil {
		tracer().Errorf("cannot decode font %s: %s", fontFileName, err)
		return nil, err
	}
	f, err := coll.Font(inx)
	if err != nil {
		return nil, err
	}
	tracer().Infof("loaded %s font = %s", coll.Format, f.PostScriptName())
	return f, nil
}

// ----------------------------------------------------------------------

var errNoTable = errors.New("no table set, use 'table:GSUB' or 'table:GPOS'")

func (intp *Intp) checkTable() error {
	if intp.table == nil {
		return errNoTable
	}
	return nil
}

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

func (op *Op) noArg() bool {
	return op.arg == ""
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}

package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/fontkit"
	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIntp(t *testing.T) *Intp {
	t.Helper()
	f, err := fontkit.Open(fonttest.SampleTrueType().Bytes())
	require.NoError(t, err)
	return &Intp{font: f}
}

func TestParseCommand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	intp := &Intp{}
	cmd, err := intp.parseCommand("table:GSUB scripts:latn lookups")
	require.NoError(t, err)
	require.Equal(t, 3, cmd.count)
	assert.Equal(t, TABLE, cmd.op[0].code)
	assert.Equal(t, "GSUB", cmd.op[0].arg)
	assert.Equal(t, "latn", cmd.op[1].arg)
	assert.Equal(t, LOOKUPS, cmd.op[2].code)
	assert.Equal(t, NOOP, cmd.op[3].code)
	//
	cmd, err = intp.parseCommand("layout:-liga,+smcp fine  print")
	require.NoError(t, err)
	require.Equal(t, 1, cmd.count)
	assert.Equal(t, "-liga,+smcp", cmd.op[0].arg)
	assert.Equal(t, "fine print", cmd.op[0].text)
	//
	cmd, err = intp.parseCommand("glyph:A:svg")
	require.NoError(t, err)
	assert.Equal(t, "svg", cmd.op[0].format)
	//
	_, err = intp.parseCommand("navigate:up")
	assert.Error(t, err)
}

func TestTableCommands(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	intp := sampleIntp(t)
	err, _ := scriptsOp(intp, &Op{code: SCRIPTS})
	assert.ErrorIs(t, err, errNoTable)
	err, _ = tableOp(intp, &Op{code: TABLE, arg: "head"})
	assert.Error(t, err)
	err, _ = tableOp(intp, &Op{code: TABLE, arg: "gsub"})
	require.NoError(t, err)
	require.NotNil(t, intp.table)
	assert.Equal(t, ot.T("GSUB"), intp.table.Tag)
	//
	rows, err := langSysRows(intp.table, ot.T("latn"))
	require.NoError(t, err)
	want := [][]string{
		{"Language", "Required", "Features"},
		{"dflt", "-", "liga"},
	}
	if d := cmp.Diff(want, rows); d != "" {
		t.Errorf("language systems mismatch (-want +got):\n%s", d)
	}
	_, err = langSysRows(intp.table, ot.T("arab"))
	assert.Error(t, err)
	//
	assert.Equal(t, []string{"0", "liga", "0"}, featureRows(intp.table)[1])
	assert.Equal(t, []string{"0", "Ligature", "1", "-"}, lookupListRows(intp.table)[1])
}

func TestTableRecordRows(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	intp := sampleIntp(t)
	rows := tableRecordRows(intp.font.OT)
	require.Len(t, rows, len(intp.font.OT.TableTags())+1)
	for _, row := range rows[1:] {
		if row[0] == "head" {
			assert.Equal(t, "54", row[2])
			return
		}
	}
	t.Error("no row for table head")
}

func TestFormatLookup(t *testing.T) {
	assert.Equal(t, "Pair", formatLookupType(ot.T("GPOS"), ot.GPosPair))
	assert.Equal(t, "Multiple", formatLookupType(ot.T("GSUB"), ot.GSubMultiple))
	assert.Equal(t, "Unknown(12)", formatLookupType(ot.T("GSUB"), 12))
	assert.Equal(t, "-", formatLookupFlags(0))
	assert.Equal(t, "IgnoreMarks|MarkAttachType=2",
		formatLookupFlags(ot.IgnoreMarks|ot.LookupFlag(0x0200)))
	assert.Equal(t, "count=3", formatCoverageSummary(&ot.SingleSubst{Coverage: ot.NewCoverage(1, 2, 3)}))
	assert.Equal(t, "-", formatCoverageSummary(nil))
	assert.Equal(t, "delta=5", formatSupportSummary(&ot.SingleSubst{Delta: 5}))
}

func TestResolveGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	intp := sampleIntp(t)
	for _, arg := range []string{"A", "0x41", "U+0041", "#2"} {
		g, err := resolveGlyph(intp.font, arg)
		require.NoError(t, err, arg)
		assert.Equal(t, ot.GlyphIndex(fonttest.SampleA), g.ID, arg)
		assert.Equal(t, []rune{'A'}, g.CodePoints, arg)
	}
	_, err := resolveGlyph(intp.font, "Z")
	assert.Error(t, err)
	_, err = resolveGlyph(intp.font, "#99")
	assert.Error(t, err)
	//
	g, err := resolveGlyph(intp.font, "U+0301")
	require.NoError(t, err)
	info := map[string]string{}
	for _, row := range glyphRows(intp.font, g)[1:] {
		info[row[0]] = row[1]
	}
	assert.Equal(t, "mark", info["GDEF class"])
	assert.Equal(t, "1", info["Mark attach class"])
	assert.Equal(t, "U+0301", info["Code points"])
	assert.Equal(t, "-180 560 -60 750", info["Control box"])
}

func TestGlyphRunRows(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	intp := sampleIntp(t)
	run, err := intp.font.Layout("fiA")
	require.NoError(t, err)
	rows := glyphRunRows(run)
	require.Len(t, rows, 3)
	assert.Equal(t, "6", rows[1][0], "f i ligates")
	assert.Equal(t, "550,0", rows[1][3])
	assert.Equal(t, "U+0041", rows[2][2])
}

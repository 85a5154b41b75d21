package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/fontkit/ot"
	"github.com/pterm/pterm"
)

func tablesOp(intp *Intp, op *Op) (error, bool) {
	pterm.DefaultTable.WithHasHeader().WithData(tableRecordRows(intp.font.OT)).Render()
	return nil, false
}

// tableRecordRows lists the table directory of a font.
func tableRecordRows(otf *ot.Font) [][]string {
	data := [][]string{
		{"Tag", "Offset", "Length", "Checksum"},
	}
	for _, tag := range otf.TableTags() {
		rec, _ := otf.TableRecord(tag)
		data = append(data, []string{
			tag.String(),
			strconv.FormatUint(uint64(rec.Offset), 10),
			strconv.FormatUint(uint64(rec.Length), 10),
			fmt.Sprintf("0x%08x", rec.Checksum),
		})
	}
	return data
}

func tableOp(intp *Intp, op *Op) (err error, stop bool) {
	tag, ok := op.hasArg()
	if !ok {
		return errors.New("usage: table:GSUB or table:GPOS"), false
	}
	var table *ot.LayoutTable
	switch strings.ToUpper(tag) {
	case "GSUB":
		table, err = intp.font.OT.GSUB()
	case "GPOS":
		table, err = intp.font.OT.GPOS()
	default:
		return fmt.Errorf("table %s is not a layout table", tag), false
	}
	if err != nil {
		return
	}
	if table == nil {
		return fmt.Errorf("font has no %s table", strings.ToUpper(tag)), false
	}
	intp.table = table
	tracer().Infof("setting table: %v", table.Tag)
	return nil, false
}

func scriptsOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	if op.noArg() {
		pterm.Printf("ScriptList keys: %v\n", intp.table.ScriptTags())
		return
	}
	rows, err := langSysRows(intp.table, ot.T(op.arg))
	if err != nil {
		return
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	return
}

// langSysRows lists the language systems of a script together with the
// features they activate. The default language system comes first, tagged
// "dflt".
func langSysRows(table *ot.LayoutTable, script ot.Tag) ([][]string, error) {
	scr := table.Script(script)
	if scr == nil {
		return nil, fmt.Errorf("script [%s] not found in %s", script, table.Tag)
	}
	data := [][]string{
		{"Language", "Required", "Features"},
	}
	row := func(lang string, ls *ot.LangSys) []string {
		req := "-"
		if ls.RequiredFeature >= 0 && ls.RequiredFeature < len(table.Features) {
			req = table.Features[ls.RequiredFeature].Tag.String()
		}
		feats := make([]string, 0, len(ls.FeatureIndices))
		for _, inx := range ls.FeatureIndices {
			if int(inx) < len(table.Features) {
				feats = append(feats, table.Features[inx].Tag.String())
			}
		}
		return []string{lang, req, strings.Join(feats, ",")}
	}
	if scr.Default != nil {
		data = append(data, row("dflt", scr.Default))
	}
	for _, rec := range scr.Languages {
		if rec.LangSys != nil {
			data = append(data, row(rec.Tag.String(), rec.LangSys))
		}
	}
	return data, nil
}

func featuresOp(intp *Intp, op *Op) (err error, stop bool) {
	if intp.table == nil {
		var tags []ot.Tag
		if tags, err = intp.font.AvailableFeatures(); err != nil {
			return
		}
		pterm.Printf("font features: %v\n", tags)
		return
	}
	if op.noArg() {
		pterm.Printf("%s FeatureList has %d entries\n", intp.table.Tag, len(intp.table.Features))
		pterm.DefaultTable.WithHasHeader().WithData(featureRows(intp.table)).Render()
	} else if i, e := strconv.Atoi(op.arg); e == nil {
		if i < 0 || i >= len(intp.table.Features) {
			return fmt.Errorf("feature index out of range: %d", i), false
		}
		rec := intp.table.Features[i]
		pterm.Printf("%s list index %d holds feature record = %v with lookups %v\n",
			intp.table.Tag, i, rec.Tag, rec.Lookups)
	} else {
		err = fmt.Errorf("feature index not numeric: %v", op.arg)
	}
	return
}

func featureRows(table *ot.LayoutTable) [][]string {
	data := [][]string{
		{"Index", "Tag", "Lookups"},
	}
	for i, rec := range table.Features {
		lookups := make([]string, len(rec.Lookups))
		for j, l := range rec.Lookups {
			lookups[j] = strconv.Itoa(int(l))
		}
		data = append(data, []string{
			strconv.Itoa(i),
			rec.Tag.String(),
			strings.Join(lookups, ","),
		})
	}
	return data
}

func lookupsOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	if op.noArg() {
		printLookupList(intp.table)
	} else if i, e := strconv.Atoi(op.arg); e == nil {
		printLookup(intp.table, i)
	} else {
		tracer().Errorf("Lookup index not numeric: %v\n", op.arg)
		err = errors.New("invalid lookup index")
	}
	return
}

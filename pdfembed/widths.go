package pdfembed

import (
	"fmt"
	"math"
	"strings"

	"seehuhn.de/go/dag"
)

// WidthEntry is an entry of the W array of a CIDFont. It either assigns one
// width to all CIDs First…Last (a range), or individual widths to the CIDs
// starting at First (a list, with Last = First+len(Widths)-1).
type WidthEntry struct {
	First, Last uint16
	Widths      []float64
	IsRange     bool
}

func (e WidthEntry) String() string {
	if e.IsRange {
		return fmt.Sprintf("%d %d %g", e.First, e.Last, e.Widths[0])
	}
	ws := make([]string, len(e.Widths))
	for i, w := range e.Widths {
		ws[i] = fmt.Sprintf("%g", w)
	}
	return fmt.Sprintf("%d [%s]", e.First, strings.Join(ws, " "))
}

// FormatW formats W entries in PDF syntax.
func FormatW(entries []WidthEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// encodeWidths finds the default width DW and the shortest W array for
// widths indexed by CID. Widths are rounded to integers.
func encodeWidths(widths []float64) (float64, []WidthEntry) {
	ww := make([]float64, len(widths))
	for i, w := range widths {
		ww[i] = math.Round(w)
	}
	if len(ww) == 0 {
		return 1000, nil
	}
	g := widthGraph{ww: ww, dw: mostFrequent(ww)}
	edges, err := dag.ShortestPath[widthEdge, int](g, len(ww))
	if err != nil {
		// the graph has an edge out of every vertex
		panic(err)
	}
	var entries []WidthEntry
	pos := 0
	for _, e := range edges {
		switch {
		case e > 0:
			entries = append(entries, WidthEntry{
				First:   uint16(pos),
				Last:    uint16(pos + int(e) - 1),
				Widths:  []float64{ww[pos]},
				IsRange: true,
			})
		case e < 0:
			entries = append(entries, WidthEntry{
				First:  uint16(pos),
				Last:   uint16(pos - int(e) - 1),
				Widths: append([]float64(nil), ww[pos:pos-int(e)]...),
			})
		}
		pos = g.To(pos, e)
	}
	return g.dw, entries
}

// maxListLen bounds the length of list entries, and with it the number of
// edges of the graph. Splitting a longer list costs a few bytes only.
const maxListLen = 128

// widthGraph has one vertex per CID; a path from 0 to n is an encoding of
// the widths.
type widthGraph struct {
	ww []float64
	dw float64
}

// widthEdge encodes how the widths starting at a CID are written:
//
//	e=0: the width of the CID is the default width, no entry is needed
//	e>0: the next e CIDs have the same width, written as a range
//	e<0: the next -e CIDs are written as a list
type widthEdge int16

func (g widthGraph) AppendEdges(ee []widthEdge, v int) []widthEdge {
	ww := g.ww
	if ww[v] == g.dw {
		return append(ee, 0)
	}
	i := v + 1
	for i < len(ww) && ww[i] == ww[v] && i-v < math.MaxInt16 {
		i++
	}
	if i > v+1 {
		ee = append(ee, widthEdge(i-v))
	}
	for i = v + 1; i <= len(ww) && i-v <= maxListLen; i++ {
		ee = append(ee, widthEdge(v-i))
	}
	return ee
}

// Length estimates the bytes of output, assuming numbers of 3 digits.
func (g widthGraph) Length(v int, e widthEdge) int {
	switch {
	case e == 0:
		return 0
	case e > 0:
		return 12 // "%d %d %d "
	}
	return 6 + 4*int(-e) // "%d [%d … %d] "
}

func (g widthGraph) To(v int, e widthEdge) int {
	switch {
	case e == 0:
		return v + 1
	case e > 0:
		return v + int(e)
	}
	return v - int(e)
}

func mostFrequent(ww []float64) float64 {
	hist := make(map[float64]int)
	for _, w := range ww {
		hist[w]++
	}
	best, bestCount := 0.0, 0
	for w, count := range hist {
		if count > bestCount || (count == bestCount && w < best) {
			best, bestCount = w, count
		}
	}
	return best
}

package ot

import (
	"testing"

	"github.com/npillmayer/fontkit/internal/fonttest"
)

// testFont builds a small TrueType font with glyphs .notdef, A, B and C,
// plus extra tables.
func testFont(extra map[string][]byte) *fonttest.SFNT {
	f := fonttest.NewSFNT(fonttest.TrueType)
	f.Table("head", fonttest.Head(1000, 0, [4]int16{0, -200, 800, 900}, 0))
	f.Table("maxp", fonttest.MaxP(4, true))
	f.Table("hhea", fonttest.HHea(800, -200, 90, 700, 4))
	f.Table("hmtx", fonttest.HMtx([]uint16{500, 600, 650, 700}, []int16{0, 10, 20, 30}))
	f.Table("cmap", fonttest.CMap(fonttest.CMapRecord{
		Platform: 3, Encoding: 1,
		Subtable: fonttest.CMapFormat4(map[rune]uint16{'A': 1, 'B': 2, 'C': 3}, false),
	}))
	for tag, data := range extra {
		f.Table(tag, data)
	}
	return f
}

func parseTestFont(t *testing.T, extra map[string][]byte) *Font {
	t.Helper()
	otf, err := Parse(testFont(extra).Bytes())
	if err != nil {
		t.Fatalf("cannot parse synthetic font: %v", err)
	}
	return otf
}

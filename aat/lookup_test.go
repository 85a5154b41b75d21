package aat

import (
	"errors"
	"testing"

	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseLookup(t *testing.T, data []byte, numGlyphs int) *LookupTable {
	t.Helper()
	lt, err := ParseLookup(ot.NewCursor(data, tagMorx), numGlyphs)
	require.NoError(t, err)
	return lt
}

func TestLookupFormats(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.aat")
	defer teardown()
	//
	m := map[uint16]uint16{3: 7, 4: 7, 5: 8, 10: 9}
	tables := map[string][]byte{
		"format 0":  fonttest.Lookup0([]uint16{0, 0, 0, 7, 7, 8, 0, 0, 0, 0, 9}),
		"format 2":  fonttest.Lookup2(m),
		"format 4":  fonttest.Lookup4(m),
		"format 6":  fonttest.Lookup6(m),
		"format 8":  fonttest.Lookup8(3, []uint16{7, 7, 8, 0, 0, 0, 0, 9}),
		"format 10": fonttest.Lookup10(3, []uint8{7, 7, 8, 0, 0, 0, 0, 9}),
	}
	for name, data := range tables {
		lt := parseLookup(t, data, 11)
		for g, want := range m {
			v, ok := lt.Lookup(ot.GlyphIndex(g))
			assert.True(t, ok, "%s: glyph %d", name, g)
			assert.Equal(t, want, v, "%s: glyph %d", name, g)
		}
		_, ok := lt.Lookup(11)
		assert.False(t, ok, name)
		assert.Equal(t, []ot.GlyphIndex{3, 4}, lt.GlyphsForValue(7), name)
		assert.Equal(t, []ot.GlyphIndex{10}, lt.GlyphsForValue(9), name)
	}
}

func TestLookupSegmentsSkipGaps(t *testing.T) {
	lt := parseLookup(t, fonttest.Lookup2(map[uint16]uint16{2: 1, 3: 1, 8: 2}), 0)
	_, ok := lt.Lookup(5)
	assert.False(t, ok)
	_, ok = lt.Lookup(1)
	assert.False(t, ok)
	v, ok := lt.Lookup(8)
	assert.True(t, ok)
	assert.Equal(t, uint16(2), v)
}

func TestLookupErrors(t *testing.T) {
	_, err := ParseLookup(ot.NewCursor([]byte{0, 12, 0, 0}, tagMorx), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ot.ErrFormat))
	//
	data := fonttest.Lookup2(map[uint16]uint16{1: 1})
	_, err = ParseLookup(ot.NewCursor(data[:15], tagMorx), 0)
	assert.True(t, errors.Is(err, ot.ErrFormat))
	//
	var nilTable *LookupTable
	_, ok := nilTable.Lookup(1)
	assert.False(t, ok)
}

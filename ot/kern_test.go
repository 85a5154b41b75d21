package ot

import (
	"testing"

	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernFormat0(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	kern := fonttest.Kern(
		fonttest.KernFormat0(0x01,
			fonttest.KernPair{Left: 2, Right: 1, Value: -40},
			fonttest.KernPair{Left: 1, Right: 2, Value: -80},
			fonttest.KernPair{Left: 1, Right: 3, Value: 15},
		),
		fonttest.KernFormat0(0x01|0x02, fonttest.KernPair{Left: 3, Right: 3, Value: -5}),
	)
	otf := parseTestFont(t, map[string][]byte{"kern": kern})
	table, err := otf.Kern()
	require.NoError(t, err)
	require.Len(t, table.Subtables, 2)
	st := table.Subtables[0]
	assert.True(t, st.Horizontal)
	assert.False(t, st.Minimum)
	assert.Equal(t, int16(-80), st.Value(1, 2))
	assert.Equal(t, int16(-40), st.Value(2, 1))
	assert.Equal(t, int16(15), st.Value(1, 3))
	assert.Equal(t, int16(0), st.Value(3, 1))
	assert.True(t, table.Subtables[1].Minimum)
	assert.Equal(t, int16(-5), table.Subtables[1].Value(3, 3))
}

// A format 0 subtable whose 16-bit length field has overflowed extends to
// the end of the table.
func TestKernOverflowingLength(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	sub := fonttest.KernFormat0(0x01, fonttest.KernPair{Left: 1, Right: 2, Value: -10})
	sub[3] = 8 // length now truncates the pair array
	table, err := ParseKern(fonttest.Kern(sub))
	require.NoError(t, err)
	require.Len(t, table.Subtables, 1)
	assert.Equal(t, int16(-10), table.Subtables[0].Value(1, 2))
}

func TestKernFormat2(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	// glyphs 1..3 on the left map to rows 0, 1, 1; glyphs 2..3 on the right to columns 1, 2
	sub := fonttest.KernFormat2(0x01,
		1, []uint16{0, 1, 1},
		2, []uint16{1, 2},
		[][]int16{{0, -3, -4}, {0, -50, -60}},
	)
	table, err := ParseKern(fonttest.Kern(sub))
	require.NoError(t, err)
	require.Len(t, table.Subtables, 1)
	st := table.Subtables[0]
	assert.Equal(t, uint8(2), st.Format)
	assert.Equal(t, int16(-50), st.Value(2, 2))
	assert.Equal(t, int16(-60), st.Value(3, 3))
	assert.Equal(t, int16(-3), st.Value(1, 2))
	assert.Equal(t, int16(0), st.Value(2, 1), "right glyph outside of class table")
	assert.Equal(t, int16(-4), st.Value(9, 3), "left glyph outside of class table uses the first row")
}

func TestAppleKern(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	kern := fonttest.AppleKern(
		fonttest.AppleKernFormat0(0x00, fonttest.KernPair{Left: 1, Right: 2, Value: -30}),
		fonttest.AppleKernFormat0(0x80|0x40, fonttest.KernPair{Left: 1, Right: 2, Value: 12}),
	)
	table, err := ParseKern(kern)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), table.Version)
	require.Len(t, table.Subtables, 2)
	assert.True(t, table.Subtables[0].Horizontal)
	assert.Equal(t, int16(-30), table.Subtables[0].Value(1, 2))
	assert.True(t, table.Subtables[1].Vertical)
	assert.True(t, table.Subtables[1].CrossStream)
	assert.False(t, table.Subtables[1].Horizontal)
}

func TestKernSkipsUnknownFormats(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	unknown := fonttest.NewBuf().U16(0, 10, 1<<8|0x01).U16(0, 0).Data()
	kern := fonttest.Kern(unknown, fonttest.KernFormat0(0x01, fonttest.KernPair{Left: 1, Right: 1, Value: 7}))
	table, err := ParseKern(kern)
	require.NoError(t, err)
	require.Len(t, table.Subtables, 1)
	assert.Equal(t, int16(7), table.Subtables[0].Value(1, 1))
	//
	_, err = ParseKern(fonttest.NewBuf().U16(3, 0).Data())
	assert.ErrorIs(t, err, ErrFormat)
	//
	otf := parseTestFont(t, nil)
	table, err = otf.Kern()
	assert.NoError(t, err)
	assert.Nil(t, table)
}

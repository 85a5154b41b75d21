package cff

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOperands(t *testing.T) {
	for _, tc := range []struct {
		in   []byte
		v    float64
		size int
	}{
		{[]byte{0x8b}, 0, 1},
		{[]byte{0xef}, 100, 1},
		{[]byte{0x27}, -100, 1},
		{[]byte{0xfa, 0x7c}, 1000, 2},
		{[]byte{0xfe, 0x7c}, -1000, 2},
		{[]byte{0x1c, 0x27, 0x10}, 10000, 3},
		{[]byte{0x1c, 0xd8, 0xf0}, -10000, 3},
		{[]byte{0x1d, 0x00, 0x01, 0x86, 0xa0}, 100000, 5},
		{[]byte{0x1d, 0xff, 0xfe, 0x79, 0x60}, -100000, 5},
		{[]byte{0x1e, 0xe2, 0xa2, 0x5f}, -2.25, 4},
		{[]byte{0x1e, 0x0a, 0x14, 0x05, 0x41, 0xc3, 0xff}, 0.140541e-3, 7},
	} {
		v, n, err := decodeOperand(tc.in)
		require.NoError(t, err)
		assert.InDelta(t, tc.v, v, 1e-12, "operand % x", tc.in)
		assert.Equal(t, tc.size, n)
	}
	_, _, err := decodeOperand([]byte{0x1c, 0x27})
	assert.Error(t, err)
}

func TestDictRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.cff")
	defer teardown()
	//
	d := NewDict(PrivateDictSchema)
	d.Set(OpBlueValues, -15, 0, 500, 515)
	d.Set(OpBlueScale, 0.0375)
	d.Set(OpStdHW, 50.5)
	d.Set(OpDefaultWidthX, 500)
	d.Set(OpNominalWidthX, -1000)
	d.Set(OpExpansionFactor, 0.06) // default, not written
	d.Set(OpForceBold, 1)
	enc, fixups := d.Encode()
	assert.Empty(t, fixups)
	dec, err := DecodeDict(enc, PrivateDictSchema)
	require.NoError(t, err)
	v, ok := dec.Get(OpBlueValues)
	assert.True(t, ok)
	assert.Equal(t, []float64{-15, 0, 500, 515}, v)
	assert.InDelta(t, 0.0375, dec.Number(OpBlueScale), 1e-12)
	assert.InDelta(t, 50.5, dec.Number(OpStdHW), 1e-12)
	assert.Equal(t, 500, dec.Int(OpDefaultWidthX))
	assert.Equal(t, -1000, dec.Int(OpNominalWidthX))
	assert.Equal(t, 1, dec.Int(OpForceBold))
	assert.False(t, dec.Has(OpExpansionFactor))
	assert.InDelta(t, 0.06, dec.Number(OpExpansionFactor), 1e-12)
}

func TestDictDefaults(t *testing.T) {
	d := NewDict(TopDictSchema)
	assert.Equal(t, 2, d.Int(OpCharstringType))
	assert.Equal(t, -100, d.Int(OpUnderlinePosition))
	m, ok := d.Get(OpFontMatrix)
	assert.False(t, ok)
	assert.Equal(t, []float64{0.001, 0, 0, 0.001, 0, 0}, m)
	d.Set(OpFontMatrix, 0.001, 0, 0, 0.001, 0, 0)
	enc, _ := d.Encode()
	assert.Empty(t, enc)
}

func TestDictPointerFixups(t *testing.T) {
	d := NewDict(TopDictSchema)
	d.Set(OpCharStrings, 0)
	d.Set(OpPrivate, 0, 0)
	d.Set(OpFullName, 391)
	enc, fixups := d.Encode()
	require.Len(t, fixups, 3)
	size := len(enc)
	for _, fx := range fixups {
		switch {
		case fx.Op == OpCharStrings:
			PatchFixup(enc, fx, 70000)
		case fx.Op == OpPrivate && fx.Operand == 0:
			PatchFixup(enc, fx, 42)
		default:
			PatchFixup(enc, fx, 123456)
		}
	}
	assert.Equal(t, size, len(enc))
	dec, err := DecodeDict(enc, TopDictSchema)
	require.NoError(t, err)
	assert.Equal(t, 70000, dec.Int(OpCharStrings))
	v, _ := dec.Get(OpPrivate)
	assert.Equal(t, []float64{42, 123456}, v)
	assert.Equal(t, 391, dec.Int(OpFullName))
}

func TestDictSkipsUnknownOperators(t *testing.T) {
	// unknown escaped operators are skipped, reserved operator bytes are not
	data := []byte{0xef, 12, 99, 0xef, 20}
	d, err := DecodeDict(data, PrivateDictSchema)
	require.NoError(t, err)
	assert.Equal(t, 100, d.Int(OpDefaultWidthX))
	_, err = DecodeDict([]byte{0xef, 25}, PrivateDictSchema)
	assert.Error(t, err)
}

func TestOperatorNames(t *testing.T) {
	assert.Equal(t, "CharStrings", OpCharStrings.String())
	assert.Equal(t, "ROS", OpROS.String())
}

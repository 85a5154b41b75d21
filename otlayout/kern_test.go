package otlayout

import (
	"testing"

	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernProcessor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.layout")
	defer teardown()
	//
	kern, err := ot.ParseKern(fonttest.Kern(
		fonttest.KernFormat0(0x01, fonttest.KernPair{Left: gF, Right: gI, Value: -40}),
		fonttest.KernFormat0(0x01, fonttest.KernPair{Left: gF, Right: gI, Value: -10},
			fonttest.KernPair{Left: gI, Right: gX, Value: 25}),
		fonttest.KernFormat0(0x05, fonttest.KernPair{Left: gF, Right: gI, Value: 99}), // cross-stream
		fonttest.KernFormat0(0x00, fonttest.KernPair{Left: gF, Right: gI, Value: 99}), // vertical
	))
	require.NoError(t, err)
	kp := NewKernProcessor(kern)
	assert.Equal(t, -50, kp.Kerning(gF, gI))
	assert.Equal(t, 25, kp.Kerning(gI, gX))
	assert.Equal(t, 0, kp.Kerning(gX, gF))
	//
	buf := newRun(nil, nil, gF, gI, gX)
	kp.Process(buf)
	assert.Equal(t, []PosItem{{XAdvance: -50}, {XAdvance: 25}, {}}, buf.Pos)
}

func TestKernOverride(t *testing.T) {
	kern, err := ot.ParseKern(fonttest.Kern(
		fonttest.KernFormat0(0x01, fonttest.KernPair{Left: gF, Right: gI, Value: -40}),
		fonttest.KernFormat0(0x09, fonttest.KernPair{Left: gF, Right: gI, Value: -15}),
	))
	require.NoError(t, err)
	assert.Equal(t, -15, NewKernProcessor(kern).Kerning(gF, gI))
}

func TestAppleKern(t *testing.T) {
	kern, err := ot.ParseKern(fonttest.AppleKern(
		fonttest.AppleKernFormat0(0x00, fonttest.KernPair{Left: gF, Right: gI, Value: -30}),
		fonttest.AppleKernFormat0(0x80, fonttest.KernPair{Left: gF, Right: gI, Value: 99}), // vertical
		fonttest.AppleKernFormat0(0x20, fonttest.KernPair{Left: gF, Right: gI, Value: 99}), // variation
	))
	require.NoError(t, err)
	assert.Equal(t, -30, NewKernProcessor(kern).Kerning(gF, gI))
	var none *KernProcessor
	assert.Equal(t, 0, none.Kerning(gF, gI))
}

func TestKernClasses(t *testing.T) {
	kern, err := ot.ParseKern(fonttest.Kern(
		fonttest.KernFormat2(0x01, gF, []uint16{0, 1}, gI, []uint16{0, 1}, [][]int16{{0, 0}, {0, -70}}),
	))
	require.NoError(t, err)
	kp := NewKernProcessor(kern)
	assert.Equal(t, -70, kp.Kerning(gI, gX))
	assert.Equal(t, 0, kp.Kerning(gF, gX))
}

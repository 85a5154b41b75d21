package ot

import (
	"testing"

	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFVarAndNormalization(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	fvar := fonttest.FVar(
		fonttest.Axis{Tag: "wght", Min: 100, Default: 400, Max: 900},
		fonttest.Axis{Tag: "wdth", Min: 50, Default: 100, Max: 100, Hidden: true},
	)
	otf := parseTestFont(t, map[string][]byte{"fvar": fvar})
	table, err := otf.FVar()
	require.NoError(t, err)
	require.Len(t, table.Axes, 2)
	assert.Equal(t, T("wght"), table.Axes[0].Tag)
	assert.InDelta(t, 900.0, table.Axes[0].Max, 1e-6)
	assert.True(t, table.Axes[1].Hidden)
	assert.Equal(t, uint16(257), table.Axes[1].NameID)
	//
	coords, err := otf.NormalizedCoords(map[Tag]float64{T("wght"): 650, T("wdth"): 75})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, -0.5}, coords, 1e-6)
	coords, _ = otf.NormalizedCoords(map[Tag]float64{T("wght"): 2000, T("wdth"): 200})
	assert.InDeltaSlice(t, []float64{1, 0}, coords, 1e-6, "clamped to the axis range")
	coords, _ = otf.NormalizedCoords(nil)
	assert.InDeltaSlice(t, []float64{0, 0}, coords, 1e-6)
}

func TestAVarMapping(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	fvar := fonttest.FVar(fonttest.Axis{Tag: "wght", Min: 100, Default: 400, Max: 900})
	avar := fonttest.AVar([][2]float64{{-1, -1}, {0, 0}, {0.5, 0.8}, {1, 1}})
	otf := parseTestFont(t, map[string][]byte{"fvar": fvar, "avar": avar})
	coords, err := otf.NormalizedCoords(map[Tag]float64{T("wght"): 650})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, coords[0], 1e-3)
	coords, _ = otf.NormalizedCoords(map[Tag]float64{T("wght"): 775})
	assert.InDelta(t, 0.9, coords[0], 1e-3, "interpolated between 0.5→0.8 and 1→1")
	coords, _ = otf.NormalizedCoords(map[Tag]float64{T("wght"): 250})
	assert.InDelta(t, -0.5, coords[0], 1e-3)
}

func TestNonVariableFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.ot")
	defer teardown()
	//
	otf := parseTestFont(t, nil)
	coords, err := otf.NormalizedCoords(map[Tag]float64{T("wght"): 700})
	assert.NoError(t, err)
	assert.Nil(t, coords)
	//
	_, err = parseTestFont(t, map[string][]byte{"fvar": fonttest.NewBuf().U16(2, 0).Data()}).FVar()
	assert.ErrorIs(t, err, ErrFormat)
}

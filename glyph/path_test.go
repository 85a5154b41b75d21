package glyph

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathStartsWithMoveTo(t *testing.T) {
	p := NewPath().LineTo(10, 10).ClosePath()
	require.Len(t, p.Commands, 3)
	assert.Equal(t, MoveTo, p.Commands[0].Kind)
	assert.Equal(t, []float64{0, 0}, p.Commands[0].Args)
	//
	q := NewPath().ClosePath()
	assert.True(t, q.IsEmpty())
}

func TestPathCBoxAndBBoxOfCubic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit")
	defer teardown()
	//
	p := NewPath().MoveTo(0, 0).BezierCurveTo(0, 100, 100, 100, 100, 0).ClosePath()
	assert.Equal(t, BBox{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}, p.CBox())
	box := p.BBox()
	assert.Equal(t, 0.0, box.MinX)
	assert.Equal(t, 100.0, box.MaxX)
	assert.Equal(t, 0.0, box.MinY)
	assert.InDelta(t, 75.0, box.MaxY, 1e-9)
}

func TestPathBBoxOfQuadratic(t *testing.T) {
	p := NewPath().MoveTo(0, 0).QuadraticCurveTo(50, 100, 100, 0)
	box := p.BBox()
	assert.InDelta(t, 50.0, box.MaxY, 1e-9)
	assert.Equal(t, 100.0, p.CBox().MaxY)
}

// An S-shaped curve has two extrema in x, both inside the segment.
func TestPathBBoxTwoExtrema(t *testing.T) {
	p := NewPath().MoveTo(0, 0).BezierCurveTo(300, 30, -200, 60, 100, 90)
	box := p.BBox()
	cbox := p.CBox()
	assert.Greater(t, box.MaxX, 100.0)
	assert.Less(t, box.MinX, 0.0)
	assert.LessOrEqual(t, box.MaxX, cbox.MaxX)
	assert.GreaterOrEqual(t, box.MinX, cbox.MinX)
	// sample the curve; no point may lie outside the exact box
	for i := 0; i <= 100; i++ {
		s := float64(i) / 100
		x := cubicAt(s, 0, 300, -200, 100)
		assert.True(t, x >= box.MinX-1e-9 && x <= box.MaxX+1e-9, "x(%g) = %g outside %v", s, x, box)
	}
}

func TestPathBoxesInvalidatedOnAppend(t *testing.T) {
	p := NewPath().MoveTo(0, 0).LineTo(10, 10)
	assert.Equal(t, 10.0, p.BBox().MaxX)
	assert.Equal(t, 10.0, p.CBox().MaxX)
	p.LineTo(50, -5)
	assert.Equal(t, 50.0, p.BBox().MaxX)
	assert.Equal(t, -5.0, p.CBox().MinY)
}

func TestEmptyPathBoxes(t *testing.T) {
	p := NewPath()
	assert.True(t, p.BBox().IsEmpty())
	assert.True(t, p.CBox().IsEmpty())
	assert.Equal(t, BBox{}, p.BBox().Normalized())
}

func TestPathSVG(t *testing.T) {
	p := NewPath().MoveTo(0, 0).LineTo(10.256, 20).QuadraticCurveTo(1, 2, 3.5, 4).ClosePath()
	assert.Equal(t, "M0 0L10.26 20Q1 2 3.5 4Z", p.SVG())
	assert.Equal(t, "", NewPath().SVG())
}

func TestPathTransforms(t *testing.T) {
	p := NewPath().MoveTo(1, 2).LineTo(3, 4)
	q := p.Translate(10, 20)
	assert.Equal(t, []float64{11, 22}, q.Commands[0].Args)
	assert.Equal(t, []float64{1, 2}, p.Commands[0].Args, "transforms must not modify the receiver")
	s := p.Scale(2, 3)
	assert.Equal(t, []float64{6, 12}, s.Commands[1].Args)
	r := p.Rotate(math.Pi / 2)
	assert.InDelta(t, -2.0, r.Commands[0].Args[0], 1e-9)
	assert.InDelta(t, 1.0, r.Commands[0].Args[1], 1e-9)
}

func TestBBoxUnion(t *testing.T) {
	a := BBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	b := BBox{MinX: -5, MinY: 5, MaxX: 5, MaxY: 20}
	assert.Equal(t, BBox{MinX: -5, MinY: 0, MaxX: 10, MaxY: 20}, a.Union(b))
	assert.Equal(t, a, EmptyBBox().Union(a))
	assert.Equal(t, a, a.Union(EmptyBBox()))
	assert.Equal(t, BBox{MinX: 1, MinY: 2, MaxX: 11, MaxY: 12}, a.Translate(1, 2))
}

package glyph

import (
	"fmt"
	"math"
)

// BBox is an axis-aligned bounding box in font design units.
// The zero value is not empty; use EmptyBBox for a box to accumulate points into.
type BBox struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// EmptyBBox returns a box which contains no points. Adding a point to it yields a
// box of size zero located at that point.
func EmptyBBox() BBox {
	return BBox{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// IsEmpty returns true if the box contains no points.
func (b BBox) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Width returns the horizontal extent of the box, 0 for an empty box.
func (b BBox) Width() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.MaxX - b.MinX
}

// Height returns the vertical extent of the box, 0 for an empty box.
func (b BBox) Height() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.MaxY - b.MinY
}

// AddPoint extends b to include (x, y).
func (b *BBox) AddPoint(x, y float64) {
	b.extendX(x)
	b.extendY(y)
}

func (b *BBox) extendX(x float64) {
	if !math.IsNaN(x) {
		b.MinX = math.Min(b.MinX, x)
		b.MaxX = math.Max(b.MaxX, x)
	}
}

func (b *BBox) extendY(y float64) {
	if !math.IsNaN(y) {
		b.MinY = math.Min(b.MinY, y)
		b.MaxY = math.Max(b.MaxY, y)
	}
}

// Union returns the smallest box containing b and other. Empty boxes are neutral.
func (b BBox) Union(other BBox) BBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return BBox{
		MinX: math.Min(b.MinX, other.MinX), MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX), MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// Translate returns b moved by (dx, dy).
func (b BBox) Translate(dx, dy float64) BBox {
	if b.IsEmpty() {
		return b
	}
	return BBox{MinX: b.MinX + dx, MinY: b.MinY + dy, MaxX: b.MaxX + dx, MaxY: b.MaxY + dy}
}

// Normalized returns b with an empty box mapped to the zero box, which is what
// clients writing font descriptors expect.
func (b BBox) Normalized() BBox {
	if b.IsEmpty() {
		return BBox{}
	}
	return b
}

func (b BBox) String() string {
	if b.IsEmpty() {
		return "[empty]"
	}
	return fmt.Sprintf("[%g %g %g %g]", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

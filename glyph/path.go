package glyph

import (
	"math"
	"strconv"
	"strings"
)

// CommandKind enumerates the drawing commands of a path.
type CommandKind uint8

// Path commands. The number of arguments is fixed per kind, see Arity.
const (
	MoveTo CommandKind = iota
	LineTo
	QuadTo  // quadratic Bézier curve: one control point and an end point
	CubicTo // cubic Bézier curve: two control points and an end point
	Close
)

var svgLetters = [...]string{"M", "L", "Q", "C", "Z"}

// Arity returns the number of numeric arguments of commands of kind k.
func (k CommandKind) Arity() int {
	switch k {
	case MoveTo, LineTo:
		return 2
	case QuadTo:
		return 4
	case CubicTo:
		return 6
	}
	return 0
}

func (k CommandKind) String() string {
	switch k {
	case MoveTo:
		return "moveTo"
	case LineTo:
		return "lineTo"
	case QuadTo:
		return "quadraticCurveTo"
	case CubicTo:
		return "bezierCurveTo"
	case Close:
		return "closePath"
	}
	return "unknown"
}

// Command is a single drawing command of a path. Args holds Arity() values,
// as x/y pairs.
type Command struct {
	Kind CommandKind
	Args []float64
}

// Path is an ordered sequence of drawing commands, describing the outline of a
// glyph in font design units.
//
// Both bounding boxes of a path are memoized and invalidated whenever a command
// is appended. A path is not safe for concurrent use while it is being built.
type Path struct {
	Commands []Command
	cbox     *BBox
	bbox     *BBox
}

// NewPath creates an empty path.
func NewPath() *Path {
	return &Path{}
}

// Append adds a command of kind k. Missing arguments are taken as 0, surplus
// arguments are dropped.
//
// The first command of a non-empty path is always a MoveTo. If a drawing command
// is appended to an empty path, a MoveTo to (0, 0) is inserted first.
func (p *Path) Append(k CommandKind, args ...float64) *Path {
	p.cbox, p.bbox = nil, nil
	if len(p.Commands) == 0 && k != MoveTo {
		if k == Close {
			return p
		}
		p.Commands = append(p.Commands, Command{Kind: MoveTo, Args: []float64{0, 0}})
	}
	a := make([]float64, k.Arity())
	copy(a, args)
	p.Commands = append(p.Commands, Command{Kind: k, Args: a})
	return p
}

// MoveTo starts a new contour at (x, y).
func (p *Path) MoveTo(x, y float64) *Path {
	return p.Append(MoveTo, x, y)
}

// LineTo draws a straight line to (x, y).
func (p *Path) LineTo(x, y float64) *Path {
	return p.Append(LineTo, x, y)
}

// QuadraticCurveTo draws a quadratic Bézier curve with control point (cpx, cpy)
// to (x, y).
func (p *Path) QuadraticCurveTo(cpx, cpy, x, y float64) *Path {
	return p.Append(QuadTo, cpx, cpy, x, y)
}

// BezierCurveTo draws a cubic Bézier curve with control points (cp1x, cp1y) and
// (cp2x, cp2y) to (x, y).
func (p *Path) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) *Path {
	return p.Append(CubicTo, cp1x, cp1y, cp2x, cp2y, x, y)
}

// ClosePath closes the current contour.
func (p *Path) ClosePath() *Path {
	return p.Append(Close)
}

// IsEmpty returns true if the path has no commands.
func (p *Path) IsEmpty() bool {
	return p == nil || len(p.Commands) == 0
}

// AppendPath appends all commands of other to p.
func (p *Path) AppendPath(other *Path) *Path {
	if other.IsEmpty() {
		return p
	}
	for _, c := range other.Commands {
		p.Append(c.Kind, c.Args...)
	}
	return p
}

// CBox returns the control box of the path: the box containing all points of
// all commands, including off-curve control points. It is cheap to compute but
// may be larger than the exact bounding box.
func (p *Path) CBox() BBox {
	if p.IsEmpty() {
		return EmptyBBox()
	}
	if p.cbox == nil {
		box := EmptyBBox()
		for _, c := range p.Commands {
			for i := 0; i+1 < len(c.Args); i += 2 {
				box.AddPoint(c.Args[i], c.Args[i+1])
			}
		}
		p.cbox = &box
	}
	return *p.cbox
}

// BBox returns the exact bounding box of the path. For curve segments, the
// extrema are found by solving the derivative of the (cubic) curve per axis.
// Quadratic curves are elevated to cubic curves first.
func (p *Path) BBox() BBox {
	if p.IsEmpty() {
		return EmptyBBox()
	}
	if p.bbox == nil {
		box := p.computeBBox()
		p.bbox = &box
	}
	return *p.bbox
}

func (p *Path) computeBBox() BBox {
	box := EmptyBBox()
	var cx, cy float64 // current point
	for _, c := range p.Commands {
		switch c.Kind {
		case MoveTo, LineTo:
			cx, cy = c.Args[0], c.Args[1]
			box.AddPoint(cx, cy)
		case QuadTo, CubicTo:
			var p1, p2, p3 [2]float64
			if c.Kind == QuadTo {
				// CP1 = QP0 + 2/3 (QP1-QP0), CP2 = QP2 + 2/3 (QP1-QP2)
				qx, qy := c.Args[0], c.Args[1]
				p3 = [2]float64{c.Args[2], c.Args[3]}
				p1 = [2]float64{cx + 2.0/3.0*(qx-cx), cy + 2.0/3.0*(qy-cy)}
				p2 = [2]float64{p3[0] + 2.0/3.0*(qx-p3[0]), p3[1] + 2.0/3.0*(qy-p3[1])}
			} else {
				p1 = [2]float64{c.Args[0], c.Args[1]}
				p2 = [2]float64{c.Args[2], c.Args[3]}
				p3 = [2]float64{c.Args[4], c.Args[5]}
			}
			box.AddPoint(p3[0], p3[1])
			p0 := [2]float64{cx, cy}
			for axis := 0; axis < 2; axis++ {
				for _, t := range cubicExtrema(p0[axis], p1[axis], p2[axis], p3[axis]) {
					v := cubicAt(t, p0[axis], p1[axis], p2[axis], p3[axis])
					if axis == 0 {
						box.extendX(v)
					} else {
						box.extendY(v)
					}
				}
			}
			cx, cy = p3[0], p3[1]
		}
	}
	return box
}

// cubicExtrema returns the parameters t in (0, 1) where the derivative of a
// one-dimensional cubic Bézier curve vanishes.
func cubicExtrema(p0, p1, p2, p3 float64) []float64 {
	a := -3*p0 + 9*p1 - 9*p2 + 3*p3
	b := 6*p0 - 12*p1 + 6*p2
	c := 3*p1 - 3*p0
	var roots []float64
	inside := func(t float64) {
		if 0 < t && t < 1 {
			roots = append(roots, t)
		}
	}
	if a == 0 {
		if b != 0 {
			inside(-c / b)
		}
		return roots
	}
	disc := b*b - 4*c*a
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	inside((-b + sq) / (2 * a))
	inside((-b - sq) / (2 * a))
	return roots
}

func cubicAt(t, p0, p1, p2, p3 float64) float64 {
	mt := 1 - t
	return mt*mt*mt*p0 + 3*mt*mt*t*p1 + 3*mt*t*t*p2 + t*t*t*p3
}

// SVG returns the path as SVG path data. Arguments are rounded to two decimals.
func (p *Path) SVG() string {
	if p.IsEmpty() {
		return ""
	}
	var sb strings.Builder
	for _, c := range p.Commands {
		sb.WriteString(svgLetters[c.Kind])
		for i, a := range c.Args {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(math.Round(a*100)/100, 'f', -1, 64))
		}
	}
	return sb.String()
}

// MapPoints returns a new path with every point replaced by f(x, y).
func (p *Path) MapPoints(f func(x, y float64) (float64, float64)) *Path {
	q := NewPath()
	if p.IsEmpty() {
		return q
	}
	q.Commands = make([]Command, len(p.Commands))
	for i, c := range p.Commands {
		args := make([]float64, len(c.Args))
		for j := 0; j+1 < len(args); j += 2 {
			args[j], args[j+1] = f(c.Args[j], c.Args[j+1])
		}
		q.Commands[i] = Command{Kind: c.Kind, Args: args}
	}
	return q
}

// Transform returns a new path with the affine transformation
//
//	x' = m0·x + m2·y + m4
//	y' = m1·x + m3·y + m5
//
// applied to every point.
func (p *Path) Transform(m0, m1, m2, m3, m4, m5 float64) *Path {
	return p.MapPoints(func(x, y float64) (float64, float64) {
		return m0*x + m2*y + m4, m1*x + m3*y + m5
	})
}

// Translate returns a new path moved by (dx, dy).
func (p *Path) Translate(dx, dy float64) *Path {
	return p.Transform(1, 0, 0, 1, dx, dy)
}

// Scale returns a new path scaled by (sx, sy).
func (p *Path) Scale(sx, sy float64) *Path {
	return p.Transform(sx, 0, 0, sy, 0, 0)
}

// Rotate returns a new path rotated counter-clockwise by angle (in radians)
// around the origin.
func (p *Path) Rotate(angle float64) *Path {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return p.Transform(cos, sin, -sin, cos, 0, 0)
}

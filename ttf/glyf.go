package ttf

import (
	"github.com/npillmayer/fontkit/glyph"
	"github.com/npillmayer/fontkit/ot"
)

// MaxComponentDepth limits the nesting of composite glyphs.
const MaxComponentDepth = 16

// Flags of simple glyph points.
const (
	flagOnCurve = 0x01
	flagXShort  = 0x02
	flagYShort  = 0x04
	flagRepeat  = 0x08
	flagXSame   = 0x10 // or positive short x
	flagYSame   = 0x20 // or positive short y
)

// Flags of composite glyph components.
const (
	ArgsAreWords     = 0x0001
	ArgsAreXYValues  = 0x0002
	RoundXYToGrid    = 0x0004
	HaveScale        = 0x0008
	MoreComponents   = 0x0020
	HaveXYScale      = 0x0040
	HaveTwoByTwo     = 0x0080
	HaveInstructions = 0x0100
	UseMyMetrics     = 0x0200
)

// Point is a point of a simple glyph's contour, in font units.
type Point struct {
	X, Y    int16
	OnCurve bool
}

// Component is a part of a composite glyph.
type Component struct {
	Glyph ot.GlyphIndex
	Flags uint16
	// DX, DY is the offset of the component if ArgsAreXYValues is set.
	// Otherwise the component is placed by matching points, which is not
	// supported and results in a zero offset.
	DX, DY int16
	// Matrix is the transformation xx, xy, yx, yy (identity if not given).
	Matrix [4]float64
	// at is the position of the glyph index within the glyph record
	at int
}

// GlyphData is a decoded record of table 'glyf'.
type GlyphData struct {
	NumContours            int16 // negative for composite glyphs
	XMin, YMin, XMax, YMax int16
	EndPoints              []uint16 // last point index of each contour
	Points                 []Point
	Instructions           []byte
	Components             []Component
	Raw                    []byte // the undecoded record
}

// IsComposite returns true for composite glyphs.
func (g *GlyphData) IsComposite() bool {
	return g.NumContours < 0
}

// Contours splits the points of a simple glyph into contours.
func (g *GlyphData) Contours() [][]Point {
	contours := make([][]Point, 0, len(g.EndPoints))
	start := 0
	for _, end := range g.EndPoints {
		if int(end) < start || int(end) >= len(g.Points) {
			break
		}
		contours = append(contours, g.Points[start:int(end)+1])
		start = int(end) + 1
	}
	return contours
}

// DecodeGlyph decodes a record of table 'glyf'. An empty record (a glyph
// without outline, e.g. space) yields a glyph without contours.
func DecodeGlyph(data []byte) (*GlyphData, error) {
	g := &GlyphData{Raw: data}
	if len(data) == 0 {
		return g, nil
	}
	c := ot.NewCursor(data, tagGlyf).Section("glyph header")
	g.NumContours = c.I16()
	g.XMin, g.YMin, g.XMax, g.YMax = c.I16(), c.I16(), c.I16(), c.I16()
	if err := c.Err(); err != nil {
		return nil, err
	}
	if g.NumContours < 0 {
		return g, decodeComposite(c.Section("composite glyph"), g)
	}
	return g, decodeSimple(c.Section("simple glyph"), g)
}

func decodeSimple(c *ot.Cursor, g *GlyphData) error {
	g.EndPoints = c.U16s(int(g.NumContours))
	g.Instructions = c.Bytes(int(c.U16()))
	if err := c.Err(); err != nil {
		return err
	}
	n := 0
	if len(g.EndPoints) > 0 {
		n = int(g.EndPoints[len(g.EndPoints)-1]) + 1
	}
	for i := 1; i < len(g.EndPoints); i++ {
		if g.EndPoints[i] < g.EndPoints[i-1] {
			return errFormat("simple glyph", "contour end points not ascending")
		}
	}
	if n > c.Remaining() {
		return errFormat("simple glyph", "%d points exceed glyph data", n)
	}
	flags := make([]byte, 0, n)
	for len(flags) < n && c.Err() == nil {
		f := c.U8()
		flags = append(flags, f)
		if f&flagRepeat != 0 {
			for r := int(c.U8()); r > 0 && len(flags) < n; r-- {
				flags = append(flags, f)
			}
		}
	}
	g.Points = make([]Point, n)
	var x, y int16
	for i, f := range flags {
		x += coord(c, f, flagXShort, flagXSame)
		g.Points[i].X = x
		g.Points[i].OnCurve = f&flagOnCurve != 0
	}
	for i, f := range flags {
		y += coord(c, f, flagYShort, flagYSame)
		g.Points[i].Y = y
	}
	return c.Err()
}

// coord reads a delta-encoded coordinate.
func coord(c *ot.Cursor, f, short, same byte) int16 {
	switch {
	case f&short != 0:
		d := int16(c.U8())
		if f&same == 0 {
			d = -d
		}
		return d
	case f&same != 0:
		return 0
	}
	return c.I16()
}

func decodeComposite(c *ot.Cursor, g *GlyphData) error {
	var flags uint16 = MoreComponents
	for flags&MoreComponents != 0 && c.Err() == nil {
		flags = c.U16()
		comp := Component{Flags: flags, at: c.Pos(), Matrix: [4]float64{1, 0, 0, 1}}
		comp.Glyph = c.Glyph()
		var a1, a2 int16
		if flags&ArgsAreWords != 0 {
			a1, a2 = c.I16(), c.I16()
		} else if flags&ArgsAreXYValues != 0 {
			a1, a2 = int16(c.I8()), int16(c.I8())
		} else {
			a1, a2 = int16(c.U8()), int16(c.U8())
		}
		if flags&ArgsAreXYValues != 0 {
			comp.DX, comp.DY = a1, a2
		} else {
			tracer().Debugf("glyf: component %d placed by point matching (%d, %d), using offset 0", comp.Glyph, a1, a2)
		}
		switch {
		case flags&HaveScale != 0:
			s := c.F2Dot14()
			comp.Matrix = [4]float64{s, 0, 0, s}
		case flags&HaveXYScale != 0:
			comp.Matrix = [4]float64{c.F2Dot14(), 0, 0, c.F2Dot14()}
		case flags&HaveTwoByTwo != 0:
			comp.Matrix = [4]float64{c.F2Dot14(), c.F2Dot14(), c.F2Dot14(), c.F2Dot14()}
		}
		g.Components = append(g.Components, comp)
	}
	if flags&HaveInstructions != 0 && c.Err() == nil {
		g.Instructions = c.Bytes(int(c.U16()))
	}
	return c.Err()
}

// --- Outlines --------------------------------------------------------------

// Outlines gives access to the TrueType outlines of a font.
type Outlines struct {
	glyf []byte
	loca *ot.LocaTable
}

// NewOutlines prepares access to tables 'glyf' and 'loca' of a font.
func NewOutlines(f *ot.Font) (*Outlines, error) {
	loca, err := f.Loca()
	if err != nil {
		return nil, err
	}
	if loca == nil || !f.HasTable(tagGlyf) {
		return nil, ot.FormatError(tagLoca, "directory", "font has no TrueType outlines")
	}
	return &Outlines{glyf: f.Table(tagGlyf), loca: loca}, nil
}

// Glyph decodes the 'glyf' record of glyph gid.
func (o *Outlines) Glyph(gid ot.GlyphIndex) (*GlyphData, error) {
	if int(gid)+1 >= len(o.loca.Offsets) {
		return nil, errFormat("glyph data", "glyph %d out of range", gid)
	}
	off, length := o.loca.Location(gid)
	if int(off)+int(length) > len(o.glyf) {
		return nil, errFormat("glyph data", "glyph %d exceeds table bounds", gid)
	}
	return DecodeGlyph(o.glyf[off : off+length])
}

// fpoint is a transformed point of a contour.
type fpoint struct {
	x, y    float64
	onCurve bool
}

// Path returns the outline of glyph gid. Components of composite glyphs are
// resolved recursively.
func (o *Outlines) Path(gid ot.GlyphIndex) (*glyph.Path, error) {
	contours, err := o.contours(gid, 0)
	if err != nil {
		return nil, err
	}
	p := glyph.NewPath()
	for _, c := range contours {
		appendContour(p, c)
	}
	return p, nil
}

func (o *Outlines) contours(gid ot.GlyphIndex, depth int) ([][]fpoint, error) {
	if depth > MaxComponentDepth {
		return nil, errFormat("composite glyph", "components nested deeper than %d", MaxComponentDepth)
	}
	g, err := o.Glyph(gid)
	if err != nil {
		return nil, err
	}
	if !g.IsComposite() {
		var contours [][]fpoint
		for _, c := range g.Contours() {
			fc := make([]fpoint, len(c))
			for i, pt := range c {
				fc[i] = fpoint{float64(pt.X), float64(pt.Y), pt.OnCurve}
			}
			contours = append(contours, fc)
		}
		return contours, nil
	}
	var contours [][]fpoint
	for _, comp := range g.Components {
		sub, err := o.contours(comp.Glyph, depth+1)
		if err != nil {
			return nil, err
		}
		m := comp.Matrix
		for _, c := range sub {
			for i, pt := range c {
				c[i].x = m[0]*pt.x + m[2]*pt.y + float64(comp.DX)
				c[i].y = m[1]*pt.x + m[3]*pt.y + float64(comp.DY)
			}
			contours = append(contours, c)
		}
	}
	return contours, nil
}

// appendContour converts a contour of quadratic B-splines to path commands.
func appendContour(p *glyph.Path, c []fpoint) {
	if len(c) == 0 {
		return
	}
	first, last := c[0], c[len(c)-1]
	var start fpoint
	rest := c
	switch {
	case first.onCurve:
		start, rest = first, c[1:]
	case last.onCurve:
		start, rest = last, c[:len(c)-1]
	default:
		start = fpoint{(first.x + last.x) / 2, (first.y + last.y) / 2, true}
	}
	p.MoveTo(start.x, start.y)
	var ctrl *fpoint
	for i := range rest {
		pt := rest[i]
		if pt.onCurve {
			if ctrl != nil {
				p.QuadraticCurveTo(ctrl.x, ctrl.y, pt.x, pt.y)
				ctrl = nil
			} else {
				p.LineTo(pt.x, pt.y)
			}
			continue
		}
		if ctrl != nil { // implied on-curve point
			p.QuadraticCurveTo(ctrl.x, ctrl.y, (ctrl.x+pt.x)/2, (ctrl.y+pt.y)/2)
		}
		ctrl = &rest[i]
	}
	if ctrl != nil {
		p.QuadraticCurveTo(ctrl.x, ctrl.y, start.x, start.y)
	}
	p.ClosePath()
}

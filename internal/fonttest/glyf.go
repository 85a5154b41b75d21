package fonttest

// Point is a point of a TrueType contour.
type Point struct {
	X, Y    int16
	OnCurve bool
}

// On is a shortcut for an on-curve point.
func On(x, y int16) Point { return Point{X: x, Y: y, OnCurve: true} }

// Off is a shortcut for an off-curve (quadratic control) point.
func Off(x, y int16) Point { return Point{X: x, Y: y} }

// SimpleGlyph builds the 'glyf' record of a simple glyph. Coordinates are
// delta-encoded with short vectors where possible.
func SimpleGlyph(contours ...[]Point) []byte {
	if len(contours) == 0 {
		return nil
	}
	var pts []Point
	var ends []uint16
	for _, c := range contours {
		pts = append(pts, c...)
		ends = append(ends, uint16(len(pts)-1))
	}
	xMin, yMin, xMax, yMax := pts[0].X, pts[0].Y, pts[0].X, pts[0].Y
	for _, p := range pts {
		xMin, xMax = min(xMin, p.X), max(xMax, p.X)
		yMin, yMax = min(yMin, p.Y), max(yMax, p.Y)
	}
	w := NewBuf()
	w.I16(int16(len(contours)), xMin, yMin, xMax, yMax)
	w.U16(ends...)
	w.U16(0) // instructionLength
	var flags []byte
	var xs, ys []byte
	var px, py int16
	for _, p := range pts {
		var f byte
		if p.OnCurve {
			f |= 0x01
		}
		f, xs = encodeCoord(f, p.X-px, 0x02, 0x10, xs)
		f, ys = encodeCoord(f, p.Y-py, 0x04, 0x20, ys)
		flags = append(flags, f)
		px, py = p.X, p.Y
	}
	return w.Bytes(flags).Bytes(xs).Bytes(ys).Align(2).Data()
}

func encodeCoord(f byte, d int16, short, same byte, out []byte) (byte, []byte) {
	switch {
	case d == 0:
		return f | same, out
	case d > -256 && d < 256:
		f |= short
		if d > 0 {
			f |= same // positive short vector
		} else {
			d = -d
		}
		return f, append(out, byte(d))
	}
	return f, append(out, byte(uint16(d)>>8), byte(d))
}

// Component is a component of a composite glyph.
type Component struct {
	Glyph  uint16
	DX, DY int16
	Scale  float64 // 0 for no scaling
}

// CompositeGlyph builds the 'glyf' record of a composite glyph with the given
// bounding box.
func CompositeGlyph(bbox [4]int16, components ...Component) []byte {
	w := NewBuf()
	w.I16(-1, bbox[0], bbox[1], bbox[2], bbox[3])
	for i, c := range components {
		flags := uint16(0x0001 | 0x0002) // ARG_1_AND_2_ARE_WORDS, ARGS_ARE_XY_VALUES
		if c.Scale != 0 {
			flags |= 0x0008
		}
		if i < len(components)-1 {
			flags |= 0x0020
		}
		w.U16(flags, c.Glyph)
		w.I16(c.DX, c.DY)
		if c.Scale != 0 {
			w.F2Dot14(c.Scale)
		}
	}
	return w.Align(2).Data()
}

// Glyf builds tables 'glyf' and 'loca' from glyph records. An empty record is
// a glyph without outline.
func Glyf(glyphs [][]byte, longLoca bool) (glyf, loca []byte) {
	g, l := NewBuf(), NewBuf()
	for _, data := range glyphs {
		if longLoca {
			l.U32(uint32(g.Len()))
			g.Bytes(data).Align(4)
		} else {
			l.U16(uint16(g.Len() / 2))
			g.Bytes(data).Align(2)
		}
	}
	if longLoca {
		l.U32(uint32(g.Len()))
	} else {
		l.U16(uint16(g.Len() / 2))
	}
	return g.Data(), l.Data()
}

package ot

import "sort"

// --- Font variations -------------------------------------------------------

// VariationAxis is an axis record of table 'fvar'.
type VariationAxis struct {
	Tag               Tag
	Min, Default, Max float64
	Hidden            bool
	NameID            uint16
}

// FVarTable is the decoded font variations table.
type FVarTable struct {
	Axes []VariationAxis
}

// FVar returns the font's decoded 'fvar' table, or nil for non-variable fonts.
func (otf *Font) FVar() (*FVarTable, error) {
	return otf.fvar.Get(func() (*FVarTable, error) {
		c := otf.cursor(T("fvar"))
		if c == nil {
			return nil, nil
		}
		c.Section("header")
		if major := c.U16(); major != 1 {
			return nil, FormatError(T("fvar"), "header", "unsupported version %d", major)
		}
		c.Skip(2)
		axesOff := int(c.U16())
		c.Skip(2) // reserved
		n, size := int(c.U16()), int(c.U16())
		if size < 20 || n > 64 {
			return nil, FormatError(T("fvar"), "header", "illegal axis records (%d × %d)", n, size)
		}
		t := &FVarTable{Axes: make([]VariationAxis, n)}
		for i := range t.Axes {
			ac := c.Sub(axesOff+i*size, size)
			t.Axes[i] = VariationAxis{
				Tag:     ac.Tag(),
				Min:     ac.Fixed(),
				Default: ac.Fixed(),
				Max:     ac.Fixed(),
			}
			t.Axes[i].Hidden = ac.U16()&0x0001 != 0
			t.Axes[i].NameID = ac.U16()
			if err := ac.Err(); err != nil {
				return nil, err
			}
		}
		return t, c.Err()
	})
}

// AVarTable is the decoded axis variations table: per axis a piecewise linear
// mapping of normalized coordinates.
type AVarTable struct {
	Segments [][]AxisValueMap
}

// AxisValueMap maps a normalized coordinate From to To.
type AxisValueMap struct {
	From, To float64
}

// AVar returns the font's decoded 'avar' table, or nil if it is missing.
func (otf *Font) AVar() (*AVarTable, error) {
	return otf.avar.Get(func() (*AVarTable, error) {
		c := otf.cursor(T("avar"))
		if c == nil {
			return nil, nil
		}
		c.Section("header")
		if major := c.U16(); major != 1 {
			return nil, FormatError(T("avar"), "header", "unsupported version %d", major)
		}
		c.Skip(4)
		n := int(c.U16())
		if n > 64 {
			return nil, FormatError(T("avar"), "header", "too many axes: %d", n)
		}
		t := &AVarTable{Segments: make([][]AxisValueMap, n)}
		for i := range t.Segments {
			m := int(c.U16())
			if !c.checkCount(m, 4) {
				break
			}
			seg := make([]AxisValueMap, 0, m)
			for j := 0; j < m && c.Err() == nil; j++ {
				seg = append(seg, AxisValueMap{From: c.F2Dot14(), To: c.F2Dot14()})
			}
			t.Segments[i] = seg
		}
		return t, c.Err()
	})
}

// NormalizedCoords converts user space axis coordinates to normalized
// coordinates in [-1, 1], in 'fvar' axis order. Axes not present in user keep
// their default (normalized 0). If the font carries table 'avar', its mappings
// are applied. A non-variable font yields nil.
func (otf *Font) NormalizedCoords(user map[Tag]float64) ([]float64, error) {
	fvar, err := otf.FVar()
	if err != nil || fvar == nil {
		return nil, err
	}
	avar, err := otf.AVar()
	if err != nil {
		return nil, err
	}
	coords := make([]float64, len(fvar.Axes))
	for i, axis := range fvar.Axes {
		v, ok := user[axis.Tag]
		if !ok {
			continue
		}
		coords[i] = normalizeAxis(axis, v)
		if avar != nil && i < len(avar.Segments) {
			coords[i] = mapAxisSegments(avar.Segments[i], coords[i])
		}
	}
	return coords, nil
}

func normalizeAxis(axis VariationAxis, v float64) float64 {
	if v < axis.Min {
		v = axis.Min
	} else if v > axis.Max {
		v = axis.Max
	}
	switch {
	case v < axis.Default && axis.Default > axis.Min:
		return -(axis.Default - v) / (axis.Default - axis.Min)
	case v > axis.Default && axis.Max > axis.Default:
		return (v - axis.Default) / (axis.Max - axis.Default)
	}
	return 0
}

func mapAxisSegments(seg []AxisValueMap, v float64) float64 {
	if len(seg) < 2 {
		return v
	}
	i := sort.Search(len(seg), func(i int) bool { return seg[i].From >= v })
	if i == 0 {
		return seg[0].To + v - seg[0].From
	}
	if i == len(seg) {
		last := seg[len(seg)-1]
		return last.To + v - last.From
	}
	if seg[i].From == v {
		return seg[i].To
	}
	lo, hi := seg[i-1], seg[i]
	return lo.To + (hi.To-lo.To)*(v-lo.From)/(hi.From-lo.From)
}

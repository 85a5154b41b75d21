package cff

import (
	"math"

	"github.com/npillmayer/fontkit/glyph"
	"github.com/npillmayer/fontkit/ot"
)

// Limits for the charstring interpreter, guarding against hostile fonts.
const (
	MaxSubrDepth  = 10     // nesting of subroutine calls
	MaxOperations = 200000 // operators and operands per glyph
	maxStack      = 48     // Type 2 argument stack
)

// Outline is the result of interpreting the charstring of a glyph.
type Outline struct {
	Path  *glyph.Path
	Width float64 // advance width, defaultWidthX if the charstring has none
	// Subroutines called while drawing the glyph, by (unbiased) subroutine number.
	GlobalSubrs map[int]bool
	LocalSubrs  map[int]bool
}

// SubrBias returns the bias of subroutine numbers for a subroutine INDEX with
// count entries. Charstrings call subroutine number n as n-bias.
func SubrBias(count int) int {
	switch {
	case count < 1240:
		return 107
	case count < 33900:
		return 1131
	}
	return 32768
}

// Outline interprets the Type 2 charstring of glyph gid.
func (f *Font) Outline(gid ot.GlyphIndex) (*Outline, error) {
	if int(gid) >= len(f.CharStrings) {
		return nil, errFormat("CharStrings", "glyph %d out of range (%d glyphs)", gid, len(f.CharStrings))
	}
	priv, lsubrs, err := f.privateFor(gid)
	if err != nil {
		return nil, err
	}
	if priv == nil {
		priv = NewDict(PrivateDictSchema)
	}
	in := &interpreter{
		gid:          gid,
		gsubrs:       f.GlobalSubrs,
		lsubrs:       lsubrs,
		gbias:        SubrBias(len(f.GlobalSubrs)),
		lbias:        SubrBias(len(lsubrs)),
		stack:        make([]float64, 0, maxStack),
		nominalWidth: priv.Number(OpNominalWidthX),
		out: &Outline{
			Path:        glyph.NewPath(),
			Width:       priv.Number(OpDefaultWidthX),
			GlobalSubrs: make(map[int]bool),
			LocalSubrs:  make(map[int]bool),
		},
	}
	if err := in.run(f.CharStrings[gid]); err != nil {
		return nil, err
	}
	if in.open {
		in.out.Path.ClosePath()
	}
	return in.out, nil
}

// interpreter holds the state of a single charstring run.
type interpreter struct {
	gid            ot.GlyphIndex
	gsubrs, lsubrs [][]byte
	gbias, lbias   int
	stack          []float64
	x, y           float64
	nStems         int
	haveWidth      bool
	open           bool // a contour is open
	done           bool // endchar seen
	depth          int
	ops            int
	nominalWidth   float64
	out            *Outline
}

// Type 2 charstring operators.
const (
	csHStem      = 1
	csVStem      = 3
	csVMoveTo    = 4
	csRLineTo    = 5
	csHLineTo    = 6
	csVLineTo    = 7
	csRRCurveTo  = 8
	csCallSubr   = 10
	csReturn     = 11
	csEscape     = 12
	csEndChar    = 14
	csHStemHM    = 18
	csHintMask   = 19
	csCntrMask   = 20
	csRMoveTo    = 21
	csHMoveTo    = 22
	csVStemHM    = 23
	csRCurveLine = 24
	csRLineCurve = 25
	csVVCurveTo  = 26
	csHHCurveTo  = 27
	csShortInt   = 28
	csCallGSubr  = 29
	csVHCurveTo  = 30
	csHVCurveTo  = 31
	// escaped
	csHFlex  = 0x0c00 | 34
	csFlex   = 0x0c00 | 35
	csHFlex1 = 0x0c00 | 36
	csFlex1  = 0x0c00 | 37
)

func (in *interpreter) run(cs []byte) error {
	for i := 0; i < len(cs) && !in.done; {
		if in.ops++; in.ops > MaxOperations {
			return errFormat("charstring", "glyph %d exceeds %d operations", in.gid, MaxOperations)
		}
		b := cs[i]
		if b >= 32 || b == csShortInt {
			v, n, ok := decodeCharstringOperand(cs[i:])
			if !ok {
				return errFormat("charstring", "glyph %d: truncated operand", in.gid)
			}
			if len(in.stack) >= maxStack {
				return errFormat("charstring", "glyph %d: argument stack overflow", in.gid)
			}
			in.stack = append(in.stack, v)
			i += n
			continue
		}
		op := int(b)
		i++
		if b == csEscape {
			if i >= len(cs) {
				return errFormat("charstring", "glyph %d: truncated escape operator", in.gid)
			}
			op = 0x0c00 | int(cs[i])
			i++
		}
		switch op {
		case csHStem, csVStem, csHStemHM, csVStemHM:
			in.checkWidth(len(in.stack)%2 != 0)
			in.nStems += len(in.stack) / 2
		case csHintMask, csCntrMask:
			in.checkWidth(len(in.stack)%2 != 0)
			in.nStems += len(in.stack) / 2 // implicit vstem
			n := (in.nStems + 7) / 8
			if i+n > len(cs) {
				return errFormat("charstring", "glyph %d: truncated hint mask", in.gid)
			}
			i += n
		case csRMoveTo:
			in.checkWidth(len(in.stack) > 2)
			in.moveTo(in.arg(0), in.arg(1))
		case csHMoveTo:
			in.checkWidth(len(in.stack) > 1)
			in.moveTo(in.arg(0), 0)
		case csVMoveTo:
			in.checkWidth(len(in.stack) > 1)
			in.moveTo(0, in.arg(0))
		case csRLineTo:
			for k := 0; k+1 < len(in.stack); k += 2 {
				in.lineTo(in.stack[k], in.stack[k+1])
			}
		case csHLineTo, csVLineTo:
			horizontal := op == csHLineTo
			for _, d := range in.stack {
				if horizontal {
					in.lineTo(d, 0)
				} else {
					in.lineTo(0, d)
				}
				horizontal = !horizontal
			}
		case csRRCurveTo:
			for k := 0; k+5 < len(in.stack); k += 6 {
				in.curveTo(in.stack[k : k+6]...)
			}
		case csRCurveLine:
			k := 0
			for ; k+7 < len(in.stack); k += 6 {
				in.curveTo(in.stack[k : k+6]...)
			}
			if k+1 < len(in.stack) {
				in.lineTo(in.stack[k], in.stack[k+1])
			}
		case csRLineCurve:
			k := 0
			for ; k+7 < len(in.stack); k += 2 {
				in.lineTo(in.stack[k], in.stack[k+1])
			}
			if k+5 < len(in.stack) {
				in.curveTo(in.stack[k : k+6]...)
			}
		case csVVCurveTo:
			s, d1 := in.stack, 0.0
			if len(s)%2 != 0 {
				d1, s = s[0], s[1:]
			}
			for ; len(s) >= 4; s = s[4:] {
				in.curveTo(d1, s[0], s[1], s[2], 0, s[3])
				d1 = 0
			}
		case csHHCurveTo:
			s, d1 := in.stack, 0.0
			if len(s)%2 != 0 {
				d1, s = s[0], s[1:]
			}
			for ; len(s) >= 4; s = s[4:] {
				in.curveTo(s[0], d1, s[1], s[2], s[3], 0)
				d1 = 0
			}
		case csVHCurveTo, csHVCurveTo:
			horizontal := op == csHVCurveTo
			for s := in.stack; len(s) >= 4; s = s[4:] {
				last := 0.0
				if len(s) == 5 {
					last = s[4]
				}
				if horizontal {
					in.curveTo(s[0], 0, s[1], s[2], last, s[3])
				} else {
					in.curveTo(0, s[0], s[1], s[2], s[3], last)
				}
				horizontal = !horizontal
			}
		case csHFlex:
			if s := in.stack; len(s) == 7 {
				y0 := in.y
				in.curveTo(s[0], 0, s[1], s[2], s[3], 0)
				in.curveTo(s[4], 0, s[5], y0-in.y, s[6], 0)
			}
		case csFlex:
			if s := in.stack; len(s) == 13 {
				in.curveTo(s[0:6]...)
				in.curveTo(s[6:12]...)
			}
		case csHFlex1:
			if s := in.stack; len(s) == 9 {
				y0 := in.y
				in.curveTo(s[0], s[1], s[2], s[3], s[4], 0)
				in.curveTo(s[5], 0, s[6], s[7], s[8], y0-(in.y+s[7]))
			}
		case csFlex1:
			if s := in.stack; len(s) == 11 {
				x0, y0 := in.x, in.y
				var dx, dy float64
				for k := 0; k < 10; k += 2 {
					dx += s[k]
					dy += s[k+1]
				}
				in.curveTo(s[0:6]...)
				x, y := in.x+s[6], in.y+s[7]
				x, y = x+s[8], y+s[9]
				if math.Abs(dx) > math.Abs(dy) {
					in.curveTo(s[6], s[7], s[8], s[9], s[10], y0-y)
				} else {
					in.curveTo(s[6], s[7], s[8], s[9], x0-x, s[10])
				}
			}
		case csCallSubr, csCallGSubr:
			if err := in.callSubr(op == csCallGSubr); err != nil {
				return err
			}
			continue // the stack belongs to the subroutine's caller
		case csReturn:
			return nil
		case csEndChar:
			in.checkWidth(len(in.stack) > 0)
			if len(in.stack) >= 4 {
				tracer().Debugf("CFF glyph %d: seac-style endchar ignored", in.gid)
			}
			in.done = true
		default:
			tracer().Debugf("CFF glyph %d: ignoring operator %d", in.gid, op)
		}
		in.stack = in.stack[:0]
	}
	return nil
}

// checkWidth takes the width from the bottom of the stack on the first
// stack-clearing operator, if present.
func (in *interpreter) checkWidth(present bool) {
	if in.haveWidth {
		return
	}
	in.haveWidth = true
	if present && len(in.stack) > 0 {
		in.out.Width = in.stack[0] + in.nominalWidth
		in.stack = in.stack[1:]
	}
}

func (in *interpreter) arg(i int) float64 {
	if i < len(in.stack) {
		return in.stack[i]
	}
	return 0
}

func (in *interpreter) callSubr(global bool) error {
	if len(in.stack) == 0 {
		return errFormat("charstring", "glyph %d: subroutine call without operand", in.gid)
	}
	n := int(in.stack[len(in.stack)-1])
	in.stack = in.stack[:len(in.stack)-1]
	subrs, bias, used, kind := in.lsubrs, in.lbias, in.out.LocalSubrs, "local"
	if global {
		subrs, bias, used, kind = in.gsubrs, in.gbias, in.out.GlobalSubrs, "global"
	}
	n += bias
	if n < 0 || n >= len(subrs) {
		return errInconsistent("charstring", "glyph %d calls %s subroutine %d of %d", in.gid, kind, n, len(subrs))
	}
	if in.depth >= MaxSubrDepth {
		return errFormat("charstring", "glyph %d: subroutines nested deeper than %d", in.gid, MaxSubrDepth)
	}
	used[n] = true
	in.depth++
	err := in.run(subrs[n])
	in.depth--
	return err
}

func (in *interpreter) moveTo(dx, dy float64) {
	if in.open {
		in.out.Path.ClosePath()
	}
	in.x += dx
	in.y += dy
	in.out.Path.MoveTo(in.x, in.y)
	in.open = true
}

func (in *interpreter) lineTo(dx, dy float64) {
	in.x += dx
	in.y += dy
	in.out.Path.LineTo(in.x, in.y)
	in.open = true
}

// curveTo draws a cubic curve from relative deltas dxa dya dxb dyb dxc dyc.
func (in *interpreter) curveTo(d ...float64) {
	x1, y1 := in.x+d[0], in.y+d[1]
	x2, y2 := x1+d[2], y1+d[3]
	in.x, in.y = x2+d[4], y2+d[5]
	in.out.Path.BezierCurveTo(x1, y1, x2, y2, in.x, in.y)
	in.open = true
}

// decodeCharstringOperand decodes a Type 2 operand. Byte 255 introduces a
// 16.16 fixed point number.
func decodeCharstringOperand(b []byte) (float64, int, bool) {
	b0 := b[0]
	switch {
	case b0 >= 32 && b0 <= 246:
		return float64(int(b0) - 139), 1, true
	case b0 >= 247 && b0 <= 250:
		if len(b) < 2 {
			return 0, 0, false
		}
		return float64((int(b0)-247)*256 + int(b[1]) + 108), 2, true
	case b0 >= 251 && b0 <= 254:
		if len(b) < 2 {
			return 0, 0, false
		}
		return float64(-(int(b0)-251)*256 - int(b[1]) - 108), 2, true
	case b0 == csShortInt:
		if len(b) < 3 {
			return 0, 0, false
		}
		return float64(int16(uint16(b[1])<<8 | uint16(b[2]))), 3, true
	case b0 == 255:
		if len(b) < 5 {
			return 0, 0, false
		}
		v := int32(uint32(b[1])<<24 | uint32(b[2])<<16 | uint32(b[3])<<8 | uint32(b[4]))
		return float64(v) / 65536, 5, true
	}
	return 0, 0, false
}

package fonttest

import "fmt"

// CFFSpec describes a synthetic CFF font.
type CFFSpec struct {
	Name        string
	Version     string // Top DICT Version string, optional
	CharStrings [][]byte
	GlobalSubrs [][]byte
	LocalSubrs  [][]byte // name-keyed fonts
	// CID-keyed fonts: one FD per entry of FDLocalSubrs; FDSelect assigns an FD
	// to every glyph.
	CID          bool
	FDSelect     []uint8
	FDLocalSubrs [][][]byte
}

// CFFIndex encodes a CFF INDEX with the smallest sufficient offset size.
func CFFIndex(items [][]byte) []byte {
	w := NewBuf().U16(uint16(len(items)))
	if len(items) == 0 {
		return w.Data()
	}
	total := 1
	for _, it := range items {
		total += len(it)
	}
	offSize := 1
	for ; offSize < 4 && total >= 1<<(8*offSize); offSize++ {
	}
	w.U8(uint8(offSize))
	off := 1
	writeOff := func(v int) {
		for i := offSize - 1; i >= 0; i-- {
			w.U8(byte(v >> (8 * i)))
		}
	}
	writeOff(off)
	for _, it := range items {
		off += len(it)
		writeOff(off)
	}
	for _, it := range items {
		w.Bytes(it)
	}
	return w.Data()
}

// dict encodes DICT entries. Operands are written as 5-byte integers, so the
// size of a DICT does not depend on its values.
type dict struct{ w *Buf }

func newDict() *dict { return &dict{w: NewBuf()} }

func (d *dict) op(op int, operands ...int) *dict {
	for _, v := range operands {
		d.w.U8(29).I32(int32(v))
	}
	if op >= 1200 {
		d.w.U8(12, byte(op-1200))
	} else {
		d.w.U8(byte(op))
	}
	return d
}

func (d *dict) bytes() []byte { return d.w.Data() }

// CFF builds a bare CFF font program.
func CFF(spec CFFSpec) []byte {
	n := len(spec.CharStrings)
	var strings [][]byte
	sid := func(s string) int {
		strings = append(strings, []byte(s))
		return 390 + len(strings)
	}
	var versionSID, rosRegistry, rosOrdering int
	if spec.Version != "" {
		versionSID = sid(spec.Version)
	}
	if spec.CID {
		rosRegistry, rosOrdering = sid("Adobe"), sid("Identity")
	}
	// charset format 0: glyph i gets SID/CID i
	charset := NewBuf().U8(0)
	for i := 1; i < n; i++ {
		charset.U16(uint16(i))
	}
	// private DICTs, each followed by its local subrs
	privates := [][][]byte{spec.LocalSubrs}
	if spec.CID {
		privates = spec.FDLocalSubrs
	}
	// layout with placeholder offsets, then once more with real offsets
	var out []byte
	offsets := map[string]int{}
	for pass := 0; pass < 2; pass++ {
		top := newDict()
		if spec.CID {
			top.op(1230, rosRegistry, rosOrdering, 0) // ROS
		}
		if versionSID != 0 {
			top.op(0, versionSID)
		}
		top.op(15, offsets["charset"])
		top.op(17, offsets["charstrings"])
		if spec.CID {
			top.op(1234, n) // CIDCount
			top.op(1236, offsets["fdarray"])
			top.op(1237, offsets["fdselect"])
		} else {
			top.op(18, offsets["private0.size"], offsets["private0"])
		}
		w := NewBuf().U8(1, 0, 4, 4)
		w.Bytes(CFFIndex([][]byte{[]byte(spec.Name)}))
		w.Bytes(CFFIndex([][]byte{top.bytes()}))
		w.Bytes(CFFIndex(strings))
		w.Bytes(CFFIndex(spec.GlobalSubrs))
		offsets["charset"] = w.Len()
		w.Bytes(charset.Data())
		offsets["charstrings"] = w.Len()
		w.Bytes(CFFIndex(spec.CharStrings))
		if spec.CID {
			offsets["fdselect"] = w.Len()
			w.Bytes(fdSelect3(spec.FDSelect, n))
			offsets["fdarray"] = w.Len()
			var fds [][]byte
			for i := range privates {
				fd := newDict().op(18, offsets[key("private", i, ".size")], offsets[key("private", i, "")])
				fds = append(fds, fd.bytes())
			}
			w.Bytes(CFFIndex(fds))
		}
		for i, subrs := range privates {
			priv := newDict().op(21, 0) // nominalWidthX
			if len(subrs) > 0 {
				priv.op(19, 12) // Subrs follow the 12-byte Private DICT
			}
			offsets[key("private", i, "")] = w.Len()
			offsets[key("private", i, ".size")] = len(priv.bytes())
			w.Bytes(priv.bytes())
			if len(subrs) > 0 {
				w.Bytes(CFFIndex(subrs))
			}
		}
		out = w.Data()
	}
	return out
}

func key(prefix string, i int, suffix string) string {
	return fmt.Sprintf("%s%d%s", prefix, i, suffix)
}

func fdSelect3(fds []uint8, n int) []byte {
	type rng struct {
		first int
		fd    uint8
	}
	var ranges []rng
	for g := 0; g < n; g++ {
		var fd uint8
		if g < len(fds) {
			fd = fds[g]
		}
		if len(ranges) == 0 || ranges[len(ranges)-1].fd != fd {
			ranges = append(ranges, rng{g, fd})
		}
	}
	w := NewBuf().U8(3).U16(uint16(len(ranges)))
	for _, r := range ranges {
		w.U16(uint16(r.first)).U8(r.fd)
	}
	return w.U16(uint16(n)).Data()
}

// Type 2 charstring helpers.

// CSInt encodes an integer operand of a Type 2 charstring.
func CSInt(v int) []byte {
	switch {
	case v >= -107 && v <= 107:
		return []byte{byte(v + 139)}
	case v >= 108 && v <= 1131:
		v -= 108
		return []byte{byte(v>>8 + 247), byte(v)}
	case v >= -1131 && v <= -108:
		v = -v - 108
		return []byte{byte(v>>8 + 251), byte(v)}
	}
	return []byte{28, byte(v >> 8), byte(v)}
}

// Charstring concatenates operands (ints) and operators (bytes, given as
// Op values) into a Type 2 charstring.
func Charstring(tokens ...any) []byte {
	var b []byte
	for _, t := range tokens {
		switch x := t.(type) {
		case int:
			b = append(b, CSInt(x)...)
		case Op:
			if x >= 1200 {
				b = append(b, 12, byte(x-1200))
			} else {
				b = append(b, byte(x))
			}
		default:
			panic("fonttest: illegal charstring token")
		}
	}
	return b
}

// Op is a Type 2 charstring operator. Escaped operators are 1200+code.
type Op int

// Type 2 charstring operators used by tests.
const (
	RMoveTo    Op = 21
	HMoveTo    Op = 22
	VMoveTo    Op = 4
	RLineTo    Op = 5
	HLineTo    Op = 6
	VLineTo    Op = 7
	RRCurveTo  Op = 8
	CallSubr   Op = 10
	Return     Op = 11
	EndChar    Op = 14
	HStem      Op = 1
	VStem      Op = 3
	HintMask   Op = 19
	CallGSubr  Op = 29
	RCurveLine Op = 24
)

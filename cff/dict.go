package cff

import (
	"fmt"
	"math"
	"strconv"
)

// Operator is a DICT operator. Two-byte operators (escape byte 12) are
// represented as 0x0c00 | second byte.
type Operator uint16

func esc(b byte) Operator { return 0x0c00 | Operator(b) }

func (op Operator) escaped() bool { return op&0xff00 == 0x0c00 }

func (op Operator) appendTo(b []byte) []byte {
	if op.escaped() {
		return append(b, 12, byte(op))
	}
	return append(b, byte(op))
}

func (op Operator) String() string {
	for _, s := range []*Schema{TopDictSchema, PrivateDictSchema} {
		if f, ok := s.byOp[op]; ok {
			return f.Name
		}
	}
	if op.escaped() {
		return fmt.Sprintf("12 %d", byte(op))
	}
	return strconv.Itoa(int(op))
}

// Top DICT operators.
var (
	OpVersion            = Operator(0)
	OpNotice             = Operator(1)
	OpCopyright          = esc(0)
	OpFullName           = Operator(2)
	OpFamilyName         = Operator(3)
	OpWeight             = Operator(4)
	OpIsFixedPitch       = esc(1)
	OpItalicAngle        = esc(2)
	OpUnderlinePosition  = esc(3)
	OpUnderlineThickness = esc(4)
	OpPaintType          = esc(5)
	OpCharstringType     = esc(6)
	OpFontMatrix         = esc(7)
	OpUniqueID           = Operator(13)
	OpFontBBox           = Operator(5)
	OpStrokeWidth        = esc(8)
	OpXUID               = Operator(14)
	OpCharset            = Operator(15)
	OpEncoding           = Operator(16)
	OpCharStrings        = Operator(17)
	OpPrivate            = Operator(18)
	OpSyntheticBase      = esc(20)
	OpPostScript         = esc(21)
	OpBaseFontName       = esc(22)
	OpBaseFontBlend      = esc(23)
	OpROS                = esc(30)
	OpCIDFontVersion     = esc(31)
	OpCIDFontRevision    = esc(32)
	OpCIDFontType        = esc(33)
	OpCIDCount           = esc(34)
	OpUIDBase            = esc(35)
	OpFDArray            = esc(36)
	OpFDSelect           = esc(37)
	OpFontName           = esc(38)
)

// Private DICT operators.
var (
	OpBlueValues        = Operator(6)
	OpOtherBlues        = Operator(7)
	OpFamilyBlues       = Operator(8)
	OpFamilyOtherBlues  = Operator(9)
	OpBlueScale         = esc(9)
	OpBlueShift         = esc(10)
	OpBlueFuzz          = esc(11)
	OpStdHW             = Operator(10)
	OpStdVW             = Operator(11)
	OpStemSnapH         = esc(12)
	OpStemSnapV         = esc(13)
	OpForceBold         = esc(14)
	OpLanguageGroup     = esc(17)
	OpExpansionFactor   = esc(18)
	OpInitialRandomSeed = esc(19)
	OpSubrs             = Operator(19)
	OpDefaultWidthX     = Operator(20)
	OpNominalWidthX     = Operator(21)
)

// OperandKind tells how the operands of an operator are interpreted.
type OperandKind uint8

// Kinds of DICT operands.
const (
	KindNumber  OperandKind = iota // a single number
	KindSID                        // a string id
	KindBoolean                    // 0 or 1
	KindArray                      // a list of numbers
	KindDelta                      // a delta-encoded list of numbers
	KindPointer                    // offset(s) of structures located elsewhere
)

// Field describes a DICT operator: its name, operand kind and default value.
type Field struct {
	Op      Operator
	Name    string
	Kind    OperandKind
	Default []float64
}

// Schema is the list of operators known for a kind of DICT, in the order
// they are written.
type Schema struct {
	Fields []Field
	byOp   map[Operator]*Field
}

func newSchema(fields ...Field) *Schema {
	s := &Schema{Fields: fields, byOp: make(map[Operator]*Field, len(fields))}
	for i := range s.Fields {
		s.byOp[s.Fields[i].Op] = &s.Fields[i]
	}
	return s
}

// TopDictSchema covers the Top DICT of name-keyed and CID-keyed fonts. It is
// used for the font dicts of an FDArray as well. ROS has to come first in a
// CID-keyed font.
var TopDictSchema = newSchema(
	Field{OpROS, "ROS", KindArray, nil},
	Field{OpVersion, "version", KindSID, nil},
	Field{OpNotice, "Notice", KindSID, nil},
	Field{OpCopyright, "Copyright", KindSID, nil},
	Field{OpFullName, "FullName", KindSID, nil},
	Field{OpFamilyName, "FamilyName", KindSID, nil},
	Field{OpWeight, "Weight", KindSID, nil},
	Field{OpIsFixedPitch, "isFixedPitch", KindBoolean, []float64{0}},
	Field{OpItalicAngle, "ItalicAngle", KindNumber, []float64{0}},
	Field{OpUnderlinePosition, "UnderlinePosition", KindNumber, []float64{-100}},
	Field{OpUnderlineThickness, "UnderlineThickness", KindNumber, []float64{50}},
	Field{OpPaintType, "PaintType", KindNumber, []float64{0}},
	Field{OpCharstringType, "CharstringType", KindNumber, []float64{2}},
	Field{OpFontMatrix, "FontMatrix", KindArray, []float64{0.001, 0, 0, 0.001, 0, 0}},
	Field{OpUniqueID, "UniqueID", KindNumber, nil},
	Field{OpFontBBox, "FontBBox", KindArray, []float64{0, 0, 0, 0}},
	Field{OpStrokeWidth, "StrokeWidth", KindNumber, []float64{0}},
	Field{OpXUID, "XUID", KindArray, nil},
	Field{OpCharset, "charset", KindPointer, []float64{0}},
	Field{OpEncoding, "Encoding", KindPointer, []float64{0}},
	Field{OpCharStrings, "CharStrings", KindPointer, nil},
	Field{OpPrivate, "Private", KindPointer, nil},
	Field{OpSyntheticBase, "SyntheticBase", KindNumber, nil},
	Field{OpPostScript, "PostScript", KindSID, nil},
	Field{OpBaseFontName, "BaseFontName", KindSID, nil},
	Field{OpBaseFontBlend, "BaseFontBlend", KindDelta, nil},
	Field{OpCIDFontVersion, "CIDFontVersion", KindNumber, []float64{0}},
	Field{OpCIDFontRevision, "CIDFontRevision", KindNumber, []float64{0}},
	Field{OpCIDFontType, "CIDFontType", KindNumber, []float64{0}},
	Field{OpCIDCount, "CIDCount", KindNumber, []float64{8720}},
	Field{OpUIDBase, "UIDBase", KindNumber, nil},
	Field{OpFDArray, "FDArray", KindPointer, nil},
	Field{OpFDSelect, "FDSelect", KindPointer, nil},
	Field{OpFontName, "FontName", KindSID, nil},
)

// PrivateDictSchema covers Private DICTs. Subrs is an offset relative to the
// start of the Private DICT.
var PrivateDictSchema = newSchema(
	Field{OpBlueValues, "BlueValues", KindDelta, nil},
	Field{OpOtherBlues, "OtherBlues", KindDelta, nil},
	Field{OpFamilyBlues, "FamilyBlues", KindDelta, nil},
	Field{OpFamilyOtherBlues, "FamilyOtherBlues", KindDelta, nil},
	Field{OpBlueScale, "BlueScale", KindNumber, []float64{0.039625}},
	Field{OpBlueShift, "BlueShift", KindNumber, []float64{7}},
	Field{OpBlueFuzz, "BlueFuzz", KindNumber, []float64{1}},
	Field{OpStdHW, "StdHW", KindNumber, nil},
	Field{OpStdVW, "StdVW", KindNumber, nil},
	Field{OpStemSnapH, "StemSnapH", KindDelta, nil},
	Field{OpStemSnapV, "StemSnapV", KindDelta, nil},
	Field{OpForceBold, "ForceBold", KindBoolean, []float64{0}},
	Field{OpLanguageGroup, "LanguageGroup", KindNumber, []float64{0}},
	Field{OpExpansionFactor, "ExpansionFactor", KindNumber, []float64{0.06}},
	Field{OpInitialRandomSeed, "initialRandomSeed", KindNumber, []float64{0}},
	Field{OpSubrs, "Subrs", KindPointer, nil},
	Field{OpDefaultWidthX, "defaultWidthX", KindNumber, []float64{0}},
	Field{OpNominalWidthX, "nominalWidthX", KindNumber, []float64{0}},
)

// Dict is a decoded DICT: a mapping from operators to operand lists.
// Operators which are not set take the default value of their schema.
type Dict struct {
	schema *Schema
	values map[Operator][]float64
}

// NewDict creates an empty DICT for schema.
func NewDict(schema *Schema) *Dict {
	return &Dict{schema: schema, values: make(map[Operator][]float64)}
}

// Get returns the operands for op, falling back to the schema's default.
func (d *Dict) Get(op Operator) ([]float64, bool) {
	if v, ok := d.values[op]; ok {
		return v, true
	}
	if f, ok := d.schema.byOp[op]; ok && f.Default != nil {
		return f.Default, true
	}
	return nil, false
}

// Has returns true if op has been set explicitly.
func (d *Dict) Has(op Operator) bool {
	_, ok := d.values[op]
	return ok
}

// Number returns the first operand of op, or 0.
func (d *Dict) Number(op Operator) float64 {
	if v, ok := d.Get(op); ok && len(v) > 0 {
		return v[0]
	}
	return 0
}

// Int returns the first operand of op as an integer, or 0.
func (d *Dict) Int(op Operator) int {
	return int(d.Number(op))
}

// Set sets the operands of op.
func (d *Dict) Set(op Operator, operands ...float64) {
	d.values[op] = operands
}

// Delete removes op from the dict.
func (d *Dict) Delete(op Operator) {
	delete(d.values, op)
}

// Clone returns a copy of d.
func (d *Dict) Clone() *Dict {
	c := NewDict(d.schema)
	for op, v := range d.values {
		c.values[op] = append([]float64(nil), v...)
	}
	return c
}

// --- Decoding --------------------------------------------------------------

// DecodeDict decodes a DICT. Operands (bytes ≥ 28) are accumulated until an
// operator (bytes < 28, two bytes if escaped) consumes them. Operators unknown
// to schema are skipped.
func DecodeDict(data []byte, schema *Schema) (*Dict, error) {
	d := NewDict(schema)
	var operands []float64
	for i := 0; i < len(data); {
		b := data[i]
		if b >= 28 && b != 31 && b != 255 {
			v, n, err := decodeOperand(data[i:])
			if err != nil {
				return nil, err
			}
			operands = append(operands, v)
			if len(operands) > 48 {
				return nil, errFormat("DICT", "operand stack overflow")
			}
			i += n
			continue
		}
		if b > 21 && b < 28 || b == 31 || b == 255 {
			return nil, errFormat("DICT", "reserved DICT byte %d", b)
		}
		op := Operator(b)
		i++
		if b == 12 {
			if i >= len(data) {
				return nil, errFormat("DICT", "truncated escaped operator")
			}
			op = esc(data[i])
			i++
		}
		f, ok := schema.byOp[op]
		if !ok {
			tracer().Debugf("CFF DICT: skipping unknown operator %v", op)
			operands = operands[:0]
			continue
		}
		if f.Kind == KindBoolean && len(operands) > 0 {
			if operands[0] != 0 {
				operands[0] = 1
			}
		}
		d.values[op] = append([]float64(nil), operands...)
		operands = operands[:0]
	}
	return d, nil
}

// decodeOperand decodes a DICT operand and returns its value and size.
func decodeOperand(b []byte) (float64, int, error) {
	b0 := b[0]
	need := func(n int) error {
		if len(b) < n {
			return errFormat("DICT", "truncated operand")
		}
		return nil
	}
	switch {
	case b0 >= 32 && b0 <= 246:
		return float64(int(b0) - 139), 1, nil
	case b0 >= 247 && b0 <= 250:
		if err := need(2); err != nil {
			return 0, 0, err
		}
		return float64((int(b0)-247)*256 + int(b[1]) + 108), 2, nil
	case b0 >= 251 && b0 <= 254:
		if err := need(2); err != nil {
			return 0, 0, err
		}
		return float64(-(int(b0)-251)*256 - int(b[1]) - 108), 2, nil
	case b0 == 28:
		if err := need(3); err != nil {
			return 0, 0, err
		}
		return float64(int16(uint16(b[1])<<8 | uint16(b[2]))), 3, nil
	case b0 == 29:
		if err := need(5); err != nil {
			return 0, 0, err
		}
		return float64(int32(uint32(b[1])<<24 | uint32(b[2])<<16 | uint32(b[3])<<8 | uint32(b[4]))), 5, nil
	case b0 == 30:
		return decodeReal(b)
	}
	return 0, 0, errFormat("DICT", "illegal operand byte %d", b0)
}

var realNibbles = [...]string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", ".", "E", "E-", "", "-"}

// decodeReal decodes a real number operand: nibbles following byte 30,
// terminated by nibble 0xf.
func decodeReal(b []byte) (float64, int, error) {
	var s []byte
	for i := 1; i < len(b); i++ {
		for _, nib := range [2]byte{b[i] >> 4, b[i] & 0x0f} {
			if nib == 0x0f {
				v, err := strconv.ParseFloat(string(s), 64)
				if err != nil {
					return 0, 0, errFormat("DICT", "illegal real number %q", s)
				}
				return v, i + 1, nil
			}
			if nib == 0x0d {
				return 0, 0, errFormat("DICT", "reserved nibble in real number")
			}
			s = append(s, realNibbles[nib]...)
		}
	}
	return 0, 0, errFormat("DICT", "unterminated real number")
}

// --- Encoding --------------------------------------------------------------

// Fixup is a deferred pointer in an encoded DICT: the operand at byte position
// At has been written as a 5-byte integer placeholder and is patched with
// PatchFixup once the position of the target structure is known.
type Fixup struct {
	Op      Operator
	Operand int // index of the operand for multi-operand pointers (Private)
	At      int
}

// Encode encodes d. Operators whose value equals the schema default are
// omitted. Operands of pointer operators are written with a fixed width, so
// the size of the encoded dict does not depend on their values; their
// positions are returned as fixups.
func (d *Dict) Encode() ([]byte, []Fixup) {
	var out []byte
	var fixups []Fixup
	for _, f := range d.schema.Fields {
		v, ok := d.values[f.Op]
		if !ok || (f.Kind != KindPointer && equalOperands(v, f.Default)) {
			continue
		}
		for i, x := range v {
			if f.Kind == KindPointer {
				fixups = append(fixups, Fixup{Op: f.Op, Operand: i, At: len(out)})
				out = appendInt32(out, int32(x))
			} else {
				out = appendOperand(out, x)
			}
		}
		out = f.Op.appendTo(out)
	}
	return out, fixups
}

// PatchFixup writes value into the placeholder of fixup fx within buf.
func PatchFixup(buf []byte, fx Fixup, value int) {
	b := appendInt32(nil, int32(value))
	copy(buf[fx.At:], b)
}

func equalOperands(a, b []float64) bool {
	if b == nil || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func appendInt32(b []byte, v int32) []byte {
	return append(b, 29, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// appendOperand encodes a number with the shortest integer form, or as a real
// number if it is not integral.
func appendOperand(b []byte, v float64) []byte {
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return appendReal(b, v)
	}
	iv := int(v)
	switch {
	case iv >= -107 && iv <= 107:
		return append(b, byte(iv+139))
	case iv >= 108 && iv <= 1131:
		iv -= 108
		return append(b, byte(iv>>8+247), byte(iv))
	case iv >= -1131 && iv <= -108:
		iv = -iv - 108
		return append(b, byte(iv>>8+251), byte(iv))
	case iv >= -32768 && iv <= 32767:
		return append(b, 28, byte(iv>>8), byte(iv))
	}
	return appendInt32(b, int32(iv))
}

func appendReal(b []byte, v float64) []byte {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	var nibs []byte
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			nibs = append(nibs, c-'0')
		case c == '.':
			nibs = append(nibs, 0x0a)
		case c == '-':
			nibs = append(nibs, 0x0e)
		case c == 'e' || c == 'E':
			if i+1 < len(s) && s[i+1] == '-' {
				nibs = append(nibs, 0x0c)
				i++
			} else {
				nibs = append(nibs, 0x0b)
				if i+1 < len(s) && s[i+1] == '+' {
					i++
				}
			}
		}
	}
	nibs = append(nibs, 0x0f)
	if len(nibs)%2 != 0 {
		nibs = append(nibs, 0x0f)
	}
	b = append(b, 30)
	for i := 0; i < len(nibs); i += 2 {
		b = append(b, nibs[i]<<4|nibs[i+1])
	}
	return b
}

// sidOperators are the Top DICT operators carrying strings.
var sidOperators = []Operator{
	OpVersion, OpNotice, OpCopyright, OpFullName, OpFamilyName, OpWeight,
	OpPostScript, OpBaseFontName, OpFontName,
}

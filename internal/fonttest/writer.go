/*
Package fonttest builds synthetic font binaries for tests.

Builders emit big-endian table data the way font compilers do, so tests can
exercise decoders and layout engines without checking in binary fixtures.
Builders panic on misuse; they are meant for tests only.
*/
package fonttest

import (
	"encoding/binary"
	"fmt"
)

// Buf is a big-endian byte buffer with support for back-patching offsets.
type Buf struct {
	b []byte
}

// NewBuf creates an empty buffer.
func NewBuf() *Buf {
	return &Buf{}
}

// U8 appends bytes.
func (w *Buf) U8(v ...uint8) *Buf {
	w.b = append(w.b, v...)
	return w
}

// I8 appends signed bytes.
func (w *Buf) I8(v ...int8) *Buf {
	for _, x := range v {
		w.b = append(w.b, uint8(x))
	}
	return w
}

// U16 appends 16-bit values.
func (w *Buf) U16(v ...uint16) *Buf {
	for _, x := range v {
		w.b = binary.BigEndian.AppendUint16(w.b, x)
	}
	return w
}

// I16 appends signed 16-bit values.
func (w *Buf) I16(v ...int16) *Buf {
	for _, x := range v {
		w.b = binary.BigEndian.AppendUint16(w.b, uint16(x))
	}
	return w
}

// U24 appends 24-bit values.
func (w *Buf) U24(v ...uint32) *Buf {
	for _, x := range v {
		w.b = append(w.b, byte(x>>16), byte(x>>8), byte(x))
	}
	return w
}

// U32 appends 32-bit values.
func (w *Buf) U32(v ...uint32) *Buf {
	for _, x := range v {
		w.b = binary.BigEndian.AppendUint32(w.b, x)
	}
	return w
}

// I32 appends signed 32-bit values.
func (w *Buf) I32(v ...int32) *Buf {
	for _, x := range v {
		w.b = binary.BigEndian.AppendUint32(w.b, uint32(x))
	}
	return w
}

// Fixed appends a 16.16 fixed point number.
func (w *Buf) Fixed(f float64) *Buf {
	return w.I32(int32(f * 65536))
}

// F2Dot14 appends a 2.14 fixed point number.
func (w *Buf) F2Dot14(f float64) *Buf {
	return w.I16(int16(f * 16384))
}

// Tag appends a 4-byte tag.
func (w *Buf) Tag(t string) *Buf {
	if len(t) != 4 {
		panic(fmt.Sprintf("fonttest: illegal tag %q", t))
	}
	w.b = append(w.b, t...)
	return w
}

// Bytes appends raw bytes.
func (w *Buf) Bytes(b []byte) *Buf {
	w.b = append(w.b, b...)
	return w
}

// Zeros appends n zero bytes.
func (w *Buf) Zeros(n int) *Buf {
	w.b = append(w.b, make([]byte, n)...)
	return w
}

// Align pads the buffer with zeros to a multiple of n.
func (w *Buf) Align(n int) *Buf {
	for len(w.b)%n != 0 {
		w.b = append(w.b, 0)
	}
	return w
}

// Len returns the current length of the buffer.
func (w *Buf) Len() int {
	return len(w.b)
}

// Data returns the buffer's content.
func (w *Buf) Data() []byte {
	return w.b
}

// PatchU16 overwrites the 16-bit value at position at.
func (w *Buf) PatchU16(at int, v uint16) {
	binary.BigEndian.PutUint16(w.b[at:], v)
}

// PatchU32 overwrites the 32-bit value at position at.
func (w *Buf) PatchU32(at int, v uint32) {
	binary.BigEndian.PutUint32(w.b[at:], v)
}

// Offset16 appends a placeholder for a 16-bit offset and returns a function
// which patches it to point to the current end of the buffer, relative to base.
func (w *Buf) Offset16(base int) func() {
	at := w.Len()
	w.U16(0)
	return func() {
		off := w.Len() - base
		if off > 0xffff {
			panic("fonttest: 16-bit offset overflow")
		}
		w.PatchU16(at, uint16(off))
	}
}

// Offset32 is the 32-bit variant of Offset16.
func (w *Buf) Offset32(base int) func() {
	at := w.Len()
	w.U32(0)
	return func() {
		w.PatchU32(at, uint32(w.Len()-base))
	}
}

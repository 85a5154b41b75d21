package otlayout

import "github.com/npillmayer/fontkit/ot"

// KernProcessor adjusts advances with a legacy 'kern' table. It is used for
// fonts which lack a GPOS 'kern' feature.
type KernProcessor struct {
	kern *ot.KernTable
}

// NewKernProcessor creates a processor for a decoded 'kern' table.
func NewKernProcessor(kern *ot.KernTable) *KernProcessor {
	return &KernProcessor{kern: kern}
}

// Process adds the kerning of every pair of adjacent glyphs to the advance of
// the first glyph of the pair.
func (kp *KernProcessor) Process(buf *Buffer) {
	for len(buf.Pos) < len(buf.Glyphs) {
		buf.Pos = append(buf.Pos, PosItem{})
	}
	for i := 0; i < len(buf.Glyphs)-1; i++ {
		buf.Pos[i].XAdvance += int32(kp.Kerning(buf.Glyphs[i].ID, buf.Glyphs[i+1].ID))
	}
}

// Kerning returns the horizontal kerning for a glyph pair. Values of all
// applicable subtables are summed up, unless a subtable overrides the
// accumulated value.
func (kp *KernProcessor) Kerning(left, right ot.GlyphIndex) int {
	if kp == nil || kp.kern == nil {
		return 0
	}
	res := 0
	for _, st := range kp.kern.Subtables {
		if st.CrossStream {
			continue
		}
		if kp.kern.Version == 0 && !st.Horizontal {
			continue
		}
		if kp.kern.Version != 0 && (st.Vertical || st.Variation) {
			continue
		}
		v := int(st.Value(left, right))
		if st.Override {
			res = v
		} else {
			res += v
		}
	}
	return res
}

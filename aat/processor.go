package aat

import (
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/fontkit/glyph"
	"github.com/npillmayer/fontkit/ot"
)

// Rearrangement entry flags.
const (
	flagMarkFirst = 0x8000
	flagMarkLast  = 0x2000
	verbMask      = 0x000f
)

// Contextual substitution and insertion entry flag.
const flagSetMark = 0x8000

// Ligature entry flags and ligature action bits.
const (
	flagSetComponent  = 0x8000
	flagPerformAction = 0x2000
	actionLast        = 0x80000000
	actionStore       = 0x40000000
	actionOffsetMask  = 0x3fffffff
)

// Insertion entry flags.
const (
	flagCurrentIsKashidaLike = 0x2000
	flagMarkedIsKashidaLike  = 0x1000
	flagCurrentInsertBefore  = 0x0800
	flagMarkedInsertBefore   = 0x0400
	currentInsertCountMask   = 0x03e0
	markedInsertCountMask    = 0x001f
)

// NewGlyphFunc creates a glyph for a glyph index, carrying the code points it
// has been produced from.
type NewGlyphFunc func(gid ot.GlyphIndex, codePoints []rune) *glyph.Glyph

// Features selects AAT feature settings: feature type → setting → on/off.
// Settings not contained are left at their defaults.
type Features map[uint16]map[uint16]bool

// Set turns a feature setting on or off.
func (f Features) Set(typ, setting uint16, on bool) Features {
	if f[typ] == nil {
		f[typ] = make(map[uint16]bool)
	}
	f[typ][setting] = on
	return f
}

// Processor applies the substitutions of a morx table to glyph runs.
// A processor does not hold state between calls of Process, except for the
// cache of GenerateInputs, which is filled on first use.
type Processor struct {
	morx     *Morx
	newGlyph NewGlyphFunc
	inputs   ot.Lazy[map[ot.GlyphIndex][][]ot.GlyphIndex]
}

// NewProcessor creates a processor for a morx table. newGlyph is used to
// create substituted and inserted glyphs.
func NewProcessor(morx *Morx, newGlyph NewGlyphFunc) *Processor {
	return &Processor{morx: morx, newGlyph: newGlyph}
}

// context holds the state of one subtable run over a glyph run. It is reset
// for every subtable.
type context struct {
	sub      *Subtable
	glyphs   []*glyph.Glyph
	newGlyph NewGlyphFunc
	ligStack *arraystack.Stack // indices of ligature components
	marked   int               // contextual substitution: marked glyph
	first    int               // rearrangement: first glyph of marked range
	last     int               // rearrangement: last glyph of marked range
	markedAt int               // insertion: marked glyph
}

func newContext(sub *Subtable, glyphs []*glyph.Glyph, newGlyph NewGlyphFunc) *context {
	return &context{
		sub:      sub,
		glyphs:   glyphs,
		newGlyph: newGlyph,
		ligStack: arraystack.New(),
		marked:   -1,
		first:    -1,
		last:     -1,
		markedAt: -1,
	}
}

func (ctx *context) valid(index int) bool {
	return index >= 0 && index < len(ctx.glyphs)
}

// ChainFlags computes the flags of a chain for a selection of features.
func ChainFlags(chain *Chain, features Features) uint32 {
	flags := chain.DefaultFlags
	for _, fe := range chain.Features {
		on, ok := features[fe.Type][fe.Setting]
		if !ok {
			continue
		}
		if on {
			flags &= fe.DisableFlags
			flags |= fe.EnableFlags
		} else {
			flags |= ^fe.DisableFlags
			flags &^= fe.EnableFlags
		}
	}
	return flags
}

// Process applies all chains of the morx table to glyphs, honouring the
// feature selection. It returns the substituted glyph run; glyphs deleted by
// a subtable are removed. The input slice may be modified.
func (p *Processor) Process(glyphs []*glyph.Glyph, features Features) ([]*glyph.Glyph, error) {
	for i := range p.morx.Chains {
		chain := &p.morx.Chains[i]
		flags := ChainFlags(chain, features)
		for _, sub := range chain.Subtables {
			if sub.SubFeatureFlags&flags == 0 {
				continue
			}
			if sub.Coverage&CoverageVertical != 0 && sub.Coverage&CoverageBoth == 0 {
				continue // horizontal text only
			}
			var err error
			if glyphs, err = p.processSubtable(sub, glyphs); err != nil {
				return glyphs, err
			}
		}
	}
	out := glyphs[:0]
	for _, g := range glyphs {
		if g.ID != DeletedGlyph {
			out = append(out, g)
		}
	}
	return out, nil
}

func (p *Processor) processSubtable(sub *Subtable, glyphs []*glyph.Glyph) ([]*glyph.Glyph, error) {
	tracer().Debugf("morx: running %s subtable", sub.Type)
	ctx := newContext(sub, glyphs, p.newGlyph)
	var action actionFunc
	switch sub.Type {
	case NonContextual:
		substituteAll(ctx)
		return ctx.glyphs, nil
	case Rearrangement:
		action = rearrange
	case Contextual:
		action = substituteInContext
	case Ligature:
		action = ligate
	case Insertion:
		action = insert
	default:
		return glyphs, nil
	}
	err := sub.StateTable.process(ctx, sub.Reverse(), action)
	return ctx.glyphs, err
}

// --- Verbs -----------------------------------------------------------------

func rearrange(ctx *context, e Entry, index int) error {
	if ctx.valid(index) {
		if e.Flags&flagMarkFirst != 0 {
			ctx.first = index
		}
		if e.Flags&flagMarkLast != 0 {
			ctx.last = index
		}
	}
	reorderGlyphs(ctx.glyphs, int(e.Flags&verbMask), ctx.first, ctx.last)
	return nil
}

func substituteInContext(ctx *context, e Entry, index int) error {
	if e.Args[0] != 0xffff && ctx.valid(ctx.marked) {
		substituteAt(ctx, ctx.marked, int(e.Args[0]))
	}
	if e.Args[1] != 0xffff && ctx.valid(index) {
		substituteAt(ctx, index, int(e.Args[1]))
	}
	if e.Flags&flagSetMark != 0 && ctx.valid(index) {
		ctx.marked = index
	}
	return nil
}

func substituteAt(ctx *context, index, lookup int) {
	if lookup >= len(ctx.sub.Substitutions) {
		tracer().Errorf("morx: contextual substitution references missing lookup %d", lookup)
		return
	}
	g := ctx.glyphs[index]
	if gid, ok := ctx.sub.Substitutions[lookup].Lookup(g.ID); ok && gid != 0 {
		ctx.glyphs[index] = ctx.newGlyph(ot.GlyphIndex(gid), g.CodePoints)
	}
}

func ligate(ctx *context, e Entry, index int) error {
	if e.Flags&flagSetComponent != 0 && ctx.valid(index) {
		ctx.ligStack.Push(index)
	}
	if e.Flags&flagPerformAction == 0 {
		return nil
	}
	actionIndex := int(e.Args[0])
	ligatureIndex := 0
	var codePoints []rune
	var ligatures []int
	for last := false; !last; {
		top, ok := ctx.ligStack.Pop()
		if !ok {
			break
		}
		component := top.(int)
		if !ctx.valid(component) {
			break
		}
		g := ctx.glyphs[component]
		codePoints = append(append([]rune{}, g.CodePoints...), codePoints...)
		action, ok := ctx.sub.ligatureAction(actionIndex)
		if !ok {
			return errFormat("ligature", "ligature action %d out of range", actionIndex)
		}
		actionIndex++
		last = action&actionLast != 0
		store := action&actionStore != 0
		offset := int(int32(action&actionOffsetMask<<2) >> 2) // sign extend 30 bits
		offset += int(g.ID)
		comp, ok := u16At(ctx.sub.components, offset)
		if !ok {
			return errFormat("ligature", "ligature component %d out of range", offset)
		}
		ligatureIndex += int(comp)
		if last || store {
			lig, ok := u16At(ctx.sub.ligatures, ligatureIndex)
			if !ok {
				return errFormat("ligature", "ligature %d out of range", ligatureIndex)
			}
			ctx.glyphs[component] = ctx.newGlyph(ot.GlyphIndex(lig), codePoints)
			ligatures = append(ligatures, component)
			ligatureIndex = 0
			codePoints = nil
		} else {
			ctx.glyphs[component] = ctx.newGlyph(DeletedGlyph, nil)
		}
	}
	for _, l := range ligatures {
		ctx.ligStack.Push(l)
	}
	return nil
}

// substituteAll applies a non-contextual substitution to every glyph.
// A substitute of 0 leaves the glyph unchanged.
func substituteAll(ctx *context) {
	for i, g := range ctx.glyphs {
		if g.ID == DeletedGlyph {
			continue
		}
		if gid, ok := ctx.sub.Lookup.Lookup(g.ID); ok && gid != 0 {
			ctx.glyphs[i] = ctx.newGlyph(ot.GlyphIndex(gid), g.CodePoints)
		}
	}
}

func insert(ctx *context, e Entry, index int) error {
	if e.Flags&flagSetMark != 0 && ctx.valid(index) {
		ctx.markedAt = index
	}
	if e.Args[1] != 0xffff && ctx.valid(ctx.markedAt) {
		count := int(e.Flags & markedInsertCountMask)
		before := e.Flags&flagMarkedInsertBefore != 0
		if err := insertGlyphs(ctx, ctx.markedAt, int(e.Args[1]), count, before); err != nil {
			return err
		}
	}
	if e.Args[0] != 0xffff && ctx.valid(index) {
		count := int(e.Flags&currentInsertCountMask) >> 5
		before := e.Flags&flagCurrentInsertBefore != 0
		if err := insertGlyphs(ctx, index, int(e.Args[0]), count, before); err != nil {
			return err
		}
	}
	return nil
}

func insertGlyphs(ctx *context, at, actionIndex, count int, before bool) error {
	insertion := make([]*glyph.Glyph, count)
	for i := range insertion {
		gid, ok := u16At(ctx.sub.insertions, actionIndex+i)
		if !ok {
			return errFormat("insertion", "insertion action %d out of range", actionIndex+i)
		}
		insertion[i] = ctx.newGlyph(ot.GlyphIndex(gid), nil)
	}
	if !before {
		at++
	}
	ctx.glyphs = append(ctx.glyphs[:at], append(insertion, ctx.glyphs[at:]...)...)
	return nil
}

// --- Rearrangement ---------------------------------------------------------

// Lengths of the ranges at the start and the end of the marked range which
// each rearrangement verb swaps, and whether either range is reversed.
var verbs = [16]struct {
	a, b               int
	reverseA, reverseB bool
}{
	{0, 0, false, false}, // no change
	{1, 0, false, false}, // Ax ⇒ xA
	{0, 1, false, false}, // xD ⇒ Dx
	{1, 1, false, false}, // AxD ⇒ DxA
	{2, 0, false, false}, // ABx ⇒ xAB
	{2, 0, true, false},  // ABx ⇒ xBA
	{0, 2, false, false}, // xCD ⇒ CDx
	{0, 2, false, true},  // xCD ⇒ DCx
	{1, 2, false, false}, // AxCD ⇒ CDxA
	{1, 2, false, true},  // AxCD ⇒ DCxA
	{2, 1, false, false}, // ABxD ⇒ DxAB
	{2, 1, true, false},  // ABxD ⇒ DxBA
	{2, 2, false, false}, // ABxCD ⇒ CDxAB
	{2, 2, true, false},  // ABxCD ⇒ CDxBA
	{2, 2, false, true},  // ABxCD ⇒ DCxAB
	{2, 2, true, true},   // ABxCD ⇒ DCxBA
}

// reorderGlyphs applies a rearrangement verb to the range [first, last] of
// glyphs. Verbs which do not fit into the range are ignored.
func reorderGlyphs(glyphs []*glyph.Glyph, verb, first, last int) {
	v := verbs[verb&verbMask]
	if v.a == 0 && v.b == 0 {
		return
	}
	if first < 0 || last >= len(glyphs) || last-first+1 < v.a+v.b {
		return
	}
	seg := glyphs[first : last+1]
	a := append([]*glyph.Glyph{}, seg[:v.a]...)
	b := append([]*glyph.Glyph{}, seg[len(seg)-v.b:]...)
	mid := append([]*glyph.Glyph{}, seg[v.a:len(seg)-v.b]...)
	if v.reverseA {
		reverse(a)
	}
	if v.reverseB {
		reverse(b)
	}
	n := copy(seg, b)
	n += copy(seg[n:], mid)
	copy(seg[n:], a)
}

func reverse(glyphs []*glyph.Glyph) {
	for i, j := 0, len(glyphs)-1; i < j; i, j = i+1, j-1 {
		glyphs[i], glyphs[j] = glyphs[j], glyphs[i]
	}
}

// SupportedFeatures returns the settings of all feature entries of the morx
// table.
func (p *Processor) SupportedFeatures() []Setting {
	var features []Setting
	for _, chain := range p.morx.Chains {
		for _, fe := range chain.Features {
			features = append(features, Setting{fe.Type, fe.Setting})
		}
	}
	return features
}

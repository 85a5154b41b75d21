package aat

import (
	"slices"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/fontkit/glyph"
	"github.com/npillmayer/fontkit/ot"
)

// GenerateInputs returns the glyph sequences which the ligature subtables
// enabled by default turn into glyph gid. Results are computed once for all
// glyphs and cached; the returned slices must not be modified.
//
// Input generation explores the state machines of ligature subtables, so
// sequences which depend on other kinds of subtables are not found.
func (p *Processor) GenerateInputs(gid ot.GlyphIndex) ([][]ot.GlyphIndex, error) {
	inputs, err := p.inputs.Get(p.generateInputCache)
	if err != nil {
		return nil, err
	}
	return inputs[gid], nil
}

func (p *Processor) generateInputCache() (map[ot.GlyphIndex][][]ot.GlyphIndex, error) {
	cache := make(map[ot.GlyphIndex][][]ot.GlyphIndex)
	for i := range p.morx.Chains {
		chain := &p.morx.Chains[i]
		for _, sub := range chain.Subtables {
			if sub.SubFeatureFlags&chain.DefaultFlags == 0 || sub.Type != Ligature {
				continue
			}
			if err := p.inputsForSubtable(sub, cache); err != nil {
				return nil, err
			}
		}
	}
	return cache, nil
}

type snapshot struct {
	glyphs   []*glyph.Glyph
	ligStack []interface{}
}

func (p *Processor) inputsForSubtable(sub *Subtable, cache map[ot.GlyphIndex][][]ot.GlyphIndex) error {
	if sub.Reverse() {
		tracer().Infof("morx: input generation skips reverse ligature subtable")
		return nil
	}
	ctx := newContext(sub, nil, p.newGlyph)
	var input []ot.GlyphIndex
	var saved []snapshot
	enter := func(gid ot.GlyphIndex, e Entry) error {
		saved = append(saved, snapshot{
			glyphs:   slices.Clone(ctx.glyphs),
			ligStack: ctx.ligStack.Values(),
		})
		input = append(input, gid)
		ctx.glyphs = append(ctx.glyphs, p.newGlyph(gid, nil))
		if err := ligate(ctx, e, len(ctx.glyphs)-1); err != nil {
			return err
		}
		count, found := 0, DeletedGlyph
		for _, g := range ctx.glyphs {
			if g.ID != DeletedGlyph {
				count++
				found = g.ID
			}
		}
		if count == 1 {
			cache[found] = append(cache[found], slices.Clone(input))
		}
		return nil
	}
	exit := func() {
		s := saved[len(saved)-1]
		saved = saved[:len(saved)-1]
		ctx.glyphs = s.glyphs
		ctx.ligStack = restoreStack(s.ligStack)
		input = input[:len(input)-1]
	}
	return sub.StateTable.traverse(0, make(map[int]bool), enter, exit)
}

// restoreStack rebuilds a stack from its values, top first.
func restoreStack(values []interface{}) *arraystack.Stack {
	s := arraystack.New()
	for i := len(values) - 1; i >= 0; i-- {
		s.Push(values[i])
	}
	return s
}

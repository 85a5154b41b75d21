package aat

import (
	"errors"
	"testing"

	"github.com/npillmayer/fontkit/glyph"
	"github.com/npillmayer/fontkit/internal/fonttest"
	"github.com/npillmayer/fontkit/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Glyphs of the test fonts.
const (
	gF  = 1
	gI  = 2
	gFI = 3
)

func newGlyph(gid ot.GlyphIndex, codePoints []rune) *glyph.Glyph {
	return glyph.New(gid, codePoints, glyph.TrueType, nil)
}

func run(ids ...ot.GlyphIndex) []*glyph.Glyph {
	glyphs := make([]*glyph.Glyph, len(ids))
	for i, id := range ids {
		glyphs[i] = newGlyph(id, []rune{'a' + rune(id) - 1})
	}
	return glyphs
}

func ids(glyphs []*glyph.Glyph) []ot.GlyphIndex {
	r := make([]ot.GlyphIndex, len(glyphs))
	for i, g := range glyphs {
		r[i] = g.ID
	}
	return r
}

func parseMorx(t *testing.T, chains ...fonttest.MorxChain) *Morx {
	t.Helper()
	m, err := ParseMorx(fonttest.Morx(chains...), 20)
	require.NoError(t, err)
	return m
}

func chainOf(sub fonttest.MorxSubtable, features ...fonttest.MorxFeature) fonttest.MorxChain {
	if sub.Flags == 0 {
		sub.Flags = 1
	}
	return fonttest.MorxChain{
		DefaultFlags: 1,
		Features:     features,
		Subtables:    []fonttest.MorxSubtable{sub},
	}
}

// fiLigature is a ligature subtable turning f+i into fi. Components are
// indexed by glyph id: i contributes 1 to the ligature index, f contributes 0.
func fiLigature() fonttest.MorxSubtable {
	st := fonttest.StateTable{
		NClasses: 6,
		Classes:  map[uint16]uint16{gF: 4, gI: 5},
		States: [][]uint16{
			{0, 0, 0, 0, 1, 0}, // start of text
			{0, 0, 0, 0, 1, 0}, // start of line
			{0, 0, 3, 0, 1, 2}, // seen f
		},
		Entries: []fonttest.MorxEntry{
			{NewState: 0},
			{NewState: 2, Flags: flagSetComponent},
			{NewState: 0, Flags: flagSetComponent | flagPerformAction, Args: []uint16{0}},
			{NewState: 2}, // deleted glyphs keep the state
		},
	}
	actions := []uint32{
		fonttest.LigatureAction(false, false, 0),
		fonttest.LigatureAction(true, false, 0),
	}
	return fonttest.MorxSubtable{
		Type: uint8(Ligature),
		Body: fonttest.LigatureBody(st, actions, []uint16{0, 0, 1}, []uint16{0, gFI}),
	}
}

func TestParseMorx(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.aat")
	defer teardown()
	//
	m := parseMorx(t, chainOf(fiLigature(), fonttest.MorxFeature{Type: 1, Setting: 2, Enable: 1, Disable: 0xffffffff}))
	require.Len(t, m.Chains, 1)
	assert.Equal(t, uint16(2), m.Version)
	chain := m.Chains[0]
	assert.Equal(t, uint32(1), chain.DefaultFlags)
	assert.Equal(t, []FeatureEntry{{Type: 1, Setting: 2, EnableFlags: 1, DisableFlags: 0xffffffff}}, chain.Features)
	require.Len(t, chain.Subtables, 1)
	sub := chain.Subtables[0]
	assert.Equal(t, Ligature, sub.Type)
	assert.Equal(t, 6, sub.StateTable.NClasses)
	assert.False(t, sub.Reverse())
	e, err := sub.StateTable.transition(2, 5)
	require.NoError(t, err)
	assert.Equal(t, Entry{NewState: 0, Flags: flagSetComponent | flagPerformAction}, e)
}

func TestParseMorxErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.aat")
	defer teardown()
	//
	data := fonttest.Morx(chainOf(fiLigature()))
	data[1] = 1 // version 1 'mort' layout
	_, err := ParseMorx(data, 0)
	assert.True(t, errors.Is(err, ot.ErrFormat))
	//
	data = fonttest.Morx(chainOf(fiLigature()))
	_, err = ParseMorx(data[:40], 0)
	assert.True(t, errors.Is(err, ot.ErrFormat))
}

func TestLigatureSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.aat")
	defer teardown()
	//
	p := NewProcessor(parseMorx(t, chainOf(fiLigature())), newGlyph)
	out, err := p.Process(run(gF, gI, gF, gI), nil)
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{gFI, gFI}, ids(out))
	for _, g := range out {
		assert.Equal(t, []rune("ab"), g.CodePoints)
	}
	//
	out, err = p.Process(run(gI, gF, gF, gI, gF), nil)
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{gI, gF, gFI, gF}, ids(out))
}

func TestLigatureSubstitutionIsIdempotent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.aat")
	defer teardown()
	//
	p := NewProcessor(parseMorx(t, chainOf(fiLigature())), newGlyph)
	once, err := p.Process(run(gF, gI, gF, gI), nil)
	require.NoError(t, err)
	require.Equal(t, []ot.GlyphIndex{gFI, gFI}, ids(once))
	first := append([]*glyph.Glyph(nil), once...)
	twice, err := p.Process(once, nil)
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{gFI, gFI}, ids(twice))
	for i, g := range twice {
		assert.NotEqual(t, DeletedGlyph, g.ID, "no deleted glyph left at %d", i)
		assert.Same(t, first[i], g, "glyph %d was substituted again", i)
	}
}

func TestGenerateInputs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.aat")
	defer teardown()
	//
	p := NewProcessor(parseMorx(t, chainOf(fiLigature())), newGlyph)
	inputs, err := p.GenerateInputs(gFI)
	require.NoError(t, err)
	assert.Equal(t, [][]ot.GlyphIndex{{gF, gI}}, inputs)
	// processing runs in between must not disturb the cache
	_, err = p.Process(run(gF, gI), nil)
	require.NoError(t, err)
	again, err := p.GenerateInputs(gFI)
	require.NoError(t, err)
	assert.Equal(t, inputs, again)
	//
	inputs, err = p.GenerateInputs(gF)
	require.NoError(t, err)
	assert.Equal(t, [][]ot.GlyphIndex{{gF}}, inputs)
	inputs, err = p.GenerateInputs(7)
	require.NoError(t, err)
	assert.Empty(t, inputs)
}

func TestChainFlags(t *testing.T) {
	chain := &Chain{
		DefaultFlags: 0b0011,
		Features: []FeatureEntry{
			{Type: 1, Setting: 2, EnableFlags: 0b0100, DisableFlags: 0xffffffff},
			{Type: 1, Setting: 3, EnableFlags: 0, DisableFlags: ^uint32(0b0100)},
			{Type: 6, Setting: 0, EnableFlags: 0b1000, DisableFlags: ^uint32(0b0101)},
		},
	}
	assert.Equal(t, uint32(0b0011), ChainFlags(chain, nil))
	assert.Equal(t, uint32(0b0111), ChainFlags(chain, Features{1: {2: true}}))
	assert.Equal(t, uint32(0b1010), ChainFlags(chain, Features{6: {0: true}}))
	// disabling sets all bits outside the disable mask and clears the enable bits
	assert.Equal(t, uint32(0b0011), ChainFlags(chain, Features{1: {2: false}})&0b1111)
	assert.Equal(t, uint32(0b0111), ChainFlags(chain, Features{6: {0: false}})&0b1111)
}

func TestNonContextualAndFeatures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.aat")
	defer teardown()
	//
	smcp := fonttest.MorxSubtable{
		Type:  uint8(NonContextual),
		Flags: 2,
		Body:  fonttest.Lookup2(map[uint16]uint16{gF: 11, gI: 12, 5: 0}),
	}
	chain := fonttest.MorxChain{
		DefaultFlags: 1,
		Features: []fonttest.MorxFeature{
			{Type: 37, Setting: 1, Enable: 2, Disable: 0xffffffff},
		},
		Subtables: []fonttest.MorxSubtable{smcp},
	}
	p := NewProcessor(parseMorx(t, chain), newGlyph)
	out, err := p.Process(run(gF, gI, 5), nil)
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{gF, gI, 5}, ids(out), "feature off by default")
	//
	out, err = p.Process(run(gF, gI, 5), Features{37: {1: true}})
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{11, 12, 5}, ids(out))
	assert.Equal(t, []rune("a"), out[0].CodePoints)
	assert.Equal(t, []Setting{{37, 1}}, p.SupportedFeatures())
}

func TestContextualSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.aat")
	defer teardown()
	//
	// a b ⇒ a' b': mark a, then substitute marked and current glyph at b
	st := fonttest.StateTable{
		NClasses: 6,
		Classes:  map[uint16]uint16{1: 4, 2: 5},
		States: [][]uint16{
			{0, 0, 0, 0, 1, 0},
			{0, 0, 0, 0, 1, 0},
			{0, 0, 0, 0, 1, 2},
		},
		Entries: []fonttest.MorxEntry{
			{NewState: 0, Args: []uint16{0xffff, 0xffff}},
			{NewState: 2, Flags: flagSetMark, Args: []uint16{0xffff, 0xffff}},
			{NewState: 0, Args: []uint16{0, 1}},
		},
	}
	sub := fonttest.MorxSubtable{
		Type: uint8(Contextual),
		Body: fonttest.ContextualBody(st,
			fonttest.Lookup8(1, []uint16{10}),
			fonttest.Lookup6(map[uint16]uint16{2: 11})),
	}
	m := parseMorx(t, chainOf(sub))
	require.Len(t, m.Chains[0].Subtables[0].Substitutions, 2)
	p := NewProcessor(m, newGlyph)
	out, err := p.Process(run(1, 2, 2, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{10, 11, 2, 1}, ids(out))
	assert.Equal(t, []rune("b"), out[1].CodePoints)
}

func TestInsertion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.aat")
	defer teardown()
	//
	st := fonttest.StateTable{
		NClasses: 5,
		Classes:  map[uint16]uint16{1: 4},
		States: [][]uint16{
			{0, 0, 0, 0, 1},
			{0, 0, 0, 0, 1},
			{0, 0, 0, 0, 0},
		},
		Entries: []fonttest.MorxEntry{
			{NewState: 0, Args: []uint16{0xffff, 0xffff}},
			// insert 2 glyphs after the current glyph
			{NewState: 2, Flags: 2 << 5, Args: []uint16{0, 0xffff}},
		},
	}
	sub := fonttest.MorxSubtable{Type: uint8(Insertion), Body: fonttest.InsertionBody(st, 7, 8, 9)}
	p := NewProcessor(parseMorx(t, chainOf(sub)), newGlyph)
	out, err := p.Process(run(1, 2), nil)
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{1, 7, 8, 2}, ids(out))
	//
	// mark the current glyph and insert 1 glyph before the mark
	st.Entries[1] = fonttest.MorxEntry{
		NewState: 2,
		Flags:    flagSetMark | flagMarkedInsertBefore | 1,
		Args:     []uint16{0xffff, 2},
	}
	sub.Body = fonttest.InsertionBody(st, 7, 8, 9)
	p = NewProcessor(parseMorx(t, chainOf(sub)), newGlyph)
	out, err = p.Process(run(2, 1, 2), nil)
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{2, 9, 1, 2}, ids(out))
}

func TestInsertionAtEndOfText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.aat")
	defer teardown()
	//
	// mark glyph 1, then insert glyph 7 after the mark at end of text,
	// staying in the marking state
	st := fonttest.StateTable{
		NClasses: 5,
		Classes:  map[uint16]uint16{1: 4},
		States: [][]uint16{
			{0, 0, 0, 0, 1},
			{0, 0, 0, 0, 1},
			{2, 0, 0, 0, 1},
		},
		Entries: []fonttest.MorxEntry{
			{NewState: 0, Args: []uint16{0xffff, 0xffff}},
			{NewState: 2, Flags: flagSetMark, Args: []uint16{0xffff, 0xffff}},
			{NewState: 2, Flags: 1, Args: []uint16{0xffff, 0}},
		},
	}
	sub := fonttest.MorxSubtable{Type: uint8(Insertion), Body: fonttest.InsertionBody(st, 7)}
	m := parseMorx(t, chainOf(sub))
	p := NewProcessor(m, newGlyph)
	out, err := p.Process(run(2, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{2, 1, 7}, ids(out))
	//
	eotSteps := 0
	counting := func(ctx *context, e Entry, index int) error {
		if index == len(ctx.glyphs) {
			eotSteps++
		}
		return insert(ctx, e, index)
	}
	subtable := m.Chains[0].Subtables[0]
	ctx := newContext(subtable, run(2, 1), newGlyph)
	require.NoError(t, subtable.StateTable.process(ctx, false, counting))
	assert.Equal(t, 1, eotSteps)
	assert.Equal(t, []ot.GlyphIndex{2, 1, 7}, ids(ctx.glyphs))
}

func TestRearrangementVerbs(t *testing.T) {
	want := [16][]ot.GlyphIndex{
		{1, 2, 3, 4, 5},
		{2, 3, 4, 5, 1},
		{5, 1, 2, 3, 4},
		{5, 2, 3, 4, 1},
		{3, 4, 5, 1, 2},
		{3, 4, 5, 2, 1},
		{4, 5, 1, 2, 3},
		{5, 4, 1, 2, 3},
		{4, 5, 2, 3, 1},
		{5, 4, 2, 3, 1},
		{5, 3, 4, 1, 2},
		{5, 3, 4, 2, 1},
		{4, 5, 3, 1, 2},
		{4, 5, 3, 2, 1},
		{5, 4, 3, 1, 2},
		{5, 4, 3, 2, 1},
	}
	for verb, w := range want {
		glyphs := run(1, 2, 3, 4, 5)
		reorderGlyphs(glyphs, verb, 0, 4)
		assert.Equal(t, w, ids(glyphs), "verb %d", verb)
	}
	// ranges too short for a verb leave the run untouched
	glyphs := run(1, 2, 3)
	reorderGlyphs(glyphs, 12, 0, 2)
	assert.Equal(t, []ot.GlyphIndex{1, 2, 3}, ids(glyphs))
	reorderGlyphs(glyphs, 3, -1, 2)
	assert.Equal(t, []ot.GlyphIndex{1, 2, 3}, ids(glyphs))
}

func TestRearrangementSubtable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.aat")
	defer teardown()
	//
	st := fonttest.StateTable{
		NClasses: 6,
		Classes:  map[uint16]uint16{1: 4, 2: 5},
		States: [][]uint16{
			{0, 0, 0, 0, 1, 0},
			{0, 0, 0, 0, 1, 0},
		},
		Entries: []fonttest.MorxEntry{
			{NewState: 0},
			{NewState: 0, Flags: flagMarkFirst},
			{NewState: 0, Flags: flagMarkLast | 1}, // Ax ⇒ xA
		},
	}
	st.States[0][5], st.States[1][5] = 2, 2
	sub := fonttest.MorxSubtable{Type: uint8(Rearrangement), Body: fonttest.RearrangementBody(st)}
	p := NewProcessor(parseMorx(t, chainOf(sub)), newGlyph)
	out, err := p.Process(run(1, 3, 2, 4), nil)
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{3, 2, 1, 4}, ids(out))
}

func TestStateMachineStepLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.aat")
	defer teardown()
	//
	st := fonttest.StateTable{
		NClasses: 5,
		Classes:  map[uint16]uint16{1: 4},
		States: [][]uint16{
			{0, 0, 0, 0, 1},
			{0, 0, 0, 0, 1},
		},
		Entries: []fonttest.MorxEntry{
			{NewState: 0},
			{NewState: 0, Flags: flagDontAdvance},
		},
	}
	sub := fonttest.MorxSubtable{Type: uint8(Rearrangement), Body: fonttest.RearrangementBody(st)}
	p := NewProcessor(parseMorx(t, chainOf(sub)), newGlyph)
	_, err := p.Process(run(2, 1), nil)
	assert.True(t, errors.Is(err, ot.ErrFormat))
}

func TestDeletedGlyphsAreSkipped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontkit.aat")
	defer teardown()
	//
	p := NewProcessor(parseMorx(t, chainOf(fiLigature())), newGlyph)
	glyphs := run(gF, gI)
	glyphs = append(glyphs[:1], append([]*glyph.Glyph{newGlyph(DeletedGlyph, nil)}, glyphs[1:]...)...)
	out, err := p.Process(glyphs, nil)
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{gFI}, ids(out))
}

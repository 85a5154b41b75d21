package fonttest

import "sort"

// --- Common layout tables --------------------------------------------------

// Script is a script record of a layout table. Default and the entries of Langs
// list feature indices.
type Script struct {
	Tag     string
	Default []uint16
	Langs   map[string][]uint16
}

// Feature is a feature record of a layout table.
type Feature struct {
	Tag     string
	Lookups []uint16
}

// Lookup is a lookup table. Subtables are complete subtable records.
type Lookup struct {
	Type             uint16
	Flag             uint16
	MarkFilteringSet uint16 // written if Flag has bit 0x10 set
	Subtables        [][]byte
}

// Layout builds a GSUB or GPOS table with one script whose default language
// system enables all features.
func Layout(script string, features []Feature, lookups []Lookup) []byte {
	all := make([]uint16, len(features))
	for i := range all {
		all[i] = uint16(i)
	}
	return LayoutTable([]Script{{Tag: script, Default: all}}, features, lookups)
}

// LayoutTable builds a version 1.0 GSUB or GPOS table.
func LayoutTable(scripts []Script, features []Feature, lookups []Lookup) []byte {
	w := NewBuf().U16(1, 0)
	scriptList := w.Offset16(0)
	featureList := w.Offset16(0)
	lookupList := w.Offset16(0)
	scriptList()
	w.Bytes(scriptListBytes(scripts))
	featureList()
	w.Bytes(featureListBytes(features))
	lookupList()
	w.Bytes(lookupListBytes(lookups))
	return w.Data()
}

func scriptListBytes(scripts []Script) []byte {
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Tag < scripts[j].Tag })
	w := NewBuf().U16(uint16(len(scripts)))
	var patches []func()
	for _, s := range scripts {
		w.Tag(s.Tag)
		patches = append(patches, w.Offset16(0))
	}
	for i, s := range scripts {
		patches[i]()
		base := w.Len()
		var def func()
		if s.Default != nil {
			def = w.Offset16(base)
		} else {
			w.U16(0)
		}
		var langTags []string
		for tag := range s.Langs {
			langTags = append(langTags, tag)
		}
		sort.Strings(langTags)
		w.U16(uint16(len(langTags)))
		var langPatches []func()
		for _, tag := range langTags {
			w.Tag(tag)
			langPatches = append(langPatches, w.Offset16(base))
		}
		if def != nil {
			def()
			langSys(w, s.Default)
		}
		for j, tag := range langTags {
			langPatches[j]()
			langSys(w, s.Langs[tag])
		}
	}
	return w.Data()
}

func langSys(w *Buf, features []uint16) {
	w.U16(0, 0xFFFF, uint16(len(features)))
	w.U16(features...)
}

func featureListBytes(features []Feature) []byte {
	w := NewBuf().U16(uint16(len(features)))
	var patches []func()
	for _, f := range features {
		w.Tag(f.Tag)
		patches = append(patches, w.Offset16(0))
	}
	for i, f := range features {
		patches[i]()
		w.U16(0, uint16(len(f.Lookups)))
		w.U16(f.Lookups...)
	}
	return w.Data()
}

func lookupListBytes(lookups []Lookup) []byte {
	w := NewBuf().U16(uint16(len(lookups)))
	var patches []func()
	for range lookups {
		patches = append(patches, w.Offset16(0))
	}
	for i, l := range lookups {
		patches[i]()
		base := w.Len()
		w.U16(l.Type, l.Flag, uint16(len(l.Subtables)))
		var subs []func()
		for range l.Subtables {
			subs = append(subs, w.Offset16(base))
		}
		if l.Flag&0x10 != 0 {
			w.U16(l.MarkFilteringSet)
		}
		for j, st := range l.Subtables {
			subs[j]()
			w.Bytes(st)
		}
	}
	return w.Data()
}

// Coverage builds a format 1 coverage table. Glyphs are sorted.
func Coverage(glyphs ...uint16) []byte {
	gs := append([]uint16(nil), glyphs...)
	sort.Slice(gs, func(i, j int) bool { return gs[i] < gs[j] })
	return NewBuf().U16(1, uint16(len(gs))).U16(gs...).Data()
}

// CoverageRanges builds a format 2 coverage table from [first, last] pairs.
func CoverageRanges(ranges ...[2]uint16) []byte {
	w := NewBuf().U16(2, uint16(len(ranges)))
	inx := 0
	for _, r := range ranges {
		w.U16(r[0], r[1], uint16(inx))
		inx += int(r[1]-r[0]) + 1
	}
	return w.Data()
}

// ClassDef builds a format 2 class definition with one range per glyph.
func ClassDef(classes map[uint16]uint16) []byte {
	gs := make([]uint16, 0, len(classes))
	for g := range classes {
		gs = append(gs, g)
	}
	sort.Slice(gs, func(i, j int) bool { return gs[i] < gs[j] })
	w := NewBuf().U16(2, uint16(len(gs)))
	for _, g := range gs {
		w.U16(g, g, classes[g])
	}
	return w.Data()
}

// table is a helper to build subtables with trailing, offset-referenced parts.
type table struct {
	w       *Buf
	pending []func()
	parts   [][]byte
}

func newTable() *table { return &table{w: NewBuf()} }

// ref writes an offset to part, which is appended after the header.
// A nil part writes a NULL offset.
func (t *table) ref(part []byte) {
	if part == nil {
		t.w.U16(0)
		return
	}
	t.pending = append(t.pending, t.w.Offset16(0))
	t.parts = append(t.parts, part)
}

func (t *table) bytes() []byte {
	for i, p := range t.parts {
		t.pending[i]()
		t.w.Bytes(p)
	}
	return t.w.Data()
}

// --- GSUB subtables --------------------------------------------------------

// SingleSubst1 builds a format 1 single substitution (delta).
func SingleSubst1(delta int16, glyphs ...uint16) []byte {
	t := newTable()
	t.w.U16(1)
	t.ref(Coverage(glyphs...))
	t.w.I16(delta)
	return t.bytes()
}

// SingleSubst2 builds a format 2 single substitution.
func SingleSubst2(m map[uint16]uint16) []byte {
	gs := sortedKeys(m)
	t := newTable()
	t.w.U16(2)
	t.ref(Coverage(gs...))
	t.w.U16(uint16(len(gs)))
	for _, g := range gs {
		t.w.U16(m[g])
	}
	return t.bytes()
}

func sortedKeys[V any](m map[uint16]V) []uint16 {
	gs := make([]uint16, 0, len(m))
	for g := range m {
		gs = append(gs, g)
	}
	sort.Slice(gs, func(i, j int) bool { return gs[i] < gs[j] })
	return gs
}

// MultipleSubst builds a multiple substitution; AlternateSubst shares the layout.
func MultipleSubst(m map[uint16][]uint16) []byte {
	gs := sortedKeys(m)
	t := newTable()
	t.w.U16(1)
	t.ref(Coverage(gs...))
	t.w.U16(uint16(len(gs)))
	for _, g := range gs {
		t.ref(NewBuf().U16(uint16(len(m[g]))).U16(m[g]...).Data())
	}
	return t.bytes()
}

// AlternateSubst builds an alternate substitution.
func AlternateSubst(m map[uint16][]uint16) []byte {
	return MultipleSubst(m)
}

// Ligature describes a ligature glyph and all of its components.
type Ligature struct {
	Glyph      uint16
	Components []uint16
}

// LigatureSubst builds a ligature substitution. Ligatures are grouped by their
// first component in the given order.
func LigatureSubst(ligs ...Ligature) []byte {
	sets := map[uint16][]Ligature{}
	for _, l := range ligs {
		sets[l.Components[0]] = append(sets[l.Components[0]], l)
	}
	firsts := sortedKeys(sets)
	t := newTable()
	t.w.U16(1)
	t.ref(Coverage(firsts...))
	t.w.U16(uint16(len(firsts)))
	for _, g := range firsts {
		set := newTable()
		set.w.U16(uint16(len(sets[g])))
		for _, l := range sets[g] {
			set.ref(NewBuf().U16(l.Glyph, uint16(len(l.Components))).U16(l.Components[1:]...).Data())
		}
		t.ref(set.bytes())
	}
	return t.bytes()
}

// SeqLookup is a sequence lookup record.
type SeqLookup struct {
	Index, Lookup uint16
}

func seqLookups(w *Buf, recs []SeqLookup) {
	for _, r := range recs {
		w.U16(r.Index, r.Lookup)
	}
}

// ContextRule is a rule of a format 1 sequence context, including the first
// input glyph.
type ContextRule struct {
	Input   []uint16
	Lookups []SeqLookup
}

// Context1 builds a format 1 sequence context subtable (GSUB 5 / GPOS 7).
func Context1(rules ...ContextRule) []byte {
	sets := map[uint16][]ContextRule{}
	for _, r := range rules {
		sets[r.Input[0]] = append(sets[r.Input[0]], r)
	}
	firsts := sortedKeys(sets)
	t := newTable()
	t.w.U16(1)
	t.ref(Coverage(firsts...))
	t.w.U16(uint16(len(firsts)))
	for _, g := range firsts {
		set := newTable()
		set.w.U16(uint16(len(sets[g])))
		for _, r := range sets[g] {
			rw := NewBuf().U16(uint16(len(r.Input)), uint16(len(r.Lookups))).U16(r.Input[1:]...)
			seqLookups(rw, r.Lookups)
			set.ref(rw.Data())
		}
		t.ref(set.bytes())
	}
	return t.bytes()
}

// Context3 builds a format 3 sequence context subtable from glyph sets.
func Context3(input [][]uint16, lookups ...SeqLookup) []byte {
	t := newTable()
	t.w.U16(3, uint16(len(input)), uint16(len(lookups)))
	for _, set := range input {
		t.ref(Coverage(set...))
	}
	seqLookups(t.w, lookups)
	return t.bytes()
}

// ChainContext3 builds a format 3 chained sequence context subtable. Backtrack
// is given in table order, nearest glyph first.
func ChainContext3(backtrack, input, lookahead [][]uint16, lookups ...SeqLookup) []byte {
	t := newTable()
	t.w.U16(3)
	for _, seq := range [][][]uint16{backtrack, input, lookahead} {
		t.w.U16(uint16(len(seq)))
		for _, set := range seq {
			t.ref(Coverage(set...))
		}
	}
	t.w.U16(uint16(len(lookups)))
	seqLookups(t.w, lookups)
	return t.bytes()
}

// ChainContextClasses is a class based (format 2) chained context.
type ChainContextClasses struct {
	Coverage                    []uint16
	Backtrack, Input, Lookahead map[uint16]uint16
	Rules                       map[uint16][]ChainClassRule // by class of first input glyph
}

// ChainClassRule is a rule of a format 2 chained context. Input excludes the
// first input class.
type ChainClassRule struct {
	Backtrack, Input, Lookahead []uint16
	Lookups                     []SeqLookup
}

// ChainContext2 builds a format 2 chained sequence context subtable.
func ChainContext2(ctx ChainContextClasses) []byte {
	t := newTable()
	t.w.U16(2)
	t.ref(Coverage(ctx.Coverage...))
	t.ref(ClassDef(ctx.Backtrack))
	t.ref(ClassDef(ctx.Input))
	t.ref(ClassDef(ctx.Lookahead))
	maxClass := uint16(0)
	for c := range ctx.Rules {
		maxClass = max(maxClass, c)
	}
	t.w.U16(maxClass + 1)
	for c := uint16(0); c <= maxClass; c++ {
		rules, ok := ctx.Rules[c]
		if !ok {
			t.ref(nil)
			continue
		}
		set := newTable()
		set.w.U16(uint16(len(rules)))
		for _, r := range rules {
			rw := NewBuf()
			rw.U16(uint16(len(r.Backtrack))).U16(r.Backtrack...)
			rw.U16(uint16(len(r.Input) + 1)).U16(r.Input...)
			rw.U16(uint16(len(r.Lookahead))).U16(r.Lookahead...)
			rw.U16(uint16(len(r.Lookups)))
			seqLookups(rw, r.Lookups)
			set.ref(rw.Data())
		}
		t.ref(set.bytes())
	}
	return t.bytes()
}

// ReverseChainSubst builds a reverse chaining single substitution.
func ReverseChainSubst(m map[uint16]uint16, backtrack, lookahead [][]uint16) []byte {
	gs := sortedKeys(m)
	t := newTable()
	t.w.U16(1)
	t.ref(Coverage(gs...))
	for _, seq := range [][][]uint16{backtrack, lookahead} {
		t.w.U16(uint16(len(seq)))
		for _, set := range seq {
			t.ref(Coverage(set...))
		}
	}
	t.w.U16(uint16(len(gs)))
	for _, g := range gs {
		t.w.U16(m[g])
	}
	return t.bytes()
}

// Extension wraps a subtable of lookup type typ into an extension subtable
// (GSUB 7 / GPOS 9).
func Extension(typ uint16, subtable []byte) []byte {
	return NewBuf().U16(1, typ).U32(8).Bytes(subtable).Data()
}

package otlayout

import "github.com/npillmayer/fontkit/ot"

// matchFunc tests the i-th item of a sequence against glyph g.
type matchFunc func(i int, g *GlyphInfo) bool

// match tests n glyphs, starting seqIndex glyphs after the current glyph,
// against a sequence. If matched is non-nil, the buffer indices of the
// matching glyphs are appended to it. The iterator is left unchanged.
func (p *Processor) match(seqIndex, n int, fn matchFunc, matched *[]int) bool {
	pos := p.iter.Index
	defer func() { p.iter.Index = pos }()
	g := p.iter.Increment(seqIndex)
	i := 0
	for i < n && g != nil && fn(i, g) {
		if matched != nil {
			*matched = append(*matched, p.iter.Index)
		}
		i++
		g = p.iter.Next()
	}
	return i == n
}

// matchBackward tests the n glyphs preceding the current glyph against a
// sequence which lists the nearest glyph first.
func (p *Processor) matchBackward(n int, fn matchFunc) bool {
	pos := p.iter.Index
	defer func() { p.iter.Index = pos }()
	for i := 0; i < n; i++ {
		g := p.iter.Prev()
		if g == nil || !fn(i, g) {
			return false
		}
	}
	return true
}

func glyphMatcher(seq []uint16) matchFunc {
	return func(i int, g *GlyphInfo) bool {
		return uint16(g.ID) == seq[i]
	}
}

func classMatcher(seq []uint16, cd *ot.ClassDef) matchFunc {
	return func(i int, g *GlyphInfo) bool {
		return cd.Class(g.ID) == seq[i]
	}
}

func coverageMatcher(seq []*ot.Coverage) matchFunc {
	return func(i int, g *GlyphInfo) bool {
		return seq[i].Index(g.ID) >= 0
	}
}

// applyContext applies a (chained) sequence context subtable at the current
// glyph, for GSUB lookup types 5 and 6 and GPOS lookup types 7 and 8.
//
// Format 1 rules are sequences of glyphs, format 2 rules are sequences of
// glyph classes, and format 3 holds a single rule made of coverage tables.
// For formats 1 and 2 the first input glyph selects the rule set and rules
// are tried in order; the first matching rule wins.
func (p *Processor) applyContext(ctx *ot.SequenceContext) bool {
	cur := p.iter.Cur()
	switch ctx.Format {
	case 1:
		inx := ctx.Coverage.Index(cur.ID)
		if inx < 0 || inx >= len(ctx.RuleSets) {
			return false
		}
		for _, rule := range ctx.RuleSets[inx] {
			if p.ruleMatches(rule, glyphMatcher(rule.Backtrack), glyphMatcher(rule.Input),
				glyphMatcher(rule.Lookahead)) {
				return p.applyLookupList(rule.Lookups)
			}
		}
	case 2:
		if ctx.Coverage.Index(cur.ID) < 0 {
			return false
		}
		class := int(ctx.InputClasses.Class(cur.ID))
		if class >= len(ctx.RuleSets) {
			return false
		}
		for _, rule := range ctx.RuleSets[class] {
			if p.ruleMatches(rule, classMatcher(rule.Backtrack, ctx.BacktrackClasses),
				classMatcher(rule.Input, ctx.InputClasses),
				classMatcher(rule.Lookahead, ctx.LookaheadClasses)) {
				return p.applyLookupList(rule.Lookups)
			}
		}
	case 3:
		n := len(ctx.InputCoverage)
		if n == 0 {
			return false
		}
		if p.match(0, n, coverageMatcher(ctx.InputCoverage), nil) &&
			p.matchBackward(len(ctx.BacktrackCoverage), coverageMatcher(ctx.BacktrackCoverage)) &&
			p.match(n, len(ctx.LookaheadCoverage), coverageMatcher(ctx.LookaheadCoverage), nil) {
			return p.applyLookupList(ctx.Lookups)
		}
	}
	return false
}

// ruleMatches matches a format 1 or 2 rule. The rule's input excludes the
// current glyph.
func (p *Processor) ruleMatches(rule ot.SequenceRule, backtrack, input, lookahead matchFunc) bool {
	return p.match(1, len(rule.Input), input, nil) &&
		p.matchBackward(len(rule.Backtrack), backtrack) &&
		p.match(1+len(rule.Input), len(rule.Lookahead), lookahead, nil)
}

package ot

import "fmt"

// SequenceContext is a decoded (chained) sequence context subtable, shared by GSUB
// lookup types 5 and 6 and GPOS lookup types 7 and 8.
//
// Format 1 matches glyph sequences, format 2 matches class sequences and format 3
// matches sequences of coverage tables. For formats 1 and 2 RuleSets is indexed by
// the coverage index (format 1) or the class (format 2) of the first input glyph.
// In rules, Input excludes the first input glyph. Backtrack is stored in table
// order, i.e. nearest glyph first.
type SequenceContext struct {
	Format   uint16
	Chained  bool
	Coverage *Coverage // formats 1 and 2
	// format 2
	BacktrackClasses *ClassDef
	InputClasses     *ClassDef
	LookaheadClasses *ClassDef
	RuleSets         [][]SequenceRule
	// format 3
	BacktrackCoverage []*Coverage
	InputCoverage     []*Coverage
	LookaheadCoverage []*Coverage
	Lookups           []SequenceLookup
}

// SequenceRule is a rule of a format 1 or format 2 sequence context.
type SequenceRule struct {
	Backtrack []uint16 // glyphs or classes
	Input     []uint16
	Lookahead []uint16
	Lookups   []SequenceLookup
}

// SequenceLookup applies lookup LookupIndex at position SequenceIndex of the
// matched input sequence.
type SequenceLookup struct {
	SequenceIndex uint16
	LookupIndex   uint16
}

func parseSequenceLookups(c *Cursor, n int) []SequenceLookup {
	if n < 0 || n > 0xffff {
		c.Fail(fmt.Sprintf("illegal sequence lookup count %d", n))
		return nil
	}
	recs := make([]SequenceLookup, n)
	for i := range recs {
		recs[i] = SequenceLookup{SequenceIndex: c.U16(), LookupIndex: c.U16()}
	}
	return recs
}

func parseSequenceContext(c *Cursor, format uint16) (any, error) {
	ctx := &SequenceContext{Format: format}
	var err error
	switch format {
	case 1, 2:
		covOff := int(c.U16())
		if format == 2 {
			if ctx.InputClasses, err = classDefAt(c, int(c.U16())); err != nil {
				return nil, err
			}
		}
		setOffsets := c.U16s(int(c.U16()))
		if ctx.Coverage, err = coverageAt(c, covOff); err != nil {
			return nil, err
		}
		ctx.RuleSets = make([][]SequenceRule, len(setOffsets))
		for i, soff := range setOffsets {
			if soff == 0 {
				continue
			}
			sc := c.At(int(soff))
			for _, roff := range sc.U16s(int(sc.U16())) {
				rc := sc.At(int(roff))
				glyphCount, lookupCount := int(rc.U16()), int(rc.U16())
				if glyphCount == 0 {
					return nil, FormatError(c.Table(), "SequenceRule", "empty input sequence")
				}
				rule := SequenceRule{Input: rc.U16s(glyphCount - 1)}
				rule.Lookups = parseSequenceLookups(rc, lookupCount)
				if err := rc.Err(); err != nil {
					return nil, err
				}
				ctx.RuleSets[i] = append(ctx.RuleSets[i], rule)
			}
			if err := sc.Err(); err != nil {
				return nil, err
			}
		}
	case 3:
		glyphCount, lookupCount := int(c.U16()), int(c.U16())
		if ctx.InputCoverage, err = coverageList(c, c.U16s(glyphCount)); err != nil {
			return nil, err
		}
		ctx.Lookups = parseSequenceLookups(c, lookupCount)
		if len(ctx.InputCoverage) == 0 {
			return nil, FormatError(c.Table(), "SequenceContext", "empty input sequence")
		}
	default:
		return nil, FormatError(c.Table(), "SequenceContext", "unknown format %d", format)
	}
	return ctx, c.Err()
}

func parseChainedSequenceContext(c *Cursor, format uint16) (any, error) {
	ctx := &SequenceContext{Format: format, Chained: true}
	var err error
	switch format {
	case 1, 2:
		covOff := int(c.U16())
		if format == 2 {
			bOff, iOff, lOff := int(c.U16()), int(c.U16()), int(c.U16())
			if ctx.BacktrackClasses, err = classDefAt(c, bOff); err != nil {
				return nil, err
			}
			if ctx.InputClasses, err = classDefAt(c, iOff); err != nil {
				return nil, err
			}
			if ctx.LookaheadClasses, err = classDefAt(c, lOff); err != nil {
				return nil, err
			}
		}
		setOffsets := c.U16s(int(c.U16()))
		if ctx.Coverage, err = coverageAt(c, covOff); err != nil {
			return nil, err
		}
		ctx.RuleSets = make([][]SequenceRule, len(setOffsets))
		for i, soff := range setOffsets {
			if soff == 0 {
				continue
			}
			sc := c.At(int(soff))
			for _, roff := range sc.U16s(int(sc.U16())) {
				rc := sc.At(int(roff))
				rule := SequenceRule{Backtrack: rc.U16s(int(rc.U16()))}
				inputCount := int(rc.U16())
				if inputCount == 0 {
					return nil, FormatError(c.Table(), "ChainedSequenceRule", "empty input sequence")
				}
				rule.Input = rc.U16s(inputCount - 1)
				rule.Lookahead = rc.U16s(int(rc.U16()))
				rule.Lookups = parseSequenceLookups(rc, int(rc.U16()))
				if err := rc.Err(); err != nil {
					return nil, err
				}
				ctx.RuleSets[i] = append(ctx.RuleSets[i], rule)
			}
			if err := sc.Err(); err != nil {
				return nil, err
			}
		}
	case 3:
		if ctx.BacktrackCoverage, err = coverageList(c, c.U16s(int(c.U16()))); err != nil {
			return nil, err
		}
		if ctx.InputCoverage, err = coverageList(c, c.U16s(int(c.U16()))); err != nil {
			return nil, err
		}
		if ctx.LookaheadCoverage, err = coverageList(c, c.U16s(int(c.U16()))); err != nil {
			return nil, err
		}
		ctx.Lookups = parseSequenceLookups(c, int(c.U16()))
		if len(ctx.InputCoverage) == 0 {
			return nil, FormatError(c.Table(), "ChainedSequenceContext", "empty input sequence")
		}
	default:
		return nil, FormatError(c.Table(), "ChainedSequenceContext", "unknown format %d", format)
	}
	return ctx, c.Err()
}

func coverageList(c *Cursor, offsets []uint16) ([]*Coverage, error) {
	if err := c.Err(); err != nil {
		return nil, err
	}
	list := make([]*Coverage, len(offsets))
	for i, off := range offsets {
		cov, err := parseCoverage(c.At(int(off)))
		if err != nil {
			return nil, err
		}
		list[i] = cov
	}
	return list, nil
}

package ot

// GSUB lookup types
const (
	GSubSingle          = 1
	GSubMultiple        = 2
	GSubAlternate       = 3
	GSubLigature        = 4
	GSubContext         = 5
	GSubChainingContext = 6
	GSubExtension       = 7
	GSubReverseChaining = 8
)

var gsubDecoders = map[uint16]subtableDecoder{
	GSubSingle:          parseSingleSubst,
	GSubMultiple:        parseMultipleSubst,
	GSubAlternate:       parseAlternateSubst,
	GSubLigature:        parseLigatureSubst,
	GSubContext:         parseSequenceContext,
	GSubChainingContext: parseChainedSequenceContext,
	GSubReverseChaining: parseReverseChainSubst,
}

// SingleSubst replaces a single glyph. Format 1 adds a delta to the glyph index,
// format 2 maps by coverage index.
type SingleSubst struct {
	Coverage    *Coverage
	Delta       int16        // format 1
	Substitutes []GlyphIndex // format 2
}

// Substitute returns the substitute for glyph g and true, or false if g is not covered.
func (s *SingleSubst) Substitute(g GlyphIndex) (GlyphIndex, bool) {
	inx := s.Coverage.Index(g)
	if inx < 0 {
		return g, false
	}
	if s.Substitutes == nil {
		return GlyphIndex(int(g) + int(s.Delta)), true
	}
	if inx >= len(s.Substitutes) {
		return g, false
	}
	return s.Substitutes[inx], true
}

func parseSingleSubst(c *Cursor, format uint16) (any, error) {
	covOff := int(c.U16())
	s := &SingleSubst{}
	switch format {
	case 1:
		s.Delta = c.I16()
	case 2:
		s.Substitutes = c.Glyphs(int(c.U16()))
		if s.Substitutes == nil {
			s.Substitutes = []GlyphIndex{}
		}
	default:
		return nil, FormatError(c.Table(), "SingleSubst", "unknown format %d", format)
	}
	var err error
	if s.Coverage, err = coverageAt(c, covOff); err != nil {
		return nil, err
	}
	return s, c.Err()
}

// MultipleSubst replaces a single glyph by a sequence of glyphs.
type MultipleSubst struct {
	Coverage  *Coverage
	Sequences [][]GlyphIndex // by coverage index
}

func parseMultipleSubst(c *Cursor, format uint16) (any, error) {
	if format != 1 {
		return nil, FormatError(c.Table(), "MultipleSubst", "unknown format %d", format)
	}
	s := &MultipleSubst{}
	seqs, err := parseGlyphSequences(c, &s.Coverage)
	s.Sequences = seqs
	return s, err
}

// AlternateSubst offers alternates for a glyph.
type AlternateSubst struct {
	Coverage   *Coverage
	Alternates [][]GlyphIndex // by coverage index
}

func parseAlternateSubst(c *Cursor, format uint16) (any, error) {
	if format != 1 {
		return nil, FormatError(c.Table(), "AlternateSubst", "unknown format %d", format)
	}
	s := &AlternateSubst{}
	seqs, err := parseGlyphSequences(c, &s.Coverage)
	s.Alternates = seqs
	return s, err
}

// parseGlyphSequences decodes a coverage offset followed by an array of offsets to
// glyph arrays. Multiple and Alternate substitutions share this layout.
func parseGlyphSequences(c *Cursor, cov **Coverage) ([][]GlyphIndex, error) {
	covOff := int(c.U16())
	offsets := c.U16s(int(c.U16()))
	var err error
	if *cov, err = coverageAt(c, covOff); err != nil {
		return nil, err
	}
	seqs := make([][]GlyphIndex, len(offsets))
	for i, off := range offsets {
		sc := c.At(int(off))
		seqs[i] = sc.Glyphs(int(sc.U16()))
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}
	return seqs, c.Err()
}

// LigatureSubst replaces a sequence of glyphs by a ligature glyph.
type LigatureSubst struct {
	Coverage     *Coverage
	LigatureSets [][]Ligature // by coverage index of the first component
}

// Ligature is a ligature glyph and its components, excluding the first component.
type Ligature struct {
	Glyph      GlyphIndex
	Components []GlyphIndex
}

func parseLigatureSubst(c *Cursor, format uint16) (any, error) {
	if format != 1 {
		return nil, FormatError(c.Table(), "LigatureSubst", "unknown format %d", format)
	}
	covOff := int(c.U16())
	offsets := c.U16s(int(c.U16()))
	s := &LigatureSubst{LigatureSets: make([][]Ligature, len(offsets))}
	var err error
	if s.Coverage, err = coverageAt(c, covOff); err != nil {
		return nil, err
	}
	for i, off := range offsets {
		sc := c.At(int(off))
		for _, loff := range sc.U16s(int(sc.U16())) {
			lc := sc.At(int(loff))
			lig := Ligature{Glyph: lc.Glyph()}
			n := int(lc.U16())
			if n == 0 {
				return nil, FormatError(c.Table(), "LigatureSubst", "ligature without components")
			}
			lig.Components = lc.Glyphs(n - 1)
			if err := lc.Err(); err != nil {
				return nil, err
			}
			s.LigatureSets[i] = append(s.LigatureSets[i], lig)
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}
	return s, c.Err()
}

// ReverseChainSubst is a reverse chaining contextual single substitution.
// It is applied from the end of the glyph run to the start.
type ReverseChainSubst struct {
	Coverage    *Coverage
	Backtrack   []*Coverage // nearest glyph first
	Lookahead   []*Coverage
	Substitutes []GlyphIndex // by coverage index
}

func parseReverseChainSubst(c *Cursor, format uint16) (any, error) {
	if format != 1 {
		return nil, FormatError(c.Table(), "ReverseChainSubst", "unknown format %d", format)
	}
	covOff := int(c.U16())
	s := &ReverseChainSubst{}
	var err error
	if s.Backtrack, err = coverageList(c, c.U16s(int(c.U16()))); err != nil {
		return nil, err
	}
	if s.Lookahead, err = coverageList(c, c.U16s(int(c.U16()))); err != nil {
		return nil, err
	}
	s.Substitutes = c.Glyphs(int(c.U16()))
	if s.Coverage, err = coverageAt(c, covOff); err != nil {
		return nil, err
	}
	if s.Coverage.Len() != len(s.Substitutes) {
		return nil, FormatError(c.Table(), "ReverseChainSubst",
			"%d substitutes for %d covered glyphs", len(s.Substitutes), s.Coverage.Len())
	}
	return s, c.Err()
}

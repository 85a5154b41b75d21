package aat

import (
	"fmt"

	"github.com/npillmayer/fontkit/ot"
)

// SubtableType is the kind of a morx subtable.
type SubtableType uint8

// Subtable types of table 'morx'.
const (
	Rearrangement SubtableType = 0
	Contextual    SubtableType = 1
	Ligature      SubtableType = 2
	NonContextual SubtableType = 4
	Insertion     SubtableType = 5
)

func (t SubtableType) String() string {
	switch t {
	case Rearrangement:
		return "rearrangement"
	case Contextual:
		return "contextual"
	case Ligature:
		return "ligature"
	case NonContextual:
		return "non-contextual"
	case Insertion:
		return "insertion"
	}
	return fmt.Sprintf("subtable-type(%d)", uint8(t))
}

// Coverage bits of a morx subtable.
const (
	CoverageVertical   = 0x80000000 // only for vertical text
	CoverageDescending = 0x40000000 // process glyphs in reverse order
	CoverageBoth       = 0x20000000 // for horizontal and vertical text
	CoverageLogical    = 0x10000000
)

// Morx is a decoded 'morx' table.
type Morx struct {
	Version uint16
	Chains  []Chain
}

// Chain is a list of subtables, together with the feature entries selecting
// which of them run.
type Chain struct {
	DefaultFlags uint32
	Features     []FeatureEntry
	Subtables    []*Subtable
}

// FeatureEntry associates a feature setting with the flags it sets and clears.
type FeatureEntry struct {
	Type         uint16
	Setting      uint16
	EnableFlags  uint32
	DisableFlags uint32
}

// Subtable is a morx subtable. Which fields are set depends on the type.
type Subtable struct {
	Type            SubtableType
	Coverage        uint32
	SubFeatureFlags uint32
	StateTable      *StateTable    // all types but non-contextual
	Lookup          *LookupTable   // non-contextual substitution
	Substitutions   []*LookupTable // contextual substitution lookups
	ligActions      []byte         // ligature: 32-bit actions
	components      []byte         // ligature: 16-bit component values
	ligatures       []byte         // ligature: 16-bit ligature glyphs
	insertions      []byte         // insertion: 16-bit glyphs
}

// Reverse returns true if the subtable processes glyphs from last to first.
func (st *Subtable) Reverse() bool {
	return st.Coverage&CoverageDescending != 0
}

// ParseMorx decodes a 'morx' table. Versions 2 and 3 are supported; the
// subtable glyph coverage of version 3 is ignored. numGlyphs is the number of
// glyphs in the font and may be 0 if unknown.
func ParseMorx(data []byte, numGlyphs int) (*Morx, error) {
	c := ot.NewCursor(data, tagMorx).Section("header")
	m := &Morx{Version: c.U16()}
	c.Skip(2)
	nChains := int(c.U32())
	if err := c.Err(); err != nil {
		return nil, err
	}
	if m.Version != 2 && m.Version != 3 {
		return nil, errFormat("header", "unsupported morx version %d", m.Version)
	}
	for i := 0; i < nChains; i++ {
		start := c.Pos()
		c.Section(fmt.Sprintf("chain %d", i))
		chain := Chain{DefaultFlags: c.U32()}
		length := int(c.U32())
		nFeatures := int(c.U32())
		nSubtables := int(c.U32())
		if err := c.Err(); err != nil {
			return nil, err
		}
		if length < 16 || length > c.Len()-start {
			return nil, errFormat("chain", "chain %d has illegal length %d", i, length)
		}
		if nFeatures > (length-16)/12 {
			return nil, errFormat("chain", "chain %d: too many feature entries: %d", i, nFeatures)
		}
		chain.Features = make([]FeatureEntry, nFeatures)
		for j := range chain.Features {
			chain.Features[j] = FeatureEntry{
				Type:         c.U16(),
				Setting:      c.U16(),
				EnableFlags:  c.U32(),
				DisableFlags: c.U32(),
			}
		}
		for j := 0; j < nSubtables; j++ {
			c.Section(fmt.Sprintf("chain %d subtable %d", i, j))
			subStart := c.Pos()
			subLen := int(c.U32())
			if err := c.Err(); err != nil {
				return nil, err
			}
			if subLen < 12 || subStart+subLen > start+length {
				return nil, errFormat("subtable", "subtable %d of chain %d has illegal length %d", j, i, subLen)
			}
			sub, err := parseSubtable(c.Sub(subStart, subLen), numGlyphs)
			if err != nil {
				return nil, err
			}
			chain.Subtables = append(chain.Subtables, sub)
			c.Seek(subStart + subLen)
		}
		m.Chains = append(m.Chains, chain)
		c.Seek(start + length)
		if err := c.Err(); err != nil {
			return nil, err
		}
	}
	tracer().Debugf("morx version %d with %d chains", m.Version, len(m.Chains))
	return m, nil
}

func parseSubtable(c *ot.Cursor, numGlyphs int) (*Subtable, error) {
	c.Skip(4) // length
	sub := &Subtable{Coverage: c.U32()}
	sub.Type = SubtableType(sub.Coverage & 0xff)
	sub.SubFeatureFlags = c.U32()
	if err := c.Err(); err != nil {
		return nil, err
	}
	body := c.Here().Section(sub.Type.String())
	var err error
	switch sub.Type {
	case Rearrangement:
		sub.StateTable, err = parseStateTable(body, 0, numGlyphs)
	case Contextual:
		if sub.StateTable, err = parseStateTable(body, 2, numGlyphs); err != nil {
			return nil, err
		}
		body.Seek(16)
		sub.Substitutions, err = parseSubstitutions(body.At(int(body.U32())), numGlyphs)
	case Ligature:
		if sub.StateTable, err = parseStateTable(body, 1, numGlyphs); err != nil {
			return nil, err
		}
		body.Seek(16)
		actions, components, ligatures := int(body.U32()), int(body.U32()), int(body.U32())
		sub.ligActions = body.At(actions).Data()
		sub.components = body.At(components).Data()
		sub.ligatures = body.At(ligatures).Data()
		err = body.Err()
	case NonContextual:
		sub.Lookup, err = ParseLookup(body, numGlyphs)
	case Insertion:
		if sub.StateTable, err = parseStateTable(body, 2, numGlyphs); err != nil {
			return nil, err
		}
		body.Seek(16)
		sub.insertions = body.At(int(body.U32())).Data()
		err = body.Err()
	default:
		// unknown subtable types are kept and skipped during processing
		tracer().Debugf("morx: skipping subtable of unknown type %d", sub.Type)
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// parseSubstitutions decodes the array of offsets to substitution lookups of a
// contextual subtable. The array has no count; it ends where the first lookup
// table starts.
func parseSubstitutions(c *ot.Cursor, numGlyphs int) ([]*LookupTable, error) {
	end := c.Len()
	var lookups []*LookupTable
	for c.Pos()+4 <= end {
		off := int(c.U32())
		if c.Err() != nil {
			return nil, c.Err()
		}
		if off < c.Pos() {
			return nil, errFormat("substitution table", "lookup offset %d overlaps offset array", off)
		}
		end = min(end, off)
		lt, err := ParseLookup(c.At(off), numGlyphs)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, lt)
	}
	return lookups, nil
}

// ligatureAction returns the ligature action at index i.
func (st *Subtable) ligatureAction(i int) (uint32, bool) {
	if i < 0 || 4*i+4 > len(st.ligActions) {
		return 0, false
	}
	b := st.ligActions[4*i:]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), true
}

func u16At(b []byte, i int) (uint16, bool) {
	if i < 0 || 2*i+2 > len(b) {
		return 0, false
	}
	return uint16(b[2*i])<<8 | uint16(b[2*i+1]), true
}

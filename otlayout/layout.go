package otlayout

import (
	"fmt"
	"sort"

	"github.com/npillmayer/fontkit/ot"
)

// Tables bundles the layout tables of a font. Each of them may be nil.
type Tables struct {
	GSUB *ot.LayoutTable
	GPOS *ot.LayoutTable
	GDEF *ot.GDefTable
	Kern *ot.KernTable
}

// LoadTables decodes the layout tables of a font.
func LoadTables(otf *ot.Font) (*Tables, error) {
	t := &Tables{}
	var err error
	if t.GSUB, err = otf.GSUB(); err != nil {
		return nil, fmt.Errorf("layout tables: %w", err)
	}
	if t.GPOS, err = otf.GPOS(); err != nil {
		return nil, fmt.Errorf("layout tables: %w", err)
	}
	if t.GDEF, err = otf.GDEF(); err != nil {
		return nil, fmt.Errorf("layout tables: %w", err)
	}
	if t.Kern, err = otf.Kern(); err != nil {
		return nil, fmt.Errorf("layout tables: %w", err)
	}
	return t, nil
}

// AvailableFeatures returns the tags of all features of GSUB and GPOS, sorted.
// A legacy 'kern' table counts as feature 'kern'.
func (t *Tables) AvailableFeatures() []ot.Tag {
	seen := map[ot.Tag]bool{}
	for _, table := range []*ot.LayoutTable{t.GSUB, t.GPOS} {
		if table == nil {
			continue
		}
		for _, tag := range table.FeatureTags() {
			seen[tag] = true
		}
	}
	if t.Kern != nil {
		seen[ot.T("kern")] = true
	}
	return sortedTags(seen)
}

// ScriptTags returns the tags of all scripts of GSUB and GPOS, sorted.
func (t *Tables) ScriptTags() []ot.Tag {
	seen := map[ot.Tag]bool{}
	for _, table := range []*ot.LayoutTable{t.GSUB, t.GPOS} {
		if table == nil {
			continue
		}
		for _, tag := range table.ScriptTags() {
			seen[tag] = true
		}
	}
	return sortedTags(seen)
}

func sortedTags(set map[ot.Tag]bool) []ot.Tag {
	tags := make([]ot.Tag, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

package otquery

import (
	"github.com/npillmayer/fontkit/ot"
	"golang.org/x/image/font/sfnt"
)

// --- Font Information -------------------------------------------------

// FontType returns "CFF" for fonts with PostScript outlines, "TrueType" for
// fonts with 'glyf' outlines, "SBIX" for bitmap-only fonts and "unknown"
// otherwise.
func FontType(otf *ot.Font) string {
	switch {
	case otf == nil:
		return "unknown"
	case otf.IsCFF():
		return "CFF"
	case otf.HasTable(ot.T("glyf")):
		return "TrueType"
	case otf.HasTable(ot.T("sbix")):
		return "SBIX"
	}
	return "unknown"
}

var layoutTableTags = []string{"BASE", "GDEF", "GPOS", "GSUB", "JSTF", "kern", "morx"}

// LayoutTables returns the tags of the layout tables contained in a font.
func LayoutTables(otf *ot.Font) []string {
	var tags []string
	for _, tag := range layoutTableTags {
		if otf != nil && otf.HasTable(ot.T(tag)) {
			tags = append(tags, tag)
		}
	}
	return tags
}

// FontSupportsScript returns a tuple (script-tag, language-tag) for a given input
// of a script tag and a language tag. If the language has no special support in the
// font, DFLT will be returned. If the script has no support in the font,
// DFLT will be returned for the script.
func FontSupportsScript(otf *ot.Font, scr ot.Tag, lang ot.Tag) (ot.Tag, ot.Tag) {
	if otf == nil {
		return 0, 0
	}
	gsub, err := otf.GSUB()
	if err != nil {
		tracer().Errorf("cannot decode table 'GSUB': %v", err)
	}
	if gsub == nil {
		if gsub, _ = otf.GPOS(); gsub == nil {
			return ot.DFLT, ot.DFLT
		}
	}
	script := gsub.Script(scr)
	if script == nil {
		tracer().Infof("cannot find script %s in font", scr.String())
		return ot.DFLT, ot.DFLT
	}
	tracer().Debugf("script %s is contained in %s", scr.String(), gsub.Tag)
	for _, rec := range script.Languages {
		if rec.Tag == lang {
			return scr, lang
		}
	}
	return scr, ot.DFLT
}

// FontMetrics retrieves selected metrics of a font.
//
// Ascent, descent and line gap are taken from 'hhea'. If 'hhea' leaves
// ascent and descent at zero, the typographic values of 'OS/2' are used.
// Fonts without a cap height get their ascent as cap height.
func FontMetrics(otf *ot.Font) FontMetricsInfo {
	metrics := FontMetricsInfo{}
	if otf == nil {
		return metrics
	}
	if hhea, err := otf.HHea(); err != nil {
		tracer().Errorf("cannot decode table 'hhea': %v", err)
	} else if hhea != nil {
		metrics.Ascent = sfnt.Units(hhea.Ascender)
		metrics.Descent = sfnt.Units(hhea.Descender)
		metrics.LineGap = sfnt.Units(hhea.LineGap)
		metrics.MaxAdvance = sfnt.Units(hhea.AdvanceMax)
	}
	os2, err := otf.OS2()
	if err != nil {
		tracer().Errorf("cannot decode table 'OS/2': %v", err)
	}
	if os2 != nil {
		if metrics.Ascent == 0 && metrics.Descent == 0 {
			tracer().Debugf("ascent and descent from OS/2")
			metrics.Ascent = sfnt.Units(os2.TypoAscender)
			metrics.Descent = sfnt.Units(os2.TypoDescender)
			metrics.LineGap = sfnt.Units(os2.TypoLineGap)
		}
		metrics.CapHeight = sfnt.Units(os2.CapHeight)
		metrics.XHeight = sfnt.Units(os2.XHeight)
	}
	if metrics.CapHeight == 0 {
		metrics.CapHeight = metrics.Ascent
	}
	if post, err := otf.Post(); err != nil {
		tracer().Errorf("cannot decode table 'post': %v", err)
	} else if post != nil {
		metrics.UnderlinePosition = sfnt.Units(post.UnderlinePosition)
		metrics.UnderlineThickness = sfnt.Units(post.UnderlineThickness)
		metrics.ItalicAngle = post.ItalicAngle
		metrics.IsFixedPitch = post.IsFixedPitch
	}
	head := otf.Head // Head is a required table
	metrics.UnitsPerEm = sfnt.Units(head.UnitsPerEm)
	metrics.BBox = BoundingBox{
		MinX: sfnt.Units(head.XMin),
		MinY: sfnt.Units(head.YMin),
		MaxX: sfnt.Units(head.XMax),
		MaxY: sfnt.Units(head.YMax),
	}
	return metrics
}

// --- Glyph Routines --------------------------------------------------------

// GlyphIndex returns the glyph index for a give code-point.
// If the code-point cannot be found, 0 is returned.
//
// From the OpenType specification: character codes that do not correspond to any glyph in
// the font should be mapped to glyph index 0. The glyph at this location must be a special
// glyph representing a missing character, commonly known as '.notdef'.
func GlyphIndex(otf *ot.Font, codepoint rune) ot.GlyphIndex {
	cmap, err := otf.CMap()
	if err != nil {
		tracer().Errorf("cannot decode table 'cmap': %v", err)
		return 0
	}
	return cmap.Lookup(codepoint, 0)
}

// CodePointForGlyph returns the code-point for a given glyph index.
//
// The reverse mapping is computed from the font's cmap on first call.
// If the glyph index does not correspond to a code-point, 0 is returned.
// If more than one code-point maps to the glyph, the lowest one is returned.
func CodePointForGlyph(otf *ot.Font, gid ot.GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	cmap, err := otf.CMap()
	if err != nil {
		return 0
	}
	if cps := cmap.CodePointsForGlyph(gid); len(cps) > 0 {
		return cps[0]
	}
	return 0
}

// ClassesForGlyph returns the GDEF classes of a glyph.
func ClassesForGlyph(otf *ot.Font, gid ot.GlyphIndex) GlyphClasses {
	gdef, err := otf.GDEF()
	if err != nil || gdef == nil {
		return GlyphClasses{}
	}
	clz := GlyphClasses{Class: GlyphClass(gdef.GlyphClass(gid))}
	if gdef.MarkAttachClass != nil {
		clz.MarkAttachClass = gdef.MarkAttachClass.Class(gid)
	}
	return clz
}

// GlyphMetrics retrieves metrics for a given glyph.
//
// The bounding box is read from the glyph header in table 'glyf'. Fonts with
// CFF outlines leave it empty.
func GlyphMetrics(otf *ot.Font, gid ot.GlyphIndex) GlyphMetricsInfo {
	metrics := GlyphMetricsInfo{}
	//
	// table HMtx: advance width and left side bearing
	if hmtx, err := otf.HMtx(); err == nil && hmtx != nil {
		m := hmtx.Metric(gid)
		metrics.Advance = sfnt.Units(m.Advance)
		metrics.LSB = sfnt.Units(m.Bearing)
	}
	//
	// table glyf: bounding box
	if glyf := otf.Table(ot.T("glyf")); glyf != nil {
		if loca, err := otf.Loca(); err == nil && loca != nil {
			off, length := loca.Location(gid)
			if length >= 10 && int(off)+10 <= len(glyf) {
				b := glyf[off:]
				metrics.BBox = BoundingBox{
					MinX: sfnt.Units(i16(b[2:])),
					MinY: sfnt.Units(i16(b[4:])),
					MaxX: sfnt.Units(i16(b[6:])),
					MaxY: sfnt.Units(i16(b[8:])),
				}
			}
		}
	}
	// RSB calculation: rsb = aw - (lsb + xMax - xMin)
	// From the OpenType specification:
	// If a glyph has no contours, xMax/xMin are not defined. The left side bearing indicated
	// in the 'hmtx' table for such glyphs should be zero.
	if !metrics.BBox.IsEmpty() { // leave RSB for empty bboxes
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics
}

func i16(b []byte) int16 {
	return int16(b[0])<<8 | int16(b[1])<<0
}

package pdfembed

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf16"

	"seehuhn.de/go/postscript"
)

// bfRange maps the codes First…Last to the Unicode text in Values, one per
// code. A range never crosses a boundary of the high byte of the codes.
type bfRange struct {
	First, Last uint16
	Values      [][]rune
}

// maxRangeLen is the number of codes sharing a high byte.
const maxRangeLen = 256

// rangesPerSection limits the entries of a beginbfrange section.
const rangesPerSection = 100

// ToUnicodeCMap returns a CMap mapping the codes of the glyphs in use back to
// Unicode text. Glyphs without code points are left out.
func (ef *Font) ToUnicodeCMap() []byte {
	var buf bytes.Buffer
	data := struct {
		Name     string
		Registry string
		Ordering string
		Ranges   []bfRange
	}{
		Name:     postscript.Name("Adobe-Identity-UCS").PS(),
		Registry: postscript.String("Adobe").PS(),
		Ordering: postscript.String("UCS").PS(),
		Ranges:   bfRanges(ef.unicode),
	}
	if err := toUnicodeTmpl.Execute(&buf, data); err != nil {
		tracer().Errorf("cannot write ToUnicode CMap: %v", err)
	}
	return buf.Bytes()
}

// bfRanges groups consecutive codes with text into ranges.
func bfRanges(unicode [][]rune) []bfRange {
	var ranges []bfRange
	var current *bfRange
	for code, text := range unicode {
		if len(text) == 0 {
			current = nil
			continue
		}
		if current == nil || code%maxRangeLen == 0 {
			ranges = append(ranges, bfRange{First: uint16(code)})
			current = &ranges[len(ranges)-1]
		}
		current.Last = uint16(code)
		current.Values = append(current.Values, text)
	}
	return ranges
}

// hexUTF16 encodes text as a hex string of UTF-16BE code units.
func hexUTF16(text []rune) string {
	var b strings.Builder
	b.WriteByte('<')
	for _, u := range utf16.Encode(text) {
		fmt.Fprintf(&b, "%04x", u)
	}
	b.WriteByte('>')
	return b.String()
}

func sections(ranges []bfRange) [][]bfRange {
	var res [][]bfRange
	for len(ranges) > rangesPerSection {
		res = append(res, ranges[:rangesPerSection])
		ranges = ranges[rangesPerSection:]
	}
	if len(ranges) > 0 {
		res = append(res, ranges)
	}
	return res
}

var toUnicodeTmpl = template.Must(template.New("tounicode").Funcs(template.FuncMap{
	"Sections": sections,
	"Range": func(r bfRange) string {
		values := make([]string, len(r.Values))
		for i, v := range r.Values {
			values[i] = hexUTF16(v)
		}
		return fmt.Sprintf("<%04x> <%04x> [%s]", r.First, r.Last, strings.Join(values, " "))
	},
}).Parse(`/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo <<
/Registry {{.Registry}}
/Ordering {{.Ordering}}
/Supplement 0
>> def
/CMapName {{.Name}} def
/CMapType 2 def
1 begincodespacerange
<0000> <ffff>
endcodespacerange
{{range Sections .Ranges -}}
{{len .}} beginbfrange
{{range . -}}
{{Range .}}
{{end -}}
endbfrange
{{end -}}
endcmap
CMapName currentdict /CMap defineresource pop
end
end
`))

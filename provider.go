package fontkit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	xfont "golang.org/x/image/font"
)

// FontDataProvider supplies the binary data of font files. Reading fonts is
// the business of the embedding application; the provider is its hook.
type FontDataProvider interface {
	ReadFont(name string) ([]byte, error)
}

// DirProvider reads fonts from a file system, e.g. a directory or an
// embedded file system.
type DirProvider struct {
	FS fs.FS
}

// NewDirProvider creates a provider reading fonts from directory dir.
func NewDirProvider(dir string) DirProvider {
	return DirProvider{FS: os.DirFS(dir)}
}

// ReadFont reads font file name, a slash-separated path relative to the
// provider's root.
func (p DirProvider) ReadFont(name string) ([]byte, error) {
	data, err := fs.ReadFile(p.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrFontNotFound)
	}
	return data, err
}

// SystemProvider locates fonts by file name in the font directories of the
// operating system.
type SystemProvider struct{}

// ReadFont searches the system's font directories for a font file name,
// e.g. "Helvetica.ttc".
func (SystemProvider) ReadFont(name string) ([]byte, error) {
	filepath, err := findfont.Find(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, ErrFontNotFound)
	}
	tracer().Debugf("located system font %s at %s", name, filepath)
	return os.ReadFile(filepath)
}

// OpenFile reads font file name from a provider and opens it. For
// collections, the first font is returned.
func OpenFile(p FontDataProvider, name string) (*Font, error) {
	data, err := p.ReadFont(name)
	if err != nil {
		return nil, err
	}
	f, err := Open(data)
	if err != nil {
		return nil, fmt.Errorf("font file %s: %w", name, err)
	}
	return f, nil
}

// OpenCollectionFile reads a font file from a provider and opens it as a
// collection.
func OpenCollectionFile(p FontDataProvider, name string) (*Collection, error) {
	data, err := p.ReadFont(name)
	if err != nil {
		return nil, err
	}
	c, err := OpenCollection(data)
	if err != nil {
		return nil, fmt.Errorf("font file %s: %w", name, err)
	}
	return c, nil
}

// --- Registry --------------------------------------------------------------

// Registry holds the fonts loaded by an application. Fonts are stored under
// a normalized name and loaded from a chain of providers on first request.
// A Registry is safe for concurrent use; the fonts it hands out are not.
type Registry struct {
	sync.Mutex
	providers []FontDataProvider
	fonts     map[string]*Font
}

// NewRegistry creates a registry loading fonts from providers, in order.
func NewRegistry(providers ...FontDataProvider) *Registry {
	return &Registry{
		providers: providers,
		fonts:     make(map[string]*Font),
	}
}

// StoreFont adds a font to the registry under the normalized name of its
// family, style and weight. A font already stored under that name is not
// overridden.
func (r *Registry) StoreFont(f *Font) string {
	if f == nil {
		tracer().Errorf("registry cannot store nil font")
		return ""
	}
	key := NormalizeFontname(f.FamilyName(), f.Style(), f.Weight())
	r.Lock()
	defer r.Unlock()
	if _, ok := r.fonts[key]; !ok {
		tracer().Debugf("registry stores font %s as %s", f.PostScriptName(), key)
		r.fonts[key] = f
	}
	return key
}

// Font returns a font by file name. Fonts not yet in the registry are read
// from the first provider which knows the file.
func (r *Registry) Font(filename string) (*Font, error) {
	style, weight := GuessStyleAndWeight(filename)
	key := NormalizeFontname(filename, style, weight)
	r.Lock()
	defer r.Unlock()
	if f, ok := r.fonts[key]; ok {
		return f, nil
	}
	for _, p := range r.providers {
		f, err := OpenFile(p, filename)
		if errors.Is(err, ErrFontNotFound) {
			continue
		} else if err != nil {
			return nil, err
		}
		tracer().Infof("registry loaded font %s as %s", filename, key)
		r.fonts[key] = f
		return f, nil
	}
	return nil, fmt.Errorf("%s: %w", filename, ErrFontNotFound)
}

// LogFontList dumps the names of the registered fonts to the trace.
func (r *Registry) LogFontList() {
	r.Lock()
	defer r.Unlock()
	tracer().Infof("--- registered fonts ---")
	for k, f := range r.fonts {
		tracer().Infof("font [%s] = %s", k, f.PostScriptName())
	}
	tracer().Infof("------------------------")
}

// NormalizeFontname creates the registry key for a font name or font file
// name, style and weight, e.g. "fira_sans-bold".
func NormalizeFontname(fname string, style xfont.Style, weight xfont.Weight) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	if ext := path.Ext(fname); isFontExtension(ext) {
		fname = fname[:len(fname)-len(ext)]
	}
	fname = strings.ToLower(fname)
	for _, suffix := range []string{"-italic", "-light", "-bold", "-regular"} {
		fname = strings.TrimSuffix(fname, suffix)
	}
	switch style {
	case xfont.StyleItalic, xfont.StyleOblique:
		fname += "-italic"
	}
	switch weight {
	case xfont.WeightThin, xfont.WeightLight, xfont.WeightExtraLight:
		fname += "-light"
	case xfont.WeightBold, xfont.WeightExtraBold, xfont.WeightSemiBold, xfont.WeightBlack:
		fname += "-bold"
	}
	return fname
}

func isFontExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".ttf", ".otf", ".ttc", ".otc", ".woff", ".dfont":
		return true
	}
	return false
}

// GuessStyleAndWeight guesses a font's style and weight from its file name.
func GuessStyleAndWeight(fontfilename string) (xfont.Style, xfont.Weight) {
	fontfilename = path.Base(fontfilename)
	ext := path.Ext(fontfilename)
	fontfilename = strings.ToLower(fontfilename[:len(fontfilename)-len(ext)])
	s := strings.Split(fontfilename, "-")
	if len(s) > 1 {
		switch s[len(s)-1] {
		case "light", "xlight":
			return xfont.StyleNormal, xfont.WeightLight
		case "normal", "medium", "regular", "r":
			return xfont.StyleNormal, xfont.WeightNormal
		case "bold", "b":
			return xfont.StyleNormal, xfont.WeightBold
		case "xbold", "black":
			return xfont.StyleNormal, xfont.WeightExtraBold
		}
	}
	style, weight := xfont.StyleNormal, xfont.WeightNormal
	if strings.Contains(fontfilename, "italic") {
		style = xfont.StyleItalic
	}
	if strings.Contains(fontfilename, "light") {
		weight = xfont.WeightLight
	}
	if strings.Contains(fontfilename, "bold") {
		weight = xfont.WeightBold
	}
	return style, weight
}

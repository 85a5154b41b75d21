package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/npillmayer/fontkit"
	"github.com/npillmayer/fontkit/glyph"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

func runViewCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	f := mustLoadFont(args, flags)
	run := mustLayout(f, args, flags)
	outPath := mustFlagString(flags["output"], "output")
	if outPath == "" {
		fatalf("output path is empty")
	}
	opts := renderOptions{
		Width:      mustFlagInt(flags["width"], "width"),
		Height:     mustFlagInt(flags["height"], "height"),
		PPEM:       mustFlagInt(flags["ppem"], "ppem"),
		ShowBBoxes: mustFlagBool(flags["show-bboxes"], "show-bboxes"),
	}
	if inx := mustFlagInt(flags["glyph"], "glyph"); inx >= 0 {
		if inx >= run.Len() {
			fatalf("glyph index %d out of range (glyphs: %d)", inx, run.Len())
		}
		run = singleGlyphRun(run, inx)
	}
	img, err := renderRun(f, run, opts)
	if err != nil {
		fatalf("render failed: %v", err)
	}
	if err := writePNG(img, outPath); err != nil {
		fatalf("%v", err)
	}
	pterm.Info.Printf("wrote %s (glyphs=%d)\n", outPath, run.Len())
}

type renderOptions struct {
	Width, Height int
	PPEM          int
	ShowBBoxes    bool
}

// singleGlyphRun cuts glyph inx out of a run, keeping its offsets.
func singleGlyphRun(run *fontkit.GlyphRun, inx int) *fontkit.GlyphRun {
	single := *run
	single.Glyphs = run.Glyphs[inx : inx+1]
	single.Positions = run.Positions[inx : inx+1]
	return &single
}

// placedGlyph is a glyph of a run with its origin in design units.
type placedGlyph struct {
	g      *glyph.Glyph
	dx, dy float64
	box    glyph.BBox // control box, translated to the origin
}

// deviceSpace maps design units to pixels. Device y grows downwards.
type deviceSpace struct {
	scale  float64
	ox, oy float64
}

func (d deviceSpace) point(x, y float64) (float32, float32) {
	return float32(d.ox + x*d.scale), float32(d.oy - y*d.scale)
}

// renderRun rasterizes a glyph run, centered in an image of the given size.
// Color glyphs are painted layer by layer; glyphs with bitmaps for the
// requested size are drawn as scaled images.
func renderRun(f *fontkit.Font, run *fontkit.GlyphRun, o renderOptions) (*image.RGBA, error) {
	if o.PPEM <= 0 {
		return nil, errors.New("ppem must be > 0")
	}
	if o.Width <= 0 || o.Height <= 0 {
		return nil, errors.New("width and height must be > 0")
	}
	if run.Len() == 0 {
		return nil, errors.New("empty glyph run")
	}
	placed := make([]placedGlyph, 0, run.Len())
	union := glyph.EmptyBBox()
	var penX, penY float64
	for i, g := range run.Glyphs {
		pos := run.Positions[i]
		pg := placedGlyph{
			g:   g,
			dx:  penX + float64(pos.XOffset),
			dy:  penY + float64(pos.YOffset),
			box: glyph.EmptyBBox(),
		}
		penX += float64(pos.XAdvance)
		penY += float64(pos.YAdvance)
		box, err := g.CBox()
		if err != nil {
			tracer().Errorf("glyph %d has no outline: %v", g.ID, err)
			continue
		}
		if !box.IsEmpty() {
			pg.box = box.Translate(pg.dx, pg.dy)
			union = union.Union(pg.box)
		}
		placed = append(placed, pg)
	}
	dev := deviceSpace{scale: float64(o.PPEM) / float64(f.UnitsPerEm())}
	if union.IsEmpty() {
		dev.oy = float64(o.Height) / 2
	} else {
		dev.ox = (float64(o.Width)-union.Width()*dev.scale)/2 - union.MinX*dev.scale
		dev.oy = (float64(o.Height)-union.Height()*dev.scale)/2 + union.MaxY*dev.scale
	}

	img := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for _, pg := range placed {
		if drawn, err := drawBitmap(img, pg, dev, o.PPEM); err != nil {
			return nil, err
		} else if drawn {
			continue
		}
		layers, err := pg.g.Layers()
		if err != nil {
			return nil, fmt.Errorf("glyph %d: %w", pg.g.ID, err)
		}
		for _, l := range layers {
			p, err := l.Glyph.Path()
			if err != nil {
				return nil, fmt.Errorf("glyph %d: %w", l.Glyph.ID, err)
			}
			fillPath(img, p, pg.dx, pg.dy, dev, l.Color)
		}
	}
	if o.ShowBBoxes {
		red := color.RGBA{R: 255, A: 255}
		for _, pg := range placed {
			if pg.box.IsEmpty() {
				continue
			}
			x0, y0 := dev.point(pg.box.MinX, pg.box.MaxY)
			x1, y1 := dev.point(pg.box.MaxX, pg.box.MinY)
			drawRectOutline(img, int(x0), int(y0), int(x1+0.5), int(y1+0.5), red)
		}
	}
	return img, nil
}

// fillPath fills a glyph path with origin (dx, dy), using the non-zero
// winding rule of the rasterizer.
func fillPath(img *image.RGBA, p *glyph.Path, dx, dy float64, dev deviceSpace, c color.Color) {
	if p == nil || p.IsEmpty() {
		return
	}
	b := img.Bounds()
	rast := vector.NewRasterizer(b.Dx(), b.Dy())
	rast.DrawOp = draw.Over
	pt := func(i int, args []float64) (float32, float32) {
		return dev.point(dx+args[2*i], dy+args[2*i+1])
	}
	for _, cmd := range p.Commands {
		switch cmd.Kind {
		case glyph.MoveTo:
			rast.MoveTo(pt(0, cmd.Args))
		case glyph.LineTo:
			rast.LineTo(pt(0, cmd.Args))
		case glyph.QuadTo:
			x1, y1 := pt(0, cmd.Args)
			x2, y2 := pt(1, cmd.Args)
			rast.QuadTo(x1, y1, x2, y2)
		case glyph.CubicTo:
			x1, y1 := pt(0, cmd.Args)
			x2, y2 := pt(1, cmd.Args)
			x3, y3 := pt(2, cmd.Args)
			rast.CubeTo(x1, y1, x2, y2, x3, y3)
		case glyph.Close:
			rast.ClosePath()
		}
	}
	rast.Draw(img, b, image.NewUniform(c), image.Point{})
}

// drawBitmap draws the bitmap of an SBIX glyph, scaled from its strike to
// ppem. It reports false for glyphs without a bitmap.
func drawBitmap(img *image.RGBA, pg placedGlyph, dev deviceSpace, ppem int) (bool, error) {
	bm, err := pg.g.Image(float64(ppem))
	if err != nil || bm == nil || bm.PPEM == 0 {
		return false, err
	}
	src, _, err := image.Decode(bytes.NewReader(bm.Data))
	if err != nil {
		tracer().Infof("cannot decode %s bitmap of glyph %d: %v", bm.Type, pg.g.ID, err)
		return false, nil
	}
	k := float64(ppem) / float64(bm.PPEM) // strike pixels → device pixels
	x, y := dev.point(pg.dx, pg.dy)
	sb := src.Bounds()
	left := float64(x) + float64(bm.OriginX)*k
	bottom := float64(y) - float64(bm.OriginY)*k
	dst := image.Rect(
		int(left), int(bottom-float64(sb.Dy())*k),
		int(left+float64(sb.Dx())*k), int(bottom),
	)
	xdraw.BiLinear.Scale(img, dst, src, sb, xdraw.Over, nil)
	return true, nil
}

func drawRectOutline(img *image.RGBA, minX int, minY int, maxX int, maxY int, c color.RGBA) {
	if maxX < minX {
		minX, maxX = maxX, minX
	}
	if maxY < minY {
		minY, maxY = maxY, minY
	}
	r := image.Rect(minX, minY, maxX, maxY).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	// top and bottom
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	// left and right
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

func writePNG(img image.Image, outPath string) error {
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("cannot encode png: %w", err)
	}
	return nil
}

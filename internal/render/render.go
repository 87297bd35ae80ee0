// Package render draws layout diagrams on gonum vg canvases.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/Honglongwu/picobio/internal/layout"
	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Formats are the image formats a Painter can write.
var Formats = []string{"svg", "pdf", "png"}

var (
	black     = color.Gray{Y: 0x20}
	grey      = color.Gray{Y: 0xa0}
	lightGrey = color.Gray{Y: 0xd8}
	geneColor = color.RGBA{R: 0x55, G: 0x6b, B: 0x2f, A: 0xff}
	gapColor  = color.White

	// links between assemblies by strand
	plusLink  = color.RGBA{R: 0xb2, G: 0x22, B: 0x22, A: 0xff}
	minusLink = color.RGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff}
)

// Painter renders a diagram to an image. It implements layout.Renderer
// and layout.StackRenderer.
type Painter struct {
	// Format is one of Formats
	Format string

	// Width of the image in points
	Width float64

	// Height of the image in points. Zero derives it from the width and
	// the diagram: square for circular diagrams, tall enough for every
	// fragment lane in linear ones
	Height float64

	// Colors is the number of colors in the fragment palette
	Colors int
}

// Render draws the diagram and writes the image to w.
func (p *Painter) Render(d *layout.Diagram, w io.Writer) error {
	if d == nil {
		return fmt.Errorf("no diagram to render")
	}
	if p.Width <= 0 {
		return fmt.Errorf("image width must be positive, got %v", p.Width)
	}

	width := vg.Length(p.Width)
	height := vg.Length(p.Height)
	if height <= 0 {
		height = width
		if d.Mode == layout.Linear {
			height = linearHeight(len(d.Spans))
		}
	}

	c, err := newCanvas(p.Format, width, height)
	if err != nil {
		return err
	}

	p.draw(c, width, height, d)
	return p.write(c, w)
}

// draw sketches the diagram on c.
func (p *Painter) draw(c vg.Canvas, width, height vg.Length, d *layout.Diagram) {
	s := p.newSketch(c, width, height)
	switch d.Mode {
	case layout.Linear:
		s.linear(d)
	default:
		s.circular(d)
	}
}

// RenderStack draws the tracks of a chained comparison and writes the image to w.
func (p *Painter) RenderStack(st *layout.Stack, w io.Writer) error {
	if st == nil || len(st.Tracks) == 0 {
		return fmt.Errorf("no tracks to render")
	}
	if p.Width <= 0 {
		return fmt.Errorf("image width must be positive, got %v", p.Width)
	}

	width := vg.Length(p.Width)
	height := vg.Length(p.Height)
	if height <= 0 {
		height = stackHeight(len(st.Tracks))
	}

	c, err := newCanvas(p.Format, width, height)
	if err != nil {
		return err
	}

	p.newSketch(c, width, height).stack(st)
	return p.write(c, w)
}

func (p *Painter) newSketch(c vg.Canvas, width, height vg.Length) *sketch {
	s := &sketch{
		Canvas: c,
		width:  width,
		height: height,
		colors: fragmentColors(p.Colors),
		text:   font.DefaultCache.Lookup(plot.DefaultFont, 10),
		small:  font.DefaultCache.Lookup(plot.DefaultFont, 7),
	}
	s.background()
	return s
}

func (p *Painter) write(c vg.CanvasWriterTo, w io.Writer) error {
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s image: %w", p.Format, err)
	}
	return nil
}

// newCanvas returns a canvas that writes the format passed.
func newCanvas(format string, w, h vg.Length) (vg.CanvasWriterTo, error) {
	switch strings.ToLower(format) {
	case "svg", "":
		return vgsvg.New(w, h), nil
	case "pdf":
		return vgpdf.New(w, h), nil
	case "png":
		return vgimg.PngCanvas{Canvas: vgimg.New(w, h)}, nil
	}
	return nil, fmt.Errorf("unknown image format %q: expected one of %s", format, strings.Join(Formats, ", "))
}

// fragmentColors spreads n hues around the color wheel.
func fragmentColors(n int) []color.Color {
	if n < 1 {
		n = 1
	}
	return palette.Rainbow(n, 0, 5.0/6.0, 0.75, 0.85, 1).Colors()
}

// sketch is a canvas being drawn on.
type sketch struct {
	vg.Canvas

	width, height vg.Length
	colors        []color.Color
	text, small   font.Face
}

func (s *sketch) color(i int) color.Color {
	if i < 0 {
		i = -i
	}
	return s.colors[i%len(s.colors)]
}

func (s *sketch) background() {
	s.SetColor(color.White)
	s.Fill(rect(0, 0, s.width, s.height))
}

// label writes text with its left edge at x and its baseline at y.
func (s *sketch) label(f font.Face, x, y vg.Length, text string) {
	s.SetColor(black)
	s.FillString(f, vg.Point{X: x, Y: y}, text)
}

// centered writes text centered on x.
func (s *sketch) centered(f font.Face, x, y vg.Length, text string) {
	s.label(f, x-f.Width(text)/2, y, text)
}

// title writes the reference and a summary of the diagram at the top left.
func (s *sketch) title(d *layout.Diagram) {
	y := s.height - 18
	name := d.Reference
	if d.Desc != "" {
		name += " " + d.Desc
	}
	s.label(s.text, 12, y, name)
	s.label(s.small, 12, y-12, fmt.Sprintf(
		"%s bp, %d fragments placed, %d unplaced",
		humanize.Comma(int64(d.Length)), len(d.Fragments()), len(d.Unplaced),
	))
}

// tickStep returns a round distance between ticks that makes about n ticks.
func tickStep(length, n int) int {
	if length <= 0 || n <= 0 {
		return 1
	}
	raw := float64(length) / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * mag; step >= raw {
			if step < 1 {
				return 1
			}
			return int(step)
		}
	}
	return int(10 * mag)
}

// tickLabel formats a reference position, eg: 1200000 as "1.2 Mb".
func tickLabel(pos int) string {
	if pos == 0 {
		return "0"
	}
	return humanize.SIWithDigits(float64(pos), 1, "b")
}

func rect(x0, y0, x1, y1 vg.Length) vg.Path {
	var p vg.Path
	p.Move(vg.Point{X: x0, Y: y0})
	p.Line(vg.Point{X: x1, Y: y0})
	p.Line(vg.Point{X: x1, Y: y1})
	p.Line(vg.Point{X: x0, Y: y1})
	p.Close()
	return p
}

// identityAlpha fades a link by the identity of its hit: 100% identity is
// half transparent.
func identityAlpha(identity float64) uint8 {
	if identity <= 0 {
		return 0
	}
	if identity > 100 {
		identity = 100
	}
	return uint8(math.Round(255 * identity / 200))
}

// link is the outline of a band from [x0, x1] at y0 to [x2, x3] at y1.
// Twisted bands cross over, joining x0 to x3 and x1 to x2.
func link(x0, x1, y0, x2, x3, y1 vg.Length, twist bool) vg.Path {
	if twist {
		x2, x3 = x3, x2
	}
	var p vg.Path
	p.Move(vg.Point{X: x0, Y: y0})
	p.Line(vg.Point{X: x1, Y: y0})
	p.Line(vg.Point{X: x3, Y: y1})
	p.Line(vg.Point{X: x2, Y: y1})
	p.Close()
	return p
}

// translucent returns c with alpha a.
func translucent(c color.Color, a uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a}
}

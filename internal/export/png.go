package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/username/year-dots/internal/dotfont"
	"github.com/username/year-dots/internal/yearview"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Palette colors a poster
type Palette struct {
	Background color.RGBA
	Past       color.RGBA
	Future     color.RGBA
	Today      color.RGBA
	Marked     color.RGBA
	Counter    color.RGBA
	Text       color.RGBA
}

var (
	DarkPalette = Palette{
		Background: color.RGBA{0x11, 0x18, 0x27, 0xff},
		Past:       color.RGBA{0x9c, 0xa3, 0xaf, 0xff},
		Future:     color.RGBA{0x37, 0x41, 0x51, 0xff},
		Today:      color.RGBA{0xfb, 0xbf, 0x24, 0xff},
		Marked:     color.RGBA{0x4a, 0xde, 0x80, 0xff},
		Counter:    color.RGBA{0xf9, 0xfa, 0xfb, 0xff},
		Text:       color.RGBA{0xd1, 0xd5, 0xdb, 0xff},
	}
	LightPalette = Palette{
		Background: color.RGBA{0xff, 0xff, 0xff, 0xff},
		Past:       color.RGBA{0x6b, 0x72, 0x80, 0xff},
		Future:     color.RGBA{0xd1, 0xd5, 0xdb, 0xff},
		Today:      color.RGBA{0xd9, 0x77, 0x06, 0xff},
		Marked:     color.RGBA{0x16, 0xa3, 0x4a, 0xff},
		Counter:    color.RGBA{0x11, 0x18, 0x27, 0xff},
		Text:       color.RGBA{0x37, 0x41, 0x51, 0xff},
	}
)

// PNGOptions controls the poster layout
type PNGOptions struct {
	PerRow  int // dots per row
	DotSize int // dot diameter in pixels
	Gap     int // pixels between dots
	Margin  int
	Palette Palette
	Caption string
}

func (o PNGOptions) withDefaults() PNGOptions {
	if o.PerRow <= 0 {
		o.PerRow = 20
	}
	if o.DotSize <= 0 {
		o.DotSize = 16
	}
	if o.Gap <= 0 {
		o.Gap = 6
	}
	if o.Margin <= 0 {
		o.Margin = 24
	}
	if o.Palette == (Palette{}) {
		o.Palette = DarkPalette
	}
	return o
}

// PosterLayout is the pixel geometry of a poster
type PosterLayout struct {
	Width, Height int
	GridRows      int
	CounterTop    int
	CounterCell   int
	CaptionBase   int
}

// Layout computes the poster geometry for n days and a counter grid
func Layout(n int, counter dotfont.Grid, opts PNGOptions) PosterLayout {
	opts = opts.withDefaults()
	pitch := opts.DotSize + opts.Gap

	l := PosterLayout{GridRows: (n + opts.PerRow - 1) / opts.PerRow}
	l.Width = 2*opts.Margin + opts.PerRow*pitch - opts.Gap
	gridHeight := l.GridRows*pitch - opts.Gap
	if l.GridRows == 0 {
		gridHeight = 0
	}

	l.CounterCell = opts.DotSize / 2
	if counter.Cols > 0 && counter.Cols*l.CounterCell > l.Width-2*opts.Margin {
		l.CounterCell = (l.Width - 2*opts.Margin) / counter.Cols
	}
	if l.CounterCell < 1 {
		l.CounterCell = 1
	}
	l.CounterTop = opts.Margin + gridHeight + opts.Margin
	counterHeight := counter.Rows * l.CounterCell

	lineHeight := basicfont.Face7x13.Metrics().Height.Ceil()
	l.CaptionBase = l.CounterTop + counterHeight + opts.Margin/2 + lineHeight
	l.Height = l.CaptionBase + opts.Margin
	return l
}

// PNG draws a poster of days with the counter below and writes it as PNG
func PNG(w io.Writer, days []yearview.Day, counter dotfont.Grid, opts PNGOptions) error {
	opts = opts.withDefaults()
	l := Layout(len(days), counter, opts)
	p := opts.Palette

	img := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))
	fillRect(img, img.Bounds(), p.Background)

	pitch := opts.DotSize + opts.Gap
	for i, d := range days {
		x := opts.Margin + (i%opts.PerRow)*pitch
		y := opts.Margin + (i/opts.PerRow)*pitch
		switch {
		case d.Marked:
			drawDot(img, x, y, opts.DotSize, p.Marked, true)
		case d.Phase == yearview.Today:
			drawDot(img, x, y, opts.DotSize, p.Today, false)
		case d.Phase == yearview.Past:
			drawDot(img, x, y, opts.DotSize, p.Past, false)
		default:
			drawDot(img, x, y, opts.DotSize, p.Future, false)
		}
	}

	counterLeft := (l.Width - counter.Cols*l.CounterCell) / 2
	for r := 0; r < counter.Rows; r++ {
		for c := 0; c < counter.Cols; c++ {
			if !counter.At(r, c) {
				continue
			}
			x := counterLeft + c*l.CounterCell
			y := l.CounterTop + r*l.CounterCell
			fillRect(img, image.Rect(x, y, x+l.CounterCell, y+l.CounterCell), p.Counter)
		}
	}

	if opts.Caption != "" {
		drawText(img, opts.Margin, l.CaptionBase, opts.Caption, p.Text)
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode poster: %w", err)
	}
	return nil
}

func drawDot(img *image.RGBA, x, y, size int, c color.RGBA, filled bool) {
	r := float64(size) / 2
	cx, cy := float64(x)+r, float64(y)+r
	inner := (r - 2) * (r - 2)
	outer := r * r

	for py := y; py < y+size; py++ {
		for px := x; px < x+size; px++ {
			dx, dy := float64(px)+0.5-cx, float64(py)+0.5-cy
			d2 := dx*dx + dy*dy
			if d2 > outer {
				continue
			}
			if filled || d2 >= inner {
				img.SetRGBA(px, py, c)
			}
		}
	}
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func drawText(img *image.RGBA, x, y int, s string, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

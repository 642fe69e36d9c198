package decoder

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"time"

	"golang.org/x/image/draw"
)

const (
	// DefaultMaxPixels bounds width*height*frames of a decoded GIF.
	DefaultMaxPixels = 256 << 20

	minDelay     = 20 * time.Millisecond
	defaultDelay = 100 * time.Millisecond
)

// GIFDecoder plays a GIF decoded with image/gif, compositing frames onto
// a persistent canvas.
type GIFDecoder struct {
	g      *gif.GIF
	width  int
	height int

	cursor   int
	rendered int
	canvas   *image.RGBA
	previous *image.RGBA
}

// NewGIFFactory returns a Factory producing GIF decoders limited to
// maxPixels. A non-positive maxPixels selects DefaultMaxPixels.
func NewGIFFactory(maxPixels int) Factory {
	return func(data []byte) (Decoder, error) {
		return NewGIFDecoder(data, maxPixels)
	}
}

// NewGIFDecoder decodes every frame of data up front.
func NewGIFDecoder(data []byte, maxPixels int) (*GIFDecoder, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, err := gif.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty logical screen %dx%d", ErrInvalidFormat, cfg.Width, cfg.Height)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d canvas", ErrOutOfMemory, cfg.Width, cfg.Height)
	}

	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrInvalidFormat)
	}
	if cfg.Width*cfg.Height*len(g.Image) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d x %d frames", ErrOutOfMemory, cfg.Width, cfg.Height, len(g.Image))
	}

	return &GIFDecoder{
		g:        g,
		width:    cfg.Width,
		height:   cfg.Height,
		cursor:   -1,
		rendered: -1,
		canvas:   image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
	}, nil
}

func (d *GIFDecoder) FrameCount() int { return len(d.g.Image) }

func (d *GIFDecoder) Width() int { return d.width }

func (d *GIFDecoder) Height() int { return d.height }

func (d *GIFDecoder) Advance() {
	d.cursor = (d.cursor + 1) % len(d.g.Image)
}

// NextDelay applies the browser convention of playing delays under 20ms
// at 100ms.
func (d *GIFDecoder) NextDelay() time.Duration {
	if d.cursor < 0 || d.cursor >= len(d.g.Delay) {
		return 0
	}
	delay := time.Duration(d.g.Delay[d.cursor]) * 10 * time.Millisecond
	if delay < minDelay {
		return defaultDelay
	}
	return delay
}

// NextFrame composites up to the cursor and returns a copy of the canvas.
// The returned image is never touched by the decoder again.
func (d *GIFDecoder) NextFrame() (*Frame, error) {
	i := d.cursor
	if i < 0 || i >= len(d.g.Image) {
		return nil, fmt.Errorf("%w: cursor %d out of range [0,%d)", ErrDecode, i, len(d.g.Image))
	}

	if i < d.rendered {
		d.reset()
	}
	for j := d.rendered + 1; j <= i; j++ {
		if err := d.composite(j); err != nil {
			d.reset()
			return nil, err
		}
	}

	out := image.NewRGBA(d.canvas.Bounds())
	copy(out.Pix, d.canvas.Pix)
	return &Frame{Image: out, Index: i, Delay: d.NextDelay()}, nil
}

func (d *GIFDecoder) reset() {
	clear(d.canvas.Pix)
	d.previous = nil
	d.rendered = -1
}

func (d *GIFDecoder) composite(j int) error {
	if j > 0 {
		d.dispose(j - 1)
	}

	src := d.g.Image[j]
	r := src.Bounds()
	if !r.In(d.canvas.Bounds()) {
		return fmt.Errorf("%w: frame %d bounds %v outside %dx%d", ErrDecode, j, r, d.width, d.height)
	}
	if d.disposal(j) == gif.DisposalPrevious {
		d.previous = image.NewRGBA(d.canvas.Bounds())
		copy(d.previous.Pix, d.canvas.Pix)
	}
	draw.Draw(d.canvas, r, src, r.Min, draw.Over)
	d.rendered = j
	return nil
}

func (d *GIFDecoder) dispose(j int) {
	switch d.disposal(j) {
	case gif.DisposalBackground:
		r := d.g.Image[j].Bounds().Intersect(d.canvas.Bounds())
		draw.Draw(d.canvas, r, image.Transparent, image.Point{}, draw.Src)
	case gif.DisposalPrevious:
		if d.previous != nil {
			copy(d.canvas.Pix, d.previous.Pix)
			d.previous = nil
		}
	}
}

func (d *GIFDecoder) disposal(j int) byte {
	if j < len(d.g.Disposal) {
		return d.g.Disposal[j]
	}
	return 0
}

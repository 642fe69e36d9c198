package decoder

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPalette = color.Palette{
	color.Transparent,
	color.RGBA{R: 0xff, A: 0xff},
	color.RGBA{G: 0xff, A: 0xff},
	color.RGBA{B: 0xff, A: 0xff},
}

// encodeGIF builds a 4x4 animation; frame i is a 2x2 square of palette
// colour i+1 at offset (i,i).
func encodeGIF(t *testing.T, delays []int, disposal []byte) []byte {
	t.Helper()
	g := &gif.GIF{
		Config: image.Config{Width: 4, Height: 4, ColorModel: testPalette},
	}
	for i, d := range delays {
		r := image.Rect(i, i, i+2, i+2)
		if r.Max.X > 4 {
			r = image.Rect(0, 0, 2, 2)
		}
		m := image.NewPaletted(r, testPalette)
		for j := range m.Pix {
			m.Pix[j] = uint8(i%3 + 1)
		}
		g.Image = append(g.Image, m)
		g.Delay = append(g.Delay, d)
	}
	if disposal != nil {
		g.Disposal = disposal
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

func TestNewGIFDecoder(t *testing.T) {
	d, err := NewGIFDecoder(encodeGIF(t, []int{10, 5, 20}, nil), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, d.FrameCount())
	assert.Equal(t, 4, d.Width())
	assert.Equal(t, 4, d.Height())
}

func TestNewGIFDecoder_Errors(t *testing.T) {
	data := encodeGIF(t, []int{10, 10}, nil)

	tests := []struct {
		name      string
		data      []byte
		maxPixels int
		want      error
	}{
		{name: "garbage", data: []byte("not a gif"), want: ErrInvalidFormat},
		{name: "empty", data: nil, want: ErrInvalidFormat},
		{name: "truncated", data: data[:len(data)/2], want: ErrInvalidFormat},
		{name: "canvas over budget", data: data, maxPixels: 15, want: ErrOutOfMemory},
		{name: "frames over budget", data: data, maxPixels: 20, want: ErrOutOfMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewGIFDecoder(tt.data, tt.maxPixels)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, d)
		})
	}
}

func TestGIFDecoder_NextFrameBeforeAdvance(t *testing.T) {
	d, err := NewGIFDecoder(encodeGIF(t, []int{10}, nil), 0)
	require.NoError(t, err)

	_, err = d.NextFrame()
	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, time.Duration(0), d.NextDelay())
}

func TestGIFDecoder_AdvanceWraps(t *testing.T) {
	d, err := NewGIFDecoder(encodeGIF(t, []int{10, 5, 20}, nil), 0)
	require.NoError(t, err)

	var got []int
	for range 7 {
		d.Advance()
		f, err := d.NextFrame()
		require.NoError(t, err)
		got = append(got, f.Index)
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, got)
}

func TestGIFDecoder_NextDelay(t *testing.T) {
	d, err := NewGIFDecoder(encodeGIF(t, []int{10, 5, 1, 0}, nil), 0)
	require.NoError(t, err)

	want := []time.Duration{
		100 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		100 * time.Millisecond,
	}
	for i, w := range want {
		d.Advance()
		assert.Equal(t, w, d.NextDelay(), "frame %d", i)
	}
}

func TestGIFDecoder_Compositing(t *testing.T) {
	red := color.RGBA{R: 0xff, A: 0xff}
	green := color.RGBA{G: 0xff, A: 0xff}

	t.Run("none keeps previous pixels", func(t *testing.T) {
		d, err := NewGIFDecoder(encodeGIF(t, []int{10, 10}, []byte{gif.DisposalNone, gif.DisposalNone}), 0)
		require.NoError(t, err)

		d.Advance()
		d.Advance()
		f, err := d.NextFrame()
		require.NoError(t, err)
		assert.Equal(t, red, f.Image.RGBAAt(0, 0))
		assert.Equal(t, green, f.Image.RGBAAt(1, 1))
	})

	t.Run("background clears the frame area", func(t *testing.T) {
		d, err := NewGIFDecoder(encodeGIF(t, []int{10, 10}, []byte{gif.DisposalBackground, gif.DisposalNone}), 0)
		require.NoError(t, err)

		d.Advance()
		d.Advance()
		f, err := d.NextFrame()
		require.NoError(t, err)
		assert.Equal(t, color.RGBA{}, f.Image.RGBAAt(0, 0))
		assert.Equal(t, green, f.Image.RGBAAt(1, 1))
	})

	t.Run("previous restores the canvas", func(t *testing.T) {
		d, err := NewGIFDecoder(encodeGIF(t, []int{10, 10, 10}, []byte{gif.DisposalNone, gif.DisposalPrevious, gif.DisposalNone}), 0)
		require.NoError(t, err)

		d.Advance()
		d.Advance()
		d.Advance()
		f, err := d.NextFrame()
		require.NoError(t, err)
		// Frame 1 (green at 1,1) is undone before frame 2 (blue at 2,2).
		assert.Equal(t, red, f.Image.RGBAAt(1, 1))
		assert.Equal(t, color.RGBA{B: 0xff, A: 0xff}, f.Image.RGBAAt(2, 2))
	})

	t.Run("wrap resets the canvas", func(t *testing.T) {
		d, err := NewGIFDecoder(encodeGIF(t, []int{10, 10}, nil), 0)
		require.NoError(t, err)

		var f *Frame
		for range 3 {
			d.Advance()
			f, err = d.NextFrame()
			require.NoError(t, err)
		}
		assert.Equal(t, 0, f.Index)
		assert.Equal(t, color.RGBA{}, f.Image.RGBAAt(2, 2))
		assert.Equal(t, red, f.Image.RGBAAt(1, 1))
	})
}

func TestGIFDecoder_FramesAreIndependentCopies(t *testing.T) {
	d, err := NewGIFDecoder(encodeGIF(t, []int{10, 10}, []byte{gif.DisposalBackground, gif.DisposalNone}), 0)
	require.NoError(t, err)

	d.Advance()
	first, err := d.NextFrame()
	require.NoError(t, err)
	before := append([]byte(nil), first.Image.Pix...)

	d.Advance()
	_, err = d.NextFrame()
	require.NoError(t, err)

	assert.Equal(t, before, first.Image.Pix)
}

func TestNewGIFFactory(t *testing.T) {
	f := NewGIFFactory(0)
	d, err := f(encodeGIF(t, []int{10}, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, d.FrameCount())
}

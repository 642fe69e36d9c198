package decoder

import (
	"errors"
	"image"
	"time"
)

var (
	// ErrDecode reports a malformed or truncated frame at the cursor.
	ErrDecode = errors.New("decoder: bad frame")
	// ErrInvalidFormat reports bytes that are not a playable animation.
	ErrInvalidFormat = errors.New("decoder: invalid format")
	// ErrOutOfMemory reports an animation larger than the pixel budget.
	ErrOutOfMemory = errors.New("decoder: pixel budget exceeded")
)

// Frame is one decoded image of an animation.
type Frame struct {
	Image *image.RGBA
	Index int
	Delay time.Duration
}

// Decoder is a stateful cursor over the frames of an animation.
// A Decoder is not safe for concurrent use.
type Decoder interface {
	FrameCount() int
	// Advance moves the cursor to the next frame, wrapping after the last.
	Advance()
	// NextFrame decodes the frame at the cursor.
	NextFrame() (*Frame, error)
	// NextDelay is the display delay of the frame at the cursor.
	NextDelay() time.Duration
	Width() int
	Height() int
}

// Factory builds a Decoder from raw bytes.
type Factory func(data []byte) (Decoder, error)

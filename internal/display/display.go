package display

import (
	"github.com/junsooki/AirGIF/internal/decoder"
	"github.com/junsooki/AirGIF/internal/input"
)

// Display renders frames and runs the foreground loop.
type Display interface {
	Run() error
}

// FrameSource provides the latest published frame.
type FrameSource interface {
	CurrentFrame() *decoder.Frame
}

// CommandHandler handles a user command. Returning input.ErrQuit ends Run.
type CommandHandler func(cmd input.Command) error

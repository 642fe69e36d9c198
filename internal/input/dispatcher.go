package input

import (
	"errors"
	"time"

	"github.com/junsooki/AirGIF/internal/logger"
)

// ErrQuit is returned by Dispatch for CommandQuit.
var ErrQuit = errors.New("input: quit")

const (
	speedStep = 10 * time.Millisecond
	// minOverride keeps a user-set override from spinning the pump.
	minOverride  = 10 * time.Millisecond
	baseOverride = 100 * time.Millisecond
)

// Playback is the part of the player that commands drive.
type Playback interface {
	Start()
	Stop()
	Clear()
	IsAnimating() bool
	SetFrameOverride(d time.Duration)
	FrameOverride() time.Duration
}

// Dispatcher applies commands to a Playback.
type Dispatcher struct {
	p      Playback
	reload func() error
	log    *logger.Logger
	paused bool
}

// NewDispatcher returns a Dispatcher. reload reloads the current animation
// and may be nil.
func NewDispatcher(p Playback, reload func() error, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{p: p, reload: reload, log: log.Component("input")}
}

// Paused reports whether the user stopped playback.
func (d *Dispatcher) Paused() bool { return d.paused }

func (d *Dispatcher) Dispatch(c Command) error {
	d.log.Debug().Str("cmd", string(c)).Msg("command")

	switch c {
	case CommandToggle:
		if d.p.IsAnimating() {
			d.paused = true
			d.p.Stop()
		} else {
			d.paused = false
			d.p.Start()
		}
	case CommandClear:
		d.paused = true
		d.p.Clear()
	case CommandReload:
		if d.reload == nil {
			return nil
		}
		if err := d.reload(); err != nil {
			return err
		}
		if !d.paused {
			d.p.Start()
		}
	case CommandFaster:
		d.p.SetFrameOverride(max(d.override()-speedStep, minOverride))
	case CommandSlower:
		d.p.SetFrameOverride(d.override() + speedStep)
	case CommandResetSpeed:
		d.p.SetFrameOverride(-1)
	case CommandResume:
		if !d.paused && !d.p.IsAnimating() {
			d.p.Start()
		}
	case CommandQuit:
		return ErrQuit
	}
	return nil
}

func (d *Dispatcher) override() time.Duration {
	if o := d.p.FrameOverride(); o >= 0 {
		return o
	}
	return baseOverride
}

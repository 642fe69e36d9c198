// Package player plays an animation on a background pump goroutine and
// hands finished frames to a foreground consumer.
//
// All Player methods are safe to call from any goroutine, but the host is
// expected to drive them from the same foreground goroutine that drains the
// Poster, as a UI toolkit would.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/junsooki/AirGIF/internal/decoder"
	"github.com/junsooki/AirGIF/internal/logger"
	"github.com/junsooki/AirGIF/internal/looper"
)

// NoOverride leaves pacing to the decoder's per-frame delays.
const NoOverride time.Duration = -1

// ErrNoDecoder is returned by accessors called before a successful Load.
var ErrNoDecoder = errors.New("player: no decoder loaded")

// FrameHook transforms each decoded frame before it is published.
type FrameHook func(*decoder.Frame) *decoder.Frame

// Player is one playback session.
type Player struct {
	factory decoder.Factory
	post    looper.Poster
	log     *logger.Logger

	mu          sync.Mutex
	dec         decoder.Decoder
	animating   bool
	shouldClear bool
	generation  uint64
	override    time.Duration
	hook        FrameHook
	pump        *pump
	last        *pump // most recently spawned, possibly still exiting

	visible     func() bool
	autoSuspend bool
	onRedraw    func(*decoder.Frame)

	raw           atomic.Pointer[decoder.Frame]
	published     atomic.Pointer[decoder.Frame]
	redrawPending atomic.Bool
}

type pump struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an idle player. Redraw notifications and teardown are posted
// to post.
func New(factory decoder.Factory, post looper.Poster, log *logger.Logger) *Player {
	if log == nil {
		log = logger.Nop()
	}
	return &Player{
		factory:     factory,
		post:        post,
		log:         log.Component("player"),
		override:    NoOverride,
		autoSuspend: true,
	}
}

// Load replaces the decoder with one built from data. On failure the player
// is left without a decoder and the error is returned. If the player is
// animating, a pump is started on the new decoder.
func (p *Player) Load(data []byte) error {
	dec, err := p.factory(data)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopPumpLocked()

	if err != nil {
		p.dec = nil
		p.log.Error().Err(err).Int("bytes", len(data)).Msg("load failed")
		return fmt.Errorf("player: load: %w", err)
	}

	dec.Advance()
	p.dec = dec
	p.generation++
	p.shouldClear = false
	p.log.Debug().
		Int("width", dec.Width()).
		Int("height", dec.Height()).
		Msg("loaded")

	if p.canStartLocked() {
		p.spawnLocked()
	}
	return nil
}

// Start marks the player as animating and starts a pump if none is live.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.animating = true
	if p.canStartLocked() {
		p.spawnLocked()
	}
}

// Stop asks the pump to exit and returns without waiting for it.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.animating = false
	p.stopPumpLocked()
}

// Clear stops playback and schedules release of the decoder and both frame
// slots on the foreground. A new Load is needed to play again.
func (p *Player) Clear() {
	p.mu.Lock()
	p.animating = false
	p.shouldClear = true
	p.stopPumpLocked()
	gen := p.generation
	p.mu.Unlock()

	teardown := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.generation != gen {
			return
		}
		p.teardownLocked()
	}
	if !p.post.Post(teardown) {
		teardown()
	}
}

// Close stops playback and waits for the pump to exit or ctx to be done.
func (p *Player) Close(ctx context.Context) error {
	p.mu.Lock()
	h := p.last
	p.animating = false
	p.stopPumpLocked()
	p.mu.Unlock()

	if h == nil {
		return nil
	}
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Player) IsAnimating() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.animating
}

// SetFrameOverride paces every frame at d. A negative d restores the
// decoder's own delays. A running pump picks it up on its next frame.
func (p *Player) SetFrameOverride(d time.Duration) {
	if d < 0 {
		d = NoOverride
	}
	p.mu.Lock()
	p.override = d
	p.mu.Unlock()
}

// FrameOverride returns the pacing override, or NoOverride.
func (p *Player) FrameOverride() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.override
}

// Width of the loaded animation.
func (p *Player) Width() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dec == nil {
		return 0, ErrNoDecoder
	}
	return p.dec.Width(), nil
}

// Height of the loaded animation.
func (p *Player) Height() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dec == nil {
		return 0, ErrNoDecoder
	}
	return p.dec.Height(), nil
}

// SetFrameHook installs hook, replacing any previous one. nil removes it.
func (p *Player) SetFrameHook(hook FrameHook) {
	p.mu.Lock()
	p.hook = hook
	p.mu.Unlock()
}

// SetVisibility sets the predicate consulted before each redraw.
func (p *Player) SetVisibility(visible func() bool) {
	p.mu.Lock()
	p.visible = visible
	p.mu.Unlock()
}

// SetAutoSuspend controls whether an invisible consumer stops playback.
// It is on by default.
func (p *Player) SetAutoSuspend(enabled bool) {
	p.mu.Lock()
	p.autoSuspend = enabled
	p.mu.Unlock()
}

// OnRedraw registers the callback run on the foreground for each redraw.
func (p *Player) OnRedraw(cb func(*decoder.Frame)) {
	p.mu.Lock()
	p.onRedraw = cb
	p.mu.Unlock()
}

// CurrentFrame is the latest published frame, or nil.
func (p *Player) CurrentFrame() *decoder.Frame {
	return p.published.Load()
}

func (p *Player) canStartLocked() bool {
	return p.animating && p.dec != nil && p.pump == nil
}

func (p *Player) spawnLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	h := &pump{cancel: cancel, done: make(chan struct{})}
	prev := p.last
	p.pump, p.last = h, h
	dec := p.dec

	p.log.Debug().Msg("pump started")
	go func() {
		defer close(h.done)
		// A stopped pump may still be inside the decoder.
		if prev != nil {
			<-prev.done
		}
		if ctx.Err() != nil {
			return
		}
		p.run(ctx, h, dec)
	}()
}

func (p *Player) stopPumpLocked() {
	if p.pump == nil {
		return
	}
	p.pump.cancel()
	p.pump = nil
	p.log.Debug().Msg("pump stopped")
}

func (p *Player) teardownLocked() {
	p.stopPumpLocked()
	p.dec = nil
	p.raw.Store(nil)
	p.published.Store(nil)
	p.shouldClear = false
	p.log.Debug().Msg("cleared")
}

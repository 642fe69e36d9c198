package player

import (
	"context"
	"time"

	"github.com/junsooki/AirGIF/internal/decoder"
)

// run is the pump loop. It owns dec until ctx is cancelled.
func (p *Player) run(ctx context.Context, h *pump, dec decoder.Decoder) {
	p.mu.Lock()
	if ctx.Err() == nil && p.shouldClear {
		p.teardownLocked()
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	n := dec.FrameCount()
	if n <= 0 {
		p.log.Warn().Msg("no frames to play")
		p.mu.Lock()
		if p.pump == h {
			p.pump = nil
		}
		p.mu.Unlock()
		return
	}
	for p.active(ctx) {
		for i := 0; i < n; i++ {
			if !p.active(ctx) {
				break
			}

			var decodeTime time.Duration
			start := time.Now()
			raw, err := dec.NextFrame()
			if err != nil {
				p.log.Warn().Err(err).Int("frame", i).Msg("frame skipped")
			} else {
				decodeTime = time.Since(start).Truncate(time.Millisecond)
				out := raw
				if hook := p.frameHook(); hook != nil {
					out = hook(raw)
				}
				if !p.publish(ctx, raw, out) {
					break
				}
			}

			if !p.active(ctx) {
				break
			}
			dec.Advance()

			// The next frame's delay is reduced by this frame's decode time.
			delay := dec.NextDelay() - decodeTime
			if override := p.FrameOverride(); override >= 0 {
				delay = override
			}
			if delay > 0 && !sleep(ctx, delay) {
				break
			}
		}
	}
}

func (p *Player) active(ctx context.Context) bool {
	return ctx.Err() == nil && p.IsAnimating()
}

func (p *Player) frameHook() FrameHook {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hook
}

// publish stores the frame and posts a redraw, unless playback was stopped
// since the decode. Holding mu keeps it ordered against Stop and teardown.
func (p *Player) publish(ctx context.Context, raw, out *decoder.Frame) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ctx.Err() != nil || !p.animating {
		return false
	}
	p.raw.Store(raw)
	if out == nil {
		return true
	}
	p.published.Store(out)

	if p.redrawPending.CompareAndSwap(false, true) {
		if !p.post.Post(p.handleRedraw) {
			p.redrawPending.Store(false)
		}
	}
	return true
}

// handleRedraw runs on the foreground.
func (p *Player) handleRedraw() {
	p.redrawPending.Store(false)

	p.mu.Lock()
	visible, autoSuspend, cb := p.visible, p.autoSuspend, p.onRedraw
	cleared := p.shouldClear
	p.mu.Unlock()

	// Queued ahead of a pending teardown.
	if cleared {
		return
	}

	if autoSuspend && visible != nil && !visible() {
		p.log.Debug().Msg("not visible, suspending")
		p.Stop()
	}

	if f := p.published.Load(); f != nil && cb != nil {
		cb(f)
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

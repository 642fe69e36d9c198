// Package looper is a FIFO task queue owned by a single foreground
// goroutine, the way a UI toolkit's main thread drains posted work.
package looper

import (
	"context"
	"sync"
)

// Poster accepts work for the foreground goroutine. Post must not run task
// on the calling goroutine.
type Poster interface {
	Post(task func()) bool
}

type Looper struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
}

func New() *Looper {
	return &Looper{wake: make(chan struct{}, 1)}
}

// Post queues task without blocking. It reports false once the looper is
// closed.
func (l *Looper) Post(task func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Drain runs every task queued so far on the calling goroutine and returns
// how many ran. Tasks posted while draining run on the next call.
func (l *Looper) Drain() int {
	l.mu.Lock()
	tasks := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, task := range tasks {
		task()
	}
	return len(tasks)
}

// Pending is the number of queued tasks.
func (l *Looper) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Run drains on the calling goroutine until ctx is done or the looper is
// closed.
func (l *Looper) Run(ctx context.Context) {
	for {
		l.Drain()
		if l.isClosed() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

// Close rejects further posts and wakes Run. Queued tasks are dropped.
func (l *Looper) Close() {
	l.mu.Lock()
	l.closed = true
	l.queue = nil
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Looper) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

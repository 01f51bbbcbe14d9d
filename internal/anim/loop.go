package anim

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Loop drives the animator at a fixed frame rate and fans frames out to
// subscribers (the WebSocket layer). Network and audio work never runs on
// this goroutine; the animator only reads the shared store, so the loop keeps
// ticking at full rate regardless of pending requests.
type Loop struct {
	animator *Animator
	interval time.Duration
	logger   zerolog.Logger

	mu   sync.Mutex
	subs map[chan Frame]struct{}
}

// NewLoop creates a render loop at the given frames per second.
func NewLoop(animator *Animator, fps int, logger zerolog.Logger) *Loop {
	if fps <= 0 {
		fps = 60
	}
	return &Loop{
		animator: animator,
		interval: time.Second / time.Duration(fps),
		logger:   logger.With().Str("component", "frame-loop").Logger(),
		subs:     make(map[chan Frame]struct{}),
	}
}

// Subscribe registers a frame consumer. Slow consumers drop frames rather
// than stalling the loop.
func (l *Loop) Subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, 1)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		if _, ok := l.subs[ch]; ok {
			delete(l.subs, ch)
			close(ch)
		}
		l.mu.Unlock()
	}
	return ch, cancel
}

// Run ticks until the context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := time.Now()
	l.logger.Info().Dur("interval", l.interval).Msg("Frame loop started")

	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("Frame loop stopped")
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			frame := l.animator.Step(dt)
			l.broadcast(frame)
		}
	}
}

func (l *Loop) broadcast(frame Frame) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs {
		select {
		case ch <- frame:
		default:
			// Drop the stale frame; the subscriber gets the next one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- frame:
			default:
			}
		}
	}
}

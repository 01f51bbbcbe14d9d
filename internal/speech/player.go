package speech

import (
	"context"
	"errors"
	"time"

	"github.com/Amandubey211/AVA.AI/internal/state"
)

// ErrPlayback wraps failures while an utterance is playing.
var ErrPlayback = errors.New("speech playback failed")

// Player takes a started audio handle and blocks until the utterance has
// played out or the context is cancelled. The frame loop reads playback
// position off the handle itself; the player only owns the lifetime.
type Player interface {
	Play(ctx context.Context, handle *state.AudioHandle) error
}

// ClockedPlayer paces playback in wall time. Audio bytes are delivered to
// clients over the API; the runtime just advances the playback clock so
// lip-sync resolves against real elapsed time.
type ClockedPlayer struct {
	// Sleep is swappable in tests. Defaults to a timer honoring ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewClockedPlayer() *ClockedPlayer {
	return &ClockedPlayer{}
}

func (p *ClockedPlayer) Play(ctx context.Context, handle *state.AudioHandle) error {
	if handle == nil {
		return ErrPlayback
	}
	handle.Start()

	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	if err := sleep(ctx, handle.Duration); err != nil {
		return err
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

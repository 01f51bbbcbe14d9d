package anim

import (
	"math/rand"
	"sync"
	"time"
)

// Blink timing: closures of ~100ms at random 1-5s gaps.
const (
	blinkHold   = 100 * time.Millisecond
	blinkGapMin = 1 * time.Second
	blinkGapMax = 5 * time.Second
)

// Blinker schedules eye closures. It is driven from the frame loop rather
// than a timer goroutine so tests can step it with a fake clock.
type Blinker struct {
	mu        sync.Mutex
	rng       *rand.Rand
	nextAt    time.Time
	openAt    time.Time
	blinking  bool
	scheduled bool
}

// NewBlinker creates a blinker with an injectable random source. A nil rng
// falls back to a time-seeded one.
func NewBlinker(rng *rand.Rand) *Blinker {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Blinker{rng: rng}
}

func (b *Blinker) gap() time.Duration {
	return blinkGapMin + time.Duration(b.rng.Int63n(int64(blinkGapMax-blinkGapMin)))
}

// Update advances the schedule and reports whether the eyes are closed at
// now.
func (b *Blinker) Update(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.scheduled {
		b.nextAt = now.Add(b.gap())
		b.scheduled = true
	}

	if b.blinking {
		if now.After(b.openAt) {
			b.blinking = false
			b.nextAt = now.Add(b.gap())
		}
		return b.blinking
	}

	if now.After(b.nextAt) {
		b.blinking = true
		b.openAt = now.Add(blinkHold)
	}
	return b.blinking
}

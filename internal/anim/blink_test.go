package anim

import (
	"math/rand"
	"testing"
	"time"
)

func TestBlinkerHoldsThenReleases(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := NewBlinker(rng)

	start := time.Now()
	if b.Update(start) {
		t.Fatal("blinking immediately after creation")
	}

	// Walk forward until the first closure; it must arrive within the
	// maximum gap.
	now := start
	var blinkAt time.Time
	for i := 0; i < 600; i++ {
		now = now.Add(10 * time.Millisecond)
		if b.Update(now) {
			blinkAt = now
			break
		}
	}
	if blinkAt.IsZero() {
		t.Fatal("no blink within 6s")
	}
	if gap := blinkAt.Sub(start); gap > blinkGapMax+10*time.Millisecond {
		t.Errorf("first blink after %v, beyond max gap", gap)
	}

	// Eyes stay shut for the hold duration, then reopen.
	if !b.Update(blinkAt.Add(blinkHold / 2)) {
		t.Error("eyes opened before hold elapsed")
	}
	if b.Update(blinkAt.Add(blinkHold + 20*time.Millisecond)) {
		t.Error("eyes still shut after hold elapsed")
	}
}

func TestBlinkerReschedulesAfterBlink(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := NewBlinker(rng)

	now := time.Now()
	blinks := 0
	for i := 0; i < 3000; i++ { // 30s of 10ms frames
		now = now.Add(10 * time.Millisecond)
		closed := b.Update(now)
		if closed && !b.Update(now) {
			t.Fatal("same-instant updates disagree")
		}
		if closed {
			// Skip past the hold so each closure counts once.
			now = now.Add(blinkHold + 20*time.Millisecond)
			b.Update(now)
			blinks++
		}
	}
	// 30 seconds of 1-5s gaps: somewhere between 5 and 30 blinks.
	if blinks < 5 || blinks > 30 {
		t.Errorf("blinked %d times in 30s, outside plausible range", blinks)
	}
}

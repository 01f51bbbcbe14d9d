package state

import (
	"sync"
	"time"
)

// AudioHandle represents one playing audio clip. The animator queries its
// playback position every frame; the speech queue starts and stops it. The
// clock is injectable so tests can scrub playback deterministically.
type AudioHandle struct {
	Data     []byte
	Format   string
	Duration time.Duration

	// URL is set instead of Data for pre-baked clips hosted elsewhere; the
	// rendering client fetches it.
	URL string

	mu        sync.Mutex
	clock     func() time.Time
	startedAt time.Time
	started   bool
}

// NewAudioHandle wraps synthesized audio bytes. A nil clock uses time.Now.
func NewAudioHandle(data []byte, format string, duration time.Duration, clock func() time.Time) *AudioHandle {
	if clock == nil {
		clock = time.Now
	}
	return &AudioHandle{
		Data:     data,
		Format:   format,
		Duration: duration,
		clock:    clock,
	}
}

// Start marks the beginning of playback.
func (h *AudioHandle) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.startedAt = h.clock()
	h.started = true
}

// PositionMs returns the current playback position in milliseconds. Before
// Start it is 0; after the clip's duration it clamps to the end.
func (h *AudioHandle) PositionMs() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started {
		return 0
	}
	pos := h.clock().Sub(h.startedAt)
	if h.Duration > 0 && pos > h.Duration {
		pos = h.Duration
	}
	return float64(pos) / float64(time.Millisecond)
}

// Done reports whether playback has run past the clip's duration.
func (h *AudioHandle) Done() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started || h.Duration <= 0 {
		return false
	}
	return h.clock().Sub(h.startedAt) >= h.Duration
}

package anim

import (
	"sync"

	"github.com/Amandubey211/AVA.AI/internal/state"
)

// Body animation clip names, matching the clips baked into the avatar's
// animation file.
const (
	ClipIdle     = "Idle"
	ClipThinking = "Thinking"
)

// TalkingClips are the clip variants played while audio is voicing. A random
// one is chosen per utterance, never repeating the previous pick when another
// variant exists.
var TalkingClips = []string{"Talking", "Talking2"}

// ChooseNext picks the next clip from candidates, avoiding an immediate
// repeat of last. intn is the random source (injected so tests are
// deterministic); it receives the candidate count and returns an index.
func ChooseNext(candidates []string, last string, intn func(int) int) string {
	if len(candidates) == 0 {
		return ""
	}
	avoid := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c != last {
			avoid = append(avoid, c)
		}
	}
	if len(avoid) == 0 {
		return candidates[0]
	}
	return avoid[intn(len(avoid))]
}

// ClipForState is the body-clip state machine: thinking once a chat turn is
// submitted, talking while audio plays, idle otherwise.
func ClipForState(status state.ChatStatus, audioPlaying bool) string {
	switch {
	case status == state.StatusSubmitted:
		return ClipThinking
	case audioPlaying:
		return "" // talking; the caller picks a variant
	default:
		return ClipIdle
	}
}

// fadeDuration is how long a clip switch cross-fades.
const fadeDuration = 0.5

// ClipMixer advances clip playback and cross-fades between clips so switches
// never pop. Weights per clip move linearly toward 1 (current) or 0.
type ClipMixer struct {
	mu sync.Mutex

	current string
	weights map[string]float64
	times   map[string]float64
}

// NewClipMixer starts with the idle clip fully applied.
func NewClipMixer() *ClipMixer {
	return &ClipMixer{
		current: ClipIdle,
		weights: map[string]float64{ClipIdle: 1},
		times:   map[string]float64{},
	}
}

// Play switches to a clip, fading the previous one out. Switching to the
// already-current clip is a no-op.
func (m *ClipMixer) Play(clip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if clip == "" || clip == m.current {
		return
	}
	m.current = clip
	if _, ok := m.weights[clip]; !ok {
		m.weights[clip] = 0
	}
	m.times[clip] = 0
}

// Current returns the clip being faded in.
func (m *ClipMixer) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Update advances playback times and fade weights by dt seconds.
func (m *ClipMixer) Update(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	step := dt / fadeDuration
	for clip, w := range m.weights {
		if clip == m.current {
			w += step
			if w > 1 {
				w = 1
			}
		} else {
			w -= step
			if w <= 0 {
				delete(m.weights, clip)
				delete(m.times, clip)
				continue
			}
		}
		m.weights[clip] = w
		m.times[clip] += dt
	}
	if _, ok := m.weights[m.current]; !ok {
		m.weights[m.current] = clampUnit(step)
		m.times[m.current] = dt
	}
}

// Weights returns a copy of the active clip fade weights.
func (m *ClipMixer) Weights() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.weights))
	for clip, w := range m.weights {
		out[clip] = w
	}
	return out
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package anim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Amandubey211/AVA.AI/internal/avatar"
	"github.com/Amandubey211/AVA.AI/internal/state"
)

// Frame is the animator's output for one render tick: the applied morph
// weights plus the body-clip mix, ready to hand to a rendering client.
type Frame struct {
	Weights     map[string]float64 `json:"weights"`
	Clip        string             `json:"clip"`
	ClipWeights map[string]float64 `json:"clipWeights"`
	Emotion     string             `json:"emotion,omitempty"`
	Speaking    bool               `json:"isSpeaking"`
}

// Animator owns the only per-frame mutation of render state. Each Step it
// advances the clip mixer, resolves target weights from the shared store, and
// eases the applied weights toward them.
type Animator struct {
	mu sync.Mutex

	store   *state.Store
	profile *avatar.Profile
	rig     *avatar.Rig
	mixer   *ClipMixer
	blinker *Blinker
	rng     *rand.Rand
	clock   func() time.Time
	logger  zerolog.Logger

	applied  map[string]float64
	lastTalk string
	talking  bool
}

// Options tunes an Animator. Zero values pick production behavior.
type Options struct {
	Rand  *rand.Rand       // injected random source for clip choice and blinks
	Clock func() time.Time // injected clock for blink scheduling
}

// New creates an animator for one avatar session.
func New(store *state.Store, profile *avatar.Profile, rig *avatar.Rig, logger zerolog.Logger, opts Options) *Animator {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Animator{
		store:   store,
		profile: profile,
		rig:     rig,
		mixer:   NewClipMixer(),
		blinker: NewBlinker(rng),
		rng:     rng,
		clock:   clock,
		logger:  logger.With().Str("component", "animator").Logger(),
		applied: make(map[string]float64),
	}
}

// Step advances the animation by dt seconds and returns the resulting frame.
// It must be called from a single goroutine (the render loop).
func (a *Animator) Step(dt float64) Frame {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock()
	blink := a.blinker.Update(now)
	a.store.SetBlink(blink)

	audio, track := a.store.Playback()
	playing := audio != nil
	status := a.store.ChatStatus()

	// Body clip selection with cross-fade.
	clip := ClipForState(status, playing)
	if clip == "" {
		// Talking: keep the variant for the whole utterance, pick a fresh
		// one (never the same twice in a row) when a new utterance starts.
		if !a.talking {
			a.lastTalk = ChooseNext(TalkingClips, a.lastTalk, a.rng.Intn)
			a.talking = true
		}
		clip = a.lastTalk
	} else {
		a.talking = false
	}
	a.mixer.Play(clip)
	a.mixer.Update(dt)

	in := ResolverInput{
		HasAudio:    playing,
		Track:       track,
		Emotion:     a.store.Emotion(),
		Expressions: a.profile.Expressions,
		Blink:       blink,
	}
	if playing {
		in.PlaybackMs = audio.PositionMs()
	}
	targets := Resolve(in)

	// Ease applied weights toward targets; channels the rig lacks are
	// skipped so a model without a given morph never errors.
	for name, target := range targets {
		if !a.rig.Has(name) {
			continue
		}
		current := a.applied[name]
		speed := target.Speed
		if speed > 1 {
			speed = 1
		}
		next := current + (target.Value-current)*speed
		if next < 1e-4 && target.Value == 0 {
			delete(a.applied, name)
			continue
		}
		a.applied[name] = next
	}

	weights := make(map[string]float64, len(a.applied))
	for name, w := range a.applied {
		weights[name] = w
	}

	return Frame{
		Weights:     weights,
		Clip:        a.mixer.Current(),
		ClipWeights: a.mixer.Weights(),
		Emotion:     in.Emotion,
		Speaking:    a.store.Speaking(),
	}
}

// Applied returns the current weight for one channel, for tests and
// diagnostics.
func (a *Animator) Applied(name string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.applied[name]
}

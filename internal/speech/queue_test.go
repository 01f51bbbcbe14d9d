package speech

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amandubey211/AVA.AI/internal/bus"
	"github.com/Amandubey211/AVA.AI/internal/state"
	"github.com/Amandubey211/AVA.AI/internal/viseme"
)

type mockSynth struct {
	mu      sync.Mutex
	calls   []string
	failOn  string
	failErr error
}

func (m *mockSynth) Name() string      { return "mock" }
func (m *mockSynth) IsAvailable() bool { return true }

func (m *mockSynth) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req.Text)
	m.mu.Unlock()
	if m.failOn == req.Text {
		err := m.failErr
		if err == nil {
			err = ErrSynthesis
		}
		return nil, err
	}
	return &SynthesizeResponse{
		Audio:    []byte("audio:" + req.Text),
		Format:   "mp3",
		Duration: 10 * time.Millisecond,
		Visemes:  viseme.FromText(req.Text),
	}, nil
}

func (m *mockSynth) synthesized() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// gatedPlayer blocks each Play until released, so tests control exactly when
// an utterance finishes.
type gatedPlayer struct {
	mu      sync.Mutex
	playing int
	peak    int
	release chan struct{}
}

func newGatedPlayer() *gatedPlayer {
	return &gatedPlayer{release: make(chan struct{})}
}

func (p *gatedPlayer) Play(ctx context.Context, handle *state.AudioHandle) error {
	p.mu.Lock()
	p.playing++
	if p.playing > p.peak {
		p.peak = p.playing
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.playing--
		p.mu.Unlock()
	}()

	handle.Start()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.release:
		return nil
	}
}

func (p *gatedPlayer) releaseOne() { p.release <- struct{}{} }

func (p *gatedPlayer) concurrentPeak() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}

func newTestQueue(t *testing.T, synth Synthesizer, player Player) (*Queue, *state.Store) {
	t.Helper()
	store := state.New(bus.New())
	q := NewQueue(store, bus.New(), synth, player, zerolog.Nop(), QueueOptions{})
	t.Cleanup(q.Close)
	return q, store
}

func TestQueuePlaysInOrder(t *testing.T) {
	synth := &mockSynth{}
	q, store := newTestQueue(t, synth, &ClockedPlayer{
		Sleep: func(ctx context.Context, d time.Duration) error { return nil },
	})

	q.Enqueue(Utterance{Text: "first"})
	q.Enqueue(Utterance{Text: "second"})
	q.Enqueue(Utterance{Text: "third"})

	require.Eventually(t, func() bool {
		return !q.Speaking() && q.Len() == 0
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"first", "second", "third"}, synth.synthesized())
	assert.False(t, store.Speaking())
}

func TestQueueSingleUtteranceInFlight(t *testing.T) {
	synth := &mockSynth{}
	player := newGatedPlayer()
	q, store := newTestQueue(t, synth, player)

	q.Enqueue(Utterance{Text: "one"})
	require.Eventually(t, func() bool { return store.Speaking() }, time.Second, time.Millisecond)

	// More arrivals and redundant PlayNext calls while one is playing.
	q.Enqueue(Utterance{Text: "two"})
	q.PlayNext()
	q.PlayNext()

	assert.Equal(t, 1, q.Len(), "second utterance should wait")

	player.releaseOne()
	player.releaseOne()

	require.Eventually(t, func() bool { return !q.Speaking() }, time.Second, time.Millisecond)
	assert.Equal(t, 1, player.concurrentPeak(), "utterances overlapped")
	assert.Equal(t, []string{"one", "two"}, synth.synthesized())
}

func TestQueueFailureFlushesEverything(t *testing.T) {
	synth := &mockSynth{failOn: "bad"}
	q, store := newTestQueue(t, synth, &ClockedPlayer{
		Sleep: func(ctx context.Context, d time.Duration) error { return nil },
	})

	q.Enqueue(Utterance{Text: "ok"})
	q.Enqueue(Utterance{Text: "bad"})
	q.Enqueue(Utterance{Text: "never played"})

	require.Eventually(t, func() bool { return !q.Speaking() }, time.Second, time.Millisecond)

	// The failing utterance is attempted; everything behind it is dropped.
	assert.Equal(t, []string{"ok", "bad"}, synth.synthesized())
	assert.Equal(t, 0, q.Len())
	assert.False(t, store.Speaking())

	audio, _ := store.Playback()
	assert.Nil(t, audio, "playback must be cleared after a failure")
}

func TestQueuePlaybackFailureAlsoFlushes(t *testing.T) {
	synth := &mockSynth{}
	playErr := errors.New("device gone")
	q, store := newTestQueue(t, synth, playerFunc(func(ctx context.Context, h *state.AudioHandle) error {
		return playErr
	}))

	q.Enqueue(Utterance{Text: "one"})
	q.Enqueue(Utterance{Text: "two"})

	require.Eventually(t, func() bool { return !q.Speaking() }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"one"}, synth.synthesized())
	assert.False(t, store.Speaking())
}

func TestQueueSetsEmotionDuringPlayback(t *testing.T) {
	synth := &mockSynth{}
	player := newGatedPlayer()
	q, store := newTestQueue(t, synth, player)

	q.Enqueue(Utterance{Text: "hello", Emotion: "happy"})
	require.Eventually(t, func() bool { return store.Emotion() == "happy" }, time.Second, time.Millisecond)

	audio, track := store.Playback()
	require.NotNil(t, audio)
	assert.NotEmpty(t, track)

	player.releaseOne()
	require.Eventually(t, func() bool { return !q.Speaking() }, time.Second, time.Millisecond)

	// After the queue drains the face returns to neutral silence.
	assert.Equal(t, "neutral", store.Emotion())
	audio, _ = store.Playback()
	assert.Nil(t, audio)
}

func TestQueueIgnoresEmptyText(t *testing.T) {
	synth := &mockSynth{}
	q, _ := newTestQueue(t, synth, newGatedPlayer())

	q.Enqueue(Utterance{Text: ""})
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, synth.synthesized())
	assert.False(t, q.Speaking())
}

func TestQueuePrebakedTrackSkipsSynthesis(t *testing.T) {
	synth := &mockSynth{}
	prebaked := viseme.Track{{TimeMs: 0, ID: 15}, {TimeMs: 80, ID: 1}, {TimeMs: 300, ID: viseme.Silence}}

	type playback struct {
		url   string
		dur   time.Duration
		track viseme.Track
	}
	got := make(chan playback, 1)

	var store *state.Store
	q, s := newTestQueue(t, synth, playerFunc(func(ctx context.Context, h *state.AudioHandle) error {
		_, track := store.Playback()
		got <- playback{h.URL, h.Duration, track}
		return nil
	}))
	store = s

	q.Enqueue(Utterance{
		Text:     "I am scripted.",
		AudioURL: "https://cdn.example.com/intro.mp3",
		Track:    prebaked,
	})

	select {
	case p := <-got:
		assert.Equal(t, "https://cdn.example.com/intro.mp3", p.url)
		assert.Equal(t, 300*time.Millisecond, p.dur)
		assert.Equal(t, prebaked, p.track)
	case <-time.After(time.Second):
		t.Fatal("utterance never played")
	}
	assert.Empty(t, synth.synthesized(), "pre-baked utterances must not hit the synthesizer")
}

func TestQueueSpeakingStableAcrossBackToBackUtterances(t *testing.T) {
	synth := &mockSynth{}

	// Every utterance must observe speaking=true and a live handle for its
	// whole playback, even when the previous drain goroutine is still
	// unwinding as the next Enqueue lands.
	var violations int32
	var store *state.Store
	q, s := newTestQueue(t, synth, playerFunc(func(ctx context.Context, h *state.AudioHandle) error {
		audio, _ := store.Playback()
		if !store.Speaking() || audio == nil {
			atomic.AddInt32(&violations, 1)
		}
		return nil
	}))
	store = s

	for i := 0; i < 200; i++ {
		q.Enqueue(Utterance{Text: "tick"})
		require.Eventually(t, func() bool { return !q.Speaking() && q.Len() == 0 },
			time.Second, 100*time.Microsecond)
	}

	assert.Zero(t, atomic.LoadInt32(&violations), "speaking flag or playback dropped mid-utterance")
}

type playerFunc func(ctx context.Context, h *state.AudioHandle) error

func (f playerFunc) Play(ctx context.Context, h *state.AudioHandle) error { return f(ctx, h) }

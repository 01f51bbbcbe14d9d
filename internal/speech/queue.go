package speech

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Amandubey211/AVA.AI/internal/avatar"
	"github.com/Amandubey211/AVA.AI/internal/bus"
	"github.com/Amandubey211/AVA.AI/internal/state"
	"github.com/Amandubey211/AVA.AI/internal/viseme"
)

// Utterance is one pending unit of speech. Emotion rides along so the
// expression lands on the frame loop the moment its audio starts, not when
// the text was queued.
type Utterance struct {
	Text    string
	VoiceID string
	Emotion string

	// AudioURL and Track carry pre-baked scripted assets. When Track is set
	// the queue plays it as-is instead of synthesizing; the audio itself
	// lives at AudioURL and is fetched by the rendering client.
	AudioURL string
	Track    viseme.Track
}

// Queue serializes speech output. Utterances play strictly in enqueue order
// with exactly one in flight; any synthesis or playback failure flushes
// everything pending and drops the avatar back to silence.
type Queue struct {
	store  *state.Store
	events *bus.Bus
	synth  Synthesizer
	player Player
	logger zerolog.Logger

	synthTimeout time.Duration

	mu      sync.Mutex
	pending []Utterance
	playing bool

	ctx    context.Context
	cancel context.CancelFunc
	done   sync.WaitGroup
}

// QueueOptions tunes a Queue. Zero values fall back to defaults.
type QueueOptions struct {
	// SynthTimeout bounds one synthesis call. Defaults to 10s.
	SynthTimeout time.Duration
}

func NewQueue(store *state.Store, events *bus.Bus, synth Synthesizer, player Player, logger zerolog.Logger, opts QueueOptions) *Queue {
	if opts.SynthTimeout <= 0 {
		opts.SynthTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		store:        store,
		events:       events,
		synth:        synth,
		player:       player,
		logger:       logger.With().Str("component", "speech-queue").Logger(),
		synthTimeout: opts.SynthTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Enqueue appends an utterance and kicks playback if idle. Never blocks.
func (q *Queue) Enqueue(u Utterance) {
	if u.Text == "" {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, u)
	depth := len(q.pending)
	q.mu.Unlock()
	q.store.SetQueuedUtterances(depth)
	q.PlayNext()
}

// PlayNext starts draining the queue if nothing is in flight. Safe to call
// from any goroutine at any time; while an utterance is playing it is a
// no-op, so event handlers can fire it unconditionally.
func (q *Queue) PlayNext() {
	q.mu.Lock()
	if q.playing || len(q.pending) == 0 {
		q.mu.Unlock()
		return
	}
	q.playing = true
	q.mu.Unlock()

	q.done.Add(1)
	go q.drain()
}

// Len reports how many utterances are waiting, not counting the one in
// flight.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Speaking reports whether an utterance is currently in flight.
func (q *Queue) Speaking() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

// Flush drops everything pending. The in-flight utterance, if any, finishes.
func (q *Queue) Flush() {
	q.mu.Lock()
	q.pending = nil
	q.mu.Unlock()
	q.store.SetQueuedUtterances(0)
}

// Close stops playback and waits for the drain goroutine to exit.
func (q *Queue) Close() {
	q.cancel()
	q.Flush()
	q.done.Wait()
}

func (q *Queue) drain() {
	defer q.done.Done()

	q.store.SetSpeaking(true)

	for {
		q.mu.Lock()
		if len(q.pending) == 0 || q.ctx.Err() != nil {
			q.finishLocked()
			q.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending = q.pending[1:]
		depth := len(q.pending)
		q.mu.Unlock()
		q.store.SetQueuedUtterances(depth)

		if err := q.playOne(next); err != nil {
			q.logger.Error().Err(err).Str("text", next.Text).Msg("Utterance failed, flushing queue")
			q.events.Publish(bus.Event{Type: bus.EventSpeechError, Data: map[string]any{"error": err.Error()}})

			q.mu.Lock()
			q.finishLocked()
			q.mu.Unlock()
			return
		}
	}
}

// finishLocked resets the store and releases the in-flight slot. Called with
// q.mu held. The store writes must land before playing clears: an Enqueue
// racing this exit would otherwise start a drain whose SetSpeaking and
// SetPlayback this tail then clobbers.
func (q *Queue) finishLocked() {
	q.pending = nil
	q.store.SetQueuedUtterances(0)
	q.store.ClearPlayback()
	q.store.SetEmotion(avatar.EmotionNeutral)
	q.store.SetSpeaking(false)
	q.playing = false
}

func (q *Queue) playOne(u Utterance) error {
	var (
		handle *state.AudioHandle
		track  viseme.Track
	)
	if len(u.Track) > 0 {
		// Pre-baked timings; the clip length comes from the track itself.
		track = u.Track
		handle = state.NewAudioHandle(nil, "url", time.Duration(u.Track.EndMs())*time.Millisecond, nil)
		handle.URL = u.AudioURL
	} else {
		synthCtx, cancel := context.WithTimeout(q.ctx, q.synthTimeout)
		resp, err := q.synth.Synthesize(synthCtx, &SynthesizeRequest{Text: u.Text, VoiceID: u.VoiceID})
		cancel()
		if err != nil {
			return err
		}
		track = resp.Visemes
		handle = state.NewAudioHandle(resp.Audio, resp.Format, resp.Duration, nil)
	}

	emotion := u.Emotion
	if emotion == "" {
		emotion = avatar.EmotionNeutral
	}
	q.store.SetEmotion(emotion)
	q.store.SetPlayback(handle, track)

	q.logger.Debug().
		Str("emotion", emotion).
		Dur("duration", handle.Duration).
		Int("visemes", len(track)).
		Msg("Playing utterance")

	return q.player.Play(q.ctx, handle)
}

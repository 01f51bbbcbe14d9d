package listen

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Amandubey211/AVA.AI/internal/bus"
	"github.com/Amandubey211/AVA.AI/internal/state"
)

// SendFunc receives the accumulated transcript when a recording session
// ends with text in hand.
type SendFunc func(text string)

// Controller owns the microphone session lifecycle. It consumes recognizer
// events on its own goroutine, accumulates transcripts, and hands the result
// to the conversation when the user stops recording.
//
// Muting does not tear the session down from the user's point of view: the
// backend session restarts, and the end event that restart provokes is
// swallowed so the recording state never flickers off.
type Controller struct {
	store      *state.Store
	events     *bus.Bus
	recognizer Recognizer
	send       SendFunc
	logger     zerolog.Logger

	mu          sync.Mutex
	recording   bool
	suppressEnd bool
	finalText   strings.Builder
	interim     string

	loopOnce sync.Once
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewController(store *state.Store, events *bus.Bus, recognizer Recognizer, send SendFunc, logger zerolog.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		store:      store,
		events:     events,
		recognizer: recognizer,
		send:       send,
		logger:     logger.With().Str("component", "listen").Logger(),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Start opens a recording session. No-op while one is already open.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.recording {
		c.mu.Unlock()
		return nil
	}
	c.recording = true
	c.finalText.Reset()
	c.interim = ""
	c.mu.Unlock()

	c.loopOnce.Do(func() { go c.loop() })

	if err := c.recognizer.Start(); err != nil {
		c.mu.Lock()
		c.recording = false
		c.mu.Unlock()
		return err
	}
	c.store.SetRecording(true)
	return nil
}

// Stop closes the session. The transcript, if any, is delivered once the
// recognizer confirms the session ended.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.recording {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.recognizer.Stop()
}

// ToggleMute flips the mute state. While recording, the recognizer session
// restarts so the backend drops any in-flight audio; the suppression flag
// consumes the end event that restart fires.
func (c *Controller) ToggleMute() bool {
	muted := !c.store.Muted()
	c.store.SetMuted(muted)

	c.mu.Lock()
	recording := c.recording
	if recording {
		c.suppressEnd = true
	}
	c.mu.Unlock()

	if recording {
		c.recognizer.Stop()
	}
	return muted
}

// Recording reports whether a session is open.
func (c *Controller) Recording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// Transcript returns the text accumulated so far, committed plus interim.
func (c *Controller) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return composeTranscript(c.finalText.String(), c.interim)
}

// Close tears the controller down.
func (c *Controller) Close() {
	c.cancel()
	c.loopOnce.Do(func() { close(c.done) })
	<-c.done
}

func (c *Controller) loop() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev, ok := <-c.recognizer.Events():
			if !ok {
				return
			}
			c.handle(ev)
		}
	}
}

func (c *Controller) handle(ev Event) {
	switch ev.Kind {
	case EventInterim:
		if c.store.Muted() {
			return
		}
		c.mu.Lock()
		c.interim = ev.Text
		c.mu.Unlock()

	case EventFinal:
		if c.store.Muted() {
			return
		}
		c.mu.Lock()
		if ev.Text != "" {
			if c.finalText.Len() > 0 {
				c.finalText.WriteByte(' ')
			}
			c.finalText.WriteString(ev.Text)
		}
		c.interim = ""
		transcript := c.finalText.String()
		c.mu.Unlock()
		c.events.Publish(bus.Event{Type: bus.EventTranscript, Data: map[string]any{"transcript": transcript}})

	case EventError:
		c.logger.Warn().Err(ev.Err).Msg("Recognition error")
		c.events.Publish(bus.Event{Type: bus.EventSpeechError, Data: map[string]any{"error": ev.Err.Error()}})

	case EventEnd:
		c.mu.Lock()
		if c.suppressEnd {
			c.suppressEnd = false
			c.mu.Unlock()
			// Mute-triggered restart. Recording stays on.
			if err := c.recognizer.Start(); err != nil {
				c.logger.Error().Err(err).Msg("Recognizer restart after mute failed")
				c.finish()
			}
			return
		}
		c.mu.Unlock()
		c.finish()
	}
}

// finish closes out the session and hands the transcript over.
func (c *Controller) finish() {
	c.mu.Lock()
	if !c.recording {
		c.mu.Unlock()
		return
	}
	c.recording = false
	transcript := composeTranscript(c.finalText.String(), c.interim)
	c.finalText.Reset()
	c.interim = ""
	c.mu.Unlock()

	c.store.SetRecording(false)

	if transcript != "" && c.send != nil {
		c.logger.Info().Str("transcript", transcript).Msg("Recording ended, sending transcript")
		c.send(transcript)
	}
}

func composeTranscript(final, interim string) string {
	final = strings.TrimSpace(final)
	interim = strings.TrimSpace(interim)
	switch {
	case final == "":
		return interim
	case interim == "":
		return final
	default:
		return final + " " + interim
	}
}

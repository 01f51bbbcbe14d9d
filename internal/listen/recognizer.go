package listen

import "sync"

// EventKind tags recognizer events.
type EventKind string

const (
	// EventInterim is a provisional transcript that later events replace.
	EventInterim EventKind = "interim"
	// EventFinal is a committed transcript segment.
	EventFinal EventKind = "final"
	// EventError reports a recognition failure.
	EventError EventKind = "error"
	// EventEnd signals the recognizer session terminated, cleanly or not.
	EventEnd EventKind = "end"
)

// Event is one recognizer callback.
type Event struct {
	Kind EventKind
	Text string
	Err  error
}

// Recognizer is a push-to-talk speech recognition session source. Start may
// be called again after an end event to open a fresh session on the same
// event channel.
type Recognizer interface {
	Start() error
	Stop()
	Events() <-chan Event
}

// PushRecognizer is a Recognizer fed externally, used when transcripts
// arrive over the control API rather than from a local microphone. It is
// also the test double for the controller.
type PushRecognizer struct {
	mu      sync.Mutex
	active  bool
	events  chan Event
	started int
}

func NewPushRecognizer() *PushRecognizer {
	return &PushRecognizer{events: make(chan Event, 16)}
}

func (r *PushRecognizer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = true
	r.started++
	return nil
}

// Stop ends the current session. Emits the end event the way a real
// recognizer backend does when told to stop.
func (r *PushRecognizer) Stop() {
	r.mu.Lock()
	wasActive := r.active
	r.active = false
	r.mu.Unlock()
	if wasActive {
		r.events <- Event{Kind: EventEnd}
	}
}

func (r *PushRecognizer) Events() <-chan Event {
	return r.events
}

// Interim feeds a provisional transcript into the session.
func (r *PushRecognizer) Interim(text string) {
	if r.isActive() {
		r.events <- Event{Kind: EventInterim, Text: text}
	}
}

// Final feeds a committed transcript segment into the session.
func (r *PushRecognizer) Final(text string) {
	if r.isActive() {
		r.events <- Event{Kind: EventFinal, Text: text}
	}
}

// Fail injects a recognition error followed by session end.
func (r *PushRecognizer) Fail(err error) {
	r.mu.Lock()
	wasActive := r.active
	r.active = false
	r.mu.Unlock()
	if wasActive {
		r.events <- Event{Kind: EventError, Err: err}
		r.events <- Event{Kind: EventEnd}
	}
}

// Starts reports how many sessions have been opened. Used to verify the
// mute toggle restarts the backend without surfacing a recording stop.
func (r *PushRecognizer) Starts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

func (r *PushRecognizer) isActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

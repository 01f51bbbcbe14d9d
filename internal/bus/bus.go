// Package bus provides an internal event bus for component communication.
package bus

import (
	"sync"
)

// EventType identifies different event types.
type EventType string

// Event types published by the avatar runtime.
const (
	// Conversation events
	EventChatStatusChanged EventType = "chat.status_changed"
	EventChatError         EventType = "chat.error"

	// Speech output events
	EventSpeakingStarted EventType = "speech.started"
	EventSpeakingStopped EventType = "speech.stopped"
	EventSpeechError     EventType = "speech.error"

	// Speech input events
	EventRecordingStarted EventType = "listen.recording_started"
	EventRecordingStopped EventType = "listen.recording_stopped"
	EventMuteChanged      EventType = "listen.mute_changed"
	EventTranscript       EventType = "listen.transcript"

	// Avatar events
	EventEmotionChanged EventType = "avatar.emotion_changed"
	EventBlink          EventType = "avatar.blink"
)

// AllTypes lists every event type the runtime publishes, for consumers that
// mirror the whole stream.
func AllTypes() []EventType {
	return []EventType{
		EventChatStatusChanged,
		EventChatError,
		EventSpeakingStarted,
		EventSpeakingStopped,
		EventSpeechError,
		EventRecordingStarted,
		EventRecordingStopped,
		EventMuteChanged,
		EventTranscript,
		EventEmotionChanged,
		EventBlink,
	}
}

// Event represents a bus event.
type Event struct {
	Type EventType
	Data map[string]any
}

// Handler is a function that handles events.
type Handler func(Event)

// Bus is a simple pub/sub event bus.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[EventType]map[int]Handler
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		handlers: make(map[EventType]map[int]Handler),
	}
}

// Subscribe adds a handler for an event type. The returned function removes
// the subscription; calling it more than once is harmless.
func (b *Bus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[int]Handler)
	}
	b.handlers[eventType][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[eventType], id)
	}
}

// SubscribeMultiple adds a handler for multiple event types. The returned
// function removes all of the subscriptions.
func (b *Bus) SubscribeMultiple(eventTypes []EventType, handler Handler) func() {
	cancels := make([]func(), 0, len(eventTypes))
	for _, et := range eventTypes {
		cancels = append(cancels, b.Subscribe(et, handler))
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

// Publish sends an event to all subscribed handlers without blocking the
// publisher.
func (b *Bus) Publish(event Event) {
	for _, handler := range b.snapshot(event.Type) {
		go handler(event)
	}
}

// PublishSync sends an event and waits for all handlers to complete.
func (b *Bus) PublishSync(event Event) {
	var wg sync.WaitGroup
	for _, handler := range b.snapshot(event.Type) {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			h(event)
		}(handler)
	}
	wg.Wait()
}

func (b *Bus) snapshot(t EventType) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	handlers := make([]Handler, 0, len(b.handlers[t]))
	for _, h := range b.handlers[t] {
		handlers = append(handlers, h)
	}
	return handlers
}

// Clear removes all handlers.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[EventType]map[int]Handler)
}

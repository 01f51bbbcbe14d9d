// Package state holds the shared runtime state all avatar components publish
// to and read from: chat status, speaking/recording flags, the current
// emotion, and the audio clip + viseme track being played. One Store exists
// per avatar session and is passed to components by injection.
package state

import (
	"sync"

	"github.com/Amandubey211/AVA.AI/internal/bus"
	"github.com/Amandubey211/AVA.AI/internal/viseme"
)

// ChatStatus is the conversation lifecycle state.
type ChatStatus string

const (
	StatusReady     ChatStatus = "ready"
	StatusSubmitted ChatStatus = "submitted"
	StatusStreaming ChatStatus = "streaming"
	StatusError     ChatStatus = "error"
)

// Store is the single point of truth for per-session runtime state.
//
// Field groups have one logical writer each: chat status is written by the
// conversation session, audio/viseme/emotion by the speech queue (and the
// session's post-processing), recording/mute by the input controller. Writes
// are last-write-wins; readers must tolerate the audio handle disappearing
// between reads.
type Store struct {
	mu  sync.RWMutex
	bus *bus.Bus

	chatStatus ChatStatus
	speaking   bool
	recording  bool
	muted      bool
	emotion    string
	blink      bool
	queued     int

	audio   *AudioHandle
	visemes viseme.Track
}

// New creates a store in its initial state. The bus may be nil when change
// notifications are not needed (tests).
func New(b *bus.Bus) *Store {
	return &Store{
		bus:        b,
		chatStatus: StatusReady,
	}
}

func (s *Store) publish(t bus.EventType, data map[string]any) {
	if s.bus != nil {
		s.bus.Publish(bus.Event{Type: t, Data: data})
	}
}

// ChatStatus returns the current conversation status.
func (s *Store) ChatStatus() ChatStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chatStatus
}

// SetChatStatus records a conversation status transition.
func (s *Store) SetChatStatus(status ChatStatus) {
	s.mu.Lock()
	changed := s.chatStatus != status
	s.chatStatus = status
	s.mu.Unlock()

	if changed {
		s.publish(bus.EventChatStatusChanged, map[string]any{"status": string(status)})
	}
}

// BeginTurn atomically moves the conversation from ready to submitted.
// Returns false when a turn is already in flight, which rejects the message.
func (s *Store) BeginTurn() bool {
	s.mu.Lock()
	if s.chatStatus != StatusReady {
		s.mu.Unlock()
		return false
	}
	s.chatStatus = StatusSubmitted
	s.mu.Unlock()

	s.publish(bus.EventChatStatusChanged, map[string]any{"status": string(StatusSubmitted)})
	return true
}

// Speaking reports whether the avatar is currently voicing an utterance.
func (s *Store) Speaking() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speaking
}

// SetSpeaking flips the speaking flag.
func (s *Store) SetSpeaking(speaking bool) {
	s.mu.Lock()
	changed := s.speaking != speaking
	s.speaking = speaking
	s.mu.Unlock()

	if changed {
		if speaking {
			s.publish(bus.EventSpeakingStarted, nil)
		} else {
			s.publish(bus.EventSpeakingStopped, nil)
		}
	}
}

// Recording reports whether the input controller is capturing speech.
func (s *Store) Recording() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recording
}

// SetRecording flips the recording flag.
func (s *Store) SetRecording(recording bool) {
	s.mu.Lock()
	changed := s.recording != recording
	s.recording = recording
	s.mu.Unlock()

	if changed {
		if recording {
			s.publish(bus.EventRecordingStarted, nil)
		} else {
			s.publish(bus.EventRecordingStopped, nil)
		}
	}
}

// Muted reports whether microphone input is muted.
func (s *Store) Muted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.muted
}

// SetMuted flips the mute flag.
func (s *Store) SetMuted(muted bool) {
	s.mu.Lock()
	changed := s.muted != muted
	s.muted = muted
	s.mu.Unlock()

	if changed {
		s.publish(bus.EventMuteChanged, map[string]any{"muted": muted})
	}
}

// Emotion returns the active emotion label, "" when none.
func (s *Store) Emotion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emotion
}

// SetEmotion replaces the active emotion. Emotions do not stack; the previous
// label is discarded.
func (s *Store) SetEmotion(emotion string) {
	s.mu.Lock()
	changed := s.emotion != emotion
	s.emotion = emotion
	s.mu.Unlock()

	if changed {
		s.publish(bus.EventEmotionChanged, map[string]any{"emotion": emotion})
	}
}

// Blink reports whether the eye-closure overlay is active this instant.
func (s *Store) Blink() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blink
}

// SetBlink flips the blink overlay. The animator writes this every frame, so
// the change event fires only on edges.
func (s *Store) SetBlink(blink bool) {
	s.mu.Lock()
	changed := s.blink != blink
	s.blink = blink
	s.mu.Unlock()

	if changed {
		s.publish(bus.EventBlink, map[string]any{"closed": blink})
	}
}

// QueuedUtterances reports how many utterances are waiting behind the one in
// flight.
func (s *Store) QueuedUtterances() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queued
}

// SetQueuedUtterances records the speech queue depth.
func (s *Store) SetQueuedUtterances(n int) {
	s.mu.Lock()
	s.queued = n
	s.mu.Unlock()
}

// SetPlayback publishes the audio handle and viseme track for the utterance
// that just started playing.
func (s *Store) SetPlayback(audio *AudioHandle, track viseme.Track) {
	s.mu.Lock()
	s.audio = audio
	s.visemes = track
	s.mu.Unlock()
}

// ClearPlayback removes the current audio handle and viseme track.
func (s *Store) ClearPlayback() {
	s.mu.Lock()
	s.audio = nil
	s.visemes = nil
	s.mu.Unlock()
}

// Playback returns the current audio handle and viseme track. The handle is
// nil when nothing is playing; callers treat that as silence.
func (s *Store) Playback() (*AudioHandle, viseme.Track) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.audio, s.visemes
}

// Snapshot is a point-in-time copy of the externally visible state.
type Snapshot struct {
	ChatStatus ChatStatus `json:"chatStatus"`
	Speaking   bool       `json:"isSpeaking"`
	Recording  bool       `json:"isRecording"`
	Muted      bool       `json:"isMuted"`
	Emotion    string     `json:"emotion,omitempty"`
	Blinking   bool       `json:"isBlinking"`
	Playing    bool       `json:"isAudioPlaying"`
	Queued     int        `json:"queuedUtterances"`
}

// Snapshot captures the externally visible state for UI consumers.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ChatStatus: s.chatStatus,
		Speaking:   s.speaking,
		Recording:  s.recording,
		Muted:      s.muted,
		Emotion:    s.emotion,
		Blinking:   s.blink,
		Playing:    s.audio != nil,
		Queued:     s.queued,
	}
}

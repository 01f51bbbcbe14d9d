package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Amandubey211/AVA.AI/internal/avatar"
	"github.com/Amandubey211/AVA.AI/internal/bus"
	"github.com/Amandubey211/AVA.AI/internal/speech"
	"github.com/Amandubey211/AVA.AI/internal/state"
	"github.com/Amandubey211/AVA.AI/internal/viseme"
)

// ErrNotReady means a message arrived while a previous turn was still in
// flight. The caller should drop the message, not queue it.
var ErrNotReady = errors.New("conversation is not ready for a new message")

// Reply is one completed conversation turn.
type Reply struct {
	Text    string `json:"text"`
	Emotion string `json:"emotion"`
	// Scripted is set when the reply came from the avatar's demo script
	// instead of the model.
	Scripted bool `json:"scripted,omitempty"`
}

// Session runs the conversation for one avatar. One turn at a time: while a
// turn is in flight the status gate rejects new messages.
type Session struct {
	store   *state.Store
	events  *bus.Bus
	queue   *speech.Queue
	model   ModelClient
	profile *avatar.Profile
	logger  zerolog.Logger

	replyTimeout time.Duration

	histMu  sync.Mutex
	history []Turn
}

// maxHistoryTurns bounds the context sent upstream; older exchanges fall off.
const maxHistoryTurns = 20

// SessionOptions tunes a Session. Zero values fall back to defaults.
type SessionOptions struct {
	// ReplyTimeout bounds one model round trip. Defaults to 15s.
	ReplyTimeout time.Duration
}

func NewSession(store *state.Store, events *bus.Bus, queue *speech.Queue, model ModelClient, profile *avatar.Profile, logger zerolog.Logger, opts SessionOptions) *Session {
	if opts.ReplyTimeout <= 0 {
		opts.ReplyTimeout = 15 * time.Second
	}
	return &Session{
		store:        store,
		events:       events,
		queue:        queue,
		model:        model,
		profile:      profile,
		logger:       logger.With().Str("component", "chat").Str("avatar", profile.ID).Logger(),
		replyTimeout: opts.ReplyTimeout,
	}
}

// Profile returns the avatar this session speaks as.
func (s *Session) Profile() *avatar.Profile {
	return s.profile
}

// SendMessage runs one conversation turn: model round trip, sentiment split,
// speech enqueue. Returns ErrNotReady when a turn is already in flight.
func (s *Session) SendMessage(ctx context.Context, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrNotReady
	}
	if !s.store.BeginTurn() {
		s.logger.Debug().Str("message", message).Msg("Dropping message, turn in flight")
		return Reply{}, ErrNotReady
	}

	reply, err := s.runTurn(ctx, message)
	if err != nil {
		s.store.SetChatStatus(state.StatusError)
		s.events.Publish(bus.Event{Type: bus.EventChatError, Data: map[string]any{"error": err.Error()}})
		s.store.SetChatStatus(state.StatusReady)
		return Reply{}, err
	}

	s.store.SetChatStatus(state.StatusReady)
	return reply, nil
}

func (s *Session) runTurn(ctx context.Context, message string) (Reply, error) {
	if scripted, ok := s.scriptedReply(message); ok {
		s.store.SetChatStatus(state.StatusStreaming)
		return scripted, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.replyTimeout)
	defer cancel()

	raw, err := s.model.Complete(ctx, CompletionRequest{
		SystemPrompt: s.profile.SystemPrompt,
		History:      s.History(),
		Message:      message,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrUpstreamTimeout
		}
		s.logger.Error().Err(err).Msg("Model turn failed")
		return Reply{}, err
	}

	s.store.SetChatStatus(state.StatusStreaming)

	text, emotion := ExtractEmotion(raw)
	if text == "" {
		s.store.SetEmotion(avatar.EmotionNeutral)
		return Reply{}, ErrEmptyReply
	}

	s.logger.Info().Str("emotion", emotion).Int("chars", len(text)).Msg("Model reply")

	s.appendHistory(message, raw)

	s.queue.Enqueue(speech.Utterance{
		Text:    text,
		VoiceID: s.profile.VoiceID,
		Emotion: emotion,
	})

	return Reply{Text: text, Emotion: emotion}, nil
}

// History returns a copy of the conversation so far, oldest first.
func (s *Session) History() []Turn {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// appendHistory records a completed exchange. The raw model reply is kept
// with its sentiment tag so the model keeps seeing its own output convention.
func (s *Session) appendHistory(message, reply string) {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	s.history = append(s.history,
		Turn{Role: "user", Text: message},
		Turn{Role: "model", Text: reply},
	)
	if len(s.history) > maxHistoryTurns {
		s.history = s.history[len(s.history)-maxHistoryTurns:]
	}
}

// scriptedReply answers from the avatar's demo script when the message
// matches a scripted question. Scripted turns skip the model entirely.
func (s *Session) scriptedReply(message string) (Reply, bool) {
	normalized := strings.ToLower(strings.TrimSpace(message))
	for _, item := range s.profile.Script {
		if strings.ToLower(strings.TrimSpace(item.UserQuestion)) != normalized {
			continue
		}

		emotion := item.Emotion
		if emotion == "" {
			emotion = avatar.EmotionNeutral
		}

		// Scripted entries ship their own audio and timings; a bad track
		// falls back to synthesis.
		var track viseme.Track
		if item.Visemes != "" {
			decoded, err := viseme.Decode(item.Visemes)
			if err != nil {
				s.logger.Warn().Err(err).Str("script", item.ID).Msg("Bad scripted viseme track, synthesizing instead")
			} else {
				track = decoded
			}
		}

		s.queue.Enqueue(speech.Utterance{
			Text:     item.Response,
			VoiceID:  s.profile.VoiceID,
			Emotion:  emotion,
			AudioURL: item.AudioURL,
			Track:    track,
		})
		return Reply{Text: item.Response, Emotion: emotion, Scripted: true}, true
	}
	return Reply{}, false
}

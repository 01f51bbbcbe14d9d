package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevenLabsSynthesize(t *testing.T) {
	var gotPath, gotKey string
	var gotPayload map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))
	defer ts.Close()

	cfg := DefaultElevenLabsConfig()
	cfg.BaseURL = ts.URL
	cfg.APIKey = "secret"
	s := NewElevenLabsSynthesizer(zerolog.Nop(), cfg)

	resp, err := s.Synthesize(context.Background(), &SynthesizeRequest{Text: "hello", VoiceID: "custom-voice"})
	require.NoError(t, err)

	assert.Equal(t, "/text-to-speech/custom-voice", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "hello", gotPayload["text"])
	assert.Equal(t, "eleven_monolingual_v1", gotPayload["model_id"])

	assert.Equal(t, []byte("mp3-bytes"), resp.Audio)
	assert.Equal(t, "mp3", resp.Format)
	// No timing metadata from the API: the track is derived from the text.
	assert.NotEmpty(t, resp.Visemes)
	assert.True(t, resp.Visemes.Sorted())
	assert.Greater(t, resp.Duration.Milliseconds(), int64(0))
}

func TestElevenLabsDefaultVoiceFallback(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("x"))
	}))
	defer ts.Close()

	cfg := DefaultElevenLabsConfig()
	cfg.BaseURL = ts.URL
	cfg.APIKey = "secret"
	s := NewElevenLabsSynthesizer(zerolog.Nop(), cfg)

	_, err := s.Synthesize(context.Background(), &SynthesizeRequest{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "/text-to-speech/"+ElevenLabsDefaultVoice, gotPath)
}

func TestElevenLabsAPIErrorWrapsSynthesisError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer ts.Close()

	cfg := DefaultElevenLabsConfig()
	cfg.BaseURL = ts.URL
	cfg.APIKey = "secret"
	s := NewElevenLabsSynthesizer(zerolog.Nop(), cfg)

	_, err := s.Synthesize(context.Background(), &SynthesizeRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrSynthesis)
}

func TestElevenLabsUnavailableWithoutKey(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "")
	s := NewElevenLabsSynthesizer(zerolog.Nop(), DefaultElevenLabsConfig())
	assert.False(t, s.IsAvailable())

	_, err := s.Synthesize(context.Background(), &SynthesizeRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

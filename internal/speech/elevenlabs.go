package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Amandubey211/AVA.AI/internal/viseme"
)

const (
	elevenLabsAPIEndpoint  = "https://api.elevenlabs.io/v1"
	ElevenLabsDefaultVoice = "21m00Tcm4TlvDq8ikWAM" // Rachel - calm, natural female
)

// ElevenLabsConfig tunes the hosted ElevenLabs voice backend.
type ElevenLabsConfig struct {
	// BaseURL overrides the production API endpoint (tests).
	BaseURL      string        `json:"-" mapstructure:"-"`
	APIKey       string        `json:"api_key" mapstructure:"api_key"`
	DefaultVoice string        `json:"default_voice" mapstructure:"default_voice"`
	ModelID      string        `json:"model_id" mapstructure:"model_id"`
	Stability    float64       `json:"stability" mapstructure:"stability"`
	Similarity   float64       `json:"similarity_boost" mapstructure:"similarity_boost"`
	Timeout      time.Duration `json:"timeout" mapstructure:"timeout"`
}

func DefaultElevenLabsConfig() *ElevenLabsConfig {
	return &ElevenLabsConfig{
		DefaultVoice: ElevenLabsDefaultVoice,
		ModelID:      "eleven_monolingual_v1",
		Stability:    0.5,
		Similarity:   0.75,
		Timeout:      10 * time.Second,
	}
}

// ElevenLabsSynthesizer renders speech through the ElevenLabs REST API.
// ElevenLabs returns raw audio with no phoneme timing, so the viseme track
// is derived from the request text.
type ElevenLabsSynthesizer struct {
	apiKey string
	logger zerolog.Logger
	config *ElevenLabsConfig
	client *http.Client
}

func NewElevenLabsSynthesizer(logger zerolog.Logger, config *ElevenLabsConfig) *ElevenLabsSynthesizer {
	if config == nil {
		config = DefaultElevenLabsConfig()
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	if config.BaseURL == "" {
		config.BaseURL = elevenLabsAPIEndpoint
	}

	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ELEVENLABS_API_KEY")
	}

	return &ElevenLabsSynthesizer{
		apiKey: apiKey,
		logger: logger.With().Str("provider", "elevenlabs-tts").Logger(),
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

func (s *ElevenLabsSynthesizer) Name() string {
	return "elevenlabs"
}

func (s *ElevenLabsSynthesizer) IsAvailable() bool {
	return s.apiKey != ""
}

func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
	if !s.IsAvailable() {
		return nil, ErrProviderUnavailable
	}

	startTime := time.Now()

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = s.config.DefaultVoice
	}

	payload := map[string]any{
		"text":     req.Text,
		"model_id": s.config.ModelID,
		"voice_settings": map[string]float64{
			"stability":        s.config.Stability,
			"similarity_boost": s.config.Similarity,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", s.config.BaseURL, voiceID)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", s.apiKey)
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ElevenLabs API error %d: %s", ErrSynthesis, resp.StatusCode, string(body))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", ErrSynthesis, err)
	}

	track := viseme.FromText(req.Text)

	s.logger.Info().
		Str("voice", voiceID).
		Int("audioBytes", len(audioData)).
		Dur("processingTime", time.Since(startTime)).
		Msg("ElevenLabs TTS synthesis complete")

	return &SynthesizeResponse{
		Audio:    audioData,
		Format:   "mp3",
		Duration: track.EstimateDuration(),
		Visemes:  track,
	}, nil
}

package speech

import (
	"context"
	"errors"
	"time"

	"github.com/Amandubey211/AVA.AI/internal/viseme"
)

var (
	// ErrSynthesis wraps any failure while producing audio for an utterance.
	ErrSynthesis = errors.New("speech synthesis failed")
	// ErrProviderUnavailable means the synthesizer has no credentials or
	// backend to talk to.
	ErrProviderUnavailable = errors.New("speech provider unavailable")
)

// SynthesizeRequest describes one utterance to turn into audio.
type SynthesizeRequest struct {
	Text    string
	VoiceID string
}

// SynthesizeResponse carries the rendered audio plus the lip-sync track
// aligned to it. Duration is the playback length of Audio.
type SynthesizeResponse struct {
	Audio    []byte
	Format   string
	Duration time.Duration
	Visemes  viseme.Track
}

// Synthesizer renders text to speech. Implementations must honor ctx
// cancellation and return an error wrapping ErrSynthesis on upstream
// failure.
type Synthesizer interface {
	Name() string
	IsAvailable() bool
	Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error)
}

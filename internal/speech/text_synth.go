package speech

import (
	"context"

	"github.com/Amandubey211/AVA.AI/internal/viseme"
)

// TextSynthesizer produces no audio, only a text-derived viseme track. It
// keeps the whole pipeline running without voice credentials: the avatar
// mouths the words in silence.
type TextSynthesizer struct{}

func NewTextSynthesizer() *TextSynthesizer {
	return &TextSynthesizer{}
}

func (s *TextSynthesizer) Name() string { return "text" }

func (s *TextSynthesizer) IsAvailable() bool { return true }

func (s *TextSynthesizer) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	track := viseme.FromText(req.Text)
	return &SynthesizeResponse{
		Audio:    nil,
		Format:   "none",
		Duration: track.EstimateDuration(),
		Visemes:  track,
	}, nil
}

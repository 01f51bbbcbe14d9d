package chat

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

var (
	// ErrUpstream covers model backend failures other than deadline.
	ErrUpstream = errors.New("chat model request failed")
	// ErrUpstreamTimeout means the model did not answer within the
	// session's reply deadline. Kept distinct so callers can surface
	// "took too long" instead of a generic failure.
	ErrUpstreamTimeout = errors.New("chat model request timed out")
	// ErrEmptyReply means the backend answered with no usable text.
	ErrEmptyReply = errors.New("chat model returned an empty reply")
)

// Turn is one prior exchange entry, oldest first.
type Turn struct {
	Role string // "user" or "model"
	Text string
}

// CompletionRequest is one turn sent to the model.
type CompletionRequest struct {
	// SystemPrompt sets the character's persona and the sentiment-tag
	// output convention.
	SystemPrompt string
	// History is the conversation so far, oldest first.
	History []Turn
	// Message is the user's utterance.
	Message string
}

// ModelClient produces one reply per request. Implementations must
// translate deadline expiry into ErrUpstreamTimeout.
type ModelClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

const geminiModel = "gemini-2.5-flash"

// GeminiClient talks to the Gemini API.
type GeminiClient struct {
	client *genai.Client
	logger zerolog.Logger
}

func NewGeminiClient(ctx context.Context, apiKey string, logger zerolog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{
		client: client,
		logger: logger.With().Str("provider", "gemini").Logger(),
	}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var config *genai.GenerateContentConfig
	if req.SystemPrompt != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: req.SystemPrompt}},
			},
		}
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		contents = append(contents, &genai.Content{
			Role:  turn.Role,
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.Message}},
	})

	genResp, err := g.client.Models.GenerateContent(ctx, geminiModel, contents, config)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return "", ErrUpstreamTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	for _, candidate := range genResp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", ErrEmptyReply
}

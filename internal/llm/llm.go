// Package llm wraps the text generation services used to draft invitation emails.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/fmuoria/interview-invite-agent/internal/config"
)

// ErrGeneration is returned when the generation service reports a failure
var ErrGeneration = errors.New("text generation failed")

// Request is a single generation call
type Request struct {
	// System frames the model's persona
	System string
	// Prompt is the user instruction
	Prompt string
	// MaxTokens bounds the output length; zero leaves the backend default
	MaxTokens int32
}

// Generator turns a prompt into text
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// New builds the generator selected by cfg.Provider. Credentials are checked eagerly
// and a missing one is reported as config.ErrConfig.
func New(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case config.ProviderVertexAI:
		return NewVertexAIClient(ctx, VertexAIConfig{
			ProjectID:       cfg.GoogleCloudProject,
			Location:        cfg.GoogleCloudLocation,
			Model:           cfg.VertexModel,
			CredentialsPath: cfg.GoogleCredentialsPath,
		})
	case config.ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.Timeout(),
		})
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", config.ErrConfig, cfg.Provider)
	}
}

// Close releases g's resources when it holds any
func Close(g Generator) error {
	if c, ok := g.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

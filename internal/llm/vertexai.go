package llm

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// VertexAIConfig holds the Vertex AI project settings
type VertexAIConfig struct {
	ProjectID       string
	Location        string
	Model           string
	CredentialsPath string
}

// VertexAIClient wraps the Vertex AI Gemini API
type VertexAIClient struct {
	client    *genai.Client
	modelName string
}

var _ Generator = (*VertexAIClient)(nil)

// NewVertexAIClient creates a new Vertex AI client
func NewVertexAIClient(ctx context.Context, cfg VertexAIConfig) (*VertexAIClient, error) {
	if cfg.Location == "" {
		cfg.Location = "us-central1"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexAIClient{
		client:    client,
		modelName: cfg.Model,
	}, nil
}

// Generate sends the request to the model and returns the concatenated text parts
func (v *VertexAIClient) Generate(ctx context.Context, req Request) (string, error) {
	// A model handle per call keeps system instructions from leaking between requests
	model := v.client.GenerativeModel(v.modelName)
	model.SetTemperature(0.7)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no response candidates returned", ErrGeneration)
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result += string(text)
		}
	}

	return result, nil
}

// Close closes the Vertex AI client
func (v *VertexAIClient) Close() error {
	return v.client.Close()
}

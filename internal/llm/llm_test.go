package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/interview-invite-agent/internal/config"
)

func TestOpenAIClient_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Dear Asha,\n\nRegards "}}]}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), Request{
		System:    "You are an assistant that writes professional emails.",
		Prompt:    "Write an invitation",
		MaxTokens: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, "  Dear Asha,\n\nRegards ", text)

	assert.Equal(t, DefaultOpenAIModel, got.Model)
	assert.Equal(t, int32(500), got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Write an invitation", got.Messages[1].Content)
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{
			name:   "API reported error",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`,
		},
		{
			name:   "Non JSON failure",
			status: http.StatusBadGateway,
			body:   `upstream unavailable`,
		},
		{
			name:   "No choices",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = client.Generate(context.Background(), Request{Prompt: "hi"})
			assert.ErrorIs(t, err, ErrGeneration)
		})
	}
}

func TestOpenAIClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: url})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), Request{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	assert.Error(t, err)
}

func TestNew_MissingCredentialIsConfigError(t *testing.T) {
	cfg := config.DefaultConfig().LLM
	cfg.OpenAIAPIKey = ""

	_, err := New(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrConfig)

	cfg.Provider = config.ProviderVertexAI
	cfg.GoogleCloudProject = ""
	_, err = New(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrConfig)
}

func TestNew_OpenAI(t *testing.T) {
	cfg := config.DefaultConfig().LLM
	cfg.OpenAIAPIKey = "sk-test"

	gen, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, gen)
	assert.NoError(t, Close(gen))
}

func TestGeneratorFunc(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		return "echo: " + req.Prompt, nil
	})
	text, err := gen.Generate(context.Background(), Request{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", text)
}

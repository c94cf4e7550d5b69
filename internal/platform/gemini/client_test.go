package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/teamai/teamai-api/internal/config"
	"github.com/teamai/teamai-api/internal/generation"
	"google.golang.org/genai"
)

type mockModels struct {
	mock.Mock
}

func (m *mockModels) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, model, contents, cfg)
	resp, _ := args.Get(0).(*genai.GenerateContentResponse)
	return resp, args.Error(1)
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{
		Provider:    "gemini",
		APIKey:      "AIza-test",
		Model:       "gemini-2.0-flash",
		Temperature: 0.5,
		MaxTokens:   1024,
	}
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: string(genai.RoleModel)}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content, FinishReason: genai.FinishReasonStop}},
	}
}

func TestNewClientWithoutCredential(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = "your-api-key-here"
	_, err := NewClient(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, generation.ErrConfigurationMissing)
}

func TestValidate(t *testing.T) {
	cfg := testConfig()
	cfg.Model = ""
	assert.ErrorIs(t, validate(cfg), generation.ErrInvalidConfig)

	cfg = testConfig()
	cfg.MaxTokens = 0
	assert.ErrorIs(t, validate(cfg), generation.ErrInvalidConfig)

	assert.NoError(t, validate(testConfig()))
}

func TestCompleteBuildsRequest(t *testing.T) {
	models := &mockModels{}
	c := newClient(models, testConfig(), nil)

	models.On("GenerateContent", mock.Anything, "gemini-2.0-flash",
		mock.MatchedBy(func(contents []*genai.Content) bool {
			return len(contents) == 1 &&
				contents[0].Role == string(genai.RoleUser) &&
				contents[0].Parts[0].Text == "user prompt"
		}),
		mock.MatchedBy(func(cfg *genai.GenerateContentConfig) bool {
			return cfg.SystemInstruction != nil &&
				cfg.SystemInstruction.Parts[0].Text == "system prompt" &&
				cfg.Temperature != nil && *cfg.Temperature == float32(0.5) &&
				cfg.MaxOutputTokens == 1024
		}),
	).Return(textResponse("[", "]"), nil)

	text, err := c.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	models.AssertExpectations(t)
}

func TestCompleteFailureKinds(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		err     error
		wantErr error
	}{
		{"api error", nil, errors.New("429 quota"), generation.ErrTransport},
		{"no candidates", &genai.GenerateContentResponse{}, nil, generation.ErrEmptyCompletion},
		{
			"safety block",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}},
			nil,
			generation.ErrEmptyCompletion,
		},
		{
			"nil content",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonStop}}},
			nil,
			generation.ErrEmptyCompletion,
		},
		{"blank text", textResponse(" ", "\n"), nil, generation.ErrEmptyCompletion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := &mockModels{}
			models.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(tt.resp, tt.err)

			_, err := newClient(models, testConfig(), nil).Complete(context.Background(), "s", "u")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

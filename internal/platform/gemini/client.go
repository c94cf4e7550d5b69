package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teamai/teamai-api/internal/config"
	"github.com/teamai/teamai-api/internal/generation"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"google.golang.org/genai"
)

// contentGenerator is the part of genai.Models used by Client.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Client sends completions to a Gemini model.
type Client struct {
	models      contentGenerator
	model       string
	temperature float32
	maxTokens   int32
	logger      *slog.Logger
}

var _ generation.CompletionClient = (*Client)(nil)

// NewClient creates a Gemini-backed client. It returns
// generation.ErrConfigurationMissing when no usable API key is configured.
func NewClient(ctx context.Context, cfg config.LLMConfig, l *slog.Logger) (*Client, error) {
	if !cfg.HasCredential() {
		return nil, generation.ErrConfigurationMissing
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newClient(gc.Models, cfg, l), nil
}

func validate(cfg config.LLMConfig) error {
	if strings.TrimSpace(cfg.Model) == "" {
		return fmt.Errorf("%w: model is required", generation.ErrInvalidConfig)
	}
	if cfg.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive", generation.ErrInvalidConfig)
	}
	return nil
}

func newClient(models contentGenerator, cfg config.LLMConfig, l *slog.Logger) *Client {
	if l == nil {
		l = slog.Default()
	}
	return &Client{
		models:      models,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
		logger:      l.With(slog.String("component", "gemini_client")),
	}
}

// Complete implements generation.CompletionClient.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	temperature := c.temperature
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
		Temperature:     &temperature,
		MaxOutputTokens: c.maxTokens,
	}
	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrTransport, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", generation.ErrEmptyCompletion)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		log.Warn("gemini withheld the completion", slog.String("finish_reason", string(candidate.FinishReason)))
		return "", fmt.Errorf("%w: blocked by safety filters", generation.ErrEmptyCompletion)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: candidate has no content", generation.ErrEmptyCompletion)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: candidate text is empty", generation.ErrEmptyCompletion)
	}
	return text, nil
}

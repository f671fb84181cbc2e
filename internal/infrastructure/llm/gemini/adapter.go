package gemini

import (
	"context"
	"fmt"
	"strings"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"

	"google.golang.org/genai"
)

var _ output.LLMPort = (*GeminiAdapter)(nil)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return Config{APIKey: apiKey, Model: model}
}

type GeminiAdapter struct {
	client *genai.Client
	model  string
	logger output.LoggerPort
}

func NewGeminiAdapter(ctx context.Context, cfg Config) (*GeminiAdapter, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiAdapter{client: client, model: cfg.Model, logger: cfg.Logger}, nil
}

func (a *GeminiAdapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	system, contents := convertMessages(req.Messages)

	config := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       genai.Ptr(req.Temperature),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSONResponse {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generate content failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	if a.logger != nil && resp.UsageMetadata != nil {
		a.logger.Debug("Gemini response received",
			"model", a.model,
			"promptTokens", resp.UsageMetadata.PromptTokenCount,
			"candidateTokens", resp.UsageMetadata.CandidatesTokenCount,
		)
	}

	return &output.ChatResponse{
		Message: entity.Message{Role: entity.RoleAssistant, Content: resp.Text()},
	}, nil
}

// convertMessages splits system messages into one system instruction and maps
// the rest onto user and model turns.
func convertMessages(messages []entity.Message) (*genai.Content, []*genai.Content) {
	var systemParts []string
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == entity.RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}

		parts := make([]*genai.Part, 0, len(msg.Images)+1)
		if msg.Content != "" {
			parts = append(parts, genai.NewPartFromText(msg.Content))
		}
		for _, img := range msg.Images {
			mime := img.MIMEType
			if mime == "" {
				mime = "image/jpeg"
			}
			parts = append(parts, genai.NewPartFromBytes(img.Data, mime))
		}

		role := genai.Role(genai.RoleUser)
		if msg.Role == entity.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromParts(parts, role))
	}

	if len(systemParts) == 0 {
		return nil, contents
	}
	return genai.NewContentFromText(strings.Join(systemParts, "\n\n"), genai.RoleUser), contents
}

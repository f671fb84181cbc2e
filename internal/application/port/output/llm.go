package output

import (
	"context"

	"desktop-agent/internal/domain/entity"
)

type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages     []entity.Message
	Temperature  float32
	MaxTokens    int
	JSONResponse bool
}

type ChatResponse struct {
	Message entity.Message
}

package output

import (
	"context"

	"desktop-agent/internal/domain/entity"
)

type ProgressPort interface {
	ShowStep(ctx context.Context, step, total int, cmd entity.Command)
	ShowResult(ctx context.Context, result entity.ExecutionResult)
	ShowThinking(ctx context.Context, content string)
	Confirm(ctx context.Context, question string) (bool, error)
}

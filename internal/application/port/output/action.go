package output

import (
	"context"

	"desktop-agent/internal/domain/entity"
)

type ActionHandler interface {
	Key() entity.ActionKey
	Description() string
	Parameters() []string
	Execute(ctx context.Context, cmd entity.Command) entity.ExecutionResult
}

type ActionRegistry interface {
	Register(handler ActionHandler)
	Get(key entity.ActionKey) (ActionHandler, bool)
	All() []ActionHandler
	Definitions() []entity.ActionDefinition
}

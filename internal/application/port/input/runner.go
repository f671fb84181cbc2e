package input

import (
	"context"

	"desktop-agent/internal/domain/entity"
)

// CommandRunner turns directives into executed steps against the screen.
type CommandRunner interface {
	RunText(ctx context.Context, text string) (*entity.SequenceReport, error)
	RunCommands(ctx context.Context, cmds []entity.Command) (*entity.SequenceReport, error)
}

type AgentRunner interface {
	RunAgent(ctx context.Context, goal string) (*entity.AgentStepState, error)
}

type PlanRunner interface {
	RunPlan(ctx context.Context, request string) (*entity.Plan, *entity.SequenceReport, error)
}

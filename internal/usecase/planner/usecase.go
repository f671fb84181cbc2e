package planner

import (
	"context"
	"fmt"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/prompts"
	"desktop-agent/internal/usecase/oracle"
)

type Oracle interface {
	Ask(ctx context.Context, system, prompt string, shot *entity.Screenshot) (oracle.Answer, error)
}

type UseCase struct {
	oracle               Oracle
	screen               output.ScreenPort
	registry             output.ActionRegistry
	logger               output.LoggerPort
	systemPromptTemplate string
}

func New(
	oracle Oracle,
	screen output.ScreenPort,
	registry output.ActionRegistry,
	logger output.LoggerPort,
	systemPromptTemplate string,
) *UseCase {
	return &UseCase{
		oracle:               oracle,
		screen:               screen,
		registry:             registry,
		logger:               logger,
		systemPromptTemplate: systemPromptTemplate,
	}
}

// Plan asks the oracle once for the full command list of request. Commands
// after the first invalid one are dropped; the invalid step is reported in
// Plan.Invalid.
func (uc *UseCase) Plan(ctx context.Context, request string) (*entity.Plan, error) {
	systemPrompt, err := prompts.GenerateSystemPrompt(uc.systemPromptTemplate, uc.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate system prompt: %w", err)
	}
	prompt, err := prompts.RenderRequest(request)
	if err != nil {
		return nil, fmt.Errorf("failed to build request prompt: %w", err)
	}

	var shot *entity.Screenshot
	if NeedsVisualContext(request) {
		shot, err = uc.screen.Capture(ctx)
		if err != nil {
			uc.logger.Warn("Screenshot for planning failed, planning without it", "error", err)
			shot = nil
		}
	}

	answer, err := uc.oracle.Ask(ctx, systemPrompt, prompt, shot)
	if err != nil {
		return nil, err
	}

	doc, err := oracle.DecodePlan(answer.Text)
	if err != nil {
		uc.logger.Error("Plan decode failed", "error", err, "response", answer.Text)
		return nil, err
	}

	plan := &entity.Plan{
		Success:              doc.Succeeded(),
		Explanation:          doc.Explanation,
		Warnings:             doc.Warnings,
		RequiresConfirmation: doc.RequiresConfirmation,
	}

	for i, d := range doc.Commands {
		cmd, err := d.ToCommand(answer.Scale)
		if err != nil {
			kind := d.CommandType
			if kind == "" {
				kind = d.Kind
			}
			plan.Invalid = append(plan.Invalid, fmt.Sprintf("Step %d invalid command: %s/%s", i+1, kind, d.Action))
			uc.logger.Warn("Plan contains invalid command", "step", i+1, "error", err)
			break
		}
		plan.Commands = append(plan.Commands, cmd)
	}

	uc.logger.Info("Plan generated",
		"success", plan.Success,
		"commands", len(plan.Commands),
		"invalid", len(plan.Invalid),
		"visual", shot != nil,
	)
	return plan, nil
}

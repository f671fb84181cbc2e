package session

import (
	"context"
	"fmt"

	"desktop-agent/internal/application/port/input"
	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/application/service"
	"desktop-agent/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	_ input.CommandRunner = (*UseCase)(nil)
	_ input.AgentRunner   = (*UseCase)(nil)
	_ input.PlanRunner    = (*UseCase)(nil)
)

type Parser interface {
	ParseSequence(text string) []entity.Command
}

type Sequencer interface {
	ExecuteSequence(ctx context.Context, cmds []entity.Command) (bool, []entity.ExecutionResult)
}

type Planner interface {
	Plan(ctx context.Context, request string) (*entity.Plan, error)
}

// UseCase is the entry point for every caller that drives the screen. All
// runs go through one ScreenLock.
type UseCase struct {
	parser    Parser
	sequencer Sequencer
	planner   Planner
	agent     input.AgentRunner
	lock      *service.ScreenLock
	progress  output.ProgressPort
	logger    output.LoggerPort
}

func New(
	parser Parser,
	sequencer Sequencer,
	planner Planner,
	agent input.AgentRunner,
	lock *service.ScreenLock,
	progress output.ProgressPort,
	logger output.LoggerPort,
) *UseCase {
	return &UseCase{
		parser:    parser,
		sequencer: sequencer,
		planner:   planner,
		agent:     agent,
		lock:      lock,
		progress:  progress,
		logger:    logger,
	}
}

func (uc *UseCase) RunText(ctx context.Context, text string) (*entity.SequenceReport, error) {
	cmds := uc.parser.ParseSequence(text)
	uc.logger.Debug("Text parsed", "text", text, "commands", len(cmds))
	return uc.RunCommands(ctx, cmds)
}

func (uc *UseCase) RunCommands(ctx context.Context, cmds []entity.Command) (*entity.SequenceReport, error) {
	release, err := uc.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return uc.runLocked(ctx, cmds), nil
}

func (uc *UseCase) RunAgent(ctx context.Context, goal string) (*entity.AgentStepState, error) {
	release, err := uc.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return uc.agent.RunAgent(ctx, goal)
}

// RunPlan plans request with one oracle call and executes the result. Plans
// that ask for confirmation run only if the progress port confirms.
func (uc *UseCase) RunPlan(ctx context.Context, request string) (*entity.Plan, *entity.SequenceReport, error) {
	release, err := uc.lock.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	plan, err := uc.planner.Plan(ctx, request)
	if err != nil {
		return nil, nil, fmt.Errorf("planning failed: %w", err)
	}

	if !plan.Success {
		msg := plan.Explanation
		if msg == "" {
			msg = "The request could not be planned"
		}
		return plan, uc.rejected(entity.CodeExecution, msg), nil
	}

	if plan.RequiresConfirmation {
		confirmed := false
		if uc.progress != nil {
			confirmed, err = uc.progress.Confirm(ctx, fmt.Sprintf("%s\nRun %d command(s)?", plan.Explanation, len(plan.Commands)))
			if err != nil {
				return plan, nil, fmt.Errorf("confirmation failed: %w", err)
			}
		}
		if !confirmed {
			uc.logger.Warn("Plan not confirmed", "request", request)
			return plan, uc.rejected(entity.CodePolicyBlocked, "Plan requires confirmation and was not confirmed"), nil
		}
	}

	var report *entity.SequenceReport
	if len(plan.Commands) == 0 && len(plan.Invalid) > 0 {
		report = &entity.SequenceReport{RunID: uuid.NewString(), Success: true}
	} else {
		report = uc.runLocked(ctx, plan.Commands)
	}
	// The invalid step comes after the valid prefix, so it is only reached
	// when the prefix succeeded.
	if report.Success && len(plan.Invalid) > 0 {
		report.Success = false
		report.Results = append(report.Results, entity.Failed(entity.CodeInvalidCommand, plan.Invalid[0]))
		report.StepsAttempted = len(report.Results)
	}
	return plan, report, nil
}

func (uc *UseCase) runLocked(ctx context.Context, cmds []entity.Command) *entity.SequenceReport {
	runID := uuid.NewString()
	log := uc.logger.WithField("run_id", runID)

	if len(cmds) == 0 {
		log.Warn("Empty sequence")
		return &entity.SequenceReport{
			RunID:   runID,
			Results: []entity.ExecutionResult{entity.Failed(entity.CodeParseFailure, "No commands provided")},
		}
	}

	log.Info("Sequence started", "steps", len(cmds))
	ok, results := uc.sequencer.ExecuteSequence(ctx, cmds)
	log.Info("Sequence finished", "success", ok, "stepsAttempted", len(results))

	return &entity.SequenceReport{
		RunID:          runID,
		Success:        ok,
		Results:        results,
		StepsAttempted: len(results),
	}
}

func (uc *UseCase) rejected(code entity.ErrorCode, msg string) *entity.SequenceReport {
	return &entity.SequenceReport{
		RunID:   uuid.NewString(),
		Results: []entity.ExecutionResult{entity.Failed(code, msg)},
	}
}

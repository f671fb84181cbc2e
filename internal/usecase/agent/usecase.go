package agent

import (
	"context"
	"errors"
	"fmt"

	"desktop-agent/internal/application/port/input"
	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/prompts"
	"desktop-agent/internal/usecase/oracle"

	"github.com/google/uuid"
)

const DefaultMaxSteps = 15

var _ input.AgentRunner = (*UseCase)(nil)

type Oracle interface {
	Ask(ctx context.Context, system, prompt string, shot *entity.Screenshot) (oracle.Answer, error)
}

type Executor interface {
	Execute(ctx context.Context, cmd entity.Command) entity.ExecutionResult
}

type UseCase struct {
	oracle               Oracle
	executor             Executor
	screen               output.ScreenPort
	registry             output.ActionRegistry
	logger               output.LoggerPort
	progress             output.ProgressPort
	systemPromptTemplate string
	maxSteps             int
}

func New(
	oracle Oracle,
	executor Executor,
	screen output.ScreenPort,
	registry output.ActionRegistry,
	logger output.LoggerPort,
	progress output.ProgressPort,
	systemPromptTemplate string,
	maxSteps int,
) *UseCase {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	if progress == nil {
		progress = silentProgress{}
	}
	return &UseCase{
		oracle:               oracle,
		executor:             executor,
		screen:               screen,
		registry:             registry,
		logger:               logger,
		progress:             progress,
		systemPromptTemplate: systemPromptTemplate,
		maxSteps:             maxSteps,
	}
}

// RunAgent drives turns until the oracle reports a terminal status, the step
// budget runs out or ctx is cancelled. Cancellation is observed between turns.
func (uc *UseCase) RunAgent(ctx context.Context, goal string) (*entity.AgentStepState, error) {
	runID := uuid.NewString()
	log := uc.logger.WithField("run_id", runID)
	log.Info("Agent run started", "goal", goal, "maxSteps", uc.maxSteps)

	systemPrompt, err := prompts.GenerateSystemPrompt(uc.systemPromptTemplate, uc.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate system prompt: %w", err)
	}

	history := entity.NewHistory()
	for turn := 1; turn <= uc.maxSteps; turn++ {
		if err := ctx.Err(); err != nil {
			return uc.finish(log, cancelled(runID, goal, history, err)), nil
		}

		shot, err := uc.screen.Capture(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return uc.finish(log, cancelled(runID, goal, history, ctx.Err())), nil
			}
			return uc.finish(log, failed(runID, goal, history, entity.FailureCapture,
				fmt.Sprintf("Could not capture the screen: %v", err))), nil
		}

		state, err := uc.step(ctx, log.WithField("turn", turn), systemPrompt, goal, history, shot, uc.maxSteps-turn)
		if err != nil {
			return nil, err
		}
		state.RunID = runID
		if state.Status.Terminal() {
			return uc.finish(log, state), nil
		}
	}

	return uc.finish(log, failed(runID, goal, history, entity.FailureBudgetExhausted,
		fmt.Sprintf("Step budget of %d exhausted before the goal was reached", uc.maxSteps))), nil
}

// RunAgentStep performs one turn against shot and appends at most one record
// to history.
func (uc *UseCase) RunAgentStep(ctx context.Context, goal string, history *entity.History, shot *entity.Screenshot) (*entity.AgentStepState, error) {
	systemPrompt, err := prompts.GenerateSystemPrompt(uc.systemPromptTemplate, uc.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate system prompt: %w", err)
	}
	return uc.step(ctx, uc.logger, systemPrompt, goal, history, shot, uc.maxSteps-history.Len()-1)
}

func (uc *UseCase) step(
	ctx context.Context,
	log output.LoggerPort,
	systemPrompt, goal string,
	history *entity.History,
	shot *entity.Screenshot,
	stepsLeft int,
) (*entity.AgentStepState, error) {
	if history == nil {
		history = entity.NewHistory()
	}

	prompt, err := BuildTurnPrompt(goal, history, stepsLeft)
	if err != nil {
		return nil, fmt.Errorf("failed to build turn prompt: %w", err)
	}

	answer, err := uc.oracle.Ask(ctx, systemPrompt, prompt, shot)
	if err != nil {
		if ctx.Err() != nil {
			return cancelled("", goal, history, ctx.Err()), nil
		}
		log.Error("Oracle request failed", "error", err)
		return failed("", goal, history, entity.FailureOracleError,
			fmt.Sprintf("The reasoning service could not be reached: %v", err)), nil
	}

	doc, err := oracle.DecodeStep(answer.Text)
	if err != nil {
		log.Error("Oracle response decode failed", "error", err, "response", answer.Text)
		return failed("", goal, history, entity.FailureDecode,
			fmt.Sprintf("The reasoning service returned a response that could not be decoded: %v", err)), nil
	}

	if doc.Reasoning != "" {
		uc.progress.ShowThinking(ctx, doc.Reasoning)
	}

	state := &entity.AgentStepState{
		Goal:          goal,
		History:       history,
		Status:        doc.AgentStatus(),
		Reasoning:     doc.Reasoning,
		FinalResponse: doc.FinalResponse,
		Warnings:      doc.Warnings,
	}

	switch state.Status {
	case entity.StatusComplete:
		if state.FinalResponse == "" {
			state.FinalResponse = "Goal completed"
		}
		return state, nil
	case entity.StatusFailed:
		state.Reason = entity.FailureOracleGaveUp
		if state.FinalResponse == "" {
			state.FinalResponse = "The reasoning service reported the goal cannot be completed"
			if doc.Reasoning != "" {
				state.FinalResponse += ": " + doc.Reasoning
			}
		}
		return state, nil
	}

	if len(doc.Commands) != 1 {
		log.Warn("Oracle returned wrong number of commands", "count", len(doc.Commands))
		return failed("", goal, history, entity.FailureDecode,
			fmt.Sprintf("Expected exactly one command to continue, got %d", len(doc.Commands))), nil
	}

	cmd, err := doc.Commands[0].ToCommand(answer.Scale)
	if err != nil {
		log.Warn("Oracle command rejected", "error", err)
		return failed("", goal, history, entity.FailureDecode,
			fmt.Sprintf("The proposed command is not valid: %v", err)), nil
	}
	cmd = excludeTried(cmd, triedTargets(history))

	uc.progress.ShowStep(ctx, history.Len()+1, history.Len()+1+max(stepsLeft, 0), cmd)
	result := uc.executor.Execute(ctx, cmd)
	uc.progress.ShowResult(ctx, result)

	record := entity.StepRecord{Command: cmd, Result: result, Reasoning: doc.Reasoning}
	if tried, stuck := detectStuck(history.Last(stuckWindow), cmd, result); stuck {
		record.StuckDetected = true
		record.AlreadyTried = tried
		log.Warn("Agent is stuck", "alreadyTried", tried)
	}
	history.Append(record)

	log.Info("Agent step executed",
		"command", cmd.Key().String(),
		"success", result.Success,
		"stuck", record.StuckDetected,
	)
	return state, nil
}

func (uc *UseCase) finish(log output.LoggerPort, state *entity.AgentStepState) *entity.AgentStepState {
	log.Info("Agent run finished",
		"status", state.Status,
		"reason", state.Reason,
		"steps", state.History.Len(),
	)
	return state
}

func failed(runID, goal string, history *entity.History, reason entity.FailureReason, message string) *entity.AgentStepState {
	return &entity.AgentStepState{
		RunID:         runID,
		Goal:          goal,
		History:       history,
		Status:        entity.StatusFailed,
		FinalResponse: message,
		Reason:        reason,
	}
}

func cancelled(runID, goal string, history *entity.History, err error) *entity.AgentStepState {
	msg := "Run cancelled"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "Run timed out"
	}
	return failed(runID, goal, history, entity.FailureCancelled, msg)
}

type silentProgress struct{}

func (silentProgress) ShowStep(context.Context, int, int, entity.Command) {}
func (silentProgress) ShowResult(context.Context, entity.ExecutionResult) {}
func (silentProgress) ShowThinking(context.Context, string) {}
func (silentProgress) Confirm(context.Context, string) (bool, error) { return false, nil }

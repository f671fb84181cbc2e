package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Dispatcher struct {
	registry output.ActionRegistry
	auth     output.AuthorizationPort
	logger   output.LoggerPort
	progress output.ProgressPort
	sleep    SleepFunc
}

type Option func(*Dispatcher)

// WithSleep replaces the settle delay clock, mostly for tests.
func WithSleep(fn SleepFunc) Option {
	return func(d *Dispatcher) {
		d.sleep = fn
	}
}

// WithProgress reports every sequence step to p as it starts and finishes.
func WithProgress(p output.ProgressPort) Option {
	return func(d *Dispatcher) {
		d.progress = p
	}
}

func NewDispatcher(registry output.ActionRegistry, auth output.AuthorizationPort, logger output.LoggerPort, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		auth:     auth,
		logger:   logger,
		sleep:    contextSleep,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) allowed(cmd entity.Command) bool {
	return d.auth == nil || d.auth.IsAllowed(cmd.Kind, cmd.Action)
}

// Execute runs one command behind the authorization gate. It always returns
// a result; step failures are never reported as Go errors.
func (d *Dispatcher) Execute(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
	if !d.allowed(cmd) {
		d.logger.Warn("Command blocked by policy", "command", cmd.Key().String())
		return entity.Failed(entity.CodePolicyBlocked,
			fmt.Sprintf("Command not allowed by security policy: %s", cmd.Key()))
	}
	return d.execute(ctx, cmd)
}

func (d *Dispatcher) execute(ctx context.Context, cmd entity.Command) (result entity.ExecutionResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = entity.Failed(entity.CodeExecution, fmt.Sprintf("Error executing command: %v", r))
		}
		d.logger.Info("Command executed",
			"command", cmd.Key().String(),
			"params", cmd.Params.String(),
			"success", result.Success,
			"message", result.Message,
			"duration", time.Since(start),
		)
	}()

	if err := cmd.Validate(); err != nil {
		if errors.Is(err, entity.ErrUnknownCommand) {
			return entity.Failed(entity.CodeParseFailure, fmt.Sprintf("Unknown command: %s", cmd.RawText))
		}
		if _, ok := d.registry.Get(cmd.Key()); !ok {
			return entity.Failed(entity.CodeInvalidCommand, fmt.Sprintf("Unknown %s action: %s", cmd.Kind, cmd.Action))
		}
		return entity.Failed(entity.CodeInvalidCommand, err.Error())
	}

	handler, ok := d.registry.Get(cmd.Key())
	if !ok {
		return entity.Failed(entity.CodeInvalidCommand, fmt.Sprintf("Unknown %s action: %s", cmd.Kind, cmd.Action))
	}
	return handler.Execute(ctx, cmd)
}

// ExecuteSequence runs commands in order. It stops at the first failure or
// policy block, and honors cancellation between steps only. The returned
// slice holds every result produced, the failing one last.
func (d *Dispatcher) ExecuteSequence(ctx context.Context, cmds []entity.Command) (bool, []entity.ExecutionResult) {
	results := make([]entity.ExecutionResult, 0, len(cmds))
	finish := func(res entity.ExecutionResult) []entity.ExecutionResult {
		if d.progress != nil {
			d.progress.ShowResult(ctx, res)
		}
		return append(results, res)
	}

	for i, cmd := range cmds {
		step := i + 1
		if err := ctx.Err(); err != nil {
			d.logger.Warn("Sequence cancelled", "step", step, "error", err)
			return false, finish(entity.Failed(entity.CodeCancelled, fmt.Sprintf("Step %d cancelled: %v", step, err)))
		}

		if d.progress != nil {
			d.progress.ShowStep(ctx, step, len(cmds), cmd)
		}

		if !d.allowed(cmd) {
			d.logger.Warn("Sequence step blocked by policy", "step", step, "command", cmd.Key().String())
			return false, finish(entity.Failed(entity.CodePolicyBlocked, fmt.Sprintf("Step %d blocked: %s", step, cmd.Key())))
		}

		res := d.execute(ctx, cmd)
		results = finish(res)
		if !res.Success {
			d.logger.Warn("Sequence aborted", "step", step, "message", res.Message)
			return false, results
		}

		if step < len(cmds) {
			if err := d.sleep(ctx, SettleDelay(cmd)); err != nil && ctx.Err() != nil {
				d.logger.Warn("Sequence cancelled during settle delay", "step", step, "error", err)
				return false, finish(entity.Failed(entity.CodeCancelled, fmt.Sprintf("Step %d cancelled: %v", step+1, err)))
			}
		}
	}
	return true, results
}

// SettleDelay is the pause after cmd before the next step observes the screen.
func SettleDelay(cmd entity.Command) time.Duration {
	switch {
	case cmd.Kind == entity.KindProgram && cmd.Action == entity.ActionStart:
		return 1500 * time.Millisecond
	case cmd.Kind == entity.KindWeb && (cmd.Action == entity.ActionSearch || cmd.Action == entity.ActionNavigate):
		return time.Second
	case cmd.Kind == entity.KindScreenshot:
		return 300 * time.Millisecond
	case cmd.Kind == entity.KindMouse && (cmd.Action == entity.ActionClick || cmd.Action == entity.ActionDoubleClick || cmd.Action == entity.ActionRightClick):
		return 400 * time.Millisecond
	default:
		return 200 * time.Millisecond
	}
}

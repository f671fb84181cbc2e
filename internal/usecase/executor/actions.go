package executor

import (
	"context"
	"strconv"
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

// TargetResolver turns a target description into screen candidates.
type TargetResolver interface {
	Resolve(ctx context.Context, description string, shot *entity.Screenshot, exclude []string) ([]entity.FoundElement, error)
}

// Ports are the collaborators the built-in handlers drive. A nil port makes
// its handlers fail with an execution error instead of panicking.
type Ports struct {
	Screen   output.ScreenPort
	Input    output.InputPort
	System   output.SystemPort
	Files    output.FilePort
	Web      output.WebPort
	Resolver TargetResolver
}

type Actions struct {
	ports         Ports
	logger        output.LoggerPort
	screenshotDir string
	sleep         SleepFunc
	now           func() time.Time
}

type ActionsOption func(*Actions)

func WithScreenshotDir(dir string) ActionsOption {
	return func(a *Actions) {
		a.screenshotDir = dir
	}
}

func WithWaitFunc(fn SleepFunc) ActionsOption {
	return func(a *Actions) {
		a.sleep = fn
	}
}

func NewActions(ports Ports, logger output.LoggerPort, opts ...ActionsOption) *Actions {
	a := &Actions{
		ports:         ports,
		logger:        logger,
		screenshotDir: ".",
		sleep:         contextSleep,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ output.ActionHandler = (*handler)(nil)

type handler struct {
	key         entity.ActionKey
	description string
	parameters  []string
	run         func(ctx context.Context, cmd entity.Command) entity.ExecutionResult
}

func (h *handler) Key() entity.ActionKey {
	return h.key
}

func (h *handler) Description() string {
	return h.description
}

func (h *handler) Parameters() []string {
	return h.parameters
}

func (h *handler) Execute(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
	return h.run(ctx, cmd)
}

// Register adds every built-in handler to reg.
func (a *Actions) Register(reg output.ActionRegistry) {
	for _, h := range a.handlers() {
		reg.Register(h)
	}
}

func (a *Actions) handlers() []*handler {
	var hs []*handler
	hs = append(hs, a.mouseHandlers()...)
	hs = append(hs, a.keyboardHandlers()...)
	hs = append(hs, a.screenshotHandlers()...)
	hs = append(hs, a.systemHandlers()...)
	hs = append(hs, a.fileHandlers()...)
	hs = append(hs, a.programHandlers()...)
	hs = append(hs, a.webHandlers()...)
	hs = append(hs, a.utilityHandlers()...)
	return hs
}

func newHandler(kind entity.CommandKind, action entity.CommandAction, description string, params []string, run func(context.Context, entity.Command) entity.ExecutionResult) *handler {
	return &handler{
		key:         entity.ActionKey{Kind: kind, Action: action},
		description: description,
		parameters:  params,
		run:         run,
	}
}

func failure(message string, err error) entity.ExecutionResult {
	res := entity.Failed(entity.CodeExecution, message)
	if err != nil {
		res.Data["error"] = err.Error()
	}
	return res
}

// seconds prints a duration the way users wrote it: "2.5", "1.0".
func seconds(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

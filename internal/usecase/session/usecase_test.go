package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"desktop-agent/internal/application/service"
	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubParser struct {
	cmds []entity.Command
}

func (p stubParser) ParseSequence(string) []entity.Command { return p.cmds }

type stubSequencer struct {
	got [][]entity.Command
	ok  bool
}

func (s *stubSequencer) ExecuteSequence(_ context.Context, cmds []entity.Command) (bool, []entity.ExecutionResult) {
	s.got = append(s.got, cmds)
	results := make([]entity.ExecutionResult, len(cmds))
	for i := range cmds {
		results[i] = entity.Succeeded("done", nil)
	}
	if !s.ok && len(results) > 0 {
		results[len(results)-1] = entity.Failed(entity.CodeExecution, "boom")
	}
	return s.ok, results
}

type stubPlanner struct {
	plan *entity.Plan
	err  error
}

func (p stubPlanner) Plan(context.Context, string) (*entity.Plan, error) { return p.plan, p.err }

type stubAgent struct {
	calls int
}

func (a *stubAgent) RunAgent(context.Context, string) (*entity.AgentStepState, error) {
	a.calls++
	return &entity.AgentStepState{Status: entity.StatusComplete}, nil
}

type stubProgress struct {
	confirm   bool
	questions []string
}

func (p *stubProgress) ShowStep(context.Context, int, int, entity.Command) {}
func (p *stubProgress) ShowResult(context.Context, entity.ExecutionResult) {}
func (p *stubProgress) ShowThinking(context.Context, string) {}
func (p *stubProgress) Confirm(_ context.Context, q string) (bool, error) {
	p.questions = append(p.questions, q)
	return p.confirm, nil
}

func press(key string) entity.Command {
	return entity.NewCommand(entity.KindKeyboard, entity.ActionKeyPress, entity.NewParams("key", key), 1, "press "+key)
}

type fixture struct {
	uc       *UseCase
	seq      *stubSequencer
	agent    *stubAgent
	progress *stubProgress
	lock     *service.ScreenLock
}

func newFixture(parsed []entity.Command, planner stubPlanner) *fixture {
	f := &fixture{
		seq:      &stubSequencer{ok: true},
		agent:    &stubAgent{},
		progress: &stubProgress{},
		lock:     service.NewScreenLock(),
	}
	f.uc = New(stubParser{cmds: parsed}, f.seq, planner, f.agent, f.lock, f.progress, logger.NewNop())
	return f
}

func TestRunText_Report(t *testing.T) {
	f := newFixture([]entity.Command{press("a"), press("b")}, stubPlanner{})

	report, err := f.uc.RunText(context.Background(), "press a then press b")

	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, 2, report.StepsAttempted)
	assert.Equal(t, []string{"done", "done"}, report.Messages())
	assert.NotEmpty(t, report.RunID)
}

func TestRunCommands_Empty(t *testing.T) {
	f := newFixture(nil, stubPlanner{})

	report, err := f.uc.RunCommands(context.Background(), nil)

	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Equal(t, "No commands provided", report.Results[0].Message)
	assert.Empty(t, f.seq.got)
}

func TestRunCommands_WaitsForScreen(t *testing.T) {
	f := newFixture(nil, stubPlanner{})
	release, ok := f.lock.TryAcquire()
	require.True(t, ok)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.uc.RunCommands(ctx, []entity.Command{press("a")})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, f.seq.got, "nothing runs while another run holds the screen")

	_, err = f.uc.RunAgent(ctx, "goal")
	assert.Error(t, err)
	assert.Zero(t, f.agent.calls)
}

func TestRunCommands_ReleasesLock(t *testing.T) {
	f := newFixture(nil, stubPlanner{})

	_, err := f.uc.RunCommands(context.Background(), []entity.Command{press("a")})
	require.NoError(t, err)

	release, ok := f.lock.TryAcquire()
	require.True(t, ok)
	release()
}

func TestRunAgent_Delegates(t *testing.T) {
	f := newFixture(nil, stubPlanner{})

	state, err := f.uc.RunAgent(context.Background(), "goal")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusComplete, state.Status)
	assert.Equal(t, 1, f.agent.calls)
}

func TestRunPlan(t *testing.T) {
	t.Run("executes plan", func(t *testing.T) {
		f := newFixture(nil, stubPlanner{plan: &entity.Plan{Success: true, Commands: []entity.Command{press("a")}}})

		plan, report, err := f.uc.RunPlan(context.Background(), "press a")

		require.NoError(t, err)
		assert.True(t, plan.Success)
		assert.True(t, report.Success)
		assert.Len(t, f.seq.got, 1)
	})

	t.Run("declined by oracle", func(t *testing.T) {
		f := newFixture(nil, stubPlanner{plan: &entity.Plan{Success: false, Explanation: "Not possible"}})

		_, report, err := f.uc.RunPlan(context.Background(), "x")

		require.NoError(t, err)
		assert.False(t, report.Success)
		assert.Equal(t, []string{"Not possible"}, report.Messages())
		assert.Empty(t, f.seq.got)
	})

	t.Run("confirmation refused", func(t *testing.T) {
		f := newFixture(nil, stubPlanner{plan: &entity.Plan{Success: true, RequiresConfirmation: true, Explanation: "Shut down", Commands: []entity.Command{press("a")}}})

		_, report, err := f.uc.RunPlan(context.Background(), "shut down")

		require.NoError(t, err)
		assert.False(t, report.Success)
		assert.Equal(t, entity.CodePolicyBlocked, report.Results[0].ErrorCode())
		require.Len(t, f.progress.questions, 1)
		assert.Contains(t, f.progress.questions[0], "Shut down")
		assert.Empty(t, f.seq.got)
	})

	t.Run("confirmation accepted", func(t *testing.T) {
		f := newFixture(nil, stubPlanner{plan: &entity.Plan{Success: true, RequiresConfirmation: true, Commands: []entity.Command{press("a")}}})
		f.progress.confirm = true

		_, report, err := f.uc.RunPlan(context.Background(), "x")

		require.NoError(t, err)
		assert.True(t, report.Success)
	})

	t.Run("invalid step reported after valid prefix", func(t *testing.T) {
		f := newFixture(nil, stubPlanner{plan: &entity.Plan{
			Success:  true,
			Commands: []entity.Command{press("a")},
			Invalid:  []string{"Step 2 invalid command: mouse/teleport"},
		}})

		_, report, err := f.uc.RunPlan(context.Background(), "x")

		require.NoError(t, err)
		assert.False(t, report.Success)
		assert.Equal(t, 2, report.StepsAttempted)
		assert.Equal(t, "Step 2 invalid command: mouse/teleport", report.Results[1].Message)
	})

	t.Run("first step invalid", func(t *testing.T) {
		f := newFixture(nil, stubPlanner{plan: &entity.Plan{
			Success: true,
			Invalid: []string{"Step 1 invalid command: mouse/teleport"},
		}})

		_, report, err := f.uc.RunPlan(context.Background(), "x")

		require.NoError(t, err)
		assert.False(t, report.Success)
		assert.Equal(t, 1, report.StepsAttempted)
		assert.Equal(t, []string{"Step 1 invalid command: mouse/teleport"}, report.Messages())
		assert.Equal(t, entity.CodeInvalidCommand, report.Results[0].ErrorCode())
		assert.Empty(t, f.seq.got)
	})

	t.Run("planner error", func(t *testing.T) {
		f := newFixture(nil, stubPlanner{err: entity.ErrOracleDecode})

		_, _, err := f.uc.RunPlan(context.Background(), "x")

		assert.True(t, errors.Is(err, entity.ErrOracleDecode))
	})
}

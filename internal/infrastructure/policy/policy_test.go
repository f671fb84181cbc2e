package policy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type answer struct {
	ok    bool
	err   error
	asked []string
}

func (a *answer) Confirm(_ context.Context, q string) (bool, error) {
	a.asked = append(a.asked, q)
	return a.ok, a.err
}

func writePolicy(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil, logger.NewNop())

	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), p.Settings())
	assert.True(t, p.IsAllowed(entity.KindProgram, entity.ActionStart))
	assert.False(t, p.IsAllowed(entity.KindSystem, entity.ActionShutdown), "needs confirmation and nobody can give it")
}

func TestLoad_RejectsUnknownLevel(t *testing.T) {
	path := writePolicy(t, t.TempDir(), "level: paranoid\n")

	_, err := Load(path, nil, logger.NewNop())

	assert.ErrorContains(t, err, "paranoid")
}

func TestIsAllowed_Levels(t *testing.T) {
	tests := []struct {
		level  string
		kind   entity.CommandKind
		action entity.CommandAction
		want   bool
	}{
		{"safe_mode", entity.KindMouse, entity.ActionClick, true},
		{"safe_mode", entity.KindScreenshot, entity.ActionCapture, true},
		{"safe_mode", entity.KindProgram, entity.ActionStart, false},
		{"strict", entity.KindProgram, entity.ActionStart, true},
		{"strict", entity.KindFile, entity.ActionCopy, false},
		{"strict", entity.KindSystem, entity.ActionSleep, false},
		{"moderate", entity.KindFile, entity.ActionCopy, true},
		{"unrestricted", entity.KindSystem, entity.ActionShutdown, true},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+string(tt.action), func(t *testing.T) {
			path := writePolicy(t, t.TempDir(), "level: "+tt.level+"\n")
			p, err := Load(path, nil, logger.NewNop())
			require.NoError(t, err)

			assert.Equal(t, tt.want, p.IsAllowed(tt.kind, tt.action))
		})
	}
}

func TestIsAllowed_BlockedActions(t *testing.T) {
	path := writePolicy(t, t.TempDir(), "level: unrestricted\nblocked_actions:\n  - file/delete\n  - navigate\n")
	p, err := Load(path, nil, logger.NewNop())
	require.NoError(t, err)

	assert.False(t, p.IsAllowed(entity.KindFile, entity.ActionDelete))
	assert.False(t, p.IsAllowed(entity.KindWeb, entity.ActionNavigate))
	assert.True(t, p.IsAllowed(entity.KindFile, entity.ActionCopy))
}

func TestIsAllowed_Confirmation(t *testing.T) {
	yes := &answer{ok: true}
	p, err := Load("", yes, logger.NewNop())
	require.NoError(t, err)

	assert.True(t, p.IsAllowed(entity.KindFile, entity.ActionDelete))
	assert.Equal(t, []string{"Allow file/delete?"}, yes.asked)

	broken := &answer{ok: true, err: errors.New("stdin closed")}
	p, err = Load("", broken, logger.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsAllowed(entity.KindSystem, entity.ActionRestart))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DESKTOP_AGENT_LEVEL", "safe_mode")

	p, err := Load("", nil, logger.NewNop())

	require.NoError(t, err)
	assert.Equal(t, LevelSafeMode, p.Settings().Level)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writePolicy(t, dir, "level: moderate\n")
	p, err := Load(path, nil, logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, p.Watch(context.Background()))
	defer p.Close()

	writePolicy(t, dir, "level: strict\n")

	assert.Eventually(t, func() bool {
		return p.Settings().Level == LevelStrict
	}, 5*time.Second, 20*time.Millisecond)

	writePolicy(t, dir, "level: bogus\n")
	time.Sleep(3 * reloadDelay)
	assert.Equal(t, LevelStrict, p.Settings().Level, "a bad edit keeps the last good settings")
}

func TestWatch_EmptySaveKeepsSettings(t *testing.T) {
	dir := t.TempDir()
	path := writePolicy(t, dir, "level: safe_mode\n")
	p, err := Load(path, nil, logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, p.Watch(context.Background()))
	defer p.Close()

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	time.Sleep(3 * reloadDelay)

	assert.Equal(t, LevelSafeMode, p.Settings().Level)
	assert.False(t, p.IsAllowed(entity.KindFile, entity.ActionOpen))
	assert.False(t, p.IsAllowed(entity.KindProgram, entity.ActionStart))
}

func TestReload_KeepsSettingsOnBadFile(t *testing.T) {
	dir := t.TempDir()
	path := writePolicy(t, dir, "level: strict\nblocked_actions: [navigate]\n")
	p, err := Load(path, nil, logger.NewNop())
	require.NoError(t, err)
	want := p.Settings()

	for name, body := range map[string]string{
		"empty":      "",
		"unparsable": "level: [strict\n",
		"bad level":  "level: bogus\n",
	} {
		t.Run(name, func(t *testing.T) {
			writePolicy(t, dir, body)

			assert.Error(t, p.reload())
			assert.Equal(t, want, p.Settings())
		})
	}

	require.NoError(t, os.Remove(path))
	assert.Error(t, p.reload())
	assert.Equal(t, want, p.Settings())
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	path := writePolicy(t, t.TempDir(), "")

	p, err := Load(path, nil, logger.NewNop())

	require.NoError(t, err)
	assert.Equal(t, DefaultSettings().Level, p.Settings().Level)
}

func TestWatch_RequiresFile(t *testing.T) {
	p, err := Load("", nil, logger.NewNop())
	require.NoError(t, err)

	assert.Error(t, p.Watch(context.Background()))
	assert.NoError(t, p.Close())
}

package system

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"desktop-agent/internal/domain/entity"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	started []string
	ran     []string
}

func (r *recordingRunner) Start(_ context.Context, name string, args ...string) error {
	r.started = append(r.started, strings.Join(append([]string{name}, args...), " "))
	return nil
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) error {
	r.ran = append(r.ran, strings.Join(append([]string{name}, args...), " "))
	return nil
}

func newPlatform(goos string) (*Platform, *recordingRunner) {
	r := &recordingRunner{}
	return New(Config{GOOS: goos, Runner: r}), r
}

func TestPlatform_Programs(t *testing.T) {
	tests := []struct {
		goos      string
		wantStart string
		wantClose string
	}{
		{"linux", "gnome-calculator", "pkill -f gnome-calculator"},
		{"windows", "cmd /c start  gnome-calculator", "taskkill /IM gnome-calculator.exe /F"},
		{"darwin", "open -a gnome-calculator", `osascript -e quit app "gnome-calculator"`},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			p, r := newPlatform(tt.goos)

			require.NoError(t, p.StartProgram(context.Background(), "gnome-calculator"))
			require.NoError(t, p.CloseProgram(context.Background(), "gnome-calculator"))

			assert.Equal(t, []string{tt.wantStart}, r.started)
			assert.Equal(t, []string{tt.wantClose}, r.ran)
		})
	}
}

func TestPlatform_Windows(t *testing.T) {
	p, r := newPlatform("linux")

	require.NoError(t, p.MaximizeWindow(context.Background(), "Firefox"))
	require.NoError(t, p.MinimizeWindow(context.Background(), "Firefox"))

	assert.Equal(t, []string{
		"wmctrl -r Firefox -b add,maximized_vert,maximized_horz",
		"wmctrl -r Firefox -b add,hidden",
	}, r.ran)

	w, _ := newPlatform("windows")
	assert.ErrorIs(t, w.MinimizeWindow(context.Background(), "x"), entity.ErrUnsupported)
}

func TestPlatform_Power(t *testing.T) {
	p, r := newPlatform("linux")

	require.NoError(t, p.Power(context.Background(), entity.ActionShutdown))
	require.NoError(t, p.Power(context.Background(), entity.ActionSleep))
	assert.Equal(t, []string{"systemctl poweroff", "systemctl suspend"}, r.ran)

	assert.ErrorIs(t, p.Power(context.Background(), entity.ActionClick), entity.ErrUnsupported)

	plan9, _ := newPlatform("plan9")
	assert.ErrorIs(t, plan9.Power(context.Background(), entity.ActionRestart), entity.ErrUnsupported)
}

func TestPlatform_Files(t *testing.T) {
	dir := t.TempDir()
	p, r := newPlatform("linux")
	ctx := context.Background()

	file := filepath.Join(dir, "notes", "todo.txt")
	require.NoError(t, p.Create(ctx, file))
	assert.FileExists(t, file)

	folder := filepath.Join(dir, "archive") + "/"
	require.NoError(t, p.Create(ctx, folder))
	assert.DirExists(t, folder)

	require.NoError(t, os.WriteFile(file, []byte("milk"), 0o644))
	require.NoError(t, p.Copy(ctx, file, folder))
	data, err := os.ReadFile(filepath.Join(dir, "archive", "todo.txt"))
	require.NoError(t, err)
	assert.Equal(t, "milk", string(data))

	moved := filepath.Join(dir, "done.txt")
	require.NoError(t, p.Move(ctx, file, moved))
	assert.NoFileExists(t, file)
	assert.FileExists(t, moved)

	require.NoError(t, p.Open(ctx, moved))
	assert.Equal(t, []string{"xdg-open " + moved}, r.started)

	require.NoError(t, p.Delete(ctx, moved))
	assert.NoFileExists(t, moved)

	assert.Error(t, p.Open(ctx, moved), "opening a missing file fails before launching anything")
	assert.Error(t, p.Delete(ctx, moved))
}

func TestPlatform_CopyDirectory(t *testing.T) {
	dir := t.TempDir()
	p, _ := newPlatform("linux")

	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "a.txt"), []byte("a"), 0o644))

	dst := filepath.Join(dir, "dst")
	require.NoError(t, p.Copy(context.Background(), src, dst))

	assert.FileExists(t, filepath.Join(dst, "sub", "a.txt"))
}

func TestPlatform_ExpandHome(t *testing.T) {
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	t.Setenv("HOME", "/home/ana")
	p, _ := newPlatform("linux")

	assert.Equal(t, "/home/ana/Desktop/x.txt", p.expand(" ~/Desktop/x.txt "))
	assert.Equal(t, "/tmp/a", p.expand("/tmp//a/"))
}

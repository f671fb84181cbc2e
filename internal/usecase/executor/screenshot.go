package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"desktop-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
)

func (a *Actions) screenshotHandlers() []*handler {
	return []*handler{
		newHandler(entity.KindScreenshot, entity.ActionCapture,
			"Capture the screen to a timestamped PNG file.",
			[]string{"filename"},
			a.screenshot("Screenshot saved to: ")),
		newHandler(entity.KindScreenshot, entity.ActionSave,
			"Capture the screen and save it under the given filename.",
			[]string{"filename"},
			a.screenshot("Screenshot saved as: ")),
	}
}

func (a *Actions) screenshot(prefix string) func(context.Context, entity.Command) entity.ExecutionResult {
	return func(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
		if a.ports.Screen == nil {
			return failure("Screenshot failed: screen backend not configured", errNoBackend)
		}
		shot, err := a.ports.Screen.Capture(ctx)
		if err != nil {
			return failure("Screenshot failed", err)
		}

		path := a.screenshotPath(cmd.Params.Text("filename"))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return failure("Screenshot failed", err)
		}
		if err := imaging.Save(shot.Image, path); err != nil {
			return failure("Screenshot failed", err)
		}
		return entity.Succeeded(prefix+path, map[string]any{
			"path":   path,
			"width":  shot.Width(),
			"height": shot.Height(),
		})
	}
}

func (a *Actions) screenshotPath(filename string) string {
	if filename == "" {
		filename = fmt.Sprintf("screenshot_%s.png", a.now().Format("20060102_150405"))
	}
	if filepath.Ext(filename) == "" {
		filename += ".png"
	}
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(a.screenshotDir, filename)
}

package executor

import (
	"context"
	"fmt"

	"desktop-agent/internal/domain/entity"
)

var powerMessages = map[entity.CommandAction]string{
	entity.ActionShutdown: "System shutdown initiated",
	entity.ActionRestart:  "System restart initiated",
	entity.ActionLogout:   "User logout initiated",
	entity.ActionSleep:    "System sleep initiated",
}

func (a *Actions) systemHandlers() []*handler {
	var hs []*handler
	for _, action := range []entity.CommandAction{entity.ActionShutdown, entity.ActionRestart, entity.ActionLogout, entity.ActionSleep} {
		hs = append(hs, newHandler(entity.KindSystem, action,
			fmt.Sprintf("Power action: %s the computer.", action), nil, a.power(action)))
	}
	return hs
}

func (a *Actions) power(action entity.CommandAction) func(context.Context, entity.Command) entity.ExecutionResult {
	return func(ctx context.Context, _ entity.Command) entity.ExecutionResult {
		if a.ports.System == nil {
			return failure(fmt.Sprintf("System %s failed: system backend not configured", action), errNoBackend)
		}
		if err := a.ports.System.Power(ctx, action); err != nil {
			return failure(fmt.Sprintf("System %s failed", action), err)
		}
		return entity.Succeeded(powerMessages[action], nil)
	}
}

func (a *Actions) fileHandlers() []*handler {
	return []*handler{
		newHandler(entity.KindFile, entity.ActionOpen, "Open a file or folder with its default application.", []string{"path"},
			a.pathOp("Opened: ", "Failed to open: ", func(ctx context.Context, p string) error { return a.ports.Files.Open(ctx, p) })),
		newHandler(entity.KindFile, entity.ActionCreate, "Create an empty file, or a folder when the path ends with a separator.", []string{"path"},
			a.pathOp("Created: ", "Failed to create: ", func(ctx context.Context, p string) error { return a.ports.Files.Create(ctx, p) })),
		newHandler(entity.KindFile, entity.ActionDelete, "Delete a file.", []string{"path"},
			a.pathOp("Deleted: ", "Failed to delete: ", func(ctx context.Context, p string) error { return a.ports.Files.Delete(ctx, p) })),
		newHandler(entity.KindFile, entity.ActionCopy, "Copy source to destination.", []string{"source", "destination"},
			a.pairOp("Copied", "Copy failed", func(ctx context.Context, s, d string) error { return a.ports.Files.Copy(ctx, s, d) })),
		newHandler(entity.KindFile, entity.ActionMoveFile, "Move source to destination.", []string{"source", "destination"},
			a.pairOp("Moved", "Move failed", func(ctx context.Context, s, d string) error { return a.ports.Files.Move(ctx, s, d) })),
		newHandler(entity.KindFile, entity.ActionRename, "Rename source to destination.", []string{"source", "destination"},
			a.pairOp("Renamed", "Rename failed", func(ctx context.Context, s, d string) error { return a.ports.Files.Move(ctx, s, d) })),
	}
}

func (a *Actions) pathOp(ok, failed string, op func(context.Context, string) error) func(context.Context, entity.Command) entity.ExecutionResult {
	return func(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
		path := cmd.Params.Text("path")
		if a.ports.Files == nil {
			return failure(failed+path, errNoBackend)
		}
		if err := op(ctx, path); err != nil {
			return failure(failed+path, err)
		}
		return entity.Succeeded(ok+path, map[string]any{"path": path})
	}
}

func (a *Actions) pairOp(past, failed string, op func(context.Context, string, string) error) func(context.Context, entity.Command) entity.ExecutionResult {
	return func(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
		src, dst := cmd.Params.Text("source"), cmd.Params.Text("destination")
		if a.ports.Files == nil {
			return failure(failed, errNoBackend)
		}
		if err := op(ctx, src, dst); err != nil {
			return failure(failed, err)
		}
		return entity.Succeeded(fmt.Sprintf("%s %s to %s", past, src, dst), map[string]any{"source": src, "destination": dst})
	}
}

func (a *Actions) programHandlers() []*handler {
	return []*handler{
		newHandler(entity.KindProgram, entity.ActionStart, "Start a program by name, e.g. calculator, notepad, browser.", []string{"program"},
			a.programOp("Started: ", "Failed to start: ", true, func(ctx context.Context, p string) error { return a.ports.System.StartProgram(ctx, p) })),
		newHandler(entity.KindProgram, entity.ActionClose, "Close a running program.", []string{"program"},
			a.programOp("Closed: ", "Failed to close: ", false, func(ctx context.Context, p string) error { return a.ports.System.CloseProgram(ctx, p) })),
		newHandler(entity.KindProgram, entity.ActionMinimize, "Minimize a program window.", []string{"program"},
			a.programOp("Minimized: ", "Failed to minimize: ", false, func(ctx context.Context, p string) error { return a.ports.System.MinimizeWindow(ctx, p) })),
		newHandler(entity.KindProgram, entity.ActionMaximize, "Maximize a program window.", []string{"program"},
			a.programOp("Maximized: ", "Failed to maximize: ", false, func(ctx context.Context, p string) error { return a.ports.System.MaximizeWindow(ctx, p) })),
	}
}

func (a *Actions) programOp(ok, failed string, alias bool, op func(context.Context, string) error) func(context.Context, entity.Command) entity.ExecutionResult {
	return func(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
		program := cmd.Params.Text("program")
		if a.ports.System == nil {
			return failure(failed+program, errNoBackend)
		}
		actual := program
		if alias {
			actual = programName(program)
		}
		if err := op(ctx, actual); err != nil {
			return failure(failed+program, err)
		}
		return entity.Succeeded(ok+program, map[string]any{"program": actual})
	}
}

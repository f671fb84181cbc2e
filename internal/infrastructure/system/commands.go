package system

import (
	"context"
	"fmt"

	"desktop-agent/internal/domain/entity"
)

// invocation is one external program call.
type invocation struct {
	name string
	args []string
}

func call(name string, args ...string) invocation {
	return invocation{name: name, args: args}
}

func (p *Platform) startCommand(program string) (invocation, error) {
	switch p.goos {
	case "windows":
		return call("cmd", "/c", "start", "", program), nil
	case "darwin":
		return call("open", "-a", program), nil
	case "linux":
		return call(program), nil
	}
	return invocation{}, p.unsupported("start program")
}

func (p *Platform) closeCommand(program string) (invocation, error) {
	switch p.goos {
	case "windows":
		return call("taskkill", "/IM", program+".exe", "/F"), nil
	case "darwin":
		return call("osascript", "-e", fmt.Sprintf("quit app %q", program)), nil
	case "linux":
		return call("pkill", "-f", program), nil
	}
	return invocation{}, p.unsupported("close program")
}

func (p *Platform) windowCommand(program string, maximize bool) (invocation, error) {
	switch p.goos {
	case "linux":
		state := "add,hidden"
		if maximize {
			state = "add,maximized_vert,maximized_horz"
		}
		return call("wmctrl", "-r", program, "-b", state), nil
	case "darwin":
		script := fmt.Sprintf(`tell application "System Events" to set miniaturized of every window of process %q to true`, program)
		if maximize {
			script = fmt.Sprintf(`tell application "System Events" to set value of attribute "AXFullScreen" of front window of process %q to true`, program)
		}
		return call("osascript", "-e", script), nil
	}
	return invocation{}, p.unsupported("window management")
}

func (p *Platform) powerCommand(action entity.CommandAction) (invocation, error) {
	switch p.goos {
	case "windows":
		switch action {
		case entity.ActionShutdown:
			return call("shutdown", "/s", "/t", "0"), nil
		case entity.ActionRestart:
			return call("shutdown", "/r", "/t", "0"), nil
		case entity.ActionLogout:
			return call("shutdown", "/l"), nil
		case entity.ActionSleep:
			return call("rundll32.exe", "powrprof.dll,SetSuspendState", "0,1,0"), nil
		}
	case "darwin":
		switch action {
		case entity.ActionShutdown:
			return call("osascript", "-e", `tell app "System Events" to shut down`), nil
		case entity.ActionRestart:
			return call("osascript", "-e", `tell app "System Events" to restart`), nil
		case entity.ActionLogout:
			return call("osascript", "-e", `tell app "System Events" to log out`), nil
		case entity.ActionSleep:
			return call("pmset", "sleepnow"), nil
		}
	case "linux":
		switch action {
		case entity.ActionShutdown:
			return call("systemctl", "poweroff"), nil
		case entity.ActionRestart:
			return call("systemctl", "reboot"), nil
		case entity.ActionLogout:
			return call("loginctl", "terminate-user", p.user), nil
		case entity.ActionSleep:
			return call("systemctl", "suspend"), nil
		}
	}
	return invocation{}, p.unsupported(string(action))
}

func (p *Platform) openCommand(path string) (invocation, error) {
	switch p.goos {
	case "windows":
		return call("cmd", "/c", "start", "", path), nil
	case "darwin":
		return call("open", path), nil
	case "linux":
		return call("xdg-open", path), nil
	}
	return invocation{}, p.unsupported("open file")
}

func (p *Platform) unsupported(what string) error {
	return fmt.Errorf("%s on %s: %w", what, p.goos, entity.ErrUnsupported)
}

func (p *Platform) run(ctx context.Context, inv invocation, detach bool) error {
	p.logger.Debug("Running system command", "name", inv.name, "args", inv.args, "detach", detach)
	if detach {
		return p.runner.Start(ctx, inv.name, inv.args...)
	}
	return p.runner.Run(ctx, inv.name, inv.args...)
}

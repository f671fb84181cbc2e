package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

var errNoBackend = errors.New("backend not configured")

func (a *Actions) mouseHandlers() []*handler {
	return []*handler{
		newHandler(entity.KindMouse, entity.ActionClick,
			"Left-click a target described in words, or exact x/y coordinates. Optional exclude lists texts that must not be clicked.",
			[]string{"target", "x", "y", "exclude"},
			a.clicker("Click", "Clicked", output.ButtonLeft, 1)),
		newHandler(entity.KindMouse, entity.ActionDoubleClick,
			"Double-click a target or x/y coordinates.",
			[]string{"target", "x", "y", "exclude"},
			a.clicker("Double-click", "Double-clicked", output.ButtonLeft, 2)),
		newHandler(entity.KindMouse, entity.ActionRightClick,
			"Right-click a target or x/y coordinates to open its context menu.",
			[]string{"target", "x", "y", "exclude"},
			a.clicker("Right-click", "Right-clicked", output.ButtonRight, 1)),
		newHandler(entity.KindMouse, entity.ActionMove,
			"Move the pointer over a target or x/y coordinates without clicking.",
			[]string{"target", "x", "y"},
			a.move),
		newHandler(entity.KindMouse, entity.ActionDrag,
			"Drag from source to destination (targets or from_x/from_y/to_x/to_y).",
			[]string{"source", "destination", "duration"},
			a.drag),
		newHandler(entity.KindMouse, entity.ActionScroll,
			"Scroll up, down, left or right by amount notches (default 3).",
			[]string{"direction", "amount"},
			a.scroll),
	}
}

// located is a resolved pointer position with what it was resolved from.
type located struct {
	point   entity.Point
	label   string
	literal bool
	element entity.FoundElement
}

func (l located) describe(past string) string {
	if l.literal {
		return fmt.Sprintf("%s at (%d, %d)", past, l.point.X, l.point.Y)
	}
	return fmt.Sprintf("%s on %s", past, l.label)
}

func (l located) data() map[string]any {
	data := map[string]any{"x": l.point.X, "y": l.point.Y}
	if !l.literal {
		data["target"] = l.label
		data["resolved_text"] = l.element.Text
		data["element_kind"] = string(l.element.Kind)
		data["confidence"] = l.element.Confidence
	}
	return data
}

// locate resolves the x/y pair or the textual target of cmd.
func (a *Actions) locate(ctx context.Context, cmd entity.Command, xKey, yKey, targetKey string, shot *entity.Screenshot) (located, *entity.Screenshot, error) {
	x, okX := cmd.Params.Int(xKey)
	y, okY := cmd.Params.Int(yKey)
	if okX && okY {
		return located{point: entity.Point{X: x, Y: y}, literal: true}, shot, nil
	}

	target := cmd.Params.Text(targetKey)
	if target == "" {
		return located{}, shot, fmt.Errorf("%w: missing %s", entity.ErrInvalidCommand, targetKey)
	}
	if a.ports.Resolver == nil {
		return located{}, shot, fmt.Errorf("resolver: %w", errNoBackend)
	}
	if shot == nil {
		if a.ports.Screen == nil {
			return located{}, shot, fmt.Errorf("screen: %w", errNoBackend)
		}
		var err error
		shot, err = a.ports.Screen.Capture(ctx)
		if err != nil {
			return located{}, nil, fmt.Errorf("capture screen: %w", err)
		}
	}

	found, err := a.ports.Resolver.Resolve(ctx, target, shot, cmd.Params.Strings("exclude"))
	if err != nil {
		return located{}, shot, err
	}
	best := found[0]
	a.logger.Debug("Target located", "target", target, "text", best.Text,
		"x", best.Coordinates.X, "y", best.Coordinates.Y, "kind", string(best.Kind), "candidates", len(found))
	return located{point: best.Coordinates, label: target, element: best}, shot, nil
}

func (a *Actions) locateFailure(verb, target string, err error) entity.ExecutionResult {
	if errors.Is(err, entity.ErrTargetNotFound) {
		res := entity.Failed(entity.CodeTargetNotFound, fmt.Sprintf("%s failed: could not find %q on screen", verb, target))
		res.Data["target"] = target
		res.Data["error"] = err.Error()
		return res
	}
	if errors.Is(err, entity.ErrInvalidCommand) {
		return entity.Failed(entity.CodeInvalidCommand, fmt.Sprintf("%s failed: %v", verb, err))
	}
	return failure(fmt.Sprintf("%s failed: %v", verb, err), err)
}

func (a *Actions) clicker(verb, past string, defaultButton output.MouseButton, clicks int) func(context.Context, entity.Command) entity.ExecutionResult {
	return func(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
		if a.ports.Input == nil {
			return failure(verb+" failed: input backend not configured", errNoBackend)
		}
		loc, _, err := a.locate(ctx, cmd, "x", "y", "target", nil)
		if err != nil {
			return a.locateFailure(verb, cmd.Params.Text("target"), err)
		}

		button := defaultButton
		if b := strings.ToLower(cmd.Params.Text("button")); b != "" && clicks == 1 && defaultButton == output.ButtonLeft {
			button = output.MouseButton(b)
		}
		if err := a.ports.Input.Click(ctx, loc.point, button, clicks); err != nil {
			return failure(verb+" failed", err)
		}
		return entity.Succeeded(loc.describe(past), loc.data())
	}
}

func (a *Actions) move(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
	if a.ports.Input == nil {
		return failure("Move failed: input backend not configured", errNoBackend)
	}
	loc, _, err := a.locate(ctx, cmd, "x", "y", "target", nil)
	if err != nil {
		return a.locateFailure("Move", cmd.Params.Text("target"), err)
	}
	if err := a.ports.Input.MoveTo(ctx, loc.point); err != nil {
		return failure("Move failed", err)
	}
	return entity.Succeeded(loc.describe("Moved mouse"), loc.data())
}

func (a *Actions) drag(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
	if a.ports.Input == nil {
		return failure("Drag failed: input backend not configured", errNoBackend)
	}
	from, shot, err := a.locate(ctx, cmd, "from_x", "from_y", "source", nil)
	if err != nil {
		return a.locateFailure("Drag", cmd.Params.Text("source"), err)
	}
	to, _, err := a.locate(ctx, cmd, "to_x", "to_y", "destination", shot)
	if err != nil {
		return a.locateFailure("Drag", cmd.Params.Text("destination"), err)
	}

	duration := 1.0
	if d, ok := cmd.Params.Float("duration"); ok && d > 0 {
		duration = d
	}
	if err := a.ports.Input.Drag(ctx, from.point, to.point, time.Duration(duration*float64(time.Second))); err != nil {
		return failure("Drag failed", err)
	}

	fromLabel, toLabel := from.label, to.label
	if from.literal {
		fromLabel = fmt.Sprintf("(%d, %d)", from.point.X, from.point.Y)
	}
	if to.literal {
		toLabel = fmt.Sprintf("(%d, %d)", to.point.X, to.point.Y)
	}
	return entity.Succeeded(fmt.Sprintf("Dragged from %s to %s", fromLabel, toLabel), map[string]any{
		"from_x": from.point.X,
		"from_y": from.point.Y,
		"to_x":   to.point.X,
		"to_y":   to.point.Y,
	})
}

func (a *Actions) scroll(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
	if a.ports.Input == nil {
		return failure("Scroll failed: input backend not configured", errNoBackend)
	}
	direction := strings.ToLower(cmd.Params.Text("direction"))
	switch direction {
	case "up", "down", "left", "right":
	default:
		return entity.Failed(entity.CodeInvalidCommand, fmt.Sprintf("Scroll failed: unknown direction %q", direction))
	}

	amount := 3
	if n, ok := cmd.Params.Int("amount"); ok && n > 0 {
		amount = n
	}
	if err := a.ports.Input.Scroll(ctx, direction, amount); err != nil {
		return failure("Scroll failed", err)
	}
	return entity.Succeeded(fmt.Sprintf("Scrolled %s", direction), map[string]any{"direction": direction, "amount": amount})
}

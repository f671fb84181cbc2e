package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"desktop-agent/internal/domain/entity"
)

func (a *Actions) keyboardHandlers() []*handler {
	return []*handler{
		newHandler(entity.KindKeyboard, entity.ActionType,
			"Type text into the focused element.",
			[]string{"text"},
			a.typeText),
		newHandler(entity.KindKeyboard, entity.ActionKeyPress,
			"Press and release a single key such as enter, escape, tab, f5 or pagedown.",
			[]string{"key"},
			a.pressKey),
		newHandler(entity.KindKeyboard, entity.ActionKeyCombo,
			`Press a key combination such as "ctrl+c", "alt+tab" or a named one like "select all".`,
			[]string{"combo"},
			a.keyCombo),
	}
}

func (a *Actions) typeText(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
	if a.ports.Input == nil {
		return failure("Typing failed: input backend not configured", errNoBackend)
	}
	text := cmd.Params.Text("text")
	if err := a.ports.Input.Type(ctx, text); err != nil {
		return failure("Typing failed", err)
	}
	return entity.Succeeded("Typed: "+text, map[string]any{"length": len([]rune(text))})
}

func (a *Actions) pressKey(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
	if a.ports.Input == nil {
		return failure("Key press failed: input backend not configured", errNoBackend)
	}
	key := cmd.Params.Text("key")
	normalized := NormalizeKey(key)
	if normalized == "" {
		return entity.Failed(entity.CodeInvalidCommand, "Key press failed: empty key")
	}
	if err := a.ports.Input.Press(ctx, normalized); err != nil {
		return failure("Key press failed", err)
	}
	return entity.Succeeded("Pressed key: "+key, map[string]any{"key": normalized})
}

// keyCombo holds the keys down in order and releases them in reverse. Every
// key that went down is released, even when a later one fails.
func (a *Actions) keyCombo(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
	if a.ports.Input == nil {
		return failure("Key combo failed: input backend not configured", errNoBackend)
	}

	combo := cmd.Params.Text("combo")
	var keys []string
	if combo != "" {
		keys = ComboKeys(combo)
	} else {
		for _, k := range cmd.Params.Strings("keys") {
			keys = append(keys, NormalizeKey(k))
		}
		combo = strings.Join(keys, "+")
	}
	if len(keys) == 0 {
		return entity.Failed(entity.CodeInvalidCommand, "Key combo failed: no keys")
	}

	var pressed []string
	var err error
	for _, k := range keys {
		if err = a.ports.Input.KeyDown(ctx, k); err != nil {
			break
		}
		pressed = append(pressed, k)
	}
	for i := len(pressed) - 1; i >= 0; i-- {
		if upErr := a.ports.Input.KeyUp(context.WithoutCancel(ctx), pressed[i]); upErr != nil {
			err = errors.Join(err, fmt.Errorf("release %s: %w", pressed[i], upErr))
		}
	}
	if err != nil {
		return failure("Key combo failed", err)
	}
	return entity.Succeeded("Executed key combo: "+combo, map[string]any{"keys": keys})
}

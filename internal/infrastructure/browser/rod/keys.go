package rod

import (
	"fmt"
	"strings"

	"desktop-agent/internal/domain/entity"

	"github.com/go-rod/rod/lib/input"
)

var namedKeys = map[string]input.Key{
	"enter":       input.Enter,
	"escape":      input.Escape,
	"tab":         input.Tab,
	"space":       input.Space,
	"backspace":   input.Backspace,
	"delete":      input.Delete,
	"insert":      input.Insert,
	"up":          input.ArrowUp,
	"down":        input.ArrowDown,
	"left":        input.ArrowLeft,
	"right":       input.ArrowRight,
	"home":        input.Home,
	"end":         input.End,
	"pageup":      input.PageUp,
	"pagedown":    input.PageDown,
	"capslock":    input.CapsLock,
	"numlock":     input.NumLock,
	"scrolllock":  input.ScrollLock,
	"printscreen": input.PrintScreen,
	"ctrl":        input.ControlLeft,
	"shift":       input.ShiftLeft,
	"alt":         input.AltLeft,
	"win":         input.MetaLeft,
	"cmd":         input.MetaLeft,
	"add":         input.NumpadAdd,
	"subtract":    input.NumpadSubtract,
	"multiply":    input.NumpadMultiply,
	"divide":      input.NumpadDivide,
	"decimal":     input.NumpadDecimal,
	"f1":          input.F1,
	"f2":          input.F2,
	"f3":          input.F3,
	"f4":          input.F4,
	"f5":          input.F5,
	"f6":          input.F6,
	"f7":          input.F7,
	"f8":          input.F8,
	"f9":          input.F9,
	"f10":         input.F10,
	"f11":         input.F11,
	"f12":         input.F12,
}

// lookupKey maps a normalized key name or a single printable character onto
// a CDP key.
func lookupKey(name string) (input.Key, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, ok := namedKeys[name]; ok {
		return k, nil
	}
	if r := []rune(name); len(r) == 1 && r[0] >= ' ' && r[0] <= '~' {
		return input.Key(r[0]), nil
	}
	return 0, fmt.Errorf("%w: key %q", entity.ErrUnsupported, name)
}

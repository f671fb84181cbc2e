package executor

import "strings"

var keyAliases = map[string]string{
	"arrow up":     "up",
	"arrow down":   "down",
	"arrow left":   "left",
	"arrow right":  "right",
	"return":       "enter",
	"num enter":    "enter",
	"spacebar":     "space",
	"esc":          "escape",
	"del":          "delete",
	"page up":      "pageup",
	"page down":    "pagedown",
	"caps lock":    "capslock",
	"num lock":     "numlock",
	"scroll lock":  "scrolllock",
	"print screen": "printscreen",
	"control":      "ctrl",
	"windows":      "win",
	"super":        "win",
	"command":      "cmd",
	"option":       "alt",
	"num+":         "add",
	"num-":         "subtract",
	"num*":         "multiply",
	"num/":         "divide",
	"num.":         "decimal",
}

var commonCombos = map[string][]string{
	"copy":         {"ctrl", "c"},
	"paste":        {"ctrl", "v"},
	"cut":          {"ctrl", "x"},
	"undo":         {"ctrl", "z"},
	"redo":         {"ctrl", "y"},
	"select all":   {"ctrl", "a"},
	"save":         {"ctrl", "s"},
	"open":         {"ctrl", "o"},
	"new":          {"ctrl", "n"},
	"print":        {"ctrl", "p"},
	"find":         {"ctrl", "f"},
	"replace":      {"ctrl", "h"},
	"bold":         {"ctrl", "b"},
	"italic":       {"ctrl", "i"},
	"underline":    {"ctrl", "u"},
	"refresh":      {"f5"},
	"alt tab":      {"alt", "tab"},
	"task manager": {"ctrl", "shift", "escape"},
	"close window": {"alt", "f4"},
	"minimize":     {"win", "m"},
	"maximize":     {"win", "up"},
	"show desktop": {"win", "d"},
	"lock screen":  {"win", "l"},
	"run dialog":   {"win", "r"},
	"screenshot":   {"win", "shift", "s"},
}

var programAliases = map[string]string{
	"file explorer":    "explorer",
	"filemanager":      "explorer",
	"file manager":     "explorer",
	"windows explorer": "explorer",
	"command prompt":   "cmd",
	"cmd prompt":       "cmd",
	"power shell":      "powershell",
	"task manager":     "taskmgr",
	"taskmanager":      "taskmgr",
	"calculator":       "calc",
	"paint":            "mspaint",
	"ms paint":         "mspaint",
	"control panel":    "control",
	"controlpanel":     "control",
	"registry editor":  "regedit",
	"browser":          "browser",
	"web browser":      "browser",
}

// NormalizeKey maps spoken key names onto the canonical names the input
// backend understands.
func NormalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.Join(strings.Fields(k), " ")
	if alias, ok := keyAliases[k]; ok {
		return alias
	}
	return k
}

// ComboKeys expands a combo such as "ctrl+shift+t", "alt tab" or "copy" into
// normalized key names, modifiers first as written.
func ComboKeys(combo string) []string {
	lower := strings.Join(strings.Fields(strings.ToLower(combo)), " ")
	if keys, ok := commonCombos[lower]; ok {
		out := make([]string, len(keys))
		copy(out, keys)
		return out
	}

	parts := strings.Fields(strings.ReplaceAll(lower, "+", " "))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, NormalizeKey(p))
	}
	return out
}

func programName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if actual, ok := programAliases[lower]; ok {
		return actual
	}
	return strings.TrimSpace(name)
}

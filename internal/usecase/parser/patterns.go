package parser

import (
	"regexp"
	"strconv"
	"strings"

	"desktop-agent/internal/domain/entity"
)

type extractor func(groups []string, full string) entity.Params

type pattern struct {
	source  string
	re      *regexp.Regexp
	kind    entity.CommandKind
	action  entity.CommandAction
	extract extractor
}

func newPattern(kind entity.CommandKind, action entity.CommandAction, source string, extract extractor) pattern {
	return pattern{
		source:  source,
		re:      regexp.MustCompile(`(?i)` + source),
		kind:    kind,
		action:  action,
		extract: extract,
	}
}

// confidence is a tie-break signal only: a fixed base plus a bonus that grows
// with the pattern length.
func (p pattern) confidence() float64 {
	bonus := float64(len(p.source)) / 100
	if bonus > 0.2 {
		bonus = 0.2
	}
	c := 0.8 + bonus
	if c > 1.0 {
		c = 1.0
	}
	return c
}

var coordinateRe = regexp.MustCompile(`^(?:at\s+)?\(?\s*(\d+)\s*[,\s]\s*(\d+)\s*\)?$`)

func targetParams(groups []string, _ string) entity.Params {
	target := strings.TrimSpace(groups[1])
	if m := coordinateRe.FindStringSubmatch(target); m != nil {
		x, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		return entity.NewParams("x", x, "y", y)
	}
	return entity.NewParams("target", trimQuotes(target))
}

func single(key string) extractor {
	return func(groups []string, _ string) entity.Params {
		return entity.NewParams(key, trimQuotes(strings.TrimSpace(groups[1])))
	}
}

func pair(first, second string) extractor {
	return func(groups []string, _ string) entity.Params {
		return entity.NewParams(
			first, trimQuotes(strings.TrimSpace(groups[1])),
			second, trimQuotes(strings.TrimSpace(groups[2])),
		)
	}
}

func none(_ []string, _ string) entity.Params {
	return entity.Params{}
}

func fullMatch(key string) extractor {
	return func(_ []string, full string) entity.Params {
		return entity.NewParams(key, strings.ToLower(strings.Join(strings.Fields(full), "")))
	}
}

func scrollParams(groups []string, _ string) entity.Params {
	p := entity.NewParams("direction", strings.ToLower(groups[1]))
	if len(groups) > 2 && groups[2] != "" {
		if n, err := strconv.Atoi(groups[2]); err == nil {
			p = p.With("amount", n)
		}
	}
	return p
}

func durationParams(groups []string, _ string) entity.Params {
	d := 1.0
	if len(groups) > 1 && groups[1] != "" {
		if f, err := strconv.ParseFloat(groups[1], 64); err == nil {
			d = f
		}
	}
	return entity.NewParams("duration", d)
}

func pressParams(groups []string, _ string) entity.Params {
	key := strings.TrimSpace(groups[1])
	return entity.NewParams("key", trimQuotes(key))
}

const durationTail = `\b(?:\s+(?:for\s+)?(\d+(?:\.\d+)?))?`

// defaultTable is evaluated top to bottom and the first match wins.
// Specific phrasings sit above the generic ones they would otherwise shadow.
func defaultTable() []pattern {
	return []pattern{
		// mouse
		newPattern(entity.KindMouse, entity.ActionDoubleClick, `\bdouble[\s-]*click\s+(?:on\s+)?(.+)`, targetParams),
		newPattern(entity.KindMouse, entity.ActionRightClick, `\bright[\s-]*click\s+(?:on\s+)?(.+)`, targetParams),
		newPattern(entity.KindMouse, entity.ActionClick, `\bclick\s+(?:on\s+)?(.+)`, targetParams),
		newPattern(entity.KindMouse, entity.ActionDrag, `\bdrag\s+(.+?)\s+to\s+(.+)`, pair("source", "destination")),
		newPattern(entity.KindMouse, entity.ActionScroll, `\bscroll\s+(up|down|left|right)(?:\s+(\d+))?`, scrollParams),
		newPattern(entity.KindMouse, entity.ActionMove, `\bmove\s+(?:the\s+)?(?:mouse|cursor|pointer)\s+to\s+(.+)`, targetParams),
		newPattern(entity.KindMouse, entity.ActionMove, `\bmove\s+to\s+(.+)`, targetParams),

		// keyboard
		newPattern(entity.KindKeyboard, entity.ActionType, `\btype\s+"(.+?)"`, single("text")),
		newPattern(entity.KindKeyboard, entity.ActionType, `\btype\s+'(.+?)'`, single("text")),
		newPattern(entity.KindKeyboard, entity.ActionType, `\btype\s+(.+)`, single("text")),
		newPattern(entity.KindKeyboard, entity.ActionKeyCombo, `\bpress\s+((?:ctrl|control|cmd|command|alt|shift|win)\s*\+\s*\S+(?:\s*\+\s*\S+)*)`, func(groups []string, _ string) entity.Params {
			return entity.NewParams("combo", strings.ToLower(strings.Join(strings.Fields(groups[1]), "")))
		}),
		newPattern(entity.KindKeyboard, entity.ActionKeyPress, `\bpress\s+(?:the\s+)?(.+?)(?:\s+key)?\s*$`, pressParams),
		newPattern(entity.KindKeyboard, entity.ActionKeyCombo, `\b(?:ctrl|control|cmd|command)\s*\+\s*\S+(?:\s*\+\s*\S+)*`, fullMatch("combo")),
		newPattern(entity.KindKeyboard, entity.ActionKeyCombo, `\balt\s*\+\s*\S+(?:\s*\+\s*\S+)*`, fullMatch("combo")),
		newPattern(entity.KindKeyboard, entity.ActionKeyCombo, `\bshift\s*\+\s*\S+(?:\s*\+\s*\S+)*`, fullMatch("combo")),

		// screenshot
		newPattern(entity.KindScreenshot, entity.ActionSave, `\bsave\s+(?:a\s+)?screenshot\s+(?:as\s+|to\s+)?(.+)`, single("filename")),
		newPattern(entity.KindScreenshot, entity.ActionCapture, `\b(?:take\s+)?(?:a\s+)?screenshot\b`, none),
		newPattern(entity.KindScreenshot, entity.ActionCapture, `\bcapture\s+(?:the\s+)?screen\b`, none),

		// utility, ahead of system so "sleep 5" waits instead of suspending
		newPattern(entity.KindUtility, entity.ActionWait, `^\s*wait`+durationTail, durationParams),
		newPattern(entity.KindUtility, entity.ActionDelay, `^\s*(?:delay|pause)`+durationTail, durationParams),
		newPattern(entity.KindUtility, entity.ActionWait, `^\s*sleep\s+(?:for\s+)?(\d+(?:\.\d+)?)\s*(?:seconds?|secs?|s)?\s*$`, durationParams),

		// system, anchored so a word inside a longer directive never powers off the machine
		newPattern(entity.KindSystem, entity.ActionShutdown, `^\s*(?:shutdown|shut\s+down)(?:\s+(?:the\s+)?(?:computer|pc|system|machine))?\s*$`, none),
		newPattern(entity.KindSystem, entity.ActionRestart, `^\s*(?:restart|reboot)(?:\s+(?:the\s+)?(?:computer|pc|system|machine))?\s*$`, none),
		newPattern(entity.KindSystem, entity.ActionLogout, `^\s*log\s*(?:out|off)\s*$`, none),
		newPattern(entity.KindSystem, entity.ActionSleep, `^\s*(?:sleep|suspend)(?:\s+(?:the\s+)?(?:computer|pc|system|machine))?\s*$`, none),

		// file
		newPattern(entity.KindFile, entity.ActionOpen, `\bopen\s+(?:the\s+)?(?:file|folder|directory)\s+(.+)`, single("path")),
		newPattern(entity.KindFile, entity.ActionCreate, `\bcreate\s+(?:a\s+)?(?:new\s+)?(?:file|folder|directory)\s+(.+)`, single("path")),
		newPattern(entity.KindFile, entity.ActionDelete, `\bdelete\s+(?:the\s+)?(?:file|folder|directory)?\s*(.+)`, single("path")),
		newPattern(entity.KindFile, entity.ActionCopy, `\bcopy\s+(.+?)\s+to\s+(.+)`, pair("source", "destination")),
		newPattern(entity.KindFile, entity.ActionMoveFile, `\bmove\s+(.+?)\s+to\s+(.+)`, pair("source", "destination")),
		newPattern(entity.KindFile, entity.ActionRename, `\brename\s+(.+?)\s+to\s+(.+)`, pair("source", "destination")),

		// program
		newPattern(entity.KindProgram, entity.ActionStart, `\b(?:start|launch|run|open)\s+(.+)`, single("program")),
		newPattern(entity.KindProgram, entity.ActionClose, `\b(?:close|quit|exit)\s+(.+)`, single("program")),
		newPattern(entity.KindProgram, entity.ActionMinimize, `\bminimi[sz]e\s+(.+)`, single("program")),
		newPattern(entity.KindProgram, entity.ActionMaximize, `\bmaximi[sz]e\s+(.+)`, single("program")),

		// web
		newPattern(entity.KindWeb, entity.ActionSearch, `\bsearch\s+(?:the\s+web\s+)?(?:for\s+)?(.+)`, single("query")),
		newPattern(entity.KindWeb, entity.ActionSearch, `\bgoogle\s+(.+)`, single("query")),
		newPattern(entity.KindWeb, entity.ActionNavigate, `\b(?:go|navigate|browse)\s+to\s+(.+)`, single("url")),
	}
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

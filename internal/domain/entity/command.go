package entity

import (
	"fmt"
	"strings"
)

type CommandKind string

const (
	KindMouse      CommandKind = "mouse"
	KindKeyboard   CommandKind = "keyboard"
	KindScreenshot CommandKind = "screenshot"
	KindSystem     CommandKind = "system"
	KindFile       CommandKind = "file"
	KindProgram    CommandKind = "program"
	KindWeb        CommandKind = "web"
	KindUtility    CommandKind = "utility"
	KindUnknown    CommandKind = "unknown"
)

type CommandAction string

const (
	ActionClick       CommandAction = "click"
	ActionDoubleClick CommandAction = "double_click"
	ActionRightClick  CommandAction = "right_click"
	ActionDrag        CommandAction = "drag"
	ActionScroll      CommandAction = "scroll"
	ActionMove        CommandAction = "move"

	ActionType     CommandAction = "type"
	ActionKeyPress CommandAction = "key_press"
	ActionKeyCombo CommandAction = "key_combo"

	ActionCapture CommandAction = "capture"
	ActionSave    CommandAction = "save"

	ActionShutdown CommandAction = "shutdown"
	ActionRestart  CommandAction = "restart"
	ActionLogout   CommandAction = "logout"
	ActionSleep    CommandAction = "sleep"

	ActionOpen     CommandAction = "open"
	ActionCreate   CommandAction = "create"
	ActionDelete   CommandAction = "delete"
	ActionCopy     CommandAction = "copy"
	ActionMoveFile CommandAction = "move_file"
	ActionRename   CommandAction = "rename"

	ActionStart    CommandAction = "start"
	ActionClose    CommandAction = "close"
	ActionMinimize CommandAction = "minimize"
	ActionMaximize CommandAction = "maximize"

	ActionSearch   CommandAction = "search"
	ActionNavigate CommandAction = "navigate"

	ActionWait  CommandAction = "wait"
	ActionDelay CommandAction = "delay"
)

type ActionKey struct {
	Kind   CommandKind
	Action CommandAction
}

func (k ActionKey) String() string {
	return string(k.Kind) + "/" + string(k.Action)
}

// ParamRule lists the parameter sets a (kind, action) pair accepts. A command
// is valid when every key of at least one alternative is present.
type ParamRule struct {
	Alternatives [][]string
	Optional     []string
}

var paramRules = map[ActionKey]ParamRule{
	{KindMouse, ActionClick}:       {Alternatives: [][]string{{"x", "y"}, {"target"}}, Optional: []string{"exclude", "button"}},
	{KindMouse, ActionDoubleClick}: {Alternatives: [][]string{{"x", "y"}, {"target"}}, Optional: []string{"exclude"}},
	{KindMouse, ActionRightClick}:  {Alternatives: [][]string{{"x", "y"}, {"target"}}, Optional: []string{"exclude"}},
	{KindMouse, ActionMove}:        {Alternatives: [][]string{{"x", "y"}, {"target"}}, Optional: []string{"exclude"}},
	{KindMouse, ActionDrag}:        {Alternatives: [][]string{{"source", "destination"}, {"from_x", "from_y", "to_x", "to_y"}}, Optional: []string{"duration"}},
	{KindMouse, ActionScroll}:      {Alternatives: [][]string{{"direction"}}, Optional: []string{"amount"}},

	{KindKeyboard, ActionType}:     {Alternatives: [][]string{{"text"}}},
	{KindKeyboard, ActionKeyPress}: {Alternatives: [][]string{{"key"}}},
	{KindKeyboard, ActionKeyCombo}: {Alternatives: [][]string{{"combo"}, {"keys"}}},

	{KindScreenshot, ActionCapture}: {Alternatives: [][]string{{}}, Optional: []string{"filename"}},
	{KindScreenshot, ActionSave}:    {Alternatives: [][]string{{"filename"}}},

	{KindSystem, ActionShutdown}: {Alternatives: [][]string{{}}},
	{KindSystem, ActionRestart}:  {Alternatives: [][]string{{}}},
	{KindSystem, ActionLogout}:   {Alternatives: [][]string{{}}},
	{KindSystem, ActionSleep}:    {Alternatives: [][]string{{}}},

	{KindFile, ActionOpen}:     {Alternatives: [][]string{{"path"}}},
	{KindFile, ActionCreate}:   {Alternatives: [][]string{{"path"}}},
	{KindFile, ActionDelete}:   {Alternatives: [][]string{{"path"}}},
	{KindFile, ActionCopy}:     {Alternatives: [][]string{{"source", "destination"}}},
	{KindFile, ActionMoveFile}: {Alternatives: [][]string{{"source", "destination"}}},
	{KindFile, ActionRename}:   {Alternatives: [][]string{{"source", "destination"}}},

	{KindProgram, ActionStart}:    {Alternatives: [][]string{{"program"}}},
	{KindProgram, ActionClose}:    {Alternatives: [][]string{{"program"}}},
	{KindProgram, ActionMinimize}: {Alternatives: [][]string{{"program"}}},
	{KindProgram, ActionMaximize}: {Alternatives: [][]string{{"program"}}},

	{KindWeb, ActionSearch}:   {Alternatives: [][]string{{"query"}}},
	{KindWeb, ActionNavigate}: {Alternatives: [][]string{{"url"}, {"query"}}},

	{KindUtility, ActionWait}:  {Alternatives: [][]string{{"duration"}, {}}},
	{KindUtility, ActionDelay}: {Alternatives: [][]string{{"duration"}, {}}},
}

// RuleFor returns the parameter rule of a known (kind, action) pair.
func RuleFor(kind CommandKind, action CommandAction) (ParamRule, bool) {
	rule, ok := paramRules[ActionKey{kind, action}]
	return rule, ok
}

func KnownKinds() []CommandKind {
	return []CommandKind{KindMouse, KindKeyboard, KindScreenshot, KindSystem, KindFile, KindProgram, KindWeb, KindUtility}
}

// Command is one discrete UI action. Its parameters are copied on
// construction and only exposed through read accessors.
type Command struct {
	Kind       CommandKind
	Action     CommandAction
	Params     Params
	Confidence float64
	RawText    string
}

func NewCommand(kind CommandKind, action CommandAction, params Params, confidence float64, rawText string) Command {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Command{
		Kind:       kind,
		Action:     action,
		Params:     params.Clone(),
		Confidence: confidence,
		RawText:    rawText,
	}
}

// UnknownCommand is what the parser yields for text it cannot match.
func UnknownCommand(text string) Command {
	return NewCommand(KindUnknown, ActionClick, NewParams("text", text), 0.0, text)
}

func (c Command) Key() ActionKey {
	return ActionKey{Kind: c.Kind, Action: c.Action}
}

func (c Command) IsUnknown() bool {
	return c.Kind == KindUnknown
}

// Target returns the textual target a command points at, if any.
func (c Command) Target() string {
	for _, key := range []string{"target", "source", "program", "path", "query", "url"} {
		if v := c.Params.Text(key); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks the parameters against the rule of the command's pair.
func (c Command) Validate() error {
	if c.Kind == KindUnknown {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.RawText)
	}
	rule, ok := RuleFor(c.Kind, c.Action)
	if !ok {
		return fmt.Errorf("%w: unsupported action %s", ErrInvalidCommand, c.Key())
	}
	var missing []string
	for _, alt := range rule.Alternatives {
		missing = missing[:0]
		for _, key := range alt {
			if !c.Params.Has(key) {
				missing = append(missing, key)
			}
		}
		if len(missing) == 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: %s requires %s", ErrInvalidCommand, c.Key(), describeAlternatives(rule.Alternatives))
}

func (c Command) String() string {
	if c.Params.Len() == 0 {
		return c.Key().String()
	}
	return fmt.Sprintf("%s %s", c.Key(), c.Params)
}

func describeAlternatives(alts [][]string) string {
	parts := make([]string, 0, len(alts))
	for _, alt := range alts {
		if len(alt) == 0 {
			continue
		}
		parts = append(parts, "{"+strings.Join(alt, ",")+"}")
	}
	return strings.Join(parts, " or ")
}

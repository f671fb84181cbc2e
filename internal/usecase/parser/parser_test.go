package parser

import (
	"strings"
	"testing"

	"desktop-agent/internal/domain/entity"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paramsOpt = cmp.AllowUnexported(entity.Params{})

func TestParse_Table(t *testing.T) {
	tests := []struct {
		text   string
		kind   entity.CommandKind
		action entity.CommandAction
		params entity.Params
	}{
		{"click on Submit", entity.KindMouse, entity.ActionClick, entity.NewParams("target", "Submit")},
		{"double click Recycle Bin", entity.KindMouse, entity.ActionDoubleClick, entity.NewParams("target", "Recycle Bin")},
		{"right-click the desktop", entity.KindMouse, entity.ActionRightClick, entity.NewParams("target", "the desktop")},
		{"click (120, 340)", entity.KindMouse, entity.ActionClick, entity.NewParams("x", 120, "y", 340)},
		{"drag report.pdf to Trash", entity.KindMouse, entity.ActionDrag, entity.NewParams("source", "report.pdf", "destination", "Trash")},
		{"scroll down", entity.KindMouse, entity.ActionScroll, entity.NewParams("direction", "down")},
		{"scroll up 5", entity.KindMouse, entity.ActionScroll, entity.NewParams("direction", "up", "amount", 5)},
		{"move mouse to center", entity.KindMouse, entity.ActionMove, entity.NewParams("target", "center")},
		{`type "Hello, World"`, entity.KindKeyboard, entity.ActionType, entity.NewParams("text", "Hello, World")},
		{"type hello there", entity.KindKeyboard, entity.ActionType, entity.NewParams("text", "hello there")},
		{"press enter", entity.KindKeyboard, entity.ActionKeyPress, entity.NewParams("key", "enter")},
		{"press the Escape key", entity.KindKeyboard, entity.ActionKeyPress, entity.NewParams("key", "Escape")},
		{"press ctrl + c", entity.KindKeyboard, entity.ActionKeyCombo, entity.NewParams("combo", "ctrl+c")},
		{"Ctrl+Shift+T", entity.KindKeyboard, entity.ActionKeyCombo, entity.NewParams("combo", "ctrl+shift+t")},
		{"alt+tab", entity.KindKeyboard, entity.ActionKeyCombo, entity.NewParams("combo", "alt+tab")},
		{"take a screenshot", entity.KindScreenshot, entity.ActionCapture, entity.Params{}},
		{"save screenshot as desk.png", entity.KindScreenshot, entity.ActionSave, entity.NewParams("filename", "desk.png")},
		{"wait 2.5 seconds", entity.KindUtility, entity.ActionWait, entity.NewParams("duration", 2.5)},
		{"wait", entity.KindUtility, entity.ActionWait, entity.NewParams("duration", 1.0)},
		{"pause for 3", entity.KindUtility, entity.ActionDelay, entity.NewParams("duration", 3.0)},
		{"sleep 4", entity.KindUtility, entity.ActionWait, entity.NewParams("duration", 4.0)},
		{"sleep", entity.KindSystem, entity.ActionSleep, entity.Params{}},
		{"shut down the computer", entity.KindSystem, entity.ActionShutdown, entity.Params{}},
		{"reboot", entity.KindSystem, entity.ActionRestart, entity.Params{}},
		{"log off", entity.KindSystem, entity.ActionLogout, entity.Params{}},
		{"open file notes.txt", entity.KindFile, entity.ActionOpen, entity.NewParams("path", "notes.txt")},
		{"create folder projects", entity.KindFile, entity.ActionCreate, entity.NewParams("path", "projects")},
		{"delete file old.log", entity.KindFile, entity.ActionDelete, entity.NewParams("path", "old.log")},
		{"copy a.txt to b.txt", entity.KindFile, entity.ActionCopy, entity.NewParams("source", "a.txt", "destination", "b.txt")},
		{"move a.txt to archive", entity.KindFile, entity.ActionMoveFile, entity.NewParams("source", "a.txt", "destination", "archive")},
		{"rename a.txt to c.txt", entity.KindFile, entity.ActionRename, entity.NewParams("source", "a.txt", "destination", "c.txt")},
		{"open notepad", entity.KindProgram, entity.ActionStart, entity.NewParams("program", "notepad")},
		{"launch Calculator", entity.KindProgram, entity.ActionStart, entity.NewParams("program", "Calculator")},
		{"close chrome", entity.KindProgram, entity.ActionClose, entity.NewParams("program", "chrome")},
		{"minimize spotify", entity.KindProgram, entity.ActionMinimize, entity.NewParams("program", "spotify")},
		{"search for golang generics", entity.KindWeb, entity.ActionSearch, entity.NewParams("query", "golang generics")},
		{"go to github.com", entity.KindWeb, entity.ActionNavigate, entity.NewParams("url", "github.com")},
	}

	p := New(nil)
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd := p.Parse(tt.text)
			assert.Equal(t, tt.kind, cmd.Kind)
			assert.Equal(t, tt.action, cmd.Action)
			if diff := cmp.Diff(tt.params, cmd.Params, paramsOpt); diff != "" {
				t.Errorf("params mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.text, cmd.RawText)
			assert.NoError(t, cmd.Validate())
		})
	}
}

func TestParse_Unknown(t *testing.T) {
	p := New(nil)

	cmd := p.Parse("make me a sandwich")

	assert.Equal(t, entity.KindUnknown, cmd.Kind)
	assert.Equal(t, entity.ActionClick, cmd.Action)
	assert.Equal(t, "make me a sandwich", cmd.Params.Text("text"))
	assert.Equal(t, 0.0, cmd.Confidence)
}

func TestParse_Deterministic(t *testing.T) {
	inputs := []string{"click OK", "type abc", "search for x", "nonsense words", "wait 3"}

	for _, in := range inputs {
		first := New(nil).Parse(in)
		for i := 0; i < 5; i++ {
			again := New(nil).Parse(in)
			if diff := cmp.Diff(first, again, paramsOpt); diff != "" {
				t.Fatalf("parse %q not deterministic:\n%s", in, diff)
			}
		}
	}
}

func TestParse_ConfidenceBounds(t *testing.T) {
	p := New(nil)
	for _, pat := range p.table {
		c := pat.confidence()
		assert.GreaterOrEqual(t, c, 0.8, pat.source)
		assert.LessOrEqual(t, c, 1.0, pat.source)
	}

	cmd := p.Parse("click OK")
	assert.Greater(t, cmd.Confidence, 0.8)
}

func TestPattern_ConfidenceGrowsWithLength(t *testing.T) {
	tests := []struct {
		length int
		want   float64
	}{
		{0, 0.8},
		{5, 0.85},
		{10, 0.9},
		{20, 1.0},
		{80, 1.0},
	}

	for _, tt := range tests {
		pat := newPattern(entity.KindKeyboard, entity.ActionType, strings.Repeat("a", tt.length), none)
		assert.InDelta(t, tt.want, pat.confidence(), 1e-9, "length %d", tt.length)
	}
}

func TestParseSequence_QuotedSeparators(t *testing.T) {
	p := New(nil)

	cmds := p.ParseSequence(`click "a, b" and then click "c then d"`)

	require.Len(t, cmds, 2)
	assert.Equal(t, "a, b", cmds[0].Params.Text("target"))
	assert.Equal(t, "c then d", cmds[1].Params.Text("target"))
}

func TestParseSequence_Separators(t *testing.T) {
	p := New(nil)

	cmds := p.ParseSequence("open notepad, type hello then press enter and take a screenshot")

	require.Len(t, cmds, 4)
	assert.Equal(t, entity.ActionStart, cmds[0].Action)
	assert.Equal(t, "hello", cmds[1].Params.Text("text"))
	assert.Equal(t, entity.ActionKeyPress, cmds[2].Action)
	assert.Equal(t, entity.ActionCapture, cmds[3].Action)
}

func TestParseSequence_ConjunctionInsideOneCommand(t *testing.T) {
	p := New(nil)

	cmds := p.ParseSequence("search for cats and dogs")

	require.Len(t, cmds, 1)
	assert.Equal(t, "cats and dogs", cmds[0].Params.Text("query"))
}

func TestParseSequence_ParenthesisedCoordinates(t *testing.T) {
	p := New(nil)

	cmds := p.ParseSequence("click (10, 20), then type x")

	require.Len(t, cmds, 2)
	x, _ := cmds[0].Params.Int("x")
	y, _ := cmds[0].Params.Int("y")
	assert.Equal(t, 10, x)
	assert.Equal(t, 20, y)
}

func TestParseSequence_CompoundExpansion(t *testing.T) {
	p := New(nil)

	got := p.ParseSequence("calculate 7 * 8")

	want := []entity.Command{
		entity.NewCommand(entity.KindKeyboard, entity.ActionType, entity.NewParams("text", "7 * 8"), compoundConfidence, "calculate 7 * 8"),
		entity.NewCommand(entity.KindKeyboard, entity.ActionKeyPress, entity.NewParams("key", "enter"), compoundConfidence, "calculate 7 * 8"),
	}
	if diff := cmp.Diff(want, got, paramsOpt); diff != "" {
		t.Errorf("expansion mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSequence_ArithmeticPhrases(t *testing.T) {
	tests := map[string]string{
		"add 4 and 5":        "4 + 5",
		"subtract 3 from 10": "10 - 3",
		"multiply 7 by 8":    "7 * 8",
		"divide 20 by 5":     "20 / 5",
		"what is 2 + 2?":     "2 + 2",
	}
	p := New(nil)
	for in, expr := range tests {
		cmds := p.ParseSequence(in)
		require.Len(t, cmds, 2, in)
		assert.Equal(t, expr, cmds[0].Params.Text("text"), in)
		assert.Equal(t, "enter", cmds[1].Params.Text("key"), in)
	}
}

func TestParseSequence_CompoundInChain(t *testing.T) {
	p := New(nil)

	cmds := p.ParseSequence("open calculator then multiply 6 by 7")

	require.Len(t, cmds, 3)
	assert.Equal(t, entity.ActionStart, cmds[0].Action)
	assert.Equal(t, "6 * 7", cmds[1].Params.Text("text"))
	assert.Equal(t, entity.ActionKeyPress, cmds[2].Action)
}

func TestParseSequence_UnknownSegmentKept(t *testing.T) {
	p := New(nil)

	cmds := p.ParseSequence("click OK, frobnicate the widget")

	require.Len(t, cmds, 2)
	assert.Equal(t, entity.KindMouse, cmds[0].Kind)
	assert.True(t, cmds[1].IsUnknown())
}

func TestParseSequence_ApostropheIsNotAQuote(t *testing.T) {
	p := New(nil)

	cmds := p.ParseSequence("type don't stop, press enter")

	require.Len(t, cmds, 2)
	assert.Equal(t, "don't stop", cmds[0].Params.Text("text"))
}

func TestContext_KeepsLastFive(t *testing.T) {
	p := New(nil)
	for _, in := range []string{"click a", "click b", "click c", "unknown thing", "click d", "click e", "click f"} {
		p.Parse(in)
	}

	ctx := p.Context()

	require.Len(t, ctx, 5)
	assert.Equal(t, "b", ctx[0].Params.Text("target"))
	assert.Equal(t, "f", ctx[4].Params.Text("target"))
}

func TestSuggestions(t *testing.T) {
	p := New(nil)

	assert.Equal(t, []string{"scroll up", "scroll down", "save screenshot as", "start", "search for"}, p.Suggestions("s"))
	assert.Len(t, p.Suggestions(""), 5)
	assert.Empty(t, p.Suggestions("xyz"))
}

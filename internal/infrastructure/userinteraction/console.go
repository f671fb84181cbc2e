package userinteraction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ProgressPort = (*Console)(nil)

// Console prints run progress to a terminal and asks yes/no questions on it.
type Console struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewConsole() *Console {
	return NewConsoleWithIO(os.Stdin, color.Output)
}

func NewConsoleWithIO(in io.Reader, out io.Writer) *Console {
	return &Console{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (c *Console) ShowStep(ctx context.Context, step, total int, cmd entity.Command) {
	icon := kindIcon(cmd.Kind)

	cyan := color.New(color.FgCyan, color.Bold)
	if total > 0 {
		cyan.Fprintf(c.out, "\n━━━ Step %d/%d ━━━\n", step, total)
	} else {
		cyan.Fprintf(c.out, "\n━━━ Step %d ━━━\n", step)
	}

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(c.out, "%s %s/%s\n", icon, cmd.Kind, cmd.Action)

	if summary := formatParams(cmd); summary != "" {
		dim := color.New(color.Faint)
		dim.Fprintf(c.out, "   %s\n", summary)
	}
}

func (c *Console) ShowResult(ctx context.Context, result entity.ExecutionResult) {
	if !result.Success {
		red := color.New(color.FgRed)
		red.Fprint(c.out, "❌ Error: ")

		dim := color.New(color.Faint)
		msg := truncate(result.Message, 300)
		if code := result.ErrorCode(); code != "" {
			msg = fmt.Sprintf("%s [%s]", msg, code)
		}
		dim.Fprintln(c.out, msg)
		return
	}

	green := color.New(color.FgGreen)
	green.Fprintf(c.out, "✓ %s\n", truncate(result.Message, 150))
}

func (c *Console) ShowThinking(ctx context.Context, content string) {
	if content == "" {
		return
	}

	blue := color.New(color.FgBlue)
	blue.Fprint(c.out, "\n💭 Thinking: ")

	dim := color.New(color.Faint)
	dim.Fprintln(c.out, truncate(content, 500))
}

// Confirm asks question and waits for an answer. Only y or yes confirm.
func (c *Console) Confirm(ctx context.Context, question string) (bool, error) {
	magenta := color.New(color.FgMagenta, color.Bold)
	magenta.Fprintf(c.out, "\n[CONFIRMATION REQUIRED] %s [y/N]\n> ", question)

	type reply struct {
		line string
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		line, err := c.reader.ReadString('\n')
		ch <- reply{line, err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case r := <-ch:
		if r.err != nil && r.line == "" {
			return false, fmt.Errorf("failed to read user input: %w", r.err)
		}
		answer := strings.ToLower(strings.TrimSpace(r.line))
		return answer == "y" || answer == "yes", nil
	}
}

func kindIcon(kind entity.CommandKind) string {
	icons := map[entity.CommandKind]string{
		entity.KindMouse:      "🖱️",
		entity.KindKeyboard:   "⌨️",
		entity.KindProgram:    "🚀",
		entity.KindSystem:     "⚡",
		entity.KindFile:       "📁",
		entity.KindScreenshot: "📸",
		entity.KindWeb:        "🌐",
	}
	if icon, ok := icons[kind]; ok {
		return icon
	}
	return "🔧"
}

func formatParams(cmd entity.Command) string {
	keys := cmd.Params.Keys()
	if len(keys) == 0 {
		return ""
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := cmd.Params.Get(k)
		parts = append(parts, fmt.Sprintf("%s: %s", k, truncate(fmt.Sprint(v), 60)))
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

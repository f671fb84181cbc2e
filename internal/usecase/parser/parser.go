package parser

import (
	"strings"
	"sync"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

const contextSize = 5

type Parser struct {
	table  []pattern
	logger output.LoggerPort

	mu      sync.Mutex
	context []entity.Command
}

func New(logger output.LoggerPort) *Parser {
	return &Parser{
		table:  defaultTable(),
		logger: logger,
	}
}

// Parse maps one directive to a Command. It never fails: text that matches
// no pattern yields an unknown command with zero confidence.
func (p *Parser) Parse(text string) entity.Command {
	cmd := p.match(text)
	p.remember(cmd)
	return cmd
}

func (p *Parser) match(text string) entity.Command {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return entity.UnknownCommand(text)
	}

	for _, pat := range p.table {
		loc := pat.re.FindStringSubmatchIndex(trimmed)
		if loc == nil {
			continue
		}
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = trimmed[loc[2*i]:loc[2*i+1]]
			}
		}
		params := pat.extract(groups, groups[0])
		return entity.NewCommand(pat.kind, pat.action, params, pat.confidence(), text)
	}

	if p.logger != nil {
		p.logger.Debug("No pattern matched", "text", trimmed)
	}
	return entity.UnknownCommand(text)
}

func (p *Parser) remember(cmd entity.Command) {
	if cmd.IsUnknown() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.context = append(p.context, cmd)
	if len(p.context) > contextSize {
		p.context = p.context[len(p.context)-contextSize:]
	}
}

// Context returns the most recent successfully parsed commands, oldest first.
func (p *Parser) Context() []entity.Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entity.Command, len(p.context))
	copy(out, p.context)
	return out
}

var starters = []string{
	"click on",
	"double click on",
	"right click on",
	"drag",
	"scroll up",
	"scroll down",
	"move mouse to",
	"type",
	"press enter",
	"press ctrl+c",
	"take screenshot",
	"save screenshot as",
	"open file",
	"create file",
	"delete file",
	"copy",
	"rename",
	"start",
	"launch",
	"close",
	"minimize",
	"maximize",
	"search for",
	"go to",
	"navigate to",
	"wait",
	"calculate",
}

// Suggestions returns up to five command starters completing partial.
func (p *Parser) Suggestions(partial string) []string {
	prefix := strings.ToLower(strings.TrimSpace(partial))
	out := make([]string, 0, contextSize)
	for _, s := range starters {
		if strings.HasPrefix(s, prefix) {
			out = append(out, s)
			if len(out) == contextSize {
				break
			}
		}
	}
	return out
}

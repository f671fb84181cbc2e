package parser

import (
	"strings"

	"desktop-agent/internal/domain/entity"
)

var (
	sequenceSeparators    = []string{"and then", "then"}
	conjunctionSeparators = []string{"and"}
)

// ParseSequence splits a chained directive and parses every segment.
// Commas, "and then" and "then" always split; "and" splits unless the
// segments it would produce do not parse while the joined phrase does
// ("search for cats and dogs"). Quoted and parenthesised spans are never
// split. Segments that match no pattern get one chance at arithmetic
// expansion before they are kept as unknown commands.
func (p *Parser) ParseSequence(text string) []entity.Command {
	pieces := splitOutsideQuotes(text, sequenceSeparators, true)
	if len(pieces) == 0 {
		return []entity.Command{p.Parse(text)}
	}

	var out []entity.Command
	for _, piece := range pieces {
		if cmds, ok := expandCompound(piece); ok {
			out = append(out, cmds...)
			continue
		}
		out = append(out, p.parseConjunction(piece)...)
	}

	if p.logger != nil {
		p.logger.Debug("Parsed sequence", "text", text, "commands", len(out))
	}
	return out
}

func (p *Parser) parseConjunction(piece string) []entity.Command {
	parts := splitOutsideQuotes(piece, conjunctionSeparators, false)
	if len(parts) <= 1 {
		return p.parseSegment(piece)
	}

	var cmds []entity.Command
	unresolved := false
	for _, part := range parts {
		parsed := p.match(part)
		if parsed.IsUnknown() {
			if expanded, ok := expandCompound(part); ok {
				cmds = append(cmds, expanded...)
				continue
			}
			unresolved = true
		}
		cmds = append(cmds, parsed)
	}

	if unresolved {
		if whole := p.match(piece); !whole.IsUnknown() {
			p.remember(whole)
			return []entity.Command{whole}
		}
	}
	for _, cmd := range cmds {
		p.remember(cmd)
	}
	return cmds
}

func (p *Parser) parseSegment(segment string) []entity.Command {
	cmd := p.Parse(segment)
	if cmd.IsUnknown() {
		if expanded, ok := expandCompound(segment); ok {
			return expanded
		}
	}
	return []entity.Command{cmd}
}

// splitOutsideQuotes cuts text at commas (when enabled) and at the given
// separator words, skipping anything inside quotes or parentheses. Word
// separators only count when surrounded by whitespace.
func splitOutsideQuotes(text string, words []string, commas bool) []string {
	var (
		segments []string
		quote    byte
		depth    int
		start    int
	)

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"':
			quote = c
		case c == '\'' && (i == 0 || !isWordByte(text[i-1])):
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case depth > 0:
		case commas && c == ',':
			segments = append(segments, text[start:i])
			start = i + 1
		case i > 0 && isSpace(text[i-1]):
			if n := separatorAt(text, i, words); n > 0 {
				segments = append(segments, text[start:i])
				i += n
				start = i
				continue
			}
		}
		i++
	}
	segments = append(segments, text[start:])

	out := segments[:0]
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func separatorAt(text string, i int, words []string) int {
	for _, w := range words {
		end := i + len(w)
		if end >= len(text) {
			continue
		}
		if strings.EqualFold(text[i:end], w) && isSpace(text[end]) {
			return len(w)
		}
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

package parser

import (
	"regexp"
	"strings"

	"desktop-agent/internal/domain/entity"
)

const compoundConfidence = 0.8

const number = `(-?\d+(?:\.\d+)?)`

type arithmetic struct {
	re    *regexp.Regexp
	build func(m []string) string
}

var arithmeticPhrases = []arithmetic{
	{
		re: regexp.MustCompile(`(?i)^\s*(?:calculate|compute|evaluate|what\s+is|what's)\s+(.+?)\s*\??\s*$`),
		build: func(m []string) string {
			if !looksArithmetic(m[1]) {
				return ""
			}
			return strings.Join(strings.Fields(m[1]), " ")
		},
	},
	{
		re:    regexp.MustCompile(`(?i)^\s*add\s+` + number + `\s+(?:and|to|plus)\s+` + number + `\s*$`),
		build: func(m []string) string { return m[1] + " + " + m[2] },
	},
	{
		re:    regexp.MustCompile(`(?i)^\s*subtract\s+` + number + `\s+from\s+` + number + `\s*$`),
		build: func(m []string) string { return m[2] + " - " + m[1] },
	},
	{
		re:    regexp.MustCompile(`(?i)^\s*multiply\s+` + number + `\s+(?:by|and|times|with)\s+` + number + `\s*$`),
		build: func(m []string) string { return m[1] + " * " + m[2] },
	},
	{
		re:    regexp.MustCompile(`(?i)^\s*divide\s+` + number + `\s+by\s+` + number + `\s*$`),
		build: func(m []string) string { return m[1] + " / " + m[2] },
	},
}

var arithmeticExpr = regexp.MustCompile(`^[\d\s.()+\-*/x×÷^%]+$`)

func looksArithmetic(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && strings.ContainsAny(s, "0123456789") && strings.ContainsAny(s, "+-*/x×÷^%") && arithmeticExpr.MatchString(s)
}

// expandCompound turns an arithmetic phrase into typing the expression
// followed by Enter.
func expandCompound(segment string) ([]entity.Command, bool) {
	for _, a := range arithmeticPhrases {
		m := a.re.FindStringSubmatch(segment)
		if m == nil {
			continue
		}
		expr := a.build(m)
		if expr == "" {
			continue
		}
		raw := strings.TrimSpace(segment)
		return []entity.Command{
			entity.NewCommand(entity.KindKeyboard, entity.ActionType, entity.NewParams("text", expr), compoundConfidence, raw),
			entity.NewCommand(entity.KindKeyboard, entity.ActionKeyPress, entity.NewParams("key", "enter"), compoundConfidence, raw),
		}, true
	}
	return nil, false
}

package resolver

import (
	"regexp"
	"strings"
	"unicode"

	"desktop-agent/internal/domain/entity"
)

const exactModeMaxLen = 5

// normalize lowercases s and keeps letters, digits, currency symbols and
// single spaces.
func normalize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.Is(unicode.Sc, r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}

// matchKey is the form texts are compared in. Symbol-only text such as "×"
// or "☰" has nothing left after normalize, so it is compared as written.
func matchKey(s string) string {
	if n := normalize(s); n != "" {
		return n
	}
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// useExactMode reports whether description is short or symbolic enough that
// substring matching would produce false positives ("$99" inside "$990").
func useExactMode(description string) bool {
	trimmed := strings.TrimSpace(description)
	if len([]rune(trimmed)) <= exactModeMaxLen {
		return true
	}
	for _, r := range trimmed {
		if unicode.IsSymbol(r) || strings.ContainsRune("%#@&", r) {
			return true
		}
	}
	return false
}

func fuzzyMatch(desc, entry string) bool {
	if desc == "" || entry == "" {
		return false
	}
	if strings.Contains(entry, desc) {
		return true
	}
	if len([]rune(entry)) >= 3 && strings.Contains(desc, entry) {
		return true
	}

	ratio := float64(len([]rune(desc))) / float64(len([]rune(entry)))
	if ratio < 0.5 || ratio > 2.0 {
		return false
	}

	words := strings.Fields(desc)
	entryWords := strings.Fields(entry)
	matched := 0
	for _, w := range words {
		for _, ew := range entryWords {
			if strings.Contains(ew, w) || strings.Contains(w, ew) {
				matched++
				break
			}
		}
	}
	return float64(matched) >= 0.7*float64(len(words))
}

var buttonKeywords = []string{
	"click", "submit", "search", "go", "next", "previous", "login", "log in", "sign in", "sign up",
	"register", "download", "more", "view", "read more", "continue", "proceed", "ok", "cancel",
	"save", "apply", "close", "done",
}

var linkIndicators = []string{"http", "www.", ".com", ".org", ".net", ".io", "learn more", "see more", "read article"}

func classify(text string) entity.ElementKind {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, ind := range linkIndicators {
		if strings.Contains(lower, ind) {
			return entity.ElementLink
		}
	}
	norm := normalize(text)
	for _, kw := range buttonKeywords {
		if norm == kw || (len(strings.Fields(norm)) <= 3 && containsWord(norm, kw)) {
			return entity.ElementButton
		}
	}
	return entity.ElementText
}

func containsWord(s, word string) bool {
	if word == "" {
		return false
	}
	padded := " " + s + " "
	return strings.Contains(padded, " "+word+" ")
}

var domainRe = regexp.MustCompile(`(?i)\b[a-z0-9-]+\.(?:com|org|net|io|dev|edu|gov|co|ru|de|uk)\b`)

func isSearchResult(text string) bool {
	t := strings.TrimSpace(text)
	lower := strings.ToLower(t)
	if strings.Contains(lower, "http") || strings.Contains(lower, "www.") || domainRe.MatchString(t) {
		return true
	}
	n := len([]rune(t))
	return n >= 10 && n <= 200 && len(strings.Fields(t)) >= 2
}

var ordinalRe = regexp.MustCompile(`(?i)^\s*(?:click\s+(?:on\s+)?)?(?:the\s+)?(?:(first|second|third|fourth|fifth|last|top|1st|2nd|3rd|4th|5th)\s+)?(search\s+)?results?\s*$`)

var ordinals = map[string]int{
	"first": 0, "1st": 0, "top": 0,
	"second": 1, "2nd": 1,
	"third": 2, "3rd": 2,
	"fourth": 3, "4th": 3,
	"fifth": 4, "5th": 4,
	"last": -1,
}

// searchResultIndex reports whether description asks for a search result and
// which one. A negative index means the last result.
func searchResultIndex(description string) (int, bool) {
	m := ordinalRe.FindStringSubmatch(description)
	if m == nil {
		return 0, false
	}
	if m[1] == "" && m[2] == "" {
		return 0, false
	}
	return ordinals[strings.ToLower(m[1])], true
}

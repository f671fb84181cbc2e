package planner

import (
	"regexp"
	"strings"
)

var visualPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(click|select|find|locate)\s+`),
	regexp.MustCompile(`^(right\s+click|double\s+click)\s+`),
	regexp.MustCompile(`(current|this|visible)\s+(window|screen|page)`),
	regexp.MustCompile(`(what|where)\s+(is|are)\s+`),
}

var nonVisualPrefixes = []string{"search", "open", "navigate", "go to", "launch", "start"}

// NeedsVisualContext reports whether a request refers to what is on screen
// right now, so the plan has to be made against a screenshot.
func NeedsVisualContext(request string) bool {
	text := strings.ToLower(strings.TrimSpace(request))
	for _, prefix := range nonVisualPrefixes {
		if strings.HasPrefix(text, prefix) {
			return false
		}
	}
	for _, re := range visualPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

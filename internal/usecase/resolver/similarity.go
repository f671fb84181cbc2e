package resolver

var confusables = map[rune]rune{
	'o': '0',
	'i': '1',
	'l': '1',
}

func foldConfusables(s string) []rune {
	out := []rune(s)
	for i, r := range out {
		if c, ok := confusables[r]; ok {
			out[i] = c
		}
	}
	return out
}

// Similarity scores two strings in [0, 1] as 1 - distance/max_len after
// normalization, treating characters OCR commonly confuses as equal.
// Symbol-only strings are compared as written.
func Similarity(a, b string) float64 {
	ra := foldConfusables(matchKey(a))
	rb := foldConfusables(matchKey(b))

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}

	d := levenshtein(ra, rb)
	return 1.0 - float64(d)/float64(maxLen)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

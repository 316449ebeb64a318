package chunker

import "strings"

// DefaultMaxChars is the character budget the summarizer sends to the model per part.
const DefaultMaxChars = 15000

// Split cuts text into pieces of at most maxChars characters, the way the
// summarizer does before producing one "Summary Part" per piece. A piece ends
// after the last period inside the budget, unless that period falls before
// 60% of the budget, in which case the piece is cut at exactly maxChars.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	minCut := int(float64(maxChars) * 0.6)

	rest := []rune(strings.TrimSpace(text))
	var chunks []string
	for len(rest) > maxChars {
		cut := lastIndex(rest[:maxChars], '.')
		if cut == -1 || cut < minCut {
			cut = maxChars
		} else {
			cut++ // keep the period
		}
		chunks = append(chunks, strings.TrimSpace(string(rest[:cut])))
		rest = []rune(strings.TrimSpace(string(rest[cut:])))
	}
	if len(rest) > 0 {
		chunks = append(chunks, string(rest))
	}
	return chunks
}

// Count returns how many pieces Split would produce.
func Count(text string, maxChars int) int {
	return len(Split(text, maxChars))
}

func lastIndex(rs []rune, target rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == target {
			return i
		}
	}
	return -1
}

package chunker

import "strings"

// EstimateTokens gives a rough token count from the word count (~1.33 tokens
// per English word). Any non-empty text counts as at least one token.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return max(int(float64(words)*1.33), 1)
}

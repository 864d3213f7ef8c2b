// Package tokencount approximates token usage for response metadata.
//
// The count is advisory: it feeds the `usage` block of responses and is
// never used to gate or truncate input. Segmentation follows Unicode
// UAX #29 word boundaries, counting only segments that carry at least
// one letter or digit, which keeps the count monotonic under adding
// words. This approximates the model's real word-piece tokenizer, which
// is not exposed by the model artifact.
package tokencount

import (
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// Count returns the approximate token count for a single text.
func Count(text string) int {
	n := 0
	tokens := words.FromString(text)
	for tokens.Next() {
		if countable(tokens.Value()) {
			n++
		}
	}
	return n
}

// Total sums Count over an ordered batch of texts.
func Total(texts []string) int32 {
	var total int32
	for _, text := range texts {
		total += int32(Count(text))
	}
	return total
}

func countable(segment string) bool {
	for _, r := range segment {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

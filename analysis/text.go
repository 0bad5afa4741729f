package analysis

import "strings"

// tokenize splits text into words, lowercases, and trims punctuation.
func tokenize(text string) []string {
	words := strings.Fields(text)
	cleaned := make([]string, 0, len(words))

	for _, word := range words {
		w := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if w != "" {
			cleaned = append(cleaned, w)
		}
	}

	return cleaned
}

// wordCount returns the number of whitespace-separated words in text.
func wordCount(text string) int {
	return len(strings.Fields(text))
}

// matchCount counts occurrences of pattern in text. Multi-word patterns
// are matched as substrings; single words are matched against whole
// tokens only, so "fix" does not fire on "prefix".
func matchCount(text, pattern string) int {
	if strings.Contains(pattern, " ") {
		return strings.Count(strings.ToLower(text), pattern)
	}

	count := 0
	for _, token := range tokenize(text) {
		if token == pattern {
			count++
		}
	}
	return count
}

// containsAny reports whether any of the patterns occurs in text.
func containsAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if matchCount(text, p) > 0 {
			return true
		}
	}
	return false
}

// countMatches sums the occurrences of every pattern in text.
func countMatches(text string, patterns []string) int {
	total := 0
	for _, p := range patterns {
		total += matchCount(text, p)
	}
	return total
}

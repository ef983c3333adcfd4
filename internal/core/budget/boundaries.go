package budget

import "strings"

// boundaryOffsets lists candidate truncation points in descending order:
// first sentence and line endings, then word endings. Offsets are byte
// positions; a cut at offset n keeps text[:n] trimmed of trailing space.
func boundaryOffsets(text string) []int {
	sentence := make([]int, 0, 16)
	words := make([]int, 0, 64)

	for i, r := range text {
		switch r {
		case '\n':
			sentence = append(sentence, i)
			words = append(words, i)
		case '.', '!', '?':
			// Sentence end only when followed by whitespace or end of text.
			next := i + 1
			if next >= len(text) || text[next] == ' ' || text[next] == '\n' {
				sentence = append(sentence, next)
			}
		case ' ':
			words = append(words, i)
		}
	}

	out := make([]int, 0, len(sentence)+len(words))
	for i := len(sentence) - 1; i >= 0; i-- {
		out = append(out, sentence[i])
	}
	for i := len(words) - 1; i >= 0; i-- {
		out = append(out, words[i])
	}
	return dedupeCuts(text, out)
}

func dedupeCuts(text string, cuts []int) []int {
	seen := make(map[string]struct{}, len(cuts))
	out := cuts[:0]
	for _, cut := range cuts {
		trimmed := strings.TrimRight(text[:cut], " \n")
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, len(trimmed))
	}
	return out
}

// Package flow places a stream of text onto fixed-size pages: a greedy
// word-wrap line breaker and a pagination engine that tracks the cursor,
// allocates pages through a builder.DocumentBuilder and notifies a caller
// hook on every page boundary.
package flow

// MeasureFunc returns the rendered width of text at the given size.
type MeasureFunc func(text string, size float64) float64

// token is a run of non-break characters together with the break character
// that preceded it in the source text.
type token struct {
	sep  rune
	text string
}

// BreakIntoLines splits text into display lines no wider than budget when
// measured with measure at the given size. Lines may only break at one of the
// break characters; the break character at each split point is consumed,
// while separators inside a line are kept, so joining the lines with the
// consumed characters reconstructs the text. A single token wider than the
// whole budget is placed alone on its own line and overflows rather than
// being truncated. Empty text yields no lines.
func BreakIntoLines(text string, size, budget float64, breaks []rune, measure MeasureFunc) []string {
	tokens := splitTokens(text, breaks)
	if len(tokens) == 0 {
		return nil
	}
	var lines []string
	current := tokens[0].text
	for _, tok := range tokens[1:] {
		candidate := current + string(tok.sep) + tok.text
		if measure(candidate, size) <= budget {
			current = candidate
		} else {
			lines = append(lines, current)
			current = tok.text
		}
	}
	return append(lines, current)
}

func splitTokens(text string, breaks []rune) []token {
	if len(breaks) == 0 {
		if text == "" {
			return nil
		}
		return []token{{text: text}}
	}
	set := make(map[rune]bool, len(breaks))
	for _, r := range breaks {
		set[r] = true
	}
	var tokens []token
	var word []rune
	var sep rune
	haveSep := false
	for _, r := range text {
		if !set[r] {
			word = append(word, r)
			continue
		}
		if len(word) > 0 {
			tokens = append(tokens, token{sep: sep, text: string(word)})
			word = word[:0]
			haveSep = false
		}
		// A run of break characters collapses to its first one.
		if !haveSep {
			sep = r
			haveSep = true
		}
	}
	if len(word) > 0 {
		tokens = append(tokens, token{sep: sep, text: string(word)})
	}
	return tokens
}

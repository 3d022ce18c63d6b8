package nlp

import "strings"

// alignOffsets locates each token in text in order, filling Start and End.
// Tokens the tokenizer rewrote (such as normalized quotes) get -1.
func alignOffsets(text string, tokens []Token) {
	cursor := 0

	for i := range tokens {
		idx := strings.Index(text[cursor:], tokens[i].Text)
		if tokens[i].Text == "" || idx < 0 {
			tokens[i].Start, tokens[i].End = -1, -1
			continue
		}

		tokens[i].Start = cursor + idx
		tokens[i].End = tokens[i].Start + len(tokens[i].Text)
		cursor = tokens[i].End
	}
}

// locateEntity finds the token range whose texts, joined by single spaces,
// equal entity. The search starts at token from.
func locateEntity(tokens []Token, entity string, from int) (int, int, bool) {
	for start := from; start < len(tokens); start++ {
		if !strings.HasPrefix(entity, tokens[start].Text) {
			continue
		}

		joined := tokens[start].Text

		for end := start + 1; end <= len(tokens); end++ {
			if joined == entity {
				return start, end, true
			}

			if end == len(tokens) || len(joined) >= len(entity) {
				break
			}

			joined += " " + tokens[end].Text
		}
	}

	return 0, 0, false
}

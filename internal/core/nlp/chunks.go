package nlp

// nounChunks finds base noun phrases: maximal runs of determiners, possessives,
// adjectives, numbers and nouns that end in a noun. Personal pronouns form
// single-token chunks.
func nounChunks(tokens []Token) []Span {
	var chunks []Span

	for i := 0; i < len(tokens); {
		if tokens[i].Tag == "PRP" {
			chunks = append(chunks, Span{Start: i, End: i + 1})
			i++

			continue
		}

		if !chunkTag(tokens[i].Tag) {
			i++
			continue
		}

		j := i
		for j < len(tokens) && chunkTag(tokens[j].Tag) {
			j++
		}

		end := j
		for end > i && !tokens[end-1].IsNoun() {
			end--
		}

		if end > i {
			chunks = append(chunks, Span{Start: i, End: end})
		}

		i = j
	}

	return chunks
}

func chunkTag(tag string) bool {
	switch tag {
	case "DT", "PDT", "PRP$", "JJ", "JJR", "JJS", "CD", "NN", "NNS", "NNP", "NNPS", "POS":
		return true
	}

	return false
}

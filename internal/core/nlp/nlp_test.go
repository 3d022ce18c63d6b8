package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniversalPOS(t *testing.T) {
	tests := []struct {
		tag  string
		text string
		want POS
	}{
		{"NN", "capital", PosNoun},
		{"NNS", "degrees", PosNoun},
		{"NNP", "paris", PosPropn},
		{"VBZ", "boils", PosVerb},
		{"VBZ", "is", PosAux},
		{"MD", "can", PosAux},
		{"CD", "100", PosNum},
		{"JJ", "red", PosAdj},
		{"RB", "quickly", PosAdv},
		{"PRP", "it", PosPron},
		{"DT", "the", PosDet},
		{"IN", "of", PosAdp},
		{"CC", "and", PosCconj},
		{".", ".", PosPunct},
		{"FW", "etc", PosOther},
	}

	for _, tt := range tests {
		t.Run(tt.tag+"_"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, universalPOS(tt.tag, tt.text))
		})
	}
}

func TestLikeNum(t *testing.T) {
	for _, s := range []string{"100", "3.14", "1,000", "-5", "1/2", "ten", "Twenty", "first", "million"} {
		assert.True(t, LikeNum(s), s)
	}

	for _, s := range []string{"", "abc", "1a", "-", "1/x", "kilometers"} {
		assert.False(t, LikeNum(s), s)
	}
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("The"))
	assert.True(t, IsStopWord("is"))
	assert.False(t, IsStopWord("capital"))
}

func tok(text, tag string) Token {
	return Token{Text: text, Tag: tag, POS: universalPOS(tag, text)}
}

func TestNounChunks(t *testing.T) {
	tokens := []Token{
		tok("the", "DT"), tok("capital", "NN"), tok("of", "IN"), tok("france", "NNP"),
		tok("is", "VBZ"), tok("the", "DT"), tok("big", "JJ"), tok("city", "NN"),
		tok("and", "CC"), tok("it", "PRP"), tok("is", "VBZ"), tok("very", "RB"), tok("old", "JJ"),
	}

	chunks := nounChunks(tokens)

	var got [][2]int
	for _, c := range chunks {
		got = append(got, [2]int{c.Start, c.End})
	}

	assert.Equal(t, [][2]int{{0, 2}, {3, 4}, {5, 8}, {9, 10}}, got)
}

func TestNounChunks_TrimsTrailingModifiers(t *testing.T) {
	tokens := []Token{tok("the", "DT"), tok("big", "JJ")}
	assert.Empty(t, nounChunks(tokens))

	tokens = []Token{tok("100", "CD"), tok("degrees", "NNS"), tok("hot", "JJ")}
	chunks := nounChunks(tokens)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 2, chunks[0].End)
}

func TestAlignAndSpanText(t *testing.T) {
	text := "water boils at 100 degrees celsius."
	tokens := []Token{
		{Text: "water"}, {Text: "boils"}, {Text: "at"}, {Text: "100"},
		{Text: "degrees"}, {Text: "celsius"}, {Text: "."},
	}

	alignOffsets(text, tokens)

	doc := &Doc{Text: text, Tokens: tokens}

	assert.Equal(t, "boils at 100 degrees celsius", doc.SpanText(1, 6))
	assert.Equal(t, "celsius.", doc.SpanText(5, 7))
	assert.Equal(t, "water boils", doc.SpanText(-3, 2))
	assert.Equal(t, "", doc.SpanText(4, 4))
	assert.Equal(t, "celsius.", doc.SpanText(5, 99))
}

func TestSpanText_UnalignedFallsBackToSpaces(t *testing.T) {
	text := `he said "hi"`
	tokens := []Token{{Text: "he"}, {Text: "said"}, {Text: "``"}, {Text: "hi"}, {Text: "''"}}

	alignOffsets(text, tokens)

	assert.Equal(t, -1, tokens[2].Start)

	doc := &Doc{Text: text, Tokens: tokens}
	assert.Equal(t, "said `` hi", doc.SpanText(1, 4))
	assert.Equal(t, "he said", doc.SpanText(0, 2))
}

func TestLocateEntity(t *testing.T) {
	tokens := []Token{{Text: "in"}, {Text: "new"}, {Text: "york"}, {Text: "and"}, {Text: "new"}, {Text: "york"}}

	start, end, ok := locateEntity(tokens, "new york", 0)
	require.True(t, ok)
	assert.Equal(t, 1, start)
	assert.Equal(t, 3, end)

	start, _, ok = locateEntity(tokens, "new york", 3)
	require.True(t, ok)
	assert.Equal(t, 4, start)

	_, _, ok = locateEntity(tokens, "boston", 0)
	assert.False(t, ok)
}

package nlp

import "strings"

// LikeNum reports whether text looks like a number: digits with optional
// separators, a simple fraction, or an English number word.
func LikeNum(text string) bool {
	text = strings.TrimLeft(text, "+-±~")
	if text == "" {
		return false
	}

	if isDigits(strings.NewReplacer(",", "", ".", "").Replace(text)) {
		return true
	}

	if num, denom, ok := strings.Cut(text, "/"); ok && isDigits(num) && isDigits(denom) {
		return true
	}

	lower := strings.ToLower(text)

	return numberWords[lower] || ordinalWords[lower]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

var numberWords = buildSet(`
zero one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen
seventeen eighteen nineteen twenty thirty forty fifty sixty seventy eighty ninety hundred thousand
million billion trillion quadrillion
`)

var ordinalWords = buildSet(`
first second third fourth fifth sixth seventh eighth ninth tenth eleventh twelfth thirteenth fourteenth
fifteenth sixteenth seventeenth eighteenth nineteenth twentieth thirtieth fortieth fiftieth sixtieth
seventieth eightieth ninetieth hundredth thousandth millionth billionth trillionth
`)

package nlp

import "strings"

// universalPOS maps a Penn Treebank tag to a universal tag. Forms of "be" are
// auxiliaries regardless of their Penn tag.
func universalPOS(tag, lowerText string) POS {
	switch {
	case tag == "NN" || tag == "NNS":
		return PosNoun
	case tag == "NNP" || tag == "NNPS":
		return PosPropn
	case tag == "MD":
		return PosAux
	case strings.HasPrefix(tag, "VB"):
		if beForms[lowerText] {
			return PosAux
		}

		return PosVerb
	case tag == "CD":
		return PosNum
	case strings.HasPrefix(tag, "JJ"):
		return PosAdj
	case strings.HasPrefix(tag, "RB") || tag == "WRB":
		return PosAdv
	case tag == "PRP" || tag == "PRP$" || tag == "WP" || tag == "WP$" || tag == "EX":
		return PosPron
	case tag == "DT" || tag == "PDT" || tag == "WDT":
		return PosDet
	case tag == "IN":
		return PosAdp
	case tag == "CC":
		return PosCconj
	case tag == "TO" || tag == "RP" || tag == "POS":
		return PosPart
	case tag == "UH":
		return PosIntj
	case tag == "SYM" || tag == "$" || tag == "#":
		return PosSym
	case isPunctTag(tag):
		return PosPunct
	default:
		return PosOther
	}
}

func isPunctTag(tag string) bool {
	switch tag {
	case ".", ",", ":", "(", ")", "``", "''", "-LRB-", "-RRB-", "HYPH", "NFP":
		return true
	}

	return false
}

var beForms = map[string]bool{
	"be": true, "am": true, "is": true, "are": true, "was": true, "were": true,
	"been": true, "being": true, "'s": true, "'re": true, "'m": true,
}

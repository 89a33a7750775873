package extract

import "strings"

// DetectLanguage returns an IETF language subtag for text. Right-to-left
// scripts are distinguished by script-point majority (Hebrew vs Arabic);
// otherwise text is scored against small per-language stopword sets plus
// CJK/Cyrillic character ranges, and the highest-scoring language wins. A
// winning score below 5 defaults to English.
func DetectLanguage(text string) string {
	hebrew, arabic := 0, 0
	cjkHan, kana, cyrillic := 0, 0, 0

	for _, r := range text {
		switch {
		case r >= 0x0590 && r <= 0x05FF:
			hebrew++
		case r >= 0x0600 && r <= 0x06FF:
			arabic++
		case r >= 0x3040 && r <= 0x30FF:
			kana++
		case r >= 0x4E00 && r <= 0x9FFF:
			cjkHan++
		case r >= 0x0400 && r <= 0x04FF:
			cyrillic++
		}
	}

	if hebrew > 0 || arabic > 0 {
		if hebrew >= arabic {
			return "he"
		}
		return "ar"
	}

	if kana > 0 {
		return "ja"
	}
	if cjkHan > 0 {
		return "zh"
	}
	if cyrillic > 0 {
		return "ru"
	}

	lower := strings.ToLower(text)
	best, bestScore := "en", 0
	for lang, words := range stopwords {
		score := 0
		for _, w := range words {
			score += strings.Count(lower, w)
		}
		if score > bestScore {
			best, bestScore = lang, score
		}
	}

	if bestScore < 5 {
		return "en"
	}
	return best
}

var stopwords = map[string][]string{
	"en": {" the ", " and ", " of ", " to ", " in ", " is ", " that ", " for "},
	"es": {" el ", " la ", " de ", " que ", " y ", " en ", " los ", " las "},
	"fr": {" le ", " la ", " de ", " et ", " les ", " des ", " dans ", " est "},
	"de": {" der ", " die ", " das ", " und ", " ist ", " den ", " mit ", " nicht "},
	"pt": {" o ", " a ", " de ", " que ", " e ", " do ", " da ", " em "},
	"it": {" il ", " la ", " di ", " che ", " e ", " in ", " del ", " per "},
}

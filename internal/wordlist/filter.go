package wordlist

import (
	"strings"
	"unicode"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns the word filter for lang. English keeps lowercase
// ASCII words; other languages keep words made of letters and combining marks,
// dropping numbers, punctuation and symbols.
func FilterForLang(lang string) FilterFunc {
	if strings.EqualFold(strings.TrimSpace(lang), DefaultLang) {
		return lowerASCII
	}
	return lettersOnly
}

func lowerASCII(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			return false
		}
	}
	return true
}

func lettersOnly(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r) {
			return false
		}
	}
	return true
}

package match

import (
	"strings"
	"unicode"
)

// Tokenize normalizes raw post text into a word sequence: lower-case,
// map every rune that is not a letter, digit, or whitespace to a space,
// then split on runs of whitespace. Empty input yields an empty slice,
// which simply fails every keyword match downstream.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	return strings.Fields(b.String())
}

// tokenSet builds a membership set over tokens for exact-match tests.
func tokenSet(tokens []string) map[string]struct{} {
	if len(tokens) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		out[t] = struct{}{}
	}
	return out
}

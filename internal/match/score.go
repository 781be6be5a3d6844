package match

import (
	"strings"
	"unicode/utf8"
)

// Scoring constants. An exact token hit always outweighs a partial
// (substring) hit, and the category bonus is applied at most once per
// template, only after it has cleared the keyword matcher with a
// positive score.
const (
	// ExactScore is contributed by a keyword present verbatim in the
	// token set.
	ExactScore = 2
	// PartialScore is contributed by a keyword contained as a substring
	// of some token, when no exact hit exists.
	PartialScore = 1
	// CategoryBonus is added once when the template's category equals the
	// caller's preferred category and the keyword score is positive.
	CategoryBonus = 3

	// negationMarker prefixes exclusion terms.
	negationMarker = "-"

	// minPartialRunes is the exclusive length floor for substring tests.
	// Terms of 1-2 runes never match partially; this keeps short fragments
	// from causing spurious hits or exclusions.
	minPartialRunes = 2
)

// ScoreKeywords scores one template's keyword set against the tokenized
// post. The returned excluded flag is authoritative: a single negative hit
// vetoes the template regardless of positive matches before or after it.
//
// Keywords are trimmed and lower-cased; entries empty after trimming (or a
// bare negation marker) contribute nothing. A template is viable only when
// excluded is false and score is greater than zero.
func ScoreKeywords(keywords []string, tokens []string) (score int, excluded bool) {
	if len(keywords) == 0 {
		return 0, false
	}
	set := tokenSet(tokens)

	for _, raw := range keywords {
		kw := strings.ToLower(strings.TrimSpace(raw))
		if kw == "" {
			continue
		}

		if strings.HasPrefix(kw, negationMarker) {
			term := strings.TrimPrefix(kw, negationMarker)
			if term == "" {
				continue
			}
			if hitExact(set, term) || hitPartial(tokens, term) {
				return 0, true
			}
			continue
		}

		switch {
		case hitExact(set, kw):
			score += ExactScore
		case hitPartial(tokens, kw):
			score += PartialScore
		}
	}
	return score, false
}

// hitExact reports verbatim membership of term in the token set.
func hitExact(set map[string]struct{}, term string) bool {
	_, ok := set[term]
	return ok
}

// hitPartial reports whether some token contains term as a substring.
// Terms at or under the length floor never match.
func hitPartial(tokens []string, term string) bool {
	if utf8.RuneCountInString(term) <= minPartialRunes {
		return false
	}
	for _, t := range tokens {
		if strings.Contains(t, term) {
			return true
		}
	}
	return false
}

// Collect runs the matcher over every template and emits one Candidate per
// variant body for each viable template. Variants share the template's
// score; ordering at this stage carries no guarantee. Templates whose
// category equals preferredCategory receive CategoryBonus on top of a
// positive keyword score; the bonus is never a path to inclusion on its own.
func Collect(templates []Template, tokens []string, preferredCategory string) []*Candidate {
	var out []*Candidate
	for _, t := range templates {
		score, excluded := ScoreKeywords(t.Keywords, tokens)
		if excluded || score <= 0 {
			continue
		}
		if preferredCategory != "" && t.Category == preferredCategory {
			score += CategoryBonus
		}

		bodies := t.Bodies
		if len(bodies) == 0 {
			continue
		}
		for i, body := range bodies {
			out = append(out, &Candidate{
				Template:     t,
				VariantIndex: i,
				Text:         body,
				Score:        score,
			})
		}
	}
	return out
}

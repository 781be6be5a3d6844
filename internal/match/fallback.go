package match

import "strings"

// fallbackHint maps case-insensitive substring probes over the raw post
// text to a canned suggestion for that domain.
type fallbackHint struct {
	label  string
	probes []string
	text   string
}

// fallbackTable is the fixed set of domain hints scanned when no template
// scores above zero. Order here is output order.
var fallbackTable = []fallbackHint{
	{
		label:  "Automotive",
		probes: []string{"car", "auto", "vehicle", "garage"},
		text:   "Sounds like a car question! We help with all things automotive.",
	},
	{
		label:  "Fitness",
		probes: []string{"gym", "fitness", "workout", "training"},
		text:   "Great fitness topic! We'd love to help you reach your goals.",
	},
	{
		label:  "Food",
		probes: []string{"food", "restaurant", "recipe", "meal"},
		text:   "Talking food? Check out what we have cooking.",
	},
}

// genericFallback is emitted when no hint matches; the fallback path never
// returns zero suggestions.
const genericFallback = "Thanks for sharing! Take a look at what we offer."

// Fallbacks produces canned suggestions for a post that matched no
// templates. One suggestion is emitted per hint whose probes appear in the
// post; the default url, when present, is appended to each. A post matching
// no hints yields exactly one generic suggestion.
func Fallbacks(postText, defaultURL string) []Suggestion {
	lower := strings.ToLower(postText)

	var out []Suggestion
	for _, h := range fallbackTable {
		for _, p := range h.probes {
			if strings.Contains(lower, p) {
				out = append(out, Suggestion{
					Text:          Render(h.text, defaultURL),
					TemplateLabel: h.label,
					IsFallback:    true,
				})
				break
			}
		}
	}
	if len(out) == 0 {
		out = append(out, Suggestion{
			Text:       Render(genericFallback, defaultURL),
			IsFallback: true,
		})
	}
	return out
}

package match

import "strings"

// Placeholder tokens understood by the renderer. SiteToken is the legacy
// form kept for templates imported from older libraries.
const (
	URLToken  = "{url}"
	SiteToken = "%site%"

	// genericSite stands in for the site placeholder when no URL resolves.
	genericSite = "our website"
)

// Render substitutes link placeholders in a suggestion body. Steps apply in
// order, each only when the prior one did not already satisfy the text:
//
//  1. Every URLToken occurrence becomes the resolved url.
//  2. Otherwise every SiteToken occurrence becomes the url, or a generic
//     phrase when no url is available.
//  3. Otherwise, when a url resolves and the text does not already end with
//     it, the url is appended after a single space.
//
// Rendering is idempotent: text with no remaining placeholders and a
// trailing url passes through unchanged. An empty url skips substitution
// gracefully; it is never an error.
func Render(text, url string) string {
	if strings.Contains(text, URLToken) {
		if url == "" {
			return text
		}
		return strings.ReplaceAll(text, URLToken, url)
	}

	if strings.Contains(text, SiteToken) {
		site := url
		if site == "" {
			site = genericSite
		}
		return strings.ReplaceAll(text, SiteToken, site)
	}

	if url != "" && !strings.HasSuffix(strings.TrimRight(text, " "), url) {
		return strings.TrimRight(text, " ") + " " + url
	}
	return text
}

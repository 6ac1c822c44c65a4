// Package sanitize strips unsafe HTML from synced email content before it is
// persisted or returned to clients.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type Sanitizer struct {
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

// New builds the allow-list policy used for stored thread bodies. Links keep
// their href but are forced to open in a new tab without referrer leakage.
func New() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "div", "span", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "b", "i", "u",
		"h1", "h2", "h3", "h4",
		"table", "thead", "tbody", "tr", "td", "th",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &Sanitizer{
		policy: p,
		strict: bluemonday.StrictPolicy(),
	}
}

// HTML sanitizes a full HTML body.
func (s *Sanitizer) HTML(raw string) string {
	return s.policy.Sanitize(raw)
}

// Snippet reduces raw content to a single line of plain text capped at max
// runes. Used for the preview stored on email threads.
func (s *Sanitizer) Snippet(raw string, max int) string {
	text := s.strict.Sanitize(raw)
	text = strings.Join(strings.Fields(text), " ")
	if max > 0 {
		runes := []rune(text)
		if len(runes) > max {
			text = string(runes[:max]) + "..."
		}
	}
	return text
}

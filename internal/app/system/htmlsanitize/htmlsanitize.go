// Package htmlsanitize turns HTML that arrives from the ERP server into
// plain text. Server messages (msgprint/throw) often carry inline markup and
// line breaks; the calendar toasts and form pages show them as text.
package htmlsanitize

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict     *bluemonday.Policy
	strictOnce sync.Once

	// Tags that separate lines in server messages.
	breakTags = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|tr)>`)
)

func getStrict() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// StripTags removes all markup and returns plain text with entities decoded,
// so the result can be escaped again by whatever renders it. Line breaks
// become single spaces.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	s = breakTags.ReplaceAllString(s, " ")
	out := html.UnescapeString(getStrict().Sanitize(s))
	return strings.Join(strings.Fields(out), " ")
}

// Package sanitize cleans free-text input before it is persisted and
// validates structured fields such as email addresses.
package sanitize

import (
	"html"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag and attribute, keeping only text.
var strict = bluemonday.StrictPolicy()

// Text strips markup from s and trims surrounding whitespace. Characters
// with HTML meaning that survive (such as &) come back escaped.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Length counts the characters of a Text result as the user typed them,
// so escaped entities such as &amp; count once.
func Length(clean string) int {
	return utf8.RuneCountInString(html.UnescapeString(clean))
}

// Email validates an address and returns it normalized (trimmed, lower-case).
// Display-name forms such as "Bob <bob@example.com>" are rejected.
func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return "", false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || !strings.Contains(s[at+1:], ".") {
		return "", false
	}
	return strings.ToLower(s), true
}

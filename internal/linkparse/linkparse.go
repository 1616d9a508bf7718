// Package linkparse extracts platform invite links from free-form message
// text. A claim submission is any private message whose text contains a link
// matching the platform pattern; everything around the link is ignored.
package linkparse

import "regexp"

// invite links look like https://t.me/+AbCdEf or https://t.me/joinchat/XyZ.
// The pattern is deliberately broad (anything non-space after the host):
// matching is only a pre-filter, the database lookup decides validity.
var linkRe = regexp.MustCompile(`https://t\.me/\S+`)

// FirstLink returns the first invite link found in text, or "" when the text
// contains none.
func FirstLink(text string) string {
	return linkRe.FindString(text)
}

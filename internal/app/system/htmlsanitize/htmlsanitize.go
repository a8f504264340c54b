// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips dangerous HTML from user-supplied text.
// Check-in and SOS messages are written by one family member and
// rendered in every other member's browser, so they are sanitized once
// on the way into storage.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

// policy allows basic formatting (what a "user generated content"
// policy permits) and removes scripts, event handlers, and
// javascript: URLs.
var policy = bluemonday.UGCPolicy()

// Sanitize returns s with disallowed HTML removed.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

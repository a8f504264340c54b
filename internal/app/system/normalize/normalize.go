// internal/app/system/normalize/normalize.go

// Package normalize trims and canonicalizes user-supplied strings
// before they are stored or used in queries.
package normalize

import "strings"

// Email lowercases and trims an email address so lookups and snapshots
// are case-insensitive.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving its case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status canonicalizes a member status: trimmed and uppercased, which
// is the wire form the status vocabulary uses ("SAFE", "DANGER",
// "NO RESPONSE").
func Status(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// QueryParam trims a free-form query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Code trims a join code. Codes are numeric so case does not apply.
func Code(s string) string {
	return strings.TrimSpace(s)
}

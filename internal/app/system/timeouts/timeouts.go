// internal/app/system/timeouts/timeouts.go

// Package timeouts centralizes the context deadlines used for database
// work that runs outside a request scope. Request handlers inherit the
// server's deadline through r.Context(); these cover everything else.
package timeouts

import "time"

const (
	// Ping bounds health-check connectivity checks.
	Ping = 2 * time.Second

	// Setup bounds test-database connects and other one-shot setup.
	Setup = 5 * time.Second

	// Sweep bounds one full staleness-sweep pass over the unswept
	// check-in requests.
	Sweep = 30 * time.Second
)

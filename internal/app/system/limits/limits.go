// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxReportSize is the maximum size for a check-in or SOS payload.
	// A report is a short message plus an optional location; anything
	// bigger is abuse.
	MaxReportSize = 64 << 10 // 64 KB
)

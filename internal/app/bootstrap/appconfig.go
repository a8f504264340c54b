// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where everything specific to SafeLink lives: the Mongo
// connection, the token secret shared with the identity provider, and
// the tuning knobs for the staleness sweep.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Identity configuration
	AuthTokenSecret string // HMAC secret for verifying bearer tokens (must match the identity provider)

	// CORS configuration for browser clients
	CORSAllowedOrigins []string // Origins allowed to call the API

	// Staleness sweep tuning
	SweepInterval   time.Duration // How often the sweep worker runs
	NoResponseAfter time.Duration // How long members have to answer a check-in before NO RESPONSE

	// Event history
	EventHistoryLimit int // Hard cap on status events returned per request
}

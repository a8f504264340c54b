// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for SafeLink.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, auth_token_secret, etc.
//   - Environment variables: SAFELINK_MONGO_URI, SAFELINK_AUTH_TOKEN_SECRET, etc.
//   - Command-line flags: --mongo_uri, --auth_token_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "safelink", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Identity configuration
	{Name: "auth_token_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HMAC secret for verifying bearer tokens (must be strong in production)"},

	// CORS configuration
	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated list of origins allowed to call the API"},

	// Staleness sweep settings
	{Name: "sweep_interval", Default: "1m", Desc: "How often the staleness sweep runs (e.g., 1m, 30s)"},
	{Name: "no_response_after", Default: "6h", Desc: "How long members have to answer a check-in before NO RESPONSE (e.g., 6h, 90m)"},

	// Event history settings
	{Name: "event_history_limit", Default: 500, Desc: "Hard cap on status events returned per history request"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, SAFELINK_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SAFELINK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		AuthTokenSecret: appValues.String("auth_token_secret"),

		CORSAllowedOrigins: splitOrigins(appValues.String("cors_allowed_origins")),

		SweepInterval:   appValues.Duration("sweep_interval", time.Minute),
		NoResponseAfter: appValues.Duration("no_response_after", 6*time.Hour),

		EventHistoryLimit: appValues.Int("event_history_limit"),
	}

	return coreCfg, appCfg, nil
}

// splitOrigins turns "https://a.example,https://b.example" into a slice
// usable by the CORS middleware.
func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// SafeLink validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.AuthTokenSecret == "" {
		return fmt.Errorf("auth_token_secret must be set")
	}
	if coreCfg.Env == "prod" && strings.HasPrefix(appCfg.AuthTokenSecret, "dev-only-") {
		return fmt.Errorf("auth_token_secret must be changed from the dev default in production")
	}

	if appCfg.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive")
	}
	if appCfg.NoResponseAfter <= 0 {
		return fmt.Errorf("no_response_after must be positive")
	}
	if appCfg.EventHistoryLimit < 1 {
		return fmt.Errorf("event_history_limit must be at least 1")
	}

	return nil
}

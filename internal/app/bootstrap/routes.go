// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	familiesfeature "github.com/ehmughn/safelink-web-sub000/internal/app/features/families"
	healthfeature "github.com/ehmughn/safelink-web-sub000/internal/app/features/health"
	safetyfeature "github.com/ehmughn/safelink-web-sub000/internal/app/features/safety"
	"github.com/ehmughn/safelink-web-sub000/internal/app/registry"
	safetysvc "github.com/ehmughn/safelink-web-sub000/internal/app/safety"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/auth"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/ratelimit"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// SafeLink wires the token verifier, applies CORS for browser clients,
// and mounts the health, families, and safety feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.SafeLinkMongoDatabase

	verifier := auth.NewVerifier(appCfg.AuthTokenSecret, logger)

	reg := registry.New(db, logger)
	saf := safetysvc.New(db, reg, logger)

	r := chi.NewRouter()

	// Browser clients live on a different origin than the API.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.SafeLinkMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Family registry and live view
	familiesHandler := familiesfeature.NewHandler(reg, saf, watchHub, logger)
	familiesHandler.Broadcasts = ratelimit.New(5, time.Minute)
	familiesHandler.Joins = ratelimit.New(30, time.Minute)
	r.Mount("/api/families", familiesfeature.Routes(familiesHandler, verifier))

	// Safety status reporting
	safetyHandler := safetyfeature.NewHandler(saf, appCfg.EventHistoryLimit, logger)
	safetyHandler.SOS = ratelimit.New(10, time.Minute)
	r.Mount("/api/safety", safetyfeature.Routes(safetyHandler, verifier))

	return r, nil
}

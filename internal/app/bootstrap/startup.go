// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	familystore "github.com/ehmughn/safelink-web-sub000/internal/app/store/families"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/workers"
	"github.com/ehmughn/safelink-web-sub000/internal/app/watch"
)

// Long-lived background pieces constructed in Startup, used by
// BuildHandler, and torn down in Shutdown.
var (
	watchHub     *watch.Hub
	changeSource *watch.ChangeStreamSource
	sweepWorker  *workers.StalenessSweep
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It is the
// place to start background workers or perform any app-wide setup that
// depends on config and backends.
//
// SafeLink starts the live-view hub (fed by a change stream on the
// families collection) and the staleness sweep worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.SafeLinkMongoDatabase

	watchHub = watch.NewHub(familystore.New(db), logger)
	changeSource = watch.NewChangeStreamSource(db, watchHub, logger)
	changeSource.Start()

	sweepWorker = workers.NewStalenessSweep(db, logger, appCfg.SweepInterval, appCfg.NoResponseAfter)
	sweepWorker.Start()

	return nil
}

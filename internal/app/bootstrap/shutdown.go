// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down background workers and DB connections.
// Workers stop before the Mongo client disconnects so in-flight sweeps
// and stream reads finish against a live connection.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if sweepWorker != nil {
		sweepWorker.Stop()
	}
	if changeSource != nil {
		changeSource.Stop()
	}
	if watchHub != nil {
		watchHub.Close()
	}

	if deps.SafeLinkMongoClient != nil {
		logger.Info("disconnecting SafeLink MongoDB client")
		if err := deps.SafeLinkMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}

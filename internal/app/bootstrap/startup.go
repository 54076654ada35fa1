// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/dalemusser/flockhub/internal/app/system/tasks"
)

// runner owns the background jobs started here and stopped in Shutdown.
var runner *tasks.Runner

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// FlockHub uses it to start the lifegroup roster reconciler.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var jobs []tasks.Job
	if appCfg.RosterReconcileInterval > 0 {
		jobs = append(jobs, tasks.RosterReconcileJob(deps.MongoDatabase, logger, appCfg.RosterReconcileInterval))
	}

	runner = tasks.NewRunner(logger, jobs...)
	runner.Start()
	return nil
}

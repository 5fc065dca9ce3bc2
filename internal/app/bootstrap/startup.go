// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/stratasched/internal/app/resources"
	"github.com/dalemusser/stratasched/internal/app/system/calendar"
	"github.com/dalemusser/stratasched/internal/app/system/metrics"
	"github.com/dalemusser/stratasched/internal/app/system/tasks"
	"github.com/dalemusser/stratasched/internal/app/system/timeouts"
	"github.com/dalemusser/stratasched/internal/app/system/timezones"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// It loads shared templates and static lookup data, applies handler
// timeouts, registers metrics, creates the calendar board registry and
// starts the background tasks that sweep idle boards and prune old
// schedule history.
//
// Returning a non-nil error will abort startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if err := timezones.Load(); err != nil {
		logger.Error("failed to load time zones", zap.Error(err))
		return err
	}

	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
		Batch:  appCfg.TimeoutBatch,
	})

	metrics.Register()

	boards = calendar.NewRegistry(deps.Frappe, calendar.Options{
		PollInterval: appCfg.PollInterval,
		FetchTimeout: timeouts.Medium(),
	}, logger.Named("calendar"))

	startTaskRunner(appCfg, deps, logger)

	return nil
}

// boards is the live calendar board registry, shared by the calendar
// feature, the sweep task and Shutdown.
var boards *calendar.Registry

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	taskRunner.Register(tasks.BoardSweepJob(boards, appCfg.BoardIdleTimeout, appCfg.BoardSweepInterval))

	if deps.ScheduleLog != nil && appCfg.AuditRetention > 0 {
		taskRunner.Register(tasks.ScheduleRetentionJob(deps.ScheduleLog, appCfg.AuditRetention, logger))
	}

	taskRunner.Start()
}

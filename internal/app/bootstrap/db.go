// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/stratasched/internal/app/store/schedulelog"
	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/app/system/indexes"
	"github.com/dalemusser/stratasched/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB, the optional Redis cache and builds the ERP
// client.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema and
// Startup. MongoDB is required; Redis is best effort and the app runs
// uncached without it. The ERP is not contacted here so the calendar can
// start while the ERP is down; /health reports it.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	// Configure MongoDB connection pool
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return DBDeps{}, err
	}

	db := client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
		zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
	)

	erp := frappe.New(frappe.Config{
		BaseURL:      appCfg.FrappeURL,
		MethodPrefix: appCfg.FrappeMethodPrefix,
		APIKey:       appCfg.FrappeAPIKey,
		APISecret:    appCfg.FrappeAPISecret,
		BearerToken:  appCfg.FrappeBearerToken,
		Timeout:      appCfg.FrappeTimeout,
		Rate:         appCfg.RPCRate,
		Burst:        appCfg.RPCBurst,
	}, logger.Named("frappe"))
	logger.Info("configured ERP client",
		zap.String("url", erp.BaseURL()),
		zap.Float64("rate", appCfg.RPCRate),
		zap.Int("burst", appCfg.RPCBurst),
	)

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Frappe:        erp,
	}
	if appCfg.StoreHistory() {
		deps.ScheduleLog = schedulelog.New(db)
	}

	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unreachable, utilization cache disabled",
				zap.String("addr", appCfg.RedisAddr), zap.Error(err))
			_ = rdb.Close()
		} else {
			deps.Redis = rdb
			erp.UseRedisCache(rdb, appCfg.UtilizationCacheTTL)
			logger.Info("connected to Redis",
				zap.String("addr", appCfg.RedisAddr),
				zap.Duration("utilization_cache_ttl", appCfg.UtilizationCacheTTL),
			)
		}
	}

	return deps, nil
}

// EnsureSchema creates the indexes the schedule history needs.
//
// This runs after ConnectDB succeeds but before Startup and before the HTTP
// handler is built. The context has a timeout based on
// coreCfg.IndexBootTimeout.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.ScheduleLog == nil {
		logger.Info("schedule history not stored, skipping indexes",
			zap.String("audit_schedule", appCfg.AuditSchedule))
		return nil
	}

	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, schedulelog.IndexSet()); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	logger.Info("database schema ensured successfully")
	return nil
}

// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/app/system/inputval"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATASCHED"

const (
	devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"
	devCSRFKey    = "dev-only-csrf-key-please-change-0123456789"
)

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, frappe_url, etc.
//   - Environment variables: STRATASCHED_MONGO_URI, STRATASCHED_FRAPPE_URL, etc.
//   - Command-line flags: --mongo_uri, --frappe_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stratasched", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "stratasched-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie max age (e.g., 24h, 720h, 30m)"},

	{Name: "csrf_key", Default: devCSRFKey, Desc: "CSRF token signing key (32+ chars in production)"},

	// ERP connection
	{Name: "frappe_url", Default: "http://localhost:8000", Desc: "Frappe/ERPNext base URL"},
	{Name: "frappe_api_key", Default: "", Desc: "Frappe API key (token auth)"},
	{Name: "frappe_api_secret", Default: "", Desc: "Frappe API secret (token auth)"},
	{Name: "frappe_bearer_token", Default: "", Desc: "OAuth bearer token, used when no API key is set"},
	{Name: "frappe_method_prefix", Default: frappe.DefaultMethodPrefix, Desc: "Dotted module path of the scheduler API"},
	{Name: "frappe_timeout", Default: "15s", Desc: "Per-call timeout for ERP requests"},
	{Name: "rpc_rate", Default: "10", Desc: "Max ERP requests per second"},
	{Name: "rpc_burst", Default: 20, Desc: "ERP request burst allowance"},

	// Calendar boards
	{Name: "poll_interval", Default: "2s", Desc: "Calendar auto-refresh period"},
	{Name: "board_idle_timeout", Default: "30m", Desc: "Destroy boards not polled for this long"},
	{Name: "board_sweep_interval", Default: "1m", Desc: "How often idle boards are swept"},

	// Redis utilization cache
	{Name: "redis_addr", Default: "", Desc: "Redis address for the utilization cache (blank disables)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "utilization_cache_ttl", Default: "60s", Desc: "How long utilization reports are cached"},

	// Schedule change audit
	{Name: "audit_schedule", Default: "all", Desc: "Schedule change logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "Schedule history retention (default: 90 days)"},

	{Name: "test_tools_enabled", Default: false, Desc: "Show the test data tools on work order pages"},
	{Name: "desk_links", Default: false, Desc: "Open records in the ERP desk instead of local pages"},

	// Handler timeouts
	{Name: "timeout_short", Default: "", Desc: "Timeout for page loads (default: 5s)"},
	{Name: "timeout_medium", Default: "", Desc: "Timeout for scheduling calls (default: 15s)"},
	{Name: "timeout_long", Default: "", Desc: "Timeout for reports (default: 30s)"},
	{Name: "timeout_batch", Default: "", Desc: "Timeout for test data generation (default: 2m)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STRATASCHED_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 24*time.Hour),

		CSRFKey: appValues.String("csrf_key"),

		// ERP
		FrappeURL:          appValues.String("frappe_url"),
		FrappeAPIKey:       appValues.String("frappe_api_key"),
		FrappeAPISecret:    appValues.String("frappe_api_secret"),
		FrappeBearerToken:  appValues.String("frappe_bearer_token"),
		FrappeMethodPrefix: appValues.String("frappe_method_prefix"),
		FrappeTimeout:      appValues.Duration("frappe_timeout", 15*time.Second),
		RPCRate:            parseRate(appValues.String("rpc_rate"), 10),
		RPCBurst:           appValues.Int("rpc_burst"),

		// Boards
		PollInterval:       appValues.Duration("poll_interval", 2*time.Second),
		BoardIdleTimeout:   appValues.Duration("board_idle_timeout", 30*time.Minute),
		BoardSweepInterval: appValues.Duration("board_sweep_interval", time.Minute),

		// Redis
		RedisAddr:           appValues.String("redis_addr"),
		RedisPassword:       appValues.String("redis_password"),
		RedisDB:             appValues.Int("redis_db"),
		UtilizationCacheTTL: appValues.Duration("utilization_cache_ttl", time.Minute),

		// Audit
		AuditSchedule:  appValues.String("audit_schedule"),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),

		TestToolsEnabled: appValues.Bool("test_tools_enabled"),
		DeskLinks:        appValues.Bool("desk_links"),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
		TimeoutBatch:  appValues.Duration("timeout_batch", 0),
	}

	return coreCfg, appCfg, nil
}

func parseRate(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := validateApp(appCfg, coreCfg.Env == "prod"); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	return nil
}

// validateApp checks the settings WAFFLE knows nothing about.
func validateApp(c AppConfig, prod bool) error {
	var errs []error

	if !inputval.IsValidHTTPURL(c.FrappeURL) {
		errs = append(errs, fmt.Errorf("frappe_url must be an absolute http(s) URL, got %q", c.FrappeURL))
	}
	if (c.FrappeAPIKey == "") != (c.FrappeAPISecret == "") {
		errs = append(errs, errors.New("frappe_api_key and frappe_api_secret must be set together"))
	}
	if c.RPCRate <= 0 {
		errs = append(errs, fmt.Errorf("rpc_rate must be positive, got %g", c.RPCRate))
	}
	if c.RPCBurst < 1 {
		errs = append(errs, fmt.Errorf("rpc_burst must be at least 1, got %d", c.RPCBurst))
	}
	if c.PollInterval < 250*time.Millisecond {
		errs = append(errs, fmt.Errorf("poll_interval must be at least 250ms, got %s", c.PollInterval))
	}
	switch c.AuditSchedule {
	case "all", "db", "log", "off":
	default:
		errs = append(errs, fmt.Errorf("audit_schedule must be all, db, log or off, got %q", c.AuditSchedule))
	}
	if prod {
		if c.SessionKey == devSessionKey || len(c.SessionKey) < 32 {
			errs = append(errs, errors.New("session_key must be a strong secret of 32+ characters in production"))
		}
		if c.CSRFKey == devCSRFKey || len(c.CSRFKey) < 32 {
			errs = append(errs, errors.New("csrf_key must be a strong secret of 32+ characters in production"))
		}
	}
	return errors.Join(errs...)
}

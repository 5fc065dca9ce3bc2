// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework side (ports, TLS, logging, CORS, security headers); everything
// the scheduling calendar needs lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Session cookie (board id and flash messages)
	SessionKey    string        // Secret the cookie keys are derived from (must be strong in production)
	SessionName   string        // Cookie name (default: stratasched-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Maximum cookie lifetime (default: 24h)

	// CSRF protection configuration
	CSRFKey string // Secret key for CSRF token signing (32 bytes, must be strong in production)

	// ERP connection
	FrappeURL          string        // Base URL of the Frappe/ERPNext site
	FrappeAPIKey       string        // API key for "token key:secret" auth
	FrappeAPISecret    string        // API secret for "token key:secret" auth
	FrappeBearerToken  string        // OAuth bearer token, used when no key/secret is set
	FrappeMethodPrefix string        // Dotted module path of the scheduler API
	FrappeTimeout      time.Duration // Per-call HTTP timeout (default: 15s)

	// Outbound call budget
	RPCRate  float64 // Requests per second to the ERP (default: 10)
	RPCBurst int     // Burst allowance (default: 20)

	// Calendar boards
	PollInterval       time.Duration // Auto-refresh period (default: 2s)
	BoardIdleTimeout   time.Duration // Boards not polled for this long are destroyed (default: 30m)
	BoardSweepInterval time.Duration // How often idle boards are swept (default: 1m)

	// Redis cache for utilization reports ("" disables)
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	UtilizationCacheTTL time.Duration // (default: 60s)

	// Schedule change audit
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	AuditSchedule  string
	AuditRetention time.Duration // Records older than this are pruned (default: 90 days)

	// TestToolsEnabled shows the demo data buttons on the work order page.
	TestToolsEnabled bool

	// DeskLinks sends event clicks to the ERP desk instead of the local
	// record pages.
	DeskLinks bool

	// Handler timeouts (0 keeps the defaults)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
	TimeoutBatch  time.Duration
}

// StoreHistory reports whether schedule changes are written to MongoDB.
func (c AppConfig) StoreHistory() bool {
	return c.AuditSchedule == "all" || c.AuditSchedule == "db"
}

// DeskBaseURL is the ERP base URL when desk links are on, otherwise "".
func (c AppConfig) DeskBaseURL() string {
	if c.DeskLinks {
		return c.FrappeURL
	}
	return ""
}

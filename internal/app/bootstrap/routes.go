// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"time"

	calendarfeature "github.com/dalemusser/stratasched/internal/app/features/calendar"
	errorsfeature "github.com/dalemusser/stratasched/internal/app/features/errors"
	healthfeature "github.com/dalemusser/stratasched/internal/app/features/health"
	historyfeature "github.com/dalemusser/stratasched/internal/app/features/history"
	jobcardsfeature "github.com/dalemusser/stratasched/internal/app/features/jobcards"
	utilizationfeature "github.com/dalemusser/stratasched/internal/app/features/utilization"
	workordersfeature "github.com/dalemusser/stratasched/internal/app/features/workorders"
	appresources "github.com/dalemusser/stratasched/internal/app/resources"
	"github.com/dalemusser/stratasched/internal/app/system/auditlog"
	"github.com/dalemusser/stratasched/internal/app/system/calendar"
	"github.com/dalemusser/stratasched/internal/app/system/certcheck"
	"github.com/dalemusser/stratasched/internal/app/system/metrics"
	"github.com/dalemusser/stratasched/internal/app/system/session"
	"github.com/dalemusser/stratasched/internal/app/system/timeouts"
	"github.com/dalemusser/stratasched/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// certWarnDays is how close to expiry the ERP certificate may get before
// /health reports degraded.
const certWarnDays = 14

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It builds the session manager and the
// template engine, wires every feature to the ERP client and the board
// registry, and mounts them behind the global middleware.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := session.NewManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	viewdata.Init(sessionMgr, appCfg.DeskBaseURL())

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	// Schedule change audit: MongoDB and/or zap per audit_schedule.
	auditLogger := auditlog.New(deps.ScheduleLog, logger, auditlog.Config{Schedule: appCfg.AuditSchedule})

	linker := calendar.Linker{DeskBaseURL: appCfg.DeskBaseURL()}

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	// Request IDs tie schedule history records to log lines.
	r.Use(chimw.RequestID)

	// Request timeout middleware: bulk test data is the slowest request.
	r.Use(chimw.Timeout(timeouts.Batch() + 10*time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// CSRF protection for forms and the calendar's JSON POSTs. The script
	// sends the token from the page's meta tag as X-CSRF-Token.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("stratasched_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			errorsHandler.CSRFFailure(w, req)
		})),
	}
	// In dev mode, trust localhost origins for CSRF validation.
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...))

	// ─────────────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────────────

	// Health check endpoints for load balancers and orchestrators.
	// Only MongoDB gates readiness; the ERP, its certificate and Redis mark
	// /health degraded.
	checks := []healthfeature.Check{
		healthfeature.MongoCheck(deps.MongoClient),
		{Name: "frappe", Ping: deps.Frappe.Ping},
		{Name: "frappe_tls", Ping: certcheck.ExpiryCheck(appCfg.FrappeURL, certWarnDays)},
	}
	if deps.Redis != nil {
		checks = append(checks, healthfeature.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() },
		})
	}
	healthHandler := healthfeature.NewHandler(logger, checks...)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Prometheus metrics
	r.Handle("/metrics", metrics.Handler())

	// /assets/* serves embedded assets (bundled into the binary)
	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/calendar", http.StatusFound)
	})

	// Workstation utilization report and export
	utilizationHandler := utilizationfeature.NewHandler(deps.Frappe, errLog, logger)
	utilizationfeature.MountRoutes(r, utilizationHandler)

	// Scheduling calendar page and its JSON API
	calendarHandler := calendarfeature.NewHandler(boards, sessionMgr, auditLogger, linker, errLog, logger)
	r.Mount("/calendar", calendarfeature.Routes(calendarHandler))

	// Record pages with scheduling actions
	workordersHandler := workordersfeature.NewHandler(deps.Frappe, sessionMgr, auditLogger, linker, appCfg.TestToolsEnabled, errLog, logger)
	r.Mount("/workorders", workordersfeature.Routes(workordersHandler))

	jobcardsHandler := jobcardsfeature.NewHandler(deps.Frappe, sessionMgr, auditLogger, linker, errLog, logger)
	r.Mount("/jobcards", jobcardsfeature.Routes(jobcardsHandler))

	// Schedule change history
	historyHandler := historyfeature.NewHandler(deps.ScheduleLog, linker, errLog, logger)
	r.Mount("/history", historyfeature.Routes(historyHandler))

	// Error pages
	r.Get("/forbidden", errorsHandler.Forbidden)

	// 404 / 405 catch-alls
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	return r, nil
}

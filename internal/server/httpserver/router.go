// Package httpserver provides the HTTP/HTTPS host for retire-go.
package httpserver

import (
	"net/http"

	"github.com/yndnr/retire-go/internal/server/httpserver/handler"
	"github.com/yndnr/retire-go/internal/telemetry/logger"
	"github.com/yndnr/retire-go/internal/telemetry/metric"
)

// Controller is the retirement controller surface the router needs.
type Controller interface {
	handler.Retirer
	Middleware() func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Controller counts business requests and serves the admin API.
	Controller Controller

	// Logger for request logging.
	Logger logger.Logger

	// Metrics backs /metrics and the request metrics. Nil disables both.
	Metrics *metric.Registry

	// ReportFault receives recovered handler panics. Typically Server.ReportFault.
	ReportFault func(error)

	// AdminAllowList is the IP/CIDR allowlist for admin API (empty = no restriction).
	AdminAllowList []string

	// TrustedProxies lists the IPs/CIDRs of reverse proxies whose
	// X-Forwarded-For and X-Real-IP headers identify the client.
	TrustedProxies []string

	// AdminToken, when set, is required as a bearer token on admin routes.
	AdminToken string

	// AllowManualRetire enables POST /admin/v1/retire.
	AllowManualRetire bool

	// GlobalRateLimit is the rate limit per IP for business routes
	// (requests/second, 0 = unlimited).
	GlobalRateLimit int

	// EnableAudit enables request logging and request metrics.
	EnableAudit bool

	// Version is reported by the status endpoint.
	Version string

	// App serves the business routes. Nil uses the built-in /hello handler.
	App http.Handler
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	h := handler.New(handler.Config{
		Controller:        cfg.Controller,
		Logger:            log,
		AllowManualRetire: cfg.AllowManualRetire,
		Version:           cfg.Version,
	})

	base := []Middleware{RequestID(), Recover(log, cfg.ReportFault)}
	if cfg.EnableAudit {
		base = append(base, Audit(log, cfg.Metrics))
	}

	mux := http.NewServeMux()

	// Probes are never counted towards retirement.
	probes := Chain(h, base...)
	mux.Handle("GET /health", probes)
	mux.Handle("GET /ready", probes)

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), RequestID(), Recover(log, cfg.ReportFault)))
	}

	adminMiddlewares := append([]Middleware{}, base...)
	proxies, err := ParseNetworks(cfg.TrustedProxies)
	if err != nil {
		log.Warn("ignoring invalid trusted proxies", "error", err)
		proxies = nil
	}

	if len(cfg.AdminAllowList) > 0 {
		adminMiddlewares = append(adminMiddlewares, NetworkACL(cfg.AdminAllowList, proxies, log))
	}
	adminMiddlewares = append(adminMiddlewares, AdminToken(cfg.AdminToken))
	admin := Chain(h, adminMiddlewares...)
	mux.Handle("GET /admin/v1/retire", admin)
	mux.Handle("POST /admin/v1/retire", admin)

	// Business routes: everything else, counted by the controller.
	app := cfg.App
	if app == nil {
		app = h
	}
	business := append([]Middleware{}, base...)
	if cfg.GlobalRateLimit > 0 {
		business = append(business, RateLimit(cfg.GlobalRateLimit, proxies))
	}
	business = append(business, Middleware(cfg.Controller.Middleware()))
	mux.Handle("/", Chain(app, business...))

	return mux
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		GlobalRateLimit: 1000, // 1000 requests/second per IP
		EnableAudit:     true,
	}
}

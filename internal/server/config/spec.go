package config

import (
	"time"

	"github.com/yndnr/retire-go/internal/core/retire"
)

// ServerConfig is the root configuration for retire-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Retire RetireSection `koanf:"retire"`
	Admin  AdminSection  `koanf:"admin"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	Local LocalConfig `koanf:"local"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// DrainTimeout bounds how long in-flight requests may run after the
	// server stops accepting connections.
	DrainTimeout time.Duration `koanf:"drain_timeout"`

	// RateLimit is the per-client request rate for business routes
	// (requests/second, 0 = unlimited).
	RateLimit int `koanf:"rate_limit"`

	// Audit enables request logging and request metrics.
	Audit bool `koanf:"audit"`

	// TrustedProxies lists reverse proxies (IPs/CIDRs) whose X-Forwarded-For
	// and X-Real-IP headers identify the client for the admin allowlist and
	// rate limiting. Headers from any other peer are ignored.
	TrustedProxies []string `koanf:"trusted_proxies"`
}

// LocalConfig configures the local management socket. An empty path
// disables it.
type LocalConfig struct {
	Path string `koanf:"path"`
}

// RetireSection configures the retirement controller. Durations are
// strings such as "5s"; bare numbers are milliseconds.
type RetireSection struct {
	MinDeferral      time.Duration `koanf:"min_deferral"`
	MaxDeferral      time.Duration `koanf:"max_deferral"`
	MaxRequests      int64         `koanf:"max_requests"`
	TrapFatalErrors  bool          `koanf:"trap_fatal_errors"`
	ExitCode         int           `koanf:"exit_code"`
	RearmAfterCancel bool          `koanf:"rearm_after_cancel"`

	// DefaultWeight applies to requests matching no rule in Weights.
	DefaultWeight int64 `koanf:"default_weight"`

	// Weights assigns request weights by path prefix. Empty means every
	// request weighs DefaultWeight.
	Weights []retire.WeightRule `koanf:"weights"`
}

// AdminSection configures the admin API.
type AdminSection struct {
	// AllowManualRetire enables on-demand retirement over HTTP and the
	// local socket.
	AllowManualRetire bool `koanf:"allow_manual_retire"`

	// AllowList restricts the admin API to these IPs/CIDRs (empty = no restriction).
	AllowList []string `koanf:"allow_list"`

	// Token, when set, must be presented as "Authorization: Bearer <token>".
	Token string `koanf:"token"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

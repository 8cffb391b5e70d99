package config

import (
	"time"

	"github.com/yndnr/retire-go/internal/core/retire"
)

// Default configuration values.
const (
	DefaultHTTPAddr     = "127.0.0.1:8080"
	DefaultDrainTimeout = 30 * time.Second
	DefaultRateLimit    = 1000
	DefaultLocalSocket  = "/var/run/retire-server/retire-server.sock"

	DefaultWeight = 1

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	rc := retire.DefaultConfig()
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:         DefaultHTTPAddr,
				DrainTimeout: DefaultDrainTimeout,
				RateLimit:    DefaultRateLimit,
				Audit:        true,
			},
			Local: LocalConfig{
				Path: DefaultLocalSocket,
			},
		},
		Retire: RetireSection{
			MinDeferral:     rc.MinDeferral,
			MaxDeferral:     rc.MaxDeferral,
			MaxRequests:     rc.MaxRequests,
			TrapFatalErrors: rc.TrapFatalErrors,
			ExitCode:        rc.ExitCode,
			DefaultWeight:   DefaultWeight,
		},
		Admin: AdminSection{
			AllowManualRetire: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

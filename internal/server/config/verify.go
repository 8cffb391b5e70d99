package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/yndnr/retire-go/internal/core/retire"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if _, err := cfg.RetireConfig(); err != nil {
		return err
	}
	if err := verifyAdmin(&cfg.Admin); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

// RetireConfig builds the controller configuration, including the path
// weight function when rules are configured.
func (cfg *ServerConfig) RetireConfig() (retire.Config, error) {
	rs := cfg.Retire
	rc := retire.Config{
		MinDeferral:      rs.MinDeferral,
		MaxDeferral:      rs.MaxDeferral,
		MaxRequests:      rs.MaxRequests,
		TrapFatalErrors:  rs.TrapFatalErrors,
		ExitCode:         rs.ExitCode,
		RearmAfterCancel: rs.RearmAfterCancel,
	}

	if len(rs.Weights) > 0 || rs.DefaultWeight != 1 {
		weight, err := retire.PathWeights(rs.Weights, rs.DefaultWeight)
		if err != nil {
			return retire.Config{}, err
		}
		rc.Weight = weight
	}

	if err := rc.Validate(); err != nil {
		return retire.Config{}, err
	}
	return rc, nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr: %w", err)
	}

	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	for _, f := range []string{cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("tls file: %w", err)
		}
	}

	if cfg.HTTP.DrainTimeout < 0 {
		return errors.New("server.http.drain_timeout must not be negative")
	}
	if cfg.HTTP.RateLimit < 0 {
		return errors.New("server.http.rate_limit must not be negative")
	}
	return verifyNetworks("server.http.trusted_proxies", cfg.HTTP.TrustedProxies)
}

func verifyAdmin(cfg *AdminSection) error {
	return verifyNetworks("admin.allow_list", cfg.AllowList)
}

// verifyNetworks checks that every entry is an IP or a CIDR.
func verifyNetworks(field string, entries []string) error {
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if _, _, err := net.ParseCIDR(entry); err != nil {
				return fmt.Errorf("%s: %w", field, err)
			}
			continue
		}
		if net.ParseIP(entry) == nil {
			return fmt.Errorf("%s: invalid IP %q", field, entry)
		}
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
	return nil
}

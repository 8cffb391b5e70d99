package config

import (
	"slices"
	"strings"
)

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Server.HTTP.TrustedProxies = slices.Clone(cfg.Server.HTTP.TrustedProxies)
	sanitized.Admin.AllowList = slices.Clone(cfg.Admin.AllowList)
	sanitized.Retire.Weights = slices.Clone(cfg.Retire.Weights)

	if sanitized.Admin.Token != "" {
		sanitized.Admin.Token = maskSecret(sanitized.Admin.Token)
	}

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

// Package config provides server configuration for retire-server.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation, including the retirement controller settings
//   - sanitize.go: Log sanitization (hide sensitive values)
//
// Configuration is loaded via internal/infra/confloader from a YAML file and
// RETIRE_ environment variables on top of Default().
package config

package config

import (
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/retire-go/internal/core/domain"
	"github.com/yndnr/retire-go/internal/core/retire"
	"github.com/yndnr/retire-go/internal/infra/confloader"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.Server.HTTP.Addr, DefaultHTTPAddr)
	}
	if cfg.Server.HTTP.DrainTimeout != DefaultDrainTimeout {
		t.Errorf("DrainTimeout = %v, want %v", cfg.Server.HTTP.DrainTimeout, DefaultDrainTimeout)
	}
	if cfg.Server.Local.Path != DefaultLocalSocket {
		t.Errorf("Local.Path = %q, want %q", cfg.Server.Local.Path, DefaultLocalSocket)
	}

	if cfg.Retire.MinDeferral != retire.DefaultMinDeferral || cfg.Retire.MaxDeferral != retire.DefaultMaxDeferral {
		t.Errorf("deferral = [%v, %v]", cfg.Retire.MinDeferral, cfg.Retire.MaxDeferral)
	}
	if cfg.Retire.MaxRequests != 0 {
		t.Errorf("MaxRequests = %d, want 0", cfg.Retire.MaxRequests)
	}
	if !cfg.Retire.TrapFatalErrors {
		t.Error("TrapFatalErrors should default to true")
	}
	if cfg.Retire.ExitCode != retire.DefaultExitCode {
		t.Errorf("ExitCode = %d", cfg.Retire.ExitCode)
	}

	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) = %v", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr bool
		domain  error
	}{
		{"defaults", func(*ServerConfig) {}, false, nil},
		{"missing addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "" }, true, nil},
		{"bad addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "localhost" }, true, nil},
		{"cert without key", func(c *ServerConfig) { c.Server.HTTP.TLSCertFile = "/tmp/cert.pem" }, true, nil},
		{"missing tls files", func(c *ServerConfig) {
			c.Server.HTTP.TLSCertFile = "/nonexistent/cert.pem"
			c.Server.HTTP.TLSKeyFile = "/nonexistent/key.pem"
		}, true, nil},
		{"negative drain", func(c *ServerConfig) { c.Server.HTTP.DrainTimeout = -time.Second }, true, nil},
		{"negative rate limit", func(c *ServerConfig) { c.Server.HTTP.RateLimit = -1 }, true, nil},
		{"min above max", func(c *ServerConfig) {
			c.Retire.MinDeferral = 20 * time.Second
		}, true, domain.ErrDeferralRange},
		{"negative deferral", func(c *ServerConfig) { c.Retire.MinDeferral = -time.Second }, true, domain.ErrNegativeDeferral},
		{"negative max requests", func(c *ServerConfig) { c.Retire.MaxRequests = -5 }, true, domain.ErrNegativeThreshold},
		{"bad weight prefix", func(c *ServerConfig) {
			c.Retire.Weights = []retire.WeightRule{{Prefix: "api", Weight: 2}}
		}, true, domain.ErrInvalidWeight},
		{"negative default weight", func(c *ServerConfig) { c.Retire.DefaultWeight = -1 }, true, domain.ErrInvalidWeight},
		{"bad allow list", func(c *ServerConfig) { c.Admin.AllowList = []string{"10.0.0.0/33"} }, true, nil},
		{"bad allow list ip", func(c *ServerConfig) { c.Admin.AllowList = []string{"host"} }, true, nil},
		{"good allow list", func(c *ServerConfig) { c.Admin.AllowList = []string{"10.0.0.0/8", "::1"} }, false, nil},
		{"bad trusted proxy", func(c *ServerConfig) { c.Server.HTTP.TrustedProxies = []string{"proxy.local"} }, true, nil},
		{"good trusted proxies", func(c *ServerConfig) { c.Server.HTTP.TrustedProxies = []string{"192.0.2.10", "10.0.0.0/8"} }, false, nil},
		{"bad log level", func(c *ServerConfig) { c.Log.Level = "verbose" }, true, nil},
		{"bad log format", func(c *ServerConfig) { c.Log.Format = "xml" }, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Verify(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.domain != nil {
				if !errors.Is(err, tt.domain) {
					t.Errorf("Verify() = %v, want %v", err, tt.domain)
				}
				if !errors.Is(err, domain.ErrConfiguration) {
					t.Errorf("Verify() = %v, should match ErrConfiguration", err)
				}
			}
		})
	}
}

func TestRetireConfig_Weights(t *testing.T) {
	cfg := Default()
	cfg.Retire.MaxRequests = 100
	cfg.Retire.DefaultWeight = 2
	cfg.Retire.Weights = []retire.WeightRule{
		{Prefix: "/upload", Weight: 10},
		{Prefix: "/static", Weight: 0},
	}

	rc, err := cfg.RetireConfig()
	if err != nil {
		t.Fatalf("RetireConfig() error = %v", err)
	}
	if rc.MaxRequests != 100 {
		t.Errorf("MaxRequests = %d", rc.MaxRequests)
	}
	if rc.Weight == nil {
		t.Fatal("Weight should be set when rules are configured")
	}

	tests := []struct {
		path string
		want int64
	}{
		{"/upload/big", 10},
		{"/static/app.js", 0},
		{"/api", 2},
	}
	for _, tt := range tests {
		if got := rc.Weight(httptest.NewRequest("GET", tt.path, nil), 0); got != tt.want {
			t.Errorf("Weight(%s) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestRetireConfig_FlatWeight(t *testing.T) {
	rc, err := Default().RetireConfig()
	if err != nil {
		t.Fatalf("RetireConfig() error = %v", err)
	}
	if rc.Weight != nil {
		t.Error("Weight should be nil without rules")
	}
}

func TestLoad_BareDeferralsAreMilliseconds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retire.yaml")
	content := `
retire:
  min_deferral: 5000
  max_deferral: 7500
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Default()
	if err := confloader.NewLoader(confloader.WithConfigFile(path)).Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Retire.MinDeferral != 5*time.Second || cfg.Retire.MaxDeferral != 7500*time.Millisecond {
		t.Errorf("deferral = [%v, %v], want [5s, 7.5s]", cfg.Retire.MinDeferral, cfg.Retire.MaxDeferral)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retire.yaml")
	content := `
server:
  http:
    addr: "0.0.0.0:9000"
    drain_timeout: "10s"
retire:
  min_deferral: "1s"
  max_deferral: "3s"
  max_requests: 5000
  rearm_after_cancel: true
  weights:
    - prefix: /upload
      weight: 5
admin:
  allow_list: ["10.0.0.0/8"]
  token: "s3cret-token"
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Default()
	if err := confloader.NewLoader(confloader.WithConfigFile(path)).Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "0.0.0.0:9000" || cfg.Server.HTTP.DrainTimeout != 10*time.Second {
		t.Errorf("HTTP = %+v", cfg.Server.HTTP)
	}
	if cfg.Retire.MinDeferral != time.Second || cfg.Retire.MaxDeferral != 3*time.Second {
		t.Errorf("deferral = [%v, %v]", cfg.Retire.MinDeferral, cfg.Retire.MaxDeferral)
	}
	if cfg.Retire.MaxRequests != 5000 || !cfg.Retire.RearmAfterCancel {
		t.Errorf("Retire = %+v", cfg.Retire)
	}
	if len(cfg.Retire.Weights) != 1 || cfg.Retire.Weights[0].Prefix != "/upload" || cfg.Retire.Weights[0].Weight != 5 {
		t.Errorf("Weights = %+v", cfg.Retire.Weights)
	}
	// Untouched defaults survive.
	if !cfg.Retire.TrapFatalErrors || cfg.Retire.ExitCode != retire.DefaultExitCode {
		t.Errorf("defaults lost: %+v", cfg.Retire)
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("Verify() = %v", err)
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Admin.Token = "super-secret-token-1234567890"
	cfg.Admin.AllowList = []string{"10.0.0.0/8"}

	sanitized := Sanitize(cfg)

	if cfg.Admin.Token != "super-secret-token-1234567890" {
		t.Error("Original config should not be modified")
	}
	if sanitized.Admin.Token == cfg.Admin.Token {
		t.Error("Sanitized config should mask the admin token")
	}
	if len(sanitized.Admin.Token) != len(cfg.Admin.Token) {
		t.Errorf("Masked token length = %d, want %d", len(sanitized.Admin.Token), len(cfg.Admin.Token))
	}

	sanitized.Admin.AllowList[0] = "changed"
	if cfg.Admin.AllowList[0] != "10.0.0.0/8" {
		t.Error("Sanitize should not share slices with the original")
	}
}

func TestSanitize_EmptyToken(t *testing.T) {
	sanitized := Sanitize(Default())
	if sanitized.Admin.Token != "" {
		t.Errorf("empty token should stay empty, got %q", sanitized.Admin.Token)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "****"},
		{"abcd", "****"},
		{"abcdef", "ab**ef"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.in); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

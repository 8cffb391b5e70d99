package retire

import (
	"fmt"
	"net/http"
	"time"

	"github.com/yndnr/retire-go/internal/core/domain"
)

// Default configuration values.
const (
	DefaultMinDeferral = 5 * time.Second
	DefaultMaxDeferral = 10 * time.Second
	DefaultExitCode    = 1
)

// Reason identifies what started a retirement.
type Reason string

const (
	ReasonManual           Reason = "manual"
	ReasonRequestThreshold Reason = "request-threshold"
	ReasonFatalError       Reason = "fatal-error"
)

// WeightFunc scores a request toward MaxRequests. It receives the count
// before the request is added. Negative results count as zero.
type WeightFunc func(r *http.Request, count int64) int64

// TerminateFunc replaces the built-in retirement sequence. It is called
// exactly once, with the reason of the first trigger.
type TerminateFunc func(reason Reason)

// Config configures a Controller. It is copied by New and never changes
// afterwards.
type Config struct {
	// MinDeferral and MaxDeferral bound the randomized wait between the
	// start of a retirement and the exit.
	MinDeferral time.Duration
	MaxDeferral time.Duration

	// MaxRequests is the weighted request count that starts a retirement.
	// Zero disables automatic triggering and request counting.
	MaxRequests int64

	// TrapFatalErrors makes faults reported to the fault hub or to the
	// host start a retirement.
	TrapFatalErrors bool

	// Weight, when set, replaces the flat weight of 1 per request.
	Weight WeightFunc

	// Terminate, when set, replaces the built-in sequence entirely.
	Terminate TerminateFunc

	// ExitCode is passed to the exit function.
	ExitCode int

	// RearmAfterCancel lets a controller start a new retirement after an
	// observer cancelled one. When false, a cancelled controller stays
	// disarmed for the rest of the process lifetime.
	RearmAfterCancel bool
}

// DefaultConfig returns the documented defaults: a 5s to 10s deferral,
// automatic triggering disabled, fault trapping enabled, exit code 1.
func DefaultConfig() Config {
	return Config{
		MinDeferral:     DefaultMinDeferral,
		MaxDeferral:     DefaultMaxDeferral,
		TrapFatalErrors: true,
		ExitCode:        DefaultExitCode,
	}
}

// Validate reports whether cfg can be used to build a Controller.
// Returned errors match domain.ErrConfiguration.
func (cfg Config) Validate() error {
	if cfg.MinDeferral < 0 {
		return domain.ErrNegativeDeferral.WithDetails(fmt.Sprintf("min_deferral=%s", cfg.MinDeferral))
	}
	if cfg.MaxDeferral < 0 {
		return domain.ErrNegativeDeferral.WithDetails(fmt.Sprintf("max_deferral=%s", cfg.MaxDeferral))
	}
	if cfg.MinDeferral > cfg.MaxDeferral {
		return domain.ErrDeferralRange.WithDetails(fmt.Sprintf("min_deferral=%s max_deferral=%s", cfg.MinDeferral, cfg.MaxDeferral))
	}
	if cfg.MaxRequests < 0 {
		return domain.ErrNegativeThreshold.WithDetails(fmt.Sprintf("max_requests=%d", cfg.MaxRequests))
	}
	return nil
}

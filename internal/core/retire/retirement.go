package retire

import (
	"sync/atomic"
	"time"
)

// Retirement describes one started retirement sequence. It is handed to
// observers registered with Controller.OnRetire.
type Retirement struct {
	// ID is a ULID identifying the sequence in logs.
	ID string
	// Reason is what started the sequence.
	Reason Reason
	// Deferral is the wait before exit.
	Deferral time.Duration
	// ExitAt is when the exit is scheduled.
	ExitAt time.Time

	ctrl *Controller
	// open is true only while observers are being notified.
	open atomic.Bool
}

// Cancel aborts the retirement: the scheduled exit is stopped, the request
// count is reset, and the host keeps accepting connections. It only takes
// effect when called while observers are being notified, and reports
// whether it did.
func (r *Retirement) Cancel() bool {
	if r.ctrl == nil || !r.open.Load() {
		return false
	}
	return r.ctrl.cancel(r)
}

package retire

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/tebeka/atexit"

	"github.com/yndnr/retire-go/internal/infra/fault"
	"github.com/yndnr/retire-go/internal/telemetry/logger"
	"github.com/yndnr/retire-go/internal/telemetry/metric"
)

// Host is the serving process being retired.
//
// StopAccepting must stop accepting new connections and return without
// waiting for in-flight requests to drain.
type Host interface {
	StopAccepting() error
}

// FaultSource is implemented by hosts that report their own faults
// (handler panics, listener failures). OnFault returns a function that
// removes fn.
type FaultSource interface {
	OnFault(fn func(error)) (unsubscribe func())
}

// Worker is the handle of a process running under a process-group
// supervisor. Disconnect tells the supervisor this worker is leaving so a
// replacement can be started before it exits. The controller calls it off
// the request path and waits for it only before exiting.
type Worker interface {
	Disconnect() error
}

// Controller is the retirement state machine.
type Controller struct {
	host    Host
	cfg     Config
	log     logger.Logger
	metrics *metric.Registry
	clock   Clock
	rand    Rand
	exit    func(code int)
	faults  *fault.Hub
	worker  Worker

	count    atomic.Int64
	inFlight atomic.Bool

	mu      sync.Mutex
	state   State
	pending *Retirement
	timer   Timer

	obsMu     sync.RWMutex
	observers []func(*Retirement)

	// sideEffects tracks disconnects still running.
	sideEffects sync.WaitGroup

	unsubscribe []func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// WithMetrics records retirement metrics in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(c *Controller) {
		c.metrics = reg
	}
}

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithRand replaces the random source used for deferrals.
func WithRand(r Rand) Option {
	return func(c *Controller) {
		c.rand = r
	}
}

// WithExit replaces the exit function. The default is atexit.Exit, which
// runs handlers registered with atexit.Register before exiting.
func WithExit(exit func(code int)) Option {
	return func(c *Controller) {
		c.exit = exit
	}
}

// WithFaultHub sets the process-wide hub observed when TrapFatalErrors is
// enabled. The default is fault.Default().
func WithFaultHub(h *fault.Hub) Option {
	return func(c *Controller) {
		c.faults = h
	}
}

// WithWorker sets the process-group handle. Nil means the process is not
// running under a supervisor.
func WithWorker(w Worker) Option {
	return func(c *Controller) {
		c.worker = w
	}
}

// New creates a Controller for host. It fails with an error matching
// domain.ErrConfiguration when cfg is invalid.
func New(host Host, cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		host:   host,
		cfg:    cfg,
		log:    logger.Nop(),
		clock:  systemClock{},
		rand:   globalRand{},
		exit:   atexit.Exit,
		faults: fault.Default(),
		state:  StateArmed,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "retire")

	if cfg.TrapFatalErrors {
		c.unsubscribe = append(c.unsubscribe, c.faults.Subscribe(c.onFault))
		if fs, ok := host.(FaultSource); ok {
			c.unsubscribe = append(c.unsubscribe, fs.OnFault(c.onFault))
		}
	}

	return c, nil
}

// Close detaches the controller from the fault hub and the host's fault
// callbacks. It does not cancel a pending retirement.
func (c *Controller) Close() {
	for _, unsubscribe := range c.unsubscribe {
		if unsubscribe != nil {
			unsubscribe()
		}
	}
}

// OnRetire registers fn to be called when a retirement starts. Observers
// run synchronously on the triggering goroutine and may call
// Retirement.Cancel.
func (c *Controller) OnRetire(fn func(*Retirement)) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.observers = append(c.observers, fn)
}

// Retire starts a retirement on demand. It reports whether this call
// started the sequence; false means one was already in flight.
func (c *Controller) Retire() bool {
	return c.trigger(ReasonManual)
}

// Middleware returns the request interceptor. With MaxRequests of zero the
// next handler is returned unchanged.
func (c *Controller) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if c.cfg.MaxRequests == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.countRequest(r)
			next.ServeHTTP(w, r)
		})
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StateName returns the current state as a string.
func (c *Controller) StateName() string {
	return c.State().String()
}

// RequestCount returns the weighted request count.
func (c *Controller) RequestCount() int64 {
	return c.count.Load()
}

// Status is a point-in-time view of a Controller.
type Status struct {
	State        State
	RequestCount int64
	MaxRequests  int64
	InFlight     bool
	// Pending is the retirement being deferred, if any.
	Pending *Retirement
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:        c.state,
		RequestCount: c.count.Load(),
		MaxRequests:  c.cfg.MaxRequests,
		InFlight:     c.inFlight.Load(),
		Pending:      c.pending,
	}
}

func (c *Controller) countRequest(r *http.Request) {
	weight := int64(1)
	if c.cfg.Weight != nil {
		weight = c.cfg.Weight(r, c.count.Load())
		if weight < 0 {
			weight = 0
		}
	}

	total := c.count.Add(weight)
	if c.metrics != nil {
		c.metrics.AddRequestWeight(weight)
	}

	if total >= c.cfg.MaxRequests && !c.inFlight.Load() {
		c.log.Info("request threshold reached",
			"count", total,
			"max_requests", c.cfg.MaxRequests,
		)
		c.trigger(ReasonRequestThreshold)
	}
}

func (c *Controller) onFault(err error) {
	c.log.Error("fault observed, retiring", "error", err)
	c.trigger(ReasonFatalError)
}

// trigger runs the retirement sequence at most once.
func (c *Controller) trigger(reason Reason) bool {
	if !c.inFlight.CompareAndSwap(false, true) {
		if c.metrics != nil {
			c.metrics.RecordIgnoredTrigger()
		}
		return false
	}
	if c.metrics != nil {
		c.metrics.RecordTrigger(string(reason))
	}

	if c.cfg.Terminate != nil {
		c.setState(StateDelegated)
		c.log.Info("retirement delegated to custom terminator", "reason", reason)
		c.cfg.Terminate(reason)
		return true
	}

	deferral := c.deferral()
	r := &Retirement{
		ID:       ulid.Make().String(),
		Reason:   reason,
		Deferral: deferral,
		ExitAt:   c.clock.Now().Add(deferral),
		ctrl:     c,
	}

	c.mu.Lock()
	c.pending = r
	c.state = StatePending
	c.timer = c.clock.AfterFunc(deferral, func() { c.expire(r) })
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.SetDeferral(deferral.Seconds())
	}
	log := c.log.With("retirement_id", r.ID, "reason", reason)
	log.Info("retirement started", "deferral", deferral, "exit_at", r.ExitAt)

	r.open.Store(true)
	c.notify(r)
	r.open.Store(false)

	c.mu.Lock()
	cancelled := c.pending != r
	if !cancelled && c.state == StatePending {
		c.state = StateTerminating
	}
	c.mu.Unlock()

	if cancelled {
		log.Info("retirement cancelled by observer")
		return true
	}

	if err := c.host.StopAccepting(); err != nil {
		log.Warn("stop accepting failed", "error", err)
		if c.metrics != nil {
			c.metrics.RecordSideEffectError("stop_accepting")
		}
	}

	if c.worker != nil {
		// A fault may be about to take the process down, so the supervisor
		// is told before returning. Otherwise the request that crossed the
		// threshold must not wait on the supervisor.
		if reason == ReasonFatalError {
			c.disconnect(log)
		} else {
			c.sideEffects.Add(1)
			go func() {
				defer c.sideEffects.Done()
				c.disconnect(log)
			}()
		}
	}

	return true
}

func (c *Controller) disconnect(log logger.Logger) {
	if err := c.worker.Disconnect(); err != nil {
		log.Warn("worker disconnect failed", "error", err)
		if c.metrics != nil {
			c.metrics.RecordSideEffectError("disconnect")
		}
	}
}

func (c *Controller) notify(r *Retirement) {
	c.obsMu.RLock()
	observers := make([]func(*Retirement), len(c.observers))
	copy(observers, c.observers)
	c.obsMu.RUnlock()

	for _, fn := range observers {
		fn(r)
	}
}

func (c *Controller) cancel(r *Retirement) bool {
	c.mu.Lock()
	if c.pending != r || c.state != StatePending {
		c.mu.Unlock()
		return false
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = nil
	c.pending = nil
	c.count.Store(0)
	if c.cfg.RearmAfterCancel {
		c.state = StateArmed
		c.inFlight.Store(false)
	} else {
		c.state = StateDisarmed
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordCancellation()
	}
	return true
}

func (c *Controller) expire(r *Retirement) {
	c.mu.Lock()
	if c.pending != r || c.state == StateExited {
		c.mu.Unlock()
		return
	}
	c.state = StateExited
	c.timer = nil
	c.mu.Unlock()

	c.sideEffects.Wait()

	c.log.Info("deferral elapsed, exiting",
		"retirement_id", r.ID,
		"exit_code", c.cfg.ExitCode,
	)
	c.exit(c.cfg.ExitCode)
}

// deferral draws a duration uniformly from [MinDeferral, MaxDeferral).
// Equal bounds yield MinDeferral.
func (c *Controller) deferral() time.Duration {
	span := int64(c.cfg.MaxDeferral - c.cfg.MinDeferral)
	if span <= 0 {
		return c.cfg.MinDeferral
	}
	return c.cfg.MinDeferral + time.Duration(c.rand.Int64N(span))
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/tebeka/atexit"

	"github.com/yndnr/retire-go/internal/telemetry/logger"
)

// Handler handles graceful shutdown.
type Handler struct {
	timeout time.Duration
	hooks   []func(context.Context) error
	mu      sync.Mutex
	log     logger.Logger

	trigger     chan struct{}
	triggerOnce sync.Once
	runOnce     sync.Once
	runErr      error
	done        chan struct{}
}

// NewHandler creates a new shutdown handler. Hooks share one context
// bounded by timeout.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		log:     logger.Nop(),
		trigger: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// SetLogger sets the logger used to report hook failures.
func (h *Handler) SetLogger(l logger.Logger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = l.With("component", "shutdown")
}

// OnShutdown registers a shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// RegisterAtExit makes atexit.Exit run the hooks before the process exits.
// The retirement controller exits through atexit.Exit by default.
func (h *Handler) RegisterAtExit() {
	atexit.Register(func() {
		h.Run()
	})
}

// Trigger starts shutdown as if a signal had arrived.
func (h *Handler) Trigger() {
	h.triggerOnce.Do(func() { close(h.trigger) })
}

// TriggerWhen starts shutdown once ch is closed. It stops watching ch when
// shutdown completes for another reason.
func (h *Handler) TriggerWhen(ch <-chan struct{}) {
	go func() {
		select {
		case <-ch:
			h.logger().Info("shutdown triggered")
			h.Trigger()
		case <-h.done:
		}
	}()
}

// Wait waits for a shutdown signal or Trigger and executes hooks.
func (h *Handler) Wait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.logger().Info("shutdown signal received", "signal", sig.String())
	case <-h.trigger:
	}

	return h.Run()
}

// Run executes the hooks once. Later calls wait for the first run and
// return its result.
func (h *Handler) Run() error {
	h.runOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		hooks := make([]func(context.Context) error, len(h.hooks))
		copy(hooks, h.hooks)
		log := h.log
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			if err := hooks[i](ctx); err != nil {
				log.Warn("shutdown hook failed", "error", err)
				errs = append(errs, err)
			}
		}

		h.runErr = errors.Join(errs...)
		close(h.done)
	})
	<-h.done
	return h.runErr
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

func (h *Handler) logger() logger.Logger {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.log
}

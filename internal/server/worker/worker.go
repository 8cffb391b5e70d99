package worker

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/retire-go/internal/core/domain"
	"github.com/yndnr/retire-go/internal/telemetry/logger"
)

// Environment variables set by the supervisor.
const (
	EnvSupervisorSocket = "RETIRE_SUPERVISOR_SOCKET"
	EnvWorkerID         = "RETIRE_WORKER_ID"
)

// DefaultTimeout bounds the whole Disconnect exchange.
const DefaultTimeout = 2 * time.Second

// Handle announces this process's departure to its supervisor.
type Handle struct {
	socket  string
	id      string
	pid     int
	timeout time.Duration
	log     logger.Logger
}

// Option configures a Handle.
type Option func(*Handle)

// WithTimeout sets the dial and exchange timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *Handle) {
		h.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handle) {
		h.log = l
	}
}

// WithPID overrides the process ID sent to the supervisor.
func WithPID(pid int) Option {
	return func(h *Handle) {
		h.pid = pid
	}
}

// New creates a handle for the supervisor listening on socket. An empty id
// defaults to the process ID.
func New(socket, id string, opts ...Option) *Handle {
	h := &Handle{
		socket:  socket,
		id:      id,
		pid:     os.Getpid(),
		timeout: DefaultTimeout,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.id == "" {
		h.id = strconv.Itoa(h.pid)
	}
	h.log = h.log.With("component", "worker", "worker_id", h.id)
	return h
}

// FromEnv creates a handle from the supervisor environment. It reports false
// when the process is not running under a supervisor.
func FromEnv(opts ...Option) (*Handle, bool) {
	socket := os.Getenv(EnvSupervisorSocket)
	if socket == "" {
		return nil, false
	}
	return New(socket, os.Getenv(EnvWorkerID), opts...), true
}

// ID returns the worker ID.
func (h *Handle) ID() string {
	return h.id
}

// Disconnect tells the supervisor this worker is leaving. It implements
// retire.Worker and never blocks longer than the configured timeout.
func (h *Handle) Disconnect() error {
	deadline := time.Now().Add(h.timeout)

	conn, err := net.DialTimeout("unix", h.socket, h.timeout)
	if err != nil {
		return domain.ErrSupervisorUnreachable.WithCause(err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(deadline); err != nil {
		return domain.ErrSupervisorUnreachable.WithCause(err)
	}

	if _, err := fmt.Fprintf(conn, "DISCONNECT %s %d\n", h.id, h.pid); err != nil {
		return domain.ErrSupervisorUnreachable.WithCause(err)
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return domain.ErrSupervisorUnreachable.WithCause(err)
	}

	reply = strings.TrimSpace(reply)
	if reply != "OK" {
		return domain.ErrSupervisorRejected.WithDetails(strings.TrimPrefix(reply, "ERR "))
	}

	h.log.Info("disconnected from supervisor", "socket", h.socket)
	return nil
}

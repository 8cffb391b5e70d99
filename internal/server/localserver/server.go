package localserver

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/retire-go/internal/telemetry/logger"
)

// idleTimeout closes connections that send nothing.
const idleTimeout = 30 * time.Second

// Server represents the local management server.
type Server struct {
	path    string
	handler *Handler
	log     logger.Logger
	running atomic.Bool
	wg      sync.WaitGroup
	ready   chan struct{}

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

// New creates a new local server.
func New(socketPath string, h *Handler, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		path:    socketPath,
		handler: h,
		log:     log.With("component", "localserver"),
		ready:   make(chan struct{}),
	}
}

// Ready is closed once the socket is listening.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// ListenAndServe starts the local server. A stale socket file left by a
// previous run is removed first. It returns nil once Shutdown is called,
// including when Shutdown ran before the socket was bound.
func (s *Server) ListenAndServe() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	l, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		l.Close()
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		l.Close()
		return nil
	}
	s.listener = l
	s.running.Store(true)
	s.mu.Unlock()

	close(s.ready)
	s.log.Info("local management socket listening", "path", s.path)

	for {
		conn, err := l.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		// Add under mu so it never races with Wait in Shutdown.
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return nil
		}
		s.wg.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Shutdown closes the listener and waits for active connections to finish
// or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.running.Store(false)
	l := s.listener
	s.mu.Unlock()

	var closeErr error
	if l != nil {
		closeErr = l.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for {
		conn.SetReadDeadline(time.Now().Add(idleTimeout))
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if err := s.handler.Execute(conn, fields[0], fields[1:]); err != nil {
			s.log.Warn("local command failed", "command", fields[0], "error", err)
			return
		}
		if !s.running.Load() {
			return
		}
	}
}

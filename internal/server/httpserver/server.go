// Package httpserver provides the HTTP/HTTPS host for retire-go.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/yndnr/retire-go/internal/telemetry/logger"
)

// DefaultDrainTimeout bounds how long StopAccepting waits for in-flight
// requests before forcing connections closed.
const DefaultDrainTimeout = 30 * time.Second

// Options configures a Server.
type Options struct {
	// DrainTimeout bounds the background drain started by StopAccepting.
	DrainTimeout time.Duration

	// ReadHeaderTimeout for incoming requests.
	ReadHeaderTimeout time.Duration

	// Logger for server errors.
	Logger logger.Logger
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	log        logger.Logger
	drain      time.Duration

	stopOnce sync.Once
	stopped  chan struct{}

	mu          sync.RWMutex
	faults      map[int]func(error)
	nextFaultID int
}

// New creates a new HTTP server.
func New(addr string, handler http.Handler, opts ...Options) *Server {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.DrainTimeout <= 0 {
		o.DrainTimeout = DefaultDrainTimeout
	}
	if o.ReadHeaderTimeout <= 0 {
		o.ReadHeaderTimeout = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}

	s := &Server{
		handler: handler,
		log:     o.Logger.With("component", "httpserver"),
		drain:   o.DrainTimeout,
		stopped: make(chan struct{}),
		faults:  make(map[int]func(error)),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: o.ReadHeaderTimeout,
		ErrorLog:          logger.StdLogger(s.log),
	}
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// SetHandler replaces the request handler. It must be called before the
// server starts serving.
func (s *Server) SetHandler(h http.Handler) {
	s.handler = h
	s.httpServer.Handler = h
}

// OnFault registers fn to be called with handler panics and listener
// failures, and returns a function that removes it. It implements
// retire.FaultSource.
func (s *Server) OnFault(fn func(error)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextFaultID
	s.nextFaultID++
	s.faults[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.faults, id)
			s.mu.Unlock()
		})
	}
}

// ReportFault delivers err to every fault callback.
func (s *Server) ReportFault(err error) {
	s.mu.RLock()
	fns := make([]func(error), 0, len(s.faults))
	for _, fn := range s.faults {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(err)
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.serveResult(s.httpServer.ListenAndServe())
}

// ListenAndServeTLS starts the HTTPS server.
func (s *Server) ListenAndServeTLS(certFile, keyFile string) error {
	return s.serveResult(s.httpServer.ListenAndServeTLS(certFile, keyFile))
}

// Serve accepts connections on l.
func (s *Server) Serve(l net.Listener) error {
	return s.serveResult(s.httpServer.Serve(l))
}

// serveResult reports unexpected listener failures as faults. A closed
// server is the normal result of StopAccepting or Shutdown.
func (s *Server) serveResult(err error) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return http.ErrServerClosed
	}
	s.log.Error("listener failed", "error", err)
	s.ReportFault(err)
	return err
}

// StopAccepting stops accepting new connections and returns immediately.
// In-flight requests keep being served until they finish or the drain
// timeout elapses. It implements retire.Host.
func (s *Server) StopAccepting() error {
	s.stopOnce.Do(func() {
		s.httpServer.SetKeepAlivesEnabled(false)
		s.log.Info("stopped accepting connections", "drain_timeout", s.drain)

		go func() {
			defer close(s.stopped)
			ctx, cancel := context.WithTimeout(context.Background(), s.drain)
			defer cancel()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				s.log.Warn("drain incomplete, closing connections", "error", err)
				s.httpServer.Close()
			}
		}()
	})
	return nil
}

// Stopped is closed once a drain started by StopAccepting completes.
func (s *Server) Stopped() <-chan struct{} {
	return s.stopped
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

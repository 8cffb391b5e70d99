// Package httpserver provides the HTTP/HTTPS host for retire-go.
package httpserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/retire-go/internal/core/domain"
	"github.com/yndnr/retire-go/internal/infra/fault"
	"github.com/yndnr/retire-go/internal/telemetry/logger"
	"github.com/yndnr/retire-go/internal/telemetry/metric"
)

type contextKey string

// ContextKeyStartTime is the context key for request start time.
const ContextKeyStartTime contextKey = "start_time"

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware is the
// outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID adds a unique request ID to each request.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = "req-" + ulid.Make().String()
			}

			w.Header().Set("X-Request-ID", requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = context.WithValue(ctx, ContextKeyStartTime, time.Now())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Recover recovers from panics, reports them as faults and returns a 500
// error. report may be nil.
func Recover(log logger.Logger, report func(error)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				log.Error("panic recovered",
					"request_id", logger.RequestIDFromContext(r.Context()),
					"error", v,
					"path", r.URL.Path,
				)
				writeError(w, domain.ErrInternalServer)

				if report != nil {
					report(&fault.PanicError{Value: v})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// limiterIdleTTL is how long a client's bucket survives without requests.
const limiterIdleTTL = 3 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet keeps one token bucket per client and drops idle ones.
type limiterSet struct {
	mu        sync.Mutex
	rps       int
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func newLimiterSet(rps int) *limiterSet {
	return &limiterSet{rps: rps, clients: make(map[string]*clientLimiter)}
}

func (s *limiterSet) get(ip string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > limiterIdleTTL {
		for key, cl := range s.clients {
			if now.Sub(cl.lastSeen) > limiterIdleTTL {
				delete(s.clients, key)
			}
		}
		s.lastSweep = now
	}

	cl, ok := s.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(s.rps), s.rps)}
		s.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

func (s *limiterSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// RateLimit applies rate limiting per client IP with a token bucket of
// requestsPerSecond and an equal burst. Clients are identified through
// proxies.
func RateLimit(requestsPerSecond int, proxies ProxyList) Middleware {
	limiters := newLimiterSet(requestsPerSecond)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.get(proxies.ClientIP(r), time.Now()).Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Audit logs each completed request and records request metrics. metrics
// may be nil.
func Audit(log logger.Logger, metrics *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			start, ok := r.Context().Value(ContextKeyStartTime).(time.Time)
			if !ok {
				start = time.Now()
			}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			if metrics != nil {
				metrics.RecordRequest(r.Method, strconv.Itoa(wrapped.statusCode))
				metrics.ObserveRequestDuration(r.Method, duration.Seconds())
			}

			attrs := []any{
				"request_id", logger.RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", duration.Milliseconds(),
				"remote_ip", remoteIP(r),
			}
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				attrs = append(attrs, "forwarded_for", xff)
			}

			switch {
			case wrapped.statusCode >= 500:
				log.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Debug("request completed", attrs...)
			}
		})
	}
}

// NetworkACL creates a middleware that checks the client IP against an
// allowlist of IPs and CIDRs. An empty list means no restriction. The
// client IP comes from proxies.ClientIP, so forwarding headers count only
// when sent by a trusted proxy.
func NetworkACL(allowList []string, proxies ProxyList, log logger.Logger) Middleware {
	var networks []*net.IPNet
	for _, entry := range allowList {
		parsed, err := ParseNetworks([]string{entry})
		if err != nil {
			log.Warn("invalid entry in allowlist", "entry", entry, "error", err)
			continue
		}
		networks = append(networks, parsed...)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowList) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := proxies.ClientIP(r)
			if ip := net.ParseIP(clientIP); ip != nil && containsIP(networks, ip) {
				next.ServeHTTP(w, r)
				return
			}

			log.Warn("request denied by network ACL",
				"client_ip", clientIP,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)
			writeError(w, domain.ErrAccessDenied.WithDetails("IP not in allowlist"))
		})
	}
}

// AdminToken requires "Authorization: Bearer <token>" on every request. An
// empty token disables the check.
func AdminToken(token string) Middleware {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte(token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				writeError(w, domain.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// writeError writes a minimal error body for middleware rejections.
func writeError(w http.ResponseWriter, err *domain.DomainError) {
	status := http.StatusInternalServerError
	switch {
	case strings.HasSuffix(err.Code, "-4010"):
		status = http.StatusUnauthorized
	case strings.Contains(err.Code, "-403"):
		status = http.StatusForbidden
	case strings.HasSuffix(err.Code, "-4290"):
		status = http.StatusTooManyRequests
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", err.Code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    err.Code,
		"message": err.Message,
	})
}

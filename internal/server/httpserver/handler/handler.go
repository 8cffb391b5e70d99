// Package handler provides HTTP request handlers for retire-go.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yndnr/retire-go/internal/core/domain"
	"github.com/yndnr/retire-go/internal/core/retire"
	"github.com/yndnr/retire-go/internal/telemetry/logger"
)

// Retirer is the controller surface the handlers need.
type Retirer interface {
	Retire() bool
	Status() retire.Status
}

// Config configures a Handler.
type Config struct {
	// Controller is the retirement controller of this process.
	Controller Retirer

	// Logger for handler errors.
	Logger logger.Logger

	// AllowManualRetire enables POST /admin/v1/retire.
	AllowManualRetire bool

	// Version is reported by the status endpoint.
	Version string
}

// Handler routes requests to the endpoint handlers.
type Handler struct {
	ctrl        Retirer
	logger      logger.Logger
	allowRetire bool
	version     string
	mux         *http.ServeMux
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	h := &Handler{
		ctrl:        cfg.Controller,
		logger:      log,
		allowRetire: cfg.AllowManualRetire,
		version:     cfg.Version,
		mux:         http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /admin/v1/retire", h.handleRetireStatus)
	h.mux.HandleFunc("POST /admin/v1/retire", h.handleRetire)

	h.mux.HandleFunc("GET /hello", h.handleHello)
	h.mux.HandleFunc("GET /hello/{name}", h.handleHello)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes a domain error with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err *domain.DomainError, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, err.Code, err.Message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", err.Code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(errorCodeToHTTPStatus(err.Code))
	json.NewEncoder(w).Encode(response)
}

// getRequestID returns the request ID set by the RequestID middleware.
func getRequestID(r *http.Request) string {
	if reqID := logger.RequestIDFromContext(r.Context()); reqID != "" {
		return reqID
	}
	return r.Header.Get("X-Request-ID")
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4090"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4010"):
		return http.StatusUnauthorized
	case strings.Contains(code, "-403"):
		return http.StatusForbidden
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	case strings.HasPrefix(code, "RT-CONF-"), strings.HasSuffix(code, "-4000"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

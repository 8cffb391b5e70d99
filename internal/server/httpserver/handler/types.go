// Package handler provides HTTP request handlers for retire-go.
package handler

import "time"

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// RetireStatusResponse is the response body for GET /admin/v1/retire.
type RetireStatusResponse struct {
	State        string         `json:"state"`
	RequestCount int64          `json:"request_count"`
	MaxRequests  int64          `json:"max_requests"`
	InFlight     bool           `json:"in_flight"`
	Retirement   *RetirementDTO `json:"retirement,omitempty"`
}

// RetirementDTO describes a pending retirement.
type RetirementDTO struct {
	ID         string    `json:"id"`
	Reason     string    `json:"reason"`
	DeferralMS int64     `json:"deferral_ms"`
	ExitAt     time.Time `json:"exit_at"`
}

// HelloResponse is the response body for GET /hello.
type HelloResponse struct {
	Greeting string `json:"greeting"`
}

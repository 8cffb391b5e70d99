package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/retire-go/internal/core/retire"
)

// fakeRetirer implements Retirer for testing.
type fakeRetirer struct {
	mu      sync.Mutex
	status  retire.Status
	retired int
}

func (f *fakeRetirer) Retire() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status.InFlight {
		return false
	}
	f.retired++
	f.status.InFlight = true
	f.status.State = retire.StateTerminating
	f.status.Pending = &retire.Retirement{
		ID:       "01J0000000000000000000TEST",
		Reason:   retire.ReasonManual,
		Deferral: 7 * time.Second,
		ExitAt:   time.Date(2026, 1, 1, 0, 0, 7, 0, time.UTC),
	}
	return true
}

func (f *fakeRetirer) Status() retire.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func newTestHandler(allow bool) (*Handler, *fakeRetirer) {
	ctrl := &fakeRetirer{status: retire.Status{State: retire.StateArmed, MaxRequests: 100}}
	return New(Config{Controller: ctrl, AllowManualRetire: allow}), ctrl
}

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Request-ID", "req-test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return rec, resp
}

func TestHealth(t *testing.T) {
	h, ctrl := newTestHandler(true)

	rec, resp := do(t, h, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Code != "OK" || resp.RequestID != "req-test" {
		t.Errorf("unexpected envelope: %+v", resp)
	}

	// A retiring process is still alive.
	ctrl.Retire()
	rec, _ = do(t, h, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("status while retiring = %d, want 200", rec.Code)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		state  retire.State
		status int
	}{
		{"armed", retire.StateArmed, http.StatusOK},
		{"disarmed", retire.StateDisarmed, http.StatusOK},
		{"pending", retire.StatePending, http.StatusServiceUnavailable},
		{"terminating", retire.StateTerminating, http.StatusServiceUnavailable},
		{"delegated", retire.StateDelegated, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeRetirer{status: retire.Status{State: tt.state}}
			h := New(Config{Controller: ctrl})

			rec, resp := do(t, h, http.MethodGet, "/ready")
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusServiceUnavailable {
				if resp.Code != "RT-SYS-5030" {
					t.Errorf("code = %q, want RT-SYS-5030", resp.Code)
				}
				if got := rec.Header().Get("X-Error-Code"); got != "RT-SYS-5030" {
					t.Errorf("X-Error-Code = %q", got)
				}
			}
		})
	}
}

func TestRetireStatus(t *testing.T) {
	h, ctrl := newTestHandler(true)
	ctrl.status.RequestCount = 42

	rec, resp := do(t, h, http.MethodGet, "/admin/v1/retire")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	data := resp.Data.(map[string]any)
	if data["state"] != "armed" {
		t.Errorf("state = %v, want armed", data["state"])
	}
	if data["request_count"] != float64(42) {
		t.Errorf("request_count = %v, want 42", data["request_count"])
	}
	if data["max_requests"] != float64(100) {
		t.Errorf("max_requests = %v, want 100", data["max_requests"])
	}
	if _, ok := data["retirement"]; ok {
		t.Error("retirement should be omitted when none is pending")
	}
}

func TestRetire(t *testing.T) {
	h, ctrl := newTestHandler(true)

	rec, resp := do(t, h, http.MethodPost, "/admin/v1/retire")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	data := resp.Data.(map[string]any)
	if data["state"] != "terminating" {
		t.Errorf("state = %v, want terminating", data["state"])
	}
	r, ok := data["retirement"].(map[string]any)
	if !ok {
		t.Fatal("retirement missing from response")
	}
	if r["reason"] != "manual" || r["deferral_ms"] != float64(7000) {
		t.Errorf("unexpected retirement: %v", r)
	}

	// Second call is absorbed by the controller.
	rec, resp = do(t, h, http.MethodPost, "/admin/v1/retire")
	if rec.Code != http.StatusConflict {
		t.Errorf("second status = %d, want 409", rec.Code)
	}
	if resp.Code != "RT-ADMIN-4090" {
		t.Errorf("code = %q, want RT-ADMIN-4090", resp.Code)
	}
	if ctrl.retired != 1 {
		t.Errorf("retired = %d, want 1", ctrl.retired)
	}
}

func TestRetire_Disabled(t *testing.T) {
	h, ctrl := newTestHandler(false)

	rec, resp := do(t, h, http.MethodPost, "/admin/v1/retire")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if resp.Code != "RT-ADMIN-4030" {
		t.Errorf("code = %q, want RT-ADMIN-4030", resp.Code)
	}
	if ctrl.retired != 0 {
		t.Error("controller should not be called when manual retire is disabled")
	}
}

func TestHello(t *testing.T) {
	h, _ := newTestHandler(false)

	tests := []struct {
		path string
		want string
	}{
		{"/hello", "howdy, world"},
		{"/hello/gopher", "howdy, gopher"},
	}
	for _, tt := range tests {
		_, resp := do(t, h, http.MethodGet, tt.path)
		data := resp.Data.(map[string]any)
		if data["greeting"] != tt.want {
			t.Errorf("%s: greeting = %v, want %q", tt.path, data["greeting"], tt.want)
		}
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"RT-ADMIN-4090", http.StatusConflict},
		{"RT-ADMIN-4030", http.StatusForbidden},
		{"RT-ADMIN-4031", http.StatusForbidden},
		{"RT-ADMIN-4010", http.StatusUnauthorized},
		{"RT-SYS-4290", http.StatusTooManyRequests},
		{"RT-SYS-5030", http.StatusServiceUnavailable},
		{"RT-SYS-4000", http.StatusBadRequest},
		{"RT-CONF-4002", http.StatusBadRequest},
		{"RT-WORK-5020", http.StatusInternalServerError},
		{"RT-SYS-5000", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := errorCodeToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("errorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

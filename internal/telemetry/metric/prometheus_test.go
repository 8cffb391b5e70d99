package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.registry == nil {
		t.Error("registry field is nil")
	}
	if r.Triggers == nil || r.RequestsTotal == nil || r.RequestDuration == nil {
		t.Error("expected metric vectors to be initialized")
	}
}

func TestGlobal(t *testing.T) {
	if Global() != Global() {
		t.Error("Global() should return the same instance")
	}
}

func TestHandler_RuntimeMetrics(t *testing.T) {
	body := scrape(t, Handler())

	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go_goroutines metric")
	}
	if !strings.Contains(body, "process_") {
		t.Error("expected process metrics")
	}
}

func TestRetirementMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordTrigger("manual")
	r.RecordIgnoredTrigger()
	r.RecordIgnoredTrigger()
	r.RecordCancellation()
	r.AddRequestWeight(3)
	r.AddRequestWeight(2)
	r.SetDeferral(7.5)
	r.RecordSideEffectError("disconnect")

	body := scrape(t, r.Handler())

	want := []string{
		`retire_triggers_total{reason="manual"} 1`,
		"retire_ignored_triggers_total 2",
		"retire_cancellations_total 1",
		"retire_requests_counted_total 5",
		"retire_deferral_seconds 7.5",
		`retire_side_effect_errors_total{op="disconnect"} 1`,
	}
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("expected %q in scrape output", w)
		}
	}
}

func TestRequestMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordRequest("GET", "200")
	r.RecordRequest("POST", "202")
	r.ObserveRequestDuration("GET", 0.005)

	body := scrape(t, r.Handler())

	if !strings.Contains(body, `retire_http_requests_total{method="GET",status="200"} 1`) {
		t.Error("expected retire_http_requests_total for GET 200")
	}
	if !strings.Contains(body, "retire_http_request_duration_seconds_count") {
		t.Error("expected retire_http_request_duration_seconds_count")
	}
}

type fakeSource struct {
	state string
	count int64
}

func (f *fakeSource) StateName() string  { return f.state }
func (f *fakeSource) RequestCount() int64 { return f.count }

func TestCollector(t *testing.T) {
	r := NewRegistry()
	src := &fakeSource{state: "pending", count: 42}
	if err := r.Register(NewCollector(src)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	body := scrape(t, r.Handler())
	if !strings.Contains(body, `retire_state{state="pending"} 1`) {
		t.Error(`expected retire_state{state="pending"} 1`)
	}
	if !strings.Contains(body, `retire_state{state="armed"} 0`) {
		t.Error(`expected retire_state{state="armed"} 0`)
	}
	if !strings.Contains(body, "retire_request_count 42") {
		t.Error("expected retire_request_count 42")
	}

	src.state = "disarmed"
	src.count = 0
	body = scrape(t, r.Handler())
	if !strings.Contains(body, `retire_state{state="disarmed"} 1`) {
		t.Error("collector should reflect state changes at scrape time")
	}
}

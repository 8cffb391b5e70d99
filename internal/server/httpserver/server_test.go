package httpserver

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return l
}

func TestNew(t *testing.T) {
	s := New(":8080", okHandler())
	if s == nil {
		t.Fatal("New returned nil")
	}
	if s.httpServer == nil {
		t.Error("httpServer is nil")
	}
	if s.drain != DefaultDrainTimeout {
		t.Errorf("drain = %v, want %v", s.drain, DefaultDrainTimeout)
	}
	if s.Addr() != ":8080" {
		t.Errorf("Addr = %q", s.Addr())
	}
}

func TestServer_Shutdown(t *testing.T) {
	s := New("", okHandler())
	l := listen(t)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(l)
	}()

	resp, err := http.Get("http://" + l.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown error: %v", err)
	}

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Serve returned unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for Serve to return")
	}
}

func TestServer_StopAccepting(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			close(started)
			<-release
		}
		io.WriteString(w, "done")
	})

	s := New("", h, Options{DrainTimeout: 5 * time.Second})
	l := listen(t)
	go s.Serve(l)

	base := "http://" + l.Addr().String()
	slow := make(chan string, 1)
	go func() {
		resp, err := http.Get(base + "/slow")
		if err != nil {
			slow <- err.Error()
			return
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		slow <- string(b)
	}()
	<-started

	returned := make(chan struct{})
	go func() {
		if err := s.StopAccepting(); err != nil {
			t.Errorf("StopAccepting: %v", err)
		}
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("StopAccepting must not wait for in-flight requests")
	}

	// Idempotent.
	if err := s.StopAccepting(); err != nil {
		t.Errorf("second StopAccepting: %v", err)
	}

	// New connections are refused once listeners close.
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, err := net.DialTimeout("tcp", l.Addr().String(), 100*time.Millisecond)
		if err != nil {
			break
		}
		conn.Close()
		if time.Now().After(deadline) {
			t.Fatal("listener still accepting connections")
		}
		time.Sleep(10 * time.Millisecond)
	}

	close(release)
	if got := <-slow; got != "done" {
		t.Errorf("in-flight request = %q, want done", got)
	}

	select {
	case <-s.Stopped():
	case <-time.After(5 * time.Second):
		t.Error("drain did not complete")
	}
}

func TestServer_ListenerFailureReportsFault(t *testing.T) {
	l := listen(t)
	defer l.Close()

	// Second server on the same address fails to bind.
	s := New(l.Addr().String(), okHandler())

	var mu sync.Mutex
	var faults []error
	s.OnFault(func(err error) {
		mu.Lock()
		faults = append(faults, err)
		mu.Unlock()
	})

	err := s.ListenAndServe()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("ListenAndServe = %v, want bind error", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(faults) != 1 || faults[0] != err {
		t.Errorf("faults = %v, want [%v]", faults, err)
	}
}

func TestServer_ClosedIsNotAFault(t *testing.T) {
	s := New("", okHandler())
	var reported bool
	s.OnFault(func(error) { reported = true })

	l := listen(t)
	done := make(chan error, 1)
	go func() { done <- s.Serve(l) }()

	// Give Serve a chance to start tracking the listener.
	time.Sleep(20 * time.Millisecond)
	s.Shutdown(context.Background())

	if err := <-done; !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("Serve = %v", err)
	}
	if reported {
		t.Error("closing the server must not be reported as a fault")
	}
}

func TestServer_SetHandler(t *testing.T) {
	s := New("", nil)
	s.SetHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	l := listen(t)
	go s.Serve(l)
	defer s.Shutdown(context.Background())

	resp, err := http.Get("http://" + l.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTeapot)
	}
}

func TestServer_OnFaultUnsubscribe(t *testing.T) {
	s := New("", okHandler())

	var kept, removed int
	s.OnFault(func(error) { kept++ })
	unsubscribe := s.OnFault(func(error) { removed++ })

	s.ReportFault(errors.New("first"))
	unsubscribe()
	unsubscribe()
	s.ReportFault(errors.New("second"))

	if kept != 2 {
		t.Errorf("kept callback ran %d times, want 2", kept)
	}
	if removed != 1 {
		t.Errorf("removed callback ran %d times, want 1", removed)
	}
}

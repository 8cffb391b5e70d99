package fault

import (
	"fmt"
	"sync"
)

// PanicError wraps a recovered panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Hub fans fault notifications out to subscribers.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(error)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(error))}
}

var defaultHub = NewHub()

// Default returns the process-wide hub.
func Default() *Hub {
	return defaultHub
}

// Subscribe registers fn and returns a function that removes it.
func (h *Hub) Subscribe(fn func(error)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Report notifies every subscriber of err.
// Subscribers run synchronously on the reporting goroutine.
func (h *Hub) Report(err error) {
	h.mu.RLock()
	subs := make([]func(error), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(err)
	}
}

// Guard must be deferred directly. On panic it reports a *PanicError to
// the hub and re-panics with the original value.
func (h *Hub) Guard() {
	if v := recover(); v != nil {
		h.Report(&PanicError{Value: v})
		panic(v)
	}
}

// Guard is Default().Guard. It must be deferred directly.
func Guard() {
	if v := recover(); v != nil {
		defaultHub.Report(&PanicError{Value: v})
		panic(v)
	}
}

// Report is Default().Report.
func Report(err error) {
	defaultHub.Report(err)
}

// Package handler provides HTTP request handlers for retire-go.
package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/retire-go/internal/core/domain"
)

// handleHealth handles GET /health. A retiring process is still alive.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. It reports 503 once a retirement is in
// flight so load balancers stop routing here during the deferral window.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	st := h.ctrl.Status()
	if st.State.Retiring() {
		h.writeError(w, r, domain.ErrServiceUnavailable, map[string]string{
			"state": st.State.String(),
		})
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

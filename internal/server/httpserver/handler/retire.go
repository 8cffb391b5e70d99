package handler

import (
	"net/http"

	"github.com/yndnr/retire-go/internal/core/domain"
	"github.com/yndnr/retire-go/internal/core/retire"
)

// handleRetireStatus handles GET /admin/v1/retire.
func (h *Handler) handleRetireStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, toStatusResponse(h.ctrl.Status()))
}

// handleRetire handles POST /admin/v1/retire.
func (h *Handler) handleRetire(w http.ResponseWriter, r *http.Request) {
	if !h.allowRetire {
		h.writeError(w, r, domain.ErrRetireNotAllowed, nil)
		return
	}

	if !h.ctrl.Retire() {
		h.writeError(w, r, domain.ErrAlreadyRetiring, toStatusResponse(h.ctrl.Status()))
		return
	}

	st := h.ctrl.Status()
	h.logger.Info("manual retirement requested",
		"request_id", getRequestID(r),
		"state", st.State.String(),
	)
	h.writeJSON(w, r, http.StatusAccepted, toStatusResponse(st))
}

func toStatusResponse(st retire.Status) RetireStatusResponse {
	resp := RetireStatusResponse{
		State:        st.State.String(),
		RequestCount: st.RequestCount,
		MaxRequests:  st.MaxRequests,
		InFlight:     st.InFlight,
	}
	if p := st.Pending; p != nil {
		resp.Retirement = &RetirementDTO{
			ID:         p.ID,
			Reason:     string(p.Reason),
			DeferralMS: p.Deferral.Milliseconds(),
			ExitAt:     p.ExitAt.UTC(),
		}
	}
	return resp
}

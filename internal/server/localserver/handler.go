package localserver

import (
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/retire-go/internal/core/retire"
)

// Retirer is the controller surface the local commands need.
type Retirer interface {
	Retire() bool
	Status() retire.Status
}

// Handler handles local management commands.
type Handler struct {
	ctrl        Retirer
	allowRetire bool
}

// NewHandler creates a new Handler.
func NewHandler(ctrl Retirer, allowRetire bool) *Handler {
	return &Handler{ctrl: ctrl, allowRetire: allowRetire}
}

// Execute executes a local management command.
func (h *Handler) Execute(w io.Writer, cmd string, args []string) error {
	switch strings.ToUpper(cmd) {
	case "PING":
		return reply(w, "OK pong")
	case "STATUS":
		return h.handleStatus(w)
	case "RETIRE":
		return h.handleRetire(w)
	default:
		return reply(w, "ERR unknown command: "+cmd)
	}
}

func (h *Handler) handleStatus(w io.Writer) error {
	st := h.ctrl.Status()
	return reply(w, fmt.Sprintf("OK state=%s count=%d max=%d in_flight=%t",
		st.State, st.RequestCount, st.MaxRequests, st.InFlight))
}

func (h *Handler) handleRetire(w io.Writer) error {
	if !h.allowRetire {
		return reply(w, "ERR manual retirement disabled")
	}
	if !h.ctrl.Retire() {
		return reply(w, "ERR already retiring")
	}
	return reply(w, "OK retiring")
}

func reply(w io.Writer, line string) error {
	_, err := io.WriteString(w, line+"\n")
	return err
}

package handler

import "net/http"

// handleHello handles GET /hello and GET /hello/{name}.
func (h *Handler) handleHello(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		name = "world"
	}
	h.writeJSON(w, r, http.StatusOK, HelloResponse{Greeting: "howdy, " + name})
}

package httpserver

import "net/http"

// summary serves the dashboard for bookings starting within [from, to].
func (h *Handlers) summary(w http.ResponseWriter, r *http.Request) {
	from, ok := queryDate(w, r, "from")
	if !ok {
		return
	}
	to, ok := queryDate(w, r, "to")
	if !ok {
		return
	}
	s, err := h.Summary.Dashboard(r.Context(), principalFrom(r.Context()), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

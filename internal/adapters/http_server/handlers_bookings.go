package httpserver

import (
	"context"
	"net/http"
	"strconv"

	"pine_hotel/internal/adapters/observability"
	"pine_hotel/internal/domain"
)

func observeBooking(b domain.Booking) {
	observability.ObserveBooking(string(b.Kind), string(b.Status), b.TotalCents)
}

func (h *Handlers) quoteBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := h.Bookings.Quote(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.Bookings.Create(r.Context(), principalFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observeBooking(b)
	w.Header().Set("Location", "/v1/bookings/"+strconv.FormatInt(b.ID, 10))
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	var f domain.BookingFilter
	qs := r.URL.Query()
	if v := qs.Get("kind"); v != "" {
		k, err := domain.ParseKind(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		f.Kind = &k
	}
	if v := qs.Get("status"); v != "" {
		st, err := domain.ParseStatus(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		f.Status = &st
	}
	for _, v := range qs["hotel_id"] {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid query", "hotel_id must be a positive number")
			return
		}
		f.HotelIDs = append(f.HotelIDs, id)
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	f.Limit = int(limit)
	out, err := h.Bookings.List(r.Context(), principalFrom(r.Context()), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := h.Bookings.Get(r.Context(), principalFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, b)
}

// bookingAction adapts a status transition of the booking service to a handler.
func (h *Handlers) bookingAction(act func(context.Context, domain.Principal, int64) (domain.Booking, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		b, err := act(r.Context(), principalFrom(r.Context()), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		observeBooking(b)
		writeJSON(w, http.StatusOK, b)
	}
}

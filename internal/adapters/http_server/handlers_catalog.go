package httpserver

import (
	"net/http"
	"strconv"

	"pine_hotel/internal/domain"
)

// queryInt reads an optional positive integer query parameter.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid query", name+" must be a non-negative number")
		return 0, false
	}
	return n, true
}

// ---- hotels ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := domain.HotelsQuery{Q: qs.Get("q"), City: qs.Get("city")}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	cursor, ok := queryInt(w, r, "cursor")
	if !ok {
		return
	}
	ownerParam := "owner"
	if qs.Get(ownerParam) == "" && qs.Get("owner_id") != "" {
		ownerParam = "owner_id"
	}
	owner, ok := queryInt(w, r, ownerParam)
	if !ok {
		return
	}
	q.Limit, q.Cursor = int(limit), cursor
	if owner > 0 {
		q.OwnerID = &owner
	}
	page, err := h.Catalog.ListHotels(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := h.Catalog.GetHotel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, v)
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var req hotelRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.Catalog.CreateHotel(r.Context(), principalFrom(r.Context()), req.toDomain(0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req hotelRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.Catalog.UpdateHotel(r.Context(), principalFrom(r.Context()), req.toDomain(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteHotel(r.Context(), principalFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) hotelAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := queryDate(w, r, "check_in")
	if !ok {
		return
	}
	out, ok := queryDate(w, r, "check_out")
	if !ok {
		return
	}
	rooms, err := h.Catalog.HotelAvailability(r.Context(), id, in, out)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// ---- rooms ----

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rooms, err := h.Catalog.ListRooms(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	room, err := h.Catalog.GetRoom(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, room)
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req roomRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.Catalog.CreateRoom(r.Context(), principalFrom(r.Context()), req.toDomain(0, hotelID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req roomRequest
	if !h.decode(w, r, &req) {
		return
	}
	// the hotel of an existing room never changes; the service fills it in
	out, err := h.Catalog.UpdateRoom(r.Context(), principalFrom(r.Context()), req.toDomain(id, 0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteRoom(r.Context(), principalFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- cars ----

func (h *Handlers) listCars(w http.ResponseWriter, r *http.Request) {
	q := domain.CarsQuery{City: r.URL.Query().Get("city")}
	if v := r.URL.Query().Get("with_driver"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid query", "with_driver must be true or false")
			return
		}
		q.WithDriver = b
	}
	cars, err := h.Catalog.ListCars(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

func (h *Handlers) getCar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.Catalog.GetCar(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, c)
}

func (h *Handlers) createCar(w http.ResponseWriter, r *http.Request) {
	var req carRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.Catalog.CreateCar(r.Context(), principalFrom(r.Context()), req.toDomain(0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateCar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req carRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.Catalog.UpdateCar(r.Context(), principalFrom(r.Context()), req.toDomain(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteCar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteCar(r.Context(), principalFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- guides ----

func (h *Handlers) listGuides(w http.ResponseWriter, r *http.Request) {
	gs, err := h.Catalog.ListGuides(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gs)
}

func (h *Handlers) getGuide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	g, err := h.Catalog.GetGuide(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, g)
}

func (h *Handlers) createGuide(w http.ResponseWriter, r *http.Request) {
	var req guideRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.Catalog.CreateGuide(r.Context(), principalFrom(r.Context()), req.toDomain(0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateGuide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req guideRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.Catalog.UpdateGuide(r.Context(), principalFrom(r.Context()), req.toDomain(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteGuide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteGuide(r.Context(), principalFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- tours ----

func (h *Handlers) listTours(w http.ResponseWriter, r *http.Request) {
	q := domain.ToursQuery{Location: r.URL.Query().Get("location")}
	if v := r.URL.Query().Get("from"); v != "" {
		from, err := domain.ParseDate("from", v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		q.From = &from
	}
	ts, err := h.Catalog.ListTours(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (h *Handlers) getTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := h.Catalog.GetTour(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, t)
}

func (h *Handlers) createTour(w http.ResponseWriter, r *http.Request) {
	var req tourRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, err := req.toDomain(0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Catalog.CreateTour(r.Context(), principalFrom(r.Context()), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req tourRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, err := req.toDomain(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Catalog.UpdateTour(r.Context(), principalFrom(r.Context()), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteTour(r.Context(), principalFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

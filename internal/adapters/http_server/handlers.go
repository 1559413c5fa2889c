package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"pine_hotel/internal/app"
	"pine_hotel/internal/domain"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Auth     *app.AuthService
	Catalog  *app.CatalogService
	Bookings *app.BookingService
	Summary  *app.SummaryService
	Tokens   domain.TokenIssuer

	validate *validator.Validate
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Field  string `json:"field,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	h.validate = validator.New(validator.WithRequiredStructEnabled())
	h.validate.RegisterTagNameFunc(jsonName)

	s.mux.Get("/healthz", h.health)

	s.mux.Route("/v1", func(r chi.Router) {
		r.Use(Authenticate(h.Tokens))

		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)
		r.With(RequireRole()).Get("/me", h.me)
		r.With(RequireRole(domain.RoleSuperAdmin)).Post("/admin/users", h.createUser)

		r.Get("/hotels", h.listHotels)
		r.Get("/hotels/{id}", h.getHotel)
		r.Get("/hotels/{id}/rooms", h.listRooms)
		r.Get("/hotels/{id}/availability", h.hotelAvailability)
		r.Get("/rooms/{id}", h.getRoom)
		r.Get("/cars", h.listCars)
		r.Get("/cars/{id}", h.getCar)
		r.Get("/guides", h.listGuides)
		r.Get("/guides/{id}", h.getGuide)
		r.Get("/tours", h.listTours)
		r.Get("/tours/{id}", h.getTour)
		r.Post("/bookings/quote", h.quoteBooking)

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin))
			r.Post("/hotels", h.createHotel)
			r.Put("/hotels/{id}", h.updateHotel)
			r.Delete("/hotels/{id}", h.deleteHotel)
			r.Post("/hotels/{id}/rooms", h.createRoom)
			r.Put("/rooms/{id}", h.updateRoom)
			r.Delete("/rooms/{id}", h.deleteRoom)
			r.Post("/bookings/{id}/confirm", h.bookingAction(h.Bookings.Confirm))
			r.Post("/bookings/{id}/complete", h.bookingAction(h.Bookings.Complete))
			r.Get("/summary", h.summary)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(domain.RoleSuperAdmin))
			r.Post("/cars", h.createCar)
			r.Put("/cars/{id}", h.updateCar)
			r.Delete("/cars/{id}", h.deleteCar)
			r.Post("/guides", h.createGuide)
			r.Put("/guides/{id}", h.updateGuide)
			r.Delete("/guides/{id}", h.deleteGuide)
			r.Post("/tours", h.createTour)
			r.Put("/tours/{id}", h.updateTour)
			r.Delete("/tours/{id}", h.deleteTour)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole())
			r.Post("/bookings", h.createBooking)
			r.Get("/bookings", h.listBookings)
			r.Get("/bookings/{id}", h.getBooking)
			r.Post("/bookings/{id}/cancel", h.bookingAction(h.Bookings.Cancel))
		})
	})
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblemBody(w, problem{Type: "about:blank", Title: "Invalid input", Status: http.StatusUnprocessableEntity, Detail: ve.Reason, Field: ve.Field})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "login required")
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		writeProblem(w, http.StatusConflict, "Unavailable", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCacheable serves v with a weak ETag and answers If-None-Match with 304.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write cacheable body")
	}
}

// decode reads a JSON body into dst and runs its validate tags.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Malformed body", err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			writeProblemBody(w, problem{
				Type: "about:blank", Title: "Invalid input", Status: http.StatusUnprocessableEntity,
				Detail: fmt.Sprintf("failed %q", fe.Tag()), Field: fe.Field(),
			})
			return false
		}
		writeProblem(w, http.StatusBadRequest, "Malformed body", err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return 0, false
	}
	return id, true
}

func queryDate(w http.ResponseWriter, r *http.Request, name string) (t time.Time, ok bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		writeProblemBody(w, problem{Type: "about:blank", Title: "Invalid input", Status: http.StatusUnprocessableEntity, Detail: "required", Field: name})
		return t, false
	}
	d, err := domain.ParseDate(name, v)
	if err != nil {
		writeError(w, r, err)
		return t, false
	}
	return d, true
}

func (h *Handlers) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

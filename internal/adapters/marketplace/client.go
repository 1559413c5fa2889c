// Package marketplace is a typed client for the Pine Hotel REST API.
package marketplace

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"pine_hotel/internal/adapters/observability"
	"pine_hotel/internal/domain"
)

const maxAttempts = 4

type Client struct {
	base  string
	hc    *http.Client
	token string
	rl    *rate.Limiter
}

func New(base string, rps int) (*Client, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return nil, fmt.Errorf("API base URL is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("API base URL: %w", err)
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// WithToken returns a copy of c that sends token as a bearer credential.
// The copy shares the rate limiter.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) BaseURL() string { return c.base }

// APIError is a problem+json response from the API.
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Field  string `json:"field"`
}

func (e *APIError) Error() string {
	msg := e.Title
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	return fmt.Sprintf("api %d: %s", e.Status, msg)
}

// Is lets callers match API errors against the domain sentinels.
func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusNotFound:
		return target == domain.ErrNotFound
	case http.StatusUnauthorized:
		return target == domain.ErrUnauthorized
	case http.StatusForbidden:
		return target == domain.ErrForbidden
	case http.StatusConflict:
		return target == domain.ErrConflict
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return target == domain.ErrInvalid
	}
	return false
}

// ---- Public API ----

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      domain.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, email, name, password string) (domain.User, error) {
	var out domain.User
	in := map[string]string{"email": email, "name": name, "password": password}
	return out, c.do(ctx, http.MethodPost, "/v1/auth/register", in, &out)
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var out Session
	in := map[string]string{"email": email, "password": password}
	return out, c.do(ctx, http.MethodPost, "/v1/auth/login", in, &out)
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var out domain.User
	return out, c.do(ctx, http.MethodGet, "/v1/me", nil, &out)
}

// CreateUser opens an account of any role; super-admin only.
func (c *Client) CreateUser(ctx context.Context, email, name, password string, role domain.Role) (domain.User, error) {
	var out domain.User
	in := map[string]string{"email": email, "name": name, "password": password, "role": string(role)}
	return out, c.do(ctx, http.MethodPost, "/v1/admin/users", in, &out)
}

func (c *Client) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	var out domain.Hotel
	in := map[string]any{
		"owner_id": h.OwnerID, "name": h.Name, "description": h.Description, "city": h.City,
		"country": h.Country, "address": h.Address, "stars": h.Stars, "amenities": h.Amenities, "images": h.Images,
	}
	return out, c.do(ctx, http.MethodPost, "/v1/hotels", in, &out)
}

func (c *Client) CreateRoom(ctx context.Context, r domain.Room) (domain.Room, error) {
	var out domain.Room
	in := map[string]any{
		"name": r.Name, "type": r.Type, "description": r.Description, "capacity": r.Capacity,
		"units": r.Units, "price_cents": r.PriceCents, "amenities": r.Amenities, "images": r.Images,
	}
	return out, c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/hotels/%d/rooms", r.HotelID), in, &out)
}

type HotelFilter struct {
	Q      string
	City   string
	Limit   int
	Cursor  int64
	OwnerID int64
}

func (c *Client) ListHotels(ctx context.Context, f HotelFilter) (domain.HotelsPage, error) {
	q := url.Values{}
	setStr(q, "q", f.Q)
	setStr(q, "city", f.City)
	setInt(q, "limit", int64(f.Limit))
	setInt(q, "cursor", f.Cursor)
	setInt(q, "owner", f.OwnerID)
	var out domain.HotelsPage
	return out, c.do(ctx, http.MethodGet, withQuery("/v1/hotels", q), nil, &out)
}

func (c *Client) GetHotel(ctx context.Context, id int64) (domain.HotelView, error) {
	var out domain.HotelView
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/hotels/%d", id), nil, &out)
}

func (c *Client) ListRooms(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	var out []domain.Room
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/hotels/%d/rooms", hotelID), nil, &out)
}

func (c *Client) Availability(ctx context.Context, hotelID int64, checkIn, checkOut time.Time) ([]domain.RoomAvailability, error) {
	q := url.Values{}
	q.Set("check_in", checkIn.Format(domain.DateLayout))
	q.Set("check_out", checkOut.Format(domain.DateLayout))
	var out []domain.RoomAvailability
	return out, c.do(ctx, http.MethodGet, withQuery(fmt.Sprintf("/v1/hotels/%d/availability", hotelID), q), nil, &out)
}

func (c *Client) ListCars(ctx context.Context, city string, withDriver bool) ([]domain.Car, error) {
	q := url.Values{}
	setStr(q, "city", city)
	if withDriver {
		q.Set("with_driver", "true")
	}
	var out []domain.Car
	return out, c.do(ctx, http.MethodGet, withQuery("/v1/cars", q), nil, &out)
}

func (c *Client) ListTours(ctx context.Context, location string) ([]domain.Tour, error) {
	q := url.Values{}
	setStr(q, "location", location)
	var out []domain.Tour
	return out, c.do(ctx, http.MethodGet, withQuery("/v1/tours", q), nil, &out)
}

func (c *Client) GetTour(ctx context.Context, id int64) (domain.TourView, error) {
	var out domain.TourView
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/tours/%d", id), nil, &out)
}

// BookingInput is the body of a quote or booking request. Start and End are
// YYYY-MM-DD and ignored for tours.
type BookingInput struct {
	Kind       domain.BookingKind `json:"kind"`
	ItemID     int64              `json:"item_id"`
	Start      string             `json:"start,omitempty"`
	End        string             `json:"end,omitempty"`
	Quantity   int                `json:"quantity,omitempty"`
	WithDriver bool               `json:"with_driver,omitempty"`
	GuestName  string             `json:"guest_name,omitempty"`
	GuestEmail string             `json:"guest_email,omitempty"`
	GuestPhone string             `json:"guest_phone,omitempty"`
}

func (c *Client) Quote(ctx context.Context, in BookingInput) (domain.Quote, error) {
	var out domain.Quote
	return out, c.do(ctx, http.MethodPost, "/v1/bookings/quote", in, &out)
}

func (c *Client) Book(ctx context.Context, in BookingInput) (domain.Booking, error) {
	var out domain.Booking
	return out, c.do(ctx, http.MethodPost, "/v1/bookings", in, &out)
}

type BookingFilter struct {
	Kind     string
	Status   string
	HotelIDs []int64
}

func (c *Client) ListBookings(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	q := url.Values{}
	setStr(q, "kind", f.Kind)
	setStr(q, "status", f.Status)
	for _, id := range f.HotelIDs {
		q.Add("hotel_id", strconv.FormatInt(id, 10))
	}
	var out []domain.Booking
	return out, c.do(ctx, http.MethodGet, withQuery("/v1/bookings", q), nil, &out)
}

func (c *Client) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	var out domain.Booking
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/bookings/%d", id), nil, &out)
}

func (c *Client) Cancel(ctx context.Context, id int64) (domain.Booking, error) {
	return c.move(ctx, id, "cancel")
}

func (c *Client) Confirm(ctx context.Context, id int64) (domain.Booking, error) {
	return c.move(ctx, id, "confirm")
}

func (c *Client) Complete(ctx context.Context, id int64) (domain.Booking, error) {
	return c.move(ctx, id, "complete")
}

func (c *Client) move(ctx context.Context, id int64, action string) (domain.Booking, error) {
	var out domain.Booking
	return out, c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/bookings/%d/%s", id, action), nil, &out)
}

func (c *Client) Summary(ctx context.Context, from, to time.Time) (domain.Summary, error) {
	q := url.Values{}
	q.Set("from", from.Format(domain.DateLayout))
	q.Set("to", to.Format(domain.DateLayout))
	var out domain.Summary
	return out, c.do(ctx, http.MethodGet, withQuery("/v1/summary", q), nil, &out)
}

// ---- Internals ----

func setStr(q url.Values, k, v string) {
	if v != "" {
		q.Set(k, v)
	}
}

func setInt(q url.Values, k string, v int64) {
	if v > 0 {
		q.Set(k, strconv.FormatInt(v, 10))
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// endpoint strips ids and query from path so metrics labels stay bounded.
func endpoint(path string) string {
	path, _, _ = strings.Cut(path, "?")
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

// do sends one API call with client-side rate limiting and decodes the JSON reply into out.
// Only GETs are retried: on network errors, 429 and transient 5xx, honoring Retry-After.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = b
	}
	attempts := 1
	if method == http.MethodGet {
		attempts = maxAttempts
	}
	ep := endpoint(path)

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := c.rl.Wait(ctx); err != nil {
			return err
		}
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "travelctl/1.0")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("pine-api", ep, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < attempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("pine-api", ep, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusNoContent:
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			var err error
			if out != nil {
				err = json.NewDecoder(resp.Body).Decode(out)
			}
			resp.Body.Close()
			return err

		case retryable(resp.StatusCode) && i < attempts-1:
			wait := retryAfter(resp)
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
			if sleepCtx(ctx, wait) {
				continue
			}
			return ctx.Err()

		default:
			err := decodeProblem(resp)
			resp.Body.Close()
			return err
		}
	}
	return lastErr
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// decodeProblem turns an error response into *APIError, falling back to the raw body.
func decodeProblem(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(b, apiErr); err != nil || apiErr.Title == "" {
		apiErr.Title = http.StatusText(resp.StatusCode)
		apiErr.Detail = strings.TrimSpace(string(b))
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}

// IsAPIError reports whether err carries an API status equal to status.
func IsAPIError(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}

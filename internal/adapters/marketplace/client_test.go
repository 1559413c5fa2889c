package marketplace_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pine_hotel/internal/adapters/marketplace"
	"pine_hotel/internal/domain"
)

func newClient(t *testing.T, h http.Handler) *marketplace.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	cl, err := marketplace.New(ts.URL, 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func TestClient_GetHotel_RetriesThenSuccess(t *testing.T) {
	var hits int32
	cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_ = json.NewEncoder(w).Encode(domain.HotelView{Hotel: domain.Hotel{ID: 7, Name: "Pine Lodge"}})
		}
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got, err := cl.GetHotel(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.ID != 7 || got.Name != "Pine Lodge" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 calls due to retries, got %d", hits)
	}
}

func TestClient_PostIsNotRetried(t *testing.T) {
	var hits int32
	cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := cl.Book(context.Background(), marketplace.BookingInput{Kind: domain.KindTour, ItemID: 1})
	if !marketplace.IsAPIError(err, http.StatusInternalServerError) {
		t.Fatalf("expected a 500 API error, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("POST must not be retried, got %d calls", n)
	}
}

func TestClient_ProblemDecoded(t *testing.T) {
	cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"type":"about:blank","title":"Unavailable","status":409,"detail":"not available for the requested dates"}`))
	}))

	_, err := cl.Book(context.Background(), marketplace.BookingInput{Kind: domain.KindRoom, ItemID: 3, Start: "2030-01-01", End: "2030-01-03"})
	var apiErr *marketplace.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T %v", err, err)
	}
	if apiErr.Detail != "not available for the requested dates" {
		t.Fatalf("unexpected detail %q", apiErr.Detail)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("409 should match domain.ErrConflict")
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"title":"Unauthorized","status":401}`))
			return
		}
		_ = json.NewEncoder(w).Encode(domain.User{ID: 1, Email: "ana@example.com", Role: domain.RoleGuest})
	}))

	if _, err := cl.Me(context.Background()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous call should be unauthorized, got %v", err)
	}
	me, err := cl.WithToken("tok-123").Me(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if me.Email != "ana@example.com" {
		t.Fatalf("unexpected user %+v", me)
	}
}

func TestClient_SummaryQuery(t *testing.T) {
	cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/summary" || r.URL.Query().Get("from") != "2030-01-01" || r.URL.Query().Get("to") != "2030-01-31" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.Summary{TotalCents: 1234})
	}))
	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := cl.Summary(context.Background(), from, from.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.TotalCents != 1234 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := marketplace.New("", 1); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}

func TestClient_RetriesWaitForRateLimit(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.HotelView{Hotel: domain.Hotel{ID: 7}})
	}))
	t.Cleanup(ts.Close)
	cl, err := marketplace.New(ts.URL, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if _, err := cl.GetHotel(ctx, 7); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// backoff alone is under a second; one request per second makes the third attempt wait ~2s
	if elapsed := time.Since(start); elapsed < 1500*time.Millisecond {
		t.Fatalf("retries bypassed the rate limit: 3 attempts in %v", elapsed)
	}
}

func TestClient_ListQueries(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	cl := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.RawQuery)
		mu.Unlock()
		if r.URL.Path == "/v1/hotels" {
			_ = json.NewEncoder(w).Encode(domain.HotelsPage{Items: []domain.Hotel{}})
			return
		}
		_ = json.NewEncoder(w).Encode([]domain.Booking{})
	}))
	ctx := context.Background()

	if _, err := cl.ListHotels(ctx, marketplace.HotelFilter{City: "Tbilisi", OwnerID: 4}); err != nil {
		t.Fatalf("list hotels: %v", err)
	}
	if _, err := cl.ListBookings(ctx, marketplace.BookingFilter{Status: "pending", HotelIDs: []int64{3, 5}}); err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	want := []string{"city=Tbilisi&owner=4", "hotel_id=3&hotel_id=5&status=pending"}
	mu.Lock()
	defer mu.Unlock()
	if len(queries) != 2 || queries[0] != want[0] || queries[1] != want[1] {
		t.Fatalf("queries = %q, want %q", queries, want)
	}
}

// Package memory is an in-process domain.Store used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pine_hotel/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	seq      int64
	users    map[int64]domain.User
	hotels   map[int64]domain.Hotel
	rooms    map[int64]domain.Room
	cars     map[int64]domain.Car
	guides   map[int64]domain.Guide
	tours    map[int64]domain.Tour
	bookings map[int64]domain.Booking
	now      func() time.Time
}

var _ domain.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:    map[int64]domain.User{},
		hotels:   map[int64]domain.Hotel{},
		rooms:    map[int64]domain.Room{},
		cars:     map[int64]domain.Car{},
		guides:   map[int64]domain.Guide{},
		tours:    map[int64]domain.Tour{},
		bookings: map[int64]domain.Booking{},
		now:      time.Now,
	}
}

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ---- users ----

func (s *Store) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.users {
		if strings.EqualFold(x.Email, u.Email) {
			return domain.User{}, fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
		}
	}
	u.ID = s.next()
	u.CreatedAt = s.now().UTC()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, notFound("user", id)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

func (s *Store) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// ---- hotels ----

func (s *Store) CreateHotel(_ context.Context, h domain.Hotel) (domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.next()
	h.Amenities, h.Images = cloneStrings(h.Amenities), cloneStrings(h.Images)
	h.CreatedAt = s.now().UTC()
	h.UpdatedAt = h.CreatedAt
	s.hotels[h.ID] = h
	return h, nil
}

func (s *Store) UpdateHotel(_ context.Context, h domain.Hotel) (domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.hotels[h.ID]
	if !ok {
		return domain.Hotel{}, notFound("hotel", h.ID)
	}
	h.Amenities, h.Images = cloneStrings(h.Amenities), cloneStrings(h.Images)
	h.CreatedAt = cur.CreatedAt
	h.UpdatedAt = s.now().UTC()
	s.hotels[h.ID] = h
	return h, nil
}

// DeleteHotel removes the hotel and its rooms.
func (s *Store) DeleteHotel(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[id]; !ok {
		return notFound("hotel", id)
	}
	delete(s.hotels, id)
	for rid, r := range s.rooms {
		if r.HotelID == id {
			delete(s.rooms, rid)
		}
	}
	return nil
}

func (s *Store) GetHotel(_ context.Context, id int64) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, notFound("hotel", id)
	}
	return h, nil
}

func (s *Store) ListHotels(_ context.Context, q domain.HotelsQuery) (domain.HotelsPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := domain.HotelsPage{Items: []domain.Hotel{}}
	for _, id := range sortedIDs(s.hotels) {
		h := s.hotels[id]
		if id <= q.Cursor {
			continue
		}
		if q.City != "" && !strings.EqualFold(h.City, q.City) {
			continue
		}
		if q.Q != "" && !strings.Contains(strings.ToLower(h.Name), strings.ToLower(q.Q)) {
			continue
		}
		if q.OwnerID != nil && h.OwnerID != *q.OwnerID {
			continue
		}
		if q.Limit > 0 && len(out.Items) == q.Limit {
			last := out.Items[len(out.Items)-1].ID
			out.NextCursor = &last
			break
		}
		out.Items = append(out.Items, h)
	}
	return out, nil
}

func (s *Store) CountHotels(_ context.Context, ownerID *int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, h := range s.hotels {
		if ownerID == nil || h.OwnerID == *ownerID {
			n++
		}
	}
	return n, nil
}

// ---- rooms ----

func (s *Store) CreateRoom(_ context.Context, r domain.Room) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[r.HotelID]; !ok {
		return domain.Room{}, notFound("hotel", r.HotelID)
	}
	r.ID = s.next()
	r.Amenities, r.Images = cloneStrings(r.Amenities), cloneStrings(r.Images)
	s.rooms[r.ID] = r
	return r, nil
}

func (s *Store) UpdateRoom(_ context.Context, r domain.Room) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[r.ID]; !ok {
		return domain.Room{}, notFound("room", r.ID)
	}
	r.Amenities, r.Images = cloneStrings(r.Amenities), cloneStrings(r.Images)
	s.rooms[r.ID] = r
	return r, nil
}

func (s *Store) DeleteRoom(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return notFound("room", id)
	}
	delete(s.rooms, id)
	return nil
}

func (s *Store) GetRoom(_ context.Context, id int64) (domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, notFound("room", id)
	}
	return r, nil
}

func (s *Store) ListRooms(_ context.Context, hotelID int64) ([]domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Room{}
	for _, id := range sortedIDs(s.rooms) {
		if r := s.rooms[id]; r.HotelID == hotelID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) CountRooms(_ context.Context, ownerID *int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.rooms {
		if ownerID == nil || s.hotels[r.HotelID].OwnerID == *ownerID {
			n++
		}
	}
	return n, nil
}

// ---- cars ----

func (s *Store) CreateCar(_ context.Context, c domain.Car) (domain.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.next()
	c.Images = cloneStrings(c.Images)
	s.cars[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCar(_ context.Context, c domain.Car) (domain.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cars[c.ID]; !ok {
		return domain.Car{}, notFound("car", c.ID)
	}
	c.Images = cloneStrings(c.Images)
	s.cars[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCar(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cars[id]; !ok {
		return notFound("car", id)
	}
	delete(s.cars, id)
	return nil
}

func (s *Store) GetCar(_ context.Context, id int64) (domain.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cars[id]
	if !ok {
		return domain.Car{}, notFound("car", id)
	}
	return c, nil
}

func (s *Store) ListCars(_ context.Context, q domain.CarsQuery) ([]domain.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Car{}
	for _, id := range sortedIDs(s.cars) {
		c := s.cars[id]
		if q.City != "" && !strings.EqualFold(c.City, q.City) {
			continue
		}
		if q.WithDriver && !c.DriverAvailable {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) CountCars(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cars), nil
}

// ---- guides ----

func (s *Store) CreateGuide(_ context.Context, g domain.Guide) (domain.Guide, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.next()
	g.Languages = cloneStrings(g.Languages)
	s.guides[g.ID] = g
	return g, nil
}

func (s *Store) UpdateGuide(_ context.Context, g domain.Guide) (domain.Guide, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.guides[g.ID]; !ok {
		return domain.Guide{}, notFound("guide", g.ID)
	}
	g.Languages = cloneStrings(g.Languages)
	s.guides[g.ID] = g
	return g, nil
}

// DeleteGuide unassigns the guide from its tours.
func (s *Store) DeleteGuide(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.guides[id]; !ok {
		return notFound("guide", id)
	}
	delete(s.guides, id)
	for tid, t := range s.tours {
		if t.GuideID != nil && *t.GuideID == id {
			t.GuideID = nil
			s.tours[tid] = t
		}
	}
	return nil
}

func (s *Store) GetGuide(_ context.Context, id int64) (domain.Guide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.guides[id]
	if !ok {
		return domain.Guide{}, notFound("guide", id)
	}
	return g, nil
}

func (s *Store) ListGuides(_ context.Context) ([]domain.Guide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Guide{}
	for _, id := range sortedIDs(s.guides) {
		out = append(out, s.guides[id])
	}
	return out, nil
}

// ---- tours ----

func (s *Store) CreateTour(_ context.Context, t domain.Tour) (domain.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.next()
	t.Images = cloneStrings(t.Images)
	s.tours[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTour(_ context.Context, t domain.Tour) (domain.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tours[t.ID]; !ok {
		return domain.Tour{}, notFound("tour", t.ID)
	}
	t.Images = cloneStrings(t.Images)
	s.tours[t.ID] = t
	return t, nil
}

func (s *Store) DeleteTour(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tours[id]; !ok {
		return notFound("tour", id)
	}
	delete(s.tours, id)
	return nil
}

func (s *Store) GetTour(_ context.Context, id int64) (domain.Tour, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tours[id]
	if !ok {
		return domain.Tour{}, notFound("tour", id)
	}
	return t, nil
}

func (s *Store) ListTours(_ context.Context, q domain.ToursQuery) ([]domain.Tour, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Tour{}
	for _, id := range sortedIDs(s.tours) {
		t := s.tours[id]
		if q.Location != "" && !strings.Contains(strings.ToLower(t.Location), strings.ToLower(q.Location)) {
			continue
		}
		if q.From != nil && t.StartDate.Before(*q.From) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) CountTours(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tours), nil
}

// ---- bookings ----

// reserved must be called with s.mu held.
func (s *Store) reserved(kind domain.BookingKind, itemID int64, start, end time.Time) int {
	n := 0
	for _, b := range s.bookings {
		if b.Kind != kind || b.ItemID != itemID || !b.Status.Active() {
			continue
		}
		if domain.Overlaps(b.Start, b.End, start, end) {
			n += b.Quantity
		}
	}
	return n
}

func (s *Store) Reserve(_ context.Context, b domain.Booking, capacity int) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reserved(b.Kind, b.ItemID, b.Start, b.End)+b.Quantity > capacity {
		return domain.Booking{}, domain.ErrUnavailable
	}
	b.ID = s.next()
	s.bookings[b.ID] = b
	return b, nil
}

func (s *Store) GetBooking(_ context.Context, id int64) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.Booking{}, notFound("booking", id)
	}
	return b, nil
}

// ListBookings returns newest first.
func (s *Store) ListBookings(_ context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := sortedIDs(s.bookings)
	out := []domain.Booking{}
	for i := len(ids) - 1; i >= 0; i-- {
		b := s.bookings[ids[i]]
		if f.UserID != nil && b.UserID != *f.UserID {
			continue
		}
		if f.OwnerID != nil && (b.HotelID == nil || s.hotels[*b.HotelID].OwnerID != *f.OwnerID) {
			continue
		}
		if f.Kind != nil && b.Kind != *f.Kind {
			continue
		}
		if f.Status != nil && b.Status != *f.Status {
			continue
		}
		if len(f.HotelIDs) > 0 && (b.HotelID == nil || !containsID(f.HotelIDs, *b.HotelID)) {
			continue
		}
		out = append(out, b)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func containsID(ids []int64, id int64) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func (s *Store) UpdateStatus(_ context.Context, id int64, from, to domain.BookingStatus) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.Booking{}, notFound("booking", id)
	}
	if b.Status != from {
		return domain.Booking{}, fmt.Errorf("booking %d is %s: %w", id, b.Status, domain.ErrConflict)
	}
	b.Status = to
	b.UpdatedAt = s.now().UTC()
	s.bookings[id] = b
	return b, nil
}

func (s *Store) ReservedUnits(_ context.Context, kind domain.BookingKind, itemID int64, start, end time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reserved(kind, itemID, start, end), nil
}

func (s *Store) RevenueRows(_ context.Context, q domain.RevenueQuery) ([]domain.RevenueRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.RevenueRow
	for _, id := range sortedIDs(s.bookings) {
		b := s.bookings[id]
		if b.Kind != q.Kind {
			continue
		}
		d := domain.Day(b.Start)
		if d.Before(q.From) || d.After(q.To) {
			continue
		}
		if q.OwnerID != nil && (b.HotelID == nil || s.hotels[*b.HotelID].OwnerID != *q.OwnerID) {
			continue
		}
		out = append(out, domain.RevenueRow{Kind: b.Kind, Status: b.Status, Start: b.Start, TotalCents: b.TotalCents})
	}
	return out, nil
}

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"pine_hotel/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// horizon used when checking whether an item still has bookings ahead of it
const bookingHorizon = 10 * 365 * 24 * time.Hour

type CatalogService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewCatalogService(s domain.Store, c domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{store: s, cache: c, cacheTTL: ttl, now: time.Now}
}

func hotelKey(id int64) string { return fmt.Sprintf("hotel:%d", id) }
func carKey(id int64) string   { return fmt.Sprintf("car:%d", id) }
func tourKey(id int64) string  { return fmt.Sprintf("tour:%d", id) }

func (s *CatalogService) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return false
	}
	return ok
}

func (s *CatalogService) remember(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func (s *CatalogService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	for _, k := range keys {
		if err := s.cache.Del(ctx, k); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("cache del failed")
		}
	}
}

// hasBookingsAhead reports whether an item holds active bookings from today on.
func (s *CatalogService) hasBookingsAhead(ctx context.Context, kind domain.BookingKind, id int64) (bool, error) {
	today := domain.Day(s.now())
	n, err := s.store.ReservedUnits(ctx, kind, id, today, today.Add(bookingHorizon))
	return n > 0, err
}

// ---- hotels ----

func (s *CatalogService) ListHotels(ctx context.Context, q domain.HotelsQuery) (domain.HotelsPage, error) {
	switch {
	case q.Limit <= 0:
		q.Limit = defaultPageSize
	case q.Limit > maxPageSize:
		q.Limit = maxPageSize
	}
	q.Q = strings.TrimSpace(q.Q)
	return s.store.ListHotels(ctx, q)
}

func (s *CatalogService) GetHotel(ctx context.Context, id int64) (domain.HotelView, error) {
	key := hotelKey(id)
	var hv domain.HotelView
	if s.cached(ctx, key, &hv) {
		return hv, nil
	}
	h, err := s.store.GetHotel(ctx, id)
	if err != nil {
		return domain.HotelView{}, err
	}
	rooms, err := s.store.ListRooms(ctx, id)
	if err != nil {
		return domain.HotelView{}, err
	}
	hv = domain.HotelView{Hotel: h, Rooms: rooms}
	s.remember(ctx, key, hv)
	return hv, nil
}

func (s *CatalogService) CreateHotel(ctx context.Context, caller domain.Principal, h domain.Hotel) (domain.Hotel, error) {
	if err := requireRole(caller, domain.RoleAdmin, domain.RoleSuperAdmin); err != nil {
		return domain.Hotel{}, err
	}
	if !caller.IsSuperAdmin() || h.OwnerID == 0 {
		h.OwnerID = caller.UserID
	}
	if err := h.Validate(); err != nil {
		return domain.Hotel{}, err
	}
	if caller.IsSuperAdmin() && h.OwnerID != caller.UserID {
		if err := s.requireOwner(ctx, h.OwnerID); err != nil {
			return domain.Hotel{}, err
		}
	}
	return s.store.CreateHotel(ctx, h)
}

func (s *CatalogService) requireOwner(ctx context.Context, id int64) error {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return domain.Invalid("owner_id", "unknown user")
	}
	if u.Role == domain.RoleGuest {
		return domain.Invalid("owner_id", "guests cannot own hotels")
	}
	return nil
}

func (s *CatalogService) UpdateHotel(ctx context.Context, caller domain.Principal, h domain.Hotel) (domain.Hotel, error) {
	cur, err := s.store.GetHotel(ctx, h.ID)
	if err != nil {
		return domain.Hotel{}, err
	}
	if err := canManageHotel(caller, cur); err != nil {
		return domain.Hotel{}, err
	}
	if !caller.IsSuperAdmin() || h.OwnerID == 0 {
		h.OwnerID = cur.OwnerID
	} else if h.OwnerID != cur.OwnerID {
		if err := s.requireOwner(ctx, h.OwnerID); err != nil {
			return domain.Hotel{}, err
		}
	}
	if err := h.Validate(); err != nil {
		return domain.Hotel{}, err
	}
	out, err := s.store.UpdateHotel(ctx, h)
	if err != nil {
		return domain.Hotel{}, err
	}
	s.invalidate(ctx, hotelKey(h.ID))
	return out, nil
}

func (s *CatalogService) DeleteHotel(ctx context.Context, caller domain.Principal, id int64) error {
	h, err := s.store.GetHotel(ctx, id)
	if err != nil {
		return err
	}
	if err := canManageHotel(caller, h); err != nil {
		return err
	}
	rooms, err := s.store.ListRooms(ctx, id)
	if err != nil {
		return err
	}
	for _, r := range rooms {
		busy, err := s.hasBookingsAhead(ctx, domain.KindRoom, r.ID)
		if err != nil {
			return err
		}
		if busy {
			return fmt.Errorf("room %d has upcoming bookings: %w", r.ID, domain.ErrConflict)
		}
	}
	if err := s.store.DeleteHotel(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, hotelKey(id))
	return nil
}

// ---- rooms ----

func (s *CatalogService) ListRooms(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	hv, err := s.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	return hv.Rooms, nil
}

func (s *CatalogService) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	return s.store.GetRoom(ctx, id)
}

func (s *CatalogService) CreateRoom(ctx context.Context, caller domain.Principal, r domain.Room) (domain.Room, error) {
	h, err := s.store.GetHotel(ctx, r.HotelID)
	if err != nil {
		return domain.Room{}, err
	}
	if err := canManageHotel(caller, h); err != nil {
		return domain.Room{}, err
	}
	if err := r.Validate(); err != nil {
		return domain.Room{}, err
	}
	out, err := s.store.CreateRoom(ctx, r)
	if err != nil {
		return domain.Room{}, err
	}
	s.invalidate(ctx, hotelKey(r.HotelID))
	return out, nil
}

func (s *CatalogService) UpdateRoom(ctx context.Context, caller domain.Principal, r domain.Room) (domain.Room, error) {
	cur, err := s.store.GetRoom(ctx, r.ID)
	if err != nil {
		return domain.Room{}, err
	}
	h, err := s.store.GetHotel(ctx, cur.HotelID)
	if err != nil {
		return domain.Room{}, err
	}
	if err := canManageHotel(caller, h); err != nil {
		return domain.Room{}, err
	}
	r.HotelID = cur.HotelID
	if err := r.Validate(); err != nil {
		return domain.Room{}, err
	}
	out, err := s.store.UpdateRoom(ctx, r)
	if err != nil {
		return domain.Room{}, err
	}
	s.invalidate(ctx, hotelKey(cur.HotelID))
	return out, nil
}

func (s *CatalogService) DeleteRoom(ctx context.Context, caller domain.Principal, id int64) error {
	cur, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	h, err := s.store.GetHotel(ctx, cur.HotelID)
	if err != nil {
		return err
	}
	if err := canManageHotel(caller, h); err != nil {
		return err
	}
	busy, err := s.hasBookingsAhead(ctx, domain.KindRoom, id)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("room %d has upcoming bookings: %w", id, domain.ErrConflict)
	}
	if err := s.store.DeleteRoom(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, hotelKey(cur.HotelID))
	return nil
}

// HotelAvailability lists every room of a hotel with the units still free over the stay.
func (s *CatalogService) HotelAvailability(ctx context.Context, hotelID int64, checkIn, checkOut time.Time) ([]domain.RoomAvailability, error) {
	nights, err := domain.Nights(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	rooms, err := s.ListRooms(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RoomAvailability, 0, len(rooms))
	for _, r := range rooms {
		taken, err := s.store.ReservedUnits(ctx, domain.KindRoom, r.ID, domain.Day(checkIn), domain.Day(checkOut))
		if err != nil {
			return nil, err
		}
		free := r.Units - taken
		if free < 0 {
			free = 0
		}
		out = append(out, domain.RoomAvailability{
			Room:       r,
			Available:  free,
			Nights:     nights,
			QuoteCents: int64(nights) * r.PriceCents,
		})
	}
	return out, nil
}

// ---- cars ----

func (s *CatalogService) ListCars(ctx context.Context, q domain.CarsQuery) ([]domain.Car, error) {
	return s.store.ListCars(ctx, q)
}

func (s *CatalogService) GetCar(ctx context.Context, id int64) (domain.Car, error) {
	key := carKey(id)
	var c domain.Car
	if s.cached(ctx, key, &c) {
		return c, nil
	}
	c, err := s.store.GetCar(ctx, id)
	if err != nil {
		return domain.Car{}, err
	}
	s.remember(ctx, key, c)
	return c, nil
}

func (s *CatalogService) CreateCar(ctx context.Context, caller domain.Principal, c domain.Car) (domain.Car, error) {
	if err := requireRole(caller, domain.RoleSuperAdmin); err != nil {
		return domain.Car{}, err
	}
	if err := c.Validate(); err != nil {
		return domain.Car{}, err
	}
	return s.store.CreateCar(ctx, c)
}

func (s *CatalogService) UpdateCar(ctx context.Context, caller domain.Principal, c domain.Car) (domain.Car, error) {
	if err := requireRole(caller, domain.RoleSuperAdmin); err != nil {
		return domain.Car{}, err
	}
	if err := c.Validate(); err != nil {
		return domain.Car{}, err
	}
	out, err := s.store.UpdateCar(ctx, c)
	if err != nil {
		return domain.Car{}, err
	}
	s.invalidate(ctx, carKey(c.ID))
	return out, nil
}

func (s *CatalogService) DeleteCar(ctx context.Context, caller domain.Principal, id int64) error {
	if err := requireRole(caller, domain.RoleSuperAdmin); err != nil {
		return err
	}
	busy, err := s.hasBookingsAhead(ctx, domain.KindCar, id)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("car %d has upcoming bookings: %w", id, domain.ErrConflict)
	}
	if err := s.store.DeleteCar(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, carKey(id))
	return nil
}

// ---- guides ----

func (s *CatalogService) ListGuides(ctx context.Context) ([]domain.Guide, error) {
	return s.store.ListGuides(ctx)
}

func (s *CatalogService) GetGuide(ctx context.Context, id int64) (domain.Guide, error) {
	return s.store.GetGuide(ctx, id)
}

func (s *CatalogService) CreateGuide(ctx context.Context, caller domain.Principal, g domain.Guide) (domain.Guide, error) {
	if err := requireRole(caller, domain.RoleSuperAdmin); err != nil {
		return domain.Guide{}, err
	}
	if err := g.Validate(); err != nil {
		return domain.Guide{}, err
	}
	return s.store.CreateGuide(ctx, g)
}

func (s *CatalogService) UpdateGuide(ctx context.Context, caller domain.Principal, g domain.Guide) (domain.Guide, error) {
	if err := requireRole(caller, domain.RoleSuperAdmin); err != nil {
		return domain.Guide{}, err
	}
	if err := g.Validate(); err != nil {
		return domain.Guide{}, err
	}
	out, err := s.store.UpdateGuide(ctx, g)
	if err != nil {
		return domain.Guide{}, err
	}
	s.invalidateToursOf(ctx, g.ID)
	return out, nil
}

func (s *CatalogService) DeleteGuide(ctx context.Context, caller domain.Principal, id int64) error {
	if err := requireRole(caller, domain.RoleSuperAdmin); err != nil {
		return err
	}
	// storage unassigns the guide, so find the tours first
	keys := s.tourKeysOf(ctx, id)
	if err := s.store.DeleteGuide(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, keys...)
	return nil
}

// tour views embed their guide
func (s *CatalogService) invalidateToursOf(ctx context.Context, guideID int64) {
	s.invalidate(ctx, s.tourKeysOf(ctx, guideID)...)
}

func (s *CatalogService) tourKeysOf(ctx context.Context, guideID int64) []string {
	if s.cache == nil {
		return nil
	}
	tours, err := s.store.ListTours(ctx, domain.ToursQuery{})
	if err != nil {
		log.Warn().Err(err).Int64("guide_id", guideID).Msg("list tours for cache invalidation failed")
		return nil
	}
	var keys []string
	for _, t := range tours {
		if t.GuideID != nil && *t.GuideID == guideID {
			keys = append(keys, tourKey(t.ID))
		}
	}
	return keys
}

// ---- tours ----

func (s *CatalogService) ListTours(ctx context.Context, q domain.ToursQuery) ([]domain.Tour, error) {
	return s.store.ListTours(ctx, q)
}

func (s *CatalogService) GetTour(ctx context.Context, id int64) (domain.TourView, error) {
	key := tourKey(id)
	var tv domain.TourView
	if s.cached(ctx, key, &tv) {
		return tv, nil
	}
	t, err := s.store.GetTour(ctx, id)
	if err != nil {
		return domain.TourView{}, err
	}
	tv = domain.TourView{Tour: t}
	if t.GuideID != nil {
		g, err := s.store.GetGuide(ctx, *t.GuideID)
		switch {
		case err == nil:
			tv.Guide = &g
		case !isNotFound(err):
			return domain.TourView{}, err
		}
	}
	s.remember(ctx, key, tv)
	return tv, nil
}

func (s *CatalogService) CreateTour(ctx context.Context, caller domain.Principal, t domain.Tour) (domain.Tour, error) {
	if err := requireRole(caller, domain.RoleSuperAdmin); err != nil {
		return domain.Tour{}, err
	}
	if err := s.validateTour(ctx, t); err != nil {
		return domain.Tour{}, err
	}
	t.StartDate = domain.Day(t.StartDate)
	return s.store.CreateTour(ctx, t)
}

func (s *CatalogService) UpdateTour(ctx context.Context, caller domain.Principal, t domain.Tour) (domain.Tour, error) {
	if err := requireRole(caller, domain.RoleSuperAdmin); err != nil {
		return domain.Tour{}, err
	}
	if err := s.validateTour(ctx, t); err != nil {
		return domain.Tour{}, err
	}
	t.StartDate = domain.Day(t.StartDate)
	out, err := s.store.UpdateTour(ctx, t)
	if err != nil {
		return domain.Tour{}, err
	}
	s.invalidate(ctx, tourKey(t.ID))
	return out, nil
}

func (s *CatalogService) DeleteTour(ctx context.Context, caller domain.Principal, id int64) error {
	if err := requireRole(caller, domain.RoleSuperAdmin); err != nil {
		return err
	}
	busy, err := s.hasBookingsAhead(ctx, domain.KindTour, id)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("tour %d has upcoming bookings: %w", id, domain.ErrConflict)
	}
	if err := s.store.DeleteTour(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, tourKey(id))
	return nil
}

func (s *CatalogService) validateTour(ctx context.Context, t domain.Tour) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.GuideID == nil {
		return nil
	}
	if _, err := s.store.GetGuide(ctx, *t.GuideID); err != nil {
		if isNotFound(err) {
			return domain.Invalid("guide_id", "unknown guide")
		}
		return err
	}
	return nil
}

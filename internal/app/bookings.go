package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pine_hotel/internal/domain"
)

type BookingService struct {
	store domain.Store
	now   func() time.Time
	ref   func() string
}

func NewBookingService(s domain.Store) *BookingService {
	return &BookingService{
		store: s,
		now:   time.Now,
		ref:   func() string { return uuid.NewString() },
	}
}

// WithClock pins "today", for tests.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// priced is a quote plus what Reserve needs to know about the item.
type priced struct {
	quote    domain.Quote
	capacity int
	hotelID  *int64
}

func (s *BookingService) price(ctx context.Context, req domain.BookingRequest) (priced, error) {
	today := domain.Day(s.now())
	switch req.Kind {
	case domain.KindRoom:
		if domain.Day(req.Start).Before(today) {
			return priced{}, domain.Invalid("start", "check-in is in the past")
		}
		r, err := s.store.GetRoom(ctx, req.ItemID)
		if err != nil {
			return priced{}, err
		}
		q, err := domain.QuoteRoom(r, req.Start, req.End, req.Quantity)
		if err != nil {
			return priced{}, err
		}
		hid := r.HotelID
		return priced{quote: q, capacity: r.Units, hotelID: &hid}, nil

	case domain.KindCar:
		if domain.Day(req.Start).Before(today) {
			return priced{}, domain.Invalid("start", "pick-up is in the past")
		}
		if req.Quantity > 1 {
			return priced{}, domain.Invalid("quantity", "a car is booked one at a time")
		}
		c, err := s.store.GetCar(ctx, req.ItemID)
		if err != nil {
			return priced{}, err
		}
		q, err := domain.QuoteCar(c, req.Start, req.End, req.WithDriver)
		if err != nil {
			return priced{}, err
		}
		return priced{quote: q, capacity: 1}, nil

	case domain.KindTour:
		t, err := s.store.GetTour(ctx, req.ItemID)
		if err != nil {
			return priced{}, err
		}
		if !domain.Day(t.StartDate).After(today) {
			return priced{}, domain.Invalid("item_id", "tour has already departed")
		}
		q, err := domain.QuoteTour(t, req.Quantity)
		if err != nil {
			return priced{}, err
		}
		return priced{quote: q, capacity: t.Capacity}, nil
	}
	return priced{}, domain.Invalid("kind", fmt.Sprintf("unknown kind %q", req.Kind))
}

func normalizeRequest(req domain.BookingRequest) domain.BookingRequest {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	return req
}

// Quote prices a request without reserving anything.
func (s *BookingService) Quote(ctx context.Context, req domain.BookingRequest) (domain.Quote, error) {
	p, err := s.price(ctx, normalizeRequest(req))
	if err != nil {
		return domain.Quote{}, err
	}
	return p.quote, nil
}

func (s *BookingService) Create(ctx context.Context, caller domain.Principal, req domain.BookingRequest) (domain.Booking, error) {
	if caller.UserID == 0 {
		return domain.Booking{}, domain.ErrUnauthorized
	}
	req = normalizeRequest(req)
	p, err := s.price(ctx, req)
	if err != nil {
		return domain.Booking{}, err
	}
	if req.GuestName == "" || req.GuestEmail == "" {
		u, err := s.store.GetUser(ctx, caller.UserID)
		if err != nil {
			return domain.Booking{}, err
		}
		if req.GuestName == "" {
			req.GuestName = u.Name
		}
		if req.GuestEmail == "" {
			req.GuestEmail = u.Email
		}
	}
	now := s.now().UTC()
	b := domain.Booking{
		Reference:  s.ref(),
		UserID:     caller.UserID,
		Kind:       req.Kind,
		ItemID:     req.ItemID,
		HotelID:    p.hotelID,
		Start:      p.quote.Start,
		End:        p.quote.End,
		Quantity:   p.quote.Units,
		WithDriver: req.WithDriver,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestPhone: req.GuestPhone,
		Status:     domain.StatusPending,
		TotalCents: p.quote.TotalCents,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s.store.Reserve(ctx, b, p.capacity)
}

// canSee: the guest who booked, the owner of the booked hotel, or a super-admin.
func (s *BookingService) canSee(ctx context.Context, caller domain.Principal, b domain.Booking) error {
	if caller.UserID == 0 {
		return domain.ErrUnauthorized
	}
	if caller.IsSuperAdmin() || b.UserID == caller.UserID {
		return nil
	}
	return s.ownsBookedHotel(ctx, caller, b)
}

func (s *BookingService) ownsBookedHotel(ctx context.Context, caller domain.Principal, b domain.Booking) error {
	if caller.IsSuperAdmin() {
		return nil
	}
	if caller.IsAdmin() && b.HotelID != nil {
		h, err := s.store.GetHotel(ctx, *b.HotelID)
		if err != nil && !isNotFound(err) {
			return err
		}
		if err == nil && h.OwnerID == caller.UserID {
			return nil
		}
	}
	return fmt.Errorf("booking %d: %w", b.ID, domain.ErrForbidden)
}

func (s *BookingService) Get(ctx context.Context, caller domain.Principal, id int64) (domain.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := s.canSee(ctx, caller, b); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

// List narrows f to what the caller may see.
func (s *BookingService) List(ctx context.Context, caller domain.Principal, f domain.BookingFilter) ([]domain.Booking, error) {
	switch caller.Role {
	case domain.RoleSuperAdmin:
	case domain.RoleAdmin:
		id := caller.UserID
		f.OwnerID = &id
		f.UserID = nil
	case domain.RoleGuest:
		id := caller.UserID
		f.UserID = &id
		f.OwnerID = nil
	default:
		return nil, domain.ErrUnauthorized
	}
	if caller.UserID == 0 {
		return nil, domain.ErrUnauthorized
	}
	if f.Limit <= 0 || f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	return s.store.ListBookings(ctx, f)
}

func (s *BookingService) Cancel(ctx context.Context, caller domain.Principal, id int64) (domain.Booking, error) {
	b, err := s.Get(ctx, caller, id)
	if err != nil {
		return domain.Booking{}, err
	}
	return s.move(ctx, b, domain.StatusCancelled)
}

func (s *BookingService) Confirm(ctx context.Context, caller domain.Principal, id int64) (domain.Booking, error) {
	return s.manage(ctx, caller, id, domain.StatusConfirmed)
}

func (s *BookingService) Complete(ctx context.Context, caller domain.Principal, id int64) (domain.Booking, error) {
	return s.manage(ctx, caller, id, domain.StatusCompleted)
}

func (s *BookingService) manage(ctx context.Context, caller domain.Principal, id int64, to domain.BookingStatus) (domain.Booking, error) {
	if err := requireRole(caller, domain.RoleAdmin, domain.RoleSuperAdmin); err != nil {
		return domain.Booking{}, err
	}
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := s.ownsBookedHotel(ctx, caller, b); err != nil {
		return domain.Booking{}, err
	}
	return s.move(ctx, b, to)
}

func (s *BookingService) move(ctx context.Context, b domain.Booking, to domain.BookingStatus) (domain.Booking, error) {
	if !b.Status.CanTransition(to) {
		return domain.Booking{}, fmt.Errorf("booking %d is %s, cannot become %s: %w", b.ID, b.Status, to, domain.ErrConflict)
	}
	return s.store.UpdateStatus(ctx, b.ID, b.Status, to)
}

package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pine_hotel/internal/app"
	"pine_hotel/internal/domain"
)

func roomReq(w *world, start, end string, units int) domain.BookingRequest {
	return domain.BookingRequest{Kind: domain.KindRoom, ItemID: w.room.ID, Start: day(start), End: day(end), Quantity: units}
}

func TestQuote_PerKind(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	svc := app.NewBookingService(w.store).WithClock(clock("2030-01-10"))

	q, err := svc.Quote(ctx, roomReq(w, "2030-01-20", "2030-01-23", 2))
	if err != nil {
		t.Fatalf("room quote: %v", err)
	}
	if q.Periods != 3 || q.TotalCents != 60_000 {
		t.Fatalf("room: 3 nights x 2 units x 100.00, got %+v", q)
	}

	q, err = svc.Quote(ctx, domain.BookingRequest{Kind: domain.KindCar, ItemID: w.car.ID, Start: day("2030-01-20"), End: day("2030-01-20"), WithDriver: true})
	if err != nil {
		t.Fatalf("car quote: %v", err)
	}
	if q.Periods != 1 || q.TotalCents != 10_000 || !q.End.Equal(day("2030-01-21")) {
		t.Fatalf("car: same-day rental is one day with driver, got %+v", q)
	}

	q, err = svc.Quote(ctx, domain.BookingRequest{Kind: domain.KindTour, ItemID: w.tour.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("tour quote: %v", err)
	}
	if q.TotalCents != 75_000 || !q.Start.Equal(day("2030-02-01")) || !q.End.Equal(day("2030-02-04")) {
		t.Fatalf("tour: 3 people, dates from the tour, got %+v", q)
	}
}

func TestCreate_Rules(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	svc := app.NewBookingService(w.store).WithClock(clock("2030-01-10"))

	cases := []struct {
		name string
		req  domain.BookingRequest
		want error
	}{
		{"past check-in", roomReq(w, "2030-01-09", "2030-01-12", 1), domain.ErrInvalid},
		{"zero nights", roomReq(w, "2030-01-20", "2030-01-20", 1), domain.ErrInvalid},
		{"more units than the room has", roomReq(w, "2030-01-20", "2030-01-22", 3), domain.ErrInvalid},
		{"unknown room", domain.BookingRequest{Kind: domain.KindRoom, ItemID: 999, Start: day("2030-01-20"), End: day("2030-01-21")}, domain.ErrNotFound},
		{"two cars at once", domain.BookingRequest{Kind: domain.KindCar, ItemID: w.car.ID, Start: day("2030-01-20"), End: day("2030-01-21"), Quantity: 2}, domain.ErrInvalid},
		{"tour over capacity", domain.BookingRequest{Kind: domain.KindTour, ItemID: w.tour.ID, Quantity: 11}, domain.ErrInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, w.guest, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := svc.Create(ctx, domain.Principal{}, roomReq(w, "2030-01-20", "2030-01-22", 1)); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous: want ErrUnauthorized, got %v", err)
	}

	departed := app.NewBookingService(w.store).WithClock(clock("2030-02-01"))
	if _, err := departed.Create(ctx, w.guest, domain.BookingRequest{Kind: domain.KindTour, ItemID: w.tour.ID}); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("departed tour: want ErrInvalid, got %v", err)
	}
}

func TestCreate_NoDoubleBooking(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	svc := app.NewBookingService(w.store).WithClock(clock("2030-01-10"))

	b, err := svc.Create(ctx, w.guest, roomReq(w, "2030-01-20", "2030-01-23", 1))
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if b.Status != domain.StatusPending || b.Reference == "" || b.GuestEmail != w.guest.Email {
		t.Fatalf("unexpected booking %+v", b)
	}
	if b.HotelID == nil || *b.HotelID != w.hotel.ID {
		t.Fatalf("room booking should carry its hotel, got %v", b.HotelID)
	}
	if _, err := svc.Create(ctx, w.guest2, roomReq(w, "2030-01-22", "2030-01-25", 1)); err != nil {
		t.Fatalf("second unit: %v", err)
	}
	if _, err := svc.Create(ctx, w.guest2, roomReq(w, "2030-01-21", "2030-01-22", 1)); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("third overlapping: want ErrUnavailable, got %v", err)
	}
	// check-out day is free again
	if _, err := svc.Create(ctx, w.guest2, roomReq(w, "2030-01-23", "2030-01-24", 1)); err != nil {
		t.Fatalf("back-to-back: %v", err)
	}
}

func TestCreate_ConcurrentCar(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	svc := app.NewBookingService(w.store).WithClock(clock("2030-01-10"))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, w.guest, domain.BookingRequest{Kind: domain.KindCar, ItemID: w.car.ID, Start: day("2030-01-15"), End: day("2030-01-17")})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if ok != 1 {
		t.Fatalf("exactly one rental should win, got %d", ok)
	}
}

func TestVisibilityAndTransitions(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	svc := app.NewBookingService(w.store).WithClock(clock("2030-01-10"))

	b, err := svc.Create(ctx, w.guest, roomReq(w, "2030-01-20", "2030-01-21", 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	car, err := svc.Create(ctx, w.guest2, domain.BookingRequest{Kind: domain.KindCar, ItemID: w.car.ID, Start: day("2030-01-20"), End: day("2030-01-22")})
	if err != nil {
		t.Fatalf("create car: %v", err)
	}

	if _, err := svc.Get(ctx, w.guest2, b.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other guest: want ErrForbidden, got %v", err)
	}
	if _, err := svc.Get(ctx, w.rival, b.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("rival admin: want ErrForbidden, got %v", err)
	}
	if _, err := svc.Get(ctx, w.owner, b.ID); err != nil {
		t.Fatalf("hotel owner: %v", err)
	}

	mine, _ := svc.List(ctx, w.guest, domain.BookingFilter{})
	if len(mine) != 1 || mine[0].ID != b.ID {
		t.Fatalf("guest list: %+v", mine)
	}
	owned, _ := svc.List(ctx, w.owner, domain.BookingFilter{})
	if len(owned) != 1 || owned[0].ID != b.ID {
		t.Fatalf("owner sees only their hotel's bookings: %+v", owned)
	}
	all, _ := svc.List(ctx, w.root, domain.BookingFilter{})
	if len(all) != 2 {
		t.Fatalf("root sees everything, got %d", len(all))
	}

	if _, err := svc.Confirm(ctx, w.guest, b.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("guest confirm: want ErrForbidden, got %v", err)
	}
	if _, err := svc.Confirm(ctx, w.owner, car.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("owner confirming a car: want ErrForbidden, got %v", err)
	}
	if _, err := svc.Complete(ctx, w.owner, b.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("complete pending: want ErrConflict, got %v", err)
	}
	got, err := svc.Confirm(ctx, w.owner, b.ID)
	if err != nil || got.Status != domain.StatusConfirmed {
		t.Fatalf("confirm: %+v %v", got, err)
	}
	got, err = svc.Complete(ctx, w.root, b.ID)
	if err != nil || got.Status != domain.StatusCompleted {
		t.Fatalf("complete: %+v %v", got, err)
	}
	if _, err := svc.Cancel(ctx, w.guest, b.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("cancel completed: want ErrConflict, got %v", err)
	}

	got, err = svc.Cancel(ctx, w.guest2, car.ID)
	if err != nil || got.Status != domain.StatusCancelled {
		t.Fatalf("cancel car: %+v %v", got, err)
	}
}

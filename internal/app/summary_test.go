package app_test

import (
	"context"
	"errors"
	"testing"

	"pine_hotel/internal/app"
	"pine_hotel/internal/domain"
)

func TestDashboard_ScopedByRole(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	bookings := app.NewBookingService(w.store).WithClock(clock("2030-01-01"))
	svc := app.NewSummaryService(w.store)

	book := func(caller domain.Principal, req domain.BookingRequest) domain.Booking {
		t.Helper()
		b, err := bookings.Create(ctx, caller, req)
		if err != nil {
			t.Fatalf("book %+v: %v", req, err)
		}
		return b
	}
	room1 := book(w.guest, roomReq(w, "2030-01-10", "2030-01-12", 1))  // 200.00
	room2 := book(w.guest2, roomReq(w, "2030-02-03", "2030-02-04", 1)) // 100.00
	book(w.guest, roomReq(w, "2030-01-20", "2030-01-21", 1))           // stays pending
	cancelled := book(w.guest2, roomReq(w, "2030-01-25", "2030-01-26", 1))
	car := book(w.guest, domain.BookingRequest{Kind: domain.KindCar, ItemID: w.car.ID, Start: day("2030-01-15"), End: day("2030-01-17")}) // 120.00
	tour := book(w.guest2, domain.BookingRequest{Kind: domain.KindTour, ItemID: w.tour.ID, Quantity: 2})                                  // 500.00

	for _, id := range []int64{room1.ID, room2.ID, car.ID, tour.ID} {
		if _, err := bookings.Confirm(ctx, w.root, id); err != nil {
			t.Fatalf("confirm %d: %v", id, err)
		}
	}
	if _, err := bookings.Complete(ctx, w.root, room1.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := bookings.Cancel(ctx, w.guest2, cancelled.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	all, err := svc.Dashboard(ctx, w.root, day("2030-01-01"), day("2030-02-28"))
	if err != nil {
		t.Fatalf("root dashboard: %v", err)
	}
	if all.TotalCents != 92_000 || all.Bookings != 4 {
		t.Fatalf("root totals: %+v", all)
	}
	if all.Rooms.RevenueCents != 30_000 || all.Cars.RevenueCents != 12_000 || all.Tours.RevenueCents != 50_000 {
		t.Fatalf("per service: rooms=%+v cars=%+v tours=%+v", all.Rooms, all.Cars, all.Tours)
	}
	if all.Pending != 1 || all.Cancelled != 1 {
		t.Fatalf("pending=%d cancelled=%d", all.Pending, all.Cancelled)
	}
	if len(all.Months) != 2 || all.Months[0].Month != "2030-01" || all.Months[1].RevenueCents != 60_000 {
		t.Fatalf("months: %+v", all.Months)
	}
	if all.Counts.Users != 5 || all.Counts.Cars != 1 || all.Counts.Tours != 1 {
		t.Fatalf("counts: %+v", all.Counts)
	}

	own, err := svc.Dashboard(ctx, w.owner, day("2030-01-01"), day("2030-01-31"))
	if err != nil {
		t.Fatalf("owner dashboard: %v", err)
	}
	if own.TotalCents != 20_000 || own.Cars.Bookings != 0 || own.Tours.Bookings != 0 {
		t.Fatalf("owner sees January rooms only: %+v", own)
	}
	if own.Counts.Hotels != 1 || own.Counts.Users != 0 {
		t.Fatalf("owner counts: %+v", own.Counts)
	}

	rival, err := svc.Dashboard(ctx, w.rival, day("2030-01-01"), day("2030-12-31"))
	if err != nil {
		t.Fatalf("rival dashboard: %v", err)
	}
	if rival.TotalCents != 0 || rival.Counts.Hotels != 0 {
		t.Fatalf("rival owns nothing: %+v", rival)
	}
}

func TestDashboard_Rejects(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	svc := app.NewSummaryService(w.store)

	if _, err := svc.Dashboard(ctx, w.guest, day("2030-01-01"), day("2030-01-31")); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("guest: want ErrForbidden, got %v", err)
	}
	if _, err := svc.Dashboard(ctx, domain.Principal{}, day("2030-01-01"), day("2030-01-31")); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous: want ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Dashboard(ctx, w.root, day("2030-02-01"), day("2030-01-01")); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("reversed range: want ErrInvalid, got %v", err)
	}
}

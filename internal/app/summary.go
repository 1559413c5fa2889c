package app

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pine_hotel/internal/domain"
)

type SummaryService struct {
	store domain.Store
}

func NewSummaryService(s domain.Store) *SummaryService {
	return &SummaryService{store: s}
}

// Dashboard aggregates revenue over [from, to]. Hotel owners see room revenue of
// their own hotels; super-admins see every service.
func (s *SummaryService) Dashboard(ctx context.Context, caller domain.Principal, from, to time.Time) (domain.Summary, error) {
	if err := requireRole(caller, domain.RoleAdmin, domain.RoleSuperAdmin); err != nil {
		return domain.Summary{}, err
	}
	from, to = domain.Day(from), domain.Day(to)
	if to.Before(from) {
		return domain.Summary{}, domain.Invalid("to", "must not be before from")
	}

	var owner *int64
	kinds := []domain.BookingKind{domain.KindRoom, domain.KindCar, domain.KindTour}
	if !caller.IsSuperAdmin() {
		id := caller.UserID
		owner = &id
		kinds = kinds[:1]
	}

	var (
		mu     sync.Mutex
		rows   []domain.RevenueRow
		counts domain.Counts
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, k := range kinds {
		k := k
		g.Go(func() error {
			rs, err := s.store.RevenueRows(gctx, domain.RevenueQuery{Kind: k, OwnerID: owner, From: from, To: to})
			if err != nil {
				return err
			}
			mu.Lock()
			rows = append(rows, rs...)
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() (err error) {
		counts.Hotels, err = s.store.CountHotels(gctx, owner)
		return err
	})
	g.Go(func() (err error) {
		counts.Rooms, err = s.store.CountRooms(gctx, owner)
		return err
	})
	if caller.IsSuperAdmin() {
		g.Go(func() (err error) {
			counts.Cars, err = s.store.CountCars(gctx)
			return err
		})
		g.Go(func() (err error) {
			counts.Tours, err = s.store.CountTours(gctx)
			return err
		})
		g.Go(func() (err error) {
			counts.Users, err = s.store.CountUsers(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Summary{}, err
	}

	sum := domain.Summarize(rows, from, to)
	sum.Counts = counts
	return sum, nil
}

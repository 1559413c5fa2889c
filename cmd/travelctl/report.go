package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"pine_hotel/internal/domain"
)

// monthRange returns the first and last day of the month t falls in.
func monthRange(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

func (c *cli) summary(ctx context.Context, args []string) error {
	fs := newFlags("summary")
	fromS := fs.String("from", "", "first day YYYY-MM-DD (default: start of this month)")
	toS := fs.String("to", "", "last day YYYY-MM-DD (default: end of this month)")
	if err := parse(fs, args); err != nil {
		return err
	}
	from, to := monthRange(c.now().UTC())
	var err error
	if *fromS != "" {
		if from, err = domain.ParseDate("from", *fromS); err != nil {
			return err
		}
	}
	if *toS != "" {
		if to, err = domain.ParseDate("to", *toS); err != nil {
			return err
		}
	}
	cl, _, err := c.client()
	if err != nil {
		return err
	}
	s, err := cl.Summary(ctx, from, to)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "revenue %s..%s\n", s.From.Format(domain.DateLayout), s.To.Format(domain.DateLayout))
	if err := table(c.out, "SERVICE\tBOOKINGS\tREVENUE", func(w io.Writer) {
		fmt.Fprintf(w, "rooms\t%d\t%s\n", s.Rooms.Bookings, money(s.Rooms.RevenueCents))
		fmt.Fprintf(w, "cars\t%d\t%s\n", s.Cars.Bookings, money(s.Cars.RevenueCents))
		fmt.Fprintf(w, "tours\t%d\t%s\n", s.Tours.Bookings, money(s.Tours.RevenueCents))
		fmt.Fprintf(w, "total\t%d\t%s\n", s.Bookings, money(s.TotalCents))
	}); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "pending %d, cancelled %d\n", s.Pending, s.Cancelled)
	fmt.Fprintf(c.out, "hotels %d, rooms %d", s.Counts.Hotels, s.Counts.Rooms)
	if s.Counts.Users > 0 {
		fmt.Fprintf(c.out, ", cars %d, tours %d, users %d", s.Counts.Cars, s.Counts.Tours, s.Counts.Users)
	}
	fmt.Fprintln(c.out)
	return nil
}

// report fetches one summary per month for the last n months, at most
// REPORT_WORKERS at a time.
func (c *cli) report(ctx context.Context, args []string) error {
	fs := newFlags("report")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("report: expected the number of months: %w", errUsage)
	}
	n, err := strconv.Atoi(fs.Arg(0))
	if err != nil || n < 1 || n > 36 {
		return fmt.Errorf("report: months must be between 1 and 36")
	}
	cl, _, err := c.client()
	if err != nil {
		return err
	}

	workers := c.cfg.ReportWorkers
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	results := make([]domain.Summary, n)
	current, _ := monthRange(c.now().UTC())

	for i := 0; i < n; i++ {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)

			from, to := monthRange(current.AddDate(0, -(n - 1 - i), 0))
			s, err := cl.Summary(ctx, from, to)
			if err != nil {
				log.Warn().Err(err).Str("month", from.Format("2006-01")).Msg("summary failed")
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", from.Format("2006-01"), err)
				}
				mu.Unlock()
				return
			}
			results[i] = s
		}(i)
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var total int64
	return table(c.out, "MONTH\tBOOKINGS\tROOMS\tCARS\tTOURS\tREVENUE", func(w io.Writer) {
		for _, s := range results {
			total += s.TotalCents
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n", s.From.Format("2006-01"), s.Bookings,
				money(s.Rooms.RevenueCents), money(s.Cars.RevenueCents), money(s.Tours.RevenueCents), money(s.TotalCents))
		}
		fmt.Fprintf(w, "total\t\t\t\t\t%s\n", money(total))
	})
}

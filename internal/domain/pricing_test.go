package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pine_hotel/internal/domain"
)

func date(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNights(t *testing.T) {
	n, err := domain.Nights(date("2026-03-01"), date("2026-03-04"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// time of day is ignored
	n, err = domain.Nights(date("2026-03-01").Add(22*time.Hour), date("2026-03-02").Add(1*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = domain.Nights(date("2026-03-04"), date("2026-03-04"))
	assert.True(t, errors.Is(err, domain.ErrInvalid))
}

func TestQuoteRoom(t *testing.T) {
	room := domain.Room{ID: 7, Units: 3, PriceCents: 12_500}

	tests := []struct {
		name    string
		in, out string
		units   int
		want    int64
		wantErr bool
	}{
		{name: "two nights one unit", in: "2026-05-01", out: "2026-05-03", units: 1, want: 25_000},
		{name: "two nights two units", in: "2026-05-01", out: "2026-05-03", units: 2, want: 50_000},
		{name: "more units than the room has", in: "2026-05-01", out: "2026-05-03", units: 4, wantErr: true},
		{name: "zero units", in: "2026-05-01", out: "2026-05-03", units: 0, wantErr: true},
		{name: "reversed dates", in: "2026-05-03", out: "2026-05-01", units: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := domain.QuoteRoom(room, date(tt.in), date(tt.out), tt.units)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.TotalCents)
			assert.Equal(t, domain.KindRoom, q.Kind)
			assert.Equal(t, 2, q.Periods)
		})
	}
}

func TestQuoteCar(t *testing.T) {
	car := domain.Car{ID: 3, PriceCents: 4_000, DriverAvailable: true, DriverPriceCents: 2_500}

	q, err := domain.QuoteCar(car, date("2026-06-10"), date("2026-06-13"), false)
	require.NoError(t, err)
	assert.Equal(t, int64(12_000), q.TotalCents)
	assert.Equal(t, date("2026-06-13"), q.End)

	q, err = domain.QuoteCar(car, date("2026-06-10"), date("2026-06-13"), true)
	require.NoError(t, err)
	assert.Equal(t, int64(19_500), q.TotalCents)

	// same-day rental is billed as a day and blocks the car for that day
	q, err = domain.QuoteCar(car, date("2026-06-10"), date("2026-06-10"), false)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Periods)
	assert.Equal(t, date("2026-06-11"), q.End)

	_, err = domain.QuoteCar(domain.Car{PriceCents: 1}, date("2026-06-10"), date("2026-06-11"), true)
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = domain.QuoteCar(car, date("2026-06-10"), date("2026-06-09"), false)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestQuoteTour(t *testing.T) {
	tour := domain.Tour{ID: 1, StartDate: date("2026-07-01"), DurationDays: 5, Capacity: 10, PriceCents: 30_000}

	q, err := domain.QuoteTour(tour, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(120_000), q.TotalCents)
	assert.Equal(t, date("2026-07-06"), q.End)

	_, err = domain.QuoteTour(tour, 11)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestOverlaps(t *testing.T) {
	a1, a2 := date("2026-01-01"), date("2026-01-05")
	assert.True(t, domain.Overlaps(a1, a2, date("2026-01-04"), date("2026-01-06")))
	assert.False(t, domain.Overlaps(a1, a2, date("2026-01-05"), date("2026-01-06")), "checkout day is free")
	assert.False(t, domain.Overlaps(a1, a2, date("2025-12-28"), a1))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, domain.StatusPending.CanTransition(domain.StatusConfirmed))
	assert.True(t, domain.StatusPending.CanTransition(domain.StatusCancelled))
	assert.False(t, domain.StatusPending.CanTransition(domain.StatusCompleted))
	assert.True(t, domain.StatusConfirmed.CanTransition(domain.StatusCompleted))
	assert.False(t, domain.StatusCancelled.CanTransition(domain.StatusConfirmed))
	assert.False(t, domain.StatusCompleted.CanTransition(domain.StatusCancelled))
}

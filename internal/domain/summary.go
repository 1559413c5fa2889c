package domain

import (
	"sort"
	"time"
)

// RevenueRow is the slice of a booking the dashboard needs.
type RevenueRow struct {
	Kind       BookingKind
	Status     BookingStatus
	Start      time.Time
	TotalCents int64
}

type KindTotal struct {
	Bookings     int   `json:"bookings"`
	RevenueCents int64 `json:"revenue_cents"`
}

type MonthTotal struct {
	Month        string `json:"month"` // YYYY-MM
	Bookings     int    `json:"bookings"`
	RevenueCents int64  `json:"revenue_cents"`
}

type Counts struct {
	Hotels int `json:"hotels"`
	Rooms  int `json:"rooms"`
	Cars   int `json:"cars,omitempty"`
	Tours  int `json:"tours,omitempty"`
	Users  int `json:"users,omitempty"`
}

type Summary struct {
	From       time.Time    `json:"from"`
	To         time.Time    `json:"to"`
	Rooms      KindTotal    `json:"rooms"`
	Cars       KindTotal    `json:"cars"`
	Tours      KindTotal    `json:"tours"`
	TotalCents int64        `json:"total_cents"`
	Bookings   int          `json:"bookings"`
	Cancelled  int          `json:"cancelled"`
	Pending    int          `json:"pending"`
	Months     []MonthTotal `json:"months"`
	Counts     Counts       `json:"counts"`
}

// Summarize aggregates billable revenue whose start date lies in [from, to].
func Summarize(rows []RevenueRow, from, to time.Time) Summary {
	from, to = Day(from), Day(to)
	s := Summary{From: from, To: to, Months: []MonthTotal{}}
	months := map[string]*MonthTotal{}

	for _, r := range rows {
		d := Day(r.Start)
		if d.Before(from) || d.After(to) {
			continue
		}
		switch {
		case r.Status == StatusCancelled:
			s.Cancelled++
			continue
		case r.Status == StatusPending:
			s.Pending++
			continue
		case !r.Status.Billable():
			continue
		}

		var kt *KindTotal
		switch r.Kind {
		case KindRoom:
			kt = &s.Rooms
		case KindCar:
			kt = &s.Cars
		case KindTour:
			kt = &s.Tours
		default:
			continue
		}
		kt.Bookings++
		kt.RevenueCents += r.TotalCents
		s.Bookings++
		s.TotalCents += r.TotalCents

		key := d.Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &MonthTotal{Month: key}
			months[key] = m
		}
		m.Bookings++
		m.RevenueCents += r.TotalCents
	}

	for _, m := range months {
		s.Months = append(s.Months, *m)
	}
	sort.Slice(s.Months, func(i, j int) bool { return s.Months[i].Month < s.Months[j].Month })
	return s
}

package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses YYYY-MM-DD into a UTC midnight.
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, Invalid(field, "expected YYYY-MM-DD")
	}
	return t, nil
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights counts whole calendar days between check-in and check-out.
func Nights(checkIn, checkOut time.Time) (int, error) {
	in, out := Day(checkIn), Day(checkOut)
	if !out.After(in) {
		return 0, Invalid("end", "check-out must be after check-in")
	}
	return int(out.Sub(in).Hours() / 24), nil
}

// Overlaps checks half-open ranges [aStart,aEnd) and [bStart,bEnd).
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func QuoteRoom(r Room, checkIn, checkOut time.Time, units int) (Quote, error) {
	if units < 1 {
		return Quote{}, Invalid("quantity", "must be at least 1")
	}
	if units > r.Units {
		return Quote{}, Invalid("quantity", fmt.Sprintf("room has only %d units", r.Units))
	}
	n, err := Nights(checkIn, checkOut)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Kind:       KindRoom,
		ItemID:     r.ID,
		Start:      Day(checkIn),
		End:        Day(checkOut),
		Units:      units,
		Periods:    n,
		TotalCents: int64(n) * r.PriceCents * int64(units),
	}, nil
}

// QuoteCar prices a rental; a same-day rental counts as one day.
func QuoteCar(c Car, pickUp, dropOff time.Time, withDriver bool) (Quote, error) {
	if withDriver && !c.DriverAvailable {
		return Quote{}, Invalid("with_driver", "car is not offered with a driver")
	}
	start, end := Day(pickUp), Day(dropOff)
	if end.Before(start) {
		return Quote{}, Invalid("end", "drop-off must not be before pick-up")
	}
	days := int(end.Sub(start).Hours() / 24)
	if days == 0 {
		days = 1
	}
	rate := c.PriceCents
	if withDriver {
		rate += c.DriverPriceCents
	}
	return Quote{
		Kind:       KindCar,
		ItemID:     c.ID,
		Start:      start,
		End:        start.AddDate(0, 0, days),
		Units:      1,
		Periods:    days,
		TotalCents: int64(days) * rate,
	}, nil
}

func QuoteTour(t Tour, people int) (Quote, error) {
	if people < 1 {
		return Quote{}, Invalid("quantity", "must be at least 1")
	}
	if people > t.Capacity {
		return Quote{}, Invalid("quantity", fmt.Sprintf("tour takes at most %d people", t.Capacity))
	}
	return Quote{
		Kind:       KindTour,
		ItemID:     t.ID,
		Start:      Day(t.StartDate),
		End:        Day(t.EndDate()),
		Units:      people,
		Periods:    t.DurationDays,
		TotalCents: int64(people) * t.PriceCents,
	}, nil
}

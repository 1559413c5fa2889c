package domain

import (
	"fmt"
	"time"
)

type BookingKind string

const (
	KindRoom BookingKind = "room"
	KindCar  BookingKind = "car"
	KindTour BookingKind = "tour"
)

func ParseKind(s string) (BookingKind, error) {
	switch k := BookingKind(s); k {
	case KindRoom, KindCar, KindTour:
		return k, nil
	}
	return "", Invalid("kind", fmt.Sprintf("unknown kind %q", s))
}

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

func ParseStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", Invalid("status", fmt.Sprintf("unknown status %q", s))
}

// CanTransition reports whether a booking in status s may move to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

// Active bookings hold inventory.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Billable bookings count towards revenue.
func (s BookingStatus) Billable() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

type Booking struct {
	ID         int64         `json:"id"`
	Reference  string        `json:"reference"`
	UserID     int64         `json:"user_id"`
	Kind       BookingKind   `json:"kind"`
	ItemID     int64         `json:"item_id"`
	HotelID    *int64        `json:"hotel_id,omitempty"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	Quantity   int           `json:"quantity"`
	WithDriver bool          `json:"with_driver"`
	GuestName  string        `json:"guest_name"`
	GuestEmail string        `json:"guest_email"`
	GuestPhone string        `json:"guest_phone,omitempty"`
	Status     BookingStatus `json:"status"`
	TotalCents int64         `json:"total_cents"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// BookingRequest is what a guest submits; dates are interpreted per kind.
type BookingRequest struct {
	Kind       BookingKind
	ItemID     int64
	Start      time.Time
	End        time.Time
	Quantity   int
	WithDriver bool
	GuestName  string
	GuestEmail string
	GuestPhone string
}

type Quote struct {
	Kind       BookingKind `json:"kind"`
	ItemID     int64       `json:"item_id"`
	Start      time.Time   `json:"start"`
	End        time.Time   `json:"end"`
	Units      int         `json:"units"`
	Periods    int         `json:"periods"` // nights, rental days or tour days
	TotalCents int64       `json:"total_cents"`
}

type BookingFilter struct {
	UserID   *int64
	OwnerID  *int64 // bookings of rooms in hotels owned by this user
	Kind     *BookingKind
	Status   *BookingStatus
	HotelIDs []int64
	Limit    int
}

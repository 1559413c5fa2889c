package domain

import (
	"context"
	"time"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u User) (User, error) // ErrConflict on duplicate email
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CountUsers(ctx context.Context) (int, error)
}

type HotelRepository interface {
	CreateHotel(ctx context.Context, h Hotel) (Hotel, error)
	UpdateHotel(ctx context.Context, h Hotel) (Hotel, error)
	DeleteHotel(ctx context.Context, id int64) error
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	ListHotels(ctx context.Context, q HotelsQuery) (HotelsPage, error)
	CountHotels(ctx context.Context, ownerID *int64) (int, error)
}

type RoomRepository interface {
	CreateRoom(ctx context.Context, r Room) (Room, error)
	UpdateRoom(ctx context.Context, r Room) (Room, error)
	DeleteRoom(ctx context.Context, id int64) error
	GetRoom(ctx context.Context, id int64) (Room, error)
	ListRooms(ctx context.Context, hotelID int64) ([]Room, error)
	CountRooms(ctx context.Context, ownerID *int64) (int, error)
}

type CarRepository interface {
	CreateCar(ctx context.Context, c Car) (Car, error)
	UpdateCar(ctx context.Context, c Car) (Car, error)
	DeleteCar(ctx context.Context, id int64) error
	GetCar(ctx context.Context, id int64) (Car, error)
	ListCars(ctx context.Context, q CarsQuery) ([]Car, error)
	CountCars(ctx context.Context) (int, error)
}

type GuideRepository interface {
	CreateGuide(ctx context.Context, g Guide) (Guide, error)
	UpdateGuide(ctx context.Context, g Guide) (Guide, error)
	DeleteGuide(ctx context.Context, id int64) error
	GetGuide(ctx context.Context, id int64) (Guide, error)
	ListGuides(ctx context.Context) ([]Guide, error)
}

type TourRepository interface {
	CreateTour(ctx context.Context, t Tour) (Tour, error)
	UpdateTour(ctx context.Context, t Tour) (Tour, error)
	DeleteTour(ctx context.Context, id int64) error
	GetTour(ctx context.Context, id int64) (Tour, error)
	ListTours(ctx context.Context, q ToursQuery) ([]Tour, error)
	CountTours(ctx context.Context) (int, error)
}

type BookingRepository interface {
	// Reserve inserts b when the active units already booked for the same item over
	// [b.Start, b.End) plus b.Quantity fit in capacity. Returns ErrUnavailable otherwise.
	Reserve(ctx context.Context, b Booking, capacity int) (Booking, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	ListBookings(ctx context.Context, f BookingFilter) ([]Booking, error)
	// UpdateStatus moves a booking from one status to another; ErrConflict if it is no longer in from.
	UpdateStatus(ctx context.Context, id int64, from, to BookingStatus) (Booking, error)
	// ReservedUnits sums active units of an item overlapping [start, end).
	ReservedUnits(ctx context.Context, kind BookingKind, itemID int64, start, end time.Time) (int, error)
	RevenueRows(ctx context.Context, q RevenueQuery) ([]RevenueRow, error)
}

// Store bundles every repository of one backend.
type Store interface {
	UserRepository
	HotelRepository
	RoomRepository
	CarRepository
	GuideRepository
	TourRepository
	BookingRepository
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type TokenIssuer interface {
	Issue(u User) (string, time.Time, error)
	Parse(token string) (Principal, error)
}

// Read models & queries
type HotelsQuery struct {
	Q       string
	City    string
	OwnerID *int64
	Limit   int
	Cursor  int64 // last id of the previous page
}

type HotelsPage struct {
	Items      []Hotel `json:"items"`
	NextCursor *int64  `json:"next_cursor,omitempty"`
}

type CarsQuery struct {
	City       string
	WithDriver bool
}

type ToursQuery struct {
	Location string
	From     *time.Time
}

type RevenueQuery struct {
	Kind    BookingKind
	OwnerID *int64
	From    time.Time
	To      time.Time
}

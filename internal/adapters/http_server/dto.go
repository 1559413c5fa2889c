package httpserver

import (
	"pine_hotel/internal/app"
	"pine_hotel/internal/domain"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createUserRequest struct {
	registerRequest
	Role string `json:"role" validate:"required,oneof=guest admin superadmin"`
}

func (r registerRequest) toNewUser() app.NewUser {
	return app.NewUser{Email: r.Email, Name: r.Name, Password: r.Password}
}

type hotelRequest struct {
	OwnerID     int64    `json:"owner_id" validate:"gte=0"`
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description"`
	City        string   `json:"city" validate:"required,max=128"`
	Country     string   `json:"country" validate:"max=128"`
	Address     string   `json:"address" validate:"max=512"`
	Stars       int      `json:"stars" validate:"gte=0,lte=5"`
	Amenities   []string `json:"amenities" validate:"dive,required"`
	Images      []string `json:"images" validate:"dive,url"`
}

func (r hotelRequest) toDomain(id int64) domain.Hotel {
	return domain.Hotel{
		ID: id, OwnerID: r.OwnerID, Name: r.Name, Description: r.Description, City: r.City,
		Country: r.Country, Address: r.Address, Stars: r.Stars, Amenities: r.Amenities, Images: r.Images,
	}
}

type roomRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Type        string   `json:"type" validate:"max=64"`
	Description string   `json:"description"`
	Capacity    int      `json:"capacity" validate:"required,gte=1"`
	Units       int      `json:"units" validate:"required,gte=1"`
	PriceCents  int64    `json:"price_cents" validate:"gte=0"`
	Amenities   []string `json:"amenities" validate:"dive,required"`
	Images      []string `json:"images" validate:"dive,url"`
}

func (r roomRequest) toDomain(id, hotelID int64) domain.Room {
	return domain.Room{
		ID: id, HotelID: hotelID, Name: r.Name, Type: r.Type, Description: r.Description,
		Capacity: r.Capacity, Units: r.Units, PriceCents: r.PriceCents, Amenities: r.Amenities, Images: r.Images,
	}
}

type carRequest struct {
	Make             string   `json:"make" validate:"required,max=128"`
	Model            string   `json:"model" validate:"required,max=128"`
	Seats            int      `json:"seats" validate:"required,gte=1"`
	Transmission     string   `json:"transmission" validate:"omitempty,oneof=manual automatic"`
	City             string   `json:"city" validate:"max=128"`
	PriceCents       int64    `json:"price_cents" validate:"gte=0"`
	DriverAvailable  bool     `json:"driver_available"`
	DriverPriceCents int64    `json:"driver_price_cents" validate:"gte=0"`
	Images           []string `json:"images" validate:"dive,url"`
}

func (r carRequest) toDomain(id int64) domain.Car {
	return domain.Car{
		ID: id, Make: r.Make, Model: r.Model, Seats: r.Seats, Transmission: r.Transmission, City: r.City,
		PriceCents: r.PriceCents, DriverAvailable: r.DriverAvailable, DriverPriceCents: r.DriverPriceCents,
		Images: r.Images,
	}
}

type guideRequest struct {
	Name      string   `json:"name" validate:"required,max=255"`
	Languages []string `json:"languages" validate:"dive,required"`
	Phone     string   `json:"phone" validate:"max=64"`
	Bio       string   `json:"bio"`
}

func (r guideRequest) toDomain(id int64) domain.Guide {
	return domain.Guide{ID: id, Name: r.Name, Languages: r.Languages, Phone: r.Phone, Bio: r.Bio}
}

type tourRequest struct {
	Title        string   `json:"title" validate:"required,max=255"`
	Description  string   `json:"description"`
	Location     string   `json:"location" validate:"max=255"`
	StartDate    string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	DurationDays int      `json:"duration_days" validate:"required,gte=1"`
	Capacity     int      `json:"capacity" validate:"required,gte=1"`
	PriceCents   int64    `json:"price_cents" validate:"gte=0"`
	GuideID      *int64   `json:"guide_id" validate:"omitempty,gt=0"`
	Images       []string `json:"images" validate:"dive,url"`
}

func (r tourRequest) toDomain(id int64) (domain.Tour, error) {
	start, err := domain.ParseDate("start_date", r.StartDate)
	if err != nil {
		return domain.Tour{}, err
	}
	return domain.Tour{
		ID: id, Title: r.Title, Description: r.Description, Location: r.Location, StartDate: start,
		DurationDays: r.DurationDays, Capacity: r.Capacity, PriceCents: r.PriceCents, GuideID: r.GuideID,
		Images: r.Images,
	}, nil
}

type bookingRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=room car tour"`
	ItemID     int64  `json:"item_id" validate:"required,gt=0"`
	Start      string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End        string `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Quantity   int    `json:"quantity" validate:"gte=0,lte=100"`
	WithDriver bool   `json:"with_driver"`
	GuestName  string `json:"guest_name" validate:"max=255"`
	GuestEmail string `json:"guest_email" validate:"omitempty,email"`
	GuestPhone string `json:"guest_phone" validate:"max=64"`
}

func (r bookingRequest) toDomain() (domain.BookingRequest, error) {
	kind, err := domain.ParseKind(r.Kind)
	if err != nil {
		return domain.BookingRequest{}, err
	}
	out := domain.BookingRequest{
		Kind: kind, ItemID: r.ItemID, Quantity: r.Quantity, WithDriver: r.WithDriver,
		GuestName: r.GuestName, GuestEmail: r.GuestEmail, GuestPhone: r.GuestPhone,
	}
	if kind == domain.KindTour {
		return out, nil
	}
	if out.Start, err = domain.ParseDate("start", r.Start); err != nil {
		return domain.BookingRequest{}, err
	}
	if out.End, err = domain.ParseDate("end", r.End); err != nil {
		return domain.BookingRequest{}, err
	}
	return out, nil
}

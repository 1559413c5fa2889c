package domain

import "time"

type Hotel struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Address     string    `json:"address"`
	Stars       int       `json:"stars"`
	Amenities   []string  `json:"amenities"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Room struct {
	ID          int64    `json:"id"`
	HotelID     int64    `json:"hotel_id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Capacity    int      `json:"capacity"`
	Units       int      `json:"units"` // identical rooms sold under this listing
	PriceCents  int64    `json:"price_cents"`
	Amenities   []string `json:"amenities"`
	Images      []string `json:"images"`
}

// HotelView is a hotel together with its rooms, as served on the detail page.
type HotelView struct {
	Hotel
	Rooms []Room `json:"rooms"`
}

type RoomAvailability struct {
	Room       Room  `json:"room"`
	Available  int   `json:"available"`
	Nights     int   `json:"nights"`
	QuoteCents int64 `json:"quote_cents"` // one unit for the whole stay
}

func (h Hotel) Validate() error {
	if h.Name == "" {
		return Invalid("name", "required")
	}
	if h.City == "" {
		return Invalid("city", "required")
	}
	if h.Stars < 0 || h.Stars > 5 {
		return Invalid("stars", "must be between 0 and 5")
	}
	return nil
}

func (r Room) Validate() error {
	if r.Name == "" {
		return Invalid("name", "required")
	}
	if r.Capacity < 1 {
		return Invalid("capacity", "must be at least 1")
	}
	if r.Units < 1 {
		return Invalid("units", "must be at least 1")
	}
	if r.PriceCents < 0 {
		return Invalid("price_cents", "must not be negative")
	}
	return nil
}

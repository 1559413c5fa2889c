package domain

import "time"

type Guide struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Languages []string `json:"languages"`
	Phone     string   `json:"phone"`
	Bio       string   `json:"bio"`
}

type Tour struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	StartDate    time.Time `json:"start_date"`
	DurationDays int       `json:"duration_days"`
	Capacity     int       `json:"capacity"`
	PriceCents   int64     `json:"price_cents"` // per person
	GuideID      *int64    `json:"guide_id,omitempty"`
	Images       []string  `json:"images"`
}

// TourView carries the assigned guide inline.
type TourView struct {
	Tour
	Guide *Guide `json:"guide,omitempty"`
}

func (t Tour) EndDate() time.Time {
	return t.StartDate.AddDate(0, 0, t.DurationDays)
}

func (t Tour) Validate() error {
	if t.Title == "" {
		return Invalid("title", "required")
	}
	if t.StartDate.IsZero() {
		return Invalid("start_date", "required")
	}
	if t.DurationDays < 1 {
		return Invalid("duration_days", "must be at least 1")
	}
	if t.Capacity < 1 {
		return Invalid("capacity", "must be at least 1")
	}
	if t.PriceCents < 0 {
		return Invalid("price_cents", "must not be negative")
	}
	return nil
}

func (g Guide) Validate() error {
	if g.Name == "" {
		return Invalid("name", "required")
	}
	return nil
}

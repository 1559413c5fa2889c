package domain

type Car struct {
	ID               int64    `json:"id"`
	Make             string   `json:"make"`
	Model            string   `json:"model"`
	Seats            int      `json:"seats"`
	Transmission     string   `json:"transmission"`
	City             string   `json:"city"`
	PriceCents       int64    `json:"price_cents"` // per day
	DriverAvailable  bool     `json:"driver_available"`
	DriverPriceCents int64    `json:"driver_price_cents"` // per day, on top of the car
	Images           []string `json:"images"`
}

func (c Car) Validate() error {
	if c.Make == "" {
		return Invalid("make", "required")
	}
	if c.Model == "" {
		return Invalid("model", "required")
	}
	if c.Seats < 1 {
		return Invalid("seats", "must be at least 1")
	}
	if c.PriceCents < 0 || c.DriverPriceCents < 0 {
		return Invalid("price_cents", "must not be negative")
	}
	if !c.DriverAvailable && c.DriverPriceCents > 0 {
		return Invalid("driver_price_cents", "set without a driver")
	}
	return nil
}

package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pine_hotel/internal/domain"
)

// ---- cars ----

func scanCar(row interface{ Scan(...any) error }) (domain.Car, error) {
	var c domain.Car
	var transmission, city sql.NullString
	var imagesJSON []byte
	if err := row.Scan(
		&c.ID, &c.Make, &c.Model, &c.Seats, &transmission, &city, &c.PriceCents,
		&c.DriverAvailable, &c.DriverPriceCents, &imagesJSON,
	); err != nil {
		return domain.Car{}, err
	}
	c.Transmission, c.City = transmission.String, city.String
	c.Images = strSlice(imagesJSON)
	return c, nil
}

func (r *Repo) CreateCar(ctx context.Context, c domain.Car) (domain.Car, error) {
	res, err := r.db.ExecContext(ctx, insertCarSQL,
		c.Make, c.Model, c.Seats, valStr(c.Transmission), valStr(c.City), c.PriceCents,
		c.DriverAvailable, c.DriverPriceCents, valJSON(c.Images),
	)
	if err != nil {
		return domain.Car{}, translate(err, "car")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Car{}, err
	}
	return r.GetCar(ctx, id)
}

func (r *Repo) UpdateCar(ctx context.Context, c domain.Car) (domain.Car, error) {
	if _, err := r.db.ExecContext(ctx, updateCarSQL,
		c.Make, c.Model, c.Seats, valStr(c.Transmission), valStr(c.City), c.PriceCents,
		c.DriverAvailable, c.DriverPriceCents, valJSON(c.Images), c.ID,
	); err != nil {
		return domain.Car{}, translate(err, fmt.Sprintf("car %d", c.ID))
	}
	return r.GetCar(ctx, c.ID)
}

func (r *Repo) DeleteCar(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = ?`, id)
	if err != nil {
		return translate(err, fmt.Sprintf("car %d", id))
	}
	return mustAffect(res, "car", id)
}

func (r *Repo) GetCar(ctx context.Context, id int64) (domain.Car, error) {
	c, err := scanCar(r.db.QueryRowContext(ctx, selectCarSQL+" WHERE id = ?", id))
	return c, translate(err, fmt.Sprintf("car %d", id))
}

func (r *Repo) ListCars(ctx context.Context, q domain.CarsQuery) ([]domain.Car, error) {
	where := []string{"1 = 1"}
	var args []any
	if q.City != "" {
		where = append(where, "city = ?")
		args = append(args, q.City)
	}
	if q.WithDriver {
		where = append(where, "driver_available = TRUE")
	}
	rows, err := r.db.QueryContext(ctx, selectCarSQL+" WHERE "+strings.Join(where, " AND ")+" ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Car{}
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) CountCars(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cars`).Scan(&n)
	return n, err
}

// ---- guides ----

func scanGuide(row interface{ Scan(...any) error }) (domain.Guide, error) {
	var g domain.Guide
	var phone, bio sql.NullString
	var langsJSON []byte
	if err := row.Scan(&g.ID, &g.Name, &langsJSON, &phone, &bio); err != nil {
		return domain.Guide{}, err
	}
	g.Phone, g.Bio = phone.String, bio.String
	g.Languages = strSlice(langsJSON)
	return g, nil
}

func (r *Repo) CreateGuide(ctx context.Context, g domain.Guide) (domain.Guide, error) {
	res, err := r.db.ExecContext(ctx, insertGuideSQL, g.Name, valJSON(g.Languages), valStr(g.Phone), valStr(g.Bio))
	if err != nil {
		return domain.Guide{}, translate(err, "guide")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Guide{}, err
	}
	return r.GetGuide(ctx, id)
}

func (r *Repo) UpdateGuide(ctx context.Context, g domain.Guide) (domain.Guide, error) {
	if _, err := r.db.ExecContext(ctx, updateGuideSQL,
		g.Name, valJSON(g.Languages), valStr(g.Phone), valStr(g.Bio), g.ID,
	); err != nil {
		return domain.Guide{}, translate(err, fmt.Sprintf("guide %d", g.ID))
	}
	return r.GetGuide(ctx, g.ID)
}

// DeleteGuide relies on ON DELETE SET NULL to unassign tours.
func (r *Repo) DeleteGuide(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM guides WHERE id = ?`, id)
	if err != nil {
		return translate(err, fmt.Sprintf("guide %d", id))
	}
	return mustAffect(res, "guide", id)
}

func (r *Repo) GetGuide(ctx context.Context, id int64) (domain.Guide, error) {
	g, err := scanGuide(r.db.QueryRowContext(ctx, selectGuideSQL+" WHERE id = ?", id))
	return g, translate(err, fmt.Sprintf("guide %d", id))
}

func (r *Repo) ListGuides(ctx context.Context) ([]domain.Guide, error) {
	rows, err := r.db.QueryContext(ctx, selectGuideSQL+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Guide{}
	for rows.Next() {
		g, err := scanGuide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ---- tours ----

func scanTour(row interface{ Scan(...any) error }) (domain.Tour, error) {
	var t domain.Tour
	var desc, loc sql.NullString
	var guide sql.NullInt64
	var imagesJSON []byte
	if err := row.Scan(
		&t.ID, &t.Title, &desc, &loc, &t.StartDate, &t.DurationDays, &t.Capacity, &t.PriceCents,
		&guide, &imagesJSON,
	); err != nil {
		return domain.Tour{}, err
	}
	t.Description, t.Location = desc.String, loc.String
	if guide.Valid {
		g := guide.Int64
		t.GuideID = &g
	}
	t.StartDate = domain.Day(t.StartDate)
	t.Images = strSlice(imagesJSON)
	return t, nil
}

func (r *Repo) CreateTour(ctx context.Context, t domain.Tour) (domain.Tour, error) {
	res, err := r.db.ExecContext(ctx, insertTourSQL,
		t.Title, valStr(t.Description), valStr(t.Location), t.StartDate.Format(domain.DateLayout),
		t.DurationDays, t.Capacity, t.PriceCents, valInt64(t.GuideID), valJSON(t.Images),
	)
	if err != nil {
		return domain.Tour{}, translate(err, "tour")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Tour{}, err
	}
	return r.GetTour(ctx, id)
}

func (r *Repo) UpdateTour(ctx context.Context, t domain.Tour) (domain.Tour, error) {
	if _, err := r.db.ExecContext(ctx, updateTourSQL,
		t.Title, valStr(t.Description), valStr(t.Location), t.StartDate.Format(domain.DateLayout),
		t.DurationDays, t.Capacity, t.PriceCents, valInt64(t.GuideID), valJSON(t.Images), t.ID,
	); err != nil {
		return domain.Tour{}, translate(err, fmt.Sprintf("tour %d", t.ID))
	}
	return r.GetTour(ctx, t.ID)
}

func (r *Repo) DeleteTour(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tours WHERE id = ?`, id)
	if err != nil {
		return translate(err, fmt.Sprintf("tour %d", id))
	}
	return mustAffect(res, "tour", id)
}

func (r *Repo) GetTour(ctx context.Context, id int64) (domain.Tour, error) {
	t, err := scanTour(r.db.QueryRowContext(ctx, selectTourSQL+" WHERE id = ?", id))
	return t, translate(err, fmt.Sprintf("tour %d", id))
}

func (r *Repo) ListTours(ctx context.Context, q domain.ToursQuery) ([]domain.Tour, error) {
	where := []string{"1 = 1"}
	var args []any
	if q.Location != "" {
		where = append(where, "location LIKE ?")
		args = append(args, "%"+escapeLike(q.Location)+"%")
	}
	if q.From != nil {
		where = append(where, "start_date >= ?")
		args = append(args, q.From.Format(domain.DateLayout))
	}
	rows, err := r.db.QueryContext(ctx, selectTourSQL+" WHERE "+strings.Join(where, " AND ")+" ORDER BY start_date, id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) CountTours(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tours`).Scan(&n)
	return n, err
}

package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pine_hotel/internal/domain"
)

func scanBooking(row interface{ Scan(...any) error }) (domain.Booking, error) {
	var b domain.Booking
	var kind, status string
	var hotel sql.NullInt64
	var phone sql.NullString
	if err := row.Scan(
		&b.ID, &b.Reference, &b.UserID, &kind, &b.ItemID, &hotel, &b.Start, &b.End,
		&b.Quantity, &b.WithDriver, &b.GuestName, &b.GuestEmail, &phone, &status,
		&b.TotalCents, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return domain.Booking{}, err
	}
	b.Kind, b.Status = domain.BookingKind(kind), domain.BookingStatus(status)
	if hotel.Valid {
		h := hotel.Int64
		b.HotelID = &h
	}
	b.GuestPhone = phone.String
	b.Start, b.End = domain.Day(b.Start), domain.Day(b.End)
	return b, nil
}

// Reserve locks the booked item's row so concurrent reservations of the same
// item serialise on it, then checks capacity and inserts inside one transaction.
func (r *Repo) Reserve(ctx context.Context, b domain.Booking, capacity int) (domain.Booking, error) {
	lock, ok := lockItemSQL[string(b.Kind)]
	if !ok {
		return domain.Booking{}, domain.Invalid("kind", string(b.Kind))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Booking{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	if err := tx.QueryRowContext(ctx, lock, b.ItemID).Scan(&id); err != nil {
		return domain.Booking{}, translate(err, fmt.Sprintf("%s %d", b.Kind, b.ItemID))
	}

	start, end := b.Start.Format(domain.DateLayout), b.End.Format(domain.DateLayout)
	var taken int
	if err := tx.QueryRowContext(ctx, reservedUnitsSQL, string(b.Kind), b.ItemID, end, start).Scan(&taken); err != nil {
		return domain.Booking{}, err
	}
	if taken+b.Quantity > capacity {
		return domain.Booking{}, domain.ErrUnavailable
	}

	res, err := tx.ExecContext(ctx, insertBookingSQL,
		b.Reference, b.UserID, string(b.Kind), b.ItemID, valInt64(b.HotelID), start, end,
		b.Quantity, b.WithDriver, b.GuestName, b.GuestEmail, valStr(b.GuestPhone),
		string(b.Status), b.TotalCents, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return domain.Booking{}, translate(err, "booking")
	}
	if b.ID, err = res.LastInsertId(); err != nil {
		return domain.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func (r *Repo) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, selectBookingSQL+" WHERE b.id = ?", id))
	return b, translate(err, fmt.Sprintf("booking %d", id))
}

// ListBookings returns newest first.
func (r *Repo) ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	query := selectBookingSQL
	where := []string{"1 = 1"}
	var args []any
	if f.OwnerID != nil {
		query += " JOIN hotels h ON h.id = b.hotel_id"
		where = append(where, "h.owner_id = ?")
		args = append(args, *f.OwnerID)
	}
	if f.UserID != nil {
		where = append(where, "b.user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.Kind != nil {
		where = append(where, "b.kind = ?")
		args = append(args, string(*f.Kind))
	}
	if f.Status != nil {
		where = append(where, "b.status = ?")
		args = append(args, string(*f.Status))
	}
	if len(f.HotelIDs) > 0 {
		where = append(where, "b.hotel_id IN (?"+strings.Repeat(",?", len(f.HotelIDs)-1)+")")
		for _, id := range f.HotelIDs {
			args = append(args, id)
		}
	}
	query += " WHERE " + strings.Join(where, " AND ") + " ORDER BY b.id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (domain.Booking, error) {
	res, err := r.db.ExecContext(ctx, updateStatusSQL, string(to), id, string(from))
	if err != nil {
		return domain.Booking{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Booking{}, err
	}
	if n == 0 {
		cur, err := r.GetBooking(ctx, id)
		if err != nil {
			return domain.Booking{}, err
		}
		return domain.Booking{}, fmt.Errorf("booking %d is %s: %w", id, cur.Status, domain.ErrConflict)
	}
	return r.GetBooking(ctx, id)
}

func (r *Repo) ReservedUnits(ctx context.Context, kind domain.BookingKind, itemID int64, start, end time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, reservedUnitsSQL,
		string(kind), itemID, end.Format(domain.DateLayout), start.Format(domain.DateLayout)).Scan(&n)
	return n, err
}

func (r *Repo) RevenueRows(ctx context.Context, q domain.RevenueQuery) ([]domain.RevenueRow, error) {
	rows, err := r.db.QueryContext(ctx, revenueRowsSQL,
		string(q.Kind), q.From.Format(domain.DateLayout), q.To.Format(domain.DateLayout),
		valInt64(q.OwnerID), valInt64(q.OwnerID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RevenueRow
	for rows.Next() {
		var rr domain.RevenueRow
		var kind, status string
		if err := rows.Scan(&kind, &status, &rr.Start, &rr.TotalCents); err != nil {
			return nil, err
		}
		rr.Kind, rr.Status = domain.BookingKind(kind), domain.BookingStatus(status)
		out = append(out, rr)
	}
	return out, rows.Err()
}

package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"pine_hotel/internal/domain"
)

// MySQL server error numbers we translate into domain errors.
const (
	errDuplicateEntry  = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func valJSON(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func strSlice(b []byte) []string {
	out := []string{}
	if len(b) > 0 {
		_ = json.Unmarshal(b, &out)
	}
	return out
}

func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDuplicateEntry, errRowIsReferenced:
			return fmt.Errorf("%s: %s: %w", what, me.Message, domain.ErrConflict)
		case errNoReferencedRow:
			return fmt.Errorf("%s: %s: %w", what, me.Message, domain.ErrNotFound)
		}
	}
	return err
}

// mustAffect maps a zero-row write to ErrNotFound.
func mustAffect(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
	}
	return nil
}

type Repo struct{ db *sql.DB }

var _ domain.Store = (*Repo)(nil)

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- users ----

func (r *Repo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Email, u.Name, string(u.Role), u.PasswordHash)
	if err != nil {
		return domain.User{}, translate(err, "user "+u.Email)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return r.GetUser(ctx, id)
}

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash, &u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUserSQL+" WHERE id = ?", id))
	return u, translate(err, fmt.Sprintf("user %d", id))
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUserSQL+" WHERE email = ?", email))
	return u, translate(err, "user "+email)
}

func (r *Repo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// ---- hotels ----

func scanHotel(row interface{ Scan(...any) error }) (domain.Hotel, error) {
	var h domain.Hotel
	var desc, country, addr sql.NullString
	var amenitiesJSON, imagesJSON []byte
	if err := row.Scan(
		&h.ID, &h.OwnerID, &h.Name, &desc, &h.City, &country, &addr, &h.Stars,
		&amenitiesJSON, &imagesJSON, &h.CreatedAt, &h.UpdatedAt,
	); err != nil {
		return domain.Hotel{}, err
	}
	h.Description, h.Country, h.Address = desc.String, country.String, addr.String
	h.Amenities, h.Images = strSlice(amenitiesJSON), strSlice(imagesJSON)
	return h, nil
}

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	res, err := r.db.ExecContext(ctx, insertHotelSQL,
		h.OwnerID, h.Name, valStr(h.Description), h.City, valStr(h.Country), valStr(h.Address),
		h.Stars, valJSON(h.Amenities), valJSON(h.Images),
	)
	if err != nil {
		return domain.Hotel{}, translate(err, "hotel")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Hotel{}, err
	}
	return r.GetHotel(ctx, id)
}

func (r *Repo) UpdateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	// MySQL reports 0 affected rows for a no-op update, so re-read instead of mustAffect.
	if _, err := r.db.ExecContext(ctx, updateHotelSQL,
		h.OwnerID, h.Name, valStr(h.Description), h.City, valStr(h.Country), valStr(h.Address),
		h.Stars, valJSON(h.Amenities), valJSON(h.Images), h.ID,
	); err != nil {
		return domain.Hotel{}, translate(err, fmt.Sprintf("hotel %d", h.ID))
	}
	return r.GetHotel(ctx, h.ID)
}

func (r *Repo) DeleteHotel(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM hotels WHERE id = ?`, id)
	if err != nil {
		return translate(err, fmt.Sprintf("hotel %d", id))
	}
	return mustAffect(res, "hotel", id)
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, selectHotelSQL+" WHERE id = ?", id))
	return h, translate(err, fmt.Sprintf("hotel %d", id))
}

func (r *Repo) ListHotels(ctx context.Context, q domain.HotelsQuery) (domain.HotelsPage, error) {
	where := []string{"id > ?"}
	args := []any{q.Cursor}
	if q.City != "" {
		where = append(where, "city = ?")
		args = append(args, q.City)
	}
	if q.Q != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+escapeLike(q.Q)+"%")
	}
	if q.OwnerID != nil {
		where = append(where, "owner_id = ?")
		args = append(args, *q.OwnerID)
	}
	// fetch one extra row to learn whether another page exists
	args = append(args, q.Limit+1)
	rows, err := r.db.QueryContext(ctx,
		selectHotelSQL+" WHERE "+strings.Join(where, " AND ")+" ORDER BY id LIMIT ?", args...)
	if err != nil {
		return domain.HotelsPage{}, err
	}
	defer rows.Close()

	out := domain.HotelsPage{Items: []domain.Hotel{}}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return domain.HotelsPage{}, err
		}
		out.Items = append(out.Items, h)
	}
	if err := rows.Err(); err != nil {
		return domain.HotelsPage{}, err
	}
	if len(out.Items) > q.Limit {
		out.Items = out.Items[:q.Limit]
		last := out.Items[len(out.Items)-1].ID
		out.NextCursor = &last
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *Repo) CountHotels(ctx context.Context, ownerID *int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hotels WHERE (? IS NULL OR owner_id = ?)`,
		valInt64(ownerID), valInt64(ownerID)).Scan(&n)
	return n, err
}

// ---- rooms ----

func scanRoom(row interface{ Scan(...any) error }) (domain.Room, error) {
	var rm domain.Room
	var typ, desc sql.NullString
	var amenitiesJSON, imagesJSON []byte
	if err := row.Scan(
		&rm.ID, &rm.HotelID, &rm.Name, &typ, &desc, &rm.Capacity, &rm.Units, &rm.PriceCents,
		&amenitiesJSON, &imagesJSON,
	); err != nil {
		return domain.Room{}, err
	}
	rm.Type, rm.Description = typ.String, desc.String
	rm.Amenities, rm.Images = strSlice(amenitiesJSON), strSlice(imagesJSON)
	return rm, nil
}

func (r *Repo) CreateRoom(ctx context.Context, rm domain.Room) (domain.Room, error) {
	res, err := r.db.ExecContext(ctx, insertRoomSQL,
		rm.HotelID, rm.Name, valStr(rm.Type), valStr(rm.Description), rm.Capacity, rm.Units,
		rm.PriceCents, valJSON(rm.Amenities), valJSON(rm.Images),
	)
	if err != nil {
		return domain.Room{}, translate(err, fmt.Sprintf("hotel %d", rm.HotelID))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Room{}, err
	}
	return r.GetRoom(ctx, id)
}

func (r *Repo) UpdateRoom(ctx context.Context, rm domain.Room) (domain.Room, error) {
	if _, err := r.db.ExecContext(ctx, updateRoomSQL,
		rm.Name, valStr(rm.Type), valStr(rm.Description), rm.Capacity, rm.Units,
		rm.PriceCents, valJSON(rm.Amenities), valJSON(rm.Images), rm.ID,
	); err != nil {
		return domain.Room{}, translate(err, fmt.Sprintf("room %d", rm.ID))
	}
	return r.GetRoom(ctx, rm.ID)
}

func (r *Repo) DeleteRoom(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return translate(err, fmt.Sprintf("room %d", id))
	}
	return mustAffect(res, "room", id)
}

func (r *Repo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, selectRoomSQL+" WHERE id = ?", id))
	return rm, translate(err, fmt.Sprintf("room %d", id))
}

func (r *Repo) ListRooms(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, selectRoomSQL+" WHERE hotel_id = ? ORDER BY id", hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *Repo) CountRooms(ctx context.Context, ownerID *int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countRoomsSQL, valInt64(ownerID), valInt64(ownerID)).Scan(&n)
	return n, err
}

package mysql

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

const insertUserSQL = `
INSERT INTO users (email, name, role, password_hash)
VALUES (?, ?, ?, ?)
`

const selectUserSQL = `
SELECT id, email, name, role, password_hash, created_at
FROM users
`

// -----------------------------------------------------------------------------
// HOTELS & ROOMS
// -----------------------------------------------------------------------------

const insertHotelSQL = `
INSERT INTO hotels
  (owner_id, name, description, city, country, address, stars, amenities, images)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateHotelSQL = `
UPDATE hotels SET
  owner_id    = ?,
  name        = ?,
  description = ?,
  city        = ?,
  country     = ?,
  address     = ?,
  stars       = ?,
  amenities   = ?,
  images      = ?
WHERE id = ?
`

const selectHotelSQL = `
SELECT id, owner_id, name, description, city, country, address, stars, amenities, images, created_at, updated_at
FROM hotels
`

const insertRoomSQL = `
INSERT INTO rooms
  (hotel_id, name, type, description, capacity, units, price_cents, amenities, images)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateRoomSQL = `
UPDATE rooms SET
  name        = ?,
  type        = ?,
  description = ?,
  capacity    = ?,
  units       = ?,
  price_cents = ?,
  amenities   = ?,
  images      = ?
WHERE id = ?
`

const selectRoomSQL = `
SELECT id, hotel_id, name, type, description, capacity, units, price_cents, amenities, images
FROM rooms
`

const countRoomsSQL = `
SELECT COUNT(*)
FROM rooms r
JOIN hotels h ON h.id = r.hotel_id
WHERE (? IS NULL OR h.owner_id = ?)
`

// -----------------------------------------------------------------------------
// CARS, GUIDES, TOURS
// -----------------------------------------------------------------------------

const insertCarSQL = `
INSERT INTO cars
  (make, model, seats, transmission, city, price_cents, driver_available, driver_price_cents, images)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateCarSQL = `
UPDATE cars SET
  make               = ?,
  model              = ?,
  seats              = ?,
  transmission       = ?,
  city               = ?,
  price_cents        = ?,
  driver_available   = ?,
  driver_price_cents = ?,
  images             = ?
WHERE id = ?
`

const selectCarSQL = `
SELECT id, make, model, seats, transmission, city, price_cents, driver_available, driver_price_cents, images
FROM cars
`

const insertGuideSQL = `INSERT INTO guides (name, languages, phone, bio) VALUES (?, ?, ?, ?)`

const updateGuideSQL = `UPDATE guides SET name = ?, languages = ?, phone = ?, bio = ? WHERE id = ?`

const selectGuideSQL = `SELECT id, name, languages, phone, bio FROM guides`

const insertTourSQL = `
INSERT INTO tours
  (title, description, location, start_date, duration_days, capacity, price_cents, guide_id, images)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateTourSQL = `
UPDATE tours SET
  title         = ?,
  description   = ?,
  location      = ?,
  start_date    = ?,
  duration_days = ?,
  capacity      = ?,
  price_cents   = ?,
  guide_id      = ?,
  images        = ?
WHERE id = ?
`

const selectTourSQL = `
SELECT id, title, description, location, start_date, duration_days, capacity, price_cents, guide_id, images
FROM tours
`

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

const insertBookingSQL = `
INSERT INTO bookings
  (reference, user_id, kind, item_id, hotel_id, start_date, end_date, quantity, with_driver,
   guest_name, guest_email, guest_phone, status, total_cents, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectBookingSQL = `
SELECT b.id, b.reference, b.user_id, b.kind, b.item_id, b.hotel_id, b.start_date, b.end_date,
       b.quantity, b.with_driver, b.guest_name, b.guest_email, b.guest_phone, b.status,
       b.total_cents, b.created_at, b.updated_at
FROM bookings b
`

// Half-open overlap: existing.start < new.end AND new.start < existing.end.
const reservedUnitsSQL = `
SELECT COALESCE(SUM(quantity), 0)
FROM bookings
WHERE kind = ? AND item_id = ?
  AND status IN ('pending', 'confirmed')
  AND start_date < ? AND ? < end_date
`

const updateStatusSQL = `
UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND status = ?
`

const revenueRowsSQL = `
SELECT b.kind, b.status, b.start_date, b.total_cents
FROM bookings b
LEFT JOIN hotels h ON h.id = b.hotel_id
WHERE b.kind = ?
  AND b.start_date BETWEEN ? AND ?
  AND (? IS NULL OR h.owner_id = ?)
`

// Item rows locked while a reservation is checked and written.
var lockItemSQL = map[string]string{
	"room": `SELECT id FROM rooms WHERE id = ? FOR UPDATE`,
	"car":  `SELECT id FROM cars WHERE id = ? FOR UPDATE`,
	"tour": `SELECT id FROM tours WHERE id = ? FOR UPDATE`,
}

package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/desk-reservation/internal/model"
)

// BookingRepo provides data access to the bookings table.  Bookings are
// append/delete only: no booking row is ever mutated in place.  All
// timestamp fields are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, desk_id, user_id, user_name, from_at, to_at, booking_date, created_at, updated_at`

func scanBooking(s rowScanner) (model.Booking, error) {
	var b model.Booking
	var fromAt, toAt, bookingDate sql.NullTime
	err := s.Scan(&b.ID, &b.DeskID, &b.UserID, &b.UserName, &fromAt, &toAt, &bookingDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	if fromAt.Valid {
		v := fromAt.Time
		b.FromAt = &v
	}
	if toAt.Valid {
		v := toAt.Time
		b.ToAt = &v
	}
	// With parseTime=true the driver delivers the DATE column as a
	// time.Time at midnight; legacy records are addressed by the bare
	// date string, so the time part is stripped here.
	if bookingDate.Valid {
		v := bookingDate.Time.Format("2006-01-02")
		b.BookingDate = &v
	}
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CreateTx inserts a new booking within the scope of an existing
// transaction.  A fresh UUID is assigned when the record has no ID yet,
// and the row is queried back to populate the database-assigned
// timestamps.  The caller must commit or roll back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (id, desk_id, user_id, user_name, from_at, to_at, booking_date) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.DeskID, b.UserID, b.UserName, b.FromAt, b.ToAt, b.BookingDate)
	if err != nil {
		return err
	}
	row := tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, b.ID)
	got, err := scanBooking(row)
	if err != nil {
		return err
	}
	*b = got
	return nil
}

// GetTx fetches a booking by id within the provided transaction.
// sql.ErrNoRows is returned when the booking does not exist.
func (r *BookingRepo) GetTx(ctx context.Context, tx *sql.Tx, id string) (model.Booking, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

// DeleteTx removes a booking within the provided transaction.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	return err
}

// ListAll returns every booking ordered by creation time descending.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListAllTx returns every booking within the provided transaction.  The
// coordinator's conflict checks scan the full list, because a desk's
// single current tag cannot represent its many historical and future
// bookings.
func (r *BookingRepo) ListAllTx(ctx context.Context, tx *sql.Tx) ([]model.Booking, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListByUser returns the user's bookings ordered by creation time
// descending (newest first).  When no bookings exist, an empty slice is
// returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// CountOtherForDeskTx counts bookings on the desk other than the one
// being cancelled.  The count is deliberately range-ignorant: any
// remaining booking keeps the desk from reverting to available.
func (r *BookingRepo) CountOtherForDeskTx(ctx context.Context, tx *sql.Tx, deskID, excludeID string) (int64, error) {
	var count int64
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE desk_id = ? AND id <> ?`,
		deskID, excludeID).Scan(&count)
	return count, err
}

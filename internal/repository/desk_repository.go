package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/desk-reservation/internal/model"
)

// DeskRepo provides data access to the desks table.  The desk row is the
// single shared mutable resource of the system: the coordinator mutates
// it via whole-group writes (all hold fields together, all booked fields
// together) so that the availability tag and its associated fields stay
// mutually consistent.  All timestamps are stored and compared in UTC.
type DeskRepo struct {
	db *sql.DB
}

// NewDeskRepo returns a new DeskRepo bound to the provided database.
func NewDeskRepo(db *sql.DB) *DeskRepo { return &DeskRepo{db: db} }

const deskColumns = `id, name, pos_x, pos_y, availability,
					 held_by, held_by_user_id, held_from, held_to, held_expires_at,
					 booked_by, booked_by_user_id, booked_from, booked_to,
					 created_at, updated_at`

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDesk(s rowScanner) (model.Desk, error) {
	var d model.Desk
	var heldBy, bookedBy sql.NullString
	var heldUID, bookedUID sql.NullInt64
	var heldFrom, heldTo, heldExp, bookedFrom, bookedTo sql.NullTime
	err := s.Scan(
		&d.ID, &d.Name, &d.PosX, &d.PosY, &d.Availability,
		&heldBy, &heldUID, &heldFrom, &heldTo, &heldExp,
		&bookedBy, &bookedUID, &bookedFrom, &bookedTo,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return model.Desk{}, err
	}
	if heldBy.Valid {
		v := heldBy.String
		d.HeldBy = &v
	}
	if heldUID.Valid {
		v := uint64(heldUID.Int64)
		d.HeldByUserID = &v
	}
	if heldFrom.Valid {
		v := heldFrom.Time
		d.HeldFrom = &v
	}
	if heldTo.Valid {
		v := heldTo.Time
		d.HeldTo = &v
	}
	if heldExp.Valid {
		v := heldExp.Time
		d.HeldExpiresAt = &v
	}
	if bookedBy.Valid {
		v := bookedBy.String
		d.BookedBy = &v
	}
	if bookedUID.Valid {
		v := uint64(bookedUID.Int64)
		d.BookedByUserID = &v
	}
	if bookedFrom.Valid {
		v := bookedFrom.Time
		d.BookedFrom = &v
	}
	if bookedTo.Valid {
		v := bookedTo.Time
		d.BookedTo = &v
	}
	return d, nil
}

// List returns all desks ordered by id.
func (r *DeskRepo) List(ctx context.Context) ([]model.Desk, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+deskColumns+` FROM desks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDesks(rows)
}

// ListTx returns all desks within the provided transaction.  It is used
// by the coordinator's conflict checks, which need a consistent view of
// every desk's hold state.
func (r *DeskRepo) ListTx(ctx context.Context, tx *sql.Tx) ([]model.Desk, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+deskColumns+` FROM desks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDesks(rows)
}

func collectDesks(rows *sql.Rows) ([]model.Desk, error) {
	desks := make([]model.Desk, 0)
	for rows.Next() {
		d, err := scanDesk(rows)
		if err != nil {
			return nil, err
		}
		desks = append(desks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return desks, nil
}

// Get fetches a single desk by id.  sql.ErrNoRows is returned when the
// desk does not exist.
func (r *DeskRepo) Get(ctx context.Context, id string) (model.Desk, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+deskColumns+` FROM desks WHERE id = ?`, id)
	return scanDesk(row)
}

// GetForUpdateTx fetches a desk by id with a row lock (SELECT ... FOR
// UPDATE).  The caller's transaction holds the lock until commit or
// rollback, serialising concurrent check-then-write sequences on the
// same desk.  sql.ErrNoRows is returned when the desk does not exist.
func (r *DeskRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (model.Desk, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+deskColumns+` FROM desks WHERE id = ? FOR UPDATE`, id)
	return scanDesk(row)
}

// SetHeldTx tags the desk as held and writes the whole hold field group
// in one statement: holder identity, requested range and absolute
// expiry.  Any booked fields are left untouched; a hold can coexist
// with a booked group covering a different window only transiently, the
// coordinator resolves the tag on the next transition.
func (r *DeskRepo) SetHeldTx(ctx context.Context, tx *sql.Tx, id, holderName string, holderID uint64, from, to, expiresAt time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE desks
		 SET availability = ?, held_by = ?, held_by_user_id = ?, held_from = ?, held_to = ?, held_expires_at = ?
		 WHERE id = ?`,
		model.DeskHeld, holderName, holderID, from.UTC(), to.UTC(), expiresAt.UTC(), id)
	return err
}

// ClearHoldTx resets the desk to available and clears the whole hold
// field group.  Used by release, by the expiry sweep and when a
// cancelled booking leaves no active hold behind.
func (r *DeskRepo) ClearHoldTx(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE desks
		 SET availability = ?, held_by = NULL, held_by_user_id = NULL,
			 held_from = NULL, held_to = NULL, held_expires_at = NULL
		 WHERE id = ?`,
		model.DeskAvailable, id)
	return err
}

// SetBookedTx tags the desk as booked, writes the booked field group and
// clears any hold fields unconditionally, so a successful booking never
// leaves a stale-hold artifact behind.
func (r *DeskRepo) SetBookedTx(ctx context.Context, tx *sql.Tx, id, bookerName string, bookerID uint64, from, to time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE desks
		 SET availability = ?, booked_by = ?, booked_by_user_id = ?, booked_from = ?, booked_to = ?,
			 held_by = NULL, held_by_user_id = NULL, held_from = NULL, held_to = NULL, held_expires_at = NULL
		 WHERE id = ?`,
		model.DeskBooked, bookerName, bookerID, from.UTC(), to.UTC(), id)
	return err
}

// ClearBookedTx clears the booked field group.  When keepHold is true
// only the booked fields are reset and the desk stays tagged held,
// preserving an in-progress hold on the same desk; otherwise the desk
// reverts to available.
func (r *DeskRepo) ClearBookedTx(ctx context.Context, tx *sql.Tx, id string, keepHold bool) error {
	if keepHold {
		_, err := tx.ExecContext(ctx,
			`UPDATE desks
			 SET availability = ?, booked_by = NULL, booked_by_user_id = NULL, booked_from = NULL, booked_to = NULL
			 WHERE id = ?`,
			model.DeskHeld, id)
		return err
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE desks
		 SET availability = ?, booked_by = NULL, booked_by_user_id = NULL, booked_from = NULL, booked_to = NULL,
			 held_by = NULL, held_by_user_id = NULL, held_from = NULL, held_to = NULL, held_expires_at = NULL
		 WHERE id = ?`,
		model.DeskAvailable, id)
	return err
}

// ExpireHoldsTx resets every desk whose hold expiry has passed and
// returns the ids of the desks that were reclaimed.  A hold is expired
// when its held_expires_at timestamp is less than or equal to the
// current UTC time.  The caller must supply an existing transaction and
// commit or roll it back.  When there are no expired holds, it returns
// an empty slice and nil error.
func (r *DeskRepo) ExpireHoldsTx(ctx context.Context, tx *sql.Tx) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM desks WHERE availability = ? AND held_expires_at <= UTC_TIMESTAMP()`,
		model.DeskHeld)
	if err != nil {
		return nil, err
	}
	var expired []string
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		expired = append(expired, id)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return []string{}, nil
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE desks
		 SET availability = ?, held_by = NULL, held_by_user_id = NULL,
			 held_from = NULL, held_to = NULL, held_expires_at = NULL
		 WHERE availability = ? AND held_expires_at <= UTC_TIMESTAMP()`,
		model.DeskAvailable, model.DeskHeld)
	if err != nil {
		return nil, err
	}
	return expired, nil
}

// Create inserts a new desk in the available state.
func (r *DeskRepo) Create(ctx context.Context, id, name string, posX, posY int32) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO desks (id, name, pos_x, pos_y, availability) VALUES (?, ?, ?, ?, ?)`,
		id, name, posX, posY, model.DeskAvailable)
	return err
}

// Update renames or repositions a desk.  sql.ErrNoRows is returned when
// the desk does not exist.
func (r *DeskRepo) Update(ctx context.Context, id, name string, posX, posY int32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE desks SET name = ?, pos_x = ?, pos_y = ? WHERE id = ?`,
		name, posX, posY, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a desk.  It returns ErrConflict while bookings still
// reference the desk and sql.ErrNoRows when the desk does not exist.
func (r *DeskRepo) Delete(ctx context.Context, id string) error {
	var count int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE desk_id = ?`, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM desks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeskDefinition seeds the fixed floor plan on first start.
type DeskDefinition struct {
	ID   string
	Name string
	PosX int32
	PosY int32
}

// EnsureDefaults creates any of the given desks that do not exist yet
// and reports how many were created.  Existing desks are left untouched,
// so the seed is safe to run on every startup.
func (r *DeskRepo) EnsureDefaults(ctx context.Context, defs []DeskDefinition) (int, error) {
	created := 0
	for _, def := range defs {
		res, err := r.db.ExecContext(ctx,
			`INSERT IGNORE INTO desks (id, name, pos_x, pos_y, availability) VALUES (?, ?, ?, ?, ?)`,
			def.ID, def.Name, def.PosX, def.PosY, model.DeskAvailable)
		if err != nil {
			return created, err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			created++
		}
	}
	return created, nil
}

package model

import "time"

// Desk availability tags.  A desk carries exactly one "current" tag; the
// optional hold/booked field groups below are only populated for the
// matching tag.  Historical and future bookings for other time windows
// live in the bookings table and are consulted separately.
const (
	DeskAvailable = "available" // no active hold or booking recorded on the desk row
	DeskHeld      = "held"      // a user is in the process of selecting this desk
	DeskBooked    = "booked"    // a confirmed booking occupies the desk row
)

// Desk represents a bookable desk on the office floor plan.  Desks are
// identified by a stable string ID ("desk-1", "desk-2", ...) and carry
// map coordinates for rendering.  The availability tag together with
// the hold/booked field groups mirrors the desk document of the store:
// `available` implies all group fields are nil, `held` implies the
// held_* group is set with a future expiry, `booked` implies the
// booked_* group is set.  The coordinator always writes a whole group
// at once so the tag and its fields cannot diverge.
//
// Fields:
//  ID            – stable desk identifier, primary key.
//  Name          – human-readable desk label.
//  PosX, PosY    – floor plan coordinates in percent.
//  Availability  – current tag: available, held or booked.
//  HeldBy        – display name of the holder (held only).
//  HeldByUserID  – user ID of the holder (held only).
//  HeldFrom/To   – time range the hold covers (held only).
//  HeldExpiresAt – absolute hold expiry; the hold is void once passed.
//  BookedBy      – display name of the booker (booked only).
//  BookedByUserID– user ID of the booker (booked only).
//  BookedFrom/To – time range of the booking on the desk row (booked only).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Desk struct {
	ID             string     // desks.id
	Name           string     // desks.name
	PosX           int32      // desks.pos_x
	PosY           int32      // desks.pos_y
	Availability   string     // desks.availability
	HeldBy         *string    // desks.held_by (nullable)
	HeldByUserID   *uint64    // desks.held_by_user_id (nullable)
	HeldFrom       *time.Time // desks.held_from (nullable)
	HeldTo         *time.Time // desks.held_to (nullable)
	HeldExpiresAt  *time.Time // desks.held_expires_at (nullable)
	BookedBy       *string    // desks.booked_by (nullable)
	BookedByUserID *uint64    // desks.booked_by_user_id (nullable)
	BookedFrom     *time.Time // desks.booked_from (nullable)
	BookedTo       *time.Time // desks.booked_to (nullable)
	CreatedAt      time.Time  // desks.created_at
	UpdatedAt      time.Time  // desks.updated_at
}

// HoldActive reports whether the desk carries an unexpired hold at the
// given instant.  Expired holds are void even before the sweeper has
// reclaimed them.
func (d *Desk) HoldActive(now time.Time) bool {
	return d.Availability == DeskHeld && d.HeldExpiresAt != nil && now.Before(*d.HeldExpiresAt)
}

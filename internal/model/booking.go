package model

import "time"

// Booking records a confirmed desk reservation for a user.  New bookings
// always carry a half-open [FromAt, ToAt) range in UTC.  Older records
// created before ranged booking existed carry only a bare BookingDate
// ("2006-01-02") and no range; those are still honoured for conflict
// checks by exact date matching but can no longer be created.
//
// Fields:
//  ID          – booking identifier (UUID string).
//  DeskID      – desk being reserved.
//  UserID      – user who made the booking.
//  UserName    – display name captured at booking time.
//  FromAt/ToAt – half-open reservation window in UTC (nil on legacy rows).
//  BookingDate – legacy date-only addressing (nil on ranged rows).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Booking struct {
	ID          string     // bookings.id
	DeskID      string     // bookings.desk_id
	UserID      uint64     // bookings.user_id
	UserName    string     // bookings.user_name
	FromAt      *time.Time // bookings.from_at (nullable)
	ToAt        *time.Time // bookings.to_at (nullable)
	BookingDate *string    // bookings.booking_date (nullable, legacy)
	CreatedAt   time.Time  // bookings.created_at
	UpdatedAt   time.Time  // bookings.updated_at
}

// Ranged reports whether the booking carries a complete from/to window.
// Legacy date-only rows return false and must never be compared with the
// range overlap algorithm.
func (b *Booking) Ranged() bool {
	return b.FromAt != nil && b.ToAt != nil
}

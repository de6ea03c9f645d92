package model

import "time"

// Booking records a single seat sold for a showtime.  The pair
// (ShowtimeID, Seat) is globally unique; a second booking of the same
// pair violates the uniqueness constraint and surfaces as a seat
// conflict.  Bookings are created by the execute step of the dialogue
// and never updated or deleted.
//
// Fields:
//  ID         – primary key identifier.
//  ShowtimeID – showtime the seat belongs to.
//  Seat       – seat code, e.g. "D7".
//  UserName   – name the booking was made under.
//  CreatedAt  – insertion timestamp.
type Booking struct {
	ID         int64     // bookings.id
	ShowtimeID int64     // bookings.showtime_id
	Seat       string    // bookings.seat
	UserName   string    // bookings.user_name
	CreatedAt  time.Time // bookings.created_at
}

// Package queue connects the assistant to the message broker: a
// publisher that emits an event for every confirmed booking and a
// background consumer that appends those events to logs/booking.log.
package queue

// BookingConfirmedEvent is published when a booking is successfully
// confirmed.  It contains enough information for downstream consumers
// to log, notify, or trigger analytics without querying the primary
// database.
type BookingConfirmedEvent struct {
	ShowtimeID  int64    `json:"showtime_id"`
	MovieTitle  string   `json:"movie_title"`
	Showtime    string   `json:"showtime"`
	Seats       []string `json:"seats"`
	UserName    string   `json:"user_name"`
	ConfirmedAt string   `json:"confirmed_at"`
}

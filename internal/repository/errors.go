// Package repository implements the narrow data-access layer the
// dialogue engine depends on: searching movies, listing showtimes,
// listing available seats and inserting bookings.  This file defines
// the error values shared across repositories so callers can
// distinguish failure scenarios with errors.Is/errors.As instead of
// string matching.
package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMovieNotFound is returned when a movie lookup by id matches no row.
var ErrMovieNotFound = errors.New("movie not found")

// ErrShowtimeNotFound is returned when a showtime lookup by id matches no row.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ErrNoSeats is returned by BookSeats when the normalized seat list is empty.
var ErrNoSeats = errors.New("no seats requested")

// ErrTooManySeats is returned by BookSeats when a single request asks
// for more than MaxSeatsPerBooking seats.
var ErrTooManySeats = errors.New("too many seats in one booking")

// SeatConflictError reports a violation of the (showtime, seat)
// uniqueness constraint.  Seats carries the codes the repository could
// attribute to the conflict; attribution is best effort and callers
// must not assume per-seat granularity.  The whole booking is rolled
// back, so no seat from the request is inserted.
type SeatConflictError struct {
	ShowtimeID int64
	Seats      []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat conflict on showtime %d: %s already booked",
		e.ShowtimeID, strings.Join(e.Seats, ", "))
}

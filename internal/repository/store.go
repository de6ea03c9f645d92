package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cinema-ticket-assistant/internal/model"
)

// Store bundles the three repositories behind the single interface the
// dialogue engine consumes.  It exists so the engine can be handed one
// collaborator (and tests a single fake) instead of three.
type Store struct {
	Movies    *MovieRepo
	Showtimes *ShowtimeRepo
	Bookings  *BookingRepo
}

// NewStore constructs a Store with all repositories bound to db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		Movies:    NewMovieRepo(db),
		Showtimes: NewShowtimeRepo(db),
		Bookings:  NewBookingRepo(db),
	}
}

// SearchMovies implements dialogue.Store.
func (s *Store) SearchMovies(ctx context.Context, title, genre string) ([]model.Movie, error) {
	return s.Movies.Search(ctx, title, genre)
}

// MovieTitle implements dialogue.Store.
func (s *Store) MovieTitle(ctx context.Context, movieID int64) (string, error) {
	return s.Movies.TitleByID(ctx, movieID)
}

// ListShowtimes implements dialogue.Store.
func (s *Store) ListShowtimes(ctx context.Context, movieID int64) ([]model.Showtime, error) {
	return s.Showtimes.ListByMovie(ctx, movieID)
}

// Showtime implements dialogue.Store.
func (s *Store) Showtime(ctx context.Context, showtimeID int64) (*model.Showtime, error) {
	return s.Showtimes.GetByID(ctx, showtimeID)
}

// ListAvailableSeats implements dialogue.Store.
func (s *Store) ListAvailableSeats(ctx context.Context, showtimeID int64) ([]string, error) {
	return s.Bookings.ListAvailableSeats(ctx, showtimeID)
}

// BookSeats implements dialogue.Store.
func (s *Store) BookSeats(ctx context.Context, showtimeID int64, seats []string, userName string) ([]model.Booking, error) {
	return s.Bookings.BookSeats(ctx, showtimeID, seats, userName)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinema-ticket-assistant/internal/database"
	"github.com/iliyamo/cinema-ticket-assistant/internal/model"
)

// ShowtimeRepo provides read access to scheduled screenings.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo returns a new ShowtimeRepo bound to the given database.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// ListByMovie returns every showtime for the given movie ordered by
// start time.  An empty slice means the movie has no schedule.
func (r *ShowtimeRepo) ListByMovie(ctx context.Context, movieID int64) ([]model.Showtime, error) {
	const q = `SELECT id, movie_id, time FROM showtimes WHERE movie_id = ? ORDER BY time`
	rows, err := r.db.QueryContext(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shows := make([]model.Showtime, 0)
	for rows.Next() {
		s, err := scanShowtime(rows.Scan)
		if err != nil {
			return nil, err
		}
		shows = append(shows, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shows, nil
}

// GetByID returns a single showtime, or ErrShowtimeNotFound when the
// id matches no row.
func (r *ShowtimeRepo) GetByID(ctx context.Context, showtimeID int64) (*model.Showtime, error) {
	const q = `SELECT id, movie_id, time FROM showtimes WHERE id = ?`
	s, err := scanShowtime(r.db.QueryRowContext(ctx, q, showtimeID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowtimeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// scanShowtime reads one showtime row.  The time column is stored as a
// "2006-01-02 15:04:05" string on both drivers.
func scanShowtime(scan func(dest ...any) error) (model.Showtime, error) {
	var (
		s  model.Showtime
		ts string
	)
	if err := scan(&s.ID, &s.MovieID, &ts); err != nil {
		return model.Showtime{}, err
	}
	t, err := time.ParseInLocation(database.TimeLayout, ts, time.Local)
	if err != nil {
		return model.Showtime{}, err
	}
	s.Time = t
	return s, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TimeLayout is the canonical representation of timestamps in the
// showtimes table.  Every write formats with it and every read parses
// with it, regardless of driver.
const TimeLayout = "2006-01-02 15:04:05"

// Seed populates genres, movies, movie_genres and showtimes from the
// sample catalogue.  Each movie receives three fixed slots relative to
// the moment of seeding: today 19:00, today 21:30 and tomorrow 16:00.
// Seeding is idempotent: when the movies table already has rows the
// function returns without touching anything.
func Seed(ctx context.Context, db *sql.DB) error {
	var existing int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&existing); err != nil {
		return fmt.Errorf("seed: count movies: %w", err)
	}
	if existing > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Insert every distinct genre once, keeping the order in which it
	// first appears in the catalogue so ids stay deterministic.
	genreIDs := make(map[string]int64)
	for _, m := range sampleMovies {
		for _, g := range m.Genres {
			if _, ok := genreIDs[g]; ok {
				continue
			}
			res, err := tx.ExecContext(ctx, `INSERT INTO genres (name) VALUES (?)`, g)
			if err != nil {
				return fmt.Errorf("seed: insert genre %q: %w", g, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			genreIDs[g] = id
		}
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	slots := []time.Time{
		today.Add(19 * time.Hour),
		today.Add(21*time.Hour + 30*time.Minute),
		today.AddDate(0, 0, 1).Add(16 * time.Hour),
	}

	for _, m := range sampleMovies {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO movies (title, description, studio_number, release_date) VALUES (?, ?, ?, ?)`,
			m.Title, m.Description, m.StudioNumber, m.ReleaseDate,
		)
		if err != nil {
			return fmt.Errorf("seed: insert movie %q: %w", m.Title, err)
		}
		movieID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, g := range m.Genres {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`,
				movieID, genreIDs[g],
			); err != nil {
				return fmt.Errorf("seed: link genre %q: %w", g, err)
			}
		}
		for _, slot := range slots {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO showtimes (movie_id, time) VALUES (?, ?)`,
				movieID, slot.Format(TimeLayout),
			); err != nil {
				return fmt.Errorf("seed: insert showtime: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	committed = true
	return nil
}

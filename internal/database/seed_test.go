package database

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(context.Background(), db, DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSeedPopulatesCatalogue(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := Seed(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var movies int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&movies); err != nil {
		t.Fatalf("count movies: %v", err)
	}
	if movies != len(sampleMovies) {
		t.Fatalf("movies = %d, want %d", movies, len(sampleMovies))
	}

	// Every movie gets exactly three slots.
	rows, err := db.QueryContext(ctx, `SELECT movie_id, COUNT(*) FROM showtimes GROUP BY movie_id`)
	if err != nil {
		t.Fatalf("count showtimes: %v", err)
	}
	defer rows.Close()
	counted := 0
	for rows.Next() {
		var movieID, n int
		if err := rows.Scan(&movieID, &n); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if n != 3 {
			t.Fatalf("movie %d has %d showtimes, want 3", movieID, n)
		}
		counted++
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	if counted != len(sampleMovies) {
		t.Fatalf("movies with showtimes = %d, want %d", counted, len(sampleMovies))
	}

	var links int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movie_genres`).Scan(&links); err != nil {
		t.Fatalf("count movie_genres: %v", err)
	}
	wantLinks := 0
	for _, m := range sampleMovies {
		wantLinks += len(m.Genres)
	}
	if links != wantLinks {
		t.Fatalf("genre links = %d, want %d", links, wantLinks)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := Seed(ctx, db); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var movies, showtimes int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&movies); err != nil {
		t.Fatalf("count movies: %v", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM showtimes`).Scan(&showtimes); err != nil {
		t.Fatalf("count showtimes: %v", err)
	}
	if movies != len(sampleMovies) || showtimes != len(sampleMovies)*3 {
		t.Fatalf("reseeding duplicated rows: movies=%d showtimes=%d", movies, showtimes)
	}
}

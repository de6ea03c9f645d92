package database

import (
	"context"
	"database/sql"
	"fmt"
)

// The schema mirrors the relational model the dialogue depends on:
// movies with genres, three showtimes per movie, and bookings with the
// (showtime_id, seat) uniqueness constraint that produces seat
// conflicts.  Both dialects share table and column names so the
// repositories can issue identical queries.

var sqliteDDL = []string{
	`CREATE TABLE IF NOT EXISTS genres (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		studio_number INTEGER NOT NULL UNIQUE,
		release_date TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS movie_genres (
		movie_id INTEGER NOT NULL REFERENCES movies(id),
		genre_id INTEGER NOT NULL REFERENCES genres(id),
		PRIMARY KEY (movie_id, genre_id)
	)`,
	`CREATE TABLE IF NOT EXISTS showtimes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		movie_id INTEGER NOT NULL REFERENCES movies(id),
		time TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_name TEXT NOT NULL,
		seat TEXT NOT NULL,
		showtime_id INTEGER NOT NULL REFERENCES showtimes(id),
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		CONSTRAINT uq_booking_showtime_seat UNIQUE (showtime_id, seat)
	)`,
}

var mysqlDDL = []string{
	`CREATE TABLE IF NOT EXISTS genres (
		id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
		name VARCHAR(120) NOT NULL UNIQUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		studio_number INT NOT NULL UNIQUE,
		release_date DATE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS movie_genres (
		movie_id BIGINT UNSIGNED NOT NULL,
		genre_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (movie_id, genre_id)
	)`,
	`CREATE TABLE IF NOT EXISTS showtimes (
		id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
		movie_id BIGINT UNSIGNED NOT NULL,
		time DATETIME NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
		user_name VARCHAR(255) NOT NULL,
		seat VARCHAR(10) NOT NULL,
		showtime_id BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT uq_booking_showtime_seat UNIQUE (showtime_id, seat)
	)`,
}

// Migrate creates all tables for the given driver if they do not exist.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var ddl []string
	switch driver {
	case DriverSQLite:
		ddl = sqliteDDL
	case DriverMySQL:
		ddl = mysqlDDL
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

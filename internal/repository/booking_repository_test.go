package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/iliyamo/cinema-ticket-assistant/internal/database"
	"github.com/iliyamo/cinema-ticket-assistant/internal/seatmap"
)

// newTestDB opens a fresh in-memory SQLite database named after the
// test so parallel tests never share state.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(context.Background(), db, database.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedShowtime inserts one movie with one showtime and returns the
// showtime id.
func seedShowtime(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	ctx := context.Background()
	res, err := db.ExecContext(ctx,
		`INSERT INTO movies (title, description, studio_number, release_date) VALUES (?, ?, ?, ?)`,
		"The Dark Knight", "Batman melawan Joker.", 1, "2008-07-18")
	if err != nil {
		t.Fatalf("insert movie: %v", err)
	}
	movieID, _ := res.LastInsertId()

	res, err = db.ExecContext(ctx,
		`INSERT INTO showtimes (movie_id, time) VALUES (?, ?)`,
		movieID, time.Date(2026, time.August, 29, 19, 0, 0, 0, time.Local).Format(database.TimeLayout))
	if err != nil {
		t.Fatalf("insert showtime: %v", err)
	}
	showtimeID, _ := res.LastInsertId()
	return showtimeID
}

func TestBookSeatsAndAvailability(t *testing.T) {
	db := newTestDB(t)
	showtimeID := seedShowtime(t, db)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	bookings, err := repo.BookSeats(ctx, showtimeID, []string{"d7, e3"}, "Rafi")
	if err != nil {
		t.Fatalf("BookSeats: %v", err)
	}
	if len(bookings) != 2 || bookings[0].Seat != "D7" || bookings[1].Seat != "E3" {
		t.Fatalf("bookings = %+v, want D7 and E3", bookings)
	}

	available, err := repo.ListAvailableSeats(ctx, showtimeID)
	if err != nil {
		t.Fatalf("ListAvailableSeats: %v", err)
	}
	if len(available) != seatmap.Total()-2 {
		t.Fatalf("available = %d, want %d", len(available), seatmap.Total()-2)
	}
	for _, s := range available {
		if s == "D7" || s == "E3" {
			t.Fatalf("booked seat %s still listed as available", s)
		}
	}
}

func TestBookSeatsConflictKeepsFirstBooking(t *testing.T) {
	db := newTestDB(t)
	showtimeID := seedShowtime(t, db)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	if _, err := repo.BookSeats(ctx, showtimeID, []string{"D7"}, "Sinta"); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// The second request conflicts on D7; A1 must not be inserted
	// either, the transaction is all or nothing.
	_, err := repo.BookSeats(ctx, showtimeID, []string{"A1", "D7"}, "Rafi")
	var conflict *SeatConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want SeatConflictError", err)
	}
	if conflict.ShowtimeID != showtimeID {
		t.Fatalf("conflict showtime = %d, want %d", conflict.ShowtimeID, showtimeID)
	}

	booked, err := repo.ListBookedSeats(ctx, showtimeID)
	if err != nil {
		t.Fatalf("ListBookedSeats: %v", err)
	}
	if len(booked) != 1 || booked[0] != "D7" {
		t.Fatalf("booked = %v, want [D7] only", booked)
	}

	var owner string
	if err := db.QueryRowContext(ctx, `SELECT user_name FROM bookings WHERE showtime_id = ? AND seat = 'D7'`, showtimeID).Scan(&owner); err != nil {
		t.Fatalf("query owner: %v", err)
	}
	if owner != "Sinta" {
		t.Fatalf("owner = %q, first booking was overwritten", owner)
	}
}

func TestBookSeatsValidation(t *testing.T) {
	db := newTestDB(t)
	showtimeID := seedShowtime(t, db)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	if _, err := repo.BookSeats(ctx, showtimeID, nil, "Rafi"); !errors.Is(err, ErrNoSeats) {
		t.Fatalf("empty seats err = %v, want ErrNoSeats", err)
	}
	if _, err := repo.BookSeats(ctx, showtimeID, []string{" ", ","}, "Rafi"); !errors.Is(err, ErrNoSeats) {
		t.Fatalf("blank seats err = %v, want ErrNoSeats", err)
	}
	if _, err := repo.BookSeats(ctx, showtimeID, []string{"A1", "A2", "A3", "A4", "A5", "A6"}, "Rafi"); !errors.Is(err, ErrTooManySeats) {
		t.Fatalf("six seats err = %v, want ErrTooManySeats", err)
	}
	// Duplicates collapse before the cap is checked.
	if _, err := repo.BookSeats(ctx, showtimeID, []string{"B1", "b1", "B1 B2"}, "Rafi"); err != nil {
		t.Fatalf("deduplicated seats err = %v", err)
	}
}

func TestNormalizeSeats(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"d7, e3"}, []string{"D7", "E3"}},
		{[]string{"D7", "d7", " D7 "}, []string{"D7"}},
		{[]string{"a1 b2", "c3"}, []string{"A1", "B2", "C3"}},
		{[]string{" ", ","}, []string{}},
		{nil, []string{}},
	}
	for _, tt := range tests {
		got := NormalizeSeats(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("NormalizeSeats(%v) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("NormalizeSeats(%v) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/cinema-ticket-assistant/internal/model"
	"github.com/iliyamo/cinema-ticket-assistant/internal/seatmap"
)

// MaxSeatsPerBooking caps how many seats a single booking may claim.
const MaxSeatsPerBooking = 5

// BookingRepo creates bookings and answers seat-availability queries.
// The (showtime_id, seat) uniqueness constraint is enforced by the
// database at commit time, not by application-level locking, so two
// sessions racing for the same seat see exactly one succeed.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// ListBookedSeats returns the seat codes already sold for a showtime.
func (r *BookingRepo) ListBookedSeats(ctx context.Context, showtimeID int64) ([]string, error) {
	const q = `SELECT seat FROM bookings WHERE showtime_id = ?`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// ListAvailableSeats returns the full seat layout minus the seats
// already booked for the showtime, preserving layout order.
func (r *BookingRepo) ListAvailableSeats(ctx context.Context, showtimeID int64) ([]string, error) {
	booked, err := r.ListBookedSeats(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{}, len(booked))
	for _, s := range booked {
		taken[s] = struct{}{}
	}
	available := make([]string, 0, seatmap.Total()-len(taken))
	for _, s := range seatmap.All() {
		if _, ok := taken[s]; !ok {
			available = append(available, s)
		}
	}
	return available, nil
}

// BookSeats inserts one booking row per seat inside a single
// transaction: either every seat is inserted or none is.  Seats are
// normalized (split on comma/whitespace, trimmed, upper-cased,
// deduplicated) before insertion.  A uniqueness violation rolls the
// whole transaction back and surfaces as a *SeatConflictError carrying
// the seat the driver reported, so the first booking of a contested
// seat always remains intact.
func (r *BookingRepo) BookSeats(ctx context.Context, showtimeID int64, seats []string, userName string) ([]model.Booking, error) {
	normalized := NormalizeSeats(seats)
	if len(normalized) == 0 {
		return nil, ErrNoSeats
	}
	if len(normalized) > MaxSeatsPerBooking {
		return nil, ErrTooManySeats
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	bookings := make([]model.Booking, 0, len(normalized))
	for _, seat := range normalized {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO bookings (showtime_id, seat, user_name) VALUES (?, ?, ?)`,
			showtimeID, seat, userName,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, &SeatConflictError{ShowtimeID: showtimeID, Seats: []string{seat}}
			}
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, model.Booking{
			ID:         id,
			ShowtimeID: showtimeID,
			Seat:       seat,
			UserName:   userName,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return bookings, nil
}

var seatSplit = regexp.MustCompile(`[,\s]+`)

// NormalizeSeats flattens the raw seat values into clean upper-case
// codes.  Each element may itself contain several comma- or
// whitespace-separated codes.  Order of first appearance is kept and
// duplicates are dropped.
func NormalizeSeats(seats []string) []string {
	out := make([]string, 0, len(seats))
	seen := make(map[string]struct{}, len(seats))
	for _, raw := range seats {
		for _, part := range seatSplit.Split(raw, -1) {
			code := strings.ToUpper(strings.TrimSpace(part))
			if code == "" {
				continue
			}
			if _, ok := seen[code]; ok {
				continue
			}
			seen[code] = struct{}{}
			out = append(out, code)
		}
	}
	return out
}

// isUniqueViolation recognizes a uniqueness-constraint error from
// either supported driver: MySQL error 1062, or the SQLite constraint
// message produced by modernc.org/sqlite.
func isUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

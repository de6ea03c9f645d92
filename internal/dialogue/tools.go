package dialogue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticket-assistant/internal/model"
	"github.com/iliyamo/cinema-ticket-assistant/internal/repository"
)

// Tool names as announced to the answer capability.  The browsing step
// only ever executes the first three; booking execution is driven by
// the state machine, never by a model-issued call.
const (
	toolSearchMovies      = "search_movies"
	toolGetShowtimes      = "get_showtimes"
	toolGetAvailableSeats = "get_available_seats"
	toolBookTickets       = "book_tickets"
)

// toolResult carries both the user-facing message of a tool run and
// the structured data the engine needs to update slot caches.
type toolResult struct {
	text       string
	movies     []model.Movie
	showtimes  []model.Showtime
	seats      []string
	showtimeID int64
}

func (e *Engine) searchMoviesTool(ctx context.Context, title, genre string) (*toolResult, error) {
	movies, err := e.store.SearchMovies(ctx, title, genre)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	if len(movies) == 0 {
		return &toolResult{
			text:   "Film tidak ditemukan. Coba cari dengan genre atau judul lain.",
			movies: []model.Movie{},
		}, nil
	}
	var lines []string
	for i, m := range movies {
		lines = append(lines, fmt.Sprintf("%d. %s — %s...", i+1, m.Title, truncate(m.Description, 80)))
	}
	return &toolResult{
		text: "Ditemukan film berikut:\n" +
			strings.Join(lines, "\n") +
			"\nPilih dengan menyebut judul atau nomor urutnya.",
		movies: movies,
	}, nil
}

func (e *Engine) getShowtimesTool(ctx context.Context, movieID int64) (*toolResult, error) {
	if movieID == 0 {
		return &toolResult{text: "Silakan berikan film yang mau dicek jadwalnya dulu, ya."}, nil
	}
	shows, err := e.store.ListShowtimes(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("list showtimes: %w", err)
	}
	if len(shows) == 0 {
		return &toolResult{
			text:      "Maaf, belum ada jadwal tayang untuk film ini.",
			showtimes: []model.Showtime{},
		}, nil
	}
	var lines []string
	for i, s := range shows {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, s.Display()))
	}
	return &toolResult{
		text: "Jadwal tersedia:\n" +
			strings.Join(lines, "\n") +
			"\nSebut jam/tanggal atau nomor urut jadwal yang kamu mau.",
		showtimes: shows,
	}, nil
}

func (e *Engine) getAvailableSeatsTool(ctx context.Context, showtimeID int64) (*toolResult, error) {
	if showtimeID == 0 {
		return &toolResult{text: "Silakan sebutkan jadwal mana yang mau dicek kursinya."}, nil
	}
	seats, err := e.store.ListAvailableSeats(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("list available seats: %w", err)
	}
	if len(seats) == 0 {
		return &toolResult{
			text:  "Maaf, kursi untuk jadwal ini sudah penuh.",
			seats: []string{},
		}, nil
	}
	return &toolResult{
		text: "Kursi yang tersedia:\n" +
			strings.Join(formatSeatRows(seats), "\n") +
			"\nPilih kursi dengan menyebut kode seperti D7 atau E3.",
		seats:      seats,
		showtimeID: showtimeID,
	}, nil
}

// bookTicketsTool attempts the booking and always produces a
// user-facing message, success or not.  Only infrastructure failures
// reach the caller as a message, never as an error: a failed booking
// still ends the flow with an explanation.
func (e *Engine) bookTicketsTool(ctx context.Context, showtimeID int64, seats []string, userName string) (bool, string) {
	if showtimeID == 0 {
		return false, "Masih belum tahu jadwal mana yang mau dibooking. Boleh ulangi?"
	}
	if strings.TrimSpace(userName) == "" {
		return false, "Nama pemesan wajib diisi dulu, ya."
	}
	bookings, err := e.store.BookSeats(ctx, showtimeID, seats, userName)
	if err != nil {
		var conflict *repository.SeatConflictError
		switch {
		case errors.Is(err, repository.ErrNoSeats):
			return false, "Daftar kursi tidak valid. Coba sebutkan lagi kursinya."
		case errors.Is(err, repository.ErrTooManySeats):
			return false, fmt.Sprintf("Maaf, maksimal pemesanan sekaligus adalah %d kursi.", repository.MaxSeatsPerBooking)
		case errors.As(err, &conflict):
			return false, fmt.Sprintf("Salah satu kursi (%s) sudah terisi. Pilih kursi lain, ya.", strings.Join(seats, ", "))
		default:
			e.log.Error("booking failed", zap.Int64("showtime_id", showtimeID), zap.Error(err))
			return false, "Gagal memproses pemesanan. Coba lagi sebentar lagi, ya."
		}
	}
	booked := make([]string, len(bookings))
	for i, b := range bookings {
		booked[i] = b.Seat
	}
	return true, fmt.Sprintf("Sukses! Tiket untuk %s di kursi %s telah dikonfirmasi.", userName, strings.Join(booked, ", "))
}

// runBrowsingTool dispatches a model-issued tool call.  Unknown tool
// names and the booking tool are rejected so the model can never book
// without the confirmation step.
func (e *Engine) runBrowsingTool(ctx context.Context, call ToolCall) (*toolResult, error) {
	switch call.Name {
	case toolSearchMovies:
		title := argString(call.Args, "title", "movie_title", "movie")
		genre := argString(call.Args, "genre_name", "genre")
		return e.searchMoviesTool(ctx, title, genre)
	case toolGetShowtimes:
		return e.getShowtimesTool(ctx, argInt(call.Args, "movie_id", "id", "film_id", "movie"))
	case toolGetAvailableSeats:
		return e.getAvailableSeatsTool(ctx, argInt(call.Args, "showtime_id", "schedule_id", "id"))
	default:
		return nil, fmt.Errorf("unknown tool %q", call.Name)
	}
}

// formatSeatRows groups seat codes by row letter into display lines,
// one row per line, seats in numeric order.
func formatSeatRows(seats []string) []string {
	rows := map[byte][]string{}
	var letters []byte
	for _, seat := range seats {
		if seat == "" {
			continue
		}
		letter := seat[0]
		if _, ok := rows[letter]; !ok {
			letters = append(letters, letter)
		}
		rows[letter] = append(rows[letter], seat)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	lines := make([]string, 0, len(letters))
	for _, letter := range letters {
		row := rows[letter]
		sort.Slice(row, func(i, j int) bool {
			if len(row[i]) != len(row[j]) {
				return len(row[i]) < len(row[j])
			}
			return row[i] < row[j]
		})
		lines = append(lines, fmt.Sprintf("Baris %c: %s", letter, strings.Join(row, ", ")))
	}
	return lines
}

// truncate caps a string at max runes.  Slicing by byte index could
// cut a multi-byte rune in half.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// argString returns the first non-empty string value among the given
// aliases.  Models are inconsistent about argument names, so every
// tool accepts a few spellings.
func argString(args map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := args[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// argInt coerces the first present alias to an integer id.  JSON
// decoding yields float64 for numbers; models occasionally quote ids.
func argInt(args map[string]any, keys ...string) int64 {
	for _, key := range keys {
		v, ok := args[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case int64:
			return n
		case int:
			return int64(n)
		case float64:
			return int64(n)
		case string:
			if id, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
				return id
			}
		}
	}
	return 0
}

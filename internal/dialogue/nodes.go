package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticket-assistant/internal/seatmap"
)

// fallbackReply is used whenever the answer capability fails mid-turn.
// The state is left untouched so the user can simply try again.
const fallbackReply = "Maaf, saya sedang mengalami kendala. Coba ulangi lagi, ya."

// browsingAgent handles open-ended questions.  It asks the answer
// capability for a response, executes any browsing-safe tool calls it
// requested, and lets the capability phrase the final answer from the
// tool output.  Tool results are also harvested into the slot caches
// so a browsing detour can seed a booking flow.
func (e *Engine) browsingAgent(ctx context.Context, st *State) error {
	reply, err := e.responder.Respond(ctx, st.Messages)
	if err != nil || reply == nil {
		if err != nil {
			e.log.Warn("responder failed", zap.Error(err))
		}
		st.AddAssistant(fallbackReply)
		return nil
	}
	if len(reply.Calls) == 0 {
		if strings.TrimSpace(reply.Text) == "" {
			st.AddAssistant(fallbackReply)
			return nil
		}
		st.AddAssistant(reply.Text)
		return nil
	}

	var outputs []ToolOutput
	var harvest []harvestItem
	for _, call := range reply.Calls {
		if call.Name == toolBookTickets {
			e.log.Warn("model requested booking outside the confirmation flow, ignoring")
			continue
		}
		result, err := e.runBrowsingTool(ctx, call)
		if err != nil {
			e.log.Warn("browsing tool failed", zap.String("tool", call.Name), zap.Error(err))
			continue
		}
		st.AddTool(call.Name, result.text)
		outputs = append(outputs, ToolOutput{Call: call, Text: result.text})
		harvest = append(harvest, harvestItem{call: call, result: result})
	}
	if len(outputs) == 0 {
		if strings.TrimSpace(reply.Text) != "" {
			st.AddAssistant(reply.Text)
		} else {
			st.AddAssistant(fallbackReply)
		}
		return nil
	}

	answer, err := e.responder.Followup(ctx, st.Messages, reply, outputs)
	if err != nil || strings.TrimSpace(answer) == "" {
		if err != nil {
			e.log.Warn("responder followup failed", zap.Error(err))
		}
		// Fall back to the raw tool messages; they are already phrased
		// for the user.
		texts := make([]string, len(outputs))
		for i, out := range outputs {
			texts[i] = out.Text
		}
		answer = strings.Join(texts, "\n\n")
	}
	st.AddAssistant(answer)

	e.harvestToolState(ctx, st, harvest)
	return nil
}

type harvestItem struct {
	call   ToolCall
	result *toolResult
}

// harvestToolState folds browsing tool results into the dialogue
// slots.  Lookups of showtimes or seats imply a booking in progress;
// a bare movie search only suggests one, so it never overrides what an
// earlier call in the same turn established.
func (e *Engine) harvestToolState(ctx context.Context, st *State, items []harvestItem) {
	var intentSet, questionSet bool
	for _, item := range items {
		switch item.call.Name {
		case toolSearchMovies:
			if !intentSet {
				st.Intent = IntentBrowsing
				intentSet = true
			}
			if !questionSet {
				st.CurrentQuestion = AskMovie
				questionSet = true
			}
			if item.result.movies != nil {
				st.CandidateMovies = item.result.movies
				if len(item.result.movies) == 1 {
					st.CurrentMovieID = item.result.movies[0].ID
					st.MovieTitle = item.result.movies[0].Title
				}
			}
		case toolGetShowtimes:
			st.Intent = IntentBooking
			st.CurrentQuestion = AskShowtime
			intentSet, questionSet = true, true
			if id := argInt(item.call.Args, "movie_id", "id"); id != 0 {
				st.CurrentMovieID = id
			}
			if item.result.showtimes != nil {
				st.AvailableShowtimes = item.result.showtimes
				if len(item.result.showtimes) == 1 {
					st.CurrentShowtimeID = item.result.showtimes[0].ID
				}
				if st.MovieTitle == "" {
					st.MovieTitle = e.lookupTitle(ctx, st.CurrentMovieID)
				}
			}
		case toolGetAvailableSeats:
			st.Intent = IntentBooking
			st.CurrentQuestion = AskSeats
			intentSet, questionSet = true, true
			if id := argInt(item.call.Args, "showtime_id", "schedule_id", "id"); id != 0 {
				st.CurrentShowtimeID = id
			} else if item.result.showtimeID != 0 {
				st.CurrentShowtimeID = item.result.showtimeID
			}
			if item.result.seats != nil {
				st.AvailableSeats = item.result.seats
			}
		}
	}
}

// findMovie pins down which movie the user wants.  With exactly one
// match the movie is selected outright and the flow moves straight to
// its showtimes; listing a single candidate back to the user would
// only add a turn.
func (e *Engine) findMovie(ctx context.Context, st *State) error {
	if st.MovieTitle == "" && st.Genre == "" {
		st.AddAssistant("Tentu, mau cari film apa atau genre apa?")
		st.CurrentQuestion = AskMovie
		return nil
	}

	result, err := e.searchMoviesTool(ctx, st.MovieTitle, st.Genre)
	if err != nil {
		return err
	}
	st.AddTool(toolSearchMovies, result.text)

	st.CandidateMovies = result.movies
	if len(result.movies) == 1 {
		st.CurrentMovieID = result.movies[0].ID
		st.MovieTitle = result.movies[0].Title
		e.log.Debug("single movie match, advancing to showtimes",
			zap.Int64("movie_id", st.CurrentMovieID), zap.String("title", st.MovieTitle))
		return e.findShowtime(ctx, st)
	}

	if len(result.movies) == 0 {
		st.AddAssistant(result.text + " Mau coba cari genre atau judul lain?")
		st.CurrentQuestion = AskMovie
		return nil
	}

	var lines []string
	for i, m := range result.movies {
		snippet := strings.TrimSpace(m.Description)
		if utf8.RuneCountInString(snippet) > 120 {
			snippet = truncate(snippet, 120) + "..."
		}
		if snippet == "" {
			snippet = "Deskripsi tidak tersedia"
		}
		lines = append(lines, fmt.Sprintf("%d. %s — %s", i+1, m.Title, snippet))
	}
	st.AddAssistant(
		"Berikut daftar film yang cocok:\n" +
			strings.Join(lines, "\n") +
			"\nSilakan pilih dengan menyebut judul atau nomor urutnya.")
	st.CurrentQuestion = AskMovie
	return nil
}

// findShowtime lists the schedule for the selected movie.
func (e *Engine) findShowtime(ctx context.Context, st *State) error {
	if st.CurrentMovieID == 0 {
		st.AddAssistant("Ups, sepertinya saya belum tahu Anda mau film apa. Bisa sebutkan judul filmnya?")
		st.Intent = IntentBooking
		st.CurrentQuestion = AskMovie
		return nil
	}

	result, err := e.getShowtimesTool(ctx, st.CurrentMovieID)
	if err != nil {
		return err
	}
	st.AddTool(toolGetShowtimes, result.text)

	if st.MovieTitle == "" {
		st.MovieTitle = e.lookupTitle(ctx, st.CurrentMovieID)
	}

	st.AvailableShowtimes = result.showtimes
	if len(result.showtimes) == 0 {
		st.AddAssistant(result.text + " Mau cek film lain?")
		st.CurrentQuestion = AskShowtime
		return nil
	}
	if len(result.showtimes) == 1 {
		st.CurrentShowtimeID = result.showtimes[0].ID
	}

	label := st.MovieTitle
	if label == "" {
		label = "film ini"
	}
	var lines []string
	for i, s := range result.showtimes {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, s.Display()))
	}
	st.AddAssistant(fmt.Sprintf(
		"Jadwal tayang untuk %s yang tersedia:\n%s\nSebutkan nomor urut atau jam/tanggal yang kamu inginkan.",
		label, strings.Join(lines, "\n")))
	st.CurrentQuestion = AskShowtime
	return nil
}

// maxSeatRowsShown caps the seat display so a freshly seeded showtime
// does not dump all thirteen rows at once.
const maxSeatRowsShown = 8

// selectSeats shows the open seats for the chosen showtime.
func (e *Engine) selectSeats(ctx context.Context, st *State) error {
	if st.CurrentShowtimeID == 0 {
		st.AddAssistant("Ups, sepertinya saya belum tahu Anda mau jadwal jam berapa. Bisa pilih salah satu jadwalnya?")
		st.Intent = IntentBooking
		st.CurrentQuestion = AskShowtime
		return nil
	}

	result, err := e.getAvailableSeatsTool(ctx, st.CurrentShowtimeID)
	if err != nil {
		return err
	}
	st.AddTool(toolGetAvailableSeats, result.text)

	st.AvailableSeats = result.seats
	if len(result.seats) == 0 {
		st.AddAssistant(result.text)
		st.CurrentQuestion = AskSeats
		return nil
	}

	rows := formatSeatRows(result.seats)
	shown := rows
	if len(rows) > maxSeatRowsShown {
		shown = rows[:maxSeatRowsShown]
	}
	rowsText := strings.Join(shown, "\n")
	if remaining := len(rows) - len(shown); remaining > 0 {
		rowsText += fmt.Sprintf("\n... dan %d baris lainnya masih kosong.", remaining)
	}
	st.AddAssistant(
		"Kursi yang masih tersedia:\n" +
			rowsText +
			"\nSebutkan kursi yang kamu mau, contoh D7 atau E3.")
	st.CurrentQuestion = AskSeats
	return nil
}

// confirmBooking recaps the order and asks for a yes/no.  Missing a
// name, it asks for that first; the confirmation question is only set
// once every slot is on the table.
func (e *Engine) confirmBooking(ctx context.Context, st *State) error {
	if strings.TrimSpace(st.UserName) == "" {
		st.AddAssistant("Baik, pemesanan ini atas nama siapa?")
		st.CurrentQuestion = AskName
		return nil
	}

	seatList := "(belum dipilih)"
	if len(st.SelectedSeats) > 0 {
		seatList = strings.Join(st.SelectedSeats, ", ")
	}

	movieLabel := st.MovieTitle
	if movieLabel == "" && st.CurrentMovieID != 0 {
		movieLabel = e.lookupTitle(ctx, st.CurrentMovieID)
	}
	if movieLabel == "" {
		if st.CurrentMovieID != 0 {
			movieLabel = fmt.Sprintf("Film ID %d", st.CurrentMovieID)
		} else {
			movieLabel = "(belum dipilih)"
		}
	}

	showtimeLabel := "(belum dipilih)"
	if st.CurrentShowtimeID != 0 {
		showtimeLabel = fmt.Sprintf("Jadwal ID %d", st.CurrentShowtimeID)
		if label := e.showtimeLabel(ctx, st); label != "" {
			showtimeLabel = label
		}
	}

	st.AddAssistant(fmt.Sprintf(
		"Konfirmasi pesanan:\n- Film: %s\n- Jadwal: %s\n- Kursi: %s\n- Atas Nama: %s\n\nApakah sudah benar? (ya/tidak)",
		movieLabel, showtimeLabel, seatList, st.UserName))
	st.CurrentQuestion = AskConfirmation
	return nil
}

// showtimeLabel resolves the display label of the selected showtime,
// preferring the cached list over a fresh lookup.
func (e *Engine) showtimeLabel(ctx context.Context, st *State) string {
	for _, s := range st.AvailableShowtimes {
		if s.ID == st.CurrentShowtimeID {
			return s.Display()
		}
	}
	show, err := e.store.Showtime(ctx, st.CurrentShowtimeID)
	if err != nil || show == nil {
		if err != nil {
			e.log.Warn("showtime lookup failed", zap.Int64("showtime_id", st.CurrentShowtimeID), zap.Error(err))
		}
		return ""
	}
	return show.Display()
}

// executeBooking runs the confirmed booking.  Whatever the outcome,
// the booking slots are reset afterwards so the next request starts
// clean; only an invalid seat code keeps the flow alive, clearing just
// the seats and re-asking for them.
func (e *Engine) executeBooking(ctx context.Context, st *State) error {
	if st.CurrentShowtimeID == 0 || len(st.SelectedSeats) == 0 || strings.TrimSpace(st.UserName) == "" {
		e.log.Warn("booking executed with incomplete slots",
			zap.Int64("showtime_id", st.CurrentShowtimeID),
			zap.Strings("seats", st.SelectedSeats))
		st.AddAssistant("Maaf, terjadi kesalahan. Data pemesanan tidak lengkap. Mari kita ulangi dari awal.")
		st.ResetBooking()
		return nil
	}

	var invalid []string
	for _, seat := range st.SelectedSeats {
		if !seatmap.IsValid(seat) {
			invalid = append(invalid, seat)
		}
	}
	if len(invalid) > 0 {
		st.AddAssistant(fmt.Sprintf(
			"Maaf, kursi %s tidak ada dalam denah. Silakan pilih ulang kursi yang tersedia.",
			strings.Join(invalid, ", ")))
		st.SelectedSeats = nil
		st.CurrentQuestion = AskSeats
		return nil
	}

	showtimeID := st.CurrentShowtimeID
	seats := append([]string(nil), st.SelectedSeats...)
	userName := st.UserName
	e.log.Info("executing booking",
		zap.Int64("showtime_id", showtimeID),
		zap.Strings("seats", seats),
		zap.String("user_name", userName))

	ok, message := e.bookTicketsTool(ctx, showtimeID, seats, userName)
	st.AddTool(toolBookTickets, message)

	if ok && e.Events != nil {
		e.Events.BookingConfirmed(ctx, BookingEvent{
			ShowtimeID:  showtimeID,
			MovieTitle:  st.MovieTitle,
			Showtime:    e.showtimeLabel(ctx, st),
			Seats:       seats,
			UserName:    userName,
			ConfirmedAt: time.Now(),
		})
	}

	st.ResetBooking()
	return nil
}

// finalResponse wraps the booking tool's outcome in the closing
// assistant message.  Validation failures already produced their own
// assistant message and pass through untouched.
func (e *Engine) finalResponse(st *State) {
	last, ok := st.LastMessage()
	if !ok || last.Role != RoleTool {
		return
	}
	st.AddAssistant("Status Pemesanan: " + last.Content)
}

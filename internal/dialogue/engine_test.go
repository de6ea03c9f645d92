package dialogue

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticket-assistant/internal/model"
	"github.com/iliyamo/cinema-ticket-assistant/internal/repository"
	"github.com/iliyamo/cinema-ticket-assistant/internal/seatmap"
)

// fakeStore is an in-memory Store with the same error contract as the
// repository package.
type fakeStore struct {
	movies    []model.Movie
	showtimes map[int64][]model.Showtime
	booked    map[int64]map[string]string
}

func newFakeStore() *fakeStore {
	day := time.Date(2026, time.August, 29, 0, 0, 0, 0, time.Local)
	return &fakeStore{
		movies: []model.Movie{
			{ID: 1, Title: "The Dark Knight", Description: "Batman melawan Joker.", Genres: []string{"Action", "Crime"}},
			{ID: 2, Title: "Up", Description: "Petualangan balon udara.", Genres: []string{"Animation", "Family"}},
		},
		showtimes: map[int64][]model.Showtime{
			1: {
				{ID: 101, MovieID: 1, Time: day.Add(19 * time.Hour)},
				{ID: 102, MovieID: 1, Time: day.Add(21*time.Hour + 30*time.Minute)},
				{ID: 103, MovieID: 1, Time: day.AddDate(0, 0, 1).Add(16 * time.Hour)},
			},
			2: {
				{ID: 201, MovieID: 2, Time: day.Add(19 * time.Hour)},
			},
		},
		booked: make(map[int64]map[string]string),
	}
}

func (f *fakeStore) SearchMovies(_ context.Context, title, genre string) ([]model.Movie, error) {
	var out []model.Movie
	for _, m := range f.movies {
		if title != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(title)) {
			continue
		}
		if genre != "" {
			found := false
			for _, g := range m.Genres {
				if strings.EqualFold(g, genre) {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) MovieTitle(_ context.Context, movieID int64) (string, error) {
	for _, m := range f.movies {
		if m.ID == movieID {
			return m.Title, nil
		}
	}
	return "", repository.ErrMovieNotFound
}

func (f *fakeStore) ListShowtimes(_ context.Context, movieID int64) ([]model.Showtime, error) {
	return f.showtimes[movieID], nil
}

func (f *fakeStore) Showtime(_ context.Context, showtimeID int64) (*model.Showtime, error) {
	for _, shows := range f.showtimes {
		for i := range shows {
			if shows[i].ID == showtimeID {
				return &shows[i], nil
			}
		}
	}
	return nil, repository.ErrShowtimeNotFound
}

func (f *fakeStore) ListAvailableSeats(_ context.Context, showtimeID int64) ([]string, error) {
	taken := f.booked[showtimeID]
	var out []string
	for _, seat := range seatmap.All() {
		if _, ok := taken[seat]; !ok {
			out = append(out, seat)
		}
	}
	return out, nil
}

func (f *fakeStore) BookSeats(_ context.Context, showtimeID int64, seats []string, userName string) ([]model.Booking, error) {
	if len(seats) == 0 {
		return nil, repository.ErrNoSeats
	}
	if len(seats) > repository.MaxSeatsPerBooking {
		return nil, repository.ErrTooManySeats
	}
	for _, seat := range seats {
		if _, ok := f.booked[showtimeID][seat]; ok {
			return nil, &repository.SeatConflictError{ShowtimeID: showtimeID, Seats: []string{seat}}
		}
	}
	if f.booked[showtimeID] == nil {
		f.booked[showtimeID] = make(map[string]string)
	}
	bookings := make([]model.Booking, 0, len(seats))
	for _, seat := range seats {
		f.booked[showtimeID][seat] = userName
		bookings = append(bookings, model.Booking{ShowtimeID: showtimeID, Seat: seat, UserName: userName})
	}
	return bookings, nil
}

// fakeClassifier replays a scripted sequence of extractions.
type fakeClassifier struct {
	exts []*Extraction
	err  error
}

func (f *fakeClassifier) Classify(context.Context, string) (*Extraction, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.exts) == 0 {
		return &Extraction{Intent: "other"}, nil
	}
	ext := f.exts[0]
	f.exts = f.exts[1:]
	return ext, nil
}

type fakeResponder struct {
	reply    *Reply
	followup string
}

func (f *fakeResponder) Respond(context.Context, []Message) (*Reply, error) {
	if f.reply == nil {
		return &Reply{Text: "Ada yang bisa dibantu?"}, nil
	}
	return f.reply, nil
}

func (f *fakeResponder) Followup(context.Context, []Message, *Reply, []ToolOutput) (string, error) {
	return f.followup, nil
}

type fakeSink struct {
	events []BookingEvent
}

func (f *fakeSink) BookingConfirmed(_ context.Context, ev BookingEvent) {
	f.events = append(f.events, ev)
}

func requireReplyContains(t *testing.T, replies []string, substr string) {
	t.Helper()
	for _, r := range replies {
		if strings.Contains(r, substr) {
			return
		}
	}
	t.Fatalf("no reply contains %q; replies: %v", substr, replies)
}

func TestEngineBookingFlow(t *testing.T) {
	store := newFakeStore()
	cls := &fakeClassifier{exts: []*Extraction{
		{Intent: "booking", UserName: "Rafi", MovieTitle: "The Dark Knight"},
		{Intent: "other"},
		{Intent: "other"},
		{Intent: "other"},
	}}
	sink := &fakeSink{}
	engine := NewEngine(store, cls, &fakeResponder{}, zap.NewNop())
	engine.Events = sink

	ctx := context.Background()
	st := NewState()

	// Turn 1: name, intent and title in one message; a single title
	// match selects the movie and goes straight to its schedule.
	replies, err := engine.Turn(ctx, st, "saya Rafi mau pesan tiket The Dark Knight")
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	requireReplyContains(t, replies, "Jadwal tayang untuk The Dark Knight")
	if st.UserName != "Rafi" {
		t.Fatalf("user name = %q, want Rafi", st.UserName)
	}
	if st.CurrentMovieID != 1 {
		t.Fatalf("movie id = %d, want 1", st.CurrentMovieID)
	}
	if st.CurrentQuestion != AskShowtime {
		t.Fatalf("question = %q, want %q", st.CurrentQuestion, AskShowtime)
	}
	if len(st.AvailableShowtimes) != 3 {
		t.Fatalf("cached showtimes = %d, want 3", len(st.AvailableShowtimes))
	}

	// Turn 2: colloquial evening hour resolves against the cached
	// schedule list.
	replies, err = engine.Turn(ctx, st, "jam 9 malam")
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	requireReplyContains(t, replies, "Kursi yang masih tersedia")
	if st.CurrentShowtimeID != 102 {
		t.Fatalf("showtime id = %d, want 102", st.CurrentShowtimeID)
	}
	if st.CurrentQuestion != AskSeats {
		t.Fatalf("question = %q, want %q", st.CurrentQuestion, AskSeats)
	}

	// Turn 3: a bare seat code answers the pending question and leads
	// to the confirmation recap.
	replies, err = engine.Turn(ctx, st, "D7")
	if err != nil {
		t.Fatalf("turn 3: %v", err)
	}
	requireReplyContains(t, replies, "Konfirmasi pesanan:")
	requireReplyContains(t, replies, "Rafi")
	requireReplyContains(t, replies, "D7")
	if st.CurrentQuestion != AskConfirmation {
		t.Fatalf("question = %q, want %q", st.CurrentQuestion, AskConfirmation)
	}

	// Turn 4: confirmation executes the booking and resets the flow.
	replies, err = engine.Turn(ctx, st, "ya")
	if err != nil {
		t.Fatalf("turn 4: %v", err)
	}
	requireReplyContains(t, replies, "Status Pemesanan: Sukses! Tiket untuk Rafi di kursi D7 telah dikonfirmasi.")

	if _, ok := store.booked[102]["D7"]; !ok {
		t.Fatal("seat D7 not recorded for showtime 102")
	}
	if st.CurrentMovieID != 0 || st.CurrentShowtimeID != 0 || len(st.SelectedSeats) != 0 {
		t.Fatalf("booking slots not reset: %+v", st)
	}
	if st.CurrentQuestion != QuestionNone {
		t.Fatalf("question = %q, want none", st.CurrentQuestion)
	}
	if st.UserName != "Rafi" {
		t.Fatalf("user name lost on reset: %q", st.UserName)
	}

	if len(sink.events) != 1 {
		t.Fatalf("events = %d, want 1", len(sink.events))
	}
	ev := sink.events[0]
	if ev.ShowtimeID != 102 || ev.UserName != "Rafi" || len(ev.Seats) != 1 || ev.Seats[0] != "D7" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestEngineConfirmationNoEndsWithoutReset(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, &fakeClassifier{}, &fakeResponder{}, zap.NewNop())

	st := bookingReadyState()
	replies, err := engine.Turn(context.Background(), st, "tidak")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if len(replies) != 0 {
		t.Fatalf("replies = %v, want none", replies)
	}
	// Declining keeps the slots so the user can amend instead of
	// starting over.
	if st.CurrentShowtimeID != 102 || len(st.SelectedSeats) != 1 {
		t.Fatalf("slots changed on decline: %+v", st)
	}
	if len(store.booked[102]) != 0 {
		t.Fatal("booking executed despite decline")
	}
}

func TestEngineInvalidSeatKeepsFlowAlive(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, &fakeClassifier{}, &fakeResponder{}, zap.NewNop())

	st := bookingReadyState()
	st.SelectedSeats = []string{"Z99"}
	replies, err := engine.Turn(context.Background(), st, "ya")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	requireReplyContains(t, replies, "tidak ada dalam denah")
	if len(st.SelectedSeats) != 0 {
		t.Fatalf("invalid seats kept: %v", st.SelectedSeats)
	}
	if st.CurrentQuestion != AskSeats {
		t.Fatalf("question = %q, want %q", st.CurrentQuestion, AskSeats)
	}
	// Only the seat slot is cleared; movie and showtime survive.
	if st.CurrentMovieID != 1 || st.CurrentShowtimeID != 102 {
		t.Fatalf("unrelated slots reset: %+v", st)
	}
}

func TestEngineSeatConflictResetsFlow(t *testing.T) {
	store := newFakeStore()
	store.booked[102] = map[string]string{"D7": "Sinta"}
	engine := NewEngine(store, &fakeClassifier{}, &fakeResponder{}, zap.NewNop())

	st := bookingReadyState()
	replies, err := engine.Turn(context.Background(), st, "ya")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	requireReplyContains(t, replies, "sudah terisi")
	if store.booked[102]["D7"] != "Sinta" {
		t.Fatal("existing booking overwritten")
	}
	if st.CurrentShowtimeID != 0 || st.CurrentQuestion != QuestionNone {
		t.Fatalf("state not reset after failed booking: %+v", st)
	}
}

func TestEngineBrowsingHarvestsToolResults(t *testing.T) {
	store := newFakeStore()
	cls := &fakeClassifier{exts: []*Extraction{{Intent: "browsing"}}}
	resp := &fakeResponder{
		reply: &Reply{Calls: []ToolCall{
			{Name: "search_movies", Args: map[string]any{"title": "up"}},
		}},
		followup: "Ada film Up, mau lihat jadwalnya?",
	}
	engine := NewEngine(store, cls, resp, zap.NewNop())

	st := NewState()
	replies, err := engine.Turn(context.Background(), st, "ada film apa saja?")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	requireReplyContains(t, replies, "Ada film Up")
	if st.Intent != IntentBrowsing {
		t.Fatalf("intent = %q, want browsing", st.Intent)
	}
	if st.CurrentQuestion != AskMovie {
		t.Fatalf("question = %q, want %q", st.CurrentQuestion, AskMovie)
	}
	// A single search hit is adopted as the current movie.
	if st.CurrentMovieID != 2 || st.MovieTitle != "Up" {
		t.Fatalf("harvest missed single match: id=%d title=%q", st.CurrentMovieID, st.MovieTitle)
	}
}

func TestEngineEmptyMessageIgnored(t *testing.T) {
	engine := NewEngine(newFakeStore(), &fakeClassifier{}, &fakeResponder{}, zap.NewNop())
	st := NewState()
	replies, err := engine.Turn(context.Background(), st, "   ")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if replies != nil || len(st.Messages) != 0 {
		t.Fatalf("empty message changed state: replies=%v messages=%d", replies, len(st.Messages))
	}
}

// bookingReadyState returns a state one confirmation away from a
// booking for showtime 102.
func bookingReadyState() *State {
	day := time.Date(2026, time.August, 29, 0, 0, 0, 0, time.Local)
	st := NewState()
	st.Intent = IntentAnswering
	st.CurrentQuestion = AskConfirmation
	st.MovieTitle = "The Dark Knight"
	st.CurrentMovieID = 1
	st.CurrentShowtimeID = 102
	st.SelectedSeats = []string{"D7"}
	st.UserName = "Rafi"
	st.AvailableShowtimes = []model.Showtime{
		{ID: 102, MovieID: 1, Time: day.Add(21*time.Hour + 30*time.Minute)},
	}
	st.AddUser("D7")
	st.AddAssistant(fmt.Sprintf("Konfirmasi pesanan untuk %s. Apakah sudah benar? (ya/tidak)", st.UserName))
	return st
}

package dialogue

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Keyword sets for the deterministic override rules.  These run after
// the external NLU call and may overwrite its guesses: free-text
// classification is unreliable for short disambiguating replies, so
// slot-filling heuristics win whenever a specific question is pending.
var (
	bookingKeywords  = []string{"pesan", "booking", "kursi", "seat", "kursinya", "kursi nya", "cek seat", "cek kursi", "ambil", "mau"}
	scheduleKeywords = []string{"kapan", "jadwal", "tayang", "jam", "showtime"}
	seatKeywords     = []string{"kursi", "seat", "bangku"}
)

// classifyIntent interprets the latest user turn: it merges the NLU
// extraction into the state and then applies the override rules in a
// fixed order.  Each rule may overwrite intent, slots or the pending
// question set by earlier stages; the order is the contract.
func (e *Engine) classifyIntent(ctx context.Context, st *State) {
	last, ok := st.LastMessage()
	if !ok {
		st.Intent = IntentOther
		return
	}
	raw := last.Content
	lower := strings.ToLower(raw)

	// Snapshot the pre-turn state: several rules distinguish between
	// values that were already known and values set this turn.
	prev := *st
	var set struct {
		movieID, showtimeID, seats, title, name, question bool
	}

	ext, err := e.classifier.Classify(ctx, raw)
	if err != nil || ext == nil {
		if err != nil {
			e.log.Warn("classifier failed, defaulting intent", zap.Error(err))
		}
		st.Intent = IntentOther
		ext = &Extraction{}
	} else {
		st.Intent = normalizeIntent(ext.Intent)
	}

	// Merge extracted entities, field by field.  A value is taken only
	// when it is non-empty and differs from what the slot already holds.
	if ext.UserName != "" && prev.UserName != ext.UserName {
		st.UserName = ext.UserName
		set.name = true
		e.log.Debug("captured slot", zap.String("slot", "user_name"), zap.String("value", ext.UserName))
	}
	if title := ext.MovieTitle; title != "" && titleAppearsInText(title, lower) && prev.MovieTitle != title {
		st.MovieTitle = title
		set.title = true
		e.log.Debug("captured slot", zap.String("slot", "movie_title"), zap.String("value", title))
	}
	if ext.Genre != "" && prev.Genre != ext.Genre {
		st.Genre = ext.Genre
		e.log.Debug("captured slot", zap.String("slot", "genre"), zap.String("value", ext.Genre))
	}
	if id := coerceID(ext.MovieID); id != 0 && prev.CurrentMovieID != id {
		st.CurrentMovieID = id
		set.movieID = true
		e.log.Debug("captured slot", zap.String("slot", "movie_id"), zap.Int64("value", id))
	}
	if id := coerceID(ext.ShowtimeID); id != 0 && prev.CurrentShowtimeID != id {
		st.CurrentShowtimeID = id
		set.showtimeID = true
		e.log.Debug("captured slot", zap.String("slot", "showtime_id"), zap.Int64("value", id))
	}
	if seats := normalizeSeatInput(ext.Seats); len(seats) > 0 && !equalSeats(prev.SelectedSeats, seats) {
		st.SelectedSeats = seats
		set.seats = true
		e.log.Debug("captured slot", zap.String("slot", "seats"), zap.Strings("value", seats))
	}

	// Rule a: booking-action keywords force the booking intent when the
	// NLU hedged, and hint at which question to ask next.
	if (st.Intent == IntentOther || st.Intent == IntentBrowsing) && containsAny(lower, bookingKeywords) {
		st.Intent = IntentBooking
		if !set.question {
			if containsAny(lower, []string{"kursi", "seat"}) {
				st.CurrentQuestion = AskSeats
				set.question = true
			} else if containsAny(lower, []string{"jam", ":", "jadwal", "hari"}) {
				st.CurrentQuestion = AskShowtime
				set.question = true
			}
		}
	}

	// Rule b: a freshly extracted title with no movie id known anywhere
	// means the movie still has to be pinned down.
	if !set.movieID && prev.CurrentMovieID == 0 && set.title && !set.question {
		st.CurrentQuestion = AskMovie
		set.question = true
	}

	// Rule c: movie known, showtime not, schedule wording present.
	// Rule d: showtime known, seats not, seat wording present.
	if prev.CurrentMovieID != 0 && !set.showtimeID && containsAny(lower, scheduleKeywords) {
		e.log.Debug("schedule wording detected, forcing booking intent")
		st.Intent = IntentBooking
		if match := MatchShowtime(raw, st.AvailableShowtimes); match != nil {
			st.CurrentShowtimeID = match.ID
			set.showtimeID = true
			st.Intent = IntentAnswering
			e.log.Debug("showtime resolved from schedule wording", zap.Int64("showtime_id", match.ID))
		}
	} else if prev.CurrentShowtimeID != 0 && !set.seats && containsAny(lower, seatKeywords) {
		e.log.Debug("seat wording detected, forcing booking intent")
		st.Intent = IntentBooking
		if seats := ExtractSeats(raw); len(seats) > 0 {
			st.SelectedSeats = seats
			set.seats = true
			st.Intent = IntentAnswering
			e.log.Debug("seats resolved from seat wording", zap.Strings("seats", seats))
		}
	}

	// Rule e: a pending question gets its dedicated resolver, run
	// against the cached candidate set for that specific slot.
	question := prev.CurrentQuestion
	if question == AskMovie && !set.movieID {
		if movieID, title := MatchMovie(raw, st.CandidateMovies); movieID != 0 {
			st.CurrentMovieID = movieID
			set.movieID = true
			if title != "" {
				st.MovieTitle = title
			} else if looked := e.lookupTitle(ctx, movieID); looked != "" {
				st.MovieTitle = looked
			}
			st.Intent = IntentAnswering
		}
	}
	if question == AskShowtime && !set.showtimeID {
		if match := MatchShowtime(raw, st.AvailableShowtimes); match != nil {
			st.CurrentShowtimeID = match.ID
			set.showtimeID = true
			if match.MovieID != 0 && !set.movieID {
				st.CurrentMovieID = match.MovieID
			}
			st.Intent = IntentAnswering
		}
	}
	if question == AskSeats && !set.seats {
		if seats := ExtractSeats(raw); len(seats) > 0 {
			st.SelectedSeats = seats
			set.seats = true
			st.Intent = IntentAnswering
		}
	}
	if question == AskSeats && set.seats {
		st.Intent = IntentAnswering
	}
	if question == AskName && set.name {
		st.Intent = IntentAnswering
	}

	// Rule f: an unresolved pending question with a still-vague intent
	// falls back to the prior turn's intent, or to booking.
	if question != QuestionNone && st.Intent == IntentOther {
		if prev.Intent != "" && prev.Intent != IntentOther {
			st.Intent = prev.Intent
		} else {
			st.Intent = IntentBooking
		}
	}
}

// titleAppearsInText guards against the NLU hallucinating a title: at
// least one significant token of the proposed title must literally
// appear in the user's text.
func titleAppearsInText(title, lowerText string) bool {
	if strings.TrimSpace(lowerText) == "" {
		return false
	}
	tokens := tokenize(strings.ToLower(title), 2)
	if len(tokens) == 0 {
		return true
	}
	for _, tok := range tokens {
		if strings.Contains(lowerText, tok) {
			return true
		}
	}
	return false
}

func normalizeIntent(s string) Intent {
	switch Intent(strings.TrimSpace(strings.ToLower(s))) {
	case IntentBrowsing:
		return IntentBrowsing
	case IntentBooking:
		return IntentBooking
	case IntentAnswering:
		return IntentAnswering
	default:
		return IntentOther
	}
}

// coerceID converts a raw id value to an integer, returning 0 when the
// value is absent or not coercible.
func coerceID(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// normalizeSeatInput splits raw seat values on comma/whitespace and
// upper-cases them.  Unlike ExtractSeats it does not validate against
// the seat map; validation happens at execution time.
func normalizeSeatInput(raw []string) []string {
	var out []string
	for _, value := range raw {
		for _, part := range seatInputSplit.Split(value, -1) {
			code := strings.ToUpper(strings.TrimSpace(part))
			if code != "" {
				out = append(out, code)
			}
		}
	}
	return out
}

var seatInputSplit = regexp.MustCompile(`[,\s]+`)

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func equalSeats(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// lookupTitle fetches a movie title, treating lookup failure as "no
// title available" rather than an error for the turn.
func (e *Engine) lookupTitle(ctx context.Context, movieID int64) string {
	title, err := e.store.MovieTitle(ctx, movieID)
	if err != nil {
		e.log.Warn("movie title lookup failed", zap.Int64("movie_id", movieID), zap.Error(err))
		return ""
	}
	return title
}

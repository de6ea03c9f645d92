package dialogue

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func classifyWith(t *testing.T, st *State, ext *Extraction, text string) {
	t.Helper()
	engine := NewEngine(newFakeStore(), &fakeClassifier{exts: []*Extraction{ext}}, &fakeResponder{}, zap.NewNop())
	st.AddUser(text)
	engine.classifyIntent(context.Background(), st)
}

func TestClassifyHallucinatedTitleIgnored(t *testing.T) {
	st := NewState()
	classifyWith(t, st, &Extraction{Intent: "booking", MovieTitle: "Inception"}, "halo apa kabar")
	if st.MovieTitle != "" {
		t.Fatalf("title %q accepted without textual support", st.MovieTitle)
	}
}

func TestClassifyTitleWithTextualSupport(t *testing.T) {
	st := NewState()
	classifyWith(t, st, &Extraction{Intent: "booking", MovieTitle: "The Dark Knight"}, "mau nonton dark knight")
	if st.MovieTitle != "The Dark Knight" {
		t.Fatalf("title = %q, want The Dark Knight", st.MovieTitle)
	}
	if st.CurrentQuestion != AskMovie {
		t.Fatalf("question = %q, want %q", st.CurrentQuestion, AskMovie)
	}
}

func TestClassifyBookingKeywordOverride(t *testing.T) {
	st := NewState()
	classifyWith(t, st, &Extraction{Intent: "browsing"}, "pesan tiket dong")
	if st.Intent != IntentBooking {
		t.Fatalf("intent = %q, want booking", st.Intent)
	}
}

func TestClassifySeatKeywordHintsQuestion(t *testing.T) {
	st := NewState()
	classifyWith(t, st, &Extraction{Intent: "other"}, "cek kursi dong")
	if st.Intent != IntentBooking {
		t.Fatalf("intent = %q, want booking", st.Intent)
	}
	if st.CurrentQuestion != AskSeats {
		t.Fatalf("question = %q, want %q", st.CurrentQuestion, AskSeats)
	}
}

func TestClassifyPendingSeatsResolved(t *testing.T) {
	st := NewState()
	st.Intent = IntentBooking
	st.CurrentQuestion = AskSeats
	st.CurrentMovieID = 1
	st.CurrentShowtimeID = 102
	classifyWith(t, st, &Extraction{Intent: "other"}, "D7 dan E3")
	if len(st.SelectedSeats) != 2 || st.SelectedSeats[0] != "D7" || st.SelectedSeats[1] != "E3" {
		t.Fatalf("seats = %v, want [D7 E3]", st.SelectedSeats)
	}
	if st.Intent != IntentAnswering {
		t.Fatalf("intent = %q, want answering", st.Intent)
	}
}

func TestClassifyNameDuringAskName(t *testing.T) {
	st := NewState()
	st.Intent = IntentBooking
	st.CurrentQuestion = AskName
	classifyWith(t, st, &Extraction{Intent: "other", UserName: "Budi"}, "Budi")
	if st.UserName != "Budi" {
		t.Fatalf("user name = %q, want Budi", st.UserName)
	}
	if st.Intent != IntentAnswering {
		t.Fatalf("intent = %q, want answering", st.Intent)
	}
}

func TestClassifyIDCoercion(t *testing.T) {
	st := NewState()
	classifyWith(t, st, &Extraction{Intent: "booking", MovieID: "3", ShowtimeID: "102"}, "film id 3 jadwal 102")
	if st.CurrentMovieID != 3 {
		t.Fatalf("movie id = %d, want 3", st.CurrentMovieID)
	}
	if st.CurrentShowtimeID != 102 {
		t.Fatalf("showtime id = %d, want 102", st.CurrentShowtimeID)
	}
}

func TestClassifySeatInputNormalized(t *testing.T) {
	st := NewState()
	classifyWith(t, st, &Extraction{Intent: "booking", Seats: []string{"d7, e3"}}, "kursi d7, e3")
	if len(st.SelectedSeats) != 2 || st.SelectedSeats[0] != "D7" || st.SelectedSeats[1] != "E3" {
		t.Fatalf("seats = %v, want [D7 E3]", st.SelectedSeats)
	}
}

func TestClassifyScheduleWordingResolvesShowtime(t *testing.T) {
	st := NewState()
	st.Intent = IntentBooking
	st.CurrentQuestion = AskShowtime
	st.CurrentMovieID = 1
	st.AvailableShowtimes = testShowtimes()
	classifyWith(t, st, &Extraction{Intent: "other"}, "jadwal jam 9 malam ada?")
	if st.CurrentShowtimeID != 102 {
		t.Fatalf("showtime id = %d, want 102", st.CurrentShowtimeID)
	}
	if st.Intent != IntentAnswering {
		t.Fatalf("intent = %q, want answering", st.Intent)
	}
}

func TestClassifyFailureDefaultsToOther(t *testing.T) {
	engine := NewEngine(newFakeStore(), &fakeClassifier{err: errors.New("api down")}, &fakeResponder{}, zap.NewNop())
	st := NewState()
	st.AddUser("halo")
	engine.classifyIntent(context.Background(), st)
	if st.Intent != IntentOther {
		t.Fatalf("intent = %q, want other", st.Intent)
	}
}

func TestClassifyPendingQuestionKeepsPriorIntent(t *testing.T) {
	st := NewState()
	st.Intent = IntentBooking
	st.CurrentQuestion = AskMovie
	classifyWith(t, st, &Extraction{Intent: "other"}, "hmm bingung")
	if st.Intent != IntentBooking {
		t.Fatalf("intent = %q, want booking carried over", st.Intent)
	}
}

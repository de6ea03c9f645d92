// Package dialogue implements the booking assistant's conversation
// core: the per-session dialogue state, the deterministic entity
// resolvers, the intent classification pipeline, and the state machine
// that routes each user turn through the booking steps.
package dialogue

import "github.com/iliyamo/cinema-ticket-assistant/internal/model"

// Role tags who produced a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation transcript.  The transcript
// is append-only: messages are never mutated or reordered.
type Message struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	ToolName string `json:"tool_name,omitempty"` // set only for RoleTool
}

// Intent is the assistant's current reading of what the user wants.
type Intent string

const (
	IntentBrowsing  Intent = "browsing"
	IntentBooking   Intent = "booking"
	IntentAnswering Intent = "answering_question"
	IntentOther     Intent = "other"
)

// Question identifies the single slot the assistant is currently
// soliciting from the user.  At most one question is pending at a
// time; it arbitrates how the next user turn is interpreted.
type Question string

const (
	QuestionNone    Question = ""
	AskMovie        Question = "ask_movie"
	AskShowtime     Question = "ask_showtime"
	AskSeats        Question = "ask_seats"
	AskConfirmation Question = "ask_confirmation"
	AskName         Question = "ask_name"
)

// State is the full dialogue state of one session.  Slot fields use
// their zero value to mean "not yet resolved".  Candidate and
// availability lists cache the most recent repository results so
// short disambiguating replies ("the second one", "D7") can be
// resolved without another query.
type State struct {
	Messages []Message `json:"messages"`

	Intent          Intent   `json:"intent"`
	CurrentQuestion Question `json:"current_question,omitempty"`

	MovieTitle        string   `json:"movie_title,omitempty"`
	Genre             string   `json:"genre,omitempty"`
	CurrentMovieID    int64    `json:"current_movie_id,omitempty"`
	CurrentShowtimeID int64    `json:"current_showtime_id,omitempty"`
	SelectedSeats     []string `json:"selected_seats,omitempty"`
	UserName          string   `json:"user_name,omitempty"`

	CandidateMovies    []model.Movie    `json:"candidate_movies,omitempty"`
	AvailableShowtimes []model.Showtime `json:"available_showtimes,omitempty"`
	AvailableSeats     []string         `json:"available_seats,omitempty"`
}

// NewState returns an empty dialogue state with the default intent.
func NewState() *State {
	return &State{Intent: IntentOther}
}

// LastMessage returns the most recent transcript entry, if any.
func (s *State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// AddUser appends a user turn to the transcript.
func (s *State) AddUser(text string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Content: text})
}

// AddAssistant appends an assistant response to the transcript.
func (s *State) AddAssistant(text string) {
	s.Messages = append(s.Messages, Message{Role: RoleAssistant, Content: text})
}

// AddTool appends a repository/tool result to the transcript.
func (s *State) AddTool(name, text string) {
	s.Messages = append(s.Messages, Message{Role: RoleTool, Content: text, ToolName: name})
}

// ResetBooking clears every booking-related slot after an execution
// attempt.  UserName is deliberately retained so the assistant keeps
// addressing the user by name in later bookings.
func (s *State) ResetBooking() {
	s.Intent = IntentOther
	s.MovieTitle = ""
	s.Genre = ""
	s.CurrentMovieID = 0
	s.CurrentShowtimeID = 0
	s.SelectedSeats = nil
	s.CandidateMovies = nil
	s.AvailableShowtimes = nil
	s.AvailableSeats = nil
	s.CurrentQuestion = QuestionNone
}

// Clone returns a deep copy of the state.  The session store hands out
// clones so concurrent sessions never share mutable slices.
func (s *State) Clone() *State {
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	c.SelectedSeats = append([]string(nil), s.SelectedSeats...)
	c.CandidateMovies = append([]model.Movie(nil), s.CandidateMovies...)
	c.AvailableShowtimes = append([]model.Showtime(nil), s.AvailableShowtimes...)
	c.AvailableSeats = append([]string(nil), s.AvailableSeats...)
	return &c
}

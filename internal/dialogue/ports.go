package dialogue

import (
	"context"
	"time"

	"github.com/iliyamo/cinema-ticket-assistant/internal/model"
)

// Store is the narrow repository surface the engine needs.  The real
// implementation lives in internal/repository; tests substitute a fake.
type Store interface {
	SearchMovies(ctx context.Context, title, genre string) ([]model.Movie, error)
	MovieTitle(ctx context.Context, movieID int64) (string, error)
	ListShowtimes(ctx context.Context, movieID int64) ([]model.Showtime, error)
	Showtime(ctx context.Context, showtimeID int64) (*model.Showtime, error)
	ListAvailableSeats(ctx context.Context, showtimeID int64) ([]string, error)
	BookSeats(ctx context.Context, showtimeID int64, seats []string, userName string) ([]model.Booking, error)
}

// Extraction is the raw result of the external NLU call.  String
// fields are left as the model produced them; coercion and
// normalization happen during the merge in classifyIntent.  A nil
// Extraction signals classification failure.
type Extraction struct {
	Intent     string
	UserName   string
	MovieTitle string
	Genre      string
	MovieID    string
	ShowtimeID string
	Seats      []string
}

// Classifier is the external NLU capability: free text in, tentative
// intent and entities out.  Returning (nil, nil) or an error both mean
// the classification produced nothing usable.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Extraction, error)
}

// ToolCall is a tool invocation requested by the answer capability.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Reply is the answer capability's response to a transcript: free text
// and/or a set of tool calls to execute.
type Reply struct {
	Text  string
	Calls []ToolCall
}

// ToolOutput pairs an executed tool call with its textual result.
type ToolOutput struct {
	Call ToolCall
	Text string
}

// Responder is the external open-ended-answer capability used by the
// browsing step.  Respond may request tool calls; the engine executes
// the browsing-safe ones and hands the results to Followup for the
// final natural-language answer.
type Responder interface {
	Respond(ctx context.Context, transcript []Message) (*Reply, error)
	Followup(ctx context.Context, transcript []Message, reply *Reply, outputs []ToolOutput) (string, error)
}

// BookingEvent describes a successfully executed booking.
type BookingEvent struct {
	ShowtimeID  int64
	MovieTitle  string
	Showtime    string
	Seats       []string
	UserName    string
	ConfirmedAt time.Time
}

// EventSink receives booking events for out-of-band processing
// (notifications, audit logs).  Implementations must not block the
// dialogue turn on delivery problems.
type EventSink interface {
	BookingConfirmed(ctx context.Context, ev BookingEvent)
}

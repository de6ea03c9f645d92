package dialogue

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// turnTimeout bounds a full dialogue turn, including the external NLU
// calls and every repository query the routed node performs.
const turnTimeout = 20 * time.Second

// Engine drives one dialogue turn: classify the user's message, route
// it to the right booking step, run that step against the store.  An
// Engine is stateless between turns; all conversation state lives in
// the *State the caller passes in, so one Engine serves every session.
type Engine struct {
	store      Store
	classifier Classifier
	responder  Responder
	log        *zap.Logger

	// Events, when set, receives a notification for every confirmed
	// booking.  Nil disables event delivery.
	Events EventSink
}

func NewEngine(store Store, classifier Classifier, responder Responder, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:      store,
		classifier: classifier,
		responder:  responder,
		log:        log,
	}
}

// Turn processes one user message against the given session state and
// returns the assistant messages produced for it, in order.  The state
// is mutated in place; the caller owns persisting it.  An empty
// message is ignored.
func (e *Engine) Turn(ctx context.Context, st *State, userText string) ([]string, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()

	st.AddUser(userText)
	before := len(st.Messages)

	e.classifyIntent(ctx, st)

	node := route(st)
	e.log.Debug("routed turn",
		zap.String("node", node.String()),
		zap.String("intent", string(st.Intent)),
		zap.String("question", string(st.CurrentQuestion)))

	if err := e.runNode(ctx, st, node); err != nil {
		return nil, err
	}

	var replies []string
	for _, msg := range st.Messages[before:] {
		if msg.Role == RoleAssistant {
			replies = append(replies, msg.Content)
		}
	}
	return replies, nil
}

func (e *Engine) runNode(ctx context.Context, st *State, node Node) error {
	switch node {
	case NodeBrowsing:
		return e.browsingAgent(ctx, st)
	case NodeFindMovie:
		return e.findMovie(ctx, st)
	case NodeFindShowtime:
		return e.findShowtime(ctx, st)
	case NodeSelectSeats:
		return e.selectSeats(ctx, st)
	case NodeConfirmBooking:
		return e.confirmBooking(ctx, st)
	case NodeExecuteBooking:
		if err := e.executeBooking(ctx, st); err != nil {
			return err
		}
		e.finalResponse(st)
		return nil
	default:
		return nil
	}
}

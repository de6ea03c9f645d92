package dialogue

// Node identifies a step of the dialogue state machine.
type Node int

const (
	NodeEnd Node = iota
	NodeBrowsing
	NodeFindMovie
	NodeFindShowtime
	NodeSelectSeats
	NodeConfirmBooking
	NodeExecuteBooking
)

func (n Node) String() string {
	switch n {
	case NodeEnd:
		return "end"
	case NodeBrowsing:
		return "browsing_agent"
	case NodeFindMovie:
		return "find_movie"
	case NodeFindShowtime:
		return "find_showtime"
	case NodeSelectSeats:
		return "select_seats"
	case NodeConfirmBooking:
		return "confirm_booking"
	case NodeExecuteBooking:
		return "execute_booking"
	default:
		return "unknown"
	}
}

// route decides the next node from the classified state.  The
// priorities are a fixed contract, evaluated top to bottom:
//
//  1. A pending confirmation and a user turn: run the confirmation
//     detector.  Yes executes the booking, no cancels, anything else
//     re-asks.
//  2. If the assistant already produced the latest message, stop.
//     This prevents double-responding within one turn.
//  3. A just-answered question advances directly to its next step.
//  4. An active booking flow steps through the missing slots in fixed
//     order: movie, showtime, seats, then confirmation.
//  5. Everything else goes to the browsing agent.
func route(st *State) Node {
	last, hasLast := st.LastMessage()

	if st.CurrentQuestion == AskConfirmation && hasLast && last.Role == RoleUser {
		switch DetectConfirmation(last.Content) {
		case ConfirmYes:
			return NodeExecuteBooking
		case ConfirmNo:
			return NodeEnd
		default:
			return NodeConfirmBooking
		}
	}

	if hasLast && last.Role == RoleAssistant {
		return NodeEnd
	}

	if st.Intent == IntentAnswering {
		switch st.CurrentQuestion {
		case AskMovie:
			return NodeFindShowtime
		case AskShowtime:
			return NodeSelectSeats
		case AskSeats:
			return NodeConfirmBooking
		case AskName:
			return NodeConfirmBooking
		}
	}

	if st.Intent == IntentBooking || (st.CurrentQuestion != QuestionNone && st.Intent == IntentOther) {
		if st.CurrentQuestion == AskShowtime && st.CurrentShowtimeID == 0 {
			return NodeFindShowtime
		}
		if st.CurrentMovieID == 0 {
			return NodeFindMovie
		}
		if st.CurrentShowtimeID == 0 {
			return NodeFindShowtime
		}
		if len(st.SelectedSeats) == 0 {
			return NodeSelectSeats
		}
		return NodeConfirmBooking
	}

	return NodeBrowsing
}

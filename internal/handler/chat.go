package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticket-assistant/internal/dialogue"
	"github.com/iliyamo/cinema-ticket-assistant/internal/session"
)

// ChatHandler exposes the dialogue engine over HTTP.  Each request
// carries one user message for one session; the handler serializes
// turns per session and persists the updated state afterwards.
type ChatHandler struct {
	engine   *dialogue.Engine
	sessions *session.Store
	log      *zap.Logger
}

func NewChatHandler(engine *dialogue.Engine, sessions *session.Store, log *zap.Logger) *ChatHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatHandler{engine: engine, sessions: sessions, log: log}
}

// chatRequest is the JSON body of POST /v1/chat.  A missing session id
// starts a new conversation.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// chatResponse returns the session id (so new sessions learn theirs)
// and the assistant messages produced for this turn, in order.
type chatResponse struct {
	SessionID string   `json:"session_id"`
	Replies   []string `json:"replies"`
}

// Chat handles one dialogue turn.
func (h *ChatHandler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message is required"})
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	release := h.sessions.Acquire(sessionID)
	defer release()

	st := h.sessions.Get(sessionID)
	replies, err := h.engine.Turn(c.Request().Context(), st, req.Message)
	if err != nil {
		h.log.Error("dialogue turn failed", zap.String("session_id", sessionID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to process message"})
	}
	h.sessions.Put(sessionID, st)

	return c.JSON(http.StatusOK, chatResponse{SessionID: sessionID, Replies: replies})
}

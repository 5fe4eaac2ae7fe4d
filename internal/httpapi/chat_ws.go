package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/protocol"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsReadTimeout  = 5 * time.Minute
)

// handleChatWS runs the screening chat over a websocket. The whole loop is
// single-threaded: read a candidate message, run the turn (streaming deltas
// as they are produced), write the turn end, repeat. The completion call is
// synchronous and blocks the connection for its duration.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authenticate(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid token.")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()
	defer s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()

	ctx := r.Context()
	writeJSON := func(v any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(v)
	}

	// A fresh transcript means the screening has not begun: send the system
	// instruction and relay the greeting. Failure leaves the transcript
	// empty so reconnecting retries.
	greeting, started, err := s.orchestrator.Start(ctx, sess.ID)
	switch {
	case err != nil:
		_ = writeJSON(protocol.ErrorEvent{
			Type:      protocol.TypeErrorEvent,
			SessionID: sess.ID,
			Code:      "start_failed",
			Retryable: true,
			Detail:    "AI could not start the conversation. Please try again.",
		})
	case started:
		_ = writeJSON(protocol.AssistantTurnEnd{
			Type:      protocol.TypeAssistantTurnEnd,
			SessionID: sess.ID,
			TurnID:    uuid.NewString(),
			Text:      greeting,
		})
	default:
		_ = writeJSON(protocol.SystemEvent{
			Type:      protocol.TypeSystemEvent,
			SessionID: sess.ID,
			Code:      "session_resumed",
		})
	}

	conn.SetReadLimit(1 << 20)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			if writeJSON(protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sess.ID,
				Code:      "invalid_client_message",
				Retryable: false,
				Detail:    err.Error(),
			}) != nil {
				return
			}
			continue
		}

		msg, ok := parsed.(protocol.UserText)
		if !ok {
			continue
		}

		_ = s.sessions.Touch(sess.ID)
		turnID := uuid.NewString()
		reply, err := s.orchestrator.Turn(ctx, sess.ID, msg.Text, func(delta string) error {
			return writeJSON(protocol.AssistantTextDelta{
				Type:      protocol.TypeAssistantTextDelta,
				SessionID: sess.ID,
				TurnID:    turnID,
				TextDelta: delta,
			})
		})
		if err != nil {
			// Session gone or client stopped reading; either way the
			// connection is done.
			return
		}

		if writeJSON(protocol.AssistantTurnEnd{
			Type:      protocol.TypeAssistantTurnEnd,
			SessionID: sess.ID,
			TurnID:    turnID,
			Text:      reply,
		}) != nil {
			return
		}
	}
}

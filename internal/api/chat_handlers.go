package api

import (
	"net/http"

	"github.com/terra-clan/pathfinder/internal/models"
)

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	msgs, err := s.chat.Messages(r.Context(), sess.ID)
	if err != nil {
		respondServiceError(w, err, "list messages")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"messages": msgs,
		"total":    len(msgs),
	})
}

// handleSendMessage stores the user's message and returns at once; the
// assistant reply arrives later on the transcript and the websocket
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess := SessionFromContext(r.Context())
	msg, _, err := s.chat.Send(r.Context(), sess.ID, req.Content)
	if err != nil {
		respondServiceError(w, err, "send message")
		return
	}
	respondJSON(w, http.StatusAccepted, msg)
}

func (s *Server) handleClearMessages(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if err := s.chat.Clear(r.Context(), sess.ID); err != nil {
		respondServiceError(w, err, "clear messages")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "chat cleared",
	})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/pathfinder/internal/chat"
	"github.com/terra-clan/pathfinder/internal/models"
)

const wsWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ChatWSMessage is a frame on the chat websocket.
// Clients send "message" (Data holds the text) and "clear".
// The server sends "connected", "history", "message", "typing", "cleared" and "error".
type ChatWSMessage struct {
	Type     string                `json:"type"`
	Data     string                `json:"data,omitempty"`
	Message  *models.ChatMessage   `json:"message,omitempty"`
	Messages []*models.ChatMessage `json:"messages,omitempty"`
	Typing   bool                  `json:"typing,omitempty"`
}

func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	// Subscribe before reading history so nothing stored in between is lost;
	// events for messages already in history are skipped below.
	events, unsubscribe := s.chat.Subscribe(sess.ID)
	defer unsubscribe()

	history, err := s.chat.Messages(r.Context(), sess.ID)
	if err != nil {
		respondServiceError(w, err, "list messages")
		return
	}
	inHistory := make(map[string]bool, len(history))
	for _, m := range history {
		inHistory[m.ID] = true
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("chat websocket connected", "session_id", sess.ID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// replies to the client that do not come from the transcript
	out := make(chan ChatWSMessage, 4)
	out <- ChatWSMessage{Type: "connected", Data: "Connected to chat"}
	out <- ChatWSMessage{Type: "history", Messages: history}

	var wg sync.WaitGroup

	// Transcript events and replies -> WebSocket
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			var msg ChatWSMessage
			select {
			case <-ctx.Done():
				return
			case m := <-out:
				msg = m
			case ev, ok := <-events:
				if !ok {
					// session ended
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
						time.Now().Add(wsWriteWait))
					return
				}
				if ev.Type == chat.EventMessage && ev.Message != nil && inHistory[ev.Message.ID] {
					continue
				}
				msg = chatEventMessage(ev)
			}
			if err := sendChatMessage(conn, msg); err != nil {
				return
			}
		}
	}()

	// WebSocket -> chat service
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("websocket read error", "error", err)
				}
				return
			}

			var msg ChatWSMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				slog.Debug("invalid message format", "error", err)
				continue
			}

			switch msg.Type {
			case "message":
				if _, _, err := s.chat.Send(ctx, sess.ID, msg.Data); err != nil {
					text := "failed to send message"
					if errors.Is(err, chat.ErrEmptyMessage) {
						text = "message content is required"
					} else {
						slog.Error("failed to send chat message", "error", err, "session_id", sess.ID)
					}
					select {
					case out <- ChatWSMessage{Type: "error", Data: text}:
					case <-ctx.Done():
						return
					}
				}
			case "clear":
				if err := s.chat.Clear(ctx, sess.ID); err != nil {
					slog.Error("failed to clear chat", "error", err, "session_id", sess.ID)
				}
			}
		}
	}()

	// the reader only notices cancellation once the connection is closed
	<-ctx.Done()
	conn.Close()
	wg.Wait()
	slog.Info("chat websocket disconnected", "session_id", sess.ID)
}

func chatEventMessage(ev chat.Event) ChatWSMessage {
	return ChatWSMessage{
		Type:    ev.Type,
		Message: ev.Message,
		Typing:  ev.Typing,
	}
}

func sendChatMessage(conn *websocket.Conn, msg ChatWSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal chat message", "error", err)
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send chat message", "error", err)
		return err
	}
	return nil
}

package models

import "time"

// Sender identifies who wrote a chat message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage is one entry of a session's chat transcript
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"-"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// SendMessageRequest represents a message posted by the user
type SendMessageRequest struct {
	Content string `json:"content"`
}

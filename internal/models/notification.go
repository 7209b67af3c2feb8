package models

import "time"

// Notification is a pending delivery record written by the queue worker
// when a message recipient has no live socket.
type Notification struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	ConversationID int64     `json:"conversation_id"`
	MessageID      int64     `json:"message_id"`
	Preview        string    `json:"preview"`
	CreatedAt      time.Time `json:"created_at"`
}

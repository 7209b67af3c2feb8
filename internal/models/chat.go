package models

import "time"

// Conversation is a two-party thread. The participant pair is stored
// normalized (low id first) so each unordered pair maps to one row.
type Conversation struct {
	ID                int64     `json:"id"`
	ParticipantLow    int64     `json:"participant_low"`
	ParticipantHigh   int64     `json:"participant_high"`
	LastMessage       string    `json:"last_message"`
	LastMessageSender int64     `json:"last_message_sender,omitempty"`
	LastMessageReadBy []int64   `json:"last_message_read_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// OtherParticipant returns the peer of selfID within the conversation.
func (c *Conversation) OtherParticipant(selfID int64) int64 {
	if selfID == c.ParticipantLow {
		return c.ParticipantHigh
	}
	return c.ParticipantLow
}

// HasParticipant reports whether userID belongs to the conversation.
func (c *Conversation) HasParticipant(userID int64) bool {
	return userID == c.ParticipantLow || userID == c.ParticipantHigh
}

type ChatMessage struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	Content        string    `json:"content"`
	ReadBy         []int64   `json:"read_by"`
	CreatedAt      time.Time `json:"created_at"`
}

type ConversationSummary struct {
	Conversation
	PeerID int64 `json:"peer_id"`
	Unread bool  `json:"unread"`
}

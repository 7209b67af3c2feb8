package services

import (
	"testing"

	"github.com/evanvp/SoMapBack/internal/models"
	"github.com/stretchr/testify/require"
)

func TestRenderMessageClassifiesViewer(t *testing.T) {
	message := &models.ChatMessage{SenderID: 123, Content: "hello"}

	mine := RenderMessage(message, 123)
	require.Equal(t, MessageView{Text: "hello", Color: "white", Bubble: "myMessage"}, mine)

	theirs := RenderMessage(message, 456)
	require.Equal(t, MessageView{Text: "hello", Color: "black", Bubble: "theirMessage"}, theirs)
}

func TestIsUnread(t *testing.T) {
	conversation := &models.Conversation{
		ParticipantLow:    1,
		ParticipantHigh:   2,
		LastMessage:       "hi",
		LastMessageSender: 1,
		LastMessageReadBy: []int64{1},
	}

	require.False(t, IsUnread(conversation, 1), "sender never sees their own message as unread")
	require.True(t, IsUnread(conversation, 2), "recipient has not read yet")

	conversation.LastMessageReadBy = []int64{1, 2}
	require.False(t, IsUnread(conversation, 2), "read set now includes the recipient")
}

func TestIsUnreadEmptyConversation(t *testing.T) {
	conversation := &models.Conversation{ParticipantLow: 1, ParticipantHigh: 2}
	require.False(t, IsUnread(conversation, 1))
	require.False(t, IsUnread(conversation, 2))
}

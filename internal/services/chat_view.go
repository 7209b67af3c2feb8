package services

import "github.com/evanvp/SoMapBack/internal/models"

// MessageView carries the presentation hints clients use for a bubble.
type MessageView struct {
	Text   string `json:"text"`
	Color  string `json:"color"`
	Bubble string `json:"bubble"`
}

// RenderMessage classifies a message for a viewer: own messages render as
// white text in a "myMessage" bubble, everything else black in
// "theirMessage".
func RenderMessage(message *models.ChatMessage, viewerID int64) MessageView {
	if message.SenderID == viewerID {
		return MessageView{Text: message.Content, Color: "white", Bubble: "myMessage"}
	}
	return MessageView{Text: message.Content, Color: "black", Bubble: "theirMessage"}
}

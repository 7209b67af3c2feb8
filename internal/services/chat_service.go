package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/evanvp/SoMapBack/internal/models"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrPeerNotFound = errors.New("peer not found")
)

type conversationStore interface {
	GetOrCreate(ctx context.Context, selfID, otherID int64) (*models.Conversation, error)
	GetByID(ctx context.Context, conversationID int64) (*models.Conversation, error)
	ListForParticipant(ctx context.Context, participantID int64) ([]models.Conversation, error)
	AddReader(ctx context.Context, conversationID, readerID int64) error
}

type messageAppender interface {
	AppendMessage(ctx context.Context, conversationID, senderID int64, content string) (*models.ChatMessage, error)
}

type messageStore interface {
	ListByConversation(ctx context.Context, conversationID int64, ascending bool, limit, offset int) ([]models.ChatMessage, int, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type ChatService struct {
	appender      messageAppender
	conversations conversationStore
	messages      messageStore
	users         userReader
}

type ChatDelivery struct {
	Conversation *models.Conversation
	Message      *models.ChatMessage
	RecipientID  int64
}

func NewChatService(
	appender messageAppender,
	conversations conversationStore,
	messages messageStore,
	users userReader,
) *ChatService {
	return &ChatService{
		appender:      appender,
		conversations: conversations,
		messages:      messages,
		users:         users,
	}
}

// GetOrCreateConversation resolves the one conversation between the caller
// and a peer, creating it on first contact. Calling it again with the same
// pair, in either order, yields the same conversation.
func (s *ChatService) GetOrCreateConversation(
	ctx context.Context,
	selfID int64,
	otherID int64,
) (*models.Conversation, error) {
	if selfID <= 0 || otherID <= 0 || selfID == otherID {
		return nil, ErrInvalidInput
	}

	if _, err := s.users.GetByID(ctx, otherID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPeerNotFound
		}
		return nil, err
	}

	return s.conversations.GetOrCreate(ctx, selfID, otherID)
}

func (s *ChatService) ListConversations(
	ctx context.Context,
	selfID int64,
) ([]models.ConversationSummary, error) {
	if selfID <= 0 {
		return nil, ErrInvalidInput
	}

	conversations, err := s.conversations.ListForParticipant(ctx, selfID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ConversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		summaries = append(summaries, models.ConversationSummary{
			Conversation: conversation,
			PeerID:       conversation.OtherParticipant(selfID),
			Unread:       IsUnread(&conversation, selfID),
		})
	}

	return summaries, nil
}

// requireParticipant loads the conversation and checks the actor belongs to
// it. An unknown conversation surfaces as pgx.ErrNoRows, an outsider as
// ErrForbidden; every chat operation uses the same two mappings.
func (s *ChatService) requireParticipant(
	ctx context.Context,
	conversationID int64,
	actorID int64,
) (*models.Conversation, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(actorID) {
		return nil, ErrForbidden
	}
	return conversation, nil
}

// SendMessage appends a message and rewrites the conversation summary in one
// transaction. Whitespace-only content is dropped silently, mirroring the
// client-side guard: nil delivery, nil error, nothing written. A successful
// send resets the read set to just the sender.
func (s *ChatService) SendMessage(
	ctx context.Context,
	actorID int64,
	conversationID int64,
	content string,
) (*ChatDelivery, error) {
	if actorID <= 0 || conversationID <= 0 {
		return nil, ErrInvalidInput
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, nil
	}

	conversation, err := s.requireParticipant(ctx, conversationID, actorID)
	if err != nil {
		return nil, err
	}

	message, err := s.appender.AppendMessage(ctx, conversationID, actorID, trimmed)
	if err != nil {
		return nil, err
	}

	conversation.LastMessage = trimmed
	conversation.LastMessageSender = actorID
	conversation.LastMessageReadBy = []int64{actorID}
	conversation.UpdatedAt = message.CreatedAt

	return &ChatDelivery{
		Conversation: conversation,
		Message:      message,
		RecipientID:  conversation.OtherParticipant(actorID),
	}, nil
}

// MarkConversationRead adds the reader to the conversation's read set. It is
// a union, never a reset, so a racing send always wins.
func (s *ChatService) MarkConversationRead(
	ctx context.Context,
	actorID int64,
	conversationID int64,
) error {
	if actorID <= 0 || conversationID <= 0 {
		return ErrInvalidInput
	}

	if _, err := s.requireParticipant(ctx, conversationID, actorID); err != nil {
		return err
	}

	return s.conversations.AddReader(ctx, conversationID, actorID)
}

func (s *ChatService) ListMessages(
	ctx context.Context,
	actorID int64,
	conversationID int64,
	ascending bool,
	page int,
	limit int,
) ([]models.ChatMessage, int, error) {
	if actorID <= 0 || conversationID <= 0 || page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}

	if _, err := s.requireParticipant(ctx, conversationID, actorID); err != nil {
		return nil, 0, err
	}

	return s.messages.ListByConversation(ctx, conversationID, ascending, limit, (page-1)*limit)
}

// IsUnread reports whether the viewer still has the latest message pending:
// someone else sent it and the viewer is not in the read set.
func IsUnread(conversation *models.Conversation, viewerID int64) bool {
	if conversation.LastMessageSender == 0 || conversation.LastMessageSender == viewerID {
		return false
	}
	for _, readerID := range conversation.LastMessageReadBy {
		if readerID == viewerID {
			return false
		}
	}
	return true
}

func FormatChatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}

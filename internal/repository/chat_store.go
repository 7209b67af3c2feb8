package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evanvp/SoMapBack/internal/models"
)

// ChatStore owns the chat writes that must land together: the message row
// and the conversation summary it rewrites.
type ChatStore struct {
	db *pgxpool.Pool
}

func NewChatStore(db *pgxpool.Pool) *ChatStore {
	return &ChatStore{db: db}
}

// AppendMessage inserts the message and rewrites the conversation summary
// in one transaction. The conversation read set comes out as just the
// sender; readers re-join it through AddReader.
func (s *ChatStore) AppendMessage(
	ctx context.Context,
	conversationID int64,
	senderID int64,
	content string,
) (*models.ChatMessage, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	message, err := NewMessageRepository(tx).Create(ctx, conversationID, senderID, content)
	if err != nil {
		return nil, err
	}

	if err := NewConversationRepository(tx).SetLastMessage(ctx, conversationID, senderID, content); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return message, nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/evanvp/SoMapBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type ConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// normalizePair orders two participant ids low-first so that an unordered
// pair always addresses the same row.
func normalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// GetOrCreate resolves the single conversation for a pair of users. The
// UNIQUE(participant_low, participant_high) constraint plus the upsert makes
// this safe under concurrent first contact from both sides.
func (r *ConversationRepository) GetOrCreate(
	ctx context.Context,
	selfID int64,
	otherID int64,
) (*models.Conversation, error) {
	low, high := normalizePair(selfID, otherID)

	query := `
		INSERT INTO conversations (participant_low, participant_high)
		VALUES ($1, $2)
		ON CONFLICT (participant_low, participant_high)
		DO UPDATE SET updated_at = conversations.updated_at
		RETURNING ` + conversationColumns

	return r.scanConversation(r.db.QueryRow(ctx, query, low, high))
}

const conversationColumns = `
	id, participant_low, participant_high,
	last_message, last_message_sender, last_message_read_by,
	created_at, updated_at
`

func (r *ConversationRepository) GetByID(
	ctx context.Context,
	conversationID int64,
) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	return r.scanConversation(r.db.QueryRow(ctx, query, conversationID))
}

func (r *ConversationRepository) ListForParticipant(
	ctx context.Context,
	participantID int64,
) ([]models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE participant_low = $1 OR participant_high = $1
		ORDER BY updated_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := make([]models.Conversation, 0)
	for rows.Next() {
		conversation, err := r.scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *conversation)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return conversations, nil
}

// SetLastMessage overwrites the denormalized summary and resets the read
// set to just the sender. Runs on every successful send.
func (r *ConversationRepository) SetLastMessage(
	ctx context.Context,
	conversationID int64,
	senderID int64,
	content string,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET last_message = $2,
		    last_message_sender = $3,
		    last_message_read_by = ARRAY[$3]::BIGINT[],
		    updated_at = NOW()
		WHERE id = $1
	`, conversationID, content, senderID)
	return err
}

// AddReader unions readerID into the read set. Unlike SetLastMessage this
// never resets the set, and repeating it is a no-op.
func (r *ConversationRepository) AddReader(
	ctx context.Context,
	conversationID int64,
	readerID int64,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET last_message_read_by = array_append(last_message_read_by, $2)
		WHERE id = $1 AND NOT ($2 = ANY(last_message_read_by))
	`, conversationID, readerID)
	return err
}

func (r *ConversationRepository) scanConversation(row pgx.Row) (*models.Conversation, error) {
	var conversation models.Conversation
	var sender sql.NullInt64

	err := row.Scan(
		&conversation.ID,
		&conversation.ParticipantLow,
		&conversation.ParticipantHigh,
		&conversation.LastMessage,
		&sender,
		&conversation.LastMessageReadBy,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sender.Valid {
		conversation.LastMessageSender = sender.Int64
	}

	return &conversation, nil
}

package repository

import (
	"context"

	"github.com/evanvp/SoMapBack/internal/models"
)

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, conversation_id, message_id, preview)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.db.QueryRow(
		ctx, query,
		notification.UserID,
		notification.ConversationID,
		notification.MessageID,
		notification.Preview,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *NotificationRepository) ListForUser(
	ctx context.Context,
	userID int64,
	limit int,
) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, conversation_id, message_id, preview, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var notification models.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.ConversationID,
			&notification.MessageID,
			&notification.Preview,
			&notification.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/evanvp/SoMapBack/internal/models"
	"github.com/hibiken/asynq"
)

type notificationWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// NotificationProcessor consumes notification tasks and records them for
// later delivery (push, badge counts) by whatever reads the table.
type NotificationProcessor struct {
	notifications notificationWriter
}

func NewNotificationProcessor(notifications notificationWriter) *NotificationProcessor {
	return &NotificationProcessor{notifications: notifications}
}

func (p *NotificationProcessor) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload MessageNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal notification payload: %v: %w", err, asynq.SkipRetry)
	}

	notification := &models.Notification{
		UserID:         payload.RecipientID,
		ConversationID: payload.ConversationID,
		MessageID:      payload.MessageID,
		Preview:        payload.Preview,
	}
	if err := p.notifications.Create(ctx, notification); err != nil {
		return err
	}

	log.Printf("recorded notification %d for user %d", notification.ID, notification.UserID)
	return nil
}

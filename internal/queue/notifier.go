package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TypeMessageNotification = "chat:notify"

// MessageNotificationPayload describes a message whose recipient had no live
// socket at delivery time.
type MessageNotificationPayload struct {
	RecipientID    int64  `json:"recipient_id"`
	ConversationID int64  `json:"conversation_id"`
	MessageID      int64  `json:"message_id"`
	Preview        string `json:"preview"`
}

// Notifier enqueues notification tasks on the Redis-backed queue.
type Notifier struct {
	client *asynq.Client
}

func NewNotifier(redisURL string) (*Notifier, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse redis url: %w", err)
	}
	return &Notifier{client: asynq.NewClient(opt)}, nil
}

func (n *Notifier) EnqueueMessageNotification(
	ctx context.Context,
	payload MessageNotificationPayload,
) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}

	task := asynq.NewTask(TypeMessageNotification, encoded)
	_, err = n.client.EnqueueContext(ctx, task, asynq.MaxRetry(3), asynq.Timeout(30*time.Second))
	return err
}

func (n *Notifier) Close() error {
	return n.client.Close()
}

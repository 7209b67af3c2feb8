package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/evanvp/SoMapBack/internal/models"
)

type stubNotificationLister struct {
	notifications []models.Notification
	err           error
	lastUserID    int64
	lastLimit     int
}

func (s *stubNotificationLister) ListForUser(_ context.Context, userID int64, limit int) ([]models.Notification, error) {
	s.lastUserID = userID
	s.lastLimit = limit
	return s.notifications, s.err
}

func newNotificationTestApp(lister *stubNotificationLister) *fiber.App {
	handler := NewNotificationHandler(lister)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Get("/api/v1/notifications", handler.ListNotifications)

	return app
}

func TestListNotificationsReturnsPendingDeliveries(t *testing.T) {
	lister := &stubNotificationLister{
		notifications: []models.Notification{
			{
				ID:             5,
				UserID:         42,
				ConversationID: 3,
				MessageID:      10,
				Preview:        "see you there",
				CreatedAt:      time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
			},
		},
	}
	app := newNotificationTestApp(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if lister.lastUserID != 42 || lister.lastLimit != defaultPageLimit {
		t.Fatalf("unexpected listing args: user=%d limit=%d", lister.lastUserID, lister.lastLimit)
	}

	var body struct {
		Notifications []models.Notification `json:"notifications"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Notifications) != 1 || body.Notifications[0].MessageID != 10 {
		t.Fatalf("unexpected notifications: %+v", body.Notifications)
	}
}

func TestListNotificationsClampsLimit(t *testing.T) {
	lister := &stubNotificationLister{}
	app := newNotificationTestApp(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=5000", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if lister.lastLimit != maxPageLimit {
		t.Fatalf("expected limit clamped to %d, got %d", maxPageLimit, lister.lastLimit)
	}
}

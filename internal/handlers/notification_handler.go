package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/evanvp/SoMapBack/internal/models"
)

type notificationLister interface {
	ListForUser(ctx context.Context, userID int64, limit int) ([]models.Notification, error)
}

type NotificationHandler struct {
	notifications notificationLister
}

func NewNotificationHandler(notifications notificationLister) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListNotifications returns the caller's pending deliveries, newest first.
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	notifications, err := h.notifications.ListForUser(c.Context(), userID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load notifications"})
	}

	return c.JSON(fiber.Map{"notifications": notifications})
}

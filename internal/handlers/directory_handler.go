package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/evanvp/SoMapBack/internal/models"
)

type peerDirectory interface {
	ListActivePeers(ctx context.Context, selfID int64) ([]models.User, error)
}

type DirectoryHandler struct {
	directory peerDirectory
}

func NewDirectoryHandler(directory peerDirectory) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// GetPeers returns the snapshot behind the map markers: everyone else who is
// online and has a position.
func (h *DirectoryHandler) GetPeers(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	peers, err := h.directory.ListActivePeers(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load peers"})
	}

	return c.JSON(fiber.Map{"peers": peers})
}

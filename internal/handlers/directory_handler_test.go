package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/evanvp/SoMapBack/internal/models"
)

func TestGetPeersReturnsDirectorySnapshot(t *testing.T) {
	directory := &stubDirectory{
		peers: []models.User{
			{ID: 2, Name: "Dana", Online: true, Location: &models.Location{Latitude: 51.5, Longitude: -0.1}},
		},
	}
	handler := NewDirectoryHandler(directory)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Get("/api/v1/peers", handler.GetPeers)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/peers", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Peers []models.User `json:"peers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Peers) != 1 || body.Peers[0].ID != 2 {
		t.Fatalf("unexpected peers: %+v", body.Peers)
	}
}

func TestGetPeersWithoutIdentityIsUnauthorized(t *testing.T) {
	handler := NewDirectoryHandler(&stubDirectory{})

	app := fiber.New()
	app.Get("/api/v1/peers", handler.GetPeers)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/peers", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

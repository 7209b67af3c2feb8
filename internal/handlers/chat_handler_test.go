package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/evanvp/SoMapBack/internal/models"
	"github.com/evanvp/SoMapBack/internal/services"
	chatws "github.com/evanvp/SoMapBack/internal/websocket"
)

type stubChatService struct {
	conversationsResult []models.ConversationSummary
	conversationsErr    error
	createResult        *models.Conversation
	createErr           error
	messagesResult      []models.ChatMessage
	messagesTotal       int
	messagesErr         error
	markReadErr         error
	lastSelfID          int64
	lastPeerID          int64
	lastConversationID  int64
	lastAscending       bool
	lastPage            int
	lastLimit           int
}

func (s *stubChatService) ListConversations(_ context.Context, selfID int64) ([]models.ConversationSummary, error) {
	s.lastSelfID = selfID
	return s.conversationsResult, s.conversationsErr
}

func (s *stubChatService) GetOrCreateConversation(_ context.Context, selfID, otherID int64) (*models.Conversation, error) {
	s.lastSelfID = selfID
	s.lastPeerID = otherID
	return s.createResult, s.createErr
}

func (s *stubChatService) ListMessages(_ context.Context, actorID, conversationID int64, ascending bool, page, limit int) ([]models.ChatMessage, int, error) {
	s.lastSelfID = actorID
	s.lastConversationID = conversationID
	s.lastAscending = ascending
	s.lastPage = page
	s.lastLimit = limit
	return s.messagesResult, s.messagesTotal, s.messagesErr
}

func (s *stubChatService) SendMessage(_ context.Context, _, _ int64, _ string) (*services.ChatDelivery, error) {
	return nil, nil
}

func (s *stubChatService) MarkConversationRead(_ context.Context, actorID, conversationID int64) error {
	s.lastSelfID = actorID
	s.lastConversationID = conversationID
	return s.markReadErr
}

type stubDirectory struct {
	peers []models.User
	err   error
}

func (s *stubDirectory) ListActivePeers(_ context.Context, _ int64) ([]models.User, error) {
	return s.peers, s.err
}

func newChatTestApp(service *stubChatService) (*fiber.App, *ChatHandler) {
	handler := NewChatHandler(service, &stubDirectory{}, nil, chatws.NewHub(nil), "secret")

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Get("/api/v1/conversations", handler.ListConversations)
	app.Post("/api/v1/conversations", handler.CreateConversation)
	app.Get("/api/v1/conversations/:id/messages", handler.GetMessages)
	app.Post("/api/v1/conversations/:id/read", handler.MarkRead)

	return app, handler
}

func TestListConversationsReturnsSummaries(t *testing.T) {
	service := &stubChatService{
		conversationsResult: []models.ConversationSummary{
			{
				Conversation: models.Conversation{
					ID:                17,
					ParticipantLow:    8,
					ParticipantHigh:   42,
					LastMessage:       "See you at the park",
					LastMessageSender: 8,
					LastMessageReadBy: []int64{8},
					UpdatedAt:         time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
				},
				PeerID: 8,
				Unread: true,
			},
		},
	}
	app, _ := newChatTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastSelfID != 42 {
		t.Fatalf("unexpected actor: %d", service.lastSelfID)
	}

	var body struct {
		Conversations []models.ConversationSummary `json:"conversations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Conversations) != 1 || !body.Conversations[0].Unread {
		t.Fatalf("unexpected response: %+v", body.Conversations)
	}
}

func TestCreateConversationReturnsCreated(t *testing.T) {
	service := &stubChatService{
		createResult: &models.Conversation{ID: 9, ParticipantLow: 7, ParticipantHigh: 42},
	}
	app, _ := newChatTestApp(service)

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v1/conversations",
		strings.NewReader(`{"peer_id":7}`),
	)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastSelfID != 42 || service.lastPeerID != 7 {
		t.Fatalf("unexpected pair: %d %d", service.lastSelfID, service.lastPeerID)
	}
}

func TestCreateConversationUnknownPeerIsNotFound(t *testing.T) {
	service := &stubChatService{createErr: services.ErrPeerNotFound}
	app, _ := newChatTestApp(service)

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v1/conversations",
		strings.NewReader(`{"peer_id":99}`),
	)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetMessagesParsesPaginationAndOrder(t *testing.T) {
	service := &stubChatService{messagesTotal: 45}
	app, _ := newChatTestApp(service)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/conversations/3/messages?page=2&limit=10&order=asc",
		nil,
	)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastConversationID != 3 || service.lastPage != 2 || service.lastLimit != 10 || !service.lastAscending {
		t.Fatalf("unexpected listing args: conversation=%d page=%d limit=%d asc=%v",
			service.lastConversationID, service.lastPage, service.lastLimit, service.lastAscending)
	}

	var body struct {
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Pagination.TotalPages != 5 {
		t.Fatalf("expected 5 total pages, got %d", body.Pagination.TotalPages)
	}
}

func TestGetMessagesRendersBubblesForViewer(t *testing.T) {
	service := &stubChatService{
		messagesResult: []models.ChatMessage{
			{ID: 1, ConversationID: 3, SenderID: 42, Content: "mine"},
			{ID: 2, ConversationID: 3, SenderID: 7, Content: "theirs"},
		},
		messagesTotal: 2,
	}
	app, _ := newChatTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/3/messages", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Messages []struct {
			SenderID int64  `json:"sender_id"`
			Color    string `json:"color"`
			Bubble   string `json:"bubble"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(body.Messages))
	}
	if body.Messages[0].Color != "white" || body.Messages[0].Bubble != "myMessage" {
		t.Fatalf("expected own message rendered white/myMessage, got %+v", body.Messages[0])
	}
	if body.Messages[1].Color != "black" || body.Messages[1].Bubble != "theirMessage" {
		t.Fatalf("expected peer message rendered black/theirMessage, got %+v", body.Messages[1])
	}
}

func TestMarkReadMapsMissingConversationToNotFound(t *testing.T) {
	service := &stubChatService{markReadErr: pgx.ErrNoRows}
	app, _ := newChatTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/3/read", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if service.lastConversationID != 3 {
		t.Fatalf("unexpected conversation id: %d", service.lastConversationID)
	}
}

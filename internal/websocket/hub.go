package chatws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/evanvp/SoMapBack/internal/models"
	"github.com/evanvp/SoMapBack/internal/queue"
	"github.com/evanvp/SoMapBack/internal/services"
)

// PeerStreamInterval matches the app's 2s peer refresh cadence.
const PeerStreamInterval = 2 * time.Second

// OfflineNotifier receives messages whose recipient has no live socket.
type OfflineNotifier interface {
	EnqueueMessageNotification(ctx context.Context, payload queue.MessageNotificationPayload) error
}

type Hub struct {
	clients    map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event
	notifier   OfflineNotifier
}

type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	send   chan []byte
	done   chan struct{}
}

type chatSender interface {
	SendMessage(ctx context.Context, actorID, conversationID int64, content string) (*services.ChatDelivery, error)
	MarkConversationRead(ctx context.Context, actorID, conversationID int64) error
}

type presenceTracker interface {
	Heartbeat(ctx context.Context, userID int64, location models.Location) error
}

type peerDirectory interface {
	ListActivePeers(ctx context.Context, selfID int64) ([]models.User, error)
}

// Event is the single frame type on the socket, for both directions.
type Event struct {
	Type           string        `json:"type"`
	ConversationID int64         `json:"conversation_id,omitempty"`
	MessageID      int64         `json:"message_id,omitempty"`
	SenderID       int64         `json:"sender_id,omitempty"`
	RecipientID    int64         `json:"recipient_id,omitempty"`
	Content        string        `json:"content,omitempty"`
	Peers          []models.User `json:"peers,omitempty"`
	Timestamp      string        `json:"timestamp,omitempty"`
}

func NewHub(notifier OfflineNotifier) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 64),
		notifier:   notifier,
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		id:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
		done:   make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.done)
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) deliver(event *Event) {
	encoded, err := json.Marshal(event)
	if err != nil {
		log.Printf("chat hub encode event: %v", err)
		return
	}

	h.sendToUser(event.SenderID, encoded)
	if event.RecipientID == 0 || event.RecipientID == event.SenderID {
		return
	}
	if delivered := h.sendToUser(event.RecipientID, encoded); !delivered && h.notifier != nil {
		payload := queue.MessageNotificationPayload{
			RecipientID:    event.RecipientID,
			ConversationID: event.ConversationID,
			MessageID:      event.MessageID,
			Preview:        event.Content,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.notifier.EnqueueMessageNotification(ctx, payload); err != nil {
				log.Printf("enqueue notification for user %d: %v", payload.RecipientID, err)
			}
		}()
	}
}

func (h *Hub) sendToUser(userID int64, payload []byte) bool {
	set, ok := h.clients[userID]
	if !ok {
		return false
	}

	delivered := false
	for client := range set {
		select {
		case client.send <- payload:
			delivered = true
		default:
			delete(set, client)
			close(client.done)
		}
	}
	if len(set) == 0 {
		delete(h.clients, userID)
	}
	return delivered
}

func (c *Client) ReadPump(chat chatSender, presence presenceTracker) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming struct {
			Type           string   `json:"type"`
			ConversationID int64    `json:"conversation_id"`
			Content        string   `json:"content"`
			Latitude       *float64 `json:"latitude"`
			Longitude      *float64 `json:"longitude"`
		}
		if err := json.Unmarshal(payload, &incoming); err != nil {
			c.writeError("invalid event payload")
			continue
		}

		switch incoming.Type {
		case "message":
			delivery, err := chat.SendMessage(
				context.Background(),
				c.userID,
				incoming.ConversationID,
				incoming.Content,
			)
			if err != nil {
				c.writeError("failed to send message")
				continue
			}
			if delivery == nil {
				// blank content, dropped client-side too
				continue
			}
			c.hub.broadcast <- &Event{
				Type:           "message",
				ConversationID: delivery.Message.ConversationID,
				MessageID:      delivery.Message.ID,
				SenderID:       delivery.Message.SenderID,
				RecipientID:    delivery.RecipientID,
				Content:        delivery.Message.Content,
				Timestamp:      services.FormatChatTimestamp(delivery.Message.CreatedAt),
			}
		case "read":
			if err := chat.MarkConversationRead(context.Background(), c.userID, incoming.ConversationID); err != nil {
				c.writeError("failed to mark conversation read")
			}
		case "location":
			if incoming.Latitude == nil || incoming.Longitude == nil {
				c.writeError("location requires latitude and longitude")
				continue
			}
			location := models.Location{
				Latitude:  *incoming.Latitude,
				Longitude: *incoming.Longitude,
			}
			if err := presence.Heartbeat(context.Background(), c.userID, location); err != nil {
				c.writeError("failed to record location")
			}
		default:
			c.writeError("unsupported event type")
		}
	}
}

// StreamPeers pushes the active-peer snapshot on a fixed cadence for the
// life of the connection. A snapshot that completes after the session ends
// is discarded, never delivered.
func (c *Client) StreamPeers(directory peerDirectory, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-c.done
		cancel()
	}()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			peers, err := directory.ListActivePeers(ctx, c.userID)
			if err != nil {
				log.Printf("peer stream for client %s: %v", c.id, err)
				continue
			}

			encoded, err := json.Marshal(Event{
				Type:      "peers",
				Peers:     peers,
				Timestamp: services.FormatChatTimestamp(time.Now().UTC()),
			})
			if err != nil {
				log.Printf("peer stream encode: %v", err)
				continue
			}

			select {
			case c.send <- encoded:
			case <-c.done:
				return
			default:
			}
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) writeError(message string) {
	payload, err := json.Marshal(Event{
		Type:      "error",
		Content:   message,
		Timestamp: services.FormatChatTimestamp(time.Now().UTC()),
	})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

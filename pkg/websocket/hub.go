package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"caravanshare/pkg/logger"
)

var ErrHubClosed = errors.New("websocket hub is closed")

// Hub fans server events out to connected clients. All room bookkeeping
// happens on the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}
	log        *logger.Logger
}

type delivery struct {
	roomID string
	data   []byte
}

type Message struct {
	Type      string                 `json:"type"`
	RoomID    string                 `json:"room_id,omitempty"`
	UserID    primitive.ObjectID     `json:"user_id"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

func UserRoom(userID primitive.ObjectID) string {
	return "user_" + userID.Hex()
}

// Run processes registrations and deliveries until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			close(client.send)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.deliver:
			h.sendToRoom(d.roomID, d.data)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	h.joinRoom(client, UserRoom(client.UserID))

	h.log.WithUserID(client.UserID).Debug("WebSocket client registered")

	h.sendToClient(client, Message{
		Type:      "welcome",
		UserID:    client.UserID,
		Timestamp: time.Now().Unix(),
		Data: map[string]interface{}{
			"message": "Connected successfully",
		},
	})
}

func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	for roomID := range client.rooms {
		h.leaveRoom(client, roomID)
	}
	close(client.send)

	h.log.WithUserID(client.UserID).Debug("WebSocket client unregistered")
}

func (h *Hub) sendToRoom(roomID string, data []byte) {
	for client := range h.rooms[roomID] {
		select {
		case client.send <- data:
		default:
			// slow consumer
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) sendToClient(client *Client, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.unregisterClient(client)
	}
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func (h *Hub) leaveRoom(client *Client, roomID string) {
	if room, ok := h.rooms[roomID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(client.rooms, roomID)
}

// SendToUser queues message for every connection of userID. Users with no
// open connection simply miss it.
func (h *Hub) SendToUser(userID primitive.ObjectID, message Message) error {
	roomID := UserRoom(userID)
	message.RoomID = roomID
	message.UserID = userID
	if message.Timestamp == 0 {
		message.Timestamp = time.Now().Unix()
	}

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case h.deliver <- delivery{roomID: roomID, data: data}:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

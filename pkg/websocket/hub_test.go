package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"caravanshare/pkg/logger"
)

func startServer(t *testing.T, userID primitive.ObjectID) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(logger.Nop())
	go hub.Run(ctx)

	handler := NewHandler(hub, Options{AllowedOrigins: []string{"*"}})
	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}, handler.HandleWebSocket)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestSendToUserReachesConnectedClient(t *testing.T) {
	userID := primitive.NewObjectID()
	hub, url := startServer(t, userID)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	welcome := readMessage(t, conn)
	assert.Equal(t, "welcome", welcome.Type)

	err = hub.SendToUser(userID, Message{
		Type: "reservation_approved",
		Data: map[string]interface{}{"reservation_id": "r1"},
	})
	require.NoError(t, err)

	msg := readMessage(t, conn)
	assert.Equal(t, "reservation_approved", msg.Type)
	assert.Equal(t, UserRoom(userID), msg.RoomID)
	assert.Equal(t, "r1", msg.Data["reservation_id"])
}

func TestSendToUserAfterShutdown(t *testing.T) {
	hub := NewHub(logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	// fill the buffer so the send has to choose the done branch
	for i := 0; i < cap(hub.deliver); i++ {
		hub.deliver <- delivery{}
	}
	err := hub.SendToUser(primitive.NewObjectID(), Message{Type: "x"})
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://app.example"})

	req := httptest.NewRequest("GET", "/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://app.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))
}

package websocket

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"page-server/internal/state"
	"page-server/internal/types"
	"page-server/pkg/config"
)

// WSHandler handles WebSocket connections
func WSHandler(w http.ResponseWriter, r *http.Request) {
	upgrader := config.GetUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	client := &types.WSClient{Conn: conn}

	config.AddWSClient(client)
	defer config.RemoveWSClient(client)

	logrus.Info("New WebSocket client connected")

	send(client, pageMessage())

	for {
		var msg types.WSClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Error("WebSocket error")
			}
			break
		}

		logrus.WithField("action", msg.Action).Debug("WebSocket message received")

		switch msg.Action {
		case "describe":
			send(client, pageMessage())
		case "ping":
			send(client, types.WSMessage{Type: "pong"})
		default:
			send(client, types.WSMessage{
				Type:    "error",
				Message: "unknown action: " + msg.Action,
			})
		}
	}

	logrus.Info("WebSocket client disconnected")
}

func pageMessage() types.WSMessage {
	info, err := state.GetPageInfo()
	if err != nil {
		return types.WSMessage{Type: "error", Message: err.Error()}
	}
	return types.WSMessage{Type: "page", Page: &info}
}

func send(c *types.WSClient, msg types.WSMessage) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if err := c.Conn.WriteJSON(msg); err != nil {
		logrus.WithError(err).WithField("message_type", msg.Type).Error("Failed to send WebSocket message to client")
	}
}

// BroadcastToAll sends a message to all WebSocket clients and waits for the
// writes to finish
func BroadcastToAll(msg types.WSMessage) {
	clients := config.GetWSClients()

	logrus.WithFields(logrus.Fields{
		"message_type": msg.Type,
		"client_count": len(clients),
	}).Info("Broadcasting message to WebSocket clients")

	var wg sync.WaitGroup
	for client := range clients {
		wg.Add(1)
		go func(c *types.WSClient) {
			defer wg.Done()
			send(c, msg)
		}(client)
	}
	wg.Wait()
}

// NotifyShutdown tells every client the server is stopping. Hijacked
// connections are not closed by http.Server.Shutdown.
func NotifyShutdown() {
	BroadcastToAll(types.WSMessage{Type: "shutdown", Message: "server stopping"})
}

// ClientCount returns the number of connected clients
func ClientCount() int {
	return len(config.GetWSClients())
}

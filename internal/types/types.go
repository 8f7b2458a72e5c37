package types

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Response represents an API response
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Feature is one "feature" block of the page
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PageInfo is the structure extracted from the page markup
type PageInfo struct {
	Title    string    `json:"title"`
	Heading  string    `json:"heading"`
	Features []Feature `json:"features"`
	Footer   string    `json:"footer"`
	Size     int       `json:"size"`
}

// WSMessage represents a WebSocket message sent to clients
type WSMessage struct {
	Type    string    `json:"type"`
	Message string    `json:"message,omitempty"`
	Page    *PageInfo `json:"page,omitempty"`
}

// WSClientMessage represents a message received from a WebSocket client
type WSClientMessage struct {
	Action string `json:"action"`
}

// WSClient wraps a WebSocket connection; Mu serializes writes
type WSClient struct {
	Conn *websocket.Conn
	Mu   sync.Mutex
}

package handlers

import (
	"net/http"

	"page-server/internal/state"
	"page-server/internal/websocket"
)

// ServerStateHandler returns the global server state
func ServerStateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serverState := state.GetServerState()
	serverState["wsClients"] = websocket.ClientCount()

	writeJSON(w, http.StatusOK, serverState)
}

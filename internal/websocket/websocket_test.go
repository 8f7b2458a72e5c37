package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"page-server/internal/state"
	"page-server/internal/types"
	"page-server/web"
)

func dial(t *testing.T) *websocket.Conn {
	t.Helper()

	require.NoError(t, state.Init(web.IndexHTML))

	srv := httptest.NewServer(http.HandlerFunc(WSHandler))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func read(t *testing.T, conn *websocket.Conn) types.WSMessage {
	t.Helper()

	var msg types.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestInitialPageMessage(t *testing.T) {
	conn := dial(t)

	msg := read(t, conn)
	assert.Equal(t, "page", msg.Type)
	require.NotNil(t, msg.Page)
	require.Len(t, msg.Page.Features, 3)
	assert.Equal(t, "Feature 3: Customizable", msg.Page.Features[2].Title)
	assert.Equal(t, "Generated on: $(date)", msg.Page.Footer)
}

func TestClientActions(t *testing.T) {
	conn := dial(t)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(types.WSClientMessage{Action: "ping"}))
	assert.Equal(t, "pong", read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(types.WSClientMessage{Action: "describe"}))
	msg := read(t, conn)
	assert.Equal(t, "page", msg.Type)
	assert.NotNil(t, msg.Page)

	require.NoError(t, conn.WriteJSON(types.WSClientMessage{Action: "dance"}))
	msg = read(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Message, "dance")
}

func TestNotifyShutdown(t *testing.T) {
	conn := dial(t)
	read(t, conn)

	// The client registers before the initial message is written.
	assert.GreaterOrEqual(t, ClientCount(), 1)

	NotifyShutdown()

	msg := read(t, conn)
	assert.Equal(t, "shutdown", msg.Type)
	assert.Equal(t, "server stopping", msg.Message)
}

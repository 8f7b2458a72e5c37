package server

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"page-server/internal/state"
	"page-server/internal/types"
	"page-server/web"
)

func startServer(t *testing.T) string {
	t.Helper()

	require.NoError(t, state.Init(web.IndexHTML))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, 5*time.Second) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			assert.Fail(t, "server did not stop")
		}
	})

	return ln.Addr().String()
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestServePage(t *testing.T) {
	addr := startServer(t)

	resp, body := get(t, "http://"+addr+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.Equal(web.IndexHTML, body), "page must be served byte-for-byte")

	resp, body = get(t, "http://"+addr+"/static/index.html")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.Equal(web.IndexHTML, body))

	resp, _ = get(t, "http://"+addr+"/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeAPI(t *testing.T) {
	addr := startServer(t)

	for _, path := range []string{"/api/page", "/api/verify", "/api/state", "/healthz"} {
		resp, _ := get(t, "http://"+addr+path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"), path)
	}
}

func TestServeWebSocketThroughMiddleware(t *testing.T) {
	addr := startServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg types.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "page", msg.Type)
}

func TestServeNotifiesWebSocketClientsOnShutdown(t *testing.T) {
	require.NoError(t, state.Init(web.IndexHTML))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, 5*time.Second) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg types.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "page", msg.Type)

	cancel()

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "shutdown", msg.Type)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		assert.Fail(t, "server did not stop")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, Serve(ctx, ln, time.Second))
}

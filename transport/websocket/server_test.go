package websocket

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_CloseClients(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := New(logger, nil, nil)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := server.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		c := &client{
			conn:      conn,
			send:      make(chan Message, sendBufferSize),
			sessionID: "alice-session",
		}

		server.registerClient(c)
		go c.writePump()
	}))
	defer ts.Close()

	// Given: one established connection
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		server.clientsMutex.RLock()
		defer server.clientsMutex.RUnlock()
		return len(server.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// When: the server tears its clients down, as the shutdown path does
	server.closeClients()

	// Then: the peer observes the closed socket and no client stays registered
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	server.clientsMutex.RLock()
	assert.Empty(t, server.clients)
	server.clientsMutex.RUnlock()
}

package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
)

const (
	sessionCookieName = "user_session"
	sessionCookieAge  = 24 * time.Hour

	sendBufferSize = 8
)

type coordinator interface {
	ResumeSession(ctx context.Context, id entity.SessionID) (string, error)

	CreateRoom(ctx context.Context, id entity.SessionID, name string) (*usecase.RoomState, error)
	JoinRoom(ctx context.Context, id entity.SessionID, name, code string) (*usecase.RoomState, error)

	MakeTurn(ctx context.Context, id entity.SessionID, code string, cell int) (*usecase.RoomState, error)

	RequestRematch(ctx context.Context, id entity.SessionID, code string) (string, *usecase.RoomState, error)
	CancelRematch(ctx context.Context, id entity.SessionID, code string) (*usecase.RoomState, error)

	Leave(ctx context.Context, id entity.SessionID) ([]usecase.LeaveResult, error)
}

// client is one live connection bound to a session identity.
type client struct {
	conn      *websocket.Conn
	send      chan Message
	sessionID entity.SessionID
}

type Server struct {
	logger      *slog.Logger
	coordinator coordinator
	upgrader    websocket.Upgrader

	handlers map[string]func(ctx context.Context, c *client, message *Message) error

	clientsMutex sync.RWMutex
	clients      map[entity.SessionID]*client
}

func New(logger *slog.Logger, coord coordinator, allowedOrigins []string) *Server {
	server := &Server{
		logger:      logger,
		coordinator: coord,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
		handlers: make(map[string]func(context.Context, *client, *Message) error),
		clients:  make(map[entity.SessionID]*client),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionRoomCreate] = server.handleRoomCreate
	server.handlers[actionRoomJoin] = server.handleRoomJoin
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionRematchRequest] = server.handleRematchRequest
	server.handlers[actionRematchCancel] = server.handleRematchCancel

	return server
}

// Start - starts the WebSocket server and shuts it down when the context is
// canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	// No read/write timeouts here: websocket connections are long-lived.
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		IdleTimeout: 10 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}

		// Shutdown does not touch hijacked connections; drop them so the
		// read pumps exit.
		that.closeClients()

		return nil
	}
}

// serveWS - upgrades the connection, binds it to a session identity and runs
// the read loop until the connection goes away.
func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	sessionID := that.sessionFromCookie(w, r)

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		conn:      conn,
		send:      make(chan Message, sendBufferSize),
		sessionID: sessionID,
	}

	that.registerClient(c)

	log.Info("WebSocket connection established", "sessionID", sessionID)

	go c.writePump()
	that.readPump(ctx, c)
}

// readPump - processes inbound commands to completion, one at a time per
// connection. On read failure it reconciles the disconnect.
func (that *Server) readPump(ctx context.Context, c *client) {
	log := that.logger.With("method", "readPump", "sessionID", c.sessionID)

	defer func() {
		that.handleDisconnect(ctx, c)
		_ = c.conn.Close()
	}()

	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			continue
		}

		if err := handler(ctx, c, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteJSON(message); err != nil {
			return
		}
	}
}

func (that *Server) registerClient(c *client) {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	if old, ok := that.clients[c.sessionID]; ok {
		close(old.send)
	}

	that.clients[c.sessionID] = c
}

// unregisterClient - drops the mapping only if it still points at this
// connection, so a reconnect racing the old connection's teardown survives.
func (that *Server) unregisterClient(c *client) bool {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	current, ok := that.clients[c.sessionID]
	if !ok || current != c {
		return false
	}

	delete(that.clients, c.sessionID)
	close(c.send)

	return true
}

// closeClients - tears down every live connection. Each read pump observes
// its closed socket and exits; its teardown then finds the map no longer
// pointing at it and skips reconciliation.
func (that *Server) closeClients() {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	for id, c := range that.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(that.clients, id)
	}
}

// sendTo - fire-and-forget delivery to a session. Undeliverable events are
// dropped; the coordinator never retries.
func (that *Server) sendTo(id entity.SessionID, action string, payload Payload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		that.logger.Error("failed to marshal payload", "action", action, "error", err)
		return
	}

	// The send stays under the read lock: channels are only ever closed
	// under the write lock, so this cannot race a close.
	that.clientsMutex.RLock()
	defer that.clientsMutex.RUnlock()

	c, ok := that.clients[id]
	if !ok {
		return
	}

	select {
	case c.send <- Message{Action: action, Payload: raw}:
	default:
		that.logger.Warn("send buffer full, dropping event", "sessionID", id, "action", action)
	}
}

func (that *Server) sendError(id entity.SessionID, kind, detail string) {
	that.sendTo(id, actionError, Payload{
		Error: &ErrorInfo{Kind: kind, Detail: detail},
	})
}

// sessionFromCookie - restores the session identity from the cookie, or
// assigns a fresh one.
func (that *Server) sessionFromCookie(w http.ResponseWriter, r *http.Request) entity.SessionID {
	log := that.logger.With("method", "sessionFromCookie")

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		cookie = &http.Cookie{
			Name:    sessionCookieName,
			Value:   pkg.GenerateNewSessionID(),
			Expires: time.Now().Add(sessionCookieAge),
			Path:    "/ws",
		}
		http.SetCookie(w, cookie)
		log.Info("session cookie not found, new one created", "cookie", cookie.Value)
	}

	return entity.SessionID(cookie.Value)
}

// originChecker - allows everything when no origins are configured (same
// origin deployments), otherwise requires an exact match.
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowedOrigins) == 0 {
			return true
		}

		origin := r.Header.Get("Origin")
		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}

		return false
	}
}

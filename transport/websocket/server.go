package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/playgrid/gamehub-backend/internal/identity"
	"github.com/playgrid/gamehub-backend/internal/pkg"
	"github.com/playgrid/gamehub-backend/internal/usecase"
)

const sessionCookieName = "user_session"

// SessionFactory builds a room session bound to the identity the transport
// resolved for this connection.
type SessionFactory func(provider identity.Provider) *usecase.Session

type Server struct {
	logger     *slog.Logger
	newSession SessionFactory
	upgrader   websocket.Upgrader

	handlers map[string]func(ctx context.Context, conn *client, message *Message) error
}

// client is one connected websocket peer and its room session. Writes are
// serialized because gorilla connections allow a single concurrent writer.
type client struct {
	conn    *websocket.Conn
	session *usecase.Session

	writeMu sync.Mutex
}

func New(logger *slog.Logger, newSession SessionFactory) *Server {
	server := &Server{
		logger:     logger,
		newSession: newSession,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	server.handlers = map[string]func(context.Context, *client, *Message) error{
		"room:new":   server.handleRoomNew,
		"room:bot":   server.handleRoomBot,
		"room:join":  server.handleRoomJoin,
		"room:turn":  server.handleRoomTurn,
		"room:state": server.handleRoomState,
	}

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	userID := that.resolveSessionCookie(w, r)

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	session := that.newSession(identity.Static(userID))

	peer := &client{
		conn:    conn,
		session: session,
	}

	defer func() {
		if err = session.Close(); err != nil {
			log.Error("failed to close session", "error", err)
		}

		_ = conn.Close()
	}()

	log.Info("WebSocket connection established", "user", userID)

	that.handleMessages(ctx, peer)
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, peer *client) {
	log := that.logger.With("method", "handleMessages")

	for {
		_, raw, err := peer.conn.ReadMessage()
		if err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			_ = peer.sendError(message.Action, "unknown action")
			continue
		}

		if err = handler(ctx, peer, &message); err != nil {
			log.Error("failed to process message", "action", message.Action, "error", err)
		}
	}
}

// resolveSessionCookie - binds the connection to an authenticated identity,
// issuing a fresh one on first contact.
func (that *Server) resolveSessionCookie(w http.ResponseWriter, r *http.Request) string {
	log := that.logger.With("method", "resolveSessionCookie")

	cookie, err := r.Cookie(sessionCookieName)
	if err == nil {
		return cookie.Value
	}

	sessionID := pkg.GenerateNewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:    sessionCookieName,
		Value:   sessionID,
		Expires: time.Now().Add(24 * time.Hour),
		Path:    "/ws",
	})

	log.Info("session cookie not found, new one created")

	return sessionID
}

func (that *client) send(action string, payload Payload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *client) sendError(action, message string) error {
	return that.send(action, Payload{Error: message})
}

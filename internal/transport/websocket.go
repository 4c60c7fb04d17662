// Package transport serves bolas arenas to browsers over HTTP and websockets.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/bolas/internal/arena"
	"github.com/tomz197/bolas/internal/config"
	"github.com/tomz197/bolas/internal/logging"
	"github.com/tomz197/bolas/internal/protocol"
)

// WebsocketHandler gives every websocket connection its own Arena and Session.
// The codec is chosen with the "codec" query parameter (json by default).
type WebsocketHandler struct {
	arenaConfig arena.Config
	logger      *log.Logger
	upgrader    websocket.Upgrader
}

// NewWebsocketHandler creates a handler building arenas from cfg.
func NewWebsocketHandler(cfg arena.Config, logger *log.Logger) *WebsocketHandler {
	if logger == nil {
		logger = logging.Nop()
	}
	cfg.Logger = logger
	return &WebsocketHandler{
		arenaConfig: cfg,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

func (h *WebsocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	codec, err := protocol.CodecByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Upgrade HTTP -> WebSocket
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	h.serve(r.Context(), conn, codec)
}

// serve runs one arena until the client goes away, the context ends or a write fails.
func (h *WebsocketHandler) serve(ctx context.Context, conn *websocket.Conn, codec protocol.Codec) {
	a := arena.New(h.arenaConfig)
	defer a.Close()

	logger := h.logger.With("arena", a.ID(), "remote", conn.RemoteAddr().String())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Basic timeouts + pong handling (keeps connections healthy)
	conn.SetReadLimit(config.WSReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(config.WSPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(config.WSPongWait))
	})

	session := arena.NewSession(a, &publisher{conn: conn, codec: codec}, h.logger)

	go h.readLoop(ctx, cancel, conn, session, logger)
	go pingLoop(ctx, conn)

	if err := session.Run(ctx); err != nil {
		logger.Error("failed to send state to client", "err", err)
		return
	}
	logger.Debug("session ended")
}

// readLoop decodes client messages into session events. Anything unexpected ends the session.
func (h *WebsocketHandler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, session *arena.Session, logger *log.Logger) {
	defer cancel()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				logger.Error("websocket read failed", "err", err)
			} else {
				logger.Debug("client closed the connection", "err", err)
			}
			return
		}

		if msgType != websocket.TextMessage {
			logger.Error("unexpected websocket message type", "type", msgType)
			closeWith(conn, websocket.CloseUnsupportedData, "text frames only")
			return
		}

		ev, err := protocol.DecodeClientMessage(data)
		if err != nil {
			logger.Error("failed to parse message from client", "message", string(data), "err", err)
			closeWith(conn, websocket.CloseUnsupportedData, "invalid message")
			return
		}
		logger.Debug("client event", "event", fmt.Sprintf("%T", ev))

		if err := session.Submit(ctx, ev); err != nil {
			return
		}
	}
}

// pingLoop pings the client until ctx ends. WriteControl may run concurrently with the session's writes.
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(config.WSPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(config.WSWriteWait)); err != nil {
				return
			}
		}
	}
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(config.WSWriteWait))
}

// publisher writes snapshots to the websocket. Only the session goroutine calls it.
type publisher struct {
	conn  *websocket.Conn
	codec protocol.Codec
}

func (p *publisher) Publish(s arena.Snapshot) error {
	data, err := p.codec.Encode(protocol.NewState(s))
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	msgType := websocket.TextMessage
	if p.codec.Binary() {
		msgType = websocket.BinaryMessage
	}
	_ = p.conn.SetWriteDeadline(time.Now().Add(config.WSWriteWait))
	return p.conn.WriteMessage(msgType, data)
}

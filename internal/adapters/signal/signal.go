// Package signal is the WebSocket adapter: it owns the transport
// connection, decodes inbound events and hands them to the app layer.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/caresync/signaling/internal/app"
	"github.com/caresync/signaling/internal/config"
	"github.com/caresync/signaling/internal/core"
	"github.com/caresync/signaling/internal/storage"
)

type Controller struct {
	Orch    *app.Orchestrator
	History storage.MessageStore
	cfg     *config.Config
	upgrade websocket.Upgrader
}

func NewController(cfg *config.Config, orch *app.Orchestrator, history storage.MessageStore) *Controller {
	return &Controller{
		Orch:    orch,
		History: history,
		cfg:     cfg,
		upgrade: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if cfg.AllowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == cfg.AllowedOrigin
			},
		},
	}
}

// wsConn implements core.ClientConn over one gorilla websocket.
type wsConn struct {
	id   core.ConnID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) ID() core.ConnID { return c.id }

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleWS upgrades the request and starts the connection lifecycle.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := ctl.upgrade.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &wsConn{
		id:   core.ConnID(uuid.NewString()),
		conn: ws,
		send: make(chan core.Frame, ctl.cfg.SendBuffer),
	}
	log.Info().Str("module", "signal").Str("conn", string(conn.id)).Msg("new WS connection")

	ctl.Orch.OnConnect(conn)
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, conn)
}

package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/caresync/signaling/internal/core"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drives the whole connection: it runs each inbound event to
// completion and on exit, for any reason, tears the session down
// exactly once through the orchestrator.
func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump closing")
		cancel()
		ctl.Orch.OnDisconnect(c)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("readPump read error")
				}
				return
			}
			ctl.handleEvent(c, data)
		}
	}
}

// handleEvent is the top-level dispatcher. The kind set is closed: a
// frame with an unlisted event name is logged and dropped without
// touching the connection.
func (ctl *Controller) handleEvent(c *wsConn, data []byte) {
	kind, payload, err := core.Decode(data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("bad envelope")
		return
	}

	switch kind {
	case core.EventUserOnline:
		ctl.handleUserOnline(c, payload)
	case core.EventJoinRoom:
		ctl.handleJoinRoom(c, payload)
	case core.EventSendMessage:
		ctl.handleSendMessage(c, payload)
	case core.EventCallUser:
		ctl.handleCallUser(c, payload)
	case core.EventAcceptCall:
		ctl.handleAcceptCall(c, payload)
	case core.EventICECandidate:
		ctl.handleCandidate(c, payload)
	case core.EventEndCall:
		ctl.handleEndCall(c, payload)
	case core.EventPing:
		ctl.sendJSON(c, core.EventPong, nil)
	default:
		log.Warn().Str("module", "signal").Str("event", string(kind)).Msg("unknown event")
	}
}

// sendJSON encodes and queues one outbound event on this connection.
func (ctl *Controller) sendJSON(c *wsConn, kind core.EventKind, payload any) {
	f, err := core.Encode(kind, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON encode")
		return
	}
	_ = c.TrySend(f)
}

// decodePayload unmarshals an event payload, logging on failure.
func decodePayload(kind core.EventKind, data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("event", string(kind)).Msg("bad payload")
		return false
	}
	return true
}

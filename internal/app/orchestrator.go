package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/caresync/signaling/internal/core"
	"github.com/caresync/signaling/internal/domain"
)

// Orchestrator is the connection lifecycle manager. It owns the set of
// live connections (status changes are broadcast globally, so any UI
// learns presence without pre-subscribing) and wires the presence
// registry, room router and relays together.
type Orchestrator struct {
	Presence *Presence
	Rooms    *Rooms
	Relay    *Relay
	Chat     *ChatRelay

	mu    sync.RWMutex
	conns map[core.ConnID]core.ClientConn
}

func NewOrchestrator(presence *Presence, rooms *Rooms, relay *Relay, chat *ChatRelay) *Orchestrator {
	return &Orchestrator{
		Presence: presence,
		Rooms:    rooms,
		Relay:    relay,
		Chat:     chat,
		conns:    make(map[core.ConnID]core.ClientConn),
	}
}

type statusPayload struct {
	UserID domain.UserID         `json:"userId"`
	Status domain.PresenceStatus `json:"status"`
}

// OnConnect registers a freshly upgraded connection. Nothing else
// happens until the client announces itself and joins rooms.
func (o *Orchestrator) OnConnect(conn core.ClientConn) {
	o.mu.Lock()
	o.conns[conn.ID()] = conn
	total := len(o.conns)
	o.mu.Unlock()
	log.Info().Str("module", "app.orchestrator").Str("conn", string(conn.ID())).Int("total", total).Msg("connected")
}

// OnDisconnect tears a connection down: room subscriptions go away,
// and if the connection still owns a presence entry the user is marked
// offline globally. A stale connection (superseded by a reconnect)
// releases nothing and fires no broadcast.
func (o *Orchestrator) OnDisconnect(conn core.ClientConn) {
	o.mu.Lock()
	delete(o.conns, conn.ID())
	o.mu.Unlock()

	o.Rooms.DropConn(conn)
	if userID, released := o.Presence.Release(conn); released {
		o.BroadcastAll(core.EventUserStatus, statusPayload{UserID: userID, Status: domain.StatusOffline})
	}
	log.Info().Str("module", "app.orchestrator").Str("conn", string(conn.ID())).Msg("disconnected")
}

// Announce puts the user online and broadcasts the status change to
// every live connection. role is informational only.
func (o *Orchestrator) Announce(userID domain.UserID, role string, conn core.ClientConn) error {
	if err := userID.Validate(); err != nil {
		return err
	}
	o.Presence.Announce(userID, conn)
	log.Info().Str("module", "app.orchestrator").Str("user", string(userID)).Str("role", role).Msg("announced online")
	o.BroadcastAll(core.EventUserStatus, statusPayload{UserID: userID, Status: domain.StatusOnline})
	return nil
}

// BroadcastAll sends one event to every live connection, room or not.
func (o *Orchestrator) BroadcastAll(kind core.EventKind, payload any) {
	o.mu.RLock()
	targets := make([]core.ClientConn, 0, len(o.conns))
	for _, c := range o.conns {
		targets = append(targets, c)
	}
	o.mu.RUnlock()

	for _, c := range targets {
		send(c, kind, payload)
	}
}

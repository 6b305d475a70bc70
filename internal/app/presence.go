package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/caresync/signaling/internal/core"
	"github.com/caresync/signaling/internal/domain"
)

// Presence maps announced user ids to their live connections.
// At most one connection per user: a re-announce overwrites the entry
// and the superseded connection is simply forgotten, not closed.
type Presence struct {
	mu     sync.RWMutex
	online map[domain.UserID]core.ClientConn
}

func NewPresence() *Presence {
	return &Presence{
		online: make(map[domain.UserID]core.ClientConn),
	}
}

// Announce registers conn as the live connection for id, replacing any
// previous one. The caller broadcasts the online status change.
func (p *Presence) Announce(id domain.UserID, conn core.ClientConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[id] = conn
	log.Info().Str("module", "app.presence").Str("user", string(id)).Str("conn", string(conn.ID())).Msg("user online")
}

// Lookup returns the currently registered connection for id, if any.
func (p *Presence) Lookup(id domain.UserID) (core.ClientConn, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.online[id]
	return c, ok
}

// Release removes the entry owned by conn and reports which user went
// offline. A connection superseded by a later Announce for the same
// user no longer owns an entry, so its disconnect is a no-op here and
// the still-online user keeps their status.
func (p *Presence) Release(conn core.ClientConn) (domain.UserID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.online {
		if c.ID() == conn.ID() {
			delete(p.online, id)
			log.Info().Str("module", "app.presence").Str("user", string(id)).Msg("user offline")
			return id, true
		}
	}
	return "", false
}

// Online snapshots the announced user ids, for the REST surface.
func (p *Presence) Online() []domain.UserID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.UserID, 0, len(p.online))
	for id := range p.online {
		out = append(out, id)
	}
	return out
}

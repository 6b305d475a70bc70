package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/caresync/signaling/internal/core"
	"github.com/caresync/signaling/internal/domain"
)

// Rooms is the subscription multimap: room key -> set of connections.
// Membership lives exactly as long as the connection does; there is no
// leave operation and nothing survives a restart.
type Rooms struct {
	mu   sync.RWMutex
	subs map[domain.RoomKey]map[core.ConnID]core.ClientConn
}

func NewRooms() *Rooms {
	return &Rooms{
		subs: make(map[domain.RoomKey]map[core.ConnID]core.ClientConn),
	}
}

// Join subscribes conn to the room for the given pair. Idempotent.
func (r *Rooms) Join(doctorID, patientID domain.UserID, conn core.ClientConn) domain.RoomKey {
	key := domain.RoomKeyFor(doctorID, patientID)
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.subs[key]
	if !ok {
		set = make(map[core.ConnID]core.ClientConn)
		r.subs[key] = set
	}
	if _, joined := set[conn.ID()]; !joined {
		set[conn.ID()] = conn
		log.Info().Str("module", "app.rooms").Str("room", string(key)).Str("conn", string(conn.ID())).Msg("joined room")
	}
	return key
}

// Subscribers snapshots the connections currently in the room.
func (r *Rooms) Subscribers(key domain.RoomKey) []core.ClientConn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.subs[key]
	out := make([]core.ClientConn, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// DropConn removes conn from every room it joined. Called once by the
// lifecycle manager when the connection dies.
func (r *Rooms) DropConn(conn core.ClientConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, set := range r.subs {
		if _, ok := set[conn.ID()]; ok {
			delete(set, conn.ID())
			if len(set) == 0 {
				delete(r.subs, key)
			}
		}
	}
}

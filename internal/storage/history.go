// Package storage persists chat history. The realtime core only ever
// appends before relaying and reads on the REST history endpoint; it
// trusts stored messages as final.
package storage

import (
	"context"
	"sync"

	"github.com/caresync/signaling/internal/domain"
)

// MessageStore is the persistence collaborator the chat path consumes:
// append one message to its room, read a room's recent history.
type MessageStore interface {
	Append(ctx context.Context, msg domain.ChatMessage) error
	History(ctx context.Context, doctorID, patientID domain.UserID, limit int) ([]domain.ChatMessage, error)
}

// MemoryHistory keeps history in process memory. Used in tests and as
// the fallback when no redis address is configured; it vanishes with
// the process, which dev setups are fine with.
type MemoryHistory struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey][]domain.ChatMessage
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		rooms: make(map[domain.RoomKey][]domain.ChatMessage),
	}
}

func (m *MemoryHistory) Append(_ context.Context, msg domain.ChatMessage) error {
	key := msg.Room()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[key] = append(m.rooms[key], msg)
	return nil
}

// History returns the last limit messages in chronological order.
// A non-positive limit returns the full room history.
func (m *MemoryHistory) History(_ context.Context, doctorID, patientID domain.UserID, limit int) ([]domain.ChatMessage, error) {
	key := domain.RoomKeyFor(doctorID, patientID)
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.rooms[key]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

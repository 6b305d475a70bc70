package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caresync/signaling/internal/core"
)

// fakeConn records every frame sent to it.
type fakeConn struct {
	id core.ConnID

	mu     sync.Mutex
	frames []core.Frame
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: core.ConnID(id)}
}

func (f *fakeConn) ID() core.ConnID { return f.id }

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

// received decodes everything sent to the connection so far.
func (f *fakeConn) received(t *testing.T) []core.Envelope {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Envelope, 0, len(f.frames))
	for _, fr := range f.frames {
		var env core.Envelope
		require.NoError(t, json.Unmarshal(fr, &env))
		out = append(out, env)
	}
	return out
}

// countKind counts frames of one event kind.
func (f *fakeConn) countKind(t *testing.T, kind core.EventKind) int {
	t.Helper()
	n := 0
	for _, env := range f.received(t) {
		if env.Event == kind {
			n++
		}
	}
	return n
}

// lastPayload returns the payload of the most recent event of kind,
// failing the test if none arrived.
func (f *fakeConn) lastPayload(t *testing.T, kind core.EventKind) json.RawMessage {
	t.Helper()
	var found json.RawMessage
	ok := false
	for _, env := range f.received(t) {
		if env.Event == kind {
			found = env.Data
			ok = true
		}
	}
	require.True(t, ok, "no %s event received", kind)
	return found
}

package app

import (
	"github.com/rs/zerolog/log"

	"github.com/caresync/signaling/internal/core"
)

// send encodes and delivers one event to one connection, fire-and-forget.
// Encoding failures and backpressure drops are logged, never propagated:
// a slow or broken receiver must not disturb the sender's handler.
func send(c core.ClientConn, kind core.EventKind, payload any) {
	f, err := core.Encode(kind, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Str("event", string(kind)).Msg("encode event")
		return
	}
	if err := c.TrySend(f); err != nil {
		log.Warn().Str("module", "app").Str("event", string(kind)).Str("conn", string(c.ID())).Msg("dropped frame")
	}
}

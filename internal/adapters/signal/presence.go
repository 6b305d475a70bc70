package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/caresync/signaling/internal/core"
	"github.com/caresync/signaling/internal/domain"
)

func (ctl *Controller) handleUserOnline(c *wsConn, data json.RawMessage) {
	var p struct {
		UserID domain.UserID `json:"userId"`
		Role   string        `json:"role"`
	}
	if !decodePayload(core.EventUserOnline, data, &p) {
		return
	}

	// A broken announce is dropped without a reply; the client has not
	// identified itself yet, so there is nothing useful to tell it.
	if err := ctl.Orch.Announce(p.UserID, p.Role, c); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("rejected user-online")
	}
}

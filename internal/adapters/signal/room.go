package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/caresync/signaling/internal/core"
	"github.com/caresync/signaling/internal/domain"
)

func (ctl *Controller) handleJoinRoom(c *wsConn, data json.RawMessage) {
	var p struct {
		DoctorID  domain.UserID `json:"doctorId"`
		PatientID domain.UserID `json:"patientId"`
	}
	if !decodePayload(core.EventJoinRoom, data, &p) {
		return
	}
	if p.DoctorID == "" || p.PatientID == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("join-room missing participant id")
		return
	}

	ctl.Orch.Rooms.Join(p.DoctorID, p.PatientID, c)
}

func (ctl *Controller) handleSendMessage(c *wsConn, data json.RawMessage) {
	var msg domain.ChatMessage
	if !decodePayload(core.EventSendMessage, data, &msg) {
		return
	}
	if err := msg.Validate(); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("invalid message payload")
		return
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Type == "" {
		msg.Type = domain.MessageTypeText
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	// Persist first, then relay. A store failure is logged and the
	// message still goes out live: readers of history may miss it, but
	// blocking the room on storage would be worse here. Background
	// context: the write should outlive a socket dying mid-handler.
	if err := ctl.History.Append(context.Background(), msg); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("room", string(msg.Room())).Msg("append chat history")
	}

	ctl.Orch.Chat.Deliver(msg)
}

package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/caresync/signaling/internal/core"
	"github.com/caresync/signaling/internal/domain"
)

// ChatRelay fans a finalized chat message out to every connection in
// the message's room. The message has already been persisted by the
// history store before Deliver is called; delivery itself is
// fire-and-forget and an offline recipient catches up via history.
type ChatRelay struct {
	rooms *Rooms
}

func NewChatRelay(rooms *Rooms) *ChatRelay {
	return &ChatRelay{rooms: rooms}
}

// receiveMessagePayload is the wire shape of receive-message: the
// stored message plus the derived chat id.
type receiveMessagePayload struct {
	ID          string             `json:"_id"`
	SenderID    domain.UserID      `json:"senderId"`
	SenderModel domain.SenderModel `json:"senderModel"`
	Text        string             `json:"text,omitempty"`
	FileData    string             `json:"fileData,omitempty"`
	FileName    string             `json:"fileName,omitempty"`
	Type        string             `json:"type"`
	Timestamp   time.Time          `json:"timestamp"`
	ChatID      domain.RoomKey     `json:"chatId"`
}

// Deliver broadcasts msg to the room derived from its doctor/patient
// pair. No subscribers means no live delivery, by design.
func (cr *ChatRelay) Deliver(msg domain.ChatMessage) {
	key := msg.Room()
	subs := cr.rooms.Subscribers(key)

	payload := receiveMessagePayload{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		SenderModel: msg.SenderModel,
		Text:        msg.Text,
		FileData:    msg.FileData,
		FileName:    msg.FileName,
		Type:        msg.Type,
		Timestamp:   msg.Timestamp,
		ChatID:      key,
	}

	for _, conn := range subs {
		send(conn, core.EventReceiveMessage, payload)
	}
	log.Info().Str("module", "app.chat").Str("room", string(key)).Int("subscribers", len(subs)).Msg("message relayed")
}

package domain

import (
	"errors"
	"time"
)

// SenderModel tags which collection the sender id belongs to.
type SenderModel string

const (
	SenderDoctor  SenderModel = "DocProfile"
	SenderPatient SenderModel = "Patient"
)

func (m SenderModel) Valid() bool {
	return m == SenderDoctor || m == SenderPatient
}

const (
	MessageTypeText  = "text"
	MessageTypeFile  = "file"
	MessageTypeImage = "image"
)

var ErrMessageEmpty = errors.New("message has neither text nor file data")

// ChatMessage is a finalized chat message as persisted by the history
// store. The server relays it to room subscribers without re-deriving
// content; the doctor/patient pair names the room.
type ChatMessage struct {
	ID          string      `json:"_id"`
	DoctorID    UserID      `json:"doctorId"`
	PatientID   UserID      `json:"patientId"`
	SenderID    UserID      `json:"senderId"`
	SenderModel SenderModel `json:"senderModel"`
	Text        string      `json:"text,omitempty"`
	Type        string      `json:"type"`
	FileData    string      `json:"fileData,omitempty"`
	FileName    string      `json:"fileName,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

func (m *ChatMessage) Validate() error {
	if err := m.DoctorID.Validate(); err != nil {
		return err
	}
	if err := m.PatientID.Validate(); err != nil {
		return err
	}
	if err := m.SenderID.Validate(); err != nil {
		return err
	}
	if !m.SenderModel.Valid() {
		return errors.New("unknown sender model")
	}
	if m.Text == "" && m.FileData == "" {
		return ErrMessageEmpty
	}
	return nil
}

// Room returns the key of the chat room this message belongs to.
func (m *ChatMessage) Room() RoomKey {
	return RoomKeyFor(m.DoctorID, m.PatientID)
}

// CallType distinguishes audio-only from video calls. The server does
// not treat them differently; the tag is relayed for the callee's UI.
type CallType string

const (
	CallAudio CallType = "audio"
	CallVideo CallType = "video"
)

func (t CallType) Valid() bool {
	return t == CallAudio || t == CallVideo
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomKeyForIsCommutative(t *testing.T) {
	pairs := [][2]UserID{
		{"doc1", "pat1"},
		{"pat1", "doc1"},
		{"a", "b"},
		{"68f3", "59ab"},
		{"same", "same"},
	}
	for _, p := range pairs {
		assert.Equal(t, RoomKeyFor(p[0], p[1]), RoomKeyFor(p[1], p[0]), "pair %v", p)
	}

	assert.Equal(t, RoomKey("doc1_pat1"), RoomKeyFor("pat1", "doc1"))
	assert.Equal(t, RoomKey("doc1_pat1"), RoomKeyFor("doc1", "pat1"))
}

func TestRoomKeyForDistinctPairs(t *testing.T) {
	a := RoomKeyFor("doc1", "pat1")
	b := RoomKeyFor("doc2", "pat2")
	c := RoomKeyFor("doc1", "pat2")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, b, c)
}

func TestChatMessageValidate(t *testing.T) {
	msg := ChatMessage{
		DoctorID:    "doc1",
		PatientID:   "pat1",
		SenderID:    "pat1",
		SenderModel: SenderPatient,
		Text:        "hello",
	}
	require.NoError(t, msg.Validate())
	assert.Equal(t, RoomKey("doc1_pat1"), msg.Room())

	missingSender := msg
	missingSender.SenderID = ""
	assert.Error(t, missingSender.Validate())

	badModel := msg
	badModel.SenderModel = "Nurse"
	assert.Error(t, badModel.Validate())

	empty := msg
	empty.Text = ""
	assert.ErrorIs(t, empty.Validate(), ErrMessageEmpty)

	fileOnly := msg
	fileOnly.Text = ""
	fileOnly.FileData = "aGVsbG8="
	fileOnly.FileName = "scan.png"
	assert.NoError(t, fileOnly.Validate())
}

func TestCallTypeValid(t *testing.T) {
	assert.True(t, CallAudio.Valid())
	assert.True(t, CallVideo.Valid())
	assert.False(t, CallType("screen").Valid())
	assert.False(t, CallType("").Valid())
}

package app

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresync/signaling/internal/core"
	"github.com/caresync/signaling/internal/domain"
)

func newTestRelay() (*Relay, *Presence, *Rooms) {
	presence := NewPresence()
	rooms := NewRooms()
	relay := NewRelay(presence, rooms, NewCallRateLimiter(0, 0))
	return relay, presence, rooms
}

func sdp(kind webrtc.SDPType) webrtc.SessionDescription {
	return webrtc.SessionDescription{Type: kind, SDP: "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\n"}
}

func TestCallUserOfflineCallee(t *testing.T) {
	relay, presence, _ := newTestRelay()
	caller := newFakeConn("c-caller")
	presence.Announce("pat1", caller)

	relay.CallUser(caller, "pat1", "doc1", sdp(webrtc.SDPTypeOffer), domain.CallAudio)

	// Exactly one call-error back to the caller, nothing anywhere else.
	require.Equal(t, 1, caller.countKind(t, core.EventCallError))
	assert.Len(t, caller.received(t), 1)

	var p struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(caller.lastPayload(t, core.EventCallError), &p))
	assert.Contains(t, p.Message, "doc1")
}

func TestCallHandshake(t *testing.T) {
	relay, presence, _ := newTestRelay()
	caller := newFakeConn("c-pat")
	callee := newFakeConn("c-doc")
	presence.Announce("pat1", caller)
	presence.Announce("doc1", callee)

	offer := sdp(webrtc.SDPTypeOffer)
	relay.CallUser(caller, "pat1", "doc1", offer, domain.CallAudio)

	require.Equal(t, 1, callee.countKind(t, core.EventIncomingCall))
	assert.Zero(t, caller.countKind(t, core.EventCallError))

	var incoming struct {
		FromUserID domain.UserID             `json:"fromUserId"`
		Offer      webrtc.SessionDescription `json:"offer"`
		CallType   domain.CallType           `json:"callType"`
	}
	require.NoError(t, json.Unmarshal(callee.lastPayload(t, core.EventIncomingCall), &incoming))
	assert.Equal(t, domain.UserID("pat1"), incoming.FromUserID)
	assert.Equal(t, offer.SDP, incoming.Offer.SDP)
	assert.Equal(t, domain.CallAudio, incoming.CallType)

	// Callee answers, addressed to the original caller's user id.
	relay.AcceptCall("pat1", sdp(webrtc.SDPTypeAnswer))
	require.Equal(t, 1, caller.countKind(t, core.EventCallAccepted))

	// ICE flows to the addressed party only, verbatim.
	mid := "0"
	cand := webrtc.ICECandidateInit{Candidate: "candidate:1 1 udp 2122260223 10.0.0.1 51234 typ host", SDPMid: &mid}
	relay.ForwardCandidate("doc1", cand)
	require.Equal(t, 1, callee.countKind(t, core.EventICECandidate))
	assert.Zero(t, caller.countKind(t, core.EventICECandidate))

	var fwd struct {
		Candidate webrtc.ICECandidateInit `json:"candidate"`
	}
	require.NoError(t, json.Unmarshal(callee.lastPayload(t, core.EventICECandidate), &fwd))
	assert.Equal(t, cand.Candidate, fwd.Candidate.Candidate)
}

func TestAcceptCallCallerGoneIsSilent(t *testing.T) {
	relay, _, _ := newTestRelay()
	// Nobody online; must not panic or emit anything.
	relay.AcceptCall("pat1", sdp(webrtc.SDPTypeAnswer))
	relay.ForwardCandidate("pat1", webrtc.ICECandidateInit{Candidate: "candidate:1"})
}

func TestEndCallDeduplicatesDirectAndRoomTarget(t *testing.T) {
	relay, presence, rooms := newTestRelay()
	doc := newFakeConn("c-doc")
	pat := newFakeConn("c-pat")
	watcher := newFakeConn("c-watcher")

	presence.Announce("doc1", doc)
	presence.Announce("pat1", pat)
	rooms.Join("doc1", "pat1", doc)
	rooms.Join("doc1", "pat1", pat)
	rooms.Join("doc1", "pat1", watcher)

	// doc is both the direct target and a room subscriber: one event.
	relay.EndCall("doc1", "doc1", "pat1")

	assert.Equal(t, 1, doc.countKind(t, core.EventCallEnded))
	assert.Equal(t, 1, pat.countKind(t, core.EventCallEnded))
	assert.Equal(t, 1, watcher.countKind(t, core.EventCallEnded))
}

func TestEndCallDirectOnlyWithoutRoomPair(t *testing.T) {
	relay, presence, rooms := newTestRelay()
	doc := newFakeConn("c-doc")
	other := newFakeConn("c-other")

	presence.Announce("doc1", doc)
	rooms.Join("doc1", "pat1", other)

	relay.EndCall("doc1", "", "")

	assert.Equal(t, 1, doc.countKind(t, core.EventCallEnded))
	assert.Zero(t, other.countKind(t, core.EventCallEnded))
}

func TestCallUserRateLimited(t *testing.T) {
	presence := NewPresence()
	rooms := NewRooms()
	relay := NewRelay(presence, rooms, NewCallRateLimiter(2, time.Minute))

	caller := newFakeConn("c-pat")
	callee := newFakeConn("c-doc")
	presence.Announce("pat1", caller)
	presence.Announce("doc1", callee)

	for i := 0; i < 3; i++ {
		relay.CallUser(caller, "pat1", "doc1", sdp(webrtc.SDPTypeOffer), domain.CallVideo)
	}

	assert.Equal(t, 2, callee.countKind(t, core.EventIncomingCall))
	assert.Equal(t, 1, caller.countKind(t, core.EventCallError))
}

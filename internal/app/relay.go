package app

import (
	"fmt"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/caresync/signaling/internal/core"
	"github.com/caresync/signaling/internal/domain"
)

// Relay forwards WebRTC call-setup events between two parties addressed
// by user id. It never inspects SDP or ICE contents and keeps no call
// state: each event stands alone, resolved against current presence.
type Relay struct {
	presence *Presence
	rooms    *Rooms
	limiter  *CallRateLimiter
}

func NewRelay(presence *Presence, rooms *Rooms, limiter *CallRateLimiter) *Relay {
	return &Relay{
		presence: presence,
		rooms:    rooms,
		limiter:  limiter,
	}
}

type incomingCallPayload struct {
	FromUserID domain.UserID             `json:"fromUserId"`
	Offer      webrtc.SessionDescription `json:"offer"`
	CallType   domain.CallType           `json:"callType"`
}

type callAcceptedPayload struct {
	Answer webrtc.SessionDescription `json:"answer"`
}

type candidatePayload struct {
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

type callErrorPayload struct {
	Message string `json:"message"`
}

// CallUser starts a call attempt. The callee gets incoming-call if it
// is online; otherwise the caller, the only party with a reliable
// reply channel, gets call-error so its UI can stop ringing.
func (r *Relay) CallUser(caller core.ClientConn, from, to domain.UserID, offer webrtc.SessionDescription, callType domain.CallType) {
	if !r.limiter.Allow(from) {
		log.Warn().Str("module", "app.relay").Str("from", string(from)).Msg("call attempt rate limited")
		send(caller, core.EventCallError, callErrorPayload{Message: "Too many call attempts, slow down"})
		return
	}

	callee, ok := r.presence.Lookup(to)
	if !ok {
		log.Warn().Str("module", "app.relay").Str("from", string(from)).Str("to", string(to)).Msg("callee not online")
		send(caller, core.EventCallError, callErrorPayload{Message: fmt.Sprintf("User %s is not online", to)})
		return
	}

	log.Info().Str("module", "app.relay").Str("from", string(from)).Str("to", string(to)).Str("callType", string(callType)).Msg("call")
	send(callee, core.EventIncomingCall, incomingCallPayload{
		FromUserID: from,
		Offer:      offer,
		CallType:   callType,
	})
}

// AcceptCall routes the callee's answer back to the original caller.
// A caller that disconnected mid-ring is dropped silently; there is
// nobody left to tell.
func (r *Relay) AcceptCall(to domain.UserID, answer webrtc.SessionDescription) {
	caller, ok := r.presence.Lookup(to)
	if !ok {
		log.Warn().Str("module", "app.relay").Str("to", string(to)).Msg("accept-call: caller gone")
		return
	}
	log.Info().Str("module", "app.relay").Str("to", string(to)).Msg("call accepted")
	send(caller, core.EventCallAccepted, callAcceptedPayload{Answer: answer})
}

// ForwardCandidate relays one ICE candidate verbatim, or drops it if
// the target is offline. Candidates are not queued or retried.
func (r *Relay) ForwardCandidate(to domain.UserID, candidate webrtc.ICECandidateInit) {
	target, ok := r.presence.Lookup(to)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("to", string(to)).Msg("ice-candidate: target gone")
		return
	}
	send(target, core.EventICECandidate, candidatePayload{Candidate: candidate})
}

// EndCall notifies the addressed user and, when a doctor/patient pair
// is supplied, everyone subscribed to that room. A connection that is
// both gets exactly one call-ended.
func (r *Relay) EndCall(to, doctorID, patientID domain.UserID) {
	targets := make(map[core.ConnID]core.ClientConn)

	if conn, ok := r.presence.Lookup(to); ok {
		targets[conn.ID()] = conn
	}
	if doctorID != "" && patientID != "" {
		key := domain.RoomKeyFor(doctorID, patientID)
		for _, conn := range r.rooms.Subscribers(key) {
			targets[conn.ID()] = conn
		}
	}

	log.Info().Str("module", "app.relay").Str("to", string(to)).Int("targets", len(targets)).Msg("call ended")
	for _, conn := range targets {
		send(conn, core.EventCallEnded, nil)
	}
}

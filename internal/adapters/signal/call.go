package signal

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/caresync/signaling/internal/core"
	"github.com/caresync/signaling/internal/domain"
)

type callErrorPayload struct {
	Message string `json:"message"`
}

// handleCallUser is the one call path with a reply channel: a bad
// payload or offline callee answers the caller with call-error so its
// ringing UI can stop.
func (ctl *Controller) handleCallUser(c *wsConn, data json.RawMessage) {
	var p struct {
		FromUserID domain.UserID             `json:"fromUserId"`
		ToUserID   domain.UserID             `json:"toUserId"`
		Offer      webrtc.SessionDescription `json:"offer"`
		CallType   domain.CallType           `json:"callType"`
	}
	if !decodePayload(core.EventCallUser, data, &p) {
		ctl.sendJSON(c, core.EventCallError, callErrorPayload{Message: "Invalid call parameters"})
		return
	}
	if p.FromUserID == "" || p.ToUserID == "" || p.Offer.SDP == "" || !p.CallType.Valid() {
		log.Warn().Str("module", "signal").Str("from", string(p.FromUserID)).Str("to", string(p.ToUserID)).Msg("invalid call-user payload")
		ctl.sendJSON(c, core.EventCallError, callErrorPayload{Message: "Invalid call parameters"})
		return
	}

	ctl.Orch.Relay.CallUser(c, p.FromUserID, p.ToUserID, p.Offer, p.CallType)
}

func (ctl *Controller) handleAcceptCall(c *wsConn, data json.RawMessage) {
	var p struct {
		ToUserID domain.UserID             `json:"toUserId"`
		Answer   webrtc.SessionDescription `json:"answer"`
	}
	if !decodePayload(core.EventAcceptCall, data, &p) {
		return
	}
	if p.ToUserID == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("accept-call without target")
		return
	}

	ctl.Orch.Relay.AcceptCall(p.ToUserID, p.Answer)
}

func (ctl *Controller) handleCandidate(c *wsConn, data json.RawMessage) {
	var p struct {
		ToUserID  domain.UserID           `json:"toUserId"`
		Candidate webrtc.ICECandidateInit `json:"candidate"`
	}
	if !decodePayload(core.EventICECandidate, data, &p) {
		return
	}
	if p.ToUserID == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("ice-candidate without target")
		return
	}

	ctl.Orch.Relay.ForwardCandidate(p.ToUserID, p.Candidate)
}

func (ctl *Controller) handleEndCall(c *wsConn, data json.RawMessage) {
	var p struct {
		ToUserID  domain.UserID `json:"toUserId"`
		DoctorID  domain.UserID `json:"doctorId"`
		PatientID domain.UserID `json:"patientId"`
	}
	if !decodePayload(core.EventEndCall, data, &p) {
		return
	}
	if p.ToUserID == "" && (p.DoctorID == "" || p.PatientID == "") {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("end-call without any target")
		return
	}

	ctl.Orch.Relay.EndCall(p.ToUserID, p.DoctorID, p.PatientID)
}

/* SPDX-License-Identifier: MIT */

package bridge

import (
	"encoding/json"
	"time"
)

type callEventIn struct {
	EventID          string        `json:"eventId"`
	Number           string        `json:"number"`
	NormalizedNumber string        `json:"normalizedNumber"`
	Direction        CallDirection `json:"direction"`
	State            CallState     `json:"state"`
	Timestamp        int64         `json:"timestamp"`
	DeviceID         string        `json:"deviceId"`
	ContactName      string        `json:"contactName,omitempty"`
	ContactPhoto     string        `json:"contactPhoto,omitempty"`
}

// handleCallEvent updates or creates a call event record (§4.6.8).
func (b *Bridge) handleCallEvent(s *Session, data json.RawMessage) error {
	var in callEventIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}
	if in.EventID == "" {
		return ErrMissingFields
	}

	b.Calls.Upsert(CallEvent{
		EventID:          in.EventID,
		Number:           in.Number,
		NormalizedNumber: in.NormalizedNumber,
		Direction:        in.Direction,
		State:            in.State,
		Timestamp:        in.Timestamp,
		DeviceID:         in.DeviceID,
		ContactName:      in.ContactName,
		ContactPhoto:     in.ContactPhoto,
		receivedAt:       time.Now(),
	})
	return nil
}

// handleCallControlResponse is purely informational: the peer acking an
// outbound callControl leaves no further shared state to mutate.
func (b *Bridge) handleCallControlResponse(s *Session, data json.RawMessage) error {
	return nil
}

// CallControlAction is the out-of-band keycode vocabulary for
// accept/end (§4.6.8); it travels over the same transport as everything
// else in this implementation (the spec's "out-of-band" requirement is
// about bypassing the OS telephony stack, not this transport).
type CallControlAction string

const (
	CallControlAccept CallControlAction = "accept"
	CallControlEnd    CallControlAction = "end"
)

// SendCallControl asks the peer to accept or end the call identified by
// eventID.
func (b *Bridge) SendCallControl(eventID string, action CallControlAction) error {
	return b.Router.Send(KindCallControl, struct {
		EventID string            `json:"eventId"`
		Action  CallControlAction `json:"action"`
	}{eventID, action})
}

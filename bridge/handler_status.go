/* SPDX-License-Identifier: MIT */

package bridge

import "encoding/json"

// MediaAction is the shared action vocabulary of §4.6.2.
type MediaAction string

const (
	ActionPlay       MediaAction = "play"
	ActionPause      MediaAction = "pause"
	ActionPlayPause  MediaAction = "playPause"
	ActionNext       MediaAction = "next"
	ActionPrevious   MediaAction = "previous"
	ActionStop       MediaAction = "stop"
	ActionLike       MediaAction = "like"
	ActionUnlike     MediaAction = "unlike"
	ActionToggleLike MediaAction = "toggleLike"
)

type macMediaControlIn struct {
	Action MediaAction `json:"action"`
}

type macMediaControlResponseOut struct {
	Action  MediaAction `json:"action"`
	Success bool        `json:"success"`
}

// handleStatus overwrites the peer-status snapshot atomically (§4.6.2).
func (b *Bridge) handleStatus(s *Session, data json.RawMessage) error {
	var status PeerStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return ErrBadPayload
	}
	b.SM.SetStatus(status)
	b.UI.PublishStatus(status)
	return nil
}

// handleMediaControlResponse is purely informational (§4.6.2): the frame
// is accepted and dropped; nothing is recorded or published to the UI.
func (b *Bridge) handleMediaControlResponse(s *Session, data json.RawMessage) error {
	return nil
}

// handleMacMediaControl forwards to the local media collaborator and
// replies with macMediaControlResponse (§4.6.2).
func (b *Bridge) handleMacMediaControl(s *Session, data json.RawMessage) error {
	var in macMediaControlIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}
	ok := b.Media.Control(string(in.Action))
	return b.Router.Send(KindMacMediaControlResponse, macMediaControlResponseOut{
		Action:  in.Action,
		Success: ok,
	})
}

// VolumeAction is the vocabulary for outbound volumeControl (§4.6.2).
type VolumeAction struct {
	VolumeUp   bool `json:"volumeUp,omitempty"`
	VolumeDown bool `json:"volumeDown,omitempty"`
	Mute       bool `json:"mute,omitempty"`
	SetVolume  *int `json:"setVolume,omitempty"`
}

// SendVolumeControl and SendMacVolume are operator/collaborator-invoked
// outbound sends, not frame handlers — they live here because they share
// this file's vocabulary.
func (b *Bridge) SendVolumeControl(action VolumeAction) error {
	return b.Router.Send(KindVolumeControl, action)
}

func (b *Bridge) SendMacVolume(volume int) error {
	return b.Router.Send(KindMacVolume, struct {
		Volume int `json:"volume"`
	}{volume})
}

func (b *Bridge) SendMediaControl(action MediaAction) error {
	return b.Router.Send(KindMediaControl, macMediaControlIn{Action: action})
}

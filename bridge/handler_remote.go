/* SPDX-License-Identifier: MIT */

package bridge

import "encoding/json"

// remoteControlIn is the union of every remoteControl action shape
// (§4.6.6). Only the fields relevant to Action are populated on the wire;
// the rest decode to their zero value.
type remoteControlIn struct {
	Action    string   `json:"action"`
	Code      string   `json:"code,omitempty"`      // keypress
	Modifiers []string `json:"modifiers,omitempty"` // keypress
	Text      string   `json:"text,omitempty"`      // type
	Level     int      `json:"level,omitempty"`     // volume set
	DX        int      `json:"dx,omitempty"`        // mouse move/scroll
	DY        int      `json:"dy,omitempty"`        // mouse move/scroll
	Button    string   `json:"button,omitempty"`    // mouse click
	Down      bool     `json:"down,omitempty"`       // mouse click
}

const (
	remoteKeyPress     = "keyPress"
	remoteType         = "type"
	remoteDirUp        = "up"
	remoteDirDown      = "down"
	remoteDirLeft      = "left"
	remoteDirRight     = "right"
	remoteEnter        = "enter"
	remoteSpace        = "space"
	remoteEscape       = "escape"
	remoteVolumeUp     = "volumeUp"
	remoteVolumeDown   = "volumeDown"
	remoteVolumeMute   = "volumeMute"
	remoteVolumeSet    = "volumeSet"
	remoteMediaPlay    = "mediaPlayPause"
	remoteMediaNext    = "mediaNext"
	remoteMediaPrev    = "mediaPrevious"
	remoteMouseMove    = "mouseMove"
	remoteMouseClick   = "mouseClick"
	remoteMouseScroll  = "mouseScroll"
)

// directionalKeys maps the named directional/control actions to the
// injector's key codes; everything in this table is a bare key press with
// no modifiers.
var directionalKeys = map[string]string{
	remoteDirUp:    "Up",
	remoteDirDown:  "Down",
	remoteDirLeft:  "Left",
	remoteDirRight: "Right",
	remoteEnter:    "Return",
	remoteSpace:    "Space",
	remoteEscape:   "Escape",
}

// handleRemoteControl dispatches one remoteControl action to the platform
// injector or media collaborator; no reply is produced (§4.6.6).
func (b *Bridge) handleRemoteControl(s *Session, data json.RawMessage) error {
	var in remoteControlIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}

	if code, ok := directionalKeys[in.Action]; ok {
		b.Injector.KeyPress(code, nil)
		return nil
	}

	switch in.Action {
	case remoteKeyPress:
		b.Injector.KeyPress(in.Code, in.Modifiers)
	case remoteType:
		b.Injector.TypeText(in.Text)
	case remoteVolumeUp:
		b.Media.SetLocalVolume(clampVolume(b.Media.LocalVolume() + 5))
	case remoteVolumeDown:
		b.Media.SetLocalVolume(clampVolume(b.Media.LocalVolume() - 5))
	case remoteVolumeMute:
		b.Media.SetLocalVolume(0)
	case remoteVolumeSet:
		b.Media.SetLocalVolume(clampVolume(in.Level))
	case remoteMediaPlay:
		b.Media.Control(string(ActionPlayPause))
	case remoteMediaNext:
		b.Media.Control(string(ActionNext))
	case remoteMediaPrev:
		b.Media.Control(string(ActionPrevious))
	case remoteMouseMove:
		b.Injector.MouseMove(in.DX, in.DY)
	case remoteMouseClick:
		b.Injector.MouseClick(in.Button, in.Down)
	case remoteMouseScroll:
		b.Injector.MouseScroll(in.DX, in.DY)
	default:
		b.Log.Errorf("remoteControl: unrecognized action %q", in.Action)
	}
	return nil
}

func clampVolume(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

// SendModifierStatus reports the desktop's current modifier-key state to
// the peer, used by the mobile-side remote-control overlay.
func (b *Bridge) SendModifierStatus(shift, ctrl, alt, meta bool) error {
	return b.Router.Send(KindModifierStatus, struct {
		Shift bool `json:"shift"`
		Ctrl  bool `json:"ctrl"`
		Alt   bool `json:"alt"`
		Meta  bool `json:"meta"`
	}{shift, ctrl, alt, meta})
}

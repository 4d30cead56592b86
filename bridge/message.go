/* SPDX-License-Identifier: MIT */

package bridge

import "encoding/json"

// Kind is the closed set of message kinds in §6.3. It is a string type so
// that unknown values decode without error (the router is responsible for
// recognizing and rejecting them, per §4.5's "unknown types log and
// drop").
type Kind string

// Inbound-from-peer kinds.
const (
	KindDevice                     Kind = "device"
	KindStatus                     Kind = "status"
	KindNotification               Kind = "notification"
	KindNotificationUpdate         Kind = "notificationUpdate"
	KindNotificationActionResponse Kind = "notificationActionResponse"
	KindDismissalResponse          Kind = "dismissalResponse"
	KindMediaControlResponse       Kind = "mediaControlResponse"
	KindMacMediaControl            Kind = "macMediaControl"
	KindAppIcons                   Kind = "appIcons"
	KindClipboardUpdate            Kind = "clipboardUpdate"
	KindFileTransferInit           Kind = "fileTransferInit"
	KindFileChunk                  Kind = "fileChunk"
	KindFileChunkAck               Kind = "fileChunkAck"
	KindFileTransferComplete       Kind = "fileTransferComplete"
	KindTransferVerified           Kind = "transferVerified"
	KindFileTransferCancel         Kind = "fileTransferCancel"
	KindCallEvent                  Kind = "callEvent"
	KindCallControlResponse        Kind = "callControlResponse"
	KindRemoteControl              Kind = "remoteControl"
	KindBrowseData                 Kind = "browseData"
	KindPong                       Kind = "pong"
)

// Outbound-to-peer kinds.
const (
	KindMacInfo                  Kind = "macInfo"
	KindNotificationAction       Kind = "notificationAction"
	KindDismissNotification      Kind = "dismissNotification"
	KindMediaControl             Kind = "mediaControl"
	KindVolumeControl            Kind = "volumeControl"
	KindMacVolume                Kind = "macVolume"
	KindMacMediaControlResponse  Kind = "macMediaControlResponse"
	KindToggleAppNotif           Kind = "toggleAppNotif"
	KindBrowseLs                 Kind = "browseLs"
	KindDisconnectRequest        Kind = "disconnectRequest"
	KindRefreshAdbPorts          Kind = "refreshAdbPorts"
	KindCallControl              Kind = "callControl"
	KindModifierStatus           Kind = "modifierStatus"
	KindPing                     Kind = "ping"
)

// envelope is the wire shape {"type": "<Kind>", "data": {...}} (§6.1).
type envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// encode marshals a typed payload into the {type, data} envelope JSON.
func encode(kind Kind, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	env := envelope{Type: kind, Data: data}
	out, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// decodeEnvelope parses the outer {type, data} shape only; the caller
// unmarshals Data into the kind-specific struct once it knows the kind.
func decodeEnvelope(body string) (envelope, error) {
	var env envelope
	err := json.Unmarshal([]byte(body), &env)
	return env, err
}

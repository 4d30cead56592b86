/* SPDX-License-Identifier: MIT */

package bridge

import "time"

// PeerDevice is the handshake-derived peer device record (§3). It is
// replaced wholesale, never merged, on re-handshake, and destroyed when
// the primary session ends.
type PeerDevice struct {
	Name            string   `json:"name"`
	IPAddress       string   `json:"ipAddress"`
	Port            int      `json:"port"`
	Version         string   `json:"version"`
	TargetIPAddress string   `json:"targetIpAddress,omitempty"`
	ADBPorts        []int    `json:"adbPorts,omitempty"`
	Wallpaper       string   `json:"wallpaper,omitempty"` // base64 blob, forwarded to the UI collaborator verbatim
}

// MediaState is the nested media snapshot inside PeerStatus.
type MediaState struct {
	Playing  bool   `json:"playing"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Volume   int    `json:"volume"`
	Muted    bool   `json:"muted"`
	Art      string `json:"art,omitempty"`
	LikeState string `json:"likeState,omitempty"`
}

// BatteryState is the nested battery snapshot inside PeerStatus.
type BatteryState struct {
	Level    int  `json:"level"`
	Charging bool `json:"charging"`
}

// PeerStatus is overwritten wholesale each time a status frame arrives
// (§3).
type PeerStatus struct {
	Battery BatteryState `json:"battery"`
	Paired  bool         `json:"paired"`
	Media   MediaState   `json:"media"`
}

// NotificationAction is one button/reply action attached to a
// notification.
type NotificationAction struct {
	Name string `json:"name"`
	Kind string `json:"kind"` // "button" | "reply"
}

// Notification is created on inbound notification and removed on
// dismissal from either side (§3).
type Notification struct {
	ID         string               `json:"id"`
	Title      string               `json:"title"`
	Body       string               `json:"body"`
	AppLabel   string               `json:"appLabel"`
	AppPackage string               `json:"appPackage"`
	Actions    []NotificationAction `json:"actions"`
}

// AppIcon is one entry of the peer's app inventory (§4.6.4).
type AppIcon struct {
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"` // base64 PNG, optionally a data: URI
	SystemApp bool   `json:"systemApp"`
	Listening bool   `json:"listening"`
}

// CallDirection and CallState are the closed enumerations of §4.6.8.
type CallDirection string
type CallState string

const (
	CallIncoming CallDirection = "incoming"
	CallOutgoing CallDirection = "outgoing"

	CallRinging  CallState = "ringing"
	CallActive   CallState = "active"
	CallEnded    CallState = "ended"
	CallMissed   CallState = "missed"
)

// CallEvent models an inbound callEvent (§4.6.8).
type CallEvent struct {
	EventID           string        `json:"eventId"`
	Number            string        `json:"number"`
	NormalizedNumber  string        `json:"normalizedNumber"`
	Direction         CallDirection `json:"direction"`
	State             CallState     `json:"state"`
	Timestamp         int64         `json:"timestamp"` // unix millis on the wire
	DeviceID          string        `json:"deviceId"`
	ContactName       string        `json:"contactName,omitempty"`
	ContactPhoto      string        `json:"contactPhoto,omitempty"`
	receivedAt        time.Time
}

/* SPDX-License-Identifier: MIT */

package bridge

import "encoding/json"

type notificationIn struct {
	ID         string               `json:"id"`
	Title      string               `json:"title"`
	Body       string               `json:"body"`
	AppLabel   string               `json:"appLabel"`
	AppPackage string               `json:"appPackage"`
	Actions    []NotificationAction `json:"actions"`
}

// handleNotification creates a notification record and posts it to the OS
// notification collaborator (§4.6.3).
func (b *Bridge) handleNotification(s *Session, data json.RawMessage) error {
	var in notificationIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}
	if in.ID == "" {
		return ErrMissingFields
	}

	n := Notification{
		ID:         in.ID,
		Title:      in.Title,
		Body:       in.Body,
		AppLabel:   in.AppLabel,
		AppPackage: in.AppPackage,
		Actions:    in.Actions,
	}
	b.Notifications.Put(n)
	b.OSNotify.Post(n)
	return nil
}

type notificationUpdateIn struct {
	ID        string `json:"id"`
	Action    string `json:"action,omitempty"`
	Dismissed bool   `json:"dismissed,omitempty"`
}

// handleNotificationUpdate removes the record and dismisses the OS-level
// notification when the peer reports a dismiss (§4.6.3).
func (b *Bridge) handleNotificationUpdate(s *Session, data json.RawMessage) error {
	var in notificationUpdateIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}
	if in.Action != "dismiss" && !in.Dismissed {
		return nil
	}
	if _, ok := b.Notifications.Remove(in.ID); ok {
		b.OSNotify.Dismiss(in.ID)
	}
	return nil
}

// handleNotificationActionResponse and handleDismissalResponse are purely
// informational acks for outbound requests; there is no shared state left
// to mutate once the peer has replied.
func (b *Bridge) handleNotificationActionResponse(s *Session, data json.RawMessage) error {
	return nil
}

func (b *Bridge) handleDismissalResponse(s *Session, data json.RawMessage) error {
	return nil
}

type notificationActionOut struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Text string `json:"text,omitempty"`
}

// SendNotificationAction asks the peer to invoke an action on a
// notification it owns (§4.6.3); the reply arrives as
// notificationActionResponse.
func (b *Bridge) SendNotificationAction(id, name, text string) error {
	return b.Router.Send(KindNotificationAction, notificationActionOut{ID: id, Name: name, Text: text})
}

// SendDismissNotification asks the peer to dismiss one notification; the
// reply arrives as dismissalResponse.
func (b *Bridge) SendDismissNotification(id string) error {
	return b.Router.Send(KindDismissNotification, struct {
		ID string `json:"id"`
	}{id})
}

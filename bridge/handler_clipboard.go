/* SPDX-License-Identifier: MIT */

package bridge

import "encoding/json"

type clipboardUpdateIn struct {
	Text string `json:"text"`
}

// handleClipboardUpdate pushes peer clipboard text to the OS pasteboard
// collaborator (§4.6.5). The outbound direction is produced by a clipboard
// watcher outside this package, not a frame handler.
func (b *Bridge) handleClipboardUpdate(s *Session, data json.RawMessage) error {
	var in clipboardUpdateIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}
	b.Pasteboard.SetText(in.Text)
	return nil
}

// SendClipboardUpdate pushes the desktop's clipboard text to the peer.
func (b *Bridge) SendClipboardUpdate(text string) error {
	return b.Router.Send(KindClipboardUpdate, clipboardUpdateIn{Text: text})
}

/* SPDX-License-Identifier: MIT */

package bridge

import "encoding/json"

// BrowseEntry is one directory-listing row inside browseData (§4.6.7).
type BrowseEntry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"isDir"`
	Size  int64  `json:"size"`
}

type browseDataIn struct {
	Path  string        `json:"path"`
	Items []BrowseEntry `json:"items,omitempty"`
	Error string        `json:"error,omitempty"`
}

// handleBrowseData fills the browser view model from the peer's reply to
// an earlier browseLs (§4.6.7). The result is only logged (the error, or
// the entry count); it is not forwarded to the UI collaborator, and no
// browser view model is filled here.
func (b *Bridge) handleBrowseData(s *Session, data json.RawMessage) error {
	var in browseDataIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}
	if in.Error != "" {
		b.Log.Errorf("browseData %q: %s", in.Path, in.Error)
		return nil
	}
	b.Log.Debugf("browseData %q: %d entries", in.Path, len(in.Items))
	return nil
}

// SendBrowseLs requests a directory listing from the peer.
func (b *Bridge) SendBrowseLs(path string, showHidden bool) error {
	return b.Router.Send(KindBrowseLs, struct {
		Path       string `json:"path"`
		ShowHidden bool   `json:"showHidden"`
	}{path, showHidden})
}

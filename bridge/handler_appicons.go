/* SPDX-License-Identifier: MIT */

package bridge

import "encoding/json"

type appIconIn struct {
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	SystemApp bool   `json:"systemApp"`
	Listening bool   `json:"listening"`
}

// handleAppIcons reconciles the peer's full inventory payload against the
// persisted on-disk cache (§4.6.4).
func (b *Bridge) handleAppIcons(s *Session, data json.RawMessage) error {
	var in map[string]appIconIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}

	remote := make(map[string]RemoteAppIcon, len(in))
	for pkg, e := range in {
		remote[pkg] = RemoteAppIcon{
			Name:      e.Name,
			IconB64:   e.Icon,
			SystemApp: e.SystemApp,
			Listening: e.Listening,
		}
	}
	return b.Inventory.Reconcile(remote)
}

// SendToggleAppNotif sets the listening flag for one package both locally
// and on the peer (§4.6.4).
func (b *Bridge) SendToggleAppNotif(pkg string, state bool) error {
	b.Inventory.SetListening(pkg, state)
	return b.Router.Send(KindToggleAppNotif, struct {
		Package string `json:"package"`
		State   bool   `json:"state"`
	}{pkg, state})
}

/* SPDX-License-Identifier: MIT */

package bridge

import "encoding/json"

// deviceHandshakeIn is the inbound `device` payload (§4.6.1).
type deviceHandshakeIn struct {
	Name            string `json:"name"`
	IPAddress       string `json:"ipAddress"`
	Port            int    `json:"port"`
	Version         string `json:"version"`
	TargetIPAddress string `json:"targetIpAddress,omitempty"`
	ADBPorts        []int  `json:"adbPorts,omitempty"`
	Wallpaper       string `json:"wallpaper,omitempty"`
}

// macInfoOut is the handshake reply (§4.6.1).
type macInfoOut struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Model        string   `json:"model"`
	Subscription bool     `json:"subscription"`
	KnownIcons   []string `json:"knownIconPackages"`
}

func (b *Bridge) handleDevice(s *Session, data json.RawMessage) error {
	var in deviceHandshakeIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}
	if in.Name == "" || in.IPAddress == "" || in.Version == "" {
		return ErrMissingFields
	}

	device := PeerDevice{
		Name:            in.Name,
		IPAddress:       in.IPAddress,
		Port:            in.Port,
		Version:         in.Version,
		TargetIPAddress: in.TargetIPAddress,
		ADBPorts:        in.ADBPorts,
		Wallpaper:       in.Wallpaper,
	}

	became := b.SM.ElectPrimary(s.handle, device)
	if !became {
		// Pre-emption rule said no: ignored per §4.4.
		return nil
	}

	if b.OnPaired != nil {
		b.OnPaired(device)
	}

	if in.Wallpaper != "" {
		b.UI.PresentWallpaper(in.Wallpaper)
	}

	known := make([]string, 0)
	for _, e := range b.Inventory.Snapshot() {
		if e.IconPath != "" {
			known = append(known, e.Package)
		}
	}

	return b.Router.SendTo(s, KindMacInfo, macInfoOut{
		Name:         b.Local.Name,
		Category:     b.Local.Category,
		Model:        b.Local.Model,
		Subscription: b.Local.Subscription,
		KnownIcons:   known,
	})
}

/* SPDX-License-Identifier: MIT */

package bridge

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// AppEntry is the locally-reconciled view of one peer-reported package
// (§4.6.4).
type AppEntry struct {
	Package   string
	Name      string
	IconPath  string
	SystemApp bool
	Listening bool
}

// AppInventory reconciles the peer's appIcons payload against a
// persisted on-disk set, one PNG per package in a dedicated cache
// directory (§6.4).
type AppInventory struct {
	mu       sync.Mutex
	iconsDir string
	entries  map[string]*AppEntry
}

func NewAppInventory(iconsDir string) *AppInventory {
	return &AppInventory{iconsDir: iconsDir, entries: make(map[string]*AppEntry)}
}

type RemoteAppIcon struct {
	Name      string
	IconB64   string // base64 PNG, optionally "data:image/png;base64,...."
	SystemApp bool
	Listening bool
}

// Reconcile applies §4.6.4's three-way merge: local-only entries are
// removed (icon deleted), both-present entries are updated in place,
// remote-only entries are created and their icon cached to disk.
func (a *AppInventory) Reconcile(remote map[string]RemoteAppIcon) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for pkg, entry := range a.entries {
		if _, ok := remote[pkg]; !ok {
			if entry.IconPath != "" {
				os.Remove(entry.IconPath)
			}
			delete(a.entries, pkg)
		}
	}

	for pkg, r := range remote {
		entry, existing := a.entries[pkg]
		if !existing {
			entry = &AppEntry{Package: pkg}
			a.entries[pkg] = entry
		}
		entry.Name = r.Name
		entry.SystemApp = r.SystemApp
		entry.Listening = r.Listening
		if r.IconB64 != "" {
			path, err := a.writeIcon(pkg, r.IconB64)
			if err != nil {
				return err
			}
			entry.IconPath = path
		}
	}
	return nil
}

func (a *AppInventory) writeIcon(pkg, b64 string) (string, error) {
	if idx := strings.Index(b64, ","); idx != -1 && strings.HasPrefix(b64, "data:") {
		b64 = b64[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(a.iconsDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(a.iconsDir, pkg+".png")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// SetListening toggles the listening flag for one package (toggleAppNotif,
// §4.6.4).
func (a *AppInventory) SetListening(pkg string, state bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.entries[pkg]; ok {
		e.Listening = state
	}
}

func (a *AppInventory) Snapshot() []AppEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AppEntry, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, *e)
	}
	return out
}

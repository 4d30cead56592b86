/* SPDX-License-Identifier: MIT */

// Package quickconnect implements the last-paired registry and the
// startup wake unicast (C7, §4.8): it remembers, per network key, the
// peer device last successfully paired with there, and on a future
// startup on that same network fires a best-effort datagram asking the
// peer to reconnect.
package quickconnect

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/pairbridge/bridged/bridge"
	"github.com/pairbridge/bridged/netprobe"
)

// Record is one last-paired entry: the peer device seen the last time
// this network key was active, plus the local network key it was
// recorded under.
type Record struct {
	NetworkKey string            `json:"networkKey"`
	Device     bridge.PeerDevice `json:"device"`
}

// Registry persists {network_key -> peer_device_record} across restarts
// (§6.4). At most one entry exists per network key; a later successful
// handshake on the same key replaces the prior entry wholesale.
type Registry struct {
	log  Logger
	path string

	mu      sync.Mutex
	entries map[string]Record
}

type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Load reads the registry from path, tolerating a missing file (a fresh
// install has no last-paired history yet).
func Load(log Logger, path string) (*Registry, error) {
	r := &Registry{log: log, path: path, entries: map[string]Record{}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, err
	}
	var list []Record
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	for _, rec := range list {
		r.entries[rec.NetworkKey] = rec
	}
	return r, nil
}

// Record stores or replaces the entry for the network key of localIP
// (the local host's current address, not the device's), and persists
// the registry.
func (r *Registry) Record(localIP string, device bridge.PeerDevice) error {
	key := netprobe.NetworkKey(localIP)
	if key == "" {
		return nil
	}

	r.mu.Lock()
	r.entries[key] = Record{NetworkKey: key, Device: device}
	list := r.snapshotLocked()
	r.mu.Unlock()

	return r.persist(list)
}

// Lookup returns the recorded peer for networkKey, if any.
func (r *Registry) Lookup(networkKey string) (bridge.PeerDevice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.entries[networkKey]
	return rec.Device, ok
}

func (r *Registry) snapshotLocked() []Record {
	list := make([]Record, 0, len(r.entries))
	for _, rec := range r.entries {
		list = append(list, rec)
	}
	return list
}

func (r *Registry) persist(list []Record) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}

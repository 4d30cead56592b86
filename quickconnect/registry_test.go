/* SPDX-License-Identifier: MIT */

package quickconnect

import (
	"path/filepath"
	"testing"

	"github.com/pairbridge/bridged/bridge"
)

type fakeLogger struct{}

func (fakeLogger) Debugf(string, ...interface{}) {}
func (fakeLogger) Infof(string, ...interface{})  {}
func (fakeLogger) Errorf(string, ...interface{}) {}

func TestRegistryRecordAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last-paired.json")
	reg, err := Load(fakeLogger{}, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	dev := bridge.PeerDevice{Name: "pixel", IPAddress: "192.168.1.42", Port: 6996}
	if err := reg.Record("192.168.1.7", dev); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, ok := reg.Lookup("192.168.1.0")
	if !ok {
		t.Fatal("expected entry for network 192.168.1.0")
	}
	if got.Name != "pixel" {
		t.Fatalf("got device %+v", got)
	}

	// Reload from disk to confirm persistence.
	reloaded, err := Load(fakeLogger{}, path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := reloaded.Lookup("192.168.1.0"); !ok {
		t.Fatal("expected persisted entry to survive reload")
	}
}

func TestRegistryReplacesSameNetworkKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last-paired.json")
	reg, _ := Load(fakeLogger{}, path)

	first := bridge.PeerDevice{Name: "old-phone", IPAddress: "10.0.0.5", Port: 6996}
	second := bridge.PeerDevice{Name: "new-phone", IPAddress: "10.0.0.9", Port: 6996}

	if err := reg.Record("10.0.0.1", first); err != nil {
		t.Fatalf("Record first: %v", err)
	}
	if err := reg.Record("10.0.0.1", second); err != nil {
		t.Fatalf("Record second: %v", err)
	}

	got, ok := reg.Lookup("10.0.0.0")
	if !ok {
		t.Fatal("expected entry")
	}
	if got.Name != "new-phone" {
		t.Fatalf("expected replacement to win, got %+v", got)
	}
}

func TestRegistryMissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	reg, err := Load(fakeLogger{}, path)
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if _, ok := reg.Lookup("10.0.0.0"); ok {
		t.Fatal("expected no entries in a fresh registry")
	}
}

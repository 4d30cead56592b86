/* SPDX-License-Identifier: MIT */

package quickconnect

import (
	"path/filepath"
	"testing"

	"github.com/pairbridge/bridged/bridge"
)

func TestShouldWakeSameNetwork(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last-paired.json")
	reg, _ := Load(fakeLogger{}, path)
	reg.Record("192.168.1.7", bridge.PeerDevice{Name: "pixel", IPAddress: "192.168.1.42", Port: 6996})

	w := NewWaker(fakeLogger{}, reg)
	peer, ok := w.shouldWake("192.168.1.23")
	if !ok {
		t.Fatal("expected wake for a matching /24")
	}
	if peer.Name != "pixel" {
		t.Fatalf("got %+v", peer)
	}
}

func TestShouldWakeSkipsOnNetworkMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last-paired.json")
	reg, _ := Load(fakeLogger{}, path)
	reg.Record("192.168.1.7", bridge.PeerDevice{Name: "pixel", IPAddress: "192.168.1.42", Port: 6996})

	w := NewWaker(fakeLogger{}, reg)
	if _, ok := w.shouldWake("10.0.0.5"); ok {
		t.Fatal("expected no wake across different networks")
	}
}

func TestShouldWakeSkipsWithNoHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last-paired.json")
	reg, _ := Load(fakeLogger{}, path)

	w := NewWaker(fakeLogger{}, reg)
	if _, ok := w.shouldWake("192.168.1.23"); ok {
		t.Fatal("expected no wake with an empty registry")
	}
}

/* SPDX-License-Identifier: MIT */

package bridge

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCryptoBoxSealOpenRoundTrip(t *testing.T) {
	box := NewCryptoBox(fakeLogger{})
	var key [KeySize]byte
	for i := range key {
		key[i] = byte(i)
	}
	if err := box.SetKey(key); err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	if !box.HasKey() {
		t.Fatal("HasKey false after SetKey")
	}

	sealed, err := box.Seal(`{"type":"ping","data":{}}`)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if sealed == `{"type":"ping","data":{}}` {
		t.Fatal("sealed text equals plaintext; not actually sealed")
	}

	opened, err := box.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened != `{"type":"ping","data":{}}` {
		t.Fatalf("opened = %q", opened)
	}
}

func TestCryptoBoxNoKeyPassthrough(t *testing.T) {
	box := NewCryptoBox(fakeLogger{})
	const body = `{"type":"ping","data":{}}`

	sealed, err := box.Seal(body)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if sealed != body {
		t.Fatalf("Seal with no key changed the body: %q", sealed)
	}

	opened, err := box.Open(body)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened != body {
		t.Fatalf("Open with no key changed the body: %q", opened)
	}
}

func TestCryptoBoxOpenRejectsTamperedFrame(t *testing.T) {
	box := NewCryptoBox(fakeLogger{})
	var key [KeySize]byte
	key[0] = 1
	if err := box.SetKey(key); err != nil {
		t.Fatalf("SetKey: %v", err)
	}

	sealed, err := box.Seal("hello")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	tampered := []byte(sealed)
	tampered[len(tampered)-1] ^= 0xFF
	if _, err := box.Open(string(tampered)); err == nil {
		t.Fatal("Open accepted a tampered frame")
	}
}

func TestCryptoBoxOpenRejectsShortFrame(t *testing.T) {
	box := NewCryptoBox(fakeLogger{})
	var key [KeySize]byte
	if err := box.SetKey(key); err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	if _, err := box.Open("AAAA"); err == nil {
		t.Fatal("Open accepted a too-short frame")
	}
}

func TestLoadOrCreateKeyPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")

	key1, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("LoadOrCreateKey (create): %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("key file not written: %v", err)
	}

	key2, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("LoadOrCreateKey (load): %v", err)
	}
	if key1 != key2 {
		t.Fatal("second load did not return the persisted key")
	}
}

func TestResetKeyChangesPersistedKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")

	original, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("LoadOrCreateKey: %v", err)
	}
	reset, err := ResetKey(path)
	if err != nil {
		t.Fatalf("ResetKey: %v", err)
	}
	if original == reset {
		t.Fatal("ResetKey produced the same key (or RNG collided)")
	}

	reloaded, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("LoadOrCreateKey after reset: %v", err)
	}
	if reloaded != reset {
		t.Fatal("reset key was not the one persisted to disk")
	}
}

/* SPDX-License-Identifier: MIT */

package bridge

import "testing"

func TestNotificationRegistryPutGetRemove(t *testing.T) {
	reg := NewNotificationRegistry()
	reg.Put(Notification{ID: "n1", Title: "hello"})

	got, ok := reg.Get("n1")
	if !ok || got.Title != "hello" {
		t.Fatalf("Get(n1) = %+v, %v", got, ok)
	}

	removed, ok := reg.Remove("n1")
	if !ok || removed.ID != "n1" {
		t.Fatalf("Remove(n1) = %+v, %v", removed, ok)
	}
	if _, ok := reg.Get("n1"); ok {
		t.Fatal("notification still present after Remove")
	}
}

func TestNotificationRegistryRemoveMissingIsFalse(t *testing.T) {
	reg := NewNotificationRegistry()
	if _, ok := reg.Remove("nope"); ok {
		t.Fatal("Remove reported success for an id that was never Put")
	}
}

func TestCallRegistryUpsertReplaces(t *testing.T) {
	reg := NewCallRegistry()
	reg.Upsert(CallEvent{EventID: "c1", State: CallRinging})
	reg.Upsert(CallEvent{EventID: "c1", State: CallActive})

	got, ok := reg.Get("c1")
	if !ok {
		t.Fatal("Get(c1) not found")
	}
	if got.State != CallActive {
		t.Fatalf("State = %q, want %q (second Upsert should replace)", got.State, CallActive)
	}
}

/* SPDX-License-Identifier: MIT */

package bridge

import "testing"

func TestHandleCallEventUpsertsRegistry(t *testing.T) {
	b, _, _, _ := newTestBridge()
	defer b.Close()

	conn := newFakeConn("192.168.1.10")
	ts := b.SM.Adopt(1, conn)

	err := b.handleCallEvent(ts, []byte(`{"eventId":"c1","number":"555","direction":"incoming","state":"ringing"}`))
	if err != nil {
		t.Fatalf("handleCallEvent: %v", err)
	}
	ev, ok := b.Calls.Get("c1")
	if !ok {
		t.Fatal("call event not recorded")
	}
	if ev.State != CallRinging || ev.Direction != CallIncoming {
		t.Fatalf("ev = %+v", ev)
	}

	// A follow-up event for the same call updates state in place.
	if err := b.handleCallEvent(ts, []byte(`{"eventId":"c1","state":"active"}`)); err != nil {
		t.Fatalf("handleCallEvent (update): %v", err)
	}
	ev, _ = b.Calls.Get("c1")
	if ev.State != CallActive {
		t.Fatalf("state after update = %q, want active", ev.State)
	}
}

func TestHandleCallEventMissingIDRejected(t *testing.T) {
	b, _, _, _ := newTestBridge()
	defer b.Close()

	conn := newFakeConn("192.168.1.10")
	ts := b.SM.Adopt(1, conn)

	if err := b.handleCallEvent(ts, []byte(`{"number":"555"}`)); err != ErrMissingFields {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}
}

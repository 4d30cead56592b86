/* SPDX-License-Identifier: MIT */

package bridge

import (
	"encoding/json"
	"net"
	"testing"
	"time"
)

func newTestRouter() (*Router, *SessionManager) {
	sm := NewSessionManager(fakeLogger{}, nil, nil)
	r := NewRouter(fakeLogger{}, NewCryptoBox(fakeLogger{}), sm)
	return r, sm
}

func TestRouterDispatchesRegisteredKind(t *testing.T) {
	r, sm := newTestRouter()
	defer r.Close()
	defer sm.Close()

	conn := newFakeConn("10.0.0.5")
	sm.Adopt(1, conn)
	s := sm.Get(1)

	var gotData json.RawMessage
	r.Register(KindStatus, func(s *Session, data json.RawMessage) error {
		gotData = data
		return nil
	})
	sm.ElectPrimary(1, PeerDevice{Name: "phone"})

	r.HandleFrame(s, `{"type":"status","data":{"paired":true}}`)

	if gotData == nil {
		t.Fatal("registered handler was never invoked")
	}
}

func TestRouterDropsNonPrimaryFramesExceptDevice(t *testing.T) {
	r, sm := newTestRouter()
	defer r.Close()
	defer sm.Close()

	sm.Adopt(1, newFakeConn("10.0.0.5"))
	sm.Adopt(2, newFakeConn("10.0.0.6"))
	sm.ElectPrimary(1, PeerDevice{Name: "phone"})

	called := false
	r.Register(KindStatus, func(s *Session, data json.RawMessage) error {
		called = true
		return nil
	})

	nonPrimary := sm.Get(2)
	r.HandleFrame(nonPrimary, `{"type":"status","data":{}}`)

	if called {
		t.Fatal("status frame from a non-primary session was dispatched")
	}
}

func TestRouterUnknownKindDropsSilently(t *testing.T) {
	r, sm := newTestRouter()
	defer r.Close()
	defer sm.Close()

	sm.Adopt(1, newFakeConn("10.0.0.5"))
	s := sm.Get(1)
	sm.ElectPrimary(1, PeerDevice{Name: "phone"})

	// No handler registered for KindClipboardUpdate here; HandleFrame must
	// not panic and must simply drop the frame.
	r.HandleFrame(s, `{"type":"clipboardUpdate","data":{"text":"hi"}}`)
}

func TestRouterPongIsConsumedWithoutDispatch(t *testing.T) {
	r, sm := newTestRouter()
	defer r.Close()
	defer sm.Close()

	sm.Adopt(1, newFakeConn("10.0.0.5"))
	s := sm.Get(1)
	sm.ElectPrimary(1, PeerDevice{Name: "phone"})

	called := false
	r.Register(KindPong, func(s *Session, data json.RawMessage) error {
		called = true
		return nil
	})

	r.HandleFrame(s, `{"type":"pong","data":{}}`)
	if called {
		t.Fatal("pong should be consumed by the router, not dispatched to a handler")
	}
}

func TestRouterSendWithNoPrimaryReturnsError(t *testing.T) {
	r, sm := newTestRouter()
	defer r.Close()
	defer sm.Close()

	if err := r.Send(KindPing, struct{}{}); err != ErrNoPrimarySession {
		t.Fatalf("Send with no primary = %v, want ErrNoPrimarySession", err)
	}
}

func TestRouterSendDeliversToPrimary(t *testing.T) {
	r, sm := newTestRouter()
	defer r.Close()
	defer sm.Close()

	conn := newFakeConn("10.0.0.5")
	sm.Adopt(1, conn)
	sm.ElectPrimary(1, PeerDevice{Name: "phone"})

	if err := r.Send(KindPing, struct{}{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if conn.sentCount() != 1 {
		t.Fatalf("sentCount = %d, want 1", conn.sentCount())
	}
}

func TestRouterDecryptFailureIsRateLimitedPerSourceIP(t *testing.T) {
	r, sm := newTestRouter()
	defer r.Close()
	defer sm.Close()

	var key [KeySize]byte
	key[0] = 7
	crypto := NewCryptoBox(fakeLogger{})
	if err := crypto.SetKey(key); err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	r.crypto = crypto

	conn := newFakeConn("10.0.0.7")
	sm.Adopt(1, conn)
	s := sm.Get(1)

	// Garbage base64 can never decrypt; hammer the router with it and
	// confirm it never panics and the session survives (the limiter
	// throttles, it doesn't crash).
	for i := 0; i < 50; i++ {
		r.HandleFrame(s, "not-valid-sealed-text")
	}
	if r.limiter.Allow(net.ParseIP("10.0.0.7")) {
		t.Fatal("limiter still allows 10.0.0.7 after 50 decrypt failures")
	}
	if sm.Get(1) == nil || conn.isClosed() {
		t.Fatal("session did not survive repeated decrypt failures")
	}
}

func TestRouterFileTransferFramesRunOnDedicatedQueue(t *testing.T) {
	r, sm := newTestRouter()
	defer r.Close()
	defer sm.Close()

	sm.Adopt(1, newFakeConn("10.0.0.5"))
	s := sm.Get(1)
	sm.ElectPrimary(1, PeerDevice{Name: "phone"})

	done := make(chan struct{}, 1)
	r.Register(KindFileTransferInit, func(s *Session, data json.RawMessage) error {
		done <- struct{}{}
		return nil
	})

	r.HandleFrame(s, `{"type":"fileTransferInit","data":{}}`)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("file-transfer handler never ran on the dedicated queue")
	}
}

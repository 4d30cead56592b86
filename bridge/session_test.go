/* SPDX-License-Identifier: MIT */

package bridge

import (
	"testing"
	"time"
)

func newTestManager() (*SessionManager, *int, *int) {
	changed := 0
	lost := 0
	m := NewSessionManager(fakeLogger{}, func() { changed++ }, func() { lost++ })
	return m, &changed, &lost
}

func TestAdoptForgetLifecycle(t *testing.T) {
	m, changed, _ := newTestManager()
	defer m.Close()

	conn := newFakeConn("192.168.1.10")
	s := m.Adopt(1, conn)
	if s == nil {
		t.Fatal("Adopt returned nil")
	}
	if *changed != 1 {
		t.Fatalf("onPrimaryChanged fired %d times on first Adopt, want 1", *changed)
	}
	if m.Get(1) != s {
		t.Fatal("Get did not return the adopted session")
	}

	m.Forget(1)
	if m.Get(1) != nil {
		t.Fatal("session still present after Forget")
	}
	if *changed != 2 {
		t.Fatalf("onPrimaryChanged fired %d times total, want 2 (adopt+forget)", *changed)
	}
}

func TestElectPrimaryFirstHandshakeWins(t *testing.T) {
	m, _, _ := newTestManager()
	defer m.Close()

	conn := newFakeConn("192.168.1.10")
	m.Adopt(1, conn)

	became := m.ElectPrimary(1, PeerDevice{Name: "phone", IPAddress: "192.168.1.20"})
	if !became {
		t.Fatal("first handshake on an empty SessionManager should become primary")
	}
	if !m.IsPrimary(1) {
		t.Fatal("IsPrimary false for elected handle")
	}
	if m.Device().Name != "phone" {
		t.Fatalf("Device().Name = %q", m.Device().Name)
	}
}

func TestElectPrimaryRejectsUnknownHandle(t *testing.T) {
	m, _, _ := newTestManager()
	defer m.Close()

	if m.ElectPrimary(99, PeerDevice{Name: "ghost"}) {
		t.Fatal("ElectPrimary succeeded for a handle never Adopt()ed")
	}
}

func TestElectPrimaryRejectsContenderWithoutPreferredTarget(t *testing.T) {
	m, _, _ := newTestManager()
	defer m.Close()

	m.Adopt(1, newFakeConn("192.168.1.10"))
	m.Adopt(2, newFakeConn("192.168.1.11"))

	if !m.ElectPrimary(1, PeerDevice{Name: "first", TargetIPAddress: "192.168.1.1"}) {
		t.Fatal("first handshake should win")
	}
	// Second session contends with a public target, which is not a
	// preferred LAN range, so it must not supersede.
	if m.ElectPrimary(2, PeerDevice{Name: "second", TargetIPAddress: "8.8.8.8"}) {
		t.Fatal("contender without a preferred target superseded the primary")
	}
	if !m.IsPrimary(1) {
		t.Fatal("original primary was displaced")
	}
}

func TestElectPrimarySupersedesOnPreferredTarget(t *testing.T) {
	m, _, _ := newTestManager()
	defer m.Close()

	c1 := newFakeConn("192.168.1.10")
	m.Adopt(1, c1)
	m.Adopt(2, newFakeConn("192.168.1.11"))

	if !m.ElectPrimary(1, PeerDevice{Name: "first", TargetIPAddress: "8.8.8.8"}) {
		t.Fatal("first handshake should win")
	}
	if !m.ElectPrimary(2, PeerDevice{Name: "second", TargetIPAddress: "192.168.1.50"}) {
		t.Fatal("contender with a preferred target and a non-preferred incumbent should supersede")
	}
	if !m.IsPrimary(2) {
		t.Fatal("second session did not become primary")
	}
	if m.Device().Name != "second" {
		t.Fatalf("Device().Name = %q, want second", m.Device().Name)
	}

	time.Sleep(10 * time.Millisecond)
	if !c1.isClosed() {
		t.Fatal("displaced primary's connection was not closed")
	}
}

// TestElectPrimaryVPNIncumbentPreemptedByLANContender is the §8 concrete
// scenario: an existing VPN-target primary (10.8.0.2, OpenVPN's
// conventional subnet) is pre-empted by a contender declaring a plain LAN
// target (192.168.1.34). Expected: old session closed, new session primary.
func TestElectPrimaryVPNIncumbentPreemptedByLANContender(t *testing.T) {
	m, _, _ := newTestManager()
	defer m.Close()

	vpnConn := newFakeConn("192.168.1.10")
	m.Adopt(1, vpnConn)
	m.Adopt(2, newFakeConn("192.168.1.11"))

	if !m.ElectPrimary(1, PeerDevice{Name: "first", TargetIPAddress: "10.8.0.2"}) {
		t.Fatal("first handshake should win")
	}
	if !m.ElectPrimary(2, PeerDevice{Name: "second", TargetIPAddress: "192.168.1.34"}) {
		t.Fatal("LAN contender should pre-empt a VPN-target incumbent")
	}
	if !m.IsPrimary(2) {
		t.Fatal("second session did not become primary")
	}

	time.Sleep(10 * time.Millisecond)
	if !vpnConn.isClosed() {
		t.Fatal("displaced VPN-target primary's connection was not closed")
	}
}

func TestElectPrimaryReHandshakeFromCurrentPrimaryUpdatesDevice(t *testing.T) {
	m, _, _ := newTestManager()
	defer m.Close()

	m.Adopt(1, newFakeConn("192.168.1.10"))
	m.ElectPrimary(1, PeerDevice{Name: "first"})

	if !m.ElectPrimary(1, PeerDevice{Name: "renamed"}) {
		t.Fatal("re-handshake from the current primary should stay primary")
	}
	if m.Device().Name != "renamed" {
		t.Fatalf("Device().Name = %q, want renamed", m.Device().Name)
	}
}

func TestForgetClearsPrimaryAndTriggersRestart(t *testing.T) {
	m, _, lost := newTestManager()
	defer m.Close()

	m.Adopt(1, newFakeConn("192.168.1.10"))
	m.ElectPrimary(1, PeerDevice{Name: "phone"})

	m.Forget(1)
	if *lost != 1 {
		t.Fatalf("onStaleOrClosed fired %d times, want 1", *lost)
	}
	if m.Primary() != nil {
		t.Fatal("Primary() non-nil after the primary session was forgotten")
	}
	if m.Device() != nil {
		t.Fatal("Device() non-nil after the primary session was forgotten")
	}
}

func TestTouchUpdatesIdleTimer(t *testing.T) {
	m, _, _ := newTestManager()
	defer m.Close()

	m.Adopt(1, newFakeConn("192.168.1.10"))
	s := m.Get(1)
	time.Sleep(5 * time.Millisecond)
	before := s.idleFor()
	m.Touch(1)
	after := s.idleFor()
	if after >= before {
		t.Fatalf("idleFor after Touch (%s) was not smaller than before (%s)", after, before)
	}
}

/* SPDX-License-Identifier: MIT */

package bridge

import (
	"net"
	"sync"
	"time"

	"github.com/pairbridge/bridged/tai64n"
)

// Timing constants from §5/§6.1.
const (
	HeartbeatInterval = 5 * time.Second
	StaleTimeout       = 11 * time.Second
	ProbeInterval      = 10 * time.Second
	RestartDebounce    = 5 * time.Second
)

// outbound is the narrow surface a Session needs from the transport layer,
// so this package never imports gorilla/websocket directly.
type outbound interface {
	SendText(string) error
	Close() error
	RemoteAddr() net.Addr
}

// Session is the coordinator-side view of one accepted transport
// connection (§3). At most one Session holds isPrimary at any instant
// (invariant 1); non-primary sessions may only contribute to a handshake
// attempt (invariant 2).
type Session struct {
	handle    uint64
	conn      outbound
	isPrimary AtomicBool

	mu           sync.Mutex
	lastActivity time.Time
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActivity)
}

// SessionManager elects the primary session, drives the heartbeat, and
// tears sessions down on staleness. A single mutex protects the resources
// listed in §5 ("a single recursive lock protects the active-sessions
// list, the primary-session handle, the last-activity map...") — Go has
// no recursive mutex, so this is enforced by discipline: methods never
// call each other while holding mu, and callers never hold mu across a
// call into SessionManager.
type SessionManager struct {
	log Logger

	mu       sync.Mutex
	sessions map[uint64]*Session
	primary  *Session

	device          *PeerDevice
	status          *PeerStatus
	lastHandshakeAt tai64n.Timestamp // local processing time of the last applied device frame

	onPrimaryChanged func()      // enable/disable auxiliary monitors (§4.4 "lifecycle tie-ins")
	onStaleOrClosed  func()      // restart the transport to a clean listening state
	sendToPeer       func(Kind, interface{}) error

	heartbeatStop chan struct{}
	heartbeatOnce sync.Once
}

func NewSessionManager(log Logger, onPrimaryChanged, onStaleOrClosed func()) *SessionManager {
	return &SessionManager{
		log:              log,
		sessions:         make(map[uint64]*Session),
		onPrimaryChanged: onPrimaryChanged,
		onStaleOrClosed:  onStaleOrClosed,
		heartbeatStop:    make(chan struct{}),
	}
}

// Adopt registers a newly-accepted transport session.
func (m *SessionManager) Adopt(handle uint64, conn outbound) *Session {
	s := &Session{handle: handle, conn: conn, lastActivity: time.Now()}

	m.mu.Lock()
	wasEmpty := len(m.sessions) == 0
	m.sessions[handle] = s
	m.mu.Unlock()

	if wasEmpty && m.onPrimaryChanged != nil {
		m.onPrimaryChanged() // session count 0 -> 1: enable auxiliary monitors
	}
	m.startHeartbeatOnce()
	return s
}

// Forget removes a session on disconnect and clears the primary flag and
// derived state if it was primary.
func (m *SessionManager) Forget(handle uint64) {
	m.mu.Lock()
	s, ok := m.sessions[handle]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, handle)
	wasPrimary := m.primary == s
	if wasPrimary {
		m.primary = nil
		m.device = nil
		m.status = nil
	}
	empty := len(m.sessions) == 0
	m.mu.Unlock()

	if empty && m.onPrimaryChanged != nil {
		m.onPrimaryChanged() // session count 1 -> 0: disable auxiliary monitors
	}
	if wasPrimary && m.onStaleOrClosed != nil {
		m.onStaleOrClosed() // primary disconnected: restart transport to a clean state
	}
}

// Get looks up the coordinator-side Session for a transport handle.
func (m *SessionManager) Get(handle uint64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[handle]
}

// Touch refreshes last-activity for the session that produced a frame.
func (m *SessionManager) Touch(handle uint64) {
	m.mu.Lock()
	s := m.sessions[handle]
	m.mu.Unlock()
	if s != nil {
		s.touch()
	}
}

// IsPrimary reports whether handle currently holds the primary flag.
func (m *SessionManager) IsPrimary(handle uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.primary != nil && m.primary.handle == handle
}

// Primary returns the current primary session, or nil.
func (m *SessionManager) Primary() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.primary
}

// isPreferredTarget reports whether ip is in a range treated as a "known
// LAN peer" for handshake pre-emption (§4.4's "prevents a WAN-reachable
// peer from pre-empting a known LAN peer"). This deliberately excludes
// 10.0.0.0/8: that block is the default subnet for most VPN software
// (OpenVPN's conventional 10.8.0.0/24 among them), so a target address in
// it is an off-LAN VPN peer, not the "known LAN peer" the rule means to
// protect, even though 10/8 is itself RFC1918-private. 172.16.0.0/12 and
// 192.168.0.0/16 are the ranges actually handed out by home/office LAN
// DHCP and are treated as preferred.
func isPreferredTarget(ip string) bool {
	addr := net.ParseIP(ip)
	if addr == nil {
		return false
	}
	for _, cidr := range []string{"172.16.0.0/12", "192.168.0.0/16"} {
		_, block, _ := net.ParseCIDR(cidr)
		if block.Contains(addr) {
			return true
		}
	}
	return false
}

// ElectPrimary implements §4.4's election rule for an inbound `device`
// handshake. It returns true if handle is (or becomes) primary.
func (m *SessionManager) ElectPrimary(handle uint64, device PeerDevice) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidate, ok := m.sessions[handle]
	if !ok {
		return false
	}

	now := tai64n.Now()

	if m.primary == nil {
		m.primary = candidate
		candidate.isPrimary.Set(true)
		m.device = &device
		m.lastHandshakeAt = now
		return true
	}

	if m.primary.handle == handle {
		if !now.After(m.lastHandshakeAt) {
			// The wall clock has not advanced past the last applied
			// handshake (e.g. it was stepped back); keep the recorded
			// device. A frame reordered in transit is not detected here.
			return true
		}
		m.device = &device
		m.lastHandshakeAt = now
		return true
	}

	// A second concurrent handshake: supersede only if the newcomer's
	// target address is a preferred (known-LAN) range and the current
	// primary's was not.
	newIsPreferred := isPreferredTarget(device.TargetIPAddress)
	oldIsPreferred := m.device != nil && isPreferredTarget(m.device.TargetIPAddress)
	if newIsPreferred && !oldIsPreferred {
		old := m.primary
		old.isPrimary.Set(false)
		m.primary = candidate
		candidate.isPrimary.Set(true)
		m.device = &device
		m.lastHandshakeAt = now
		go old.conn.Close()
		return true
	}

	return false
}

func (m *SessionManager) SetStatus(status PeerStatus) {
	m.mu.Lock()
	m.status = &status
	m.mu.Unlock()
}

func (m *SessionManager) Status() *PeerStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *SessionManager) Device() *PeerDevice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.device
}

// startHeartbeatOnce starts the single timer goroutine that pings the
// primary every HeartbeatInterval and force-closes it past StaleTimeout
// (§4.4, invariants 7/"stale session" scenario).
func (m *SessionManager) startHeartbeatOnce() {
	m.heartbeatOnce.Do(func() {
		go m.heartbeatLoop()
	})
}

func (m *SessionManager) heartbeatLoop() {
	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.heartbeatStop:
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

func (m *SessionManager) tick() {
	m.mu.Lock()
	p := m.primary
	m.mu.Unlock()
	if p == nil {
		return
	}

	idle := p.idleFor()
	if idle > StaleTimeout {
		m.log.Infof("session %d stale (idle %s > %s), closing", p.handle, idle, StaleTimeout)
		p.conn.Close() // Forget() runs from the transport's on-disconnect callback
		return
	}

	if err := p.conn.SendText(`{"type":"ping","data":{}}`); err != nil {
		m.log.Errorf("heartbeat send failed: %v", err)
	}
}

// Close stops the heartbeat goroutine permanently (daemon shutdown).
func (m *SessionManager) Close() {
	close(m.heartbeatStop)
}

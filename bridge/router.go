/* SPDX-License-Identifier: MIT */

package bridge

import (
	"encoding/json"
	"net"

	"github.com/pairbridge/bridged/ratelimiter"
)

// Handler is a per-kind handler, a pure function of (session, raw
// payload, shared state) per §4.6: side effects are limited to mutating
// shared state (via the Router/SessionManager/Bridge it closes over),
// enqueuing outbound frames, and scheduling file-transfer work.
type Handler func(s *Session, data json.RawMessage) error

// Router decodes framed JSON into tagged messages and dispatches each to
// a typed handler (§4.5). It also serializes outgoing messages through
// the crypto box.
type Router struct {
	log    Logger
	crypto *CryptoBox
	sm     *SessionManager
	fileQ  chan func() // dedicated serial queue for file-transfer frames (§4.5 "Dispatch discipline")
	routes map[Kind]Handler

	// limiter gates decrypt failures and non-primary handshake attempts
	// by source IP (§7), so a hostile or misconfigured LAN peer can't
	// churn the router with garbage frames or contest the handshake
	// forever.
	limiter ratelimiter.Ratelimiter
}

func NewRouter(log Logger, crypto *CryptoBox, sm *SessionManager) *Router {
	r := &Router{
		log:    log,
		crypto: crypto,
		sm:     sm,
		fileQ:  make(chan func(), 256),
		routes: make(map[Kind]Handler),
	}
	r.limiter.Init()
	go r.runFileQueue()
	return r
}

func remoteIP(s *Session) net.IP {
	addr, ok := s.conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return nil
	}
	return addr.IP
}

func (r *Router) runFileQueue() {
	for fn := range r.fileQ {
		fn()
	}
}

// fileTransferKinds are processed on the dedicated serial queue to
// guarantee per-transfer write ordering (§4.5).
var fileTransferKinds = map[Kind]bool{
	KindFileTransferInit:     true,
	KindFileChunk:            true,
	KindFileChunkAck:         true,
	KindFileTransferComplete: true,
}

// Register installs the handler for one message kind. Called once per
// kind at startup from Bridge's wiring code.
func (r *Router) Register(kind Kind, h Handler) {
	r.routes[kind] = h
}

// HandleFrame implements the decode step of §4.5: base64-decode + decrypt
// under the shared key (handled by CryptoBox.Open, a no-op when no key is
// configured), parse as {type, data}, dispatch or drop.
func (r *Router) HandleFrame(s *Session, body string) {
	r.sm.Touch(s.handle)

	plaintext, err := r.crypto.Open(body)
	if err != nil {
		if ip := remoteIP(s); ip != nil && !r.limiter.Allow(ip) {
			return
		}
		// A decryption failure on the primary session is logged and the
		// frame dropped; it does not tear the session down by itself
		// (§4.1).
		r.log.Errorf("router: frame open failed: %v", err)
		return
	}

	env, err := decodeEnvelope(plaintext)
	if err != nil {
		r.log.Errorf("router: bad envelope: %v", err)
		return
	}

	if env.Type == KindPong {
		// Consumed inside the router; Touch already ran above.
		return
	}

	// Gating: every kind but `device` is accepted only from the primary
	// session (§4.5 "Gating").
	if env.Type != KindDevice && !r.sm.IsPrimary(s.handle) {
		return
	}

	// A non-primary session repeatedly contesting the handshake is
	// throttled the same way a decrypt failure is.
	if env.Type == KindDevice && !r.sm.IsPrimary(s.handle) {
		if ip := remoteIP(s); ip != nil && !r.limiter.Allow(ip) {
			return
		}
	}

	handler, ok := r.routes[env.Type]
	if !ok {
		r.log.Errorf("router: unknown kind %q", env.Type)
		return
	}

	dispatch := func() {
		if err := handler(s, env.Data); err != nil {
			r.log.Errorf("router: handler for %q failed: %v", env.Type, err)
		}
	}

	if fileTransferKinds[env.Type] {
		r.fileQ <- dispatch
	} else {
		dispatch()
	}
}

// Send serializes an outgoing {type, data} message, seals it, and writes
// it to the primary session. A send with no primary session writes
// nothing and returns ErrNoPrimarySession (§4.5).
func (r *Router) Send(kind Kind, payload interface{}) error {
	primary := r.sm.Primary()
	if primary == nil {
		return ErrNoPrimarySession
	}

	plaintext, err := encode(kind, payload)
	if err != nil {
		return err
	}
	sealed, err := r.crypto.Seal(plaintext)
	if err != nil {
		return err
	}
	return primary.conn.SendText(sealed)
}

// SendTo seals and writes to a specific session, bypassing the primary
// lookup — used only by the handshake reply, which is addressed to the
// session that sent the `device` frame.
func (r *Router) SendTo(s *Session, kind Kind, payload interface{}) error {
	plaintext, err := encode(kind, payload)
	if err != nil {
		return err
	}
	sealed, err := r.crypto.Seal(plaintext)
	if err != nil {
		return err
	}
	return s.conn.SendText(sealed)
}

// Close stops the file-transfer queue goroutine and the rate limiter's
// garbage-collection timer.
func (r *Router) Close() {
	close(r.fileQ)
	r.limiter.Close()
}

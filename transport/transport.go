// Package transport implements the WebSocket-like transport core (§4.3 of
// the bridge daemon spec): it binds a single endpoint on a configurable
// TCP port, accepts many concurrent sessions, delivers text frames in
// either direction, and shuts down cleanly. It is deliberately ignorant
// of message framing, encryption, or protocol state — all of that lives
// one layer up, in package bridge. This mirrors the teacher's own
// conn.Bind/device split: the transport moves bytes, the coordinator
// gives them meaning.
//
// Grounded on golang.zx2c4.com/wireguard/device/send_receive.go, which
// already wraps gorilla/websocket's *websocket.Conn as a net.Conn-like
// object for client-side obfuscation; here the same library is turned
// around into the daemon's own server endpoint.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// EndpointPath is the one stable path the transport serves (§6.1).
const EndpointPath = "/socket"

// Status mirrors the single operator-visible status field of §7:
// {stopped, starting, started(port, ip), failed(reason)}.
type Status struct {
	State string // "stopped", "starting", "started", "failed"
	Port  int
	IP    string
	Err   error
}

// Callbacks are the three hooks a session drives, per §4.3.
type Callbacks struct {
	OnConnect    func(*Session)
	OnText       func(*Session, string)
	OnDisconnect func(*Session)
}

// Session is one accepted WebSocket-like connection. It guarantees
// ordered, serialized delivery of outbound frames but makes no promises
// about ordering across sessions (§5).
type Session struct {
	id     uint64
	conn   *websocket.Conn
	remote net.Addr

	writeMu sync.Mutex
	closed  AtomicBool
}

func (s *Session) ID() uint64          { return s.id }
func (s *Session) RemoteAddr() net.Addr { return s.remote }

// SendText writes one text frame. Safe for concurrent use; the transport
// serializes writes internally even though the coordinator should only
// ever have one writer per session in practice.
func (s *Session) SendText(body string) error {
	if s.closed.Get() {
		return errors.New("transport: session closed")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, []byte(body))
}

// Close tears the session down; idempotent.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.conn.Close()
}

// AtomicBool avoids pulling in package bridge just for this one flag.
type AtomicBool struct {
	mu  sync.Mutex
	val bool
}

func (a *AtomicBool) Get() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.val
}

func (a *AtomicBool) Swap(v bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	old := a.val
	a.val = v
	return old
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Transport owns the listening socket and the set of live sessions.
type Transport struct {
	cb  Callbacks
	log Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	sessions map[uint64]*Session
	nextID   uint64
	status   Status

	onStatus func(Status)
}

type Logger interface {
	Debugf(f string, v ...interface{})
	Infof(f string, v ...interface{})
	Errorf(f string, v ...interface{})
}

func New(log Logger, cb Callbacks, onStatus func(Status)) *Transport {
	return &Transport{
		log:      log,
		cb:       cb,
		sessions: make(map[uint64]*Session),
		onStatus: onStatus,
	}
}

// SetCallbacks rewires the session hooks. Used when the coordinator that
// owns the callbacks (package bridge) needs a live *Transport handle
// before it can build them, e.g. to register the transport for restart.
func (t *Transport) SetCallbacks(cb Callbacks) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cb = cb
}

// Start binds to ip:port and begins serving EndpointPath. An empty ip
// binds all interfaces; callers generally pass the address C2 selected.
func (t *Transport) Start(ip string, port int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.setStatusLocked(Status{State: "starting"})

	addr := fmt.Sprintf("%s:%d", ip, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		t.setStatusLocked(Status{State: "failed", Err: err})
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc(EndpointPath, t.handleUpgrade)
	srv := &http.Server{Handler: mux}

	t.listener = ln
	t.server = srv

	boundPort := ln.Addr().(*net.TCPAddr).Port
	t.setStatusLocked(Status{State: "started", Port: boundPort, IP: ip})

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.log.Errorf("transport: serve failed: %v", err)
		}
	}()

	return nil
}

// Stop closes all sessions, drops the listener, and cancels the server.
// It is the "stop-and-start" restart path's stop half (§4.4).
func (t *Transport) Stop() {
	t.mu.Lock()
	sessions := make([]*Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		sessions = append(sessions, s)
	}
	t.sessions = make(map[uint64]*Session)
	srv := t.server
	t.server = nil
	t.listener = nil
	t.setStatusLocked(Status{State: "stopped"})
	t.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func (t *Transport) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Transport) setStatusLocked(s Status) {
	t.status = s
	if t.onStatus != nil {
		go t.onStatus(s)
	}
}

func (t *Transport) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.log.Errorf("transport: upgrade failed: %v", err)
		return
	}

	t.mu.Lock()
	t.nextID++
	id := t.nextID
	session := &Session{id: id, conn: conn, remote: conn.RemoteAddr()}
	t.sessions[id] = session
	t.mu.Unlock()

	if t.cb.OnConnect != nil {
		t.cb.OnConnect(session)
	}

	defer func() {
		t.mu.Lock()
		delete(t.sessions, id)
		t.mu.Unlock()
		session.Close()
		if t.cb.OnDisconnect != nil {
			t.cb.OnDisconnect(session)
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		switch msgType {
		case websocket.TextMessage:
			if t.cb.OnText != nil {
				t.cb.OnText(session, string(data))
			}
		case websocket.BinaryMessage:
			// Binary frames are read and discarded: no decode, no
			// dispatch, and no callback, so they do not refresh the
			// session's last-activity time.
		}
	}
}

/* SPDX-License-Identifier: MIT */

// Package bridge is the coordination core of the desktop pairing daemon:
// C4 (session manager), C5 (message router), and C6 (protocol handlers).
// It owns all shared mutable state and is the single place handlers may
// mutate it, mirroring golang.zx2c4.com/wireguard/device.Device's role as
// the one coordinator a WireGuard process builds around.
package bridge

import (
	"sync"

	"github.com/pairbridge/bridged/transport"
)

// LocalInfo describes this desktop, echoed back in the macInfo reply
// (§4.6.1).
type LocalInfo struct {
	Name         string
	Category     string
	Model        string
	Subscription bool
}

// DefaultPort is the logical port the daemon listens on for the
// WebSocket-like endpoint (§6.1 leaves the exact default to the
// implementer; this repo pins 6996, the value the original shows in most
// of its documents).
const DefaultPort = 6996

// DefaultChunkSize is used when an inbound fileTransferInit omits
// chunkSize (§4.7.1).
const DefaultChunkSize = 64 * 1024

// transportControl is the narrow surface Bridge needs from the transport
// layer: start/stop the listening socket. Kept as an interface (rather
// than *transport.Transport directly) so Bridge's unit tests can swap in
// a fake without standing up a real TCP listener.
type transportControl interface {
	Start(ip string, port int) error
	Stop()
}

// Bridge is the coordination-thread-owned state described by §5: "one
// coordination thread owns shared state and runs all C6 handlers except
// file I/O."
type Bridge struct {
	Log    Logger
	Crypto *CryptoBox
	SM     *SessionManager
	Router *Router

	Local LocalInfo

	Inventory     *AppInventory
	Notifications *NotificationRegistry
	Calls         *CallRegistry

	UI          UICollaborator
	Pasteboard  PasteboardCollaborator
	OSNotify    NotificationCollaborator
	Media       MediaCollaborator
	Injector    InjectorCollaborator
	Transfers   TransferCoordinator

	// OnPaired fires after every handshake that ElectPrimary accepts,
	// including a re-handshake from the current primary session, letting callers outside this package (quick-connect's last-paired
	// registry) record the event without bridge importing them.
	OnPaired func(device PeerDevice)

	transport transportControl
	bindIP    string
	bindPort  int

	restartMu sync.Mutex
}

// Options bundles the collaborators and local identity a caller supplies
// at construction; nil collaborators are replaced with no-ops so Bridge
// can run headless.
type Options struct {
	Local         LocalInfo
	IconsDir      string
	UI            UICollaborator
	Pasteboard    PasteboardCollaborator
	OSNotify      NotificationCollaborator
	Media         MediaCollaborator
	Injector      InjectorCollaborator
}

// New builds a Bridge with its router and session manager wired, but
// does not yet attach a transport (see Attach) or start listening (see
// Up).
func New(log Logger, crypto *CryptoBox, opts Options) *Bridge {
	b := &Bridge{
		Log:           log,
		Crypto:        crypto,
		Local:         opts.Local,
		Inventory:     NewAppInventory(opts.IconsDir),
		Notifications: NewNotificationRegistry(),
		Calls:         NewCallRegistry(),
		UI:            opts.UI,
		Pasteboard:    opts.Pasteboard,
		OSNotify:      opts.OSNotify,
		Media:         opts.Media,
		Injector:      opts.Injector,
	}
	if b.UI == nil {
		b.UI = noopUI{}
	}
	if b.Pasteboard == nil {
		b.Pasteboard = noopPasteboard{}
	}
	if b.OSNotify == nil {
		b.OSNotify = noopNotifications{}
	}
	if b.Media == nil {
		b.Media = noopMedia{}
	}
	if b.Injector == nil {
		b.Injector = noopInjector{}
	}
	b.Transfers = noopTransfers{}

	b.SM = NewSessionManager(log, b.onPrimaryChanged, b.onPrimaryLost)
	b.Router = NewRouter(log, crypto, b.SM)
	b.wireHandlers()
	return b
}

// Attach records the transport Bridge should stop/start on restart and
// returns the three callbacks the transport layer drives sessions with
// (§4.3's on-connect/on-text/on-disconnect).
func (b *Bridge) Attach(t *transport.Transport, ip string, port int) transport.Callbacks {
	b.transport = t
	b.bindIP = ip
	b.bindPort = port
	return transport.Callbacks{
		OnConnect:    b.handleConnect,
		OnText:       b.handleText,
		OnDisconnect: b.handleDisconnect,
	}
}

// SetTransferCoordinator wires the file-transfer subsystem in after
// construction, since it in turn needs a way to send frames through this
// Bridge's Router — avoiding an import cycle between bridge and
// filetransfer.
func (b *Bridge) SetTransferCoordinator(t TransferCoordinator) {
	b.Transfers = t
}

func (b *Bridge) handleConnect(ts *transport.Session) {
	b.SM.Adopt(ts.ID(), ts)
}

func (b *Bridge) handleText(ts *transport.Session, body string) {
	s := b.SM.Get(ts.ID())
	if s == nil {
		return
	}
	b.Router.HandleFrame(s, body)
}

func (b *Bridge) handleDisconnect(ts *transport.Session) {
	b.SM.Forget(ts.ID())
}

func (b *Bridge) onPrimaryChanged() {
	// Called when the session count transitions 0<->1. No auxiliary
	// monitor (local volume polling etc.) is wired into Bridge, so this
	// hook does nothing and no collaborator is notified.
}

// onPrimaryLost restarts the transport to a clean listening state, per
// §4.4 "When the primary session disconnects, the transport is
// restarted."
func (b *Bridge) onPrimaryLost() {
	b.RestartTransport()
}

// RestartTransport stops and starts the transport, clearing derived
// local state (device record, peer status) per §4.4.
func (b *Bridge) RestartTransport() {
	b.restartMu.Lock()
	defer b.restartMu.Unlock()

	if b.transport == nil {
		return
	}
	b.transport.Stop()
	if err := b.transport.Start(b.bindIP, b.bindPort); err != nil {
		b.Log.Errorf("bridge: transport restart failed: %v", err)
	}
}

// Rebind updates the bind address (driven by the network probe, C2,
// observing a new candidate IP) and restarts the transport on it.
func (b *Bridge) Rebind(ip string) {
	b.restartMu.Lock()
	b.bindIP = ip
	b.restartMu.Unlock()
	b.RestartTransport()
}

// StopTransport is the operator's explicit "stop" command (§6.5): the
// listening socket is torn down and stays down until StartTransport is
// called.
func (b *Bridge) StopTransport() {
	b.restartMu.Lock()
	defer b.restartMu.Unlock()
	if b.transport != nil {
		b.transport.Stop()
	}
}

// StartTransport is the operator's explicit "start" command (§6.5),
// paired with StopTransport.
func (b *Bridge) StartTransport() error {
	b.restartMu.Lock()
	defer b.restartMu.Unlock()
	if b.transport == nil {
		return nil
	}
	return b.transport.Start(b.bindIP, b.bindPort)
}

// BindPort returns the port the transport is configured to listen on.
func (b *Bridge) BindPort() int { return b.bindPort }

// Close tears down the router's background goroutines and the session
// manager's heartbeat loop.
func (b *Bridge) Close() {
	b.Router.Close()
	b.SM.Close()
}

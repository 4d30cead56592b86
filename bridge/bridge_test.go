/* SPDX-License-Identifier: MIT */

package bridge

import (
	"net"
	"sync"
)

// fakeLogger discards everything; tests that care about log content read
// directly off the state they're exercising instead.
type fakeLogger struct{}

func (fakeLogger) Debug(v ...interface{})            {}
func (fakeLogger) Debugf(f string, v ...interface{}) {}
func (fakeLogger) Info(v ...interface{})             {}
func (fakeLogger) Infof(f string, v ...interface{})  {}
func (fakeLogger) Error(v ...interface{})            {}
func (fakeLogger) Errorf(f string, v ...interface{}) {}

// fakeConn is a minimal outbound for exercising SessionManager/Router
// without a real transport.Session.
type fakeConn struct {
	mu      sync.Mutex
	sent    []string
	closed  bool
	sendErr error
	remote  net.Addr
}

func newFakeConn(remoteIP string) *fakeConn {
	return &fakeConn{remote: &net.TCPAddr{IP: net.ParseIP(remoteIP), Port: 1234}}
}

func (c *fakeConn) SendText(body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, body)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) RemoteAddr() net.Addr { return c.remote }

func (c *fakeConn) lastSent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

func (c *fakeConn) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fakeUI/fakePasteboard/fakeNotify record the last call they saw, enough
// for handler tests to assert a collaborator was actually driven.
type fakeUI struct {
	mu        sync.Mutex
	wallpaper string
	status    PeerStatus
}

func (f *fakeUI) PresentWallpaper(blob string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallpaper = blob
}
func (f *fakeUI) PublishStatus(s PeerStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}
func (f *fakeUI) PublishTransferProgress(id string, bytesDone, total int64) {}
func (f *fakeUI) PublishTransferFailed(id string, reason string)           {}
func (f *fakeUI) PublishPairingCodeStale()                                  {}

type fakePasteboard struct {
	mu   sync.Mutex
	text string
}

func (f *fakePasteboard) SetText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
}

func (f *fakePasteboard) get() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

type fakeNotify struct {
	mu        sync.Mutex
	posted    []Notification
	dismissed []string
}

func (f *fakeNotify) Post(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, n)
}
func (f *fakeNotify) Dismiss(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissed = append(f.dismissed, id)
}
func (f *fakeNotify) PostTransferComplete(name, path string) {}

func newTestBridge() (*Bridge, *fakeUI, *fakePasteboard, *fakeNotify) {
	ui := &fakeUI{}
	pb := &fakePasteboard{}
	notify := &fakeNotify{}
	b := New(fakeLogger{}, NewCryptoBox(fakeLogger{}), Options{
		Local:      LocalInfo{Name: "desk", Category: "desktop", Model: "linux"},
		UI:         ui,
		Pasteboard: pb,
		OSNotify:   notify,
	})
	return b, ui, pb, notify
}

/* SPDX-License-Identifier: MIT */

package control

import (
	"bufio"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"
)

type fakeLogger struct{}

func (fakeLogger) Debugf(string, ...interface{}) {}
func (fakeLogger) Infof(string, ...interface{})  {}
func (fakeLogger) Errorf(string, ...interface{}) {}

type fakeOps struct {
	iface          string
	regenerated    bool
	started        bool
	stopped        bool
	cancelledID    string
	failInterface  bool
}

func (f *fakeOps) SetInterface(name string) error {
	if f.failInterface {
		return fmt.Errorf("boom")
	}
	f.iface = name
	return nil
}
func (f *fakeOps) RegenerateKey() error      { f.regenerated = true; return nil }
func (f *fakeOps) StopTransport() error      { f.stopped = true; return nil }
func (f *fakeOps) StartTransport() error     { f.started = true; return nil }
func (f *fakeOps) CancelTransfer(id string) error {
	f.cancelledID = id
	return nil
}
func (f *fakeOps) Status() []string {
	return []string{"iface=" + f.iface, "state=started"}
}

func dial(t *testing.T, path string) net.Conn {
	t.Helper()
	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestControlGetAndSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control.sock")
	ops := &fakeOps{iface: "auto"}
	srv, err := Listen(fakeLogger{}, ops, path)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()
	go srv.Serve()

	time.Sleep(10 * time.Millisecond)

	conn := dial(t, path)
	fmt.Fprintf(conn, "set=1\niface=eth0\n\n")
	reader := bufio.NewReader(conn)
	line, _ := reader.ReadString('\n')
	if line != "errno=0\n" {
		t.Fatalf("expected errno=0, got %q", line)
	}
	conn.Close()

	if ops.iface != "eth0" {
		t.Fatalf("expected iface set to eth0, got %q", ops.iface)
	}

	conn2 := dial(t, path)
	fmt.Fprintf(conn2, "get=1\n")
	reader2 := bufio.NewReader(conn2)
	first, _ := reader2.ReadString('\n')
	if first != "iface=eth0\n" {
		t.Fatalf("expected iface=eth0 line, got %q", first)
	}
	conn2.Close()
}

func TestControlSetInvalidKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control.sock")
	ops := &fakeOps{iface: "auto"}
	srv, err := Listen(fakeLogger{}, ops, path)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()
	go srv.Serve()
	time.Sleep(10 * time.Millisecond)

	conn := dial(t, path)
	fmt.Fprintf(conn, "set=1\nbogus=1\n\n")
	reader := bufio.NewReader(conn)
	line, _ := reader.ReadString('\n')
	if line != fmt.Sprintf("errno=%d\n", ErrInvalid) {
		t.Fatalf("expected errno=%d, got %q", ErrInvalid, line)
	}
}

func TestControlCancelTransfer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control.sock")
	ops := &fakeOps{iface: "auto"}
	srv, err := Listen(fakeLogger{}, ops, path)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()
	go srv.Serve()
	time.Sleep(10 * time.Millisecond)

	conn := dial(t, path)
	fmt.Fprintf(conn, "set=1\ncancel_transfer=abc-123\n\n")
	reader := bufio.NewReader(conn)
	line, _ := reader.ReadString('\n')
	if line != "errno=0\n" {
		t.Fatalf("expected errno=0, got %q", line)
	}
	if ops.cancelledID != "abc-123" {
		t.Fatalf("expected cancel of abc-123, got %q", ops.cancelledID)
	}
}

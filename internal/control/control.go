/* SPDX-License-Identifier: MIT */

// Package control implements the operator control socket (§6.5): a
// local Unix domain socket carrying the same line-oriented get/set
// protocol as the teacher's own UAPI, repurposed here for interface
// selection, key regeneration, transport stop/start, and cancelling an
// in-flight file transfer by ID — instead of WireGuard peer
// configuration.
package control

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
)

// Error codes mirror the teacher's errno-style status line, though the
// meanings are this daemon's own.
const (
	ErrNone     = 0
	ErrIO       = 5  // EIO
	ErrProtocol = 71 // EPROTO
	ErrInvalid  = 22 // EINVAL
)

type OpError struct{ Code int64 }

func (e *OpError) Error() string { return fmt.Sprintf("control: error %d", e.Code) }

// Ops is the narrow surface the daemon exposes to the control socket;
// main.go implements it by closing over the running Bridge/Transport/
// Prober/filetransfer.Manager.
type Ops interface {
	SetInterface(name string) error
	RegenerateKey() error
	StopTransport() error
	StartTransport() error
	CancelTransfer(id string) error
	// Status returns the current "key=value" lines for a get operation.
	Status() []string
}

type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Server accepts control connections on a single Unix socket, one
// operation per connection, exactly like the teacher's UAPI listener.
type Server struct {
	log Logger
	ops Ops
	ln  net.Listener

	closeOnce sync.Once
}

// Listen opens the control socket at path and returns a Server ready to
// Serve.
func Listen(log Logger, ops Ops, path string) (*Server, error) {
	ln, err := openSocket(path)
	if err != nil {
		return nil, err
	}
	return &Server{log: log, ops: ops, ln: ln}, nil
}

// Serve accepts connections until the listener is closed. Intended to
// run in its own goroutine.
func (s *Server) Serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return // listener closed
		}
		go s.handle(conn)
	}
}

func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.ln.Close() })
	return err
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)
	defer writer.Flush()

	op, err := reader.ReadString('\n')
	if err != nil {
		return
	}

	var status *OpError
	switch op {
	case "get=1\n":
		err = s.doGet(writer)
	case "set=1\n":
		err = s.doSet(reader)
	default:
		s.log.Errorf("control: invalid operation %q", strings.TrimSpace(op))
		return
	}

	if err != nil && !errors.As(err, &status) {
		s.log.Errorf("control: unexpected error: %v", err)
		status = &OpError{Code: 1}
	}

	if status != nil {
		fmt.Fprintf(writer, "errno=%d\n\n", status.Code)
	} else {
		fmt.Fprintf(writer, "errno=0\n\n")
	}
}

func (s *Server) doGet(w *bufio.Writer) error {
	for _, line := range s.ops.Status() {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return &OpError{Code: ErrIO}
		}
	}
	return nil
}

func (s *Server) doSet(r *bufio.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			return nil
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return &OpError{Code: ErrProtocol}
		}
		key, value := parts[0], parts[1]

		var err error
		switch key {
		case "iface":
			err = s.ops.SetInterface(value)
		case "regenerate_key":
			if value != "true" {
				return &OpError{Code: ErrInvalid}
			}
			err = s.ops.RegenerateKey()
		case "stop":
			if value != "true" {
				return &OpError{Code: ErrInvalid}
			}
			err = s.ops.StopTransport()
		case "start":
			if value != "true" {
				return &OpError{Code: ErrInvalid}
			}
			err = s.ops.StartTransport()
		case "cancel_transfer":
			err = s.ops.CancelTransfer(value)
		default:
			s.log.Errorf("control: unknown key %q", key)
			return &OpError{Code: ErrInvalid}
		}
		if err != nil {
			s.log.Errorf("control: %s=%s failed: %v", key, value, err)
			return &OpError{Code: ErrInvalid}
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return &OpError{Code: ErrIO}
	}
	return nil
}

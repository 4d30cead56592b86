//go:build linux || darwin || freebsd || openbsd

/* SPDX-License-Identifier: MIT */

package control

import (
	"errors"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// openSocket binds the control socket at path, removing a stale socket
// left behind by an unclean shutdown. Grounded on the teacher's
// ipc.UAPIOpen, which does the same dance for its own command socket.
func openSocket(path string) (net.Listener, error) {
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, err
	}

	oldUmask := unix.Umask(0077)
	defer unix.Umask(oldUmask)

	ln, err := net.ListenUnix("unix", addr)
	if err == nil {
		return ln, nil
	}

	if _, dialErr := net.Dial("unix", path); dialErr == nil {
		return nil, errors.New("control: socket already in use")
	}
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		return nil, rmErr
	}
	return net.ListenUnix("unix", addr)
}

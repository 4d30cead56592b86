/* SPDX-License-Identifier: MIT
 *
 * Copyright (C) 2017-2021 WireGuard LLC. All Rights Reserved.
 */

// Package rwcancel lets a blocking read on one file descriptor be
// interrupted from another goroutine, by way of a self-pipe the poll call
// also watches.
package rwcancel

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type RWCancel struct {
	fd                     int
	closingReader, closingWriter *os2File
}

// os2File avoids importing "os" just for the self-pipe descriptors; the
// pipe fds are plain ints closed with unix.Close.
type os2File struct {
	fd int
}

func newPipe() (r, w *os2File, err error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, nil, err
	}
	return &os2File{fds[0]}, &os2File{fds[1]}, nil
}

func (f *os2File) Close() error { return unix.Close(f.fd) }

func NewRWCancel(fd int) (*RWCancel, error) {
	r, w, err := newPipe()
	if err != nil {
		return nil, err
	}
	return &RWCancel{fd: fd, closingReader: r, closingWriter: w}, nil
}

// ReadyRead blocks until fd is readable, the cancel pipe is written to, or
// an error occurs. Returns true if fd is the one that became ready.
func (r *RWCancel) ReadyRead() (bool, error) {
	fds := []unix.PollFd{
		{Fd: int32(r.fd), Events: unix.POLLIN},
		{Fd: int32(r.closingReader.fd), Events: unix.POLLIN},
	}
	for {
		_, err := poll(fds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("rwcancel: poll: %w", err)
		}
		break
	}
	if fds[1].Revents&unix.POLLIN != 0 {
		return false, nil
	}
	return fds[0].Revents&unix.POLLIN != 0, nil
}

// Cancel unblocks any goroutine parked in ReadyRead.
func (r *RWCancel) Cancel() error {
	var buf [1]byte
	_, err := unix.Write(r.closingWriter.fd, buf[:])
	return err
}

func (r *RWCancel) Close() error {
	r.closingReader.Close()
	r.closingWriter.Close()
	return nil
}

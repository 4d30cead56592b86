/* SPDX-License-Identifier: MIT */

package netprobe

import (
	"golang.org/x/sys/unix"

	"github.com/pairbridge/bridged/rwcancel"
)

// linuxListener watches the kernel's route netlink socket for address and
// link changes, the same socket golang.zx2c4.com/wireguard/device uses
// (via conn's routeListener) to learn about interface changes without
// waiting for the next poll tick; rwcancel.RWCancel supplies the
// self-pipe that lets Stop interrupt the blocking read.
type linuxListener struct {
	fd     int
	cancel *rwcancel.RWCancel
}

func (p *Prober) startPlatformListener() {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW, unix.NETLINK_ROUTE)
	if err != nil {
		p.log.Errorf("netprobe: netlink socket: %v", err)
		return
	}
	addr := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: unix.RTMGRP_IPV4_IFADDR | unix.RTMGRP_LINK,
	}
	if err := unix.Bind(fd, addr); err != nil {
		p.log.Errorf("netprobe: netlink bind: %v", err)
		unix.Close(fd)
		return
	}
	cancel, err := rwcancel.NewRWCancel(fd)
	if err != nil {
		p.log.Errorf("netprobe: rwcancel: %v", err)
		unix.Close(fd)
		return
	}

	l := &linuxListener{fd: fd, cancel: cancel}
	p.listener = l

	p.wg.Add(1)
	go p.linuxListenLoop(l)
}

func (p *Prober) stopPlatformListener() {
	l, ok := p.listener.(*linuxListener)
	if !ok || l == nil {
		return
	}
	l.cancel.Cancel()
}

func (p *Prober) linuxListenLoop(l *linuxListener) {
	defer p.wg.Done()
	defer l.cancel.Close()
	defer unix.Close(l.fd)

	buf := make([]byte, 4096)
	for {
		ready, err := l.cancel.ReadyRead()
		if err != nil {
			p.log.Errorf("netprobe: netlink poll: %v", err)
			return
		}
		if !ready {
			return // cancelled
		}
		if _, _, err := unix.Recvfrom(l.fd, buf, 0); err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return
		}
		select {
		case p.wakeScan <- struct{}{}:
		default:
		}
	}
}

/* SPDX-License-Identifier: MIT */

package quickconnect

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/ipv4"

	"github.com/pairbridge/bridged/bridge"
	"github.com/pairbridge/bridged/netprobe"
)

// wakeToken is the opaque payload of the UDP wake datagram; its content
// is not interpreted by either side beyond "a peer wants to reconnect".
const wakeToken = "bridged-wake"

const httpWakeTimeout = 2 * time.Second

// Waker sends the best-effort unicast that asks a previously-paired peer
// to open a fresh WebSocket connection (§4.8, §6.2).
type Waker struct {
	log      Logger
	registry *Registry
}

func NewWaker(log Logger, registry *Registry) *Waker {
	return &Waker{log: log, registry: registry}
}

// TryWake looks up the peer recorded for localIP's network key and, if
// the peer's recorded address is still on the same /24, fires the wake
// unicast. Mismatched /24s are skipped and logged (§8 scenario 6).
func (w *Waker) TryWake(localIP string) {
	peer, ok := w.shouldWake(localIP)
	if !ok {
		return
	}
	w.log.Infof("quickconnect: waking %s (%s:%d)", peer.Name, peer.IPAddress, peer.Port)
	w.sendUDPWake(peer.IPAddress, peer.Port)
	go w.sendHTTPWake(peer.IPAddress, peer.Port)
}

// shouldWake applies the §4.8 decision in isolation from socket I/O: a
// recorded peer must exist for localIP's network key, and its recorded
// address must still fall on that same /24.
func (w *Waker) shouldWake(localIP string) (bridge.PeerDevice, bool) {
	key := netprobe.NetworkKey(localIP)
	if key == "" {
		return bridge.PeerDevice{}, false
	}
	peer, ok := w.registry.Lookup(key)
	if !ok {
		w.log.Debugf("quickconnect: no last-paired entry for network %s", key)
		return bridge.PeerDevice{}, false
	}
	if netprobe.NetworkKey(peer.IPAddress) != key {
		w.log.Infof("quickconnect: skipping wake, %s is on a different network than %s", peer.IPAddress, localIP)
		return bridge.PeerDevice{}, false
	}
	return peer, true
}

// sendUDPWake fires a single best-effort datagram. It uses an
// ipv4.PacketConn, the same control wrapper the teacher's transport uses
// for its own sockets, purely so the TTL can be set explicitly; delivery
// is not guaranteed and no retry is attempted.
func (w *Waker) sendUDPWake(ip string, port int) {
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		w.log.Errorf("quickconnect: udp wake: %v", err)
		return
	}
	defer conn.Close()

	pc := ipv4.NewPacketConn(conn)
	_ = pc.SetTTL(32)

	dst := &net.UDPAddr{IP: net.ParseIP(ip), Port: port}
	if _, err := conn.WriteToUDP([]byte(wakeToken), dst); err != nil {
		w.log.Errorf("quickconnect: udp wake to %s: %v", dst, err)
	}
}

// sendHTTPWake is a secondary, equally best-effort nudge for peers that
// poll an HTTP endpoint rather than listening for UDP.
func (w *Waker) sendHTTPWake(ip string, port int) {
	client := &http.Client{Timeout: httpWakeTimeout}
	url := fmt.Sprintf("http://%s/%s", net.JoinHostPort(ip, fmt.Sprint(port)), wakeToken)
	resp, err := client.Get(url)
	if err != nil {
		w.log.Debugf("quickconnect: http wake to %s: %v", url, err)
		return
	}
	resp.Body.Close()
}

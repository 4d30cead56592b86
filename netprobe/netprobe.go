/* SPDX-License-Identifier: MIT */

// Package netprobe implements the network probe (C2): it tracks which
// IPv4 address the daemon should bind its transport to, polls for
// interface changes every 10 s, and debounces a restart by 5 s once a
// change is observed (§4.2).
package netprobe

import (
	"net"
	"strings"
	"sync"
	"time"
)

const (
	ScanInterval    = 10 * time.Second
	RestartDebounce = 5 * time.Second
)

// Logger is the narrow logging surface this package needs.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Prober tracks the current bind address for a named interface (or
// "auto") and calls onChange, debounced, whenever it changes.
type Prober struct {
	log   Logger
	iface string // interface name, or "auto"

	onChange func(ip string)

	mu        sync.Mutex
	currentIP string
	debounce  *time.Timer

	stop     chan struct{}
	wakeScan chan struct{}
	wg       sync.WaitGroup

	listener interface{} // platform-specific change listener, if any
}

func New(log Logger, iface string, onChange func(ip string)) *Prober {
	return &Prober{
		log:      log,
		iface:    iface,
		onChange: onChange,
		stop:     make(chan struct{}),
		wakeScan: make(chan struct{}, 1),
	}
}

// Start performs an initial scan and launches the periodic poll loop plus
// (on Linux) the netlink change listener.
func (p *Prober) Start() error {
	p.scanOnce()

	p.wg.Add(1)
	go p.pollLoop()

	p.startPlatformListener()
	return nil
}

func (p *Prober) Stop() {
	close(p.stop)
	p.stopPlatformListener()
	p.wg.Wait()
}

// CurrentIP returns the last-observed bind address, or "" if none.
func (p *Prober) CurrentIP() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentIP
}

func (p *Prober) pollLoop() {
	defer p.wg.Done()
	ticker := time.NewTicker(ScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.scanOnce()
		case <-p.wakeScan:
			p.scanOnce()
		}
	}
}

// scanOnce picks the current candidate address and, if it changed,
// arms/resets the restart debounce timer.
func (p *Prober) scanOnce() {
	ip, err := p.selectAddress()
	if err != nil {
		p.log.Errorf("netprobe: scan failed: %v", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if ip == p.currentIP {
		return
	}

	prev := p.currentIP
	p.log.Infof("netprobe: candidate address changed %q -> %q, debouncing restart", prev, ip)

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(RestartDebounce, func() {
		p.mu.Lock()
		p.currentIP = ip
		cb := p.onChange
		p.mu.Unlock()
		if cb != nil {
			cb(ip)
		}
	})
}

// selectAddress implements the "auto" vs named-interface policy: prefer a
// private-range IPv4 address, skipping loopback and link-local.
func (p *Prober) selectAddress() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	var fallback string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if p.iface != "auto" && !strings.EqualFold(iface.Name, p.iface) {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipnet.IP.To4()
			if ip4 == nil || ip4.IsLinkLocalUnicast() {
				continue
			}
			if isPrivate(ip4) {
				return ip4.String(), nil
			}
			if fallback == "" {
				fallback = ip4.String()
			}
		}
	}
	return fallback, nil
}

func isPrivate(ip net.IP) bool {
	for _, cidr := range []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"} {
		_, block, _ := net.ParseCIDR(cidr)
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// NetworkKey is the first three octets of an IPv4 address (the glossary's
// "network key"): two hosts share one iff they are on the same /24.
func NetworkKey(ip string) string {
	addr := net.ParseIP(ip)
	if addr == nil {
		return ""
	}
	ip4 := addr.To4()
	if ip4 == nil {
		return ""
	}
	return net.IPv4(ip4[0], ip4[1], ip4[2], 0).String()
}

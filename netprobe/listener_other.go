//go:build !linux

/* SPDX-License-Identifier: MIT */

package netprobe

// No netlink equivalent is wired up for non-Linux targets; the 10 s poll
// loop in pollLoop is the only change-detection mechanism there.
func (p *Prober) startPlatformListener() {}

func (p *Prober) stopPlatformListener() {}

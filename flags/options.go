/* SPDX-License-Identifier: MIT */

package flags

import "github.com/pairbridge/bridged/bridge"

// Options are the daemon's command-line flags (§2.2, §6.5).
type Options struct {
	Port       int
	Iface      string // network interface name, or "auto"
	DataDir    string
	Foreground bool
	ResetKey   bool
	ShowVersion bool
}

func NewOptions() *Options {
	return &Options{
		Port:  bridge.DefaultPort,
		Iface: "auto",
	}
}

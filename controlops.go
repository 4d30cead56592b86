/* SPDX-License-Identifier: MIT */

package main

import (
	"fmt"

	"github.com/pairbridge/bridged/bridge"
	"github.com/pairbridge/bridged/cfg"
	"github.com/pairbridge/bridged/filetransfer"
	"github.com/pairbridge/bridged/netprobe"
)

// controlOps implements control.Ops by closing over the daemon's live
// collaborators, the same way the teacher's UAPI handlers close over a
// live *Device.
type controlOps struct {
	b         *bridge.Bridge
	prober    *netprobe.Prober
	transfers *filetransfer.Manager
	dataDir   string

	iface string
}

func (c *controlOps) SetInterface(name string) error {
	c.prober.Stop()
	c.iface = name
	c.prober = netprobe.New(c.b.Log, name, func(ip string) { c.b.Rebind(ip) })
	return c.prober.Start()
}

func (c *controlOps) RegenerateKey() error {
	key, err := bridge.ResetKey(cfg.KeyPath(c.dataDir))
	if err != nil {
		return err
	}
	return c.b.Crypto.SetKey(key)
}

func (c *controlOps) StopTransport() error {
	c.b.StopTransport()
	return nil
}

func (c *controlOps) StartTransport() error {
	return c.b.StartTransport()
}

func (c *controlOps) CancelTransfer(id string) error {
	return c.transfers.Cancel(id)
}

func (c *controlOps) Status() []string {
	ip := c.prober.CurrentIP()
	return []string{
		fmt.Sprintf("iface=%s", c.iface),
		fmt.Sprintf("bind_ip=%s", ip),
		fmt.Sprintf("bind_port=%d", c.b.BindPort()),
	}
}

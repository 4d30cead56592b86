/* SPDX-License-Identifier: MIT */

// Package flags parses the daemon's command line the way the teacher's
// own flags package does: github.com/spf13/pflag, one Options struct,
// one Parse entry point.
package flags

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

func Parse(opts *Options) error {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.IntVar(&opts.Port, "port", opts.Port, "TCP port to listen on")
	pflag.StringVar(&opts.Iface, "iface", opts.Iface, "Network interface to bind (name, or \"auto\")")
	pflag.StringVar(&opts.DataDir, "data-dir", opts.DataDir, "Override the persisted state directory")
	pflag.BoolVar(&opts.Foreground, "foreground", false, "Remain in the foreground instead of daemonizing")
	pflag.BoolVar(&opts.ResetKey, "reset-key", false, "Regenerate the symmetric pairing key and exit")
	pflag.BoolVarP(&opts.ShowVersion, "version", "v", false, "Print the version number and exit")

	pflag.Parse()
	return nil
}

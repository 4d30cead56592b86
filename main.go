/* SPDX-License-Identifier: MIT */

package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/pairbridge/bridged/bridge"
	"github.com/pairbridge/bridged/cfg"
	"github.com/pairbridge/bridged/filetransfer"
	"github.com/pairbridge/bridged/flags"
	"github.com/pairbridge/bridged/internal/control"
	"github.com/pairbridge/bridged/netprobe"
	"github.com/pairbridge/bridged/quickconnect"
	"github.com/pairbridge/bridged/transport"
)

const (
	Version = "0.1.0"

	ExitSetupSuccess = 0
	ExitSetupFailed  = 1

	envForeground = "BRIDGED_PROCESS_FOREGROUND"
)

func main() {
	opts := flags.NewOptions()
	if err := flags.Parse(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitSetupFailed)
	}

	if opts.ShowVersion {
		fmt.Printf("bridged v%s (%s-%s)\n", Version, runtime.GOOS, runtime.GOARCH)
		return
	}

	dataDir, err := cfg.DataDir(opts.DataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bridged: resolving data directory:", err)
		os.Exit(ExitSetupFailed)
	}
	if err := cfg.Ensure(dataDir); err != nil {
		fmt.Fprintln(os.Stderr, "bridged: preparing data directory:", err)
		os.Exit(ExitSetupFailed)
	}

	logger := bridge.NewLogger(bridge.LogLevelInfo, "(bridged) ")

	if opts.ResetKey {
		if _, err := bridge.ResetKey(cfg.KeyPath(dataDir)); err != nil {
			logger.Error("resetting key:", err)
			os.Exit(ExitSetupFailed)
		}
		logger.Info("pairing key regenerated; peers must re-pair")
		return
	}

	foreground := opts.Foreground || os.Getenv(envForeground) == "1"
	if !foreground {
		daemonize(opts, dataDir)
		return
	}

	run(opts, dataDir, logger)
}

// daemonize re-execs the process in the background, the same
// os.StartProcess dance the teacher uses to detach from the controlling
// terminal, and exits the foreground invocation immediately.
func daemonize(opts *flags.Options, dataDir string) {
	env := append(os.Environ(), envForeground+"=1")

	devNull, _ := os.Open(os.DevNull)
	attr := &os.ProcAttr{
		Files: []*os.File{devNull, devNull, devNull},
		Dir:   ".",
		Env:   env,
	}

	path, err := os.Executable()
	if err != nil {
		fmt.Fprintln(os.Stderr, "bridged: resolving executable:", err)
		os.Exit(ExitSetupFailed)
	}

	process, err := os.StartProcess(path, os.Args, attr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bridged: daemonizing:", err)
		os.Exit(ExitSetupFailed)
	}
	process.Release()
}

func run(opts *flags.Options, dataDir string, logger *bridge.BasicLogger) {
	logger.Info("starting bridged", Version)

	key, err := bridge.LoadOrCreateKey(cfg.KeyPath(dataDir))
	if err != nil {
		logger.Error("loading pairing key:", err)
		os.Exit(ExitSetupFailed)
	}
	crypto := bridge.NewCryptoBox(logger)
	if err := crypto.SetKey(key); err != nil {
		logger.Error("keying crypto box:", err)
		os.Exit(ExitSetupFailed)
	}

	downloadsDir, err := cfg.DownloadsDir()
	if err != nil {
		logger.Error("resolving downloads directory:", err)
		os.Exit(ExitSetupFailed)
	}

	b := bridge.New(logger, crypto, bridge.Options{
		Local: bridge.LocalInfo{
			Name:     hostname(),
			Category: "desktop",
			Model:    runtime.GOOS,
		},
		IconsDir: cfg.IconsDir(dataDir),
	})

	ft := filetransfer.New(logger, b.Router, b.UI, b.OSNotify, downloadsDir, cfg.TempDir(dataDir))
	b.SetTransferCoordinator(ft)

	registry, err := quickconnect.Load(logger, cfg.LastPairedPath(dataDir))
	if err != nil {
		logger.Error("loading last-paired registry:", err)
		os.Exit(ExitSetupFailed)
	}
	waker := quickconnect.NewWaker(logger, registry)

	tr := transport.New(logger, transport.Callbacks{}, func(status transport.Status) {
		logger.Infof("transport status: %+v", status)
	})
	tr.SetCallbacks(b.Attach(tr, "", opts.Port))

	firstBind := make(chan struct{}, 1)
	prober := netprobe.New(logger, opts.Iface, func(ip string) {
		b.Rebind(ip)
		select {
		case firstBind <- struct{}{}:
			waker.TryWake(ip)
		default:
		}
	})
	if err := prober.Start(); err != nil {
		logger.Error("starting network probe:", err)
		os.Exit(ExitSetupFailed)
	}

	b.OnPaired = func(device bridge.PeerDevice) {
		if err := registry.Record(prober.CurrentIP(), device); err != nil {
			logger.Errorf("recording last-paired entry: %v", err)
		}
	}

	ctl := &controlOps{b: b, prober: prober, transfers: ft, dataDir: dataDir}
	ctlSrv, err := control.Listen(logger, ctl, cfg.ControlSocketPath(dataDir))
	if err != nil {
		logger.Error("starting control socket:", err)
		os.Exit(ExitSetupFailed)
	}
	go ctlSrv.Serve()

	logger.Info("bridged ready on port", opts.Port)

	term := make(chan os.Signal, 1)
	signal.Notify(term, syscall.SIGTERM)
	signal.Notify(term, os.Interrupt)
	<-term

	logger.Info("shutting down")
	ctlSrv.Close()
	prober.Stop()
	tr.Stop()
	b.Close()
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "desktop"
	}
	return name
}

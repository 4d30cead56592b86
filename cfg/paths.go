/* SPDX-License-Identifier: MIT */

// Package cfg resolves the daemon's persisted state directory layout
// (§6.4): the symmetric key, the last-paired registry, and the app-icon
// cache, all rooted at one data directory the way the teacher roots
// everything at a single interface/daemon name.
package cfg

import (
	"os"
	"path/filepath"
)

const dirName = "bridged"

// DataDir resolves the root data directory. An explicit override (from
// --data-dir) wins; otherwise it follows XDG_DATA_HOME, falling back to
// ~/.local/share.
func DataDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", dirName), nil
}

// KeyPath is the 32-byte symmetric key file (§6.4).
func KeyPath(dataDir string) string {
	return filepath.Join(dataDir, "key")
}

// LastPairedPath is the quick-connect registry (§4.8, §6.4).
func LastPairedPath(dataDir string) string {
	return filepath.Join(dataDir, "last-paired.json")
}

// IconsDir is the app-icon cache directory (§4.6.4, §6.4).
func IconsDir(dataDir string) string {
	return filepath.Join(dataDir, "icons")
}

// TempDir holds in-progress receiver temp files (§4.7.2).
func TempDir(dataDir string) string {
	return filepath.Join(dataDir, "tmp")
}

// ControlSocketPath is the operator control socket (§6.5).
func ControlSocketPath(dataDir string) string {
	return filepath.Join(dataDir, "control.sock")
}

// DownloadsDir is where completed inbound file transfers land (§4.7.2).
// It is deliberately outside dataDir, following the host's normal
// downloads location rather than the daemon's private state.
func DownloadsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Downloads"), nil
}

// Ensure creates the data directory and its icon/temp subdirectories.
func Ensure(dataDir string) error {
	for _, dir := range []string{dataDir, IconsDir(dataDir), TempDir(dataDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

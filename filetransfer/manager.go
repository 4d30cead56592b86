/* SPDX-License-Identifier: MIT */

package filetransfer

import "sync"

// Manager owns every in-flight transfer, inbound and outbound, and
// implements bridge.TransferCoordinator. Its single mutex plays the role
// §5 assigns to "the inbound file table [and] the outbound
// acknowledgment map" within the wider single-lock model; per-transfer
// work (chunk I/O, hashing) runs unlocked once a *inboundTransfer or
// *outboundTransfer has been looked up.
type Manager struct {
	log Logger
	tx  Outbound
	ui  UIPublisher
	notify NotifyPoster

	downloadsDir string
	tempDir      string

	mu       sync.Mutex
	inbound  map[string]*inboundTransfer
	outbound map[string]*outboundTransfer
}

// UIPublisher and NotifyPoster are the narrow slices of
// bridge.UICollaborator / bridge.NotificationCollaborator this package
// touches; kept separate from the bridge package's full interfaces so a
// caller can wire a fake with fewer methods in tests.
type UIPublisher interface {
	PublishTransferProgress(id string, bytesDone, total int64)
	PublishTransferFailed(id string, reason string)
}

type NotifyPoster interface {
	PostTransferComplete(name string, path string)
}

// New builds a Manager. downloadsDir is where completed inbound transfers
// land; tempDir holds in-progress receiver temp files.
func New(log Logger, tx Outbound, ui UIPublisher, notify NotifyPoster, downloadsDir, tempDir string) *Manager {
	return &Manager{
		log:          log,
		tx:           tx,
		ui:           ui,
		notify:       notify,
		downloadsDir: downloadsDir,
		tempDir:      tempDir,
		inbound:      make(map[string]*inboundTransfer),
		outbound:     make(map[string]*outboundTransfer),
	}
}

// Cancel aborts a transfer in either direction; idempotent (§4.7.4).
func (m *Manager) Cancel(id string) error {
	if m.cancelInbound(id) {
		return nil
	}
	m.cancelOutbound(id)
	return nil
}

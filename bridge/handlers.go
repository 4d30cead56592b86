/* SPDX-License-Identifier: MIT */

package bridge

// wireHandlers registers every inbound Kind (§6.3) with its handler. Called
// once from New before the Bridge is attached to a transport.
func (b *Bridge) wireHandlers() {
	b.Router.Register(KindDevice, b.handleDevice)

	b.Router.Register(KindStatus, b.handleStatus)
	b.Router.Register(KindMediaControlResponse, b.handleMediaControlResponse)
	b.Router.Register(KindMacMediaControl, b.handleMacMediaControl)

	b.Router.Register(KindNotification, b.handleNotification)
	b.Router.Register(KindNotificationUpdate, b.handleNotificationUpdate)
	b.Router.Register(KindNotificationActionResponse, b.handleNotificationActionResponse)
	b.Router.Register(KindDismissalResponse, b.handleDismissalResponse)

	b.Router.Register(KindAppIcons, b.handleAppIcons)

	b.Router.Register(KindClipboardUpdate, b.handleClipboardUpdate)

	b.Router.Register(KindRemoteControl, b.handleRemoteControl)

	b.Router.Register(KindBrowseData, b.handleBrowseData)

	b.Router.Register(KindCallEvent, b.handleCallEvent)
	b.Router.Register(KindCallControlResponse, b.handleCallControlResponse)

	b.Router.Register(KindFileTransferInit, b.handleFileTransferInit)
	b.Router.Register(KindFileChunk, b.handleFileChunk)
	b.Router.Register(KindFileChunkAck, b.handleFileChunkAck)
	b.Router.Register(KindFileTransferComplete, b.handleFileTransferComplete)
	b.Router.Register(KindTransferVerified, b.handleTransferVerified)
	b.Router.Register(KindFileTransferCancel, b.handleFileTransferCancel)
}

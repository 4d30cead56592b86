/* SPDX-License-Identifier: MIT */

package bridge

// Collaborators are the external systems §1 explicitly puts out of
// scope: the GUI, the OS pasteboard, the OS notification center, the
// local media/volume stack, and the native input injector. This package
// only needs narrow contracts against them; production wiring supplies
// real implementations, tests supply fakes.
type UICollaborator interface {
	PresentWallpaper(blob string)
	PublishStatus(PeerStatus)
	PublishTransferProgress(id string, bytesDone, total int64)
	PublishTransferFailed(id string, reason string)
	PublishPairingCodeStale()
}

type PasteboardCollaborator interface {
	SetText(text string)
}

type NotificationCollaborator interface {
	Post(n Notification)
	Dismiss(id string)
	PostTransferComplete(name string, path string)
}

type MediaCollaborator interface {
	Control(action string) (ok bool)
	LocalVolume() int
	SetLocalVolume(level int)
}

type InjectorCollaborator interface {
	KeyPress(code string, modifiers []string)
	TypeText(text string)
	MouseMove(dx, dy int)
	MouseClick(button string, down bool)
	MouseScroll(dx, dy int)
}

// noop implementations let Bridge run headless (e.g. in tests, or on a
// machine with no GUI collaborator wired up yet) without nil checks
// scattered through every handler.
type noopUI struct{}

func (noopUI) PresentWallpaper(string)                    {}
func (noopUI) PublishStatus(PeerStatus)                   {}
func (noopUI) PublishTransferProgress(string, int64, int64) {}
func (noopUI) PublishTransferFailed(string, string)       {}
func (noopUI) PublishPairingCodeStale()                   {}

type noopPasteboard struct{}

func (noopPasteboard) SetText(string) {}

type noopNotifications struct{}

func (noopNotifications) Post(Notification)                {}
func (noopNotifications) Dismiss(string)                    {}
func (noopNotifications) PostTransferComplete(string, string) {}

type noopMedia struct{}

func (noopMedia) Control(string) bool     { return false }
func (noopMedia) LocalVolume() int        { return 0 }
func (noopMedia) SetLocalVolume(int)      {}

type noopInjector struct{}

func (noopInjector) KeyPress(string, []string)  {}
func (noopInjector) TypeText(string)            {}
func (noopInjector) MouseMove(int, int)         {}
func (noopInjector) MouseClick(string, bool)    {}
func (noopInjector) MouseScroll(int, int)       {}

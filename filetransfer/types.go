/* SPDX-License-Identifier: MIT */

package filetransfer

import (
	"time"

	"github.com/pairbridge/bridged/bridge"
)

// Constants from §4.7 / §5.
const (
	MaxChunkSize    = 64 * 1024
	Window          = 8
	AckWait         = 2 * time.Second
	MaxAttempts     = 3
	SendLoopTick    = 20 * time.Millisecond
)

// State is the lifecycle of one transfer record, inbound or outbound.
type State string

const (
	StateActive    State = "active"
	StateVerifying State = "verifying"
	StateDone      State = "done"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Logger is the narrow logging surface this package needs.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Outbound is the narrow surface this package needs to emit frames; a
// *bridge.Router satisfies it directly.
type Outbound interface {
	Send(kind bridge.Kind, payload interface{}) error
}

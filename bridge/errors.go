/* SPDX-License-Identifier: MIT */

package bridge

import "errors"

// Error taxonomy (§7). None of these are surfaced to the operator
// directly — the router logs them; no counters are kept. Only transfer-
// and pairing-attached failures reach the UI collaborator.
var (
	ErrNoPrimarySession = errors.New("bridge: no primary session")
	ErrNotPrimary       = errors.New("bridge: session is not primary")
	ErrUnknownKind      = errors.New("bridge: unknown message kind")
	ErrMissingFields    = errors.New("bridge: handshake missing required fields")
	ErrBadPayload       = errors.New("bridge: payload does not match kind schema")
)

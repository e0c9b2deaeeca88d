// Package transport carries protocol messages between process mailboxes.
//
// WebSocket is the network substrate: every process serves one upgrade route
// and dials the endpoints it sends to, keeping one outbound connection per
// peer so messages to the same peer stay in order. Hub is an in-process
// substrate with the same contract, used by tests and single-binary demos.
package transport

import "errors"

var (
	ErrBackpressure = errors.New("backpressure")
	ErrUnreachable  = errors.New("endpoint unreachable")
	ErrClosed       = errors.New("transport closed")
)

const DefaultMailboxSize = 256

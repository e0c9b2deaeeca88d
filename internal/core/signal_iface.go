package core

import (
	"context"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
)

// Sender delivers one message to an endpoint without waiting for any answer.
type Sender interface {
	Send(ctx context.Context, to domain.Endpoint, msg protocol.Message) error
}

// Transport is a process mailbox: an address others can send to, an inbox
// of everything they sent, and a way to send to them.
// Send stamps msg.From with Addr.
// Owned by the process wiring; the owner must Close() it.
type Transport interface {
	Sender
	Addr() domain.Endpoint
	Inbox() <-chan protocol.Message
	Close() error
}

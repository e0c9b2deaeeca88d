package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Hub connects in-memory mailboxes by endpoint name.
type Hub struct {
	mu    sync.RWMutex
	boxes map[domain.Endpoint]*Memory
	lost  map[domain.Endpoint]bool
}

func NewHub() *Hub {
	return &Hub{
		boxes: make(map[domain.Endpoint]*Memory),
		lost:  make(map[domain.Endpoint]bool),
	}
}

// Open registers a mailbox at addr.
func (h *Hub) Open(addr domain.Endpoint, size int) (*Memory, error) {
	if size <= 0 {
		size = DefaultMailboxSize
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.boxes[addr]; ok {
		return nil, fmt.Errorf("mailbox %s already open", addr)
	}
	m := &Memory{hub: h, addr: addr, inbox: make(chan protocol.Message, size)}
	h.boxes[addr] = m
	log.Debug().Str("module", "transport.memory").Str("addr", string(addr)).Msg("mailbox opened")
	return m, nil
}

// Silence makes every message sent to addr vanish without an error,
// the way a hung peer looks to its callers.
func (h *Hub) Silence(addr domain.Endpoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lost[addr] = true
}

func (h *Hub) Restore(addr domain.Endpoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.lost, addr)
}

func (h *Hub) route(to domain.Endpoint, msg protocol.Message) error {
	h.mu.RLock()
	box, ok := h.boxes[to]
	lost := h.lost[to]
	h.mu.RUnlock()
	if lost {
		return nil
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnreachable, to)
	}
	return box.deliver(msg)
}

func (h *Hub) drop(addr domain.Endpoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.boxes, addr)
}

// Memory is one mailbox on a Hub.
type Memory struct {
	hub   *Hub
	addr  domain.Endpoint
	inbox chan protocol.Message

	mu     sync.RWMutex
	closed bool
}

func (m *Memory) Addr() domain.Endpoint { return m.addr }

func (m *Memory) Inbox() <-chan protocol.Message { return m.inbox }

func (m *Memory) Send(ctx context.Context, to domain.Endpoint, msg protocol.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	msg.From = m.addr
	return m.hub.route(to, msg)
}

func (m *Memory) deliver(msg protocol.Message) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("%w: %s", ErrUnreachable, m.addr)
	}
	select {
	case m.inbox <- msg:
		return nil
	default:
		return ErrBackpressure
	}
}

func (m *Memory) Close() error {
	m.hub.drop(m.addr)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.inbox)
	log.Debug().Str("module", "transport.memory").Str("addr", string(m.addr)).Msg("mailbox closed")
	return nil
}

package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/dkeye/Huddle/internal/transport"
	"github.com/stretchr/testify/require"
)

const coordinatorAddr domain.Endpoint = "mem://coordinator"

type harness struct {
	t     *testing.T
	hub   *transport.Hub
	coord *Coordinator
}

func newHarness(t *testing.T, opts CoordinatorOptions) *harness {
	t.Helper()
	hub := transport.NewHub()
	tr, err := hub.Open(coordinatorAddr, 0)
	require.NoError(t, err)

	coord := NewCoordinator(tr, opts)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = coord.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = tr.Close()
	})
	return &harness{t: t, hub: hub, coord: coord}
}

func (h *harness) snapshot() domain.Directory {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d, err := h.coord.Snapshot(ctx)
	require.NoError(h.t, err)
	return d
}

func (h *harness) group(name string) (domain.GroupView, bool) {
	for _, g := range h.snapshot().Groups {
		if g.Name == name {
			return g, true
		}
	}
	return domain.GroupView{}, false
}

func (h *harness) member(group, name string) (domain.Member, bool) {
	g, ok := h.group(group)
	if !ok {
		return domain.Member{}, false
	}
	for _, m := range g.Members {
		if m.Name == name {
			return m, true
		}
	}
	return domain.Member{}, false
}

// peer is a bare mailbox talking protocol to the coordinator.
type peer struct {
	t     *testing.T
	name  string
	tr    *transport.Memory
	stash []protocol.Message
}

func (h *harness) peer(name string) *peer {
	h.t.Helper()
	tr, err := h.hub.Open(domain.Endpoint("mem://"+name), 0)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = tr.Close() })
	return &peer{t: h.t, name: name, tr: tr}
}

func (p *peer) addr() domain.Endpoint { return p.tr.Addr() }

func (p *peer) receive() protocol.Message {
	p.t.Helper()
	select {
	case m, ok := <-p.tr.Inbox():
		require.True(p.t, ok, "inbox closed")
		return m
	case <-time.After(2 * time.Second):
		p.t.Fatalf("%s: timeout waiting for message", p.name)
		return protocol.Message{}
	}
}

// ask sends msg to the coordinator and returns the reply carrying its ID.
// Anything else arriving meanwhile is kept for next.
func (p *peer) ask(msg protocol.Message) protocol.Message {
	p.t.Helper()
	require.NoError(p.t, p.tr.Send(context.Background(), coordinatorAddr, msg))
	for {
		m := p.receive()
		if m.Kind.IsReply() && m.ID == msg.ID {
			return m
		}
		p.stash = append(p.stash, m)
	}
}

func (p *peer) tell(msg protocol.Message) {
	p.t.Helper()
	require.NoError(p.t, p.tr.Send(context.Background(), coordinatorAddr, msg))
}

// next returns the next message that is not a reply to an ask.
func (p *peer) next() protocol.Message {
	p.t.Helper()
	if len(p.stash) > 0 {
		m := p.stash[0]
		p.stash = p.stash[1:]
		return m
	}
	return p.receive()
}

func (p *peer) quiet() {
	p.t.Helper()
	require.Empty(p.t, p.stash)
	select {
	case m := <-p.tr.Inbox():
		p.t.Fatalf("%s: unexpected %s %q", p.name, m.Kind, m.Text)
	case <-time.After(30 * time.Millisecond):
	}
}

func (p *peer) connect() {
	p.t.Helper()
	requireSuccess(p.t, p.ask(protocol.Connect(p.name)))
}

func requireSuccess(t *testing.T, m protocol.Message) {
	t.Helper()
	require.Equal(t, protocol.KindSuccess, m.Kind, "reason=%s detail=%s", m.Reason, m.Detail)
}

func requireFailure(t *testing.T, m protocol.Message, reason protocol.Reason) {
	t.Helper()
	require.Equal(t, protocol.KindFailure, m.Kind)
	require.Equal(t, reason, m.Reason)
}

// manualTimers replaces time.AfterFunc so tests decide when a mute expires.
type manualTimers struct {
	mu     sync.Mutex
	fns    []func()
	timers []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	stopped atomic.Bool
}

func (t *manualTimer) Stop() bool { return !t.stopped.Swap(true) }

func (m *manualTimers) AfterFunc(d time.Duration, f func()) core.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{d: d}
	m.fns = append(m.fns, f)
	m.timers = append(m.timers, t)
	return t
}

// fire runs the i-th callback even if the timer was stopped, like a timer
// that had already fired when Stop was called.
func (m *manualTimers) fire(i int) {
	m.mu.Lock()
	f := m.fns[i]
	m.mu.Unlock()
	f()
}

func (m *manualTimers) armed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *manualTimers) timer(i int) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timers[i]
}

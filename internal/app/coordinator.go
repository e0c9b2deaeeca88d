// Package app holds the two state machines of the network: the Coordinator,
// which owns the online table and every group, and the Session, which drives
// requests to it on behalf of one console user.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var ErrCoordinatorStopped = errors.New("coordinator stopped")

type CoordinatorOptions struct {
	// SendTimeout bounds every outbound send made from the loop.
	SendTimeout time.Duration
	Policy      Policy
	Now         func() time.Time
	AfterFunc   func(d time.Duration, f func()) core.Timer
}

func (o CoordinatorOptions) withDefaults() CoordinatorOptions {
	if o.SendTimeout <= 0 {
		o.SendTimeout = 2 * time.Second
	}
	if o.Policy == nil {
		o.Policy = KeepPolicy{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.AfterFunc == nil {
		o.AfterFunc = func(d time.Duration, f func()) core.Timer { return time.AfterFunc(d, f) }
	}
	return o
}

type muteExpiry struct {
	group  string
	member string
	entry  *core.MuteEntry
}

type snapshotQuery struct {
	reply chan domain.Directory
}

// Coordinator is the directory and authorization engine.
// All of its state is owned by the goroutine running Run; timers and
// snapshot readers reach it through channels drained by the same loop.
type Coordinator struct {
	tr       core.Transport
	opts     CoordinatorOptions
	registry *Registry
	groups   *GroupManager

	expired chan muteExpiry
	queries chan snapshotQuery
	done    chan struct{}
}

func NewCoordinator(tr core.Transport, opts CoordinatorOptions) *Coordinator {
	return &Coordinator{
		tr:       tr,
		opts:     opts.withDefaults(),
		registry: NewRegistry(),
		groups:   NewGroupManager(),
		expired:  make(chan muteExpiry),
		queries:  make(chan snapshotQuery),
		done:     make(chan struct{}),
	}
}

func (c *Coordinator) Addr() domain.Endpoint { return c.tr.Addr() }

// Run processes one event at a time until ctx ends or the inbox closes.
func (c *Coordinator) Run(ctx context.Context) error {
	defer func() {
		close(c.done)
		c.groups.StopAll()
		log.Info().Str("module", "app.coordinator").Msg("coordinator stopped")
	}()
	log.Info().Str("module", "app.coordinator").Str("addr", string(c.tr.Addr())).Msg("coordinator started")

	inbox := c.tr.Inbox()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-inbox:
			if !ok {
				return nil
			}
			c.handle(ctx, msg)
		case ev := <-c.expired:
			c.onMuteExpired(ctx, ev)
		case q := <-c.queries:
			q.reply <- c.snapshot()
		}
	}
}

// Snapshot implements core.DirectoryReader by asking the loop for a copy of its tables.
func (c *Coordinator) Snapshot(ctx context.Context) (domain.Directory, error) {
	q := snapshotQuery{reply: make(chan domain.Directory, 1)}
	select {
	case c.queries <- q:
	case <-c.done:
		return domain.Directory{}, ErrCoordinatorStopped
	case <-ctx.Done():
		return domain.Directory{}, ctx.Err()
	}
	select {
	case d := <-q.reply:
		return d, nil
	case <-ctx.Done():
		return domain.Directory{}, ctx.Err()
	}
}

func (c *Coordinator) snapshot() domain.Directory {
	return domain.Directory{
		Online: c.registry.Names(),
		Groups: lo.Map(c.groups.Sorted(), func(g *core.Group, _ int) domain.GroupView { return g.View() }),
	}
}

func (c *Coordinator) handle(ctx context.Context, msg protocol.Message) {
	log.Debug().Str("module", "app.coordinator").Str("kind", string(msg.Kind)).Str("id", msg.ID).Str("from", string(msg.From)).Msg("request")

	switch msg.Kind {
	case protocol.KindConnect:
		c.onConnect(ctx, msg)
	case protocol.KindDisconnect:
		c.onDisconnect(ctx, msg)
	case protocol.KindResolve:
		c.onResolve(ctx, msg)
	case protocol.KindCreateGroup:
		c.onCreateGroup(ctx, msg)
	case protocol.KindLeaveGroup:
		c.onLeaveGroup(ctx, msg)
	case protocol.KindGroupData:
		c.onGroupData(ctx, msg)
	case protocol.KindInviteCheck:
		c.onInviteCheck(ctx, msg)
	case protocol.KindCommitInvite:
		c.onCommitInvite(ctx, msg)
	case protocol.KindRemoveMember:
		c.onRemoveMember(ctx, msg)
	case protocol.KindSetCoAdmin:
		c.onSetCoAdmin(ctx, msg)
	case protocol.KindMute:
		c.onMute(ctx, msg)
	case protocol.KindUnmute:
		c.onUnmute(ctx, msg)
	default:
		log.Warn().Str("module", "app.coordinator").Str("kind", string(msg.Kind)).Str("from", string(msg.From)).Msg("unknown request dropped")
	}
}

func (c *Coordinator) send(ctx context.Context, to domain.Endpoint, msg protocol.Message) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.SendTimeout)
	defer cancel()
	if err := c.tr.Send(ctx, to, msg); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("to", string(to)).Str("kind", string(msg.Kind)).Msg("send failed")
		return err
	}
	return nil
}

func (c *Coordinator) reply(ctx context.Context, req, resp protocol.Message) {
	if req.From == "" {
		log.Warn().Str("module", "app.coordinator").Str("kind", string(req.Kind)).Msg("request without return address")
		return
	}
	if resp.Kind == protocol.KindFailure && resp.Reason.Forbidden() {
		log.Info().Str("module", "app.coordinator").Str("kind", string(req.Kind)).Str("group", req.Group).Str("source", req.Source).Str("reason", string(resp.Reason)).Msg("request refused")
	}
	_ = c.send(ctx, req.From, resp)
}

// broadcast fans msg out and lets the policy deal with members that could not be reached.
func (c *Coordinator) broadcast(ctx context.Context, g *core.Group, msg protocol.Message) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.SendTimeout)
	defer cancel()
	res := g.Broadcast(ctx, c.tr, msg)
	for _, name := range res.Dropped {
		if c.opts.Policy.OnUndeliverable(g, name) != KickMember {
			continue
		}
		ep, _ := g.EndpointOf(name)
		g.Remove(name)
		log.Warn().Str("module", "app.coordinator").Str("group", g.Name()).Str("member", name).Str("endpoint", string(ep)).Msg("unreachable member kicked")
	}
}

func (c *Coordinator) onConnect(ctx context.Context, msg protocol.Message) {
	id, err := domain.NewIdentity(msg.Source, msg.From)
	if err != nil {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonInvalidName, err.Error()))
		return
	}
	if !c.registry.Register(id) {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonNameInUse, id.Name))
		return
	}
	c.reply(ctx, msg, msg.Success(""))
}

// onDisconnect always succeeds. Groups the user administers are closed,
// every other membership ends with a leave notice.
func (c *Coordinator) onDisconnect(ctx context.Context, msg protocol.Message) {
	name := msg.Source
	for _, g := range c.groups.Containing(name) {
		c.leave(ctx, g, name)
	}
	c.registry.Unregister(name)
	c.reply(ctx, msg, msg.Success(""))
}

func (c *Coordinator) onResolve(ctx context.Context, msg protocol.Message) {
	ep, ok := c.registry.Lookup(msg.Target)
	if !ok {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonTargetNotFound, msg.Target))
		return
	}
	c.reply(ctx, msg, msg.Success(ep))
}

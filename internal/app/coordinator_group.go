package app

import (
	"context"
	"fmt"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
)

func closeNotice(admin, group string) protocol.Message {
	return protocol.Text(admin, group, fmt.Sprintf("%s admin has closed %s!", group, group))
}

func leaveNotice(name, group string) protocol.Message {
	return protocol.Text(name, group, fmt.Sprintf("%s has left %s!", name, group))
}

func (c *Coordinator) onCreateGroup(ctx context.Context, msg protocol.Message) {
	if err := domain.ValidateName(msg.Group); err != nil {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonInvalidName, err.Error()))
		return
	}
	if _, ok := c.groups.Get(msg.Group); ok {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonGroupExists, msg.Group))
		return
	}
	ep, ok := c.registry.Lookup(msg.Source)
	if !ok {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonNotConnected, msg.Source))
		return
	}
	c.groups.Create(msg.Group, msg.Source, ep)
	log.Info().Str("module", "app.coordinator").Str("group", msg.Group).Str("admin", msg.Source).Msg("group created")
	c.reply(ctx, msg, msg.Success(""))
}

func (c *Coordinator) onLeaveGroup(ctx context.Context, msg protocol.Message) {
	g, ok := c.groups.Get(msg.Group)
	if !ok {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonGroupNotFound, msg.Group))
		return
	}
	if !g.IsMember(msg.Source) {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonNotMember, msg.Source))
		return
	}
	c.leave(ctx, g, msg.Source)
	c.reply(ctx, msg, msg.Success(""))
}

// leave ends name's membership. An admin leaving closes the group.
func (c *Coordinator) leave(ctx context.Context, g *core.Group, name string) {
	if g.Admin() == name {
		c.broadcast(ctx, g, closeNotice(name, g.Name()))
		c.groups.Stop(g.Name())
		log.Info().Str("module", "app.coordinator").Str("group", g.Name()).Str("admin", name).Msg("group closed")
		return
	}
	g.Remove(name)
	c.broadcast(ctx, g, leaveNotice(name, g.Name()))
	log.Info().Str("module", "app.coordinator").Str("group", g.Name()).Str("member", name).Int("remaining", g.Len()).Msg("member left")
}

func (c *Coordinator) onGroupData(ctx context.Context, msg protocol.Message) {
	g, ok := c.groups.Get(msg.Group)
	if !ok {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonGroupNotFound, msg.Group))
		return
	}
	if !g.IsMember(msg.Source) {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonNotMember, msg.Source))
		return
	}
	if e, muted := g.MuteEntry(msg.Source); muted {
		c.reply(ctx, msg, msg.MutedFor(e.Remaining(c.opts.Now()).Milliseconds()))
		return
	}
	c.broadcast(ctx, g, msg.AsDelivery())
	c.reply(ctx, msg, msg.Success(""))
}

func (c *Coordinator) onInviteCheck(ctx context.Context, msg protocol.Message) {
	g, ok := c.groups.Get(msg.Group)
	if !ok {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonGroupNotFound, msg.Group))
		return
	}
	ep, ok := c.registry.Lookup(msg.Target)
	if !ok {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonTargetNotFound, msg.Target))
		return
	}
	if !privileged(g, msg.Source) {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonNotPrivileged, msg.Source))
		return
	}
	if g.IsMember(msg.Target) {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonAlreadyMember, msg.Target))
		return
	}
	c.reply(ctx, msg, msg.Success(ep))
}

// onCommitInvite has no reply path; failed preconditions are only logged.
func (c *Coordinator) onCommitInvite(_ context.Context, msg protocol.Message) {
	g, ok := c.groups.Get(msg.Group)
	if !ok {
		log.Debug().Str("module", "app.coordinator").Str("group", msg.Group).Msg("commit for missing group ignored")
		return
	}
	ep, ok := c.registry.Lookup(msg.Target)
	if !ok {
		log.Debug().Str("module", "app.coordinator").Str("target", msg.Target).Msg("commit for offline target ignored")
		return
	}
	if g.IsMember(msg.Target) {
		return
	}
	g.Add(msg.Target, ep, domain.RoleUser)
	log.Info().Str("module", "app.coordinator").Str("group", msg.Group).Str("member", msg.Target).Str("by", msg.Source).Msg("member joined")
}

func privileged(g *core.Group, name string) bool {
	role, ok := g.BaseRole(name)
	return ok && role.Privileged()
}

// authorize runs the shared checks of the member management requests in order:
// group exists, target online, source privileged, target member, target not admin.
// On failure the returned reply is ready to send.
func (c *Coordinator) authorize(msg protocol.Message) (*core.Group, domain.Endpoint, *protocol.Message) {
	fail := func(r protocol.Reason, detail string) (*core.Group, domain.Endpoint, *protocol.Message) {
		f := msg.Failure(r, detail)
		return nil, "", &f
	}
	g, ok := c.groups.Get(msg.Group)
	if !ok {
		return fail(protocol.ReasonGroupNotFound, msg.Group)
	}
	ep, ok := c.registry.Lookup(msg.Target)
	if !ok {
		return fail(protocol.ReasonTargetNotFound, msg.Target)
	}
	if !privileged(g, msg.Source) {
		return fail(protocol.ReasonNotPrivileged, msg.Source)
	}
	if !g.IsMember(msg.Target) {
		return fail(protocol.ReasonNotMember, msg.Target)
	}
	if g.Admin() == msg.Target {
		return fail(protocol.ReasonTargetIsAdmin, msg.Target)
	}
	return g, ep, nil
}

func (c *Coordinator) onRemoveMember(ctx context.Context, msg protocol.Message) {
	g, ep, failure := c.authorize(msg)
	if failure != nil {
		c.reply(ctx, msg, *failure)
		return
	}
	g.Remove(msg.Target)
	log.Info().Str("module", "app.coordinator").Str("group", msg.Group).Str("member", msg.Target).Str("by", msg.Source).Msg("member removed")
	c.reply(ctx, msg, msg.Success(ep))
}

func (c *Coordinator) onSetCoAdmin(ctx context.Context, msg protocol.Message) {
	g, ep, failure := c.authorize(msg)
	if failure != nil {
		c.reply(ctx, msg, *failure)
		return
	}
	role := domain.RoleUser
	if msg.Promote {
		role = domain.RoleCoAdmin
	}
	g.SetRole(msg.Target, role)
	log.Info().Str("module", "app.coordinator").Str("group", msg.Group).Str("member", msg.Target).Stringer("role", role).Msg("role changed")
	c.reply(ctx, msg, msg.Success(ep))
}

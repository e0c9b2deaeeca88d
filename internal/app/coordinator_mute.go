package app

import (
	"context"
	"strconv"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
)

const unmutedNotice = "You have been unmuted! Muting time is up!"

func (c *Coordinator) onMute(ctx context.Context, msg protocol.Message) {
	g, ep, failure := c.authorize(msg)
	if failure != nil {
		c.reply(ctx, msg, *failure)
		return
	}
	if msg.DurationMs <= 0 || msg.DurationMs > protocol.MaxMuteMs {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonBadDuration, strconv.FormatInt(msg.DurationMs, 10)))
		return
	}
	d := time.Duration(msg.DurationMs) * time.Millisecond
	entry := core.NewMuteEntry(msg.Source, d, c.opts.Now())
	entry.Arm(c.opts.AfterFunc(d, func() { c.enqueueExpiry(g.Name(), msg.Target, entry) }))
	g.Mute(msg.Target, entry)
	log.Info().Str("module", "app.coordinator").Str("group", msg.Group).Str("member", msg.Target).Dur("for", d).Msg("member muted")
	c.reply(ctx, msg, msg.Success(ep))
}

func (c *Coordinator) onUnmute(ctx context.Context, msg protocol.Message) {
	g, ep, failure := c.authorize(msg)
	if failure != nil {
		c.reply(ctx, msg, *failure)
		return
	}
	if !g.Unmute(msg.Target) {
		c.reply(ctx, msg, msg.Failure(protocol.ReasonNotMuted, msg.Target))
		return
	}
	log.Info().Str("module", "app.coordinator").Str("group", msg.Group).Str("member", msg.Target).Msg("member unmuted")
	c.reply(ctx, msg, msg.Success(ep))
}

// enqueueExpiry runs on the timer goroutine and only hands the event to the loop.
func (c *Coordinator) enqueueExpiry(group, member string, entry *core.MuteEntry) {
	select {
	case c.expired <- muteExpiry{group: group, member: member, entry: entry}:
	case <-c.done:
	}
}

// onMuteExpired ignores events whose entry was already replaced or cleared.
func (c *Coordinator) onMuteExpired(ctx context.Context, ev muteExpiry) {
	g, ok := c.groups.Get(ev.group)
	if !ok {
		return
	}
	current, ok := g.MuteEntry(ev.member)
	if !ok || current != ev.entry {
		log.Debug().Str("module", "app.coordinator").Str("group", ev.group).Str("member", ev.member).Msg("stale mute timer ignored")
		return
	}
	g.Unmute(ev.member)
	log.Info().Str("module", "app.coordinator").Str("group", ev.group).Str("member", ev.member).Msg("mute expired")

	if ep, online := c.registry.Lookup(ev.member); online {
		_ = c.send(ctx, ep, protocol.Text(ev.entry.By, ev.group, unmutedNotice))
	}
}

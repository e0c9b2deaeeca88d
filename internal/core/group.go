package core

import (
	"context"
	"slices"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Timer is the cancellation handle of a scheduled auto-unmute.
// *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// MuteEntry is the pending auto-unmute of one member.
// Its pointer identity tells a fired timer whether it is still current.
type MuteEntry struct {
	By       string
	Duration time.Duration
	Until    time.Time
	timer    Timer
}

func NewMuteEntry(by string, d time.Duration, now time.Time) *MuteEntry {
	return &MuteEntry{By: by, Duration: d, Until: now.Add(d)}
}

// Arm attaches the timer that will expire the entry.
func (e *MuteEntry) Arm(t Timer) { e.timer = t }

// Remaining is never negative.
func (e *MuteEntry) Remaining(now time.Time) time.Duration {
	return max(e.Until.Sub(now), 0)
}

func (e *MuteEntry) cancel() {
	if e.timer != nil {
		e.timer.Stop()
	}
}

type member struct {
	role     domain.Role
	endpoint domain.Endpoint
}

// Group is pure state plus mechanical broadcast for one named group.
// It holds no lock: the coordinator is its only owner and never calls it concurrently.
// The broadcast list is the members' endpoints; muted is a subset of members.
type Group struct {
	name    string
	admin   string
	members map[string]*member
	muted   map[string]*MuteEntry
}

func NewGroup(name, admin string, endpoint domain.Endpoint) *Group {
	g := &Group{
		name:    name,
		members: make(map[string]*member),
		muted:   make(map[string]*MuteEntry),
	}
	g.Add(admin, endpoint, domain.RoleAdmin)
	return g
}

func (g *Group) Name() string  { return g.name }
func (g *Group) Admin() string { return g.admin }
func (g *Group) Len() int      { return len(g.members) }

// Add registers name at endpoint. Endpoints are not unique: two names on one
// endpoint each get their own copy of a broadcast.
func (g *Group) Add(name string, endpoint domain.Endpoint, role domain.Role) {
	g.members[name] = &member{role: role, endpoint: endpoint}
	if role == domain.RoleAdmin {
		g.admin = name
	}
	log.Debug().Str("module", "core.group").Str("group", g.name).Str("member", name).Stringer("role", role).Msg("member added")
}

// Remove drops the member, its endpoint and any pending auto-unmute.
func (g *Group) Remove(name string) {
	if _, ok := g.members[name]; !ok {
		return
	}
	g.Unmute(name)
	delete(g.members, name)
	if g.admin == name {
		g.admin = ""
	}
	log.Debug().Str("module", "core.group").Str("group", g.name).Str("member", name).Msg("member removed")
}

func (g *Group) IsMember(name string) bool {
	_, ok := g.members[name]
	return ok
}

// SetRole changes the base role. A mute overlay, if any, stays in place.
func (g *Group) SetRole(name string, role domain.Role) {
	if m, ok := g.members[name]; ok {
		m.role = role
	}
}

// RoleOf reports MUTE while the member is muted, the base role otherwise.
func (g *Group) RoleOf(name string) (domain.Role, bool) {
	m, ok := g.members[name]
	if !ok {
		return 0, false
	}
	if _, muted := g.muted[name]; muted {
		return domain.RoleMute, true
	}
	return m.role, true
}

// BaseRole ignores the mute overlay; privilege checks use it.
func (g *Group) BaseRole(name string) (domain.Role, bool) {
	m, ok := g.members[name]
	if !ok {
		return 0, false
	}
	return m.role, true
}

func (g *Group) IsMuted(name string) bool {
	_, ok := g.muted[name]
	return ok
}

func (g *Group) MuteEntry(name string) (*MuteEntry, bool) {
	e, ok := g.muted[name]
	return e, ok
}

// Mute installs entry for a member, cancelling the timer of the entry it replaces.
func (g *Group) Mute(name string, entry *MuteEntry) bool {
	if !g.IsMember(name) {
		entry.cancel()
		return false
	}
	if old, ok := g.muted[name]; ok {
		old.cancel()
	}
	g.muted[name] = entry
	return true
}

// Unmute clears the overlay and cancels the pending timer.
// It reports whether the member was muted.
func (g *Group) Unmute(name string) bool {
	e, ok := g.muted[name]
	if !ok {
		return false
	}
	e.cancel()
	delete(g.muted, name)
	return true
}

// EndpointOf returns the broadcast endpoint registered for a member.
func (g *Group) EndpointOf(name string) (domain.Endpoint, bool) {
	m, ok := g.members[name]
	if !ok {
		return "", false
	}
	return m.endpoint, true
}

// Broadcast sends msg to every member's endpoint.
// Dropped names the members whose send failed.
func (g *Group) Broadcast(ctx context.Context, s Sender, msg protocol.Message) PublishResult {
	res := PublishResult{}
	for name, m := range g.members {
		if err := s.Send(ctx, m.endpoint, msg); err != nil {
			res.Dropped = append(res.Dropped, name)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.group").Str("group", g.name).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

// Close cancels every pending auto-unmute. The group must not be used afterwards.
func (g *Group) Close() {
	for name := range g.muted {
		g.Unmute(name)
	}
}

func (g *Group) MembersSnapshot() []domain.Member {
	names := lo.Keys(g.members)
	slices.Sort(names)
	return lo.Map(names, func(name string, _ int) domain.Member {
		return domain.Member{Name: name, Role: g.members[name].role, Muted: g.IsMuted(name)}
	})
}

func (g *Group) View() domain.GroupView {
	return domain.GroupView{Name: g.name, Admin: g.admin, Members: g.MembersSnapshot()}
}

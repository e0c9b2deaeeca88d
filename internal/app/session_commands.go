package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Every command except Connect is dropped while disconnected.
// Connect is dropped while connected.

func (s *Session) Connect(ctx context.Context, name string) {
	if s.User() != "" {
		return
	}
	reply, err := s.call(ctx, protocol.Connect(name))
	if err != nil {
		s.out.Print(msgOfflineConnect)
		return
	}
	if reply.Kind != protocol.KindSuccess {
		s.out.Print(describe(reply, "", name))
		return
	}
	s.setUser(name)
	s.out.Print(name + " has connected successfully!")
}

func (s *Session) Disconnect(ctx context.Context) {
	user := s.User()
	if user == "" {
		return
	}
	if _, err := s.call(ctx, protocol.Disconnect(user)); err != nil {
		s.out.Print(msgOffline)
		return
	}
	s.setUser("")
	s.out.Print(user + " has been disconnected successfully!")
}

// resolve returns the address of target or prints why it could not.
func (s *Session) resolve(ctx context.Context, user, target string) (domain.Endpoint, bool) {
	reply, err := s.call(ctx, protocol.Resolve(user, target))
	if err != nil {
		s.out.Print(msgOffline)
		return "", false
	}
	if reply.Kind != protocol.KindSuccess {
		s.out.Print(target + " does not exist!")
		return "", false
	}
	return reply.Address, true
}

func (s *Session) SendText(ctx context.Context, target, text string) {
	user := s.User()
	if user == "" {
		return
	}
	if addr, ok := s.resolve(ctx, user, target); ok {
		s.tell(ctx, addr, protocol.Text(user, target, text))
	}
}

func (s *Session) SendFile(ctx context.Context, target, path string) {
	user := s.User()
	if user == "" {
		return
	}
	addr, ok := s.resolve(ctx, user, target)
	if !ok {
		return
	}
	name, data, err := s.files.Read(path)
	if err != nil {
		log.Debug().Err(err).Str("module", "app.session").Str("path", path).Msg("read file")
		s.out.Print(path + " does not exist!")
		return
	}
	s.tell(ctx, addr, protocol.File(user, target, name, data))
}

func (s *Session) CreateGroup(ctx context.Context, group string) {
	user := s.User()
	if user == "" {
		return
	}
	reply, err := s.call(ctx, protocol.CreateGroup(group, user))
	if err != nil {
		s.out.Print(msgOffline)
		return
	}
	if reply.Kind != protocol.KindSuccess {
		s.out.Print(describe(reply, group, group))
		return
	}
	s.out.Print(group + " created successfully!")
}

func (s *Session) LeaveGroup(ctx context.Context, group string) {
	user := s.User()
	if user == "" {
		return
	}
	reply, err := s.call(ctx, protocol.LeaveGroup(group, user))
	if err != nil {
		s.out.Print(msgOffline)
		return
	}
	switch {
	case reply.Kind == protocol.KindSuccess:
	case reply.Reason == protocol.ReasonNotMember:
		s.out.Print(fmt.Sprintf("%s is not in %s!", user, group))
	default:
		s.out.Print(describe(reply, group, user))
	}
}

func (s *Session) SendGroupText(ctx context.Context, group, text string) {
	user := s.User()
	if user == "" {
		return
	}
	s.sendGroupData(ctx, protocol.GroupText(group, user, text))
}

// SendGroupFile reads the file before contacting the coordinator.
func (s *Session) SendGroupFile(ctx context.Context, group, path string) {
	user := s.User()
	if user == "" {
		return
	}
	name, data, err := s.files.Read(path)
	if err != nil {
		log.Debug().Err(err).Str("module", "app.session").Str("path", path).Msg("read file")
		s.out.Print(path + " does not exist!")
		return
	}
	s.sendGroupData(ctx, protocol.GroupFile(group, user, name, data))
}

func (s *Session) sendGroupData(ctx context.Context, msg protocol.Message) {
	reply, err := s.call(ctx, msg)
	if err != nil {
		s.out.Print(msgOffline)
		return
	}
	switch {
	case reply.Kind == protocol.KindSuccess:
	case reply.Reason == protocol.ReasonNotMember:
		s.out.Print(fmt.Sprintf("You are not part of %s!", msg.Group))
	default:
		s.out.Print(describe(reply, msg.Group, msg.Source))
	}
}

// Invite runs the two-phase handshake. Anything but a timely confirm from
// the target counts as a decline and leaves the group untouched.
func (s *Session) Invite(ctx context.Context, group, target string) {
	user := s.User()
	if user == "" {
		return
	}
	reply, err := s.call(ctx, protocol.InviteCheck(group, user, target))
	if err != nil {
		s.out.Print(msgOffline)
		return
	}
	if reply.Kind != protocol.KindSuccess {
		s.out.Print(describe(reply, group, target))
		return
	}
	addr := reply.Address

	answer, err := s.ask(ctx, addr, protocol.Invited(group, user, target), s.opts.InviteTimeout)
	if err != nil {
		log.Info().Err(err).Str("module", "app.session").Str("group", group).Str("target", target).Msg("invite unanswered")
		return
	}
	if answer.Kind != protocol.KindConfirm {
		log.Info().Str("module", "app.session").Str("group", group).Str("target", target).Msg("invite declined")
		return
	}
	s.tell(ctx, s.coordinator, protocol.CommitInvite(group, user, target))
	s.tell(ctx, addr, protocol.Text(user, group, fmt.Sprintf("Welcome to %s!", group)))
}

// AnswerInvite replies to the pending invitation, if any, and clears it.
func (s *Session) AnswerInvite(ctx context.Context, accept bool) {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	connected := s.user != ""
	s.mu.Unlock()
	if !connected || p == nil {
		return
	}
	answer := p.request.Decline()
	if accept {
		answer = p.request.Confirm()
	}
	log.Debug().Str("module", "app.session").Str("group", p.group).Str("inviter", p.inviter).Bool("accept", accept).Msg("invite answered")
	s.tell(ctx, p.request.From, answer)
}

// manage runs one of the member management requests and, on success,
// sends notice straight to the target.
func (s *Session) manage(ctx context.Context, msg protocol.Message, notice string) {
	reply, err := s.call(ctx, msg)
	if err != nil {
		s.out.Print(msgOffline)
		return
	}
	if reply.Kind != protocol.KindSuccess {
		s.out.Print(describe(reply, msg.Group, msg.Target))
		return
	}
	s.tell(ctx, reply.Address, protocol.Text(msg.Source, msg.Group, notice))
}

func (s *Session) RemoveMember(ctx context.Context, group, target string) {
	user := s.User()
	if user == "" {
		return
	}
	s.manage(ctx, protocol.RemoveMember(group, user, target),
		fmt.Sprintf("You have been removed from %s by %s!", group, user))
}

func (s *Session) SetCoAdmin(ctx context.Context, group, target string, promote bool) {
	user := s.User()
	if user == "" {
		return
	}
	notice := fmt.Sprintf("You have been demoted to user in %s!", group)
	if promote {
		notice = fmt.Sprintf("You have been promoted to co-admin in %s!", group)
	}
	s.manage(ctx, protocol.SetCoAdmin(group, user, target, promote), notice)
}

func (s *Session) Mute(ctx context.Context, group, target string, d time.Duration) {
	user := s.User()
	if user == "" {
		return
	}
	ms := d.Milliseconds()
	s.manage(ctx, protocol.Mute(group, user, target, ms),
		fmt.Sprintf("You have been muted for %d milliseconds in %s by %s!", ms, group, user))
}

func (s *Session) Unmute(ctx context.Context, group, target string) {
	user := s.User()
	if user == "" {
		return
	}
	s.manage(ctx, protocol.Unmute(group, user, target),
		fmt.Sprintf("You have been unmuted in %s by %s!", group, user))
}

package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
)

var (
	ErrServerOffline = errors.New("server is offline")
	ErrPeerTimeout   = errors.New("peer did not answer in time")
)

// Printer shows lines to the local user.
type Printer interface {
	Print(line string)
}

// FileStore reads outgoing and writes incoming file payloads.
type FileStore interface {
	Read(path string) (name string, data []byte, err error)
	Write(name string, data []byte) (path string, err error)
}

type SessionOptions struct {
	RequestTimeout time.Duration
	InviteTimeout  time.Duration
	Now            func() time.Time
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = time.Second
	}
	if o.InviteTimeout <= 0 {
		o.InviteTimeout = 20 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type pendingInvite struct {
	group   string
	inviter string
	request protocol.Message
}

// Session is the client side of one console user. Commands run on the
// caller's goroutine and block until their reply or timeout; Run delivers
// replies and peer traffic from the mailbox.
type Session struct {
	tr          core.Transport
	coordinator domain.Endpoint
	out         Printer
	files       FileStore
	opts        SessionOptions

	mu      sync.Mutex
	user    string
	pending *pendingInvite
	waiters map[string]chan protocol.Message
}

func NewSession(tr core.Transport, coordinator domain.Endpoint, out Printer, files FileStore, opts SessionOptions) *Session {
	return &Session{
		tr:          tr,
		coordinator: coordinator,
		out:         out,
		files:       files,
		opts:        opts.withDefaults(),
		waiters:     make(map[string]chan protocol.Message),
	}
}

func (s *Session) Addr() domain.Endpoint { return s.tr.Addr() }

// User returns the connected name, or "" while disconnected.
func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) setUser(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = name
	if name == "" {
		s.pending = nil
	}
}

// Run drains the mailbox until ctx ends or the mailbox closes.
func (s *Session) Run(ctx context.Context) error {
	inbox := s.tr.Inbox()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-inbox:
			if !ok {
				return nil
			}
			s.handle(msg)
		}
	}
}

func (s *Session) handle(msg protocol.Message) {
	if msg.Kind.IsReply() {
		s.deliverReply(msg)
		return
	}
	user := s.User()
	if user == "" {
		log.Debug().Str("module", "app.session").Str("kind", string(msg.Kind)).Msg("dropped while disconnected")
		return
	}
	switch msg.Kind {
	case protocol.KindText:
		s.show(msg.Target, msg.Source, msg.Text)
	case protocol.KindFile:
		s.receiveFile(msg)
	case protocol.KindInvited:
		s.mu.Lock()
		s.pending = &pendingInvite{group: msg.Group, inviter: msg.Source, request: msg}
		s.mu.Unlock()
		s.show(msg.Group, msg.Source, fmt.Sprintf("You have been invited to %s, Accept?", msg.Group))
	default:
		log.Warn().Str("module", "app.session").Str("kind", string(msg.Kind)).Str("from", string(msg.From)).Msg("unexpected message")
	}
}

func (s *Session) deliverReply(msg protocol.Message) {
	s.mu.Lock()
	ch, ok := s.waiters[msg.ID]
	delete(s.waiters, msg.ID)
	s.mu.Unlock()
	if !ok {
		log.Debug().Str("module", "app.session").Str("id", msg.ID).Str("kind", string(msg.Kind)).Msg("late reply dropped")
		return
	}
	ch <- msg
}

func (s *Session) receiveFile(msg protocol.Message) {
	path, err := s.files.Write(msg.FileName, msg.Content)
	if err != nil {
		log.Error().Err(err).Str("module", "app.session").Str("file", msg.FileName).Msg("saving file")
		s.out.Print("Error in saving file")
		return
	}
	s.show(msg.Target, msg.Source, "File received: "+path)
}

func (s *Session) show(target, source, text string) {
	s.out.Print(fmt.Sprintf("[%s][%s][%s] %s", s.opts.Now().Format("15:04:05"), target, source, text))
}

// ask sends msg to `to` and waits for the reply with the same ID.
func (s *Session) ask(ctx context.Context, to domain.Endpoint, msg protocol.Message, timeout time.Duration) (protocol.Message, error) {
	ch := make(chan protocol.Message, 1)
	s.mu.Lock()
	s.waiters[msg.ID] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.waiters, msg.ID)
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.tr.Send(ctx, to, msg); err != nil {
		return protocol.Message{}, fmt.Errorf("send %s: %w", msg.Kind, err)
	}
	select {
	case reply := <-ch:
		return reply, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return protocol.Message{}, fmt.Errorf("%s %s: %w", msg.Kind, msg.ID, ErrPeerTimeout)
		}
		return protocol.Message{}, fmt.Errorf("%s %s: %w", msg.Kind, msg.ID, ctx.Err())
	}
}

// call asks the coordinator. Any transport or timing failure is ErrServerOffline.
func (s *Session) call(ctx context.Context, msg protocol.Message) (protocol.Message, error) {
	reply, err := s.ask(ctx, s.coordinator, msg, s.opts.RequestTimeout)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.session").Str("kind", string(msg.Kind)).Msg("coordinator call failed")
		return reply, fmt.Errorf("%w: %w", ErrServerOffline, err)
	}
	return reply, nil
}

// tell sends a message expecting no answer.
func (s *Session) tell(ctx context.Context, to domain.Endpoint, msg protocol.Message) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()
	if err := s.tr.Send(ctx, to, msg); err != nil {
		log.Warn().Err(err).Str("module", "app.session").Str("to", string(to)).Str("kind", string(msg.Kind)).Msg("send failed")
	}
}

package app

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Huddle/internal/adapters/filestore"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

var noon = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type lines struct {
	mu  sync.Mutex
	got []string
}

func (l *lines) Print(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.got = append(l.got, line)
}

func (l *lines) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.got)
}

func (l *lines) last() string {
	all := l.all()
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1]
}

func (l *lines) has(line string) bool { return slices.Contains(l.all(), line) }

type client struct {
	*Session
	out *lines
	fs  afero.Fs
}

func (h *harness) session(name string, opts SessionOptions) *client {
	h.t.Helper()
	tr, err := h.hub.Open(domain.Endpoint("mem://session-"+name), 0)
	require.NoError(h.t, err)

	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 300 * time.Millisecond
	}
	if opts.InviteTimeout == 0 {
		opts.InviteTimeout = 2 * time.Second
	}
	opts.Now = func() time.Time { return noon }

	fs := afero.NewMemMapFs()
	out := &lines{}
	s := NewSession(tr, coordinatorAddr, out, filestore.New(fs, "/downloads"), opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	h.t.Cleanup(func() {
		cancel()
		<-done
		_ = tr.Close()
	})
	return &client{Session: s, out: out, fs: fs}
}

func eventuallyPrints(t *testing.T, c *client, line string) {
	t.Helper()
	require.Eventually(t, func() bool { return c.out.has(line) }, 2*time.Second, 5*time.Millisecond,
		"want %q, got %q", line, c.out.all())
}

func connected(h *harness, name string) *client {
	h.t.Helper()
	c := h.session(name, SessionOptions{})
	c.Connect(context.Background(), name)
	require.Equal(h.t, name+" has connected successfully!", c.out.last())
	return c
}

// sessionTeam has alice administering "team" with bob joined through an accepted invite.
func sessionTeam(h *harness) (alice, bob *client) {
	ctx := context.Background()
	alice, bob = connected(h, "alice"), connected(h, "bob")
	alice.CreateGroup(ctx, "team")
	require.Equal(h.t, "team created successfully!", alice.out.last())

	done := make(chan struct{})
	go func() {
		defer close(done)
		alice.Invite(ctx, "team", "bob")
	}()
	eventuallyPrints(h.t, bob, "[12:00:00][team][alice] You have been invited to team, Accept?")
	bob.AnswerInvite(ctx, true)
	<-done
	eventuallyPrints(h.t, bob, "[12:00:00][team][alice] Welcome to team!")
	require.Eventually(h.t, func() bool {
		_, ok := h.member("team", "bob")
		return ok
	}, time.Second, 5*time.Millisecond)
	return alice, bob
}

func TestSession_ConnectLifecycle(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	alice := connected(h, "alice")

	// connect while connected is dropped
	alice.Connect(ctx, "other")
	require.Len(t, alice.out.all(), 1)

	imposter := h.session("imposter", SessionOptions{})
	imposter.Connect(ctx, "alice")
	require.Equal(t, []string{"alice is in use!"}, imposter.out.all())
	require.Empty(t, imposter.User())

	alice.Disconnect(ctx)
	require.Equal(t, "alice has been disconnected successfully!", alice.out.last())
	require.Empty(t, h.snapshot().Online)

	imposter.Connect(ctx, "alice")
	require.Equal(t, "alice has connected successfully!", imposter.out.last())
	require.Equal(t, "alice", imposter.User())
}

func TestSession_CommandsDroppedWhileDisconnected(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	c := h.session("idle", SessionOptions{})

	c.Disconnect(ctx)
	c.SendText(ctx, "bob", "hi")
	c.SendFile(ctx, "bob", "/x")
	c.CreateGroup(ctx, "team")
	c.LeaveGroup(ctx, "team")
	c.SendGroupText(ctx, "team", "hi")
	c.SendGroupFile(ctx, "team", "/x")
	c.Invite(ctx, "team", "bob")
	c.RemoveMember(ctx, "team", "bob")
	c.SetCoAdmin(ctx, "team", "bob", true)
	c.Mute(ctx, "team", "bob", time.Second)
	c.Unmute(ctx, "team", "bob")
	c.AnswerInvite(ctx, true)

	require.Empty(t, c.out.all())
	require.Empty(t, h.snapshot().Groups)
}

func TestSession_ServerOffline(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	alice := connected(h, "alice")
	late := h.session("late", SessionOptions{RequestTimeout: 50 * time.Millisecond})

	h.hub.Silence(coordinatorAddr)
	late.Connect(ctx, "late")
	require.Equal(t, []string{"server is offline!"}, late.out.all())
	require.Empty(t, late.User())

	alice.CreateGroup(ctx, "team")
	require.Equal(t, "server is offline! try again later!", alice.out.last())
	alice.Disconnect(ctx)
	require.Equal(t, "server is offline! try again later!", alice.out.last())
	require.Equal(t, "alice", alice.User())

	h.hub.Restore(coordinatorAddr)
	alice.CreateGroup(ctx, "team")
	require.Equal(t, "team created successfully!", alice.out.last())
}

func TestSession_ServerGone(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	c := h.session("alice", SessionOptions{})
	c.coordinator = "mem://nowhere"
	c.Connect(context.Background(), "alice")
	require.Equal(t, []string{"server is offline!"}, c.out.all())
}

func TestSession_DirectText(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	alice, bob := connected(h, "alice"), connected(h, "bob")

	alice.SendText(ctx, "bob", "hello there")
	eventuallyPrints(t, bob, "[12:00:00][bob][alice] hello there")

	alice.SendText(ctx, "ghost", "boo")
	require.Equal(t, "ghost does not exist!", alice.out.last())
}

func TestSession_DirectFile(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	alice, bob := connected(h, "alice"), connected(h, "bob")
	require.NoError(t, afero.WriteFile(alice.fs, "/home/alice/cat.png", []byte{0x89, 'P', 'N', 'G'}, 0o644))

	alice.SendFile(ctx, "bob", "/home/alice/cat.png")
	eventuallyPrints(t, bob, "[12:00:00][bob][alice] File received: /downloads/cat.png")
	got, err := afero.ReadFile(bob.fs, "/downloads/cat.png")
	require.NoError(t, err)
	require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got)

	alice.SendFile(ctx, "bob", "/home/alice/missing.png")
	require.Equal(t, "/home/alice/missing.png does not exist!", alice.out.last())
	alice.SendFile(ctx, "ghost", "/home/alice/cat.png")
	require.Equal(t, "ghost does not exist!", alice.out.last())
}

func TestSession_GroupLifecycleMessages(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	alice, bob := sessionTeam(h)
	carol := connected(h, "carol")

	alice.CreateGroup(ctx, "team")
	require.Equal(t, "team already exists!", alice.out.last())

	alice.SendGroupText(ctx, "team", "hi team")
	eventuallyPrints(t, alice, "[12:00:00][team][alice] hi team")
	eventuallyPrints(t, bob, "[12:00:00][team][alice] hi team")

	require.NoError(t, afero.WriteFile(bob.fs, "/tmp/plan.txt", []byte("plan"), 0o644))
	bob.SendGroupFile(ctx, "team", "/tmp/plan.txt")
	eventuallyPrints(t, alice, "[12:00:00][team][bob] File received: /downloads/plan.txt")
	bob.SendGroupFile(ctx, "team", "/tmp/nope.txt")
	require.Equal(t, "/tmp/nope.txt does not exist!", bob.out.last())

	carol.SendGroupText(ctx, "team", "let me in")
	require.Equal(t, "You are not part of team!", carol.out.last())
	carol.SendGroupText(ctx, "ghost", "anyone")
	require.Equal(t, "ghost does not exist!", carol.out.last())
	carol.LeaveGroup(ctx, "team")
	require.Equal(t, "carol is not in team!", carol.out.last())
	carol.LeaveGroup(ctx, "ghost")
	require.Equal(t, "ghost does not exist!", carol.out.last())

	bob.LeaveGroup(ctx, "team")
	eventuallyPrints(t, alice, "[12:00:00][team][bob] bob has left team!")

	alice.LeaveGroup(ctx, "team")
	eventuallyPrints(t, alice, "[12:00:00][team][alice] team admin has closed team!")
	require.Empty(t, h.snapshot().Groups)
}

func TestSession_InviteFailures(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	alice, bob := sessionTeam(h)
	connected(h, "carol")

	alice.Invite(ctx, "nope", "carol")
	require.Equal(t, "nope does not exist!", alice.out.last())
	alice.Invite(ctx, "team", "zed")
	require.Equal(t, "zed does not exist!", alice.out.last())
	alice.Invite(ctx, "team", "bob")
	require.Equal(t, "bob is already in team!", alice.out.last())
	bob.Invite(ctx, "team", "carol")
	require.Equal(t, "You are neither an admin nor a co-admin of team!", bob.out.last())
}

func TestSession_InviteDeclined(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	alice, bob := connected(h, "alice"), connected(h, "bob")
	alice.CreateGroup(ctx, "team")

	done := make(chan struct{})
	go func() {
		defer close(done)
		alice.Invite(ctx, "team", "bob")
	}()
	eventuallyPrints(t, bob, "[12:00:00][team][alice] You have been invited to team, Accept?")
	bob.AnswerInvite(ctx, false)
	<-done

	g, _ := h.group("team")
	require.Equal(t, []domain.Member{{Name: "alice", Role: domain.RoleAdmin}}, g.Members)
	require.False(t, slices.ContainsFunc(bob.out.all(), func(l string) bool { return strings.Contains(l, "Welcome") }))

	// the slot is cleared: a second answer goes nowhere
	bob.AnswerInvite(ctx, true)
	g, _ = h.group("team")
	require.Len(t, g.Members, 1)
}

func TestSession_CallTimeoutIsServerOffline(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	c := h.session("alice", SessionOptions{RequestTimeout: 30 * time.Millisecond})
	h.hub.Silence(coordinatorAddr)

	_, err := c.call(context.Background(), protocol.Connect("alice"))
	require.ErrorIs(t, err, ErrServerOffline)
	require.ErrorIs(t, err, ErrPeerTimeout)
}

func TestSession_InviteSilenceLeavesGroupUnchanged(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	alice := h.session("alice", SessionOptions{InviteTimeout: 100 * time.Millisecond})
	alice.Connect(ctx, "alice")
	bob := connected(h, "bob")
	alice.CreateGroup(ctx, "team")

	start := time.Now()
	alice.Invite(ctx, "team", "bob")
	require.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	eventuallyPrints(t, bob, "[12:00:00][team][alice] You have been invited to team, Accept?")

	// a confirm after the deadline is dropped by the inviter
	bob.AnswerInvite(ctx, true)
	time.Sleep(50 * time.Millisecond)

	g, ok := h.group("team")
	require.True(t, ok)
	require.Equal(t, []domain.Member{{Name: "alice", Role: domain.RoleAdmin}}, g.Members)
}

func TestSession_SecondInviteOverwritesPending(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	alice := h.session("alice", SessionOptions{InviteTimeout: 300 * time.Millisecond})
	alice.Connect(ctx, "alice")
	carol, bob := connected(h, "carol"), connected(h, "bob")
	alice.CreateGroup(ctx, "first")
	carol.CreateGroup(ctx, "second")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); alice.Invite(ctx, "first", "bob") }()
	eventuallyPrints(t, bob, "[12:00:00][first][alice] You have been invited to first, Accept?")
	go func() { defer wg.Done(); carol.Invite(ctx, "second", "bob") }()
	eventuallyPrints(t, bob, "[12:00:00][second][carol] You have been invited to second, Accept?")

	bob.AnswerInvite(ctx, true)
	wg.Wait()

	require.Eventually(t, func() bool {
		_, ok := h.member("second", "bob")
		return ok
	}, time.Second, 5*time.Millisecond)
	_, inFirst := h.member("first", "bob")
	require.False(t, inFirst)
}

func TestSession_ManagementNotices(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	alice, bob := sessionTeam(h)

	alice.SetCoAdmin(ctx, "team", "bob", true)
	eventuallyPrints(t, bob, "[12:00:00][team][alice] You have been promoted to co-admin in team!")
	alice.SetCoAdmin(ctx, "team", "bob", false)
	eventuallyPrints(t, bob, "[12:00:00][team][alice] You have been demoted to user in team!")

	alice.Mute(ctx, "team", "bob", 10*time.Second)
	eventuallyPrints(t, bob, "[12:00:00][team][alice] You have been muted for 10000 milliseconds in team by alice!")
	bob.SendGroupText(ctx, "team", "hello?")
	muted := bob.out.last()
	require.True(t, strings.HasPrefix(muted, "You are muted for "), muted)
	require.True(t, strings.HasSuffix(muted, " milliseconds in team!"), muted)

	alice.Unmute(ctx, "team", "bob")
	eventuallyPrints(t, bob, "[12:00:00][team][alice] You have been unmuted in team by alice!")
	alice.Unmute(ctx, "team", "bob")
	require.Equal(t, "bob is not muted!", alice.out.last())

	alice.RemoveMember(ctx, "team", "bob")
	eventuallyPrints(t, bob, "[12:00:00][team][alice] You have been removed from team by alice!")
	_, ok := h.member("team", "bob")
	require.False(t, ok)
}

func TestSession_ManagementFailures(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	alice, bob := sessionTeam(h)
	connected(h, "carol")

	alice.Mute(ctx, "team", "alice", time.Second)
	require.Equal(t, "alice is the admin of the group!", alice.out.last())
	alice.RemoveMember(ctx, "team", "carol")
	require.Equal(t, "carol is not a member of team!", alice.out.last())
	alice.SetCoAdmin(ctx, "team", "zed", true)
	require.Equal(t, "zed does not exist!", alice.out.last())
	alice.Unmute(ctx, "ghost", "bob")
	require.Equal(t, "ghost does not exist!", alice.out.last())
	bob.RemoveMember(ctx, "team", "alice")
	require.Equal(t, "You are neither an admin nor a co-admin of team!", bob.out.last())
	alice.Mute(ctx, "team", "bob", -5*time.Millisecond)
	require.Equal(t, "-5 is not a valid mute duration!", alice.out.last())
}

func TestSession_MuteExpiryNotice(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	alice, bob := sessionTeam(h)

	alice.Mute(ctx, "team", "bob", 50*time.Millisecond)
	eventuallyPrints(t, bob, "[12:00:00][team][alice] You have been unmuted! Muting time is up!")

	bob.SendGroupText(ctx, "team", "free")
	eventuallyPrints(t, alice, "[12:00:00][team][bob] free")
}

func TestSession_DisconnectClearsState(t *testing.T) {
	h := newHarness(t, CoordinatorOptions{})
	ctx := context.Background()
	alice, bob := sessionTeam(h)

	bob.Disconnect(ctx)
	require.Equal(t, "bob has been disconnected successfully!", bob.out.last())
	eventuallyPrints(t, alice, "[12:00:00][team][bob] bob has left team!")

	n := len(bob.out.all())
	alice.SendGroupText(ctx, "team", "still here")
	eventuallyPrints(t, alice, "[12:00:00][team][alice] still here")
	bob.SendText(ctx, "alice", "ghost text")
	require.Len(t, bob.out.all(), n)
}

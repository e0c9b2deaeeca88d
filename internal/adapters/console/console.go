// Package console turns typed lines into session commands.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/rs/zerolog/log"
)

const muteUsage = "<durationMs> must be a positive integer!"

type Printer interface {
	Print(line string)
}

// Writer prints one line per call. Safe for concurrent use.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (p *Writer) Print(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, line)
}

type Console struct {
	cmds Commands
	out  Printer
}

func New(cmds Commands, out Printer) *Console {
	return &Console{cmds: cmds, out: out}
}

// Run dispatches every line of r until EOF or ctx ends.
func (c *Console) Run(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Dispatch(ctx, sc.Text())
	}
	return sc.Err()
}

// Dispatch parses one line. Lines of the wrong shape are ignored.
func (c *Console) Dispatch(ctx context.Context, line string) {
	words := strings.Split(strings.TrimRight(line, "\r\n"), " ")
	if len(words) == 1 {
		switch strings.ToLower(words[0]) {
		case "yes":
			c.cmds.AnswerInvite(ctx, true)
		case "no":
			c.cmds.AnswerInvite(ctx, false)
		}
		return
	}
	switch words[0] {
	case "/user":
		c.user(ctx, words)
	case "/group":
		c.group(ctx, words)
	default:
		log.Debug().Str("module", "adapters.console").Str("line", line).Msg("unknown command")
	}
}

func (c *Console) user(ctx context.Context, w []string) {
	switch w[1] {
	case "connect":
		if len(w) == 3 {
			c.cmds.Connect(ctx, w[2])
		}
	case "disconnect":
		if len(w) == 2 {
			c.cmds.Disconnect(ctx)
		}
	case "text":
		if len(w) >= 4 {
			c.cmds.SendText(ctx, w[2], strings.Join(w[3:], " "))
		}
	case "file":
		if len(w) == 4 {
			c.cmds.SendFile(ctx, w[2], w[3])
		}
	}
}

func (c *Console) group(ctx context.Context, w []string) {
	switch w[1] {
	case "create":
		if len(w) == 3 {
			c.cmds.CreateGroup(ctx, w[2])
		}
	case "leave":
		if len(w) == 3 {
			c.cmds.LeaveGroup(ctx, w[2])
		}
	case "send":
		if len(w) < 5 {
			return
		}
		switch w[2] {
		case "text":
			c.cmds.SendGroupText(ctx, w[3], strings.Join(w[4:], " "))
		case "file":
			if len(w) == 5 {
				c.cmds.SendGroupFile(ctx, w[3], w[4])
			}
		}
	case "user":
		c.member(ctx, w)
	case "coadmin":
		if len(w) != 5 {
			return
		}
		switch w[2] {
		case "add":
			c.cmds.SetCoAdmin(ctx, w[3], w[4], true)
		case "remove":
			c.cmds.SetCoAdmin(ctx, w[3], w[4], false)
		}
	}
}

func (c *Console) member(ctx context.Context, w []string) {
	if len(w) < 5 {
		return
	}
	switch w[2] {
	case "invite":
		if len(w) == 5 {
			c.cmds.Invite(ctx, w[3], w[4])
		}
	case "remove":
		if len(w) == 5 {
			c.cmds.RemoveMember(ctx, w[3], w[4])
		}
	case "mute":
		if len(w) != 6 {
			return
		}
		ms, err := strconv.ParseInt(w[5], 10, 64)
		if err != nil || ms <= 0 || ms > protocol.MaxMuteMs {
			c.out.Print(muteUsage)
			return
		}
		c.cmds.Mute(ctx, w[3], w[4], time.Duration(ms)*time.Millisecond)
	case "unmute":
		if len(w) == 5 {
			c.cmds.Unmute(ctx, w[3], w[4])
		}
	}
}

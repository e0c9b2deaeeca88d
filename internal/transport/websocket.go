package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// MailboxPath is the route every process serves its mailbox on.
const MailboxPath = "/ws/mailbox"

// EndpointFor turns a host:port into the mailbox endpoint served there.
func EndpointFor(hostport string) domain.Endpoint {
	if strings.HasPrefix(hostport, "ws://") || strings.HasPrefix(hostport, "wss://") {
		return domain.Endpoint(hostport)
	}
	return domain.Endpoint("ws://" + hostport + MailboxPath)
}

type Options struct {
	MailboxSize  int
	SendBuffer   int
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	PingPeriod   time.Duration
	ReadLimit    int64
	// RetryAfter is how long a failed dial makes Send fail fast with ErrUnreachable.
	RetryAfter time.Duration
}

func (o Options) withDefaults() Options {
	if o.MailboxSize <= 0 {
		o.MailboxSize = DefaultMailboxSize
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = 3 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = 30 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 64 << 20
	}
	if o.RetryAfter <= 0 {
		o.RetryAfter = 5 * time.Second
	}
	return o
}

// wsConn is the outbox of one peer. Frames queue on send before the socket
// exists; conn is attached once the dial completes and never changes after.
type wsConn struct {
	peer string
	send chan []byte

	mu     sync.RWMutex
	conn   *websocket.Conn
	closed bool
}

func newConn(peer string, buffer int) *wsConn {
	return &wsConn{peer: peer, send: make(chan []byte, buffer)}
}

// attach reports false, closing ws, if the outbox was closed while dialing.
func (c *wsConn) attach(ws *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		_ = ws.Close()
		return false
	}
	c.conn = ws
	return true
}

func (c *wsConn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.mu.Unlock()
}

func (c *wsConn) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// WebSocket is a mailbox reachable at a ws:// endpoint.
// Inbound connections arrive through HandleUpgrade. Outbound ones are dialed
// in the background on first Send and reused; Send itself never waits on the
// network. Either side may deliver into the inbox.
type WebSocket struct {
	addr    domain.Endpoint
	codec   protocol.Codec
	opts    Options
	frame   int
	inbox   chan protocol.Message
	dialer  *websocket.Dialer
	upgrade websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	peers   map[domain.Endpoint]*wsConn
	inbound map[*wsConn]struct{}
	failed  map[domain.Endpoint]time.Time
	closed  bool
}

func NewWebSocket(addr domain.Endpoint, codec protocol.Codec, opts Options) *WebSocket {
	opts = opts.withDefaults()
	frame := websocket.TextMessage
	if codec.Binary() {
		frame = websocket.BinaryMessage
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WebSocket{
		addr:   addr,
		codec:  codec,
		opts:   opts,
		frame:  frame,
		inbox:  make(chan protocol.Message, opts.MailboxSize),
		dialer: &websocket.Dialer{HandshakeTimeout: opts.DialTimeout},
		upgrade: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		ctx:     ctx,
		cancel:  cancel,
		peers:   make(map[domain.Endpoint]*wsConn),
		inbound: make(map[*wsConn]struct{}),
		failed:  make(map[domain.Endpoint]time.Time),
	}
}

func (t *WebSocket) Addr() domain.Endpoint { return t.addr }

func (t *WebSocket) Inbox() <-chan protocol.Message { return t.inbox }

// HandleUpgrade accepts a peer connection on the mailbox route.
func (t *WebSocket) HandleUpgrade(c *gin.Context) {
	ws, err := t.upgrade.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "transport.ws").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(t.opts.ReadLimit)
	conn := newConn(c.Request.RemoteAddr, t.opts.SendBuffer)
	conn.attach(ws)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		conn.Close()
		return
	}
	t.inbound[conn] = struct{}{}
	t.wg.Add(2)
	go t.writePump(conn)
	go t.readPump(conn)
	t.mu.Unlock()

	log.Debug().Str("module", "transport.ws").Str("peer", conn.peer).Msg("inbound connection")
}

// Send stamps the message with this mailbox's endpoint and queues it on the
// outbox of `to`. It fails with ErrBackpressure when that outbox is full and
// with ErrUnreachable while a recent dial to `to` has failed; frames queued
// behind a dial that then fails are lost.
func (t *WebSocket) Send(ctx context.Context, to domain.Endpoint, msg protocol.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg.From = t.addr
	data, err := t.codec.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Kind, err)
	}
	conn, err := t.outbox(to)
	if err != nil {
		return err
	}
	if err := conn.TrySend(data); err != nil {
		if !errors.Is(err, ErrClosed) {
			return err
		}
		// The cached connection died between lookup and send; retry once.
		t.forget(to, conn)
		if conn, err = t.outbox(to); err != nil {
			return err
		}
		return conn.TrySend(data)
	}
	return nil
}

// outbox returns the live outbox of `to`, creating it and starting its dial if needed.
func (t *WebSocket) outbox(to domain.Endpoint) (*wsConn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrClosed
	}
	if until, ok := t.failed[to]; ok {
		if time.Now().Before(until) {
			return nil, fmt.Errorf("%w: %s", ErrUnreachable, to)
		}
		delete(t.failed, to)
	}
	if c, ok := t.peers[to]; ok && !c.isClosed() {
		return c, nil
	}
	c := newConn(string(to), t.opts.SendBuffer)
	t.peers[to] = c
	t.wg.Add(1)
	go t.dial(to, c)
	return c, nil
}

// dial connects the outbox and then serves as its write pump.
func (t *WebSocket) dial(to domain.Endpoint, c *wsConn) {
	// A handshake read ignores ctx; closing the raw conn on shutdown unblocks it.
	var stop func() bool
	d := *t.dialer
	d.NetDialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		var nd net.Dialer
		conn, err := nd.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		stop = context.AfterFunc(t.ctx, func() { _ = conn.Close() })
		return conn, nil
	}
	ctx, cancel := context.WithTimeout(t.ctx, t.opts.DialTimeout)
	ws, _, err := d.DialContext(ctx, string(to), nil)
	cancel()
	if stop != nil {
		stop()
	}
	if err != nil {
		t.mu.Lock()
		if !t.closed {
			t.failed[to] = time.Now().Add(t.opts.RetryAfter)
		}
		if t.peers[to] == c {
			delete(t.peers, to)
		}
		t.mu.Unlock()
		c.Close()
		if t.ctx.Err() == nil {
			log.Warn().Err(err).Str("module", "transport.ws").Str("peer", string(to)).Msg("dial failed")
		}
		t.wg.Done()
		return
	}
	ws.SetReadLimit(t.opts.ReadLimit)
	if !c.attach(ws) {
		t.wg.Done()
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		c.Close()
		t.wg.Done()
		return
	}
	t.wg.Add(1)
	go t.readPump(c)
	t.mu.Unlock()
	log.Debug().Str("module", "transport.ws").Str("peer", string(to)).Msg("dialed")

	t.writePump(c)
}

func (t *WebSocket) forget(to domain.Endpoint, conn *wsConn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.peers[to] == conn {
		delete(t.peers, to)
	}
}

func (t *WebSocket) writePump(c *wsConn) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.opts.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(t.opts.WriteTimeout)); err != nil {
				log.Debug().Err(err).Str("module", "transport.ws").Str("peer", c.peer).Msg("writePump ping")
				c.Close()
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(t.opts.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "transport.ws").Msg("writePump set deadline")
				c.Close()
				return
			}
			if err := c.conn.WriteMessage(t.frame, data); err != nil {
				log.Error().Err(err).Str("module", "transport.ws").Str("peer", c.peer).Msg("writePump write error")
				c.Close()
				return
			}
		}
	}
}

func (t *WebSocket) readPump(c *wsConn) {
	defer func() {
		c.Close()
		t.mu.Lock()
		delete(t.inbound, c)
		for ep, pc := range t.peers {
			if pc == c {
				delete(t.peers, ep)
			}
		}
		t.mu.Unlock()
		t.wg.Done()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && t.ctx.Err() == nil {
				log.Debug().Err(err).Str("module", "transport.ws").Str("peer", c.peer).Msg("readPump read error")
			}
			return
		}
		msg, err := t.codec.Decode(data)
		if err != nil {
			log.Warn().Err(err).Str("module", "transport.ws").Str("peer", c.peer).Msg("bad frame")
			continue
		}
		select {
		case t.inbox <- msg:
		case <-t.ctx.Done():
			return
		}
	}
}

// Close drops every connection and closes the inbox once all pumps are gone.
func (t *WebSocket) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.cancel()
	conns := make([]*wsConn, 0, len(t.peers)+len(t.inbound))
	for _, c := range t.peers {
		conns = append(conns, c)
	}
	for c := range t.inbound {
		conns = append(conns, c)
	}
	t.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	t.wg.Wait()
	close(t.inbox)
	log.Info().Str("module", "transport.ws").Str("addr", string(t.addr)).Msg("mailbox closed")
	return nil
}

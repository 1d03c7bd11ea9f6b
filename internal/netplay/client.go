package netplay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/brawl-core/internal/config"
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/game"
)

// Options configures a client.
type Options struct {
	URL         string // relay websocket endpoint, e.g. ws://host:8765/ws
	PackageHash string // content.Package.Hash of the local content
	Seed        uint64 // match seed, chosen by the host
	Netplay     config.NetplayConfig
	Logger      *log.Logger
}

// Client is one side of a netplay match. It implements game.Netplay.
type Client struct {
	conn   *websocket.Conn
	logger *log.Logger
	hash   string
	host   bool

	send   chan Envelope
	done   chan struct{}
	closer sync.Once
	wg     sync.WaitGroup

	ready     chan struct{}
	readyOnce sync.Once
	created   chan string

	mu    sync.Mutex
	state game.NetplayState
	err   error
	code  string
	seed  uint64
	buf   *inputBuffer
}

var _ game.Netplay = (*Client)(nil)

// Host opens a lobby on the relay and returns once its code is known.
// The match starts when a peer joins; see Wait.
func Host(ctx context.Context, opts Options) (*Client, error) {
	c, err := dial(ctx, opts, true, "")
	if err != nil {
		return nil, err
	}
	c.enqueue(Envelope{Type: MsgCreate})

	select {
	case code := <-c.created:
		c.mu.Lock()
		c.code = code
		c.mu.Unlock()
		c.logger.Info("lobby open", "code", code)
		return c, nil
	case <-c.ready:
		err := c.Err()
		c.Disconnect()
		return nil, err
	case <-ctx.Done():
		c.Disconnect()
		return nil, ctx.Err()
	}
}

// Join enters the lobby with code. The match starts once the host's hello
// arrives; see Wait.
func Join(ctx context.Context, opts Options, code string) (*Client, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	c, err := dial(ctx, opts, false, code)
	if err != nil {
		return nil, err
	}
	c.enqueue(Envelope{Type: MsgJoin, Code: code})
	return c, nil
}

func dial(ctx context.Context, opts Options, host bool, code string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("netplay: dial %s: %w", opts.URL, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	local, seed := 1, uint64(0)
	if host {
		local, seed = 0, opts.Seed
	}
	n := opts.Netplay
	c := &Client{
		conn:    conn,
		logger:  logger,
		hash:    opts.PackageHash,
		host:    host,
		send:    make(chan Envelope, sendBuffer),
		done:    make(chan struct{}),
		ready:   make(chan struct{}),
		created: make(chan string, 1),
		state:   game.NetplayConnecting,
		code:    code,
		seed:    seed,
		buf:     newInputBuffer(local, n.InputDelay, max(n.MaxLead, 1), max(n.MaxRollback, 1)),
	}
	c.wg.Add(2)
	go c.readLoop()
	go c.writeLoop()
	return c, nil
}

// Wait blocks until the match can start or the connection fails.
func (c *Client) Wait(ctx context.Context) error {
	select {
	case <-c.ready:
		return c.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Code returns the lobby code.
func (c *Client) Code() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

// LocalController is the controller slot of the local player: 0 for the
// host, 1 for the joiner.
func (c *Client) LocalController() int {
	if c.host {
		return 0
	}
	return 1
}

func (c *Client) State() game.NetplayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Client) Seed() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seed
}

func (c *Client) SkipFrame() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.skip()
}

func (c *Client) FramesToStep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.framesToStep()
}

func (c *Client) SendInput(frame int, input core.ControllerInput) {
	c.mu.Lock()
	target := c.buf.sendLocal(frame, input)
	c.mu.Unlock()
	c.enqueue(Envelope{Type: MsgInput, Frame: target, Input: &input})
}

func (c *Client) Inputs(frame int) []core.ControllerInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.inputs(frame)
}

// Disconnect leaves the lobby and stops the connection goroutines.
func (c *Client) Disconnect() {
	c.enqueue(Envelope{Type: MsgLeave})
	c.fail(ErrClosed)
	c.wg.Wait()
}

// fail moves to disconnected and stops the write loop, which closes the
// connection. The first error wins.
func (c *Client) fail(err error) {
	c.mu.Lock()
	if c.state != game.NetplayDisconnected {
		c.state = game.NetplayDisconnected
		c.err = err
		c.logger.Info("netplay disconnected", "err", err)
	}
	c.mu.Unlock()
	c.readyOnce.Do(func() { close(c.ready) })
	c.closer.Do(func() { close(c.done) })
}

func (c *Client) run() {
	c.mu.Lock()
	c.state = game.NetplayRunning
	c.mu.Unlock()
	c.logger.Info("netplay running", "code", c.Code(), "seed", c.Seed())
	c.readyOnce.Do(func() { close(c.ready) })
}

// enqueue never blocks; a full send buffer means the relay stopped reading.
func (c *Client) enqueue(env Envelope) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- env:
	default:
		c.fail(ErrConnectionLost)
	}
}

func (c *Client) readLoop() {
	defer c.wg.Done()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.fail(ErrConnectionLost)
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Warn("malformed message", "err", err)
			continue
		}
		c.handle(env)
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.wg.Done()
	}()

	for {
		select {
		case env := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				c.fail(ErrConnectionLost)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.fail(ErrConnectionLost)
				return
			}

		case <-c.done:
			// Flush a pending leave before closing.
			for len(c.send) > 0 {
				env := <-c.send
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if c.conn.WriteJSON(env) != nil {
					return
				}
			}
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) handle(env Envelope) {
	switch env.Type {
	case MsgCreated:
		select {
		case c.created <- env.Code:
		default:
		}

	case MsgJoined:
		if c.host {
			c.enqueue(Envelope{Type: MsgHello, Seed: c.Seed(), Hash: c.hash})
		}

	case MsgHello:
		if env.Hash != c.hash {
			c.enqueue(Envelope{Type: MsgLeave})
			c.fail(ErrPackageMismatch)
			return
		}
		if !c.host {
			c.mu.Lock()
			c.seed = env.Seed
			c.mu.Unlock()
			c.enqueue(Envelope{Type: MsgHello, Hash: c.hash})
		}
		c.run()

	case MsgInput:
		if env.Input == nil {
			return
		}
		c.mu.Lock()
		c.buf.addRemote(env.Frame, *env.Input)
		c.mu.Unlock()

	case MsgPeerLeft:
		c.fail(ErrPeerLeft)

	case MsgError:
		if env.Error == ErrLobbyNotFound.Error() {
			c.fail(ErrLobbyNotFound)
			return
		}
		c.fail(fmt.Errorf("netplay: relay: %s", env.Error))
	}
}

// IsDisconnect reports whether err ended a netplay session.
func IsDisconnect(err error) bool {
	return errors.Is(err, ErrPeerLeft) || errors.Is(err, ErrConnectionLost) || errors.Is(err, ErrClosed)
}

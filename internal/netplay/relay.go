package netplay

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/brawl-core/internal/config"
)

// RelayConfig holds configuration for the relay.
type RelayConfig struct {
	LobbyTimeout  time.Duration // How long before a lobby without a joiner expires
	CleanupPeriod time.Duration // How often to clean up expired lobbies
	MaxLobbies    int
}

// RelayConfigFrom converts the engine config.
func RelayConfigFrom(cfg config.RelayConfig) RelayConfig {
	out := DefaultRelayConfig()
	if cfg.LobbyTTL > 0 {
		out.LobbyTimeout = time.Duration(cfg.LobbyTTL) * time.Second
	}
	if cfg.MaxLobbies > 0 {
		out.MaxLobbies = cfg.MaxLobbies
	}
	return out
}

// DefaultRelayConfig returns sensible defaults.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		LobbyTimeout:  5 * time.Minute,
		CleanupPeriod: 30 * time.Second,
		MaxLobbies:    256,
	}
}

// lobby is a host waiting for, or paired with, a joiner.
type lobby struct {
	code      string
	host      *peer
	joiner    *peer
	createdAt time.Time
}

func (l *lobby) other(p *peer) *peer {
	if l.host == p {
		return l.joiner
	}
	return l.host
}

// peer is one websocket connection to the relay.
type peer struct {
	id    string
	conn  *websocket.Conn
	send  chan []byte
	done  chan struct{}
	once  sync.Once
	lobby *lobby // guarded by Relay.mu
}

// Send queues data without blocking. A peer that cannot keep up is closed,
// since dropping inputs would desync the match.
func (p *peer) Send(data []byte) {
	select {
	case <-p.done:
		return
	default:
	}
	select {
	case p.send <- data:
	default:
		p.close()
	}
}

func (p *peer) close() {
	p.once.Do(func() {
		close(p.done)
	})
}

// Relay pairs clients in lobbies and forwards messages between them.
type Relay struct {
	config   RelayConfig
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	lobbies map[string]*lobby
	peers   map[*peer]struct{}
	closed  bool

	wg sync.WaitGroup
}

// NewRelay creates a relay. A nil logger discards output.
func NewRelay(cfg RelayConfig, logger *log.Logger) *Relay {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Relay{
		config: cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		lobbies: make(map[string]*lobby),
		peers:   make(map[*peer]struct{}),
	}
}

// Handler returns the relay's HTTP routes.
func (r *Relay) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", r.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "ok lobbies=%d\n", r.LobbyCount())
	})
	return mux
}

// Run expires stale lobbies until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanupExpiredLobbies(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

// Close disconnects every peer and waits for their goroutines to exit.
func (r *Relay) Close() {
	r.mu.Lock()
	r.closed = true
	for p := range r.peers {
		p.close()
		p.conn.Close()
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Relay) serveWS(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	p := &peer{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		conn.Close()
		return
	}
	r.peers[p] = struct{}{}
	r.wg.Add(2)
	r.mu.Unlock()

	r.logger.Debug("peer connected", "peer", p.id, "remote", req.RemoteAddr)

	go r.writePump(p)
	go r.readPump(p)
}

func (r *Relay) readPump(p *peer) {
	defer r.wg.Done()
	defer r.drop(p)

	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.logger.Debug("peer read failed", "peer", p.id, "err", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			r.sendError(p, "malformed message")
			continue
		}
		if env.Type == MsgLeave {
			return
		}
		r.handle(p, env, data)
	}
}

func (r *Relay) writePump(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
		r.wg.Done()
	}()

	for {
		select {
		case data := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-p.done:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (r *Relay) handle(p *peer, env Envelope, raw []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch env.Type {
	case MsgCreate:
		if p.lobby != nil {
			r.sendError(p, "already in a lobby")
			return
		}
		if len(r.lobbies) >= r.config.MaxLobbies {
			r.sendError(p, "relay is full")
			return
		}
		l := &lobby{code: r.generateUniqueCode(), host: p, createdAt: time.Now()}
		r.lobbies[l.code] = l
		p.lobby = l
		r.logger.Info("lobby created", "code", l.code, "host", p.id)
		p.Send(encode(Envelope{Type: MsgCreated, Code: l.code}))

	case MsgJoin:
		if p.lobby != nil {
			r.sendError(p, "already in a lobby")
			return
		}
		l, ok := r.lobbies[strings.ToUpper(env.Code)]
		switch {
		case !ok:
			r.sendError(p, ErrLobbyNotFound.Error())
			return
		case l.joiner != nil:
			r.sendError(p, "lobby is full")
			return
		}
		l.joiner = p
		p.lobby = l
		r.logger.Info("lobby paired", "code", l.code, "host", l.host.id, "joiner", p.id)
		joined := encode(Envelope{Type: MsgJoined, Code: l.code})
		l.host.Send(joined)
		p.Send(joined)

	default:
		// Peer to peer traffic is forwarded untouched.
		if p.lobby == nil || p.lobby.other(p) == nil {
			r.sendError(p, "not paired")
			return
		}
		p.lobby.other(p).Send(raw)
	}
}

// drop removes a disconnected peer and tells its partner.
func (r *Relay) drop(p *peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.peers, p)
	if l := p.lobby; l != nil {
		if other := l.other(p); other != nil {
			other.Send(encode(Envelope{Type: MsgPeerLeft, Code: l.code}))
			other.lobby = nil
		}
		delete(r.lobbies, l.code)
		p.lobby = nil
		r.logger.Info("lobby closed", "code", l.code, "peer", p.id)
	}
	p.close()
}

func (r *Relay) cleanupExpiredLobbies(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for code, l := range r.lobbies {
		// Only expire lobbies without joiners
		if l.joiner == nil && now.Sub(l.createdAt) > r.config.LobbyTimeout {
			r.sendError(l.host, "lobby expired")
			l.host.lobby = nil
			delete(r.lobbies, code)
			r.logger.Info("lobby expired", "code", code)
		}
	}
}

func (r *Relay) sendError(p *peer, msg string) {
	p.Send(encode(Envelope{Type: MsgError, Error: msg}))
}

func (r *Relay) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := r.lobbies[code]; !exists {
			return code
		}
	}
}

// LobbyCount returns the number of open lobbies.
func (r *Relay) LobbyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lobbies)
}

// generateJoinCode creates a 4-character uppercase code.
func generateJoinCode() string {
	b := make([]byte, 3) // 3 bytes base32 encode to 5 chars, we take 4
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based
		return fmt.Sprintf("%04X", time.Now().UnixNano()&0xFFFF)
	}
	return base32.StdEncoding.EncodeToString(b)[:4]
}

func encode(env Envelope) []byte {
	data, err := json.Marshal(env)
	if err != nil {
		// Envelopes hold only plain data.
		panic("netplay: encode: " + err.Error())
	}
	return data
}

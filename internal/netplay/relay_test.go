package netplay

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/brawl-core/internal/config"
)

func startRelay(t *testing.T, cfg RelayConfig) (*Relay, string) {
	t.Helper()
	relay := NewRelay(cfg, nil)
	srv := httptest.NewServer(relay.Handler())
	t.Cleanup(func() {
		srv.Close()
		relay.Close()
	})
	return relay, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dialRaw(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, env Envelope) {
	t.Helper()
	if err := conn.WriteJSON(env); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
}

func expect(t *testing.T, conn *websocket.Conn, typ MsgType) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("ReadJSON() waiting for %s: %v", typ, err)
	}
	if env.Type != typ {
		t.Fatalf("received %s (%q), expected %s", env.Type, env.Error, typ)
	}
	return env
}

// pair opens a lobby with host and joins it with joiner.
func pair(t *testing.T, url string) (host, joiner *websocket.Conn, code string) {
	t.Helper()
	host, joiner = dialRaw(t, url), dialRaw(t, url)
	send(t, host, Envelope{Type: MsgCreate})
	code = expect(t, host, MsgCreated).Code
	if len(code) != 4 {
		t.Errorf("lobby code %q, expected 4 characters", code)
	}
	send(t, joiner, Envelope{Type: MsgJoin, Code: strings.ToLower(code)})
	expect(t, host, MsgJoined)
	expect(t, joiner, MsgJoined)
	return host, joiner, code
}

func TestRelayPairsAndForwards(t *testing.T) {
	relay, url := startRelay(t, DefaultRelayConfig())
	host, joiner, _ := pair(t, url)
	if n := relay.LobbyCount(); n != 1 {
		t.Errorf("LobbyCount() = %d, expected 1", n)
	}

	send(t, host, Envelope{Type: MsgHello, Seed: 42, Hash: "abc"})
	hello := expect(t, joiner, MsgHello)
	if hello.Seed != 42 || hello.Hash != "abc" {
		t.Errorf("forwarded hello = %+v", hello)
	}

	send(t, joiner, Envelope{Type: MsgInput, Frame: 5, Input: &pressA})
	in := expect(t, host, MsgInput)
	if in.Frame != 5 || in.Input == nil || *in.Input != pressA {
		t.Errorf("forwarded input = %+v", in)
	}
}

func TestRelayJoinErrors(t *testing.T) {
	_, url := startRelay(t, DefaultRelayConfig())
	_, _, code := pair(t, url)

	tests := []struct {
		name string
		code string
		want string
	}{
		{"unknown code", "1111", ErrLobbyNotFound.Error()},
		{"full lobby", code, "lobby is full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := dialRaw(t, url)
			send(t, conn, Envelope{Type: MsgJoin, Code: tt.code})
			if got := expect(t, conn, MsgError).Error; got != tt.want {
				t.Errorf("error = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestRelayRejectsUnpairedTraffic(t *testing.T) {
	_, url := startRelay(t, DefaultRelayConfig())
	conn := dialRaw(t, url)
	send(t, conn, Envelope{Type: MsgInput, Frame: 1, Input: &pressA})
	if got := expect(t, conn, MsgError).Error; got != "not paired" {
		t.Errorf("error = %q, expected not paired", got)
	}
}

func TestRelayMaxLobbies(t *testing.T) {
	cfg := DefaultRelayConfig()
	cfg.MaxLobbies = 1
	_, url := startRelay(t, cfg)

	first := dialRaw(t, url)
	send(t, first, Envelope{Type: MsgCreate})
	expect(t, first, MsgCreated)

	second := dialRaw(t, url)
	send(t, second, Envelope{Type: MsgCreate})
	if got := expect(t, second, MsgError).Error; got != "relay is full" {
		t.Errorf("error = %q, expected relay is full", got)
	}
}

func TestRelayPeerLeft(t *testing.T) {
	tests := []struct {
		name  string
		leave func(*websocket.Conn)
	}{
		{"leave message", func(c *websocket.Conn) { c.WriteJSON(Envelope{Type: MsgLeave}) }},
		{"dropped connection", func(c *websocket.Conn) { c.Close() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relay, url := startRelay(t, DefaultRelayConfig())
			host, joiner, _ := pair(t, url)
			tt.leave(joiner)
			expect(t, host, MsgPeerLeft)

			deadline := time.Now().Add(5 * time.Second)
			for relay.LobbyCount() != 0 && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}
			if n := relay.LobbyCount(); n != 0 {
				t.Errorf("LobbyCount() = %d after a peer left, expected 0", n)
			}
		})
	}
}

func TestRelayExpiresLobbies(t *testing.T) {
	cfg := DefaultRelayConfig()
	cfg.LobbyTimeout = time.Minute
	relay, url := startRelay(t, cfg)

	waiting := dialRaw(t, url)
	send(t, waiting, Envelope{Type: MsgCreate})
	expect(t, waiting, MsgCreated)
	pair(t, url)

	relay.cleanupExpiredLobbies(time.Now().Add(30 * time.Second))
	if n := relay.LobbyCount(); n != 2 {
		t.Fatalf("LobbyCount() = %d before the timeout, expected 2", n)
	}

	relay.cleanupExpiredLobbies(time.Now().Add(2 * time.Minute))
	if got := expect(t, waiting, MsgError).Error; got != "lobby expired" {
		t.Errorf("error = %q, expected lobby expired", got)
	}
	if n := relay.LobbyCount(); n != 1 {
		t.Errorf("LobbyCount() = %d, expected only the paired lobby to survive", n)
	}
}

func TestRelayConfigFrom(t *testing.T) {
	got := RelayConfigFrom(config.RelayConfig{LobbyTTL: 90, MaxLobbies: 3})
	if got.LobbyTimeout != 90*time.Second || got.MaxLobbies != 3 {
		t.Errorf("RelayConfigFrom() = %+v", got)
	}
	if got := RelayConfigFrom(config.RelayConfig{}); got != DefaultRelayConfig() {
		t.Errorf("RelayConfigFrom(zero) = %+v, expected defaults", got)
	}
}

func TestGenerateJoinCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := generateJoinCode()
		if len(code) != 4 || strings.ToUpper(code) != code {
			t.Fatalf("generateJoinCode() = %q, expected 4 uppercase characters", code)
		}
		seen[code] = true
	}
	if len(seen) < 40 {
		t.Errorf("generateJoinCode() produced only %d distinct codes in 50 calls", len(seen))
	}
}

package netplay

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/vovakirdan/brawl-core/internal/config"
	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/game"
)

func testOptions(url, hash string) Options {
	return Options{
		URL:         url,
		PackageHash: hash,
		Seed:        77,
		Netplay:     config.NetplayConfig{InputDelay: 2, MaxRollback: 8, MaxLead: 10},
	}
}

// connect pairs a host and a joiner through the relay at url.
func connect(t *testing.T, url, hostHash, joinHash string) (host, joiner *Client, joinErr error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host, err := Host(ctx, testOptions(url, hostHash))
	if err != nil {
		t.Fatalf("Host() error = %v", err)
	}
	t.Cleanup(host.Disconnect)
	if host.LocalController() != 0 {
		t.Errorf("host LocalController() = %d, expected 0", host.LocalController())
	}

	opts := testOptions(url, joinHash)
	opts.Seed = 1
	joiner, err = Join(ctx, opts, host.Code())
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	t.Cleanup(joiner.Disconnect)
	return host, joiner, joiner.Wait(ctx)
}

func TestClientHandshake(t *testing.T) {
	_, url := startRelay(t, DefaultRelayConfig())
	host, joiner, err := connect(t, url, "same", "same")
	if err != nil {
		t.Fatalf("joiner Wait() error = %v", err)
	}
	if err := host.Wait(context.Background()); err != nil {
		t.Fatalf("host Wait() error = %v", err)
	}
	if host.State() != game.NetplayRunning || joiner.State() != game.NetplayRunning {
		t.Errorf("states = %s/%s, expected running", host.State(), joiner.State())
	}
	if joiner.Seed() != 77 {
		t.Errorf("joiner Seed() = %d, expected the host's 77", joiner.Seed())
	}
	if joiner.Code() != host.Code() {
		t.Errorf("joiner Code() = %q, expected %q", joiner.Code(), host.Code())
	}
}

func TestClientPackageMismatch(t *testing.T) {
	_, url := startRelay(t, DefaultRelayConfig())
	_, joiner, err := connect(t, url, "ours", "theirs")
	if !errors.Is(err, ErrPackageMismatch) {
		t.Errorf("joiner Wait() error = %v, expected ErrPackageMismatch", err)
	}
	if joiner.State() != game.NetplayDisconnected {
		t.Errorf("joiner State() = %s, expected disconnected", joiner.State())
	}
}

func TestClientJoinUnknownLobby(t *testing.T) {
	_, url := startRelay(t, DefaultRelayConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Join(ctx, testOptions(url, "h"), "1111")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	defer c.Disconnect()
	if err := c.Wait(ctx); !errors.Is(err, ErrLobbyNotFound) {
		t.Errorf("Wait() error = %v, expected ErrLobbyNotFound", err)
	}
}

func TestClientPeerLeft(t *testing.T) {
	_, url := startRelay(t, DefaultRelayConfig())
	host, joiner, err := connect(t, url, "h", "h")
	if err != nil {
		t.Fatal(err)
	}
	joiner.Disconnect()
	if !errors.Is(joiner.Err(), ErrClosed) {
		t.Errorf("joiner Err() = %v, expected ErrClosed", joiner.Err())
	}

	deadline := time.Now().Add(5 * time.Second)
	for host.State() != game.NetplayDisconnected && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !errors.Is(host.Err(), ErrPeerLeft) || !IsDisconnect(host.Err()) {
		t.Errorf("host Err() = %v, expected ErrPeerLeft", host.Err())
	}
}

func TestClientDialError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Host(ctx, testOptions("ws://127.0.0.1:1/ws", "h")); err == nil {
		t.Error("Host() to a closed port succeeded")
	}
}

func netGame(t *testing.T, pkg *content.Package, np game.Netplay) *game.Game {
	t.Helper()
	rules := content.DefaultRules()
	rules.StockCount = 0
	rules.TimeLimitSeconds = 0
	g, err := game.New(game.Setup{
		Package: pkg,
		Stage:   "battlefield",
		Rules:   rules,
		Players: []game.PlayerSetup{
			{Fighter: "brawler", Team: 0, Controller: 0},
			{Fighter: "brawler", Team: 1, Controller: 1},
		},
		Netplay: np,
	})
	if err != nil {
		t.Fatalf("game.New() error = %v", err)
	}
	return g
}

func confirmed(c *Client) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.confirmed
}

func TestNetplayMatchConverges(t *testing.T) {
	const frames = 180

	pkg, err := content.Default()
	if err != nil {
		t.Fatalf("content.Default() error = %v", err)
	}
	_, url := startRelay(t, DefaultRelayConfig())
	host, joiner, err := connect(t, url, pkg.Hash(), pkg.Hash())
	if err != nil {
		t.Fatal(err)
	}
	if err := host.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	games := []*game.Game{netGame(t, pkg, host), netGame(t, pkg, joiner)}
	if games[0].InitSeed() != games[1].InitSeed() {
		t.Fatalf("init seeds %d and %d differ", games[0].InitSeed(), games[1].InitSeed())
	}
	rngs := []*rand.Rand{rand.New(rand.NewPCG(1, 2)), rand.New(rand.NewPCG(3, 4))}
	controller := func(rng *rand.Rand) core.ControllerInput {
		return core.ControllerInput{
			PluggedIn: true,
			A:         rng.IntN(5) == 0,
			X:         rng.IntN(12) == 0,
			StickX:    float64(rng.IntN(3) - 1),
		}
	}

	// Play past frames until every input up to it is confirmed on both sides.
	done := func() bool {
		return games[0].Frame() > frames+20 && games[1].Frame() > frames+20 &&
			confirmed(host) > frames && confirmed(joiner) > frames
	}
	deadline := time.Now().Add(20 * time.Second)
	for !done() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out at frames %d/%d", games[0].Frame(), games[1].Frame())
		}
		for i, g := range games {
			in := core.ControllerInput{PluggedIn: true}
			if g.Frame() < frames {
				in = controller(rngs[i])
			}
			if s := g.Step([]core.ControllerInput{in}); s != game.StateNetplay {
				t.Fatalf("game %d State() = %s", i, s)
			}
		}
		time.Sleep(time.Millisecond)
	}
	// Apply the last confirmations.
	for _, g := range games {
		g.Step([]core.ControllerInput{{PluggedIn: true}})
	}

	a, b := games[0].Inputs(), games[1].Inputs()
	for f := 1; f <= frames; f++ {
		if !slices.Equal(a[f], b[f]) {
			t.Fatalf("frame %d: inputs differ: %+v vs %+v", f, a[f], b[f])
		}
	}
	for _, g := range games {
		if err := g.JumpFrame(frames); err != nil {
			t.Fatalf("JumpFrame() error = %v", err)
		}
	}
	if games[0].Digest() != games[1].Digest() {
		t.Error("host and joiner simulations diverged")
	}
}

// Package replay saves a finished or interrupted match as the data needed
// to re-simulate it: setup, seed, frame 0 and every controller input.
package replay

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/brawl-core/internal/content"
	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/game"
	"github.com/vovakirdan/brawl-core/internal/sim"
)

// Version is the replay format written by Encode.
const Version = 1

var (
	// ErrCorrupt is returned for data that is not a gzip JSON replay.
	ErrCorrupt = errors.New("replay: corrupt data")
	// ErrUnsupportedVersion is returned for replays written by another format version.
	ErrUnsupportedVersion = errors.New("replay: unsupported version")
	// ErrPackageMismatch is returned when resuming against different content.
	ErrPackageMismatch = errors.New("replay: content package mismatch")
	// ErrDiverged is returned by Verify when re-simulation does not reproduce the match.
	ErrDiverged = errors.New("replay: simulation diverged")
)

// Replay is a recorded match.
type Replay struct {
	Version     int                `json:"version"`
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	PackageHash string             `json:"package_hash"`
	InitSeed    uint64             `json:"init_seed"`
	Stage       string             `json:"stage"`
	Rules       content.Rules      `json:"rules"`
	Players     []game.PlayerSetup `json:"players"`
	// Bots names the bot driving each player, empty for a human.
	Bots          []string          `json:"bots,omitempty"`
	Inputs        core.InputHistory `json:"inputs"`
	StartEntities *sim.Entities     `json:"start_entities"`

	// Frame is the last frame played, Digest the entity digest at that frame.
	Frame   int           `json:"frame"`
	Digest  string        `json:"digest"`
	Results *game.Results `json:"results,omitempty"`
}

// FromGame records g up to its current frame. Inputs after the current
// frame, left over from a rewind, are not kept.
func FromGame(g *game.Game) *Replay {
	inputs := g.Inputs()
	if n := g.Frame() + 1; len(inputs) > n {
		inputs = inputs[:n]
	}
	return &Replay{
		Version:       Version,
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		PackageHash:   g.Package().Hash(),
		InitSeed:      g.InitSeed(),
		Stage:         g.StageKey(),
		Rules:         g.Rules(),
		Players:       g.Players(),
		Inputs:        inputs,
		StartEntities: g.StartEntities(),
		Frame:         g.Frame(),
		Digest:        g.Digest(),
		Results:       g.Results(),
	}
}

// Winner returns the player in first place, if the match finished.
func (r *Replay) Winner() (game.PlayerResult, bool) {
	if r.Results == nil {
		return game.PlayerResult{}, false
	}
	return r.Results.Winner()
}

// Duration is the match length at 60 frames per second.
func (r *Replay) Duration() time.Duration {
	return time.Duration(r.Frame) * time.Second / 60
}

// Encode writes r as gzip compressed JSON.
func (r *Replay) Encode(w io.Writer) error {
	zw := gzip.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(r); err != nil {
		zw.Close()
		return fmt.Errorf("replay: encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("replay: encode: %w", err)
	}
	return nil
}

// Decode reads a replay written by Encode. Nothing is returned unless the
// whole replay decodes.
func Decode(rd io.Reader) (*Replay, error) {
	zr, err := gzip.NewReader(rd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer zr.Close()

	var r Replay
	if err := json.NewDecoder(zr).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if r.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, r.Version)
	}
	if r.StartEntities == nil || len(r.Inputs) == 0 || r.Frame >= len(r.Inputs) {
		return nil, fmt.Errorf("%w: incomplete replay", ErrCorrupt)
	}
	return &r, nil
}

// Resume rebuilds the match at frame 0, ready to re-simulate from the
// recorded input. pkg must be the package the match was played with.
func Resume(r *Replay, pkg *content.Package, logger *log.Logger) (*game.Game, error) {
	if pkg.Hash() != r.PackageHash {
		return nil, ErrPackageMismatch
	}
	g, err := game.New(game.Setup{
		Package:       pkg,
		Stage:         r.Stage,
		Rules:         r.Rules,
		Players:       r.Players,
		InitSeed:      r.InitSeed,
		State:         game.StateReplayForwardsFromInput,
		Inputs:        r.Inputs,
		StartEntities: r.StartEntities,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("replay: resume: %w", err)
	}
	return g, nil
}

// Verify re-simulates r and checks that it reaches the recorded final frame
// with the recorded digest and results.
func Verify(r *Replay, pkg *content.Package) error {
	g, err := Resume(r, pkg, nil)
	if err != nil {
		return err
	}
	g.Run()
	if g.Frame() != r.Frame {
		return fmt.Errorf("%w: stopped at frame %d, recorded %d", ErrDiverged, g.Frame(), r.Frame)
	}
	if d := g.Digest(); d != r.Digest {
		return fmt.Errorf("%w: frame %d digest %.12s, recorded %.12s", ErrDiverged, r.Frame, d, r.Digest)
	}
	if !sameResults(g.Results(), r.Results) {
		return fmt.Errorf("%w: results differ", ErrDiverged)
	}
	return nil
}

func sameResults(a, b *game.Results) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Frame != b.Frame || a.TimeOut != b.TimeOut || len(a.Players) != len(b.Players) {
		return false
	}
	for i := range a.Players {
		if a.Players[i] != b.Players[i] {
			return false
		}
	}
	return true
}

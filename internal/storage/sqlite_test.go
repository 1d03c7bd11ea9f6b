package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/brawl-core/internal/core"
	"github.com/vovakirdan/brawl-core/internal/game"
	"github.com/vovakirdan/brawl-core/internal/replay"
	"github.com/vovakirdan/brawl-core/internal/sim"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// testReplay builds a small replay; finished replays carry results with
// winner in first place.
func testReplay(at time.Time, winner string, finished bool) *replay.Replay {
	r := &replay.Replay{
		Version:   replay.Version,
		ID:        uuid.NewString(),
		Timestamp: at,
		InitSeed:  42,
		Stage:     "battlefield",
		Players: []game.PlayerSetup{
			{Fighter: winner, Team: 0, Controller: 0},
			{Fighter: "brawler", Team: 1, Controller: 1},
		},
		Inputs:        core.InputHistory{nil, {{PluggedIn: true}, {PluggedIn: true}}},
		StartEntities: &sim.Entities{},
		Frame:         1,
		Digest:        "abc",
	}
	if finished {
		r.Results = &game.Results{
			Frame: 1,
			Players: []game.PlayerResult{
				{Player: 0, Fighter: winner, Place: 1, Kills: 3, Deaths: 1, FinalDamage: 40},
				{Player: 1, Fighter: "brawler", Place: 2, Kills: 1, Deaths: 3, FinalDamage: 120},
			},
		}
	}
	return r
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndLoadReplay(t *testing.T) {
	store := openTestStore(t)
	r := testReplay(time.Now(), "ninja", true)

	if err := store.SaveReplay(r); err != nil {
		t.Fatalf("SaveReplay() failed: %v", err)
	}

	got, err := store.LoadReplay(r.ID)
	if err != nil {
		t.Fatalf("LoadReplay() failed: %v", err)
	}
	if got.ID != r.ID || got.InitSeed != 42 || got.Frame != 1 || got.Digest != "abc" {
		t.Errorf("LoadReplay() = %+v, expected the saved replay", got)
	}

	// Prefixes resolve to the full id
	got, err = store.LoadReplay(r.ID[:8])
	if err != nil || got.ID != r.ID {
		t.Errorf("LoadReplay(prefix) = %v, %v, expected %s", got, err, r.ID)
	}

	results, err := store.MatchResults(r.ID)
	if err != nil {
		t.Fatalf("MatchResults() failed: %v", err)
	}
	if len(results) != 2 || results[0].Fighter != "ninja" || results[0].Placing != 1 {
		t.Errorf("MatchResults() = %+v, expected ninja first", results)
	}
}

func TestStoreLoadReplayErrors(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.LoadReplay("missing"); !errors.Is(err, ErrReplayNotFound) {
		t.Errorf("LoadReplay(missing) error = %v, expected ErrReplayNotFound", err)
	}
	if _, err := store.LoadReplay(""); !errors.Is(err, ErrReplayNotFound) {
		t.Errorf("LoadReplay(\"\") error = %v, expected ErrReplayNotFound", err)
	}

	a := testReplay(time.Now(), "brawler", false)
	b := testReplay(time.Now(), "brawler", false)
	a.ID = "aaaa-1"
	b.ID = "aaaa-2"
	for _, r := range []*replay.Replay{a, b} {
		if err := store.SaveReplay(r); err != nil {
			t.Fatalf("SaveReplay() failed: %v", err)
		}
	}
	if _, err := store.LoadReplay("aaaa"); !errors.Is(err, ErrAmbiguousID) {
		t.Errorf("LoadReplay(shared prefix) error = %v, expected ErrAmbiguousID", err)
	}
	if err := store.SaveReplay(a); err == nil {
		t.Error("SaveReplay() with a duplicate id succeeded")
	}
}

func TestStoreListReplays(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		r := testReplay(base.Add(time.Duration(i)*time.Minute), "brawler", i%2 == 0)
		if err := store.SaveReplay(r); err != nil {
			t.Fatalf("SaveReplay() failed: %v", err)
		}
	}

	infos, err := store.ListReplays(3)
	if err != nil {
		t.Fatalf("ListReplays() failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 replays with limit, got %d", len(infos))
	}
	// Newest first
	if !infos[0].CreatedAt.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("infos[0].CreatedAt = %v, expected %v", infos[0].CreatedAt, base.Add(4*time.Minute))
	}
	if infos[0].Winner != "brawler" || infos[1].Winner != "" {
		t.Errorf("winners = %q, %q, expected brawler then unfinished", infos[0].Winner, infos[1].Winner)
	}
	if infos[0].Players != 2 || infos[0].Seed != 42 || infos[0].Stage != "battlefield" {
		t.Errorf("infos[0] = %+v, expected the saved metadata", infos[0])
	}
}

func TestStoreDeleteReplay(t *testing.T) {
	store := openTestStore(t)
	r := testReplay(time.Now(), "ninja", true)
	if err := store.SaveReplay(r); err != nil {
		t.Fatalf("SaveReplay() failed: %v", err)
	}

	if err := store.DeleteReplay(r.ID); err != nil {
		t.Fatalf("DeleteReplay() failed: %v", err)
	}
	if _, err := store.LoadReplay(r.ID); !errors.Is(err, ErrReplayNotFound) {
		t.Errorf("LoadReplay() after delete error = %v, expected ErrReplayNotFound", err)
	}
	if results, _ := store.MatchResults(r.ID); len(results) != 0 {
		t.Errorf("MatchResults() after delete = %d rows, expected 0", len(results))
	}
	if err := store.DeleteReplay(r.ID); !errors.Is(err, ErrReplayNotFound) {
		t.Errorf("DeleteReplay() twice error = %v, expected ErrReplayNotFound", err)
	}
}

func TestStorePlayerStats(t *testing.T) {
	store := openTestStore(t)

	// Empty fighter
	stats, err := store.PlayerStats("ninja")
	if err != nil {
		t.Fatalf("PlayerStats() failed: %v", err)
	}
	if stats.Matches != 0 || stats.Fighter != "ninja" {
		t.Errorf("PlayerStats() on empty db = %+v", stats)
	}

	for i := 0; i < 2; i++ {
		if err := store.SaveReplay(testReplay(time.Now(), "ninja", true)); err != nil {
			t.Fatalf("SaveReplay() failed: %v", err)
		}
	}
	// An unrecorded match
	res := &game.Results{Players: []game.PlayerResult{
		{Player: 0, Fighter: "ninja", Place: 2, Kills: 0, Deaths: 4, FinalDamage: 10},
	}}
	if err := store.SaveMatchResults("", res); err != nil {
		t.Fatalf("SaveMatchResults() failed: %v", err)
	}

	stats, err = store.PlayerStats("ninja")
	if err != nil {
		t.Fatalf("PlayerStats() failed: %v", err)
	}
	if stats.Matches != 3 || stats.Wins != 2 || stats.Kills != 6 || stats.Deaths != 6 {
		t.Errorf("PlayerStats() = %+v, expected 3 matches, 2 wins, 6 kills, 6 deaths", stats)
	}
	if stats.AvgDamage != 30 {
		t.Errorf("AvgDamage = %v, expected 30", stats.AvgDamage)
	}
	if stats.KillDeathRatio() != 1 {
		t.Errorf("KillDeathRatio() = %v, expected 1", stats.KillDeathRatio())
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed is zero")
	}

	all, err := store.AllPlayerStats()
	if err != nil {
		t.Fatalf("AllPlayerStats() failed: %v", err)
	}
	if len(all) != 2 || all["brawler"].Matches != 2 || all["brawler"].Wins != 0 {
		t.Errorf("AllPlayerStats() = %v, expected ninja and brawler", all)
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestExpandHomePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"brawl.db", "brawl.db"},
		{"/var/brawl.db", "/var/brawl.db"},
		{"~/.brawl/brawl.db", filepath.Join(home, ".brawl", "brawl.db")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandHomePath(tt.in)
			if err != nil {
				t.Fatalf("ExpandHomePath(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ExpandHomePath(%q) = %q, expected %q", tt.in, got, tt.want)
			}
		})
	}
}

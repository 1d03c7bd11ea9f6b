// Package storage provides SQLite-based persistence for replays and match results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/brawl-core/internal/game"
	"github.com/vovakirdan/brawl-core/internal/replay"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	// ErrReplayNotFound is returned when no stored replay matches an id.
	ErrReplayNotFound = errors.New("storage: replay not found")
	// ErrAmbiguousID is returned when an id prefix matches several replays.
	ErrAmbiguousID = errors.New("storage: ambiguous replay id")
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ReplayInfo summarises a stored replay without decoding it.
type ReplayInfo struct {
	ID        string
	Stage     string
	Frames    int
	Seed      uint64
	Players   int
	Winner    string // fighter in first place, empty if unfinished
	CreatedAt time.Time
}

// MatchResult is one player's stored result.
type MatchResult struct {
	ID        int64
	ReplayID  string // empty for matches that were not recorded
	Player    int
	Fighter   string
	Placing   int
	Kills     int
	Deaths    int
	Damage    float64
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := ExpandHomePath(dbPath)
	if err != nil {
		return nil, err
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// ExpandHomePath replaces a leading ~ with the user's home directory.
func ExpandHomePath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS replays (
			id TEXT PRIMARY KEY,
			stage TEXT NOT NULL,
			frames INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			players INTEGER NOT NULL,
			winner TEXT NOT NULL DEFAULT '',
			data BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_replays_created ON replays(created_at DESC);

		CREATE TABLE IF NOT EXISTS match_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			replay_id TEXT,
			player INTEGER NOT NULL,
			fighter TEXT NOT NULL,
			placing INTEGER NOT NULL,
			kills INTEGER NOT NULL DEFAULT 0,
			deaths INTEGER NOT NULL DEFAULT 0,
			damage REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_match_results_fighter ON match_results(fighter);
		CREATE INDEX IF NOT EXISTS idx_match_results_replay ON match_results(replay_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// SaveReplay stores r and, if the match finished, its results.
func (s *Store) SaveReplay(r *replay.Replay) error {
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		return fmt.Errorf("storage: cannot save replay: %w", err)
	}
	winner := ""
	if w, ok := r.Winner(); ok {
		winner = w.Fighter
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot save replay: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO replays (id, stage, frames, seed, players, winner, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Stage, r.Frame, int64(r.InitSeed), len(r.Players), winner, buf.Bytes(),
		r.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save replay: %w", err)
	}
	if r.Results != nil {
		if err := saveResults(tx, r.ID, r.Results, r.Timestamp); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot save replay: %w", err)
	}
	return nil
}

// ResolveID expands an id prefix to the full id of a stored replay.
func (s *Store) ResolveID(prefix string) (string, error) {
	rows, err := s.db.Query(`SELECT id FROM replays WHERE id LIKE ? || '%' LIMIT 2`, prefix)
	if err != nil {
		return "", fmt.Errorf("storage: cannot query replays: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("storage: cannot scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("storage: row iteration error: %w", err)
	}

	switch {
	case prefix == "" || len(ids) == 0:
		return "", fmt.Errorf("%w: %s", ErrReplayNotFound, prefix)
	case len(ids) > 1:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
	return ids[0], nil
}

// LoadReplay decodes the replay with the given id or id prefix.
func (s *Store) LoadReplay(id string) (*replay.Replay, error) {
	full, err := s.ResolveID(id)
	if err != nil {
		return nil, err
	}
	var data []byte
	err = s.db.QueryRow(`SELECT data FROM replays WHERE id = ?`, full).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrReplayNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replay: %w", err)
	}
	r, err := replay.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("storage: replay %s: %w", full, err)
	}
	return r, nil
}

// ListReplays returns the most recent replays first.
func (s *Store) ListReplays(limit int) ([]ReplayInfo, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, stage, frames, seed, players, winner, created_at
		 FROM replays
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replays: %w", err)
	}
	defer rows.Close()

	var infos []ReplayInfo
	for rows.Next() {
		var info ReplayInfo
		var seed int64
		var createdAt any
		if err := rows.Scan(&info.ID, &info.Stage, &info.Frames, &seed, &info.Players, &info.Winner, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		info.Seed = uint64(seed)
		info.CreatedAt = parseTime(createdAt)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return infos, nil
}

// DeleteReplay removes a replay and its results.
func (s *Store) DeleteReplay(id string) error {
	full, err := s.ResolveID(id)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot delete replay: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM match_results WHERE replay_id = ?", full); err != nil {
		return fmt.Errorf("storage: cannot delete results: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM replays WHERE id = ?", full); err != nil {
		return fmt.Errorf("storage: cannot delete replay: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot delete replay: %w", err)
	}
	return nil
}

// SaveMatchResults records the results of a match. replayID may be empty
// for a match that was not recorded.
func (s *Store) SaveMatchResults(replayID string, res *game.Results) error {
	if res == nil {
		return nil
	}
	return saveResults(s.db, replayID, res, time.Now())
}

func saveResults(db execer, replayID string, res *game.Results, at time.Time) error {
	var rid any
	if replayID != "" {
		rid = replayID
	}
	for _, p := range res.Players {
		_, err := db.Exec(
			`INSERT INTO match_results
			 (replay_id, player, fighter, placing, kills, deaths, damage, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rid, p.Player, p.Fighter, p.Place, p.Kills, p.Deaths, p.FinalDamage,
			at.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("storage: cannot save match result: %w", err)
		}
	}
	return nil
}

// MatchResults returns the stored results of a replay ordered by placing.
func (s *Store) MatchResults(replayID string) ([]MatchResult, error) {
	rows, err := s.db.Query(
		`SELECT id, COALESCE(replay_id, ''), player, fighter, placing, kills, deaths, damage, created_at
		 FROM match_results
		 WHERE replay_id = ?
		 ORDER BY placing, player`,
		replayID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match results: %w", err)
	}
	defer rows.Close()

	var results []MatchResult
	for rows.Next() {
		var r MatchResult
		var createdAt any
		if err := rows.Scan(&r.ID, &r.ReplayID, &r.Player, &r.Fighter, &r.Placing, &r.Kills, &r.Deaths, &r.Damage, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// FighterStats contains aggregated results for a fighter.
type FighterStats struct {
	Fighter    string
	Matches    int
	Wins       int
	Kills      int
	Deaths     int
	AvgDamage  float64
	AvgPlacing float64
	LastPlayed time.Time
}

// KillDeathRatio returns kills per death, or kills when there were no deaths.
func (f *FighterStats) KillDeathRatio() float64 {
	if f.Deaths == 0 {
		return float64(f.Kills)
	}
	return float64(f.Kills) / float64(f.Deaths)
}

const statsColumns = `fighter, COUNT(*), COALESCE(SUM(placing = 1), 0), COALESCE(SUM(kills), 0),
	COALESCE(SUM(deaths), 0), COALESCE(AVG(damage), 0), COALESCE(AVG(placing), 0), MAX(created_at)`

// PlayerStats retrieves aggregated statistics for a fighter.
func (s *Store) PlayerStats(fighter string) (*FighterStats, error) {
	stats := &FighterStats{Fighter: fighter}
	var name sql.NullString
	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT `+statsColumns+` FROM match_results WHERE fighter = ?`,
		fighter,
	).Scan(&name, &stats.Matches, &stats.Wins, &stats.Kills, &stats.Deaths, &stats.AvgDamage, &stats.AvgPlacing, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get player stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)
	return stats, nil
}

// AllPlayerStats retrieves statistics for every fighter that has results.
func (s *Store) AllPlayerStats() (map[string]*FighterStats, error) {
	rows, err := s.db.Query(`SELECT ` + statsColumns + ` FROM match_results GROUP BY fighter`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all player stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*FighterStats)
	for rows.Next() {
		var f FighterStats
		var lastPlayed any
		if err := rows.Scan(&f.Fighter, &f.Matches, &f.Wins, &f.Kills, &f.Deaths, &f.AvgDamage, &f.AvgPlacing, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		f.LastPlayed = parseTime(lastPlayed)
		stats[f.Fighter] = &f
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// parseTime handles the driver returning either time.Time or string.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse(timeLayout, v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

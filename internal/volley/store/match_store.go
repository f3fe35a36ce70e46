package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/msto63/rallyscore/internal/volley/domain"
	"github.com/msto63/rallyscore/internal/volley/match"
	"github.com/msto63/rallyscore/pkg/core/apperror"
)

// Match is a persisted match session
type Match struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	AwayName  string           `json:"awayName"`
	HomeName  string           `json:"homeName"`
	State     match.MatchState `json:"state"`
	Rallies   int              `json:"rallies"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// RallyRecord is one accepted rally together with the state after it
type RallyRecord struct {
	MatchID   string           `json:"matchId"`
	Seq       int              `json:"seq"`
	Notation  string           `json:"notation"`
	PointTo   domain.Team      `json:"pointTo"`
	Verdict   json.RawMessage  `json:"verdict,omitempty"`
	State     match.MatchState `json:"state"`
	CreatedAt time.Time        `json:"createdAt"`
}

// MatchStore defines the interface for match persistence
type MatchStore interface {
	// Match operations
	CreateMatch(ctx context.Context, m *Match) error
	GetMatch(ctx context.Context, id string) (*Match, error)
	ListMatches(ctx context.Context, limit, offset int) ([]*Match, error)
	DeleteMatch(ctx context.Context, id string) error

	// Rally operations
	AppendRally(ctx context.Context, rec *RallyRecord) error
	ListRallies(ctx context.Context, matchID string) ([]*RallyRecord, error)
	PopRally(ctx context.Context, matchID string) (match.MatchState, error)

	// Utility
	Close() error
}

// ErrNoRallies is returned by PopRally for a match without rallies
var ErrNoRallies = apperror.New("match has no rallies").WithCode(apperror.CodeInvalidInput)

// SQLiteMatchStore implements MatchStore using SQLite
type SQLiteMatchStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultConfig returns default configuration
func DefaultConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/rallyscore.db",
	}
}

// NewSQLiteMatchStore opens (and creates if needed) the match database
func NewSQLiteMatchStore(cfg SQLiteConfig) (*SQLiteMatchStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, dbError(err, "failed to create directory")
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, dbError(err, "failed to open database")
	}

	store := &SQLiteMatchStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize schema")
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteMatchStore) initSchema() error {
	schema := `
	-- Matches table
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		away_name TEXT NOT NULL DEFAULT '',
		home_name TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Rallies table
	CREATE TABLE IF NOT EXISTS rallies (
		match_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		notation TEXT NOT NULL,
		point_to TEXT NOT NULL,
		verdict TEXT,
		state TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (match_id, seq),
		FOREIGN KEY (match_id) REFERENCES matches(id) ON DELETE CASCADE
	);

	-- Indices
	CREATE INDEX IF NOT EXISTS idx_matches_updated ON matches(updated_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

func dbError(err error, msg string) error {
	return apperror.Wrap(err, msg).WithCode(apperror.CodeDatabaseError)
}

func notFound(id string) error {
	return apperror.Newf("match not found: %s", id).
		WithCode(apperror.CodeNotFound).
		WithDetail("match_id", id)
}

// CreateMatch creates a new match
func (s *SQLiteMatchStore) CreateMatch(ctx context.Context, m *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		return apperror.New("match ID is required").WithCode(apperror.CodeInvalidInput)
	}

	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	stateJSON, err := json.Marshal(m.State)
	if err != nil {
		return fmt.Errorf("failed to encode match state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO matches (id, name, away_name, home_name, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.AwayName, m.HomeName, string(stateJSON), m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return dbError(err, "failed to create match")
	}

	return nil
}

const matchColumns = `
	SELECT m.id, m.name, m.away_name, m.home_name, m.state, m.created_at, m.updated_at,
		(SELECT COUNT(*) FROM rallies r WHERE r.match_id = m.id)
	FROM matches m`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row scanner) (*Match, error) {
	var m Match
	var stateJSON string
	if err := row.Scan(&m.ID, &m.Name, &m.AwayName, &m.HomeName, &stateJSON, &m.CreatedAt, &m.UpdatedAt, &m.Rallies); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(stateJSON), &m.State); err != nil {
		return nil, fmt.Errorf("failed to decode match state: %w", err)
	}
	return &m, nil
}

// GetMatch retrieves a match by ID
func (s *SQLiteMatchStore) GetMatch(ctx context.Context, id string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := scanMatch(s.db.QueryRowContext(ctx, matchColumns+` WHERE m.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, dbError(err, "failed to get match")
	}
	return m, nil
}

// ListMatches returns matches ordered by last update
func (s *SQLiteMatchStore) ListMatches(ctx context.Context, limit, offset int) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, matchColumns+`
		ORDER BY m.updated_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, dbError(err, "failed to list matches")
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, dbError(err, "failed to scan match")
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// DeleteMatch deletes a match and its rallies
func (s *SQLiteMatchStore) DeleteMatch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return dbError(err, "failed to delete match")
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return notFound(id)
	}
	return nil
}

// AppendRally stores a rally as the next in sequence and makes its state
// the current match state
func (s *SQLiteMatchStore) AppendRally(ctx context.Context, rec *RallyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	stateJSON, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("failed to encode match state: %w", err)
	}
	pointTo, err := rec.PointTo.MarshalText()
	if err != nil {
		return apperror.Wrap(err, "invalid rally").WithCode(apperror.CodeInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	// Update match state first so a missing match is detected
	result, err := tx.ExecContext(ctx, `
		UPDATE matches SET state = ?, updated_at = ? WHERE id = ?
	`, string(stateJSON), rec.CreatedAt, rec.MatchID)
	if err != nil {
		return dbError(err, "failed to update match state")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return notFound(rec.MatchID)
	}

	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM rallies WHERE match_id = ?
	`, rec.MatchID).Scan(&rec.Seq); err != nil {
		return dbError(err, "failed to allocate rally sequence")
	}

	var verdict interface{}
	if len(rec.Verdict) > 0 {
		verdict = string(rec.Verdict)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rallies (match_id, seq, notation, point_to, verdict, state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.MatchID, rec.Seq, rec.Notation, string(pointTo), verdict, string(stateJSON), rec.CreatedAt)
	if err != nil {
		return dbError(err, "failed to add rally")
	}

	if err := tx.Commit(); err != nil {
		return dbError(err, "failed to commit rally")
	}
	return nil
}

// ListRallies returns the rallies of a match in play order
func (s *SQLiteMatchStore) ListRallies(ctx context.Context, matchID string) ([]*RallyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT match_id, seq, notation, point_to, verdict, state, created_at
		FROM rallies
		WHERE match_id = ?
		ORDER BY seq ASC
	`, matchID)
	if err != nil {
		return nil, dbError(err, "failed to list rallies")
	}
	defer rows.Close()

	var rallies []*RallyRecord
	for rows.Next() {
		var rec RallyRecord
		var pointTo, stateJSON string
		var verdict sql.NullString

		if err := rows.Scan(&rec.MatchID, &rec.Seq, &rec.Notation, &pointTo, &verdict, &stateJSON, &rec.CreatedAt); err != nil {
			return nil, dbError(err, "failed to scan rally")
		}
		if err := rec.PointTo.UnmarshalText([]byte(pointTo)); err != nil {
			return nil, dbError(err, "failed to decode rally")
		}
		if err := json.Unmarshal([]byte(stateJSON), &rec.State); err != nil {
			return nil, dbError(err, "failed to decode rally state")
		}
		if verdict.Valid {
			rec.Verdict = json.RawMessage(verdict.String)
		}
		rallies = append(rallies, &rec)
	}

	return rallies, rows.Err()
}

// PopRally removes the last rally of a match and restores the state before
// it. It returns the restored state.
func (s *SQLiteMatchStore) PopRally(ctx context.Context, matchID string) (match.MatchState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return match.MatchState{}, dbError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE id = ?`, matchID).Scan(&exists); err != nil {
		return match.MatchState{}, dbError(err, "failed to look up match")
	}
	if exists == 0 {
		return match.MatchState{}, notFound(matchID)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM rallies
		WHERE match_id = ? AND seq = (SELECT MAX(seq) FROM rallies WHERE match_id = ?)
	`, matchID, matchID)
	if err != nil {
		return match.MatchState{}, dbError(err, "failed to delete rally")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return match.MatchState{}, ErrNoRallies
	}

	state := match.New()
	var stateJSON string
	err = tx.QueryRowContext(ctx, `
		SELECT state FROM rallies WHERE match_id = ? ORDER BY seq DESC LIMIT 1
	`, matchID).Scan(&stateJSON)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// back to the opening state
	case err != nil:
		return match.MatchState{}, dbError(err, "failed to read previous state")
	default:
		if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
			return match.MatchState{}, dbError(err, "failed to decode previous state")
		}
	}

	encoded, err := json.Marshal(state)
	if err != nil {
		return match.MatchState{}, fmt.Errorf("failed to encode match state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE matches SET state = ?, updated_at = ? WHERE id = ?
	`, string(encoded), time.Now().UTC(), matchID); err != nil {
		return match.MatchState{}, dbError(err, "failed to restore match state")
	}

	if err := tx.Commit(); err != nil {
		return match.MatchState{}, dbError(err, "failed to commit undo")
	}
	return state, nil
}

// Ping checks that the database answers
func (s *SQLiteMatchStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return dbError(err, "database unreachable")
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteMatchStore) Close() error {
	return s.db.Close()
}

// Statistics returns store statistics
func (s *SQLiteMatchStore) Statistics(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches, finished, rallies int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&matches); err != nil {
		return nil, dbError(err, "failed to count matches")
	}
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM matches WHERE json_extract(state, '$.status') = 'Finished'
	`).Scan(&finished); err != nil {
		return nil, dbError(err, "failed to count finished matches")
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rallies`).Scan(&rallies); err != nil {
		return nil, dbError(err, "failed to count rallies")
	}

	return map[string]interface{}{
		"total_matches":    matches,
		"finished_matches": finished,
		"total_rallies":    rallies,
	}, nil
}

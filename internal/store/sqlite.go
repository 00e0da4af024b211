package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ashureev/adaptutor/internal/domain"
	"github.com/ashureev/adaptutor/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	sessionMu sync.Mutex // Serializes session writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		history_json TEXT NOT NULL DEFAULT '[]',
		total_messages INTEGER NOT NULL DEFAULT 0,
		topics_json TEXT NOT NULL DEFAULT '[]',
		difficulty TEXT NOT NULL DEFAULT 'beginner',
		understanding_score INTEGER NOT NULL DEFAULT 0,
		last_interaction INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_interaction ON sessions(last_interaction);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSession retrieves a session record by its identifier.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	query := `
		SELECT session_id, history_json, total_messages, topics_json,
		       difficulty, understanding_score, last_interaction, created_at
		FROM sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)

	var state domain.SessionState
	var historyJSON, topicsJSON string

	err := row.Scan(
		&state.SessionID, &historyJSON, &state.Metrics.TotalMessages, &topicsJSON,
		&state.Metrics.DifficultyLevel, &state.Metrics.UnderstandingScore,
		&state.Metrics.LastInteraction, &state.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	if err := json.Unmarshal([]byte(historyJSON), &state.History); err != nil {
		return nil, fmt.Errorf("decode session history: %w", err)
	}
	if err := json.Unmarshal([]byte(topicsJSON), &state.Metrics.TopicsDiscussed); err != nil {
		return nil, fmt.Errorf("decode session topics: %w", err)
	}

	return &state, nil
}

// UpsertSession creates or replaces a session record.
// Retries with exponential backoff when SQLite reports write contention.
func (s *SQLiteStore) UpsertSession(ctx context.Context, state *domain.SessionState) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.upsertSessionOnce(ctx, state)
		if err == nil {
			return nil
		}

		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i) // 100ms, 200ms, 400ms
			slog.Debug("UpsertSession hit SQLITE_BUSY, retrying",
				"session_id", state.SessionID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}
		break
	}

	return fmt.Errorf("upsert session %s: %w", state.SessionID, err)
}

func (s *SQLiteStore) upsertSessionOnce(ctx context.Context, state *domain.SessionState) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	historyJSON, err := json.Marshal(state.History)
	if err != nil {
		return fmt.Errorf("encode session history: %w", err)
	}
	topicsJSON, err := json.Marshal(state.Metrics.TopicsDiscussed)
	if err != nil {
		return fmt.Errorf("encode session topics: %w", err)
	}

	query := `
		INSERT INTO sessions (
			session_id, history_json, total_messages, topics_json,
			difficulty, understanding_score, last_interaction, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			history_json = excluded.history_json,
			total_messages = excluded.total_messages,
			topics_json = excluded.topics_json,
			difficulty = excluded.difficulty,
			understanding_score = excluded.understanding_score,
			last_interaction = excluded.last_interaction`

	_, err = s.db.ExecContext(ctx, query,
		state.SessionID, string(historyJSON), state.Metrics.TotalMessages, string(topicsJSON),
		string(state.Metrics.DifficultyLevel), state.Metrics.UnderstandingScore,
		state.Metrics.LastInteraction, state.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("exec upsert: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

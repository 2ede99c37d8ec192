package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/trello-bridge/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB

	// runID tags rows written during this process lifetime so that
	// operators can correlate database state with log output.
	runID string
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, runID: uuid.New().String()}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RunID returns the correlation id written with rows from this process.
func (s *SQLiteStore) RunID() string {
	return s.runID
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SaveMapping persists a thread↔card identity pair. Saving the same
// pair twice is a no-op; saving a conflicting pair for either side
// fails on the table's uniqueness constraints.
func (s *SQLiteStore) SaveMapping(ctx context.Context, m model.Mapping) error {
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mappings (thread_id, card_id, card_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(thread_id) DO NOTHING`,
		m.ThreadID, m.CardID, m.CardName, createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving mapping %s→%s: %w", m.ThreadID, m.CardID, err)
	}
	return nil
}

// GetMappings retrieves all persisted identity mappings, oldest first.
func (s *SQLiteStore) GetMappings(ctx context.Context) ([]model.Mapping, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT thread_id, card_id, card_name, created_at FROM mappings ORDER BY created_at",
	)
	if err != nil {
		return nil, fmt.Errorf("querying mappings: %w", err)
	}
	defer rows.Close()

	var mappings []model.Mapping
	for rows.Next() {
		var m model.Mapping
		if err := rows.StructScan(&m); err != nil {
			return nil, fmt.Errorf("scanning mapping row: %w", err)
		}
		mappings = append(mappings, m)
	}

	return mappings, rows.Err()
}

// MarkActionProcessed records a change-action id as handled. Marking
// the same id twice is a no-op.
func (s *SQLiteStore) MarkActionProcessed(ctx context.Context, actionID, actionType, cardID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processed_actions (id, action_type, card_id, run_id, processed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		actionID, actionType, cardID, s.runID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("marking action %s processed: %w", actionID, err)
	}
	return nil
}

// RecentProcessedActionIDs returns up to limit of the most recently
// processed action ids, newest first. Used to warm the in-memory
// dedupe set at startup.
func (s *SQLiteStore) RecentProcessedActionIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id FROM processed_actions ORDER BY processed_at DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying processed actions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning processed action row: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// PruneProcessedActions deletes all but the newest keep rows.
func (s *SQLiteStore) PruneProcessedActions(ctx context.Context, keep int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM processed_actions WHERE id NOT IN (
			SELECT id FROM processed_actions ORDER BY processed_at DESC LIMIT ?
		)`, keep,
	)
	if err != nil {
		return fmt.Errorf("pruning processed actions: %w", err)
	}
	return nil
}

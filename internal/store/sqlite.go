package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/careboard/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
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

// RecordActivity stores a notification in the activity log.
func (s *SQLiteStore) RecordActivity(ctx context.Context, n model.Notification) error {
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity (id, notification_id, message, type, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), n.ID, n.Message, string(n.Type), createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}

	return nil
}

// GetActivity retrieves activity entries, newest first.
func (s *SQLiteStore) GetActivity(
	ctx context.Context,
	filter ActivityFilter,
) ([]model.Activity, error) {
	var conditions []string
	var args []interface{}

	if filter.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, string(*filter.Type))
	}
	if filter.Since != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	query := "SELECT id, notification_id, message, type, created_at FROM activity"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var entries []model.Activity
	if err := s.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}

	return entries, nil
}

// PruneActivity deletes entries created before the given time and returns
// how many were removed.
func (s *SQLiteStore) PruneActivity(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM activity WHERE created_at < ?", before.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning activity: %w", err)
	}
	return res.RowsAffected()
}

// Recorder adapts a Store to the notification queue's recorder hook.
// Write failures are logged and never block the queue.
type Recorder struct {
	Store   Store
	Timeout time.Duration
}

// Record persists n, logging any failure.
func (r Recorder) Record(n model.Notification) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := r.Store.RecordActivity(ctx, n); err != nil {
		log.Printf("recording notification %d: %v", n.ID, err)
	}
}

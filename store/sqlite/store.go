package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/digigate"
	digigatestore "github.com/xraph/digigate/store"
)

// compile-time interface check
var _ digigatestore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("digigate/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("digigate/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	m := new(recordModel)
	err := s.sdb.NewSelect(m).
		Where("record_key = ?", key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, digigate.ErrRecordNotFound
		}
		return nil, fmt.Errorf("digigate/sqlite: get %s: %w", key, err)
	}
	return []byte(m.Value), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	m := toRecordModel(key, value)
	_, err := s.sdb.NewInsert(m).
		OnConflict("(record_key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("digigate/sqlite: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.sdb.NewDelete((*recordModel)(nil)).
		Where("record_key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("digigate/sqlite: delete %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys with the given prefix.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	var models []recordModel
	err := s.sdb.NewSelect(&models).
		Where("record_key LIKE ?", prefix+"%").
		OrderExpr("record_key ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("digigate/sqlite: list keys: %w", err)
	}
	keys := make([]string, len(models))
	for i := range models {
		keys[i] = models[i].Key
	}
	return keys, nil
}

// ==================== Helpers ====================

func now() time.Time {
	return time.Now().UTC()
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

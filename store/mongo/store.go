package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/digigate"
	digigatestore "github.com/xraph/digigate/store"
)

// Collection name constants.
const (
	colRecords = "digigate_records"
)

// compile-time interface check
var _ digigatestore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all digigate collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("digigate/mongo: migrate %s indexes: %w", col, err)
		}
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
	var m recordModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": key}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, digigate.ErrRecordNotFound
		}
		return nil, fmt.Errorf("digigate/mongo: get %s: %w", key, err)
	}
	return []byte(m.Value), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	m := toRecordModel(key, value)

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Key}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":        m.Key,
			"kind":       m.Kind,
			"user_id":    m.UserID,
			"value":      m.Value,
			"updated_at": m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("digigate/mongo: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.mdb.NewDelete((*recordModel)(nil)).
		Filter(bson.M{"_id": key}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("digigate/mongo: delete %s: %w", key, err)
	}
	return nil
}

// DeleteUser removes every record scoped to userID.
func (s *Store) DeleteUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.mdb.NewDelete((*recordModel)(nil)).
		Filter(bson.M{"user_id": userID}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("digigate/mongo: delete user: %w", err)
	}
	return res.DeletedCount(), nil
}

// ==================== Helpers ====================

func now() time.Time {
	return time.Now().UTC()
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all digigate collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colRecords: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "kind", Value: 1}}},
			{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		},
	}
}

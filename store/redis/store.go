// Package redis stores digigate records as plain redis strings.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/digigate"
	digigatestore "github.com/xraph/digigate/store"
)

// compile-time interface check
var _ digigatestore.Store = (*Store)(nil)

// Config holds the connection settings.
type Config struct {
	Addr        string        `json:"addr" mapstructure:"addr" yaml:"addr" env:"DIGIGATE_REDIS_ADDR" env-default:"localhost:6379"`
	Username    string        `json:"username" mapstructure:"username" yaml:"username" env:"DIGIGATE_REDIS_USERNAME"`
	Password    string        `json:"password" mapstructure:"password" yaml:"password" env:"DIGIGATE_REDIS_PASSWORD"`
	DB          int           `json:"db" mapstructure:"db" yaml:"db" env:"DIGIGATE_REDIS_DB" env-default:"0"`
	MaxRetries  int           `json:"max_retries" mapstructure:"max_retries" yaml:"max_retries" env:"DIGIGATE_REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout time.Duration `json:"dial_timeout" mapstructure:"dial_timeout" yaml:"dial_timeout" env:"DIGIGATE_REDIS_DIAL_TIMEOUT" env-default:"5s"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout" yaml:"timeout" env:"DIGIGATE_REDIS_TIMEOUT" env-default:"3s"`
	KeyPrefix   string        `json:"key_prefix" mapstructure:"key_prefix" yaml:"key_prefix" env:"DIGIGATE_REDIS_KEY_PREFIX"`
}

// Store implements store.Store on a redis client.
type Store struct {
	db     *redis.Client
	prefix string
}

// Open connects to redis and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	const op = "digigate/redis: open"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.Username,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return New(db, cfg.KeyPrefix), nil
}

// New wraps an existing client. prefix is prepended to every key.
func New(db *redis.Client, prefix string) *Store {
	return &Store{db: db, prefix: prefix}
}

// Client returns the underlying redis client.
func (s *Store) Client() *redis.Client { return s.db }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, digigate.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("digigate/redis: get %s: %w", key, mapClosed(err))
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.db.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("digigate/redis: set %s: %w", key, mapClosed(err))
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.db.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("digigate/redis: delete %s: %w", key, mapClosed(err))
	}
	return nil
}

// Migrate is a no-op; redis needs no schema.
func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("digigate/redis: ping: %w", mapClosed(err))
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func mapClosed(err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return digigate.ErrStoreClosed
	}
	return err
}

package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the digigate store (PostgreSQL).
var Migrations = migrate.NewGroup("digigate")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_digigate_records",
			Version: "20260501000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS digigate_records (
    record_key TEXT PRIMARY KEY,
    value      TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS digigate_records`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "index_digigate_records_updated_at",
			Version: "20260501000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE INDEX IF NOT EXISTS idx_digigate_records_updated_at ON digigate_records (updated_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP INDEX IF EXISTS idx_digigate_records_updated_at`)
				return err
			},
		},
	)
}

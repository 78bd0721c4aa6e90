package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations creates the database schema.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username TEXT,
			first_name TEXT,
			last_name TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id UUID PRIMARY KEY,
			payer_id BIGINT NOT NULL REFERENCES users(id),
			amount DECIMAL(12, 2) NOT NULL,
			currency TEXT NOT NULL DEFAULT 'SGD',
			split_method TEXT NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS expense_shares (
			expense_id UUID NOT NULL REFERENCES expenses(id),
			user_id BIGINT NOT NULL REFERENCES users(id),
			amount_owed DECIMAL(12, 2) NOT NULL,
			PRIMARY KEY (expense_id, user_id)
		)`,

		// Append-only: ledger entries are never updated or deleted.
		// Corrections are new entries with inverted effect.
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id UUID PRIMARY KEY,
			seq BIGSERIAL UNIQUE,
			kind TEXT NOT NULL,
			expense_id UUID REFERENCES expenses(id),
			from_user_id BIGINT NOT NULL REFERENCES users(id),
			to_user_id BIGINT NOT NULL REFERENCES users(id),
			amount DECIMAL(12, 2) NOT NULL CHECK (amount > 0),
			occurred_at TIMESTAMPTZ NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (from_user_id <> to_user_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_expenses_payer_id ON expenses(payer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_created_at ON expenses(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_expense_shares_user_id ON expense_shares(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_from_user ON ledger_entries(from_user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_to_user ON ledger_entries(to_user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_occurred_at ON ledger_entries(occurred_at)`,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

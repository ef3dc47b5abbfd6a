package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// schema is applied on startup. Statements are idempotent.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS loyalty_accounts (
		user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		points_balance BIGINT NOT NULL DEFAULT 0 CHECK (points_balance >= 0),
		lifetime_spending NUMERIC(14, 2) NOT NULL DEFAULT 0 CHECK (lifetime_spending >= 0),
		version BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE loyalty_accounts ADD COLUMN IF NOT EXISTS version BIGINT NOT NULL DEFAULT 0`,
	`CREATE TABLE IF NOT EXISTS loyalty_transactions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES loyalty_accounts(user_id) ON DELETE CASCADE,
		amount BIGINT NOT NULL,
		balance_after BIGINT NOT NULL CHECK (balance_after >= 0),
		type TEXT NOT NULL CHECK (type IN ('earn', 'redeem', 'adjust')),
		reason TEXT NOT NULL,
		booking_id UUID,
		actor_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS loyalty_transactions_user_created_idx
		ON loyalty_transactions (user_id, created_at DESC)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS loyalty_transactions_earn_booking_key
		ON loyalty_transactions (booking_id) WHERE type = 'earn'`,
}

// Migrate applies the schema
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	log.Info().Int("statements", len(schema)).Msg("Database schema applied")
	return nil
}

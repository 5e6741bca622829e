package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrations run in order inside one transaction; each statement must be
// idempotent so re-running db-init is safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS word_records (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		word TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT 'en',
		progression_level INT NOT NULL DEFAULT 0,
		review_count INT NOT NULL DEFAULT 0,
		correct_count INT NOT NULL DEFAULT 0,
		correct_streak INT NOT NULL DEFAULT 0,
		mistake_count INT NOT NULL DEFAULT 0,
		skip_count INT NOT NULL DEFAULT 0,
		mastery_score INT NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'not_started',
		last_reviewed_at TIMESTAMPTZ,
		next_review_at TIMESTAMPTZ,
		interval_hours INT NOT NULL DEFAULT 1,
		last_answer_ok BOOLEAN,
		avg_response_ms BIGINT NOT NULL DEFAULT 0,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_word_records_user_word
		ON word_records (user_id, word)`,
	`CREATE INDEX IF NOT EXISTS idx_word_records_due
		ON word_records (user_id, next_review_at)
		WHERE next_review_at IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_word_records_new
		ON word_records (user_id, created_at)
		WHERE review_count = 0`,
	`CREATE TABLE IF NOT EXISTS exercise_attempts (
		id BIGSERIAL PRIMARY KEY,
		word_record_id BIGINT NOT NULL REFERENCES word_records (id) ON DELETE CASCADE,
		session_id TEXT NOT NULL DEFAULT '',
		exercise_type TEXT NOT NULL,
		raw_input TEXT NOT NULL DEFAULT '',
		is_correct BOOLEAN NOT NULL,
		accuracy INT NOT NULL DEFAULT 0,
		partial_credit BOOLEAN NOT NULL DEFAULT false,
		response_time_ms BIGINT NOT NULL DEFAULT 0,
		mistake_type TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_exercise_attempts_record
		ON exercise_attempts (word_record_id, created_at DESC)`,
}

// Migrate creates the schema objects the engine depends on.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for i, stmt := range migrations {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return tx.Commit(ctx)
}

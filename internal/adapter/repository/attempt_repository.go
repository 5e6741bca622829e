package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/wordpace/internal/entity"
	"github.com/eslsoft/wordpace/internal/repository"
)

type attemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository constructs a pgx-backed attempt log.
func NewAttemptRepository(pool *pgxpool.Pool) repository.AttemptRepository {
	return &attemptRepository{pool: pool}
}

func (r *attemptRepository) Append(ctx context.Context, attempt *entity.ExerciseAttempt) (*entity.ExerciseAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored := *attempt
	err := r.pool.QueryRow(ctx, `
		INSERT INTO exercise_attempts (
			word_record_id, session_id, exercise_type, raw_input,
			is_correct, accuracy, partial_credit, response_time_ms,
			mistake_type, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id`,
		attempt.WordRecordID, attempt.SessionID, string(attempt.ExerciseType), attempt.RawInput,
		attempt.IsCorrect, attempt.Accuracy, attempt.PartialCredit, attempt.ResponseTimeMs,
		attempt.MistakeType, attempt.CreatedAt,
	).Scan(&stored.ID)
	if err != nil {
		return nil, fmt.Errorf("append attempt: %w", err)
	}
	return &stored, nil
}

func (r *attemptRepository) ListRecent(ctx context.Context, wordRecordID int64, limit int32) ([]*entity.ExerciseAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, word_record_id, session_id, exercise_type, raw_input,
			is_correct, accuracy, partial_credit, response_time_ms,
			mistake_type, created_at
		FROM exercise_attempts
		WHERE word_record_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, wordRecordID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*entity.ExerciseAttempt
	for rows.Next() {
		var a entity.ExerciseAttempt
		err := rows.Scan(
			&a.ID, &a.WordRecordID, &a.SessionID, &a.ExerciseType, &a.RawInput,
			&a.IsCorrect, &a.Accuracy, &a.PartialCredit, &a.ResponseTimeMs,
			&a.MistakeType, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, &a)
	}
	return attempts, rows.Err()
}

func (r *attemptRepository) DailyMistakeCounts(ctx context.Context, wordRecordID int64, since time.Time) ([]entity.DailyMistakeCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day, count(*)
		FROM exercise_attempts
		WHERE word_record_id = $1 AND NOT is_correct AND created_at >= $2
		GROUP BY day
		ORDER BY day`, wordRecordID, since)
	if err != nil {
		return nil, fmt.Errorf("daily mistakes: %w", err)
	}
	defer rows.Close()

	var counts []entity.DailyMistakeCount
	for rows.Next() {
		var c entity.DailyMistakeCount
		if err := rows.Scan(&c.Day, &c.Mistakes); err != nil {
			return nil, fmt.Errorf("scan daily mistakes: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *attemptRepository) DistinctMistakeTypes(ctx context.Context, wordRecordID int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT mistake_type
		FROM exercise_attempts
		WHERE word_record_id = $1 AND mistake_type <> ''
		ORDER BY mistake_type`, wordRecordID)
	if err != nil {
		return nil, fmt.Errorf("distinct mistake types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan mistake type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

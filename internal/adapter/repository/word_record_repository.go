package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/wordpace/internal/entity"
	"github.com/eslsoft/wordpace/internal/repository"
	"github.com/eslsoft/wordpace/pkg/filterexpr"
)

const wordRecordColumns = `id, user_id, word, language, progression_level,
	review_count, correct_count, correct_streak, mistake_count, skip_count,
	mastery_score, status, last_reviewed_at, next_review_at, interval_hours,
	last_answer_ok, avg_response_ms, version, created_at, updated_at`

type wordRecordRepository struct {
	pool *pgxpool.Pool
}

// NewWordRecordRepository constructs a pgx-backed repository.
func NewWordRecordRepository(pool *pgxpool.Pool) repository.WordRecordRepository {
	return &wordRecordRepository{pool: pool}
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWordRecord(row rowScanner) (*entity.WordRecord, error) {
	var (
		rec                      entity.WordRecord
		lastReviewed, nextReview pgtype.Timestamptz
		lastAnswerOK             pgtype.Bool
	)
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Word, &rec.Language, &rec.ProgressionLevel,
		&rec.ReviewCount, &rec.CorrectCount, &rec.CorrectStreak, &rec.MistakeCount, &rec.SkipCount,
		&rec.MasteryScore, &rec.Status, &lastReviewed, &nextReview, &rec.Review.IntervalHours,
		&lastAnswerOK, &rec.AvgResponseMs, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Review.LastReviewedAt = fromPgTimestamptz(lastReviewed)
	rec.Review.NextReviewAt = fromPgTimestamptz(nextReview)
	rec.LastAnswerOK = fromPgBool(lastAnswerOK)
	return &rec, nil
}

func (r *wordRecordRepository) Create(ctx context.Context, rec *entity.WordRecord) (*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO word_records (
			user_id, word, language, progression_level,
			review_count, correct_count, correct_streak, mistake_count, skip_count,
			mastery_score, status, last_reviewed_at, next_review_at, interval_hours,
			last_answer_ok, avg_response_ms, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,1,$17,$18)
		RETURNING `+wordRecordColumns,
		rec.UserID, rec.Word, string(rec.Language), rec.ProgressionLevel,
		rec.ReviewCount, rec.CorrectCount, rec.CorrectStreak, rec.MistakeCount, rec.SkipCount,
		rec.MasteryScore, string(rec.Status),
		toPgTimestamptz(rec.Review.LastReviewedAt), toPgTimestamptz(rec.Review.NextReviewAt), rec.Review.IntervalHours,
		toPgBool(rec.LastAnswerOK), rec.AvgResponseMs, rec.CreatedAt, rec.UpdatedAt,
	)
	created, err := scanWordRecord(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return created, nil
}

func (r *wordRecordRepository) GetByID(ctx context.Context, userID, id int64) (*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+wordRecordColumns+`
		FROM word_records
		WHERE id = $1 AND user_id = $2`, id, userID)
	rec, err := scanWordRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrWordRecordNotFound
		}
		return nil, fmt.Errorf("get word record: %w", err)
	}
	return rec, nil
}

func (r *wordRecordRepository) FindByWord(ctx context.Context, userID int64, word string) (*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if word == "" {
		return nil, nil
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+wordRecordColumns+`
		FROM word_records
		WHERE user_id = $1 AND word = lower($2)`, userID, word)
	rec, err := scanWordRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find word record: %w", err)
	}
	return rec, nil
}

const updateWordRecordSQL = `
	UPDATE word_records SET
		progression_level = $4,
		review_count = $5,
		correct_count = $6,
		correct_streak = $7,
		mistake_count = $8,
		skip_count = $9,
		mastery_score = $10,
		status = $11,
		last_reviewed_at = $12,
		next_review_at = $13,
		interval_hours = $14,
		last_answer_ok = $15,
		avg_response_ms = $16,
		updated_at = $17,
		version = version + 1
	WHERE id = $1 AND user_id = $2 AND version = $3
	RETURNING ` + wordRecordColumns

func updateWordRecordArgs(rec *entity.WordRecord) []any {
	return []any{
		rec.ID, rec.UserID, rec.Version,
		rec.ProgressionLevel, rec.ReviewCount, rec.CorrectCount, rec.CorrectStreak,
		rec.MistakeCount, rec.SkipCount, rec.MasteryScore, string(rec.Status),
		toPgTimestamptz(rec.Review.LastReviewedAt), toPgTimestamptz(rec.Review.NextReviewAt),
		rec.Review.IntervalHours, toPgBool(rec.LastAnswerOK), rec.AvgResponseMs, rec.UpdatedAt,
	}
}

// UpdateIfVersion writes the record only if the stored version still
// matches. Zero matched rows means either the record vanished or a
// concurrent writer advanced it; distinguish by re-checking existence.
func (r *wordRecordRepository) UpdateIfVersion(ctx context.Context, rec *entity.WordRecord) (*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, updateWordRecordSQL, updateWordRecordArgs(rec)...)
	updated, err := scanWordRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.versionConflictOrMissing(ctx, rec.UserID, rec.ID)
		}
		return nil, fmt.Errorf("update word record: %w", err)
	}
	return updated, nil
}

func (r *wordRecordRepository) versionConflictOrMissing(ctx context.Context, userID, id int64) error {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM word_records WHERE id = $1 AND user_id = $2)`,
		id, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check word record: %w", err)
	}
	if !exists {
		return entity.ErrWordRecordNotFound
	}
	return entity.ErrVersionConflict
}

// ApplyAttempt commits the record update and the attempt append in one
// transaction so a version conflict records neither.
func (r *wordRecordRepository) ApplyAttempt(ctx context.Context, rec *entity.WordRecord, attempt *entity.ExerciseAttempt) (*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	row := tx.QueryRow(ctx, updateWordRecordSQL, updateWordRecordArgs(rec)...)
	updated, err := scanWordRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.versionConflictOrMissing(ctx, rec.UserID, rec.ID)
		}
		return nil, fmt.Errorf("update word record: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO exercise_attempts (
			word_record_id, session_id, exercise_type, raw_input,
			is_correct, accuracy, partial_credit, response_time_ms,
			mistake_type, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		attempt.WordRecordID, attempt.SessionID, string(attempt.ExerciseType), attempt.RawInput,
		attempt.IsCorrect, attempt.Accuracy, attempt.PartialCredit, attempt.ResponseTimeMs,
		attempt.MistakeType, attempt.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("append attempt: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

func (r *wordRecordRepository) ListDue(ctx context.Context, userID int64, before time.Time, limit int32) ([]*entity.WordRecord, error) {
	return r.queryRecords(ctx, `
		SELECT `+wordRecordColumns+`
		FROM word_records
		WHERE user_id = $1 AND next_review_at IS NOT NULL AND next_review_at <= $2
		ORDER BY next_review_at, id
		LIMIT $3`, userID, before, limit)
}

func (r *wordRecordRepository) ListDueBetween(ctx context.Context, userID int64, from, to time.Time, limit int32) ([]*entity.WordRecord, error) {
	return r.queryRecords(ctx, `
		SELECT `+wordRecordColumns+`
		FROM word_records
		WHERE user_id = $1 AND next_review_at IS NOT NULL
			AND next_review_at > $2 AND next_review_at <= $3
		ORDER BY next_review_at, id
		LIMIT $4`, userID, from, to, limit)
}

func (r *wordRecordRepository) ListNew(ctx context.Context, userID int64, limit int32) ([]*entity.WordRecord, error) {
	return r.queryRecords(ctx, `
		SELECT `+wordRecordColumns+`
		FROM word_records
		WHERE user_id = $1 AND review_count = 0
		ORDER BY created_at, id
		LIMIT $2`, userID, limit)
}

func (r *wordRecordRepository) ListReviewed(ctx context.Context, userID int64) ([]*entity.WordRecord, error) {
	return r.queryRecords(ctx, `
		SELECT `+wordRecordColumns+`
		FROM word_records
		WHERE user_id = $1 AND review_count > 0
		ORDER BY id`, userID)
}

func (r *wordRecordRepository) queryRecords(ctx context.Context, sql string, args ...any) ([]*entity.WordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list word records: %w", err)
	}
	defer rows.Close()

	var recs []*entity.WordRecord
	for rows.Next() {
		rec, err := scanWordRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan word record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *wordRecordRepository) List(ctx context.Context, query *repository.ListWordRecordQuery) ([]*entity.WordRecord, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	parsed, err := filterexpr.Parse(query, listWordRecordsSchema)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s", entity.ErrInvalidListQuery, err)
	}

	where, args := buildWordRecordWhere(query.UserID, parsed.Predicates)
	orderBy := buildOrderBy(parsed.Order, wordRecordOrderColumns)

	query.Normalize()
	pageSize := query.PageSize
	offset := query.Offset()

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM word_records WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count word records: %w", err)
	}

	sql := fmt.Sprintf(`SELECT %s FROM word_records WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		wordRecordColumns, where, orderBy, pageSize, offset)
	recs, err := r.queryRecords(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (r *wordRecordRepository) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT user_id FROM word_records
		WHERE review_count > 0
		ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// buildWordRecordWhere renders the validated predicates into a WHERE
// clause scoped to the user. Field names were whitelisted by the schema
// so only values travel as bind parameters.
func buildWordRecordWhere(userID int64, preds []filterexpr.Predicate) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{userID}

	for _, pred := range preds {
		column := wordRecordFilterColumns[pred.Field]
		switch pred.Op {
		case filterexpr.OpEQ:
			args = append(args, pred.Value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
		case filterexpr.OpGTE:
			args = append(args, pred.Value)
			clauses = append(clauses, fmt.Sprintf("%s >= $%d", column, len(args)))
		case filterexpr.OpLTE:
			args = append(args, pred.Value)
			clauses = append(clauses, fmt.Sprintf("%s <= $%d", column, len(args)))
		case filterexpr.OpSW:
			args = append(args, pred.Value.(string)+"%")
			clauses = append(clauses, fmt.Sprintf("%s LIKE $%d", column, len(args)))
		case filterexpr.OpIN:
			args = append(args, pred.Value)
			clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", column, len(args)))
		}
	}
	return strings.Join(clauses, " AND "), args
}

func buildOrderBy(keys []filterexpr.OrderKey, columns map[string]string) string {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		dir := "ASC"
		if key.Desc {
			dir = "DESC"
		}
		parts = append(parts, fmt.Sprintf("%s %s NULLS LAST", columns[key.Key], dir))
	}
	return strings.Join(parts, ", ")
}

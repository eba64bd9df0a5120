package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var attemptSelectColumns = []string{
	"sequence", "user_id", "question_id", "is_correct", "time_taken_ms", "category", "created_at", "quiz_id",
}

type attemptRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *attemptRepo) AppendAttempts(ctx context.Context, logs ...*AttemptLog) error {
	if len(logs) == 0 {
		return nil
	}
	for _, l := range logs {
		if err := l.Validate(); err != nil {
			return err
		}
	}

	first, err := r.seq.Reserve(ctx, len(logs))
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attempt tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i, l := range logs {
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		l.CreatedAt = l.CreatedAt.UTC()
		l.Sequence = first + int64(i)

		query, args := sqlb.Insert(attemptsTable).
			Columns("sequence", "user_id", "question_id", "is_correct", "time_taken_ms", "category", "created_at", "quiz_id").
			Values(l.Sequence, l.UserID, l.QuestionID, l.IsCorrect, l.TimeTakenMs, l.Category, l.CreatedAt, l.QuizID).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save attempt log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attempt logs: %w", err)
	}
	return nil
}

func (r *attemptRepo) RecentAttempts(ctx context.Context, userID string, limit int) ([]AttemptLog, error) {
	if userID == "" {
		return nil, nil
	}
	return r.QueryAttempts(ctx, QueryOpts{UserID: userID, Limit: limit})
}

func (r *attemptRepo) QueryAttempts(ctx context.Context, opts QueryOpts) ([]AttemptLog, error) {
	sel := sqlb.Select(attemptSelectColumns...).From(sqlb.Table(attemptsTable))
	if p := opts.predicate("created_at"); p != nil {
		sel.Where(p)
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempt logs: %w", err)
	}
	defer rows.Close()

	var out []AttemptLog
	for rows.Next() {
		var l AttemptLog
		if err := rows.Scan(&l.Sequence, &l.UserID, &l.QuestionID, &l.IsCorrect, &l.TimeTakenMs, &l.Category, &l.CreatedAt, &l.QuizID); err != nil {
			return nil, fmt.Errorf("scan attempt log: %w", err)
		}
		l.CreatedAt = l.CreatedAt.UTC()
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempt logs: %w", err)
	}
	return out, nil
}

func (r *attemptRepo) CountUsers(ctx context.Context) (int, error) {
	query, args := sqlb.Select(entsql.Count(entsql.Distinct("user_id"))).
		From(sqlb.Table(attemptsTable)).
		Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// predicate builds the WHERE clause for opts, or nil when nothing filters.
func (o QueryOpts) predicate(timeCol string) *entsql.Predicate {
	var preds []*entsql.Predicate
	if o.UserID != "" {
		preds = append(preds, entsql.EQ("user_id", o.UserID))
	}
	if o.QuizID != "" {
		preds = append(preds, entsql.EQ("quiz_id", o.QuizID))
	}
	if o.After > 0 {
		preds = append(preds, entsql.GT("sequence", o.After))
	}
	if o.Before > 0 {
		preds = append(preds, entsql.LT("sequence", o.Before))
	}
	if !o.From.IsZero() {
		preds = append(preds, entsql.GTE(timeCol, o.From.UTC()))
	}
	if !o.To.IsZero() {
		preds = append(preds, entsql.LTE(timeCol, o.To.UTC()))
	}
	if len(preds) == 0 {
		return nil
	}
	return entsql.And(preds...)
}

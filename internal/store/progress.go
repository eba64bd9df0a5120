package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var progressSelectColumns = []string{
	"user_id", "question_id", "interval_days", "next_review_at", "updated_at",
}

type progressRepo struct {
	db *sql.DB
}

func (r *progressRepo) UpsertProgress(ctx context.Context, p *ReviewProgress) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	p.NextReviewAt = p.NextReviewAt.UTC()

	query, args := sqlb.Insert(progressTable).
		Columns("user_id", "question_id", "interval_days", "next_review_at", "updated_at").
		Values(p.UserID, p.QuestionID, p.IntervalDays, p.NextReviewAt.Unix(), p.UpdatedAt).
		OnConflict(
			entsql.ConflictColumns("user_id", "question_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert review progress: %w", err)
	}
	return nil
}

func (r *progressRepo) GetProgress(ctx context.Context, userID, questionID string) (*ReviewProgress, error) {
	query, args := sqlb.Select(progressSelectColumns...).
		From(sqlb.Table(progressTable)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("question_id", questionID))).
		Query()

	p, err := scanProgress(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review progress: %w", err)
	}
	return &p, nil
}

func (r *progressRepo) ProgressFor(ctx context.Context, userID string, questionIDs []string) (map[string]ReviewProgress, error) {
	out := make(map[string]ReviewProgress, len(questionIDs))
	if userID == "" || len(questionIDs) == 0 {
		return out, nil
	}
	ids := make([]any, len(questionIDs))
	for i, id := range questionIDs {
		ids[i] = id
	}

	query, args := sqlb.Select(progressSelectColumns...).
		From(sqlb.Table(progressTable)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.In("question_id", ids...))).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query review progress: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review progress: %w", err)
		}
		out[p.QuestionID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review progress: %w", err)
	}
	return out, nil
}

func (r *progressRepo) DueProgress(ctx context.Context, userID string, now time.Time, limit int) ([]ReviewProgress, error) {
	sel := sqlb.Select(progressSelectColumns...).
		From(sqlb.Table(progressTable)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.LTE("next_review_at", now.Unix()))).
		OrderBy(entsql.Asc("next_review_at"), entsql.Asc("question_id"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query due progress: %w", err)
	}
	defer rows.Close()

	var out []ReviewProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due progress: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due progress: %w", err)
	}
	return out, nil
}

func (r *progressRepo) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	query, args := sqlb.Select().Count().
		From(sqlb.Table(progressTable)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.LTE("next_review_at", now.Unix()))).
		Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count due progress: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(s rowScanner) (ReviewProgress, error) {
	var (
		p          ReviewProgress
		nextReview int64
	)
	if err := s.Scan(&p.UserID, &p.QuestionID, &p.IntervalDays, &nextReview, &p.UpdatedAt); err != nil {
		return ReviewProgress{}, err
	}
	p.NextReviewAt = time.Unix(nextReview, 0).UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/fedrill/internal/quizerr"
)

type sessionRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *sessionRepo) AppendSessionResult(ctx context.Context, res *SessionResult) error {
	if err := validate.Struct(res); err != nil {
		return quizerr.Invalid("session", res.ID, err.Error())
	}

	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	res.Sequence = seq
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	res.CreatedAt = res.CreatedAt.UTC()

	ids := res.IncorrectIDs
	if ids == nil {
		ids = []string{}
	}
	incorrect, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal incorrect ids: %w", err)
	}

	query, args := sqlb.Insert(sessionsTable).
		Columns("id", "sequence", "user_id", "mode", "score", "total", "incorrect_ids", "created_at").
		Values(res.ID, res.Sequence, res.UserID, res.Mode, res.Score, res.Total, string(incorrect), res.CreatedAt).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save session result: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save session result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", res.ID, ErrDuplicate)
	}
	return nil
}

func (r *sessionRepo) QuerySessionResults(ctx context.Context, opts QueryOpts) ([]SessionResult, error) {
	sel := sqlb.Select("id", "sequence", "user_id", "mode", "score", "total", "incorrect_ids", "created_at").
		From(sqlb.Table(sessionsTable))
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
		return nil, fmt.Errorf("query session results: %w", err)
	}
	defer rows.Close()

	var out []SessionResult
	for rows.Next() {
		var (
			res       SessionResult
			incorrect string
		)
		if err := rows.Scan(&res.ID, &res.Sequence, &res.UserID, &res.Mode, &res.Score, &res.Total, &incorrect, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session result: %w", err)
		}
		if err := json.Unmarshal([]byte(incorrect), &res.IncorrectIDs); err != nil {
			return nil, fmt.Errorf("unmarshal incorrect ids: %w", err)
		}
		res.CreatedAt = res.CreatedAt.UTC()
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session results: %w", err)
	}
	return out, nil
}

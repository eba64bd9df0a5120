package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// sequenceCounter hands out the monotonic sequence shared by attempt logs
// and session results. Timestamps can tie within a quiz; the sequence gives
// a strict most-recent-first order for history queries.
//
// The mutex serializes within the process; UPDATE ... RETURNING makes the
// increment atomic across processes sharing the file.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Reserve atomically claims n consecutive sequence numbers and returns the
// first one.
func (sc *sequenceCounter) Reserve(ctx context.Context, n int) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var first int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + ? WHERE id = 1 RETURNING next_val - ?`,
		n, n,
	).Scan(&first)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return first, nil
}

// Next returns the next sequence number.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	return sc.Reserve(ctx, 1)
}

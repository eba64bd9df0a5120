package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/fedrill/internal/store"
)

var errBoom = errors.New("boom")

type mockAttempts struct {
	mu      sync.Mutex
	logs    []store.AttemptLog
	failGet bool
	failAdd bool
}

func (m *mockAttempts) AppendAttempts(_ context.Context, logs ...*store.AttemptLog) error {
	if m.failAdd {
		return errBoom
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range logs {
		if err := l.Validate(); err != nil {
			return err
		}
		l.Sequence = int64(len(m.logs) + 1)
		m.logs = append(m.logs, *l)
	}
	return nil
}

func (m *mockAttempts) RecentAttempts(ctx context.Context, userID string, limit int) ([]store.AttemptLog, error) {
	if m.failGet {
		return nil, errBoom
	}
	return m.QueryAttempts(ctx, store.QueryOpts{UserID: userID, Limit: limit})
}

func (m *mockAttempts) QueryAttempts(_ context.Context, opts store.QueryOpts) ([]store.AttemptLog, error) {
	if m.failGet {
		return nil, errBoom
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.AttemptLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		if opts.UserID != "" && m.logs[i].UserID != opts.UserID {
			continue
		}
		if opts.QuizID != "" && m.logs[i].QuizID != opts.QuizID {
			continue
		}
		out = append(out, m.logs[i])
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (m *mockAttempts) CountUsers(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	for _, l := range m.logs {
		seen[l.UserID] = true
	}
	return len(seen), nil
}

type progressKey struct{ user, question string }

type mockProgress struct {
	mu   sync.Mutex
	rows map[progressKey]store.ReviewProgress
}

func newMockProgress() *mockProgress {
	return &mockProgress{rows: map[progressKey]store.ReviewProgress{}}
}

func (m *mockProgress) UpsertProgress(_ context.Context, p *store.ReviewProgress) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[progressKey{p.UserID, p.QuestionID}] = *p
	return nil
}

func (m *mockProgress) GetProgress(_ context.Context, userID, questionID string) (*store.ReviewProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[progressKey{userID, questionID}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockProgress) ProgressFor(_ context.Context, userID string, ids []string) (map[string]store.ReviewProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]store.ReviewProgress{}
	for _, id := range ids {
		if p, ok := m.rows[progressKey{userID, id}]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *mockProgress) DueProgress(_ context.Context, userID string, now time.Time, limit int) ([]store.ReviewProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.ReviewProgress
	for k, p := range m.rows {
		if k.user == userID && !p.NextReviewAt.After(now) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextReviewAt.Equal(out[j].NextReviewAt) {
			return out[i].NextReviewAt.Before(out[j].NextReviewAt)
		}
		return out[i].QuestionID < out[j].QuestionID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockProgress) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	due, err := m.DueProgress(ctx, userID, now, 0)
	return len(due), err
}

type mockSessions struct {
	results []store.SessionResult
}

func (m *mockSessions) AppendSessionResult(_ context.Context, r *store.SessionResult) error {
	for _, existing := range m.results {
		if existing.ID == r.ID {
			return store.ErrDuplicate
		}
	}
	m.results = append(m.results, *r)
	return nil
}

func (m *mockSessions) QuerySessionResults(_ context.Context, opts store.QueryOpts) ([]store.SessionResult, error) {
	var out []store.SessionResult
	for i := len(m.results) - 1; i >= 0; i-- {
		if opts.UserID == "" || m.results[i].UserID == opts.UserID {
			out = append(out, m.results[i])
		}
	}
	return out, nil
}

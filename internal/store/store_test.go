package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/fedrill/internal/quizerr"
	"github.com/abhisek/fedrill/internal/spacedrep"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// journal_mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpen_FileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fedrill.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.AttemptRepo().AppendAttempts(ctx, &AttemptLog{
		UserID: "u1", QuestionID: "q1", Category: "Networking", IsCorrect: true,
	}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	logs, err := s.AttemptRepo().RecentAttempts(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	require.NoError(t, s.AttemptRepo().AppendAttempts(ctx, &AttemptLog{
		UserID: "u1", QuestionID: "q2", Category: "Security",
	}))
	logs, err = s.AttemptRepo().RecentAttempts(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Greater(t, logs[0].Sequence, logs[1].Sequence, "sequence continues across reopen")
}

func TestAppendAttempts_RecentFirst(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	// Same timestamp for the whole batch: sequence breaks the tie.
	batch := []*AttemptLog{
		{UserID: "u1", QuestionID: "q1", Category: "Networking", IsCorrect: true, TimeTakenMs: 1200, CreatedAt: t0},
		{UserID: "u1", QuestionID: "q2", Category: "Security", TimeTakenMs: 800, CreatedAt: t0},
		{UserID: "u2", QuestionID: "q1", Category: "Networking", CreatedAt: t0},
		{UserID: "u1", QuestionID: "q3", Category: "Database", IsCorrect: true, CreatedAt: t0},
	}
	require.NoError(t, repo.AppendAttempts(ctx, batch...))

	for i := 1; i < len(batch); i++ {
		assert.Equal(t, batch[i-1].Sequence+1, batch[i].Sequence, "sequences assigned in argument order")
	}

	logs, err := repo.RecentAttempts(ctx, "u1", 100)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "q3", logs[0].QuestionID)
	assert.Equal(t, "q2", logs[1].QuestionID)
	assert.Equal(t, "q1", logs[2].QuestionID)

	assert.Equal(t, "Networking", logs[2].Category)
	assert.True(t, logs[2].IsCorrect)
	assert.Equal(t, int64(1200), logs[2].TimeTakenMs)
	assert.True(t, logs[2].CreatedAt.Equal(t0), "CreatedAt = %v, want %v", logs[2].CreatedAt, t0)

	limited, err := repo.RecentAttempts(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "q3", limited[0].QuestionID)

	none, err := repo.RecentAttempts(ctx, "", 100)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAppendAttempts_Validation(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	tests := []struct {
		name string
		log  AttemptLog
	}{
		{"missing category", AttemptLog{UserID: "u1", QuestionID: "q1"}},
		{"missing user", AttemptLog{QuestionID: "q1", Category: "Networking"}},
		{"missing question", AttemptLog{UserID: "u1", Category: "Networking"}},
		{"negative time", AttemptLog{UserID: "u1", QuestionID: "q1", Category: "Networking", TimeTakenMs: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.log
			err := repo.AppendAttempts(ctx, &l)
			require.Error(t, err)
			assert.True(t, errors.Is(err, quizerr.ErrInvalidInput), "err = %v", err)
		})
	}

	// A bad entry rejects the whole batch.
	err := repo.AppendAttempts(ctx,
		&AttemptLog{UserID: "u1", QuestionID: "q1", Category: "Networking"},
		&AttemptLog{UserID: "u1", QuestionID: "q2"},
	)
	require.Error(t, err)
	logs, err := repo.RecentAttempts(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestQueryAttempts(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.AppendAttempts(ctx, &AttemptLog{
			UserID:     fmt.Sprintf("u%d", i%2),
			QuestionID: fmt.Sprintf("q%d", i),
			Category:   "Algorithms",
			CreatedAt:  t0.Add(time.Duration(i) * time.Hour),
			QuizID:     fmt.Sprintf("quiz-%d", i%2),
		}))
	}

	all, err := repo.QueryAttempts(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "q4", all[0].QuestionID)

	limited, err := repo.QueryAttempts(ctx, QueryOpts{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, limited, 3)

	after, err := repo.QueryAttempts(ctx, QueryOpts{After: all[2].Sequence})
	require.NoError(t, err)
	assert.Len(t, after, 2)

	window, err := repo.QueryAttempts(ctx, QueryOpts{From: t0.Add(time.Hour), To: t0.Add(3 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, window, 3)

	quiz, err := repo.QueryAttempts(ctx, QueryOpts{UserID: "u0", QuizID: "quiz-0"})
	require.NoError(t, err)
	require.Len(t, quiz, 3)
	assert.Equal(t, "quiz-0", quiz[0].QuizID)

	none, err := repo.QueryAttempts(ctx, QueryOpts{UserID: "u1", QuizID: "quiz-0"})
	require.NoError(t, err)
	assert.Empty(t, none)

	users, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, users)
}

func TestUpsertProgress_Idempotent(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	got, err := repo.GetProgress(ctx, "u1", "q1")
	require.NoError(t, err)
	assert.Nil(t, got, "absent row reads as nil")

	p := &ReviewProgress{UserID: "u1", QuestionID: "q1", IntervalDays: 3, NextReviewAt: t0.AddDate(0, 0, 3), UpdatedAt: t0}
	require.NoError(t, repo.UpsertProgress(ctx, p))
	require.NoError(t, repo.UpsertProgress(ctx, p))

	p2 := &ReviewProgress{UserID: "u1", QuestionID: "q1", IntervalDays: 8, NextReviewAt: t0.AddDate(0, 0, 8), UpdatedAt: t0.Add(time.Hour)}
	require.NoError(t, repo.UpsertProgress(ctx, p2))

	var rows int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM review_progress WHERE user_id = 'u1' AND question_id = 'q1'`).Scan(&rows))
	assert.Equal(t, 1, rows)

	got, err = repo.GetProgress(ctx, "u1", "q1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(8), got.IntervalDays)
	assert.True(t, got.NextReviewAt.Equal(t0.AddDate(0, 0, 8)))
	assert.True(t, got.UpdatedAt.Equal(t0.Add(time.Hour)))
}

func TestUpsertProgress_Validation(t *testing.T) {
	s := openTestStore(t)
	err := s.ProgressRepo().UpsertProgress(context.Background(), &ReviewProgress{UserID: "u1", QuestionID: "q1", IntervalDays: -1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, quizerr.ErrInvalidInput))
}

func TestUpsertProgress_FarFuture(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	r, err := spacedrep.ComputeNextReview(spacedrep.MaxIntervalDays, true, t0)
	require.NoError(t, err)
	require.NoError(t, repo.UpsertProgress(ctx, &ReviewProgress{
		UserID: "u1", QuestionID: "q1", IntervalDays: r.IntervalDays, NextReviewAt: r.NextReviewAt,
	}))

	got, err := repo.GetProgress(ctx, "u1", "q1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, spacedrep.MaxIntervalDays, got.IntervalDays)
	assert.True(t, got.NextReviewAt.Equal(r.NextReviewAt))
	assert.False(t, got.State().IsDue(t0))
}

func TestDueProgress(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	rows := []ReviewProgress{
		{UserID: "u1", QuestionID: "q-late", IntervalDays: 1, NextReviewAt: t0.AddDate(0, 0, -5)},
		{UserID: "u1", QuestionID: "q-now", IntervalDays: 0, NextReviewAt: t0},
		{UserID: "u1", QuestionID: "q-future", IntervalDays: 3, NextReviewAt: t0.AddDate(0, 0, 3)},
		{UserID: "u1", QuestionID: "q-mid", IntervalDays: 3, NextReviewAt: t0.AddDate(0, 0, -1)},
		{UserID: "u2", QuestionID: "q-late", IntervalDays: 0, NextReviewAt: t0.AddDate(0, 0, -9)},
	}
	for i := range rows {
		require.NoError(t, repo.UpsertProgress(ctx, &rows[i]))
	}

	due, err := repo.DueProgress(ctx, "u1", t0, 0)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, "q-late", due[0].QuestionID)
	assert.Equal(t, "q-mid", due[1].QuestionID)
	assert.Equal(t, "q-now", due[2].QuestionID)

	limited, err := repo.DueProgress(ctx, "u1", t0, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	n, err := repo.CountDue(ctx, "u1", t0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = repo.CountDue(ctx, "u1", t0.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	byID, err := repo.ProgressFor(ctx, "u1", []string{"q-late", "q-future", "missing"})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
	assert.Equal(t, int64(3), byID["q-future"].IntervalDays)
	assert.Equal(t, int64(1), byID["q-late"].IntervalDays)
}

func TestSessionResults(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendSessionResult(ctx, &SessionResult{
		ID: "s1", UserID: "u1", Mode: "random", Score: 3, Total: 5, IncorrectIDs: []string{"q2", "q4"}, CreatedAt: t0,
	}))
	require.NoError(t, repo.AppendSessionResult(ctx, &SessionResult{
		ID: "s2", UserID: "u1", Mode: "adaptive", Score: 5, Total: 5,
	}))
	require.NoError(t, repo.AppendSessionResult(ctx, &SessionResult{
		ID: "s3", UserID: "u2", Mode: "adaptive", Score: 0, Total: 1, IncorrectIDs: []string{"q1"},
	}))

	got, err := repo.QuerySessionResults(ctx, QueryOpts{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s2", got[0].ID)
	assert.Empty(t, got[0].IncorrectIDs)
	assert.Equal(t, []string{"q2", "q4"}, got[1].IncorrectIDs)
	assert.Equal(t, 3, got[1].Score)
	assert.True(t, got[1].CreatedAt.Equal(t0))

	err = repo.AppendSessionResult(ctx, &SessionResult{ID: "bad", UserID: "u1", Mode: "random", Score: 6, Total: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, quizerr.ErrInvalidInput))

	// A repeated id keeps the first result.
	err = repo.AppendSessionResult(ctx, &SessionResult{ID: "s1", UserID: "u2", Mode: "random", Score: 0, Total: 9})
	require.ErrorIs(t, err, ErrDuplicate)
	got, err = repo.QuerySessionResults(ctx, QueryOpts{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[1].Score)
}

// TestNetworkingScenario drives one question through three correct answers
// on consecutive due dates, reading and writing progress through the store.
func TestNetworkingScenario(t *testing.T) {
	s := openTestStore(t)
	attempts := s.AttemptRepo()
	progress := s.ProgressRepo()
	ctx := context.Background()

	now := t0
	wantIntervals := []int64{1, 3, 8}
	for step, want := range wantIntervals {
		require.NoError(t, attempts.AppendAttempts(ctx, &AttemptLog{
			UserID: "alice", QuestionID: "net-001", Category: "Networking", IsCorrect: true, CreatedAt: now,
		}))

		var current int64
		row, err := progress.GetProgress(ctx, "alice", "net-001")
		require.NoError(t, err)
		if row != nil {
			current = row.IntervalDays
		}

		r, err := spacedrep.ComputeNextReview(current, true, now)
		require.NoError(t, err)
		require.NoError(t, progress.UpsertProgress(ctx, &ReviewProgress{
			UserID: "alice", QuestionID: "net-001", IntervalDays: r.IntervalDays, NextReviewAt: r.NextReviewAt, UpdatedAt: now,
		}))

		row, err = progress.GetProgress(ctx, "alice", "net-001")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, want, row.IntervalDays, "step %d", step)
		assert.True(t, row.NextReviewAt.Equal(now.AddDate(0, 0, int(want))), "step %d", step)

		now = row.NextReviewAt
	}

	logs, err := attempts.RecentAttempts(ctx, "alice", 100)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
	for _, l := range logs {
		assert.Equal(t, "Networking", l.Category)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("FEDRILL_DB", filepath.Join(dir, "custom", "x.db"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom", "x.db"), p)
	assert.DirExists(t, filepath.Join(dir, "custom"))

	t.Setenv("FEDRILL_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fedrill", "fedrill.db"), p)
}

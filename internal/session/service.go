// Package session runs quizzes: it selects questions, grades answers,
// records attempts and advances each question's review schedule.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/abhisek/fedrill/internal/catalog"
	"github.com/abhisek/fedrill/internal/logger"
	"github.com/abhisek/fedrill/internal/quizerr"
	"github.com/abhisek/fedrill/internal/selector"
	"github.com/abhisek/fedrill/internal/spacedrep"
	"github.com/abhisek/fedrill/internal/store"
)

const (
	// DefaultHistoryWindow bounds the attempts fed to adaptive selection.
	DefaultHistoryWindow = 100
	// DefaultReviewLimit bounds the due-review queue.
	DefaultReviewLimit = 20
	// DefaultOverviewLimit bounds the admin attempt listing.
	DefaultOverviewLimit = 100
	// recentSessions is how many past quizzes Stats reports.
	recentSessions = 5
)

// ErrUnknownQuestion is returned when an answer names a question that is
// not in the catalog.
var ErrUnknownQuestion = errors.New("unknown question")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service coordinates the catalog, selector, scheduler and store.
type Service struct {
	catalog   *catalog.Catalog
	selector  *selector.Selector
	scheduler *spacedrep.Scheduler
	attempts  store.AttemptRepo
	progress  store.ProgressRepo
	sessions  store.SessionRepo
	log       *logger.Logger
	now       func() time.Time

	historyWindow int
	reviewLimit   int
}

// Option configures a Service.
type Option func(*Service)

// WithSelector sets the question selector, e.g. a seeded one for tests.
func WithSelector(sel *selector.Selector) Option {
	return func(s *Service) { s.selector = sel }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHistoryWindow sets how many recent attempts inform selection.
func WithHistoryWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyWindow = n
		}
	}
}

// WithReviewLimit sets the default due-review queue length.
func WithReviewLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.reviewLimit = n
		}
	}
}

// NewService wires a Service over the given catalog and repositories.
func NewService(cat *catalog.Catalog, attempts store.AttemptRepo, progress store.ProgressRepo, sessions store.SessionRepo, opts ...Option) *Service {
	s := &Service{
		catalog:       cat,
		attempts:      attempts,
		progress:      progress,
		sessions:      sessions,
		log:           logger.Nop(),
		now:           time.Now,
		historyWindow: DefaultHistoryWindow,
		reviewLimit:   DefaultReviewLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.selector == nil {
		s.selector = selector.NewDefault()
	}
	s.scheduler = spacedrep.NewScheduler(spacedrep.WithClock(s.now))
	return s
}

// Catalog returns the question bank in use.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// history loads the learner's recent attempts. Failures degrade to an
// empty history so selection falls back to random.
func (s *Service) history(ctx context.Context, userID string) []store.AttemptLog {
	if userID == "" {
		return nil
	}
	logs, err := s.attempts.RecentAttempts(ctx, userID, s.historyWindow)
	if err != nil {
		s.log.Warn("history unavailable, selecting without it", "user_id", userID, "error", err)
		return nil
	}
	return logs
}

// BuildQuiz selects up to n questions for userID. An empty userID selects
// without history.
func (s *Service) BuildQuiz(ctx context.Context, userID string, n int, mode selector.Mode) (*Quiz, error) {
	questions, err := s.selector.Select(s.catalog, s.history(ctx, userID), n, mode)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	rows, err := s.progress.ProgressFor(ctx, userID, ids)
	if err != nil {
		s.log.Warn("progress unavailable", "user_id", userID, "error", err)
		rows = nil
	}

	now := s.now().UTC()
	quiz := &Quiz{
		ID:        uuid.New().String(),
		UserID:    userID,
		Mode:      mode,
		Items:     make([]Item, 0, len(questions)),
		CreatedAt: now,
	}
	for _, q := range questions {
		row, ok := rows[q.ID]
		quiz.Items = append(quiz.Items, s.item(q, row, ok, now))
	}

	s.log.Info("quiz built", "user_id", userID, "quiz_id", quiz.ID, "mode", mode, "size", len(quiz.Items))
	return quiz, nil
}

func (s *Service) item(q catalog.Question, row store.ReviewProgress, hasRow bool, now time.Time) Item {
	it := Item{
		QuestionID: q.ID,
		Category:   q.Category,
		Prompt:     q.Prompt,
		Choices:    s.selector.Shuffle(q),
		Status:     spacedrep.StatusNew,
	}
	if hasRow {
		next := row.NextReviewAt
		it.IntervalDays = row.IntervalDays
		it.Status = row.State().Status(now)
		it.NextReviewAt = &next
	}
	return it
}

// RecordAnswer grades a, appends the attempt and advances the question's
// review schedule.
func (s *Service) RecordAnswer(ctx context.Context, userID string, a Answer) (*Outcome, error) {
	if userID == "" {
		return nil, quizerr.Invalid("user_id", nil, "is required")
	}
	if err := validate.Struct(a); err != nil {
		return nil, quizerr.Invalid("answer", a.QuestionID, err.Error())
	}
	q, ok := s.catalog.Lookup(a.QuestionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, a.QuestionID)
	}
	if a.Choice >= len(q.Choices) {
		return nil, quizerr.Invalid("choice", a.Choice, fmt.Sprintf("question %s has %d choices", q.ID, len(q.Choices)))
	}

	correct := q.IsCorrect(a.Choice)
	now := s.now().UTC()
	if err := s.attempts.AppendAttempts(ctx, &store.AttemptLog{
		UserID:      userID,
		QuestionID:  q.ID,
		IsCorrect:   correct,
		TimeTakenMs: a.TimeTakenMs,
		Category:    q.Category,
		CreatedAt:   now,
		QuizID:      a.QuizID,
	}); err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	row, err := s.progress.GetProgress(ctx, userID, q.ID)
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	var current int64
	if row != nil {
		current = row.IntervalDays
	}

	review, err := s.scheduler.ComputeNextReview(current, correct)
	if err != nil {
		return nil, err
	}
	if err := s.progress.UpsertProgress(ctx, &store.ReviewProgress{
		UserID:       userID,
		QuestionID:   q.ID,
		IntervalDays: review.IntervalDays,
		NextReviewAt: review.NextReviewAt,
		UpdatedAt:    now,
	}); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	s.log.Debug("answer recorded",
		"user_id", userID,
		"question_id", q.ID,
		"correct", correct,
		"interval_days", review.IntervalDays,
	)
	return &Outcome{
		QuestionID:       q.ID,
		Category:         q.Category,
		Correct:          correct,
		AnswerIndex:      q.AnswerIndex,
		CorrectChoice:    q.CorrectChoice(),
		Explanation:      q.Explanation,
		PreviousInterval: current,
		IntervalDays:     review.IntervalDays,
		NextReviewAt:     review.NextReviewAt,
	}, nil
}

// Finish stores a summary of a completed quiz, scored from the attempts
// recorded under quizID. Only the first answer to each question counts.
// Finishing the same quiz twice fails with store.ErrDuplicate.
func (s *Service) Finish(ctx context.Context, userID, quizID string, mode selector.Mode) (*store.SessionResult, error) {
	if userID == "" {
		return nil, quizerr.Invalid("user_id", nil, "is required")
	}
	if quizID == "" {
		return nil, quizerr.Invalid("quiz_id", nil, "is required")
	}
	if !mode.Valid() {
		return nil, quizerr.Invalid("mode", string(mode), "must be random or adaptive")
	}

	logs, err := s.attempts.QueryAttempts(ctx, store.QueryOpts{UserID: userID, QuizID: quizID})
	if err != nil {
		return nil, fmt.Errorf("load quiz attempts: %w", err)
	}
	if len(logs) == 0 {
		return nil, quizerr.Invalid("quiz_id", quizID, "has no recorded answers")
	}

	res := &store.SessionResult{
		ID:           quizID,
		UserID:       userID,
		Mode:         string(mode),
		IncorrectIDs: []string{},
		CreatedAt:    s.now().UTC(),
	}
	seen := make(map[string]bool, len(logs))
	// logs are most recent first.
	for i := len(logs) - 1; i >= 0; i-- {
		l := logs[i]
		if seen[l.QuestionID] {
			continue
		}
		seen[l.QuestionID] = true
		res.Total++
		if l.IsCorrect {
			res.Score++
		} else {
			res.IncorrectIDs = append(res.IncorrectIDs, l.QuestionID)
		}
	}
	if err := s.sessions.AppendSessionResult(ctx, res); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.log.Info("quiz finished", "user_id", userID, "quiz_id", res.ID, "score", res.Score, "total", res.Total)
	return res, nil
}

// DueReviews returns the learner's due questions, most overdue first.
// Rows for questions missing from the catalog are skipped. A limit <= 0
// uses the configured review limit.
func (s *Service) DueReviews(ctx context.Context, userID string, limit int) ([]Item, error) {
	if userID == "" {
		return []Item{}, nil
	}
	if limit <= 0 {
		limit = s.reviewLimit
	}
	now := s.now().UTC()
	rows, err := s.progress.DueProgress(ctx, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("load due reviews: %w", err)
	}

	byID := make(map[string]store.ReviewProgress, len(rows))
	queue := make([]spacedrep.DueItem, 0, len(rows))
	for _, r := range rows {
		byID[r.QuestionID] = r
		queue = append(queue, spacedrep.DueItem{QuestionID: r.QuestionID, State: r.State()})
	}

	items := make([]Item, 0, len(rows))
	for _, d := range spacedrep.DueQueue(queue, now, limit) {
		q, ok := s.catalog.Lookup(d.QuestionID)
		if !ok {
			continue
		}
		items = append(items, s.item(q, byID[d.QuestionID], true, now))
	}
	return items, nil
}

// Stats reports accuracy for every catalog category along with totals
// and the number of due reviews.
func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	st := &Stats{Categories: []CategoryStat{}, RecentSessions: []store.SessionResult{}}
	if userID == "" {
		for _, c := range s.catalog.Categories() {
			st.Categories = append(st.Categories, CategoryStat{Category: c})
		}
		return st, nil
	}

	logs, err := s.attempts.QueryAttempts(ctx, store.QueryOpts{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	agg := selector.Aggregate(s.catalog, logs)
	for _, c := range s.catalog.Categories() {
		a := agg[c]
		st.Categories = append(st.Categories, CategoryStat{
			Category: c,
			Total:    a.Total,
			Correct:  a.Correct,
			Accuracy: a.Accuracy(),
		})
		st.TotalAnswered += a.Total
		st.TotalCorrect += a.Correct
	}

	if st.DueCount, err = s.progress.CountDue(ctx, userID, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("count due reviews: %w", err)
	}

	recent, err := s.sessions.QuerySessionResults(ctx, store.QueryOpts{UserID: userID, Limit: recentSessions})
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	if recent != nil {
		st.RecentSessions = recent
	}
	return st, nil
}

// Rank exposes the adaptive ranking for userID's current history.
// adaptive is false when there is no history; BuildQuiz then samples at
// random and the ranking does not predict its picks.
func (s *Service) Rank(ctx context.Context, userID string) (ranked []selector.Ranked, adaptive bool) {
	history := s.history(ctx, userID)
	return s.selector.Rank(s.catalog, history), len(history) > 0
}

// Overview lists the latest attempts across all learners and counts the
// learners seen. A limit <= 0 uses DefaultOverviewLimit.
func (s *Service) Overview(ctx context.Context, limit int) (*Overview, error) {
	if limit <= 0 {
		limit = DefaultOverviewLimit
	}
	logs, err := s.attempts.QueryAttempts(ctx, store.QueryOpts{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	users, err := s.attempts.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []store.AttemptLog{}
	}
	return &Overview{Attempts: logs, Users: users}, nil
}

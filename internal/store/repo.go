package store

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/fedrill/internal/quizerr"
	"github.com/abhisek/fedrill/internal/spacedrep"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// QueryOpts configures log queries with filtering and pagination.
type QueryOpts struct {
	UserID string    // restrict to one user ("" = all users)
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
	QuizID string    // attempt logs only: restrict to one quiz
}

// ErrDuplicate is returned when a record with the same id already exists.
var ErrDuplicate = errors.New("duplicate record")

// AttemptLog records one answered question. Logs are append-only.
type AttemptLog struct {
	Sequence    int64  `json:"sequence"`
	UserID      string `json:"user_id" validate:"required"`
	QuestionID  string `json:"question_id" validate:"required"`
	IsCorrect   bool   `json:"is_correct"`
	TimeTakenMs int64  `json:"time_taken_ms" validate:"gte=0"`
	// Category is copied from the question at answer time so logs stay
	// analyzable after the catalog changes.
	Category  string    `json:"category" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	// QuizID ties the attempt to the quiz it was answered in, if any.
	QuizID string `json:"quiz_id,omitempty"`
}

// Validate checks the log before it is written.
func (l AttemptLog) Validate() error {
	if err := validate.Struct(l); err != nil {
		return quizerr.Invalid("attempt", l.QuestionID, err.Error())
	}
	return nil
}

// ReviewProgress is the spaced-repetition state of one user/question pair.
type ReviewProgress struct {
	UserID       string    `json:"user_id" validate:"required"`
	QuestionID   string    `json:"question_id" validate:"required"`
	IntervalDays int64     `json:"interval_days" validate:"gte=0"`
	NextReviewAt time.Time `json:"next_review_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks the row before it is written.
func (p ReviewProgress) Validate() error {
	if err := validate.Struct(p); err != nil {
		return quizerr.Invalid("progress", p.QuestionID, err.Error())
	}
	return nil
}

// State returns the scheduling view of the row.
func (p ReviewProgress) State() spacedrep.ReviewState {
	return spacedrep.ReviewState{IntervalDays: p.IntervalDays, NextReviewAt: p.NextReviewAt}
}

// SessionResult summarizes one finished quiz.
type SessionResult struct {
	ID           string    `json:"id" validate:"required"`
	Sequence     int64     `json:"sequence"`
	UserID       string    `json:"user_id" validate:"required"`
	Mode         string    `json:"mode" validate:"required"`
	Score        int       `json:"score" validate:"gte=0,ltefield=Total"`
	Total        int       `json:"total" validate:"gte=0"`
	IncorrectIDs []string  `json:"incorrect_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

// AttemptRepo provides append and query access to attempt logs.
type AttemptRepo interface {
	// AppendAttempts validates and writes logs in one transaction, assigning
	// each a sequence number in argument order.
	AppendAttempts(ctx context.Context, logs ...*AttemptLog) error

	// RecentAttempts returns at most limit logs for userID, most recent first.
	RecentAttempts(ctx context.Context, userID string, limit int) ([]AttemptLog, error)

	// QueryAttempts returns logs matching opts, most recent first.
	QueryAttempts(ctx context.Context, opts QueryOpts) ([]AttemptLog, error)

	// CountUsers returns the number of distinct users with at least one log.
	CountUsers(ctx context.Context) (int, error)
}

// ProgressRepo manages review progress rows.
type ProgressRepo interface {
	// UpsertProgress inserts or replaces the row for (UserID, QuestionID).
	UpsertProgress(ctx context.Context, p *ReviewProgress) error

	// GetProgress returns the row for the pair, or nil if none exists.
	GetProgress(ctx context.Context, userID, questionID string) (*ReviewProgress, error)

	// ProgressFor returns existing rows for the given question ids, keyed by id.
	ProgressFor(ctx context.Context, userID string, questionIDs []string) (map[string]ReviewProgress, error)

	// DueProgress returns rows with NextReviewAt <= now, earliest first.
	DueProgress(ctx context.Context, userID string, now time.Time, limit int) ([]ReviewProgress, error)

	// CountDue returns the number of rows with NextReviewAt <= now.
	CountDue(ctx context.Context, userID string, now time.Time) (int, error)
}

// SessionRepo provides append and query access to session results.
type SessionRepo interface {
	// AppendSessionResult writes a finished quiz summary. A result whose
	// ID is already stored is left untouched and ErrDuplicate is returned.
	AppendSessionResult(ctx context.Context, r *SessionResult) error

	// QuerySessionResults returns results matching opts, most recent first.
	QuerySessionResults(ctx context.Context, opts QueryOpts) ([]SessionResult, error)
}

package session

import (
	"time"

	"github.com/abhisek/fedrill/internal/catalog"
	"github.com/abhisek/fedrill/internal/selector"
	"github.com/abhisek/fedrill/internal/spacedrep"
	"github.com/abhisek/fedrill/internal/store"
)

// Item is one question as presented to a learner.
type Item struct {
	QuestionID string           `json:"question_id"`
	Category   string           `json:"category"`
	Prompt     string           `json:"prompt"`
	Choices    []catalog.Choice `json:"choices"`
	// IntervalDays is the learner's current interval for the question.
	IntervalDays int64                  `json:"interval_days"`
	Status       spacedrep.ReviewStatus `json:"status"`
	NextReviewAt *time.Time             `json:"next_review_at,omitempty"`
}

// Quiz is a selected set of items.
type Quiz struct {
	ID        string        `json:"id"`
	UserID    string        `json:"-"`
	Mode      selector.Mode `json:"mode"`
	Items     []Item        `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
}

// Answer is a learner's response. Choice indexes the catalog question's
// choices, i.e. catalog.Choice.Index.
type Answer struct {
	QuestionID  string `json:"question_id" validate:"required"`
	Choice      int    `json:"choice" validate:"gte=0"`
	TimeTakenMs int64  `json:"time_taken_ms" validate:"gte=0"`
	// QuizID links the answer to a quiz so Finish can score it.
	QuizID string `json:"quiz_id,omitempty" validate:"max=128"`
}

// Outcome is the graded result of an Answer.
type Outcome struct {
	QuestionID       string    `json:"question_id"`
	Category         string    `json:"category"`
	Correct          bool      `json:"correct"`
	AnswerIndex      int       `json:"answer_index"`
	CorrectChoice    string    `json:"correct_choice"`
	Explanation      string    `json:"explanation,omitempty"`
	PreviousInterval int64     `json:"previous_interval_days"`
	IntervalDays     int64     `json:"interval_days"`
	NextReviewAt     time.Time `json:"next_review_at"`
}

// CategoryStat is accuracy within one catalog category.
type CategoryStat struct {
	Category string  `json:"category"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// Stats is a learner's dashboard.
type Stats struct {
	Categories     []CategoryStat        `json:"categories"`
	TotalAnswered  int                   `json:"total_answered"`
	TotalCorrect   int                   `json:"total_correct"`
	DueCount       int                   `json:"due_count"`
	RecentSessions []store.SessionResult `json:"recent_sessions"`
}

// Overview summarizes activity across all learners.
type Overview struct {
	Attempts []store.AttemptLog `json:"attempts"`
	Users    int                `json:"users"`
}

package spacedrep

import (
	"sort"
	"time"

	"github.com/abhisek/fedrill/internal/quizerr"
)

// Review is the result of scheduling one answered item.
type Review struct {
	IntervalDays int64     `json:"interval_days"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// ReviewState is the persisted schedule of a single item.
type ReviewState struct {
	IntervalDays int64     `json:"interval_days"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// IsDue returns true if the item is due (at or past the review date).
func (rs ReviewState) IsDue(now time.Time) bool {
	return !now.Before(rs.NextReviewAt)
}

// OverdueDays returns how many days past due the item is. Returns 0 if not yet due.
func (rs ReviewState) OverdueDays(now time.Time) float64 {
	if now.Before(rs.NextReviewAt) {
		return 0
	}
	return now.Sub(rs.NextReviewAt).Hours() / 24.0
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (rs ReviewState) DaysUntilReview(now time.Time) int {
	if rs.IsDue(now) {
		return 0
	}
	return int(rs.NextReviewAt.Sub(now).Hours()/24.0) + 1
}

// ReviewStatus describes an item's review status for display.
type ReviewStatus string

const (
	StatusNew       ReviewStatus = "new"
	StatusDue       ReviewStatus = "due"
	StatusOverdue   ReviewStatus = "overdue"
	StatusScheduled ReviewStatus = "scheduled"
)

// Status classifies the state. An item that was answered wrong (interval 0)
// and is due counts as new; anything more than one interval late is overdue.
func (rs ReviewState) Status(now time.Time) ReviewStatus {
	if !rs.IsDue(now) {
		return StatusScheduled
	}
	if rs.IntervalDays == 0 {
		return StatusNew
	}
	if rs.OverdueDays(now) > float64(rs.IntervalDays) {
		return StatusOverdue
	}
	return StatusDue
}

// DueItem pairs an item id with its review state.
type DueItem struct {
	QuestionID string
	State      ReviewState
}

// DueQueue returns the due items, most overdue first, ties broken by id.
// A limit <= 0 returns every due item.
func DueQueue(items []DueItem, now time.Time, limit int) []DueItem {
	type dueItem struct {
		item    DueItem
		overdue float64
	}
	var due []dueItem
	for _, it := range items {
		if it.State.IsDue(now) {
			due = append(due, dueItem{item: it, overdue: it.State.OverdueDays(now)})
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].overdue != due[j].overdue {
			return due[i].overdue > due[j].overdue
		}
		return due[i].item.QuestionID < due[j].item.QuestionID
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	out := make([]DueItem, len(due))
	for i, d := range due {
		out[i] = d.item
	}
	return out
}

func errNegativeInterval(v int64) error {
	return quizerr.Invalid("intervalDays", v, "must not be negative")
}

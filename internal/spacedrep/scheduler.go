package spacedrep

import "time"

// Scheduler computes next reviews against an injectable wall clock.
// It holds no mutable state and is safe for concurrent use.
type Scheduler struct {
	now func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduler creates a scheduler that reads time.Now unless overridden.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeNextReview returns the next interval and its due timestamp.
// NextReviewAt is the current UTC time plus IntervalDays whole days.
func (s *Scheduler) ComputeNextReview(currentIntervalDays int64, wasCorrect bool) (Review, error) {
	return ComputeNextReview(currentIntervalDays, wasCorrect, s.now())
}

// ComputeNextReview is the clock-free form of Scheduler.ComputeNextReview.
func ComputeNextReview(currentIntervalDays int64, wasCorrect bool, now time.Time) (Review, error) {
	next, err := NextInterval(currentIntervalDays, wasCorrect)
	if err != nil {
		return Review{}, err
	}
	return Review{
		IntervalDays: next,
		NextReviewAt: AddDays(now, next),
	}, nil
}

// AddDays returns t in UTC shifted by days whole days.
func AddDays(t time.Time, days int64) time.Time {
	if days > maxScheduleDays {
		days = maxScheduleDays
	}
	return t.UTC().AddDate(0, 0, int(days))
}

package spacedrep

import "math"

// Interval ladder in days. After the second step the interval grows by a
// factor of 2.5, rounded up.
const (
	FirstIntervalDays  int64 = 1
	SecondIntervalDays int64 = 3
)

// Growth factor 2.5 as an exact fraction.
const (
	growthNum = 5
	growthDen = 2
)

// MaxIntervalDays is where interval growth saturates instead of overflowing.
const MaxIntervalDays int64 = math.MaxInt64

// maxGrowable is the largest interval that can be multiplied without overflow.
const maxGrowable = (math.MaxInt64 - (growthDen - 1)) / growthNum

// maxScheduleDays bounds the calendar offset used for NextReviewAt. It keeps
// time.Time arithmetic in range; intervals beyond it are billions of years out.
const maxScheduleDays int64 = 1 << 40

// NextInterval returns the interval that follows current after an answer.
// A wrong answer resets to 0 (due immediately). Negative input is rejected.
func NextInterval(current int64, correct bool) (int64, error) {
	if current < 0 {
		return 0, errNegativeInterval(current)
	}
	if !correct {
		return 0, nil
	}
	switch current {
	case 0:
		return FirstIntervalDays, nil
	case 1:
		return SecondIntervalDays, nil
	}
	if current > maxGrowable {
		return MaxIntervalDays, nil
	}
	// ceil(current * 5 / 2)
	return (current*growthNum + growthDen - 1) / growthDen, nil
}
